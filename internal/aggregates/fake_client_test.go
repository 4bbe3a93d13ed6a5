package aggregates

import (
	"context"

	"github.com/dxpool/hns-backend/internal/chainclient"
)

// fakeClient is a minimal chainclient.Client double exposing only what the
// Cache's refresh path calls (GetTip).
type fakeClient struct {
	tip chainclient.Entry
}

func (f *fakeClient) GetTip(ctx context.Context) (chainclient.Entry, error) { return f.tip, nil }
func (f *fakeClient) GetEntry(ctx context.Context, height uint32) (chainclient.Entry, error) {
	return chainclient.Entry{}, nil
}
func (f *fakeClient) GetBlockByHeight(ctx context.Context, height uint32) (chainclient.Block, error) {
	return chainclient.Block{}, nil
}
func (f *fakeClient) GetBlockByHash(ctx context.Context, hash string) (chainclient.Block, error) {
	return chainclient.Block{}, nil
}
func (f *fakeClient) GetBlockView(ctx context.Context, block chainclient.Block) (chainclient.View, error) {
	return chainclient.NewMapView(nil), nil
}
func (f *fakeClient) GetMedianTime(ctx context.Context, entry chainclient.Entry) (int64, error) {
	return entry.Time, nil
}
func (f *fakeClient) GetNextHash(ctx context.Context, hash string) (string, bool, error) {
	return "", false, nil
}
func (f *fakeClient) GetNameState(ctx context.Context, nameHash string) (*chainclient.NameState, error) {
	return nil, nil
}
func (f *fakeClient) GetMeta(ctx context.Context, txid string) (*chainclient.TxMeta, error) {
	return nil, nil
}
func (f *fakeClient) GetMetaView(ctx context.Context, meta chainclient.TxMeta) (chainclient.View, error) {
	return chainclient.NewMapView(nil), nil
}
func (f *fakeClient) Subscribe(ctx context.Context) (<-chan chainclient.Event, error) {
	ch := make(chan chainclient.Event)
	close(ch)
	return ch, nil
}
func (f *fakeClient) GetMempool(ctx context.Context) ([]chainclient.MempoolEntry, error) {
	return nil, nil
}
func (f *fakeClient) GetPeers(ctx context.Context) ([]chainclient.Peer, error) { return nil, nil }
func (f *fakeClient) GetStatus(ctx context.Context) (chainclient.NodeStatus, error) {
	return chainclient.NodeStatus{}, nil
}

var _ chainclient.Client = (*fakeClient)(nil)
