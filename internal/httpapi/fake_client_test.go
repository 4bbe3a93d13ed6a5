package httpapi

import (
	"context"

	"github.com/dxpool/hns-backend/internal/chainclient"
)

// fakeClient is a minimal in-process chainclient.Client double, duplicated
// from internal/query's test fixture of the same name: each package's tests
// stay decoupled from the others'.
type fakeClient struct {
	tip     chainclient.Entry
	entries map[uint32]chainclient.Entry
	blocks  map[uint32]chainclient.Block
	metas   map[string]chainclient.TxMeta
	views   map[string]chainclient.View
	names   map[string]chainclient.NameState
	mempool []chainclient.MempoolEntry
	peers   []chainclient.Peer
	status  chainclient.NodeStatus
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		entries: make(map[uint32]chainclient.Entry),
		blocks:  make(map[uint32]chainclient.Block),
		metas:   make(map[string]chainclient.TxMeta),
		views:   make(map[string]chainclient.View),
		names:   make(map[string]chainclient.NameState),
	}
}

func (f *fakeClient) GetTip(ctx context.Context) (chainclient.Entry, error) { return f.tip, nil }

func (f *fakeClient) GetEntry(ctx context.Context, height uint32) (chainclient.Entry, error) {
	return f.entries[height], nil
}

func (f *fakeClient) GetBlockByHeight(ctx context.Context, height uint32) (chainclient.Block, error) {
	return f.blocks[height], nil
}

func (f *fakeClient) GetBlockByHash(ctx context.Context, hash string) (chainclient.Block, error) {
	for _, b := range f.blocks {
		if b.Hash == hash {
			return b, nil
		}
	}
	return chainclient.Block{}, nil
}

func (f *fakeClient) GetBlockView(ctx context.Context, block chainclient.Block) (chainclient.View, error) {
	return chainclient.NewMapView(nil), nil
}

func (f *fakeClient) GetMedianTime(ctx context.Context, entry chainclient.Entry) (int64, error) {
	return entry.Time, nil
}

func (f *fakeClient) GetNextHash(ctx context.Context, hash string) (string, bool, error) {
	for h, b := range f.blocks {
		if b.Hash == hash {
			if next, ok := f.blocks[h+1]; ok {
				return next.Hash, true, nil
			}
		}
	}
	return "", false, nil
}

func (f *fakeClient) GetNameState(ctx context.Context, nameHash string) (*chainclient.NameState, error) {
	if st, ok := f.names[nameHash]; ok {
		return &st, nil
	}
	return nil, nil
}

func (f *fakeClient) GetMeta(ctx context.Context, txid string) (*chainclient.TxMeta, error) {
	if m, ok := f.metas[txid]; ok {
		return &m, nil
	}
	return nil, nil
}

func (f *fakeClient) GetMetaView(ctx context.Context, meta chainclient.TxMeta) (chainclient.View, error) {
	if v, ok := f.views[meta.Tx.Txid]; ok {
		return v, nil
	}
	return chainclient.NewMapView(nil), nil
}

func (f *fakeClient) Subscribe(ctx context.Context) (<-chan chainclient.Event, error) {
	ch := make(chan chainclient.Event)
	close(ch)
	return ch, nil
}

func (f *fakeClient) GetMempool(ctx context.Context) ([]chainclient.MempoolEntry, error) {
	return f.mempool, nil
}

func (f *fakeClient) GetPeers(ctx context.Context) ([]chainclient.Peer, error) {
	return f.peers, nil
}

func (f *fakeClient) GetStatus(ctx context.Context) (chainclient.NodeStatus, error) {
	return f.status, nil
}

var _ chainclient.Client = (*fakeClient)(nil)
