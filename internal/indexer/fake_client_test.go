package indexer

import (
	"context"
	"fmt"

	"github.com/dxpool/hns-backend/internal/chainclient"
)

// fakeClient is a minimal chainclient.Client test double: a flat, in-memory
// block list the test builds up with addBlock, with just enough of the
// interface wired to drive the indexer's scan/apply/rollback paths.
type fakeClient struct {
	entries  map[uint32]chainclient.Entry
	blocks   map[uint32]chainclient.Block
	views    map[uint32]chainclient.View
	tip      uint32
	events   chan chainclient.Event
	tipCalls int
	// onGetTip, if set, runs on every GetTip call (receiving the zero-based
	// call index) before the tip height is read, so a test can mutate the
	// fake chain (e.g. connect a new block) partway through a scan.
	onGetTip func(call int)
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		entries: make(map[uint32]chainclient.Entry),
		blocks:  make(map[uint32]chainclient.Block),
		views:   make(map[uint32]chainclient.View),
		events:  make(chan chainclient.Event, 16),
	}
}

func (f *fakeClient) addBlock(height uint32, t int64, txs []chainclient.Tx, view chainclient.View) {
	f.entries[height] = chainclient.Entry{Height: height, Hash: fmt.Sprintf("hash%d", height), Time: t, Bits: 0x1d00ffff}
	f.blocks[height] = chainclient.Block{Hash: fmt.Sprintf("hash%d", height), Txs: txs}
	if view == nil {
		view = chainclient.NewMapView(nil)
	}
	f.views[height] = view
	if height > f.tip {
		f.tip = height
	}
}

func (f *fakeClient) GetTip(ctx context.Context) (chainclient.Entry, error) {
	call := f.tipCalls
	f.tipCalls++
	tip := f.tip
	if f.onGetTip != nil {
		f.onGetTip(call)
	}
	return f.entries[tip], nil
}

func (f *fakeClient) GetEntry(ctx context.Context, height uint32) (chainclient.Entry, error) {
	e, ok := f.entries[height]
	if !ok {
		return chainclient.Entry{}, fmt.Errorf("no entry at height %d", height)
	}
	return e, nil
}

func (f *fakeClient) GetBlockByHeight(ctx context.Context, height uint32) (chainclient.Block, error) {
	b, ok := f.blocks[height]
	if !ok {
		return chainclient.Block{}, fmt.Errorf("no block at height %d", height)
	}
	return b, nil
}

func (f *fakeClient) GetBlockByHash(ctx context.Context, hash string) (chainclient.Block, error) {
	for h, b := range f.blocks {
		if b.Hash == hash {
			return f.blocks[h], nil
		}
	}
	return chainclient.Block{}, fmt.Errorf("no block with hash %s", hash)
}

func (f *fakeClient) GetBlockView(ctx context.Context, block chainclient.Block) (chainclient.View, error) {
	for h, b := range f.blocks {
		if b.Hash == block.Hash {
			return f.views[h], nil
		}
	}
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
	return f.events, nil
}

func (f *fakeClient) GetMempool(ctx context.Context) ([]chainclient.MempoolEntry, error) {
	return nil, nil
}

func (f *fakeClient) GetPeers(ctx context.Context) ([]chainclient.Peer, error) {
	return nil, nil
}

func (f *fakeClient) GetStatus(ctx context.Context) (chainclient.NodeStatus, error) {
	return chainclient.NodeStatus{Height: f.tip}, nil
}

var _ chainclient.Client = (*fakeClient)(nil)
