package chainclient

import "context"

// Client is the Chain Client contract, spec.md §4.1 / §6.2. It is stateless
// and forwards every call to the in-process full-node; no method here
// caches state across calls (caching lives in internal/aggregates).
type Client interface {
	// GetTip returns the current best-chain entry.
	GetTip(ctx context.Context) (Entry, error)
	// GetEntry returns the header/position metadata for height.
	GetEntry(ctx context.Context, height uint32) (Entry, error)
	// GetBlockByHeight returns the full block at height.
	GetBlockByHeight(ctx context.Context, height uint32) (Block, error)
	// GetBlockByHash returns the full block identified by hash.
	GetBlockByHash(ctx context.Context, hash string) (Block, error)
	// GetBlockView returns a View resolving every non-coinbase input in
	// block to the Output it spends.
	GetBlockView(ctx context.Context, block Block) (View, error)
	// GetMedianTime returns the median-time-past for entry.
	GetMedianTime(ctx context.Context, entry Entry) (int64, error)
	// GetNextHash returns the hash of the block connected directly after
	// the block identified by hash, or ok=false if hash is the tip.
	GetNextHash(ctx context.Context, hash string) (next string, ok bool, err error)
	// GetNameState returns the live consensus name-state for nameHash, or
	// nil if the name has never been opened.
	GetNameState(ctx context.Context, nameHash string) (*NameState, error)
	// GetMeta returns a handle to txid's confirming transaction, or nil if
	// unknown (mempool-only or never seen).
	GetMeta(ctx context.Context, txid string) (*TxMeta, error)
	// GetMetaView returns a View over meta's transaction's inputs.
	GetMetaView(ctx context.Context, meta TxMeta) (View, error)

	// Subscribe returns a channel of Events (connect, block connect, chain
	// reset, error) per spec.md §4.1. The channel is closed when ctx is
	// canceled.
	Subscribe(ctx context.Context) (<-chan Event, error)

	// GetMempool returns the current mempool contents.
	GetMempool(ctx context.Context) ([]MempoolEntry, error)
	// GetPeers returns the connected peer list.
	GetPeers(ctx context.Context) ([]Peer, error)
	// GetStatus returns the upstream node's live status.
	GetStatus(ctx context.Context) (NodeStatus, error)
}
