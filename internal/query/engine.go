package query

import (
	"context"
	"math"

	"github.com/dxpool/hns-backend/internal/apperr"
	"github.com/dxpool/hns-backend/internal/chainclient"
	"github.com/dxpool/hns-backend/internal/logger"
	"github.com/dxpool/hns-backend/internal/logs"
	"github.com/dxpool/hns-backend/internal/model"
	"github.com/dxpool/hns-backend/internal/store"
)

const coinUnit = 1000000 // base units per whole HNS coin (spec.md §3)

// Engine implements the Query Engine (component D, spec.md §4.3). It holds
// no mutable state of its own; pools/params/network are construction
// arguments (spec.md §9 "no process-wide mutable singletons").
type Engine struct {
	client     chainclient.Client
	store      store.Store
	pools      *model.PoolTable
	params     model.ConsensusParams
	network    string
	log        *logs.Logger
	aggregates AggregatesSource
}

// New constructs a query Engine.
func New(client chainclient.Client, st store.Store, pools *model.PoolTable, params model.ConsensusParams, network string) *Engine {
	return &Engine{
		client:  client,
		store:   st,
		pools:   pools,
		params:  params,
		network: network,
		log:     logger.Get(logger.SubsystemQueryEngine),
	}
}

// rewardAt computes the coinbase subsidy at height, halving every
// HalvingInterval blocks (spec.md §4.3 "consensus.getReward").
func rewardAt(height uint32, params model.ConsensusParams) uint64 {
	if params.HalvingInterval == 0 {
		return params.InitialReward
	}
	halvings := height / params.HalvingInterval
	if halvings >= 64 {
		return 0
	}
	return params.InitialReward >> halvings
}

// GetBlock implements spec.md §4.3 getBlock.
func (e *Engine) GetBlock(ctx context.Context, height uint32, details bool) (*BlockView, error) {
	rec, err := e.store.GetBlockByHeight(ctx, height)
	if err != nil {
		return nil, apperr.Transient("store_error", "reading block", err)
	}
	if rec == nil {
		return nil, nil
	}

	view := e.blockView(rec)
	if next, ok, err := e.client.GetNextHash(ctx, rec.Hash); err != nil {
		e.log.Warnf("getNextHash(%s): %v", rec.Hash, err)
	} else if ok {
		view.NextHash = next
	}

	if details {
		txs, err := e.transactionsInBlock(ctx, height)
		if err != nil {
			return nil, err
		}
		view.Transactions = txs
	}

	return view, nil
}

// blockView converts a stored block record into its response shape,
// without the next-hash lookup or transaction join (spec.md §4.3 getBlock,
// factored out so the /blocks listing endpoint can build many without an
// RPC round trip per block).
func (e *Engine) blockView(rec *store.BlockRecord) *BlockView {
	reward := rewardAt(rec.Height, e.params)
	coinbaseBaseUnits := int64(math.Round(rec.SupplyDelta * coinUnit))
	fees := coinbaseBaseUnits - int64(reward)
	var averageFee float64
	if rec.Txs > 0 {
		averageFee = float64(fees) / float64(rec.Txs)
	}
	return &BlockView{
		Height:     rec.Height,
		Hash:       rec.Hash,
		Difficulty: rec.Difficulty,
		Time:       rec.Time,
		TxCount:    rec.Txs,
		Miner:      rec.Miner,
		Pool:       e.pools.URL(rec.Miner),
		Reward:     reward,
		Fees:       fees,
		AverageFee: averageFee,
	}
}

// GetBlocks implements spec.md §6.1 `/blocks?limit&offset`: offset counts
// blocks back from the tip; limit is capped by the HTTP layer at 50.
func (e *Engine) GetBlocks(ctx context.Context, offset, limit int) (store.Page[BlockView], error) {
	tip, err := e.client.GetTip(ctx)
	if err != nil {
		return store.Page[BlockView]{}, apperr.Transient("upstream_error", "fetching tip", err)
	}
	if offset > int(tip.Height) {
		return store.Page[BlockView]{}, apperr.Input("bad_offset", "offset beyond tip")
	}

	page, err := e.store.ListBlocksDesc(ctx, offset, limit)
	if err != nil {
		return store.Page[BlockView]{}, apperr.Transient("store_error", "listing blocks", err)
	}
	items := make([]BlockView, len(page.Items))
	for i := range page.Items {
		items[i] = *e.blockView(&page.Items[i])
	}
	return store.Page[BlockView]{Total: page.Total, Offset: offset, Limit: limit, Items: items}, nil
}

// transactionsInBlock fetches every transaction confirmed at height, via
// the chain client (spec.md §4.3 getTransactionsByHeight: "Read the block;
// slice block.txs; join via getTransaction").
func (e *Engine) transactionsInBlock(ctx context.Context, height uint32) ([]TxView, error) {
	block, err := e.client.GetBlockByHeight(ctx, height)
	if err != nil {
		return nil, apperr.Transient("upstream_error", "fetching block transactions", err)
	}
	out := make([]TxView, 0, len(block.Txs))
	for _, tx := range block.Txs {
		v, err := e.GetTransaction(ctx, tx.Txid)
		if err != nil {
			return nil, err
		}
		if v != nil {
			out = append(out, *v)
		}
	}
	return out, nil
}

// GetTransaction implements spec.md §4.3 getTransaction, resolved from the
// chain client's getMeta/getMetaView rather than the secondary store: the
// store's Transaction record only retains the union of input/output
// addresses (spec.md §3), not the raw input list, so reconstructing inputs
// exactly requires the live node's view.
func (e *Engine) GetTransaction(ctx context.Context, txid string) (*TxView, error) {
	meta, err := e.client.GetMeta(ctx, txid)
	if err != nil {
		return nil, apperr.Transient("upstream_error", "fetching transaction", err)
	}
	if meta == nil {
		return nil, nil
	}
	view, err := e.client.GetMetaView(ctx, *meta)
	if err != nil {
		return nil, apperr.Transient("upstream_error", "fetching transaction view", err)
	}

	inputs := make([]TxInput, len(meta.Tx.Inputs))
	for i, in := range meta.Tx.Inputs {
		if meta.Tx.IsCoinbase && i == 0 {
			inputs[i] = TxInput{Value: rewardAt(meta.Height, e.params), Coinbase: true}
			continue
		}
		if out, ok := view.PrevOutput(in.PrevTxid, in.PrevIndex); ok {
			inputs[i] = TxInput{Value: out.Value, Address: out.Address}
		} else {
			inputs[i] = TxInput{Airdrop: true}
		}
	}

	outputs := make([]TxOutput, len(meta.Tx.Outputs))
	for k, out := range meta.Tx.Outputs {
		o, err := e.normalizeOutput(ctx, out)
		if err != nil {
			return nil, err
		}
		outputs[k] = o
	}

	return &TxView{
		Txid:    meta.Tx.Txid,
		Hash:    meta.Tx.Hash,
		Height:  meta.Height,
		Time:    meta.Time,
		Inputs:  inputs,
		Outputs: outputs,
	}, nil
}

// normalizeOutput maps a raw output to the per-action shape spec.md §4.3
// getTransaction describes.
func (e *Engine) normalizeOutput(ctx context.Context, out chainclient.Output) (TxOutput, error) {
	to := TxOutput{Address: out.Address, Action: model.CovenantType(out.Covenant.Type).String()}
	items := out.Covenant.Items

	switch model.CovenantType(out.Covenant.Type) {
	case model.CovenantNone:
		v := out.Value
		to.Value = &v
		return to, nil
	case model.CovenantRedeem:
		to.NameHash = itemAt(items, 0)
		return to, nil
	case model.CovenantOpen:
		to.NameHash = itemAt(items, 0)
		to.Name = decodeHexASCII(itemAt(items, 2))
		return to, nil
	case model.CovenantReveal:
		v := out.Value
		to.Value = &v
		to.NameHash = itemAt(items, 0)
		to.Nonce = itemAt(items, 1)
	default:
		v := out.Value
		to.Value = &v
		to.NameHash = itemAt(items, 0)
	}

	if to.NameHash != "" && to.Name == "" {
		name, err := e.resolveName(ctx, to.NameHash)
		if err != nil {
			return TxOutput{}, err
		}
		to.Name = name
	}
	return to, nil
}

// resolveName looks up a name hash's plaintext name, preferring the
// indexed record and falling back to the live consensus name-state (spec.md
// §4.3 getTransaction: "if name is absent, resolve by B.getNameState").
func (e *Engine) resolveName(ctx context.Context, nameHash string) (string, error) {
	rec, err := e.store.GetName(ctx, nameHash)
	if err != nil {
		return "", apperr.Transient("store_error", "resolving name", err)
	}
	if rec != nil {
		return rec.Name, nil
	}
	state, err := e.client.GetNameState(ctx, nameHash)
	if err != nil {
		e.log.Warnf("getNameState(%s): %v", nameHash, err)
		return "", nil
	}
	if state == nil {
		return "", nil
	}
	return state.Name, nil
}

func itemAt(items []string, i int) string {
	if i < 0 || i >= len(items) {
		return ""
	}
	return items[i]
}
