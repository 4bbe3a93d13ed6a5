package query

import (
	"context"

	"github.com/dxpool/hns-backend/internal/apperr"
	"github.com/dxpool/hns-backend/internal/store"
)

// GetAddress implements spec.md §4.3 getAddress: confirmed balance is
// derived from the coin set owned by address (received minus spent);
// unconfirmed tallies only the mempool's pending receipts, since a pending
// spend cannot be attributed to address without a view over mempool inputs
// and the chain client's mempool entries do not carry one.
func (e *Engine) GetAddress(ctx context.Context, address string) (*Balance, error) {
	coins, err := e.store.ListCoinsByAddress(ctx, address)
	if err != nil {
		return nil, apperr.Transient("store_error", "listing address coins", err)
	}

	var received, spent uint64
	for _, c := range coins {
		received += c.Value
		if c.Spent {
			spent += c.Value
		}
	}

	var unconfirmed uint64
	entries, err := e.client.GetMempool(ctx)
	if err != nil {
		e.log.Warnf("getMempool: %v", err)
	} else {
		for _, entry := range entries {
			for _, out := range entry.Tx.Outputs {
				if out.Address == address {
					unconfirmed += out.Value
				}
			}
		}
	}

	return &Balance{
		Hash:        address,
		Confirmed:   int64(received) - int64(spent),
		Unconfirmed: int64(unconfirmed),
		Received:    received,
		Spent:       spent,
	}, nil
}

// GetTransactionsByAddress implements spec.md §4.3 getTransactionsByAddress.
func (e *Engine) GetTransactionsByAddress(ctx context.Context, address string, offset, limit int) (store.Page[TxView], error) {
	page, err := e.store.ListTransactionsByAddress(ctx, address, offset, limit)
	if err != nil {
		return store.Page[TxView]{}, apperr.Transient("store_error", "listing address transactions", err)
	}

	items := make([]TxView, 0, len(page.Items))
	for _, tx := range page.Items {
		v, err := e.GetTransaction(ctx, tx.Txid)
		if err != nil {
			return store.Page[TxView]{}, err
		}
		if v != nil {
			items = append(items, *v)
		}
	}
	return store.Page[TxView]{Total: page.Total, Offset: offset, Limit: limit, Items: items}, nil
}

// GetAddressMempool returns address's pending transactions (spec.md §6.1
// `/address/:hash/mempool`).
func (e *Engine) GetAddressMempool(ctx context.Context, address string) ([]TxView, error) {
	entries, err := e.client.GetMempool(ctx)
	if err != nil {
		return nil, apperr.Transient("upstream_error", "fetching mempool", err)
	}

	var matched []TxView
	for _, entry := range entries {
		hit := false
		for _, o := range entry.Tx.Outputs {
			if o.Address == address {
				hit = true
				break
			}
		}
		if !hit {
			continue
		}
		outputs := make([]TxOutput, len(entry.Tx.Outputs))
		for i, o := range entry.Tx.Outputs {
			view, err := e.normalizeOutput(ctx, o)
			if err != nil {
				return nil, err
			}
			outputs[i] = view
		}
		matched = append(matched, TxView{
			Txid:    entry.Tx.Txid,
			Hash:    entry.Tx.Hash,
			Time:    entry.Time,
			Outputs: outputs,
		})
	}
	return matched, nil
}

// GetTransactionsByHeight implements spec.md §4.3 getTransactionsByHeight:
// read the block, slice block.txs, join via getTransaction.
func (e *Engine) GetTransactionsByHeight(ctx context.Context, height uint32, offset, limit int) (store.Page[TxView], error) {
	block, err := e.client.GetBlockByHeight(ctx, height)
	if err != nil {
		return store.Page[TxView]{}, apperr.Transient("upstream_error", "fetching block", err)
	}

	slice, total := paginate(block.Txs, offset, limit)
	items := make([]TxView, 0, len(slice))
	for _, tx := range slice {
		v, err := e.GetTransaction(ctx, tx.Txid)
		if err != nil {
			return store.Page[TxView]{}, err
		}
		if v != nil {
			items = append(items, *v)
		}
	}
	return store.Page[TxView]{Total: int64(total), Offset: offset, Limit: limit, Items: items}, nil
}

// GetTransactions implements spec.md §4.3 getTransactions: walk the chain
// backwards from the tip, flattening block.txs, until limit is collected.
func (e *Engine) GetTransactions(ctx context.Context, limit int) ([]TxView, error) {
	tip, err := e.client.GetTip(ctx)
	if err != nil {
		return nil, apperr.Transient("upstream_error", "fetching tip", err)
	}

	out := make([]TxView, 0, limit)
	for h := tip.Height; ; h-- {
		block, err := e.client.GetBlockByHeight(ctx, h)
		if err != nil {
			return nil, apperr.Transient("upstream_error", "fetching block", err)
		}
		for i := len(block.Txs) - 1; i >= 0; i-- {
			v, err := e.GetTransaction(ctx, block.Txs[i].Txid)
			if err != nil {
				return nil, err
			}
			if v == nil {
				continue
			}
			out = append(out, *v)
			if len(out) >= limit {
				return out, nil
			}
		}
		if h == 0 {
			break
		}
	}
	return out, nil
}
