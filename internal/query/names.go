package query

import (
	"context"
	"sort"

	"github.com/dxpool/hns-backend/internal/apperr"
	"github.com/dxpool/hns-backend/internal/model"
	"github.com/dxpool/hns-backend/internal/phase"
	"github.com/dxpool/hns-backend/internal/store"
)

// GetName implements spec.md §4.3 getName. The name hash is resolved via
// the indexed Name record rather than by hashing the plaintext name
// ourselves: the covenant already carries nameHash verbatim (the indexer
// stores exactly what it observed on chain, spec.md §4.2 step 2), so a name
// that was never opened has no nameHash to look up by and is reported
// absent.
func (e *Engine) GetName(ctx context.Context, name string) (*NameInfo, error) {
	rec, err := e.store.GetNameByName(ctx, name)
	if err != nil {
		return nil, apperr.Transient("store_error", "reading name", err)
	}
	if rec == nil {
		return nil, nil
	}

	tip, err := e.client.GetTip(ctx)
	if err != nil {
		return nil, apperr.Transient("upstream_error", "fetching tip", err)
	}

	status := phase.StatusForOpenHeight(rec.Open, tip.Height, e.params)
	info := &NameInfo{
		Name:      rec.Name,
		NameHash:  rec.NameHash,
		State:     status,
		NextState: phase.NextState(status),
		Value:     rec.Value,
		Highest:   rec.Highest,
	}

	state, err := e.client.GetNameState(ctx, rec.NameHash)
	if err != nil {
		e.log.Warnf("getNameState(%s): %v", rec.NameHash, err)
	} else if state != nil {
		info.Renewal = state.Renewal
		info.Renewals = state.Renewals
		info.Weak = state.Weak
		info.Transfer = state.Transfer
		info.Revoked = state.Revoked
		if state.Registered {
			info.Value = state.Value
			info.Highest = state.Highest
		}
	}

	if w, ok := phase.WindowForStatus(status, tip.Height, e.params); ok && rec.Open <= w.MaxInclusive {
		info.BlocksUntil = w.MaxInclusive - rec.Open
	}

	bids, err := e.GetNameBids(ctx, rec.NameHash, rec.Open)
	if err != nil {
		return nil, err
	}
	info.Bids = bids

	return info, nil
}

// GetNameBids implements spec.md §4.3 getNameBids: every BID coin for
// nameHash, joined to its REVEAL (if spent by one) and carrying the
// winner-determination algorithm's result.
func (e *Engine) GetNameBids(ctx context.Context, nameHash string, openHeight uint32) ([]Bid, error) {
	coins, err := e.store.ListCoinsByNameHash(ctx, nameHash)
	if err != nil {
		return nil, apperr.Transient("store_error", "listing name coins", err)
	}

	bids := make([]Bid, 0, len(coins))
	winIdx := -1
	var winValue uint64

	for _, c := range coins {
		if c.Covenant.Type != model.CovenantBid {
			continue
		}
		b := Bid{Txid: c.Txid, Index: c.Index, Lockup: c.Value, Time: c.Time}

		if c.Spent && c.SpentTxid != "" && c.SpentIndex != nil {
			reveal, err := e.store.GetCoin(ctx, c.SpentTxid, *c.SpentIndex)
			if err != nil {
				return nil, apperr.Transient("store_error", "resolving reveal coin", err)
			}
			if reveal != nil && reveal.Covenant.Type == model.CovenantReveal {
				b.Revealed = true
				b.Reveal = &Outpoint{Txid: reveal.Txid, Index: reveal.Index}
				b.Value = reveal.Value
				if c.Height > openHeight && reveal.Value > winValue {
					winValue = reveal.Value
					winIdx = len(bids)
				}
			}
		}
		bids = append(bids, b)
	}

	if winIdx >= 0 {
		bids[winIdx].Win = true
	}

	sort.Slice(bids, func(i, j int) bool { return bids[i].Time > bids[j].Time })
	return bids, nil
}

// GetNameHistory implements spec.md §4.3 getNameHistory: every coin ever
// carrying nameHash's covenant, newest first, paginated.
func (e *Engine) GetNameHistory(ctx context.Context, nameHash string, offset, limit int) (store.Page[HistoryEvent], error) {
	coins, err := e.store.ListCoinsByNameHash(ctx, nameHash)
	if err != nil {
		return store.Page[HistoryEvent]{}, apperr.Transient("store_error", "listing name coins", err)
	}

	events := make([]HistoryEvent, len(coins))
	for i, c := range coins {
		ev := HistoryEvent{
			Txid:   c.Txid,
			Index:  c.Index,
			Height: c.Height,
			Time:   c.Time,
			Action: c.Covenant.Type.HistoryAction(),
		}
		switch c.Covenant.Type {
		case model.CovenantBid, model.CovenantReveal, model.CovenantRedeem:
			v := c.Value
			ev.Value = &v
		}
		events[i] = ev
	}

	page, total := paginate(events, offset, limit)
	return store.Page[HistoryEvent]{Total: int64(total), Offset: offset, Limit: limit, Items: page}, nil
}

// GetNames implements spec.md §4.3 getNames: dispatches to the value
// ranking, the 7d/30d top-bid aggregates, or a status-filtered listing.
func (e *Engine) GetNames(ctx context.Context, typ string, status string, offset, limit int) (store.Page[NameListItem], error) {
	switch typ {
	case "value":
		page, err := e.store.ListNamesByValueDesc(ctx, offset, limit)
		if err != nil {
			return store.Page[NameListItem]{}, apperr.Transient("store_error", "listing names by value", err)
		}
		items := make([]NameListItem, len(page.Items))
		for i, n := range page.Items {
			items[i] = NameListItem{Name: n.Name, NameHash: n.NameHash, Open: n.Open, Value: n.Value, Highest: n.Highest}
		}
		return store.Page[NameListItem]{Total: page.Total, Offset: offset, Limit: limit, Items: items}, nil

	case "weekBid", "monthBid":
		if e.aggregates == nil {
			return store.Page[NameListItem]{}, nil
		}
		window := "week"
		if typ == "monthBid" {
			window = "month"
		}
		ranked := e.aggregates.TopBidNames(window)
		page, total := paginate(ranked, offset, limit)
		return store.Page[NameListItem]{Total: int64(total), Offset: offset, Limit: limit, Items: page}, nil

	default:
		st, ok := phase.ParseStatus(status)
		if !ok {
			return store.Page[NameListItem]{}, apperr.Input("bad_status", "unrecognized name status")
		}
		return e.GetNamesByStatus(ctx, st, offset, limit)
	}
}

// GetNamesByStatus implements spec.md §4.3 getNamesByStatus: names whose
// Open height falls in status's current height window.
func (e *Engine) GetNamesByStatus(ctx context.Context, status phase.Status, offset, limit int) (store.Page[NameListItem], error) {
	tip, err := e.client.GetTip(ctx)
	if err != nil {
		return store.Page[NameListItem]{}, apperr.Transient("upstream_error", "fetching tip", err)
	}
	window, ok := phase.WindowForStatus(status, tip.Height, e.params)
	if !ok {
		return store.Page[NameListItem]{}, apperr.Input("bad_status", "unrecognized name status")
	}

	page, err := e.store.ListNamesByOpenRange(ctx, window.MinExclusive, window.MaxInclusive, offset, limit)
	if err != nil {
		return store.Page[NameListItem]{}, apperr.Transient("store_error", "listing names by open range", err)
	}

	items := make([]NameListItem, len(page.Items))
	for i, n := range page.Items {
		items[i] = NameListItem{Name: n.Name, NameHash: n.NameHash, Open: n.Open, State: status, Value: n.Value, Highest: n.Highest}
	}
	return store.Page[NameListItem]{Total: page.Total, Offset: offset, Limit: limit, Items: items}, nil
}
