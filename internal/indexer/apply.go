package indexer

import (
	"context"

	"github.com/pkg/errors"

	"github.com/dxpool/hns-backend/internal/chainclient"
	"github.com/dxpool/hns-backend/internal/model"
	"github.com/dxpool/hns-backend/internal/store"
)

const coinUnit = 1000000 // base units per whole HNS coin (spec.md §3)

// auctionState is the lazily-seeded, per-applyBlock cache of a name's
// (value, highest) pair, so multiple REVEALs for the same name within one
// block see each other's updates without a store round trip per reveal
// (spec.md §4.2 step 2).
type auctionState struct {
	value, highest uint64
}

// applyBlock applies one connected block's transactions to the secondary
// store, in order, per spec.md §4.2 step 2's numbered procedure. It must be
// called with ix.mu held.
func (ix *Indexer) applyBlock(ctx context.Context, entry chainclient.Entry, block chainclient.Block, view chainclient.View) error {
	if existing, err := ix.store.GetBlockByHeight(ctx, entry.Height); err != nil {
		return errors.Wrapf(err, "checking existing block %d", entry.Height)
	} else if existing != nil {
		// Idempotent replay: this height was already applied.
		return nil
	}

	var supplyDelta, burnedDelta float64
	var coinbaseAddress string
	auctions := make(map[string]*auctionState)

	for _, tx := range block.Txs {
		addrs := make(map[string]struct{})

		if !tx.IsCoinbase {
			for i, in := range tx.Inputs {
				address, ok, err := ix.prevoutAddress(ctx, view, in.PrevTxid, in.PrevIndex)
				if err != nil {
					return errors.Wrapf(err, "resolving prevout %s:%d", in.PrevTxid, in.PrevIndex)
				}
				if !ok {
					// Missing prevout: the coin predates this indexer's
					// observation window. Skip address attribution for
					// this input rather than failing the whole block.
					ix.log.Warnf("missing prevout %s:%d spent by %s:%d", in.PrevTxid, in.PrevIndex, tx.Txid, i)
				} else {
					addrs[address] = struct{}{}
				}
				if err := ix.store.MarkSpent(ctx, in.PrevTxid, in.PrevIndex, tx.Txid, uint32(i), entry.Height); err != nil {
					return errors.Wrapf(err, "marking %s:%d spent", in.PrevTxid, in.PrevIndex)
				}
			}
		}

		for k, out := range tx.Outputs {
			addrs[out.Address] = struct{}{}
			covenant := toModelCovenant(out.Covenant)

			coin := model.Coin{
				Txid:     tx.Txid,
				Index:    uint32(k),
				Height:   entry.Height,
				Time:     entry.Time,
				Address:  out.Address,
				Value:    out.Value,
				Covenant: covenant,
			}
			if covenant.Type.IsNameCovenant() {
				coin.NameHash = nameHashOf(covenant)
			}
			if err := ix.store.UpsertCoinIfAbsent(ctx, coin); err != nil {
				return errors.Wrapf(err, "upserting coin %s:%d", tx.Txid, k)
			}

			if tx.IsCoinbase {
				supplyDelta += float64(out.Value) / coinUnit
				if coinbaseAddress == "" {
					coinbaseAddress = out.Address
				}
			}

			switch covenant.Type {
			case model.CovenantClaim, model.CovenantOpen:
				nameHash := nameHashOf(covenant)
				name := claimedNameOf(covenant)
				if err := ix.store.UpsertNameOpen(ctx, nameHash, name, entry.Height); err != nil {
					return errors.Wrapf(err, "opening name %s", name)
				}
			case model.CovenantReveal:
				if err := ix.applyRevealCoin(ctx, auctions, nameHashOf(covenant), out.Value); err != nil {
					return err
				}
			case model.CovenantRegister:
				burnedDelta += float64(out.Value) / coinUnit
			}
		}

		if err := ix.store.UpsertTransaction(ctx, model.Transaction{
			Txid:      tx.Txid,
			Height:    entry.Height,
			Hash:      entry.Hash,
			Time:      entry.Time,
			Addresses: addrKeys(addrs),
		}); err != nil {
			return errors.Wrapf(err, "upserting transaction %s", tx.Txid)
		}
	}

	miner := ix.pools.Attribute(coinbaseAddress)
	blockRecord := store.BlockRecord{
		Block: model.Block{
			Height:       entry.Height,
			Hash:         entry.Hash,
			Difficulty:   bitsToDifficulty(entry.Bits),
			Time:         entry.Time,
			Txs:          len(block.Txs),
			Miner:        miner,
			MinerAddress: coinbaseAddress,
		},
		SupplyDelta: supplyDelta,
		BurnedDelta: burnedDelta,
	}
	if err := ix.store.UpsertBlock(ctx, blockRecord); err != nil {
		return errors.Wrapf(err, "upserting block %d", entry.Height)
	}

	return ix.incrementDaySummary(ctx, entry, len(block.Txs), blockRecord.Difficulty, supplyDelta, burnedDelta)
}

// applyRevealCoin applies the second-price update for one REVEAL output,
// seeding the per-block auctions cache from the store on first touch.
func (ix *Indexer) applyRevealCoin(ctx context.Context, auctions map[string]*auctionState, nameHash string, v uint64) error {
	if nameHash == "" {
		return nil
	}
	st, ok := auctions[nameHash]
	if !ok {
		name, err := ix.store.GetName(ctx, nameHash)
		if err != nil {
			return errors.Wrapf(err, "loading auction state for %s", nameHash)
		}
		st = &auctionState{}
		if name != nil {
			st.value, st.highest = name.Value, name.Highest
		}
		auctions[nameHash] = st
	}
	st.value, st.highest = applyReveal(st.value, st.highest, v)
	if err := ix.store.UpdateNameAuction(ctx, nameHash, st.value, st.highest); err != nil {
		return errors.Wrapf(err, "updating auction state for %s", nameHash)
	}
	return nil
}

// incrementDaySummary increment-upserts the day-bucket record for entry's
// time, seeding the cumulative fields from the previous day's totals the
// first time a given day is touched (spec.md §4.2 step 6).
func (ix *Indexer) incrementDaySummary(ctx context.Context, entry chainclient.Entry, txs int, difficulty, supplyDelta, burnedDelta float64) error {
	dayTime := model.DayBucket(entry.Time)

	existing, err := ix.store.GetSummary(ctx, dayTime)
	if err != nil {
		return errors.Wrapf(err, "reading summary for day %d", dayTime)
	}

	delta := model.Summary{
		Blocks:     1,
		Txs:        txs,
		TotalTxs:   int64(txs),
		Difficulty: difficulty,
		Supply:     supplyDelta,
		Burned:     burnedDelta,
	}
	if existing == nil {
		prev, err := ix.store.GetLatestSummaryBefore(ctx, dayTime)
		if err != nil {
			return errors.Wrapf(err, "reading previous summary before day %d", dayTime)
		}
		if prev != nil {
			delta.TotalTxs += prev.TotalTxs
			delta.Supply += prev.Supply
			delta.Burned += prev.Burned
		}
	}

	return ix.store.IncrementSummary(ctx, dayTime, delta)
}

func addrKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for a := range m {
		if a != "" {
			out = append(out, a)
		}
	}
	return out
}

// bitsToDifficulty converts a compact-form difficulty bits field to the
// display difficulty (ratio against the maximum target), matching the
// conversion daglabs-btcd/blockdag uses for getdifficulty-style RPCs.
func bitsToDifficulty(bits uint32) float64 {
	const maxBodyBits = 0x1d00ffff
	shift := (bits >> 24) & 0xff
	body := float64(bits & 0x00ffffff)
	maxShift := (uint32(maxBodyBits) >> 24) & 0xff
	maxBody := float64(uint32(maxBodyBits) & 0x00ffffff)

	diff := maxBody / body
	for shift < maxShift {
		diff *= 256
		shift++
	}
	for shift > maxShift {
		diff /= 256
		shift--
	}
	return diff
}
