// Package memstore is an in-memory store.Store implementation used by the
// indexer/query/aggregates property tests (SPEC_FULL.md §8), grounded on
// daglabs-btcd's convention of exercising blockdag/mempool logic against
// in-memory fixtures (test_utils.go) rather than a live database.
package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/dxpool/hns-backend/internal/model"
	"github.com/dxpool/hns-backend/internal/store"
)

// Store is a mutex-guarded in-memory implementation of store.Store.
type Store struct {
	mu sync.Mutex

	blocks map[uint32]store.BlockRecord
	txs    map[string]model.Transaction
	coins  map[coinKey]store.CoinRecord
	names  map[string]model.Name
	// nameByName indexes names by ASCII name for GetNameByName.
	nameByName map[string]string // name -> nameHash
	summaries  map[int64]model.Summary
}

type coinKey struct {
	txid  string
	index uint32
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		blocks:     make(map[uint32]store.BlockRecord),
		txs:        make(map[string]model.Transaction),
		coins:      make(map[coinKey]store.CoinRecord),
		names:      make(map[string]model.Name),
		nameByName: make(map[string]string),
		summaries:  make(map[int64]model.Summary),
	}
}

// EnsureIndexes is a no-op: map lookups don't need index creation.
func (s *Store) EnsureIndexes(ctx context.Context) error { return nil }

// --- blocks ---

func (s *Store) UpsertBlock(ctx context.Context, b store.BlockRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blocks[b.Height] = b
	return nil
}

func (s *Store) GetBlockByHeight(ctx context.Context, height uint32) (*store.BlockRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.blocks[height]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (s *Store) MaxBlockHeight(ctx context.Context) (uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var max uint32
	for h := range s.blocks {
		if h > max {
			max = h
		}
	}
	return max, nil
}

func (s *Store) sortedBlocksDesc() []store.BlockRecord {
	out := make([]store.BlockRecord, 0, len(s.blocks))
	for _, b := range s.blocks {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Height > out[j].Height })
	return out
}

func (s *Store) ListBlocksDesc(ctx context.Context, offset, limit int) (store.Page[store.BlockRecord], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := s.sortedBlocksDesc()
	return paginate(all, offset, limit), nil
}

func (s *Store) ListBlocksInTimeRange(ctx context.Context, start, end int64) ([]store.BlockRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []store.BlockRecord
	for _, b := range s.blocks {
		if b.Time > start && b.Time <= end {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *Store) ListBlocksDescLimit(ctx context.Context, limit int) ([]store.BlockRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := s.sortedBlocksDesc()
	if limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (s *Store) DeleteBlocksAbove(ctx context.Context, h uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for height := range s.blocks {
		if height > h {
			delete(s.blocks, height)
		}
	}
	return nil
}

// --- transactions ---

func (s *Store) UpsertTransaction(ctx context.Context, tx model.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txs[tx.Txid] = tx
	return nil
}

func (s *Store) GetTransaction(ctx context.Context, txid string) (*model.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.txs[txid]
	if !ok {
		return nil, nil
	}
	return &tx, nil
}

func (s *Store) ListTransactionsByAddress(ctx context.Context, address string, offset, limit int) (store.Page[model.Transaction], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matched []model.Transaction
	for _, tx := range s.txs {
		for _, a := range tx.Addresses {
			if a == address {
				matched = append(matched, tx)
				break
			}
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Height > matched[j].Height })
	return paginate(matched, offset, limit), nil
}

func (s *Store) ListTransactionsDesc(ctx context.Context, limit int) ([]model.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := make([]model.Transaction, 0, len(s.txs))
	for _, tx := range s.txs {
		all = append(all, tx)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Height != all[j].Height {
			return all[i].Height > all[j].Height
		}
		return all[i].Txid > all[j].Txid
	})
	if limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (s *Store) DeleteTransactionsAbove(ctx context.Context, h uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for txid, tx := range s.txs {
		if tx.Height > h {
			delete(s.txs, txid)
		}
	}
	return nil
}

// --- coins ---

func (s *Store) UpsertCoinIfAbsent(ctx context.Context, c model.Coin) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := coinKey{c.Txid, c.Index}
	if _, exists := s.coins[k]; exists {
		return nil
	}
	s.coins[k] = store.CoinRecord{Coin: c}
	return nil
}

func (s *Store) GetCoin(ctx context.Context, txid string, index uint32) (*store.CoinRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.coins[coinKey{txid, index}]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (s *Store) MarkSpent(ctx context.Context, txid string, index uint32, spentTxid string, spentIndex uint32, spentHeight uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := coinKey{txid, index}
	c, ok := s.coins[k]
	if !ok {
		return nil
	}
	if c.Spent {
		return nil
	}
	c.Spent = true
	c.SpentTxid = spentTxid
	si := spentIndex
	c.SpentIndex = &si
	sh := spentHeight
	c.SpentHeight = &sh
	s.coins[k] = c
	return nil
}

func (s *Store) ListCoinsByAddress(ctx context.Context, address string) ([]store.CoinRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []store.CoinRecord
	for _, c := range s.coins {
		if c.Address == address {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *Store) ListCoinsByNameHash(ctx context.Context, nameHash string) ([]store.CoinRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []store.CoinRecord
	for _, c := range s.coins {
		if c.NameHash == nameHash {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Time > out[j].Time })
	return out, nil
}

func (s *Store) ListRevealCoinsByNameHash(ctx context.Context, nameHash string) ([]store.CoinRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []store.CoinRecord
	for _, c := range s.coins {
		if c.NameHash == nameHash && c.Covenant.Type == model.CovenantReveal {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Height != out[j].Height {
			return out[i].Height < out[j].Height
		}
		if out[i].Txid != out[j].Txid {
			return out[i].Txid < out[j].Txid
		}
		return out[i].Index < out[j].Index
	})
	return out, nil
}

func (s *Store) ListBidsSince(ctx context.Context, sinceTime int64) ([]store.CoinRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []store.CoinRecord
	for _, c := range s.coins {
		if c.Covenant.Type == model.CovenantBid && c.Time >= sinceTime {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Value > out[j].Value })
	return out, nil
}

func (s *Store) ClearSpentAbove(ctx context.Context, h uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, c := range s.coins {
		if c.SpentHeight != nil && *c.SpentHeight > h {
			c.Spent = false
			c.SpentTxid = ""
			c.SpentIndex = nil
			c.SpentHeight = nil
			s.coins[k] = c
		}
	}
	return nil
}

func (s *Store) DeleteCoinsAbove(ctx context.Context, h uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, c := range s.coins {
		if c.Height > h {
			delete(s.coins, k)
		}
	}
	return nil
}

// --- names ---

func (s *Store) UpsertNameOpen(ctx context.Context, nameHash, name string, openHeight uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.names[nameHash] = model.Name{NameHash: nameHash, Name: name, Open: openHeight, Value: 0, Highest: 0}
	s.nameByName[name] = nameHash
	return nil
}

func (s *Store) GetName(ctx context.Context, nameHash string) (*model.Name, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.names[nameHash]
	if !ok {
		return nil, nil
	}
	return &n, nil
}

func (s *Store) GetNameByName(ctx context.Context, name string) (*model.Name, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	hash, ok := s.nameByName[name]
	if !ok {
		return nil, nil
	}
	n := s.names[hash]
	return &n, nil
}

func (s *Store) UpdateNameAuction(ctx context.Context, nameHash string, value, highest uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.names[nameHash]
	if !ok {
		return nil
	}
	n.Value = value
	n.Highest = highest
	s.names[nameHash] = n
	return nil
}

func (s *Store) ListNamesByValueDesc(ctx context.Context, offset, limit int) (store.Page[model.Name], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := make([]model.Name, 0, len(s.names))
	for _, n := range s.names {
		all = append(all, n)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Value > all[j].Value })
	return paginate(all, offset, limit), nil
}

func (s *Store) ListNamesByOpenRange(ctx context.Context, minExclusive, maxInclusive uint32, offset, limit int) (store.Page[model.Name], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matched []model.Name
	for _, n := range s.names {
		if n.Open > minExclusive && n.Open <= maxInclusive {
			matched = append(matched, n)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Open > matched[j].Open })
	return paginate(matched, offset, limit), nil
}

func (s *Store) ListTopNamesByValue(ctx context.Context, limit int) ([]model.Name, error) {
	page, err := s.ListNamesByValueDesc(ctx, 0, limit)
	return page.Items, err
}

func (s *Store) DeleteNamesWithOpenAbove(ctx context.Context, h uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for hash, n := range s.names {
		if n.Open > h {
			delete(s.names, hash)
			delete(s.nameByName, n.Name)
		}
	}
	return nil
}

func (s *Store) ListNamesWithOpenAtMost(ctx context.Context, h uint32) ([]model.Name, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Name
	for _, n := range s.names {
		if n.Open <= h {
			out = append(out, n)
		}
	}
	return out, nil
}

// --- summaries ---

func (s *Store) IncrementSummary(ctx context.Context, dayTime int64, delta model.Summary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur := s.summaries[dayTime]
	cur.Time = dayTime
	cur.Blocks += delta.Blocks
	cur.Txs += delta.Txs
	cur.TotalTxs += delta.TotalTxs
	cur.Difficulty += delta.Difficulty
	cur.Supply += delta.Supply
	cur.Burned += delta.Burned
	s.summaries[dayTime] = cur
	return nil
}

func (s *Store) PutSummary(ctx context.Context, sm model.Summary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summaries[sm.Time] = sm
	return nil
}

func (s *Store) GetSummary(ctx context.Context, dayTime int64) (*model.Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sm, ok := s.summaries[dayTime]
	if !ok {
		return nil, nil
	}
	return &sm, nil
}

func (s *Store) GetLatestSummaryBefore(ctx context.Context, dayTime int64) (*model.Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var best *model.Summary
	for t, sm := range s.summaries {
		if t < dayTime {
			if best == nil || t > best.Time {
				smCopy := sm
				best = &smCopy
			}
		}
	}
	return best, nil
}

func (s *Store) ListSummariesInRange(ctx context.Context, start, end int64) ([]model.Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Summary
	for t, sm := range s.summaries {
		if t >= start && t <= end {
			out = append(out, sm)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Time < out[j].Time })
	return out, nil
}

func (s *Store) DeleteSummariesAfter(ctx context.Context, dayTime int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for t := range s.summaries {
		if t > dayTime {
			delete(s.summaries, t)
		}
	}
	return nil
}

func paginate[T any](all []T, offset, limit int) store.Page[T] {
	total := int64(len(all))
	if offset > len(all) {
		offset = len(all)
	}
	end := offset + limit
	if end > len(all) || limit <= 0 {
		end = len(all)
	}
	return store.Page[T]{Total: total, Offset: offset, Limit: limit, Items: all[offset:end]}
}

var _ store.Store = (*Store)(nil)
