// Package aggregates implements the Cached Aggregates component (E,
// spec.md §4.4): derived rankings refreshed on a timer so the Query Engine
// never has to scan the whole name-record/coin index per request.
//
// The source's recursive self-scheduling refresh is replaced with a plain
// periodic timer task that awaits the refresh, then re-arms itself (spec.md
// §9 design note); errors are logged, never thrown, and the timer always
// re-arms.
package aggregates

import (
	"context"
	"sort"
	"sync/atomic"
	"time"

	"github.com/dxpool/hns-backend/internal/chainclient"
	"github.com/dxpool/hns-backend/internal/logger"
	"github.com/dxpool/hns-backend/internal/logs"
	"github.com/dxpool/hns-backend/internal/model"
	"github.com/dxpool/hns-backend/internal/panics"
	"github.com/dxpool/hns-backend/internal/phase"
	"github.com/dxpool/hns-backend/internal/query"
	"github.com/dxpool/hns-backend/internal/store"
)

const (
	defaultInterval = 20 * time.Minute
	settlingDelay   = 10 * time.Second
	topValueLimit   = 50
	topBidLimit     = 50
	weekSpan        = 7 * 24 * 3600
	monthSpan       = 30 * 24 * 3600
)

// snapshot is the atomically-swapped read-mostly cache contents (spec.md
// §5 "the in-memory aggregate snapshot is read-mostly; replacement is
// atomic by reference swap").
type snapshot struct {
	topValue   []query.NameListItem
	topBidWeek []query.NameListItem
	topBidMon  []query.NameListItem
	lifecycle  map[phase.Status]int64
	heightUsed uint32
}

// Cache holds the three derived views spec.md §4.4 describes.
type Cache struct {
	client chainclient.Client
	store  store.Store
	params model.ConsensusParams

	interval time.Duration
	log      *logs.Logger
	spawn    func(d time.Duration, f func()) *time.Timer

	current atomic.Pointer[snapshot]
}

// New constructs a Cache. Refreshes do not start until Start is called.
func New(client chainclient.Client, st store.Store, params model.ConsensusParams) *Cache {
	log := logger.Get(logger.SubsystemAggregates)
	c := &Cache{
		client:   client,
		store:    st,
		params:   params,
		interval: defaultInterval,
		log:      log,
		spawn:    panics.AfterFuncWrapperFunc(log),
	}
	c.current.Store(&snapshot{lifecycle: map[phase.Status]int64{}})
	return c
}

// Start arms the first refresh after a short settling delay, then
// re-arms every interval thereafter (spec.md §4.4).
func (c *Cache) Start(ctx context.Context) {
	c.scheduleRefresh(ctx, settlingDelay)
}

func (c *Cache) scheduleRefresh(ctx context.Context, delay time.Duration) {
	c.spawn(delay, func() {
		if err := c.refresh(ctx); err != nil {
			c.log.Errorf("aggregates refresh: %v", err)
		}
		c.scheduleRefresh(ctx, c.interval)
	})
}

// refresh recomputes all three views and atomically swaps the snapshot.
func (c *Cache) refresh(ctx context.Context) error {
	tip, err := c.client.GetTip(ctx)
	if err != nil {
		return err
	}

	topValue, err := c.computeTopValue(ctx)
	if err != nil {
		return err
	}
	lifecycle, err := c.computeLifecycle(ctx, tip.Height)
	if err != nil {
		return err
	}
	topBidWeek, err := c.computeTopBid(ctx, tip.Time, weekSpan)
	if err != nil {
		return err
	}
	topBidMon, err := c.computeTopBid(ctx, tip.Time, monthSpan)
	if err != nil {
		return err
	}

	c.current.Store(&snapshot{
		topValue:   topValue,
		topBidWeek: topBidWeek,
		topBidMon:  topBidMon,
		lifecycle:  lifecycle,
		heightUsed: tip.Height,
	})
	return nil
}

// computeTopValue implements spec.md §4.4 step 1.
func (c *Cache) computeTopValue(ctx context.Context) ([]query.NameListItem, error) {
	names, err := c.store.ListTopNamesByValue(ctx, topValueLimit)
	if err != nil {
		return nil, err
	}
	items := make([]query.NameListItem, len(names))
	for i, n := range names {
		items[i] = query.NameListItem{Name: n.Name, NameHash: n.NameHash, Open: n.Open, Value: n.Value, Highest: n.Highest}
	}
	return items, nil
}

// computeLifecycle implements spec.md §4.4 step 2.
func (c *Cache) computeLifecycle(ctx context.Context, tipHeight uint32) (map[phase.Status]int64, error) {
	counts := make(map[phase.Status]int64, 4)
	for _, s := range []phase.Status{phase.StatusOpening, phase.StatusBidding, phase.StatusReveal, phase.StatusClosed} {
		window, _ := phase.WindowForStatus(s, tipHeight, c.params)
		page, err := c.store.ListNamesByOpenRange(ctx, window.MinExclusive, window.MaxInclusive, 0, 1)
		if err != nil {
			return nil, err
		}
		counts[s] = page.Total
	}
	return counts, nil
}

// computeTopBid implements spec.md §4.4 step 3: walk BID coins sorted by
// value descending, keep the first (= highest) occurrence per nameHash,
// and stop once k distinct names are collected — every later coin in the
// sorted scan has a value no larger than the k-th name's, so it can
// neither join the top-k nor raise an existing entry.
func (c *Cache) computeTopBid(ctx context.Context, now int64, span int64) ([]query.NameListItem, error) {
	coins, err := c.store.ListBidsSince(ctx, now-span)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, topBidLimit)
	type ranked struct {
		nameHash string
		highest  uint64
	}
	var top []ranked
	for _, coin := range coins {
		if coin.NameHash == "" || seen[coin.NameHash] {
			continue
		}
		seen[coin.NameHash] = true
		top = append(top, ranked{nameHash: coin.NameHash, highest: coin.Value})
		if len(top) >= topBidLimit {
			break
		}
	}

	items := make([]query.NameListItem, 0, len(top))
	for _, r := range top {
		name, err := c.store.GetName(ctx, r.nameHash)
		if err != nil {
			return nil, err
		}
		item := query.NameListItem{NameHash: r.nameHash, Highest: r.highest}
		if name != nil {
			item.Name = name.Name
			item.Open = name.Open
			item.Value = name.Value
		}
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Highest > items[j].Highest })
	return items, nil
}

// TopValueNames implements query.AggregatesSource.
func (c *Cache) TopValueNames() []query.NameListItem {
	return c.current.Load().topValue
}

// TopBidNames implements query.AggregatesSource. window is "week" or
// "month"; any other value returns nil.
func (c *Cache) TopBidNames(window string) []query.NameListItem {
	snap := c.current.Load()
	switch window {
	case "week":
		return snap.topBidWeek
	case "month":
		return snap.topBidMon
	default:
		return nil
	}
}

// LifecycleCounts returns the cached per-status name counts and the chain
// height they were computed at (spec.md §4.4 step 2, "cache tagged by the
// chain height used").
func (c *Cache) LifecycleCounts() (counts map[phase.Status]int64, heightUsed uint32) {
	snap := c.current.Load()
	return snap.lifecycle, snap.heightUsed
}
