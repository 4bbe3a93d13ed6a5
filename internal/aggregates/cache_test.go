package aggregates

import (
	"context"
	"testing"

	"github.com/dxpool/hns-backend/internal/chainclient"
	"github.com/dxpool/hns-backend/internal/model"
	"github.com/dxpool/hns-backend/internal/phase"
	"github.com/dxpool/hns-backend/internal/store/memstore"
)

func hx(s string) string {
	const hexDigits = "0123456789abcdef"
	out := make([]byte, len(s)*2)
	for i := 0; i < len(s); i++ {
		out[i*2] = hexDigits[s[i]>>4]
		out[i*2+1] = hexDigits[s[i]&0xf]
	}
	return string(out)
}

// TestTopValueOrdering exercises spec.md §4.4 step 1: names sorted by value
// descending, capped at the configured limit.
func TestTopValueOrdering(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	for i, v := range []uint64{500, 100, 900, 300} {
		nameHash := hx("name" + string(rune('a'+i)))
		if err := st.UpsertNameOpen(ctx, nameHash, "name"+string(rune('a'+i)), uint32(i+1)); err != nil {
			t.Fatal(err)
		}
		if err := st.UpdateNameAuction(ctx, nameHash, v, v); err != nil {
			t.Fatal(err)
		}
	}

	c := New(&fakeClient{tip: chainclient.Entry{Height: 100, Time: 1000}}, st, model.MainnetParams())
	items, err := c.computeTopValue(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 4 {
		t.Fatalf("expected 4 items, got %d", len(items))
	}
	for i := 1; i < len(items); i++ {
		if items[i-1].Value < items[i].Value {
			t.Fatalf("items not sorted by value descending: %+v", items)
		}
	}
}

// TestTopBidShortCircuit exercises spec.md §4.4 step 3: the top-k set
// keyed by nameHash, keeping the max bid seen per name.
func TestTopBidShortCircuit(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()

	now := int64(1_000_000)
	addBid := func(nameHash, txid string, value uint64, tm int64) {
		c := model.Coin{
			Txid: txid, Index: 0, Height: 1, Time: tm, Value: value,
			Covenant: model.Covenant{Type: model.CovenantBid, Items: []string{nameHash}}, NameHash: nameHash,
		}
		if err := st.UpsertCoinIfAbsent(ctx, c); err != nil {
			t.Fatal(err)
		}
	}

	addBid(hx("alice"), "t1", 900, now-10)
	addBid(hx("alice"), "t2", 500, now-5) // lower later bid on same name, should not override the 900 max
	addBid(hx("bob"), "t3", 300, now-3)

	cache := New(&fakeClient{tip: chainclient.Entry{Height: 100, Time: now}}, st, model.MainnetParams())
	items, err := cache.computeTopBid(ctx, now, monthSpan)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 distinct names, got %d: %+v", len(items), items)
	}
	for _, it := range items {
		if it.NameHash == hx("alice") && it.Highest != 900 {
			t.Fatalf("alice's highest should be 900 (first/max occurrence), got %d", it.Highest)
		}
	}
}

// TestLifecycleCountsTagged exercises spec.md §4.4 step 2: counts cached
// tagged by the chain height used.
func TestLifecycleCountsTagged(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	if err := st.UpsertNameOpen(ctx, hx("open1"), "open1", 99_900); err != nil {
		t.Fatal(err)
	}

	client := &fakeClient{tip: chainclient.Entry{Height: 100000, Time: 1000}}
	c := New(client, st, model.MainnetParams())
	if err := c.refresh(ctx); err != nil {
		t.Fatal(err)
	}

	counts, heightUsed := c.LifecycleCounts()
	if heightUsed != 100000 {
		t.Fatalf("heightUsed=%d, want 100000", heightUsed)
	}
	var total int64
	for _, s := range []phase.Status{phase.StatusOpening, phase.StatusBidding, phase.StatusReveal, phase.StatusClosed} {
		total += counts[s]
	}
	if total != 1 {
		t.Fatalf("expected exactly one name counted across all windows, got %d", total)
	}
}
