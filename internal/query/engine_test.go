package query

import (
	"context"
	"testing"

	"github.com/dxpool/hns-backend/internal/chainclient"
	"github.com/dxpool/hns-backend/internal/model"
	"github.com/dxpool/hns-backend/internal/store/memstore"
)

func hx(s string) string {
	b := []byte(s)
	out := make([]byte, len(b)*2)
	const hexDigits = "0123456789abcdef"
	for i, c := range b {
		out[i*2] = hexDigits[c>>4]
		out[i*2+1] = hexDigits[c&0xf]
	}
	return string(out)
}

func newTestEngine(client *fakeClient) (*Engine, *memstore.Store) {
	st := memstore.New()
	e := New(client, st, model.NewPoolTable(nil), model.MainnetParams(), "main")
	return e, st
}

// TestNameBidsWinnerAndOrdering exercises spec.md §8 scenario 2: three bids
// revealed at 100, 300, 200, with the 300 reveal marked win:true and bids
// sorted by time descending.
func TestNameBidsWinnerAndOrdering(t *testing.T) {
	ctx := context.Background()
	client := newFakeClient()
	e, st := newTestEngine(client)

	nameHash := hx("alice")
	if err := st.UpsertNameOpen(ctx, nameHash, "alice", 10); err != nil {
		t.Fatal(err)
	}
	if err := st.UpdateNameAuction(ctx, nameHash, 200, 300); err != nil {
		t.Fatal(err)
	}

	bidCoin := func(idx uint32, height uint32, lockup uint64, t0 int64) model.Coin {
		return model.Coin{
			Txid: "bid" + hx(string(rune('a'+idx))), Index: 0, Height: height, Time: t0, Value: lockup,
			Covenant: model.Covenant{Type: model.CovenantBid, Items: []string{nameHash}}, NameHash: nameHash,
		}
	}
	revealCoin := func(txid string, height uint32, value uint64, t0 int64) model.Coin {
		return model.Coin{
			Txid: txid, Index: 0, Height: height, Time: t0, Value: value,
			Covenant: model.Covenant{Type: model.CovenantReveal, Items: []string{nameHash, "00"}}, NameHash: nameHash,
		}
	}

	b1, b2, b3 := bidCoin(1, 20, 100, 20), bidCoin(2, 21, 300, 21), bidCoin(3, 22, 200, 22)
	if err := st.UpsertCoinIfAbsent(ctx, b1); err != nil {
		t.Fatal(err)
	}
	if err := st.UpsertCoinIfAbsent(ctx, b2); err != nil {
		t.Fatal(err)
	}
	if err := st.UpsertCoinIfAbsent(ctx, b3); err != nil {
		t.Fatal(err)
	}

	r1, r2, r3 := revealCoin("reveal1", 41, 100, 41), revealCoin("reveal2", 40, 300, 40), revealCoin("reveal3", 42, 200, 42)
	for _, r := range []model.Coin{r1, r2, r3} {
		if err := st.UpsertCoinIfAbsent(ctx, r); err != nil {
			t.Fatal(err)
		}
	}
	if err := st.MarkSpent(ctx, b1.Txid, 0, r1.Txid, 0, 41); err != nil {
		t.Fatal(err)
	}
	if err := st.MarkSpent(ctx, b2.Txid, 0, r2.Txid, 0, 40); err != nil {
		t.Fatal(err)
	}
	if err := st.MarkSpent(ctx, b3.Txid, 0, r3.Txid, 0, 42); err != nil {
		t.Fatal(err)
	}

	bids, err := e.GetNameBids(ctx, nameHash, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(bids) != 3 {
		t.Fatalf("expected 3 bids, got %d", len(bids))
	}
	if bids[0].Time < bids[1].Time || bids[1].Time < bids[2].Time {
		t.Fatalf("bids not sorted by time descending: %+v", bids)
	}

	var winners int
	for _, b := range bids {
		if b.Win {
			winners++
			if b.Value != 300 {
				t.Fatalf("expected the 300-value reveal to win, got %d", b.Value)
			}
		}
	}
	if winners != 1 {
		t.Fatalf("expected exactly one winning bid, got %d", winners)
	}
}

// TestAddressBalanceExact exercises spec.md §8 "Address balance: for
// synthetic chain with known inputs/outputs, confirmed = Σreceived −
// Σspent exactly."
func TestAddressBalanceExact(t *testing.T) {
	ctx := context.Background()
	client := newFakeClient()
	e, st := newTestEngine(client)

	addr := "hs1qexampleaddress"
	coins := []model.Coin{
		{Txid: "t1", Index: 0, Height: 1, Time: 1, Address: addr, Value: 1000},
		{Txid: "t2", Index: 0, Height: 2, Time: 2, Address: addr, Value: 2000},
		{Txid: "t3", Index: 0, Height: 3, Time: 3, Address: addr, Value: 500},
	}
	for _, c := range coins {
		if err := st.UpsertCoinIfAbsent(ctx, c); err != nil {
			t.Fatal(err)
		}
	}
	if err := st.MarkSpent(ctx, "t1", 0, "t4", 0, 4); err != nil {
		t.Fatal(err)
	}

	bal, err := e.GetAddress(ctx, addr)
	if err != nil {
		t.Fatal(err)
	}
	wantReceived := uint64(3500)
	wantSpent := uint64(1000)
	if bal.Received != wantReceived || bal.Spent != wantSpent {
		t.Fatalf("got received=%d spent=%d, want received=%d spent=%d", bal.Received, bal.Spent, wantReceived, wantSpent)
	}
	if bal.Confirmed != int64(wantReceived)-int64(wantSpent) {
		t.Fatalf("confirmed=%d, want %d", bal.Confirmed, int64(wantReceived)-int64(wantSpent))
	}
}

// TestGetNamesByStatusPagination exercises spec.md §8 "getNames(status=…)
// pagination: result.length <= limit; total matches count for the same
// filter."
func TestGetNamesByStatusPagination(t *testing.T) {
	ctx := context.Background()
	client := newFakeClient()
	client.tip = chainclient.Entry{Height: 500000}
	e, st := newTestEngine(client)

	for i := 0; i < 5; i++ {
		openHeight := uint32(i + 1)
		nameHash := hx("name" + string(rune('a'+i)))
		if err := st.UpsertNameOpen(ctx, nameHash, "name"+string(rune('a'+i)), openHeight); err != nil {
			t.Fatal(err)
		}
	}

	page, err := e.GetNames(ctx, "", "closed", 0, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(page.Items) > 2 {
		t.Fatalf("result length %d exceeds limit 2", len(page.Items))
	}
	if page.Total != 5 {
		t.Fatalf("total=%d, want 5", page.Total)
	}
}

// TestSearchHeuristics exercises spec.md §8 scenario 6.
func TestSearchHeuristics(t *testing.T) {
	ctx := context.Background()
	client := newFakeClient()
	client.tip = chainclient.Entry{Height: 42}
	e, _ := newTestEngine(client)

	hits, err := e.Search(ctx, "42")
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 || hits[0].Type != "Block" || hits[0].URL != "/block/42" {
		t.Fatalf("unexpected hits for numeric query: %+v", hits)
	}

	hits, err = e.Search(ctx, "handshake")
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, h := range hits {
		if h.Type == "Name" && h.URL == "/name/handshake" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a Name hit for valid name query, got %+v", hits)
	}
}
