package indexer

import (
	"context"
	"encoding/hex"
	"testing"

	"github.com/dxpool/hns-backend/internal/chainclient"
	"github.com/dxpool/hns-backend/internal/model"
	"github.com/dxpool/hns-backend/internal/store/memstore"
)

func hx(s string) string { return hex.EncodeToString([]byte(s)) }

var aliceHash = hx("alice-name-hash")

func openTx(txid, address, name string) chainclient.Tx {
	return chainclient.Tx{
		Txid: txid,
		Outputs: []chainclient.Output{{
			Address: address,
			Value:   0,
			Covenant: chainclient.OutputCovenant{
				Type:  int(model.CovenantOpen),
				Items: []string{aliceHash, "", hx(name)},
			},
		}},
	}
}

func bidTx(txid, address string, value uint64) chainclient.Tx {
	return chainclient.Tx{
		Txid: txid,
		Outputs: []chainclient.Output{{
			Address:  address,
			Value:    value,
			Covenant: chainclient.OutputCovenant{Type: int(model.CovenantBid), Items: []string{aliceHash}},
		}},
	}
}

func revealTx(txid, address string, value uint64) chainclient.Tx {
	return chainclient.Tx{
		Txid: txid,
		Outputs: []chainclient.Output{{
			Address:  address,
			Value:    value,
			Covenant: chainclient.OutputCovenant{Type: int(model.CovenantReveal), Items: []string{aliceHash}},
		}},
	}
}

func coinbaseTx(txid, minerAddress string, reward uint64) chainclient.Tx {
	return chainclient.Tx{
		Txid:       txid,
		IsCoinbase: true,
		Outputs:    []chainclient.Output{{Address: minerAddress, Value: reward}},
	}
}

func newTestIndexer(client chainclient.Client) (*Indexer, *memstore.Store) {
	st := memstore.New()
	pools := model.NewPoolTable([]model.PoolEntry{
		{Name: "F2Pool", Addresses: []string{"f2pool-addr"}},
	})
	ix := New(client, st, pools, model.MainnetParams())
	return ix, st
}

// spec.md §8 scenario 2: single auction, three bids revealed out of order.
func TestSingleAuctionSecondPrice(t *testing.T) {
	content := map[uint32]chainclient.Tx{
		10: openTx("open-alice", "owner", "alice"),
		20: bidTx("bid-100", "bidder1", 100),
		21: bidTx("bid-300", "bidder2", 300),
		22: bidTx("bid-200", "bidder3", 200),
		40: revealTx("reveal-300", "bidder2", 300),
		41: revealTx("reveal-100", "bidder1", 100),
		42: revealTx("reveal-200", "bidder3", 200),
	}
	client := newFakeClient()
	for h := uint32(0); h <= 42; h++ {
		txs := []chainclient.Tx{coinbaseTx(txidFor(h, 0), "f2pool-addr", 2000*coinUnit)}
		if tx, ok := content[h]; ok {
			txs = append(txs, tx)
		}
		client.addBlock(h, int64(h), txs, nil)
	}

	ix, st := newTestIndexer(client)
	ix.mu.Lock()
	ix.scanLocked(context.Background())
	ix.mu.Unlock()

	name, err := st.GetName(context.Background(), aliceHash)
	if err != nil {
		t.Fatalf("GetName: %v", err)
	}
	if name == nil {
		t.Fatal("expected name record to exist")
	}
	if name.Value != 200 || name.Highest != 300 {
		t.Fatalf("got value=%d highest=%d, want value=200 highest=300", name.Value, name.Highest)
	}
}

// spec.md §8 scenario 3: reorg discards a REVEAL on the old fork.
func TestReorgDiscardsReveal(t *testing.T) {
	client := newFakeClient()
	client.addBlock(0, 0, []chainclient.Tx{coinbaseTx("cb0", "addr", 0)}, nil)
	for h := uint32(1); h < 95; h++ {
		client.addBlock(h, int64(h), []chainclient.Tx{coinbaseTx(txidFor(h, 0), "addr", 0)}, nil)
	}
	client.addBlock(1, 1, []chainclient.Tx{coinbaseTx(txidFor(1, 0), "addr", 0), openTx("open-alice", "owner", "alice")}, nil)
	client.addBlock(95, 95, []chainclient.Tx{coinbaseTx(txidFor(95, 0), "addr", 0), revealTx("reveal-500", "bidder", 500)}, nil)
	for h := uint32(96); h <= 100; h++ {
		client.addBlock(h, int64(h), []chainclient.Tx{coinbaseTx(txidFor(h, 0), "addr", 0)}, nil)
	}

	ix, st := newTestIndexer(client)
	ix.mu.Lock()
	ix.scanLocked(context.Background())
	ix.mu.Unlock()

	name, _ := st.GetName(context.Background(), aliceHash)
	if name == nil || name.Highest != 500 {
		t.Fatalf("expected highest=500 before reorg, got %+v", name)
	}

	// Reorg: replace heights 81-100 with a fork that has no REVEAL.
	ix.mu.Lock()
	err := ix.rollback(context.Background(), 80)
	ix.mu.Unlock()
	if err != nil {
		t.Fatalf("rollback: %v", err)
	}

	for h := uint32(81); h <= 100; h++ {
		client.addBlock(h, int64(h), []chainclient.Tx{coinbaseTx(txidFor(h, 1), "addr", 0)}, nil)
	}
	ix.mu.Lock()
	ix.scanLocked(context.Background())
	ix.mu.Unlock()

	name, err = st.GetName(context.Background(), aliceHash)
	if err != nil {
		t.Fatalf("GetName: %v", err)
	}
	if name == nil {
		t.Fatal("expected name record to survive reorg (opened at height 1)")
	}
	if name.Highest != 0 || name.Value != 0 {
		t.Fatalf("expected auction state reset after reorg discarded the reveal, got value=%d highest=%d", name.Value, name.Highest)
	}
}

// spec.md §8 scenario 4: a connect event firing mid-scan is drained, not
// dropped or double-applied.
func TestPendingDrain(t *testing.T) {
	client := newFakeClient()
	for h := uint32(0); h <= 1000; h++ {
		client.addBlock(h, int64(h), []chainclient.Tx{coinbaseTx(txidFor(h, 0), "addr", 0)}, nil)
	}

	ix, st := newTestIndexer(client)

	client.onGetTip = func(call int) {
		if call == 0 {
			client.addBlock(1001, 1001, []chainclient.Tx{coinbaseTx(txidFor(1001, 0), "addr", 0)}, nil)
			ix.pending.Store(true)
		}
	}

	ix.mu.Lock()
	ix.scanLocked(context.Background())
	ix.mu.Unlock()

	head, err := st.MaxBlockHeight(context.Background())
	if err != nil {
		t.Fatalf("MaxBlockHeight: %v", err)
	}
	if head != 1001 {
		t.Fatalf("expected head=1001 after pending drain, got %d", head)
	}
}

// spec.md §8 scenario 5: coinbase pool attribution.
func TestPoolAttribution(t *testing.T) {
	client := newFakeClient()
	client.addBlock(0, 0, []chainclient.Tx{coinbaseTx("cb0", "f2pool-addr", 2000*coinUnit)}, nil)
	client.addBlock(1, 1, []chainclient.Tx{coinbaseTx("cb1", "someone-else", 2000*coinUnit)}, nil)

	ix, st := newTestIndexer(client)
	ix.mu.Lock()
	ix.scanLocked(context.Background())
	ix.mu.Unlock()

	b0, _ := st.GetBlockByHeight(context.Background(), 0)
	b1, _ := st.GetBlockByHeight(context.Background(), 1)
	if b0.Miner != "F2Pool" {
		t.Fatalf("expected F2Pool, got %s", b0.Miner)
	}
	if b1.Miner != model.UnknownMiner {
		t.Fatalf("expected unknown miner, got %s", b1.Miner)
	}
}

// spec.md §8 invariant: replaying the same block twice is a no-op.
func TestIdempotentReplay(t *testing.T) {
	client := newFakeClient()
	client.addBlock(0, 0, []chainclient.Tx{coinbaseTx("cb0", "addr", 2000*coinUnit)}, nil)

	ix, st := newTestIndexer(client)
	ix.mu.Lock()
	if err := ix.applyBlock(context.Background(), client.entries[0], client.blocks[0], client.views[0]); err != nil {
		t.Fatalf("first apply: %v", err)
	}
	if err := ix.applyBlock(context.Background(), client.entries[0], client.blocks[0], client.views[0]); err != nil {
		t.Fatalf("second apply: %v", err)
	}
	ix.mu.Unlock()

	s, err := st.GetSummary(context.Background(), model.DayBucket(0))
	if err != nil {
		t.Fatalf("GetSummary: %v", err)
	}
	if s == nil || s.Blocks != 1 {
		t.Fatalf("expected exactly one block counted after idempotent replay, got %+v", s)
	}
}

func txidFor(height, i uint32) string {
	return hx("tx") + "-" + itoa(height) + "-" + itoa(i)
}

func itoa(v uint32) string {
	if v == 0 {
		return "0"
	}
	var buf [10]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}
