package query

import (
	"context"
	"math/big"
	"sort"

	"github.com/dxpool/hns-backend/internal/apperr"
	"github.com/dxpool/hns-backend/internal/phase"
	"github.com/dxpool/hns-backend/internal/store"
)

// defaultHashrateLookup is the number of trailing blocks the hashrate
// estimate averages over (spec.md §6.1 "over the last lookup blocks
// (default 120)").
const defaultHashrateLookup = 120

// GetPoolDistribution implements spec.md §4.3 getPoolDistribution:
// aggregate block records with time in (startTime, endTime] by miner.
func (e *Engine) GetPoolDistribution(ctx context.Context, startTime, endTime int64) (*PoolDistribution, error) {
	blocks, err := e.store.ListBlocksInTimeRange(ctx, startTime, endTime)
	if err != nil {
		return nil, apperr.Transient("store_error", "listing blocks in range", err)
	}

	counts := make(map[string]int)
	for _, b := range blocks {
		counts[b.Miner]++
	}

	items := make([]PoolDistributionItem, 0, len(counts))
	for miner, count := range counts {
		items = append(items, PoolDistributionItem{PoolName: miner, URL: e.pools.URL(miner), Count: count})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Count > items[j].Count })

	return &PoolDistribution{Total: len(blocks), Items: items}, nil
}

// GetSeries implements spec.md §4.3 getSeries: read summary records in the
// window and project the requested metric.
func (e *Engine) GetSeries(ctx context.Context, metric string, startTime, endTime int64) ([]SeriesPoint, error) {
	summaries, err := e.store.ListSummariesInRange(ctx, startTime, endTime)
	if err != nil {
		return nil, apperr.Transient("store_error", "listing summaries in range", err)
	}

	points := make([]SeriesPoint, len(summaries))
	for i, s := range summaries {
		var v float64
		switch metric {
		case "difficulty":
			if s.Blocks > 0 {
				v = s.Difficulty / float64(s.Blocks)
			}
		case "dailyTransactions":
			v = float64(s.Txs)
		case "dailyTotalTransactions":
			v = float64(s.TotalTxs)
		case "supply":
			v = round2(s.Supply)
		case "burned":
			v = round2(s.Burned)
		default:
			return nil, apperr.Input("bad_metric", "unrecognized series type")
		}
		points[i] = SeriesPoint{Date: s.Time * 1000, Value: v}
	}
	return points, nil
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}

// hashrate estimates the current network hashrate from the chainwork delta
// across the trailing lookup blocks (spec.md §6.1).
func (e *Engine) hashrate(ctx context.Context, lookup int) (float64, error) {
	blocks, err := e.store.ListBlocksDescLimit(ctx, lookup)
	if err != nil {
		return 0, apperr.Transient("store_error", "listing recent blocks", err)
	}
	if len(blocks) < 2 {
		return 0, nil
	}
	newest, oldest := blocks[0], blocks[len(blocks)-1]

	newEntry, err := e.client.GetEntry(ctx, newest.Height)
	if err != nil {
		return 0, apperr.Transient("upstream_error", "fetching entry", err)
	}
	oldEntry, err := e.client.GetEntry(ctx, oldest.Height)
	if err != nil {
		return 0, apperr.Transient("upstream_error", "fetching entry", err)
	}

	deltaTime := newEntry.Time - oldEntry.Time
	if deltaTime <= 0 || newEntry.Chainwork == nil || oldEntry.Chainwork == nil {
		return 0, nil
	}
	deltaWork := new(big.Int).Sub(newEntry.Chainwork, oldEntry.Chainwork)
	workF := new(big.Float).SetInt(deltaWork)
	rate, _ := workF.Quo(workF, big.NewFloat(float64(deltaTime))).Float64()
	return rate, nil
}

// GetSummaryCounts implements spec.md §4.3 getSummaryCounts / `/summary`.
func (e *Engine) GetSummaryCounts(ctx context.Context) (*SummaryCounts, error) {
	tip, err := e.client.GetTip(ctx)
	if err != nil {
		return nil, apperr.Transient("upstream_error", "fetching tip", err)
	}

	rate, err := e.hashrate(ctx, defaultHashrateLookup)
	if err != nil {
		return nil, err
	}

	mempool, err := e.client.GetMempool(ctx)
	if err != nil {
		e.log.Warnf("getMempool: %v", err)
		mempool = nil
	}
	var unconfirmedSize int64
	for _, entry := range mempool {
		unconfirmedSize += entry.Size
	}

	difficulty := 0.0
	if rec, err := e.store.GetBlockByHeight(ctx, tip.Height); err == nil && rec != nil {
		difficulty = rec.Difficulty
	}

	closed, err := e.GetNamesByStatus(ctx, phase.StatusClosed, 0, 1)
	if err != nil {
		return nil, err
	}

	chainWork := ""
	if tip.Chainwork != nil {
		chainWork = tip.Chainwork.String()
	}

	return &SummaryCounts{
		Network:         e.network,
		ChainWork:       chainWork,
		Difficulty:      difficulty,
		Hashrate:        rate,
		Unconfirmed:     len(mempool),
		UnconfirmedSize: unconfirmedSize,
		RegisteredNames: closed.Total,
	}, nil
}

// GetStatus implements spec.md §4.3 getStatus / `/status`. Key (whether
// API-key auth is configured) is left zero-valued here: auth configuration
// belongs to the HTTP surface, which overlays it before responding.
func (e *Engine) GetStatus(ctx context.Context) (*StatusInfo, error) {
	st, err := e.client.GetStatus(ctx)
	if err != nil {
		return nil, apperr.Transient("upstream_error", "fetching status", err)
	}
	return &StatusInfo{
		Host:           st.Host,
		Port:           st.Port,
		Network:        e.network,
		Progress:       st.Progress,
		Version:        st.Version,
		Agent:          st.Agent,
		Connections:    st.Connections,
		Height:         st.Height,
		Difficulty:     st.Difficulty,
		Uptime:         st.Uptime,
		TotalBytesRecv: st.TotalBytesRecv,
		TotalBytesSent: st.TotalBytesSent,
	}, nil
}

// GetMempoolPage implements spec.md §4.3 getMempoolPage. Inputs spending
// other still-unconfirmed outputs cannot be resolved (the chain client's
// mempool entries carry no cross-entry view) and are left zero-valued.
func (e *Engine) GetMempoolPage(ctx context.Context, offset, limit int) (store.Page[TxView], error) {
	entries, err := e.client.GetMempool(ctx)
	if err != nil {
		return store.Page[TxView]{}, apperr.Transient("upstream_error", "fetching mempool", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Time > entries[j].Time })

	slice, total := paginate(entries, offset, limit)
	items := make([]TxView, len(slice))
	for i, entry := range slice {
		outputs := make([]TxOutput, len(entry.Tx.Outputs))
		for k, o := range entry.Tx.Outputs {
			v, err := e.normalizeOutput(ctx, o)
			if err != nil {
				return store.Page[TxView]{}, err
			}
			outputs[k] = v
		}
		inputs := make([]TxInput, len(entry.Tx.Inputs))
		for k, in := range entry.Tx.Inputs {
			if meta, err := e.client.GetMeta(ctx, in.PrevTxid); err == nil && meta != nil && int(in.PrevIndex) < len(meta.Tx.Outputs) {
				out := meta.Tx.Outputs[in.PrevIndex]
				inputs[k] = TxInput{Value: out.Value, Address: out.Address}
			}
		}
		items[i] = TxView{Txid: entry.Tx.Txid, Hash: entry.Tx.Hash, Time: entry.Time, Inputs: inputs, Outputs: outputs}
	}
	return store.Page[TxView]{Total: int64(total), Offset: offset, Limit: limit, Items: items}, nil
}

// GetPeers implements spec.md §4.3 getPeers.
func (e *Engine) GetPeers(ctx context.Context, offset, limit int) (store.Page[PeerView], error) {
	peers, err := e.client.GetPeers(ctx)
	if err != nil {
		return store.Page[PeerView]{}, apperr.Transient("upstream_error", "fetching peers", err)
	}
	views := make([]PeerView, len(peers))
	for i, p := range peers {
		views[i] = PeerView{
			Address:     p.Address,
			Inbound:     p.Inbound,
			Uptime:      p.Uptime,
			BytesSent:   p.BytesSent,
			BytesRecv:   p.BytesRecv,
			CountryCode: p.CountryCode,
		}
	}
	slice, total := paginate(views, offset, limit)
	return store.Page[PeerView]{Total: int64(total), Offset: offset, Limit: limit, Items: slice}, nil
}

// GetPeersLocation implements spec.md §4.3 getPeersLocation / `/mapdata`.
func (e *Engine) GetPeersLocation(ctx context.Context) ([]GeoIP, error) {
	peers, err := e.client.GetPeers(ctx)
	if err != nil {
		return nil, apperr.Transient("upstream_error", "fetching peers", err)
	}
	out := make([]GeoIP, len(peers))
	for i, p := range peers {
		out[i] = GeoIP{Latitude: p.Latitude, Longitude: p.Longitude, CountryCode: p.CountryCode}
	}
	return out, nil
}
