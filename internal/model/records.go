// Package model holds the denormalized secondary-store record shapes from
// spec.md §3, plus the construction-time configuration structs (pool table,
// consensus parameters) that SPEC_FULL.md §3 adds so the Indexer and Query
// Engine never reach for a process-wide singleton (spec.md §9).
package model

// Block is the per-height block record (spec.md §3). Keyed by Height,
// unique.
type Block struct {
	Height        uint32  `bson:"height" json:"height"`
	Hash          string  `bson:"hash" json:"hash"`
	Difficulty    float64 `bson:"difficulty" json:"difficulty"`
	Time          int64   `bson:"time" json:"time"`
	Txs           int     `bson:"txs" json:"txs"`
	Miner         string  `bson:"miner" json:"miner"`
	MinerAddress  string  `bson:"minerAddress" json:"minerAddress"`
}

// Transaction is the per-txid transaction record (spec.md §3). Keyed by
// Txid, unique. Secondary index on Addresses and Height.
type Transaction struct {
	Txid      string   `bson:"txid" json:"txid"`
	Height    uint32   `bson:"height" json:"height"`
	Hash      string   `bson:"hash" json:"hash"` // enclosing block hash
	Time      int64    `bson:"time" json:"time"`
	Addresses []string `bson:"addresses" json:"addresses"`
}

// Coin is the per-(txid,index) output record (spec.md §3). Keyed by
// (Txid, Index), unique. Secondary indexes: NameHash, Type, Address, Time,
// Value, Spent; unique-sparse index on (SpentTxid, SpentIndex).
type Coin struct {
	Txid        string       `bson:"txid" json:"txid"`
	Index       uint32       `bson:"index" json:"index"`
	Height      uint32       `bson:"height" json:"height"`
	Time        int64        `bson:"time" json:"time"`
	Address     string       `bson:"address" json:"address"`
	Value       uint64       `bson:"value" json:"value"`
	Covenant    Covenant     `bson:"covenant" json:"covenant"`
	NameHash    string       `bson:"nameHash,omitempty" json:"nameHash,omitempty"`
	Spent       bool         `bson:"spent" json:"spent"`
	SpentTxid   string       `bson:"spentTxid,omitempty" json:"spentTxid,omitempty"`
	SpentIndex  *uint32      `bson:"spentIndex,omitempty" json:"spentIndex,omitempty"`
}

// Name is the per-nameHash auction-fact record (spec.md §3). Keyed by
// NameHash, unique. Secondary indexes: Open (desc), Value (desc).
//
// Value is the price the eventual winner pays (second-highest reveal so
// far); Highest is the highest reveal so far. The invariant Value <= Highest
// must hold at all times (spec.md §3, §9).
type Name struct {
	NameHash string `bson:"nameHash" json:"nameHash"`
	Name     string `bson:"name" json:"name"`
	Open     uint32 `bson:"open" json:"open"`
	Value    uint64 `bson:"value" json:"value"`
	Highest  uint64 `bson:"highest" json:"highest"`
}

// Summary is the per-UTC-day rolling aggregate record (spec.md §3). Keyed
// by Time (start-of-day Unix seconds).
//
// Supply and Burned are whole coins (base units / 1e6); TotalTxs, Supply,
// and Burned are cumulative across all days up to and including Time.
type Summary struct {
	Time       int64   `bson:"time" json:"time"`
	Blocks     int     `bson:"blocks" json:"blocks"`
	Txs        int     `bson:"txs" json:"txs"`
	TotalTxs   int64   `bson:"totalTxs" json:"totalTxs"`
	Difficulty float64 `bson:"difficulty" json:"difficulty"` // summed; divide by Blocks for daily average
	Supply     float64 `bson:"supply" json:"supply"`
	Burned     float64 `bson:"burned" json:"burned"`
}

// DayBucket returns the start-of-UTC-day Unix second timestamp containing t,
// per spec.md §4.2 step 6 ("dayTime = entry.time - (entry.time mod 86400)").
func DayBucket(t int64) int64 {
	const secondsPerDay = 86400
	return t - (t % secondsPerDay)
}
