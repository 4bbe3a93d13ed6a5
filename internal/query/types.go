// Package query implements the Query Engine (component D, spec.md §4.3):
// read-side operations joining the Secondary Store with live consensus
// state from the Chain Client. No method here acquires the indexer's index
// mutex (spec.md §5 "Read queries do not acquire the index mutex").
package query

import "github.com/dxpool/hns-backend/internal/phase"

// BlockView is the response shape for getBlock (spec.md §4.3).
type BlockView struct {
	Height       uint32    `json:"height"`
	Hash         string    `json:"hash"`
	Difficulty   float64   `json:"difficulty"`
	Time         int64     `json:"time"`
	TxCount      int       `json:"txs"`
	Miner        string    `json:"miner"`
	Pool         string    `json:"pool,omitempty"`
	Reward       uint64    `json:"reward"`
	Fees         int64     `json:"fees"`
	AverageFee   float64   `json:"averageFee"`
	NextHash     string    `json:"nextHash,omitempty"`
	Transactions []TxView  `json:"txsDetails,omitempty"`
}

// TxView is the response shape for getTransaction (spec.md §4.3).
type TxView struct {
	Txid    string     `json:"txid"`
	Hash    string     `json:"hash"`
	Height  uint32     `json:"height"`
	Time    int64      `json:"time"`
	Inputs  []TxInput  `json:"inputs"`
	Outputs []TxOutput `json:"outputs"`
}

// TxInput is one normalized transaction input (spec.md §4.3 getTransaction).
type TxInput struct {
	Value    uint64 `json:"value"`
	Address  string `json:"address,omitempty"`
	Coinbase bool   `json:"coinbase,omitempty"`
	Airdrop  bool   `json:"airdrop,omitempty"`
}

// TxOutput is one normalized transaction output, fields populated
// depending on the output's covenant action (spec.md §4.3 getTransaction).
type TxOutput struct {
	Address  string  `json:"address"`
	Action   string  `json:"action"`
	Value    *uint64 `json:"value,omitempty"`
	Name     string  `json:"name,omitempty"`
	NameHash string  `json:"nameHash,omitempty"`
	Nonce    string  `json:"nonce,omitempty"`
}

// NameInfo is the response shape for getName (spec.md §4.3).
type NameInfo struct {
	Name        string       `json:"name"`
	NameHash    string       `json:"nameHash"`
	State       phase.Status `json:"state"`
	NextState   phase.Status `json:"nextState"`
	Value       uint64       `json:"value"`
	Highest     uint64       `json:"highest"`
	Release     uint32       `json:"release,omitempty"`
	Renewal     uint32       `json:"renewal,omitempty"`
	Renewals    uint32       `json:"renewals,omitempty"`
	Weak        bool         `json:"weak,omitempty"`
	Transfer    uint32       `json:"transfer,omitempty"`
	Revoked     bool         `json:"revoked,omitempty"`
	BlocksUntil uint32       `json:"blocksUntil,omitempty"`
	Bids        []Bid        `json:"bids"`
}

// Bid is one entry of getNameBids (spec.md §4.3).
type Bid struct {
	Txid     string     `json:"txid"`
	Index    uint32     `json:"index"`
	Lockup   uint64     `json:"lockup"`
	Time     int64      `json:"time"`
	Revealed bool       `json:"revealed"`
	Reveal   *Outpoint  `json:"reveal,omitempty"`
	Value    uint64     `json:"value"`
	Win      bool       `json:"win"`
}

// Outpoint identifies a coin by (txid, index).
type Outpoint struct {
	Txid  string `json:"txid"`
	Index uint32 `json:"index"`
}

// HistoryEvent is one entry of getNameHistory (spec.md §4.3).
type HistoryEvent struct {
	Txid   string  `json:"txid"`
	Index  uint32  `json:"index"`
	Height uint32  `json:"height"`
	Time   int64   `json:"time"`
	Action string  `json:"action"`
	Value  *uint64 `json:"value,omitempty"`
}

// Balance is the response shape for getAddress (spec.md §4.3).
type Balance struct {
	Hash       string `json:"hash"`
	Confirmed  int64  `json:"confirmed"`
	Unconfirmed int64  `json:"unconfirmed"`
	Received   uint64 `json:"received"`
	Spent      uint64 `json:"spent"`
}

// NameListItem is one entry of getNames/getNamesByStatus (spec.md §4.3).
type NameListItem struct {
	Name     string       `json:"name"`
	NameHash string       `json:"nameHash"`
	Open     uint32       `json:"open"`
	State    phase.Status `json:"state"`
	Value    uint64       `json:"value"`
	Highest  uint64       `json:"highest"`
}

// PoolDistribution is the response shape for getPoolDistribution.
type PoolDistribution struct {
	Total int                    `json:"total"`
	Items []PoolDistributionItem `json:"items"`
}

// PoolDistributionItem is one miner's share of a pool-distribution window.
type PoolDistributionItem struct {
	PoolName string `json:"poolName"`
	URL      string `json:"url,omitempty"`
	Count    int    `json:"count"`
}

// SeriesPoint is one entry of getSeries (spec.md §4.3).
type SeriesPoint struct {
	Date  int64   `json:"date"`
	Value float64 `json:"value"`
}

// SummaryCounts is the response shape for getSummaryCounts / `/summary`.
type SummaryCounts struct {
	Network         string  `json:"network"`
	ChainWork       string  `json:"chainWork"`
	Difficulty      float64 `json:"difficulty"`
	Hashrate        float64 `json:"hashrate"`
	Unconfirmed     int     `json:"unconfirmed"`
	UnconfirmedSize int64   `json:"unconfirmedSize"`
	RegisteredNames int64   `json:"registeredNames"`
}

// StatusInfo is the response shape for getStatus / `/status`.
type StatusInfo struct {
	Host           string  `json:"host"`
	Port           int     `json:"port"`
	Key            bool    `json:"key"`
	Network        string  `json:"network"`
	Progress       float64 `json:"progress"`
	Version        string  `json:"version"`
	Agent          string  `json:"agent"`
	Connections    int     `json:"connections"`
	Height         uint32  `json:"height"`
	Difficulty     float64 `json:"difficulty"`
	Uptime         int64   `json:"uptime"`
	TotalBytesRecv int64   `json:"totalBytesRecv"`
	TotalBytesSent int64   `json:"totalBytesSent"`
}

// GeoIP is one entry of getPeersLocation / `/mapdata`.
type GeoIP struct {
	Latitude    float64 `json:"lat"`
	Longitude   float64 `json:"lon"`
	CountryCode string  `json:"countryCode"`
}

// PeerView is one entry of getPeers (spec.md §4.3).
type PeerView struct {
	Address     string `json:"address"`
	Inbound     bool   `json:"inbound"`
	Uptime      int64  `json:"uptime"`
	BytesSent   int64  `json:"bytesSent"`
	BytesRecv   int64  `json:"bytesRecv"`
	CountryCode string `json:"countryCode,omitempty"`
}

// SearchHit is one entry of search (spec.md §4.3).
type SearchHit struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}
