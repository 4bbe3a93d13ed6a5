package model

// PoolEntry describes one known mining pool's payout addresses, grounded on
// spec.md §4.2 step 4's pool table `{poolName → {address:[…], url}}`.
type PoolEntry struct {
	Name      string
	Addresses []string
	URL       string
}

// PoolTable is the construction-time mining-pool attribution table. It is
// passed into the Indexer and Query Engine explicitly (spec.md §9: "Global
// state (pool table, consensus parameters) → pass as construction
// arguments... no process-wide mutable singletons"), grounded on
// daglabs-btcd/dagconfig.Params being threaded through every component that
// needs consensus constants rather than read from a package global.
type PoolTable struct {
	entries       []PoolEntry
	addressToName map[string]string
}

// UnknownMiner is the label used when no pool table entry matches a
// coinbase payout address (spec.md §4.2 step 4).
const UnknownMiner = "unknown"

// NewPoolTable builds a PoolTable from an ordered list of pool entries.
// Order matters: "first match wins" (spec.md §4.2 step 4) when an address
// were ever (mis)configured under more than one pool.
func NewPoolTable(entries []PoolEntry) *PoolTable {
	pt := &PoolTable{entries: entries, addressToName: make(map[string]string)}
	for _, e := range entries {
		for _, addr := range e.Addresses {
			if _, exists := pt.addressToName[addr]; !exists {
				pt.addressToName[addr] = e.Name
			}
		}
	}
	return pt
}

// Attribute returns the pool name for a coinbase payout address, or
// UnknownMiner if no entry matches.
func (pt *PoolTable) Attribute(address string) string {
	if pt == nil {
		return UnknownMiner
	}
	if name, ok := pt.addressToName[address]; ok {
		return name
	}
	return UnknownMiner
}

// URL returns the URL registered for a pool name, or "" if unknown.
func (pt *PoolTable) URL(poolName string) string {
	if pt == nil {
		return ""
	}
	for _, e := range pt.entries {
		if e.Name == poolName {
			return e.URL
		}
	}
	return ""
}

// Entries returns the configured pool entries in construction order.
func (pt *PoolTable) Entries() []PoolEntry {
	if pt == nil {
		return nil
	}
	return pt.entries
}

// ConsensusParams are the chain-specific constants the Query Engine,
// Indexer, and Aggregates need to compute auction-phase windows, block
// rewards, and hashrate, grounded on daglabs-btcd/dagconfig.Params's role as
// a per-network constants bundle threaded through construction rather than
// hardcoded.
type ConsensusParams struct {
	// TreeInterval is the block-count granularity of the name tree commit
	// interval; OpenPeriod = TreeInterval + 1 (spec.md §4.3).
	TreeInterval uint32
	// BiddingPeriod is the number of blocks the BIDDING phase lasts.
	BiddingPeriod uint32
	// RevealPeriod is the number of blocks the REVEAL phase lasts.
	RevealPeriod uint32
	// HalvingInterval is the number of blocks between subsidy halvings.
	HalvingInterval uint32
	// InitialReward is the coinbase subsidy at height 0, in base units.
	InitialReward uint64
	// CoinbaseMaturity is the number of confirmations before a coinbase
	// output is spendable (used only for display/validation, not enforced
	// by this read-only service).
	CoinbaseMaturity uint32
}

// OpenPeriod is TreeInterval + 1, per spec.md §4.3's getNamesByStatus table.
func (p ConsensusParams) OpenPeriod() uint32 {
	return p.TreeInterval + 1
}

// MainnetParams are Handshake mainnet's consensus constants.
func MainnetParams() ConsensusParams {
	return ConsensusParams{
		TreeInterval:     36,
		BiddingPeriod:    5 * 144,
		RevealPeriod:     10 * 144,
		HalvingInterval:  170000,
		InitialReward:    2000 * 1000000,
		CoinbaseMaturity: 100,
	}
}
