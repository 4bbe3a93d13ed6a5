package query

// AggregatesSource is the read-only surface the Query Engine consumes from
// the Cached Aggregates component (component E, spec.md §4.4): pre-computed
// rankings refreshed on a timer rather than scanned per-request. Wired in
// after both components are constructed (SPEC_FULL.md §9 "no process-wide
// mutable singletons" still allows a late-bound back-reference set once at
// bootstrap).
type AggregatesSource interface {
	// TopValueNames returns the cached top-by-value ranking (spec.md §4.4
	// "top-value names"), already capped and sorted.
	TopValueNames() []NameListItem
	// TopBidNames returns the cached top-bid ranking for window ("week" or
	// "month"), already capped and sorted (spec.md §4.4 "top-bid names").
	TopBidNames(window string) []NameListItem
}

// SetAggregates wires the Cached Aggregates component in after
// construction.
func (e *Engine) SetAggregates(a AggregatesSource) {
	e.aggregates = a
}
