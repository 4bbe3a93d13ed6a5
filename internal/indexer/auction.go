package indexer

// applyReveal applies the second-price sealed-bid update rule for a single
// REVEAL of value v against a name's current (value, highest) pair
// (spec.md §4.2 step 2, §8 scenario 1). highest always tracks the largest
// reveal seen; value tracks the price the eventual winner pays (the
// second-largest), so the invariant value <= highest holds after every call.
func applyReveal(value, highest, v uint64) (newValue, newHighest uint64) {
	switch {
	case v <= value:
		return value, highest
	case v <= highest:
		return v, highest
	default:
		return highest, v
	}
}
