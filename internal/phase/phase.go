// Package phase computes the name-auction lifecycle windows and state
// transitions shared by the Query Engine (getNamesByStatus, getName) and
// Cached Aggregates (lifecycle-bucketed counts), per spec.md §4.2's state
// table and §4.3's getNamesByStatus window table.
package phase

import "github.com/dxpool/hns-backend/internal/model"

// Status is a name-auction lifecycle state.
type Status string

// Lifecycle statuses, spec.md §4.2/§4.3.
const (
	StatusOpening Status = "OPENING"
	StatusBidding Status = "BIDDING"
	StatusReveal  Status = "REVEAL"
	StatusClosed  Status = "CLOSED"
	// StatusRenewal is CLOSED's nextState per spec.md §9's ambiguous
	// "nextState fallthrough" resolution: the CLOSED→RENEWAL intent from
	// the API docs is preserved rather than the source's accidental
	// fallthrough to OPENING.
	StatusRenewal Status = "RENEWAL"
)

// Window is an (minExclusive, maxInclusive] height window within which a
// name's Open height places it in a given Status, per spec.md §4.3's table.
type Window struct {
	MinExclusive uint32
	MaxInclusive uint32
}

// WindowForStatus returns the height window for status given the current
// chain tip height and consensus params (spec.md §4.3 getNamesByStatus).
// ok is false for an unrecognized status.
func WindowForStatus(status Status, tipHeight uint32, params model.ConsensusParams) (Window, bool) {
	openPeriod := params.OpenPeriod()
	biddingEnd := openPeriod + params.BiddingPeriod
	revealEnd := biddingEnd + params.RevealPeriod

	sub := func(h, d uint32) uint32 {
		if d > h {
			return 0
		}
		return h - d
	}

	switch status {
	case StatusOpening:
		return Window{MinExclusive: sub(tipHeight, openPeriod), MaxInclusive: tipHeight}, true
	case StatusBidding:
		return Window{MinExclusive: sub(tipHeight, biddingEnd), MaxInclusive: sub(tipHeight, openPeriod)}, true
	case StatusReveal:
		return Window{MinExclusive: sub(tipHeight, revealEnd), MaxInclusive: sub(tipHeight, biddingEnd)}, true
	case StatusClosed:
		return Window{MinExclusive: 0, MaxInclusive: sub(tipHeight, revealEnd)}, true
	default:
		return Window{}, false
	}
}

// StatusForOpenHeight derives a name's current status from its Open height
// and the chain tip, by testing each window in auction order. Returns
// StatusClosed if openHeight predates every other window (a name open at
// height 0 with a huge tip, etc.).
func StatusForOpenHeight(openHeight, tipHeight uint32, params model.ConsensusParams) Status {
	for _, s := range []Status{StatusOpening, StatusBidding, StatusReveal} {
		w, _ := WindowForStatus(s, tipHeight, params)
		if openHeight > w.MinExclusive && openHeight <= w.MaxInclusive {
			return s
		}
	}
	return StatusClosed
}

// nextStatus maps the table in spec.md §4.2 to each status's successor.
var nextStatus = map[Status]Status{
	StatusOpening: StatusBidding,
	StatusBidding: StatusReveal,
	StatusReveal:  StatusClosed,
	StatusClosed:  StatusRenewal,
}

// NextState returns the successor of status per spec.md §9's resolution of
// the ambiguous nextState fallthrough: CLOSED's successor is RENEWAL, and
// any unrecognized status defaults to OPENING.
func NextState(status Status) Status {
	if next, ok := nextStatus[status]; ok {
		return next
	}
	return StatusOpening
}

// ParseStatus parses a case-insensitive status name from an HTTP query
// parameter (spec.md §6.1 /names status values), returning ok=false for
// anything not in {opening, bidding, reveal, closed, locked}. "locked" maps
// to StatusClosed: a CLOSED-but-not-yet-registered name's funds are locked
// until REGISTER, which is the colloquial name the API uses for the same
// window.
func ParseStatus(s string) (Status, bool) {
	switch toLower(s) {
	case "opening":
		return StatusOpening, true
	case "bidding":
		return StatusBidding, true
	case "reveal":
		return StatusReveal, true
	case "closed", "locked":
		return StatusClosed, true
	default:
		return "", false
	}
}

func toLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
