package model

// CovenantType is the integer covenant-action enum carried by a coin's
// covenant, per spec.md §3 ("covenant `type` (integer from the covenant
// enum)") and the GLOSSARY's covenant list.
type CovenantType int

// Covenant type constants. Numeric values follow HNS's on-chain covenant
// ordering (NONE is the zero value so a coin record's zero-valued field
// decodes as "no covenant" rather than a fabricated action).
const (
	CovenantNone CovenantType = iota
	CovenantClaim
	CovenantOpen
	CovenantBid
	CovenantReveal
	CovenantRedeem
	CovenantRegister
	CovenantUpdate
	CovenantRenew
	CovenantTransfer
	CovenantFinalize
	CovenantRevoke
)

var covenantNames = map[CovenantType]string{
	CovenantNone:      "NONE",
	CovenantClaim:     "CLAIM",
	CovenantOpen:      "OPEN",
	CovenantBid:       "BID",
	CovenantReveal:    "REVEAL",
	CovenantRedeem:    "REDEEM",
	CovenantRegister:  "REGISTER",
	CovenantUpdate:    "UPDATE",
	CovenantRenew:     "RENEW",
	CovenantTransfer:  "TRANSFER",
	CovenantFinalize:  "FINALIZE",
	CovenantRevoke:    "REVOKE",
}

func (c CovenantType) String() string {
	if s, ok := covenantNames[c]; ok {
		return s
	}
	return "UNKNOWN"
}

// IsNameCovenant reports whether c is one of the covenant actions that
// participates in the name auction lifecycle (spec.md §3: "nameHash
// (present iff covenant is a name covenant)").
func (c CovenantType) IsNameCovenant() bool {
	return c != CovenantNone
}

// Covenant is the decoded covenant attached to a coin.
type Covenant struct {
	Type  CovenantType `bson:"type" json:"type"`
	Items []string     `bson:"items" json:"items"` // hex-encoded covenant items
}

// HistoryAction maps a covenant type to the label used by
// getNameHistory (spec.md §4.3).
func (c CovenantType) HistoryAction() string {
	switch c {
	case CovenantOpen:
		return "Opened"
	case CovenantBid:
		return "Bid"
	case CovenantReveal:
		return "Reveal"
	case CovenantRegister:
		return "Register"
	case CovenantRedeem:
		return "Redeem"
	case CovenantUpdate:
		return "Update"
	case CovenantRenew:
		return "Renew"
	case CovenantTransfer:
		return "Transfer"
	case CovenantFinalize:
		return "Finalize"
	case CovenantRevoke:
		return "Revoke"
	case CovenantClaim:
		return "Claimed"
	default:
		return "Unknown"
	}
}
