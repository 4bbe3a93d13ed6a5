package query

import (
	"context"
	"strconv"

	"github.com/dxpool/hns-backend/internal/apperr"
)

// Search implements spec.md §4.3 search: every matching heuristic appends a
// hit, non-matches are silently skipped (spec.md §8 scenario 6). A query
// that matched as a block height is not also offered as a name.
func (e *Engine) Search(ctx context.Context, q string) ([]SearchHit, error) {
	tip, err := e.client.GetTip(ctx)
	if err != nil {
		return nil, apperr.Transient("upstream_error", "fetching tip", err)
	}

	var hits []SearchHit

	isBlockHeight := false
	if h, ok := parseHeight(q); ok && h <= tip.Height {
		isBlockHeight = true
		hits = append(hits, SearchHit{Type: "Block", URL: "/block/" + strconv.FormatUint(uint64(h), 10)})
	}
	if isHex64(q) {
		hits = append(hits, SearchHit{Type: "Transaction", URL: "/tx/" + q})
		hits = append(hits, SearchHit{Type: "Block", URL: "/block/" + q})
	}
	if isAddress(q) {
		hits = append(hits, SearchHit{Type: "Address", URL: "/address/" + q})
	}
	if !isBlockHeight && verifyName(q) {
		hits = append(hits, SearchHit{Type: "Name", URL: "/name/" + q})
	}
	return hits, nil
}

func parseHeight(s string) (uint32, bool) {
	if s == "" {
		return 0, false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint32(v), true
}

func isHex64(s string) bool {
	if len(s) != 64 {
		return false
	}
	for _, c := range s {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return true
}

// addressPrefixes are the bech32 human-readable parts HNS addresses use per
// network (mainnet, testnet, regtest, simnet).
var addressPrefixes = []string{"hs1", "ts1", "rs1", "ss1"}

const bech32Charset = "qpzry9x8gf2tvdw0s3jn54khce6mua7l"

// isAddress performs a lightweight bech32-shape check: correct
// network prefix, valid charset, plausible length. Full checksum
// verification is out of scope for a read-only search heuristic.
func isAddress(s string) bool {
	for _, prefix := range addressPrefixes {
		if len(s) > len(prefix) && s[:len(prefix)] == prefix {
			rest := s[len(prefix):]
			if len(rest) < 6 || len(rest) > 90 {
				return false
			}
			for _, c := range rest {
				if c >= 'A' && c <= 'Z' {
					c += 'a' - 'A'
				}
				if indexByte(bech32Charset, byte(c)) < 0 {
					return false
				}
			}
			return true
		}
	}
	return false
}

func indexByte(s string, b byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return i
		}
	}
	return -1
}

// verifyName mirrors the upstream consensus rules for a syntactically
// valid root-zone name: 1-63 characters, lowercase alphanumeric and
// hyphen, never leading/trailing hyphen (spec.md §4.3 "rules.verifyString").
func verifyName(s string) bool {
	if len(s) == 0 || len(s) > 63 {
		return false
	}
	if s[0] == '-' || s[len(s)-1] == '-' {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= '0' && c <= '9':
		case c == '-':
		default:
			return false
		}
	}
	return true
}
