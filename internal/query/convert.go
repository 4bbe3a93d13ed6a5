package query

import "encoding/hex"

// decodeHexASCII decodes a hex-encoded covenant item into its ASCII text,
// degrading to the raw hex on a malformed item (spec.md §3 covenant items
// are hex-encoded).
func decodeHexASCII(s string) string {
	if s == "" {
		return ""
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return s
	}
	return string(raw)
}
