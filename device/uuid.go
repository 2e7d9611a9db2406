package device

import "strings"

// NormalizeUUID strips dashes and lowercases uuid so 16-bit short forms
// and 128-bit canonical forms compare equal regardless of how the caller
// or BlueZ happened to format them.
func NormalizeUUID(uuid string) string {
	return strings.ToLower(strings.ReplaceAll(uuid, "-", ""))
}
