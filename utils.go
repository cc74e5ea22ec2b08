package logistics

import (
	"fmt"
	"strings"
)

// FunctionID composes "<address>::<module>::<function>".
func FunctionID(moduleAddress, module, function string) string {
	return moduleAddress + "::" + module + "::" + function
}

// ParseFunctionID splits a module-qualified identifier into its three parts.
func ParseFunctionID(id string) (string, string, string, error) {
	parts := strings.Split(id, "::")
	if len(parts) != 3 {
		return "", "", "", fmt.Errorf("invalid function id %q", id)
	}
	for _, p := range parts {
		if p == "" {
			return "", "", "", fmt.Errorf("invalid function id %q", id)
		}
	}
	return parts[0], parts[1], parts[2], nil
}

func isHexChar(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// IsAddress reports whether s looks like a 0x-prefixed ledger account address.
func IsAddress(s string) bool {
	if len(s) < 3 || len(s) > 66 || !strings.HasPrefix(s, "0x") {
		return false
	}
	for i := 2; i < len(s); i++ {
		if !isHexChar(s[i]) {
			return false
		}
	}
	return true
}

func NormalizeAddress(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ShortAddress renders an address the way the wallet button shows it.
func ShortAddress(address string) string {
	if len(address) <= 10 {
		return address
	}
	return address[:6] + "..." + address[len(address)-4:]
}
