package tor

import (
	"regexp"
	"strings"
)

// OnionSuffix is the top-level domain of onion services.
const OnionSuffix = ".onion"

// onionPattern matches v3 (56 characters) and legacy v2 (16 characters)
// base32 onion labels, optionally preceded by subdomains.
var onionPattern = regexp.MustCompile(`^(?:[a-z0-9-]+\.)*(?:[a-z2-7]{56}|[a-z2-7]{16})\.onion$`)

// IsOnionHost reports whether host is an onion service address.
// A trailing dot is ignored and the comparison is case-insensitive.
func IsOnionHost(host string) bool {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	if !strings.HasSuffix(host, OnionSuffix) {
		return false
	}
	return onionPattern.MatchString(host)
}
