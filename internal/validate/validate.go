// Package validate holds the side-effect-free predicates used to check configuration
// values before they are persisted.
//
// Predicates never fail and never mutate anything; they report well-formedness only.
// Callers turn a false result into an invalid-parameter error naming the field.
package validate

import "net/netip"

// Length and range bounds for network configuration values.
const (
	MinSSIDLength = 1
	MaxSSIDLength = 32

	// WPA2 passphrases are 8-63 printable characters; a 64 character value is a raw
	// pre-shared key in hexadecimal.
	MinPassphraseLength = 8
	MaxPassphraseLength = 63
	PSKHexLength        = 64

	MinHostnameLength = 1
	MaxHostnameLength = 32

	MinChannel = 1
	MaxChannel = 14

	MinPort = 1
	MaxPort = 65535
)

// IsSSIDValid reports whether s is a usable network name.
// SSIDs must be non-empty and at most 32 bytes.
func IsSSIDValid(s string) bool {
	return len(s) >= MinSSIDLength && len(s) <= MaxSSIDLength
}

// IsPassphraseValid reports whether s is an acceptable network passphrase.
// An empty passphrase selects an open network.
func IsPassphraseValid(s string) bool {
	if s == "" {
		return true
	}
	if len(s) == PSKHexLength {
		return isHex(s)
	}
	if len(s) < MinPassphraseLength || len(s) > MaxPassphraseLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 || s[i] > 0x7e {
			return false
		}
	}
	return true
}

// IsIPv4Valid reports whether s is exactly four dot-separated decimal octets.
// Leading zeros, signs, zones and surrounding whitespace are rejected.
func IsIPv4Valid(s string) bool {
	addr, err := netip.ParseAddr(s)
	return err == nil && addr.Is4()
}

// IsChannelValid reports whether n is inside the inclusive radio channel range.
func IsChannelValid(n int) bool {
	return n >= MinChannel && n <= MaxChannel
}

// IsHostnameValid reports whether s can be used as the device hostname.
// Hostnames are 1-32 characters of letters, digits and hyphens, and may not start
// or end with a hyphen.
func IsHostnameValid(s string) bool {
	if len(s) < MinHostnameLength || len(s) > MaxHostnameLength {
		return false
	}
	if s[0] == '-' || s[len(s)-1] == '-' {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-':
		default:
			return false
		}
	}
	return true
}

// IsPortValid reports whether n is a usable TCP port.
func IsPortValid(n int) bool {
	return n >= MinPort && n <= MaxPort
}

func isHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F') {
			return false
		}
	}
	return true
}
