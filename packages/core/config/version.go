package config

import (
	"strconv"
	"strings"
)

// IsValidVersion reports whether s is a dotted numeric version like
// "1", "0.4", or "1.2.3".
func IsValidVersion(s string) bool {
	if s == "" {
		return false
	}
	for _, part := range strings.Split(s, ".") {
		if _, err := strconv.Atoi(part); err != nil {
			return false
		}
	}
	return true
}

// CompareVersions compares dotted numeric versions: -1 when a < b, 0 when
// equal, 1 when a > b. Missing segments count as zero.
func CompareVersions(a, b string) int {
	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")
	for i := 0; i < len(as) || i < len(bs); i++ {
		av, bv := 0, 0
		if i < len(as) {
			av, _ = strconv.Atoi(as[i])
		}
		if i < len(bs) {
			bv, _ = strconv.Atoi(bs[i])
		}
		if av != bv {
			if av < bv {
				return -1
			}
			return 1
		}
	}
	return 0
}

// CheckMinVersion verifies the running version satisfies the minversion
// key. Development builds (non-numeric versions like "dev") always pass.
func (c *SessionConfig) CheckMinVersion(current string) error {
	if c.MinVersion == "" || !IsValidVersion(current) {
		return nil
	}
	if CompareVersions(current, c.MinVersion) < 0 {
		return &ConfigError{
			File:   c.Path,
			Key:    "minversion",
			Reason: "requires testini >= " + c.MinVersion + ", running " + current,
		}
	}
	return nil
}
