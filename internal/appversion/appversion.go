// Package appversion compares dotted app release versions such as "1.4.2".
package appversion

import (
	"strconv"
	"strings"
)

// Compare returns -1, 0 or 1 as a is older than, equal to or newer than b.
// Components are compared numerically left to right. A missing component
// counts as 0, so "1.2" equals "1.2.0". A component that is not a
// non-negative integer also counts as 0.
func Compare(a, b string) int {
	pa, pb := parts(a), parts(b)
	n := max(len(pa), len(pb))
	for i := 0; i < n; i++ {
		na, nb := at(pa, i), at(pb, i)
		switch {
		case na > nb:
			return 1
		case na < nb:
			return -1
		}
	}
	return 0
}

// NeedsUpdate reports whether current is older than latest.
func NeedsUpdate(current, latest string) bool {
	return Compare(current, latest) < 0
}

func parts(v string) []string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return strings.Split(v, ".")
}

func at(parts []string, i int) uint64 {
	if i >= len(parts) {
		return 0
	}
	n, err := strconv.ParseUint(strings.TrimSpace(parts[i]), 10, 64)
	if err != nil {
		return 0
	}
	return n
}
