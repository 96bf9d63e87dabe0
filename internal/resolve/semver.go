// Package resolve picks one best "latest version" fact per vendor from
// annotated sentences.
package resolve

import (
	"regexp"
	"strconv"
	"strings"
)

var nonDigits = regexp.MustCompile(`[^\d]+`)

// Key is the numeric component tuple of a version string
type Key []int

// SemverKey splits v on runs of non-digits and keeps the digit groups.
// A string with no digits yields [0]. "v1" is [1], "2.10.1" is [2 10 1].
func SemverKey(v string) Key {
	var k Key
	for _, part := range nonDigits.Split(strings.TrimSpace(v), -1) {
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			// digit run too long for int; saturate rather than drop it
			n = int(^uint(0) >> 1)
		}
		k = append(k, n)
	}
	if len(k) == 0 {
		return Key{0}
	}
	return k
}

// Compare is tuple comparison: component by component, then by length.
// A longer key with an equal prefix is greater, so [1 2] < [1 2 0].
func (k Key) Compare(other Key) int {
	for i := 0; i < len(k) && i < len(other); i++ {
		switch {
		case k[i] < other[i]:
			return -1
		case k[i] > other[i]:
			return 1
		}
	}
	switch {
	case len(k) < len(other):
		return -1
	case len(k) > len(other):
		return 1
	}
	return 0
}

func (k Key) String() string {
	parts := make([]string, len(k))
	for i, n := range k {
		parts[i] = strconv.Itoa(n)
	}
	return "(" + strings.Join(parts, ",") + ")"
}

// RankKey orders candidate facts: fact date as a plain string first,
// then the version key
type RankKey struct {
	Date    string
	Version Key
}

// Compare orders two rank keys
func (r RankKey) Compare(other RankKey) int {
	if c := strings.Compare(r.Date, other.Date); c != 0 {
		return c
	}
	return r.Version.Compare(other.Version)
}

// Greater reports whether r ranks strictly above other
func (r RankKey) Greater(other RankKey) bool {
	return r.Compare(other) > 0
}
