package cache

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Key identifies a cache entry. Segments are compared by value: two keys
// whose segments encode to the same JSON address the same entry, so map
// segments with equal contents match regardless of construction order.
type Key []any

// Hash returns the canonical form of the key. Each segment is a complete JSON
// value followed by "/", so segment-wise prefix matching is a string prefix test.
func (k Key) Hash() string {
	var b strings.Builder
	for _, seg := range k {
		b.WriteString(encodeSegment(seg))
		b.WriteByte('/')
	}
	return b.String()
}

// HasPrefix reports whether prefix matches the leading segments of k.
// The empty key is a prefix of every key.
func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix) > len(k) {
		return false
	}
	return strings.HasPrefix(k.Hash(), prefix.Hash())
}

// Equal reports value equality.
func (k Key) Equal(other Key) bool {
	return len(k) == len(other) && k.Hash() == other.Hash()
}

func (k Key) String() string {
	parts := make([]string, len(k))
	for i, seg := range k {
		parts[i] = encodeSegment(seg)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func encodeSegment(seg any) string {
	raw, err := json.Marshal(seg)
	if err != nil {
		return fmt.Sprintf("%q", fmt.Sprint(seg))
	}
	return string(raw)
}
