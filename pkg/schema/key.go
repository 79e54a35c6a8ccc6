package schema

import "strings"

// MaxKeyFields bounds composite keys so Key stays a comparable value.
const MaxKeyFields = 4

// Key is the encoded tuple of a record's key fields.
type Key struct {
	n     uint8
	parts [MaxKeyFields]string
}

// NewKey builds a key. Parts beyond MaxKeyFields are dropped; Validate
// rejects descriptors that would need them.
func NewKey(parts ...string) Key {
	var k Key
	for i, p := range parts {
		if i == MaxKeyFields {
			break
		}
		k.parts[i] = p
		k.n++
	}
	return k
}

func (k Key) Len() int { return int(k.n) }

func (k Key) Parts() []string {
	return append([]string(nil), k.parts[:k.n]...)
}

func (k Key) String() string {
	return strings.Join(k.parts[:k.n], ",")
}

// Compare orders keys part by part; a shorter key sorts before a longer one
// sharing its prefix.
func (k Key) Compare(o Key) int {
	for i := 0; i < int(min(k.n, o.n)); i++ {
		if c := strings.Compare(k.parts[i], o.parts[i]); c != 0 {
			return c
		}
	}
	switch {
	case k.n < o.n:
		return -1
	case k.n > o.n:
		return 1
	}
	return 0
}
