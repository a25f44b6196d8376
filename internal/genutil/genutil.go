// Package genutil generates randomized keys and values for demos and
// load-style tests, so seed data looks like real strings rather than
// sequential integers.
package genutil

import (
	"hash/fnv"

	"github.com/go-faker/faker/v4"
)

// RandomInt32Keys returns n distinct int32 keys derived from faker-generated
// words, useful for exercising non-sequential insert order.
func RandomInt32Keys(n int) []int32 {
	seen := make(map[int32]bool, n)
	out := make([]int32, 0, n)
	for len(out) < n {
		h := fnv.New32a()
		h.Write([]byte(faker.Word()))
		h.Write([]byte(faker.Word()))
		k := int32(h.Sum32())
		if k < 0 {
			k = -k
		}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}

// RandomWordValue returns a two-word random string, e.g. "sit-voluptatem",
// suitable as a blob value.
func RandomWordValue() string {
	return faker.Word() + "-" + faker.Word()
}

// RandomWordValues returns n independently generated RandomWordValue
// strings.
func RandomWordValues(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = RandomWordValue()
	}
	return out
}
