package util

import "math/rand"

// New returns a deterministic source; seed 0 behaves like seed 1.
func New(seed int64) *rand.Rand {
	if seed == 0 {
		seed = 1
	}
	return rand.New(rand.NewSource(seed))
}

// Between draws uniformly from [lo, hi].
func Between(r *rand.Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + r.Intn(hi-lo+1)
}

// Pick draws k distinct values from [0, n) in ascending order.
func Pick(r *rand.Rand, n, k int) []int {
	k = min(max(k, 0), n)
	picked := r.Perm(n)[:k]
	out := make([]int, 0, k)
	seen := make([]bool, n)
	for _, v := range picked {
		seen[v] = true
	}
	for v := 0; v < n; v++ {
		if seen[v] {
			out = append(out, v)
		}
	}
	return out
}
