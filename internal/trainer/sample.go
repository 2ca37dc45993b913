// vim-deepl-go - personal vocabulary and spaced-repetition service
// Copyright 2026 Romariozh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/romariozh/vim-deepl-go

package trainer

import (
	"math"
	"math/rand"
)

// triangularIndex draws an index in [0, n) from a triangular
// distribution whose mode sits at index 0, per spec.md §4.6's "sample
// with a triangular distribution biased toward index 0". Derived from
// the inverse CDF of a triangular(min=0, max=n, mode=0) distribution:
// x = n * (1 - sqrt(1 - u)).
func triangularIndex(n int) int {
	if n <= 1 {
		return 0
	}
	u := rand.Float64()
	x := float64(n) * (1 - math.Sqrt(1-u))
	idx := int(x)
	if idx >= n {
		idx = n - 1
	}
	if idx < 0 {
		idx = 0
	}
	return idx
}
