package testutil

// IdentityRand makes a Fisher-Yates shuffle a no-op by always picking
// the last index of the range.
type IdentityRand struct{}

func (IdentityRand) IntN(n int) int { return n - 1 }

// SeqRand replays a fixed sequence of values, each reduced modulo n.
// After the sequence is exhausted it behaves like IdentityRand.
type SeqRand struct {
	Values []int
	pos    int
}

func (r *SeqRand) IntN(n int) int {
	if r.pos >= len(r.Values) {
		return n - 1
	}
	v := r.Values[r.pos] % n
	r.pos++
	return v
}

// ZeroRand always picks index 0. A Fisher-Yates shuffle driven by it
// rotates the slice left by one: [a b c] becomes [b c a].
type ZeroRand struct{}

func (ZeroRand) IntN(int) int { return 0 }
