package services

// PRNG is a deterministic, non-cryptographic random stream (mulberry32).
// The same seed always reproduces the same float sequence bit-for-bit, which
// keeps synthetic cohorts and placeholder scores stable across runs and
// across ports of this demo. Never use it for anything security-relevant.
type PRNG struct {
	state uint32
}

// NewPRNG seeds a new stream. Only the low 32 bits of the seed matter.
func NewPRNG(seed int64) *PRNG {
	return &PRNG{state: uint32(seed)}
}

// NextFloat advances the stream and returns a float in [0, 1).
func (p *PRNG) NextFloat() float64 {
	p.state += 0x6D2B79F5
	t := p.state
	t = (t ^ (t >> 15)) * (t | 1)
	t ^= t + (t^(t>>7))*(t|61)
	return float64(t^(t>>14)) / 4294967296.0
}

// SeededScores draws count integer scores in 1..5 from a fresh stream.
func SeededScores(count int, seed int64) []int {
	r := NewPRNG(seed)
	out := make([]int, count)
	for i := range out {
		out[i] = int(r.NextFloat()*5) + 1
	}
	return out
}
