package simulate

import rand "math/rand/v2"

const goldenRatio64 = 0x9e3779b97f4a7c15

// newRand returns a PCG generator for one table. Tables sharing a base seed
// get independent, reproducible streams.
func newRand(seed int64, table int) *rand.Rand {
	u := uint64(seed) + uint64(table)*goldenRatio64
	return rand.New(rand.NewPCG(splitmix(u), splitmix(u+goldenRatio64)))
}

func splitmix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}

// rngReader adapts a generator to io.Reader
type rngReader struct {
	r *rand.Rand
}

func (rr rngReader) Read(p []byte) (int, error) {
	for i := 0; i < len(p); i += 8 {
		v := rr.r.Uint64()
		for j := 0; j < 8 && i+j < len(p); j++ {
			p[i+j] = byte(v >> (8 * j))
		}
	}
	return len(p), nil
}
