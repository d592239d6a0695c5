package random

import (
	math_rand "math/rand/v2"
)

type fastSingleThreadedGenerator struct {
	*math_rand.Rand
}

// NewFastSingleThreadedGenerator creates a new SingleThreadedGenerator
// that is not suitable for cryptographic purposes. The generator is
// randomly seeded.
func NewFastSingleThreadedGenerator() SingleThreadedGenerator {
	return fastSingleThreadedGenerator{
		Rand: math_rand.New(math_rand.NewPCG(
			CryptoThreadSafeGenerator.Uint64(),
			CryptoThreadSafeGenerator.Uint64())),
	}
}

func (g fastSingleThreadedGenerator) Read(p []byte) (int, error) {
	return mustCryptoRandRead(p)
}
