package causal

import (
	"encoding/binary"
	"hash/fnv"
	"math/rand/v2"

	"github.com/google/uuid"
)

// NewRand returns a generator seeded from the run seed, the user and any
// labels (treatment key, outcome, partner role). Each estimation call gets
// its own stream, so results do not depend on iteration order.
func NewRand(base uint64, userID uuid.UUID, labels ...string) *rand.Rand {
	hi := binary.BigEndian.Uint64(userID[:8])
	lo := binary.BigEndian.Uint64(userID[8:])
	h := fnv.New64a()
	for _, l := range labels {
		_, _ = h.Write([]byte(l))
		_, _ = h.Write([]byte{0})
	}
	return rand.New(rand.NewPCG(base^hi, lo^h.Sum64()))
}

// splitRand derives an independent child generator from rng.
func splitRand(rng *rand.Rand) *rand.Rand {
	return rand.New(rand.NewPCG(rng.Uint64(), rng.Uint64()))
}
