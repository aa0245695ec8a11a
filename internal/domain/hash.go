package domain

import (
	"fmt"
	"hash/fnv"
	"math/rand"
)

// hashString computes FNV-1a over the UTF-8 bytes of s. The engine relies on
// an explicit hash rather than a per-process one so that schedules reproduce
// across runs and hosts.
func hashString(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}

// scheduleSeed derives the shuffle seed for a (group, ISO week) pair.
func scheduleSeed(groupID string, weekNumber int) int64 {
	return int64(hashString(fmt.Sprintf("%s-%d", groupID, weekNumber)))
}

// shuffleAreas returns a new slice holding areas permuted by the seed. The
// same seed always yields the same permutation.
func shuffleAreas(areas []string, seed int64) []string {
	out := make([]string, len(areas))
	copy(out, areas)
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}
