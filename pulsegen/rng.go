// SPDX-License-Identifier: MIT

package pulsegen

import "math/rand"

// defaultRNGSeed replaces seed 0 so the zero value still yields a fixed stream.
const defaultRNGSeed int64 = 1

// rngFromSeed returns a deterministic generator; seed 0 maps to defaultRNGSeed.
func rngFromSeed(seed int64) *rand.Rand {
	if seed == 0 {
		seed = defaultRNGSeed
	}

	return rand.New(rand.NewSource(seed))
}

// deriveSeed mixes a parent seed with a stream index (SplitMix64 finalizer).
// Control column j draws from stream j, so adding a control never perturbs
// the samples of the existing ones.
func deriveSeed(parent int64, stream uint64) int64 {
	x := uint64(parent) ^ (stream + 0x9e3779b97f4a7c15)
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	x ^= x >> 31

	return int64(x)
}

// columnRNG returns the generator for control column j.
func columnRNG(seed int64, j int) *rand.Rand {
	if seed == 0 {
		seed = defaultRNGSeed
	}

	return rngFromSeed(deriveSeed(seed, uint64(j)))
}
