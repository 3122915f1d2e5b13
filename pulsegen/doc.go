// SPDX-License-Identifier: MIT

// Package pulsegen generates initial control-amplitude tables for pulse
// optimization. Each policy is a pure function of (timeslot count, control
// count, seed, options); fixed inputs reproduce bit-identical tables.
//
//	amps, err := pulsegen.Generate(pulsegen.Random, 10, 2, 42,
//		pulsegen.WithScaling(0.5), pulsegen.WithBounds(-1, 1))
//
// Tables are indexed amps[timeslot][control].
package pulsegen
