// SPDX-License-Identifier: MIT

// Package qoc optimizes piecewise-constant control pulses for open quantum
// systems with Lindbladian dynamics.
//
// 🚀 What is qoc?
//
//	A gradient pulse optimizer (GRAPE on superoperators) built from:
//		• Superoperators: spre/spost, commutators, Lindblad dissipators
//		• Propagators: per-timeslot exponentials with exact Fréchet gradients
//		• Fidelity: trace-difference and phase-insensitive overlap errors
//		• Optimizer: box-constrained L-BFGS with an explicit run state machine
//
// Under the hood, everything is organized in subpackages:
//
//	matrix/     complex dense kernels, LU, Hermitian eigen, expm, Fréchet
//	linalg/     Backend capability set: Native and Gonum
//	superop/    operator and superoperator builders
//	propagator/ Engine: cached timeslot propagators, forward/onward chains
//	fidelity/   Measure and Evaluator (error + gradient)
//	pulsegen/   initial pulse policies (RND, LIN, SINE, ...)
//	optimize/   Driver, Config, Result
//	problem/    Problem definitions, presets and YAML loading
//	ampio/      plain-text amplitude tables
//	runstore/   SQLite store of finished runs
//	sweep/      bounded parallel independent runs
//
// Quick example:
//
//	p, _ := problem.Preset(problem.PresetAmpDampingHadamard)
//	res, _ := qoc.Optimize(p, nil, nil)
//	fmt.Println(res.State, res.FinalError)
//
//	go get github.com/katalvlaran/qoc
package qoc
