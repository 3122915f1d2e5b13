// SPDX-License-Identifier: MIT

// Package matrix provides a small, deterministic complex dense linear-algebra
// toolkit sized for quantum-control problems (superoperators of dimension
// d² with d in the low tens).
//
// The package provides:
//
//   - Dense: a row-major complex128 matrix with bounds-checked At/Set and a
//     strict finite-value policy.
//   - Kernels: Add, Sub, AddScaled, Scale, Mul, Transpose, Conj, Adjoint,
//     Kron, Trace, TraceProduct, norms and AllClose.
//   - Factorizations: pivoted LU (Solve, Inverse) and EigenHermitian (Jacobi
//     on the real-symmetric embedding).
//   - Exponentials: Expm (Padé scaling-and-squaring) and ExpmFrechet (the
//     exact directional derivative used by gradient-based pulse optimization).
//
// Every kernel accepts the Matrix interface, returns a freshly allocated
// *Dense and reports failures through the sentinels in errors.go.
package matrix
