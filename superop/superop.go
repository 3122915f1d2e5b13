// SPDX-License-Identifier: MIT

// Package superop builds Liouvillian superoperators and related maps acting
// on row-stacked density matrices.
//
// Convention: vec(ρ)[i·d+j] = ρ[i,j], hence vec(A·ρ·B) = (A ⊗ Bᵀ)·vec(ρ).
// Under this convention
//
//	Spre(A)        = A ⊗ I
//	Spost(B)       = I ⊗ Bᵀ
//	Commutator(A)  = −i(A ⊗ I − I ⊗ Aᵀ)
//	Dissipator(L)  = L ⊗ L* − ½(L†L ⊗ I + I ⊗ (L†L)ᵀ)
//	ToSuper(U)     = U ⊗ U*
//
// and Liouvillian(H, L₁..Lₖ) = Commutator(H) + Σ Dissipator(Lₖ), a d²×d²
// generator of dρ/dt. All builders are pure.
package superop

import (
	"errors"
	"fmt"

	"github.com/katalvlaran/qoc/matrix"
)

// Spre returns A ⊗ I (left multiplication ρ ↦ Aρ).
func Spre(a matrix.Matrix) (*matrix.Dense, error) {
	if err := matrix.ValidateSquare(a); err != nil {
		return nil, superopErrorf(opSpre, wrapNil(err))
	}
	id, err := matrix.NewIdentity(a.Rows())
	if err != nil {
		return nil, superopErrorf(opSpre, err)
	}

	return matrix.Kron(a, id)
}

// Spost returns I ⊗ Aᵀ (right multiplication ρ ↦ ρA).
func Spost(a matrix.Matrix) (*matrix.Dense, error) {
	if err := matrix.ValidateSquare(a); err != nil {
		return nil, superopErrorf(opSpost, wrapNil(err))
	}
	id, err := matrix.NewIdentity(a.Rows())
	if err != nil {
		return nil, superopErrorf(opSpost, err)
	}
	at, err := matrix.Transpose(a)
	if err != nil {
		return nil, superopErrorf(opSpost, err)
	}

	return matrix.Kron(id, at)
}

// Commutator returns −i(A ⊗ I − I ⊗ Aᵀ), the superoperator of ρ ↦ −i[A, ρ].
// Used both for the Hamiltonian part of the Liouvillian and for bare control
// operators.
func Commutator(a matrix.Matrix) (*matrix.Dense, error) {
	pre, err := Spre(a)
	if err != nil {
		return nil, superopErrorf(opCommutator, err)
	}
	post, err := Spost(a)
	if err != nil {
		return nil, superopErrorf(opCommutator, err)
	}
	diff, err := matrix.Sub(pre, post)
	if err != nil {
		return nil, superopErrorf(opCommutator, err)
	}

	return matrix.Scale(diff, -1i)
}

// Dissipator returns L ⊗ L* − ½(L†L ⊗ I + I ⊗ (L†L)ᵀ).
func Dissipator(l matrix.Matrix) (*matrix.Dense, error) {
	if err := matrix.ValidateSquare(l); err != nil {
		return nil, superopErrorf(opDissipator, wrapNil(err))
	}
	lc, err := matrix.Conj(l)
	if err != nil {
		return nil, superopErrorf(opDissipator, err)
	}
	jump, err := matrix.Kron(l, lc)
	if err != nil {
		return nil, superopErrorf(opDissipator, err)
	}
	ld, err := matrix.Adjoint(l)
	if err != nil {
		return nil, superopErrorf(opDissipator, err)
	}
	ldl, err := matrix.Mul(ld, l)
	if err != nil {
		return nil, superopErrorf(opDissipator, err)
	}
	pre, err := Spre(ldl)
	if err != nil {
		return nil, superopErrorf(opDissipator, err)
	}
	post, err := Spost(ldl)
	if err != nil {
		return nil, superopErrorf(opDissipator, err)
	}
	anti, err := matrix.Add(pre, post)
	if err != nil {
		return nil, superopErrorf(opDissipator, err)
	}

	return matrix.AddScaled(jump, anti, -0.5)
}

// Liouvillian builds the d²×d² generator from a Hamiltonian and Lindblad
// (collapse) operators. Collapse operators carry their rates: pass √γ·L.
//
// Errors:
//   - ErrEmptyOperator for a nil Hamiltonian or collapse operator.
//   - ErrDimensionMismatch when any operator is not d×d (d from h).
//   - ErrNotHermitian when h fails the Hermitian check (see WithEpsilon).
func Liouvillian(h matrix.Matrix, cOps []matrix.Matrix, opts ...Option) (*matrix.Dense, error) {
	o := gatherOptions(opts...)
	if err := matrix.ValidateNotNil(h); err != nil {
		return nil, superopErrorf(opLiouvillian, ErrEmptyOperator)
	}
	if h.Rows() != h.Cols() {
		return nil, superopErrorf(opLiouvillian, fmt.Errorf("hamiltonian %dx%d: %w", h.Rows(), h.Cols(), ErrDimensionMismatch))
	}
	d := h.Rows()
	if !o.skipHermitian {
		if err := matrix.ValidateHermitian(h, o.eps); err != nil {
			return nil, superopErrorf(opLiouvillian, fmt.Errorf("%w: %w", ErrNotHermitian, err))
		}
	}
	for k, c := range cOps {
		if err := matrix.ValidateNotNil(c); err != nil {
			return nil, superopErrorf(opLiouvillian, fmt.Errorf("collapse operator %d: %w", k, ErrEmptyOperator))
		}
		if c.Rows() != d || c.Cols() != d {
			return nil, superopErrorf(opLiouvillian, fmt.Errorf("collapse operator %d is %dx%d, want %dx%d: %w", k, c.Rows(), c.Cols(), d, d, ErrDimensionMismatch))
		}
	}

	gen, err := Commutator(h)
	if err != nil {
		return nil, superopErrorf(opLiouvillian, err)
	}
	for _, c := range cOps {
		dis, err := Dissipator(c)
		if err != nil {
			return nil, superopErrorf(opLiouvillian, err)
		}
		if gen, err = matrix.Add(gen, dis); err != nil {
			return nil, superopErrorf(opLiouvillian, err)
		}
	}

	return gen, nil
}

// ControlGenerators returns Commutator(A) for each control operator, checking
// every operator is d×d.
func ControlGenerators(d int, ctrls []matrix.Matrix) ([]*matrix.Dense, error) {
	out := make([]*matrix.Dense, 0, len(ctrls))
	for j, c := range ctrls {
		if err := matrix.ValidateNotNil(c); err != nil {
			return nil, superopErrorf(opCommutator, fmt.Errorf("control %d: %w", j, ErrEmptyOperator))
		}
		if c.Rows() != d || c.Cols() != d {
			return nil, superopErrorf(opCommutator, fmt.Errorf("control %d is %dx%d, want %dx%d: %w", j, c.Rows(), c.Cols(), d, d, ErrDimensionMismatch))
		}
		g, err := Commutator(c)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}

	return out, nil
}

// ToSuper returns U ⊗ U*, the superoperator of ρ ↦ UρU†.
func ToSuper(u matrix.Matrix) (*matrix.Dense, error) {
	if err := matrix.ValidateSquare(u); err != nil {
		return nil, superopErrorf(opToSuper, wrapNil(err))
	}
	uc, err := matrix.Conj(u)
	if err != nil {
		return nil, superopErrorf(opToSuper, err)
	}

	return matrix.Kron(u, uc)
}

// Vec returns the d²×1 row-stacked column of a d×d density matrix.
func Vec(rho matrix.Matrix) (*matrix.Dense, error) {
	if err := matrix.ValidateSquare(rho); err != nil {
		return nil, superopErrorf(opVec, wrapNil(err))
	}
	d, err := matrix.AsDense(rho)
	if err != nil {
		return nil, superopErrorf(opVec, err)
	}

	return matrix.NewDenseFrom(d.Rows()*d.Cols(), 1, d.RawCopy())
}

// Unvec reverses Vec for a d²×1 column.
func Unvec(v matrix.Matrix, d int) (*matrix.Dense, error) {
	if err := matrix.ValidateNotNil(v); err != nil {
		return nil, superopErrorf(opUnvec, ErrEmptyOperator)
	}
	if d <= 0 || v.Cols() != 1 || v.Rows() != d*d {
		return nil, superopErrorf(opUnvec, ErrDimensionMismatch)
	}
	dv, err := matrix.AsDense(v)
	if err != nil {
		return nil, superopErrorf(opUnvec, err)
	}

	return matrix.NewDenseFrom(d, d, dv.RawCopy())
}

// wrapNil maps the matrix nil sentinel onto ErrEmptyOperator and any other
// shape failure onto ErrDimensionMismatch while keeping the cause.
func wrapNil(err error) error {
	if errors.Is(err, matrix.ErrNilMatrix) {
		return fmt.Errorf("%w: %w", ErrEmptyOperator, err)
	}

	return fmt.Errorf("%w: %w", ErrDimensionMismatch, err)
}
