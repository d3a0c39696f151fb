// Package curve provides point arithmetic on prime-field short-Weierstrass
// curves y² = x³ + Ax + B (mod P).
//
// Two backends implement the Curve interface: Weierstrass, a generic
// implementation for arbitrary domain parameters built on saferith, and
// Secp256k1, which delegates to the decred secp256k1 package.
package curve

import (
	"errors"
	"math/big"
)

var (
	// ErrNotOnCurve is returned when a coordinate does not describe a point
	// of the curve.
	ErrNotOnCurve = errors.New("curve: point not on curve")

	// ErrInvalidParams is returned when curve parameters are unusable.
	ErrInvalidParams = errors.New("curve: invalid parameters")
)

// Params contains the parameters of a curve y² = x³ + Ax + B over GF(P).
type Params struct {
	P       *big.Int // prime modulus of the underlying field
	A       *big.Int // linear coefficient, reduced mod P
	B       *big.Int // constant coefficient, reduced mod P
	N       *big.Int // order of the base point
	Gx, Gy  *big.Int // base point
	BitSize int      // bit length of P
	Name    string
}

// Curve is the point arithmetic needed to verify ECDSA signatures.
//
// Implementations are safe for concurrent use.
type Curve interface {
	// Params returns the curve parameters. Callers must not modify them.
	Params() *Params

	// IsOnCurve reports whether p is an affine point of the curve.
	// The point at infinity is not.
	IsOnCurve(p Point) bool

	// Decompress recovers the point with the given x coordinate whose y
	// coordinate has the requested parity.
	Decompress(x *big.Int, odd bool) (Point, error)

	// Add returns p + q.
	Add(p, q Point) Point

	// Double returns 2·p.
	Double(p Point) Point

	// ScalarMult returns k·p for k ≥ 0.
	ScalarMult(p Point, k *big.Int) Point

	// CombinedMult returns u1·p + u2·q in one interleaved pass.
	CombinedMult(u1 *big.Int, p Point, u2 *big.Int, q Point) Point
}

// Point is an affine point. The zero value is the point at infinity.
type Point struct {
	X, Y *big.Int
}

// Infinity returns the identity element.
func Infinity() Point {
	return Point{}
}

// NewPoint returns the affine point (x, y). The coordinates are copied.
func NewPoint(x, y *big.Int) Point {
	return Point{X: new(big.Int).Set(x), Y: new(big.Int).Set(y)}
}

// IsInfinity reports whether p is the point at infinity.
func (p Point) IsInfinity() bool {
	return p.X == nil || p.Y == nil
}

// Equal reports whether p and q are the same point.
func (p Point) Equal(q Point) bool {
	if p.IsInfinity() || q.IsInfinity() {
		return p.IsInfinity() == q.IsInfinity()
	}
	return p.X.Cmp(q.X) == 0 && p.Y.Cmp(q.Y) == 0
}

// Base returns the base point of the curve described by params.
func (params *Params) Base() Point {
	return NewPoint(params.Gx, params.Gy)
}

// Equal reports whether both parameter sets describe the same group.
// Name and BitSize are ignored.
func (params *Params) Equal(other *Params) bool {
	return bigEqual(params.P, other.P) &&
		bigEqual(params.A, other.A) &&
		bigEqual(params.B, other.B) &&
		bigEqual(params.N, other.N) &&
		bigEqual(params.Gx, other.Gx) &&
		bigEqual(params.Gy, other.Gy)
}

func bigEqual(a, b *big.Int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Cmp(b) == 0
}

// inField reports whether 0 ≤ x < p.
func inField(x, p *big.Int) bool {
	return x != nil && x.Sign() >= 0 && x.Cmp(p) < 0
}
