package ecsver

import (
	"fmt"
	"math/big"

	"github.com/mahdiidarabi/ecsver/pkg/curve"
)

// PublicKey is the signer's public point. It lies on the domain's curve and
// is never the point at infinity.
type PublicKey struct {
	Point curve.Point
}

// DecompressPublicKey recovers the key with x coordinate x whose y coordinate
// is odd when odd is set.
func DecompressPublicKey(domain *DomainParameters, x *big.Int, odd bool) (*PublicKey, error) {
	p, err := domain.Curve.Decompress(x, odd)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPointNotOnCurve, err)
	}
	return &PublicKey{Point: p}, nil
}

// NewPublicKey returns the key for the affine point (x, y).
func NewPublicKey(domain *DomainParameters, x, y *big.Int) (*PublicKey, error) {
	if x == nil || y == nil {
		return nil, fmt.Errorf("%w: missing coordinate", ErrPointNotOnCurve)
	}
	p := curve.NewPoint(x, y)
	if !domain.Curve.IsOnCurve(p) {
		return nil, fmt.Errorf("%w: (%s, %s)", ErrPointNotOnCurve, x.Text(16), y.Text(16))
	}
	return &PublicKey{Point: p}, nil
}

// Compressed returns the x coordinate and the parity of y.
func (k *PublicKey) Compressed() (x *big.Int, odd bool) {
	return new(big.Int).Set(k.Point.X), k.Point.Y.Bit(0) == 1
}
