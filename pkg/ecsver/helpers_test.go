package ecsver

import (
	"crypto/rand"
	"math/big"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mahdiidarabi/ecsver/pkg/curve"
)

// fixturesDir returns the absolute path to the repository's fixtures directory.
func fixturesDir() string {
	_, f, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(f), "..", "..", "fixtures")
}

// toyFixture returns the path of a file in fixtures/toy23.
//
// The toy domain is y² = x³ + x + 1 over GF(23) with G = (5, 4) of order 7.
// The key is d = 3, Q = (13, 16); message.ecs holds (6, 5), a signature of
// the SHA-1 digest of message.txt, which is 4 mod 7.
func toyFixture(name string) string {
	return filepath.Join(fixturesDir(), "toy23", name)
}

func loadToyDomain(t *testing.T) *DomainParameters {
	t.Helper()
	d, err := LoadDomainFile(toyFixture("common.ecs"))
	require.NoError(t, err)
	return d
}

func loadToyKey(t *testing.T, d *DomainParameters) *PublicKey {
	t.Helper()
	k, err := LoadPublicKeyFile(toyFixture("public.ecs"), d)
	require.NoError(t, err)
	return k
}

// testSigner produces textbook ECDSA signatures on any domain.
type testSigner struct {
	domain *DomainParameters
	d      *big.Int
	key    *PublicKey
}

func newTestSigner(t *testing.T, domain *DomainParameters) *testSigner {
	t.Helper()
	d := randomNonZero(t, domain.Q)
	p := domain.Curve.ScalarMult(domain.G, d)
	key, err := NewPublicKey(domain, p.X, p.Y)
	require.NoError(t, err)
	return &testSigner{domain: domain, d: d, key: key}
}

// sign computes r = x(k·G) mod q and s = k⁻¹(e + r·d) mod q, retrying with
// a fresh nonce until both are non-zero.
func (s *testSigner) sign(t *testing.T, digest *big.Int) *Signature {
	t.Helper()
	q := s.domain.Q
	e := new(big.Int).Mod(digest, q)
	for {
		k := randomNonZero(t, q)
		p := s.domain.Curve.ScalarMult(s.domain.G, k)
		r := new(big.Int).Mod(p.X, q)
		if r.Sign() == 0 {
			continue
		}
		sv := new(big.Int).Mul(r, s.d)
		sv.Add(sv, e)
		sv.Mul(sv, new(big.Int).ModInverse(k, q))
		sv.Mod(sv, q)
		if sv.Sign() == 0 {
			continue
		}
		return &Signature{R: r, S: sv}
	}
}

func randomNonZero(t *testing.T, n *big.Int) *big.Int {
	t.Helper()
	for {
		k, err := rand.Int(rand.Reader, n)
		require.NoError(t, err)
		if k.Sign() != 0 {
			return k
		}
	}
}

// countingCurve counts the point multiplications it forwards.
type countingCurve struct {
	curve.Curve
	mults atomic.Int64
}

func (c *countingCurve) ScalarMult(p curve.Point, k *big.Int) curve.Point {
	c.mults.Add(1)
	return c.Curve.ScalarMult(p, k)
}

func (c *countingCurve) CombinedMult(u1 *big.Int, p curve.Point, u2 *big.Int, q curve.Point) curve.Point {
	c.mults.Add(1)
	return c.Curve.CombinedMult(u1, p, u2, q)
}
