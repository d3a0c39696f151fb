package ecsver

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"math/big"
	"strings"
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	decredecdsa "github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mahdiidarabi/ecsver/pkg/curve"
)

func TestVerify_ToyVector(t *testing.T) {
	d := loadToyDomain(t)
	k := loadToyKey(t, d)

	digest, err := HashFile(toyFixture("message.txt"), SHA1)
	require.NoError(t, err)
	require.Equal(t, "fa68d82d7ea7aa9071205c7e6aab0fa3d93b3fd2", digest.Text(16))

	sig, err := ParseSignatureFile(toyFixture("message.ecs"), TextCodec{})
	require.NoError(t, err)
	require.Equal(t, int64(6), sig.R.Int64())
	require.Equal(t, int64(5), sig.S.Int64())

	assert.True(t, Verify(d, k, digest, sig))
	assert.False(t, Verify(d, k, digest, &Signature{R: big.NewInt(6), S: big.NewInt(6)}))
}

func TestVerifyDetailed_Reasons(t *testing.T) {
	d := loadToyDomain(t)
	k := loadToyKey(t, d)
	digest := big.NewInt(4) // SHA-1 of message.txt mod 7

	tests := []struct {
		name   string
		sig    *Signature
		reason Reason
	}{
		{"valid", &Signature{R: big.NewInt(6), S: big.NewInt(5)}, ReasonNone},
		{"negated s", &Signature{R: big.NewInt(6), S: big.NewInt(2)}, ReasonNone},
		{"r equal to q", &Signature{R: big.NewInt(7), S: big.NewInt(5)}, ReasonOutOfRange},
		{"s equal to q", &Signature{R: big.NewInt(6), S: big.NewInt(7)}, ReasonOutOfRange},
		{"s above q", &Signature{R: big.NewInt(6), S: big.NewInt(12)}, ReasonOutOfRange},
		{"negative r", &Signature{R: big.NewInt(-1), S: big.NewInt(5)}, ReasonOutOfRange},
		{"missing s", &Signature{R: big.NewInt(6)}, ReasonOutOfRange},
		{"nil signature", nil, ReasonOutOfRange},
		{"zero r", &Signature{R: big.NewInt(0), S: big.NewInt(5)}, ReasonZero},
		{"zero s", &Signature{R: big.NewInt(6), S: big.NewInt(0)}, ReasonZero},
		{"point at infinity", &Signature{R: big.NewInt(1), S: big.NewInt(1)}, ReasonInfinity},
		{"wrong s", &Signature{R: big.NewInt(6), S: big.NewInt(6)}, ReasonMismatch},
		{"wrong r", &Signature{R: big.NewInt(3), S: big.NewInt(5)}, ReasonMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := VerifyDetailed(d, k, digest, tt.sig)
			assert.Equal(t, tt.reason, res.Reason, "got %s", res.Reason)
			assert.Equal(t, tt.reason == ReasonNone, res.Valid)
		})
	}
}

func TestVerifyDetailed_NonInvertibleS(t *testing.T) {
	// Same curve and base point as the toy domain, but q = 21 is composite.
	// 21·G is still the point at infinity since G has order 7.
	d, err := LoadDomain(strings.NewReader("5\n17\n1\n1\n15\n5\n4\n"))
	require.NoError(t, err)
	k := loadToyKey(t, d)

	for _, s := range []int64{3, 6, 7, 14} {
		sig := &Signature{R: big.NewInt(6), S: big.NewInt(s)}
		var res Result
		require.NotPanics(t, func() { res = VerifyDetailed(d, k, big.NewInt(4), sig) }, "s = %d", s)
		assert.False(t, res.Valid, "s = %d", s)
		assert.Equal(t, ReasonNoInverse, res.Reason, "s = %d: got %s", s, res.Reason)
	}

	// gcd(s, 21) = 1 gets past the inverse
	res := VerifyDetailed(d, k, big.NewInt(4), &Signature{R: big.NewInt(6), S: big.NewInt(5)})
	assert.NotEqual(t, ReasonNoInverse, res.Reason)
}

func TestVerifyDetailed_MissingKey(t *testing.T) {
	d := loadToyDomain(t)
	sig := &Signature{R: big.NewInt(6), S: big.NewInt(5)}

	for name, pub := range map[string]*PublicKey{
		"nil key":      nil,
		"infinity key": {},
	} {
		t.Run(name, func(t *testing.T) {
			var res Result
			require.NotPanics(t, func() { res = VerifyDetailed(d, pub, big.NewInt(4), sig) })
			assert.False(t, res.Valid)
			assert.Equal(t, ReasonNoKey, res.Reason)
			assert.False(t, Verify(d, pub, big.NewInt(4), sig))
		})
	}
	assert.Equal(t, "no public key", ReasonNoKey.String())
}

func TestVerify_DigestReducedModQ(t *testing.T) {
	d := loadToyDomain(t)
	k := loadToyKey(t, d)
	sig := &Signature{R: big.NewInt(6), S: big.NewInt(5)}

	assert.True(t, Verify(d, k, big.NewInt(4), sig))
	assert.True(t, Verify(d, k, big.NewInt(4+7*1000), sig))
	// SHA-256 of message.txt is 5 mod 7
	assert.Equal(t, ReasonMismatch, VerifyDetailed(d, k, big.NewInt(5), sig).Reason)
}

func TestVerify_WrongKey(t *testing.T) {
	d := loadToyDomain(t)

	// d = 4 gives Q = (13, 7)
	other, err := DecompressPublicKey(d, big.NewInt(13), true)
	require.NoError(t, err)
	require.Equal(t, int64(7), other.Point.Y.Int64())

	digest := big.NewInt(4)
	assert.False(t, Verify(d, other, digest, &Signature{R: big.NewInt(6), S: big.NewInt(5)}))
	assert.True(t, Verify(d, other, digest, &Signature{R: big.NewInt(3), S: big.NewInt(1)}))
}

func TestVerify_RangeRejectionSkipsPointArithmetic(t *testing.T) {
	d := loadToyDomain(t)
	k := loadToyKey(t, d)

	counting := &countingCurve{Curve: d.Curve}
	wrapped := *d
	wrapped.Curve = counting

	digest := big.NewInt(4)
	for _, sig := range []*Signature{
		{R: big.NewInt(7), S: big.NewInt(5)},
		{R: big.NewInt(6), S: big.NewInt(100)},
		{R: big.NewInt(0), S: big.NewInt(5)},
	} {
		assert.False(t, Verify(&wrapped, k, digest, sig))
	}
	assert.Equal(t, int64(0), counting.mults.Load())

	assert.True(t, Verify(&wrapped, k, digest, &Signature{R: big.NewInt(6), S: big.NewInt(5)}))
	assert.Equal(t, int64(1), counting.mults.Load())
}

func TestVerify_TamperSensitivity(t *testing.T) {
	d, err := NamedDomain("p256")
	require.NoError(t, err)
	signer := newTestSigner(t, d)

	h := sha256.Sum256([]byte("tamper sensitivity"))
	digest := new(big.Int).SetBytes(h[:])
	sig := signer.sign(t, digest)
	require.True(t, Verify(d, signer.key, digest, sig))

	plusOne := func(x *big.Int) *big.Int {
		return new(big.Int).Mod(new(big.Int).Add(x, big.NewInt(1)), d.Q)
	}
	flipped := new(big.Int).Xor(digest, big.NewInt(1))

	other := newTestSigner(t, d)

	assert.False(t, Verify(d, signer.key, flipped, sig), "digest bit flipped")
	assert.False(t, Verify(d, signer.key, digest, &Signature{R: plusOne(sig.R), S: sig.S}), "r changed")
	assert.False(t, Verify(d, signer.key, digest, &Signature{R: sig.R, S: plusOne(sig.S)}), "s changed")
	assert.False(t, Verify(d, other.key, digest, sig), "different key")
}

func TestVerify_Deterministic(t *testing.T) {
	d := loadToyDomain(t)
	k := loadToyKey(t, d)
	digest := big.NewInt(4)

	for r := int64(0); r < 8; r++ {
		for s := int64(0); s < 8; s++ {
			sig := &Signature{R: big.NewInt(r), S: big.NewInt(s)}
			first := VerifyDetailed(d, k, digest, sig)
			for i := 0; i < 3; i++ {
				assert.Equal(t, first, VerifyDetailed(d, k, digest, sig))
			}
		}
	}
}

func TestVerify_DoesNotModifyInputs(t *testing.T) {
	d := loadToyDomain(t)
	k := loadToyKey(t, d)
	digest := big.NewInt(4 + 7*3)
	sig := &Signature{R: big.NewInt(6), S: big.NewInt(5)}

	require.True(t, Verify(d, k, digest, sig))
	assert.Equal(t, int64(25), digest.Int64())
	assert.Equal(t, int64(6), sig.R.Int64())
	assert.Equal(t, int64(5), sig.S.Int64())
	assert.Equal(t, int64(13), k.Point.X.Int64())
}

func TestVerify_P256Interop(t *testing.T) {
	d, err := NamedDomain("p256")
	require.NoError(t, err)

	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	key, err := NewPublicKey(d, priv.X, priv.Y)
	require.NoError(t, err)

	for _, msg := range []string{"", "hello", "interop with crypto/ecdsa"} {
		h := sha256.Sum256([]byte(msg))
		r, s, err := ecdsa.Sign(rand.Reader, priv, h[:])
		require.NoError(t, err)

		digest := new(big.Int).SetBytes(h[:])
		assert.True(t, Verify(d, key, digest, &Signature{R: r, S: s}), "message %q", msg)
	}

	// and the other direction
	signer := newTestSigner(t, d)
	h := sha256.Sum256([]byte("signed here"))
	sig := signer.sign(t, new(big.Int).SetBytes(h[:]))
	pub := &ecdsa.PublicKey{Curve: elliptic.P256(), X: signer.key.Point.X, Y: signer.key.Point.Y}
	assert.True(t, ecdsa.Verify(pub, h[:], sig.R, sig.S))
}

func TestVerify_Secp256k1Interop(t *testing.T) {
	d, err := NamedDomain("secp256k1")
	require.NoError(t, err)
	require.IsType(t, &curve.Secp256k1{}, d.Curve)

	signer := newTestSigner(t, d)

	var x, y secp256k1.FieldVal
	x.SetByteSlice(signer.key.Point.X.Bytes())
	y.SetByteSlice(signer.key.Point.Y.Bytes())
	pub := secp256k1.NewPublicKey(&x, &y)

	for i := 0; i < 3; i++ {
		h := sha256.Sum256([]byte{byte(i)})
		digest := new(big.Int).SetBytes(h[:])
		sig := signer.sign(t, digest)

		var r, s secp256k1.ModNScalar
		r.SetByteSlice(sig.R.Bytes())
		s.SetByteSlice(sig.S.Bytes())
		require.True(t, decredecdsa.NewSignature(&r, &s).Verify(h[:], pub))

		assert.True(t, Verify(d, signer.key, digest, sig))
	}

	// a key pair generated by decred
	priv, err := secp256k1.GeneratePrivateKey()
	require.NoError(t, err)
	compressed := priv.PubKey().SerializeCompressed()
	key, err := DecompressPublicKey(d, new(big.Int).SetBytes(compressed[1:]), compressed[0] == 0x03)
	require.NoError(t, err)
	assert.Equal(t, 0, key.Point.Y.Cmp(priv.PubKey().Y()))
}

func TestVerify_BackendsAgree(t *testing.T) {
	fast, err := NamedDomain("secp256k1")
	require.NoError(t, err)

	generic := *fast
	g, err := curve.NewWeierstrass(*fast.Curve.Params())
	require.NoError(t, err)
	generic.Curve = g

	signer := newTestSigner(t, fast)
	h := sha256.Sum256([]byte("backends"))
	digest := new(big.Int).SetBytes(h[:])
	sig := signer.sign(t, digest)

	assert.True(t, Verify(fast, signer.key, digest, sig))
	assert.True(t, Verify(&generic, signer.key, digest, sig))

	bad := &Signature{R: sig.R, S: new(big.Int).Sub(sig.S, big.NewInt(1))}
	if bad.S.Sign() == 0 {
		bad.S.SetInt64(2)
	}
	assert.Equal(t, VerifyDetailed(fast, signer.key, digest, bad), VerifyDetailed(&generic, signer.key, digest, bad))
}
