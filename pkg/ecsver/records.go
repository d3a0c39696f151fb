package ecsver

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"
	"strconv"
	"strings"
)

// recordScanner reads whitespace-separated fields from a text record.
// Fields after the last one asked for are ignored.
type recordScanner struct {
	sc *bufio.Scanner
}

func newRecordScanner(r io.Reader) *recordScanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), 1<<20)
	sc.Split(bufio.ScanWords)
	return &recordScanner{sc: sc}
}

func (s *recordScanner) next(field string) (string, error) {
	if s.sc.Scan() {
		return s.sc.Text(), nil
	}
	if err := s.sc.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return "", fmt.Errorf("%w: %s: %v", ErrParse, field, err)
		}
		return "", fmt.Errorf("%w: reading %s: %v", ErrIO, field, err)
	}
	return "", fmt.Errorf("%w: missing %s", ErrParse, field)
}

func (s *recordScanner) decimal(field string) (int, error) {
	tok, err := s.next(field)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(tok)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: invalid decimal %q", ErrParse, field, tok)
	}
	return v, nil
}

func (s *recordScanner) hex(field string) (*big.Int, error) {
	tok, err := s.next(field)
	if err != nil {
		return nil, err
	}
	v, err := parseHex(tok)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrParse, field, err)
	}
	return v, nil
}

// parseHex parses an optionally signed hexadecimal integer. A 0x prefix is
// accepted.
func parseHex(tok string) (*big.Int, error) {
	s, neg := tok, false
	switch {
	case strings.HasPrefix(s, "-"):
		s, neg = s[1:], true
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if s == "" || s[0] == '-' || s[0] == '+' {
		return nil, fmt.Errorf("invalid hex %q", tok)
	}
	v, ok := new(big.Int).SetString(s, 16)
	if !ok {
		return nil, fmt.Errorf("invalid hex %q", tok)
	}
	if neg {
		v.Neg(v)
	}
	return v, nil
}

// LoadDomain reads a domain parameter record: the bit length of p in
// decimal, then p, A, B, q and the base point x, y in hexadecimal.
//
// Malformed or missing fields yield ErrParse; parameters that do not describe
// a usable group yield ErrDomainInvalid.
func LoadDomain(r io.Reader) (*DomainParameters, error) {
	sc := newRecordScanner(r)

	bits, err := sc.decimal("bit length")
	if err != nil {
		return nil, err
	}

	names := [...]string{"p", "A", "B", "q", "x", "y"}
	var vals [len(names)]*big.Int
	for i, name := range names {
		if vals[i], err = sc.hex(name); err != nil {
			return nil, err
		}
	}

	return NewDomain(bits, vals[0], vals[1], vals[2], vals[3], vals[4], vals[5])
}

// LoadDomainFile reads the domain parameter record at path.
func LoadDomainFile(path string) (*DomainParameters, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}
	defer f.Close()

	d, err := LoadDomain(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// LoadPublicKey reads a public key record: the parity bit of y (0 or 1),
// then x in hexadecimal.
func LoadPublicKey(r io.Reader, domain *DomainParameters) (*PublicKey, error) {
	sc := newRecordScanner(r)

	tok, err := sc.next("parity")
	if err != nil {
		return nil, err
	}
	if tok != "0" && tok != "1" {
		return nil, fmt.Errorf("%w: parity must be 0 or 1, got %q", ErrParse, tok)
	}

	x, err := sc.hex("x")
	if err != nil {
		return nil, err
	}
	return DecompressPublicKey(domain, x, tok == "1")
}

// LoadPublicKeyFile reads the public key record at path.
func LoadPublicKeyFile(path string, domain *DomainParameters) (*PublicKey, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}
	defer f.Close()

	k, err := LoadPublicKey(f, domain)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return k, nil
}

// WriteDomain writes d in the layout LoadDomain reads.
func WriteDomain(w io.Writer, d *DomainParameters) error {
	_, err := fmt.Fprintf(w, "%d\n%X\n%X\n%X\n%X\n%X\n%X\n",
		d.Bits, d.P, d.A, d.B, d.Q, d.G.X, d.G.Y)
	return err
}

// WritePublicKey writes k in compressed form, in the layout LoadPublicKey
// reads.
func WritePublicKey(w io.Writer, k *PublicKey) error {
	x, odd := k.Compressed()
	parity := 0
	if odd {
		parity = 1
	}
	_, err := fmt.Fprintf(w, "%d\n%X\n", parity, x)
	return err
}
