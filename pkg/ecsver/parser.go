package ecsver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"os"
	"strings"

	"github.com/fxamacker/cbor/v2"
)

// maxSignatureSize bounds how much of a JSON or CBOR signature file is read.
const maxSignatureSize = 1 << 16

// SignatureParser defines the interface for reading a signature record.
type SignatureParser interface {
	// ParseSignature reads one signature. Malformed input yields ErrParse.
	ParseSignature(r io.Reader) (*Signature, error)
}

// SignatureWriter writes a signature record.
type SignatureWriter interface {
	WriteSignature(w io.Writer, sig *Signature) error
}

// SignatureCodec reads and writes one signature encoding.
type SignatureCodec interface {
	SignatureParser
	SignatureWriter
}

// CodecFor returns the codec for format: "text", "json" or "cbor".
func CodecFor(format string) (SignatureCodec, error) {
	switch format {
	case "", "text":
		return TextCodec{}, nil
	case "json":
		return &JSONCodec{}, nil
	case "cbor":
		return CBORCodec{}, nil
	default:
		return nil, fmt.Errorf("unknown signature format %q (supported: text, json, cbor)", format)
	}
}

// ParseSignatureFile reads the signature at path with p.
func ParseSignatureFile(path string, p SignatureParser) (*Signature, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}
	defer f.Close()

	sig, err := p.ParseSignature(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sig, nil
}

// TextCodec is the plain record: r then s in hexadecimal, one per line.
type TextCodec struct{}

// ParseSignature implements SignatureParser.
func (TextCodec) ParseSignature(r io.Reader) (*Signature, error) {
	sc := newRecordScanner(r)
	rv, err := sc.hex("r")
	if err != nil {
		return nil, err
	}
	sv, err := sc.hex("s")
	if err != nil {
		return nil, err
	}
	return &Signature{R: rv, S: sv}, nil
}

// WriteSignature implements SignatureWriter.
func (TextCodec) WriteSignature(w io.Writer, sig *Signature) error {
	_, err := fmt.Fprintf(w, "%X\n%X\n", sig.R, sig.S)
	return err
}

// JSONCodec reads and writes signatures as a JSON object.
//
// Expected format:
//
//	{"r": "1f3a...", "s": "0x77c0..."}
//
// String values are hexadecimal; bare JSON numbers are decimal.
type JSONCodec struct {
	RField string // Field name for r (default: "r")
	SField string // Field name for s (default: "s")
}

func (c *JSONCodec) fields() (string, string) {
	rField, sField := c.RField, c.SField
	if rField == "" {
		rField = "r"
	}
	if sField == "" {
		sField = "s"
	}
	return rField, sField
}

// ParseSignature implements SignatureParser.
func (c *JSONCodec) ParseSignature(r io.Reader) (*Signature, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxSignatureSize))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}

	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber() // Preserve large numbers as json.Number instead of float64

	var item map[string]interface{}
	if err := decoder.Decode(&item); err != nil {
		return nil, fmt.Errorf("%w: failed to parse JSON: %v", ErrParse, err)
	}

	rField, sField := c.fields()
	sig := &Signature{}

	rVal, ok := item[rField]
	if !ok {
		return nil, fmt.Errorf("%w: missing %s field", ErrParse, rField)
	}
	if sig.R, err = parseBigInt(rVal); err != nil {
		return nil, fmt.Errorf("%w: failed to parse r: %v", ErrParse, err)
	}

	sVal, ok := item[sField]
	if !ok {
		return nil, fmt.Errorf("%w: missing %s field", ErrParse, sField)
	}
	if sig.S, err = parseBigInt(sVal); err != nil {
		return nil, fmt.Errorf("%w: failed to parse s: %v", ErrParse, err)
	}

	return sig, nil
}

// WriteSignature implements SignatureWriter.
func (c *JSONCodec) WriteSignature(w io.Writer, sig *Signature) error {
	rField, sField := c.fields()
	enc := json.NewEncoder(w)
	return enc.Encode(map[string]string{
		rField: sig.R.Text(16),
		sField: sig.S.Text(16),
	})
}

// parseBigInt parses a big integer from a JSON value: a hex string with an
// optional 0x prefix, or a decimal number.
func parseBigInt(val interface{}) (*big.Int, error) {
	switch v := val.(type) {
	case string:
		return parseHex(strings.TrimSpace(v))

	case json.Number:
		z := new(big.Int)
		if _, ok := z.SetString(string(v), 10); !ok {
			return nil, fmt.Errorf("invalid number format: %s", v)
		}
		return z, nil

	default:
		return nil, fmt.Errorf("unsupported type: %T", val)
	}
}

// CBORCodec reads and writes signatures as a CBOR map of big-endian byte
// strings.
type CBORCodec struct{}

type cborSignature struct {
	R []byte `cbor:"r"`
	S []byte `cbor:"s"`
}

// ParseSignature implements SignatureParser.
func (CBORCodec) ParseSignature(r io.Reader) (*Signature, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxSignatureSize))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}

	var cs cborSignature
	if err := cbor.Unmarshal(data, &cs); err != nil {
		return nil, fmt.Errorf("%w: failed to parse CBOR: %v", ErrParse, err)
	}
	if cs.R == nil || cs.S == nil {
		return nil, fmt.Errorf("%w: missing r or s", ErrParse)
	}
	return &Signature{
		R: new(big.Int).SetBytes(cs.R),
		S: new(big.Int).SetBytes(cs.S),
	}, nil
}

// WriteSignature implements SignatureWriter. Negative components cannot be
// encoded.
func (CBORCodec) WriteSignature(w io.Writer, sig *Signature) error {
	if sig.R.Sign() < 0 || sig.S.Sign() < 0 {
		return fmt.Errorf("cbor: negative signature component")
	}
	data, err := cbor.Marshal(&cborSignature{R: magnitude(sig.R), S: magnitude(sig.S)})
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// magnitude returns the big-endian bytes of x, with zero encoded as a single
// zero byte so that it stays distinguishable from an absent field.
func magnitude(x *big.Int) []byte {
	if x.Sign() == 0 {
		return []byte{0}
	}
	return x.Bytes()
}
