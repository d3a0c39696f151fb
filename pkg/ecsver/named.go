package ecsver

import (
	"crypto/elliptic"
	"fmt"
	"math/big"
	"sort"

	"github.com/mahdiidarabi/ecsver/pkg/curve"
)

var namedDomains = map[string]func() (*DomainParameters, error){
	"secp256k1": func() (*DomainParameters, error) {
		return fromParams(curve.NewSecp256k1().Params())
	},
	"p256": func() (*DomainParameters, error) {
		cp := elliptic.P256().Params()
		return fromParams(&curve.Params{
			P:       cp.P,
			A:       big.NewInt(-3),
			B:       cp.B,
			N:       cp.N,
			Gx:      cp.Gx,
			Gy:      cp.Gy,
			BitSize: cp.BitSize,
		})
	},
}

// NamedDomain returns built-in domain parameters: "secp256k1" or "p256".
func NamedDomain(name string) (*DomainParameters, error) {
	f, ok := namedDomains[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown curve %q (supported: %v)", ErrDomainInvalid, name, DomainNames())
	}
	return f()
}

// DomainNames lists the built-in domain names in sorted order.
func DomainNames() []string {
	names := make([]string, 0, len(namedDomains))
	for name := range namedDomains {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func fromParams(p *curve.Params) (*DomainParameters, error) {
	return NewDomain(p.BitSize, p.P, p.A, p.B, p.N, p.Gx, p.Gy)
}
