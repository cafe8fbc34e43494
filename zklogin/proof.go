package zklogin

import (
	"math/big"

	"github.com/njangihq/zkauth/internal/errs"
	"github.com/njangihq/zkauth/internal/types"
)

// NormalizeProofPoints canonicalizes every proof point to its decimal string
// form and enforces the pair shape of the "b" group. A bare scalar where a
// 2-tuple belongs is rejected outright: padding it would mask upstream proof
// corruption.
func NormalizeProofPoints(pp types.ProofPoints) (*types.ProofPoints, error) {
	a, err := normalizeGroup("a", pp.A)
	if err != nil {
		return nil, err
	}
	c, err := normalizeGroup("c", pp.C)
	if err != nil {
		return nil, err
	}

	if len(pp.B) == 0 {
		return nil, errs.SignatureCompositionf("proof points 'b' must not be empty")
	}
	b := make([][]string, 0, len(pp.B))
	for i, pair := range pp.B {
		if len(pair) != 2 {
			return nil, errs.SignatureCompositionf(
				"proof points 'b' entry %d must be a 2-element pair, got %d elements", i, len(pair))
		}
		normalized, err := normalizeGroup("b", pair)
		if err != nil {
			return nil, err
		}
		b = append(b, normalized)
	}

	return &types.ProofPoints{A: a, B: b, C: c}, nil
}

func normalizeGroup(name string, values []string) ([]string, error) {
	if len(values) == 0 {
		return nil, errs.SignatureCompositionf("proof points %q must not be empty", name)
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		n, ok := new(big.Int).SetString(v, 10)
		if !ok || n.Sign() < 0 {
			return nil, errs.SignatureCompositionf("proof point %q in group %q is not an unsigned decimal", v, name)
		}
		out = append(out, n.String())
	}
	return out, nil
}
