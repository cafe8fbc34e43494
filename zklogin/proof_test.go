package zklogin

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njangihq/zkauth/internal/errs"
	"github.com/njangihq/zkauth/internal/types"
)

func TestNormalizeProofPoints(t *testing.T) {
	testCases := []struct {
		name    string
		in      types.ProofPoints
		want    *types.ProofPoints
		wantErr bool
	}{
		{
			name: "already canonical",
			in: types.ProofPoints{
				A: []string{"1", "2", "1"},
				B: [][]string{{"3", "4"}, {"5", "6"}, {"1", "0"}},
				C: []string{"7", "8", "1"},
			},
			want: &types.ProofPoints{
				A: []string{"1", "2", "1"},
				B: [][]string{{"3", "4"}, {"5", "6"}, {"1", "0"}},
				C: []string{"7", "8", "1"},
			},
		},
		{
			name: "leading zeros are stripped",
			in: types.ProofPoints{
				A: []string{"007", "0"},
				B: [][]string{{"010", "000"}},
				C: []string{"9"},
			},
			want: &types.ProofPoints{
				A: []string{"7", "0"},
				B: [][]string{{"10", "0"}},
				C: []string{"9"},
			},
		},
		{
			name: "scalar in b group",
			in: types.ProofPoints{
				A: []string{"1"},
				B: [][]string{{"3"}},
				C: []string{"7"},
			},
			wantErr: true,
		},
		{
			name: "three elements in b pair",
			in: types.ProofPoints{
				A: []string{"1"},
				B: [][]string{{"3", "4", "5"}},
				C: []string{"7"},
			},
			wantErr: true,
		},
		{
			name: "non-decimal point",
			in: types.ProofPoints{
				A: []string{"0xff"},
				B: [][]string{{"3", "4"}},
				C: []string{"7"},
			},
			wantErr: true,
		},
		{
			name: "negative point",
			in: types.ProofPoints{
				A: []string{"-1"},
				B: [][]string{{"3", "4"}},
				C: []string{"7"},
			},
			wantErr: true,
		},
		{
			name: "empty a group",
			in: types.ProofPoints{
				A: []string{},
				B: [][]string{{"3", "4"}},
				C: []string{"7"},
			},
			wantErr: true,
		},
		{
			name: "empty b group",
			in: types.ProofPoints{
				A: []string{"1"},
				B: [][]string{},
				C: []string{"7"},
			},
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NormalizeProofPoints(tc.in)
			if tc.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, errs.ErrSignatureComposition), "got: %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
