package claims

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njangihq/zkauth/internal/errs"
)

func signToken(t *testing.T, c jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestDecode(t *testing.T) {
	now := time.Now()
	raw := signToken(t, jwt.MapClaims{
		"iss":   "https://accounts.google.com",
		"sub":   "110248495921238986420",
		"aud":   "circle-app",
		"iat":   now.Unix(),
		"exp":   now.Add(time.Hour).Unix(),
		"email": "amina@example.com",
		"name":  "Amina N.",
	})

	idToken, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, "https://accounts.google.com", idToken.Issuer)
	assert.Equal(t, "110248495921238986420", idToken.Subject)
	assert.Equal(t, []string{"circle-app"}, idToken.Audience)
	assert.Equal(t, "amina@example.com", idToken.Email)
	assert.Equal(t, "Amina N.", idToken.Name)
	assert.Equal(t, raw, idToken.Raw)
}

func TestDecodeGarbage(t *testing.T) {
	_, err := Decode("not-a-jwt")
	assert.True(t, errors.Is(err, errs.ErrClaimValidation))
}

func TestValidate(t *testing.T) {
	now := time.Now()
	testCases := []struct {
		name     string
		claims   jwt.MapClaims
		clientID string
		wantErr  string
	}{
		{
			name: "valid token",
			claims: jwt.MapClaims{
				"iss": "https://accounts.google.com",
				"sub": "110248495921238986420",
				"aud": "circle-app",
				"iat": now.Unix(),
				"exp": now.Add(time.Hour).Unix(),
			},
			clientID: "circle-app",
		},
		{
			name: "audience as array",
			claims: jwt.MapClaims{
				"iss": "https://accounts.google.com",
				"sub": "110248495921238986420",
				"aud": []string{"other-app", "circle-app"},
				"iat": now.Unix(),
				"exp": now.Add(time.Hour).Unix(),
			},
			clientID: "circle-app",
		},
		{
			name: "missing sub",
			claims: jwt.MapClaims{
				"iss": "https://accounts.google.com",
				"aud": "circle-app",
				"iat": now.Unix(),
				"exp": now.Add(time.Hour).Unix(),
			},
			wantErr: "sub",
		},
		{
			name: "missing aud",
			claims: jwt.MapClaims{
				"iss": "https://accounts.google.com",
				"sub": "110248495921238986420",
				"iat": now.Unix(),
				"exp": now.Add(time.Hour).Unix(),
			},
			wantErr: "aud",
		},
		{
			name: "missing iat",
			claims: jwt.MapClaims{
				"iss": "https://accounts.google.com",
				"sub": "110248495921238986420",
				"aud": "circle-app",
				"exp": now.Add(time.Hour).Unix(),
			},
			wantErr: "iat",
		},
		{
			name: "expired",
			claims: jwt.MapClaims{
				"iss": "https://accounts.google.com",
				"sub": "110248495921238986420",
				"aud": "circle-app",
				"iat": now.Add(-2 * time.Hour).Unix(),
				"exp": now.Add(-time.Hour).Unix(),
			},
			wantErr: "expired",
		},
		{
			name: "audience mismatch",
			claims: jwt.MapClaims{
				"iss": "https://accounts.google.com",
				"sub": "110248495921238986420",
				"aud": "someone-else",
				"iat": now.Unix(),
				"exp": now.Add(time.Hour).Unix(),
			},
			clientID: "circle-app",
			wantErr:  "aud does not include",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			idToken, err := Decode(signToken(t, tc.claims))
			require.NoError(t, err)

			err = idToken.Validate(tc.clientID)
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, errs.ErrClaimValidation))
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestPrimaryAudience(t *testing.T) {
	idToken := &IDToken{Audience: []string{"first", "second"}}
	assert.Equal(t, "explicit", idToken.PrimaryAudience("explicit"))
	assert.Equal(t, "first", idToken.PrimaryAudience(""))
	assert.Equal(t, "", (&IDToken{}).PrimaryAudience(""))
}
