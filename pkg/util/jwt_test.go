package util

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-jwt-testing"

func TestGenerateToken(t *testing.T) {
	tests := []struct {
		name     string
		userID   uint
		email    string
		verified bool
		role     string
	}{
		{name: "Unverified customer", userID: 1, email: "buyer@example.com", verified: false, role: "customer"},
		{name: "Verified customer", userID: 2, email: "seller@example.com", verified: true, role: "customer"},
		{name: "Admin", userID: 3, email: "admin@example.com", verified: true, role: "admin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := GenerateToken(tt.userID, tt.email, tt.verified, tt.role, testSecret, 8*time.Hour)
			require.NoError(t, err)
			require.NotEmpty(t, token)

			claims, err := ValidateToken(token, testSecret)
			require.NoError(t, err)
			assert.Equal(t, tt.userID, claims.UserID)
			assert.Equal(t, tt.email, claims.Email)
			assert.Equal(t, tt.verified, claims.Verified)
			assert.Equal(t, tt.role, claims.Role)
			assert.WithinDuration(t, time.Now().Add(8*time.Hour), claims.ExpiresAt.Time, 5*time.Second)
		})
	}
}

func TestValidateToken(t *testing.T) {
	valid, err := GenerateToken(7, "user@example.com", true, "customer", testSecret, time.Hour)
	require.NoError(t, err)

	expired, err := GenerateToken(7, "user@example.com", true, "customer", testSecret, -time.Minute)
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: 7})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		secret  string
		wantErr error
	}{
		{name: "Valid token", token: valid, secret: testSecret},
		{name: "Wrong secret", token: valid, secret: "other-secret", wantErr: ErrInvalidToken},
		{name: "Expired token", token: expired, secret: testSecret, wantErr: ErrExpiredToken},
		{name: "Malformed token", token: "not.a.token", secret: testSecret, wantErr: ErrInvalidToken},
		{name: "Empty token", token: "", secret: testSecret, wantErr: ErrInvalidToken},
		{name: "Unsigned token", token: unsigned, secret: testSecret, wantErr: ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := ValidateToken(tt.token, tt.secret)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, claims)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, uint(7), claims.UserID)
		})
	}
}
