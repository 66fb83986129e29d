package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/support-kit/case-assistant/internal/auth"
)

func TestGenerateAndParseToken(t *testing.T) {
	tm := auth.NewTokenManager("test-secret", 30)

	token, expiresAt, err := tm.GenerateToken("orchestrator", "user-42", []string{auth.ScopeCasesRead})
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.WithinDuration(t, time.Now().Add(30*time.Minute), expiresAt, time.Minute)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	require.Equal(t, "orchestrator", claims.Subject)
	require.Equal(t, "user-42", claims.UserID)
	require.Equal(t, []string{auth.ScopeCasesRead}, claims.Scopes)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	issuer := auth.NewTokenManager("secret-a", 30)
	verifier := auth.NewTokenManager("secret-b", 30)

	token, _, err := issuer.GenerateToken("orchestrator", "user-42", nil)
	require.NoError(t, err)

	_, err = verifier.ParseToken(token)
	require.Error(t, err)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	tm := auth.NewTokenManager("test-secret", 30)
	_, err := tm.ParseToken("not-a-jwt")
	require.Error(t, err)
}

func TestPrincipalHasScope(t *testing.T) {
	principal := &auth.Principal{Scopes: []string{auth.ScopeCasesRead}}
	require.True(t, principal.HasScope(auth.ScopeCasesRead))
	require.False(t, principal.HasScope("cases:write"))
}
