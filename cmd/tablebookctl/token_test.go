package main

import (
	"bytes"
	"strings"
	"testing"

	"tablebook/pkg/auth"
	"tablebook/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return strings.TrimSpace(out.String()), err
}

func TestTokenCommandIssuesOperatorToken(t *testing.T) {
	t.Setenv(config.EnvJWTSecret, "ctl-secret")
	t.Setenv(config.EnvJWTIssuer, "")

	restaurantID := "6a1f1c7e-8d5b-4a5e-9b59-3e0c1c3f8a11"
	token, err := runRoot(t, "token", "--restaurant", restaurantID, "--subject", "host@trattoria")
	require.NoError(t, err)

	claims, err := auth.NewAuthenticator("ctl-secret", config.DefaultJWTIssuer).Parse(token)
	require.NoError(t, err)
	assert.Equal(t, auth.RoleOperator, claims.Role)
	assert.Equal(t, restaurantID, claims.RestaurantID)
	assert.Equal(t, "host@trattoria", claims.Subject)
}

func TestTokenCommandErrors(t *testing.T) {
	t.Run("missing secret", func(t *testing.T) {
		t.Setenv(config.EnvJWTSecret, "")
		_, err := runRoot(t, "token", "--role", auth.RoleAdmin)
		assert.Error(t, err)
	})

	t.Run("operator without restaurant", func(t *testing.T) {
		t.Setenv(config.EnvJWTSecret, "ctl-secret")
		_, err := runRoot(t, "token")
		assert.Error(t, err)
	})
}
