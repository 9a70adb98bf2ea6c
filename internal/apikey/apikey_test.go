package apikey_test

import (
	"strings"
	"testing"

	"github.com/ArthurGuilherms/Projeto-Banese-Labs/internal/apikey"
	"github.com/ArthurGuilherms/Projeto-Banese-Labs/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestGenerate(t *testing.T) {
	raw, key, err := apikey.Generate("ops", []string{models.ScopeWrite, models.ScopeRead, models.ScopeRead})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(raw, "cr_"))
	assert.Len(t, raw, 3+48)
	assert.Equal(t, raw[:apikey.PrefixLen], key.KeyPrefix)
	assert.Equal(t, "ops", key.Name)
	assert.Equal(t, []string{"read", "write"}, key.Scopes)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(key.KeyHash), []byte(raw)))
	assert.NotContains(t, key.KeyHash, raw)
}

func TestGenerate_DefaultScope(t *testing.T) {
	_, key, err := apikey.Generate("reader", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{models.ScopeRead}, key.Scopes)
}

func TestGenerate_Unique(t *testing.T) {
	a, _, err := apikey.Generate("a", nil)
	require.NoError(t, err)
	b, _, err := apikey.Generate("b", nil)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestGenerate_Invalid(t *testing.T) {
	_, _, err := apikey.Generate("  ", nil)
	assert.Error(t, err)

	_, _, err = apikey.Generate("ops", []string{"root"})
	assert.ErrorIs(t, err, apikey.ErrInvalidScope)
}
