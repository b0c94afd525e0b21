package secrets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAPIToken(t *testing.T) {
	token, err := NewAPIToken()
	require.NoError(t, err)
	assert.Len(t, token, APITokenLength*2)

	other, err := NewAPIToken()
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
}

func TestNewVerificationCode(t *testing.T) {
	code, err := NewVerificationCode()
	require.NoError(t, err)
	assert.Len(t, code, VerificationCodeLength)
	for _, r := range code {
		assert.Contains(t, digits, string(r))
	}
}

func TestNewRestoreToken(t *testing.T) {
	token, err := NewRestoreToken()
	require.NoError(t, err)
	assert.Len(t, token, 64)

	other, err := NewRestoreToken()
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
}
