package paytm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "0123456789abcdef"

func TestSignature_RoundTrip(t *testing.T) {
	sig, err := GenerateSignature(`{"mid":"MID001"}`, testKey)
	require.NoError(t, err)

	assert.True(t, VerifySignature(`{"mid":"MID001"}`, testKey, sig))
	assert.False(t, VerifySignature(`{"mid":"MID002"}`, testKey, sig))
	assert.False(t, VerifySignature(`{"mid":"MID001"}`, "fedcba9876543210", sig))
	assert.False(t, VerifySignature(`{"mid":"MID001"}`, testKey, "not-base64!"))
}

func TestGenerateSignature_SaltVaries(t *testing.T) {
	a, err := GenerateSignature("payload", testKey)
	require.NoError(t, err)
	b, err := GenerateSignature("payload", testKey)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestGenerateSignature_BadKey(t *testing.T) {
	_, err := GenerateSignature("payload", "short")
	assert.Error(t, err)
}

func TestStringByParams(t *testing.T) {
	got := StringByParams(map[string]string{"ORDERID": "S1", "MID": "M", "BANKNAME": "null"})
	assert.Equal(t, "|M|S1", got)
}
