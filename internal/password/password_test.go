package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cheap parameters keep the suite fast
var testParams = Params{Time: 1, Memory: 1024, Threads: 1, SaltLen: 16, KeyLen: 32}

func TestHashFormat(t *testing.T) {
	h, err := HashWith("password123", testParams)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(h, "$argon2id$v=19$m=1024,t=1,p=1$"), h)
	assert.Len(t, strings.Split(h, "$"), 6)
}

func TestHashIsSalted(t *testing.T) {
	a, err := HashWith("password123", testParams)
	require.NoError(t, err)
	b, err := HashWith("password123", testParams)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestVerify(t *testing.T) {
	h, err := HashWith("password123", testParams)
	require.NoError(t, err)

	ok, err := Verify("password123", h)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Verify("password124", h)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyDefaultParams(t *testing.T) {
	h, err := Hash("correct horse")
	require.NoError(t, err)
	ok, err := Verify("correct horse", h)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerifyMalformed(t *testing.T) {
	for _, h := range []string{
		"",
		"plaintext",
		"$2b$10$abcdefghijklmnopqrstuv",
		"$argon2id$v=19$m=1024,t=1,p=1$!!!$abc",
		"$argon2id$v=18$m=1024,t=1,p=1$c2FsdA$a2V5",
	} {
		_, err := Verify("x", h)
		assert.ErrorIs(t, err, ErrMalformedHash, h)
	}
}

func TestVerifyRejectsZeroParams(t *testing.T) {
	for _, h := range []string{
		"$argon2id$v=19$m=1024,t=0,p=1$c2FsdHNhbHRzYWx0$a2V5a2V5a2V5",
		"$argon2id$v=19$m=1024,t=1,p=0$c2FsdHNhbHRzYWx0$a2V5a2V5a2V5",
		"$argon2id$v=19$m=0,t=1,p=1$c2FsdHNhbHRzYWx0$a2V5a2V5a2V5",
	} {
		require.NotPanics(t, func() {
			_, err := Verify("x", h)
			assert.ErrorIs(t, err, ErrMalformedHash, h)
		}, h)
	}
}
