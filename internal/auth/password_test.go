package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHasher_HashThenVerify(t *testing.T) {
	t.Parallel()

	h := NewHasher(bcrypt.MinCost)
	for _, pw := range []string{"p", "correct horse battery staple", "ünïcødé", ""} {
		hashed, err := h.Hash(pw)
		require.NoError(t, err)
		assert.NotEqual(t, pw, hashed)

		ok, err := h.Verify(pw, hashed)
		require.NoError(t, err)
		assert.True(t, ok, "password %q", pw)
	}
}

func TestHasher_WrongPasswordIsFalseNotError(t *testing.T) {
	t.Parallel()

	h := NewHasher(bcrypt.MinCost)
	hashed, err := h.Hash("p")
	require.NoError(t, err)

	ok, err := h.Verify("wrong", hashed)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHasher_FreshSaltPerCall(t *testing.T) {
	t.Parallel()

	h := NewHasher(bcrypt.MinCost)
	a, err := h.Hash("same")
	require.NoError(t, err)
	b, err := h.Hash("same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestHasher_MalformedHashIsError(t *testing.T) {
	t.Parallel()

	ok, err := NewHasher(bcrypt.MinCost).Verify("p", "not-a-bcrypt-hash")
	require.Error(t, err)
	assert.False(t, ok)
}

func TestNewHasher_OutOfRangeCostFallsBack(t *testing.T) {
	t.Parallel()

	hashed, err := NewHasher(99).Hash("p")
	require.NoError(t, err)
	cost, err := bcrypt.Cost([]byte(hashed))
	require.NoError(t, err)
	assert.Equal(t, DefaultBcryptCost, cost)
}

func TestHasher_LongPasswordSharingPrefixDoesNotMatch(t *testing.T) {
	t.Parallel()

	h := NewHasher(bcrypt.MinCost)
	registered := strings.Repeat("a", MaxPasswordBytes)
	hashed, err := h.Hash(registered)
	require.NoError(t, err)

	ok, err := h.Verify(registered+"DIFFERENT", hashed)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = h.Verify(registered, hashed)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestHasher_HashRejectsLongPassword(t *testing.T) {
	t.Parallel()

	_, err := NewHasher(bcrypt.MinCost).Hash(strings.Repeat("a", MaxPasswordBytes+1))
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}
