package tokens

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSecretIsRandom(t *testing.T) {
	tk := Default()

	a, err := tk.NewSecret()
	require.NoError(t, err)
	b, err := tk.NewSecret()
	require.NoError(t, err)

	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
	// 18 bytes -> 24 base64 chars, no padding
	assert.Len(t, a, 24)
}

func TestCreateVerifiesAgainstItsSecret(t *testing.T) {
	tk := Default()
	secret, err := tk.NewSecret()
	require.NoError(t, err)

	first := tk.Create(secret)
	second := tk.Create(secret)

	assert.NotEqual(t, first, second, "tokens are salted")
	assert.True(t, tk.Verify(secret, first))
	assert.True(t, tk.Verify(secret, second))
}

func TestVerifyRejectsForeignAndMalformedTokens(t *testing.T) {
	tk := Default()
	secret, err := tk.NewSecret()
	require.NoError(t, err)
	other, err := tk.NewSecret()
	require.NoError(t, err)

	valid := tk.Create(secret)
	salt := valid[:strings.IndexByte(valid, '-')]

	cases := map[string]string{
		"empty":          "",
		"other secret":   tk.Create(other),
		"no separator":   "abcdefgh",
		"empty salt":     valid[strings.IndexByte(valid, '-'):],
		"truncated hash": valid[:len(valid)-1],
		"swapped salt":   "zzzzzzzz" + valid[len(salt):],
	}
	for name, tok := range cases {
		t.Run(name, func(t *testing.T) {
			assert.False(t, tk.Verify(secret, tok))
		})
	}
	assert.False(t, tk.Verify("", valid))
}

func TestNewOptions(t *testing.T) {
	tk, err := New(WithSecretLength(32), WithSaltLength(12))
	require.NoError(t, err)

	secret, err := tk.NewSecret()
	require.NoError(t, err)
	assert.Len(t, secret, 43)

	tok := tk.Create(secret)
	assert.Equal(t, 12, strings.IndexByte(tok, '-'))
	assert.True(t, tk.Verify(secret, tok))

	_, err = New(WithSaltLength(0))
	assert.ErrorIs(t, err, ErrInvalidLength)
}

func TestRandomSaltUsesWholeAlphabetEvenly(t *testing.T) {
	const draws = 62 * 2000
	counts := make(map[rune]int, len(saltAlphabet))
	salt := randomSalt(draws)
	require.Len(t, salt, draws)

	for _, c := range salt {
		require.True(t, strings.ContainsRune(saltAlphabet, c), "unexpected salt char %q", c)
		counts[c]++
	}
	assert.Len(t, counts, len(saltAlphabet))
	// expected 2000 each; the old modulo skew gave the first 8 chars ~2065
	for c, n := range counts {
		assert.InDelta(t, 2000, n, 250, "char %q", c)
	}
	assert.Equal(t, 248, saltCutoff)
}
