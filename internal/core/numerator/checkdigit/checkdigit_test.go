package checkdigit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idforge/internal/core/apperror"
)

func TestMod10_Calculate(t *testing.T) {
	alg, err := Config{Kind: Mod10}.Algorithm()
	require.NoError(t, err)

	tests := []struct {
		partial string
		want    string
	}{
		{"7992739871", "3"},
		{"12345", "5"},
		{"453957876362148", "6"},
		{"20261019", "2"},
		{"0", "0"},
		{"000123", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.partial, func(t *testing.T) {
			got, err := alg.Calculate(tt.partial)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, alg.IsValid(tt.partial+got))
		})
	}
}

func TestMod10_RejectsLetters(t *testing.T) {
	_, err := Calculate("AB12", Config{Kind: Mod10})
	require.Error(t, err)
	assert.True(t, apperror.IsCheckDigitError(err))
}

func TestMod10Ordinal_Calculate(t *testing.T) {
	alg, err := Config{Kind: Mod10Ordinal}.Algorithm()
	require.NoError(t, err)

	tests := map[string]string{
		"AAA0000": "7",
		"AAA0001": "5",
		"AAA0002": "3",
		"AAA0003": "1",
		"AAA0004": "9",
		"AAA0005": "7",
		"AAA0006": "5",
		"AAA9999": "1",
		"AAB0001": "3",
		"AAB0002": "1",
		"ABC1234": "0",
		"ZZZ9999": "2",
		"HK7":     "2",
	}
	for partial, want := range tests {
		got, err := alg.Calculate(partial)
		require.NoError(t, err, partial)
		assert.Equal(t, want, got, partial)
	}
}

func TestModulus_Calculate(t *testing.T) {
	tests := []struct {
		modulus int
		partial string
		want    string
	}{
		{13, "1000000011", "10"},
		{13, "1000000012", "11"},
		{13, "1000000010", "09"},
		{97, "123456789", "39"},
		{7, "15", "1"},
		{11, "21", "10"},
		{1000, "123456", "456"},
		{13, "123456789012345678901234567890", "00"},
	}
	for _, tt := range tests {
		alg, err := NewModulus(tt.modulus)
		require.NoError(t, err)

		got, err := alg.Calculate(tt.partial)
		require.NoError(t, err)
		assert.Equal(t, len(tt.want), alg.Length())
		assert.Equal(t, tt.want, got, "%s mod %d", tt.partial, tt.modulus)
	}
}

func TestModulus_InvalidModulus(t *testing.T) {
	_, err := Config{Kind: Modulus, Modulus: 1}.Algorithm()
	require.Error(t, err)
	assert.True(t, apperror.IsConfiguration(err))
}

func TestRemove(t *testing.T) {
	alg, err := Config{Kind: Modulus, Modulus: 13}.Algorithm()
	require.NoError(t, err)

	partial, digit, err := alg.Remove("100000001110")
	require.NoError(t, err)
	assert.Equal(t, "1000000011", partial)
	assert.Equal(t, "10", digit)

	_, _, err = alg.Remove("100000001111")
	require.Error(t, err)
	assert.True(t, apperror.IsCheckDigitError(err))
	assert.False(t, alg.IsValid("100000001111"))

	_, _, err = alg.Remove("10")
	require.Error(t, err)
	assert.True(t, apperror.IsCheckDigitError(err))
}

func TestNone(t *testing.T) {
	alg, err := Config{}.Algorithm()
	require.NoError(t, err)

	digit, err := alg.Calculate("anything")
	require.NoError(t, err)
	assert.Empty(t, digit)
	assert.Equal(t, 0, alg.Length())

	partial, digit, err := alg.Remove("ABC")
	require.NoError(t, err)
	assert.Equal(t, "ABC", partial)
	assert.Empty(t, digit)
}

func TestParseKind(t *testing.T) {
	tests := map[string]Kind{
		"":              None,
		"none":          None,
		"luhn":          Mod10,
		"MOD10":         Mod10,
		"mod10_ordinal": Mod10Ordinal,
		"modulus":       Modulus,
	}
	for name, want := range tests {
		got, err := ParseKind(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	_, err := ParseKind("crc32")
	assert.Error(t, err)
	assert.Equal(t, "mod10_ordinal", Mod10Ordinal.String())
}
