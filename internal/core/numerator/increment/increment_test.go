package increment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idforge/internal/core/apperror"
	"idforge/internal/core/numerator/segment"
)

func TestNumeric(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0000", "0001"},
		{"0009", "0010"},
		{"0999", "1000"},
		{"9998", "9999"},
		{"9999", "0001"},
		{"0", "1"},
		{"9", "1"},
		{"000", "001"},
	}
	for _, tt := range tests {
		got, err := Numeric(tt.in, Wrap)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestNumeric_Fail(t *testing.T) {
	got, err := Numeric("9998", Fail)
	require.NoError(t, err)
	assert.Equal(t, "9999", got)

	_, err = Numeric("9999", Fail)
	require.Error(t, err)
	assert.True(t, apperror.IsSequenceExhausted(err))
}

func TestNumeric_Unexpected(t *testing.T) {
	for _, in := range []string{"", "12a4", "-123", "1234567890123456789"} {
		_, err := Numeric(in, Wrap)
		require.Error(t, err, in)
		assert.True(t, apperror.IsFormatError(err), in)
	}
}

func TestNumeric_CyclesWithoutZero(t *testing.T) {
	v := "00"
	seen := make(map[string]int)
	for i := 0; i < 250; i++ {
		next, err := Numeric(v, Wrap)
		require.NoError(t, err)
		require.NotEqual(t, "00", next)
		seen[next]++
		v = next
	}
	// 99 usable values per cycle
	assert.Len(t, seen, 99)
	assert.Equal(t, "52", v)
}

func TestAlpha(t *testing.T) {
	tests := map[string]string{
		"AAA": "AAB",
		"AAZ": "ABA",
		"AZZ": "BAA",
		"ZZY": "ZZZ",
		"A":   "B",
		"Y":   "Z",
	}
	for in, want := range tests {
		got, err := Alpha(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := Alpha("ZZZ")
	require.Error(t, err)
	assert.True(t, apperror.IsSequenceExhausted(err))

	_, err = Alpha("aBC")
	require.Error(t, err)
	assert.True(t, apperror.IsFormatError(err))
}

func TestAlphanumeric(t *testing.T) {
	tests := []struct {
		alpha, numeric         string
		wantAlpha, wantNumeric string
	}{
		{"AAA", "0000", "AAA", "0001"},
		{"AAA", "0003", "AAA", "0004"},
		{"AAA", "9998", "AAA", "9999"},
		{"AAA", "9999", "AAB", "0001"},
		{"AZZ", "9999", "BAA", "0001"},
	}
	for _, tt := range tests {
		a, n, err := Alphanumeric(tt.alpha, tt.numeric)
		require.NoError(t, err)
		assert.Equal(t, tt.wantAlpha, a)
		assert.Equal(t, tt.wantNumeric, n)
	}
}

func TestAlphanumeric_Exhausted(t *testing.T) {
	_, _, err := Alphanumeric("ZZZ", "9999")
	require.Error(t, err)
	assert.True(t, apperror.IsSequenceExhausted(err))

	// ZZZ is still usable while the numeric run has room
	a, n, err := Alphanumeric("ZZZ", "9998")
	require.NoError(t, err)
	assert.Equal(t, "ZZZ", a)
	assert.Equal(t, "9999", n)
}

func TestBody(t *testing.T) {
	alnum, err := segment.ParseLayout(`[A-Z]{3}[0-9]{4}`)
	require.NoError(t, err)

	got, err := Body(alnum, "AAA9999", Fail)
	require.NoError(t, err, "alphanumeric bodies always carry")
	assert.Equal(t, "AAB0001", got)

	_, err = Body(alnum, "AAA999", Wrap)
	require.Error(t, err)
	assert.True(t, apperror.IsFormatError(err))

	numeric, err := segment.ParseLayout(`[0-9]{2}[0-9]{2}`)
	require.NoError(t, err)

	got, err = Body(numeric, "0199", Wrap)
	require.NoError(t, err)
	assert.Equal(t, "0200", got)

	got, err = Body(numeric, "9999", Wrap)
	require.NoError(t, err)
	assert.Equal(t, "0001", got)

	_, err = Body(numeric, "9999", Fail)
	assert.True(t, apperror.IsSequenceExhausted(err))

	_, err = Body(segment.RandomLayout("AB", 2), "AB", Wrap)
	assert.True(t, apperror.IsConfiguration(err))
}

func TestParseOverflow(t *testing.T) {
	o, err := ParseOverflow("")
	require.NoError(t, err)
	assert.Equal(t, Wrap, o)

	o, err = ParseOverflow("fail")
	require.NoError(t, err)
	assert.Equal(t, Fail, o)

	_, err = ParseOverflow("explode")
	assert.Error(t, err)
}
