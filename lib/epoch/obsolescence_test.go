package epoch

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseObsolescenceTimestamp(t *testing.T) {
	v, err := ParseObsolescenceTimestamp("000000006553f100deadbeef")
	require.NoError(t, err)
	assert.Equal(t, uint64(0x6553f100), v)

	v, err = ParseObsolescenceTimestamp("FFFFFFFFFFFFFFFF")
	require.NoError(t, err)
	assert.Equal(t, uint64(0xffffffffffffffff), v)
}

func TestParseObsolescenceTimestampRoundTrip(t *testing.T) {
	for _, v := range []uint64{0, 1, 1_700_000_000, 0x7fffffffffffffff, 0xffffffffffffffff} {
		prefix := FormatObsolescenceTimestamp(v)
		require.Len(t, prefix, ObsolescencePrefixLen)

		got, err := ParseObsolescenceTimestamp(prefix + "signature-material")
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

func TestParseObsolescenceTimestampErrors(t *testing.T) {
	tests := []struct {
		name  string
		token string
		bad   string
	}{
		{"not hex", "zzzzzzzzzzzzzzzzzzzz", "zzzzzzzzzzzzzzzz"},
		{"sign prefix", "+000000000000001", "+000000000000001"},
		{"separator", "0000_00000000001ab", "0000_00000000001"},
		{"too short", "abc", "abc"},
		{"empty", "", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseObsolescenceTimestamp(tc.token)
			require.Error(t, err)

			var perr *ParseError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, tc.bad, perr.Token)
			assert.Contains(t, err.Error(), "malformed obsolescence token")
		})
	}
}
