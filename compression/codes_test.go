package compression

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeriveCodesEmpty(t *testing.T) {
	table := DeriveCodes(nil)
	require.NotNil(t, table)
	require.Empty(t, table)
}

func TestDeriveCodesSingleSymbol(t *testing.T) {
	table := DeriveCodes(mustTree(t, FrequencyTable{'x': 9}))
	require.Equal(t, CodeTable{'x': "1"}, table)
}

func TestDeriveCodesAbracadabra(t *testing.T) {
	ft, err := CountFrequencies(strings.NewReader("abracadabra"))
	require.NoError(t, err)
	table := DeriveCodes(mustTree(t, ft))

	require.Equal(t, CodeTable{
		'a': "0",
		'c': "100",
		'd': "101",
		'b': "110",
		'r': "111",
	}, table)
	require.True(t, table.IsPrefixFree())
	require.Len(t, table, len(ft))
	require.Equal(t, int64(23), table.EncodedBits(ft))
}

func TestDeriveCodesPrefixFree(t *testing.T) {
	inputs := []string{
		"ab",
		"abracadabra",
		"Lorem ipsum dolor sit amet, consectetur adipiscing elit.",
		"多言語テスト 🧪 Пример строки",
		strings.Repeat("a", 100) + strings.Repeat("b", 50) + strings.Repeat("c", 25) + "d",
	}
	for _, in := range inputs {
		ft, err := CountFrequencies(strings.NewReader(in))
		require.NoError(t, err)
		table := DeriveCodes(mustTree(t, ft))
		require.True(t, table.IsPrefixFree(), "input %q", in)
		require.Len(t, table, len(ft), "input %q", in)
		for c := range ft {
			require.NotEmpty(t, table[c])
		}
	}
}

func TestIsPrefixFree(t *testing.T) {
	require.True(t, CodeTable{}.IsPrefixFree())
	require.True(t, CodeTable{'a': "0", 'b': "10", 'c': "11"}.IsPrefixFree())
	require.False(t, CodeTable{'a': "0", 'b': "01"}.IsPrefixFree())
	require.False(t, CodeTable{'a': "10", 'b': "10"}.IsPrefixFree())
	require.False(t, CodeTable{'a': ""}.IsPrefixFree())
}
