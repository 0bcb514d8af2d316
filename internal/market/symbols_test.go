package market

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupTwoRowDirectory(t *testing.T) {
	table := NewSymbolTable([]Symbol{
		{Company: "ABC Corp", Code: "000123"},
		{Company: "XYZ Ltd", Code: "004560"},
	})

	code, err := table.Lookup("ABC Corp")
	require.NoError(t, err)
	assert.Equal(t, "000123", code)
	assert.Len(t, code, CodeWidth)

	_, err = table.Lookup("Unknown Inc")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLookupIsExactMatch(t *testing.T) {
	table := NewSymbolTable([]Symbol{{Company: "LG화학", Code: "051910"}})

	for _, name := range []string{"lg화학", "LG화학 ", " LG화학", "LG"} {
		_, err := table.Lookup(name)
		assert.ErrorIs(t, err, ErrNotFound, name)
	}
}

func TestLookupTrimsCode(t *testing.T) {
	table := NewSymbolTable([]Symbol{{Company: "삼성전자", Code: " 005930 "}})
	code, err := table.Lookup("삼성전자")
	require.NoError(t, err)
	assert.Equal(t, "005930", code)
}

func TestLookupDuplicates(t *testing.T) {
	same := NewSymbolTable([]Symbol{
		{Company: "Twin", Code: "000001"},
		{Company: "Twin", Code: "000001"},
	})
	code, err := same.Lookup("Twin")
	require.NoError(t, err)
	assert.Equal(t, "000001", code)

	conflicting := NewSymbolTable([]Symbol{
		{Company: "Twin", Code: "000001"},
		{Company: "Twin", Code: "000002"},
	})
	_, err = conflicting.Lookup("Twin")
	assert.True(t, errors.Is(err, ErrAmbiguous))
}

func TestSymbolTableIsImmutable(t *testing.T) {
	src := []Symbol{{Company: "A", Code: "000001"}}
	table := NewSymbolTable(src)
	src[0].Code = "999999"

	got := table.Symbols()
	got[0].Code = "888888"

	code, err := table.Lookup("A")
	require.NoError(t, err)
	assert.Equal(t, "000001", code)
	assert.Equal(t, 1, table.Len())
}

func TestPadCode(t *testing.T) {
	tests := []struct{ in, want string }{
		{"123", "000123"},
		{"5930", "005930"},
		{"051910", "051910"},
		{" 660 ", "000660"},
		{"", ""},
		{"0088M0", "0088M0"},
		{"12A", "12A"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PadCode(tt.in), tt.in)
	}
}
