package discovery

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFilterASCII(t *testing.T) {
	table := []struct {
		in      []string
		kept    []string
		skipped int
	}{
		{in: nil, kept: []string{}},
		{in: []string{"a", "b_2"}, kept: []string{"a", "b_2"}},
		{in: []string{"한국어", "x", "naïve", "y"}, kept: []string{"x", "y"}, skipped: 2},
	}

	for _, row := range table {
		kept, skipped := FilterASCII(row.in)
		require.Equal(t, row.kept, kept)
		require.Equal(t, row.skipped, skipped)
	}
}

func TestSelection(t *testing.T) {
	a := &Campaign{Name: "A", Streamers: []string{"x", "y"}}
	b := &Campaign{Name: "B", Streamers: []string{"y", "z", "x"}}
	twin := &Campaign{Name: "A", Streamers: []string{"x", "y"}}

	var sel Selection
	require.True(t, sel.Toggle(a))
	require.True(t, sel.Toggle(b))
	require.True(t, sel.Toggle(twin))
	require.Equal(t, 3, sel.Len())
	require.Equal(t, []string{"x", "y", "z"}, sel.Streamers())

	require.False(t, sel.Toggle(a))
	require.False(t, sel.Contains(a))
	require.True(t, sel.Contains(twin))
	require.Equal(t, []*Campaign{b, twin}, sel.Campaigns())
	require.Equal(t, []string{"y", "z", "x"}, sel.Streamers())

	require.True(t, sel.Toggle(a))
	require.Equal(t, []*Campaign{b, twin, a}, sel.Campaigns())
}
