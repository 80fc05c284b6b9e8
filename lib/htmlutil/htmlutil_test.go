package htmlutil

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func TestClean(t *testing.T) {
	table := []struct {
		input    string
		expected string
	}{
		{input: "  shroud ", expected: "shroud"},
		{input: "\n\tHJune\n", expected: "HJune"},
		{input: "two   words", expected: "two words"},
		{input: "zero\u200bwidth", expected: "zerowidth"},
	}

	for _, row := range table {
		require.Equal(t, row.expected, Clean(row.input))
	}
}

func TestTexts(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`
		<div>
			<span class="n"> a <b>b</b></span>
			<span class="n">   </span>
			<span class="n">c</span>
		</div>
	`))
	require.NoError(t, err)

	require.Equal(t, []string{"a b", "c"}, Texts(doc.Find("span.n")))
}
