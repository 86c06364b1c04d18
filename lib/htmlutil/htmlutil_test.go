package htmlutil

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func TestClean(t *testing.T) {
	testCases := []struct {
		in       string
		expected string
	}{
		{in: "  United States \n", expected: "United States"},
		{in: "South\t\tKorea", expected: "South Korea"},
		{in: "26,854,599 ", expected: "26,854,599"},
		{in: "United\nStates", expected: "United States"},
		{in: "Bosnia\u00a0and Herzegovina", expected: "Bosnia and Herzegovina"},
		{in: "Côte d'Ivoire\u200b", expected: "Côte d'Ivoire"},
		{in: "—", expected: "—"},
		{in: "", expected: ""},
	}

	for _, test := range testCases {
		require.Equal(t, test.expected, Clean(test.in))
	}
}

func TestFirstChildText(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`
		<table><tbody><tr>
			<td id="a">1,234.5<sup>[n 1]</sup></td>
			<td id="b"><span>42</span> trailing</td>
			<td id="c"></td>
		</tr></tbody></table>`))
	if err != nil {
		t.Fatal(err)
	}

	require.Equal(t, "1,234.5", FirstChildText(doc.Find("#a")))
	require.Equal(t, "42", FirstChildText(doc.Find("#b")))
	require.Equal(t, "", FirstChildText(doc.Find("#c")))
	require.Equal(t, "", FirstChildText(doc.Find("#missing")))

	require.Equal(t, "1,234.5[n 1]", Text(doc.Find("#a")))
}
