package htmlutil

import (
	"bytes"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

// FirstChildText returns the text of the first child of the first node in
// the selection, this skips trailing markup like footnote references.
func FirstChildText(sel *goquery.Selection) string {
	if sel.Length() == 0 {
		return ""
	}
	return Clean(GetText(sel.Nodes[0].FirstChild))
}

// Text returns the cleaned text of the first node in the selection.
func Text(sel *goquery.Selection) string {
	if sel.Length() == 0 {
		return ""
	}
	return Clean(GetText(sel.Nodes[0]))
}

var innerWhitespace = regexp.MustCompile(` {2,}`)

// normalizeRunes turns every unicode space (newlines, tabs, nbsp) into a
// plain space and drops the remaining non-printable characters.
func normalizeRunes(s string) string {
	return strings.Map(func(c rune) rune {
		if unicode.IsSpace(c) {
			return ' '
		}
		if unicode.IsPrint(c) {
			return c
		}
		return -1
	}, s)
}

// Clean normalizes whitespace, strips non-printable characters, trims the
// string and collapses inner runs of spaces into one.
func Clean(s string) string {
	s = normalizeRunes(s)
	s = strings.TrimSpace(s)
	s = innerWhitespace.ReplaceAllString(s, " ")
	return s
}
