package htmlutil

import (
	"bytes"
	"strings"

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

// CellTexts returns the trimmed text content of each element child of a
// table row, in document order. Inline markup inside a cell (mod_status
// wraps some values in <b> or <i>) is flattened to its text.
func CellTexts(row *goquery.Selection) []string {
	cells := row.Children()
	texts := make([]string, 0, cells.Length())
	cells.Each(func(_ int, cell *goquery.Selection) {
		var buffer bytes.Buffer
		for _, node := range cell.Nodes {
			getTextRecursive(node, &buffer)
		}
		texts = append(texts, strings.TrimSpace(buffer.String()))
	})
	return texts
}
