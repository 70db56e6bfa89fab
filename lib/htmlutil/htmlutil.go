package htmlutil

import (
	"bytes"
	"regexp"
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
	if node.Type == html.ElementNode {
		switch node.Data {
		case "script", "style":
			return
		}
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

// TextWithoutScripts extracts the visible text of a selection, dropping any
// embedded <script> and <style> subtrees. Sites commonly inline ad or
// tracking scripts in the middle of prose blocks.
func TextWithoutScripts(sel *goquery.Selection) string {
	var buffer bytes.Buffer
	for _, n := range sel.Nodes {
		getTextRecursive(n, &buffer)
	}
	return strings.TrimSpace(buffer.String())
}

var innerWhitespace = regexp.MustCompile(`\s+`)

// CollapseSpace flattens all runs of whitespace (including newlines) into
// single spaces and trims the ends.
func CollapseSpace(s string) string {
	return strings.TrimSpace(innerWhitespace.ReplaceAllString(s, " "))
}
