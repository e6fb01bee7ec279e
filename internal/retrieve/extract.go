package retrieve

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// ExtractText renders an HTML document as plain text: script/style/nav
// subtrees are dropped, block elements become line breaks, runs of
// whitespace collapse.
func ExtractText(htmlSrc string) string {
	doc, err := html.Parse(strings.NewReader(htmlSrc))
	if err != nil {
		return ""
	}

	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "nav", "header", "footer", "iframe":
				return
			case "p", "div", "br", "li", "h1", "h2", "h3", "h4", "tr":
				b.WriteByte('\n')
			}
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)

	return collapseWhitespace(b.String())
}

var spaceRe = regexp.MustCompile(`[ \t]+`)
var newlineRe = regexp.MustCompile(`\n{2,}`)

func collapseWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(spaceRe.ReplaceAllString(line, " "))
	}
	return strings.TrimSpace(newlineRe.ReplaceAllString(strings.Join(lines, "\n"), "\n"))
}

// blockSignatures are phrases that mark a served page as an error or block
// page rather than the cited document. Matched case-insensitively against
// the extracted text's head.
var blockSignatures = []string{
	"access denied",
	"are you a robot",
	"captcha",
	"verify you are human",
	"enable javascript and cookies",
	"subscribe to continue reading",
	"subscription required",
	"to continue reading, please subscribe",
	"page not found",
	"404 not found",
	"this content is not available in your region",
	"unusual traffic from your computer network",
}

// IsBlockedPage reports whether extracted text matches a known block/error
// page signature. Only the head of the document is examined; a legitimate
// article quoting the phrase deep in its body should not be discarded.
func IsBlockedPage(text string) bool {
	head := strings.ToLower(text)
	if len(head) > 2000 {
		head = head[:2000]
	}
	for _, sig := range blockSignatures {
		if strings.Contains(head, sig) {
			return true
		}
	}
	return false
}
