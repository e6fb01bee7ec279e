package retrieve

import (
	"strings"
	"testing"
)

func TestExtractText_StripsNonContent(t *testing.T) {
	src := `<html><head><title>T</title><style>body { color: red }</style></head>
<body>
<nav><a href="/">Home</a> <a href="/about">About</a></nav>
<script>var tracker = "analytics";</script>
<h1>Shooting in Springfield</h1>
<p>Jane Doe was shot on June 10, 2025.</p>
<footer>Copyright 2025</footer>
</body></html>`

	text := ExtractText(src)

	if !strings.Contains(text, "Jane Doe was shot") {
		t.Errorf("article text missing: %q", text)
	}
	for _, junk := range []string{"analytics", "color: red", "About", "Copyright"} {
		if strings.Contains(text, junk) {
			t.Errorf("non-content %q leaked into extracted text: %q", junk, text)
		}
	}
}

func TestExtractText_BlockElementsBreakLines(t *testing.T) {
	text := ExtractText(`<p>first</p><p>second</p>`)
	if !strings.Contains(text, "\n") {
		t.Errorf("paragraphs should be separated by line breaks: %q", text)
	}
}

func TestExtractText_CollapsesWhitespace(t *testing.T) {
	text := ExtractText("<p>a    lot\t\tof     space</p>")
	if strings.Contains(text, "  ") {
		t.Errorf("runs of spaces should collapse: %q", text)
	}
}

func TestIsBlockedPage(t *testing.T) {
	if !IsBlockedPage("Please verify you are human before continuing.") {
		t.Error("captcha interstitial should be detected")
	}
	if !IsBlockedPage("404 Not Found\nThe page you requested does not exist.") {
		t.Error("soft-404 boilerplate should be detected")
	}
	if IsBlockedPage("Police responded to reports of a shooting on the east side.") {
		t.Error("ordinary article text should not be flagged")
	}
}

func TestIsBlockedPage_OnlyExaminesHead(t *testing.T) {
	article := strings.Repeat("The investigation continued for weeks. ", 60) +
		"Residents were asked to solve a captcha on the city website."
	if IsBlockedPage(article) {
		t.Error("a phrase deep in a long article must not flag the page")
	}
}
