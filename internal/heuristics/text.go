package heuristics

import (
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
)

var descriptionPolicy = newDescriptionPolicy()

func newDescriptionPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("p", "br", "div", "span")
	p.AllowElements("strong", "b", "em", "i", "u")
	p.AllowElements("ul", "ol", "li")
	p.AllowElements("h1", "h2", "h3", "h4", "h5", "h6")
	p.AllowAttrs("href").OnElements("a")
	p.AllowRelativeURLs(true)
	p.RequireParseableURLs(true)
	p.AllowURLSchemes("http", "https", "mailto")
	return p
}

// Unescape decodes HTML entities. Greenhouse returns job content
// entity-encoded ("&lt;p&gt;..."), sometimes twice ("&amp;nbsp;"), so decoding
// repeats until the text stops changing. It is a no-op on plain HTML.
func Unescape(content string) string {
	for range 3 {
		next := html.UnescapeString(content)
		if next == content {
			break
		}
		content = next
	}
	return content
}

// SanitizeHTML decodes entity-encoded content and strips everything except
// basic formatting, lists, headings and http(s)/mailto links.
func SanitizeHTML(content string) string {
	return strings.TrimSpace(descriptionPolicy.Sanitize(Unescape(content)))
}

// PlainText converts entity-encoded HTML into a single line of text.
func PlainText(content string) string {
	unescaped := Unescape(content)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(unescaped))
	if err != nil {
		return strings.Join(strings.Fields(unescaped), " ")
	}
	doc.Find("script, style").Remove()
	// Block elements are joined without whitespace by Text(); pad them.
	doc.Find("p, br, li, div, h1, h2, h3, h4, h5, h6").Each(func(_ int, s *goquery.Selection) {
		s.AfterHtml(" ")
	})
	return strings.Join(strings.Fields(doc.Text()), " ")
}
