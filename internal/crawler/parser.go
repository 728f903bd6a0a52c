package crawler

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ParseAnchors returns the raw href value of every <a> element in body, in
// document order. Values are trimmed but not resolved; empty hrefs are
// dropped. Malformed markup never fails: whatever anchors can be recovered
// are returned, possibly none.
func ParseAnchors(body string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return tokenizeAnchors(strings.NewReader(body))
	}

	hrefs := make([]string, 0)
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok {
			return
		}
		if href = strings.TrimSpace(href); href != "" {
			hrefs = append(hrefs, href)
		}
	})
	return hrefs
}

// tokenizeAnchors scans r token by token and collects anchor hrefs. It is
// used when a full parse fails, and stops at the first tokenizer error.
func tokenizeAnchors(r io.Reader) []string {
	hrefs := make([]string, 0)
	z := html.NewTokenizer(r)
	for {
		switch z.Next() {
		case html.ErrorToken:
			return hrefs
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			if tok.DataAtom != atom.A {
				continue
			}
			for _, attr := range tok.Attr {
				if attr.Key != "href" {
					continue
				}
				if href := strings.TrimSpace(attr.Val); href != "" {
					hrefs = append(hrefs, href)
				}
				break
			}
		}
	}
}
