package crawler

import (
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Announcement is one entry of a notice board listing.
type Announcement struct {
	Title string
	Link  string
}

const detailLinkClass = "detailLink"

// ParseBoard collects the anchors with class "detailLink" from a board
// page. The link comes from href, or from the data-params attribute when
// href is empty or "#". Entries without a resolvable link are dropped, as
// are repeats of a link already seen on the page.
func ParseBoard(doc *html.Node, base *url.URL) []Announcement {
	var out []Announcement
	seen := make(map[string]bool)

	walk(doc, func(n *html.Node) bool {
		if n.DataAtom != atom.A || !hasClass(n, detailLinkClass) {
			return true
		}
		link, ok := detailURL(n, base)
		if !ok || seen[link] {
			return false
		}
		seen[link] = true
		out = append(out, Announcement{Title: collapseSpace(textOf(n)), Link: link})
		return false
	})
	return out
}

func detailURL(a *html.Node, base *url.URL) (string, bool) {
	href := strings.TrimSpace(attr(a, "href"))
	if href != "" && href != "#" && !strings.HasPrefix(strings.ToLower(href), "javascript:") {
		u, err := base.Parse(href)
		if err != nil {
			return "", false
		}
		u.Fragment = ""
		return u.String(), true
	}
	return paramsURL(base, attr(a, "data-params"))
}

// paramsURL builds a detail link from a board's data-params JSON, e.g.
// {"encMenuSeq":"…","encMenuBoardSeq":"…"}, by setting seq on the board URL.
func paramsURL(base *url.URL, params string) (string, bool) {
	if strings.TrimSpace(params) == "" {
		return "", false
	}
	var p map[string]any
	if err := json.Unmarshal([]byte(params), &p); err != nil {
		return "", false
	}
	if _, ok := p["encMenuSeq"]; !ok {
		return "", false
	}
	seq, ok := p["encMenuBoardSeq"]
	if !ok {
		return "", false
	}
	u := *base
	u.RawQuery = url.Values{"seq": {fmt.Sprint(seq)}}.Encode()
	u.Fragment = ""
	return u.String(), true
}

var contentClass = regexp.MustCompile(`(?i)content|article|post|body`)

// skipped elements never contribute text.
var skipped = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Nav:      true,
	atom.Header:   true,
	atom.Footer:   true,
}

// ExtractText returns the main text of a detail page, one line per text
// block. It prefers a div whose class looks like a content container, then
// the first <article>, then the whole <body>.
func ExtractText(doc *html.Node) string {
	var container *html.Node
	walk(doc, func(n *html.Node) bool {
		if container != nil {
			return false
		}
		if n.DataAtom == atom.Div && contentClass.MatchString(attr(n, "class")) {
			container = n
			return false
		}
		return true
	})
	if container == nil {
		container = find(doc, atom.Article)
	}
	if container == nil {
		container = find(doc, atom.Body)
	}
	if container == nil {
		return ""
	}

	var lines []string
	walk(container, func(n *html.Node) bool {
		if n.Type == html.ElementNode && skipped[n.DataAtom] {
			return false
		}
		if n.Type == html.TextNode {
			if s := collapseSpace(n.Data); s != "" {
				lines = append(lines, s)
			}
		}
		return true
	})
	return strings.Join(lines, "\n")
}

// walk visits n and its descendants depth-first. Returning false from fn
// skips the node's children.
func walk(n *html.Node, fn func(*html.Node) bool) {
	if !fn(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

func find(doc *html.Node, a atom.Atom) *html.Node {
	var found *html.Node
	walk(doc, func(n *html.Node) bool {
		if found != nil {
			return false
		}
		if n.DataAtom == a && n.Type == html.ElementNode {
			found = n
			return false
		}
		return true
	})
	return found
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func textOf(n *html.Node) string {
	var b strings.Builder
	walk(n, func(c *html.Node) bool {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
			b.WriteByte(' ')
		}
		return true
	})
	return b.String()
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
