package importer

import (
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/nikbrunner/linkify/internal/model"
)

// ParseHTMLLinks parses Netscape bookmark HTML into links.
//
// The names of the folders enclosing a bookmark become its tags, merged
// with any TAGS attribute. A <DD> following a bookmark is its description.
// Pinboard-style TOREAD and PRIVATE attributes map onto the link flags.
func ParseHTMLLinks(r io.Reader) ([]model.Link, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	var links []model.Link

	// Folder names from the root down to the current DL
	var folderStack []string
	var pendingFolder string // folder waiting to be pushed on next DL
	last := -1               // index of the most recent link, for a trailing DD

	var parse func(*html.Node)
	parse = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch strings.ToLower(n.Data) {
			case "h3":
				pendingFolder = getTextContent(n)
				last = -1
				return // Don't recurse into H3

			case "a":
				href := getAttr(n, "href")
				if href == "" {
					last = -1
					return
				}

				tags := append([]string{}, folderStack...)
				if attr := getAttr(n, "tags"); attr != "" {
					tags = append(tags, strings.Split(attr, ",")...)
				}

				links = append(links, model.Link{
					Href:   href,
					Name:   getTextContent(n),
					Tags:   model.NormalizeTags(tags),
					ToRead: getAttr(n, "toread") == "1",
					Shared: getAttr(n, "private") == "0",
				})
				last = len(links) - 1
				return // Don't recurse into A

			case "dd":
				if last >= 0 {
					links[last].Description = ownText(n)
					last = -1
				}
				// A folder's DD encloses the folder's DL
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					if c.Type == html.ElementNode {
						parse(c)
					}
				}
				return

			case "dl":
				// Definition list - marks folder contents
				pushedFolder := false
				if pendingFolder != "" {
					folderStack = append(folderStack, pendingFolder)
					pendingFolder = ""
					pushedFolder = true
				}

				for c := n.FirstChild; c != nil; c = c.NextSibling {
					parse(c)
				}

				if pushedFolder && len(folderStack) > 0 {
					folderStack = folderStack[:len(folderStack)-1]
				}
				last = -1
				return
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			parse(c)
		}
	}

	parse(doc)
	return links, nil
}

// getTextContent returns the text content of a node.
func getTextContent(n *html.Node) string {
	var text strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			text.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(text.String())
}

// ownText returns the text directly inside n, ignoring child elements.
func ownText(n *html.Node) string {
	var text strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			text.WriteString(c.Data)
		}
	}
	return strings.TrimSpace(text.String())
}

// getAttr returns the value of an attribute, case-insensitive.
func getAttr(n *html.Node, key string) string {
	key = strings.ToLower(key)
	for _, attr := range n.Attr {
		if strings.ToLower(attr.Key) == key {
			return attr.Val
		}
	}
	return ""
}
