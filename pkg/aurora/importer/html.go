// Package importer parses Netscape bookmark HTML (the export format of
// every major browser) into dashboard categories.
package importer

import (
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/qbvs/aurora-pro/pkg/aurora/coredata"
	"github.com/qbvs/aurora-pro/pkg/aurora/models"
)

// DefaultIcon is assigned to imported categories.
const DefaultIcon = "Bookmark"

// ParseBookmarks reads Netscape bookmark HTML and returns one category per
// top-level folder. Bookmarks outside any folder land in a category named
// fallbackTitle. Folder nesting is flattened: a bookmark belongs to its
// nearest enclosing folder.
func ParseBookmarks(r io.Reader, fallbackTitle string) ([]models.Category, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	byTitle := make(map[string]int)
	var cats []models.Category

	category := func(title string) int {
		if i, ok := byTitle[title]; ok {
			return i
		}
		cats = append(cats, models.Category{
			ID:    "cat-" + coredata.NewID(),
			Title: title,
			Icon:  DefaultIcon,
			Links: []models.LinkItem{},
		})
		byTitle[title] = len(cats) - 1
		return len(cats) - 1
	}

	var folderStack []string
	var pendingFolder string

	var parse func(*html.Node)
	parse = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch strings.ToLower(n.Data) {
			case "h3":
				if name := textContent(n); name != "" {
					pendingFolder = name
				}
				return
			case "a":
				href := attr(n, "href")
				if href == "" {
					return
				}
				title := textContent(n)
				if title == "" {
					title = href
				}
				folder := fallbackTitle
				if len(folderStack) > 0 {
					folder = folderStack[len(folderStack)-1]
				}
				i := category(folder)
				cats[i].Links = append(cats[i].Links, models.LinkItem{
					ID:    "link-" + coredata.NewID(),
					Title: title,
					URL:   href,
				})
				return
			case "dl":
				if pendingFolder != "" {
					folderStack = append(folderStack, pendingFolder)
					pendingFolder = ""
					defer func() { folderStack = folderStack[:len(folderStack)-1] }()
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			parse(c)
		}
	}
	parse(doc)

	return cats, nil
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(sb.String())
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, name) {
			return a.Val
		}
	}
	return ""
}
