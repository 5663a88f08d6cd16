package exporter

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nikbrunner/linkify/internal/model"
)

// DefaultExportPath returns the default export file path.
// Format: ~/Downloads/linkify-export-YYYY-MM-DD.html
func DefaultExportPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	filename := fmt.Sprintf("linkify-export-%s.html", time.Now().Format("2006-01-02"))
	return filepath.Join(home, "Downloads", filename), nil
}

// ExportHTML exports links to Netscape bookmark HTML format.
//
// The service has no folders, so the list is flat. Tags, flags and the
// description use the Pinboard attributes that ParseHTMLLinks reads back.
func ExportHTML(links []model.Link) string {
	var b strings.Builder

	// Header
	b.WriteString("<!DOCTYPE NETSCAPE-Bookmark-file-1>\n")
	b.WriteString("<META HTTP-EQUIV=\"Content-Type\" CONTENT=\"text/html; charset=UTF-8\">\n")
	b.WriteString("<TITLE>Bookmarks</TITLE>\n")
	b.WriteString("<H1>Bookmarks</H1>\n")
	b.WriteString("<DL><p>\n")

	for _, link := range links {
		writeLink(&b, link)
	}

	// Footer
	b.WriteString("</DL><p>\n")

	return b.String()
}

func writeLink(b *strings.Builder, link model.Link) {
	const prefix = "    "

	fmt.Fprintf(b, "%s<DT><A HREF=\"%s\"", prefix, html.EscapeString(link.Href))
	if len(link.Tags) > 0 {
		fmt.Fprintf(b, " TAGS=\"%s\"", html.EscapeString(strings.Join(link.Tags, ",")))
	}
	if link.ToRead {
		b.WriteString(" TOREAD=\"1\"")
	}
	if link.Shared {
		b.WriteString(" PRIVATE=\"0\"")
	} else {
		b.WriteString(" PRIVATE=\"1\"")
	}
	fmt.Fprintf(b, ">%s</A>\n", html.EscapeString(link.Title()))

	if link.Description != "" {
		fmt.Fprintf(b, "%s<DD>%s\n", prefix, html.EscapeString(link.Description))
	}
}
