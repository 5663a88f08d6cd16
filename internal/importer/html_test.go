package importer_test

import (
	"strings"
	"testing"

	"github.com/nikbrunner/linkify/internal/importer"
)

func TestParseHTML_SingleLink(t *testing.T) {
	html := `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<TITLE>Bookmarks</TITLE>
<H1>Bookmarks</H1>
<DL><p>
    <DT><A HREF="https://example.com" ADD_DATE="1234567890">Example Site</A>
</DL><p>`

	links, err := importer.ParseHTMLLinks(strings.NewReader(html))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(links) != 1 {
		t.Fatalf("expected 1 link, got %d", len(links))
	}

	l := links[0]
	if l.Name != "Example Site" {
		t.Errorf("expected name 'Example Site', got %q", l.Name)
	}
	if l.Href != "https://example.com" {
		t.Errorf("expected href 'https://example.com', got %q", l.Href)
	}
	if len(l.Tags) != 0 {
		t.Errorf("expected no tags at root, got %v", l.Tags)
	}
	if !l.ID.IsZero() {
		t.Errorf("imported links get their id from the server, got %q", l.ID)
	}
}

func TestParseHTML_FoldersBecomeTags(t *testing.T) {
	html := `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<DL><p>
    <DT><H3 ADD_DATE="1234567890">Development</H3>
    <DL><p>
        <DT><H3 ADD_DATE="1234567890">React</H3>
        <DL><p>
            <DT><A HREF="https://react.dev" ADD_DATE="1234567890">React Docs</A>
        </DL><p>
        <DT><A HREF="https://github.com" ADD_DATE="1234567890">GitHub</A>
    </DL><p>
    <DT><A HREF="https://google.com" ADD_DATE="1234567890">Google</A>
</DL><p>`

	links, err := importer.ParseHTMLLinks(strings.NewReader(html))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(links) != 3 {
		t.Fatalf("expected 3 links, got %d", len(links))
	}

	want := map[string]string{
		"React Docs": "development,react",
		"GitHub":     "development",
		"Google":     "",
	}
	for _, l := range links {
		expected, ok := want[l.Name]
		if !ok {
			t.Errorf("unexpected link %q", l.Name)
			continue
		}
		if got := strings.Join(l.Tags, ","); got != expected {
			t.Errorf("%s: expected tags %q, got %q", l.Name, expected, got)
		}
	}
}

func TestParseHTML_PinboardAttributes(t *testing.T) {
	html := `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<DL><p>
<DT><A HREF="https://go.dev" TAGS="Go,lang,go" TOREAD="1" PRIVATE="0">Go</A>
<DD>The Go programming language
<DT><A HREF="https://private.example" PRIVATE="1">Private</A>
</DL><p>`

	links, err := importer.ParseHTMLLinks(strings.NewReader(html))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(links) != 2 {
		t.Fatalf("expected 2 links, got %d", len(links))
	}

	g := links[0]
	if got := strings.Join(g.Tags, ","); got != "go,lang" {
		t.Errorf("expected normalized tags go,lang, got %q", got)
	}
	if !g.ToRead || !g.Shared {
		t.Errorf("expected toread and shared, got %+v", g)
	}
	if g.Description != "The Go programming language" {
		t.Errorf("expected description, got %q", g.Description)
	}

	p := links[1]
	if p.Shared || p.ToRead {
		t.Errorf("expected no flags on private link, got %+v", p)
	}
	if p.Description != "" {
		t.Errorf("description must not leak to the next link, got %q", p.Description)
	}
}

func TestParseHTML_EmptyFile(t *testing.T) {
	html := `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<TITLE>Bookmarks</TITLE>
<H1>Bookmarks</H1>
<DL><p>
</DL><p>`

	links, err := importer.ParseHTMLLinks(strings.NewReader(html))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(links) != 0 {
		t.Errorf("expected 0 links, got %d", len(links))
	}
}

func TestParseHTML_MissingHref(t *testing.T) {
	html := `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<DL><p>
    <DT><A ADD_DATE="1234567890">No URL</A>
    <DT><A HREF="https://valid.com" ADD_DATE="1234567890">Valid</A>
</DL><p>`

	links, err := importer.ParseHTMLLinks(strings.NewReader(html))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Should skip link without HREF, keep valid one
	if len(links) != 1 {
		t.Fatalf("expected 1 link (skip missing href), got %d", len(links))
	}

	if links[0].Name != "Valid" {
		t.Errorf("expected 'Valid' link, got %q", links[0].Name)
	}
}
