package model

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// ID identifies a record on the link service. The server emits integers,
// older deployments emit strings, and legacy saved queries carry null.
type ID string

// UnmarshalJSON accepts a JSON number, a string or null.
func (id *ID) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	switch {
	case raw == "null":
		*id = ""
		return nil
	case strings.HasPrefix(raw, `"`):
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("invalid id %s: %w", raw, err)
	}
	*id = ID(n.String())
	return nil
}

// IsZero reports whether the id is missing.
func (id ID) IsZero() bool {
	return id == ""
}

func (id ID) String() string {
	return string(id)
}

// Link is a bookmark stored on the link service.
type Link struct {
	ID          ID       `json:"id"`
	Href        string   `json:"href"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	ToRead      bool     `json:"toread,omitempty"`
	Shared      bool     `json:"shared,omitempty"`
	Favourite   bool     `json:"favourite,omitempty"`
}

// Title returns the display name, falling back to the URL.
func (l Link) Title() string {
	if strings.TrimSpace(l.Name) == "" {
		return l.Href
	}
	return l.Name
}

// Flags returns the comma-separated flag list the service expects on writes.
func (l Link) Flags() string {
	var flags []string
	if l.ToRead {
		flags = append(flags, "toread")
	}
	if l.Shared {
		flags = append(flags, "shared")
	}
	if l.Favourite {
		flags = append(flags, "favourite")
	}
	return strings.Join(flags, ",")
}

// ApplyFlags sets the boolean flags from a comma or space separated list.
// Unknown flags are returned so callers can report them.
func (l *Link) ApplyFlags(s string) []string {
	var unknown []string
	for _, f := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' }) {
		switch strings.ToLower(f) {
		case "toread", "readlater":
			l.ToRead = true
		case "shared":
			l.Shared = true
		case "favourite", "favorite":
			l.Favourite = true
		default:
			unknown = append(unknown, f)
		}
	}
	return unknown
}

// NormalizeTags trims and lowercases tags, dropping empties and duplicates.
func NormalizeTags(tags []string) []string {
	cleaned := lo.Map(tags, func(t string, _ int) string {
		return strings.ToLower(strings.TrimSpace(t))
	})
	return lo.Uniq(lo.Filter(cleaned, func(t string, _ int) bool { return t != "" }))
}
