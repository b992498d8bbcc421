package media

import (
	"sort"
	"strings"
	"time"
)

// Type is the kind of item held by the library.
type Type string

const (
	TypeBook  Type = "book"
	TypeMovie Type = "movie"
	TypeMusic Type = "music"
	TypeTV    Type = "tv"
)

// Types lists every supported media type.
var Types = []Type{TypeBook, TypeMovie, TypeMusic, TypeTV}

// IsValid reports whether t is a supported media type.
func (t Type) IsValid() bool {
	switch t {
	case TypeBook, TypeMovie, TypeMusic, TypeTV:
		return true
	}
	return false
}

// ParseType normalizes raw and reports whether it names a media type.
func ParseType(raw string) (Type, bool) {
	t := Type(strings.ToLower(strings.TrimSpace(raw)))
	return t, t.IsValid()
}

// Media is a catalog item that can be lent out.
type Media struct {
	ID          string
	Title       string
	Author      string
	Type        Type
	Description string
	Category    string
	Tags        []string
	ReleaseYear *int
	ISBN        string
	ExternalID  string
	CoverKey    string
	Available   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NormalizeTags lower-cases, trims, drops empties and de-duplicates tags.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}
