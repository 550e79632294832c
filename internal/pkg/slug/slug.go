// Package slug builds URL-safe identifiers from display names and keeps them
// unique inside a caller-defined scope (an organization or a facility).
package slug

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	// MaxLength matches the slug column width.
	MaxLength = 50
	// Fallback is used when a name has no usable characters.
	Fallback = "item"
	// maxAttempts bounds the suffix search.
	maxAttempts = 1000
)

var (
	nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)
	// Pattern is the accepted shape of an explicit slug.
	Pattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

// Slugify lowercases name, strips accents and joins the remaining
// alphanumeric runs with single dashes.
func Slugify(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, name)
	if err != nil {
		folded = name
	}

	s := nonAlnum.ReplaceAllString(strings.ToLower(folded), "-")
	s = strings.Trim(s, "-")
	if len(s) > MaxLength {
		s = strings.TrimRight(s[:MaxLength], "-")
	}
	if s == "" {
		return Fallback
	}
	return s
}

// Valid reports whether s is an acceptable explicit slug.
func Valid(s string) bool {
	return len(s) <= MaxLength && Pattern.MatchString(s)
}

// ExistsFunc reports whether candidate is already taken in the caller's scope.
type ExistsFunc func(ctx context.Context, candidate string) (bool, error)

// Unique returns base if it is free, otherwise the first free base-2, base-3, ...
func Unique(ctx context.Context, base string, exists ExistsFunc) (string, error) {
	if base == "" {
		base = Fallback
	}
	for i := 1; i <= maxAttempts; i++ {
		candidate := withSuffix(base, i)
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("checking slug %q: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no free slug for %q after %d attempts", base, maxAttempts)
}

func withSuffix(base string, n int) string {
	if n == 1 {
		return base
	}
	suffix := "-" + strconv.Itoa(n)
	if len(base)+len(suffix) > MaxLength {
		base = strings.TrimRight(base[:MaxLength-len(suffix)], "-")
	}
	return base + suffix
}

// Lookup is a path segment that names a record either by numeric ID or by slug.
type Lookup struct {
	ID   int64
	Slug string
}

// IsID reports whether the lookup carries a numeric ID.
func (l Lookup) IsID() bool { return l.ID > 0 }

func (l Lookup) String() string {
	if l.IsID() {
		return strconv.FormatInt(l.ID, 10)
	}
	return l.Slug
}

// ParseLookup treats an all-digit segment as an ID and anything else as a slug.
func ParseLookup(segment string) (Lookup, error) {
	segment = strings.TrimSpace(segment)
	if segment == "" {
		return Lookup{}, fmt.Errorf("empty lookup")
	}
	if id, err := strconv.ParseInt(segment, 10, 64); err == nil {
		if id <= 0 {
			return Lookup{}, fmt.Errorf("id must be positive")
		}
		return Lookup{ID: id}, nil
	}
	return Lookup{Slug: strings.ToLower(segment)}, nil
}
