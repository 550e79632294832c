package slug

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"simple", "Main Campus", "main-campus"},
		{"accents", "Café Résidence", "cafe-residence"},
		{"punctuation", "  North/South -- Wing!  ", "north-south-wing"},
		{"digits", "Block 7B", "block-7b"},
		{"empty", "", Fallback},
		{"symbols only", "***", Fallback},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.in))
		})
	}
}

func TestSlugifyTruncates(t *testing.T) {
	got := Slugify(strings.Repeat("ab ", 40))
	assert.LessOrEqual(t, len(got), MaxLength)
	assert.False(t, strings.HasSuffix(got, "-"))
}

func TestUnique(t *testing.T) {
	taken := map[string]bool{"main": true, "main-2": true}
	exists := func(_ context.Context, c string) (bool, error) { return taken[c], nil }

	got, err := Unique(context.Background(), "main", exists)
	require.NoError(t, err)
	assert.Equal(t, "main-3", got)

	got, err = Unique(context.Background(), "annex", exists)
	require.NoError(t, err)
	assert.Equal(t, "annex", got)
}

func TestUniquePropagatesErrors(t *testing.T) {
	boom := errors.New("db down")
	_, err := Unique(context.Background(), "main", func(context.Context, string) (bool, error) {
		return false, boom
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestUniqueSuffixRespectsMaxLength(t *testing.T) {
	base := strings.Repeat("a", MaxLength)
	got, err := Unique(context.Background(), base, func(_ context.Context, c string) (bool, error) {
		return c == base, nil
	})
	require.NoError(t, err)
	assert.Len(t, got, MaxLength)
	assert.True(t, strings.HasSuffix(got, "-2"))
}

func TestParseLookup(t *testing.T) {
	l, err := ParseLookup("42")
	require.NoError(t, err)
	assert.True(t, l.IsID())
	assert.Equal(t, int64(42), l.ID)

	l, err = ParseLookup("Main-Campus")
	require.NoError(t, err)
	assert.False(t, l.IsID())
	assert.Equal(t, "main-campus", l.Slug)

	_, err = ParseLookup("0")
	assert.Error(t, err)
	_, err = ParseLookup(" ")
	assert.Error(t, err)
}

func TestValid(t *testing.T) {
	assert.True(t, Valid("main-campus"))
	assert.False(t, Valid("Main Campus"))
	assert.False(t, Valid("-lead"))
	assert.False(t, Valid(strings.Repeat("a", MaxLength+1)))
}
