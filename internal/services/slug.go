package services

import (
	"context"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var (
	slugStrip    = regexp.MustCompile(`[^a-z0-9_\s-]`)
	slugCollapse = regexp.MustCompile(`[\s-]+`)
)

// Slugify lowercases s, drops everything but letters, digits, spaces, hyphens
// and underscores, and joins the remaining words with single hyphens.
func Slugify(s string) string {
	s = strings.ToLower(s)
	s = slugStrip.ReplaceAllString(s, "")
	s = slugCollapse.ReplaceAllString(strings.TrimSpace(s), "-")
	return strings.Trim(s, "-_")
}

// RandomCode returns 8 lowercase alphanumeric characters (hex digits of a uuid).
func RandomCode() string {
	return strings.ToLower(uuid.New().String()[:8])
}

// slugExists reports whether slug is used by another profile.
type slugExists func(ctx context.Context, slug string) (bool, error)

// uniqueSlug appends random codes to base until exists reports it free.
func uniqueSlug(ctx context.Context, base string, exists slugExists) (string, error) {
	if base == "" {
		base = RandomCode()
	}

	slug := base
	for {
		taken, err := exists(ctx, slug)
		if err != nil {
			return "", err
		}
		if !taken {
			return slug, nil
		}
		slug = Slugify(base + " " + RandomCode())
	}
}

// profileSlugBase is slugify(first + " " + last) when both names are set,
// otherwise the username.
func profileSlugBase(firstName, lastName, username string) string {
	if firstName != "" && lastName != "" {
		if s := Slugify(firstName + " " + lastName); s != "" {
			return s
		}
	}
	return Slugify(username)
}
