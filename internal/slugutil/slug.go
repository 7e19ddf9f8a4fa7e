package slugutil

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// maxBaseLen bounds the candidate slug before any collision suffix.
const maxBaseLen = 200

// Slugify lowercases the value and reduces it to an ASCII slug: the input is
// NFKD-decomposed so accented letters fall back to their base form, remaining
// non-ASCII runes are dropped, and every ASCII non-alphanumeric run collapses
// into a single dash. The result is trimmed and truncated to maxBaseLen.
// A value with no ASCII-representable characters yields "".
func Slugify(value string) string {
	lower := norm.NFKD.String(strings.ToLower(strings.TrimSpace(value)))
	var b strings.Builder
	lastDash := false
	for _, r := range lower {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteByte(byte(r))
			lastDash = false
		case r > unicode.MaxASCII:
			// Combining marks and untransliterable runes vanish without
			// leaving a separator behind.
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	slug := strings.Trim(b.String(), "-")
	if len(slug) > maxBaseLen {
		slug = strings.Trim(slug[:maxBaseLen], "-")
	}
	return slug
}

// ExistsFunc reports whether a candidate slug is already taken within the
// caller's uniqueness scope (global table, or per parent for nested entities).
type ExistsFunc func(ctx context.Context, slug string) (bool, error)

// Unique derives a slug for name and resolves collisions by appending -2, -3…
// until exists reports free. An empty name yields "" without probing: the
// entity is being created without a usable slug source, which is the caller's
// problem, not a failure here.
func Unique(ctx context.Context, name string, exists ExistsFunc) (string, error) {
	base := Slugify(name)
	if base == "" {
		return "", nil
	}
	candidate := base
	for i := 2; ; i++ {
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("probe slug %q: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}
