package slugutil

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode"
	"unicode/utf8"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		name  string
		value string
		want  string
	}{
		{"simple", "Intro to Go", "intro-to-go"},
		{"symbols collapse", "C++ & Rust!!", "c-rust"},
		{"leading and trailing junk", "  --Hello World--  ", "hello-world"},
		{"already a slug", "already-a-slug", "already-a-slug"},
		{"digits kept", "Week 2: Concurrency", "week-2-concurrency"},
		{"accents transliterate", "Café au Lait", "cafe-au-lait"},
		{"non-ascii dropped", "日本語 for Beginners", "for-beginners"},
		{"non-ascii only", "日本語", ""},
		{"empty", "", ""},
		{"symbols only", "!!!", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Slugify(tc.value); got != tc.want {
				t.Fatalf("Slugify(%q): want=%q got=%q", tc.value, tc.want, got)
			}
		})
	}
}

func TestSlugifyTruncates(t *testing.T) {
	long := strings.Repeat("a", 500)
	got := Slugify(long)
	if len(got) != maxBaseLen {
		t.Fatalf("length: want=%d got=%d", maxBaseLen, len(got))
	}
}

func TestSlugifyAlwaysValidASCII(t *testing.T) {
	// Long multibyte input must not survive into the slug or split a rune at
	// the truncation boundary.
	inputs := []string{
		strings.Repeat("你", 80),
		strings.Repeat("é", 300),
		"mixed " + strings.Repeat("ü", 250) + " tail",
	}
	for _, input := range inputs {
		got := Slugify(input)
		if !utf8.ValidString(got) {
			t.Fatalf("Slugify(%.20q...): invalid UTF-8 %q", input, got)
		}
		for _, r := range got {
			if r > unicode.MaxASCII {
				t.Fatalf("Slugify(%.20q...): non-ASCII rune %q in %q", input, r, got)
			}
		}
	}
}

func TestUniqueNoCollision(t *testing.T) {
	exists := func(ctx context.Context, slug string) (bool, error) { return false, nil }
	got, err := Unique(context.Background(), "My Course", exists)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "my-course" {
		t.Fatalf("slug: want=%q got=%q", "my-course", got)
	}
}

func TestUniqueAppendsSuffix(t *testing.T) {
	taken := map[string]bool{"my-course": true, "my-course-2": true}
	exists := func(ctx context.Context, slug string) (bool, error) { return taken[slug], nil }
	got, err := Unique(context.Background(), "My Course", exists)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "my-course-3" {
		t.Fatalf("slug: want=%q got=%q", "my-course-3", got)
	}
}

func TestUniqueEmptyNameSkipsProbe(t *testing.T) {
	exists := func(ctx context.Context, slug string) (bool, error) {
		t.Fatal("probe should not run for an empty name")
		return false, nil
	}
	got, err := Unique(context.Background(), "   ", exists)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "" {
		t.Fatalf("slug: want empty got=%q", got)
	}
}

func TestUniquePropagatesProbeError(t *testing.T) {
	probeErr := errors.New("db down")
	exists := func(ctx context.Context, slug string) (bool, error) { return false, probeErr }
	if _, err := Unique(context.Background(), "My Course", exists); !errors.Is(err, probeErr) {
		t.Fatalf("want wrapped probe error, got %v", err)
	}
}
