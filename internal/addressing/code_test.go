package addressing

import (
	"errors"
	"fmt"
	"testing"

	"worksheet-quiz/internal/domain"
)

func TestParseCodeResolvesDescriptor(t *testing.T) {
	info, err := ParseCode("103052")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if info.Level.Name != "Beginner" || info.Subject.Name != "Mathematics" || info.Grade.Name != "Grade 3" {
		t.Fatalf("unexpected categories: %+v", info)
	}
	if info.Chapter != 5 || info.Worksheet != 2 {
		t.Fatalf("expected chapter 5 worksheet 2, got %d/%d", info.Chapter, info.Worksheet)
	}
	if info.Folder != "beginner/mathematics" {
		t.Fatalf("unexpected folder %q", info.Folder)
	}
	want := "Beginner · Mathematics · Grade 3 · Chapter 05 · Worksheet 2"
	if info.Display != want {
		t.Fatalf("display = %q, want %q", info.Display, want)
	}
	if got := ExpectedPath(info); got != "beginner/mathematics/103052.json" {
		t.Fatalf("expected path = %q", got)
	}
}

func TestParseCodeChapterRoundTrip(t *testing.T) {
	for chapter := 0; chapter <= 99; chapter++ {
		code := fmt.Sprintf("215%02d9", chapter)
		info, err := ParseCode(code)
		if err != nil {
			t.Fatalf("parse %s: %v", code, err)
		}
		if info.Chapter != chapter {
			t.Fatalf("code %s: chapter %d", code, info.Chapter)
		}
		if got := fmt.Sprintf("%02d", info.Chapter); got != code[3:5] {
			t.Fatalf("code %s: chapter displays as %s", code, got)
		}
	}
}

func TestParseCodeRejects(t *testing.T) {
	tests := []struct {
		name string
		code string
	}{
		{name: "empty", code: ""},
		{name: "too short", code: "10305"},
		{name: "too long", code: "1030521"},
		{name: "letter", code: "1a3052"},
		{name: "level zero", code: "003052"},
		{name: "level four", code: "403052"},
		{name: "subject six", code: "163052"},
		{name: "grade zero", code: "100052"},
		{name: "grade seven", code: "107052"},
		{name: "worksheet zero", code: "103050"},
		{name: "negative sign", code: "-03052"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCode(tt.code)
			if !errors.Is(err, domain.ErrInvalidCode) {
				t.Fatalf("ParseCode(%q) error = %v, want ErrInvalidCode", tt.code, err)
			}
		})
	}
}

func TestValidDigit(t *testing.T) {
	tests := []struct {
		position int
		digit    int
		want     bool
	}{
		{PosLevel, 0, false},
		{PosLevel, 1, true},
		{PosLevel, 3, true},
		{PosLevel, 4, false},
		{PosSubject, 0, true},
		{PosSubject, 5, true},
		{PosSubject, 6, false},
		{PosGrade, 6, true},
		{PosGrade, 7, false},
		{PosChapterTens, 0, true},
		{PosChapterOnes, 9, true},
		{PosWorksheet, 0, false},
		{PosWorksheet, 9, true},
		{-1, 1, false},
		{CodeLength, 1, false},
	}

	for _, tt := range tests {
		if got := ValidDigit(tt.position, tt.digit); got != tt.want {
			t.Errorf("ValidDigit(%d, %d) = %v, want %v", tt.position, tt.digit, got, tt.want)
		}
	}
}

func TestValidPrefixAcceptsPartialInput(t *testing.T) {
	for _, prefix := range []string{"", "1", "10", "103", "1030", "10305", "103052"} {
		if !ValidPrefix(prefix) {
			t.Errorf("expected %q to be a valid prefix", prefix)
		}
	}
	for _, prefix := range []string{"0", "17", "1x", "1030520"} {
		if ValidPrefix(prefix) {
			t.Errorf("expected %q to be rejected", prefix)
		}
	}
}
