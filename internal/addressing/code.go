// Package addressing maps 6-digit worksheet codes to their level, subject,
// grade, chapter and worksheet number.
package addressing

import (
	"fmt"
	"strings"

	"worksheet-quiz/internal/domain"
)

// CodeLength is the number of digits in a worksheet code.
const CodeLength = 6

// Digit positions.
const (
	PosLevel = iota
	PosSubject
	PosGrade
	PosChapterTens
	PosChapterOnes
	PosWorksheet
)

type digitRange struct {
	min, max int
}

var ranges = [CodeLength]digitRange{
	PosLevel:       {1, 3},
	PosSubject:     {0, 5},
	PosGrade:       {1, 6},
	PosChapterTens: {0, 9},
	PosChapterOnes: {0, 9},
	PosWorksheet:   {1, 9},
}

var levels = map[int]domain.Category{
	1: {Digit: 1, Name: "Beginner", Icon: "🌱", Folder: "beginner"},
	2: {Digit: 2, Name: "Intermediate", Icon: "🌿", Folder: "intermediate"},
	3: {Digit: 3, Name: "Advanced", Icon: "🌳", Folder: "advanced"},
}

var subjects = map[int]domain.Category{
	0: {Digit: 0, Name: "Mathematics", Icon: "➗", Folder: "mathematics"},
	1: {Digit: 1, Name: "Science", Icon: "🔬", Folder: "science"},
	2: {Digit: 2, Name: "English", Icon: "📖", Folder: "english"},
	3: {Digit: 3, Name: "Social Studies", Icon: "🌍", Folder: "social-studies"},
	4: {Digit: 4, Name: "Computer Science", Icon: "💻", Folder: "computer-science"},
	5: {Digit: 5, Name: "General Knowledge", Icon: "💡", Folder: "general-knowledge"},
}

var grades = map[int]domain.Category{
	1: {Digit: 1, Name: "Grade 1"},
	2: {Digit: 2, Name: "Grade 2"},
	3: {Digit: 3, Name: "Grade 3"},
	4: {Digit: 4, Name: "Grade 4"},
	5: {Digit: 5, Name: "Grade 5"},
	6: {Digit: 6, Name: "Grade 6"},
}

// ValidDigit reports whether digit is allowed at position. It only checks the
// positional range, so it can be used while a code is still being typed.
func ValidDigit(position, digit int) bool {
	if position < 0 || position >= CodeLength {
		return false
	}
	r := ranges[position]
	return digit >= r.min && digit <= r.max
}

// ValidPrefix applies ValidDigit to every typed position of a partial code.
func ValidPrefix(prefix string) bool {
	if len(prefix) > CodeLength {
		return false
	}
	for i := 0; i < len(prefix); i++ {
		c := prefix[i]
		if c < '0' || c > '9' || !ValidDigit(i, int(c-'0')) {
			return false
		}
	}
	return true
}

// ParseCode validates a complete code and resolves its descriptor. Any failure
// wraps domain.ErrInvalidCode.
func ParseCode(code string) (domain.CodeInfo, error) {
	if len(code) != CodeLength {
		return domain.CodeInfo{}, fmt.Errorf("%w: want %d digits, got %d", domain.ErrInvalidCode, CodeLength, len(code))
	}

	var d [CodeLength]int
	for i := 0; i < CodeLength; i++ {
		c := code[i]
		if c < '0' || c > '9' {
			return domain.CodeInfo{}, fmt.Errorf("%w: position %d is not a digit", domain.ErrInvalidCode, i+1)
		}
		d[i] = int(c - '0')
		if !ValidDigit(i, d[i]) {
			r := ranges[i]
			return domain.CodeInfo{}, fmt.Errorf("%w: position %d must be %d-%d", domain.ErrInvalidCode, i+1, r.min, r.max)
		}
	}

	level, ok := levels[d[PosLevel]]
	if !ok {
		return domain.CodeInfo{}, fmt.Errorf("%w: unknown level %d", domain.ErrInvalidCode, d[PosLevel])
	}
	subject, ok := subjects[d[PosSubject]]
	if !ok {
		return domain.CodeInfo{}, fmt.Errorf("%w: unknown subject %d", domain.ErrInvalidCode, d[PosSubject])
	}
	grade, ok := grades[d[PosGrade]]
	if !ok {
		return domain.CodeInfo{}, fmt.Errorf("%w: unknown grade %d", domain.ErrInvalidCode, d[PosGrade])
	}

	chapter := d[PosChapterTens]*10 + d[PosChapterOnes]
	worksheet := d[PosWorksheet]
	folder := level.Folder + "/" + subject.Folder

	return domain.CodeInfo{
		Code:      code,
		Level:     level,
		Subject:   subject,
		Grade:     grade,
		Chapter:   chapter,
		Worksheet: worksheet,
		Folder:    folder,
		Display:   display(level, subject, grade, chapter, worksheet),
	}, nil
}

// ExpectedPath is where a worksheet document for info is expected to live.
func ExpectedPath(info domain.CodeInfo) string {
	return info.Folder + "/" + info.Code + ".json"
}

func display(level, subject, grade domain.Category, chapter, worksheet int) string {
	parts := []string{
		level.Name,
		subject.Name,
		grade.Name,
		fmt.Sprintf("Chapter %02d", chapter),
		fmt.Sprintf("Worksheet %d", worksheet),
	}
	return strings.Join(parts, " · ")
}
