package domain

// Question models an MCQ question with exactly four options.
type Question struct {
	ID            string   `json:"id"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
	Points        float64  `json:"points"`
}

// Worksheet is a validated set of questions addressed by a 6-digit code.
type Worksheet struct {
	Code        string     `json:"code"`
	Title       string     `json:"title"`
	Subject     string     `json:"subject"`
	Level       string     `json:"level"`
	Topic       string     `json:"topic,omitempty"`
	Difficulty  string     `json:"difficulty,omitempty"`
	Description string     `json:"description,omitempty"`
	Author      string     `json:"author,omitempty"`
	Created     string     `json:"created,omitempty"`
	Questions   []Question `json:"questions"`
}

// TotalPoints sums the points of every question.
func (w Worksheet) TotalPoints() float64 {
	total := 0.0
	for _, q := range w.Questions {
		total += q.Points
	}
	return total
}

// Category is one resolved lookup-table entry of a worksheet code.
type Category struct {
	Digit  int    `json:"digit"`
	Name   string `json:"name"`
	Icon   string `json:"icon,omitempty"`
	Folder string `json:"folder,omitempty"`
}

// CodeInfo describes a parsed worksheet code.
type CodeInfo struct {
	Code      string   `json:"code"`
	Level     Category `json:"level"`
	Subject   Category `json:"subject"`
	Grade     Category `json:"grade"`
	Chapter   int      `json:"chapter"`
	Worksheet int      `json:"worksheet"`
	Folder    string   `json:"folder"`
	Display   string   `json:"display"`
}
