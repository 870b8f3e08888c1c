package app

// Intent is a user action sent by the view.
type Intent interface {
	Name() string
}

// DigitEntered types value at a 0-based code position.
type DigitEntered struct {
	Position int
	Value    int
}

// DigitCleared erases the digit at Position and everything after it.
type DigitCleared struct {
	Position int
}

// QuickCodeSelected replaces the whole code entry.
type QuickCodeSelected struct {
	Code string
}

// FilesSelected hands over uploaded worksheet documents.
type FilesSelected struct {
	Files []Document
}

type Activate struct{}

// PlaceBet changes the stake used by the next Start.
type PlaceBet struct {
	Bet int
}

// Start begins play; a zero Bet uses the current stake.
type Start struct {
	Bet int
}

type Answer struct {
	Index int
}

type Hint struct{}

type Skip struct{}

type Advance struct{}

// ClearAll forgets every worksheet, including stored ones, and resets the game.
type ClearAll struct{}

func (DigitEntered) Name() string      { return "digit" }
func (DigitCleared) Name() string      { return "clearDigit" }
func (QuickCodeSelected) Name() string { return "quickCode" }
func (FilesSelected) Name() string     { return "files" }
func (Activate) Name() string          { return "activate" }
func (PlaceBet) Name() string          { return "bet" }
func (Start) Name() string             { return "start" }
func (Answer) Name() string            { return "answer" }
func (Hint) Name() string              { return "hint" }
func (Skip) Name() string              { return "skip" }
func (Advance) Name() string           { return "advance" }
func (ClearAll) Name() string          { return "clearAll" }
