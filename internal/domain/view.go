package domain

// GameState is the lifecycle position of a session.
type GameState string

const (
	StateIdle     GameState = "idle"
	StateReady    GameState = "ready"
	StatePlaying  GameState = "playing"
	StateAnswered GameState = "answered"
	StateFinished GameState = "finished"
)

// CodeState tells the view how the entered code resolved.
type CodeState string

const (
	CodeIncomplete CodeState = "incomplete"
	CodeInvalid    CodeState = "invalid"
	CodeMissing    CodeState = "missing"
	CodeFound      CodeState = "found"
)

// WorksheetSummary is the header shown for a selected worksheet.
type WorksheetSummary struct {
	Code        string  `json:"code"`
	Title       string  `json:"title"`
	Subject     string  `json:"subject"`
	Level       string  `json:"level"`
	Topic       string  `json:"topic,omitempty"`
	Difficulty  string  `json:"difficulty,omitempty"`
	Description string  `json:"description,omitempty"`
	Author      string  `json:"author,omitempty"`
	Questions   int     `json:"questions"`
	TotalPoints float64 `json:"totalPoints"`
}

// Summarize builds the view header of a worksheet.
func Summarize(ws Worksheet) WorksheetSummary {
	return WorksheetSummary{
		Code:        ws.Code,
		Title:       ws.Title,
		Subject:     ws.Subject,
		Level:       ws.Level,
		Topic:       ws.Topic,
		Difficulty:  ws.Difficulty,
		Description: ws.Description,
		Author:      ws.Author,
		Questions:   len(ws.Questions),
		TotalPoints: ws.TotalPoints(),
	}
}

// OptionView is a labeled answer option.
type OptionView struct {
	Label      string `json:"label"`
	Text       string `json:"text"`
	Eliminated bool   `json:"eliminated,omitempty"`
}

// QuestionView is the question currently on screen. The correct answer is never exposed.
type QuestionView struct {
	ID       string       `json:"id"`
	Text     string       `json:"text"`
	Options  []OptionView `json:"options"`
	Points   float64      `json:"points"`
	HintUsed bool         `json:"hintUsed"`
}

// Progress is the 1-based position within the shuffled order.
type Progress struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}

// Feedback is the result of the last answer.
type Feedback struct {
	Correct       bool    `json:"correct"`
	Selected      int     `json:"selected"`
	CorrectAnswer int     `json:"correctAnswer"`
	PointsEarned  float64 `json:"pointsEarned"`
	CoinsWon      int     `json:"coinsWon"`
	Message       string  `json:"message"`
}

// Summary is computed once a session finishes.
type Summary struct {
	Score       float64 `json:"score"`
	TotalPoints float64 `json:"totalPoints"`
	Accuracy    float64 `json:"accuracy"`
	BestStreak  int     `json:"bestStreak"`
	NetCoins    int     `json:"netCoins"`
	Answered    int     `json:"answered"`
	Correct     int     `json:"correct"`
	Skipped     int     `json:"skipped"`
}

// Library counts what the repository currently holds.
type Library struct {
	Worksheets int `json:"worksheets"`
	Questions  int `json:"questions"`
}

// Snapshot is everything the view needs to render one frame.
type Snapshot struct {
	GameID      string            `json:"gameId"`
	State       GameState         `json:"state"`
	Digits      string            `json:"digits"`
	CodeState   CodeState         `json:"codeState"`
	CodeInfo    *CodeInfo         `json:"codeInfo,omitempty"`
	MissingPath string            `json:"missingPath,omitempty"`
	Selected    *WorksheetSummary `json:"selected,omitempty"`
	Worksheet   *WorksheetSummary `json:"worksheet,omitempty"`
	Active      bool              `json:"active"`
	Question    *QuestionView     `json:"question,omitempty"`
	Progress    Progress          `json:"progress"`
	Coins       int               `json:"coins"`
	Bet         int               `json:"bet"`
	MaxBet      int               `json:"maxBet"`
	Multiplier  float64           `json:"multiplier"`
	Streak      int               `json:"streak"`
	Score       float64           `json:"score"`
	Feedback    *Feedback         `json:"feedback,omitempty"`
	Summary     *Summary          `json:"summary,omitempty"`
	Library     Library           `json:"library"`
}

// EffectKind names a one-shot view update.
type EffectKind string

const (
	EffectFeedback     EffectKind = "feedback"
	EffectRejected     EffectKind = "rejected"
	EffectInvalidDigit EffectKind = "invalidDigit"
	EffectHint         EffectKind = "hint"
	EffectIngested     EffectKind = "ingested"
	EffectIngestError  EffectKind = "ingestError"
	EffectFinished     EffectKind = "finished"
	EffectCleared      EffectKind = "cleared"
	EffectActivated    EffectKind = "activated"
)

// Effect is an advisory message for the view; it never blocks play.
type Effect struct {
	Kind    EffectKind `json:"kind"`
	Message string     `json:"message"`
	Intent  string     `json:"intent,omitempty"`
}
