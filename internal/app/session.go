package app

import (
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"worksheet-quiz/internal/domain"
)

const (
	InitialCoins = 1000
	MaxBet       = 500
	DefaultBet   = 100
	HintCost     = 50
	SkipCost     = 25
)

var (
	multiplierStep    = decimal.RequireFromString("0.2")
	multiplierPenalty = decimal.RequireFromString("0.5")
	minMultiplier     = decimal.NewFromInt(1)
	maxMultiplier     = decimal.NewFromInt(3)
)

var optionLabels = [...]string{"A", "B", "C", "D"}

// Session is the betting and scoring state machine for one player:
// idle -> ready -> playing <-> answered -> finished.
type Session struct {
	rnd *rand.Rand

	state      domain.GameState
	worksheet  *domain.Worksheet
	order      []int
	index      int
	score      float64
	coins      int
	bet        int
	streak     int
	bestStreak int
	multiplier decimal.Decimal
	active     bool
	hintsUsed  map[int]bool
	eliminated int
	feedback   *domain.Feedback
	summary    *domain.Summary

	answered int
	correct  int
	skipped  int
}

// NewSession returns an idle session with the starting balance. rnd drives
// question shuffling and hint selection; nil means a time-seeded source.
func NewSession(rnd *rand.Rand) *Session {
	return newSessionWithCoins(rnd, InitialCoins)
}

func newSessionWithCoins(rnd *rand.Rand, coins int) *Session {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	s := &Session{
		rnd:   rnd,
		state: domain.StateIdle,
		coins: coins,
		bet:   DefaultBet,
	}
	s.resetRound()
	s.clampBet()
	return s
}

// Activate loads a worksheet with a fresh question order and counters. Coins carry over.
func (s *Session) Activate(ws domain.Worksheet) {
	s.worksheet = &ws
	s.resetRound()
	s.state = domain.StateReady
}

// Reset drops the active worksheet and returns to idle. Coins carry over.
func (s *Session) Reset() {
	s.worksheet = nil
	s.resetRound()
	s.state = domain.StateIdle
}

// Start stakes bet and shows the first question. The stake is never refunded.
// A bet above min(MaxBet, coins) is clamped down.
func (s *Session) Start(bet int) error {
	if s.worksheet == nil || (s.state != domain.StateReady && s.state != domain.StateFinished) {
		return fmt.Errorf("%w: cannot start while %s", domain.ErrInvalidTransition, s.state)
	}
	if bet <= 0 {
		return domain.ErrInvalidBet
	}
	limit := s.MaxBet()
	if limit <= 0 {
		return fmt.Errorf("%w: need at least 1 coin to bet", domain.ErrInsufficientFunds)
	}
	if bet > limit {
		bet = limit
	}

	if s.state == domain.StateFinished {
		s.resetRound()
	}
	s.coins -= bet
	s.bet = bet
	s.clampBet()
	s.active = true
	s.index = 0
	s.state = domain.StatePlaying
	return nil
}

// Answer scores the selected option of the current question.
func (s *Session) Answer(selected int) (domain.Feedback, error) {
	if s.state != domain.StatePlaying {
		return domain.Feedback{}, fmt.Errorf("%w: no question awaiting an answer", domain.ErrInvalidTransition)
	}
	q := s.currentQuestion()
	if selected < 0 || selected >= len(q.Options) {
		return domain.Feedback{}, fmt.Errorf("%w: %d", domain.ErrInvalidOption, selected)
	}

	fb := domain.Feedback{
		Selected:      selected,
		CorrectAnswer: q.CorrectAnswer,
	}
	if selected == q.CorrectAnswer {
		won := coinsFor(q.Points, s.multiplier)
		s.score += q.Points
		s.coins += won
		s.streak++
		if s.streak > s.bestStreak {
			s.bestStreak = s.streak
		}
		s.multiplier = decimal.Min(s.multiplier.Add(multiplierStep), maxMultiplier)
		s.correct++

		fb.Correct = true
		fb.PointsEarned = q.Points
		fb.CoinsWon = won
		fb.Message = fmt.Sprintf("Correct! +%s points, +%d coins", formatPoints(q.Points), won)
	} else {
		s.streak = 0
		s.multiplier = decimal.Max(s.multiplier.Sub(multiplierPenalty), minMultiplier)
		fb.Message = fmt.Sprintf("Incorrect. The answer was %s: %s", optionLabels[q.CorrectAnswer], q.Options[q.CorrectAnswer])
	}

	s.answered++
	s.feedback = &fb
	s.state = domain.StateAnswered
	s.clampBet()
	return fb, nil
}

// UseHint spends HintCost to eliminate one wrong option of the current
// question and returns its index. Each question index gets one hint.
func (s *Session) UseHint() (int, error) {
	if s.state != domain.StatePlaying {
		return -1, fmt.Errorf("%w: no question to hint", domain.ErrInvalidTransition)
	}
	if s.hintsUsed[s.index] {
		return -1, domain.ErrHintUsed
	}
	if s.coins < HintCost {
		return -1, fmt.Errorf("%w: a hint costs %d coins", domain.ErrInsufficientFunds, HintCost)
	}

	q := s.currentQuestion()
	wrong := make([]int, 0, len(q.Options)-1)
	for i := range q.Options {
		if i != q.CorrectAnswer {
			wrong = append(wrong, i)
		}
	}
	s.coins -= HintCost
	s.hintsUsed[s.index] = true
	s.eliminated = wrong[s.rnd.Intn(len(wrong))]
	s.clampBet()
	return s.eliminated, nil
}

// Skip spends SkipCost to move past the current question without scoring.
func (s *Session) Skip() error {
	if s.state != domain.StatePlaying {
		return fmt.Errorf("%w: no question to skip", domain.ErrInvalidTransition)
	}
	if s.coins < SkipCost {
		return fmt.Errorf("%w: skipping costs %d coins", domain.ErrInsufficientFunds, SkipCost)
	}
	s.coins -= SkipCost
	s.skipped++
	s.clampBet()
	s.next()
	return nil
}

// Advance moves from an answered question to the next one, or finishes.
func (s *Session) Advance() error {
	if s.state != domain.StateAnswered {
		return fmt.Errorf("%w: answer the question first", domain.ErrInvalidTransition)
	}
	s.next()
	return nil
}

// SetBet records the desired stake, clamped to [0, min(MaxBet, coins)].
func (s *Session) SetBet(bet int) int {
	if bet < 0 {
		bet = 0
	}
	s.bet = bet
	s.clampBet()
	return s.bet
}

// MaxBet is the largest stake currently allowed.
func (s *Session) MaxBet() int {
	if s.coins < MaxBet {
		if s.coins < 0 {
			return 0
		}
		return s.coins
	}
	return MaxBet
}

func (s *Session) State() domain.GameState    { return s.state }
func (s *Session) Coins() int                 { return s.coins }
func (s *Session) Bet() int                   { return s.bet }
func (s *Session) Score() float64             { return s.score }
func (s *Session) Streak() int                { return s.streak }
func (s *Session) BestStreak() int            { return s.bestStreak }
func (s *Session) Active() bool               { return s.active }
func (s *Session) Index() int                 { return s.index }
func (s *Session) Summary() *domain.Summary   { return s.summary }
func (s *Session) Feedback() *domain.Feedback { return s.feedback }

// Multiplier is the current coin multiplier in [1.0, 3.0].
func (s *Session) Multiplier() float64 {
	return s.multiplier.InexactFloat64()
}

// Eliminated is the option removed by a hint on the current question, or -1.
func (s *Session) Eliminated() int {
	return s.eliminated
}

// Worksheet returns the active worksheet.
func (s *Session) Worksheet() (domain.Worksheet, bool) {
	if s.worksheet == nil {
		return domain.Worksheet{}, false
	}
	return *s.worksheet, true
}

// Order returns the shuffled question order of this round.
func (s *Session) Order() []int {
	out := make([]int, len(s.order))
	copy(out, s.order)
	return out
}

// CurrentQuestion returns the question on screen while playing or answered.
func (s *Session) CurrentQuestion() (domain.Question, bool) {
	if s.state != domain.StatePlaying && s.state != domain.StateAnswered {
		return domain.Question{}, false
	}
	return s.currentQuestion(), true
}

func (s *Session) currentQuestion() domain.Question {
	return s.worksheet.Questions[s.order[s.index]]
}

func (s *Session) next() {
	s.index++
	s.eliminated = -1
	s.feedback = nil
	if s.index >= len(s.order) {
		s.finish()
		return
	}
	s.state = domain.StatePlaying
}

func (s *Session) finish() {
	s.state = domain.StateFinished
	s.active = false

	total := s.worksheet.TotalPoints()
	accuracy := 0.0
	if total > 0 {
		accuracy = s.score / total * 100
	}
	s.summary = &domain.Summary{
		Score:       s.score,
		TotalPoints: total,
		Accuracy:    accuracy,
		BestStreak:  s.bestStreak,
		NetCoins:    s.coins - InitialCoins,
		Answered:    s.answered,
		Correct:     s.correct,
		Skipped:     s.skipped,
	}
}

func (s *Session) resetRound() {
	s.score = 0
	s.streak = 0
	s.bestStreak = 0
	s.multiplier = minMultiplier
	s.hintsUsed = make(map[int]bool)
	s.eliminated = -1
	s.index = 0
	s.active = false
	s.feedback = nil
	s.summary = nil
	s.answered, s.correct, s.skipped = 0, 0, 0
	s.order = nil
	if s.worksheet != nil {
		s.order = s.rnd.Perm(len(s.worksheet.Questions))
	}
}

func (s *Session) clampBet() {
	if limit := s.MaxBet(); s.bet > limit {
		s.bet = limit
	}
}

// fill copies the session part of a view snapshot.
func (s *Session) fill(snap *domain.Snapshot) {
	snap.State = s.state
	snap.Active = s.active
	snap.Coins = s.coins
	snap.Bet = s.bet
	snap.MaxBet = s.MaxBet()
	snap.Multiplier = s.Multiplier()
	snap.Streak = s.streak
	snap.Score = s.score
	snap.Feedback = s.feedback
	snap.Summary = s.summary

	if s.worksheet != nil {
		summary := domain.Summarize(*s.worksheet)
		snap.Worksheet = &summary
		snap.Progress.Total = len(s.order)
		switch s.state {
		case domain.StatePlaying, domain.StateAnswered:
			snap.Progress.Current = s.index + 1
		case domain.StateFinished:
			snap.Progress.Current = len(s.order)
		}
	}

	if q, ok := s.CurrentQuestion(); ok {
		view := &domain.QuestionView{
			ID:       q.ID,
			Text:     q.Question,
			Points:   q.Points,
			HintUsed: s.hintsUsed[s.index],
			Options:  make([]domain.OptionView, len(q.Options)),
		}
		for i, text := range q.Options {
			view.Options[i] = domain.OptionView{
				Label:      optionLabels[i],
				Text:       text,
				Eliminated: i == s.eliminated,
			}
		}
		snap.Question = view
	}
}

func coinsFor(points float64, multiplier decimal.Decimal) int {
	return int(decimal.NewFromFloat(points).Mul(multiplier).Round(0).IntPart())
}

func formatPoints(points float64) string {
	return strconv.FormatFloat(points, 'f', -1, 64)
}
