package app

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"worksheet-quiz/internal/addressing"
	"worksheet-quiz/internal/domain"
	"worksheet-quiz/internal/metrics"
)

// Game is one player's application instance: code entry, a Session, and the
// player's worksheet Repository. Intents are applied one at a time.
type Game struct {
	id      string
	repo    *Repository
	session *Session
	log     logrus.FieldLogger
	metrics *metrics.Metrics

	mu          sync.Mutex
	digits      []byte
	codeState   domain.CodeState
	codeInfo    *domain.CodeInfo
	missingPath string
	selected    *domain.WorksheetSummary
	subscribers map[chan domain.Snapshot]struct{}
}

// NewGame builds a game over repo. An empty id gets a random UUID; a nil rnd
// gets a time-seeded source.
func NewGame(id string, repo *Repository, log logrus.FieldLogger, m *metrics.Metrics, rnd *rand.Rand) *Game {
	if id == "" {
		id = uuid.NewString()
	}
	return &Game{
		id:          id,
		repo:        repo,
		session:     NewSession(rnd),
		log:         log.WithField("game_id", id),
		metrics:     m,
		codeState:   domain.CodeIncomplete,
		subscribers: make(map[chan domain.Snapshot]struct{}),
	}
}

func (g *Game) ID() string {
	return g.id
}

// Dispatch applies one intent and returns the resulting snapshot together with
// the effects the view should show. Rejected intents leave the state untouched.
func (g *Game) Dispatch(ctx context.Context, intent Intent) (domain.Snapshot, []domain.Effect) {
	g.mu.Lock()
	defer g.mu.Unlock()

	var effects []domain.Effect
	switch in := intent.(type) {
	case DigitEntered:
		effects = g.enterDigit(in)
	case DigitCleared:
		effects = g.clearDigit(in)
	case QuickCodeSelected:
		effects = g.quickCode(in)
	case FilesSelected:
		effects = g.ingestFiles(ctx, in)
	case Activate:
		effects = g.activate()
	case PlaceBet:
		g.session.SetBet(in.Bet)
	case Start:
		effects = g.start(in)
	case Answer:
		effects = g.answer(in)
	case Hint:
		effects = g.hint()
	case Skip:
		effects = g.skip()
	case Advance:
		effects = g.advance()
	case ClearAll:
		effects = g.clearAll(ctx)
	default:
		effects = []domain.Effect{{Kind: domain.EffectRejected, Message: "unsupported intent"}}
	}

	name := "unknown"
	if intent != nil {
		name = intent.Name()
	}
	outcome := "ok"
	for i := range effects {
		if effects[i].Intent == "" {
			effects[i].Intent = name
		}
		if effects[i].Kind == domain.EffectRejected || effects[i].Kind == domain.EffectInvalidDigit {
			outcome = "rejected"
		}
	}
	g.metrics.ObserveIntent(name, outcome)

	return g.broadcastLocked(), effects
}

// Snapshot returns the current view state.
func (g *Game) Snapshot() domain.Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshotLocked()
}

// Subscribe returns a channel that receives a snapshot after every intent,
// starting with the current one. The caller must invoke cancel.
func (g *Game) Subscribe() (<-chan domain.Snapshot, func()) {
	ch := make(chan domain.Snapshot, 8)

	g.mu.Lock()
	g.subscribers[ch] = struct{}{}
	// queued before any broadcast can reach ch
	ch <- g.snapshotLocked()
	g.mu.Unlock()

	cancel := func() {
		g.mu.Lock()
		if _, ok := g.subscribers[ch]; ok {
			delete(g.subscribers, ch)
			close(ch)
		}
		g.mu.Unlock()
	}
	return ch, cancel
}

func (g *Game) enterDigit(in DigitEntered) []domain.Effect {
	if in.Position < 0 || in.Position >= addressing.CodeLength || in.Position > len(g.digits) {
		return []domain.Effect{invalidDigit(fmt.Sprintf("position %d is not editable yet", in.Position+1))}
	}
	if !addressing.ValidDigit(in.Position, in.Value) {
		return []domain.Effect{invalidDigit(fmt.Sprintf("%d is not allowed at position %d", in.Value, in.Position+1))}
	}

	d := byte('0' + in.Value)
	if in.Position == len(g.digits) {
		g.digits = append(g.digits, d)
	} else {
		g.digits[in.Position] = d
	}
	g.resolveCode()
	return nil
}

func (g *Game) clearDigit(in DigitCleared) []domain.Effect {
	if in.Position < 0 || in.Position >= addressing.CodeLength {
		return []domain.Effect{invalidDigit(fmt.Sprintf("position %d does not exist", in.Position+1))}
	}
	if in.Position < len(g.digits) {
		g.digits = g.digits[:in.Position]
	}
	g.resolveCode()
	return nil
}

func (g *Game) quickCode(in QuickCodeSelected) []domain.Effect {
	if len(in.Code) != addressing.CodeLength || !addressing.ValidPrefix(in.Code) {
		return []domain.Effect{rejected(fmt.Errorf("%w: %q", domain.ErrInvalidCode, in.Code))}
	}
	g.digits = []byte(in.Code)
	g.resolveCode()
	return nil
}

func (g *Game) resolveCode() {
	g.codeInfo = nil
	g.missingPath = ""
	g.selected = nil

	if len(g.digits) < addressing.CodeLength {
		g.codeState = domain.CodeIncomplete
		return
	}
	info, err := addressing.ParseCode(string(g.digits))
	if err != nil {
		g.codeState = domain.CodeInvalid
		return
	}
	g.codeInfo = &info

	ws, err := g.repo.Get(info.Code)
	if err != nil {
		g.codeState = domain.CodeMissing
		g.missingPath = addressing.ExpectedPath(info)
		return
	}
	summary := domain.Summarize(ws)
	g.selected = &summary
	g.codeState = domain.CodeFound
}

func (g *Game) ingestFiles(ctx context.Context, in FilesSelected) []domain.Effect {
	docs := FilterDocuments(in.Files)
	if len(docs) == 0 {
		return []domain.Effect{{Kind: domain.EffectIngested, Message: "Loaded 0 worksheet(s), 0 failed"}}
	}

	result := g.repo.IngestBatch(docs)
	effects := make([]domain.Effect, 0, len(result.Errors)+2)
	effects = append(effects, domain.Effect{
		Kind:    domain.EffectIngested,
		Message: fmt.Sprintf("Loaded %d worksheet(s), %d failed", result.Succeeded, result.Failed),
	})
	for _, err := range result.Errors {
		effects = append(effects, domain.Effect{Kind: domain.EffectIngestError, Message: err.Error()})
	}

	if result.Succeeded > 0 {
		if err := g.repo.Save(ctx); err != nil {
			g.log.WithError(err).Warn("worksheets not persisted")
			effects = append(effects, domain.Effect{Kind: domain.EffectIngestError, Message: err.Error()})
		}
	}
	g.resolveCode()
	return effects
}

func (g *Game) activate() []domain.Effect {
	switch g.codeState {
	case domain.CodeIncomplete, domain.CodeInvalid:
		return []domain.Effect{rejected(fmt.Errorf("%w: enter a complete code first", domain.ErrInvalidCode))}
	case domain.CodeMissing:
		return []domain.Effect{rejected(fmt.Errorf("%w: upload %s", domain.ErrWorksheetNotFound, g.missingPath))}
	}

	ws, err := g.repo.Get(g.codeInfo.Code)
	if err != nil {
		g.resolveCode()
		return []domain.Effect{rejected(err)}
	}
	g.session.Activate(ws)
	g.log.WithField("code", ws.Code).Info("worksheet activated")
	return []domain.Effect{{
		Kind:    domain.EffectActivated,
		Message: fmt.Sprintf("%s ready: %d questions", ws.Title, len(ws.Questions)),
	}}
}

func (g *Game) start(in Start) []domain.Effect {
	bet := in.Bet
	if bet == 0 {
		bet = g.session.Bet()
	}
	if err := g.session.Start(bet); err != nil {
		return []domain.Effect{rejected(err)}
	}
	return nil
}

func (g *Game) answer(in Answer) []domain.Effect {
	fb, err := g.session.Answer(in.Index)
	if err != nil {
		return []domain.Effect{rejected(err)}
	}
	return []domain.Effect{{Kind: domain.EffectFeedback, Message: fb.Message}}
}

func (g *Game) hint() []domain.Effect {
	eliminated, err := g.session.UseHint()
	if err != nil {
		return []domain.Effect{rejected(err)}
	}
	return []domain.Effect{{
		Kind:    domain.EffectHint,
		Message: fmt.Sprintf("Option %s is not the answer", optionLabels[eliminated]),
	}}
}

func (g *Game) skip() []domain.Effect {
	if err := g.session.Skip(); err != nil {
		return []domain.Effect{rejected(err)}
	}
	return g.finishedEffects()
}

func (g *Game) advance() []domain.Effect {
	if err := g.session.Advance(); err != nil {
		return []domain.Effect{rejected(err)}
	}
	return g.finishedEffects()
}

func (g *Game) finishedEffects() []domain.Effect {
	if g.session.State() != domain.StateFinished {
		return nil
	}
	summary := g.session.Summary()
	g.metrics.ObserveFinished()
	g.log.WithFields(logrus.Fields{
		"score":    summary.Score,
		"accuracy": summary.Accuracy,
		"net":      summary.NetCoins,
	}).Info("session finished")
	msg := fmt.Sprintf("Finished: %s/%s points (%.1f%%), best streak %d",
		formatPoints(summary.Score), formatPoints(summary.TotalPoints), summary.Accuracy, summary.BestStreak)
	return []domain.Effect{{Kind: domain.EffectFinished, Message: msg}}
}

func (g *Game) clearAll(ctx context.Context) []domain.Effect {
	effects := []domain.Effect{{Kind: domain.EffectCleared, Message: "All worksheets cleared"}}
	if err := g.repo.Clear(ctx); err != nil {
		g.log.WithError(err).Warn("cleared worksheets not persisted")
		effects = append(effects, domain.Effect{Kind: domain.EffectIngestError, Message: err.Error()})
	}
	g.session.Reset()
	g.digits = nil
	g.resolveCode()
	return effects
}

func (g *Game) broadcastLocked() domain.Snapshot {
	snap := g.snapshotLocked()
	for ch := range g.subscribers {
		select {
		case ch <- snap:
		default:
			// drop the stale snapshot so a slow view never blocks play
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
	return snap
}

func (g *Game) snapshotLocked() domain.Snapshot {
	snap := domain.Snapshot{
		GameID:      g.id,
		Digits:      string(g.digits),
		CodeState:   g.codeState,
		CodeInfo:    g.codeInfo,
		MissingPath: g.missingPath,
		Selected:    g.selected,
		Library: domain.Library{
			Worksheets: g.repo.Count(),
			Questions:  g.repo.TotalQuestions(),
		},
	}
	g.session.fill(&snap)
	return snap
}

func rejected(err error) domain.Effect {
	return domain.Effect{Kind: domain.EffectRejected, Message: err.Error()}
}

func invalidDigit(msg string) domain.Effect {
	return domain.Effect{Kind: domain.EffectInvalidDigit, Message: msg}
}

// GameFactory builds a new game for a player id.
type GameFactory func(playerID string) *Game

// GameRepository keeps games alive across reconnects (in-memory, Redis, etc).
type GameRepository interface {
	GetOrCreate(playerID string) *Game
	Delete(playerID string)
}
