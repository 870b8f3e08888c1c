package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"worksheet-quiz/internal/app"
	"worksheet-quiz/internal/metrics"
)

var errUnsupportedMessage = errors.New("unsupported message type")

type WSHandler struct {
	games    app.GameRepository
	log      logrus.FieldLogger
	metrics  *metrics.Metrics
	upgrader websocket.Upgrader
}

func NewWSHandler(games app.GameRepository, log logrus.FieldLogger, m *metrics.Metrics) *WSHandler {
	return &WSHandler{
		games:   games,
		log:     log,
		metrics: m,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type outboundMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades HTTP requests to websockets and binds each connection to a
// game. A connection with ?player=<id> resumes that player's game; without it
// the game is discarded when the socket closes.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	playerID := r.URL.Query().Get("player")
	anonymous := playerID == ""
	if anonymous {
		playerID = uuid.NewString()
	}
	log := h.log.WithField("player", playerID)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Warn("ws upgrade failed")
		return
	}
	defer conn.Close()

	h.metrics.PlayerConnected()
	defer h.metrics.PlayerDisconnected()

	game := h.games.GetOrCreate(playerID)
	if anonymous {
		defer h.games.Delete(playerID)
	}

	updates, cancel := game.Subscribe()
	defer cancel()

	send := make(chan outboundMessage, 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	// single writer; gorilla connections allow one concurrent writer
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.WithError(err).Debug("ws write failed")
				// keep draining so producers never block on a dead socket
				for range send {
				}
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case snap, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage{Type: "state", Payload: snap}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	log.Info("player connected")
	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		intent, err := decodeIntent(inbound)
		if err != nil {
			send <- outboundMessage{Type: "error", Payload: errorPayload{Message: err.Error()}}
			continue
		}
		_, effects := game.Dispatch(r.Context(), intent)
		for _, effect := range effects {
			send <- outboundMessage{Type: "effect", Payload: effect}
		}
	}
	log.Info("player disconnected")

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

type digitPayload struct {
	Position int `json:"position"`
	Value    int `json:"value"`
}

type codePayload struct {
	Code string `json:"code"`
}

type filePayload struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

type filesPayload struct {
	Files []filePayload `json:"files"`
}

type betPayload struct {
	Bet int `json:"bet"`
}

type answerPayload struct {
	Index int `json:"index"`
}

func decodeIntent(msg inboundMessage) (app.Intent, error) {
	switch msg.Type {
	case "digit":
		var p digitPayload
		if err := decodePayload(msg, &p); err != nil {
			return nil, err
		}
		return app.DigitEntered{Position: p.Position, Value: p.Value}, nil
	case "clearDigit":
		var p digitPayload
		if err := decodePayload(msg, &p); err != nil {
			return nil, err
		}
		return app.DigitCleared{Position: p.Position}, nil
	case "quickCode":
		var p codePayload
		if err := decodePayload(msg, &p); err != nil {
			return nil, err
		}
		return app.QuickCodeSelected{Code: p.Code}, nil
	case "files":
		var p filesPayload
		if err := decodePayload(msg, &p); err != nil {
			return nil, err
		}
		docs := make([]app.Document, 0, len(p.Files))
		for _, f := range p.Files {
			docs = append(docs, app.Document{Name: f.Name, Data: []byte(f.Text)})
		}
		return app.FilesSelected{Files: docs}, nil
	case "bet":
		var p betPayload
		if err := decodePayload(msg, &p); err != nil {
			return nil, err
		}
		return app.PlaceBet{Bet: p.Bet}, nil
	case "start":
		var p betPayload
		if err := decodePayload(msg, &p); err != nil {
			return nil, err
		}
		return app.Start{Bet: p.Bet}, nil
	case "answer":
		var p answerPayload
		if err := decodePayload(msg, &p); err != nil {
			return nil, err
		}
		return app.Answer{Index: p.Index}, nil
	case "activate":
		return app.Activate{}, nil
	case "hint":
		return app.Hint{}, nil
	case "skip":
		return app.Skip{}, nil
	case "advance":
		return app.Advance{}, nil
	case "clearAll":
		return app.ClearAll{}, nil
	default:
		return nil, errUnsupportedMessage
	}
}

// decodePayload treats an absent payload as empty.
func decodePayload(msg inboundMessage, v any) error {
	if len(msg.Payload) == 0 || string(msg.Payload) == "null" {
		return nil
	}
	if err := json.Unmarshal(msg.Payload, v); err != nil {
		return fmt.Errorf("invalid %s payload", msg.Type)
	}
	return nil
}
