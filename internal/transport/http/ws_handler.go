package http

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"quizely-service/internal/app"
	"quizely-service/internal/domain"
)

// GameHandler runs one quiz session per websocket connection. The peer is
// the renderer: it receives question/answerResult/complete/leaderboard
// frames and sends answer/advance commands.
type GameHandler struct {
	service  *app.GameService
	upgrader websocket.Upgrader
}

func NewGameHandler(service *app.GameService) *GameHandler {
	return &GameHandler{
		service: service,
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

type answerPayload struct {
	Answer string `json:"answer"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type leaderboardPayload struct {
	Entries []domain.LeaderboardEntry `json:"entries"`
}

// ServeWS upgrades the request and drives a full play-through.
func (h *GameHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	email := r.URL.Query().Get("email")
	if name == "" {
		http.Error(w, "missing name", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	session, err := h.service.Start(r.Context(), name, email)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}

	events, cancel := session.Subscribe()
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	eventsDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	go func() {
		defer close(eventsDone)
		for {
			select {
			case event, ok := <-events:
				if !ok {
					return
				}
				select {
				case send <- eventFrame(event):
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	if view, ok := session.Current(); ok {
		send <- outboundMessage[any]{Type: "question", Payload: view}
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid answer payload"}}
				continue
			}
			if _, err := session.Submit(payload.Answer); err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
			}
		case "advance":
			if err := session.Advance(); err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
				continue
			}
			if session.Complete() {
				if _, err := h.service.Finish(r.Context(), session); err != nil {
					send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
					continue
				}
				send <- outboundMessage[any]{
					Type: "leaderboard",
					Payload: leaderboardPayload{
						Entries: h.service.Board().Query(domain.WindowAll, ""),
					},
				}
			}
		default:
			send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}}
		}
	}

	close(closeSignals)
	<-eventsDone
	close(send)
	<-writerDone
}

// eventFrame maps a core session event to its wire frame.
func eventFrame(event app.Event) outboundMessage[any] {
	switch event.Type {
	case app.EventQuestionPresented:
		return outboundMessage[any]{Type: "question", Payload: event.Question}
	case app.EventAnswerResolved:
		return outboundMessage[any]{Type: "answerResult", Payload: event.Answer}
	case app.EventSessionComplete:
		return outboundMessage[any]{Type: "complete", Payload: event.Summary}
	default:
		return outboundMessage[any]{Type: string(event.Type)}
	}
}
