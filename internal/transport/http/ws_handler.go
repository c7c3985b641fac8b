package http

import (
	"encoding/json"
	"log"
	"net/http"

	"mbti-test-service/internal/app"
	"mbti-test-service/internal/domain"
	"mbti-test-service/internal/report"
	"github.com/gorilla/websocket"
)

type WSHandler struct {
	service  *app.TestService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.TestService) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// inboundMessage is the single typed command schema. Payload shape depends on
// Type; each command is validated once here at the boundary.
type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type startPayload struct {
	Variant domain.Variant `json:"variant"`
}

type answerPayload struct {
	Position int    `json:"position"`
	Label    string `json:"label"`
}

type scorePayload struct {
	Answers []domain.Answer `json:"answers"`
	Variant domain.Variant  `json:"variant"`
}

type reportPayload struct {
	TypeCode string `json:"typeCode"`
}

type resultsPayload struct {
	Limit int `json:"limit"`
}

type resultPayload struct {
	ID string `json:"id"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Kind    domain.ErrorKind `json:"kind"`
	Message string           `json:"message"`
}

// completedPayload decorates the stored record with display labels for each
// pair strength.
type completedPayload struct {
	Record         domain.TestRecord `json:"record"`
	StrengthLabels map[string]string `json:"strengthLabels"`
}

// ServeWS upgrades HTTP requests to websockets and wires them into the test
// use cases. One connection serves one user; commands arrive sequentially.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		http.Error(w, "missing userId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	// Losing the connection counts as losing foreground focus: snapshot
	// whatever progress exists so the user can resume later. No active
	// session is the normal case after completion.
	defer func() {
		_, _ = h.service.Suspend(r.Context(), userID)
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			return
		}
		h.handle(conn, r, userID, inbound)
	}
}

func (h *WSHandler) handle(conn *websocket.Conn, r *http.Request, userID string, inbound inboundMessage) {
	ctx := r.Context()
	switch inbound.Type {
	case "start":
		var payload startPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			h.sendError(conn, domain.KindValidation, "invalid start payload")
			return
		}
		view, err := h.service.StartTest(ctx, userID, payload.Variant)
		if err != nil {
			h.sendServiceError(conn, err)
			return
		}
		h.send(conn, "session", view)

	case "answer":
		var payload answerPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			h.sendError(conn, domain.KindValidation, "invalid answer payload")
			return
		}
		view, completed, err := h.service.SelectAnswer(ctx, userID, payload.Position, payload.Label)
		if err != nil {
			h.sendServiceError(conn, err)
			return
		}
		h.send(conn, "session", view)
		if completed {
			record, err := h.service.CompleteTest(ctx, userID)
			if err != nil {
				h.sendServiceError(conn, err)
				return
			}
			h.send(conn, "completed", decorate(record))
		}

	case "back", "forward":
		view, err := h.service.Navigate(ctx, userID, inbound.Type == "forward")
		if err != nil {
			h.sendServiceError(conn, err)
			return
		}
		h.send(conn, "session", view)

	case "suspend":
		view, err := h.service.Suspend(ctx, userID)
		if err != nil {
			h.sendServiceError(conn, err)
			return
		}
		h.send(conn, "session", view)

	case "abandon":
		h.service.Abandon(ctx, userID)
		h.send(conn, "abandoned", struct{}{})

	case "complete":
		record, err := h.service.CompleteTest(ctx, userID)
		if err != nil {
			h.sendServiceError(conn, err)
			return
		}
		h.send(conn, "completed", decorate(record))

	case "score":
		var payload scorePayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			h.sendError(conn, domain.KindValidation, "invalid score payload")
			return
		}
		result, err := h.service.Score(ctx, payload.Answers, payload.Variant)
		if err != nil {
			h.sendServiceError(conn, err)
			return
		}
		h.send(conn, "score", result)

	case "report":
		var payload reportPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			h.sendError(conn, domain.KindValidation, "invalid report payload")
			return
		}
		rep, err := h.service.GetReport(ctx, payload.TypeCode)
		if err != nil {
			h.sendServiceError(conn, err)
			return
		}
		h.send(conn, "report", rep)

	case "results":
		var payload resultsPayload
		if len(inbound.Payload) > 0 {
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				h.sendError(conn, domain.KindValidation, "invalid results payload")
				return
			}
		}
		records, err := h.service.ListResults(ctx, userID, payload.Limit)
		if err != nil {
			h.sendServiceError(conn, err)
			return
		}
		h.send(conn, "results", records)

	case "result":
		var payload resultPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			h.sendError(conn, domain.KindValidation, "invalid result payload")
			return
		}
		record, err := h.service.GetResult(ctx, userID, payload.ID)
		if err != nil {
			h.sendServiceError(conn, err)
			return
		}
		h.send(conn, "result", record)

	default:
		h.sendError(conn, domain.KindValidation, "unsupported message type")
	}
}

func (h *WSHandler) send(conn *websocket.Conn, msgType string, payload any) {
	if err := conn.WriteJSON(outboundMessage[any]{Type: msgType, Payload: payload}); err != nil {
		log.Printf("ws write error: %v", err)
	}
}

func (h *WSHandler) sendError(conn *websocket.Conn, kind domain.ErrorKind, message string) {
	h.send(conn, "error", errorPayload{Kind: kind, Message: message})
}

func (h *WSHandler) sendServiceError(conn *websocket.Conn, err error) {
	h.sendError(conn, domain.Kind(err), err.Error())
}

func decorate(record domain.TestRecord) completedPayload {
	labels := make(map[string]string, len(record.Result.Pairs))
	for _, pair := range record.Result.Pairs {
		labels[pair.Pair] = report.StrengthLabel(pair.Strength)
	}
	return completedPayload{Record: record, StrengthLabels: labels}
}
