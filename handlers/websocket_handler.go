package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/Dosada05/racket-club/brackets"
	"github.com/Dosada05/racket-club/services"
	"github.com/gorilla/websocket"
)

type WebSocketHandler struct {
	hub                *brackets.Hub
	competitionService services.CompetitionService
	upgrader           websocket.Upgrader
	logger             *slog.Logger
}

// NewWebSocketHandler accepts connections from allowedOrigins; "*" allows any origin.
func NewWebSocketHandler(hub *brackets.Hub, competitionService services.CompetitionService, allowedOrigins []string, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:                hub,
		competitionService: competitionService,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		logger: logger,
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || a == origin {
				return true
			}
		}
		return false
	}
}

// ServeWs subscribes the connection to the events of one competition.
// Клиент подключается к /ws/competitions/{competitionID}
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	competitionID, err := getIDFromURL(r, "competitionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	view, err := h.competitionService.GetCompetition(r.Context(), competitionID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	snapshot, err := json.Marshal(brackets.WebSocketMessage{
		Type:    brackets.EventCompetitionSnapshot,
		Payload: view,
		RoomID:  brackets.RoomForCompetition(competitionID),
	})
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already answered the client
		h.logger.Warn("websocket upgrade failed", slog.Int("competition_id", competitionID), slog.Any("error", err))
		return
	}

	client := brackets.NewClient(h.hub, conn, brackets.RoomForCompetition(competitionID))
	// первым сообщением клиент получает текущее состояние
	client.Send <- snapshot
	h.hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
