package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"idea2app/internal/chat"
	"idea2app/internal/gateway/middleware"
)

// HandleChatHistory supports ?before=<RFC3339>&limit=<n> paging.
func (a *API) HandleChatHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var before time.Time
	if raw := strings.TrimSpace(q.Get("before")); raw != "" {
		t, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			writeError(w, invalid("before must be an RFC3339 timestamp"))
			return
		}
		before = t
	}
	limit := chat.HistoryLimit
	if raw := strings.TrimSpace(q.Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, invalid("limit must be a positive integer"))
			return
		}
		limit = min(n, 200)
	}
	msgs, err := a.Chat.History(r.Context(), pathValue(r, "projectID"), middleware.UserFrom(r.Context()), before, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if msgs == nil {
		msgs = []chat.Message{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": msgs})
}

type chatSendRequest struct {
	Content   string `json:"content"`
	IsInitial bool   `json:"isInitial"`
}

// HandleChatSend streams the reply as newline-delimited JSON events. Errors
// raised before the first event are answered with a normal status code.
func (a *API) HandleChatSend(w http.ResponseWriter, r *http.Request) {
	var in chatSendRequest
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}
	if strings.TrimSpace(in.Content) == "" {
		writeError(w, invalid("content is required"))
		return
	}

	flusher, _ := w.(http.Flusher)
	enc := json.NewEncoder(w)
	started := false
	sink := func(ev chat.Event) error {
		if !started {
			w.Header().Set("Content-Type", "application/x-ndjson")
			w.Header().Set("Cache-Control", "no-cache")
			w.WriteHeader(http.StatusOK)
			started = true
		}
		if err := enc.Encode(ev); err != nil {
			return err
		}
		if flusher != nil {
			flusher.Flush()
		}
		return nil
	}

	_, err := a.Chat.Send(r.Context(), chat.Turn{
		ProjectID: pathValue(r, "projectID"),
		UserID:    middleware.UserFrom(r.Context()),
		Text:      in.Content,
		IsInitial: in.IsInitial,
	}, sink)
	if err == nil {
		return
	}
	if !started {
		writeError(w, err)
		return
	}
	log.Printf("chat stream: project=%s: %v", pathValue(r, "projectID"), err)
}
