package handler

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"idea2app/internal/chat"
	"idea2app/internal/gateway/middleware"
)

const (
	chatWSWriteWait = 10 * time.Second
	chatWSPongWait  = 60 * time.Second
	chatWSPingEvery = (chatWSPongWait * 9) / 10
)

var chatWSUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

type chatWSInbound struct {
	Type      string `json:"type"`
	Content   string `json:"content,omitempty"`
	IsInitial bool   `json:"isInitial,omitempty"`
}

type chatWSOutbound struct {
	chat.Event
	Code string `json:"code,omitempty"`
}

// HandleChatWS carries the same event stream as HandleChatSend over a
// websocket. Turns on one connection run one at a time.
func (a *API) HandleChatWS(w http.ResponseWriter, r *http.Request) {
	projectID := pathValue(r, "projectID")
	userID := middleware.UserFrom(r.Context())
	if _, err := a.ownedProject(r, projectID); err != nil {
		writeError(w, err)
		return
	}

	conn, err := chatWSUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	if err := conn.SetReadDeadline(time.Now().Add(chatWSPongWait)); err != nil {
		log.Printf("chat ws set read deadline failed: %v", err)
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(chatWSPongWait))
	})

	writeCh := make(chan chatWSOutbound, 64)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		defer cancel()
		ticker := time.NewTicker(chatWSPingEvery)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case out := <-writeCh:
				if err := conn.SetWriteDeadline(time.Now().Add(chatWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteJSON(out); err != nil {
					return
				}
			case <-ticker.C:
				if err := conn.SetWriteDeadline(time.Now().Add(chatWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	// Token events must not be dropped, so pushes block until the writer
	// takes them or the connection is gone.
	push := func(out chatWSOutbound) error {
		select {
		case writeCh <- out:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	for {
		var in chatWSInbound
		if err := conn.ReadJSON(&in); err != nil {
			cancel()
			<-writerDone
			return
		}
		switch strings.ToLower(strings.TrimSpace(in.Type)) {
		case "ping":
			_ = push(chatWSOutbound{Event: chat.Event{Type: "pong"}})
		case "send":
			if strings.TrimSpace(in.Content) == "" {
				_ = push(chatWSOutbound{Event: chat.Event{Type: chat.EventError, Error: "content is required"}, Code: "invalid_argument"})
				continue
			}
			streamed := false
			_, err := a.Chat.Send(ctx, chat.Turn{
				ProjectID: projectID,
				UserID:    userID,
				Text:      in.Content,
				IsInitial: in.IsInitial,
			}, func(ev chat.Event) error {
				streamed = true
				return push(chatWSOutbound{Event: ev})
			})
			if err != nil {
				log.Printf("chat ws: project=%s: %v", projectID, err)
				if !streamed {
					_ = push(chatWSOutbound{Event: chat.Event{Type: chat.EventError, Error: err.Error()}, Code: "internal"})
				}
			}
		default:
			_ = push(chatWSOutbound{
				Event: chat.Event{Type: chat.EventError, Error: "unsupported type: " + in.Type},
				Code:  "invalid_argument",
			})
		}
	}
}
