package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"floorplan-studio/internal/controller"
	"floorplan-studio/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// inEvent is a user action sent over the socket. Files travel over HTTP.
type inEvent struct {
	Type         string `json:"type"`
	Active       bool   `json:"active,omitempty"`
	Text         string `json:"text,omitempty"`
	Requirements string `json:"requirements,omitempty"`
}

func (e inEvent) toEvent() (controller.Event, error) {
	switch e.Type {
	case "drag":
		return controller.DragChanged{Active: e.Active}, nil
	case "remove":
		return controller.FileRemoved{}, nil
	case "analyze":
		return controller.AnalysisSubmitted{}, nil
	case "requirements":
		return controller.RequirementsEdited{Text: e.Text}, nil
	case "generate":
		return controller.GenerationSubmitted{Requirements: e.Requirements}, nil
	case "reset":
		return controller.ResetRequested{}, nil
	case "history":
		return controller.HistoryRefreshed{}, nil
	case "dismiss":
		return controller.NoticeDismissed{}, nil
	default:
		return nil, fmt.Errorf("unknown event type %q", e.Type)
	}
}

// Stream pushes every rendered view to the socket and dispatches the events
// the browser sends back.
func (h *UIHandler) Stream(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.WithFields(logrus.Fields{
			"error": err.Error(),
		}).Warn("Websocket upgrade failed")
		return
	}
	defer conn.Close()

	views, unsubscribe := h.controller.Subscribe()
	defer unsubscribe()

	done := make(chan struct{})
	go h.readEvents(conn, done)

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case view, ok := <-views:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(view); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

func (h *UIHandler) readEvents(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.WithFields(logrus.Fields{
					"error": err.Error(),
				}).Warn("Websocket closed unexpectedly")
			}
			return
		}

		var in inEvent
		if err := json.Unmarshal(payload, &in); err != nil {
			logger.WithFields(logrus.Fields{
				"error": err.Error(),
			}).Warn("Ignoring malformed websocket event")
			continue
		}

		ev, err := in.toEvent()
		if err != nil {
			logger.WithFields(logrus.Fields{
				"type": in.Type,
			}).Warn("Ignoring unknown websocket event")
			continue
		}

		if err := h.controller.Dispatch(h.ctx, ev); err != nil {
			logger.WithFields(logrus.Fields{
				"type":  in.Type,
				"error": err.Error(),
			}).Debug("Event rejected")
		}
	}
}
