// internal/api/stream.go
package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/tamzrod/luxtronik-replicator/internal/luxtronik"
)

const (
	pingInterval = 20 * time.Second
	writeWait    = 5 * time.Second
	streamBuffer = 4
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 8192,
	CheckOrigin:     func(_ *http.Request) bool { return true },
}

// stream pushes every published snapshot to one websocket client. The
// last snapshot, if any, is sent first.
func (s *Server) stream(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("api: ws upgrade", zap.Error(err))
		return
	}
	defer conn.Close()

	snaps := make(chan luxtronik.Snapshot, streamBuffer)
	sub := s.ctl.Subscribe(func(snap luxtronik.Snapshot) {
		select {
		case snaps <- snap:
		default:
			// the subscription already keeps order; a stuck client just misses some
		}
	})
	defer sub.Unsubscribe()

	// reader: detects the client going away
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	for {
		select {
		case snap := <-snaps:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(snap.Document()); err != nil {
				s.log.Debug("api: ws write", zap.Error(err))
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		case <-sub.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
				time.Now().Add(writeWait))
			return
		case <-gone:
			return
		case <-r.Context().Done():
			return
		}
	}
}
