package api

import (
	"context"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

func accept(w http.ResponseWriter, r *http.Request) (*websocket.Conn, context.Context, error) {
	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		return nil, nil, err
	}
	return c, r.Context(), nil
}

// StreamLinks sends the state of every known link followed by each change
// until the client goes away or the service stops.
func StreamLinks(s *Service, w http.ResponseWriter, r *http.Request) {
	c, ctx, err := accept(w, r)
	if err != nil {
		log.WithError(err).Error("Failed to accept client")
		return
	}
	defer c.CloseNow()

	logger := log.WithFields(log.Fields{
		"session": uuid.NewString(),
		"remote":  r.RemoteAddr,
	})
	logger.Info("Link stream client connected")
	defer logger.Info("Link stream client disconnected")

	// Clients never send anything; reading only watches for the close.
	ctx = c.CloseRead(ctx)

	ch, unsub := s.links.Subscribe()
	defer unsub()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			_ = c.Close(websocket.StatusGoingAway, "server shutting down")
			return
		case ev, ok := <-ch:
			if !ok {
				_ = c.Close(websocket.StatusGoingAway, "link monitor stopped")
				return
			}
			if err := wsjson.Write(ctx, c, newLinkEventMessage(ev)); err != nil {
				logger.WithError(err).Debug("Failed to write link event")
				return
			}
		}
	}
}
