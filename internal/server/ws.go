package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/campusmatch/campusmatch/internal/auth"
	svcErr "github.com/campusmatch/campusmatch/internal/errors"
	"github.com/campusmatch/campusmatch/internal/realtime"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// Browser clients connect from the app origin; the token query parameter
	// is the actual authentication, so cross-origin upgrades are harmless.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleWebSocket upgrades the connection and runs the read loop.
//
// Authentication happens before the upgrade via the ?token= query parameter:
// a rejected caller gets a plain HTTP error, never a half-open socket. After
// the upgrade every failure is reported as a typed error frame.
func (s *Server) handleWebSocket(c *gin.Context) {
	claims, err := auth.Parse(s.cfg.JWT.Secret, c.Query("token"))
	if err != nil {
		abortWithError(c, svcErr.ErrUnauthorized)
		return
	}
	user, err := s.accounts.RequireActive(c.Request.Context(), claims.UserID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.appCtx.Logger.Warn("websocket upgrade failed", "user_id", user.ID, "err", err)
		return
	}

	client := realtime.NewClient(user.ID, ws)
	// each pong refreshes the presence key; the ping period is well inside
	// the presence TTL, so a live connection never reads as offline
	client.SetupReadLimits(func() {
		_ = s.appCtx.RedisCache.RefreshOnline(c.Request.Context(), user.ID)
	})
	s.hub.Register(user.ID, client)
	_ = s.appCtx.RedisCache.SetOnline(c.Request.Context(), user.ID)
	s.appCtx.Logger.Info("websocket connected", "user_id", user.ID, "online", s.hub.Online())

	defer func() {
		s.hub.Unregister(user.ID, client)
		client.Close()
		// a successor connection may already be registered; only mark the
		// user offline when this was the last one
		if !s.hub.IsOnline(user.ID) {
			_ = s.appCtx.RedisCache.SetOffline(c.Request.Context(), user.ID)
		}
		s.appCtx.Logger.Info("websocket disconnected", "user_id", user.ID, "online", s.hub.Online())
	}()

	for {
		frame, err := client.ReadFrame()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.appCtx.Logger.Debug("websocket read error", "user_id", user.ID, "err", err)
			}
			return
		}
		s.dispatchFrame(c, client, frame)
	}
}

// dispatchFrame routes one inbound frame to the chat service. Errors become
// error frames on the same socket.
func (s *Server) dispatchFrame(c *gin.Context, client *realtime.Client, frame realtime.Frame) {
	ctx := c.Request.Context()

	switch frame.Type {
	case realtime.TypeSendMessage:
		msg, err := s.chat.SendMessage(ctx, client.UserID, frame.MatchID, frame.Content)
		if err != nil {
			s.sendError(client, err)
			return
		}
		client.Send(realtime.Frame{
			Type: realtime.TypeAck,
			Message: &realtime.MessagePayload{
				ID:        msg.ID,
				MatchID:   msg.MatchID,
				SenderID:  msg.SenderID,
				Content:   msg.Content,
				Read:      msg.Read,
				CreatedAt: msg.CreatedAt,
			},
		})

	case realtime.TypeMarkRead:
		if err := s.chat.MarkRead(ctx, client.UserID, frame.MatchID); err != nil {
			s.sendError(client, err)
		}

	case realtime.TypeTyping:
		if err := s.chat.Typing(ctx, client.UserID, frame.MatchID, frame.IsTyping); err != nil {
			s.sendError(client, err)
		}

	case realtime.TypePing:
		client.Send(realtime.Frame{Type: realtime.TypePong})

	default:
		client.Send(realtime.ErrorFrame("unknown frame type: " + frame.Type))
	}
}

// sendError maps a service error to its HTTP message and ships it as an error
// frame, keeping socket and REST error texts consistent.
func (s *Server) sendError(client *realtime.Client, err error) {
	_, msg := svcErr.Map(err)
	client.Send(realtime.ErrorFrame(msg))
}
