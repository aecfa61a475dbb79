package server_test

import (
	"fmt"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/campusmatch/campusmatch/internal/app"
	"github.com/campusmatch/campusmatch/internal/auth"
	"github.com/campusmatch/campusmatch/internal/cache"
	"github.com/campusmatch/campusmatch/internal/config"
	"github.com/campusmatch/campusmatch/internal/db"
	"github.com/campusmatch/campusmatch/internal/realtime"
	"github.com/campusmatch/campusmatch/internal/server"
	"github.com/campusmatch/campusmatch/internal/service/account"
	"github.com/campusmatch/campusmatch/internal/service/chat"
	"github.com/campusmatch/campusmatch/internal/service/explore"
	"github.com/campusmatch/campusmatch/internal/service/swipe"
)

//
// Test helpers
//

// setupWSServer wires the full stack behind an httptest server: users user-a
// and user-b share a match, user-c is an outsider.
func setupWSServer(t *testing.T) (*httptest.Server, *config.Config, string) {
	t.Helper()

	dbName := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	dbase, err := gorm.Open(sqlite.Open(dbName), &gorm.Config{
		NowFunc:                func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)

	sqlDB, err := dbase.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.Migrate(dbase))

	users := []db.User{
		{ID: "user-a", Username: "usera", Email: "a@test.com", PasswordHash: "x", DisplayName: "Alice", Gender: "female", Status: db.StatusApproved},
		{ID: "user-b", Username: "userb", Email: "b@test.com", PasswordHash: "x", DisplayName: "Bob", Gender: "male", Status: db.StatusApproved},
		{ID: "user-c", Username: "userc", Email: "c@test.com", PasswordHash: "x", DisplayName: "Carol", Gender: "female", Status: db.StatusApproved},
	}
	require.NoError(t, dbase.Create(&users).Error)

	match := db.Match{UserAID: "user-a", UserBID: "user-b"}
	require.NoError(t, dbase.Create(&match).Error)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(func() { mr.Close() })

	cfg := config.New()
	cfg.Redis.Addr = mr.Addr()
	cfg.JWT.Secret = "test-secret"

	redisCache := cache.NewRedisCache(cfg)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	appCtx := app.New(dbase, redisCache, logger)

	hub := realtime.NewHub()
	accounts := account.NewAccountService(appCtx, cfg.JWT.Secret, cfg.JWT.AccessTTL)
	swipes := swipe.NewSwipeService(appCtx, hub)
	exploreSvc := explore.NewExploreService(appCtx)
	chatSvc := chat.NewChatService(appCtx, hub)

	srv := server.New(cfg, appCtx, hub, accounts, swipes, exploreSvc, chatSvc)

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts, cfg, match.ID
}

func wsURL(ts *httptest.Server, token string) string {
	return "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?token=" + token
}

// dialWS opens an authenticated socket and syncs with a ping/pong round trip
// so the server side is guaranteed registered before the test proceeds.
func dialWS(t *testing.T, ts *httptest.Server, cfg *config.Config, userID string) *websocket.Conn {
	t.Helper()

	token, _, err := auth.Issue(cfg.JWT.Secret, userID, db.RoleMember, time.Hour)
	require.NoError(t, err)

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL(ts, token), nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })

	require.NoError(t, conn.WriteJSON(realtime.Frame{Type: realtime.TypePing}))
	frame := readFrame(t, conn)
	require.Equal(t, realtime.TypePong, frame.Type)
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) realtime.Frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var f realtime.Frame
	require.NoError(t, conn.ReadJSON(&f))
	return f
}

//
// Tests
//

func TestWebSocketRejectsBadToken(t *testing.T) {
	ts, _, _ := setupWSServer(t)

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(ts, "not-a-token"), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	defer resp.Body.Close()
	assert.Equal(t, 401, resp.StatusCode)
}

// TestWebSocketErrorFrames: authorization and protocol failures on the socket
// come back as typed error frames on the same connection, never silent drops.
func TestWebSocketErrorFrames(t *testing.T) {
	ts, cfg, matchID := setupWSServer(t)

	outsider := dialWS(t, ts, cfg, "user-c")

	// user-c is not a participant of the match
	require.NoError(t, outsider.WriteJSON(realtime.Frame{
		Type:    realtime.TypeSendMessage,
		MatchID: matchID,
		Content: "let me in",
	}))
	frame := readFrame(t, outsider)
	assert.Equal(t, realtime.TypeError, frame.Type)
	assert.Contains(t, frame.Error, "participant")

	// unknown discriminators are reported too
	require.NoError(t, outsider.WriteJSON(realtime.Frame{Type: "telepathy"}))
	frame = readFrame(t, outsider)
	assert.Equal(t, realtime.TypeError, frame.Type)
	assert.Contains(t, frame.Error, "unknown frame type")

	// the connection survives the errors
	require.NoError(t, outsider.WriteJSON(realtime.Frame{Type: realtime.TypePing}))
	frame = readFrame(t, outsider)
	assert.Equal(t, realtime.TypePong, frame.Type)
}

// TestWebSocketSendMessageAckAndRelay: the sender gets an ack carrying the
// persisted message, the online recipient gets the new_message push.
func TestWebSocketSendMessageAckAndRelay(t *testing.T) {
	ts, cfg, matchID := setupWSServer(t)

	sender := dialWS(t, ts, cfg, "user-a")
	recipient := dialWS(t, ts, cfg, "user-b")

	require.NoError(t, sender.WriteJSON(realtime.Frame{
		Type:    realtime.TypeSendMessage,
		MatchID: matchID,
		Content: "hi",
	}))

	ack := readFrame(t, sender)
	assert.Equal(t, realtime.TypeAck, ack.Type)
	require.NotNil(t, ack.Message)
	assert.NotEmpty(t, ack.Message.ID)
	assert.Equal(t, "hi", ack.Message.Content)
	assert.Equal(t, "user-a", ack.Message.SenderID)

	pushed := readFrame(t, recipient)
	assert.Equal(t, realtime.TypeNewMessage, pushed.Type)
	require.NotNil(t, pushed.Message)
	assert.Equal(t, ack.Message.ID, pushed.Message.ID)
	assert.Equal(t, "hi", pushed.Message.Content)
}
