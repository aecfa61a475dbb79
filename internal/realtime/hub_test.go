package realtime_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/campusmatch/campusmatch/internal/realtime"
)

type fakeConn struct {
	mu     sync.Mutex
	frames []realtime.Frame
	closed bool
}

func (f *fakeConn) Send(frame realtime.Frame) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frames = append(f.frames, frame)
	return true
}

func (f *fakeConn) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func (f *fakeConn) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func TestSendToUser(t *testing.T) {
	hub := realtime.NewHub()
	conn := &fakeConn{}
	hub.Register("user-a", conn)

	ok := hub.SendToUser("user-a", realtime.Frame{Type: realtime.TypePong})
	assert.True(t, ok)
	assert.Len(t, conn.frames, 1)

	// nobody home
	ok = hub.SendToUser("user-b", realtime.Frame{Type: realtime.TypePong})
	assert.False(t, ok)
}

// TestRegisterEvictsPrevious: a second login takes over the session and the
// old connection is closed.
func TestRegisterEvictsPrevious(t *testing.T) {
	hub := realtime.NewHub()
	first := &fakeConn{}
	second := &fakeConn{}

	hub.Register("user-a", first)
	hub.Register("user-a", second)

	assert.True(t, first.isClosed())
	assert.False(t, second.isClosed())
	assert.Equal(t, 1, hub.Online())

	hub.SendToUser("user-a", realtime.Frame{Type: realtime.TypePong})
	assert.Empty(t, first.frames)
	assert.Len(t, second.frames, 1)
}

// TestUnregisterOnlyRemovesOwnBinding: the evicted connection's teardown must
// not tear down its successor's registration.
func TestUnregisterOnlyRemovesOwnBinding(t *testing.T) {
	hub := realtime.NewHub()
	first := &fakeConn{}
	second := &fakeConn{}

	hub.Register("user-a", first)
	hub.Register("user-a", second)

	// evicted read loop exits late
	hub.Unregister("user-a", first)
	assert.True(t, hub.IsOnline("user-a"))

	hub.Unregister("user-a", second)
	assert.False(t, hub.IsOnline("user-a"))
}
