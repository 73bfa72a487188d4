package session

import (
	"errors"
	"io"
	"sync"
	"time"
)

// State is the protocol position of a connection. Combat is a sub-state of
// being in game: everything allowed in game is allowed in combat.
type State int

const (
	StateLobby State = iota
	StateInGame
	StateCombat
)

func (s State) String() string {
	switch s {
	case StateLobby:
		return "lobby"
	case StateInGame:
		return "in-game"
	case StateCombat:
		return "combat"
	}
	return "unknown"
}

// sendQueueDepth bounds per-session outbound buffering. A client that falls
// this far behind gets disconnected rather than stall the tick.
const sendQueueDepth = 64

// ErrSendQueueFull means a session's outbound queue is saturated. Callers
// treat it like any other send failure: tear the session down.
var ErrSendQueueFull = errors.New("send queue full")

// Session is one live connection. The read loop is the only writer of state
// and username; the broadcast tick reads them, so both sit behind the session
// mutex. Player stats live in the world and are read through PlayerView
// copies, never through a retained pointer. Outbound packets go through a
// buffered queue drained by a dedicated writer goroutine, so neither handlers
// nor the tick ever block on a slow socket.
type Session struct {
	id   string
	conn io.ReadWriteCloser

	mu       sync.Mutex
	state    State
	username string
	lastSeen time.Time

	out       chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func newSession(id string, conn io.ReadWriteCloser) *Session {
	return &Session{
		id:       id,
		conn:     conn,
		state:    StateLobby,
		lastSeen: time.Now(),
		out:      make(chan []byte, sendQueueDepth),
		done:     make(chan struct{}),
	}
}

func (s *Session) Id() string {
	return s.id
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) setState(st State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = st
}

// Username returns the logged-in name, empty before login.
func (s *Session) Username() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.username
}

// InGame reports whether the session has passed login.
func (s *Session) InGame() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state != StateLobby
}

func (s *Session) setUsername(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.username = name
	s.state = StateInGame
}

// touch records inbound activity. Nothing expires sessions yet, but the
// timestamp is kept so an idle-disconnect policy can be added without a
// protocol change.
func (s *Session) touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = time.Now()
}

func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Send queues one encoded packet for delivery. It never blocks: a closed
// session reports io.ErrClosedPipe and a saturated queue ErrSendQueueFull.
func (s *Session) Send(pkt []byte) error {
	select {
	case <-s.done:
		return io.ErrClosedPipe
	default:
	}

	select {
	case s.out <- pkt:
		return nil
	case <-s.done:
		return io.ErrClosedPipe
	default:
		return ErrSendQueueFull
	}
}

// writeLoop drains the outbound queue onto the socket. A write error closes
// the session; the read loop then unwinds through the disconnect path.
func (s *Session) writeLoop() {
	for {
		select {
		case <-s.done:
			return
		case pkt := <-s.out:
			if _, err := s.conn.Write(pkt); err != nil {
				s.close()
				return
			}
		}
	}
}

// close shuts the connection down once; later calls are no-ops.
func (s *Session) close() {
	s.closeOnce.Do(func() {
		close(s.done)
		_ = s.conn.Close()
	})
}
