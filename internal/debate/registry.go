package debate

import (
	"debateroom/pkg/realtime"
)

// Session is one live channel registered on a topic. Frames delivers, in
// order, the transcript backlog followed by every later broadcast; it is
// closed when the coordinator drops the session.
type Session struct {
	TopicID  string
	Username string

	sub *realtime.Subscription[Frame]
}

// Frames returns the session's ordered delivery queue.
func (s *Session) Frames() <-chan Frame {
	return s.sub.C
}

func (t *Topic) registerLocked(username string, queueSize int) (*Session, error) {
	backlog := make([]Frame, 0, len(t.transcript))
	for _, msg := range t.transcript {
		backlog = append(backlog, msg.Frame())
	}
	sub, ok := t.hub.Subscribe(username, queueSize, backlog...)
	if !ok {
		return nil, ErrAlreadyConnected
	}
	t.conns[username] = t.sideOfLocked(username)
	return &Session{TopicID: t.id, Username: username, sub: sub}, nil
}

// unregisterLocked removes s if it is still the user's live session.
func (t *Topic) unregisterLocked(s *Session) bool {
	if !t.hub.Unsubscribe(s.sub) {
		return false
	}
	delete(t.conns, s.Username)
	return true
}

// dropLocked closes whatever session username holds.
func (t *Topic) dropLocked(username string) bool {
	sub, ok := t.hub.Lookup(username)
	if !ok {
		return false
	}
	t.hub.Unsubscribe(sub)
	delete(t.conns, username)
	return true
}

// broadcastLocked enqueues f for every session and returns the users whose
// queue overflowed; those sessions are already closed.
func (t *Topic) broadcastLocked(f Frame) []string {
	dropped := t.hub.Publish(f)
	for _, username := range dropped {
		delete(t.conns, username)
	}
	return dropped
}

// sendLocked enqueues f for s only.
func (t *Topic) sendLocked(s *Session, f Frame) bool {
	if current, ok := t.hub.Lookup(s.Username); !ok || current != s.sub {
		return false
	}
	if !t.hub.Send(s.Username, f) {
		delete(t.conns, s.Username)
		return false
	}
	return true
}

func (t *Topic) closeAllLocked() []string {
	closed := t.hub.Close()
	clear(t.conns)
	return closed
}
