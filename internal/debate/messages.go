package debate

import (
	"strings"
	"unicode/utf8"
)

// Submit records a chat message from a connected participant and delivers it
// to every connection on the topic.
func (c *Coordinator) Submit(topicID, username string, side Side, text string) error {
	if err := c.submit(topicID, username, side, text); err != nil {
		c.log.Info("Rejected message", "topic", topicID, "username", username, "side", side, "reason", err)
		return err
	}
	return nil
}

func (c *Coordinator) submit(topicID, username string, side Side, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyMessage
	}
	if c.opts.MaxMessageLength > 0 && utf8.RuneCountInString(text) > c.opts.MaxMessageLength {
		return ErrMessageTooLong
	}
	t, err := c.lock(topicID)
	if err != nil {
		return err
	}
	defer t.mu.Unlock()

	registered, ok := t.conns[username]
	if !ok {
		return ErrNotConnected
	}
	if registered == "" || registered != side {
		return ErrSideMismatch
	}
	if !t.bothSidesLocked() {
		return ErrDebateNotReady
	}
	c.appendLocked(t, ChatMessage{
		Username:  username,
		Side:      side,
		Text:      text,
		Timestamp: c.opts.Now(),
		Kind:      EventMessage,
	})
	return nil
}

// Notify sends a private System notice to s only. Notices are not recorded in
// the transcript.
func (c *Coordinator) Notify(s *Session, text string) bool {
	t, err := c.lock(s.TopicID)
	if err != nil {
		return false
	}
	defer t.mu.Unlock()
	msg := ChatMessage{
		Username:  SystemUsername,
		Text:      text,
		Timestamp: c.opts.Now(),
		Kind:      EventNotice,
		State:     t.lifecycle.State(),
	}
	return t.sendLocked(s, msg.Frame())
}

// announceLocked records and broadcasts a System message.
func (c *Coordinator) announceLocked(t *Topic, kind EventKind, text string) {
	c.appendLocked(t, ChatMessage{
		Username:  SystemUsername,
		Text:      text,
		Timestamp: c.opts.Now(),
		Kind:      kind,
	})
}

func (c *Coordinator) appendLocked(t *Topic, msg ChatMessage) {
	msg.State = t.lifecycle.State()
	t.transcript = append(t.transcript, msg)
	for _, username := range t.broadcastLocked(msg.Frame()) {
		c.log.Warn("Dropped lagging connection", "topic", t.id, "username", username)
	}
}
