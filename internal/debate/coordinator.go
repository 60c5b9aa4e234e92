// Package debate coordinates debate topics: the membership ledger, the
// pause/resume lifecycle, live connections and the chat transcript.
//
// Each topic is its own unit of mutual exclusion. A roster change, the
// lifecycle transition it causes and the resulting System broadcast happen in
// one critical section, so every connection observes them in the same order.
// Topics never share a lock.
package debate

import (
	"cmp"
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"debateroom/pkg/realtime"
)

// Options tunes a Coordinator. Zero values select defaults.
type Options struct {
	// QueueSize bounds the frames waiting for one slow connection.
	QueueSize int
	// MaxMessageLength caps chat messages, in runes. Zero disables the cap.
	MaxMessageLength int
	// Archive receives every transcript on Shutdown when set.
	Archive Archive

	Now   func() time.Time
	NewID func() string
}

// Coordinator owns every live topic in the process.
type Coordinator struct {
	log     *slog.Logger
	topics  *realtime.RoomStore[*Topic]
	opts    Options
	stopped atomic.Bool
}

// NewCoordinator creates an empty coordinator.
func NewCoordinator(log *slog.Logger, opts Options) *Coordinator {
	if opts.QueueSize <= 0 {
		opts.QueueSize = realtime.DefaultQueueSize
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	return &Coordinator{
		log:    log,
		topics: realtime.NewRoomStore[*Topic](),
		opts:   opts,
	}
}

// lock returns the topic with its mutex held. The caller must unlock it.
func (c *Coordinator) lock(topicID string) (*Topic, error) {
	if c.stopped.Load() {
		return nil, ErrClosed
	}
	room, ok := c.topics.Get(topicID)
	if !ok {
		return nil, ErrTopicNotFound
	}
	t := room.State
	t.mu.Lock()
	if t.deleted {
		t.mu.Unlock()
		return nil, ErrTopicNotFound
	}
	return t, nil
}

// Create opens a new topic owned by username.
func (c *Coordinator) Create(title, username string) (Snapshot, error) {
	title = strings.TrimSpace(title)
	username = strings.TrimSpace(username)
	if title == "" {
		return Snapshot{}, ErrEmptyTitle
	}
	if username == "" {
		return Snapshot{}, ErrEmptyUsername
	}
	if c.stopped.Load() {
		return Snapshot{}, ErrClosed
	}
	for {
		t := newTopic(c.opts.NewID(), title, username, c.opts.Now())
		if _, ok := c.topics.Create(t.id, t); !ok {
			continue
		}
		c.log.Info("Topic created", "topic", t.id, "creator", username)
		t.mu.Lock()
		defer t.mu.Unlock()
		return t.snapshotLocked(), nil
	}
}

// Get returns a snapshot of one topic.
func (c *Coordinator) Get(topicID string) (Snapshot, error) {
	t, err := c.lock(topicID)
	if err != nil {
		return Snapshot{}, err
	}
	defer t.mu.Unlock()
	return t.snapshotLocked(), nil
}

// List returns every topic, oldest first.
func (c *Coordinator) List() []Snapshot {
	if c.stopped.Load() {
		return []Snapshot{}
	}
	out := make([]Snapshot, 0, c.topics.Len())
	for _, room := range c.topics.List() {
		t := room.State
		t.mu.Lock()
		if !t.deleted {
			out = append(out, t.snapshotLocked())
		}
		t.mu.Unlock()
	}
	slices.SortFunc(out, func(a, b Snapshot) int {
		if n := a.CreatedAt.Compare(b.CreatedAt); n != 0 {
			return n
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

// Transcript returns a copy of the topic's messages in order.
func (c *Coordinator) Transcript(topicID string) ([]ChatMessage, error) {
	t, err := c.lock(topicID)
	if err != nil {
		return nil, err
	}
	defer t.mu.Unlock()
	return t.transcriptLocked(), nil
}

// Delete removes the topic if username created it, closing every connection
// and discarding the transcript.
func (c *Coordinator) Delete(topicID, username string) error {
	t, err := c.lock(topicID)
	if err != nil {
		return err
	}
	if strings.TrimSpace(username) != t.creator {
		t.mu.Unlock()
		return ErrNotCreator
	}
	t.deleted = true
	closed := t.closeAllLocked()
	t.transcript = nil
	t.mu.Unlock()

	c.topics.Delete(topicID)
	c.log.Info("Topic deleted", "topic", topicID, "closed_connections", len(closed))
	return nil
}

// Join adds username to side and returns the resulting snapshot.
func (c *Coordinator) Join(topicID, username string, side Side) (Snapshot, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return Snapshot{}, ErrEmptyUsername
	}
	if !side.Valid() {
		return Snapshot{}, ErrInvalidSide
	}
	t, err := c.lock(topicID)
	if err != nil {
		return Snapshot{}, err
	}
	defer t.mu.Unlock()

	if err := t.joinLocked(username, side); err != nil {
		return Snapshot{}, err
	}
	c.log.Info("Participant joined", "topic", topicID, "username", username, "side", side)
	c.settleLocked(t)
	return t.snapshotLocked(), nil
}

// Leave removes username from the topic and closes their connection. It
// returns the side the user was removed from, or "" when the user was on
// neither side and nothing changed.
func (c *Coordinator) Leave(topicID, username string) (Snapshot, Side, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return Snapshot{}, "", ErrEmptyUsername
	}
	t, err := c.lock(topicID)
	if err != nil {
		return Snapshot{}, "", err
	}
	defer t.mu.Unlock()

	side, err := t.leaveLocked(username)
	if err != nil {
		return Snapshot{}, "", err
	}
	if side == "" {
		return t.snapshotLocked(), "", nil
	}
	if t.dropLocked(username) {
		c.log.Debug("Connection closed on leave", "topic", topicID, "username", username)
	}
	c.log.Info("Participant left", "topic", topicID, "username", username, "side", side)
	c.settleLocked(t)
	return t.snapshotLocked(), side, nil
}

// Connect registers a live channel for username. Users that are not on a side
// may connect to follow the debate but cannot speak.
func (c *Coordinator) Connect(topicID, username string) (*Session, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrEmptyUsername
	}
	t, err := c.lock(topicID)
	if err != nil {
		return nil, err
	}
	defer t.mu.Unlock()

	s, err := t.registerLocked(username, c.opts.QueueSize)
	if err != nil {
		return nil, err
	}
	c.log.Info("Connection registered", "topic", topicID, "username", username, "side", t.conns[username])
	return s, nil
}

// Disconnect unregisters s. It is safe to call more than once and after the
// topic is gone. Membership is untouched, so no lifecycle transition follows.
func (c *Coordinator) Disconnect(s *Session) {
	if s == nil {
		return
	}
	t, err := c.lock(s.TopicID)
	if err != nil {
		return
	}
	defer t.mu.Unlock()
	if t.unregisterLocked(s) {
		c.log.Info("Connection unregistered", "topic", s.TopicID, "username", s.Username)
	}
}

// settleLocked runs the lifecycle machine after a roster change and announces
// any transition.
func (c *Coordinator) settleLocked(t *Topic) {
	forCount, againstCount := len(t.forMembers), len(t.againstMembers)
	switch t.lifecycle.Evaluate(forCount, againstCount) {
	case Paused:
		empty := SideFor
		if forCount > 0 {
			empty = SideAgainst
		}
		c.log.Info("Debate paused", "topic", t.id, "empty_side", empty)
		c.announceLocked(t, EventPaused, pausedText(empty))
	case Resumed:
		c.log.Info("Debate resumed", "topic", t.id)
		c.announceLocked(t, EventResumed, resumedText)
	}
}

// Shutdown closes every connection, hands each transcript to the archive and
// empties the directory. Later calls fail with ErrClosed.
func (c *Coordinator) Shutdown(ctx context.Context) error {
	if !c.stopped.CompareAndSwap(false, true) {
		return ErrClosed
	}
	var errs []error
	rooms := c.topics.Drain()
	for _, room := range rooms {
		t := room.State
		t.mu.Lock()
		t.deleted = true
		t.closeAllLocked()
		record := Record{Topic: t.snapshotLocked(), Messages: t.transcript}
		t.transcript = nil
		t.mu.Unlock()

		if c.opts.Archive == nil || len(record.Messages) == 0 {
			continue
		}
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			continue
		}
		record.ArchivedAt = c.opts.Now()
		if err := c.opts.Archive.SaveTranscript(ctx, record); err != nil {
			c.log.Error("Archiving transcript failed", "topic", record.Topic.ID, "error", err)
			errs = append(errs, err)
		}
	}
	c.log.Info("Coordinator drained", "topics", len(rooms), "errors", len(errs))
	return errors.Join(lo.Uniq(errs)...)
}
