package debate

import (
	"slices"
	"sync"
	"time"

	"github.com/samber/lo"

	"debateroom/pkg/realtime"
)

// SystemUsername authors every coordinator-generated message.
const SystemUsername = "System"

// EventKind tags a frame so clients can react without parsing message text.
type EventKind string

const (
	EventMessage EventKind = "message"
	EventPaused  EventKind = "paused"
	EventResumed EventKind = "resumed"
	EventNotice  EventKind = "notice"
)

// ChatMessage is one transcript entry. System messages have no side.
type ChatMessage struct {
	Username  string    `json:"username"`
	Side      Side      `json:"side,omitempty"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	Kind      EventKind `json:"kind"`
	// State is the topic state right after this message was recorded.
	State State `json:"state"`
}

// Frame returns the outbound wire form of the message.
func (m ChatMessage) Frame() Frame {
	f := Frame{
		Username:  m.Username,
		Message:   m.Text,
		Timestamp: m.Timestamp,
		Event:     m.Kind,
		State:     m.State,
	}
	if m.Side != "" {
		side := m.Side
		f.Side = &side
	}
	return f
}

// Frame is what a connected client receives.
type Frame struct {
	Username  string    `json:"username"`
	Side      *Side     `json:"side"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Event     EventKind `json:"event"`
	State     State     `json:"state"`
}

// Snapshot is a read-only view of a topic.
type Snapshot struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Creator   string    `json:"creator"`
	For       []string  `json:"for"`
	Against   []string  `json:"against"`
	State     State     `json:"state"`
	CreatedAt time.Time `json:"createdAt"`
}

// BothSides reports whether each side has at least one participant.
func (s Snapshot) BothSides() bool {
	return len(s.For) > 0 && len(s.Against) > 0
}

// Topic is a single debate. All fields are guarded by mu.
type Topic struct {
	mu        sync.Mutex
	id        string
	title     string
	creator   string
	createdAt time.Time

	forMembers     map[string]struct{}
	againstMembers map[string]struct{}
	lifecycle      Lifecycle
	transcript     []ChatMessage

	hub   *realtime.Broadcaster[Frame]
	conns map[string]Side
	// deleted is set once the topic left the directory; lookups that raced
	// the removal must treat it as absent.
	deleted bool
}

func newTopic(id, title, creator string, now time.Time) *Topic {
	return &Topic{
		id:             id,
		title:          title,
		creator:        creator,
		createdAt:      now,
		forMembers:     make(map[string]struct{}),
		againstMembers: make(map[string]struct{}),
		hub:            realtime.NewBroadcaster[Frame](),
		conns:          make(map[string]Side),
	}
}

func (t *Topic) roster(side Side) map[string]struct{} {
	if side == SideFor {
		return t.forMembers
	}
	return t.againstMembers
}

func (t *Topic) sideOfLocked(username string) Side {
	if _, ok := t.forMembers[username]; ok {
		return SideFor
	}
	if _, ok := t.againstMembers[username]; ok {
		return SideAgainst
	}
	return ""
}

func (t *Topic) bothSidesLocked() bool {
	return len(t.forMembers) > 0 && len(t.againstMembers) > 0
}

func (t *Topic) snapshotLocked() Snapshot {
	return Snapshot{
		ID:        t.id,
		Title:     t.title,
		Creator:   t.creator,
		For:       sortedMembers(t.forMembers),
		Against:   sortedMembers(t.againstMembers),
		State:     t.lifecycle.State(),
		CreatedAt: t.createdAt,
	}
}

func (t *Topic) transcriptLocked() []ChatMessage {
	return slices.Clone(t.transcript)
}

func sortedMembers(set map[string]struct{}) []string {
	members := lo.Keys(set)
	slices.Sort(members)
	return members
}
