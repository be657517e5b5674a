package model

import (
	"context"
	"time"
)

// Message is one entry of the display transcript.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// SessionMemory is the cross-turn state of one conversation. It is created on the
// first turn, mutated once per turn and evicted with the conversation.
type SessionMemory struct {
	SessionID         string    `json:"session_id"`
	Slots             Slots     `json:"slots"`
	PendingSlot       SlotName  `json:"pending_slot,omitempty"`
	LastIntent        Intent    `json:"last_intent,omitempty"`
	LastRSMode        RSMode    `json:"last_rs_mode"`
	Topics            []string  `json:"topics"`
	CustomerPolicyKey string    `json:"customer_policy_key,omitempty"`
	Greeted           bool      `json:"greeted"`
	Transcript        []Message `json:"transcript"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// NewSessionMemory returns fresh memory with the sticky hospital mode defaulted to all.
func NewSessionMemory(sessionID string) *SessionMemory {
	return &SessionMemory{
		SessionID:  sessionID,
		LastRSMode: RSModeAll,
		Topics:     []string{},
		Transcript: []Message{},
	}
}

// Clone returns a deep copy so a failed turn can be discarded without touching the original.
func (m *SessionMemory) Clone() *SessionMemory {
	if m == nil {
		return nil
	}
	c := *m
	c.Topics = append([]string(nil), m.Topics...)
	c.Transcript = append([]Message(nil), m.Transcript...)
	return &c
}

// AddTopic appends topic once, keeping at most limit entries (most recent last).
func (m *SessionMemory) AddTopic(topic string, limit int) {
	if topic == "" {
		return
	}
	for _, t := range m.Topics {
		if t == topic {
			return
		}
	}
	m.Topics = append(m.Topics, topic)
	if limit > 0 && len(m.Topics) > limit {
		m.Topics = m.Topics[len(m.Topics)-limit:]
	}
}

// Remember appends a transcript entry and evicts the oldest beyond maxTurns turns
// (two messages per turn).
func (m *SessionMemory) Remember(role, content string, maxTurns int) {
	m.Transcript = append(m.Transcript, Message{Role: role, Content: content})
	keep := 2 * maxTurns
	if keep > 0 && len(m.Transcript) > keep {
		m.Transcript = append([]Message(nil), m.Transcript[len(m.Transcript)-keep:]...)
	}
}

// SessionRepository persists SessionMemory keyed by session id.
type SessionRepository interface {
	// Load returns errx.ErrSessionNotFound when no memory exists for the session.
	Load(ctx context.Context, sessionID string) (*SessionMemory, error)

	// Save stores the memory, replacing any previous value.
	Save(ctx context.Context, memory *SessionMemory) error

	// Delete evicts the memory of a session.
	Delete(ctx context.Context, sessionID string) error
}
