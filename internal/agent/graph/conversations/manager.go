package conversations

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"

	"github.com/cso-health-insurance/server/internal/agent/model"
	errx "github.com/cso-health-insurance/server/internal/core/error"
	logx "github.com/cso-health-insurance/server/pkg/logger"
)

const (
	greetingText = "Halo 😊 Saya CSO Asuransi Kesehatan.\n\n" +
		"Saya bisa bantu cek status polis, plan, cashless, limit, manfaat, cara klaim, dan RS rekanan."
	closingText = "Sama-sama 😊 Senang bisa membantu. Jika ada pertanyaan lain, silakan chat lagi ya."
)

var (
	questionCues   = []string{"gimana", "bagaimana", "cara", "syarat", "kenapa", "kapan", "berapa", "apa", "apakah"}
	closingPhrases = []string{
		"terima kasih", "makasih", "thanks", "thank you",
		"oke makasih", "ok makasih", "sip makasih",
		"selesai", "sudah cukup", "udah cukup", "cukup",
	}
)

// SessionManager loads and commits Session Memory and keeps its transcript bounded.
type SessionManager struct {
	repo     model.SessionRepository
	maxTurns int
	now      func() time.Time
}

func NewSessionManager(repo model.SessionRepository, config model.ConversationConfig) *SessionManager {
	return &SessionManager{
		repo:     repo,
		maxTurns: config.MaxTurns,
		now:      time.Now,
	}
}

// Load returns the stored memory, or fresh memory when the session is new.
func (m *SessionManager) Load(ctx context.Context, sessionID string) (*model.SessionMemory, error) {
	mem, err := m.repo.Load(ctx, sessionID)
	if errors.Is(err, errx.ErrSessionNotFound) {
		logx.Debug().Str("session_id", sessionID).Msg("starting new session memory")
		return model.NewSessionMemory(sessionID), nil
	}
	if err != nil {
		return nil, err
	}
	if mem.LastRSMode == "" {
		mem.LastRSMode = model.RSModeAll
	}
	return mem, nil
}

// Commit stamps and persists memory after a successful turn.
func (m *SessionManager) Commit(ctx context.Context, mem *model.SessionMemory) error {
	mem.UpdatedAt = m.now().UTC()
	return m.repo.Save(ctx, mem)
}

// Delete evicts the session.
func (m *SessionManager) Delete(ctx context.Context, sessionID string) error {
	return m.repo.Delete(ctx, sessionID)
}

// Remember appends one exchange to the transcript.
func (m *SessionManager) Remember(mem *model.SessionMemory, userText, assistantText string) {
	mem.Remember(model.RoleUser, userText, m.maxTurns)
	mem.Remember(model.RoleAssistant, assistantText, m.maxTurns)
}

// Greet returns the greeting once per session and marks it as sent.
func (m *SessionManager) Greet(mem *model.SessionMemory) (string, bool) {
	if mem.Greeted {
		return "", false
	}
	mem.Greeted = true
	mem.Transcript = append(mem.Transcript, model.Message{Role: model.RoleAssistant, Content: greetingText})
	return greetingText, true
}

// History converts the last maxTurns turns of the transcript to eino messages.
func (m *SessionManager) History(mem *model.SessionMemory) []*schema.Message {
	if mem == nil {
		return nil
	}
	out := make([]*schema.Message, 0, len(mem.Transcript))
	for _, msg := range mem.Transcript {
		if msg.Content == "" {
			continue
		}
		switch msg.Role {
		case model.RoleUser:
			out = append(out, schema.UserMessage(msg.Content))
		case model.RoleAssistant:
			out = append(out, schema.AssistantMessage(msg.Content, nil))
		}
	}
	return trimTail(out, 2*m.maxTurns)
}

// Greeting is the opening line shown once per session.
func Greeting() string { return greetingText }

// ClosingReply is the answer to a closing message.
func ClosingReply() string { return closingText }

// IsClosingMessage reports whether text ends the conversation. Anything that reads like
// a question is never closing.
func IsClosingMessage(text string) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	if t == "" || strings.Contains(t, "?") {
		return false
	}
	for _, w := range questionCues {
		if strings.Contains(t, w) {
			return false
		}
	}
	for _, p := range closingPhrases {
		if strings.Contains(t, p) {
			return true
		}
	}
	return false
}

// ====================== Helper function ======================
func trimTail(messages []*schema.Message, maxMessages int) []*schema.Message {
	if maxMessages <= 0 || len(messages) <= maxMessages {
		result := make([]*schema.Message, len(messages))
		copy(result, messages)
		return result
	}
	source := messages[len(messages)-maxMessages:]
	result := make([]*schema.Message, len(source))
	copy(result, source)
	return result
}
