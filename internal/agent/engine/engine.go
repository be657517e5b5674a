// Package engine runs dialogue turns one at a time per session and owns the Session
// Memory lifecycle: load, work on a clone, commit only when the turn succeeded.
package engine

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/cloudwego/eino/schema"

	"github.com/cso-health-insurance/server/internal/agent/composer"
	"github.com/cso-health-insurance/server/internal/agent/graph"
	"github.com/cso-health-insurance/server/internal/agent/graph/conversations"
	"github.com/cso-health-insurance/server/internal/agent/model"
	logx "github.com/cso-health-insurance/server/pkg/logger"
)

var tracer = otel.Tracer("cso/engine")

// Reply is what the front end shows for one user message.
type Reply struct {
	SessionID string            `json:"session_id"`
	Greeting  string            `json:"greeting,omitempty"`
	Answer    string            `json:"answer"`
	Closing   bool              `json:"closing"`
	Result    *model.TurnResult `json:"result,omitempty"`
}

type Engine struct {
	runner       graph.Runner
	sessions     *conversations.SessionManager
	locks        *sessionLocks
	checkClosing bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithClosingCheck lets the engine answer closing messages ("makasih", "sudah cukup")
// itself instead of sending them through the graph. Front ends that own the
// conversation end turn it on.
func WithClosingCheck() Option {
	return func(e *Engine) { e.checkClosing = true }
}

func New(runner graph.Runner, sessions *conversations.SessionManager, opts ...Option) *Engine {
	e := &Engine{
		runner:   runner,
		sessions: sessions,
		locks:    newSessionLocks(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Turn processes one utterance. Turns of the same session never overlap. On error the
// reply carries the generic apology and Session Memory is left untouched.
func (e *Engine) Turn(ctx context.Context, sessionID, utterance string) (*Reply, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, fmt.Errorf("session id is empty")
	}

	ctx, span := tracer.Start(ctx, "cso.turn",
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(attribute.String("session_id", sessionID)),
	)
	defer span.End()

	release := e.locks.lock(sessionID)
	defer release()

	stored, err := e.sessions.Load(ctx, sessionID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load session")
		return &Reply{SessionID: sessionID, Answer: composer.ApologyAnswer}, err
	}
	mem := stored.Clone()
	reply := &Reply{SessionID: sessionID}
	if g, ok := e.sessions.Greet(mem); ok {
		reply.Greeting = g
	}

	if e.checkClosing && conversations.IsClosingMessage(utterance) {
		reply.Answer = conversations.ClosingReply()
		reply.Closing = true
		e.sessions.Remember(mem, utterance, reply.Answer)
		if err := e.sessions.Commit(ctx, mem); err != nil {
			span.RecordError(err)
			return reply, err
		}
		return reply, nil
	}

	res, err := e.runner.Invoke(ctx, model.TurnInput{SessionID: sessionID, Utterance: utterance, Memory: mem})
	if err != nil {
		logx.Error().Err(err).Str("session_id", sessionID).Msg("turn failed, memory not committed")
		span.RecordError(err)
		span.SetStatus(codes.Error, "invoke graph")
		reply.Answer = composer.ApologyAnswer
		return reply, err
	}
	span.SetAttributes(
		attribute.String("intent", string(res.Intent)),
		attribute.String("status", string(res.Decision.Status)),
	)

	reply.Answer = res.Answer
	reply.Result = res
	e.sessions.Remember(mem, utterance, res.Answer)
	if err := e.sessions.Commit(ctx, mem); err != nil {
		logx.Error().Err(err).Str("session_id", sessionID).Msg("failed to commit session memory")
		span.RecordError(err)
		return reply, err
	}
	return reply, nil
}

// Memory returns the committed Session Memory of a session.
func (e *Engine) Memory(ctx context.Context, sessionID string) (*model.SessionMemory, error) {
	release := e.locks.lock(sessionID)
	defer release()
	return e.sessions.Load(ctx, sessionID)
}

// History returns the recent transcript of a session as chat messages, oldest first.
func (e *Engine) History(ctx context.Context, sessionID string) ([]*schema.Message, error) {
	release := e.locks.lock(sessionID)
	defer release()
	mem, err := e.sessions.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return e.sessions.History(mem), nil
}

// EndSession evicts Session Memory. It waits for an in-flight turn of the same session.
func (e *Engine) EndSession(ctx context.Context, sessionID string) error {
	release := e.locks.lock(sessionID)
	defer release()
	logx.Info().Str("session_id", sessionID).Msg("session ended")
	return e.sessions.Delete(ctx, sessionID)
}
