// Package advisor fronts the backend's AI analysis and chat endpoints.
package advisor

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/Veraticus/brokemate/internal/common"
)

// Backend is the subset of the transport the advisor needs.
type Backend interface {
	Analyze(ctx context.Context, token string) (string, error)
	Chat(ctx context.Context, token, query string) (string, error)
}

// Session supplies the credential and takes back rejected ones.
type Session interface {
	Token() (string, error)
	Expire(token string, err error) bool
}

// Exchange is one question and answer of a chat.
type Exchange struct {
	At       time.Time
	Query    string
	Response string
}

// Advisor runs analysis and chat requests and keeps the chat transcript.
type Advisor struct {
	backend    Backend
	session    Session
	logger     *slog.Logger
	transcript []Exchange
	mu         sync.Mutex
}

// New creates an Advisor.
func New(backend Backend, session Session, logger *slog.Logger) *Advisor {
	return &Advisor{
		backend: backend,
		session: session,
		logger:  common.OrDefault(logger),
	}
}

// Analyze returns the backend's analysis of the user's spending.
func (a *Advisor) Analyze(ctx context.Context) (string, error) {
	token, err := a.session.Token()
	if err != nil {
		return "", err
	}
	text, err := a.backend.Analyze(ctx, token)
	if err != nil {
		a.session.Expire(token, err)
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// Chat sends query to the assistant and records the exchange.
func (a *Advisor) Chat(ctx context.Context, query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", common.NewValidationError("query", "is required")
	}
	token, err := a.session.Token()
	if err != nil {
		return "", err
	}
	reply, err := a.backend.Chat(ctx, token, query)
	if err != nil {
		a.session.Expire(token, err)
		return "", err
	}
	reply = strings.TrimSpace(reply)

	a.mu.Lock()
	a.transcript = append(a.transcript, Exchange{At: time.Now(), Query: query, Response: reply})
	a.mu.Unlock()

	a.logger.Debug("chat answered", "query_length", len(query), "reply_length", len(reply))
	return reply, nil
}

// Transcript returns a copy of the chat exchanges so far.
func (a *Advisor) Transcript() []Exchange {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]Exchange(nil), a.transcript...)
}

// Reset forgets the transcript.
func (a *Advisor) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.transcript = nil
}
