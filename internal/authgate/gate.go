// Package authgate implements the email-link sign-in gate for the admin
// panel: a fixed allow-list, one-time link issuance, and an explicit email
// confirmation step before a session is established.
//
// Single-step email-link sign-in is vulnerable to link forwarding. The
// confirmation step requires whoever presents the link to also enter the
// email it was issued to, so a forwarded link alone grants nothing.
package authgate

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Gate states.
type State string

const (
	StateAnonymous            State = "anonymous"
	StateLinkRequested        State = "link_requested"
	StateAwaitingConfirmation State = "awaiting_confirmation"
	StateAuthenticated        State = "authenticated"
)

// Gate errors.
var (
	ErrAccessDenied   = errors.New("access denied: email not authorized")
	ErrLinkInvalid    = errors.New("sign-in link is invalid or expired")
	ErrNoPendingLink  = errors.New("no sign-in link awaiting confirmation")
	ErrSessionInvalid = errors.New("session is invalid or expired")
)

// Gate is the admin authentication state machine. All methods are safe
// for concurrent use; the tool assumes a single operator, not a single
// request at a time.
type Gate struct {
	mu        sync.Mutex
	provider  Provider
	allowed   map[string]bool
	returnURL string
	logger    zerolog.Logger

	state        State
	pendingToken string
	seenTokens   map[string]bool
	session      *Session

	// onAuthenticated fires once per completed sign-in, never on token
	// re-verification or repeated session checks.
	onAuthenticated func()
}

// New builds a gate over the given provider. allowList is the fixed set of
// admin emails; it comes from configuration, never from code.
func New(provider Provider, allowList []string, returnURL string, logger zerolog.Logger) *Gate {
	allowed := make(map[string]bool, len(allowList))
	for _, email := range allowList {
		allowed[strings.ToLower(strings.TrimSpace(email))] = true
	}
	return &Gate{
		provider:   provider,
		allowed:    allowed,
		returnURL:  returnURL,
		logger:     logger,
		state:      StateAnonymous,
		seenTokens: make(map[string]bool),
	}
}

// SetOnAuthenticated registers the hook fired on entering Authenticated.
func (g *Gate) SetOnAuthenticated(fn func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.onAuthenticated = fn
}

// State returns the current gate state.
func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// CurrentSession returns the active session, if any.
func (g *Gate) CurrentSession() (Session, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.session == nil {
		return Session{}, false
	}
	return *g.session, true
}

// Allowed reports whether email is on the allow-list.
func (g *Gate) Allowed(email string) bool {
	return g.allowed[strings.ToLower(strings.TrimSpace(email))]
}

// SubmitEmail starts the sign-in flow. Emails off the allow-list are
// rejected before any provider call is made, so unknown addresses never
// receive a link. On success the gate moves to LinkRequested.
func (g *Gate) SubmitEmail(ctx context.Context, email string) error {
	if !g.Allowed(email) {
		g.logger.Warn().Str("email", email).Msg("sign-in rejected: not on allow-list")
		return ErrAccessDenied
	}

	if err := g.provider.IssueSignInLink(ctx, strings.ToLower(strings.TrimSpace(email)), g.returnURL); err != nil {
		return err
	}

	g.mu.Lock()
	g.state = StateLinkRequested
	g.mu.Unlock()

	g.logger.Info().Msg("sign-in link issued")
	return nil
}

// HandleReturn processes the one-time link token carried back to the
// admin entry point. Idempotent per token: re-processing the same token
// on a re-render changes nothing and reports false. The token is never
// trusted to carry an email; the caller must follow with Confirm.
func (g *Gate) HandleReturn(linkToken string) bool {
	if linkToken == "" {
		return false
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.seenTokens[linkToken] {
		return false
	}
	g.seenTokens[linkToken] = true

	if g.state == StateAuthenticated {
		return false
	}

	g.pendingToken = linkToken
	g.state = StateAwaitingConfirmation
	return true
}

// Confirm completes the sign-in with a re-entered email. A mismatched
// email or an expired token leaves the gate in AwaitingConfirmation so
// the operator can retry.
func (g *Gate) Confirm(ctx context.Context, email string) (Session, error) {
	g.mu.Lock()
	if g.state != StateAwaitingConfirmation || g.pendingToken == "" {
		g.mu.Unlock()
		return Session{}, ErrNoPendingLink
	}
	token := g.pendingToken
	g.mu.Unlock()

	if !g.Allowed(email) {
		return Session{}, ErrAccessDenied
	}

	sess, err := g.provider.CompleteSignIn(ctx, strings.ToLower(strings.TrimSpace(email)), token)
	if err != nil {
		g.logger.Warn().Err(err).Msg("sign-in confirmation failed")
		return Session{}, err
	}

	g.mu.Lock()
	g.session = &sess
	g.state = StateAuthenticated
	g.pendingToken = ""
	hook := g.onAuthenticated
	g.mu.Unlock()

	g.logger.Info().Str("email", sess.Email).Msg("admin session established")
	if hook != nil {
		hook()
	}
	return sess, nil
}

// Authorize validates a session token from a request. Valid tokens for an
// allow-listed email are accepted even after a process restart, since the
// provider is the source of truth for session lifetime.
func (g *Gate) Authorize(ctx context.Context, sessionToken string) (Session, error) {
	if sessionToken == "" {
		return Session{}, ErrSessionInvalid
	}

	sess, err := g.provider.VerifySession(ctx, sessionToken)
	if err != nil {
		return Session{}, err
	}
	if !g.Allowed(sess.Email) {
		return Session{}, ErrAccessDenied
	}
	return sess, nil
}

// SignOut ends the current session and returns the gate to Anonymous.
// Safe to call when already anonymous.
func (g *Gate) SignOut(ctx context.Context) error {
	g.mu.Lock()
	sess := g.session
	g.session = nil
	g.state = StateAnonymous
	g.pendingToken = ""
	g.mu.Unlock()

	if sess == nil {
		return nil
	}
	return g.provider.SignOut(ctx, sess.Token)
}
