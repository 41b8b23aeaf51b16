package authgate

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Session is an established admin identity.
type Session struct {
	Email string `json:"email"`
	Token string `json:"token"`
}

// Provider is the identity provider contract behind the gate. The gate
// owns the state machine and the allow-list; the provider owns link
// issuance, link redemption, and session token verification.
type Provider interface {
	// IssueSignInLink sends a one-time sign-in link to email, scoped to
	// return to returnURL.
	IssueSignInLink(ctx context.Context, email, returnURL string) error

	// CompleteSignIn redeems a link token. The email must match the one
	// the link was issued to; the token alone is never enough.
	CompleteSignIn(ctx context.Context, email, linkToken string) (Session, error)

	// VerifySession validates a session token from a later request.
	VerifySession(ctx context.Context, sessionToken string) (Session, error)

	// SignOut invalidates a session token.
	SignOut(ctx context.Context, sessionToken string) error
}

// Compile-time interface check.
var _ Provider = (*MemoryProvider)(nil)

// MemoryProvider implements Provider with in-process one-time tokens.
// It backs local mode, where the "email" is the serve log, and every test
// that needs a deterministic link flow.
type MemoryProvider struct {
	// OnLink, if set, receives each issued link token. Local mode points
	// it at the log so the operator can complete sign-in without mail.
	OnLink func(email, token string)

	mu       sync.Mutex
	links    map[string]string // link token -> email
	sessions map[string]string // session token -> email
	lastLink map[string]string // email -> most recent link token
}

// NewMemoryProvider returns an empty provider.
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{
		links:    make(map[string]string),
		sessions: make(map[string]string),
		lastLink: make(map[string]string),
	}
}

func (p *MemoryProvider) IssueSignInLink(ctx context.Context, email, returnURL string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	token := uuid.NewString()
	email = strings.ToLower(email)
	p.links[token] = email
	p.lastLink[email] = token
	if p.OnLink != nil {
		p.OnLink(email, token)
	}
	return nil
}

// PendingToken returns the most recently issued link token for email,
// standing in for reading the message out of an inbox.
func (p *MemoryProvider) PendingToken(email string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastLink[strings.ToLower(email)]
}

func (p *MemoryProvider) CompleteSignIn(ctx context.Context, email, linkToken string) (Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	issued, ok := p.links[linkToken]
	if !ok || issued != strings.ToLower(email) {
		return Session{}, ErrLinkInvalid
	}

	// One-time use: a redeemed token never works again.
	delete(p.links, linkToken)
	delete(p.lastLink, issued)

	sess := Session{Email: issued, Token: uuid.NewString()}
	p.sessions[sess.Token] = sess.Email
	return sess, nil
}

func (p *MemoryProvider) VerifySession(ctx context.Context, sessionToken string) (Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	email, ok := p.sessions[sessionToken]
	if !ok {
		return Session{}, ErrSessionInvalid
	}
	return Session{Email: email, Token: sessionToken}, nil
}

func (p *MemoryProvider) SignOut(ctx context.Context, sessionToken string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.sessions, sessionToken)
	return nil
}
