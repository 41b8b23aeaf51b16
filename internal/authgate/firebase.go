package authgate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/smtp"
	"net/url"

	fbauth "firebase.google.com/go/v4/auth"
)

// signInEndpoint is the Identity Toolkit endpoint that redeems an email
// sign-in link (oobCode + email) for an ID token. The admin SDK can
// generate links but not redeem them, so redemption goes through the
// public REST API with the web API key.
const signInEndpoint = "https://identitytoolkit.googleapis.com/v1/accounts:signInWithEmailLink"

// Mailer delivers a sign-in link out-of-band.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMTPMailer sends mail through a plain SMTP relay.
type SMTPMailer struct {
	Addr     string // host:port
	Username string
	Password string
	From     string
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n", m.From, to, subject, body)

	var auth smtp.Auth
	if m.Username != "" {
		host, _, err := net.SplitHostPort(m.Addr)
		if err != nil {
			host = m.Addr
		}
		auth = smtp.PlainAuth("", m.Username, m.Password, host)
	}
	if err := smtp.SendMail(m.Addr, auth, m.From, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("send sign-in mail: %w", err)
	}
	return nil
}

// Compile-time interface check.
var _ Provider = (*FirebaseProvider)(nil)

// FirebaseProvider implements Provider against Firebase Authentication.
// Link generation uses the admin SDK, delivery goes through the Mailer,
// and redemption and session checks go through the Identity Toolkit API.
type FirebaseProvider struct {
	auth   *fbauth.Client
	apiKey string
	mailer Mailer
	http   *http.Client
}

// NewFirebaseProvider wraps an initialized Firebase auth client. apiKey is
// the project's web API key, used only for link redemption.
func NewFirebaseProvider(auth *fbauth.Client, apiKey string, mailer Mailer) *FirebaseProvider {
	return &FirebaseProvider{
		auth:   auth,
		apiKey: apiKey,
		mailer: mailer,
		http:   http.DefaultClient,
	}
}

func (p *FirebaseProvider) IssueSignInLink(ctx context.Context, email, returnURL string) error {
	settings := &fbauth.ActionCodeSettings{
		URL:             returnURL,
		HandleCodeInApp: true,
	}
	link, err := p.auth.EmailSignInLink(ctx, email, settings)
	if err != nil {
		return fmt.Errorf("generate sign-in link: %w", err)
	}

	body := "Abre este enlace para entrar al panel de administración:\r\n\r\n" + link +
		"\r\n\r\nSi no solicitaste este acceso, ignora este correo."
	return p.mailer.Send(ctx, email, "Tu enlace de acceso", body)
}

func (p *FirebaseProvider) CompleteSignIn(ctx context.Context, email, linkToken string) (Session, error) {
	payload, err := json.Marshal(map[string]string{
		"email":   email,
		"oobCode": linkToken,
	})
	if err != nil {
		return Session{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		signInEndpoint+"?key="+url.QueryEscape(p.apiKey), bytes.NewReader(payload))
	if err != nil {
		return Session{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.http.Do(req)
	if err != nil {
		return Session{}, fmt.Errorf("redeem sign-in link: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Wrong email for the code, expired code, used code: all retryable
		// from AwaitingConfirmation.
		return Session{}, fmt.Errorf("%w (status %d)", ErrLinkInvalid, resp.StatusCode)
	}

	var result struct {
		IDToken string `json:"idToken"`
		Email   string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Session{}, fmt.Errorf("decode sign-in response: %w", err)
	}
	if result.IDToken == "" {
		return Session{}, ErrLinkInvalid
	}

	return Session{Email: result.Email, Token: result.IDToken}, nil
}

func (p *FirebaseProvider) VerifySession(ctx context.Context, sessionToken string) (Session, error) {
	tok, err := p.auth.VerifyIDToken(ctx, sessionToken)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrSessionInvalid, err)
	}

	email, _ := tok.Claims["email"].(string)
	if email == "" {
		return Session{}, ErrSessionInvalid
	}
	return Session{Email: email, Token: sessionToken}, nil
}

func (p *FirebaseProvider) SignOut(ctx context.Context, sessionToken string) error {
	tok, err := p.auth.VerifyIDToken(ctx, sessionToken)
	if err != nil {
		// Nothing to revoke for a token that no longer verifies.
		return nil
	}
	return p.auth.RevokeRefreshTokens(ctx, tok.UID)
}
