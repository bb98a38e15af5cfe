package app

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"qrate/internal/domain"
)

const (
	verificationTTL      = time.Hour
	verificationTokenLen = 32
	minPasswordLen       = 8
	// bcrypt only hashes the first 72 bytes
	maxPasswordLen       = 72
)

type AuthConfig struct {
	EmailDomain string // e.g. "@queensu.ca"
	BackendURL  string // base of the verification link
}

type AuthService struct {
	accounts domain.AccountRepository
	hasher   domain.PasswordHasher
	tokens   domain.TokenIssuer
	notifier domain.Notifier
	events   domain.EventRecorder
	cfg      AuthConfig
	now      func() time.Time
}

func NewAuthService(accounts domain.AccountRepository, h domain.PasswordHasher, t domain.TokenIssuer, n domain.Notifier, cfg AuthConfig) *AuthService {
	return &AuthService{accounts: accounts, hasher: h, tokens: t, notifier: n, events: domain.NopRecorder{}, cfg: cfg, now: time.Now}
}

// WithRecorder reports auth outcomes to r.
func (s *AuthService) WithRecorder(r domain.EventRecorder) *AuthService {
	if r != nil {
		s.events = r
	}
	return s
}

// AuthResult is returned by a successful login or registration.
type AuthResult struct {
	Token   string
	Account domain.Account
}

func (s *AuthService) Login(ctx context.Context, email, password string) (AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return AuthResult{}, domain.NewValidationError("email", "email and password are required")
	}

	if len(password) > maxPasswordLen {
		s.events.AuthEvent("login", "invalid")
		return AuthResult{}, domain.ErrInvalidCredentials
	}

	acc, err := s.accounts.FindAccountByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		s.events.AuthEvent("login", "invalid")
		return AuthResult{}, domain.ErrInvalidCredentials
	}
	if err != nil {
		return AuthResult{}, internal("auth.login.find_account", err)
	}
	if !s.hasher.Compare(password, acc.PasswordHash) {
		s.events.AuthEvent("login", "invalid")
		return AuthResult{}, domain.ErrInvalidCredentials
	}

	tok, err := s.tokens.Issue(acc.Email)
	if err != nil {
		return AuthResult{}, internal("auth.login.issue", err)
	}
	s.events.AuthEvent("login", "ok")
	return AuthResult{Token: tok, Account: acc}, nil
}

// Register creates an unverified account and mails its verification link.
// When the mail cannot be sent the account still exists and
// ErrNotificationFailed is returned.
func (s *AuthService) Register(ctx context.Context, email, password string) (AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return AuthResult{}, domain.NewValidationError("email", "email and password are required")
	}
	if !strings.HasSuffix(email, strings.ToLower(s.cfg.EmailDomain)) {
		s.events.AuthEvent("register", "domain_rejected")
		return AuthResult{}, domain.ErrDomainRejected
	}
	if len(password) < minPasswordLen {
		return AuthResult{}, domain.NewValidationError("password", fmt.Sprintf("must be at least %d characters", minPasswordLen))
	}
	if len(password) > maxPasswordLen {
		return AuthResult{}, domain.NewValidationError("password", fmt.Sprintf("must be at most %d bytes", maxPasswordLen))
	}

	_, err := s.accounts.FindAccountByEmail(ctx, email)
	switch {
	case err == nil:
		s.events.AuthEvent("register", "conflict")
		return AuthResult{}, domain.ErrConflict
	case !errors.Is(err, domain.ErrNotFound):
		return AuthResult{}, internal("auth.register.find_account", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return AuthResult{}, internal("auth.register.hash", err)
	}
	token, digest, err := newVerificationToken()
	if err != nil {
		return AuthResult{}, internal("auth.register.token", err)
	}
	expires := s.now().Add(verificationTTL)

	acc := domain.Account{
		ID:                       uuid.NewString(),
		Email:                    email,
		PasswordHash:             hash,
		Verified:                 false,
		VerificationTokenHash:    &digest,
		VerificationTokenExpires: &expires,
		CreatedAt:                s.now(),
	}
	if _, err := s.accounts.InsertAccount(ctx, acc); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return AuthResult{}, domain.ErrConflict
		}
		return AuthResult{}, internal("auth.register.insert", err)
	}

	link := strings.TrimRight(s.cfg.BackendURL, "/") + "/api/v1/auth/verify/" + token
	body, err := renderVerificationEmail(link)
	if err != nil {
		return AuthResult{}, internal("auth.register.render", err)
	}
	if err := s.notifier.Send(ctx, email, verificationSubject, body); err != nil {
		log.Error().Err(err).Str("email", email).Msg("verification email failed")
		s.events.AuthEvent("register", "notification_failed")
		return AuthResult{}, domain.ErrNotificationFailed
	}

	tok, err := s.tokens.Issue(email)
	if err != nil {
		return AuthResult{}, internal("auth.register.issue", err)
	}
	s.events.AuthEvent("register", "ok")
	return AuthResult{Token: tok, Account: acc}, nil
}

// Verify consumes a verification token. Tokens are single-use because the
// store clears them in the same statement that flips the verified flag.
func (s *AuthService) Verify(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.ErrVerificationFailed
	}
	n, err := s.accounts.VerifyAccount(ctx, DigestToken(token), s.now())
	if err != nil {
		return internal("auth.verify", err)
	}
	if n == 0 {
		s.events.AuthEvent("verify", "failed")
		return domain.ErrVerificationFailed
	}
	s.events.AuthEvent("verify", "ok")
	return nil
}

// DigestToken is the stored form of a verification token.
func DigestToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func newVerificationToken() (token, digest string, err error) {
	buf := make([]byte, verificationTokenLen)
	if _, err := rand.Read(buf); err != nil {
		return "", "", err
	}
	token = hex.EncodeToString(buf)
	return token, DigestToken(token), nil
}

func normalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}
