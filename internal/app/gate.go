package app

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	"qrate/internal/domain"
)

const bearerPrefix = "Bearer "

// Gate resolves a bearer credential to a verified account. It is read-only.
type Gate struct {
	accounts domain.AccountRepository
	tokens   domain.TokenIssuer
}

func NewGate(accounts domain.AccountRepository, tokens domain.TokenIssuer) *Gate {
	return &Gate{accounts: accounts, tokens: tokens}
}

// Authenticate validates the Authorization header value.
func (g *Gate) Authenticate(ctx context.Context, header string) (domain.Account, error) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return domain.Account{}, domain.ErrUnauthenticated
	}
	raw := strings.TrimSpace(header[len(bearerPrefix):])
	if raw == "" {
		return domain.Account{}, domain.ErrUnauthenticated
	}

	email, err := g.tokens.Verify(raw)
	if err != nil {
		log.Debug().Err(err).Msg("credential rejected")
		return domain.Account{}, domain.ErrUnauthenticated
	}

	acc, err := g.accounts.FindAccountByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Account{}, domain.ErrUnauthenticated
	}
	if err != nil {
		return domain.Account{}, internal("gate.find_account", err)
	}
	if !acc.Verified {
		return domain.Account{}, domain.ErrUnverified
	}
	return acc, nil
}

// WritePipeline is the single guard in front of every review-creating and
// review-updating operation: identity first, then moderation.
type WritePipeline struct {
	gate *Gate
	mod  *Moderator
}

func NewWritePipeline(g *Gate, m *Moderator) *WritePipeline {
	return &WritePipeline{gate: g, mod: m}
}

func (p *WritePipeline) Gate() *Gate { return p.gate }

// Guard returns the authenticated account only if the caller is verified
// and every text field passes moderation.
func (p *WritePipeline) Guard(ctx context.Context, header string, fields []TextField) (domain.Account, error) {
	acc, err := p.gate.Authenticate(ctx, header)
	if err != nil {
		return domain.Account{}, err
	}
	if err := p.mod.Check(fields); err != nil {
		return domain.Account{}, err
	}
	return acc, nil
}
