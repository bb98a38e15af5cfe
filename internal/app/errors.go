package app

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"qrate/internal/domain"
)

// internal logs a collaborator failure and maps it to ErrInternal so the
// raw cause never reaches the caller.
func internal(op string, err error) error {
	log.Error().Err(err).Str("op", op).Msg("collaborator failure")
	return fmt.Errorf("%s: %w", op, domain.ErrInternal)
}
