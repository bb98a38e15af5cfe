package mysql

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"qrate/internal/domain"
)

func (r *Repo) FindAccountByEmail(ctx context.Context, email string) (domain.Account, error) {
	var (
		a       domain.Account
		tokHash sql.NullString
		tokExp  sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, findAccountByEmailSQL, email).Scan(
		&a.ID, &a.Email, &a.PasswordHash, &a.Verified, &tokHash, &tokExp, &a.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Account{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Account{}, err
	}
	a.VerificationTokenHash = ptrNull(tokHash)
	if tokExp.Valid {
		t := tokExp.Time
		a.VerificationTokenExpires = &t
	}
	return a, nil
}

func (r *Repo) InsertAccount(ctx context.Context, a domain.Account) (string, error) {
	_, err := r.db.ExecContext(ctx, insertAccountSQL,
		a.ID,
		a.Email,
		a.PasswordHash,
		a.Verified,
		valStr(a.VerificationTokenHash),
		valTime(a.VerificationTokenExpires),
		a.CreatedAt.UTC(),
	)
	if isDuplicate(err) {
		return "", domain.ErrConflict
	}
	if err != nil {
		return "", err
	}
	return a.ID, nil
}

func (r *Repo) VerifyAccount(ctx context.Context, tokenHash string, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, verifyAccountSQL, tokenHash, now.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
