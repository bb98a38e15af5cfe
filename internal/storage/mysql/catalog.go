package mysql

import (
	"context"
	"database/sql"
	"errors"

	"qrate/internal/domain"
)

func (r *Repo) UpsertEntity(ctx context.Context, e domain.Entity) error {
	_, err := r.db.ExecContext(ctx, upsertEntitySQL,
		e.ID,
		string(e.Kind),
		e.Key,
		valStr(e.Name),
		valStr(e.Department),
		valStr(e.Faculty),
		valStr(e.Instructor),
		valStr(e.Email),
		valStr(e.Phone),
		valStr(e.Office),
		valStr(e.Description),
		valJSON(e.RawJSON),
	)
	return err
}

func (r *Repo) ListEntities(ctx context.Context, kind domain.EntityKind, skip, limit int) ([]domain.Entity, error) {
	if skip < 0 || limit <= 0 {
		return []domain.Entity{}, nil
	}
	rows, err := r.db.QueryContext(ctx, listEntitiesSQL, string(kind), limit, skip)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Entity, 0, min(limit, 128))
	for rows.Next() {
		e, err := scanEntity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *Repo) CountEntities(ctx context.Context, kind domain.EntityKind) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, countEntitiesSQL, string(kind)).Scan(&n)
	return n, err
}

func (r *Repo) FindEntity(ctx context.Context, kind domain.EntityKind, id string) (domain.Entity, error) {
	e, err := scanEntity(r.db.QueryRowContext(ctx, findEntitySQL, string(kind), id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Entity{}, domain.ErrNotFound
	}
	return e, err
}

func scanEntity(s rowScanner) (domain.Entity, error) {
	var (
		e    domain.Entity
		kind string
		raw  []byte

		name, dept, faculty, instructor, email, phone, office, desc sql.NullString
	)
	if err := s.Scan(&e.ID, &kind, &e.Key, &name, &dept, &faculty, &instructor, &email, &phone, &office, &desc, &raw); err != nil {
		return domain.Entity{}, err
	}
	e.Kind = domain.EntityKind(kind)
	e.Name = ptrNull(name)
	e.Department = ptrNull(dept)
	e.Faculty = ptrNull(faculty)
	e.Instructor = ptrNull(instructor)
	e.Email = ptrNull(email)
	e.Phone = ptrNull(phone)
	e.Office = ptrNull(office)
	e.Description = ptrNull(desc)
	e.RawJSON = raw
	return e, nil
}
