package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/safeyatra/geomark/internal/core/domain"
)

// AuthorityRepo implements ports.AuthorityRepository.
type AuthorityRepo struct {
	db *DB
}

func NewAuthorityRepo(db *DB) *AuthorityRepo {
	return &AuthorityRepo{db: db}
}

func (r *AuthorityRepo) Insert(ctx context.Context, a *domain.AuthorityAccount) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO authority_accounts (id, name, email, department, region, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, a.ID, a.Name, a.Email, a.Department, a.Region, a.Status, a.CreatedAt, a.UpdatedAt)
	return err
}

func (r *AuthorityRepo) GetByID(ctx context.Context, id string) (*domain.AuthorityAccount, error) {
	a := &domain.AuthorityAccount{}
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, name, email, COALESCE(department, ''), COALESCE(region, ''), status, created_at, updated_at
		FROM authority_accounts WHERE id = $1
	`, id).Scan(&a.ID, &a.Name, &a.Email, &a.Department, &a.Region, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

func (r *AuthorityRepo) List(ctx context.Context, status domain.AuthorityStatus) ([]domain.AuthorityAccount, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, name, email, COALESCE(department, ''), COALESCE(region, ''), status, created_at, updated_at
		FROM authority_accounts
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC
	`, string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []domain.AuthorityAccount
	for rows.Next() {
		var a domain.AuthorityAccount
		if err := rows.Scan(&a.ID, &a.Name, &a.Email, &a.Department, &a.Region, &a.Status, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (r *AuthorityRepo) UpdateStatus(ctx context.Context, id string, status domain.AuthorityStatus) error {
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE authority_accounts SET status = $2, updated_at = now() WHERE id = $1
	`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
