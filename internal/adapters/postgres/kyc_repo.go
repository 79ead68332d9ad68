package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/safeyatra/geomark/internal/core/domain"
)

// KYCRepo implements ports.KYCRepository.
type KYCRepo struct {
	db *DB
}

func NewKYCRepo(db *DB) *KYCRepo {
	return &KYCRepo{db: db}
}

func (r *KYCRepo) Insert(ctx context.Context, app *domain.KYCApplication) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO kyc_applications (id, user_id, full_name, document_type, document_number, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, app.ID, app.UserID, app.FullName, app.DocumentType, app.DocumentNumber, app.Status, app.CreatedAt, app.UpdatedAt)
	return err
}

func (r *KYCRepo) GetByID(ctx context.Context, id string) (*domain.KYCApplication, error) {
	app := &domain.KYCApplication{}
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, user_id, full_name, document_type, document_number, status, created_at, updated_at
		FROM kyc_applications WHERE id = $1
	`, id).Scan(&app.ID, &app.UserID, &app.FullName, &app.DocumentType, &app.DocumentNumber, &app.Status, &app.CreatedAt, &app.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return app, nil
}

func (r *KYCRepo) List(ctx context.Context, status domain.KYCStatus) ([]domain.KYCApplication, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, user_id, full_name, document_type, document_number, status, created_at, updated_at
		FROM kyc_applications
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC
	`, string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var apps []domain.KYCApplication
	for rows.Next() {
		var a domain.KYCApplication
		if err := rows.Scan(&a.ID, &a.UserID, &a.FullName, &a.DocumentType, &a.DocumentNumber, &a.Status, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		apps = append(apps, a)
	}
	return apps, rows.Err()
}

func (r *KYCRepo) UpdateStatus(ctx context.Context, id string, status domain.KYCStatus) error {
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE kyc_applications SET status = $2, updated_at = now() WHERE id = $1
	`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
