package usecases

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/safeyatra/geomark/internal/core/domain"
	"github.com/safeyatra/geomark/internal/core/ports"
)

// AdminService handles the thin review surfaces of the dashboard:
// authority registrations and tourist KYC applications. Both are plain
// status-field CRUD with unrestricted admin-triggered transitions.
type AdminService struct {
	authorities ports.AuthorityRepository
	kyc         ports.KYCRepository
	now         func() time.Time
}

// NewAdminService creates a new AdminService.
func NewAdminService(authorities ports.AuthorityRepository, kyc ports.KYCRepository) *AdminService {
	return &AdminService{
		authorities: authorities,
		kyc:         kyc,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// SubmitAuthority registers a new authority account in pending status.
func (s *AdminService) SubmitAuthority(ctx context.Context, a *domain.AuthorityAccount) (*domain.AuthorityAccount, error) {
	var v domain.ValidationError
	if a.Name == "" {
		v.Add("name", "must not be empty")
	}
	if a.Email == "" {
		v.Add("email", "must not be empty")
	}
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	now := s.now()
	a.ID = uuid.NewString()
	a.Status = domain.AuthorityPending
	a.CreatedAt = now
	a.UpdatedAt = now

	if err := s.authorities.Insert(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// ListAuthorities lists registrations, optionally filtered by status.
func (s *AdminService) ListAuthorities(ctx context.Context, status domain.AuthorityStatus) ([]domain.AuthorityAccount, error) {
	if status != "" && !status.Valid() {
		var v domain.ValidationError
		v.Add("status", "must be one of: pending, approved, rejected, suspended")
		return nil, &v
	}
	return s.authorities.List(ctx, status)
}

// SetAuthorityStatus moves a registration to the given status.
func (s *AdminService) SetAuthorityStatus(ctx context.Context, id string, status domain.AuthorityStatus) (*domain.AuthorityAccount, error) {
	if !status.Valid() {
		var v domain.ValidationError
		v.Add("status", "must be one of: pending, approved, rejected, suspended")
		return nil, &v
	}
	if err := s.authorities.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	return s.authorities.GetByID(ctx, id)
}

// SubmitKYC files a tourist KYC application in pending status.
func (s *AdminService) SubmitKYC(ctx context.Context, app *domain.KYCApplication) (*domain.KYCApplication, error) {
	var v domain.ValidationError
	if app.UserID == "" {
		v.Add("userId", "must not be empty")
	}
	if app.FullName == "" {
		v.Add("fullName", "must not be empty")
	}
	if app.DocumentType == "" {
		v.Add("documentType", "must not be empty")
	}
	if app.DocumentNumber == "" {
		v.Add("documentNumber", "must not be empty")
	}
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	now := s.now()
	app.ID = uuid.NewString()
	app.Status = domain.KYCPending
	app.CreatedAt = now
	app.UpdatedAt = now

	if err := s.kyc.Insert(ctx, app); err != nil {
		return nil, err
	}
	return app, nil
}

// ListKYC lists applications, optionally filtered by status.
func (s *AdminService) ListKYC(ctx context.Context, status domain.KYCStatus) ([]domain.KYCApplication, error) {
	if status != "" && !status.Valid() {
		var v domain.ValidationError
		v.Add("status", "must be one of: pending, verified, rejected, expired")
		return nil, &v
	}
	return s.kyc.List(ctx, status)
}

// SetKYCStatus moves an application to the given status.
func (s *AdminService) SetKYCStatus(ctx context.Context, id string, status domain.KYCStatus) (*domain.KYCApplication, error) {
	if !status.Valid() {
		var v domain.ValidationError
		v.Add("status", "must be one of: pending, verified, rejected, expired")
		return nil, &v
	}
	if err := s.kyc.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	return s.kyc.GetByID(ctx, id)
}
