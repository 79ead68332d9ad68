package domain

import "time"

// AuthorityStatus is the review status of an authority registration.
// Plain status field; an admin may move it to any value.
type AuthorityStatus string

const (
	AuthorityPending   AuthorityStatus = "pending"
	AuthorityApproved  AuthorityStatus = "approved"
	AuthorityRejected  AuthorityStatus = "rejected"
	AuthoritySuspended AuthorityStatus = "suspended"
)

func (s AuthorityStatus) Valid() bool {
	switch s {
	case AuthorityPending, AuthorityApproved, AuthorityRejected, AuthoritySuspended:
		return true
	}
	return false
}

// AuthorityAccount is a registration from a local authority requesting
// dashboard access.
type AuthorityAccount struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Email      string          `json:"email"`
	Department string          `json:"department,omitempty"`
	Region     string          `json:"region,omitempty"`
	Status     AuthorityStatus `json:"status"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// KYCStatus is the review status of a tourist KYC application.
type KYCStatus string

const (
	KYCPending  KYCStatus = "pending"
	KYCVerified KYCStatus = "verified"
	KYCRejected KYCStatus = "rejected"
	KYCExpired  KYCStatus = "expired"
)

func (s KYCStatus) Valid() bool {
	switch s {
	case KYCPending, KYCVerified, KYCRejected, KYCExpired:
		return true
	}
	return false
}

// KYCApplication is a tourist identity-verification submission awaiting
// admin review.
type KYCApplication struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId"`
	FullName       string    `json:"fullName"`
	DocumentType   string    `json:"documentType"`
	DocumentNumber string    `json:"documentNumber"`
	Status         KYCStatus `json:"status"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}
