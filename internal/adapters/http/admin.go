package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/safeyatra/geomark/internal/core/domain"
)

// Admin surfaces for authority onboarding and tourist KYC review. These
// are thin CRUD resources keyed by a status enum; nothing spatial.

// SubmitAuthorityHandler registers a new authority account (pending).
func SubmitAuthorityHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var a domain.AuthorityAccount
		if err := c.BodyParser(&a); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		created, err := deps.Admin.SubmitAuthority(c.UserContext(), &a)
		if err != nil {
			return serviceError(c, err)
		}
		return c.Status(201).JSON(created)
	}
}

// ListAuthoritiesHandler lists authority accounts, optionally by status.
func ListAuthoritiesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accounts, err := deps.Admin.ListAuthorities(c.UserContext(), domain.AuthorityStatus(c.Query("status")))
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{
			"authorities": accounts,
			"count":       len(accounts),
		})
	}
}

// SetAuthorityStatusHandler transitions an authority account's status.
func SetAuthorityStatusHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "authority id is required")
		}

		var body struct {
			Status domain.AuthorityStatus `json:"status"`
		}
		if err := c.BodyParser(&body); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		account, err := deps.Admin.SetAuthorityStatus(c.UserContext(), id, body.Status)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(account)
	}
}

// SubmitKYCHandler files a new KYC application (pending).
func SubmitKYCHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var app domain.KYCApplication
		if err := c.BodyParser(&app); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		created, err := deps.Admin.SubmitKYC(c.UserContext(), &app)
		if err != nil {
			return serviceError(c, err)
		}
		return c.Status(201).JSON(created)
	}
}

// ListKYCHandler lists KYC applications, optionally by status.
func ListKYCHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		apps, err := deps.Admin.ListKYC(c.UserContext(), domain.KYCStatus(c.Query("status")))
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{
			"applications": apps,
			"count":        len(apps),
		})
	}
}

// SetKYCStatusHandler transitions a KYC application's review status.
func SetKYCStatusHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "application id is required")
		}

		var body struct {
			Status domain.KYCStatus `json:"status"`
		}
		if err := c.BodyParser(&body); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		app, err := deps.Admin.SetKYCStatus(c.UserContext(), id, body.Status)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(app)
	}
}
