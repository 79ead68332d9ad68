package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/safeyatra/geomark/internal/core/domain"
	"github.com/safeyatra/geomark/internal/pkg/metrics"
)

// ListAreasHandler returns all fenced areas, paginated, for the dashboard map.
func ListAreasHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fences, err := deps.Fences.ListAll(c.UserContext())
		if err != nil {
			return serviceError(c, err)
		}

		// Apply offset/limit pagination on the full list
		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 100)
		if offset < 0 {
			offset = 0
		}
		if limit <= 0 || limit > 500 {
			limit = 100
		}

		total := len(fences)
		if offset >= total {
			fences = nil
		} else {
			end := offset + limit
			if end > total {
				end = total
			}
			fences = fences[offset:end]
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: fences, Pagination: pg})
	}
}

// CreateAreaHandler marks a new fenced area.
// POST /mark-area — 201 on success, 400 with the full violation list,
// 409 when another area sits within the duplicate-tolerance box.
func CreateAreaHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in domain.FenceInput
		if err := c.BodyParser(&in); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		f, err := deps.Fences.Create(c.UserContext(), OwnerID(c), &in)
		if err != nil {
			if err == domain.ErrDuplicateArea {
				metrics.DuplicatesRejected.Inc()
			}
			return serviceError(c, err)
		}

		metrics.FencesCreated.Inc()
		return c.Status(201).JSON(f)
	}
}

// GetAreaHandler returns a single fenced area by ID.
func GetAreaHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "area id is required")
		}
		f, err := deps.Fences.Get(c.UserContext(), id)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(f)
	}
}

// UpdateAreaHandler applies a partial update to an area.
func UpdateAreaHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "area id is required")
		}

		var u domain.FenceUpdate
		if err := c.BodyParser(&u); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		f, err := deps.Fences.Update(c.UserContext(), id, &u)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(f)
	}
}

// DeleteAreaHandler removes an area and echoes the deleted record.
func DeleteAreaHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "area id is required")
		}

		f, err := deps.Fences.Delete(c.UserContext(), id)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{
			"message":     "area deleted",
			"deletedArea": f,
		})
	}
}

// NearbyHandler returns active areas whose center lies within maxDistance
// meters of the query point, each with its exact distance, closest first.
// GET /nearby?latitude=..&longitude=..&maxDistance=..
func NearbyHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Query("latitude") == "" || c.Query("longitude") == "" {
			return errBadRequest(c, "latitude and longitude are required")
		}
		lat := c.QueryFloat("latitude", 0)
		lon := c.QueryFloat("longitude", 0)
		maxDistance := c.QueryFloat("maxDistance", 1000)

		fences, err := deps.Fences.FindNear(c.UserContext(), lat, lon, maxDistance, c.Query("userId"))
		if err != nil {
			return serviceError(c, err)
		}

		metrics.SpatialQueries.WithLabelValues("nearby").Inc()
		c.Set("Cache-Control", "public, max-age=60")
		return c.JSON(fiber.Map{
			"areas": fences,
			"count": len(fences),
		})
	}
}

// IntersectingHandler returns active areas that touch or overlap a query
// circle. GET /intersecting?latitude=..&longitude=..&radius=..
func IntersectingHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Query("latitude") == "" || c.Query("longitude") == "" {
			return errBadRequest(c, "latitude and longitude are required")
		}
		lat := c.QueryFloat("latitude", 0)
		lon := c.QueryFloat("longitude", 0)
		radius := c.QueryFloat("radius", 500)

		fences, err := deps.Fences.FindIntersecting(c.UserContext(), lat, lon, radius, c.Query("userId"))
		if err != nil {
			return serviceError(c, err)
		}

		metrics.SpatialQueries.WithLabelValues("intersecting").Inc()
		c.Set("Cache-Control", "public, max-age=60")
		return c.JSON(fiber.Map{
			"areas": fences,
			"count": len(fences),
		})
	}
}

// MyAreasHandler lists the caller's own areas, newest first, with optional
// conjunctive status/priority/tags filters.
func MyAreasHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		filter := domain.FenceFilter{
			Status:   domain.FenceStatus(c.Query("status")),
			Priority: domain.Priority(c.Query("priority")),
		}
		if raw := c.Query("tags"); raw != "" {
			for _, t := range strings.Split(raw, ",") {
				if trimmed := strings.TrimSpace(t); trimmed != "" {
					filter.Tags = append(filter.Tags, trimmed)
				}
			}
		}

		fences, err := deps.Fences.ListByOwner(c.UserContext(), OwnerID(c), filter)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{
			"areas": fences,
			"count": len(fences),
		})
	}
}

// StatsHandler returns the caller's aggregate fence statistics.
func StatsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		stats, err := deps.Fences.Statistics(c.UserContext(), OwnerID(c))
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(stats)
	}
}

// AlertAreaHandler bumps the alert counter on an area. Called by the
// external alerting evaluator, which owns the actual evaluation logic.
func AlertAreaHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "area id is required")
		}

		f, err := deps.Fences.IncrementAlert(c.UserContext(), id)
		if err != nil {
			return serviceError(c, err)
		}

		metrics.AlertsRecorded.Inc()
		return c.JSON(f)
	}
}

// TouchAreaHandler records that an area was accessed.
func TouchAreaHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "area id is required")
		}

		f, err := deps.Fences.TouchLastAccessed(c.UserContext(), id)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(f)
	}
}
