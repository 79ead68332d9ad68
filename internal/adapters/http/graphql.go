package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/safeyatra/geomark/internal/core/domain"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	fenceType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoFence",
		Fields: graphql.Fields{
			"id":             &graphql.Field{Type: graphql.String},
			"userId":         &graphql.Field{Type: graphql.String},
			"latitude":       &graphql.Field{Type: graphql.Float},
			"longitude":      &graphql.Field{Type: graphql.Float},
			"radius":         &graphql.Field{Type: graphql.Float},
			"description":    &graphql.Field{Type: graphql.String},
			"status":         &graphql.Field{Type: graphql.String},
			"fenceType":      &graphql.Field{Type: graphql.String},
			"priority":       &graphql.Field{Type: graphql.String},
			"tags":           &graphql.Field{Type: graphql.NewList(graphql.String)},
			"totalAlerts":    &graphql.Field{Type: graphql.Int},
			"area":           &graphql.Field{Type: graphql.Float},
			"locationString": &graphql.Field{Type: graphql.String},
			"distance":       &graphql.Field{Type: graphql.Float},
		},
	})

	statsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "FenceStats",
		Fields: graphql.Fields{
			"totalAreas":    &graphql.Field{Type: graphql.Int},
			"activeAreas":   &graphql.Field{Type: graphql.Int},
			"inactiveAreas": &graphql.Field{Type: graphql.Int},
			"pendingAreas":  &graphql.Field{Type: graphql.Int},
			"averageRadius": &graphql.Field{Type: graphql.Float},
			"minRadius":     &graphql.Field{Type: graphql.Float},
			"maxRadius":     &graphql.Field{Type: graphql.Float},
			"totalCoverage": &graphql.Field{Type: graphql.Float},
			"totalAlerts":   &graphql.Field{Type: graphql.Int},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"areas": &graphql.Field{
				Type:        graphql.NewList(fenceType),
				Description: "List all fenced areas",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Fences.ListAll(p.Context)
				},
			},
			"area": &graphql.Field{
				Type:        fenceType,
				Description: "Get a fenced area by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id := p.Args["id"].(string)
					return deps.Fences.Get(p.Context, id)
				},
			},
			"nearbyAreas": &graphql.Field{
				Type:        graphql.NewList(fenceType),
				Description: "Active areas within maxDistance meters of a point, closest first",
				Args: graphql.FieldConfigArgument{
					"latitude":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"longitude":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"maxDistance": &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 1000.0},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					lat := p.Args["latitude"].(float64)
					lon := p.Args["longitude"].(float64)
					maxDistance := p.Args["maxDistance"].(float64)
					return deps.Fences.FindNear(p.Context, lat, lon, maxDistance, "")
				},
			},
			"intersectingAreas": &graphql.Field{
				Type:        graphql.NewList(fenceType),
				Description: "Active areas touching or overlapping a query circle",
				Args: graphql.FieldConfigArgument{
					"latitude":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"longitude": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"radius":    &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 500.0},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					lat := p.Args["latitude"].(float64)
					lon := p.Args["longitude"].(float64)
					radius := p.Args["radius"].(float64)
					return deps.Fences.FindIntersecting(p.Context, lat, lon, radius, "")
				},
			},
			"stats": &graphql.Field{
				Type:        statsType,
				Description: "Aggregate fence statistics for an owner",
				Args: graphql.FieldConfigArgument{
					"userId": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: domain.AnonymousOwner},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					ownerID := p.Args["userId"].(string)
					return deps.Fences.Statistics(p.Context, ownerID)
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.Context(),
		})

		return c.JSON(result)
	}
}
