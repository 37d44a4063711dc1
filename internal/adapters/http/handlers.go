package http

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"html/template"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/saferoute/internal/core/domain"
	"github.com/samirrijal/saferoute/internal/pkg/logging"
)

//go:embed templates/index.html
var templateFS embed.FS

var indexTmpl = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// IndexHandler serves the map page with the provider key injected for tiles.
func IndexHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var buf bytes.Buffer
		if err := indexTmpl.Execute(&buf, struct{ ProviderKey string }{deps.ProviderKey}); err != nil {
			logging.FromContext(c.UserContext()).Error("render index", "error", err)
			return errInternal(c, "could not render page")
		}
		c.Set("Cache-Control", "no-cache")
		c.Type("html", "utf-8")
		return c.Send(buf.Bytes())
	}
}

// SuggestHandler proxies address typeahead. It always answers with a JSON
// array; provider failures yield an empty array with status 500.
func SuggestHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		suggestions, err := deps.Suggest.Suggest(c.UserContext(), c.Query("q"))
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(suggestions)
		}
		c.Set("Cache-Control", "public, max-age=300")
		return c.JSON(suggestions)
	}
}

// RouteHandler computes a fast or hazard-avoiding route and returns it as a
// GeoJSON Feature.
func RouteHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		startRaw, endRaw := c.Query("start"), c.Query("end")
		if startRaw == "" || endRaw == "" {
			return errBadRequest(c, "Missing start or end coordinates")
		}

		start, err := domain.ParseGeoPoint(startRaw)
		if err != nil {
			return errBadRequest(c, "Invalid coordinate format")
		}
		end, err := domain.ParseGeoPoint(endRaw)
		if err != nil {
			return errBadRequest(c, "Invalid coordinate format")
		}

		mode := c.Query("mode", domain.ModeFast)

		ctx := c.UserContext()
		result, err := deps.Routes.Route(ctx, start, end, mode)
		if err != nil {
			logging.FromContext(ctx).Error("route calculation failed",
				"start", start.String(), "end", end.String(), "mode", mode, "error", err)
			if errors.Is(err, domain.ErrInput) {
				return errBadRequest(c, "Invalid route request")
			}
			return errInternal(c, "Routing calculation failed")
		}

		c.Set("Cache-Control", "no-store")
		return c.JSON(result.Feature())
	}
}

// ZonesHandler returns the hazard zones exactly as loaded.
func ZonesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(deps.Zones.Raw())
	}
}

// ReportHandler accepts a free-form safety report. Reports are never rejected.
func ReportHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		payload := decodeReport(c.Body())
		deps.Reports.Submit(c.UserContext(), payload)
		return c.JSON(fiber.Map{
			"status":  "success",
			"message": "Report logged successfully",
		})
	}
}

// decodeReport returns the body as a JSON object. Any other body, including
// JSON arrays and scalars, is wrapped as {"raw": <text>}; an empty body is an
// empty report.
func decodeReport(body []byte) map[string]any {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return map[string]any{}
	}
	var payload map[string]any
	if err := json.Unmarshal(trimmed, &payload); err == nil && payload != nil {
		return payload
	}
	return map[string]any{"raw": string(body)}
}
