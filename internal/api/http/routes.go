package httpapi

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/i474232898/worldview-aggregation/internal/worldview"
)

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *worldview.Service) {
	api := app.Group("/api")

	api.Get("/flights", func(c *fiber.Ctx) error {
		q, err := parseFlightQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		res, status, err := service.Flights(c.UserContext(), q)
		if err != nil {
			return layerError(err)
		}
		return sendResult(c, res, status)
	})

	api.Get("/military", func(c *fiber.Ctx) error {
		q, err := parseFlightQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		res, status, err := service.Military(c.UserContext(), q)
		if err != nil {
			return layerError(err)
		}
		return sendResult(c, res, status)
	})

	api.Get("/earthquakes", func(c *fiber.Ctx) error {
		var req earthquakeQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		res, status, err := service.Earthquakes(c.UserContext(), worldview.EarthquakeQuery{
			BBox:   req.box,
			MinMag: req.MinMag,
			Limit:  req.Limit,
		})
		if err != nil {
			return layerError(err)
		}
		return sendResult(c, res, status)
	})

	api.Get("/satellites", func(c *fiber.Ctx) error {
		limit, err := parseLimit(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		res, status, err := service.Satellites(c.UserContext(), worldview.SatelliteQuery{
			Search: c.Query("q"),
			Limit:  limit,
		})
		if err != nil {
			return layerError(err)
		}
		return sendResult(c, res, status)
	})

	api.Get("/cctv", func(c *fiber.Ctx) error {
		box, err := parseBBox(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		limit, err := parseLimit(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		res, status, err := service.Cameras(c.UserContext(), worldview.CameraQuery{
			BBox:   box,
			Source: c.Query("source"),
			Limit:  limit,
		})
		if err != nil {
			return layerError(err)
		}
		return sendResult(c, res, status)
	})

	// Image proxy: keep abusive clients from turning it into a download relay.
	api.Get("/cctv/snapshot", limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
	}), func(c *fiber.Ctx) error {
		snap, status, err := service.Snapshot(c.UserContext(), c.Query("url"))
		if err != nil {
			switch {
			case errors.Is(err, worldview.ErrEmptyKey):
				return fiber.NewError(fiber.StatusBadRequest, "url query parameter is required")
			case errors.Is(err, worldview.ErrHostNotAllowed):
				return fiber.NewError(fiber.StatusForbidden, "snapshot host not allowed")
			}
			return layerError(err)
		}
		c.Set(fiber.HeaderContentType, snap.ContentType)
		c.Set(fiber.HeaderCacheControl, "no-store")
		c.Set("X-Cache", string(status))
		return c.Send(snap.Body)
	})

	api.Get("/webcams/stream", func(c *fiber.Ctx) error {
		info, status, err := service.ResolveStream(c.UserContext(), c.Query("slug"))
		if err != nil {
			if errors.Is(err, worldview.ErrEmptyKey) {
				return fiber.NewError(fiber.StatusBadRequest, "slug query parameter is required")
			}
			return layerError(err)
		}
		c.Set("X-Cache", string(status))
		return c.JSON(info)
	})

	api.Get("/geosearch", func(c *fiber.Ctx) error {
		q := c.Query("q")
		if len(q) > 200 {
			return fiber.NewError(fiber.StatusBadRequest, "query too long")
		}
		results, status, err := service.Geocode(c.UserContext(), q)
		if err != nil {
			return layerError(err)
		}
		c.Set("X-Cache", string(status))
		return c.JSON(results)
	})

	api.Get("/stats", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"layers": service.Stats(),
		})
	})
}

// sendResult writes the items as a bare JSON array, the shape the dashboard
// consumes, with cache metadata in headers.
func sendResult[T any](c *fiber.Ctx, res worldview.Result[T], status worldview.CacheStatus) error {
	c.Set("X-Cache", string(status))
	if !res.FetchedAt.IsZero() {
		c.Set("X-Fetched-At", res.FetchedAt.UTC().Format(time.RFC3339))
	}
	items := res.Items
	if items == nil {
		items = []T{}
	}
	return c.JSON(items)
}

func layerError(err error) error {
	switch {
	case errors.Is(err, worldview.ErrNotConfigured):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, worldview.ErrUnknownLayer):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	default:
		return fiber.NewError(fiber.StatusBadGateway, "upstream data unavailable")
	}
}

// bboxQuery holds the optional bounding box parameters (OpenSky naming).
type bboxQuery struct {
	MinLat float64 `query:"lamin" validate:"gte=-90,lte=90"`
	MinLon float64 `query:"lomin" validate:"gte=-180,lte=180"`
	MaxLat float64 `query:"lamax" validate:"gte=-90,lte=90,gtefield=MinLat"`
	MaxLon float64 `query:"lomax" validate:"gte=-180,lte=180"`
}

var bboxParams = [4]string{"lamin", "lomin", "lamax", "lomax"}

// parseBBox returns nil when no box parameter is given. A partial box is
// rejected.
func parseBBox(c *fiber.Ctx) (*worldview.BBox, error) {
	var raw [4]string
	present := 0
	for i, name := range bboxParams {
		raw[i] = strings.TrimSpace(c.Query(name))
		if raw[i] != "" {
			present++
		}
	}
	if present == 0 {
		return nil, nil
	}
	if present != len(bboxParams) {
		return nil, errors.New("bounding box requires lamin, lomin, lamax and lomax")
	}

	var vals [4]float64
	for i, s := range raw {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, errors.New("invalid " + bboxParams[i] + ": not a number")
		}
		vals[i] = v
	}

	q := bboxQuery{MinLat: vals[0], MinLon: vals[1], MaxLat: vals[2], MaxLon: vals[3]}
	if err := validateQuery(q); err != nil {
		return nil, err
	}
	box := worldview.BBox{MinLat: q.MinLat, MinLon: q.MinLon, MaxLat: q.MaxLat, MaxLon: q.MaxLon}
	return &box, box.Validate()
}

type limitQuery struct {
	Limit int `query:"limit" validate:"gte=0,lte=50000"`
}

func parseLimit(c *fiber.Ctx) (int, error) {
	s := c.Query("limit")
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.New("invalid limit: not an integer")
	}
	if err := validateQuery(limitQuery{Limit: n}); err != nil {
		return 0, err
	}
	return n, nil
}

func parseFlightQuery(c *fiber.Ctx) (worldview.FlightQuery, error) {
	var q worldview.FlightQuery
	box, err := parseBBox(c)
	if err != nil {
		return q, err
	}
	limit, err := parseLimit(c)
	if err != nil {
		return q, err
	}
	q.BBox = box
	q.Limit = limit
	q.Airborne = c.QueryBool("airborne", false)
	return q, nil
}

// earthquakeQuery holds query parameters for the earthquakes endpoint.
type earthquakeQuery struct {
	MinMag float64 `query:"minmag" validate:"gte=0,lte=10"`
	Limit  int     `query:"limit"`

	box *worldview.BBox
}

func (q *earthquakeQuery) bind(c *fiber.Ctx) error {
	box, err := parseBBox(c)
	if err != nil {
		return err
	}
	limit, err := parseLimit(c)
	if err != nil {
		return err
	}
	q.box = box
	q.Limit = limit

	if s := c.Query("minmag"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return errors.New("invalid minmag: not a number")
		}
		q.MinMag = v
	}
	return validateQuery(q)
}
