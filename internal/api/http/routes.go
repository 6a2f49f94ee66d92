package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-lookup/internal/weather"
)

var validate = validator.New()

const (
	msgMissingCity   = "Missing city query parameter"
	msgMissingCoords = "Missing latitude or longitude query parameter"
	msgInvalidCoords = "Invalid latitude or longitude"
)

// Gateway is the lookup surface the routes expose.
type Gateway interface {
	Configured() bool
	FetchByCity(ctx context.Context, city string) (json.RawMessage, error)
	FetchByCoordinates(ctx context.Context, lat, lon float64) (json.RawMessage, error)
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, gateway Gateway) {
	app.Get("/weather", func(c *fiber.Ctx) error {
		if !gateway.Configured() {
			return gatewayError(weather.NewGatewayError(weather.KindConfig, nil))
		}

		q := cityQuery{City: c.Query("city")}
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, msgMissingCity)
		}

		body, err := gateway.FetchByCity(c.UserContext(), q.City)
		if err != nil {
			return gatewayError(err)
		}
		return sendRaw(c, body)
	})

	app.Get("/weather-coords", func(c *fiber.Ctx) error {
		if !gateway.Configured() {
			return gatewayError(weather.NewGatewayError(weather.KindConfig, nil))
		}

		q := coordsQuery{Lat: c.Query("lat"), Lon: c.Query("lon")}
		lat, lon, err := q.parse()
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		body, err := gateway.FetchByCoordinates(c.UserContext(), lat, lon)
		if err != nil {
			return gatewayError(err)
		}
		return sendRaw(c, body)
	})
}

// cityQuery holds the query parameters of /weather.
type cityQuery struct {
	City string `validate:"required"`
}

// coordsQuery holds the query parameters of /weather-coords.
type coordsQuery struct {
	Lat string `validate:"required,latitude"`
	Lon string `validate:"required,longitude"`
}

func (q coordsQuery) parse() (float64, float64, error) {
	if err := validate.Struct(q); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				if fe.Tag() == "required" {
					return 0, 0, errors.New(msgMissingCoords)
				}
			}
		}
		return 0, 0, errors.New(msgInvalidCoords)
	}

	lat, err := strconv.ParseFloat(q.Lat, 64)
	if err != nil {
		return 0, 0, errors.New(msgInvalidCoords)
	}
	lon, err := strconv.ParseFloat(q.Lon, 64)
	if err != nil {
		return 0, 0, errors.New(msgInvalidCoords)
	}
	return lat, lon, nil
}

// gatewayError maps a lookup failure onto the client-facing status and message.
// The cause is never exposed.
func gatewayError(err error) error {
	var gwErr *weather.GatewayError
	if !errors.As(err, &gwErr) {
		gwErr = weather.NewGatewayError(weather.KindUpstream, err)
	}
	return fiber.NewError(gwErr.Kind.Status(), gwErr.Message)
}

func sendRaw(c *fiber.Ctx, body json.RawMessage) error {
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(body)
}

// ErrorHandler renders every error as {"error": message}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := weather.MsgUpstream
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		msg = e.Message
	}
	return c.Status(code).JSON(fiber.Map{"error": msg})
}
