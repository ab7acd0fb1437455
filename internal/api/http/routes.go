package httpapi

import (
	"context"
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/yr-forecast/internal/weather"
)

var validate = validator.New()

// ForecastService is what the HTTP layer needs from weather.Service.
type ForecastService interface {
	GetDailyForecast(ctx context.Context, req weather.LocationRequest, mode weather.TimezoneMode) (weather.Forecast, error)
}

// DefaultLocation is served when a request names no location.
type DefaultLocation struct {
	City     string
	Lat      float64
	Lon      float64
	Timezone string
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service ForecastService, def DefaultLocation) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Yr.no Weather Forecast Service",
			"weather": "/weather",
			"health":  "/weather/health",
			"info":    "/weather/info",
		})
	})
	app.Get("/health", health)

	w := app.Group("/weather")
	w.Get("/health", health)

	w.Get("/info", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"service": "Yr.no Weather Forecast Service",
			"version": "0.1.0",
			"default_location": fiber.Map{
				"city":      def.City,
				"latitude":  def.Lat,
				"longitude": def.Lon,
				"timezone":  def.Timezone,
			},
			"features": []string{
				"Daily temperature forecasts at specific time of day",
				"Custom location support",
			},
			"data_source": "MET Norway yr.no API",
		})
	})

	w.Get("/", func(c *fiber.Ctx) error {
		var q forecastQuery
		if err := q.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		req, err := q.toRequest(def)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		mode, err := weather.ParseTimezoneOption(q.TimezoneOption)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		forecast, err := service.GetDailyForecast(c.UserContext(), req, mode)
		if err != nil {
			return mapServiceError(err)
		}
		return c.JSON(forecast)
	})
}

func health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "healthy",
		"service": "yr-forecast",
	})
}

// mapServiceError turns service errors into HTTP errors. Upstream and data
// failures get generic messages.
func mapServiceError(err error) error {
	switch {
	case errors.Is(err, weather.ErrInvalidRequest):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, weather.ErrLocationNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, weather.ErrUpstreamUnavailable):
		return fiber.NewError(fiber.StatusServiceUnavailable, "Weather service temporarily unavailable")
	case errors.Is(err, weather.ErrDataValidation):
		return fiber.NewError(fiber.StatusInternalServerError, "Internal server error: data validation failed")
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.NewError(fiber.StatusGatewayTimeout, "Weather service timed out")
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "Internal server error")
	}
}

// ErrorHandler renders every error as {"error": true, "message": ...}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}

// forecastQuery holds query parameters for the forecast endpoint.
type forecastQuery struct {
	Lat            *float64 `validate:"omitempty,gte=-90,lte=90"`
	Lon            *float64 `validate:"omitempty,gte=-180,lte=180"`
	City           string
	TimezoneOption string `validate:"oneof=utc local fixed auto"`
}

func (q *forecastQuery) bind(c *fiber.Ctx) error {
	var err error
	if q.Lat, err = parseOptionalFloat(c.Query("lat"), "lat"); err != nil {
		return err
	}
	if q.Lon, err = parseOptionalFloat(c.Query("lon"), "lon"); err != nil {
		return err
	}
	q.City = c.Query("city")
	q.TimezoneOption = c.Query("timezone_option", "utc")
	return nil
}

func (q forecastQuery) toRequest(def DefaultLocation) (weather.LocationRequest, error) {
	hasCoords := q.Lat != nil || q.Lon != nil
	hasCity := q.City != ""

	switch {
	case hasCoords && hasCity:
		return weather.LocationRequest{}, errors.New("Cannot provide both coordinates and city name. Use either lat/lon OR city.")
	case hasCoords:
		if q.Lat == nil || q.Lon == nil {
			return weather.LocationRequest{}, errors.New("Both latitude and longitude must be provided when using coordinates.")
		}
		return weather.LocationRequest{Coordinates: &weather.Coordinates{Lat: *q.Lat, Lon: *q.Lon}}, nil
	case hasCity:
		return weather.LocationRequest{City: q.City}, nil
	default:
		return weather.LocationRequest{
			Coordinates: &weather.Coordinates{Lat: def.Lat, Lon: def.Lon},
			Name:        def.City,
		}, nil
	}
}

func parseOptionalFloat(s, name string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, errors.New("invalid " + name + ": must be a decimal number")
	}
	return &v, nil
}
