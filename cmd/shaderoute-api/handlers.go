package main

import (
	"context"
	"time"

	"github.com/LdDl/shaderoute"
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Handler contains all HTTP handlers
type Handler struct {
	planner *shaderoute.Planner
	logger  *zap.Logger
	timeout time.Duration
}

// NewHandler creates a new handler
func NewHandler(planner *shaderoute.Planner, logger *zap.Logger, timeout time.Duration) *Handler {
	return &Handler{
		planner: planner,
		logger:  logger,
		timeout: timeout,
	}
}

// SetupRoutes configures all HTTP routes
func SetupRoutes(app *fiber.App, handler *Handler) {
	app.Get("/health", handler.HealthCheck)

	api := app.Group("/api/v1")
	{
		api.Get("/personas", handler.GetPersonas)
		api.Get("/forecast", handler.GetForecast)
		api.Post("/routes", handler.PlanRoutes)
	}
}

// HealthCheck returns service health status
func (h *Handler) HealthCheck(c *fiber.Ctx) error {
	base := h.planner.Base()
	return c.JSON(fiber.Map{
		"status":  "ok",
		"service": "shaderoute-api",
		"nodes":   base.NodesNum(),
		"links":   base.LinksNum(),
	})
}

// GetPersonas returns persona presets
func (h *Handler) GetPersonas(c *fiber.Ctx) error {
	data := make(map[string]shaderoute.Preference)
	for _, name := range shaderoute.PersonaNames() {
		pref, _ := shaderoute.PersonaPreference(name)
		data[name] = pref
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

// GetForecast returns hourly demo scenario with heatwave flags
func (h *Handler) GetForecast(c *fiber.Ctx) error {
	forecast, err := shaderoute.ForecastByName(c.Query("scenario", "heatwave"))
	if err != nil {
		return toFiberError(err)
	}
	heatwave := make([]bool, len(forecast.Hours))
	for i, cond := range forecast.Hours {
		heatwave[i] = shaderoute.IsHeatwave(cond.Temperature)
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"data":     forecast,
		"heatwave": heatwave,
	})
}

// preferenceRequest leaves unset fields to persona or defaults
type preferenceRequest struct {
	CoolingWeight   *float64 `json:"cooling_weight"`
	DetourLimit     *float64 `json:"detour_limit"`
	AvoidTunnel     *bool    `json:"avoid_tunnel"`
	AvoidFootbridge *bool    `json:"avoid_footbridge"`
	AvoidIndoor     *bool    `json:"avoid_indoor"`
}

// RoutesRequest is body of route planning request
type RoutesRequest struct {
	From       shaderoute.Endpoint   `json:"from"`
	To         shaderoute.Endpoint   `json:"to"`
	TimeSlot   int                   `json:"time_slot"`
	Scenario   string                `json:"scenario"`
	Condition  *shaderoute.Condition `json:"condition"`
	Persona    string                `json:"persona"`
	Preference *preferenceRequest    `json:"preference"`
}

func (req *RoutesRequest) toPlanRequest() (shaderoute.PlanRequest, shaderoute.Forecast, error) {
	scenario := req.Scenario
	if scenario == "" {
		scenario = "heatwave"
	}
	forecast, err := shaderoute.ForecastByName(scenario)
	if err != nil {
		return shaderoute.PlanRequest{}, forecast, err
	}
	plan := shaderoute.PlanRequest{
		From: req.From,
		To:   req.To,
	}
	if req.Condition != nil {
		plan.Condition = *req.Condition
	} else {
		plan.Condition, err = forecast.At(req.TimeSlot)
		if err != nil {
			return shaderoute.PlanRequest{}, forecast, err
		}
		// Forecast falls back to its first hour, request keeps the asked one
		if req.TimeSlot != 0 {
			plan.Condition.TimeSlot = req.TimeSlot
		}
	}
	if req.Persona == "" && req.Preference == nil {
		return plan, forecast, nil
	}
	pref := shaderoute.Preference{CoolingWeight: 0.5, DetourLimit: shaderoute.DefaultDetourLimit}
	if req.Persona != "" {
		pref, err = shaderoute.PersonaPreference(req.Persona)
		if err != nil {
			return shaderoute.PlanRequest{}, forecast, err
		}
	}
	if p := req.Preference; p != nil {
		if p.CoolingWeight != nil {
			pref.CoolingWeight = *p.CoolingWeight
		}
		if p.DetourLimit != nil {
			pref.DetourLimit = *p.DetourLimit
		}
		if p.AvoidTunnel != nil {
			pref.AvoidTunnel = *p.AvoidTunnel
		}
		if p.AvoidFootbridge != nil {
			pref.AvoidFootbridge = *p.AvoidFootbridge
		}
		if p.AvoidIndoor != nil {
			pref.AvoidIndoor = *p.AvoidIndoor
		}
	}
	plan.Preference = &pref
	return plan, forecast, nil
}

// PlanRoutes finds and grades routes. '?format=geojson' returns FeatureCollection
func (h *Handler) PlanRoutes(c *fiber.Ctx) error {
	var req RoutesRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	plan, forecast, err := req.toPlanRequest()
	if err != nil {
		return toFiberError(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()
	result, err := h.planner.Plan(ctx, plan)
	if err != nil {
		h.logger.Warn("Can't plan routes", zap.Error(err))
		return toFiberError(err)
	}

	if c.Query("format") == "geojson" {
		b, err := shaderoute.RoutesToGeoJSON(result.Network(), result.Routes)
		if err != nil {
			return toFiberError(err)
		}
		c.Set(fiber.HeaderContentType, "application/geo+json")
		return c.Send(b)
	}

	var feelsLike []shaderoute.FeelsLike
	if cooling, ok := result.Route(shaderoute.PROFILE_COOLING); ok {
		feelsLike = forecast.FeelsLikeSeries(cooling.AvgShadow)
	}
	return c.JSON(fiber.Map{
		"success":    true,
		"data":       result,
		"feels_like": feelsLike,
	})
}

func toFiberError(err error) error {
	switch {
	case errors.Is(err, shaderoute.ErrInvalidInput):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, shaderoute.ErrNoRouteFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return fiber.NewError(fiber.StatusServiceUnavailable, "Request timed out")
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
