package controller

import (
	"ai-recommendation-be/internal/dto"

	"github.com/gofiber/fiber/v2"
)

type IHealthController interface {
	RegisterRoutes(r fiber.Router)
	Health(ctx *fiber.Ctx) error
}

type healthController struct {
	serviceName string
}

func NewHealthController(serviceName string) IHealthController {
	return &healthController{serviceName: serviceName}
}

func (c *healthController) RegisterRoutes(r fiber.Router) {
	r.Get("/health", c.Health)
}

func (c *healthController) Health(ctx *fiber.Ctx) error {
	return ctx.JSON(dto.HealthResponse{
		Status:  "healthy",
		Service: c.serviceName,
	})
}
