package controller

import (
	"ai-recommendation-be/internal/dto"
	"ai-recommendation-be/internal/pkg/serverutils"
	"ai-recommendation-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ICatalogController interface {
	RegisterRoutes(r fiber.Router)
	Upsert(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	Stats(ctx *fiber.Ctx) error
	Sync(ctx *fiber.Ctx) error
}

type catalogController struct {
	catalogService service.ICatalogService
}

func NewCatalogController(catalogService service.ICatalogService) ICatalogController {
	return &catalogController{
		catalogService: catalogService,
	}
}

func (c *catalogController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/catalog")
	h.Get("/stats", c.Stats)
	h.Post("/sync", c.Sync)
	h.Put("/items", c.Upsert)
	h.Delete("/items/:product_id", c.Delete)
}

func (c *catalogController) Upsert(ctx *fiber.Ctx) error {
	var req dto.UpsertCatalogItemRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.catalogService.Upsert(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success upsert catalog item", res))
}

func (c *catalogController) Delete(ctx *fiber.Ctx) error {
	productId, err := productIDParam(ctx)
	if err != nil {
		return err
	}

	if err := c.catalogService.Delete(ctx.UserContext(), productId); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete catalog item", nil))
}

func (c *catalogController) Stats(ctx *fiber.Ctx) error {
	res, err := c.catalogService.Stats(ctx.UserContext())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get catalog stats", res))
}

func (c *catalogController) Sync(ctx *fiber.Ctx) error {
	res, err := c.catalogService.Sync(ctx.UserContext())
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Catalog sync queued", res))
}
