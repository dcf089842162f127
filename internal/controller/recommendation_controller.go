package controller

import (
	"strconv"

	"ai-recommendation-be/internal/dto"
	"ai-recommendation-be/internal/pkg/serverutils"
	"ai-recommendation-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IRecommendationController interface {
	RegisterRoutes(r fiber.Router)
	IntelligentSearch(ctx *fiber.Ctx) error
	ProductRecommendations(ctx *fiber.Ctx) error
	Trending(ctx *fiber.Ctx) error
	RecordView(ctx *fiber.Ctx) error
	UpdatePreferences(ctx *fiber.Ctx) error
	ShowSession(ctx *fiber.Ctx) error
}

type recommendationController struct {
	recommendationService service.IRecommendationService
}

func NewRecommendationController(recommendationService service.IRecommendationService) IRecommendationController {
	return &recommendationController{
		recommendationService: recommendationService,
	}
}

func (c *recommendationController) RegisterRoutes(r fiber.Router) {
	r.Post("/intelligent-search", c.IntelligentSearch)
	r.Get("/product-recommendations/:product_id", c.ProductRecommendations)
	r.Get("/trending", c.Trending)

	h := r.Group("/sessions")
	h.Get("/:session_id", c.ShowSession)
	h.Post("/:session_id/viewed", c.RecordView)
	h.Put("/:session_id/preferences", c.UpdatePreferences)
}

// The three read endpoints answer with the bare payload rather than the
// success envelope; storefront widgets already parse that shape.

func (c *recommendationController) IntelligentSearch(ctx *fiber.Ctx) error {
	var req dto.IntelligentSearchRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.recommendationService.GetRecommendations(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}

func (c *recommendationController) ProductRecommendations(ctx *fiber.Ctx) error {
	productId, err := productIDParam(ctx)
	if err != nil {
		return err
	}

	res, err := c.recommendationService.GetProductRecommendations(
		ctx.UserContext(),
		productId,
		ctx.Query("session_id"),
		ctx.QueryInt("limit", 0),
	)
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}

func (c *recommendationController) Trending(ctx *fiber.Ctx) error {
	res, err := c.recommendationService.GetTrending(ctx.UserContext(), ctx.QueryInt("limit", 0))
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}

func (c *recommendationController) RecordView(ctx *fiber.Ctx) error {
	var req dto.RecordViewRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.recommendationService.RecordProductView(ctx.UserContext(), ctx.Params("session_id"), req.ProductId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success record view", res))
}

func (c *recommendationController) UpdatePreferences(ctx *fiber.Ctx) error {
	var req dto.UpdatePreferencesRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	req.SessionId = ctx.Params("session_id")

	res, err := c.recommendationService.UpdatePreferences(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update preferences", res))
}

func (c *recommendationController) ShowSession(ctx *fiber.Ctx) error {
	res, err := c.recommendationService.GetSession(ctx.UserContext(), ctx.Params("session_id"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show session", res))
}

func productIDParam(ctx *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(ctx.Params("product_id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "product_id must be a positive integer")
	}
	return id, nil
}
