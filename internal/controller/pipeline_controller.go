package controller

import (
	"hybrid-rag-be/internal/pkg/serverutils"
	"hybrid-rag-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IPipelineController interface {
	RegisterRoutes(r fiber.Router)
	Reinitialize(ctx *fiber.Ctx) error
	Status(ctx *fiber.Ctx) error
}

type pipelineController struct {
	pipelineService service.IPipelineService
}

func NewPipelineController(pipelineService service.IPipelineService) IPipelineController {
	return &pipelineController{
		pipelineService: pipelineService,
	}
}

func (c *pipelineController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/pipeline/v1")
	h.Post("reinitialize", c.Reinitialize)
	h.Get("status", c.Status)
}

func (c *pipelineController) Reinitialize(ctx *fiber.Ctx) error {
	res, err := c.pipelineService.Reinitialize(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success reinitialize pipeline", res))
}

func (c *pipelineController) Status(ctx *fiber.Ctx) error {
	res, err := c.pipelineService.Status(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get pipeline status", res))
}
