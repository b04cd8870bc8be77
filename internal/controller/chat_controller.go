package controller

import (
	"hybrid-rag-be/internal/constant"
	"hybrid-rag-be/internal/dto"
	"hybrid-rag-be/internal/pkg/serverutils"
	"hybrid-rag-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	CreateSession(ctx *fiber.Ctx) error
	Query(ctx *fiber.Ctx) error
	History(ctx *fiber.Ctx) error
	Export(ctx *fiber.Ctx) error
	Clear(ctx *fiber.Ctx) error
	Examples(ctx *fiber.Ctx) error
}

type chatController struct {
	chatService service.IChatService
}

func NewChatController(chatService service.IChatService) IChatController {
	return &chatController{
		chatService: chatService,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1")
	h.Post("session", c.CreateSession)
	h.Post("query", c.Query)
	h.Get("examples", c.Examples)
	h.Get(":sessionId/history", c.History)
	h.Get(":sessionId/export", c.Export)
	h.Delete(":sessionId", c.Clear)
}

func (c *chatController) CreateSession(ctx *fiber.Ctx) error {
	res, err := c.chatService.CreateSession(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success create session", res))
}

func (c *chatController) Query(ctx *fiber.Ctx) error {
	var req dto.ChatQueryRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	err := serverutils.ValidateRequest(req)
	if err != nil {
		return err
	}

	res, err := c.chatService.HandleQuery(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success process query", res))
}

func (c *chatController) History(ctx *fiber.Ctx) error {
	sessionId, err := uuid.Parse(ctx.Params("sessionId"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid session ID"))
	}

	res, err := c.chatService.GetHistory(ctx.Context(), sessionId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get chat history", res))
}

// Export streams the transcript as a markdown attachment.
func (c *chatController) Export(ctx *fiber.Ctx) error {
	sessionId, err := uuid.Parse(ctx.Params("sessionId"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid session ID"))
	}

	transcript, err := c.chatService.ExportTranscript(ctx.Context(), sessionId)
	if err != nil {
		return err
	}

	ctx.Set(fiber.HeaderContentType, "text/markdown; charset=utf-8")
	ctx.Set(fiber.HeaderContentDisposition, `attachment; filename="`+constant.TranscriptFileName+`"`)
	return ctx.SendString(transcript)
}

func (c *chatController) Clear(ctx *fiber.Ctx) error {
	sessionId, err := uuid.Parse(ctx.Params("sessionId"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid session ID"))
	}

	if err := c.chatService.ClearHistory(ctx.Context(), sessionId); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete chat history", nil))
}

func (c *chatController) Examples(ctx *fiber.Ctx) error {
	res, err := c.chatService.ExampleQueries(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get example queries", res))
}
