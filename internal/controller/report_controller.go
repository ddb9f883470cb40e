package controller

import (
	"ai-reportgen-be/internal/dto"
	"ai-reportgen-be/internal/pkg/serverutils"
	"ai-reportgen-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IReportController interface {
	RegisterRoutes(r fiber.Router)
	Templates(ctx *fiber.Ctx) error
	Generate(ctx *fiber.Ctx) error
	Confirm(ctx *fiber.Ctx) error
	RunStatus(ctx *fiber.Ctx) error
	FollowUp(ctx *fiber.Ctx) error
	Modify(ctx *fiber.Ctx) error
	Supplement(ctx *fiber.Ctx) error
}

type reportController struct {
	reportService service.IReportService
}

func NewReportController(reportService service.IReportService) IReportController {
	return &reportController{
		reportService: reportService,
	}
}

func (c *reportController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/report/v1")
	h.Get("templates", c.Templates)
	h.Post("generate", c.Generate)
	h.Get("run/:runId", c.RunStatus)
	h.Post(":conversationId/confirm", c.Confirm)
	h.Post(":conversationId/follow-up", c.FollowUp)
	h.Post(":conversationId/modify", c.Modify)
	h.Post(":conversationId/supplement", c.Supplement)
}

func (c *reportController) Templates(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Success list templates", c.reportService.Templates()))
}

func (c *reportController) Generate(ctx *fiber.Ctx) error {
	var req dto.GenerateReportRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	err := serverutils.ValidateRequest(req)
	if err != nil {
		return err
	}

	res, err := c.reportService.Generate(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Report generation started", res))
}

func (c *reportController) Confirm(ctx *fiber.Ctx) error {
	conversationId, err := uuid.Parse(ctx.Params("conversationId"))
	if err != nil {
		return serverutils.NewApiError(fiber.StatusBadRequest, "invalid conversation id")
	}

	var req dto.ConfirmSearchRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	req.ConversationId = conversationId

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.reportService.Confirm(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Confirmation recorded", res))
}

func (c *reportController) RunStatus(ctx *fiber.Ctx) error {
	runId := ctx.Params("runId")
	if runId == "" {
		return serverutils.NewApiError(fiber.StatusBadRequest, "missing run id")
	}

	res, err := c.reportService.RunStatus(ctx.Context(), runId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show run", res))
}

func (c *reportController) FollowUp(ctx *fiber.Ctx) error {
	conversationId, err := uuid.Parse(ctx.Params("conversationId"))
	if err != nil {
		return serverutils.NewApiError(fiber.StatusBadRequest, "invalid conversation id")
	}

	var req dto.FollowUpRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	req.ConversationId = conversationId

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.reportService.FollowUp(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success answer follow-up", res))
}

func (c *reportController) Modify(ctx *fiber.Ctx) error {
	conversationId, err := uuid.Parse(ctx.Params("conversationId"))
	if err != nil {
		return serverutils.NewApiError(fiber.StatusBadRequest, "invalid conversation id")
	}

	var req dto.ModifyReportRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	req.ConversationId = conversationId

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.reportService.Modify(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success modify report", res))
}

func (c *reportController) Supplement(ctx *fiber.Ctx) error {
	conversationId, err := uuid.Parse(ctx.Params("conversationId"))
	if err != nil {
		return serverutils.NewApiError(fiber.StatusBadRequest, "invalid conversation id")
	}

	var req dto.SupplementReportRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	req.ConversationId = conversationId

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.reportService.Supplement(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success supplement report", res))
}
