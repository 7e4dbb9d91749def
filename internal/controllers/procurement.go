package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"maintenance-system/internal/dto"
	"maintenance-system/internal/services"
	apperrors "maintenance-system/pkg/errors"
	"maintenance-system/pkg/utils"
)

// ProcurementController - очередь склада по запчастям и заказы на закупку.
type ProcurementController struct {
	requestService services.RequestServiceInterface
	logger         *zap.Logger
}

func NewProcurementController(requestService services.RequestServiceInterface, logger *zap.Logger) *ProcurementController {
	return &ProcurementController{
		requestService: requestService,
		logger:         logger,
	}
}

func (c *ProcurementController) GetSparePartRequests(ctx echo.Context) error {
	filter := utils.ParseFilterFromQuery(ctx.QueryParams())

	list, total, err := c.requestService.GetSparePartRequests(ctx.Request().Context(), filter)
	if err != nil {
		c.logger.Error("Ошибка при получении запросов запчастей", zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, list, "Список запросов запчастей получен", http.StatusOK, total)
}

func (c *ProcurementController) DecideSparePart(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.SparePartDecisionDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError("Неверный формат данных"), c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.requestService.DecideSparePart(ctx.Request().Context(), id, payload)
	if err != nil {
		c.logger.Warn("Не удалось сохранить решение склада", zap.Error(err), zap.Uint64("spare_part_request_id", id))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, res, "Решение по запчасти сохранено", http.StatusOK)
}

func (c *ProcurementController) GetPurchaseOrders(ctx echo.Context) error {
	filter := utils.ParseFilterFromQuery(ctx.QueryParams())

	list, total, err := c.requestService.GetPurchaseOrders(ctx.Request().Context(), filter)
	if err != nil {
		c.logger.Error("Ошибка при получении заказов на закупку", zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, list, "Список заказов на закупку получен", http.StatusOK, total)
}

func (c *ProcurementController) DecidePurchaseOrder(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.PurchaseOrderDecisionDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError("Неверный формат данных"), c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.requestService.DecidePurchaseOrder(ctx.Request().Context(), id, payload)
	if err != nil {
		c.logger.Warn("Не удалось сохранить решение по закупке", zap.Error(err), zap.Uint64("purchase_order_id", id))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, res, "Решение по заказу на закупку сохранено", http.StatusOK)
}
