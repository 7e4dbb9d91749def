// Файл: internal/controllers/catalogue.go
package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"maintenance-system/internal/dto"
	"maintenance-system/internal/entities"
	"maintenance-system/internal/services"
	apperrors "maintenance-system/pkg/errors"
	"maintenance-system/pkg/utils"
)

// CatalogueController обслуживает один справочник. Для каждого справочника
// создаётся свой экземпляр с нужным kind.
type CatalogueController struct {
	catalogueService services.CatalogueServiceInterface
	kind             entities.CatalogueKind
	logger           *zap.Logger
}

func NewCatalogueController(
	catalogueService services.CatalogueServiceInterface,
	kind entities.CatalogueKind,
	logger *zap.Logger,
) *CatalogueController {
	return &CatalogueController{
		catalogueService: catalogueService,
		kind:             kind,
		logger:           logger.With(zap.String("catalogue", string(kind))),
	}
}

func (c *CatalogueController) GetItems(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	filter := utils.ParseFilterFromQuery(ctx.QueryParams())

	items, total, err := c.catalogueService.GetItems(reqCtx, c.kind, filter)
	if err != nil {
		c.logger.Error("Ошибка при получении справочника", zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, items, "Справочник успешно получен", http.StatusOK, total)
}

func (c *CatalogueController) FindItem(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.catalogueService.FindItem(reqCtx, c.kind, id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, res, "Запись справочника найдена", http.StatusOK)
}

func (c *CatalogueController) CreateItem(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	var payload dto.CatalogueItemInputDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError("Неверный формат данных"), c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.catalogueService.CreateItem(reqCtx, c.kind, payload)
	if err != nil {
		c.logger.Error("Ошибка при создании записи справочника", zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, res, "Запись справочника успешно создана", http.StatusCreated)
}

func (c *CatalogueController) UpdateItem(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.CatalogueItemInputDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError("Неверный формат данных"), c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.catalogueService.UpdateItem(reqCtx, c.kind, id, payload)
	if err != nil {
		c.logger.Error("Ошибка при обновлении записи справочника", zap.Error(err), zap.Uint64("id", id))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, res, "Запись справочника успешно обновлена", http.StatusOK)
}

func (c *CatalogueController) DeleteItem(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if err := c.catalogueService.DeleteItem(reqCtx, c.kind, id); err != nil {
		c.logger.Error("Ошибка при удалении записи справочника", zap.Error(err), zap.Uint64("id", id))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, nil, "Запись справочника успешно удалена", http.StatusOK)
}
