// Файл: internal/controllers/report_controller.go
package controllers

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"maintenance-system/internal/dto"
	"maintenance-system/internal/entities"
	"maintenance-system/internal/services"
	"maintenance-system/pkg/constants"
	apperrors "maintenance-system/pkg/errors"
	"maintenance-system/pkg/utils"
)

type ReportController struct {
	reportService services.ReportServiceInterface
	logger        *zap.Logger
}

func NewReportController(reportService services.ReportServiceInterface, logger *zap.Logger) *ReportController {
	return &ReportController{
		reportService: reportService,
		logger:        logger,
	}
}

func (c *ReportController) bindFilter(ctx echo.Context) (dto.ReportQueryDTO, error) {
	var query dto.ReportQueryDTO
	if err := (&echo.DefaultBinder{}).BindQueryParams(ctx, &query); err != nil {
		return query, apperrors.NewBadRequestError("Неверные параметры отчёта")
	}
	if err := ctx.Validate(&query); err != nil {
		return query, err
	}
	return query, nil
}

func reportFilter(query dto.ReportQueryDTO) entities.ReportFilter {
	return entities.ReportFilter{
		Status: entities.RequestStatus(query.Status),
		Branch: query.Branch,
	}
}

// GetReport отдаёт JSON с заявками и статистикой, а при format=xlsx - файл.
func (c *ReportController) GetReport(ctx echo.Context) error {
	query, err := c.bindFilter(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if query.Format == "xlsx" {
		return c.writeXLSX(ctx, reportFilter(query))
	}

	res, err := c.reportService.GetReport(ctx.Request().Context(), reportFilter(query))
	if err != nil {
		c.logger.Error("Ошибка при формировании отчёта", zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Отчёт успешно сформирован", http.StatusOK)
}

func (c *ReportController) ExportReport(ctx echo.Context) error {
	query, err := c.bindFilter(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return c.writeXLSX(ctx, reportFilter(query))
}

func (c *ReportController) writeXLSX(ctx echo.Context, filter entities.ReportFilter) error {
	buf, rows, err := c.reportService.ExportXLSX(ctx.Request().Context(), filter)
	if err != nil {
		c.logger.Error("Ошибка при выгрузке отчёта", zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	c.logger.Info("Отчёт выгружен в xlsx", zap.Int("rows", rows),
		zap.String("status", string(filter.Status)), zap.String("branch", filter.Branch))

	ctx.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="%s"`, constants.ReportFileName))
	return ctx.Blob(http.StatusOK, constants.XLSXContentType, buf.Bytes())
}

func (c *ReportController) GetStats(ctx echo.Context) error {
	stats, err := c.reportService.GetStats(ctx.Request().Context())
	if err != nil {
		c.logger.Error("Ошибка при получении статистики", zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, stats, "Статистика получена", http.StatusOK)
}
