package services

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"maintenance-system/internal/dto"
	"maintenance-system/internal/entities"
	"maintenance-system/internal/repositories"
	"maintenance-system/pkg/constants"
	"maintenance-system/pkg/filestorage"
	"maintenance-system/pkg/types"
)

type ReportServiceInterface interface {
	GetReport(ctx context.Context, filter entities.ReportFilter) (*dto.ReportDTO, error)
	GetStats(ctx context.Context) (*types.DashboardStats, error)
	// ExportXLSX строит выгрузку и возвращает содержимое файла и число строк с заявками.
	ExportXLSX(ctx context.Context, filter entities.ReportFilter) (*bytes.Buffer, int, error)
}

type reportService struct {
	requestRepo repositories.RequestRepositoryInterface
	fileStorage filestorage.FileStorageInterface
	logger      *zap.Logger
}

func NewReportService(
	requestRepo repositories.RequestRepositoryInterface,
	fileStorage filestorage.FileStorageInterface,
	logger *zap.Logger,
) ReportServiceInterface {
	return &reportService{
		requestRepo: requestRepo,
		fileStorage: fileStorage,
		logger:      logger,
	}
}

func (s *reportService) stats(ctx context.Context, filter entities.ReportFilter) (types.RequestStats, error) {
	counts, err := s.requestRepo.CountByStatus(ctx, filter)
	if err != nil {
		return types.RequestStats{}, err
	}
	stats := types.RequestStats{
		Open:       counts[entities.RequestStatusOpen],
		InProgress: counts[entities.RequestStatusInProgress],
		Waiting:    counts[entities.RequestStatusWaiting],
		Closed:     counts[entities.RequestStatusClosed],
	}
	stats.Total = stats.Open + stats.InProgress + stats.Waiting + stats.Closed
	return stats, nil
}

func (s *reportService) GetReport(ctx context.Context, filter entities.ReportFilter) (*dto.ReportDTO, error) {
	requests, err := s.requestRepo.ListForReport(ctx, filter)
	if err != nil {
		return nil, err
	}
	stats, err := s.stats(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &dto.ReportDTO{
		Requests: dto.RequestsFromEntities(requests),
		Stats:    stats,
	}, nil
}

func (s *reportService) GetStats(ctx context.Context) (*types.DashboardStats, error) {
	stats, err := s.stats(ctx, entities.ReportFilter{})
	if err != nil {
		return nil, err
	}
	dashboard := stats.Dashboard()
	return &dashboard, nil
}

func reportRow(r entities.MaintenanceRequest) []interface{} {
	return []interface{}{
		r.ID,
		r.RequestDate.Format("2006-01-02 15:04"),
		r.RequesterName,
		r.PhoneNumber,
		r.Branch,
		r.MaintenanceType,
		r.EquipmentName,
		r.FaultType,
		string(r.Status),
	}
}

func buildWorkbook(requests []entities.MaintenanceRequest) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := constants.ReportSheetName
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(sheet, "A1", &constants.ReportHeaders); err != nil {
		return nil, err
	}
	lastHeader, err := excelize.CoordinatesToCellName(len(constants.ReportHeaders), 1)
	if err != nil {
		return nil, err
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheet, "A1", lastHeader, style); err != nil {
		return nil, err
	}

	for i, r := range requests {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := reportRow(r)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, err
		}
	}
	if err := f.SetColWidth(sheet, "B", "B", 18); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(sheet, "C", "H", 20); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *reportService) ExportXLSX(ctx context.Context, filter entities.ReportFilter) (*bytes.Buffer, int, error) {
	requests, err := s.requestRepo.ListForReport(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	f, err := buildWorkbook(requests)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка формирования xlsx: %w", err)
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка записи xlsx: %w", err)
	}

	if s.fileStorage != nil {
		// копия выгрузки остаётся в архиве, ошибка архива не мешает отдать файл
		path, err := s.fileStorage.Save(bytes.NewReader(buf.Bytes()), constants.ReportFileName, constants.ReportsFilePrefix)
		if err != nil {
			s.logger.Warn("Не удалось сохранить копию выгрузки", zap.Error(err))
		} else {
			s.logger.Info("Выгрузка сохранена в архив",
				zap.String("path", path),
				zap.String("file", s.fileStorage.Path(path)),
				zap.Int("rows", len(requests)))
		}
	}

	return buf, len(requests), nil
}
