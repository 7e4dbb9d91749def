// Файл: internal/services/request_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"maintenance-system/internal/dto"
	"maintenance-system/internal/entities"
	"maintenance-system/internal/events"
	"maintenance-system/internal/repositories"
	"maintenance-system/pkg/constants"
	apperrors "maintenance-system/pkg/errors"
	"maintenance-system/pkg/eventbus"
	"maintenance-system/pkg/types"
	"maintenance-system/pkg/utils"
)

type RequestServiceInterface interface {
	CreateRequest(ctx context.Context, payload dto.CreateRequestDTO) (*dto.RequestDTO, error)
	GetRequests(ctx context.Context, filter types.Filter) ([]dto.RequestDTO, uint64, error)
	GetRequest(ctx context.Context, id uint64) (*dto.RequestDetailsDTO, error)
	AssignTechnician(ctx context.Context, id uint64, payload dto.AssignTechnicianDTO) (*dto.RequestDTO, error)
	UpdateStatus(ctx context.Context, id uint64, payload dto.UpdateStatusDTO) (*dto.RequestDTO, error)
	RequestSpareParts(ctx context.Context, id uint64, payload dto.RequestSparePartsDTO) ([]dto.SparePartRequestDTO, error)
	GetSparePartRequests(ctx context.Context, filter types.Filter) ([]dto.SparePartRequestDTO, uint64, error)
	DecideSparePart(ctx context.Context, id uint64, payload dto.SparePartDecisionDTO) (*dto.SparePartRequestDTO, error)
	CreatePurchaseOrder(ctx context.Context, requestID uint64) (*dto.PurchaseOrderDTO, error)
	GetPurchaseOrders(ctx context.Context, filter types.Filter) ([]dto.PurchaseOrderDTO, uint64, error)
	DecidePurchaseOrder(ctx context.Context, id uint64, payload dto.PurchaseOrderDecisionDTO) (*dto.PurchaseOrderDTO, error)
}

type RequestService struct {
	txManager         repositories.TxManagerInterface
	requestRepo       repositories.RequestRepositoryInterface
	catalogueRepo     repositories.CatalogueRepositoryInterface
	technicianRepo    repositories.TechnicianRepositoryInterface
	notificationRepo  repositories.NotificationRepositoryInterface
	sparePartRepo     repositories.SparePartRequestRepositoryInterface
	purchaseOrderRepo repositories.PurchaseOrderRepositoryInterface
	publisher         EventPublisher
	logger            *zap.Logger
	now               func() time.Time
}

func NewRequestService(
	txManager repositories.TxManagerInterface,
	requestRepo repositories.RequestRepositoryInterface,
	catalogueRepo repositories.CatalogueRepositoryInterface,
	technicianRepo repositories.TechnicianRepositoryInterface,
	notificationRepo repositories.NotificationRepositoryInterface,
	sparePartRepo repositories.SparePartRequestRepositoryInterface,
	purchaseOrderRepo repositories.PurchaseOrderRepositoryInterface,
	publisher EventPublisher,
	logger *zap.Logger,
) RequestServiceInterface {
	return &RequestService{
		txManager:         txManager,
		requestRepo:       requestRepo,
		catalogueRepo:     catalogueRepo,
		technicianRepo:    technicianRepo,
		notificationRepo:  notificationRepo,
		sparePartRepo:     sparePartRepo,
		purchaseOrderRepo: purchaseOrderRepo,
		publisher:         publisher,
		logger:            logger,
		now:               time.Now,
	}
}

// outbox копит события внутри транзакции. Публикуются они только после коммита.
type outbox struct {
	events []eventbus.Event
}

func (o *outbox) add(e eventbus.Event) { o.events = append(o.events, e) }

// notify сохраняет уведомление в транзакции и ставит его в очередь на push.
func (s *RequestService) notify(
	ctx context.Context,
	tx pgx.Tx,
	box *outbox,
	requestID uint64,
	recipientType entities.RecipientType,
	recipientID *uint64,
	message string,
) error {
	created, err := s.notificationRepo.CreateNotification(ctx, tx, entities.Notification{
		RequestID:     requestID,
		RecipientType: recipientType,
		RecipientID:   recipientID,
		Message:       message,
	})
	if err != nil {
		return err
	}
	box.add(events.NotificationCreatedEvent{Notification: *created})
	return nil
}

// checkOwnership - техник работает только со своими заявками.
func checkOwnership(ctx context.Context, request *entities.MaintenanceRequest) error {
	role, err := utils.GetUserRoleFromCtx(ctx)
	if err != nil {
		// системные вызовы (планировщик, сидер) идут без пользователя
		return nil
	}
	if entities.Role(role) != entities.RoleTechnician {
		return nil
	}
	if !request.IsAssignedTo(utils.GetTechnicianIDFromCtx(ctx)) {
		return apperrors.NewHttpError(
			http.StatusForbidden,
			"Заявка назначена другому технику",
			apperrors.ErrForbidden,
			map[string]interface{}{"request_id": request.ID},
		)
	}
	return nil
}

func (s *RequestService) CreateRequest(ctx context.Context, payload dto.CreateRequestDTO) (*dto.RequestDTO, error) {
	request := entities.MaintenanceRequest{
		RequestDate:     s.now(),
		RequesterName:   strings.TrimSpace(payload.RequesterName),
		PhoneNumber:     utils.NormalizePhoneNumber(payload.PhoneNumber),
		Branch:          strings.TrimSpace(payload.Branch),
		MaintenanceType: strings.TrimSpace(payload.MaintenanceType),
		EquipmentName:   strings.TrimSpace(payload.EquipmentName),
		FaultType:       strings.TrimSpace(payload.FaultType),
		Status:          entities.RequestStatusOpen,
	}
	if payload.Notes.Valid && strings.TrimSpace(payload.Notes.String) != "" {
		notes := strings.TrimSpace(payload.Notes.String)
		request.Notes = &notes
	}

	var created *entities.MaintenanceRequest
	box := &outbox{}
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		lookups := []struct {
			kind  entities.CatalogueKind
			value string
		}{
			{entities.CatalogueBranches, request.Branch},
			{entities.CatalogueMaintenanceTypes, request.MaintenanceType},
			{entities.CatalogueEquipmentNames, request.EquipmentName},
			{entities.CatalogueFaultTypes, request.FaultType},
		}
		for _, l := range lookups {
			missing, err := s.catalogueRepo.MissingNames(ctx, tx, l.kind, []string{l.value})
			if err != nil {
				return err
			}
			if len(missing) > 0 {
				return apperrors.NewHttpError(
					http.StatusBadRequest,
					fmt.Sprintf("Значение '%s' отсутствует в справочнике %s", l.value, l.kind),
					apperrors.ErrBadRequest,
					map[string]interface{}{"catalogue": string(l.kind), "value": l.value},
				)
			}
		}

		var err error
		created, err = s.requestRepo.CreateRequest(ctx, tx, request)
		if err != nil {
			return err
		}
		return s.notify(ctx, tx, box, created.ID, entities.RecipientEngineer, nil,
			fmt.Sprintf(constants.MsgRequestCreated, created.ID))
	})
	if err != nil {
		s.logger.Error("Ошибка при создании заявки", zap.Error(err))
		return nil, err
	}
	publishAll(ctx, s.publisher, box.events)

	s.logger.Info("Заявка создана", zap.Uint64("request_id", created.ID), zap.String("branch", created.Branch))
	result := dto.RequestFromEntity(*created)
	return &result, nil
}

func (s *RequestService) GetRequests(ctx context.Context, filter types.Filter) ([]dto.RequestDTO, uint64, error) {
	role, _ := utils.GetUserRoleFromCtx(ctx)
	if entities.Role(role) == entities.RoleTechnician {
		techID := utils.GetTechnicianIDFromCtx(ctx)
		if techID == nil {
			return []dto.RequestDTO{}, 0, nil
		}
		if filter.Filter == nil {
			filter.Filter = map[string]interface{}{}
		}
		filter.Filter["assigned_technician_id"] = *techID
	}

	requests, total, err := s.requestRepo.GetRequests(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return dto.RequestsFromEntities(requests), total, nil
}

func (s *RequestService) GetRequest(ctx context.Context, id uint64) (*dto.RequestDetailsDTO, error) {
	request, err := s.requestRepo.FindRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkOwnership(ctx, request); err != nil {
		return nil, err
	}

	parts, err := s.sparePartRepo.ListByRequest(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	orders, err := s.purchaseOrderRepo.ListByRequest(ctx, nil, id)
	if err != nil {
		return nil, err
	}

	details := &dto.RequestDetailsDTO{
		RequestDTO:     dto.RequestFromEntity(*request),
		SpareParts:     make([]dto.SparePartRequestDTO, 0, len(parts)),
		PurchaseOrders: make([]dto.PurchaseOrderDTO, 0, len(orders)),
	}
	for _, p := range parts {
		details.SpareParts = append(details.SpareParts, dto.SparePartRequestFromEntity(p))
	}
	for _, o := range orders {
		details.PurchaseOrders = append(details.PurchaseOrders, dto.PurchaseOrderFromEntity(o))
	}
	return details, nil
}

func (s *RequestService) findTechnician(ctx context.Context, tx pgx.Tx, payload dto.AssignTechnicianDTO) (*entities.Technician, error) {
	var (
		technician *entities.Technician
		err        error
	)
	switch {
	case payload.TechnicianID.Valid:
		technician, err = s.technicianRepo.FindTechnician(ctx, tx, payload.TechnicianID.Uint64)
	case payload.TechnicianName.Valid && strings.TrimSpace(payload.TechnicianName.String) != "":
		technician, err = s.technicianRepo.FindByName(ctx, tx, strings.TrimSpace(payload.TechnicianName.String))
	default:
		return nil, apperrors.NewBadRequestError("Укажите technician_id или technician_name")
	}
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, apperrors.NewHttpError(http.StatusNotFound, "Техник не найден", err, nil)
	}
	return technician, err
}

func (s *RequestService) AssignTechnician(ctx context.Context, id uint64, payload dto.AssignTechnicianDTO) (*dto.RequestDTO, error) {
	var request *entities.MaintenanceRequest
	var technician *entities.Technician
	box := &outbox{}

	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		var err error
		request, err = s.requestRepo.FindForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if request.Status != entities.RequestStatusOpen {
			return apperrors.NewHttpError(
				http.StatusConflict,
				fmt.Sprintf("Заявка #%d в статусе '%s', назначить техника можно только открытой заявке", id, request.Status),
				apperrors.ErrInvalidTransition,
				map[string]interface{}{"request_id": id, "status": string(request.Status)},
			)
		}

		technician, err = s.findTechnician(ctx, tx, payload)
		if err != nil {
			return err
		}

		if err := s.requestRepo.AssignTechnician(ctx, tx, id, technician.ID, technician.Name); err != nil {
			return err
		}
		techID := technician.ID
		if err := s.notify(ctx, tx, box, id, entities.RecipientTechnician, &techID,
			fmt.Sprintf(constants.MsgTechnicianAssigned, id)); err != nil {
			return err
		}
		if _, err := s.notificationRepo.MarkRequestRead(ctx, tx, id, entities.RecipientEngineer); err != nil {
			return err
		}

		name := technician.Name
		request.AssignedTechnician = &name
		request.AssignedTechnicianID = &techID
		box.add(events.TechnicianAssignedEvent{
			Request:    *request,
			Technician: *technician,
			Message:    fmt.Sprintf(constants.MsgTechnicianAssigned, id),
		})
		return nil
	})
	if err != nil {
		s.logger.Warn("Не удалось назначить техника", zap.Uint64("request_id", id), zap.Error(err))
		return nil, err
	}
	publishAll(ctx, s.publisher, box.events)

	s.logger.Info("Техник назначен на заявку",
		zap.Uint64("request_id", id),
		zap.Uint64("technician_id", technician.ID))
	result := dto.RequestFromEntity(*request)
	return &result, nil
}

func (s *RequestService) UpdateStatus(ctx context.Context, id uint64, payload dto.UpdateStatusDTO) (*dto.RequestDTO, error) {
	target := entities.RequestStatus(payload.Status)
	// waiting выставляется только через запрос запчастей
	if target != entities.RequestStatusInProgress && target != entities.RequestStatusClosed {
		return nil, apperrors.NewHttpError(
			http.StatusBadRequest,
			fmt.Sprintf("Статус '%s' нельзя выставить вручную", target),
			apperrors.ErrBadRequest,
			nil,
		)
	}

	var request *entities.MaintenanceRequest
	box := &outbox{}
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		var err error
		request, err = s.requestRepo.FindForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := checkOwnership(ctx, request); err != nil {
			return err
		}
		if !request.Status.CanTransitionTo(target) {
			return apperrors.NewTransitionError(id, string(request.Status), string(target))
		}

		now := s.now()
		switch target {
		case entities.RequestStatusInProgress:
			if request.AssignedTechnicianID == nil {
				return apperrors.NewHttpError(
					http.StatusConflict,
					fmt.Sprintf("Заявка #%d: сначала назначьте техника", id),
					apperrors.ErrInvalidTransition,
					map[string]interface{}{"request_id": id},
				)
			}
			if err := s.requestRepo.UpdateStatus(ctx, tx, id, target, &now, nil); err != nil {
				return err
			}
			request.StartTime = &now
		case entities.RequestStatusClosed:
			if err := s.requestRepo.UpdateStatus(ctx, tx, id, target, nil, &now); err != nil {
				return err
			}
			request.EndTime = &now
			message := fmt.Sprintf(constants.MsgRequestClosed, id)
			if err := s.notify(ctx, tx, box, id, entities.RecipientRequester, nil, message); err != nil {
				return err
			}
			if err := s.notify(ctx, tx, box, id, entities.RecipientEngineer, nil, message); err != nil {
				return err
			}
		}
		request.Status = target
		return nil
	})
	if err != nil {
		s.logger.Warn("Не удалось изменить статус заявки",
			zap.Uint64("request_id", id),
			zap.String("target", string(target)),
			zap.Error(err))
		return nil, err
	}
	publishAll(ctx, s.publisher, box.events)

	s.logger.Info("Статус заявки изменён", zap.Uint64("request_id", id), zap.String("status", string(target)))
	result := dto.RequestFromEntity(*request)
	return &result, nil
}

// normalizeParts убирает пустые значения и дубликаты, сохраняя порядок.
func normalizeParts(parts []string) []string {
	seen := make(map[string]struct{}, len(parts))
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

func (s *RequestService) RequestSpareParts(ctx context.Context, id uint64, payload dto.RequestSparePartsDTO) ([]dto.SparePartRequestDTO, error) {
	parts := normalizeParts(payload.Parts)
	if len(parts) == 0 {
		return nil, apperrors.NewBadRequestError("Список запчастей пуст")
	}

	created := make([]dto.SparePartRequestDTO, 0, len(parts))
	box := &outbox{}
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		request, err := s.requestRepo.FindForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := checkOwnership(ctx, request); err != nil {
			return err
		}
		if !request.Status.CanTransitionTo(entities.RequestStatusWaiting) {
			return apperrors.NewTransitionError(id, string(request.Status), string(entities.RequestStatusWaiting))
		}

		missing, err := s.catalogueRepo.MissingNames(ctx, tx, entities.CatalogueSpareParts, parts)
		if err != nil {
			return err
		}
		if len(missing) > 0 {
			return apperrors.NewHttpError(
				http.StatusBadRequest,
				fmt.Sprintf("Неизвестные запчасти: %s", strings.Join(missing, constants.PartsSeparator)),
				apperrors.ErrBadRequest,
				map[string]interface{}{"missing": missing},
			)
		}

		for _, part := range parts {
			row, err := s.sparePartRepo.CreateSparePartRequest(ctx, tx, id, part)
			if err != nil {
				return err
			}
			created = append(created, dto.SparePartRequestFromEntity(*row))
			if err := s.notify(ctx, tx, box, id, entities.RecipientStore, nil,
				fmt.Sprintf(constants.MsgSparePartRequested, id, part)); err != nil {
				return err
			}
		}
		return s.requestRepo.UpdateStatus(ctx, tx, id, entities.RequestStatusWaiting, nil, nil)
	})
	if err != nil {
		s.logger.Warn("Не удалось оформить запрос запчастей", zap.Uint64("request_id", id), zap.Error(err))
		return nil, err
	}
	publishAll(ctx, s.publisher, box.events)

	s.logger.Info("Запрошены запчасти", zap.Uint64("request_id", id), zap.Strings("parts", parts))
	return created, nil
}

func (s *RequestService) GetSparePartRequests(ctx context.Context, filter types.Filter) ([]dto.SparePartRequestDTO, uint64, error) {
	if filter.Filter == nil {
		filter.Filter = map[string]interface{}{}
	}
	if _, ok := filter.Filter["status"]; !ok {
		filter.Filter["status"] = string(entities.SparePartPending)
	}

	rows, total, err := s.sparePartRepo.GetSparePartRequests(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]dto.SparePartRequestDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.SparePartRequestFromEntity(r))
	}
	return out, total, nil
}

func (s *RequestService) DecideSparePart(ctx context.Context, id uint64, payload dto.SparePartDecisionDTO) (*dto.SparePartRequestDTO, error) {
	decision := entities.SparePartStatus(payload.Status)
	if decision != entities.SparePartAvailable && decision != entities.SparePartUnavailable {
		return nil, apperrors.NewBadRequestError("Решение должно быть available или unavailable")
	}

	var row *entities.SparePartsRequest
	box := &outbox{}
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		// Сначала заявка, затем запчасть: тот же порядок блокировок, что в CreatePurchaseOrder.
		requestID, err := s.sparePartRepo.FindRequestID(ctx, tx, id)
		if err != nil {
			return err
		}
		if _, err := s.requestRepo.FindForUpdate(ctx, tx, requestID); err != nil {
			return err
		}
		row, err = s.sparePartRepo.FindForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if row.Status != entities.SparePartPending {
			return apperrors.NewHttpError(
				http.StatusConflict,
				fmt.Sprintf("По запросу запчасти #%d уже принято решение '%s'", id, row.Status),
				apperrors.ErrAlreadyDecided,
				map[string]interface{}{"spare_part_request_id": id},
			)
		}
		if err := s.sparePartRepo.UpdateStatus(ctx, tx, id, decision); err != nil {
			return err
		}
		row.Status = decision

		if decision != entities.SparePartUnavailable {
			return nil
		}
		names, err := s.sparePartRepo.UnavailablePartNames(ctx, tx, row.RequestID)
		if err != nil {
			return err
		}
		return s.notify(ctx, tx, box, row.RequestID, entities.RecipientEngineer, nil,
			fmt.Sprintf(constants.MsgSparePartsUnavailable, row.RequestID, strings.Join(names, constants.PartsSeparator)))
	})
	if err != nil {
		s.logger.Warn("Не удалось сохранить решение по запчасти", zap.Uint64("spare_part_request_id", id), zap.Error(err))
		return nil, err
	}
	publishAll(ctx, s.publisher, box.events)

	s.logger.Info("Решение по запчасти сохранено",
		zap.Uint64("spare_part_request_id", id),
		zap.String("status", string(decision)))
	result := dto.SparePartRequestFromEntity(*row)
	return &result, nil
}

func (s *RequestService) CreatePurchaseOrder(ctx context.Context, requestID uint64) (*dto.PurchaseOrderDTO, error) {
	var order *entities.PurchaseOrder
	box := &outbox{}
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		request, err := s.requestRepo.FindForUpdate(ctx, tx, requestID)
		if err != nil {
			return err
		}
		if request.Status != entities.RequestStatusWaiting {
			return apperrors.NewHttpError(
				http.StatusConflict,
				fmt.Sprintf("Заявка #%d не ожидает запчастей", requestID),
				apperrors.ErrInvalidTransition,
				map[string]interface{}{"request_id": requestID, "status": string(request.Status)},
			)
		}

		names, err := s.sparePartRepo.UnavailablePartNames(ctx, tx, requestID)
		if err != nil {
			return err
		}
		if len(names) == 0 {
			return apperrors.NewHttpError(
				http.StatusConflict,
				fmt.Sprintf("У заявки #%d нет отсутствующих на складе запчастей", requestID),
				apperrors.ErrConflict,
				map[string]interface{}{"request_id": requestID},
			)
		}
		pending, err := s.purchaseOrderRepo.HasPending(ctx, tx, requestID)
		if err != nil {
			return err
		}
		if pending {
			return apperrors.NewHttpError(
				http.StatusConflict,
				fmt.Sprintf("По заявке #%d уже есть заказ на закупку в ожидании", requestID),
				apperrors.ErrConflict,
				map[string]interface{}{"request_id": requestID},
			)
		}

		joined := strings.Join(names, constants.PartsSeparator)
		order, err = s.purchaseOrderRepo.CreatePurchaseOrder(ctx, tx, entities.PurchaseOrder{
			RequestID: requestID,
			PartName:  joined,
			Details:   joined,
			Status:    entities.PurchaseOrderPending,
		})
		if err != nil {
			return err
		}
		return s.notify(ctx, tx, box, requestID, entities.RecipientAdmin, nil,
			fmt.Sprintf(constants.MsgPurchaseOrderCreated, requestID, joined))
	})
	if err != nil {
		s.logger.Warn("Не удалось создать заказ на закупку", zap.Uint64("request_id", requestID), zap.Error(err))
		return nil, err
	}
	publishAll(ctx, s.publisher, box.events)

	s.logger.Info("Создан заказ на закупку",
		zap.Uint64("request_id", requestID),
		zap.Uint64("purchase_order_id", order.ID))
	result := dto.PurchaseOrderFromEntity(*order)
	return &result, nil
}

func (s *RequestService) GetPurchaseOrders(ctx context.Context, filter types.Filter) ([]dto.PurchaseOrderDTO, uint64, error) {
	orders, total, err := s.purchaseOrderRepo.GetPurchaseOrders(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]dto.PurchaseOrderDTO, 0, len(orders))
	for _, o := range orders {
		out = append(out, dto.PurchaseOrderFromEntity(o))
	}
	return out, total, nil
}

func (s *RequestService) DecidePurchaseOrder(ctx context.Context, id uint64, payload dto.PurchaseOrderDecisionDTO) (*dto.PurchaseOrderDTO, error) {
	decision := entities.PurchaseOrderStatus(payload.Status)
	if decision != entities.PurchaseOrderApproved && decision != entities.PurchaseOrderRejected {
		return nil, apperrors.NewBadRequestError("Решение должно быть approved или rejected")
	}

	var order *entities.PurchaseOrder
	box := &outbox{}
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		requestID, err := s.purchaseOrderRepo.FindRequestID(ctx, tx, id)
		if err != nil {
			return err
		}
		if _, err := s.requestRepo.FindForUpdate(ctx, tx, requestID); err != nil {
			return err
		}
		order, err = s.purchaseOrderRepo.FindForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if order.Status != entities.PurchaseOrderPending {
			return apperrors.NewHttpError(
				http.StatusConflict,
				fmt.Sprintf("По заказу #%d уже принято решение '%s'", id, order.Status),
				apperrors.ErrAlreadyDecided,
				map[string]interface{}{"purchase_order_id": id},
			)
		}
		if err := s.purchaseOrderRepo.UpdateStatus(ctx, tx, id, decision); err != nil {
			return err
		}
		order.Status = decision

		if decision == entities.PurchaseOrderRejected {
			return s.notify(ctx, tx, box, order.RequestID, entities.RecipientEngineer, nil,
				fmt.Sprintf(constants.MsgPurchaseOrderRejected, id))
		}
		if err := s.notify(ctx, tx, box, order.RequestID, entities.RecipientEngineer, nil,
			fmt.Sprintf(constants.MsgPurchaseOrderApproved, id)); err != nil {
			return err
		}
		return s.notify(ctx, tx, box, order.RequestID, entities.RecipientStore, nil,
			fmt.Sprintf(constants.MsgPurchaseOrderPurchased, id))
	})
	if err != nil {
		s.logger.Warn("Не удалось сохранить решение по заказу", zap.Uint64("purchase_order_id", id), zap.Error(err))
		return nil, err
	}
	publishAll(ctx, s.publisher, box.events)

	s.logger.Info("Решение по заказу на закупку сохранено",
		zap.Uint64("purchase_order_id", id),
		zap.String("status", string(decision)))
	result := dto.PurchaseOrderFromEntity(*order)
	return &result, nil
}
