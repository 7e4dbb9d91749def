package services

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"maintenance-system/internal/dto"
	"maintenance-system/internal/entities"
	"maintenance-system/internal/events"
	"maintenance-system/pkg/constants"
	apperrors "maintenance-system/pkg/errors"
	"maintenance-system/pkg/types"
	"maintenance-system/pkg/utils"
)

type RequestServiceSuite struct {
	suite.Suite
	store     *memStore
	publisher *recordingPublisher
	service   RequestServiceInterface
	tech      entities.Technician
	ctx       context.Context
}

func (s *RequestServiceSuite) SetupTest() {
	s.store = newMemStore()
	s.store.addCatalogue(entities.CatalogueBranches, "Main Branch", "Secondary Branch")
	s.store.addCatalogue(entities.CatalogueMaintenanceTypes, "Preventive", "Corrective")
	s.store.addCatalogue(entities.CatalogueEquipmentNames, "Machine A", "Machine B")
	s.store.addCatalogue(entities.CatalogueFaultTypes, "Electrical", "Mechanical")
	s.store.addCatalogue(entities.CatalogueSpareParts, "Motor", "Gearbox")
	s.tech = s.store.addTechnician("Technician 1", 1, nil)

	s.publisher = &recordingPublisher{}
	svc := NewRequestService(
		&fakeTxManager{store: s.store},
		&fakeRequestRepo{store: s.store},
		&fakeCatalogueRepo{store: s.store},
		&fakeTechnicianRepo{store: s.store},
		&fakeNotificationRepo{store: s.store},
		&fakeSparePartRepo{store: s.store},
		&fakePurchaseOrderRepo{store: s.store},
		s.publisher,
		zap.NewNop(),
	)
	svc.(*RequestService).now = func() time.Time { return s.store.now }
	s.service = svc
	s.ctx = utils.WithActor(context.Background(), 1, string(entities.RoleEngineer), nil)
}

func TestRequestServiceSuite(t *testing.T) {
	suite.Run(t, new(RequestServiceSuite))
}

func (s *RequestServiceSuite) validCreate() dto.CreateRequestDTO {
	return dto.CreateRequestDTO{
		RequesterName:   "Ahmed",
		PhoneNumber:     "+966 500 000 001",
		Branch:          "Main Branch",
		MaintenanceType: "Corrective",
		EquipmentName:   "Machine A",
		FaultType:       "Electrical",
		Notes:           null.StringFrom("  шумит двигатель "),
	}
}

func (s *RequestServiceSuite) create() *dto.RequestDTO {
	created, err := s.service.CreateRequest(s.ctx, s.validCreate())
	s.Require().NoError(err)
	return created
}

func (s *RequestServiceSuite) assign(id uint64) {
	_, err := s.service.AssignTechnician(s.ctx, id, dto.AssignTechnicianDTO{TechnicianID: null.Uint64From(s.tech.ID)})
	s.Require().NoError(err)
}

func (s *RequestServiceSuite) start(id uint64) {
	_, err := s.service.UpdateStatus(s.ctx, id, dto.UpdateStatusDTO{Status: "in_progress"})
	s.Require().NoError(err)
}

func (s *RequestServiceSuite) countByRecipient(requestID uint64) map[entities.RecipientType]int {
	out := map[entities.RecipientType]int{}
	for _, n := range s.store.notificationsFor(requestID) {
		out[n.RecipientType]++
	}
	return out
}

func (s *RequestServiceSuite) TestCreateRequest_OpenWithOneEngineerNotification() {
	created := s.create()

	s.Equal(string(entities.RequestStatusOpen), created.Status)
	s.Equal(s.store.now, created.RequestDate)
	s.Equal("+966500000001", created.PhoneNumber)
	s.Require().NotNil(created.Notes)
	s.Equal("шумит двигатель", *created.Notes)

	s.Len(s.store.requests, 1)
	notifications := s.store.notificationsFor(created.ID)
	s.Require().Len(notifications, 1)
	s.Equal(entities.RecipientEngineer, notifications[0].RecipientType)
	s.Equal(fmt.Sprintf(constants.MsgRequestCreated, created.ID), notifications[0].Message)
	s.False(notifications[0].IsRead)

	s.Equal([]string{events.NotificationCreated}, s.publisher.names())
}

func (s *RequestServiceSuite) TestCreateRequest_UnknownCatalogueValue() {
	payload := s.validCreate()
	payload.FaultType = "Hydraulic"

	_, err := s.service.CreateRequest(s.ctx, payload)

	var httpErr *apperrors.HttpError
	s.Require().ErrorAs(err, &httpErr)
	s.Equal(http.StatusBadRequest, httpErr.Code)
	s.Empty(s.store.requests)
	s.Empty(s.store.notifications)
	s.Empty(s.publisher.names())
}

func (s *RequestServiceSuite) TestAssignTechnician_MarksEngineerNotificationsRead() {
	created := s.create()

	assigned, err := s.service.AssignTechnician(s.ctx, created.ID, dto.AssignTechnicianDTO{TechnicianName: null.StringFrom("Technician 1")})
	s.Require().NoError(err)

	s.Equal(string(entities.RequestStatusOpen), assigned.Status)
	s.Require().NotNil(assigned.AssignedTechnicianID)
	s.Equal(s.tech.ID, *assigned.AssignedTechnicianID)
	s.Equal("Technician 1", *assigned.AssignedTechnician)

	for _, n := range s.store.notificationsFor(created.ID) {
		switch n.RecipientType {
		case entities.RecipientEngineer:
			s.True(n.IsRead, "уведомления инженера должны быть прочитаны")
		case entities.RecipientTechnician:
			s.False(n.IsRead)
			s.Require().NotNil(n.RecipientID)
			s.Equal(s.tech.ID, *n.RecipientID)
			s.Equal(fmt.Sprintf(constants.MsgTechnicianAssigned, created.ID), n.Message)
		default:
			s.Failf("лишнее уведомление", "%s", n.RecipientType)
		}
	}
	s.Contains(s.publisher.names(), events.TechnicianAssigned)
}

func (s *RequestServiceSuite) TestAssignTechnician_Errors() {
	created := s.create()

	_, err := s.service.AssignTechnician(s.ctx, 999, dto.AssignTechnicianDTO{TechnicianID: null.Uint64From(s.tech.ID)})
	s.ErrorIs(err, apperrors.ErrNotFound)

	_, err = s.service.AssignTechnician(s.ctx, created.ID, dto.AssignTechnicianDTO{TechnicianID: null.Uint64From(999)})
	s.ErrorIs(err, apperrors.ErrNotFound)

	_, err = s.service.AssignTechnician(s.ctx, created.ID, dto.AssignTechnicianDTO{})
	var httpErr *apperrors.HttpError
	s.Require().ErrorAs(err, &httpErr)
	s.Equal(http.StatusBadRequest, httpErr.Code)

	s.assign(created.ID)
	s.start(created.ID)
	_, err = s.service.AssignTechnician(s.ctx, created.ID, dto.AssignTechnicianDTO{TechnicianID: null.Uint64From(s.tech.ID)})
	s.ErrorIs(err, apperrors.ErrInvalidTransition)
}

func (s *RequestServiceSuite) TestUpdateStatus_StartRequiresTechnician() {
	created := s.create()

	_, err := s.service.UpdateStatus(s.ctx, created.ID, dto.UpdateStatusDTO{Status: "in_progress"})
	s.ErrorIs(err, apperrors.ErrInvalidTransition)
	s.Equal(entities.RequestStatusOpen, s.store.request(created.ID).Status)

	s.assign(created.ID)
	started, err := s.service.UpdateStatus(s.ctx, created.ID, dto.UpdateStatusDTO{Status: "in_progress"})
	s.Require().NoError(err)
	s.Equal(string(entities.RequestStatusInProgress), started.Status)
	s.Require().NotNil(started.StartTime)
	s.Equal(s.store.now, *started.StartTime)
}

func (s *RequestServiceSuite) TestUpdateStatus_CloseProducesTwoNotifications() {
	created := s.create()
	s.assign(created.ID)
	s.start(created.ID)
	before := len(s.store.notificationsFor(created.ID))

	closed, err := s.service.UpdateStatus(s.ctx, created.ID, dto.UpdateStatusDTO{Status: "closed"})
	s.Require().NoError(err)

	s.Equal(string(entities.RequestStatusClosed), closed.Status)
	s.Require().NotNil(closed.EndTime)
	s.NotNil(s.store.request(created.ID).EndTime)

	all := s.store.notificationsFor(created.ID)
	s.Require().Len(all, before+2)
	added := all[before:]
	s.ElementsMatch(
		[]entities.RecipientType{entities.RecipientRequester, entities.RecipientEngineer},
		[]entities.RecipientType{added[0].RecipientType, added[1].RecipientType},
	)
	for _, n := range added {
		s.Equal(fmt.Sprintf(constants.MsgRequestClosed, created.ID), n.Message)
	}
}

func (s *RequestServiceSuite) TestUpdateStatus_InvalidTransitionWritesNothing() {
	created := s.create()
	s.assign(created.ID)
	s.start(created.ID)
	_, err := s.service.UpdateStatus(s.ctx, created.ID, dto.UpdateStatusDTO{Status: "closed"})
	s.Require().NoError(err)

	notificationsBefore := len(s.store.notifications)
	eventsBefore := len(s.publisher.names())

	_, err = s.service.UpdateStatus(s.ctx, created.ID, dto.UpdateStatusDTO{Status: "closed"})

	var httpErr *apperrors.HttpError
	s.Require().ErrorAs(err, &httpErr)
	s.Equal(http.StatusConflict, httpErr.Code)
	s.ErrorIs(err, apperrors.ErrInvalidTransition)
	s.Len(s.store.notifications, notificationsBefore)
	s.Len(s.publisher.names(), eventsBefore)
}

func (s *RequestServiceSuite) TestUpdateStatus_ManualWaitingRejected() {
	created := s.create()

	_, err := s.service.UpdateStatus(s.ctx, created.ID, dto.UpdateStatusDTO{Status: "waiting"})

	var httpErr *apperrors.HttpError
	s.Require().ErrorAs(err, &httpErr)
	s.Equal(http.StatusBadRequest, httpErr.Code)
}

func (s *RequestServiceSuite) TestUpdateStatus_TechnicianOnlyOwnRequests() {
	created := s.create()
	s.assign(created.ID)

	other := s.store.addTechnician("Technician 2", 2, nil)
	otherCtx := utils.WithActor(context.Background(), 7, string(entities.RoleTechnician), &other.ID)
	_, err := s.service.UpdateStatus(otherCtx, created.ID, dto.UpdateStatusDTO{Status: "in_progress"})
	s.ErrorIs(err, apperrors.ErrForbidden)

	ownerCtx := utils.WithActor(context.Background(), 8, string(entities.RoleTechnician), &s.tech.ID)
	_, err = s.service.UpdateStatus(ownerCtx, created.ID, dto.UpdateStatusDTO{Status: "in_progress"})
	s.NoError(err)
}

func (s *RequestServiceSuite) TestRequestSpareParts() {
	created := s.create()
	s.assign(created.ID)
	s.start(created.ID)

	rows, err := s.service.RequestSpareParts(s.ctx, created.ID, dto.RequestSparePartsDTO{Parts: []string{"Motor", " Motor ", "Gearbox", ""}})
	s.Require().NoError(err)

	s.Require().Len(rows, 2)
	s.Equal("Motor", rows[0].PartName)
	s.Equal("Gearbox", rows[1].PartName)
	s.Equal(entities.RequestStatusWaiting, s.store.request(created.ID).Status)
	s.Equal(2, s.countByRecipient(created.ID)[entities.RecipientStore])
}

func (s *RequestServiceSuite) TestRequestSpareParts_Rejections() {
	created := s.create()

	_, err := s.service.RequestSpareParts(s.ctx, created.ID, dto.RequestSparePartsDTO{Parts: []string{"Motor"}})
	s.ErrorIs(err, apperrors.ErrInvalidTransition)

	s.assign(created.ID)
	s.start(created.ID)

	_, err = s.service.RequestSpareParts(s.ctx, created.ID, dto.RequestSparePartsDTO{Parts: []string{"Motor", "Flux capacitor"}})
	var httpErr *apperrors.HttpError
	s.Require().ErrorAs(err, &httpErr)
	s.Equal(http.StatusBadRequest, httpErr.Code)
	s.Contains(httpErr.Message, "Flux capacitor")
	s.Empty(s.store.spareParts)
	s.Equal(entities.RequestStatusInProgress, s.store.request(created.ID).Status)

	_, err = s.service.RequestSpareParts(s.ctx, created.ID, dto.RequestSparePartsDTO{Parts: []string{"  "}})
	s.Require().ErrorAs(err, &httpErr)
	s.Equal(http.StatusBadRequest, httpErr.Code)
}

// toWaiting доводит заявку до ожидания запчастей и возвращает id строк запроса.
func (s *RequestServiceSuite) toWaiting(parts ...string) (uint64, []uint64) {
	created := s.create()
	s.assign(created.ID)
	s.start(created.ID)
	rows, err := s.service.RequestSpareParts(s.ctx, created.ID, dto.RequestSparePartsDTO{Parts: parts})
	s.Require().NoError(err)
	ids := make([]uint64, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	return created.ID, ids
}

func (s *RequestServiceSuite) TestDecideSparePart() {
	requestID, ids := s.toWaiting("Motor", "Gearbox")

	decided, err := s.service.DecideSparePart(s.ctx, ids[0], dto.SparePartDecisionDTO{Status: "available"})
	s.Require().NoError(err)
	s.Equal(string(entities.SparePartAvailable), decided.Status)
	engineerBefore := s.countByRecipient(requestID)[entities.RecipientEngineer]

	_, err = s.service.DecideSparePart(s.ctx, ids[1], dto.SparePartDecisionDTO{Status: "unavailable"})
	s.Require().NoError(err)
	s.Equal(engineerBefore+1, s.countByRecipient(requestID)[entities.RecipientEngineer])

	all := s.store.notificationsFor(requestID)
	last := all[len(all)-1]
	s.Equal(fmt.Sprintf(constants.MsgSparePartsUnavailable, requestID, "Gearbox"), last.Message)

	_, err = s.service.DecideSparePart(s.ctx, ids[1], dto.SparePartDecisionDTO{Status: "available"})
	s.ErrorIs(err, apperrors.ErrAlreadyDecided)
}

func (s *RequestServiceSuite) TestDecideSparePart_LocksRequestFirst() {
	requestID, ids := s.toWaiting("Motor", "Gearbox")

	s.store.locks = nil
	_, err := s.service.DecideSparePart(s.ctx, ids[0], dto.SparePartDecisionDTO{Status: "unavailable"})
	s.Require().NoError(err)
	s.Equal([]string{fmt.Sprintf("request:%d", requestID), fmt.Sprintf("spare_part:%d", ids[0])}, s.store.locks)

	_, err = s.service.DecideSparePart(s.ctx, ids[1], dto.SparePartDecisionDTO{Status: "unavailable"})
	s.Require().NoError(err)

	all := s.store.notificationsFor(requestID)
	s.Equal(fmt.Sprintf(constants.MsgSparePartsUnavailable, requestID, "Motor, Gearbox"), all[len(all)-1].Message)

	_, err = s.service.DecideSparePart(s.ctx, 9999, dto.SparePartDecisionDTO{Status: "available"})
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *RequestServiceSuite) TestDecidePurchaseOrder_LocksRequestFirst() {
	requestID, ids := s.toWaiting("Motor")
	_, err := s.service.DecideSparePart(s.ctx, ids[0], dto.SparePartDecisionDTO{Status: "unavailable"})
	s.Require().NoError(err)
	order, err := s.service.CreatePurchaseOrder(s.ctx, requestID)
	s.Require().NoError(err)

	s.store.locks = nil
	_, err = s.service.DecidePurchaseOrder(s.ctx, order.ID, dto.PurchaseOrderDecisionDTO{Status: "approved"})
	s.Require().NoError(err)
	s.Equal([]string{fmt.Sprintf("request:%d", requestID), fmt.Sprintf("purchase_order:%d", order.ID)}, s.store.locks)
}

func (s *RequestServiceSuite) TestPurchaseOrderLifecycle() {
	requestID, ids := s.toWaiting("Motor", "Gearbox")

	_, err := s.service.CreatePurchaseOrder(s.ctx, requestID)
	s.ErrorIs(err, apperrors.ErrConflict, "нет отсутствующих запчастей")

	for _, id := range ids {
		_, err := s.service.DecideSparePart(s.ctx, id, dto.SparePartDecisionDTO{Status: "unavailable"})
		s.Require().NoError(err)
	}

	order, err := s.service.CreatePurchaseOrder(s.ctx, requestID)
	s.Require().NoError(err)
	s.Equal("Motor, Gearbox", order.PartName)
	s.Equal(order.PartName, order.Details)
	s.Equal(string(entities.PurchaseOrderPending), order.Status)
	s.Equal(entities.RequestStatusWaiting, s.store.request(requestID).Status)
	s.Equal(1, s.countByRecipient(requestID)[entities.RecipientAdmin])

	_, err = s.service.CreatePurchaseOrder(s.ctx, requestID)
	s.ErrorIs(err, apperrors.ErrConflict, "второй заказ в ожидании")

	engineer := s.countByRecipient(requestID)[entities.RecipientEngineer]
	store := s.countByRecipient(requestID)[entities.RecipientStore]
	approved, err := s.service.DecidePurchaseOrder(s.ctx, order.ID, dto.PurchaseOrderDecisionDTO{Status: "approved"})
	s.Require().NoError(err)
	s.Equal(string(entities.PurchaseOrderApproved), approved.Status)
	s.Equal(engineer+1, s.countByRecipient(requestID)[entities.RecipientEngineer])
	s.Equal(store+1, s.countByRecipient(requestID)[entities.RecipientStore])

	_, err = s.service.DecidePurchaseOrder(s.ctx, order.ID, dto.PurchaseOrderDecisionDTO{Status: "rejected"})
	s.ErrorIs(err, apperrors.ErrAlreadyDecided)

	closed, err := s.service.UpdateStatus(s.ctx, requestID, dto.UpdateStatusDTO{Status: "closed"})
	s.Require().NoError(err)
	s.Equal(string(entities.RequestStatusClosed), closed.Status)
}

func (s *RequestServiceSuite) TestDecidePurchaseOrder_Rejected() {
	requestID, ids := s.toWaiting("Motor")
	_, err := s.service.DecideSparePart(s.ctx, ids[0], dto.SparePartDecisionDTO{Status: "unavailable"})
	s.Require().NoError(err)
	order, err := s.service.CreatePurchaseOrder(s.ctx, requestID)
	s.Require().NoError(err)
	store := s.countByRecipient(requestID)[entities.RecipientStore]

	_, err = s.service.DecidePurchaseOrder(s.ctx, order.ID, dto.PurchaseOrderDecisionDTO{Status: "rejected"})
	s.Require().NoError(err)

	all := s.store.notificationsFor(requestID)
	s.Equal(fmt.Sprintf(constants.MsgPurchaseOrderRejected, order.ID), all[len(all)-1].Message)
	s.Equal(store, s.countByRecipient(requestID)[entities.RecipientStore])
}

func (s *RequestServiceSuite) TestGetRequests_TechnicianSeesOwn() {
	mine := s.create()
	s.create()
	s.assign(mine.ID)

	techCtx := utils.WithActor(context.Background(), 5, string(entities.RoleTechnician), &s.tech.ID)
	list, total, err := s.service.GetRequests(techCtx, types.Filter{})
	s.Require().NoError(err)
	s.Equal(uint64(1), total)
	s.Equal(mine.ID, list[0].ID)

	all, total, err := s.service.GetRequests(s.ctx, types.Filter{})
	s.Require().NoError(err)
	s.Equal(uint64(2), total)
	s.Len(all, 2)

	unlinked := utils.WithActor(context.Background(), 6, string(entities.RoleTechnician), nil)
	none, total, err := s.service.GetRequests(unlinked, types.Filter{})
	s.Require().NoError(err)
	s.Zero(total)
	s.Empty(none)
}

func (s *RequestServiceSuite) TestGetRequest_WithDetails() {
	requestID, ids := s.toWaiting("Motor")
	_, err := s.service.DecideSparePart(s.ctx, ids[0], dto.SparePartDecisionDTO{Status: "unavailable"})
	s.Require().NoError(err)
	_, err = s.service.CreatePurchaseOrder(s.ctx, requestID)
	s.Require().NoError(err)

	details, err := s.service.GetRequest(s.ctx, requestID)
	s.Require().NoError(err)
	s.Equal(requestID, details.ID)
	s.Len(details.SpareParts, 1)
	s.Len(details.PurchaseOrders, 1)

	_, err = s.service.GetRequest(s.ctx, 12345)
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *RequestServiceSuite) TestGetSparePartRequests_DefaultsToPending() {
	_, ids := s.toWaiting("Motor", "Gearbox")
	_, err := s.service.DecideSparePart(s.ctx, ids[0], dto.SparePartDecisionDTO{Status: "available"})
	s.Require().NoError(err)

	pending, total, err := s.service.GetSparePartRequests(s.ctx, types.Filter{})
	s.Require().NoError(err)
	s.Equal(uint64(1), total)
	s.Equal("Gearbox", pending[0].PartName)

	available, _, err := s.service.GetSparePartRequests(s.ctx, types.Filter{Filter: map[string]interface{}{"status": "available"}})
	s.Require().NoError(err)
	s.Len(available, 1)
}

func TestNormalizeParts(t *testing.T) {
	assert.Equal(t, []string{"Motor", "Gearbox"}, normalizeParts([]string{" Motor", "", "Gearbox", "Motor"}))
	require.Empty(t, normalizeParts([]string{" ", ""}))
}
