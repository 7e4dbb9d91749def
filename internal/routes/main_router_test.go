// Файл: internal/routes/main_router_test.go
package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"maintenance-system/internal/dto"
	"maintenance-system/internal/entities"
	"maintenance-system/internal/services"
	"maintenance-system/pkg/config"
	"maintenance-system/pkg/constants"
	apperrors "maintenance-system/pkg/errors"
	"maintenance-system/pkg/service"
	"maintenance-system/pkg/types"
	"maintenance-system/pkg/utils"
	"maintenance-system/pkg/websocket"
)

// Заглушки встраивают интерфейс: не переопределённый метод паникует,
// и это видно в тесте как 500.

type stubAuthService struct {
	services.AuthServiceInterface
	users map[string]*entities.User
}

func (s *stubAuthService) Login(_ context.Context, payload dto.LoginDTO) (*entities.User, error) {
	user, ok := s.users[payload.Username]
	if !ok || payload.Password != "pass123" {
		return nil, apperrors.ErrInvalidCredentials
	}
	return user, nil
}

func (s *stubAuthService) GetUserByID(_ context.Context, id uint64) (*entities.User, error) {
	for _, u := range s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

type stubCatalogueService struct {
	services.CatalogueServiceInterface
}

func (stubCatalogueService) GetItems(_ context.Context, kind entities.CatalogueKind, _ types.Filter) ([]dto.CatalogueItemDTO, uint64, error) {
	return []dto.CatalogueItemDTO{{ID: 1, Name: string(kind)}}, 1, nil
}

func (stubCatalogueService) CreateItem(_ context.Context, _ entities.CatalogueKind, payload dto.CatalogueItemInputDTO) (*dto.CatalogueItemDTO, error) {
	return &dto.CatalogueItemDTO{ID: 2, Name: payload.Name}, nil
}

type stubRequestService struct {
	services.RequestServiceInterface
	created  []dto.CreateRequestDTO
	assigned []dto.AssignTechnicianDTO
}

func (s *stubRequestService) CreateRequest(_ context.Context, payload dto.CreateRequestDTO) (*dto.RequestDTO, error) {
	s.created = append(s.created, payload)
	return &dto.RequestDTO{ID: uint64(len(s.created)), RequesterName: payload.RequesterName, Status: string(entities.RequestStatusOpen)}, nil
}

func (s *stubRequestService) AssignTechnician(_ context.Context, id uint64, payload dto.AssignTechnicianDTO) (*dto.RequestDTO, error) {
	s.assigned = append(s.assigned, payload)
	return &dto.RequestDTO{ID: id, Status: string(entities.RequestStatusOpen)}, nil
}

func (s *stubRequestService) GetRequests(context.Context, types.Filter) ([]dto.RequestDTO, uint64, error) {
	return []dto.RequestDTO{}, 0, nil
}

func (s *stubRequestService) UpdateStatus(_ context.Context, id uint64, payload dto.UpdateStatusDTO) (*dto.RequestDTO, error) {
	return nil, apperrors.NewTransitionError(id, string(entities.RequestStatusOpen), payload.Status)
}

func (s *stubRequestService) GetPurchaseOrders(context.Context, types.Filter) ([]dto.PurchaseOrderDTO, uint64, error) {
	return []dto.PurchaseOrderDTO{{ID: 1, RequestID: 1, Status: string(entities.PurchaseOrderPending)}}, 1, nil
}

type stubReportService struct {
	services.ReportServiceInterface
}

func (stubReportService) GetStats(context.Context) (*types.DashboardStats, error) {
	return &types.DashboardStats{Total: 4, Pending: 1, InProgress: 1, Completed: 1}, nil
}

func (stubReportService) ExportXLSX(context.Context, entities.ReportFilter) (*bytes.Buffer, int, error) {
	return bytes.NewBufferString("PK-fake"), 0, nil
}

type RouterTestSuite struct {
	suite.Suite
	Echo     *echo.Echo
	JWT      service.JWTService
	Requests *stubRequestService
}

func (s *RouterTestSuite) SetupTest() {
	logger := zap.NewNop()
	cfg := config.Default()

	s.JWT = service.NewJWTService("router-test-secret", time.Hour, 24*time.Hour, logger)
	s.Requests = &stubRequestService{}
	techID := uint64(1)
	svcs := &Services{
		Auth: &stubAuthService{users: map[string]*entities.User{
			"engineer":   {ID: 1, Username: "engineer", Role: entities.RoleEngineer},
			"technician": {ID: 2, Username: "technician", Role: entities.RoleTechnician, TechnicianID: &techID},
		}},
		Catalogue: stubCatalogueService{},
		Request:   s.Requests,
		Report:    stubReportService{},
	}

	s.Echo = NewServer(&cfg.Server, logger)
	InitRouter(s.Echo, svcs, s.JWT, websocket.NewHub(logger), cfg, NewLoggers(logger))
}

func (s *RouterTestSuite) token(role entities.Role) string {
	access, _, err := s.JWT.GenerateTokens(service.TokenSubject{UserID: 1, Role: string(role)})
	s.Require().NoError(err)
	return access
}

func (s *RouterTestSuite) do(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)
	return rec
}

func (s *RouterTestSuite) decode(rec *httptest.ResponseRecorder) utils.HTTPResponse {
	var resp utils.HTTPResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func (s *RouterTestSuite) TestSecureRoutesRequireToken() {
	rec := s.do(http.MethodGet, "/api/requests", nil, "")
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *RouterTestSuite) TestLoginSetsRefreshCookie() {
	rec := s.do(http.MethodPost, "/api/auth/login", dto.LoginDTO{Username: "technician", Password: "pass123"}, "")
	s.Require().Equal(http.StatusOK, rec.Code)

	var resp struct {
		Body dto.AuthResponseDTO `json:"body"`
	}
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.NotEmpty(resp.Body.AccessToken)
	s.Equal("technician", resp.Body.User.Role)

	claims, err := s.JWT.ValidateToken(resp.Body.AccessToken)
	s.Require().NoError(err)
	s.Require().NotNil(claims.TechnicianID)
	s.Equal(uint64(1), *claims.TechnicianID)

	var refresh *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "refreshToken" {
			refresh = c
		}
	}
	s.Require().NotNil(refresh)
	s.True(refresh.HttpOnly)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", nil)
	req.AddCookie(refresh)
	refreshRec := httptest.NewRecorder()
	s.Echo.ServeHTTP(refreshRec, req)
	s.Equal(http.StatusOK, refreshRec.Code)
}

func (s *RouterTestSuite) TestLoginWrongPassword() {
	rec := s.do(http.MethodPost, "/api/auth/login", dto.LoginDTO{Username: "engineer", Password: "nope"}, "")
	s.Equal(http.StatusUnauthorized, rec.Code)
	s.False(s.decode(rec).Status)
}

func (s *RouterTestSuite) TestRefreshWithoutCookie() {
	rec := s.do(http.MethodPost, "/api/auth/refresh", nil, "")
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *RouterTestSuite) TestRefreshRejectsAccessToken() {
	req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", nil)
	req.AddCookie(&http.Cookie{Name: "refreshToken", Value: s.token(entities.RoleEngineer)})
	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *RouterTestSuite) TestMe() {
	rec := s.do(http.MethodGet, "/api/auth/me", nil, s.token(entities.RoleEngineer))
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `"username":"engineer"`)
}

func (s *RouterTestSuite) TestCreateRequestRoleGate() {
	payload := dto.CreateRequestDTO{
		RequesterName:   "Ali",
		PhoneNumber:     "+966 500 000 000",
		Branch:          "Main Branch",
		MaintenanceType: "Corrective",
		EquipmentName:   "Machine A",
		FaultType:       "Electrical",
	}

	rec := s.do(http.MethodPost, "/api/requests", payload, s.token(entities.RoleTechnician))
	s.Equal(http.StatusForbidden, rec.Code)
	s.Empty(s.Requests.created)

	rec = s.do(http.MethodPost, "/api/requests", payload, s.token(entities.RoleBranch))
	s.Equal(http.StatusCreated, rec.Code)
	s.Len(s.Requests.created, 1)
}

func (s *RouterTestSuite) TestCreateRequestValidation() {
	rec := s.do(http.MethodPost, "/api/requests", map[string]string{"requester_name": "Ali"}, s.token(entities.RoleEngineer))
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Empty(s.Requests.created)
}

func (s *RouterTestSuite) TestAssignTechnicianRejectsZeroID() {
	rec := s.do(http.MethodPost, "/api/requests/5/assign", map[string]interface{}{"technician_id": 0}, s.token(entities.RoleEngineer))
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Empty(s.Requests.assigned)

	rec = s.do(http.MethodPost, "/api/requests/5/assign", map[string]interface{}{"technician_id": 3}, s.token(entities.RoleEngineer))
	s.Equal(http.StatusOK, rec.Code)
	s.Require().Len(s.Requests.assigned, 1)
	s.Equal(uint64(3), s.Requests.assigned[0].TechnicianID.Uint64)

	rec = s.do(http.MethodPost, "/api/requests/5/assign", map[string]interface{}{"technician_name": "Technician 1"}, s.token(entities.RoleEngineer))
	s.Equal(http.StatusOK, rec.Code)
	s.False(s.Requests.assigned[1].TechnicianID.Valid)
}

func (s *RouterTestSuite) TestUpdateStatusConflict() {
	rec := s.do(http.MethodPost, "/api/requests/5/status", dto.UpdateStatusDTO{Status: "closed"}, s.token(entities.RoleTechnician))
	s.Equal(http.StatusConflict, rec.Code)
	s.False(s.decode(rec).Status)
}

func (s *RouterTestSuite) TestUpdateStatusBadID() {
	rec := s.do(http.MethodPost, "/api/requests/abc/status", dto.UpdateStatusDTO{Status: "closed"}, s.token(entities.RoleEngineer))
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *RouterTestSuite) TestPurchaseOrdersRoleGate() {
	rec := s.do(http.MethodGet, "/api/purchase-orders", nil, s.token(entities.RoleStore))
	s.Equal(http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodGet, "/api/purchase-orders", nil, s.token(entities.RoleEngineer))
	s.Equal(http.StatusOK, rec.Code)
	s.True(s.decode(rec).Status)
}

func (s *RouterTestSuite) TestCatalogueRoutes() {
	rec := s.do(http.MethodGet, "/api/maintenance-types", nil, s.token(entities.RoleTechnician))
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), "maintenance_types")

	rec = s.do(http.MethodPost, "/api/spare-parts", dto.CatalogueItemInputDTO{Name: "Motor"}, s.token(entities.RoleTechnician))
	s.Equal(http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodPost, "/api/spare-parts", dto.CatalogueItemInputDTO{Name: "Motor"}, s.token(entities.RoleEngineer))
	s.Equal(http.StatusCreated, rec.Code)
}

func (s *RouterTestSuite) TestReportExport() {
	rec := s.do(http.MethodGet, "/api/report/export?branch=Main+Branch", nil, s.token(entities.RoleEngineer))
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Equal(constants.XLSXContentType, rec.Header().Get(echo.HeaderContentType))
	s.True(strings.Contains(rec.Header().Get(echo.HeaderContentDisposition), constants.ReportFileName))

	rec = s.do(http.MethodGet, "/api/report?format=xlsx", nil, s.token(entities.RoleAdmin))
	s.Equal(http.StatusOK, rec.Code)
	s.Equal(constants.XLSXContentType, rec.Header().Get(echo.HeaderContentType))

	rec = s.do(http.MethodGet, "/api/report?status=bogus", nil, s.token(entities.RoleEngineer))
	s.Equal(http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodGet, "/api/report/export", nil, s.token(entities.RoleStore))
	s.Equal(http.StatusForbidden, rec.Code)
}

func (s *RouterTestSuite) TestStatsForAnyRole() {
	rec := s.do(http.MethodGet, "/api/stats", nil, s.token(entities.RoleBranch))
	s.Require().Equal(http.StatusOK, rec.Code)

	var resp struct {
		Body types.DashboardStats `json:"body"`
	}
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(s.T(), 4, resp.Body.Total)
	assert.Equal(s.T(), 1, resp.Body.Pending)
}

func (s *RouterTestSuite) TestWebSocketRequiresToken() {
	rec := s.do(http.MethodGet, "/api/ws", nil, "")
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func TestRouterTestSuite(t *testing.T) {
	suite.Run(t, new(RouterTestSuite))
}
