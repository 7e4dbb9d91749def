package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"maintenance-system/internal/entities"
	"maintenance-system/internal/repositories"
	apperrors "maintenance-system/pkg/errors"
	"maintenance-system/pkg/eventbus"
	"maintenance-system/pkg/types"
)

// memStore - хранилище в памяти для тестов сервисов.
// Транзакция делает снимок и восстанавливает его при ошибке.
type memStore struct {
	seq           uint64
	catalogues    map[entities.CatalogueKind][]entities.CatalogueItem
	technicians   []entities.Technician
	users         []entities.User
	requests      []entities.MaintenanceRequest
	notifications []entities.Notification
	spareParts    []entities.SparePartsRequest
	orders        []entities.PurchaseOrder
	locks         []string
	now           time.Time
}

func newMemStore() *memStore {
	return &memStore{
		catalogues: map[entities.CatalogueKind][]entities.CatalogueItem{},
		now:        time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (s *memStore) nextID() uint64 {
	s.seq++
	return s.seq
}

func (s *memStore) snapshot() *memStore {
	cp := &memStore{
		seq:           s.seq,
		catalogues:    map[entities.CatalogueKind][]entities.CatalogueItem{},
		technicians:   append([]entities.Technician(nil), s.technicians...),
		users:         append([]entities.User(nil), s.users...),
		requests:      append([]entities.MaintenanceRequest(nil), s.requests...),
		notifications: append([]entities.Notification(nil), s.notifications...),
		spareParts:    append([]entities.SparePartsRequest(nil), s.spareParts...),
		orders:        append([]entities.PurchaseOrder(nil), s.orders...),
		locks:         append([]string(nil), s.locks...),
		now:           s.now,
	}
	for k, v := range s.catalogues {
		cp.catalogues[k] = append([]entities.CatalogueItem(nil), v...)
	}
	return cp
}

func (s *memStore) restore(from *memStore) {
	*s = *from
}

func (s *memStore) addCatalogue(kind entities.CatalogueKind, names ...string) {
	for _, n := range names {
		s.catalogues[kind] = append(s.catalogues[kind], entities.CatalogueItem{ID: s.nextID(), Name: n})
	}
}

func (s *memStore) addTechnician(name string, branchID uint64, chatID *int64) entities.Technician {
	t := entities.Technician{ID: s.nextID(), Name: name, PhoneNumber: fmt.Sprintf("9%08d", s.seq), BranchID: branchID, TelegramChatID: chatID}
	s.technicians = append(s.technicians, t)
	return t
}

func (s *memStore) addRequest(r entities.MaintenanceRequest) entities.MaintenanceRequest {
	r.ID = s.nextID()
	if r.RequestDate.IsZero() {
		r.RequestDate = s.now
	}
	s.requests = append(s.requests, r)
	return r
}

func (s *memStore) request(id uint64) *entities.MaintenanceRequest {
	for i := range s.requests {
		if s.requests[i].ID == id {
			return &s.requests[i]
		}
	}
	return nil
}

func (s *memStore) notificationsFor(requestID uint64) []entities.Notification {
	var out []entities.Notification
	for _, n := range s.notifications {
		if n.RequestID == requestID {
			out = append(out, n)
		}
	}
	return out
}

// ---- TxManager ----

type fakeTxManager struct{ store *memStore }

func (m *fakeTxManager) RunInTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error {
	saved := m.store.snapshot()
	if err := fn(nil); err != nil {
		m.store.restore(saved)
		return err
	}
	return nil
}

// ---- публикатор событий ----

type recordingPublisher struct {
	mu     sync.Mutex
	events []eventbus.Event
}

func (p *recordingPublisher) Publish(_ context.Context, event eventbus.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Name())
	}
	return out
}

// ---- справочники ----

type fakeCatalogueRepo struct{ store *memStore }

var _ repositories.CatalogueRepositoryInterface = (*fakeCatalogueRepo)(nil)

func (r *fakeCatalogueRepo) GetItems(_ context.Context, kind entities.CatalogueKind, filter types.Filter) ([]entities.CatalogueItem, uint64, error) {
	var out []entities.CatalogueItem
	for _, item := range r.store.catalogues[kind] {
		if filter.Search != "" && !strings.Contains(strings.ToLower(item.Name), strings.ToLower(filter.Search)) {
			continue
		}
		out = append(out, item)
	}
	return out, uint64(len(out)), nil
}

func (r *fakeCatalogueRepo) FindItem(_ context.Context, kind entities.CatalogueKind, id uint64) (*entities.CatalogueItem, error) {
	for _, item := range r.store.catalogues[kind] {
		if item.ID == id {
			found := item
			return &found, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *fakeCatalogueRepo) FindByName(_ context.Context, _ pgx.Tx, kind entities.CatalogueKind, name string) (*entities.CatalogueItem, error) {
	for _, item := range r.store.catalogues[kind] {
		if item.Name == name {
			found := item
			return &found, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *fakeCatalogueRepo) MissingNames(ctx context.Context, tx pgx.Tx, kind entities.CatalogueKind, names []string) ([]string, error) {
	var missing []string
	for _, n := range names {
		if _, err := r.FindByName(ctx, tx, kind, n); err != nil {
			missing = append(missing, n)
		}
	}
	return missing, nil
}

func (r *fakeCatalogueRepo) CreateItem(ctx context.Context, tx pgx.Tx, kind entities.CatalogueKind, name string) (uint64, error) {
	if _, err := r.FindByName(ctx, tx, kind, name); err == nil {
		return 0, apperrors.ErrConflict
	}
	id := r.store.nextID()
	r.store.catalogues[kind] = append(r.store.catalogues[kind], entities.CatalogueItem{ID: id, Name: name})
	return id, nil
}

func (r *fakeCatalogueRepo) UpdateItem(_ context.Context, _ pgx.Tx, kind entities.CatalogueKind, id uint64, name string) error {
	items := r.store.catalogues[kind]
	for i := range items {
		if items[i].ID == id {
			items[i].Name = name
			return nil
		}
	}
	return apperrors.ErrNotFound
}

func (r *fakeCatalogueRepo) DeleteItem(_ context.Context, kind entities.CatalogueKind, id uint64) error {
	items := r.store.catalogues[kind]
	for i := range items {
		if items[i].ID == id {
			r.store.catalogues[kind] = append(items[:i], items[i+1:]...)
			return nil
		}
	}
	return apperrors.ErrNotFound
}

// ---- техники ----

type fakeTechnicianRepo struct{ store *memStore }

var _ repositories.TechnicianRepositoryInterface = (*fakeTechnicianRepo)(nil)

func (r *fakeTechnicianRepo) GetTechnicians(_ context.Context, filter types.Filter) ([]entities.Technician, uint64, error) {
	var out []entities.Technician
	for _, t := range r.store.technicians {
		if v, ok := filter.Filter["branch_id"]; ok && fmt.Sprint(v) != fmt.Sprint(t.BranchID) {
			continue
		}
		out = append(out, t)
	}
	return out, uint64(len(out)), nil
}

func (r *fakeTechnicianRepo) FindTechnician(_ context.Context, _ pgx.Tx, id uint64) (*entities.Technician, error) {
	for _, t := range r.store.technicians {
		if t.ID == id {
			found := t
			return &found, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *fakeTechnicianRepo) FindByName(_ context.Context, _ pgx.Tx, name string) (*entities.Technician, error) {
	for _, t := range r.store.technicians {
		if t.Name == name {
			found := t
			return &found, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *fakeTechnicianRepo) CreateTechnician(_ context.Context, _ pgx.Tx, t entities.Technician) (uint64, error) {
	for _, existing := range r.store.technicians {
		if existing.PhoneNumber == t.PhoneNumber {
			return 0, apperrors.ErrConflict
		}
	}
	t.ID = r.store.nextID()
	r.store.technicians = append(r.store.technicians, t)
	return t.ID, nil
}

func (r *fakeTechnicianRepo) UpdateTechnician(_ context.Context, _ pgx.Tx, id uint64, t entities.Technician) error {
	for i := range r.store.technicians {
		if r.store.technicians[i].ID == id {
			t.ID = id
			r.store.technicians[i] = t
			return nil
		}
	}
	return apperrors.ErrNotFound
}

func (r *fakeTechnicianRepo) DeleteTechnician(_ context.Context, id uint64) error {
	for i := range r.store.technicians {
		if r.store.technicians[i].ID == id {
			r.store.technicians = append(r.store.technicians[:i], r.store.technicians[i+1:]...)
			return nil
		}
	}
	return apperrors.ErrNotFound
}

// ---- пользователи ----

type fakeUserRepo struct {
	store       *memStore
	passwordErr error
}

var _ repositories.UserRepositoryInterface = (*fakeUserRepo)(nil)

func (r *fakeUserRepo) GetUsers(_ context.Context, _ types.Filter) ([]entities.User, uint64, error) {
	out := append([]entities.User(nil), r.store.users...)
	return out, uint64(len(out)), nil
}

func (r *fakeUserRepo) FindUser(_ context.Context, id uint64) (*entities.User, error) {
	for _, u := range r.store.users {
		if u.ID == id {
			found := u
			return &found, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *fakeUserRepo) FindByUsername(_ context.Context, username string) (*entities.User, error) {
	for _, u := range r.store.users {
		if u.Username == username {
			found := u
			return &found, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *fakeUserRepo) CreateUser(ctx context.Context, _ pgx.Tx, u entities.User) (uint64, error) {
	if _, err := r.FindByUsername(ctx, u.Username); err == nil {
		return 0, apperrors.ErrConflict
	}
	u.ID = r.store.nextID()
	r.store.users = append(r.store.users, u)
	return u.ID, nil
}

func (r *fakeUserRepo) UpdateUser(_ context.Context, _ pgx.Tx, id uint64, u entities.User) error {
	for i := range r.store.users {
		if r.store.users[i].ID == id {
			u.ID = id
			u.Password = r.store.users[i].Password
			r.store.users[i] = u
			return nil
		}
	}
	return apperrors.ErrNotFound
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, _ pgx.Tx, id uint64, hashed string) error {
	if r.passwordErr != nil {
		return r.passwordErr
	}
	for i := range r.store.users {
		if r.store.users[i].ID == id {
			r.store.users[i].Password = hashed
			return nil
		}
	}
	return apperrors.ErrNotFound
}

func (r *fakeUserRepo) DeleteUser(_ context.Context, id uint64) error {
	for i := range r.store.users {
		if r.store.users[i].ID == id {
			r.store.users = append(r.store.users[:i], r.store.users[i+1:]...)
			return nil
		}
	}
	return apperrors.ErrNotFound
}

// ---- заявки ----

type fakeRequestRepo struct{ store *memStore }

var _ repositories.RequestRepositoryInterface = (*fakeRequestRepo)(nil)

func matchesReport(r entities.MaintenanceRequest, filter entities.ReportFilter) bool {
	if filter.Status != "" && r.Status != filter.Status {
		return false
	}
	if filter.Branch != "" && r.Branch != filter.Branch {
		return false
	}
	return true
}

func (r *fakeRequestRepo) GetRequests(_ context.Context, filter types.Filter) ([]entities.MaintenanceRequest, uint64, error) {
	var out []entities.MaintenanceRequest
	for _, req := range r.store.requests {
		if v, ok := filter.Filter["assigned_technician_id"]; ok {
			if req.AssignedTechnicianID == nil || fmt.Sprint(*req.AssignedTechnicianID) != fmt.Sprint(v) {
				continue
			}
		}
		if v, ok := filter.Filter["status"]; ok && fmt.Sprint(v) != string(req.Status) {
			continue
		}
		out = append(out, req)
	}
	return out, uint64(len(out)), nil
}

func (r *fakeRequestRepo) FindRequest(_ context.Context, id uint64) (*entities.MaintenanceRequest, error) {
	if req := r.store.request(id); req != nil {
		found := *req
		return &found, nil
	}
	return nil, apperrors.ErrNotFound
}

func (r *fakeRequestRepo) FindForUpdate(ctx context.Context, _ pgx.Tx, id uint64) (*entities.MaintenanceRequest, error) {
	r.store.locks = append(r.store.locks, fmt.Sprintf("request:%d", id))
	return r.FindRequest(ctx, id)
}

func (r *fakeRequestRepo) CreateRequest(_ context.Context, _ pgx.Tx, request entities.MaintenanceRequest) (*entities.MaintenanceRequest, error) {
	created := r.store.addRequest(request)
	return &created, nil
}

func (r *fakeRequestRepo) AssignTechnician(_ context.Context, _ pgx.Tx, id uint64, techID uint64, name string) error {
	req := r.store.request(id)
	if req == nil {
		return apperrors.ErrNotFound
	}
	req.AssignedTechnicianID = &techID
	req.AssignedTechnician = &name
	return nil
}

func (r *fakeRequestRepo) UpdateStatus(_ context.Context, _ pgx.Tx, id uint64, status entities.RequestStatus, start, end *time.Time) error {
	req := r.store.request(id)
	if req == nil {
		return apperrors.ErrNotFound
	}
	req.Status = status
	if start != nil {
		req.StartTime = start
	}
	if end != nil {
		req.EndTime = end
	}
	return nil
}

func (r *fakeRequestRepo) ListForReport(_ context.Context, filter entities.ReportFilter) ([]entities.MaintenanceRequest, error) {
	var out []entities.MaintenanceRequest
	for _, req := range r.store.requests {
		if matchesReport(req, filter) {
			out = append(out, req)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].RequestDate.After(out[j].RequestDate) })
	return out, nil
}

func (r *fakeRequestRepo) CountByStatus(_ context.Context, filter entities.ReportFilter) (map[entities.RequestStatus]int, error) {
	counts := map[entities.RequestStatus]int{}
	for _, req := range r.store.requests {
		if matchesReport(req, filter) {
			counts[req.Status]++
		}
	}
	return counts, nil
}

func (r *fakeRequestRepo) FindStale(_ context.Context, olderThan time.Time) ([]entities.MaintenanceRequest, error) {
	var out []entities.MaintenanceRequest
	for _, req := range r.store.requests {
		if !req.RequestDate.Before(olderThan) {
			continue
		}
		if (req.Status == entities.RequestStatusOpen && req.AssignedTechnicianID == nil) || req.Status == entities.RequestStatusWaiting {
			out = append(out, req)
		}
	}
	return out, nil
}

// ---- уведомления ----

type fakeNotificationRepo struct{ store *memStore }

var _ repositories.NotificationRepositoryInterface = (*fakeNotificationRepo)(nil)

func (r *fakeNotificationRepo) CreateNotification(_ context.Context, _ pgx.Tx, n entities.Notification) (*entities.Notification, error) {
	n.ID = r.store.nextID()
	n.CreatedAt = r.store.now.Add(time.Duration(n.ID) * time.Second)
	r.store.notifications = append(r.store.notifications, n)
	return &n, nil
}

func (r *fakeNotificationRepo) GetUnread(_ context.Context, inbox entities.Inbox, _ types.Filter) ([]entities.Notification, uint64, error) {
	var out []entities.Notification
	for i := len(r.store.notifications) - 1; i >= 0; i-- {
		n := r.store.notifications[i]
		if !n.IsRead && inbox.Matches(&n) {
			out = append(out, n)
		}
	}
	return out, uint64(len(out)), nil
}

func (r *fakeNotificationRepo) FindNotification(_ context.Context, id uint64) (*entities.Notification, error) {
	for _, n := range r.store.notifications {
		if n.ID == id {
			found := n
			return &found, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *fakeNotificationRepo) MarkRead(_ context.Context, id uint64) error {
	for i := range r.store.notifications {
		if r.store.notifications[i].ID == id {
			r.store.notifications[i].IsRead = true
			return nil
		}
	}
	return apperrors.ErrNotFound
}

func (r *fakeNotificationRepo) MarkRequestRead(_ context.Context, _ pgx.Tx, requestID uint64, recipientType entities.RecipientType) (int64, error) {
	var count int64
	for i := range r.store.notifications {
		n := &r.store.notifications[i]
		if n.RequestID == requestID && n.RecipientType == recipientType && !n.IsRead {
			n.IsRead = true
			count++
		}
	}
	return count, nil
}

// ---- запчасти ----

type fakeSparePartRepo struct{ store *memStore }

var _ repositories.SparePartRequestRepositoryInterface = (*fakeSparePartRepo)(nil)

func (r *fakeSparePartRepo) CreateSparePartRequest(_ context.Context, _ pgx.Tx, requestID uint64, part string) (*entities.SparePartsRequest, error) {
	row := entities.SparePartsRequest{ID: r.store.nextID(), RequestID: requestID, PartName: part, Status: entities.SparePartPending, CreatedAt: r.store.now}
	r.store.spareParts = append(r.store.spareParts, row)
	return &row, nil
}

func (r *fakeSparePartRepo) GetSparePartRequests(_ context.Context, filter types.Filter) ([]entities.SparePartsRequest, uint64, error) {
	var out []entities.SparePartsRequest
	for _, row := range r.store.spareParts {
		if v, ok := filter.Filter["status"]; ok && fmt.Sprint(v) != string(row.Status) {
			continue
		}
		out = append(out, row)
	}
	return out, uint64(len(out)), nil
}

func (r *fakeSparePartRepo) ListByRequest(_ context.Context, _ pgx.Tx, requestID uint64) ([]entities.SparePartsRequest, error) {
	var out []entities.SparePartsRequest
	for _, row := range r.store.spareParts {
		if row.RequestID == requestID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *fakeSparePartRepo) FindRequestID(_ context.Context, _ pgx.Tx, id uint64) (uint64, error) {
	for _, row := range r.store.spareParts {
		if row.ID == id {
			return row.RequestID, nil
		}
	}
	return 0, apperrors.ErrNotFound
}

func (r *fakeSparePartRepo) FindForUpdate(_ context.Context, _ pgx.Tx, id uint64) (*entities.SparePartsRequest, error) {
	r.store.locks = append(r.store.locks, fmt.Sprintf("spare_part:%d", id))
	for _, row := range r.store.spareParts {
		if row.ID == id {
			found := row
			return &found, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *fakeSparePartRepo) UpdateStatus(_ context.Context, _ pgx.Tx, id uint64, status entities.SparePartStatus) error {
	for i := range r.store.spareParts {
		if r.store.spareParts[i].ID == id {
			r.store.spareParts[i].Status = status
			return nil
		}
	}
	return apperrors.ErrNotFound
}

func (r *fakeSparePartRepo) UnavailablePartNames(_ context.Context, _ pgx.Tx, requestID uint64) ([]string, error) {
	var names []string
	for _, row := range r.store.spareParts {
		if row.RequestID == requestID && row.Status == entities.SparePartUnavailable {
			names = append(names, row.PartName)
		}
	}
	return names, nil
}

// ---- заказы на закупку ----

type fakePurchaseOrderRepo struct{ store *memStore }

var _ repositories.PurchaseOrderRepositoryInterface = (*fakePurchaseOrderRepo)(nil)

func (r *fakePurchaseOrderRepo) CreatePurchaseOrder(_ context.Context, _ pgx.Tx, order entities.PurchaseOrder) (*entities.PurchaseOrder, error) {
	order.ID = r.store.nextID()
	order.CreatedAt = r.store.now
	r.store.orders = append(r.store.orders, order)
	return &order, nil
}

func (r *fakePurchaseOrderRepo) GetPurchaseOrders(_ context.Context, _ types.Filter) ([]entities.PurchaseOrder, uint64, error) {
	out := append([]entities.PurchaseOrder(nil), r.store.orders...)
	return out, uint64(len(out)), nil
}

func (r *fakePurchaseOrderRepo) ListByRequest(_ context.Context, _ pgx.Tx, requestID uint64) ([]entities.PurchaseOrder, error) {
	var out []entities.PurchaseOrder
	for _, o := range r.store.orders {
		if o.RequestID == requestID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *fakePurchaseOrderRepo) FindRequestID(_ context.Context, _ pgx.Tx, id uint64) (uint64, error) {
	for _, o := range r.store.orders {
		if o.ID == id {
			return o.RequestID, nil
		}
	}
	return 0, apperrors.ErrNotFound
}

func (r *fakePurchaseOrderRepo) FindForUpdate(_ context.Context, _ pgx.Tx, id uint64) (*entities.PurchaseOrder, error) {
	r.store.locks = append(r.store.locks, fmt.Sprintf("purchase_order:%d", id))
	for _, o := range r.store.orders {
		if o.ID == id {
			found := o
			return &found, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *fakePurchaseOrderRepo) UpdateStatus(_ context.Context, _ pgx.Tx, id uint64, status entities.PurchaseOrderStatus) error {
	for i := range r.store.orders {
		if r.store.orders[i].ID == id {
			r.store.orders[i].Status = status
			return nil
		}
	}
	return apperrors.ErrNotFound
}

func (r *fakePurchaseOrderRepo) HasPending(_ context.Context, _ pgx.Tx, requestID uint64) (bool, error) {
	for _, o := range r.store.orders {
		if o.RequestID == requestID && o.Status == entities.PurchaseOrderPending {
			return true, nil
		}
	}
	return false, nil
}

// ---- кеш ----

type fakeCache struct {
	mu        sync.Mutex
	values    map[string]string
	ttls      map[string]time.Duration
	existsErr error
}

var _ repositories.CacheRepositoryInterface = (*fakeCache)(nil)

func newFakeCache() *fakeCache {
	return &fakeCache{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (c *fakeCache) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = fmt.Sprint(value)
	c.ttls[key] = ttl
	return nil
}

func (c *fakeCache) SetNX(_ context.Context, key string, value interface{}, ttl time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.values[key]; ok {
		return false, nil
	}
	c.values[key] = fmt.Sprint(value)
	c.ttls[key] = ttl
	return true, nil
}

func (c *fakeCache) Del(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.values, k)
		delete(c.ttls, k)
	}
	return nil
}

func (c *fakeCache) Incr(_ context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var n int64
	fmt.Sscan(c.values[key], &n)
	n++
	c.values[key] = fmt.Sprint(n)
	return n, nil
}

func (c *fakeCache) Expire(_ context.Context, key string, ttl time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.values[key]; !ok {
		return false, nil
	}
	c.ttls[key] = ttl
	return true, nil
}

func (c *fakeCache) Exists(_ context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.existsErr != nil {
		return false, c.existsErr
	}
	_, ok := c.values[key]
	return ok, nil
}
