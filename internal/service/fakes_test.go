package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"storefront/internal/lock"
	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// memDB backs the in-memory repositories used by service tests.
type memDB struct {
	mu sync.Mutex

	priorities map[uuid.UUID]*model.Priority
	catalogs   map[uuid.UUID]*model.Catalog
	products   map[uuid.UUID]*model.Product
	retailers  map[uuid.UUID]*model.Retailer
	orders     map[uuid.UUID]*model.Order
	pos        map[uuid.UUID]*model.PurchaseOrder
	contacts   map[uuid.UUID]*model.ContactInquiry
	audits     []model.AuditLog

	retailerOrder      []uuid.UUID
	retailerPriorities map[uuid.UUID][]uuid.UUID
	accessible         map[uuid.UUID][]uuid.UUID
	overrides          map[uuid.UUID][]uuid.UUID

	failAccessWrite map[uuid.UUID]error
}

func newMemDB() *memDB {
	return &memDB{
		priorities:         map[uuid.UUID]*model.Priority{},
		catalogs:           map[uuid.UUID]*model.Catalog{},
		products:           map[uuid.UUID]*model.Product{},
		retailers:          map[uuid.UUID]*model.Retailer{},
		orders:             map[uuid.UUID]*model.Order{},
		pos:                map[uuid.UUID]*model.PurchaseOrder{},
		contacts:           map[uuid.UUID]*model.ContactInquiry{},
		retailerPriorities: map[uuid.UUID][]uuid.UUID{},
		accessible:         map[uuid.UUID][]uuid.UUID{},
		overrides:          map[uuid.UUID][]uuid.UUID{},
		failAccessWrite:    map[uuid.UUID]error{},
	}
}

func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

func paginate[T any](items []T, page, limit int) []T {
	start := (page - 1) * limit
	if start >= len(items) {
		return []T{}
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// --- seed helpers ---

func (m *memDB) addPriority(code string) *model.Priority {
	p := &model.Priority{ID: uuid.New(), PriorityCode: code, Name: code, IsActive: true}
	m.priorities[p.ID] = p
	return p
}

func (m *memDB) addCatalog(code, level string, active bool, entries ...model.CatalogProduct) *model.Catalog {
	c := &model.Catalog{ID: uuid.New(), CatalogName: code, CatalogCode: code, AccessLevel: level, IsActive: active}
	for i := range entries {
		entries[i].CatalogID = c.ID
		entries[i].Position = i
	}
	c.Products = entries
	m.catalogs[c.ID] = c
	return c
}

func (m *memDB) addProduct(code, name string, active bool) *model.Product {
	p := &model.Product{
		ID:            uuid.New(),
		ItemCode:      code,
		Name:          name,
		PricePerPiece: decimal.NewFromInt(100),
		PricePerSet:   decimal.NewFromInt(450),
		IsActive:      active,
	}
	m.products[p.ID] = p
	return p
}

func (m *memDB) addRetailer(phone string, priorities ...*model.Priority) *model.Retailer {
	r := &model.Retailer{ID: uuid.New(), PhoneNumber: phone, BusinessName: "Shop " + phone, IsActive: true}
	m.retailers[r.ID] = r
	m.retailerOrder = append(m.retailerOrder, r.ID)
	for _, p := range priorities {
		m.retailerPriorities[r.ID] = append(m.retailerPriorities[r.ID], p.ID)
	}
	return r
}

func (m *memDB) hydrate(r *model.Retailer) *model.Retailer {
	cp := *r
	cp.Priorities = nil
	for _, id := range m.retailerPriorities[r.ID] {
		if p, ok := m.priorities[id]; ok {
			cp.Priorities = append(cp.Priorities, *p)
		}
	}
	sort.Slice(cp.Priorities, func(i, j int) bool { return cp.Priorities[i].PriorityCode < cp.Priorities[j].PriorityCode })
	cp.AccessibleCatalogs = m.catalogList(m.accessible[r.ID])
	cp.CatalogOverrides = m.catalogList(m.overrides[r.ID])
	return &cp
}

func (m *memDB) catalogList(ids []uuid.UUID) []model.Catalog {
	out := []model.Catalog{}
	for _, id := range ids {
		if c, ok := m.catalogs[id]; ok {
			out = append(out, *c)
		}
	}
	return out
}

func copyCatalog(c *model.Catalog) *model.Catalog {
	cp := *c
	cp.Products = append([]model.CatalogProduct(nil), c.Products...)
	sort.SliceStable(cp.Products, func(i, j int) bool { return cp.Products[i].Position < cp.Products[j].Position })
	return &cp
}

func hasID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

func removeID(ids []uuid.UUID, id uuid.UUID) []uuid.UUID {
	out := ids[:0:0]
	for _, x := range ids {
		if x != id {
			out = append(out, x)
		}
	}
	return out
}

// --- tx manager, locker, publisher ---

type passThroughTx struct{}

func (passThroughTx) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

type publishedEvent struct {
	Name string
	Data interface{}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) Publish(event string, data interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{Name: event, Data: data})
}

func (p *recordingPublisher) names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Name)
	}
	return out
}

// --- priority repo ---

type fakePriorityRepo struct{ db *memDB }

func (f fakePriorityRepo) Create(_ context.Context, p *model.Priority) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	ensureID(&p.ID)
	cp := *p
	f.db.priorities[p.ID] = &cp
	return nil
}

func (f fakePriorityRepo) Update(_ context.Context, p *model.Priority) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	cp := *p
	f.db.priorities[p.ID] = &cp
	return nil
}

// Delete refuses while any link row references the priority, like the join table foreign key.
func (f fakePriorityRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, ids := range f.db.retailerPriorities {
		if hasID(ids, id) {
			return gorm.ErrForeignKeyViolated
		}
	}
	delete(f.db.priorities, id)
	return nil
}

func (f fakePriorityRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Priority, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	p, ok := f.db.priorities[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (f fakePriorityRepo) FindByCode(_ context.Context, code string) (*model.Priority, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, p := range f.db.priorities {
		if p.PriorityCode == code {
			cp := *p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f fakePriorityRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]model.Priority, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := []model.Priority{}
	for _, id := range ids {
		if p, ok := f.db.priorities[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f fakePriorityRepo) List(_ context.Context) ([]model.Priority, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := []model.Priority{}
	for _, p := range f.db.priorities {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PriorityCode < out[j].PriorityCode })
	return out, nil
}

func (f fakePriorityRepo) FindReplacement(ctx context.Context, excludeID uuid.UUID) (*model.Priority, error) {
	all, _ := f.List(ctx)
	for _, p := range all {
		if p.ID != excludeID {
			cp := p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// --- catalog repo ---

type fakeCatalogRepo struct{ db *memDB }

func (f fakeCatalogRepo) Create(_ context.Context, c *model.Catalog) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	ensureID(&c.ID)
	f.db.catalogs[c.ID] = copyCatalog(c)
	return nil
}

func (f fakeCatalogRepo) Update(_ context.Context, c *model.Catalog) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	existing := f.db.catalogs[c.ID]
	cp := *c
	if existing != nil {
		cp.Products = existing.Products
	}
	f.db.catalogs[c.ID] = &cp
	return nil
}

func (f fakeCatalogRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	delete(f.db.catalogs, id)
	for rid, ids := range f.db.accessible {
		f.db.accessible[rid] = removeID(ids, id)
	}
	for rid, ids := range f.db.overrides {
		f.db.overrides[rid] = removeID(ids, id)
	}
	return nil
}

func (f fakeCatalogRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Catalog, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	c, ok := f.db.catalogs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return copyCatalog(c), nil
}

func (f fakeCatalogRepo) FindByCode(_ context.Context, code string) (*model.Catalog, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, c := range f.db.catalogs {
		if c.CatalogCode == code {
			return copyCatalog(c), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f fakeCatalogRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]model.Catalog, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	return f.db.catalogList(ids), nil
}

func (f fakeCatalogRepo) List(_ context.Context, filter repository.CatalogFilter, page, limit int) ([]model.Catalog, int64, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := []model.Catalog{}
	for _, c := range f.db.catalogs {
		if filter.AccessLevel != "" && c.AccessLevel != filter.AccessLevel {
			continue
		}
		if filter.IsActive != nil && c.IsActive != *filter.IsActive {
			continue
		}
		out = append(out, *copyCatalog(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CatalogCode < out[j].CatalogCode })
	return paginate(out, page, limit), int64(len(out)), nil
}

func (f fakeCatalogRepo) ListActive(_ context.Context) ([]model.Catalog, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := []model.Catalog{}
	for _, c := range f.db.catalogs {
		if c.IsActive {
			out = append(out, *copyCatalog(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CatalogName < out[j].CatalogName })
	return out, nil
}

func (f fakeCatalogRepo) ReplaceProducts(_ context.Context, catalogID uuid.UUID, entries []model.CatalogProduct) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	c, ok := f.db.catalogs[catalogID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c.Products = nil
	for i, e := range entries {
		e.CatalogID = catalogID
		e.Position = i
		c.Products = append(c.Products, e)
	}
	return nil
}

func (f fakeCatalogRepo) SetProductActive(_ context.Context, catalogID, productID uuid.UUID, active bool) (int64, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	c, ok := f.db.catalogs[catalogID]
	if !ok {
		return 0, nil
	}
	var n int64
	for i := range c.Products {
		if c.Products[i].ProductID == productID {
			c.Products[i].IsActive = active
			n++
		}
	}
	return n, nil
}

func (f fakeCatalogRepo) RenameAccessLevel(_ context.Context, from, to string) (int64, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var n int64
	for _, c := range f.db.catalogs {
		if c.AccessLevel == from {
			c.AccessLevel = to
			n++
		}
	}
	return n, nil
}

func (f fakeCatalogRepo) CountActive(ctx context.Context) (int64, error) {
	active, _ := f.ListActive(ctx)
	return int64(len(active)), nil
}

// --- product repo ---

type fakeProductRepo struct{ db *memDB }

func (f fakeProductRepo) Create(_ context.Context, p *model.Product) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	ensureID(&p.ID)
	cp := *p
	f.db.products[p.ID] = &cp
	return nil
}

func (f fakeProductRepo) Update(_ context.Context, p *model.Product) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	cp := *p
	f.db.products[p.ID] = &cp
	return nil
}

func (f fakeProductRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	delete(f.db.products, id)
	return nil
}

func (f fakeProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	p, ok := f.db.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (f fakeProductRepo) FindByItemCode(_ context.Context, code string) (*model.Product, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, p := range f.db.products {
		if p.ItemCode == code {
			cp := *p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f fakeProductRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]model.Product, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := []model.Product{}
	for _, id := range ids {
		if p, ok := f.db.products[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f fakeProductRepo) List(_ context.Context, filter repository.ProductFilter, page, limit int) ([]model.Product, int64, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := []model.Product{}
	for _, p := range f.db.products {
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ItemCode < out[j].ItemCode })
	return paginate(out, page, limit), int64(len(out)), nil
}

func (f fakeProductRepo) Count(_ context.Context) (int64, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	return int64(len(f.db.products)), nil
}

// --- retailer repo ---

type fakeRetailerRepo struct{ db *memDB }

func (f fakeRetailerRepo) Create(_ context.Context, r *model.Retailer) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	ensureID(&r.ID)
	cp := *r
	cp.Priorities, cp.AccessibleCatalogs, cp.CatalogOverrides = nil, nil, nil
	f.db.retailers[r.ID] = &cp
	f.db.retailerOrder = append(f.db.retailerOrder, r.ID)
	return nil
}

func (f fakeRetailerRepo) Update(_ context.Context, r *model.Retailer) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	cp := *r
	cp.Priorities, cp.AccessibleCatalogs, cp.CatalogOverrides = nil, nil, nil
	f.db.retailers[r.ID] = &cp
	return nil
}

func (f fakeRetailerRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	delete(f.db.retailers, id)
	delete(f.db.retailerPriorities, id)
	delete(f.db.accessible, id)
	delete(f.db.overrides, id)
	return nil
}

func (f fakeRetailerRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Retailer, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	r, ok := f.db.retailers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return f.db.hydrate(r), nil
}

func (f fakeRetailerRepo) FindByPhone(_ context.Context, phone string) (*model.Retailer, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, r := range f.db.retailers {
		if r.PhoneNumber == phone {
			return f.db.hydrate(r), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f fakeRetailerRepo) ordered() []*model.Retailer {
	out := []*model.Retailer{}
	for _, id := range f.db.retailerOrder {
		if r, ok := f.db.retailers[id]; ok {
			out = append(out, r)
		}
	}
	return out
}

func (f fakeRetailerRepo) List(_ context.Context, filter repository.RetailerFilter, page, limit int) ([]model.Retailer, int64, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := []model.Retailer{}
	for _, r := range f.ordered() {
		if filter.IsActive != nil && r.IsActive != *filter.IsActive {
			continue
		}
		out = append(out, *f.db.hydrate(r))
	}
	return paginate(out, page, limit), int64(len(out)), nil
}

func (f fakeRetailerRepo) ListActiveWithAccess(_ context.Context) ([]model.Retailer, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := []model.Retailer{}
	for _, r := range f.ordered() {
		if r.IsActive {
			out = append(out, *f.db.hydrate(r))
		}
	}
	return out, nil
}

func (f fakeRetailerRepo) ReplacePriorities(_ context.Context, retailerID uuid.UUID, priorityIDs []uuid.UUID) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	f.db.retailerPriorities[retailerID] = append([]uuid.UUID(nil), priorityIDs...)
	return nil
}

func (f fakeRetailerRepo) ReplaceCatalogOverrides(_ context.Context, retailerID uuid.UUID, catalogIDs []uuid.UUID) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	f.db.overrides[retailerID] = append([]uuid.UUID(nil), catalogIDs...)
	return nil
}

func (f fakeRetailerRepo) ReplaceAccessibleCatalogs(_ context.Context, retailerID uuid.UUID, catalogIDs []uuid.UUID, syncedAt time.Time) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if err := f.db.failAccessWrite[retailerID]; err != nil {
		return err
	}
	f.db.accessible[retailerID] = append([]uuid.UUID(nil), catalogIDs...)
	if r, ok := f.db.retailers[retailerID]; ok {
		r.LastSyncedAt = &syncedAt
	}
	return nil
}

func (f fakeRetailerRepo) CountByPriority(_ context.Context, priorityID uuid.UUID) (int64, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var n int64
	for rid, ids := range f.db.retailerPriorities {
		if _, ok := f.db.retailers[rid]; ok && hasID(ids, priorityID) {
			n++
		}
	}
	return n, nil
}

func (f fakeRetailerRepo) ReassignPriority(_ context.Context, fromID, toID uuid.UUID) (int64, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var n int64
	for rid, ids := range f.db.retailerPriorities {
		if !hasID(ids, fromID) {
			continue
		}
		n++
		ids = removeID(ids, fromID)
		if !hasID(ids, toID) {
			ids = append(ids, toID)
		}
		f.db.retailerPriorities[rid] = ids
	}
	return n, nil
}

func (f fakeRetailerRepo) DeactivateByPriority(_ context.Context, priorityID uuid.UUID) (int64, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var n int64
	for rid, ids := range f.db.retailerPriorities {
		if !hasID(ids, priorityID) {
			continue
		}
		if r, ok := f.db.retailers[rid]; ok {
			r.IsActive = false
			n++
		}
		f.db.retailerPriorities[rid] = removeID(ids, priorityID)
	}
	return n, nil
}

func (f fakeRetailerRepo) UnlinkPriority(_ context.Context, priorityID uuid.UUID) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for rid, ids := range f.db.retailerPriorities {
		f.db.retailerPriorities[rid] = removeID(ids, priorityID)
	}
	return nil
}

func (f fakeRetailerRepo) CountActive(_ context.Context) (int64, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var n int64
	for _, r := range f.db.retailers {
		if r.IsActive {
			n++
		}
	}
	return n, nil
}

// --- order repo ---

type fakeOrderRepo struct{ db *memDB }

func copyOrder(o *model.Order) *model.Order {
	cp := *o
	cp.Items = append([]model.OrderItem(nil), o.Items...)
	return &cp
}

func (f fakeOrderRepo) Create(_ context.Context, o *model.Order) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	ensureID(&o.ID)
	for i := range o.Items {
		ensureID(&o.Items[i].ID)
		o.Items[i].OrderID = o.ID
	}
	f.db.orders[o.ID] = copyOrder(o)
	return nil
}

func (f fakeOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Order, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	o, ok := f.db.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return copyOrder(o), nil
}

func (f fakeOrderRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	return f.FindByID(ctx, id)
}

func (f fakeOrderRepo) ExistsByNumber(_ context.Context, number string) (bool, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, o := range f.db.orders {
		if o.OrderNumber == number {
			return true, nil
		}
	}
	return false, nil
}

func (f fakeOrderRepo) Update(_ context.Context, o *model.Order) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	existing, ok := f.db.orders[o.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	cp := copyOrder(o)
	cp.Items = existing.Items
	f.db.orders[o.ID] = cp
	return nil
}

func (f fakeOrderRepo) UpdateStatus(_ context.Context, id uuid.UUID, status string) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	o, ok := f.db.orders[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	o.Status = status
	return nil
}

func (f fakeOrderRepo) List(_ context.Context, status string, page, limit int) ([]model.Order, int64, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := []model.Order{}
	for _, o := range f.db.orders {
		if status == "" || o.Status == status {
			out = append(out, *copyOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderNumber < out[j].OrderNumber })
	return paginate(out, page, limit), int64(len(out)), nil
}

func (f fakeOrderRepo) CountByStatus(_ context.Context) (map[string]int64, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := map[string]int64{}
	for _, o := range f.db.orders {
		out[o.Status]++
	}
	return out, nil
}

// --- purchase order repo ---

type fakePORepo struct {
	db        *memDB
	failWrite error
}

func (f *fakePORepo) Create(_ context.Context, po *model.PurchaseOrder) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if f.failWrite != nil {
		return f.failWrite
	}
	for _, existing := range f.db.pos {
		if existing.OrderID == po.OrderID {
			return gorm.ErrDuplicatedKey
		}
	}
	ensureID(&po.ID)
	cp := *po
	cp.Items = append([]model.PurchaseOrderItem(nil), po.Items...)
	f.db.pos[po.ID] = &cp
	return nil
}

func (f *fakePORepo) find(match func(*model.PurchaseOrder) bool) (*model.PurchaseOrder, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, po := range f.db.pos {
		if match(po) {
			cp := *po
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakePORepo) FindByID(_ context.Context, id uuid.UUID) (*model.PurchaseOrder, error) {
	return f.find(func(po *model.PurchaseOrder) bool { return po.ID == id })
}

func (f *fakePORepo) FindByOrderID(_ context.Context, orderID uuid.UUID) (*model.PurchaseOrder, error) {
	return f.find(func(po *model.PurchaseOrder) bool { return po.OrderID == orderID })
}

func (f *fakePORepo) ExistsByOrderID(ctx context.Context, orderID uuid.UUID) (bool, error) {
	_, err := f.FindByOrderID(ctx, orderID)
	return err == nil, nil
}

func (f *fakePORepo) ExistsByPONumber(_ context.Context, number string) (bool, error) {
	_, err := f.find(func(po *model.PurchaseOrder) bool { return po.PONumber == number })
	return err == nil, nil
}

func (f *fakePORepo) List(_ context.Context, status string, page, limit int) ([]model.PurchaseOrder, int64, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := []model.PurchaseOrder{}
	for _, po := range f.db.pos {
		if status == "" || po.Status == status {
			out = append(out, *po)
		}
	}
	return paginate(out, page, limit), int64(len(out)), nil
}

func (f *fakePORepo) UpdateStatus(_ context.Context, id uuid.UUID, status string) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	po, ok := f.db.pos[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	po.Status = status
	return nil
}

func (f *fakePORepo) Totals(_ context.Context) (int64, decimal.Decimal, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var n int64
	total := decimal.Zero
	for _, po := range f.db.pos {
		if po.Status == model.POStatusCancelled {
			continue
		}
		n++
		total = total.Add(po.Summary.TotalAmountAfterGST)
	}
	return n, total, nil
}

// --- contact repo ---

type fakeContactRepo struct{ db *memDB }

func (f fakeContactRepo) Create(_ context.Context, c *model.ContactInquiry) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	ensureID(&c.ID)
	cp := *c
	f.db.contacts[c.ID] = &cp
	return nil
}

func (f fakeContactRepo) List(_ context.Context, handled *bool, page, limit int) ([]model.ContactInquiry, int64, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := []model.ContactInquiry{}
	for _, c := range f.db.contacts {
		if handled == nil || c.IsHandled == *handled {
			out = append(out, *c)
		}
	}
	return paginate(out, page, limit), int64(len(out)), nil
}

func (f fakeContactRepo) MarkHandled(_ context.Context, id uuid.UUID, at time.Time) (int64, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	c, ok := f.db.contacts[id]
	if !ok {
		return 0, nil
	}
	c.IsHandled = true
	c.HandledAt = &at
	return 1, nil
}

func (f fakeContactRepo) CountPending(_ context.Context) (int64, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var n int64
	for _, c := range f.db.contacts {
		if !c.IsHandled {
			n++
		}
	}
	return n, nil
}

// --- audit repo ---

type fakeAuditRepo struct{ db *memDB }

func (f fakeAuditRepo) Log(_ context.Context, entry *model.AuditLog) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	ensureID(&entry.ID)
	f.db.audits = append(f.db.audits, *entry)
	return nil
}

func (f fakeAuditRepo) List(_ context.Context, action string, page, limit int) ([]model.AuditLog, int64, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := []model.AuditLog{}
	for _, a := range f.db.audits {
		if action == "" || a.Action == action {
			out = append(out, a)
		}
	}
	return paginate(out, page, limit), int64(len(out)), nil
}

func (m *memDB) auditActions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.audits))
	for _, a := range m.audits {
		out = append(out, a.Action)
	}
	return out
}

// --- wiring ---

type testEnv struct {
	db        *memDB
	events    *recordingPublisher
	locker    *lock.LocalLocker
	access    AccessService
	priority  PriorityService
	catalog   CatalogService
	retailer  RetailerService
	product   ProductService
	order     OrderService
	poRepo    *fakePORepo
	po        PurchaseOrderService
	dashboard DashboardService
}

func newTestEnv() *testEnv {
	db := newMemDB()
	log := zap.NewNop()
	events := &recordingPublisher{}
	locker := lock.NewLocalLocker()
	tx := passThroughTx{}

	priorities := fakePriorityRepo{db: db}
	catalogs := fakeCatalogRepo{db: db}
	products := fakeProductRepo{db: db}
	retailers := fakeRetailerRepo{db: db}
	orders := fakeOrderRepo{db: db}
	pos := &fakePORepo{db: db}
	contacts := fakeContactRepo{db: db}
	audits := fakeAuditRepo{db: db}

	access := NewAccessService(retailers, catalogs, products, audits, locker, events, log, AccessOptions{
		LockTTL:     time.Minute,
		LockTimeout: 50 * time.Millisecond,
	})

	return &testEnv{
		db:        db,
		events:    events,
		locker:    locker,
		access:    access,
		priority:  NewPriorityService(priorities, retailers, catalogs, audits, tx, access, log),
		catalog:   NewCatalogService(catalogs, priorities, products, audits, tx, access, log),
		retailer:  NewRetailerService(retailers, priorities, catalogs, audits, tx, access, log),
		product:   NewProductService(products, audits, tx),
		order:     NewOrderService(orders, retailers, products, audits, tx, events, log),
		poRepo:    pos,
		po:        NewPurchaseOrderService(pos, orders, audits, tx, events, log),
		dashboard: NewDashboardService(retailers, catalogs, products, orders, pos, contacts),
	}
}

func appErrorKind(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return -1
}

func appErrorStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.HTTPStatus()
	}
	return 0
}
