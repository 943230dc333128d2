package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/javacachava/pizza-brava-sub000/internal/cart"
	"github.com/javacachava/pizza-brava-sub000/internal/domain"
	"github.com/javacachava/pizza-brava-sub000/internal/queue"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func nopLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

type fakeCatalog struct {
	products    map[string]domain.Product
	combos      map[string]domain.ComboDefinition
	ingredients []domain.Ingredient
	flavors     []domain.VariantGroup
	replaced    *domain.Catalog
	replaceErr  error
}

func (f *fakeCatalog) GetProduct(_ context.Context, id string) (*domain.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, domain.NotFound("product", id)
	}
	return &p, nil
}

func (f *fakeCatalog) ListProducts(_ context.Context) ([]domain.Product, error) {
	out := make([]domain.Product, 0, len(f.products))
	for _, p := range f.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeCatalog) GetComboDefinition(_ context.Context, id string) (*domain.ComboDefinition, error) {
	d, ok := f.combos[id]
	if !ok {
		return nil, domain.NotFound("combo", id)
	}
	return &d, nil
}

func (f *fakeCatalog) ListIngredients(_ context.Context) ([]domain.Ingredient, error) {
	return f.ingredients, nil
}

func (f *fakeCatalog) ListFlavors(_ context.Context) ([]domain.VariantGroup, error) {
	return f.flavors, nil
}

func (f *fakeCatalog) ReplaceCatalog(_ context.Context, c domain.Catalog) error {
	if f.replaceErr != nil {
		return f.replaceErr
	}
	f.replaced = &c
	return nil
}

// fakeOrders serializes numbering behind a mutex the way the store's
// transaction does.
type fakeOrders struct {
	mu        sync.Mutex
	counters  map[string]int64
	orders    map[primitive.ObjectID]domain.Order
	createErr error
	delay     time.Duration
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{
		counters: make(map[string]int64),
		orders:   make(map[primitive.ObjectID]domain.Order),
	}
}

func (f *fakeOrders) CreateWithNumber(ctx context.Context, order *domain.Order, day string) error {
	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(f.delay):
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createErr != nil {
		return f.createErr
	}

	f.counters[day]++
	order.ID = primitive.NewObjectID()
	order.OrderNumber = domain.FormatOrderNumber(day, f.counters[day])
	f.orders[order.ID] = *order
	return nil
}

func (f *fakeOrders) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	o, ok := f.orders[id]
	if !ok {
		return nil, domain.NotFound("order", id.Hex())
	}
	return &o, nil
}

func (f *fakeOrders) ListActive(_ context.Context) ([]domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []domain.Order
	for _, o := range f.orders {
		if o.Status.IsActive() {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeOrders) UpdateStatus(_ context.Context, id primitive.ObjectID, from, to domain.OrderStatus, at time.Time) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	o, ok := f.orders[id]
	if !ok {
		return nil, domain.NotFound("order", id.Hex())
	}
	if o.Status != from {
		return nil, domain.ErrStatusConflict
	}
	o.Status = to
	o.UpdatedAt = at
	f.orders[id] = o
	return &o, nil
}

func (f *fakeOrders) WatchOrders(ctx context.Context, onOpen func(context.Context) error, _ func(domain.Order) error) error {
	if err := onOpen(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	return ctx.Err()
}

// setStatus simulates another terminal moving the order.
func (f *fakeOrders) setStatus(id primitive.ObjectID, status domain.OrderStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o := f.orders[id]
	o.Status = status
	f.orders[id] = o
}

type fakeCarts struct {
	mu       sync.Mutex
	sessions map[string]cart.Session
}

func newFakeCarts() *fakeCarts {
	return &fakeCarts{sessions: make(map[string]cart.Session)}
}

func (f *fakeCarts) Create(_ context.Context, s *cart.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[s.ID] = *s
	return nil
}

func (f *fakeCarts) Get(_ context.Context, id string) (*cart.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return nil, domain.NotFound("cart", id)
	}
	return &s, nil
}

func (f *fakeCarts) Update(_ context.Context, id string, fn func(cart.Cart) (cart.Cart, error)) (*cart.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return nil, domain.NotFound("cart", id)
	}
	if s.CheckingOut(time.Now()) {
		return nil, domain.ErrCheckoutInProgress
	}
	next, err := fn(s.Cart)
	if err != nil {
		return nil, err
	}
	s.Cart = next
	f.sessions[id] = s
	return &s, nil
}

func (f *fakeCarts) Claim(_ context.Context, id string) (*cart.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return nil, domain.NotFound("cart", id)
	}
	now := time.Now()
	if s.CheckingOut(now) {
		return nil, domain.ErrCheckoutInProgress
	}
	s.CheckoutAt = &now
	f.sessions[id] = s
	return &s, nil
}

func (f *fakeCarts) Release(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return domain.NotFound("cart", id)
	}
	s.CheckoutAt = nil
	f.sessions[id] = s
	return nil
}

func (f *fakeCarts) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, id)
	return nil
}

type fakeBroker struct {
	mu         sync.Mutex
	published  map[string][][]byte
	publishErr error
}

func newFakeBroker() *fakeBroker {
	return &fakeBroker{published: make(map[string][][]byte)}
}

func (b *fakeBroker) Publish(_ context.Context, queueName string, message []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.publishErr != nil {
		return b.publishErr
	}
	b.published[queueName] = append(b.published[queueName], message)
	return nil
}

func (b *fakeBroker) Subscribe(context.Context, string, queue.MessageHandler) error {
	return nil
}

func (b *fakeBroker) Close() error { return nil }

func (b *fakeBroker) count(queueName string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.published[queueName])
}

type fakeAudits struct {
	records []domain.OrderStatusAudit
	limit   int
}

func (f *fakeAudits) Create(_ context.Context, a *domain.OrderStatusAudit) error {
	f.records = append(f.records, *a)
	return nil
}

func (f *fakeAudits) GetByOrderID(_ context.Context, orderID string, limit int) ([]domain.OrderStatusAudit, error) {
	f.limit = limit
	var out []domain.OrderStatusAudit
	for _, r := range f.records {
		if r.OrderID == orderID {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeImportTasks struct {
	tasks map[primitive.ObjectID]domain.ImportTask
}

func newFakeImportTasks() *fakeImportTasks {
	return &fakeImportTasks{tasks: make(map[primitive.ObjectID]domain.ImportTask)}
}

func (f *fakeImportTasks) Create(_ context.Context, t *domain.ImportTask) error {
	t.ID = primitive.NewObjectID()
	f.tasks[t.ID] = *t
	return nil
}

func (f *fakeImportTasks) GetByID(_ context.Context, id primitive.ObjectID) (*domain.ImportTask, error) {
	t, ok := f.tasks[id]
	if !ok {
		return nil, domain.NotFound("import task", id.Hex())
	}
	return &t, nil
}

func (f *fakeImportTasks) UpdateStatus(_ context.Context, id primitive.ObjectID, status domain.ImportTaskStatus, errorMsg string) error {
	t := f.tasks[id]
	t.Status = status
	t.ErrorMessage = errorMsg
	f.tasks[id] = t
	return nil
}

func (f *fakeImportTasks) Complete(_ context.Context, id primitive.ObjectID, summary domain.ImportSummary) error {
	t := f.tasks[id]
	t.Status = domain.StatusCompleted
	t.Summary = &summary
	f.tasks[id] = t
	return nil
}

func (f *fakeImportTasks) IncrementRetryCount(_ context.Context, id primitive.ObjectID) error {
	t := f.tasks[id]
	t.RetryCount++
	f.tasks[id] = t
	return nil
}

type fakeSource struct {
	catalog *domain.Catalog
	err     error
}

func (s *fakeSource) ParseCatalog(context.Context, string) (*domain.Catalog, error) {
	return s.catalog, s.err
}

// menuFixture is a small catalog touching every product behavior.
func menuFixture() *fakeCatalog {
	return &fakeCatalog{
		products: map[string]domain.Product{
			"soda":    {ID: "soda", Name: "Soda", Price: 1.25, Available: true},
			"pupusa":  {ID: "pupusa", Name: "Pupusa", Price: 2.50, Available: true, UsesFlavors: true},
			"pizza":   {ID: "pizza", Name: "Pizza", Price: 9.00, Available: true, UsesIngredients: true, IngredientIDs: []string{"cheese", "ham", "olives"}},
			"fries":   {ID: "fries", Name: "Fries", Price: 1.50, Available: true},
			"rings":   {ID: "rings", Name: "Onion rings", Price: 2.25, Available: true},
			"sold":    {ID: "sold", Name: "Sold out", Price: 3.00, Available: false},
			"familia": {ID: "familia", Name: "Combo familiar", Price: 12.00, Available: true, ComboEligible: true, ComboDefinitionID: "combo-familia"},
		},
		combos: map[string]domain.ComboDefinition{
			"combo-familia": {
				ID:        "combo-familia",
				Name:      "Combo familiar",
				Price:     12.00,
				Available: true,
				Slots: []domain.ComboSlot{
					{ID: "side", Title: "Side", Requirement: domain.SlotRequired, Min: 1, Max: 1, AllowedProductIDs: []string{"fries", "rings"}, DefaultProductID: "fries"},
					{ID: "drink", Title: "Drink", Requirement: domain.SlotOptional, Min: 0, Max: 2, AllowedProductIDs: []string{"soda"}},
				},
			},
		},
		ingredients: []domain.Ingredient{
			{ID: "cheese", Name: "Cheese", Price: 1.00, IsDefault: true, Available: true},
			{ID: "ham", Name: "Ham", Price: 1.50, Available: true},
			{ID: "olives", Name: "Olives", Price: 0.75, Available: true},
			{ID: "bacon", Name: "Bacon", Price: 2.00, Available: true},
		},
		flavors: []domain.VariantGroup{
			{ID: "masa", Name: "Masa", Kind: domain.VariantFlavor, Options: []domain.VariantOption{{ID: "maiz", Name: "Maiz"}, {ID: "arroz", Name: "Arroz"}}},
		},
	}
}

func sequentialIDs(prefix string) func() string {
	var (
		mu sync.Mutex
		n  int
	)
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}
