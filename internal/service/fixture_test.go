package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/shopbot/internal/datamodels/product"
	"github.com/example/shopbot/internal/repository/memory"
)

type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type sentMessage struct {
	To   string
	Text string
}

type fakeNotifier struct {
	mu      sync.Mutex
	user    []sentMessage
	admin   []string
	failFor map[string]bool
	failAll bool
}

func (n *fakeNotifier) NotifyUser(_ context.Context, userID, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failAll || n.failFor[userID] {
		return errors.New("chat not found")
	}
	n.user = append(n.user, sentMessage{To: userID, Text: text})
	return nil
}

func (n *fakeNotifier) NotifyAdmin(_ context.Context, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failAll {
		return errors.New("chat not found")
	}
	n.admin = append(n.admin, text)
	return nil
}

func (n *fakeNotifier) userMessages() []sentMessage {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]sentMessage(nil), n.user...)
}

func (n *fakeNotifier) adminMessages() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.admin...)
}

type dirtyRecorder struct {
	mu    sync.Mutex
	names map[string]int
}

func (r *dirtyRecorder) MarkDirty(names ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range names {
		r.names[n]++
	}
}

func (r *dirtyRecorder) count(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.names[name]
}

type fixture struct {
	catalog  *memory.CatalogRepo
	users    *memory.UserRepo
	orders   *memory.OrderRepo
	stats    *memory.StatsRepo
	notifier *fakeNotifier
	dirty    *dirtyRecorder
	clock    *fixedClock
	monitor  *Monitor

	userSvc     *UserService
	cartSvc     *CartService
	checkoutSvc *CheckoutService
	accountSvc  *AccountService
	adminSvc    *AdminService
	supportSvc  *SupportService
}

const testAdmin = "999"

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		catalog:  memory.NewCatalogRepository(),
		users:    memory.NewUserRepository(),
		orders:   memory.NewOrderRepository(),
		stats:    memory.NewStatsRepository(),
		notifier: &fakeNotifier{failFor: map[string]bool{}},
		dirty:    &dirtyRecorder{names: map[string]int{}},
		clock:    &fixedClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)},
		monitor:  NewMonitor(),
	}
	f.catalog.PutCategory(&product.Category{ID: "cat_a", Name: "A"})
	f.catalog.PutCategory(&product.Category{ID: "cat_b", Name: "B"})

	d := Deps{
		Stores: Stores{
			Catalog: f.catalog,
			Users:   f.users,
			Orders:  f.orders,
			Stats:   f.stats,
		},
		Store:    f.dirty,
		Notifier: f.notifier,
		Monitor:  f.monitor,
		Locks:    NewUserLocks(),
		Clock:    f.clock,
		Messages: NewMessages("€"),
	}
	f.userSvc = NewUserService(d)
	f.cartSvc = NewCartService(d, f.userSvc)
	f.checkoutSvc = NewCheckoutService(d, f.userSvc, DefaultLowStockThreshold)
	f.accountSvc = NewAccountService(d, f.userSvc, DefaultHistoryLimit)
	f.adminSvc = NewAdminService(d, testAdmin, DefaultTopN, nil)
	f.supportSvc = NewSupportService(d, f.userSvc)
	return f
}

func (f *fixture) addProduct(id, category, price string, stock int64) {
	f.catalog.PutProduct(&product.Product{
		ID:         id,
		Name:       "Product " + id,
		CategoryID: category,
		Price:      decimal.RequireFromString(price),
		Stock:      stock,
		Active:     true,
	})
}

func (f *fixture) stock(t *testing.T, id string) int64 {
	t.Helper()
	p, err := f.catalog.GetProduct(id)
	if err != nil {
		t.Fatalf("get product %s: %v", id, err)
	}
	return p.Stock
}
