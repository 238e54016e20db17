package server

import (
	"context"
	"sync"
	"testing"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/httptest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/shopbot/internal/repository/memory"
	"github.com/example/shopbot/internal/seed"
	"github.com/example/shopbot/internal/service"
)

const adminID = "1000"

type recordingNotifier struct {
	mu    sync.Mutex
	users []string
	admin []string
}

func (n *recordingNotifier) NotifyUser(_ context.Context, userID, _ string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.users = append(n.users, userID)
	return nil
}

func (n *recordingNotifier) NotifyAdmin(_ context.Context, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.admin = append(n.admin, text)
	return nil
}

func newTestServices(t *testing.T) (*Services, *recordingNotifier) {
	t.Helper()
	catalog := memory.NewCatalogRepository()
	seed.Apply(catalog, false)
	notifier := &recordingNotifier{}

	d := service.Deps{
		Stores: service.Stores{
			Catalog: catalog,
			Users:   memory.NewUserRepository(),
			Orders:  memory.NewOrderRepository(),
			Stats:   memory.NewStatsRepository(),
		},
		Notifier: notifier,
		Locks:    service.NewUserLocks(),
		Messages: service.NewMessages("€"),
	}
	users := service.NewUserService(d)
	return &Services{
		Users:    users,
		Products: service.NewProductService(catalog),
		Cart:     service.NewCartService(d, users),
		Checkout: service.NewCheckoutService(d, users, service.DefaultLowStockThreshold),
		Account:  service.NewAccountService(d, users, service.DefaultHistoryLimit),
		Support:  service.NewSupportService(d, users),
		Admin:    service.NewAdminService(d, adminID, service.DefaultTopN, nil),
		Messages: d.Messages,
	}, notifier
}

func newShopApp(t *testing.T) (*iris.Application, *Services, *recordingNotifier) {
	svc, n := newTestServices(t)
	app := NewApp(nil)
	RegisterRoutes(app, svc)
	return app, svc, n
}

func TestHealth(t *testing.T) {
	app, _, _ := newShopApp(t)
	e := httptest.New(t, app)

	e.GET("/api/health").Expect().Status(httptest.StatusOK).
		JSON().Object().Value("msg").IsEqual("ok")
}

func TestCatalogRoutes(t *testing.T) {
	app, _, _ := newShopApp(t)
	e := httptest.New(t, app)

	cats := e.GET("/api/categories").Expect().Status(httptest.StatusOK).
		JSON().Object().Value("data").Array()
	cats.Length().IsEqual(4)
	cats.Value(0).Object().Value("id").IsEqual("electronics")

	products := e.GET("/api/categories/electronics/products").Expect().Status(httptest.StatusOK).
		JSON().Object().Value("data").Object().Value("products").Array()
	products.Length().IsEqual(2)
	products.Value(1).Object().Value("id").IsEqual("prod_002")

	e.GET("/api/products/prod_003").Expect().Status(httptest.StatusOK).
		JSON().Object().Value("data").Object().Value("price").IsEqual("29.99")

	e.GET("/api/products/nope").Expect().Status(httptest.StatusNotFound)
	e.GET("/api/categories/nope/products").Expect().Status(httptest.StatusNotFound)
}

func TestCartCheckoutConfirmFlow(t *testing.T) {
	app, svc, n := newShopApp(t)
	e := httptest.New(t, app)

	e.POST("/api/users/42/checkout").Expect().Status(httptest.StatusConflict).
		JSON().Object().Value("msg").IsEqual("🛒 Votre panier est vide")

	e.POST("/api/users/42/cart/prod_003").Expect().Status(httptest.StatusOK)
	e.POST("/api/users/42/cart/prod_003").Expect().Status(httptest.StatusOK).
		JSON().Object().Value("data").Object().Value("quantity").IsEqual(2)
	e.POST("/api/users/42/cart/prod_004").Expect().Status(httptest.StatusOK)
	e.DELETE("/api/users/42/cart/prod_004").Expect().Status(httptest.StatusOK).
		JSON().Object().Value("data").Object().Value("removed").IsEqual(true)

	cart := e.GET("/api/users/42/cart").Expect().Status(httptest.StatusOK).
		JSON().Object().Value("data").Object()
	cart.Value("total").IsEqual("59.98")
	cart.Value("items").IsEqual(2)

	orderID := e.POST("/api/users/42/checkout").Expect().Status(httptest.StatusOK).
		JSON().Object().Value("data").Object().Value("id").String().Raw()

	e.POST("/api/users/7/orders/{oid}/confirm", orderID).Expect().Status(httptest.StatusNotFound)

	receipt := e.POST("/api/users/42/orders/{oid}/confirm", orderID).Expect().Status(httptest.StatusOK).
		JSON().Object().Value("data").Object()
	receipt.Value("duplicate").IsEqual(false)
	receipt.Value("order").Object().Value("status").IsEqual("paid")

	e.POST("/api/users/42/orders/{oid}/confirm", orderID).Expect().Status(httptest.StatusOK).
		JSON().Object().Value("data").Object().Value("duplicate").IsEqual(true)

	e.GET("/api/users/42/orders").Expect().Status(httptest.StatusOK).
		JSON().Object().Value("data").Array().Length().IsEqual(1)
	e.GET("/api/users/42/account").Expect().Status(httptest.StatusOK).
		JSON().Object().Value("data").Object().Value("total_spent").IsEqual("59.98")

	p, err := svc.Products.GetByID(context.Background(), "prod_003")
	require.NoError(t, err)
	assert.EqualValues(t, 48, p.Stock)
	assert.Equal(t, []string{"42"}, n.users)
}

func TestCartQuantityLimit(t *testing.T) {
	app, _, _ := newShopApp(t)
	e := httptest.New(t, app)

	for i := 0; i < 8; i++ {
		e.POST("/api/users/5/cart/prod_002").Expect().Status(httptest.StatusOK)
	}
	e.POST("/api/users/5/cart/prod_002").Expect().Status(httptest.StatusConflict).
		JSON().Object().Value("msg").IsEqual("⚠️ Stock limité à 8 unités")
}

func TestActionsEndpoint(t *testing.T) {
	app, _, _ := newShopApp(t)
	e := httptest.New(t, app)

	e.POST("/api/actions").WithJSON(iris.Map{"user_id": "9", "data": "add_prod_001"}).
		Expect().Status(httptest.StatusOK).
		JSON().Object().Value("data").Object().Value("action").IsEqual("add_prod_001")

	res := e.POST("/api/actions").WithJSON(iris.Map{"user_id": "9", "data": "checkout"}).
		Expect().Status(httptest.StatusOK).JSON().Object().Value("data").Object()
	orderID := res.Value("data").Object().Value("id").String().Raw()

	e.POST("/api/actions").WithJSON(iris.Map{"user_id": "9", "data": "confirm_payment_" + orderID}).
		Expect().Status(httptest.StatusOK).
		JSON().Object().Value("data").Object().Value("data").Object().Value("duplicate").IsEqual(false)

	e.POST("/api/actions").WithJSON(iris.Map{"user_id": "9", "data": "faq"}).
		Expect().Status(httptest.StatusOK).
		JSON().Object().Value("msg").String().Contains("Questions Fréquentes")

	e.POST("/api/actions").WithJSON(iris.Map{"user_id": "9", "data": "launch_rocket"}).
		Expect().Status(httptest.StatusBadRequest)
}

func TestSupportForwarding(t *testing.T) {
	app, _, n := newShopApp(t)
	e := httptest.New(t, app)

	e.POST("/api/users/33/support").WithJSON(iris.Map{"name": "Bob", "text": "Bonjour"}).
		Expect().Status(httptest.StatusOK)
	e.POST("/api/users/33/support").WithJSON(iris.Map{"text": ""}).
		Expect().Status(httptest.StatusBadRequest)

	assert.Len(t, n.admin, 1)
}
