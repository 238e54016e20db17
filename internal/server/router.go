package server

import (
	"errors"
	"time"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/recover"
	"go.uber.org/zap"

	"github.com/example/shopbot/internal/action"
	"github.com/example/shopbot/internal/datamodels/order"
	"github.com/example/shopbot/internal/datamodels/product"
	"github.com/example/shopbot/internal/middleware"
	"github.com/example/shopbot/internal/service"
)

// Services HTTP 层依赖的服务
type Services struct {
	Users    *service.UserService
	Products *service.ProductService
	Cart     *service.CartService
	Checkout *service.CheckoutService
	Account  *service.AccountService
	Support  *service.SupportService
	Admin    *service.AdminService
	Messages *service.Messages
	Limiter  *middleware.TokenBucket
	Logger   *zap.Logger
}

// NewApp 创建带 panic 恢复与访问日志的 iris 应用
func NewApp(log *zap.Logger) *iris.Application {
	if log == nil {
		log = zap.NewNop()
	}
	app := iris.New()
	app.Logger().SetLevel("disable")
	app.UseRouter(recover.New())
	app.UseRouter(accessLog(log))
	return app
}

func accessLog(log *zap.Logger) iris.Handler {
	return func(ctx iris.Context) {
		start := time.Now()
		ctx.Next()
		log.Debug("http request",
			zap.String("method", ctx.Method()),
			zap.String("path", ctx.Path()),
			zap.Int("status", ctx.GetStatusCode()),
			zap.Duration("latency", time.Since(start)))
	}
}

// statusOf 业务错误映射到 HTTP 状态码
func statusOf(err error) int {
	switch {
	case errors.Is(err, service.ErrForbidden):
		return iris.StatusForbidden
	case errors.Is(err, service.ErrInvalidUser),
		errors.Is(err, service.ErrEmptyMessage),
		errors.Is(err, action.ErrUnknown):
		return iris.StatusBadRequest
	case errors.Is(err, product.ErrNotFound),
		errors.Is(err, order.ErrNotFound),
		errors.Is(err, service.ErrCategoryNotFound):
		return iris.StatusNotFound
	case errors.Is(err, service.ErrOutOfStock),
		errors.Is(err, service.ErrQuantityLimit),
		errors.Is(err, product.ErrInsufficientStock),
		errors.Is(err, service.ErrEmptyCart):
		return iris.StatusConflict
	}
	return iris.StatusInternalServerError
}

func fail(ctx iris.Context, log *zap.Logger, err error) {
	code := statusOf(err)
	if code == iris.StatusInternalServerError {
		log.Error("request failed", zap.String("path", ctx.Path()), zap.Error(err))
	}
	ctx.StopWithJSON(code, iris.Map{"code": code, "msg": service.UserMessage(err), "error": err.Error()})
}

func ok(ctx iris.Context, msg string, data interface{}) {
	ctx.JSON(iris.Map{"code": 0, "msg": msg, "data": data})
}

// RegisterRoutes 注册前台 HTTP 路由
func RegisterRoutes(app *iris.Application, svc *Services) {
	log := svc.Logger
	if log == nil {
		log = zap.NewNop()
	}
	msgs := svc.Messages
	if msgs == nil {
		msgs = service.NewMessages("")
	}

	api := app.Party("/api")
	if svc.Limiter != nil {
		api.Use(middleware.RateLimitMiddleware(svc.Limiter))
	}

	// 健康检查
	api.Get("/health", func(ctx iris.Context) {
		ctx.JSON(iris.Map{
			"code": 0,
			"msg":  "ok",
		})
	})

	// ---------- 目录浏览 ----------

	api.Get("/categories", func(ctx iris.Context) {
		ok(ctx, "", svc.Products.ListCategories(ctx.Request().Context()))
	})

	api.Get("/categories/{id}/products", func(ctx iris.Context) {
		view, err := svc.Products.ListByCategory(ctx.Request().Context(), ctx.Params().Get("id"))
		if err != nil {
			fail(ctx, log, err)
			return
		}
		ok(ctx, "", view)
	})

	api.Get("/products/{id}", func(ctx iris.Context) {
		p, err := svc.Products.GetByID(ctx.Request().Context(), ctx.Params().Get("id"))
		if err != nil {
			fail(ctx, log, err)
			return
		}
		ok(ctx, "", p)
	})

	// ---------- 购物车 / 订单 ----------

	users := api.Party("/users/{uid}")

	users.Get("/cart", func(ctx iris.Context) {
		sum, err := svc.Cart.Summarize(ctx.Request().Context(), ctx.Params().Get("uid"))
		if err != nil {
			fail(ctx, log, err)
			return
		}
		ok(ctx, "", sum)
	})

	users.Post("/cart/{pid}", func(ctx iris.Context) {
		qty, err := svc.Cart.Add(ctx.Request().Context(), ctx.Params().Get("uid"), ctx.Params().Get("pid"))
		if err != nil {
			fail(ctx, log, err)
			return
		}
		ok(ctx, msgs.ProductAdded(), iris.Map{"quantity": qty})
	})

	users.Delete("/cart/{pid}", func(ctx iris.Context) {
		changed, err := svc.Cart.Remove(ctx.Request().Context(), ctx.Params().Get("uid"), ctx.Params().Get("pid"))
		if err != nil {
			fail(ctx, log, err)
			return
		}
		msg := ""
		if changed {
			msg = msgs.ProductRemoved()
		}
		ok(ctx, msg, iris.Map{"removed": changed})
	})

	users.Delete("/cart", func(ctx iris.Context) {
		if err := svc.Cart.Clear(ctx.Request().Context(), ctx.Params().Get("uid")); err != nil {
			fail(ctx, log, err)
			return
		}
		ok(ctx, msgs.CartCleared(), nil)
	})

	users.Post("/checkout", func(ctx iris.Context) {
		o, err := svc.Checkout.Checkout(ctx.Request().Context(), ctx.Params().Get("uid"))
		if err != nil {
			fail(ctx, log, err)
			return
		}
		ok(ctx, msgs.OrderCreated(o), o)
	})

	users.Post("/orders/{oid}/confirm", func(ctx iris.Context) {
		r, err := svc.Checkout.Confirm(ctx.Request().Context(), ctx.Params().Get("uid"), ctx.Params().Get("oid"))
		if err != nil {
			fail(ctx, log, err)
			return
		}
		msg := ""
		if !r.Duplicate {
			msg = msgs.PaymentConfirmed(r.Order)
		}
		ok(ctx, msg, r)
	})

	users.Get("/orders", func(ctx iris.Context) {
		list, err := svc.Account.History(ctx.Request().Context(), ctx.Params().Get("uid"))
		if err != nil {
			fail(ctx, log, err)
			return
		}
		ok(ctx, msgs.History(list), list)
	})

	users.Get("/account", func(ctx iris.Context) {
		sum, err := svc.Account.Summary(ctx.Request().Context(), ctx.Params().Get("uid"))
		if err != nil {
			fail(ctx, log, err)
			return
		}
		ok(ctx, "", sum)
	})

	users.Post("/support", func(ctx iris.Context) {
		var req struct {
			Name string `json:"name"`
			Text string `json:"text"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		ack, err := svc.Support.Forward(ctx.Request().Context(), ctx.Params().Get("uid"), req.Name, req.Text)
		if err != nil {
			fail(ctx, log, err)
			return
		}
		ok(ctx, ack, nil)
	})

	// ---------- 会话动作 ----------

	api.Post("/actions", func(ctx iris.Context) {
		var req struct {
			UserID string `json:"user_id"`
			Data   string `json:"data"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		a, err := action.Decode(req.Data)
		if err != nil {
			fail(ctx, log, err)
			return
		}
		res, err := dispatch(ctx.Request().Context(), svc, msgs, req.UserID, a)
		if err != nil {
			fail(ctx, log, err)
			return
		}
		ok(ctx, res.Text, res)
	})
}
