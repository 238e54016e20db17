package server

import (
	"fmt"

	"github.com/kataras/iris/v12"
	"go.uber.org/zap"
)

// CallerHeader 管理端调用方 ID
const CallerHeader = "X-Caller-ID"

// RegisterAdminRoutes 注册后台管理端的 HTTP 路由
// 端口通常是 8081，与前台服务分离；调用方 ID 必须等于配置的管理员 ID。
func RegisterAdminRoutes(app *iris.Application, svc *Services) {
	log := svc.Logger
	if log == nil {
		log = zap.NewNop()
	}
	admin := svc.Admin

	api := app.Party("/api", func(ctx iris.Context) {
		caller := ctx.GetHeader(CallerHeader)
		if !admin.IsAdmin(caller) {
			ctx.StopWithJSON(iris.StatusForbidden, iris.Map{"code": iris.StatusForbidden, "msg": "forbidden"})
			return
		}
		ctx.Values().Set("caller_id", caller)
		ctx.Next()
	})

	caller := func(ctx iris.Context) string {
		return ctx.Values().GetString("caller_id")
	}

	// 统计报表
	api.Get("/stats", func(ctx iris.Context) {
		r, err := admin.StatsReport(ctx.Request().Context(), caller(ctx))
		if err != nil {
			fail(ctx, log, err)
			return
		}
		ok(ctx, r.Text, r)
	})

	// 统计核对
	api.Get("/audit", func(ctx iris.Context) {
		r, err := admin.Audit(ctx.Request().Context(), caller(ctx))
		if err != nil {
			fail(ctx, log, err)
			return
		}
		ok(ctx, "", r)
	})

	// 运行指标
	api.Get("/monitor", func(ctx iris.Context) {
		m, err := admin.MonitorStats(ctx.Request().Context(), caller(ctx))
		if err != nil {
			fail(ctx, log, err)
			return
		}
		ok(ctx, "", m)
	})

	// 回复用户
	api.Post("/reply", func(ctx iris.Context) {
		var req struct {
			UserID string `json:"user_id"`
			Text   string `json:"text"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		if err := admin.ReplyToUser(ctx.Request().Context(), caller(ctx), req.UserID, req.Text); err != nil {
			fail(ctx, log, err)
			return
		}
		ok(ctx, "✅ Réponse envoyée!", nil)
	})

	// 广播
	api.Post("/broadcast", func(ctx iris.Context) {
		var req struct {
			Text string `json:"text"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		r, err := admin.Broadcast(ctx.Request().Context(), caller(ctx), req.Text)
		if err != nil {
			fail(ctx, log, err)
			return
		}
		ok(ctx, fmt.Sprintf("✅ Message envoyé à %d utilisateurs", r.Sent), r)
	})
}
