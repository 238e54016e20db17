package service

import (
	"go.uber.org/zap"

	"github.com/example/shopbot/internal/datamodels/order"
	"github.com/example/shopbot/internal/datamodels/product"
	"github.com/example/shopbot/internal/datamodels/stats"
	"github.com/example/shopbot/internal/datamodels/user"
	"github.com/example/shopbot/internal/notify"
)

// Stores 业务依赖的内存 store
type Stores struct {
	Catalog product.Repository
	Users   user.Repository
	Orders  order.Repository
	Stats   stats.Repository
}

// Deps 服务层公共依赖
type Deps struct {
	Stores   Stores
	Store    Dirtier
	Notifier notify.Notifier
	Monitor  *Monitor
	Locks    *UserLocks
	Clock    Clock
	Messages *Messages
	Logger   *zap.Logger
}

type nopDirtier struct{}

func (nopDirtier) MarkDirty(...string) {}

func (d Deps) withDefaults() Deps {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Store == nil {
		d.Store = nopDirtier{}
	}
	if d.Notifier == nil {
		d.Notifier = notify.NewLogNotifier(d.Logger, "")
	}
	if d.Monitor == nil {
		d.Monitor = NewMonitor()
	}
	if d.Locks == nil {
		d.Locks = NewUserLocks()
	}
	if d.Clock == nil {
		d.Clock = SystemClock
	}
	if d.Messages == nil {
		d.Messages = NewMessages("")
	}
	return d
}
