package persist

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/example/shopbot/internal/datamodels/snapshot"
)

// Snapshotter 一个 store 的整体序列化能力
type Snapshotter interface {
	MarshalSnapshot() ([]byte, error)
	UnmarshalSnapshot(data []byte) error
}

// Options 写回参数
type Options struct {
	CheckpointInterval time.Duration
	MaxRetries         int
	RetryBackoff       time.Duration
	// OnSaveError 保存最终失败时回调（用于监控计数）
	OnSaveError func(name string, err error)
}

// Persister 内存 store 的写回器：
// 业务只调用 MarkDirty，后台协程负责序列化与保存；
// 失败按指数退避重试，仍失败则记录日志并保留 dirty 标记，等待下一次快照。
// 内存状态始终是进程内的唯一事实来源，持久化失败不会回滚内存。
type Persister struct {
	gw   snapshot.Gateway
	log  *zap.Logger
	opts Options

	stores map[string]Snapshotter
	names  []string

	mu    sync.Mutex
	dirty map[string]bool
	wake  chan struct{}

	saveMu sync.Mutex
}

// New 创建写回器
func New(gw snapshot.Gateway, log *zap.Logger, opts Options) *Persister {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.CheckpointInterval <= 0 {
		opts.CheckpointInterval = 5 * time.Minute
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	return &Persister{
		gw:     gw,
		log:    log,
		opts:   opts,
		stores: make(map[string]Snapshotter),
		dirty:  make(map[string]bool),
		wake:   make(chan struct{}, 1),
	}
}

// Register 注册 store，需在 LoadAll / Run 之前调用
func (p *Persister) Register(name string, s Snapshotter) {
	if _, ok := p.stores[name]; !ok {
		p.names = append(p.names, name)
	}
	p.stores[name] = s
}

// LoadAll 从网关加载所有已注册 store。
// 读取或解析失败时该 store 保持空默认值并记录日志，不会中断启动。
func (p *Persister) LoadAll(ctx context.Context) error {
	for _, name := range p.names {
		if err := ctx.Err(); err != nil {
			return err
		}
		data, err := p.gw.Load(ctx, name)
		switch {
		case errors.Is(err, snapshot.ErrNotFound):
			p.log.Info("store snapshot not found, starting empty", zap.String("store", name))
			continue
		case err != nil:
			p.log.Error("load store snapshot failed, starting empty", zap.String("store", name), zap.Error(err))
			continue
		}
		if err := p.stores[name].UnmarshalSnapshot(data); err != nil {
			p.log.Error("decode store snapshot failed, starting empty", zap.String("store", name), zap.Error(err))
			_ = p.stores[name].UnmarshalSnapshot(nil)
			continue
		}
		p.log.Info("store loaded", zap.String("store", name), zap.Int("bytes", len(data)))
	}
	return nil
}

// MarkDirty 标记 store 需要保存，不阻塞调用方
func (p *Persister) MarkDirty(names ...string) {
	p.mu.Lock()
	for _, n := range names {
		if _, ok := p.stores[n]; ok {
			p.dirty[n] = true
		}
	}
	p.mu.Unlock()

	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// Dirty 返回当前待保存的 store 名（按注册顺序）
func (p *Persister) Dirty() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, n := range p.names {
		if p.dirty[n] {
			out = append(out, n)
		}
	}
	return out
}

// Run 后台循环：有 dirty 即保存，每个 CheckpointInterval 全量快照一次；ctx 取消后返回
func (p *Persister) Run(ctx context.Context) {
	ticker := time.NewTicker(p.opts.CheckpointInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.wake:
			_ = p.Flush(ctx)
		case <-ticker.C:
			if err := p.Checkpoint(ctx); err == nil {
				p.log.Info("periodic checkpoint done")
			}
		}
	}
}

// Flush 同步保存当前 dirty 的 store
func (p *Persister) Flush(ctx context.Context) error {
	p.mu.Lock()
	var names []string
	for _, n := range p.names {
		if p.dirty[n] {
			names = append(names, n)
			delete(p.dirty, n)
		}
	}
	p.mu.Unlock()
	return p.save(ctx, names)
}

// Checkpoint 全量保存所有 store（定时快照、优雅退出时调用）
func (p *Persister) Checkpoint(ctx context.Context) error {
	p.mu.Lock()
	names := append([]string(nil), p.names...)
	p.dirty = make(map[string]bool)
	p.mu.Unlock()
	return p.save(ctx, names)
}

// Close 优雅退出时的最终快照
func (p *Persister) Close(ctx context.Context) error {
	err := p.Checkpoint(ctx)
	if err != nil {
		p.log.Error("final checkpoint incomplete", zap.Error(err))
		return err
	}
	p.log.Info("final checkpoint done", zap.Strings("stores", p.names))
	return nil
}

func (p *Persister) save(ctx context.Context, names []string) error {
	p.saveMu.Lock()
	defer p.saveMu.Unlock()

	var errs []error
	for _, name := range names {
		if err := p.saveOne(ctx, name); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			// 保留 dirty，等待下一次写回或快照
			p.mu.Lock()
			p.dirty[name] = true
			p.mu.Unlock()
			p.log.Error("save store failed", zap.String("store", name), zap.Error(err))
			if p.opts.OnSaveError != nil {
				p.opts.OnSaveError(name, err)
			}
		}
	}
	return errors.Join(errs...)
}

func (p *Persister) saveOne(ctx context.Context, name string) error {
	data, err := p.stores[name].MarshalSnapshot()
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}

	backoff := p.opts.RetryBackoff
	for attempt := 0; ; attempt++ {
		err = p.gw.Save(ctx, name, data)
		if err == nil {
			return nil
		}
		if attempt >= p.opts.MaxRetries {
			return err
		}
		p.log.Warn("save store failed, retrying",
			zap.String("store", name),
			zap.Int("attempt", attempt+1),
			zap.Duration("backoff", backoff),
			zap.Error(err))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
}
