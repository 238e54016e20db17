package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/example/shopbot/internal/bootstrap"
	"github.com/example/shopbot/internal/config"
	"github.com/example/shopbot/internal/datamodels/snapshot"
	"github.com/example/shopbot/internal/seed"
)

func main() {
	configDir := flag.String("config", ".", "directory containing config.yaml")
	backend := flag.String("backend", "", "store backend (file / mysql / redis), defaults to store.backend")
	force := flag.Bool("force", false, "overwrite an existing catalog")
	flag.Parse()

	cfg, err := config.Load(*configDir)
	if err != nil {
		fmt.Printf("❌ 加载配置失败: %v\n", err)
		os.Exit(1)
	}
	if *backend == "" {
		*backend = cfg.Store.Backend
	}

	gw, closer, err := bootstrap.OpenGateway(cfg, *backend)
	if err != nil {
		fmt.Printf("❌ 打开存储失败: %v\n", err)
		os.Exit(1)
	}
	defer closer()

	if err := run(context.Background(), gw, *force); err != nil {
		fmt.Printf("❌ 写入默认数据失败: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, gw snapshot.Gateway, force bool) error {
	_, err := gw.Load(ctx, snapshot.Products)
	switch {
	case err == nil && !force:
		fmt.Println("⏭️  商品目录已存在，跳过（使用 -force 覆盖）")
		return nil
	case err != nil && !errors.Is(err, snapshot.ErrNotFound):
		return err
	}

	stores := bootstrap.NewStores()
	seed.Apply(stores.Catalog, true)
	all := stores.Snapshotters()

	fmt.Println("🔄 写入默认目录...")
	for _, name := range snapshot.Names {
		switch name {
		case snapshot.Products, snapshot.Categories:
		default:
			// 用户 / 订单 / 统计只在不存在时初始化为空
			if _, err := gw.Load(ctx, name); err == nil {
				fmt.Printf("   %s: 已存在，保留\n", name)
				continue
			} else if !errors.Is(err, snapshot.ErrNotFound) {
				return err
			}
		}
		data, err := all[name].MarshalSnapshot()
		if err != nil {
			return fmt.Errorf("encode %s: %w", name, err)
		}
		if err := gw.Save(ctx, name, data); err != nil {
			return fmt.Errorf("save %s: %w", name, err)
		}
		fmt.Printf("   %s: ✅\n", name)
	}
	fmt.Printf("✅ 完成：%d 个分类，%d 个商品\n", len(seed.Categories()), len(seed.Products()))
	return nil
}
