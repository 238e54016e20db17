package redis

import (
	"context"
	"fmt"

	radix "github.com/mediocregopher/radix/v3"

	"github.com/example/shopbot/internal/datamodels/snapshot"
)

const snapshotKey = "shop:store:%s" // store name

type snapshotRepo struct {
	client radix.Client
}

// NewSnapshotRepository 创建 Redis 快照仓储，每个 store 一个字符串 key
func NewSnapshotRepository(client radix.Client) snapshot.Gateway {
	return &snapshotRepo{client: client}
}

func key(name string) string {
	return fmt.Sprintf(snapshotKey, name)
}

func (r *snapshotRepo) Load(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var data []byte
	mn := radix.MaybeNil{Rcv: &data}
	if err := r.client.Do(radix.Cmd(&mn, "GET", key(name))); err != nil {
		return nil, err
	}
	if mn.Nil {
		return nil, snapshot.ErrNotFound
	}
	return data, nil
}

func (r *snapshotRepo) Save(ctx context.Context, name string, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.client.Do(radix.FlatCmd(nil, "SET", key(name), payload))
}
