package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/example/shopbot/internal/datamodels/snapshot"
)

type snapshotRepo struct {
	dir string
	mu  sync.Mutex // 串行化同一进程内的写入
}

// NewSnapshotRepository 基于目录的快照仓储，每个 store 一个 <name>.json
func NewSnapshotRepository(dir string) (snapshot.Gateway, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir %s: %w", dir, err)
	}
	return &snapshotRepo{dir: dir}, nil
}

func (r *snapshotRepo) path(name string) string {
	return filepath.Join(r.dir, name+".json")
}

func (r *snapshotRepo) Load(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(r.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, snapshot.ErrNotFound
	}
	return data, err
}

// Save 先写临时文件再 rename，避免写到一半时留下损坏的文件
func (r *snapshotRepo) Save(ctx context.Context, name string, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	tmp, err := os.CreateTemp(r.dir, name+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, r.path(name)); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
