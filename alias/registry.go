package alias

import (
	"context"
	"errors"

	"github.com/huajiao-tv/rundeckbot/logic"
)

var (
	ErrAliasExists   = errors.New("alias: already exists")
	ErrAliasNotFound = errors.New("alias: not found")
)

// Registry 别名注册表
//
// 所有操作都是对 Store 的读-改-写，没有加锁：两个并发的 Register
// 可能都看到别名不存在，后写的覆盖先写的。这是已知限制。
type Registry struct {
	store Store
}

func NewRegistry(store Store) *Registry {
	return &Registry{store: store}
}

// Register 注册别名，已存在时返回 ErrAliasExists
func (r *Registry) Register(ctx context.Context, id, project, job string) error {
	existing, err := r.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if existing.Valid() {
		return ErrAliasExists
	}
	return r.store.Set(ctx, logic.Alias{ID: id, Project: project, Job: job})
}

// Forget 删除别名，不存在时返回 ErrAliasNotFound
func (r *Registry) Forget(ctx context.Context, id string) error {
	existing, err := r.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if !existing.Valid() {
		return ErrAliasNotFound
	}
	return r.store.Delete(ctx, id)
}

// Forward 按别名查找
func (r *Registry) Forward(ctx context.Context, id string) (logic.Alias, error) {
	a, err := r.store.Get(ctx, id)
	if err != nil {
		return a, err
	}
	if !a.Valid() {
		return a, ErrAliasNotFound
	}
	return a, nil
}

// Reverse 查找指向 project/job 的别名，有多个时返回任意一个
func (r *Registry) Reverse(ctx context.Context, project, job string) (string, error) {
	all, err := r.All(ctx)
	if err != nil {
		return "", err
	}
	for _, a := range all {
		if a.Project == project && a.Job == job {
			return a.ID, nil
		}
	}
	return "", ErrAliasNotFound
}

// All 返回所有别名，顺序不保证
func (r *Registry) All(ctx context.Context) ([]logic.Alias, error) {
	ids, err := r.store.IDs(ctx)
	if err != nil {
		return nil, err
	}
	aliases := make([]logic.Alias, 0, len(ids))
	for _, id := range ids {
		a, err := r.store.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		// 列出和读取之间被删掉
		if !a.Valid() {
			continue
		}
		aliases = append(aliases, a)
	}
	return aliases, nil
}
