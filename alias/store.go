package alias

import (
	"context"
	"errors"
	"fmt"

	"github.com/huajiao-tv/rundeckbot/config"
	"github.com/huajiao-tv/rundeckbot/logic"
)

// ErrUnknownStorage 不支持的存储类型
var ErrUnknownStorage = errors.New("alias: unknown storage type")

// Store 别名的 key/value 存储，Get 不存在时返回零值 Alias 和 nil
type Store interface {
	Get(ctx context.Context, id string) (logic.Alias, error)
	Set(ctx context.Context, a logic.Alias) error
	Delete(ctx context.Context, id string) error
	IDs(ctx context.Context) ([]string, error)
}

// NewStore 按配置创建存储
func NewStore(ctx context.Context, conf *config.SettingAliasStorage) (Store, error) {
	if conf == nil {
		return NewMemoryStore(), nil
	}
	switch conf.Type {
	case "", "redis":
		return NewRedisStore(conf.Addr, conf.Auth, conf.MaxConnNum, conf.IdleTimeout)
	case "mysql":
		return NewMySQLStore(ctx, conf.Addr, conf.User, conf.Auth, conf.Database, conf.MaxConnNum)
	case "etcd":
		if config.Storage == nil {
			return nil, fmt.Errorf("alias: etcd storage needs -e: %w", ErrUnknownStorage)
		}
		return NewEtcdStore(config.Storage), nil
	case "memory":
		return NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownStorage, conf.Type)
}
