package backend

import (
	"context"
	"strings"
	"time"

	v3 "go.etcd.io/etcd/clientv3"
)

const (
	DialTimeout  = 5 * time.Second
	ReadTimeout  = 5 * time.Second
	WriteTimeout = 5 * time.Second

	// RetryTimes etcd 请求失败重试次数
	RetryTimes = 3
)

// Storage etcd 存储，读写带超时和重试
type Storage struct {
	*v3.Client
}

// NewStorage 连接 etcd
func NewStorage(endPoints []string, user, password string) (*Storage, error) {
	c, err := v3.New(v3.Config{
		Endpoints:   endPoints,
		DialTimeout: DialTimeout,
		Username:    user,
		Password:    password,
	})
	if err != nil {
		return nil, err
	}
	return &Storage{c}, nil
}

func (s *Storage) Put(ctx context.Context, key, value string, opts ...v3.OpOption) (resp *v3.PutResponse, err error) {
	for i := 0; i < RetryTimes; i++ {
		ctx, cancel := context.WithTimeout(ctx, WriteTimeout)
		resp, err = s.Client.Put(ctx, key, value, opts...)
		cancel()
		if err == nil || ctx.Err() == context.Canceled {
			return
		}
	}
	return
}

func (s *Storage) Get(ctx context.Context, key string, opts ...v3.OpOption) (resp *v3.GetResponse, err error) {
	for i := 0; i < RetryTimes; i++ {
		ctx, cancel := context.WithTimeout(ctx, ReadTimeout)
		resp, err = s.Client.Get(ctx, key, opts...)
		cancel()
		if err == nil || ctx.Err() == context.Canceled {
			return
		}
	}
	return
}

func (s *Storage) Delete(ctx context.Context, key string, opts ...v3.OpOption) (resp *v3.DeleteResponse, err error) {
	for i := 0; i < RetryTimes; i++ {
		ctx, cancel := context.WithTimeout(ctx, WriteTimeout)
		resp, err = s.Client.Delete(ctx, key, opts...)
		cancel()
		if err == nil || ctx.Err() == context.Canceled {
			return
		}
	}
	return
}

// Keys 列出 prefix 下所有 key，返回去掉 prefix 后的部分
func (s *Storage) Keys(ctx context.Context, prefix string) ([]string, error) {
	resp, err := s.Get(ctx, prefix, v3.WithPrefix(), v3.WithKeysOnly())
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(resp.Kvs))
	for _, kv := range resp.Kvs {
		keys = append(keys, strings.TrimPrefix(string(kv.Key), prefix))
	}
	return keys, nil
}
