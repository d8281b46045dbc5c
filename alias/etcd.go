package alias

import (
	"context"
	"fmt"

	"github.com/huajiao-tv/rundeckbot/backend"
	"github.com/huajiao-tv/rundeckbot/logic"
)

// EtcdStore 别名以 json 存在 /rundeckbot/aliases/<id>
type EtcdStore struct {
	storage *backend.Storage
}

func NewEtcdStore(storage *backend.Storage) *EtcdStore {
	return &EtcdStore{storage: storage}
}

func (s *EtcdStore) Get(ctx context.Context, id string) (logic.Alias, error) {
	a := logic.Alias{ID: id}
	resp, err := s.storage.Get(ctx, fmt.Sprintf(logic.AliasKey, id))
	if err != nil {
		return a, err
	}
	if len(resp.Kvs) == 0 {
		return a, nil
	}
	if err := a.Parse(resp.Kvs[0].Value); err != nil {
		return a, err
	}
	a.ID = id
	return a, nil
}

func (s *EtcdStore) Set(ctx context.Context, a logic.Alias) error {
	v, err := a.ToString()
	if err != nil {
		return err
	}
	_, err = s.storage.Put(ctx, fmt.Sprintf(logic.AliasKey, a.ID), v)
	return err
}

func (s *EtcdStore) Delete(ctx context.Context, id string) error {
	_, err := s.storage.Delete(ctx, fmt.Sprintf(logic.AliasKey, id))
	return err
}

func (s *EtcdStore) IDs(ctx context.Context) ([]string, error) {
	return s.storage.Keys(ctx, logic.AliasPrefix+"/")
}
