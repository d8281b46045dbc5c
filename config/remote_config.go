package config

import (
	"context"
	"encoding/json"
	"time"

	"github.com/huajiao-tv/rundeckbot/logic"
	"github.com/huajiao-tv/rundeckbot/util"
	pb "go.etcd.io/etcd/mvcc/mvccpb"
)

// getRemoteConfig 读取 etcd 中的全局配置，覆盖在 base 之上
func getRemoteConfig(ctx context.Context, base *Setting) error {
	resp, err := Storage.Get(ctx, logic.GlobalConfig)
	if err != nil {
		return err
	}
	if len(resp.Kvs) == 0 {
		return nil
	}
	conf, err := overlay(base, resp.Kvs[0].Value)
	if err != nil {
		return err
	}
	UpdateConf(conf)
	return nil
}

// overlay 在 base 的拷贝上解析 json，没出现的字段保持 base 的值
func overlay(base *Setting, data []byte) (*Setting, error) {
	conf := *base
	if base.AliasStorage != nil {
		storage := *base.AliasStorage
		conf.AliasStorage = &storage
	}
	conf.Groups = make(map[string][]string, len(base.Groups))
	for group, members := range base.Groups {
		conf.Groups[group] = members
	}
	if err := json.Unmarshal(data, &conf); err != nil {
		return nil, err
	}
	return &conf, nil
}

// GetRemoteConfig 读取远程配置并订阅变化
func GetRemoteConfig(ctx context.Context, base *Setting) error {
	if err := getRemoteConfig(ctx, base); err != nil {
		return err
	}

	// monitor etcd changes
	go subscribeGlobalConfig(ctx, base)

	return nil
}

func subscribeGlobalConfig(ctx context.Context, base *Setting) {
ReWatch:
	globalChan := Storage.Watch(ctx, logic.GlobalConfig)

	if err := getRemoteConfig(ctx, base); err != nil {
		util.Log.Error("subscribeConfig", "global config get failed", err)
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case globalResp := <-globalChan:
			if globalResp.Err() != nil {
				util.Log.Error("subscribeConfig", "global config watch failed", globalResp.Err())
				time.Sleep(200 * time.Millisecond)
				goto ReWatch
			}
			if len(globalResp.Events) == 0 {
				continue
			}
			evt := globalResp.Events[len(globalResp.Events)-1]
			if evt.Type != pb.PUT {
				// 远程配置删除后回到本地配置
				util.Log.Trace("subscribeConfig", "global config deleted, fall back to local config")
				UpdateConf(base)
				continue
			}
			conf, err := overlay(base, evt.Kv.Value)
			if err != nil {
				util.Log.Error("subscribeConfig", "IGNORE: invalid global config", err)
				continue
			}
			util.Log.Trace("subscribeConfig", "global config change", evt.Kv.ModRevision)
			UpdateConf(conf)
		}
	}
}
