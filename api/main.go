package api

import (
	"os"
	"time"

	"github.com/huajiao-tv/rundeckbot/alias"
	"github.com/huajiao-tv/rundeckbot/command"
	"github.com/huajiao-tv/rundeckbot/config"
	"github.com/huajiao-tv/rundeckbot/util"
	"golang.org/x/sync/errgroup"
)

const (
	HttpReadTimeout  = 10 * time.Second
	HttpWriteTimeout = 10 * time.Second
)

// Serve 启动命令入口和管理接口，直到两个 listener 都关闭
func Serve(handler *command.Handler, registry *alias.Registry) error {
	l1, err := util.GraceNet.Listen("tcp", config.RemoteConf().FrontPort)
	if err != nil {
		return err
	}
	l2, err := util.GraceNet.Listen("tcp", config.RemoteConf().AdminPort)
	if err != nil {
		l1.Close()
		return err
	}

	go signalHandler(l1, l2)

	var g errgroup.Group
	g.Go(func() error {
		err := ApiServer{Handler: handler, Registry: registry}.Serve(l1)
		util.Log.Error("front serve finish err", err)
		return err
	})
	g.Go(func() error {
		err := AdminServer{Registry: registry}.Serve(l2)
		util.Log.Error("admin serve finish err", err)
		return err
	})

	err = g.Wait()
	util.Log.Error("service stopped", err)
	util.Log.Error("rundeckbot process end", os.Getpid())
	return err
}
