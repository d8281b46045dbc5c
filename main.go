package main

import (
	"fmt"
	"os"

	"github.com/huajiao-tv/rundeckbot/alias"
	"github.com/huajiao-tv/rundeckbot/api"
	"github.com/huajiao-tv/rundeckbot/command"
	"github.com/huajiao-tv/rundeckbot/config"
	"github.com/huajiao-tv/rundeckbot/rundeck"
	"github.com/huajiao-tv/rundeckbot/util"
)

func init() {
	util.InitContext()
	if err := config.Init(util.Context, os.Args[1:]); err != nil {
		panic(err)
	}
	if err := util.InitLog(config.Flags.LogFile, config.RemoteConf().Rundeck.APIDebug); err != nil {
		panic(err)
	}
}

func newClient() *rundeck.Client {
	return rundeck.NewClient(config.RemoteConf().Rundeck)
}

func main() {
	defer util.Log.Sync()
	conf := config.RemoteConf()

	store, err := alias.NewStore(util.Context, conf.AliasStorage)
	if err != nil {
		if config.Flags.Command == "" {
			panic(err)
		}
		// 单条命令模式下别名不可用不影响其他命令
		util.Log.Error("alias storage unavailable, aliases are not persisted", err)
		store = alias.NewMemoryStore()
	}
	registry := alias.NewRegistry(store)
	handler := command.NewHandler(registry, command.ConfigGroups{}, newClient, conf.Prefix, conf.RobotName)

	if config.Flags.Command != "" {
		req := &command.Request{
			Text: config.Flags.Command,
			User: command.User{ID: config.Flags.CommandUser, Name: config.Flags.CommandUser},
		}
		handler.Handle(util.Context, req, command.ResponderFunc(func(msg string) {
			fmt.Println(msg)
		}))
		return
	}

	println("start rundeckbot: ", os.Getpid())

	if err := api.Serve(handler, registry); err != nil {
		util.Log.Error("serve failed", err)
	}

	println("stop rundeckbot: ", os.Getpid())
	util.Log.Sync()
	os.Exit(0)
}
