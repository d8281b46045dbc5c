package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal("write config failed", err)
	}
	return path
}

func TestParseFlags(t *testing.T) {
	opts, err := ParseFlags([]string{"-url", "https://rundeck.example.org", "-token", "abc", "-api_debug", "-cmd", "rundeck jobs", "-e", "127.0.0.1:2379"})
	if err != nil {
		t.Fatal("parse failed", err)
	}
	if opts.URL != "https://rundeck.example.org" || opts.Token != "abc" || !opts.APIDebug {
		t.Fatal("rundeck flags", opts)
	}
	if opts.Command != "rundeck jobs" || opts.EtcdEndPoints != "127.0.0.1:2379" {
		t.Fatal("other flags", opts)
	}

	if _, err := ParseFlags([]string{"-nope"}); err == nil {
		t.Fatal("unknown flag should fail")
	}
}

func TestBuildTOML(t *testing.T) {
	path := writeFile(t, "bot.toml", `
front_port = ":8080"

[rundeck]
url = "https://rundeck.example.org"
token = "from-file"

[alias_storage]
type = "mysql"
addr = "127.0.0.1:3306"
user = "bot"
database = "rundeckbot"

[groups]
rundeck_users = ["alice", "U123"]
`)
	conf, err := Build(Options{ConfigFile: path, Token: "from-flag"})
	if err != nil {
		t.Fatal("build failed", err)
	}
	if conf.FrontPort != ":8080" || conf.AdminPort != DefaultAdminPort {
		t.Fatal("ports", conf.FrontPort, conf.AdminPort)
	}
	if conf.Rundeck.URL != "https://rundeck.example.org" || conf.Rundeck.Token != "from-flag" {
		t.Fatal("flags should win over the file", conf.Rundeck)
	}
	if conf.AliasStorage.Type != "mysql" || conf.AliasStorage.Database != "rundeckbot" {
		t.Fatal("alias storage", conf.AliasStorage)
	}
	if len(conf.Groups["rundeck_users"]) != 2 {
		t.Fatal("groups", conf.Groups)
	}
}

func TestBuildYAML(t *testing.T) {
	path := writeFile(t, "bot.yaml", `
prefix: deploy
rundeck:
  url: https://rundeck.example.org
  api_debug: true
alias_storage:
  type: redis
  addr: 10.0.0.1:6379
  idle_timeout: 5s
`)
	conf, err := Build(Options{ConfigFile: path})
	if err != nil {
		t.Fatal("build failed", err)
	}
	if conf.Prefix != "deploy" || !conf.Rundeck.APIDebug {
		t.Fatal("yaml values", conf)
	}
	if conf.AliasStorage.Addr != "10.0.0.1:6379" || conf.AliasStorage.IdleTimeout != 5*time.Second {
		t.Fatal("alias storage", conf.AliasStorage)
	}
}

func TestBuildUnsupportedFile(t *testing.T) {
	path := writeFile(t, "bot.ini", "url=x")
	if _, err := Build(Options{ConfigFile: path}); err == nil {
		t.Fatal("ini should be rejected")
	}
	if _, err := Build(Options{ConfigFile: filepath.Join(t.TempDir(), "missing.toml")}); err == nil {
		t.Fatal("missing file should fail")
	}
}

func TestInitRequiresURL(t *testing.T) {
	if err := Init(context.Background(), []string{"-token", "abc"}); err != ErrNoRundeckURL {
		t.Fatal("expected ErrNoRundeckURL", err)
	}
	if err := Init(context.Background(), []string{"-url", "https://rundeck.example.org"}); err != nil {
		t.Fatal("init failed", err)
	}
	if RemoteConf().Rundeck.URL != "https://rundeck.example.org" {
		t.Fatal("conf not stored", RemoteConf().Rundeck)
	}
}

func TestOverlay(t *testing.T) {
	base := DefaultSetting()
	base.Rundeck.URL = "https://rundeck.example.org"
	base.Rundeck.Token = "old"
	base.Groups["rundeck_users"] = []string{"alice"}

	conf, err := overlay(base, []byte(`{"rundeck": {"url": "https://rundeck.example.org", "token": "new"}, "groups": {"ops": ["bob"]}}`))
	if err != nil {
		t.Fatal("overlay failed", err)
	}
	if conf.Rundeck.Token != "new" || base.Rundeck.Token != "old" {
		t.Fatal("token rotation", conf.Rundeck.Token, base.Rundeck.Token)
	}
	if len(conf.Groups) != 2 || len(base.Groups) != 1 {
		t.Fatal("base groups must not change", conf.Groups, base.Groups)
	}
	if conf.AliasStorage == base.AliasStorage {
		t.Fatal("alias storage should be copied")
	}

	if _, err := overlay(base, []byte("{")); err == nil {
		t.Fatal("invalid json should fail")
	}
}
