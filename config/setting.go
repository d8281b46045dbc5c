package config

import (
	"context"
	"errors"
	"flag"
	"strings"
	"sync/atomic"
	"time"

	"github.com/huajiao-tv/rundeckbot/backend"
	"github.com/huajiao-tv/rundeckbot/rundeck"
)

const (
	DefaultFrontPort = ":12306"
	DefaultAdminPort = ":12307"
	DefaultPrefix    = "rundeck"
	DefaultRobotName = "rundeckbot"
)

// ErrNoRundeckURL 没有配置 Rundeck 地址
var ErrNoRundeckURL = errors.New("config: rundeck url is required")

// SettingAliasStorage 别名存储
type SettingAliasStorage struct {
	// Type redis / mysql / etcd / memory
	Type        string        `json:"type" toml:"type" yaml:"type"`
	Addr        string        `json:"addr" toml:"addr" yaml:"addr"`
	Auth        string        `json:"auth" toml:"auth" yaml:"auth"`
	MaxConnNum  int           `json:"max_conn_num" toml:"max_conn_num" yaml:"max_conn_num"`
	IdleTimeout time.Duration `json:"idle_timeout" toml:"idle_timeout" yaml:"idle_timeout"`
	User        string        `json:"user" toml:"user" yaml:"user"`
	Database    string        `json:"database" toml:"database" yaml:"database"`
}

// Setting 配置
type Setting struct {
	FrontPort string `json:"front_port" toml:"front_port" yaml:"front_port"`
	AdminPort string `json:"admin_port" toml:"admin_port" yaml:"admin_port"`

	// Prefix 聊天命令前缀，例如 `rundeck run foo`
	Prefix string `json:"prefix" toml:"prefix" yaml:"prefix"`
	// RobotName 无法识别用户时以机器人名义执行 Job
	RobotName string `json:"robot_name" toml:"robot_name" yaml:"robot_name"`

	Rundeck      rundeck.Config       `json:"rundeck" toml:"rundeck" yaml:"rundeck"`
	AliasStorage *SettingAliasStorage `json:"alias_storage" toml:"alias_storage" yaml:"alias_storage"`

	// Groups 用户组，值为用户 ID 或用户名
	Groups map[string][]string `json:"groups" toml:"groups" yaml:"groups"`
}

// Options 命令行参数
type Options struct {
	ConfigFile string
	LogFile    string

	URL      string
	Token    string
	APIDebug bool

	// Command 不为空时只执行这一条命令后退出
	Command     string
	CommandUser string

	EtcdEndPoints string
	EtcdUser      string
	EtcdPassword  string
}

var (
	// Flags 启动参数
	Flags Options
	// Storage etcd 存储，未配置 etcd 时为 nil
	Storage *backend.Storage

	setting atomic.Value
)

// RemoteConf 当前生效的配置
var RemoteConf = func() *Setting {
	return setting.Load().(*Setting)
}

// UpdateConf 替换当前配置
func UpdateConf(conf *Setting) {
	setting.Store(conf)
}

// DefaultSetting 默认配置
func DefaultSetting() *Setting {
	return &Setting{
		FrontPort: DefaultFrontPort,
		AdminPort: DefaultAdminPort,
		Prefix:    DefaultPrefix,
		RobotName: DefaultRobotName,
		Rundeck: rundeck.Config{
			Timeout: rundeck.DefaultTimeout,
		},
		AliasStorage: &SettingAliasStorage{
			Type:        "redis",
			Addr:        "127.0.0.1:6379",
			MaxConnNum:  10,
			IdleTimeout: 3 * time.Second,
		},
		Groups: map[string][]string{},
	}
}

// ParseFlags 解析命令行参数
func ParseFlags(args []string) (Options, error) {
	var opts Options
	fs := flag.NewFlagSet("rundeckbot", flag.ContinueOnError)
	fs.StringVar(&opts.ConfigFile, "c", "", "config file (.toml, .yaml, .json)")
	fs.StringVar(&opts.LogFile, "log", "", "log file, stderr when empty")
	fs.StringVar(&opts.URL, "url", "", "rundeck url")
	fs.StringVar(&opts.Token, "token", "", "rundeck api token")
	fs.BoolVar(&opts.APIDebug, "api_debug", false, "log rundeck api requests and responses")
	fs.StringVar(&opts.Command, "cmd", "", "run a single command and exit")
	fs.StringVar(&opts.CommandUser, "user", "", "user running -cmd")
	fs.StringVar(&opts.EtcdEndPoints, "e", "", "etcd end points")
	fs.StringVar(&opts.EtcdUser, "u", "", "etcd user name")
	fs.StringVar(&opts.EtcdPassword, "p", "", "etcd user password")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	return opts, nil
}

// Build 合并默认配置、配置文件和命令行参数
func Build(opts Options) (*Setting, error) {
	conf := DefaultSetting()
	if opts.ConfigFile != "" {
		if err := LoadFile(opts.ConfigFile, conf); err != nil {
			return nil, err
		}
	}
	if opts.URL != "" {
		conf.Rundeck.URL = opts.URL
	}
	if opts.Token != "" {
		conf.Rundeck.Token = opts.Token
	}
	if opts.APIDebug {
		conf.Rundeck.APIDebug = true
	}
	return conf, nil
}

// Init 解析参数并加载配置，配置了 etcd 时订阅远程配置
func Init(ctx context.Context, args []string) error {
	opts, err := ParseFlags(args)
	if err != nil {
		return err
	}
	Flags = opts

	conf, err := Build(opts)
	if err != nil {
		return err
	}
	UpdateConf(conf)

	if opts.EtcdEndPoints != "" {
		s, err := backend.NewStorage(strings.Split(opts.EtcdEndPoints, ","), opts.EtcdUser, opts.EtcdPassword)
		if err != nil {
			return err
		}
		Storage = s

		// get config
		if err = GetRemoteConfig(ctx, conf); err != nil {
			return err
		}
	}

	if RemoteConf().Rundeck.URL == "" {
		return ErrNoRundeckURL
	}
	return nil
}
