package command

import (
	"github.com/huajiao-tv/rundeckbot/config"
)

// User 发送命令的聊天用户
type User struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Authorizer 用户组查询
type Authorizer interface {
	IsMember(user User, group string) bool
	Members(group string) []string
}

// Groups 静态用户组，成员可以是用户 ID 或用户名
type Groups map[string][]string

func (g Groups) IsMember(user User, group string) bool {
	for _, member := range g[group] {
		if member == "" {
			continue
		}
		if member == user.ID || member == user.Name {
			return true
		}
	}
	return false
}

func (g Groups) Members(group string) []string {
	return g[group]
}

// ConfigGroups 每次读取当前配置中的 groups，远程配置修改后立即生效
type ConfigGroups struct{}

func (ConfigGroups) IsMember(user User, group string) bool {
	return Groups(config.RemoteConf().Groups).IsMember(user, group)
}

func (ConfigGroups) Members(group string) []string {
	return Groups(config.RemoteConf().Groups).Members(group)
}
