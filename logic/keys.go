package logic

const (
	// KeyPrefix etcd 前缀
	KeyPrefix = "/rundeckbot"

	// AliasPrefix etcd 中别名存储的前缀
	AliasPrefix = KeyPrefix + "/aliases"
	// AliasKey etcd 中具体某个别名的 Key
	AliasKey = AliasPrefix + "/%v"

	// Read-Only by All
	GlobalConfig = KeyPrefix + "/conf/global"
)

const (
	// RedisAliasKey Redis 中别名 hash 的 Key
	RedisAliasKey = "alias:%s"
	// RedisAliasPattern 用于 KEYS 扫描所有别名
	RedisAliasPattern = "alias:*"

	// AliasProjectField 别名 hash 的 project 字段
	AliasProjectField = "project"
	// AliasJobField 别名 hash 的 job 字段
	AliasJobField = "job"
)

// RunnersGroup 允许执行 Job 的用户组
const RunnersGroup = "rundeck_users"
