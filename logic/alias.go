package logic

import (
	"encoding/json"
	"fmt"
)

// Alias 别名，指向某个 project 下的 job
type Alias struct {
	// 别名，区分大小写
	ID string `json:"id"`

	Project string `json:"project"`
	Job     string `json:"job"`
}

// Valid project 和 job 都存在时别名才算注册过
func (a *Alias) Valid() bool {
	return a.Project != "" && a.Job != ""
}

// String 用于展示，格式为 `id = [project] - job`
func (a Alias) String() string {
	return fmt.Sprintf("%s = [%s] - %s", a.ID, a.Project, a.Job)
}

// ToString 转换成 String
func (a *Alias) ToString() (string, error) {
	v, err := json.Marshal(a)
	if err != nil {
		return "", err
	}
	return string(v), nil
}

// Parse 将 json 转换成 Alias 对象
func (a *Alias) Parse(data []byte) error {
	return json.Unmarshal(data, a)
}
