package rundeck

import (
	"strconv"
)

// 执行状态，running 之外都是终态
const (
	StatusRunning   = "running"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
	StatusAborted   = "aborted"
)

// Rundeck 以 error code 返回的错误
const (
	ErrCodeExecutionConflict = "api.error.execution.conflict"
	ErrCodeItemUnauthorized  = "api.error.item.unauthorized"
	ErrCodeOptionsInvalid    = "api.error.job.options-invalid"
	ErrCodeItemDoesNotExist  = "api.error.item.doesnotexist"
)

// Project Rundeck 项目
type Project struct {
	Name        string
	Description string
	Href        string
}

func newProject(m map[string]interface{}) Project {
	p := Project{
		Name:        str(m, "name"),
		Description: str(m, "description"),
		Href:        str(m, "href"),
	}
	if p.Href == "" {
		p.Href = str(m, "url")
	}
	return p
}

// JobOption Job 参数，执行记录中有 Name/Value，Job 定义中有 Name/Required/Description
type JobOption struct {
	Name        string
	Value       string
	Required    bool
	Description string
}

// JobDefinition Rundeck Job
type JobDefinition struct {
	ID          string
	Name        string
	Group       string
	Project     string
	Description string

	// AverageDuration 历史平均耗时（毫秒），0 表示未知
	AverageDuration int64

	Options []JobOption
}

// AverageSeconds 平均耗时的整秒数
func (j *JobDefinition) AverageSeconds() int64 {
	if j == nil {
		return 0
	}
	return j.AverageDuration / 1000
}

func newJob(m map[string]interface{}) *JobDefinition {
	job := &JobDefinition{
		ID:              str(m, "id"),
		Name:            str(m, "name"),
		Group:           str(m, "group"),
		Project:         str(m, "project"),
		Description:     str(m, "description"),
		AverageDuration: integer(m, "averageDuration"),
	}
	job.Options = newOptions(m["options"])
	return job
}

// newDefinition 解析 Job 导出格式，project 和 options 在 <context> 下
func newDefinition(m map[string]interface{}) *JobDefinition {
	job := newJob(m)
	if ctx := firstRecord(m["context"]); ctx != nil {
		job.Project = str(ctx, "project")
		job.Options = newOptions(ctx["options"])
	}
	return job
}

func newOptions(v interface{}) []JobOption {
	var options []JobOption
	for _, o := range EnsureList(v) {
		options = append(options, JobOption{
			Name:        str(o, "name"),
			Value:       str(o, "value"),
			Required:    str(o, "required") == "true",
			Description: str(o, "description"),
		})
	}
	return options
}

// Execution 一次执行的快照，提交失败时 Status 为错误码，Message 为错误信息
type Execution struct {
	ID      string
	Href    string
	Status  string
	Message string
	Project string
	User    string

	Start         string
	StartUnixtime int64
	End           string
	EndUnixtime   int64

	Job         *JobDefinition
	Description string
	ArgString   string
	AbortedBy   string

	SuccessfulNodes []string
	FailedNodes     []string
}

// Running 是否仍在执行
func (e *Execution) Running() bool {
	return e != nil && e.Status == StatusRunning
}

// AverageSeconds 对应 Job 的平均耗时，未知时为 0
func (e *Execution) AverageSeconds() int64 {
	if e == nil {
		return 0
	}
	return e.Job.AverageSeconds()
}

func (e *Execution) number() int64 {
	n, _ := strconv.ParseInt(e.ID, 10, 64)
	return n
}

func newExecution(m map[string]interface{}) *Execution {
	e := &Execution{
		ID:          str(m, "id"),
		Href:        str(m, "href"),
		Status:      str(m, "status"),
		Message:     str(m, "message"),
		Project:     str(m, "project"),
		User:        str(m, "user"),
		Description: str(m, "description"),
		ArgString:   str(m, "argstring"),
		AbortedBy:   str(m, "abortedby"),
	}
	if started := firstRecord(m["date-started"]); started != nil {
		e.StartUnixtime = integer(started, "unixtime")
		e.Start = str(started, ContentKey)
	}
	if ended := firstRecord(m["date-ended"]); ended != nil {
		e.EndUnixtime = integer(ended, "unixtime")
		e.End = str(ended, ContentKey)
	}
	if job := firstRecord(m["job"]); job != nil {
		e.Job = newJob(job)
	}
	if nodes := firstRecord(m["successfulNodes"]); nodes != nil {
		e.SuccessfulNodes = nodeNames(nodes["node"])
	}
	if nodes := firstRecord(m["failedNodes"]); nodes != nil {
		e.FailedNodes = nodeNames(nodes["node"])
	}
	return e
}

func nodeNames(v interface{}) []string {
	var names []string
	for _, n := range EnsureList(v) {
		names = append(names, str(n, "name"))
	}
	return names
}

// OutputEntry 一行执行日志
type OutputEntry struct {
	Time    string
	Content string
}

// Output 某一时刻读取的执行日志
type Output struct {
	ID           string
	Entries      []OutputEntry
	Completed    bool
	ExecDuration int64 // 毫秒

	ErrorCode    string
	ErrorMessage string
}

// NotFound 服务端返回执行不存在
func (o *Output) NotFound() bool {
	return o != nil && o.ErrorCode == ErrCodeItemDoesNotExist
}

func newOutput(m map[string]interface{}) *Output {
	o := &Output{
		ID:           str(m, "id"),
		Completed:    str(m, "completed") == "true",
		ExecDuration: integer(m, "execDuration"),
	}
	if entries := firstRecord(m["entries"]); entries != nil {
		for _, entry := range EnsureList(entries["entry"]) {
			content := str(entry, ContentKey)
			if content == "" {
				content = str(entry, "log")
			}
			o.Entries = append(o.Entries, OutputEntry{
				Time:    str(entry, "time"),
				Content: content,
			})
		}
	}
	return o
}
