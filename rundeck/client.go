package rundeck

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/huajiao-tv/rundeckbot/util"
)

const (
	// MaxExecutions 默认列出的执行记录条数
	MaxExecutions = 10
	// MaxOutput 默认输出的日志行数
	MaxOutput = 10

	// outputSlack Rundeck 返回的行数有时比 lastlines 少 (rundeck/rundeck#1207)
	outputSlack = 2
)

// RunOption 执行 Job 时传入的参数，保持用户输入的顺序
type RunOption struct {
	Name  string
	Value string
}

// Client Rundeck API 客户端
// projects 和 jobs 在 Client 生命周期内缓存，每条命令新建一个，不要跨 goroutine 共享
type Client struct {
	fetcher Fetcher

	projects []Project
	jobs     []*JobDefinition
}

// NewClient 使用 HTTP 连接 Rundeck
func NewClient(conf Config) *Client {
	return NewClientWithFetcher(NewHTTPFetcher(conf))
}

// NewClientWithFetcher 使用指定的 Fetcher
func NewClientWithFetcher(fetcher Fetcher) *Client {
	return &Client{fetcher: fetcher}
}

// get 请求或解析失败时返回空 Document
func (c *Client) get(ctx context.Context, path string, query url.Values) Document {
	doc, err := c.fetcher.Fetch(ctx, path, query)
	if err != nil || doc == nil {
		if err != nil {
			util.Log.Debug("rundeck", "Client", "fetch failed", path, err)
		}
		return Document{}
	}
	return doc
}

// ServerInfo 服务器信息，没有 success 时返回空字符串
func (c *Client) ServerInfo(ctx context.Context) string {
	doc := c.get(ctx, "/api/1/system/info", nil)
	success := doc.Payload("success")
	if success == nil {
		return ""
	}
	return str(success, "message")
}

// Projects 所有项目，按名称排序
func (c *Client) Projects(ctx context.Context) []Project {
	if c.projects != nil {
		return c.projects
	}

	projects := []Project{}
	doc := c.get(ctx, "/api/1/projects", nil)
	if list := doc.Payload("projects"); list != nil {
		for _, p := range EnsureList(list["project"]) {
			projects = append(projects, newProject(p))
		}
	}
	sort.SliceStable(projects, func(i, j int) bool {
		return projects[i].Name < projects[j].Name
	})

	c.projects = projects
	return projects
}

// Jobs 所有项目下的 Job，按 (project, name) 排序
func (c *Client) Jobs(ctx context.Context) []*JobDefinition {
	if c.jobs != nil {
		return c.jobs
	}

	jobs := []*JobDefinition{}
	for _, p := range c.Projects(ctx) {
		doc := c.get(ctx, fmt.Sprintf("/api/2/project/%s/jobs", url.PathEscape(p.Name)), nil)
		list := doc.Payload("jobs")
		if list == nil {
			continue
		}
		for _, j := range EnsureList(list["job"]) {
			job := newJob(j)
			if job.Project == "" {
				job.Project = p.Name
			}
			jobs = append(jobs, job)
		}
	}
	sort.SliceStable(jobs, func(i, j int) bool {
		if jobs[i].Project != jobs[j].Project {
			return jobs[i].Project < jobs[j].Project
		}
		return jobs[i].Name < jobs[j].Name
	})

	c.jobs = jobs
	return jobs
}

// FindJob 按项目和名称查找 Job，找不到返回 nil
func (c *Client) FindJob(ctx context.Context, project, name string) *JobDefinition {
	for _, j := range c.Jobs(ctx) {
		if j.Project == project && j.Name == name {
			return j
		}
	}
	return nil
}

// Definition 完整的 Job 定义，包含参数说明，找不到返回 nil
func (c *Client) Definition(ctx context.Context, project, name string) *JobDefinition {
	job := c.FindJob(ctx, project, name)
	if job == nil {
		return nil
	}
	doc := c.get(ctx, "/api/1/job/"+url.PathEscape(job.ID), nil)
	def := doc.Payload("job")
	if def == nil {
		return nil
	}
	return newDefinition(def)
}

// Execution 获取某次执行，不存在时返回 nil
func (c *Client) Execution(ctx context.Context, id string) *Execution {
	doc := c.get(ctx, "/api/1/execution/"+url.PathEscape(id), nil)
	list := doc.Payload("executions")
	if list == nil || integer(list, "count") != 1 {
		return nil
	}
	e := firstRecord(list["execution"])
	if e == nil {
		return nil
	}
	return newExecution(e)
}

// Executions 所有项目最近 max 次执行，按 id 升序，max <= 0 时使用 MaxExecutions
func (c *Client) Executions(ctx context.Context, max int) []*Execution {
	return c.listExecutions(ctx, "/api/5/executions", max)
}

// Running 正在执行的记录，规则同 Executions
func (c *Client) Running(ctx context.Context, max int) []*Execution {
	return c.listExecutions(ctx, "/api/5/executions/running", max)
}

func (c *Client) listExecutions(ctx context.Context, path string, max int) []*Execution {
	if max <= 0 {
		max = MaxExecutions
	}

	all := []*Execution{}
	for _, p := range c.Projects(ctx) {
		query := url.Values{}
		query.Set("project", p.Name)
		query.Set("max", strconv.Itoa(max))
		doc := c.get(ctx, path, query)
		list := doc.Payload("executions")
		if list == nil {
			continue
		}
		for _, e := range EnsureList(list["execution"]) {
			all = append(all, newExecution(e))
		}
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].number() < all[j].number()
	})

	if len(all) > max {
		all = all[len(all)-max:]
	}
	return all
}

// RunJob 以 user 身份执行 Job，服务端拒绝时 Status 为错误码
// Job 不存在或返回内容无法识别时返回 nil
func (c *Client) RunJob(ctx context.Context, project, name string, options []RunOption, user string) *Execution {
	job := c.FindJob(ctx, project, name)
	if job == nil {
		return nil
	}

	query := url.Values{}
	if user != "" {
		query.Set("asUser", user)
	}
	if len(options) > 0 {
		query.Set("argString", ArgString(options))
	}

	doc := c.get(ctx, "/api/5/job/"+url.PathEscape(job.ID)+"/run", query)
	if list := doc.Payload("executions"); list != nil {
		if e := firstRecord(list["execution"]); e != nil {
			return newExecution(e)
		}
	}
	if apiErr := doc.Payload("error"); apiErr != nil {
		return &Execution{
			Status:  str(apiErr, "code"),
			Message: str(apiErr, "message"),
		}
	}
	return nil
}

// ArgString 将参数拼成 `-key value` 形式
func ArgString(options []RunOption) string {
	args := make([]string, 0, len(options))
	for _, o := range options {
		args = append(args, fmt.Sprintf("-%s %s", o.Name, o.Value))
	}
	return strings.Join(args, " ")
}

// Output 执行的最后 maxLines 行日志，maxLines <= 0 时读取全部
// 服务端错误放在 ErrorCode/ErrorMessage，什么都没返回时为 nil
func (c *Client) Output(ctx context.Context, id string, maxLines int) *Output {
	query := url.Values{}
	if maxLines > 0 {
		query.Set("lastlines", strconv.Itoa(maxLines+outputSlack))
	}

	doc := c.get(ctx, "/api/5/execution/"+url.PathEscape(id)+"/output", query)
	if output := doc.Payload("output"); output != nil {
		o := newOutput(output)
		if o.ID == "" {
			o.ID = id
		}
		return o
	}
	if apiErr := doc.Payload("error"); apiErr != nil {
		return &Output{
			ID:           id,
			ErrorCode:    str(apiErr, "code"),
			ErrorMessage: str(apiErr, "message"),
		}
	}
	return nil
}
