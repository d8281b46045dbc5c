package command

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/huajiao-tv/rundeckbot/alias"
	"github.com/huajiao-tv/rundeckbot/dispatch"
	"github.com/huajiao-tv/rundeckbot/logic"
	"github.com/huajiao-tv/rundeckbot/rundeck"
	"github.com/huajiao-tv/rundeckbot/util"
)

// Responder 回复通道
type Responder = dispatch.Responder

// ResponderFunc 函数形式的 Responder
type ResponderFunc = dispatch.ResponderFunc

// Request 一条聊天消息
type Request struct {
	Text string `json:"text"`
	User User   `json:"user"`
}

// Handler 把聊天命令转换成别名 / Rundeck 调用
type Handler struct {
	Registry   *alias.Registry
	Authorizer Authorizer
	// NewClient 每条命令新建一个 Client，缓存不跨请求
	NewClient func() *rundeck.Client
	Clock     util.Clock
	RobotName string

	router *Router
}

func NewHandler(registry *alias.Registry, authorizer Authorizer, newClient func() *rundeck.Client, prefix, robotName string) *Handler {
	return &Handler{
		Registry:   registry,
		Authorizer: authorizer,
		NewClient:  newClient,
		Clock:      util.RealClock,
		RobotName:  robotName,
		router:     NewRouter(prefix),
	}
}

// Handle 执行一条命令，回复通过 out 发出；run 带 report 时阻塞到执行结束
func (h *Handler) Handle(ctx context.Context, req *Request, out Responder) {
	requestID := uuid.New().String()
	cmd, err := h.router.Parse(req.Text)
	if err != nil {
		util.Log.Debug("Handler", requestID, "parse failed", req.Text, err)
		out.Reply(logic.MsgUnknownCommand)
		return
	}
	util.Log.Trace("Handler", requestID, cmd.Route.Name, req.User.ID, req.User.Name, req.Text)

	switch cmd.Route.Name {
	case "help":
		out.Reply(h.router.Help())
	case "info":
		h.info(ctx, out)
	case "projects":
		h.projects(ctx, out)
	case "jobs":
		h.jobs(ctx, out)
	case "executions":
		h.executions(ctx, cmd, out, false)
	case "running":
		h.executions(ctx, cmd, out, true)
	case "output":
		h.output(ctx, cmd, out)
	case "aliases":
		h.aliases(ctx, out)
	case "alias_register":
		h.aliasRegister(ctx, cmd, out)
	case "alias_forget":
		h.aliasForget(ctx, cmd, out)
	case "run":
		h.run(ctx, req.User, cmd, out)
	case "options":
		h.options(ctx, cmd, out)
	}
}

func (h *Handler) info(ctx context.Context, out Responder) {
	info := h.NewClient().ServerInfo(ctx)
	if info == "" {
		out.Reply(logic.MsgServerUnavailable)
		return
	}
	text := []string{info}
	if users := h.Authorizer.Members(logic.RunnersGroup); len(users) > 0 {
		text = append(text, logic.MsgUsersAllowed+strings.Join(users, ","))
	} else {
		text = append(text, logic.MsgNoUsers)
	}
	out.Reply(strings.Join(text, "\n"))
}

func (h *Handler) projects(ctx context.Context, out Responder) {
	projects := h.NewClient().Projects(ctx)
	if len(projects) == 0 {
		out.Reply(logic.MsgProjectsNone)
		return
	}
	text := make([]string, 0, len(projects))
	for _, p := range projects {
		text = append(text, p.String())
	}
	out.Reply(strings.Join(text, "\n"))
}

func (h *Handler) jobs(ctx context.Context, out Responder) {
	jobs := h.NewClient().Jobs(ctx)
	if len(jobs) == 0 {
		out.Reply(logic.MsgJobsNone)
		return
	}

	text := make([]string, 0, len(jobs))
	for _, j := range jobs {
		line := ""
		// 有多个别名时任取一个
		name, err := h.Registry.Reverse(ctx, j.Project, j.Name)
		switch {
		case err == nil:
			line = name + " = "
		case !errors.Is(err, alias.ErrAliasNotFound):
			util.Log.Error("Handler", "reverse alias failed", j.Project, j.Name, err)
		}
		text = append(text, line+j.String())
	}
	out.Reply(strings.Join(text, "\n"))
}

func (h *Handler) executions(ctx context.Context, cmd *Command, out Responder, running bool) {
	limit := rundeck.MaxExecutions
	if n, err := strconv.Atoi(cmd.Match(0)); err == nil && n > 0 {
		limit = n
	}

	client := h.NewClient()
	var executions []*rundeck.Execution
	if running {
		executions = client.Running(ctx, limit)
	} else {
		executions = client.Executions(ctx, limit)
	}
	if len(executions) == 0 {
		out.Reply(logic.MsgExecutionsNone)
		return
	}
	text := make([]string, 0, len(executions))
	for _, e := range executions {
		text = append(text, e.String())
	}
	out.Reply(strings.Join(text, "\n"))
}

func (h *Handler) output(ctx context.Context, cmd *Command, out Responder) {
	id := cmd.Match(0)
	limit := rundeck.MaxOutput
	if n, err := strconv.Atoi(cmd.Match(1)); err == nil && n > 0 {
		limit = n
	}

	output := h.NewClient().Output(ctx, id, limit)
	switch {
	case output == nil:
		out.Reply(fmt.Sprintf(logic.MsgOutputUnavailable, id))
	case output.NotFound():
		out.Reply(logic.MsgExecutionNotFound)
	default:
		out.Reply(output.Format())
	}
}

func (h *Handler) aliases(ctx context.Context, out Responder) {
	all, err := h.Registry.All(ctx)
	if err != nil {
		util.Log.Error("Handler", "list aliases failed", err)
		out.Reply(logic.MsgAliasUnavailable)
		return
	}
	if len(all) == 0 {
		out.Reply(logic.MsgAliasNone)
		return
	}
	text := []string{logic.MsgAliasList}
	for _, a := range all {
		text = append(text, " "+a.String())
	}
	out.Reply(strings.Join(text, "\n"))
}

func (h *Handler) aliasRegister(ctx context.Context, cmd *Command, out Responder) {
	name := cmd.Match(0)
	if name == "" || cmd.Project == "" || cmd.Job == "" {
		out.Reply(logic.MsgAliasFormat)
		return
	}
	err := h.Registry.Register(ctx, name, cmd.Project, cmd.Job)
	switch {
	case err == nil:
		out.Reply(logic.MsgAliasRegistered)
	case errors.Is(err, alias.ErrAliasExists):
		out.Reply(logic.MsgAliasExists)
	default:
		util.Log.Error("Handler", "register alias failed", name, err)
		out.Reply(logic.MsgAliasUnavailable)
	}
}

func (h *Handler) aliasForget(ctx context.Context, cmd *Command, out Responder) {
	name := cmd.Match(0)
	if name == "" {
		out.Reply(logic.MsgAliasFormat)
		return
	}
	err := h.Registry.Forget(ctx, name)
	switch {
	case err == nil:
		out.Reply(logic.MsgAliasForgotten)
	case errors.Is(err, alias.ErrAliasNotFound):
		out.Reply(logic.MsgAliasNotExists)
	default:
		util.Log.Error("Handler", "forget alias failed", name, err)
		out.Reply(logic.MsgAliasUnavailable)
	}
}

// resolve 显式的 --project/--job 优先于别名
func (h *Handler) resolve(ctx context.Context, cmd *Command) (project, job string, ok bool) {
	if cmd.Project != "" && cmd.Job != "" {
		return cmd.Project, cmd.Job, true
	}
	name := cmd.Match(0)
	if name == "" {
		return "", "", false
	}
	a, err := h.Registry.Forward(ctx, name)
	if err != nil {
		if !errors.Is(err, alias.ErrAliasNotFound) {
			util.Log.Error("Handler", "resolve alias failed", name, err)
		}
		return "", "", false
	}
	return a.Project, a.Job, true
}

func (h *Handler) run(ctx context.Context, user User, cmd *Command, out Responder) {
	if !h.Authorizer.IsMember(user, logic.RunnersGroup) {
		out.Reply(logic.MsgRunUnauthorized)
		return
	}

	project, job, ok := h.resolve(ctx, cmd)
	if !ok {
		out.Reply(logic.MsgJobNotFound)
		return
	}

	runAs := user.Name
	if runAs == "" {
		runAs = user.ID
	}
	if runAs == "" {
		runAs = h.RobotName
	}

	client := h.NewClient()
	execution := client.RunJob(ctx, project, job, ParseOptions(cmd.Options), runAs)
	if execution == nil {
		out.Reply(logic.MsgJobNotFound)
		return
	}

	state := dispatch.NewOrchestrator(client, out, h.Clock).Run(ctx, execution, cmd.Report)
	util.Log.Trace("Handler", "run", project, job, runAs, execution.ID, state)
}

func (h *Handler) options(ctx context.Context, cmd *Command, out Responder) {
	project, job, ok := h.resolve(ctx, cmd)
	if !ok {
		out.Reply(logic.MsgJobNotFound)
		return
	}
	definition := h.NewClient().Definition(ctx, project, job)
	if definition == nil {
		out.Reply(logic.MsgJobNotFound)
		return
	}
	out.Reply(fmt.Sprintf("[%s] - %s\n", project, job) + definition.FormatOptions())
}

// ParseOptions 解析 `k=v|k2=v2`，没有 = 的片段忽略，重复的 key 以后出现的为准
func ParseOptions(s string) []rundeck.RunOption {
	var options []rundeck.RunOption
	index := make(map[string]int)
	for _, pair := range strings.Split(s, "|") {
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) != 2 {
			continue
		}
		if i, ok := index[kv[0]]; ok {
			options[i].Value = kv[1]
			continue
		}
		index[kv[0]] = len(options)
		options = append(options, rundeck.RunOption{Name: kv[0], Value: kv[1]})
	}
	return options
}
