package command

import (
	"errors"
	"io"
	"regexp"
	"strings"

	"github.com/google/shlex"
	"github.com/spf13/pflag"
)

// ErrUnknownCommand 没有匹配的命令
var ErrUnknownCommand = errors.New("command: unknown command")

// 别名 / job 名允许的字符
const namePattern = `([a-zA-Z0-9+.][a-zA-Z0-9\-+.]*)`

// Route 一条命令
type Route struct {
	Name    string
	Pattern *regexp.Regexp
	Usage   string
	Help    string
}

// Command 解析后的命令
type Command struct {
	Route *Route
	// Matches 正则中的分组，没有匹配到的为空字符串
	Matches []string

	Project string
	Job     string
	Options string
	Report  string
}

// Match 第 i 个分组
func (c *Command) Match(i int) string {
	if i < len(c.Matches) {
		return c.Matches[i]
	}
	return ""
}

func route(name, pattern, usage, help string) *Route {
	return &Route{
		Name:    name,
		Pattern: regexp.MustCompile(`(?i)^` + pattern + `$`),
		Usage:   usage,
		Help:    help,
	}
}

// Routes 按顺序匹配，running 必须在 run 之前
var Routes = []*Route{
	route("help", `help`, "help", "Show this help"),
	route("info", `info`, "info", "Rundeck server info and users allowed to run jobs"),
	route("projects", `projects?`, "projects", "List projects"),
	route("jobs", `jobs?`, "jobs", "List jobs, prefixed with their alias"),
	route("executions", `exec(?:utions)?(?: (\d+))?`, "executions [N]", "List the last N executions"),
	route("running", `running(?: (\d+))?`, "running [N]", "List the last N running executions"),
	route("output", `output (\d+)(?: (\d+))?`, "output <id> [N]", "Show the last N lines of an execution's output"),
	route("aliases", `alias(?:es)?`, "aliases", "List aliases"),
	route("alias_register", `alias register(?: `+namePattern+`)?`, "alias register <name> --project P --job J", "Register an alias for a job"),
	route("alias_forget", `alias forget(?: `+namePattern+`)?`, "alias forget <name>", "Remove an alias"),
	route("run", `run(?: `+namePattern+`)?`, "run [<name>] [--project P --job J] [--options k=v|k2=v2] [--report N|all|full]", "Run a job by alias or project and job, optionally reporting its output"),
	route("options", `options(?: `+namePattern+`)?`, "options [<name>] [--project P --job J]", "Show the options of a job"),
}

// Router 去掉命令前缀，解析关键字参数并匹配 Routes
type Router struct {
	Prefix string
	Routes []*Route
}

func NewRouter(prefix string) *Router {
	return &Router{Prefix: prefix, Routes: Routes}
}

// split 按 shell 规则拆分，引号内的空格不拆开；引号不成对时按空白拆分
func split(text string) []string {
	fields, err := shlex.Split(text)
	if err != nil {
		return strings.Fields(text)
	}
	return fields
}

// Parse 解析一行聊天文本
func (r *Router) Parse(text string) (*Command, error) {
	fields := split(text)
	if len(fields) > 0 && r.Prefix != "" && strings.EqualFold(fields[0], r.Prefix) {
		fields = fields[1:]
	}

	cmd := &Command{}
	fs := pflag.NewFlagSet("command", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVarP(&cmd.Project, "project", "p", "", "project name")
	fs.StringVarP(&cmd.Job, "job", "j", "", "job name")
	fs.StringVarP(&cmd.Options, "options", "o", "", "job options, k=v|k2=v2")
	fs.StringVarP(&cmd.Report, "report", "r", "", "report output lines, N|all|full")
	if err := fs.Parse(fields); err != nil {
		return nil, err
	}

	rest := strings.Join(fs.Args(), " ")
	for _, rt := range r.Routes {
		m := rt.Pattern.FindStringSubmatch(rest)
		if m == nil {
			continue
		}
		cmd.Route = rt
		cmd.Matches = m[1:]
		return cmd, nil
	}
	return nil, ErrUnknownCommand
}

// Help 所有命令的说明
func (r *Router) Help() string {
	lines := make([]string, 0, len(r.Routes))
	for _, rt := range r.Routes {
		usage := rt.Usage
		if r.Prefix != "" {
			usage = r.Prefix + " " + usage
		}
		lines = append(lines, usage+" - "+rt.Help)
	}
	return strings.Join(lines, "\n")
}
