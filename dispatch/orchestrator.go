package dispatch

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/huajiao-tv/rundeckbot/logic"
	"github.com/huajiao-tv/rundeckbot/rundeck"
	"github.com/huajiao-tv/rundeckbot/util"
)

const (
	// PollInterval 两次查询执行状态的间隔
	PollInterval = 10 * time.Second

	// DefaultReportLines report 参数不是数字时回报的输出行数
	DefaultReportLines = 10
)

// State 一次执行在 Orchestrator 中的状态
type State int

const (
	Submitted State = iota
	Running
	Succeeded
	Failed
	Aborted
	// Ended 离开 running 但不是已知的终态
	Ended
	ConflictRejected
	Unauthorized
	InvalidOptions
	// Unknown 提交结果无法识别，不回复
	Unknown
)

var stateNames = map[State]string{
	Submitted:        "submitted",
	Running:          "running",
	Succeeded:        "succeeded",
	Failed:           "failed",
	Aborted:          "aborted",
	Ended:            "ended",
	ConflictRejected: "conflict",
	Unauthorized:     "unauthorized",
	InvalidOptions:   "options-invalid",
	Unknown:          "unknown",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "state(" + strconv.Itoa(int(s)) + ")"
}

// Terminal 是否不会再变化
func (s State) Terminal() bool {
	return s != Submitted && s != Running
}

// ExecutionSource 轮询时读取执行状态和输出，rundeck.Client 实现了它
type ExecutionSource interface {
	Execution(ctx context.Context, id string) *rundeck.Execution
	Output(ctx context.Context, id string, maxLines int) *rundeck.Output
}

// Responder 把消息发回给聊天用户
type Responder interface {
	Reply(msg string)
}

// ResponderFunc 函数形式的 Responder
type ResponderFunc func(msg string)

func (f ResponderFunc) Reply(msg string) {
	f(msg)
}

// ReportLimit 解析 --report 参数
// 为空表示不回报；all / full 表示完整输出 (0)；无法解析或不是正数时使用 DefaultReportLines
func ReportLimit(v string) (lines int, report bool) {
	v = strings.TrimSpace(v)
	switch v {
	case "":
		return 0, false
	case "all", "full":
		return 0, true
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return DefaultReportLines, true
	}
	return n, true
}

// Orchestrator 跟踪一次提交的执行直到结束，轮询期间阻塞调用方
type Orchestrator struct {
	source    ExecutionSource
	responder Responder
	clock     util.Clock

	// PollInterval 可以在测试中修改
	PollInterval time.Duration

	state State
}

func NewOrchestrator(source ExecutionSource, responder Responder, clock util.Clock) *Orchestrator {
	if clock == nil {
		clock = util.RealClock
	}
	return &Orchestrator{
		source:       source,
		responder:    responder,
		clock:        clock,
		PollInterval: PollInterval,
		state:        Submitted,
	}
}

// State 当前状态
func (o *Orchestrator) State() State {
	return o.state
}

// Run 回复提交结果，report 不为空且执行已开始时一直轮询到执行结束
func (o *Orchestrator) Run(ctx context.Context, execution *rundeck.Execution, report string) State {
	if o.Submitted(execution) != Running {
		return o.state
	}
	if lines, ok := ReportLimit(report); ok {
		return o.Report(ctx, execution, lines)
	}
	return o.state
}

// Submitted 根据提交返回的状态回复用户
func (o *Orchestrator) Submitted(execution *rundeck.Execution) State {
	if execution == nil {
		o.state = Unknown
		return o.state
	}

	switch execution.Status {
	case rundeck.StatusRunning:
		msg := fmt.Sprintf(logic.MsgRunSuccess, execution.ID)
		if execution.Job != nil && execution.Job.AverageDuration > 0 {
			msg += fmt.Sprintf(logic.MsgRunAverage, float64(execution.Job.AverageDuration)/1000.0)
		}
		o.responder.Reply(msg)
		o.state = Running
	case rundeck.ErrCodeExecutionConflict:
		o.responder.Reply(logic.MsgRunConflict)
		o.state = ConflictRejected
	case rundeck.ErrCodeItemUnauthorized:
		o.responder.Reply(logic.MsgTokenUnauthorized)
		o.state = Unauthorized
	case rundeck.ErrCodeOptionsInvalid:
		o.responder.Reply(strings.ReplaceAll(execution.Message, "\n", ""))
		o.state = InvalidOptions
	default:
		util.Log.Error("Orchestrator", "unknown submission status", execution.ID, execution.Status)
		o.state = Unknown
	}
	return o.state
}

// Report 先等待一个平均耗时，之后每 PollInterval 查询一次，执行结束后回复输出
// 没有超时，只有进程退出 (ctx 取消) 时提前结束
func (o *Orchestrator) Report(ctx context.Context, execution *rundeck.Execution, lines int) State {
	id := execution.ID
	average := execution.AverageSeconds()
	// 轮询结果没有开始时间时用提交时的，都没有时用开始回报的时间
	started := execution.StartUnixtime / 1000
	if started <= 0 {
		started = o.clock.Now().Unix()
	}
	o.state = Running
	o.clock.Sleep(time.Duration(average+1) * time.Second)

	for {
		if ctx.Err() != nil {
			util.Log.Trace("Orchestrator", "report stopped", id, ctx.Err())
			o.state = Ended
			return o.state
		}

		current := o.source.Execution(ctx, id)
		if current.Running() {
			if current.StartUnixtime > 0 {
				started = current.StartUnixtime / 1000
			}
			elapsed := o.clock.Now().Unix() - started
			o.responder.Reply(fmt.Sprintf(logic.MsgStillRunning, id, elapsed, average))
			o.clock.Sleep(o.PollInterval)
			continue
		}

		if output := o.source.Output(ctx, id, lines); output != nil {
			o.responder.Reply(output.Format())
		} else {
			o.responder.Reply(fmt.Sprintf(logic.MsgOutputUnavailable, id))
		}
		o.state = finalState(current)
		util.Log.Trace("Orchestrator", "execution finished", id, o.state)
		return o.state
	}
}

func finalState(e *rundeck.Execution) State {
	if e == nil {
		return Ended
	}
	switch e.Status {
	case rundeck.StatusSucceeded:
		return Succeeded
	case rundeck.StatusFailed:
		return Failed
	case rundeck.StatusAborted:
		return Aborted
	}
	return Ended
}
