package rundeck

import (
	"fmt"
	"strings"
)

// String renders `[name] - href`.
func (p Project) String() string {
	return fmt.Sprintf("[%s] - %s", p.Name, p.Href)
}

// String renders `[project] - name`.
func (j *JobDefinition) String() string {
	return fmt.Sprintf("[%s] - %s", j.Project, j.Name)
}

// FormatOptions lists the definition's options, one per line:
//
//	  * SECONDS (REQUIRED) - how long to sleep
func (j *JobDefinition) FormatOptions() string {
	lines := make([]string, 0, len(j.Options))
	for _, o := range j.Options {
		line := "  * " + o.Name + " "
		if o.Required {
			line += "(REQUIRED) "
		}
		if o.Description != "" {
			line += "- " + o.Description
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// String renders the execution on one line:
//
//	285 succeeded alice [Ops] dateoutput SECONDS:600 start:2014-08-14T15:06:28Z end:2014-08-14T15:16:32Z
func (e *Execution) String() string {
	line := fmt.Sprintf("%s %s %s ", e.ID, e.Status, e.User)
	if e.Job != nil {
		line += fmt.Sprintf("[%s] %s ", e.Job.Project, e.Job.Name)
		if len(e.Job.Options) > 0 {
			options := make([]string, 0, len(e.Job.Options))
			for _, o := range e.Job.Options {
				options = append(options, o.Name+":"+o.Value)
			}
			line += strings.Join(options, ", ") + " "
		}
	} else {
		// adhoc 执行没有 job
		line += fmt.Sprintf("[%s] %s ", e.Project, e.Description)
	}
	line += "start:" + e.Start
	if e.End != "" {
		line += " end:" + e.End
	}
	return line
}

// Format renders the log tail followed by a completion line.
func (o *Output) Format() string {
	lines := []string{fmt.Sprintf("Execution %s output:", o.ID)}
	for _, entry := range o.Entries {
		lines = append(lines, fmt.Sprintf("  %s %s", entry.Time, entry.Content))
	}

	seconds := float64(o.ExecDuration) / 1000.0
	if o.Completed {
		lines = append(lines, fmt.Sprintf("Execution %s is complete (took %ss)", o.ID, formatSeconds(seconds)))
	} else {
		lines = append(lines, fmt.Sprintf("Execution %s is not complete (running %ss)", o.ID, formatSeconds(seconds)))
	}
	return strings.Join(lines, "\n")
}

// formatSeconds prints at least one decimal: 60 -> "60.0", 60.123 -> "60.123".
func formatSeconds(s float64) string {
	out := fmt.Sprintf("%g", s)
	if !strings.ContainsAny(out, ".e") {
		out += ".0"
	}
	return out
}
