package command

import (
	"strings"
	"testing"
)

func TestRouterParse(t *testing.T) {
	r := NewRouter("rundeck")
	cases := []struct {
		text    string
		route   string
		matches []string
	}{
		{"rundeck info", "info", nil},
		{"info", "info", nil},
		{"RUNDECK projects", "projects", nil},
		{"rundeck project", "projects", nil},
		{"rundeck jobs", "jobs", nil},
		{"rundeck executions", "executions", []string{""}},
		{"rundeck exec 5", "executions", []string{"5"}},
		{"rundeck running", "running", []string{""}},
		{"rundeck running 3", "running", []string{"3"}},
		{"rundeck output 285 20", "output", []string{"285", "20"}},
		{"rundeck aliases", "aliases", nil},
		{"rundeck alias", "aliases", nil},
		{"rundeck alias register aliasfoo --project Litatest --job dateoutput", "alias_register", []string{"aliasfoo"}},
		{"rundeck alias forget aliasfoo", "alias_forget", []string{"aliasfoo"}},
		{"rundeck run aliasfoo", "run", []string{"aliasfoo"}},
		{"rundeck run --project Litatest --job dateoutput", "run", []string{""}},
		{"rundeck options aliasfoo", "options", []string{"aliasfoo"}},
		{"rundeck help", "help", nil},
	}
	for _, c := range cases {
		cmd, err := r.Parse(c.text)
		if err != nil {
			t.Fatal(c.text, err)
		}
		if cmd.Route.Name != c.route {
			t.Fatal(c.text, "matched", cmd.Route.Name)
		}
		for i, m := range c.matches {
			if cmd.Match(i) != m {
				t.Fatal(c.text, "match", i, cmd.Match(i))
			}
		}
	}
}

func TestRouterKeywordArguments(t *testing.T) {
	r := NewRouter("rundeck")
	cmd, err := r.Parse("rundeck run -p Litatest -j dateoutput -o SECONDS=60|FOO=bar --report all")
	if err != nil {
		t.Fatal("parse failed", err)
	}
	if cmd.Project != "Litatest" || cmd.Job != "dateoutput" || cmd.Options != "SECONDS=60|FOO=bar" || cmd.Report != "all" {
		t.Fatal("kwargs", cmd)
	}

	// 关键字参数可以出现在名字前面
	cmd, err = r.Parse("rundeck run --report 5 aliasfoo")
	if err != nil {
		t.Fatal("parse failed", err)
	}
	if cmd.Route.Name != "run" || cmd.Match(0) != "aliasfoo" || cmd.Report != "5" {
		t.Fatal("interspersed", cmd)
	}

	// 引号内的空格属于同一个值
	cmd, err = r.Parse(`rundeck run --project Ops --job "Nightly backup" --options "MSG=hello world|N=1"`)
	if err != nil {
		t.Fatal("parse quoted failed", err)
	}
	if cmd.Route.Name != "run" || cmd.Project != "Ops" || cmd.Job != "Nightly backup" || cmd.Options != "MSG=hello world|N=1" {
		t.Fatal("quoted kwargs", cmd)
	}
	cmd, err = r.Parse(`rundeck alias register nightly -p Ops -j 'Nightly backup'`)
	if err != nil {
		t.Fatal("parse quoted alias failed", err)
	}
	if cmd.Route.Name != "alias_register" || cmd.Match(0) != "nightly" || cmd.Job != "Nightly backup" {
		t.Fatal("quoted alias", cmd)
	}

	// 引号不成对时按空白拆分
	cmd, err = r.Parse(`rundeck run -p Ops -j "dateoutput`)
	if err != nil {
		t.Fatal("parse unbalanced failed", err)
	}
	if cmd.Job != `"dateoutput` {
		t.Fatal("unbalanced quote", cmd.Job)
	}
}

func TestRouterUnknown(t *testing.T) {
	r := NewRouter("rundeck")
	for _, text := range []string{"", "rundeck", "rundeck deploy everything", "rundeck output", "rundeck run --bogus x"} {
		if cmd, err := r.Parse(text); err == nil {
			t.Fatal(text, "should not match", cmd.Route.Name)
		}
	}
}

func TestRouterHelp(t *testing.T) {
	help := NewRouter("rundeck").Help()
	if len(strings.Split(help, "\n")) != len(Routes) {
		t.Fatal("one line per route", help)
	}
	if !strings.Contains(help, "rundeck run [<name>] [--project P --job J]") {
		t.Fatal("run usage", help)
	}
}

func TestParseOptions(t *testing.T) {
	options := ParseOptions("SECONDS=60|junk|FOO=a=b|SECONDS=5")
	if len(options) != 2 {
		t.Fatal("options", options)
	}
	if options[0].Name != "SECONDS" || options[0].Value != "5" {
		t.Fatal("duplicate key should override in place", options[0])
	}
	if options[1].Name != "FOO" || options[1].Value != "a=b" {
		t.Fatal("value keeps later =", options[1])
	}
	if ParseOptions("") != nil {
		t.Fatal("empty")
	}
}

func TestGroups(t *testing.T) {
	g := Groups{"rundeck_users": {"U1", "alice"}}
	if !g.IsMember(User{ID: "U1"}, "rundeck_users") || !g.IsMember(User{ID: "U9", Name: "alice"}, "rundeck_users") {
		t.Fatal("member by id or name")
	}
	if g.IsMember(User{}, "rundeck_users") || g.IsMember(User{ID: "U1"}, "admins") {
		t.Fatal("not a member")
	}
	if len(g.Members("rundeck_users")) != 2 || g.Members("admins") != nil {
		t.Fatal("members")
	}
}
