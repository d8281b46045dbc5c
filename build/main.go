package main

import (
	"os"
	"os/exec"

	"github.com/goyek/goyek/v2"
)

func run(a *goyek.A, args ...string) {
	a.Helper()
	cmd := exec.Command("go", args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		a.Error(err)
	}
}

var vet = goyek.Define(goyek.Task{
	Name:  "vet",
	Usage: "Run go vet on all packages",
	Action: func(a *goyek.A) {
		run(a, "vet", "./...")
	},
})

// 需要 redis / mysql / etcd 的测试通过 -args 传入地址，例如
// go test ./alias -args -redis 127.0.0.1:6379
var test = goyek.Define(goyek.Task{
	Name:  "test",
	Usage: "Run unit tests",
	Action: func(a *goyek.A) {
		run(a, "test", "./...")
	},
})

var all = goyek.Define(goyek.Task{
	Name:  "all",
	Usage: "vet and test",
	Deps:  goyek.Deps{vet, test},
})

func main() {
	goyek.SetDefault(all)
	goyek.Main(os.Args[1:])
}
