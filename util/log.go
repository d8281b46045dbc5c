package util

import (
	"os"
	"path/filepath"
)

var (
	// Log 全局 Log 对象，未初始化时输出到 stderr
	Log = NewStderrLogger(false)

	rootPath = func() string {
		ex, err := os.Executable()
		if err != nil {
			panic(err)
		}
		return filepath.Dir(ex)
	}()
)

// InitLog 初始化全局 Log
// filename 为空时输出到 stderr，相对路径基于可执行文件所在目录
func InitLog(filename string, debug bool) error {
	if filename == "" {
		Log = NewStderrLogger(debug)
		return nil
	}
	if !filepath.IsAbs(filename) {
		filename = filepath.Join(rootPath, filename)
	}
	if err := os.MkdirAll(filepath.Dir(filename), os.ModePerm); err != nil {
		return err
	}
	log, err := NewLogger(filename, "rundeckbot", debug)
	if err != nil {
		return err
	}
	Log = log
	return nil
}
