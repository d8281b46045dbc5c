package util

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger 日志对象，参数风格与 fmt.Println 一致
//
//	util.Log.Error("Component", "what failed", err)
type Logger struct {
	sugar *zap.SugaredLogger
}

// NewLogger 新建一个写入 filename 的 Logger
func NewLogger(filename, name string, debug bool) (*Logger, error) {
	f, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	return newLogger(zapcore.AddSync(f), name, debug), nil
}

// NewStderrLogger 新建一个输出到 stderr 的 Logger
func NewStderrLogger(debug bool) *Logger {
	return newLogger(zapcore.Lock(os.Stderr), "rundeckbot", debug)
}

func newLogger(ws zapcore.WriteSyncer, name string, debug bool) *Logger {
	encoderConf := zap.NewProductionEncoderConfig()
	encoderConf.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConf.EncodeLevel = zapcore.CapitalLevelEncoder

	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConf), ws, level)
	return &Logger{
		sugar: zap.New(core).Named(name).Sugar(),
	}
}

// Trace 记录流程日志
func (l *Logger) Trace(args ...interface{}) {
	l.sugar.Infoln(args...)
}

// Debug 记录调试日志，只有 debug 打开时输出
func (l *Logger) Debug(args ...interface{}) {
	l.sugar.Debugln(args...)
}

// Error 记录错误日志
func (l *Logger) Error(args ...interface{}) {
	l.sugar.Errorln(args...)
}

// Sync 刷新缓冲
func (l *Logger) Sync() error {
	return l.sugar.Sync()
}
