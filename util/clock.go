package util

import "time"

// Clock 时间相关操作的抽象，轮询等需要等待的逻辑通过它睡眠，测试时可以替换成假时钟
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

// RealClock 使用系统时间
var RealClock Clock = realClock{}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

func (realClock) Sleep(d time.Duration) {
	time.Sleep(d)
}
