package util

import "github.com/johntech-o/grace/gracenet"

// GraceNet 支持平滑重启的 listener 集合，USR2 时把 fd 交给新进程
var GraceNet = &gracenet.Net{}
