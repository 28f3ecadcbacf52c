// Package logger 提供基于log/slog的结构化日志
//
// 设计说明：
// 1. 全局logger只初始化一次（Init），业务代码通过L()获取
// 2. JSON格式便于ELK等日志系统采集，console格式便于本地调试
// 3. 输出到文件时使用lumberjack做滚动切割，防止日志撑爆磁盘
package logger

import (
	"io"
	"log/slog"
	"os"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options 日志选项（由config.LogConfig转换而来）
type Options struct {
	Level        string // debug | info | warn | error
	Format       string // console | json
	Output       string // stdout | stderr | /path/to/file
	EnableCaller bool   // 是否记录调用位置
}

var (
	once sync.Once
	base *slog.Logger
)

// Init 初始化全局logger（进程启动时调用一次）
func Init(opts Options) *slog.Logger {
	once.Do(func() {
		base = build(opts)
		slog.SetDefault(base)
	})
	return base
}

// L 获取全局logger（未初始化时返回默认配置）
func L() *slog.Logger {
	if base == nil {
		return Init(Options{Level: "info", Format: "console", Output: "stdout"})
	}
	return base
}

// With 派生带固定字段的子logger（如 logger.With("module", "order")）
func With(args ...any) *slog.Logger {
	return L().With(args...)
}

func build(opts Options) *slog.Logger {
	var w io.Writer
	switch opts.Output {
	case "", "stdout":
		w = os.Stdout
	case "stderr":
		w = os.Stderr
	default:
		// 输出到文件时启用滚动切割
		rot := &lumberjack.Logger{
			Filename:   opts.Output,
			MaxSize:    50, // MB
			MaxBackups: 5,
			MaxAge:     14, // days
		}
		// 同时输出到stdout，便于容器环境采集
		w = io.MultiWriter(os.Stdout, rot)
	}

	hopts := &slog.HandlerOptions{
		Level:     parseLevel(opts.Level),
		AddSource: opts.EnableCaller,
	}

	var h slog.Handler
	if opts.Format == "json" {
		h = slog.NewJSONHandler(w, hopts)
	} else {
		h = slog.NewTextHandler(w, hopts)
	}

	return slog.New(h)
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
