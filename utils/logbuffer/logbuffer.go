// 日志环形缓冲，以logrus钩子的形式保留最近的日志行供查询接口使用
package logbuffer

import (
	"strings"
	"sync"

	easy "git.fiblab.net/utils/logrus-easy-formatter"
	"github.com/sirupsen/logrus"

	"github.com/tsinghua-fib-lab/trafficcontrol-sim-oss/utils/container"
)

// Buffer 日志环形缓冲
// 功能：挂接到logrus后记录所有级别的日志，保留最近的若干行
// 说明：Fire由logrus在写日志时调用，Recent供查询，二者可并发
type Buffer struct {
	mu        sync.Mutex
	entries   *container.Ring[string]
	formatter logrus.Formatter
}

// New 创建日志环形缓冲
// 参数：size-保留的日志行数
func New(size int) *Buffer {
	return &Buffer{
		entries: container.NewRing[string](size),
		formatter: &easy.Formatter{
			TimestampFormat: "2006-01-02 15:04:05.0000",
			LogFormat:       "[%module%] [%time%] [%lvl%] %msg%\n",
		},
	}
}

// Levels 实现logrus.Hook接口，挂接所有日志级别
func (b *Buffer) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Fire 实现logrus.Hook接口，格式化日志条目并写入缓冲
func (b *Buffer) Fire(e *logrus.Entry) error {
	line, err := b.formatter.Format(e)
	if err != nil {
		return err
	}
	b.mu.Lock()
	b.entries.Push(strings.TrimRight(string(line), "\n"))
	b.mu.Unlock()
	return nil
}

// Recent 获取最近n条日志行
func (b *Buffer) Recent(n int) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.entries.Tail(n)
}

// Len 获取当前缓冲的日志行数
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.entries.Len()
}
