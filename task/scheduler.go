package task

import (
	"fmt"
	"sync"
	"time"
)

// scheduler 自动步进调度器
// 说明：同一时刻至多一个自动步进循环在运行
type scheduler struct {
	mu     sync.Mutex
	stopCh chan struct{}
	doneCh chan struct{}
}

// StartAuto 启动自动步进
// 功能：以固定间隔在后台循环执行Step
// 参数：interval-步进间隔
// 返回：间隔非法或已在运行时返回error
func (ctx *Context) StartAuto(interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("invalid step interval %v", interval)
	}
	s := ctx.auto
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopCh != nil {
		return fmt.Errorf("auto stepping already running")
	}
	stopCh := make(chan struct{})
	doneCh := make(chan struct{})
	s.stopCh, s.doneCh = stopCh, doneCh
	go func() {
		defer close(doneCh)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stopCh:
				return
			case <-ticker.C:
				ctx.Step()
			}
		}
	}()
	log.Infof("auto stepping started with interval %v", interval)
	return nil
}

// StopAuto 停止自动步进
// 返回：未在运行时返回error
func (ctx *Context) StopAuto() error {
	if !ctx.auto.stop() {
		return fmt.Errorf("auto stepping not running")
	}
	log.Infof("auto stepping stopped")
	return nil
}

// AutoRunning 自动步进是否在运行
func (ctx *Context) AutoRunning() bool {
	ctx.auto.mu.Lock()
	defer ctx.auto.mu.Unlock()
	return ctx.auto.stopCh != nil
}

// stop 停止循环并等待其退出，返回是否确实停止了运行中的循环
func (s *scheduler) stop() bool {
	s.mu.Lock()
	if s.stopCh == nil {
		s.mu.Unlock()
		return false
	}
	stopCh, doneCh := s.stopCh, s.doneCh
	s.stopCh, s.doneCh = nil, nil
	s.mu.Unlock()
	close(stopCh)
	<-doneCh
	return true
}
