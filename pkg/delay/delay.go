// Package delay 提供可取消的延迟回调，用于模拟助手的"输入中"停顿。
package delay

import (
	"context"
	"sync/atomic"
	"time"
)

const (
	statePending int32 = iota
	stateRunning
	stateFired
	stateCanceled
)

// Deferred 表示一个已调度、尚未执行或已结束的回调。回调最多执行一次。
type Deferred struct {
	timer *time.Timer
	state atomic.Int32
	done  chan struct{}
}

// Schedule 在 d 之后于独立 goroutine 中执行 fn。
func Schedule(d time.Duration, fn func()) *Deferred {
	df := &Deferred{done: make(chan struct{})}
	df.timer = time.AfterFunc(d, func() {
		if !df.state.CompareAndSwap(statePending, stateRunning) {
			return
		}
		defer func() {
			df.state.Store(stateFired)
			close(df.done)
		}()
		fn()
	})
	return df
}

// Cancel 阻止尚未开始的回调执行。回调已开始或已结束时返回 false。
func (d *Deferred) Cancel() bool {
	if !d.state.CompareAndSwap(statePending, stateCanceled) {
		return false
	}
	d.timer.Stop()
	close(d.done)
	return true
}

// Done 在回调执行完毕或被取消后关闭。
func (d *Deferred) Done() <-chan struct{} {
	return d.done
}

// Wait 阻塞直到回调结束、被取消或 ctx 结束。
func (d *Deferred) Wait(ctx context.Context) error {
	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Fired 报告回调是否已经执行完毕。
func (d *Deferred) Fired() bool {
	return d.state.Load() == stateFired
}

// Canceled 报告回调是否在执行前被取消。
func (d *Deferred) Canceled() bool {
	return d.state.Load() == stateCanceled
}

// Pending 报告回调是否仍在等待或正在执行。
func (d *Deferred) Pending() bool {
	s := d.state.Load()
	return s == statePending || s == stateRunning
}
