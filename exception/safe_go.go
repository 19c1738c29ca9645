// Package exception contains the goroutine panic guard. Background tasks
// started through it log and count a panic instead of taking the node down.
package exception

import (
	"runtime/debug"

	"driipnet/logx"
	"driipnet/monitoring"
)

// SafeGo runs fn on a new goroutine. A panic is recovered, recorded in the
// panic counter and logged with its stack under the given task name.
func SafeGo(name string, fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				monitoring.IncreasePanicCount()
				logx.Errorf("task %q panicked: %v\n%s", name, r, debug.Stack())
			}
		}()
		fn()
	}()
}
