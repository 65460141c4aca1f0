package batch

import "sync"

// Executor runs the engine's background work: the periodic flush loop and
// one-off flush tasks handed off by the count trigger.
type Executor interface {

	// Go runs fn on the background execution context.
	Go(fn func())

	// Stop waits for all started work to return. No calls to Go may be
	// made after Stop.
	Stop()
}

// ExecutorFactory creates the Executor backing an enabled engine. It is
// invoked once per Enable call.
type ExecutorFactory func() Executor

// goExecutor is the default Executor, running every task on its own
// goroutine tracked by a WaitGroup.
type goExecutor struct {
	wg sync.WaitGroup
}

// NewGoExecutor returns the default goroutine-backed Executor.
func NewGoExecutor() Executor {
	return &goExecutor{}
}

// Go implements Executor.
func (e *goExecutor) Go(fn func()) {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		fn()
	}()
}

// Stop implements Executor.
func (e *goExecutor) Stop() {
	e.wg.Wait()
}
