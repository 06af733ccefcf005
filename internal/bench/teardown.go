package bench

import (
	"errors"

	"go.uber.org/zap"
)

type teardownStep struct {
	name string
	fn   func() error
}

// Teardown releases acquired resources in reverse registration order.
// Each release action is pushed at acquisition time, so a failure at
// any point in the setup sequence still unwinds exactly the resources
// that exist. Individual step failures are logged and collected but
// never stop the remaining steps; Run is idempotent.
type Teardown struct {
	log   *zap.Logger
	steps []teardownStep
	done  bool
}

// NewTeardown creates an empty release stack
func NewTeardown(log *zap.Logger) *Teardown {
	return &Teardown{log: log.Named("teardown")}
}

// Push registers a release action. Actions run last-pushed-first.
func (t *Teardown) Push(name string, fn func() error) {
	t.steps = append(t.steps, teardownStep{name: name, fn: fn})
}

// Run executes all pushed actions in reverse order. Returns the joined
// errors of every failed step; a second invocation is a no-op.
func (t *Teardown) Run() error {
	if t.done {
		return nil
	}
	t.done = true

	var errs []error
	for i := len(t.steps) - 1; i >= 0; i-- {
		step := t.steps[i]
		if err := step.fn(); err != nil {
			t.log.Warn("teardown step failed", zap.String("step", step.name), zap.Error(err))
			errs = append(errs, err)
		}
	}
	t.steps = nil
	return errors.Join(errs...)
}
