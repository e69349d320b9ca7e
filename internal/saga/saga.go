// Package saga runs a multi-step write as an ordered list of steps, each paired with a
// compensating action. When a step fails, the steps that already succeeded are undone in
// reverse order so the store is left as it was before the operation started.
//
// Services use this instead of a single database transaction because some steps (rating
// adjustments, for example) are relative updates that must be reversed explicitly.
package saga

import (
	"context"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Step is one unit of work. Undo may be nil for steps that have nothing to reverse.
type Step struct {
	Name string
	Do   func(ctx context.Context) error
	Undo func(ctx context.Context) error
}

// Error reports which step failed. Compensation holds the combined errors of any undo
// actions that also failed; it is nil when the rollback was clean.
type Error struct {
	Step         string
	Err          error
	Compensation error
}

func (e *Error) Error() string {
	if e.Compensation != nil {
		return fmt.Sprintf("step %q failed: %v (rollback incomplete: %v)", e.Step, e.Err, e.Compensation)
	}
	return fmt.Sprintf("step %q failed: %v", e.Step, e.Err)
}

// Unwrap exposes the step's own error so callers can errors.Is / errors.As through it.
func (e *Error) Unwrap() error { return e.Err }

// Run executes steps in order. On the first failure it undoes the completed steps,
// newest first, and returns an *Error. Undo failures don't stop the remaining undos.
func Run(ctx context.Context, log *zap.Logger, steps ...Step) error {
	if log == nil {
		log = zap.NewNop()
	}
	done := make([]Step, 0, len(steps))
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return rollback(ctx, log, done, step.Name, err)
		}
		if err := step.Do(ctx); err != nil {
			return rollback(ctx, log, done, step.Name, err)
		}
		done = append(done, step)
	}
	return nil
}

func rollback(ctx context.Context, log *zap.Logger, done []Step, failed string, cause error) error {
	// Compensation runs even when ctx was cancelled: leaving half a write behind is worse.
	undoCtx := context.WithoutCancel(ctx)

	var compErr error
	for i := len(done) - 1; i >= 0; i-- {
		step := done[i]
		if step.Undo == nil {
			continue
		}
		if err := step.Undo(undoCtx); err != nil {
			compErr = multierr.Append(compErr, fmt.Errorf("undo %q: %w", step.Name, err))
		}
	}

	fields := []zap.Field{zap.String("step", failed), zap.Error(cause), zap.Int("undone", len(done))}
	if compErr != nil {
		log.Error("saga rollback incomplete", append(fields, zap.NamedError("compensation", compErr))...)
	} else {
		log.Warn("saga rolled back", fields...)
	}
	return &Error{Step: failed, Err: cause, Compensation: compErr}
}
