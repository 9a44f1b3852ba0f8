// Package trainersim is a simulated execution backend for development and
// tests. It walks the same phases a real training run would (environment,
// data, model, epochs, save) with synthetic metrics and configurable pacing.
package trainersim

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/Abraxas-365/trainforge/pkg/fsx"
	"github.com/Abraxas-365/trainforge/pkg/logx"
	"github.com/Abraxas-365/trainforge/pkg/trainer"
)

// SimRunner implements trainer.Runner with a fake training loop.
type SimRunner struct {
	storage    fsx.Storage // optional; when set, the dataset is probed first
	epochPause time.Duration
}

// Option configures the runner.
type Option func(*SimRunner)

// WithStorage makes the runner verify the dataset exists before "training".
func WithStorage(storage fsx.Storage) Option {
	return func(r *SimRunner) { r.storage = storage }
}

// WithEpochPause sets the simulated per-epoch duration. Tests set this to
// zero to run instantly.
func WithEpochPause(d time.Duration) Option {
	return func(r *SimRunner) { r.epochPause = d }
}

// New creates a simulated runner.
func New(opts ...Option) *SimRunner {
	r := &SimRunner{epochPause: 500 * time.Millisecond}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Run simulates a full training run. Parameters understood:
//
//	epochs (number, default 10), batch_size, lr: echoed into the summary
//	fail_with (string): abort with the given message, for failure testing
func (r *SimRunner) Run(ctx context.Context, targetName, resourceLocator string, parameters map[string]interface{}) (*trainer.Result, error) {
	logx.WithFields(logx.Fields{
		"target":  targetName,
		"dataset": resourceLocator,
	}).Info("trainersim: starting run")

	if r.storage != nil {
		exists, err := r.storage.Exists(ctx, resourceLocator)
		if err != nil {
			return nil, trainer.ErrExecutionFailed(fmt.Errorf("dataset probe failed: %w", err))
		}
		if !exists {
			return nil, trainer.ErrExecutionFailed(fmt.Errorf("dataset %q does not exist", resourceLocator))
		}
	}

	if msg, ok := parameters["fail_with"].(string); ok && msg != "" {
		return nil, trainer.ErrExecutionFailed(fmt.Errorf("%s", msg))
	}

	epochs := intParam(parameters, "epochs", 10)
	var accuracy, loss float64
	for epoch := 1; epoch <= epochs; epoch++ {
		select {
		case <-ctx.Done():
			if ctx.Err() == context.DeadlineExceeded {
				return nil, trainer.ErrTimeout(ctx.Err())
			}
			return nil, trainer.ErrExecutionFailed(ctx.Err())
		case <-time.After(r.epochPause):
		}

		loss = 0.08 + rand.Float64()*0.32
		accuracy = 0.85 + rand.Float64()*0.10
		logx.Debugf("trainersim: epoch %d/%d loss=%.4f accuracy=%.4f", epoch, epochs, loss, accuracy)
	}

	return &trainer.Result{
		Summary: fmt.Sprintf("trained %s on %s for %d epochs", targetName, resourceLocator, epochs),
		Metrics: map[string]interface{}{
			"final_accuracy": accuracy,
			"final_loss":     loss,
			"epochs":         epochs,
		},
	}, nil
}

func intParam(params map[string]interface{}, key string, fallback int) int {
	switch v := params[key].(type) {
	case int:
		return v
	case float64:
		// JSON numbers decode as float64.
		return int(v)
	}
	return fallback
}
