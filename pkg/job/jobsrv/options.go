package jobsrv

import "time"

// ConsumerOptions configures the consumption loop.
type ConsumerOptions struct {
	Concurrency     int
	MaxMessages     int
	WaitTime        time.Duration
	PollInterval    time.Duration
	RunTimeout      time.Duration
	ShutdownTimeout time.Duration
}

func defaultConsumerOptions() ConsumerOptions {
	return ConsumerOptions{
		Concurrency:     4,
		MaxMessages:     5,
		WaitTime:        10 * time.Second,
		PollInterval:    time.Second,
		RunTimeout:      30 * time.Minute,
		ShutdownTimeout: 30 * time.Second,
	}
}

// ConsumerOption is a functional option for configuring the consumer.
type ConsumerOption func(*ConsumerOptions)

// WithConcurrency sets the number of worker goroutines.
func WithConcurrency(n int) ConsumerOption {
	return func(o *ConsumerOptions) {
		if n > 0 {
			o.Concurrency = n
		}
	}
}

// WithMaxMessages sets the maximum deliveries fetched per receive call.
func WithMaxMessages(n int) ConsumerOption {
	return func(o *ConsumerOptions) {
		if n > 0 {
			o.MaxMessages = n
		}
	}
}

// WithWaitTime sets the long-poll duration of a receive call.
func WithWaitTime(d time.Duration) ConsumerOption {
	return func(o *ConsumerOptions) {
		o.WaitTime = d
	}
}

// WithPollInterval sets the back-off between receive attempts after an error.
func WithPollInterval(d time.Duration) ConsumerOption {
	return func(o *ConsumerOptions) {
		o.PollInterval = d
	}
}

// WithRunTimeout bounds a single backend execution.
func WithRunTimeout(d time.Duration) ConsumerOption {
	return func(o *ConsumerOptions) {
		o.RunTimeout = d
	}
}

// WithShutdownTimeout sets the maximum time to wait for in-flight executions
// on shutdown.
func WithShutdownTimeout(d time.Duration) ConsumerOption {
	return func(o *ConsumerOptions) {
		o.ShutdownTimeout = d
	}
}
