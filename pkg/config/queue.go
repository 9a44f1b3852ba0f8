package config

import "time"

// QueueConfig selects and configures the delivery queue driver.
// Driver is one of "sqs", "redis" or "memory".
type QueueConfig struct {
	Driver string

	// SQS
	QueueURL  string
	AWSRegion string

	// Redis
	QueueName string
}

func loadQueueConfig() QueueConfig {
	return QueueConfig{
		Driver:    getEnv("QUEUE_DRIVER", "sqs"),
		QueueURL:  getEnv("SQS_QUEUE_URL", ""),
		AWSRegion: getEnv("AWS_REGION", "us-east-1"),
		QueueName: getEnv("QUEUE_NAME", "training"),
	}
}

// WorkerConfig configures the consumption loop.
type WorkerConfig struct {
	Concurrency     int
	MaxMessages     int
	WaitTime        time.Duration
	RunTimeout      time.Duration
	ShutdownTimeout time.Duration
}

func loadWorkerConfig() WorkerConfig {
	return WorkerConfig{
		Concurrency:     getEnvInt("WORKER_CONCURRENCY", 2),
		MaxMessages:     getEnvInt("WORKER_MAX_MESSAGES", 1),
		WaitTime:        getEnvDuration("WORKER_WAIT_TIME", 10*time.Second),
		RunTimeout:      getEnvDuration("WORKER_RUN_TIMEOUT", time.Hour),
		ShutdownTimeout: getEnvDuration("WORKER_SHUTDOWN_TIMEOUT", 30*time.Second),
	}
}

// TrainerConfig selects the execution backend. Driver is "http" or "sim".
type TrainerConfig struct {
	Driver   string
	Endpoint string
	Token    string
}

func loadTrainerConfig() TrainerConfig {
	return TrainerConfig{
		Driver:   getEnv("TRAINER_DRIVER", "sim"),
		Endpoint: getEnv("TRAINER_ENDPOINT", ""),
		Token:    getEnv("TRAINER_TOKEN", ""),
	}
}
