// Composition root for the worker binary. Owns the queue consumer side:
// record store, queue driver, training backend and notifications.
package main

import (
	"context"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/Abraxas-365/trainforge/pkg/config"
	"github.com/Abraxas-365/trainforge/pkg/fsx/fsxlocal"
	"github.com/Abraxas-365/trainforge/pkg/job/jobinfra"
	"github.com/Abraxas-365/trainforge/pkg/job/jobsrv"
	"github.com/Abraxas-365/trainforge/pkg/logx"
	"github.com/Abraxas-365/trainforge/pkg/metricx"
	"github.com/Abraxas-365/trainforge/pkg/notifx"
	"github.com/Abraxas-365/trainforge/pkg/notifx/notifxconsole"
	"github.com/Abraxas-365/trainforge/pkg/notifx/notifxses"
	"github.com/Abraxas-365/trainforge/pkg/queuex"
	"github.com/Abraxas-365/trainforge/pkg/queuex/queuexmem"
	"github.com/Abraxas-365/trainforge/pkg/queuex/queuexredis"
	"github.com/Abraxas-365/trainforge/pkg/queuex/queuexsqs"
	"github.com/Abraxas-365/trainforge/pkg/trainer"
	"github.com/Abraxas-365/trainforge/pkg/trainer/trainerhttp"
	"github.com/Abraxas-365/trainforge/pkg/trainer/trainersim"
)

// Container holds the worker's infrastructure and the composed consumer.
type Container struct {
	Config *config.Config

	DB      *sqlx.DB
	Redis   *redis.Client
	Queue   queuex.Queue
	Runner  trainer.Runner
	Metrics *metricx.Metrics

	JobService *jobsrv.Service
	Consumer   *jobsrv.Consumer
}

func NewContainer(cfg *config.Config) *Container {
	logx.Info("initializing worker container...")

	c := &Container{Config: cfg}

	c.initDatabase()
	c.initQueue()
	c.initRunner()
	c.Metrics = metricx.New()

	c.JobService = jobsrv.NewService(
		jobinfra.NewPostgresJobRepository(c.DB),
		c.Queue,
		jobsrv.WithMetrics(c.Metrics),
	)

	c.Consumer = jobsrv.NewConsumer(
		c.JobService,
		c.Queue,
		c.Runner,
		c.initNotifier(),
		c.Metrics,
		jobsrv.WithConcurrency(cfg.Worker.Concurrency),
		jobsrv.WithMaxMessages(cfg.Worker.MaxMessages),
		jobsrv.WithWaitTime(cfg.Worker.WaitTime),
		jobsrv.WithRunTimeout(cfg.Worker.RunTimeout),
		jobsrv.WithShutdownTimeout(cfg.Worker.ShutdownTimeout),
	)

	logx.Info("worker container initialized")
	return c
}

func (c *Container) initDatabase() {
	db, err := sqlx.Connect("postgres", c.Config.Database.DSN())
	if err != nil {
		logx.Fatalf("failed to connect to database: %v", err)
	}
	db.SetMaxOpenConns(c.Config.Database.MaxOpenConns)
	db.SetMaxIdleConns(c.Config.Database.MaxIdleConns)
	db.SetConnMaxLifetime(c.Config.Database.ConnMaxLifetime)
	c.DB = db
	logx.Info("database connected")
}

func (c *Container) initQueue() {
	switch c.Config.Queue.Driver {
	case "sqs":
		awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
			awsconfig.WithRegion(c.Config.Queue.AWSRegion))
		if err != nil {
			logx.Fatalf("unable to load AWS SDK config: %v", err)
		}
		if c.Config.Queue.QueueURL == "" {
			logx.Fatal("SQS_QUEUE_URL is required for the sqs queue driver")
		}
		c.Queue = queuexsqs.New(sqs.NewFromConfig(awsCfg), c.Config.Queue.QueueURL)
		logx.Infof("sqs queue configured (url: %s)", c.Config.Queue.QueueURL)

	case "redis":
		c.Redis = redis.NewClient(&redis.Options{
			Addr:     c.Config.Redis.Address(),
			Password: c.Config.Redis.Password,
			DB:       c.Config.Redis.DB,
		})
		if _, err := c.Redis.Ping(context.Background()).Result(); err != nil {
			logx.Fatalf("failed to connect to redis: %v", err)
		}
		q := queuexredis.New(c.Redis, c.Config.Queue.QueueName)

		// Deliveries leased by a previous crashed worker go back to ready.
		if n, err := q.Recover(context.Background()); err != nil {
			logx.WithError(err).Warn("redis queue recovery failed")
		} else if n > 0 {
			logx.Infof("recovered %d stranded deliveries", n)
		}
		c.Queue = q
		logx.Infof("redis queue configured (name: %s)", c.Config.Queue.QueueName)

	case "memory":
		c.Queue = queuexmem.New()
		logx.Warn("in-memory queue configured, deliveries do not leave this process")

	default:
		logx.Fatalf("unknown QUEUE_DRIVER: %s (use 'sqs', 'redis' or 'memory')", c.Config.Queue.Driver)
	}
}

func (c *Container) initRunner() {
	switch c.Config.Trainer.Driver {
	case "http":
		if c.Config.Trainer.Endpoint == "" {
			logx.Fatal("TRAINER_ENDPOINT is required for the http trainer driver")
		}
		opts := []trainerhttp.Option{}
		if c.Config.Trainer.Token != "" {
			opts = append(opts, trainerhttp.WithToken(c.Config.Trainer.Token))
		}
		c.Runner = trainerhttp.New(c.Config.Trainer.Endpoint, opts...)
		logx.Infof("http trainer configured (endpoint: %s)", c.Config.Trainer.Endpoint)

	case "sim":
		opts := []trainersim.Option{}
		if c.Config.Storage.Mode == "local" {
			if local, err := fsxlocal.New(c.Config.Storage.LocalPath); err == nil {
				opts = append(opts, trainersim.WithStorage(local))
			}
		}
		c.Runner = trainersim.New(opts...)
		logx.Info("simulated trainer configured")

	default:
		logx.Fatalf("unknown TRAINER_DRIVER: %s (use 'http' or 'sim')", c.Config.Trainer.Driver)
	}
}

func (c *Container) initNotifier() *notifx.Client {
	if !c.Config.Notify.Enabled {
		return nil
	}

	switch c.Config.Notify.Driver {
	case "ses":
		awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
			awsconfig.WithRegion(c.Config.Notify.AWSRegion))
		if err != nil {
			logx.Fatalf("unable to load AWS SDK config: %v", err)
		}
		logx.Info("ses notifications configured")
		return notifx.NewClient(notifxses.NewSESProvider(ses.NewFromConfig(awsCfg)),
			c.Config.Notify.From, c.Config.Notify.To)

	case "console":
		logx.Info("console notifications configured")
		return notifx.NewClient(notifxconsole.NewConsoleProvider(),
			c.Config.Notify.From, c.Config.Notify.To)

	default:
		logx.Fatalf("unknown NOTIFY_DRIVER: %s (use 'console' or 'ses')", c.Config.Notify.Driver)
		return nil
	}
}

// Cleanup releases infrastructure handles.
func (c *Container) Cleanup() {
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			logx.WithError(err).Warn("error closing database")
		}
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			logx.WithError(err).Warn("error closing redis")
		}
	}
}
