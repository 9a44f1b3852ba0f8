// Composition root for the API binary. Owns shared infrastructure and wires
// the job service behind the HTTP handlers.
package main

import (
	"context"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/Abraxas-365/trainforge/pkg/config"
	"github.com/Abraxas-365/trainforge/pkg/fsx"
	"github.com/Abraxas-365/trainforge/pkg/fsx/fsxlocal"
	"github.com/Abraxas-365/trainforge/pkg/fsx/fsxs3"
	"github.com/Abraxas-365/trainforge/pkg/iam/auth"
	"github.com/Abraxas-365/trainforge/pkg/job/jobhttp"
	"github.com/Abraxas-365/trainforge/pkg/job/jobinfra"
	"github.com/Abraxas-365/trainforge/pkg/job/jobsrv"
	"github.com/Abraxas-365/trainforge/pkg/logx"
	"github.com/Abraxas-365/trainforge/pkg/metricx"
	"github.com/Abraxas-365/trainforge/pkg/queuex"
	"github.com/Abraxas-365/trainforge/pkg/queuex/queuexmem"
	"github.com/Abraxas-365/trainforge/pkg/queuex/queuexredis"
	"github.com/Abraxas-365/trainforge/pkg/queuex/queuexsqs"
)

// Container holds shared infrastructure and the composed job module.
type Container struct {
	Config *config.Config

	DB      *sqlx.DB
	Redis   *redis.Client
	Queue   queuex.Queue
	Storage fsx.Storage
	Metrics *metricx.Metrics

	AuthMiddleware *auth.TokenMiddleware
	JobService     *jobsrv.Service
	JobHandlers    *jobhttp.Handlers
}

func NewContainer(cfg *config.Config) *Container {
	logx.Info("initializing api container...")

	c := &Container{Config: cfg}

	c.initDatabase()
	c.initQueue()
	c.initStorage()
	c.Metrics = metricx.New()

	if cfg.Auth.JWTSecret == "" {
		logx.Fatal("JWT_SECRET is required")
	}
	tokenService := auth.NewJWTService(cfg.Auth.JWTSecret, time.Hour, cfg.Auth.Issuer)
	c.AuthMiddleware = auth.NewAuthMiddleware(tokenService)

	c.JobService = jobsrv.NewService(
		jobinfra.NewPostgresJobRepository(c.DB),
		c.Queue,
		jobsrv.WithMetrics(c.Metrics),
	)
	c.JobHandlers = jobhttp.NewHandlers(c.JobService)

	logx.Info("api container initialized")
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
		c.Queue = queuexredis.New(c.Redis, c.Config.Queue.QueueName)
		logx.Infof("redis queue configured (name: %s)", c.Config.Queue.QueueName)

	case "memory":
		c.Queue = queuexmem.New()
		logx.Warn("in-memory queue configured, deliveries do not leave this process")

	default:
		logx.Fatalf("unknown QUEUE_DRIVER: %s (use 'sqs', 'redis' or 'memory')", c.Config.Queue.Driver)
	}
}

func (c *Container) initStorage() {
	switch c.Config.Storage.Mode {
	case "s3":
		awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
			awsconfig.WithRegion(c.Config.Storage.AWSRegion))
		if err != nil {
			logx.Fatalf("unable to load AWS SDK config: %v", err)
		}
		c.Storage = fsxs3.New(s3.NewFromConfig(awsCfg), c.Config.Storage.Bucket)
		logx.Infof("s3 storage configured (bucket: %s)", c.Config.Storage.Bucket)

	case "local":
		local, err := fsxlocal.New(c.Config.Storage.LocalPath)
		if err != nil {
			logx.Fatalf("failed to initialize local storage: %v", err)
		}
		c.Storage = local
		logx.Infof("local storage configured (path: %s)", local.BasePath())

	default:
		logx.Fatalf("unknown STORAGE_MODE: %s (use 'local' or 's3')", c.Config.Storage.Mode)
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
