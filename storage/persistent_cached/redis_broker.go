package persistent_cached

import (
	"context"
	"errors"
	"restblog/storage"

	"github.com/RichardKnop/machinery/v1"
	"github.com/RichardKnop/machinery/v1/config"
	"github.com/RichardKnop/machinery/v1/tasks"
	"go.uber.org/zap"
)

const (
	warmPostTaskName = "warmPost"
	consumerTag      = "restblog_worker"
)

func startBroker(brokerUrl string) (*machinery.Server, error) {
	cnf := &config.Config{
		DefaultQueue:    "restblog_tasks",
		ResultsExpireIn: 3600,
		Broker:          brokerUrl, // "redis://localhost:6379"
		ResultBackend:   brokerUrl,
		Redis: &config.RedisConfig{
			MaxIdle:                3,
			IdleTimeout:            240,
			ReadTimeout:            15,
			WriteTimeout:           15,
			ConnectTimeout:         15,
			NormalTasksPollPeriod:  1000,
			DelayedTasksPollPeriod: 500,
		},
	}
	return machinery.NewServer(cnf)
}

// Broker publishes cache warm-up tasks for the worker.
type Broker struct {
	server *machinery.Server
}

func CreateBroker(brokerUrl string) (*Broker, error) {
	server, err := startBroker(brokerUrl)
	if err != nil {
		return nil, err
	}
	return &Broker{server: server}, nil
}

func (b *Broker) WarmPost(ctx context.Context, postId string) error {
	task := createWarmPostTask(postId)
	_, err := b.server.SendTaskWithContext(ctx, &task)
	return err
}

func warmPostTask(cache *PersistentStorageWithCache, log *zap.SugaredLogger) func(string) error {
	return func(postId string) error {
		err := cache.RefreshPost(context.Background(), postId)
		if errors.Is(err, storage.NotFoundError) {
			log.Infof("Post %s is gone, nothing to warm", postId)
			return nil
		}
		if err != nil {
			log.Errorf("Failed to warm post %s: %v", postId, err)
			return err
		}
		log.Infof("Warmed cache for post %s", postId)
		return nil
	}
}

func CreateWorker(brokerUrl string, cache *PersistentStorageWithCache, log *zap.SugaredLogger) error {
	server, err := startBroker(brokerUrl)
	if err != nil {
		return err
	}
	err = server.RegisterTasks(map[string]interface{}{
		warmPostTaskName: warmPostTask(cache, log),
	})
	if err != nil {
		return err
	}

	worker := server.NewWorker(consumerTag, 0)
	worker.SetErrorHandler(func(err error) {
		log.Errorf("Something went wrong: %s", err)
	})

	return worker.Launch()
}

func createWarmPostTask(postId string) tasks.Signature {
	task := tasks.Signature{
		Name: warmPostTaskName,
		Args: []tasks.Arg{
			{
				Type:  "string",
				Value: postId,
			},
		},
	}
	return task
}
