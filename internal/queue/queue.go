package queue

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/hibiken/asynq"
)

// Enqueuer is satisfied by *asynq.Client.
type Enqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// EnqueuePost schedules a publish-now task. Publishing is never retried by the queue; a failed
// attempt is recorded on the post instead.
func EnqueuePost(client Enqueuer, payload PublishPostPayload, delay time.Duration) (*asynq.TaskInfo, error) {
	taskPayload, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	task := asynq.NewTask(TaskTypePublishPost, taskPayload)

	info, err := client.Enqueue(task, asynq.ProcessIn(delay), asynq.MaxRetry(0))
	if err != nil {
		return nil, err
	}

	log.Printf("Task scheduled: %+v", payload)
	return info, nil
}

// EnqueueJob triggers one run of a periodic job outside its schedule. At most one run of a job
// may be pending at a time.
func EnqueueJob(client Enqueuer, name string) (*asynq.TaskInfo, error) {
	if !IsJobName(name) {
		return nil, fmt.Errorf("unknown job %q", name)
	}

	task := asynq.NewTask(JobTaskType(name), nil)
	info, err := client.Enqueue(task, asynq.MaxRetry(0), asynq.Unique(time.Minute))
	if err != nil {
		return nil, err
	}

	log.Printf("Job triggered: %s", name)
	return info, nil
}
