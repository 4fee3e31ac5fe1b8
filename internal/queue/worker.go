package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/hibiken/asynq"
	"github.com/maheshrc27/igscheduler/internal/service"
)

func (q *Queue) HandlePublishPostTask(ctx context.Context, task *asynq.Task) error {
	var payload PublishPostPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	instagramPostID, err := q.publisher.PublishNow(ctx, payload.PostID)
	switch {
	case errors.Is(err, service.ErrPostNotClaimable), errors.Is(err, service.ErrPostNotFound):
		log.Printf("Skipping publish of post %d: %v", payload.PostID, err)
		return nil
	case err != nil:
		return fmt.Errorf("publish post %d: %v: %w", payload.PostID, err, asynq.SkipRetry)
	}

	log.Printf("Post %d published as %s", payload.PostID, instagramPostID)
	return nil
}

func (q *Queue) HandleJobTask(ctx context.Context, task *asynq.Task) error {
	name := strings.TrimPrefix(task.Type(), taskTypeJobPrefix)
	run, ok := q.jobs[name]
	if !ok {
		return fmt.Errorf("unknown job %q: %w", name, asynq.SkipRetry)
	}

	if err := run(ctx); err != nil {
		return fmt.Errorf("job %s: %w", name, err)
	}
	log.Printf("Job %s completed", name)
	return nil
}

func (q *Queue) ServeMux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskTypePublishPost, q.HandlePublishPostTask)
	for _, name := range JobNames {
		mux.HandleFunc(JobTaskType(name), q.HandleJobTask)
	}
	return mux
}
