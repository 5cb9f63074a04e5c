package tasks

import (
	"encoding/json"
	"time"

	"pulsebot/models"

	"github.com/hibiken/asynq"
)

const TypeSendFollowup = "followup:send"

// NewFollowupTask builds the delayed nudge-check task for one contact.
func NewFollowupTask(payload models.FollowupPayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeSendFollowup, b)
	opts := []asynq.Option{asynq.ProcessAt(fireAt)}

	return task, opts, nil
}

// Scheduler enqueues follow-up tasks through asynq. It satisfies the
// orchestrator's FollowupScheduler dependency.
type Scheduler struct {
	Client *asynq.Client
}

func (s *Scheduler) ScheduleFollowup(contact models.Contact, fireAt time.Time) error {
	payload := models.FollowupPayload{
		ContactID:   contact.ID,
		Contact:     contact,
		ScheduledAt: time.Now().Unix(),
	}
	task, opts, err := NewFollowupTask(payload, fireAt)
	if err != nil {
		return err
	}
	_, err = s.Client.Enqueue(task, opts...)
	return err
}
