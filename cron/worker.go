package cron

import (
	"context"
	"encoding/json"
	"time"

	"pulsebot/config"
	"pulsebot/models"
	"pulsebot/services/decision"
	"pulsebot/services/messaging"
	"pulsebot/services/tasks"
	"pulsebot/store"
	"pulsebot/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// InitFollowupWorker runs the async nudge worker in background.
func InitFollowupWorker(st store.SessionStore, channel messaging.MessageChannel, scheduler *tasks.Scheduler) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeSendFollowup, handleFollowupTask(st, channel, scheduler))

	go func() {
		logger := utils.GetLogger()
		logger.Info("followup worker starting")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				logger.Error("followup worker failed to start",
					zap.Int("attempt", attempts), zap.Error(err))
				if attempts == maxAttempts {
					logger.Fatal("followup worker: max retry attempts reached")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()
}

// handleFollowupTask delivers the next nudge if the contact has stayed quiet
// since the task was scheduled and the callback is still unbooked. A fresh
// customer message always supersedes a pending nudge.
func handleFollowupTask(st store.SessionStore, channel messaging.MessageChannel, scheduler *tasks.Scheduler) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		logger := utils.GetLogger()

		var p models.FollowupPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			logger.Error("followup: invalid payload", zap.Error(err))
			return err
		}

		sess := st.Get(ctx, p.ContactID)
		switch {
		case sess.Booked:
			logger.Debug("followup: contact already booked, skipping",
				zap.String("contactId", p.ContactID))
			return nil
		case sess.LastCustomerAt.After(time.Unix(p.ScheduledAt, 0)):
			// The customer spoke after this nudge was queued; the newer
			// message scheduled its own follow-up.
			return nil
		case sess.NudgesSent >= len(decision.Nudges):
			return nil
		}

		text := decision.Nudges[sess.NudgesSent]
		mctx, cancel := context.WithTimeout(ctx, config.MessageTimeout())
		err := channel.Send(mctx, p.Contact, text)
		cancel()
		if err != nil {
			logger.Warn("followup: delivery failed",
				zap.String("contactId", p.ContactID), zap.Error(err))
			return err
		}

		st.AppendTurn(ctx, p.ContactID, "assistant", text)
		st.RecordNudge(ctx, p.ContactID)

		if sess.NudgesSent+1 < len(decision.Nudges) && scheduler != nil {
			if err := scheduler.ScheduleFollowup(p.Contact, time.Now().Add(config.FollowupDelay())); err != nil {
				logger.Warn("followup: failed to queue next nudge",
					zap.String("contactId", p.ContactID), zap.Error(err))
			}
		}
		return nil
	}
}
