package task

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"schedule-compiler/core/constants"
	"schedule-compiler/core/logger"
	"schedule-compiler/modules/meetingassist/dto"
	"schedule-compiler/modules/meetingassist/service"

	"github.com/hibiken/asynq"
)

// processTimeout bounds one queued run.
const processTimeout = 5 * time.Minute

// ScheduleAssistHandler runs queued schedule-assist requests.
type ScheduleAssistHandler struct {
	svc service.ScheduleAssistServiceInterface
}

func NewScheduleAssistHandler(svc service.ScheduleAssistServiceInterface) *ScheduleAssistHandler {
	return &ScheduleAssistHandler{svc: svc}
}

// Register mounts the handler on mux.
func (h *ScheduleAssistHandler) Register(mux *asynq.ServeMux) {
	mux.Handle(constants.TaskScheduleAssist, h)
}

// ProcessTask implements asynq.Handler. Tasks are enqueued without retries, so a
// malformed payload is skipped rather than failed.
func (h *ScheduleAssistHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var req dto.ScheduleAssistRequest
	if err := json.Unmarshal(t.Payload(), &req); err != nil {
		logger.Error("ScheduleAssistHandler:ProcessTask:Decode", "error", err)
		return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
	}

	ctx, cancel := context.WithTimeout(ctx, processTimeout)
	defer cancel()

	report, appErr := h.svc.Run(ctx, &req)
	if appErr != nil {
		logger.Error("ScheduleAssistHandler:ProcessTask", "userId", req.UserID, "code", appErr.Code, "error", appErr)
		return appErr
	}

	logger.Info("ScheduleAssistHandler:ProcessTask:Done", "userId", req.UserID, "singletonId", report.SingletonID)
	return nil
}
