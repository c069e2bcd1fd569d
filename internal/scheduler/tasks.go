package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskLeadScoreRefresh = "leads.score.refresh"

type LeadScoreRefreshPayload struct {
	DealerID string `json:"dealerId"`
}

func NewLeadScoreRefreshTask(payload LeadScoreRefreshPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLeadScoreRefresh, data), nil
}

func ParseLeadScoreRefreshPayload(task *asynq.Task) (LeadScoreRefreshPayload, error) {
	var payload LeadScoreRefreshPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return LeadScoreRefreshPayload{}, err
	}
	return payload, nil
}
