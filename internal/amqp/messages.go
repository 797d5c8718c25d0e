package amqp

import (
	"encoding/json"
	"time"
)

// JobsChangedMessage signals that a user's job collection changed
// upstream. It carries no job data: consumers re-fetch the whole
// collection, since refresh is always full replacement, never an
// incremental patch.
type JobsChangedMessage struct {
	UserID    string    `json:"userId"`
	JobID     string    `json:"jobId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewJobsChangedMessage(userID, jobID string) *JobsChangedMessage {
	return &JobsChangedMessage{
		UserID:    userID,
		JobID:     jobID,
		Timestamp: time.Now(),
	}
}

func (m *JobsChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func JobsChangedMessageFromJSON(data []byte) (*JobsChangedMessage, error) {
	var msg JobsChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
