package domain

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

type TaskState string

const (
	TaskStatePending      TaskState = "pending"
	TaskStateRetryPending TaskState = "retry_pending"
	TaskStateFired        TaskState = "fired"
	TaskStateCancelled    TaskState = "cancelled"
)

// taskNamespace scopes delivery task ids so they never collide with other v5 uuids.
var taskNamespace = uuid.MustParse("6f1c2a0e-5b7d-4e43-9c1a-3d2f8b9e7a10")

// DeliveryRequest asks the scheduler to send Payload to ChatID after Delay.
type DeliveryRequest struct {
	ChatID           int64
	ReplyToMessageID int
	Key              string
	Payload          string
	Delay            time.Duration
}

// ScheduledDelivery is a pending delayed send owned by the scheduler.
type ScheduledDelivery struct {
	TaskID           string
	ChatID           int64
	ReplyToMessageID int
	Key              string
	Payload          string
	EnqueuedAt       time.Time
	FireAt           time.Time
	Attempts         int
	State            TaskState
}

func (d ScheduledDelivery) Response() Response {
	return Response{
		ChatID:           d.ChatID,
		ReplyToMessageID: d.ReplyToMessageID,
		Text:             d.Payload,
	}
}

// NewTaskID derives a task id from the chat, the trigger key and the enqueue time.
func NewTaskID(chatID int64, key string, enqueuedAt time.Time) string {
	name := strconv.FormatInt(chatID, 10) + "|" + key + "|" + strconv.FormatInt(enqueuedAt.UnixNano(), 10)
	return uuid.NewSHA1(taskNamespace, []byte(name)).String()
}
