package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// SQSAPI defines the subset of the SQS client used by the scheduler.
type SQSAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// maxSQSDelay is the longest delay SQS supports on a single message.
const maxSQSDelay = 900 * time.Second

// SQSScheduler implements the Scheduler interface using AWS SQS delayed
// delivery.
type SQSScheduler struct {
	Client   SQSAPI
	QueueURL string
}

// NewSQSScheduler creates a new SQSScheduler.
func NewSQSScheduler(client SQSAPI, queueURL string) *SQSScheduler {
	return &SQSScheduler{
		Client:   client,
		QueueURL: queueURL,
	}
}

// Make sure we conform to the interface
var _ Scheduler = (*SQSScheduler)(nil)

// ScheduleExpiry sends the expiry message to SQS with the reservation TTL as
// the delivery delay. Delays beyond the SQS maximum are capped; the sweeper
// catches any order whose message arrived early or was lost.
func (s *SQSScheduler) ScheduleExpiry(ctx context.Context, orderID string, delay time.Duration) error {
	body, err := json.Marshal(ExpiryMessage{OrderID: orderID})
	if err != nil {
		return fmt.Errorf("failed to marshal expiry message for SQS: %w", err)
	}

	if delay > maxSQSDelay {
		delay = maxSQSDelay
	}
	if delay < 0 {
		delay = 0
	}

	_, err = s.Client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:     aws.String(s.QueueURL),
		MessageBody:  aws.String(string(body)),
		DelaySeconds: int32(delay / time.Second),
	})
	if err != nil {
		return fmt.Errorf("failed to send expiry message to SQS: %w", err)
	}

	return nil
}
