package redisclient

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const statusChannel = "doctor.status"

// StatusPublisher broadcasts doctor status changes to subscribed clients.
// The channel is fire-and-forget: no ordering guarantee relative to booking
// operations, and a lost message only delays the next status refresh.
type StatusPublisher interface {
	PublishDoctorStatus(ctx context.Context, doctorID uuid.UUID, status string) error
}

type statusEvent struct {
	DoctorID string `json:"doctor_id"`
	Status   string `json:"status"`
}

type redisStatusPublisher struct {
	client *redis.Client
}

func NewRedisStatusPublisher(client *redis.Client) StatusPublisher {
	return &redisStatusPublisher{client: client}
}

func (p *redisStatusPublisher) PublishDoctorStatus(ctx context.Context, doctorID uuid.UUID, status string) error {
	payload, err := json.Marshal(statusEvent{
		DoctorID: doctorID.String(),
		Status:   status,
	})
	if err != nil {
		return fmt.Errorf("marshal status event: %w", err)
	}

	if err := p.client.Publish(ctx, statusChannel, payload).Err(); err != nil {
		return fmt.Errorf("publish doctor status: %w", err)
	}
	return nil
}
