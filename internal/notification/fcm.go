package notification

import (
	"context"
	"errors"
	"fmt"

	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	androidChannelID = "church_app_channel"
	topicPrefix      = "church_"
)

var ErrPushDisabled = errors.New("push transport not configured")

// Pusher delivers a notification to every device subscribed to a topic.
type Pusher interface {
	SendToTopic(ctx context.Context, topic, title, body string) error
}

// TenantTopic is the FCM topic every device of a church subscribes to.
func TenantTopic(tenantID string) string {
	return topicPrefix + tenantID
}

// FCMPusher sends topic messages through Firebase Cloud Messaging, paced so
// a burst of flushes stays under the project's topic send quota.
type FCMPusher struct {
	client  *messaging.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewFCMPusher returns a disabled pusher when client is nil so the process can
// run without Firebase credentials. perSecond <= 0 disables pacing.
func NewFCMPusher(client *messaging.Client, perSecond float64, logger *zap.Logger) Pusher {
	if client == nil {
		logger.Warn("⚠️ FCM not configured, push delivery disabled")
		return disabledPusher{}
	}
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	return &FCMPusher{
		client:  client,
		limiter: rate.NewLimiter(limit, 1+int(perSecond)),
		logger:  logger.Named("fcm"),
	}
}

func (f *FCMPusher) SendToTopic(ctx context.Context, topic, title, body string) error {
	if err := f.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("waiting for send slot: %w", err)
	}

	message := &messaging.Message{
		Topic: topic,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: androidChannelID,
				Priority:  messaging.PriorityHigh,
			},
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Sound: "default",
				},
			},
		},
	}

	response, err := f.client.Send(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send topic message: %w", err)
	}

	f.logger.Debug("✅ FCM topic message sent", zap.String("topic", topic), zap.String("message_id", response))
	return nil
}

type disabledPusher struct{}

func (disabledPusher) SendToTopic(context.Context, string, string, string) error {
	return ErrPushDisabled
}
