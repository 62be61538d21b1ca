package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"bloodlink/internal/domain/request"
	"bloodlink/internal/logger"

	"go.uber.org/zap"
)

// MessagePublisher is the subset of the MQTT client the publisher needs.
type MessagePublisher interface {
	Publish(topic string, qos byte, retained bool, payload []byte) error
}

// MQTTPublisher sends request events to <prefix>/requests/<city>/<bloodType>
// so donor apps can subscribe to the requests that match them.
type MQTTPublisher struct {
	client MessagePublisher
	prefix string
	qos    byte
}

func NewMQTTPublisher(client MessagePublisher, prefix string, qos byte) *MQTTPublisher {
	return &MQTTPublisher{
		client: client,
		prefix: strings.Trim(prefix, "/"),
		qos:    qos,
	}
}

func (p *MQTTPublisher) Publish(ctx context.Context, event request.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	topic := p.Topic(event)
	if err := p.client.Publish(topic, p.qos, false, payload); err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.Type, err)
	}

	logger.Debug("Request event published",
		zap.String("event", string(event.Type)),
		zap.String("topic", topic),
		zap.String("request_id", event.RequestID.String()),
	)
	return nil
}

// Topic builds the topic for an event. City is lower-cased with spaces
// replaced; "+" and "-" in blood types are spelled out since "+" is an MQTT
// wildcard.
func (p *MQTTPublisher) Topic(event request.Event) string {
	city := strings.ToLower(strings.TrimSpace(event.City))
	city = strings.NewReplacer(" ", "-", "/", "-", "+", "", "#", "").Replace(city)
	if city == "" {
		city = "unknown"
	}
	bt := strings.NewReplacer("+", "pos", "-", "neg").Replace(event.BloodType)
	return fmt.Sprintf("%s/requests/%s/%s", p.prefix, city, bt)
}

// NoopPublisher drops every event. Used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, request.Event) error { return nil }
