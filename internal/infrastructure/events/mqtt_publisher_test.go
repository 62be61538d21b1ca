package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"bloodlink/internal/domain/request"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingClient struct {
	topic   string
	qos     byte
	payload []byte
	err     error
}

func (r *recordingClient) Publish(topic string, qos byte, _ bool, payload []byte) error {
	r.topic, r.qos, r.payload = topic, qos, payload
	return r.err
}

func TestMQTTPublisherPublish(t *testing.T) {
	client := &recordingClient{}
	pub := NewMQTTPublisher(client, "bloodlink/", 1)

	event := request.Event{
		Type:       request.EventCreated,
		RequestID:  uuid.New(),
		BloodType:  "AB-",
		City:       "New Delhi",
		Urgency:    request.UrgencyCritical,
		Status:     request.StatusActive,
		OccurredAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	require.NoError(t, pub.Publish(context.Background(), event))
	assert.Equal(t, "bloodlink/requests/new-delhi/ABneg", client.topic)
	assert.Equal(t, byte(1), client.qos)

	var decoded request.Event
	require.NoError(t, json.Unmarshal(client.payload, &decoded))
	assert.Equal(t, event.RequestID, decoded.RequestID)
	assert.Equal(t, request.EventCreated, decoded.Type)
}

func TestMQTTPublisherWrapsClientError(t *testing.T) {
	client := &recordingClient{err: errors.New("broker down")}
	pub := NewMQTTPublisher(client, "bloodlink", 0)

	err := pub.Publish(context.Background(), request.Event{Type: request.EventResponded, BloodType: "O+"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
	assert.Equal(t, "bloodlink/requests/unknown/Opos", client.topic)
}
