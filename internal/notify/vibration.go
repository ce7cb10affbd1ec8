package notify

import (
	"context"
	"encoding/json"
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/mr1hm/go-safety-alerts/internal/models"
)

// Publisher publishes a payload to a message topic.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload []byte) error
}

type vibrationCommand struct {
	ID      string                  `json:"id"`
	Type    models.NotificationType `json:"type"`
	Pattern []int                   `json:"pattern"`
}

// VibrationChannel tells wearables and handsets which vibration pattern to play.
type VibrationChannel struct {
	pub   Publisher
	topic string
}

func NewVibrationChannel(pub Publisher, topic string) *VibrationChannel {
	return &VibrationChannel{pub: pub, topic: topic}
}

func (v *VibrationChannel) Name() string { return "vibration" }

func (v *VibrationChannel) Notify(ctx context.Context, n models.EmergencyNotification) error {
	payload, err := json.Marshal(vibrationCommand{ID: n.ID, Type: n.Type, Pattern: n.VibrationPattern})
	if err != nil {
		return fmt.Errorf("vibration: marshal command: %w", err)
	}
	return v.pub.Publish(ctx, v.topic, payload)
}

// MQTTPublisher publishes with QoS 1 over a paho client.
type MQTTPublisher struct {
	client mqtt.Client
}

func NewMQTTPublisher(broker, clientID string) (*MQTTPublisher, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	return &MQTTPublisher{client: client}, nil
}

func (m *MQTTPublisher) Publish(ctx context.Context, topic string, payload []byte) error {
	token := m.client.Publish(topic, 1, false, payload)
	select {
	case <-token.Done():
	case <-ctx.Done():
		return fmt.Errorf("publish to %s: %w", topic, ctx.Err())
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to publish to topic %s: %w", topic, err)
	}
	return nil
}

func (m *MQTTPublisher) Close() {
	m.client.Disconnect(250)
}
