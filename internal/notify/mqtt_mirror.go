package notify

import (
	"context"
	"encoding/json"
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// MQTTMirror publishes alert records to an MQTT topic for other clients to
// consume. Write-only: read access to the feed is out of scope here.
type MQTTMirror struct {
	client mqtt.Client
	topic  string
}

// NewMQTTMirror connects to the broker and returns a mirror publishing to
// the given topic
func NewMQTTMirror(broker, clientID, topic string) (*MQTTMirror, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect: %w", token.Error())
	}
	return &MQTTMirror{client: client, topic: topic}, nil
}

// Publish sends one alert record as JSON at QoS 1
func (m *MQTTMirror) Publish(ctx context.Context, rec AlertRecord) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal alert record: %w", err)
	}

	token := m.client.Publish(m.topic, 1, false, body)
	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close disconnects from the broker
func (m *MQTTMirror) Close() {
	m.client.Disconnect(250)
}
