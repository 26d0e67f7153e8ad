package gps

import (
	"context"
	"encoding/json"
	"sync"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/sirupsen/logrus"
)

// positionReport is the JSON payload driver devices publish on the position
// topic.
type positionReport struct {
	TripID    string  `json:"tripID"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Speed     float64 `json:"speed"`
	Heading   float64 `json:"heading"`
	Precision float64 `json:"precision"`
}

// MQTTSource keeps the latest device-reported position per trip, fed by an
// MQTT subscription. The tracker snapshots it on its own schedule, so a
// chatty device cannot flood the sample history.
type MQTTSource struct {
	client mqtt.Client
	log    logrus.FieldLogger

	mu     sync.RWMutex
	latest map[string]Position
}

func NewMQTTSource(brokerURL, clientID, topic string, log logrus.FieldLogger) (*MQTTSource, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	src := &MQTTSource{log: log, latest: make(map[string]Position)}

	opts := mqtt.NewClientOptions().
		AddBroker(brokerURL).
		SetClientID(clientID).
		SetAutoReconnect(true)
	src.client = mqtt.NewClient(opts)

	if token := src.client.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	if token := src.client.Subscribe(topic, 1, src.handleMessage); token.Wait() && token.Error() != nil {
		src.client.Disconnect(250)
		return nil, token.Error()
	}
	return src, nil
}

func (s *MQTTSource) handleMessage(_ mqtt.Client, msg mqtt.Message) {
	var report positionReport
	if err := json.Unmarshal(msg.Payload(), &report); err != nil {
		s.log.WithError(err).Warn("discarding malformed position report")
		return
	}
	if report.TripID == "" {
		return
	}
	s.mu.Lock()
	s.latest[report.TripID] = Position{
		Latitude:  report.Latitude,
		Longitude: report.Longitude,
		Speed:     report.Speed,
		Heading:   report.Heading,
		Precision: report.Precision,
	}
	s.mu.Unlock()
}

// Position returns the most recent device report for the trip, or
// ErrPositionUnavailable when the device has not reported yet.
func (s *MQTTSource) Position(_ context.Context, tripID string) (Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pos, ok := s.latest[tripID]
	if !ok {
		return Position{}, ErrPositionUnavailable
	}
	return pos, nil
}

// Close drops the MQTT connection.
func (s *MQTTSource) Close() {
	s.client.Disconnect(250)
}
