package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// MQTTConfig holds the broker settings for the MQTT payload source.
type MQTTConfig struct {
	Broker   string
	ClientID string
	Username string
	Password string
	Topic    string // e.g. "vitals/+/raw"
}

// MQTTSource subscribes to a raw-payload topic and feeds each message
// through the pipeline — the same one-payload-per-call contract as the
// HTTP ingest path.
type MQTTSource struct {
	client mqtt.Client
	topic  string
	pipe   *Pipeline
	log    *slog.Logger
}

// NewMQTTSource connects to the broker. Reconnects are automatic; the
// subscription is re-established by the connect handler.
func NewMQTTSource(cfg MQTTConfig, pipe *Pipeline, log *slog.Logger) (*MQTTSource, error) {
	s := &MQTTSource{topic: cfg.Topic, pipe: pipe, log: log}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	opts.SetUsername(cfg.Username)
	opts.SetPassword(cfg.Password)
	opts.SetAutoReconnect(true)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetOnConnectHandler(func(c mqtt.Client) {
		log.Info("mqtt connected", "broker", cfg.Broker)
		if err := s.subscribe(); err != nil {
			log.Error("mqtt subscribe failed", "topic", s.topic, "error", err)
		}
	})
	opts.SetConnectionLostHandler(func(c mqtt.Client, err error) {
		log.Warn("mqtt connection lost", "error", err)
	})

	s.client = mqtt.NewClient(opts)
	if token := s.client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connecting to mqtt broker: %w", token.Error())
	}
	return s, nil
}

func (s *MQTTSource) subscribe() error {
	token := s.client.Subscribe(s.topic, 1, func(_ mqtt.Client, msg mqtt.Message) {
		out := s.pipe.Process(context.Background(), string(msg.Payload()))
		if !out.Accepted {
			s.log.Debug("mqtt payload dropped", "topic", msg.Topic(), "stage", out.Stage)
		}
	})
	if token.Wait() && token.Error() != nil {
		return token.Error()
	}
	s.log.Info("subscribed to payload topic", "topic", s.topic)
	return nil
}

// Close disconnects from the broker.
func (s *MQTTSource) Close() {
	s.client.Disconnect(250)
}
