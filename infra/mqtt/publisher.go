// Package mqtt publishes generated schedules to an MQTT broker. Each weekday
// goes to its own retained topic so late subscribers such as shift displays
// get the current plan as soon as they connect.
package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/kilianp07/ridecheck/core/scheduler"
	"github.com/kilianp07/ridecheck/core/timeline"
	"github.com/kilianp07/ridecheck/infra/logger"
)

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// DayMessage is the retained payload of one weekday topic.
type DayMessage struct {
	MessageID   string                `json:"message_id"`
	RunID       string                `json:"run_id"`
	GeneratedAt time.Time             `json:"generated_at"`
	Day         string                `json:"day"`
	Status      scheduler.Status      `json:"status"`
	Capacity    int                   `json:"capacity"`
	Timeline    timeline.Day          `json:"timeline"`
	ClosedRides []string              `json:"closed_rides,omitempty"`
	Unassigned  []string              `json:"unassigned,omitempty"`
	Errors      []*scheduler.DayError `json:"errors,omitempty"`
}

// WeekMessage summarises a run on the <topic>/week topic.
type WeekMessage struct {
	MessageID   string          `json:"message_id"`
	RunID       string          `json:"run_id"`
	GeneratedAt time.Time       `json:"generated_at"`
	Complete    bool            `json:"complete"`
	Stats       scheduler.Stats `json:"stats"`
}

// Publisher sends schedules with Eclipse Paho.
type Publisher struct {
	cli        pahoClient
	topic      string
	qos        byte
	maxRetries int
	backoff    time.Duration
	logger     logger.Logger
}

// NewPublisher connects to the broker described by cfg.
func NewPublisher(cfg Config) (*Publisher, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}
	log := logger.New("mqtt_publisher")
	opts.OnConnect = func(paho.Client) {
		log.Infof("MQTT connected to %s", cfg.Broker)
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect: %w", token.Error())
	}
	return &Publisher{
		cli:        c,
		topic:      cfg.Topic,
		qos:        cfg.QoS,
		maxRetries: cfg.MaxRetries,
		backoff:    time.Duration(cfg.BackoffMS) * time.Millisecond,
		logger:     log,
	}, nil
}

// NewClientOptions builds mqtt client options from Config.
func NewClientOptions(cfg Config) (*paho.ClientOptions, error) {
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	opts.SetConnectTimeout(10 * time.Second)
	if cfg.AuthMethod == "username_password" || cfg.AuthMethod == "both" || cfg.AuthMethod == "" {
		if cfg.Username != "" {
			opts.SetUsername(cfg.Username)
		}
		if cfg.Password != "" {
			opts.SetPassword(cfg.Password)
		}
	}
	if cfg.UseTLS || cfg.AuthMethod == "tls" || cfg.AuthMethod == "both" {
		tlsCfg, err := cfg.LoadTLSConfig()
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}
	if cfg.LWTTopic != "" {
		opts.SetWill(cfg.LWTTopic, cfg.LWTPayload, cfg.LWTQoS, cfg.LWTRetain)
	}
	return opts, nil
}

// DayTopic returns the topic of a weekday under prefix.
func DayTopic(prefix, day string) string {
	return prefix + "/" + strings.ToLower(day)
}

// PublishWeek sends one retained message per weekday followed by the run
// summary. It stops at the first message that cannot be delivered.
func (p *Publisher) PublishWeek(ctx context.Context, ws scheduler.WeeklySchedule) error {
	for _, ds := range ws.Days {
		msg := DayMessage{
			MessageID:   uuid.NewString(),
			RunID:       ws.RunID,
			GeneratedAt: ws.GeneratedAt,
			Day:         ds.Day.String(),
			Status:      ds.Status,
			Capacity:    ds.Capacity,
			Timeline:    ds.Timeline,
			ClosedRides: ds.ClosedRides,
			Unassigned:  ds.Unassigned,
			Errors:      ds.Errors,
		}
		if err := p.publish(ctx, DayTopic(p.topic, msg.Day), msg); err != nil {
			return err
		}
	}
	return p.publish(ctx, p.topic+"/week", WeekMessage{
		MessageID:   uuid.NewString(),
		RunID:       ws.RunID,
		GeneratedAt: ws.GeneratedAt,
		Complete:    ws.Complete(),
		Stats:       ws.Stats,
	})
}

func (p *Publisher) publish(ctx context.Context, topic string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var publishErr error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		token := p.cli.Publish(topic, p.qos, true, payload)
		token.Wait()
		publishErr = token.Error()
		if publishErr == nil {
			p.logger.Debugf("published %d bytes to %s", len(payload), topic)
			return nil
		}
		p.logger.Errorf("publish attempt %d to %s failed: %v", attempt+1, topic, publishErr)
		if attempt == p.maxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.backoff * time.Duration(1<<attempt)):
		}
	}
	return fmt.Errorf("publish %s: %w", topic, publishErr)
}

// Disconnect gracefully closes the MQTT connection.
func (p *Publisher) Disconnect() {
	if p.cli != nil && p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
}
