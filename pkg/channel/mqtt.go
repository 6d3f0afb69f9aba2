package channel

import (
	"context"
	"fmt"
	"foodia-handoff/domain"
	"strings"
	"sync/atomic"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gofiber/fiber/v2/log"
)

type MQTTConfig struct {
	BrokerURL      string `validate:"required"`
	ClientID       string `validate:"required"`
	Username       string
	Password       string
	TopicPrefix    string
	ConnectTimeout time.Duration `validate:"gt=0"`
	PublishTimeout time.Duration `validate:"gt=0"`
}

// MQTTChannel publishes retained QoS 0 messages so a reconnecting subscriber
// immediately gets the latest position. One broker subscription per subject
// is shared by all local subscribers.
type MQTTChannel struct {
	client mqtt.Client
	cfg    MQTTConfig
	hub    *hub
}

func NewMQTTChannel(cfg MQTTConfig) (*MQTTChannel, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.BrokerURL).
		SetClientID(cfg.ClientID).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetAutoReconnect(true).
		SetConnectTimeout(cfg.ConnectTimeout)
	opts = opts.SetOrderMatters(false)

	var current atomic.Pointer[MQTTChannel]
	opts.SetOnConnectHandler(func(client mqtt.Client) {
		if c := current.Load(); c != nil {
			c.resubscribe()
		}
	})
	opts.SetConnectionLostHandler(func(client mqtt.Client, err error) {
		log.Warnf("mqtt connection lost: %v", err)
	})

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(cfg.ConnectTimeout) {
		return nil, domain.Transient("mqtt connect", fmt.Errorf("timeout after %s", cfg.ConnectTimeout))
	}
	if err := token.Error(); err != nil {
		return nil, domain.Transient("mqtt connect", err)
	}
	log.Infof("connected to MQTT broker %s as %s", cfg.BrokerURL, cfg.ClientID)

	c := newMQTTChannel(client, cfg)
	current.Store(c)
	return c, nil
}

func newMQTTChannel(client mqtt.Client, cfg MQTTConfig) *MQTTChannel {
	c := &MQTTChannel{client: client, cfg: cfg, hub: newHub()}
	c.hub.onFirst = c.attach
	c.hub.onLast = c.detach
	return c
}

// topic places subject under the configured prefix as its own topic level.
func (c *MQTTChannel) topic(subject string) string {
	prefix := strings.TrimRight(c.cfg.TopicPrefix, "/")
	if prefix == "" {
		return subject
	}
	return prefix + "/" + subject
}

func (c *MQTTChannel) Publish(ctx context.Context, subject string, loc domain.Coordinate) error {
	payload, err := encode(loc)
	if err != nil {
		return err
	}
	return c.publish(ctx, "mqtt publish", subject, payload)
}

// Forget clears the retained message on subject with an empty retained publish.
func (c *MQTTChannel) Forget(ctx context.Context, subject string) error {
	return c.publish(ctx, "mqtt forget", subject, []byte{})
}

func (c *MQTTChannel) publish(ctx context.Context, op, subject string, payload []byte) error {
	token := c.client.Publish(c.topic(subject), 0, true, payload)

	timeout := c.cfg.PublishTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if d := time.Until(deadline); d < timeout {
			timeout = d
		}
	}
	if !token.WaitTimeout(timeout) {
		return domain.Transient(op, fmt.Errorf("timeout after %s", timeout))
	}
	if err := token.Error(); err != nil {
		return domain.Transient(op, err)
	}
	return nil
}

func (c *MQTTChannel) Subscribe(subject string, fn Handler) (Unsubscribe, error) {
	s, err := c.hub.add(subject, fn)
	if err != nil {
		return nil, err
	}
	return c.hub.unsubscribeFunc(subject, s), nil
}

// attach runs with the hub lock held.
func (c *MQTTChannel) attach(subject string) error {
	token := c.client.Subscribe(c.topic(subject), 0, c.onMessage(subject))
	if !token.WaitTimeout(c.cfg.PublishTimeout) {
		return domain.Transient("mqtt subscribe", fmt.Errorf("timeout after %s", c.cfg.PublishTimeout))
	}
	if err := token.Error(); err != nil {
		return domain.Transient("mqtt subscribe", err)
	}
	return nil
}

func (c *MQTTChannel) detach(subject string) {
	token := c.client.Unsubscribe(c.topic(subject))
	if token.WaitTimeout(c.cfg.PublishTimeout) && token.Error() != nil {
		log.Warnf("mqtt unsubscribe %s: %v", subject, token.Error())
	}
}

func (c *MQTTChannel) onMessage(subject string) mqtt.MessageHandler {
	return func(_ mqtt.Client, msg mqtt.Message) {
		if len(msg.Payload()) == 0 {
			return
		}
		loc, ok := decode(msg.Payload())
		if !ok {
			log.Warnf("mqtt dropped malformed payload on %s", msg.Topic())
			return
		}
		c.hub.dispatch(subject, loc)
	}
}

func (c *MQTTChannel) resubscribe() {
	c.hub.mu.Lock()
	subjects := make([]string, 0, len(c.hub.topics))
	for subject := range c.hub.topics {
		subjects = append(subjects, subject)
	}
	c.hub.mu.Unlock()
	for _, subject := range subjects {
		c.client.Subscribe(c.topic(subject), 0, c.onMessage(subject))
	}
}

func (c *MQTTChannel) Close() error {
	c.hub.closeAll()
	c.client.Disconnect(250)
	return nil
}
