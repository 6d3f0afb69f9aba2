package config

import (
	"foodia-handoff/internal/utils"
	"foodia-handoff/pkg/channel"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
)

// NewLocationChannel picks the realtime transport from CHANNEL_DRIVER. The
// in-process channel is the default.
func NewLocationChannel() (channel.LocationChannel, error) {
	if utils.GetConfig("CHANNEL_DRIVER") != "mqtt" {
		log.Info("location channel: in-memory")
		return channel.NewMemoryChannel(), nil
	}

	clientID := utils.GetConfig("MQTT_CLIENT_ID")
	if clientID == "" {
		clientID = "foodia-handoff-" + uuid.NewString()
	}
	cfg := channel.MQTTConfig{
		BrokerURL:      utils.GetConfig("MQTT_BROKER_URL"),
		ClientID:       clientID,
		Username:       utils.GetConfig("MQTT_USERNAME"),
		Password:       utils.GetConfig("MQTT_PASSWORD"),
		TopicPrefix:    utils.GetConfig("MQTT_TOPIC_PREFIX"),
		ConnectTimeout: 10 * time.Second,
		PublishTimeout: 2 * time.Second,
	}
	if err := utils.ValidateStruct(cfg); err != nil {
		return nil, err
	}

	ch, err := channel.NewMQTTChannel(cfg)
	if err != nil {
		return nil, err
	}
	log.Infof("location channel: mqtt %s", cfg.BrokerURL)
	return ch, nil
}
