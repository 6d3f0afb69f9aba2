package utils

import (
	"foodia-handoff/pkg/directions"
	"foodia-handoff/pkg/tracking"
	"log"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	// Server configuration
	Port         string `yaml:"PORT"`
	RateLimitMax int    `yaml:"RATE_LIMIT_MAX"`

	// Database configuration
	DBUser     string `yaml:"DB_USER"`
	DBName     string `yaml:"DB_NAME"`
	DBPassword string `yaml:"DB_PASSWORD"`
	DBPort     string `yaml:"DB_PORT"`
	DBHost     string `yaml:"DB_HOST"`

	// JWT
	JWTSecret string `yaml:"JWT_SECRET"`

	// Mailing configuration
	AppURL           string `yaml:"APP_URL"`
	SMTPHost         string `yaml:"SMTP_HOST"`
	SMTPPort         string `yaml:"SMTP_PORT"`
	SMTPSenderName   string `yaml:"SMTP_SENDER_NAME"`
	SMTPAuthEmail    string `yaml:"SMTP_AUTH_EMAIL"`
	SMTPAuthPassword string `yaml:"SMTP_AUTH_PASSWORD"`

	// AWS S3 configuration
	AWSS3Bucket  string `yaml:"AWS_S3_BUCKET"`
	AWSS3Region  string `yaml:"AWS_S3_REGION"`
	AWSAccessKey string `yaml:"AWS_ACCESS_KEY"`
	AWSSecretKey string `yaml:"AWS_SECRET_KEY"`

	// Realtime channel: "memory" or "mqtt"
	ChannelDriver   string `yaml:"CHANNEL_DRIVER"`
	MQTTBrokerURL   string `yaml:"MQTT_BROKER_URL"`
	MQTTClientID    string `yaml:"MQTT_CLIENT_ID"`
	MQTTUsername    string `yaml:"MQTT_USERNAME"`
	MQTTPassword    string `yaml:"MQTT_PASSWORD"`
	MQTTTopicPrefix string `yaml:"MQTT_TOPIC_PREFIX"`

	// Directions and geocoding provider
	MapboxBaseURL       string `yaml:"MAPBOX_BASE_URL"`
	MapboxAccessToken   string `yaml:"MAPBOX_ACCESS_TOKEN"`
	MapboxProfile       string `yaml:"MAPBOX_PROFILE"`
	DirectionsTimeoutMs int    `yaml:"DIRECTIONS_TIMEOUT_MS"`

	// Tracking
	SampleIntervalMs      int     `yaml:"SAMPLE_INTERVAL_MS"`
	PublishIntervalMs     int     `yaml:"PUBLISH_INTERVAL_MS"`
	HighAccuracyTimeoutMs int     `yaml:"HIGH_ACCURACY_TIMEOUT_MS"`
	LowAccuracyTimeoutMs  int     `yaml:"LOW_ACCURACY_TIMEOUT_MS"`
	FallbackAfter         int     `yaml:"FALLBACK_AFTER"`
	ETAIntervalMs         int     `yaml:"ETA_INTERVAL_MS"`
	AverageSpeedKmh       float64 `yaml:"AVERAGE_SPEED_KMH"`
	GeofenceRadiusKm      float64 `yaml:"GEOFENCE_RADIUS_KM"`
	GeofenceExitMargin    float64 `yaml:"GEOFENCE_EXIT_MARGIN"`
	ShareTTLHours         int     `yaml:"SHARE_TTL_HOURS"`
}

var config Config

func LoadConfig() {
	file, err := os.ReadFile("config.yaml")
	if err != nil {
		log.Printf("Error reading YAML file: %s\n", err)
		return
	}

	err = yaml.Unmarshal(file, &config)
	if err != nil {
		log.Printf("Error parsing YAML file: %s\n", err)
		return
	}

	// Set environment variables for keys that should be accessible via os.Getenv
	os.Setenv("JWT_SECRET", config.JWTSecret)
	os.Setenv("AWS_S3_BUCKET", config.AWSS3Bucket)
	os.Setenv("AWS_S3_REGION", config.AWSS3Region)
	os.Setenv("AWS_ACCESS_KEY", config.AWSAccessKey)
	os.Setenv("AWS_SECRET_KEY", config.AWSSecretKey)
	os.Setenv("MAPBOX_ACCESS_TOKEN", config.MapboxAccessToken)
}

func itoa(v int) string {
	if v == 0 {
		return ""
	}
	return strconv.Itoa(v)
}

func ftoa(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func GetConfig(key string) string {
	switch key {
	case "PORT":
		return config.Port
	case "RATE_LIMIT_MAX":
		return itoa(config.RateLimitMax)
	case "DB_USER":
		return config.DBUser
	case "DB_NAME":
		return config.DBName
	case "DB_PASSWORD":
		return config.DBPassword
	case "DB_PORT":
		return config.DBPort
	case "DB_HOST":
		return config.DBHost
	case "JWT_SECRET":
		return config.JWTSecret
	case "APP_URL":
		return config.AppURL
	case "SMTP_HOST":
		return config.SMTPHost
	case "SMTP_PORT":
		return config.SMTPPort
	case "SMTP_SENDER_NAME":
		return config.SMTPSenderName
	case "SMTP_AUTH_EMAIL":
		return config.SMTPAuthEmail
	case "SMTP_AUTH_PASSWORD":
		return config.SMTPAuthPassword
	case "AWS_S3_BUCKET":
		return config.AWSS3Bucket
	case "AWS_S3_REGION":
		return config.AWSS3Region
	case "AWS_ACCESS_KEY":
		return config.AWSAccessKey
	case "AWS_SECRET_KEY":
		return config.AWSSecretKey
	case "CHANNEL_DRIVER":
		return config.ChannelDriver
	case "MQTT_BROKER_URL":
		return config.MQTTBrokerURL
	case "MQTT_CLIENT_ID":
		return config.MQTTClientID
	case "MQTT_USERNAME":
		return config.MQTTUsername
	case "MQTT_PASSWORD":
		return config.MQTTPassword
	case "MQTT_TOPIC_PREFIX":
		return config.MQTTTopicPrefix
	case "MAPBOX_BASE_URL":
		return config.MapboxBaseURL
	case "MAPBOX_ACCESS_TOKEN":
		return config.MapboxAccessToken
	case "MAPBOX_PROFILE":
		return config.MapboxProfile
	case "DIRECTIONS_TIMEOUT_MS":
		return itoa(config.DirectionsTimeoutMs)
	case "SAMPLE_INTERVAL_MS":
		return itoa(config.SampleIntervalMs)
	case "PUBLISH_INTERVAL_MS":
		return itoa(config.PublishIntervalMs)
	case "HIGH_ACCURACY_TIMEOUT_MS":
		return itoa(config.HighAccuracyTimeoutMs)
	case "LOW_ACCURACY_TIMEOUT_MS":
		return itoa(config.LowAccuracyTimeoutMs)
	case "FALLBACK_AFTER":
		return itoa(config.FallbackAfter)
	case "ETA_INTERVAL_MS":
		return itoa(config.ETAIntervalMs)
	case "AVERAGE_SPEED_KMH":
		return ftoa(config.AverageSpeedKmh)
	case "GEOFENCE_RADIUS_KM":
		return ftoa(config.GeofenceRadiusKm)
	case "GEOFENCE_EXIT_MARGIN":
		return ftoa(config.GeofenceExitMargin)
	case "SHARE_TTL_HOURS":
		return itoa(config.ShareTTLHours)
	default:
		return ""
	}
}

// GetDuration reads a millisecond key, falling back to def when unset.
func GetDuration(key string, def time.Duration) time.Duration {
	ms, err := strconv.Atoi(GetConfig(key))
	if err != nil || ms <= 0 {
		return def
	}
	return time.Duration(ms) * time.Millisecond
}

func getInt(key string, def int) int {
	v, err := strconv.Atoi(GetConfig(key))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func getFloat(key string, def float64) float64 {
	v, err := strconv.ParseFloat(GetConfig(key), 64)
	if err != nil || v <= 0 {
		return def
	}
	return v
}

// LoadTrackingConfig builds the tracking settings from config.yaml on top of
// tracking.DefaultConfig and validates the result.
func LoadTrackingConfig() (tracking.Config, error) {
	cfg := tracking.DefaultConfig()
	cfg.SampleInterval = GetDuration("SAMPLE_INTERVAL_MS", cfg.SampleInterval)
	cfg.PublishInterval = GetDuration("PUBLISH_INTERVAL_MS", cfg.PublishInterval)
	cfg.HighAccuracyTimeout = GetDuration("HIGH_ACCURACY_TIMEOUT_MS", cfg.HighAccuracyTimeout)
	cfg.LowAccuracyTimeout = GetDuration("LOW_ACCURACY_TIMEOUT_MS", cfg.LowAccuracyTimeout)
	cfg.FallbackAfter = getInt("FALLBACK_AFTER", cfg.FallbackAfter)
	cfg.ETAInterval = GetDuration("ETA_INTERVAL_MS", cfg.ETAInterval)
	cfg.AverageSpeedKmh = getFloat("AVERAGE_SPEED_KMH", cfg.AverageSpeedKmh)
	cfg.GeofenceRadiusKm = getFloat("GEOFENCE_RADIUS_KM", cfg.GeofenceRadiusKm)
	cfg.GeofenceExitMargin = getFloat("GEOFENCE_EXIT_MARGIN", cfg.GeofenceExitMargin)

	if err := ValidateStruct(cfg); err != nil {
		return tracking.DefaultConfig(), err
	}
	return cfg, nil
}

// ShareTTL is the lifetime of a share link.
func ShareTTL() time.Duration {
	return time.Duration(getInt("SHARE_TTL_HOURS", 24)) * time.Hour
}

// RateLimitMax is the per-client request budget per second.
func RateLimitMax() int {
	return getInt("RATE_LIMIT_MAX", 10)
}

// DirectionsConfig reads the routing provider settings.
func DirectionsConfig() directions.Config {
	return directions.Config{
		BaseURL:     GetConfig("MAPBOX_BASE_URL"),
		AccessToken: GetConfig("MAPBOX_ACCESS_TOKEN"),
		Profile:     GetConfig("MAPBOX_PROFILE"),
		Timeout:     GetDuration("DIRECTIONS_TIMEOUT_MS", 5*time.Second),
		Limit:       5,
	}
}
