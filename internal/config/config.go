// Package config loads service settings from a JSON config file with
// environment-variable overrides, via viper. Key names match the config.json
// the original deployment shipped (waze_api_url, update_interval_seconds).
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all service settings.
type Config struct {
	// FeedURL is the Waze Partner Hub feed endpoint.
	FeedURL string
	// PollInterval is the fixed delay between fetch cycles.
	PollInterval time.Duration
	// FetchTimeout bounds one feed HTTP request.
	FetchTimeout time.Duration

	HTTPAddr        string
	ShutdownTimeout time.Duration

	LogLevel  string
	LogFormat string

	// DataDir is where the local file store keeps the master/latest pair.
	// Ignored when S3Bucket is set.
	DataDir string

	// S3 persistence. A non-empty bucket switches the persistence adapter
	// from local files to S3 objects.
	S3Bucket string
	S3Region string
	S3Prefix string

	// Kafka announcements of newly admitted incidents (optional).
	KafkaEnabled bool
	KafkaBrokers []string
	KafkaTopic   string
}

// SetDefaults installs defaults on the given viper instance. Callers bind
// flags and env vars before Load.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("update_interval_seconds", 120)
	v.SetDefault("fetch_timeout", "30s")
	v.SetDefault("http_addr", ":8000")
	v.SetDefault("shutdown_timeout", "10s")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("data_dir", "data")
	v.SetDefault("s3_prefix", "")
	v.SetDefault("kafka_enabled", false)
	v.SetDefault("kafka_brokers", "localhost:9092")
	v.SetDefault("kafka_topic", "traffic-incidents")
}

// Load materializes and validates a Config from the viper instance.
func Load(v *viper.Viper) (*Config, error) {
	fetchTimeout, err := time.ParseDuration(v.GetString("fetch_timeout"))
	if err != nil || fetchTimeout <= 0 {
		return nil, errors.New("invalid fetch_timeout")
	}
	shutdownTimeout, err := time.ParseDuration(v.GetString("shutdown_timeout"))
	if err != nil || shutdownTimeout <= 0 {
		return nil, errors.New("invalid shutdown_timeout")
	}

	cfg := &Config{
		FeedURL:         v.GetString("waze_api_url"),
		PollInterval:    time.Duration(v.GetInt("update_interval_seconds")) * time.Second,
		FetchTimeout:    fetchTimeout,
		HTTPAddr:        v.GetString("http_addr"),
		ShutdownTimeout: shutdownTimeout,
		LogLevel:        v.GetString("log_level"),
		LogFormat:       v.GetString("log_format"),
		DataDir:         v.GetString("data_dir"),
		S3Bucket:        v.GetString("s3_bucket"),
		S3Region:        v.GetString("s3_region"),
		S3Prefix:        v.GetString("s3_prefix"),
		KafkaEnabled:    v.GetBool("kafka_enabled"),
		KafkaBrokers:    splitBrokers(v.GetString("kafka_brokers")),
		KafkaTopic:      v.GetString("kafka_topic"),
	}

	if cfg.FeedURL == "" {
		return nil, errors.New("waze_api_url is required")
	}
	if u, err := url.Parse(cfg.FeedURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("waze_api_url must be an http(s) URL: %q", cfg.FeedURL)
	}
	// 10s floor keeps a misconfigured deployment from hammering the feed.
	if cfg.PollInterval < 10*time.Second {
		return nil, fmt.Errorf("update_interval_seconds must be at least 10, got %s", cfg.PollInterval)
	}
	if cfg.S3Bucket != "" && cfg.S3Region == "" {
		return nil, errors.New("s3_region is required when s3_bucket is set")
	}
	if cfg.S3Bucket == "" && cfg.DataDir == "" {
		return nil, errors.New("data_dir is required when s3_bucket is not set")
	}
	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("kafka_brokers is required when kafka_enabled is true")
		}
		if cfg.KafkaTopic == "" {
			return nil, errors.New("kafka_topic is required when kafka_enabled is true")
		}
	}

	return cfg, nil
}

func splitBrokers(s string) []string {
	var brokers []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
