package kafka_config

import (
	"strings"
	"testing"
)

func TestLoad_BookingEventDefaults(t *testing.T) {
	t.Setenv(EnvKafkaBrokers, " broker-1:9092 , ,broker-2:9092")
	t.Setenv(EnvInstanceID, "bookings-7f9c")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(cfg.Brokers) != 2 || cfg.Brokers[0] != "broker-1:9092" || cfg.Brokers[1] != "broker-2:9092" {
		t.Errorf("Brokers = %v", cfg.Brokers)
	}
	if cfg.BookingEventsTopic != DefaultBookingEventsTopic {
		t.Errorf("BookingEventsTopic = %q, want %q", cfg.BookingEventsTopic, DefaultBookingEventsTopic)
	}
	if cfg.BookingEventsDLQTopic != DefaultBookingEventsDLQTopic {
		t.Errorf("BookingEventsDLQTopic = %q, want %q", cfg.BookingEventsDLQTopic, DefaultBookingEventsDLQTopic)
	}
	if got, want := cfg.InvalidationGroupID(), DefaultBookingEventsGroupID+".bookings-7f9c"; got != want {
		t.Errorf("InvalidationGroupID() = %q, want %q", got, want)
	}
	if cfg.ConsumerMaxWait != DefaultConsumerMaxWait {
		t.Errorf("ConsumerMaxWait = %s, want %s", cfg.ConsumerMaxWait, DefaultConsumerMaxWait)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv(EnvBookingEventsTopic, "bookings.v2")
	t.Setenv(EnvBookingEventsDLQTopic, "bookings.v2.dlq")
	t.Setenv(EnvBookingEventsGroupID, "cache")
	t.Setenv(EnvInstanceID, "a")
	t.Setenv(EnvKafkaProducerCompression, "zstd")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BookingEventsTopic != "bookings.v2" || cfg.BookingEventsDLQTopic != "bookings.v2.dlq" {
		t.Errorf("topics = %q, %q", cfg.BookingEventsTopic, cfg.BookingEventsDLQTopic)
	}
	if cfg.InvalidationGroupID() != "cache.a" {
		t.Errorf("InvalidationGroupID() = %q", cfg.InvalidationGroupID())
	}
	if cfg.ProducerCompression != "zstd" {
		t.Errorf("ProducerCompression = %q", cfg.ProducerCompression)
	}
}

func TestValidate_BookingEvents(t *testing.T) {
	t.Setenv(EnvInstanceID, "a")
	valid := func(t *testing.T) *Config {
		t.Helper()
		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "empty topic", mutate: func(c *Config) { c.BookingEventsTopic = "" }, wantErr: "BookingEventsTopic"},
		{name: "empty group", mutate: func(c *Config) { c.BookingEventsGroupID = "" }, wantErr: "BookingEventsGroupID"},
		{name: "dlq loops back", mutate: func(c *Config) { c.BookingEventsDLQTopic = c.BookingEventsTopic }, wantErr: "BookingEventsDLQTopic"},
		{name: "no dlq", mutate: func(c *Config) { c.BookingEventsDLQTopic = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid(t)
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}

func TestInvalidationGroupID_WithoutInstance(t *testing.T) {
	cfg := &Config{BookingEventsGroupID: "cache"}
	if cfg.InvalidationGroupID() != "cache" {
		t.Errorf("InvalidationGroupID() = %q, want cache", cfg.InvalidationGroupID())
	}
}
