package backend

import (
	"errors"
	"fmt"

	"wedplan/internal/config"
)

// Option adjusts a Config derived from the application settings.
type Option func(*Config)

// WithoutEvents leaves the publisher out even when AMQP is configured, for
// processes that only read, like the worker and the report.
func WithoutEvents() Option {
	return func(c *Config) { c.AMQPURL = "" }
}

// FromAppConfig picks the store and event settings out of the application
// config.
func FromAppConfig(appConfig *config.Config, opts ...Option) (Config, error) {
	if appConfig == nil {
		return Config{}, errors.New("backend: nil app config")
	}
	c := Config{
		Type:         BackendType(appConfig.DataBackend),
		KVDBPath:     appConfig.KVDBPath,
		SQLiteDBPath: appConfig.SQLiteDBPath,
		AMQPURL:      appConfig.AMQPURL,
		AMQPExchange: appConfig.AMQPExchange,
		AMQPQueue:    appConfig.AMQPQueue,
	}
	for _, opt := range opts {
		opt(&c)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate reports the first setting that makes the backend unusable.
func (c Config) Validate() error {
	switch c.Type {
	case KVDBBackend:
		if c.KVDBPath == "" {
			return errors.New("kvdb path is required for kvdb backend")
		}
	case SQLiteBackend:
		if c.SQLiteDBPath == "" {
			return errors.New("SQLite database path is required for sqlite backend")
		}
	case MemoryBackend:
	default:
		return fmt.Errorf("invalid backend type %q", c.Type)
	}

	if c.AMQPURL != "" && (c.AMQPExchange == "" || c.AMQPQueue == "") {
		return errors.New("AMQP exchange and queue are required when AMQP URL is set")
	}
	return nil
}

// EventsEnabled reports whether a publisher will be opened.
func (c Config) EventsEnabled() bool {
	return c.AMQPURL != ""
}
