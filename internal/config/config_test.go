package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Env:                     "development",
		Port:                    "8000",
		JWTSecret:               "secure-secret-at-least-32-chars-long",
		DBPassword:              "secure-password",
		DBSSLMode:               "require",
		TaskBroker:              BrokerRedis,
		MediaBackend:            MediaLocal,
		MediaRoot:               "media",
		MaxUploadSizeMB:         10,
		PostsPerPage:            10,
		CommentsPerPage:         2,
		AllPostsCacheTTLSeconds: 120,
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError bool
	}{
		{"valid development config", func(_ *Config) {}, false},
		{"missing port", func(c *Config) { c.Port = "" }, true},
		{"missing jwt secret", func(c *Config) { c.JWTSecret = "" }, true},
		{"unknown broker", func(c *Config) { c.TaskBroker = "kafka" }, true},
		{"rabbitmq without url", func(c *Config) { c.TaskBroker = BrokerRabbitMQ; c.AMQPURL = "" }, true},
		{"rabbitmq with url", func(c *Config) { c.TaskBroker = BrokerRabbitMQ; c.AMQPURL = "amqp://localhost" }, false},
		{"inline broker", func(c *Config) { c.TaskBroker = BrokerInline }, false},
		{"s3 without bucket", func(c *Config) { c.MediaBackend = MediaS3 }, true},
		{"s3 with bucket", func(c *Config) { c.MediaBackend = MediaS3; c.S3Bucket = "blog-media" }, false},
		{"unknown media backend", func(c *Config) { c.MediaBackend = "ftp" }, true},
		{"zero page size", func(c *Config) { c.PostsPerPage = 0 }, true},
		{"zero upload size", func(c *Config) { c.MaxUploadSizeMB = 0 }, true},
		{"production default secret", func(c *Config) { c.Env = "production"; c.JWTSecret = defaultJWTSecret }, true},
		{"production short secret", func(c *Config) { c.Env = "production"; c.JWTSecret = "short" }, true},
		{"production weak db password", func(c *Config) { c.Env = "prod"; c.DBPassword = "password" }, true},
		{"production strong settings", func(c *Config) { c.Env = "production" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)

			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_Helpers(t *testing.T) {
	c := validConfig()
	assert.Equal(t, 2*time.Minute, c.AllPostsCacheTTL())
	assert.Equal(t, int64(10*1024*1024), c.MaxUploadBytes())
	assert.False(t, c.IsProduction())

	c.Env = "prod"
	assert.True(t, c.IsProduction())
}

func TestLoadConfig_DefaultsAndNormalization(t *testing.T) {
	defer viper.Reset()

	t.Setenv("APP_ENV", "test")
	t.Setenv("TASK_BROKER", "  INLINE ")
	t.Setenv("MEDIA_URL", "/uploads")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "test", cfg.Env)
	assert.Equal(t, BrokerInline, cfg.TaskBroker)
	assert.Equal(t, "/uploads/", cfg.MediaURL)
	assert.Equal(t, 10, cfg.PostsPerPage)
	assert.Equal(t, 2, cfg.CommentsPerPage)
	assert.Equal(t, 120, cfg.AllPostsCacheTTLSeconds)
	assert.Equal(t, MediaLocal, cfg.MediaBackend)
}
