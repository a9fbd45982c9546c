package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validTestConfig() *Config {
	return &Config{
		bind:        "127.0.0.1",
		gracePeriod: 10 * time.Second,
		maxPlayers:  12,
		port:        8080,
	}
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, validTestConfig().validate())

	cfg := validTestConfig()
	cfg.port = 0
	assert.ErrorContains(t, cfg.validate(), "invalid port")

	cfg = validTestConfig()
	cfg.port = 70000
	assert.ErrorContains(t, cfg.validate(), "invalid port")

	cfg = validTestConfig()
	cfg.tlsCert = "cert.pem"
	assert.ErrorContains(t, cfg.validate(), "--tls-cert and --tls-key")

	cfg = validTestConfig()
	cfg.tlsKey = "key.pem"
	assert.ErrorContains(t, cfg.validate(), "--tls-cert and --tls-key")

	cfg = validTestConfig()
	cfg.gracePeriod = 0
	assert.ErrorContains(t, cfg.validate(), "grace period")

	cfg = validTestConfig()
	cfg.maxPlayers = 1
	assert.ErrorContains(t, cfg.validate(), "max players")
}

func TestConfigScheme(t *testing.T) {
	cfg := validTestConfig()
	assert.Equal(t, "http", cfg.scheme())

	cfg.tlsCert = "cert.pem"
	cfg.tlsKey = "key.pem"
	assert.Equal(t, "https", cfg.scheme())
}

func TestNewCmdDefaults(t *testing.T) {
	cfg := &Config{}
	cmd := newCmd(cfg)

	assert.NoError(t, cmd.ParseFlags(nil))
	assert.Equal(t, "0.0.0.0", cfg.bind)
	assert.Equal(t, 8080, cfg.port)
	assert.Equal(t, 10*time.Second, cfg.gracePeriod)
	assert.Equal(t, 12, cfg.maxPlayers)
	assert.NoError(t, cfg.validate())
}
