package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"cbmflow/internal/config"
	api "cbmflow/pkg/contracts/api/v1"
)

func TestHealthServiceReadiness(t *testing.T) {
	healthy := new(MockPinger)
	healthy.On("Ping", mock.Anything).Return(nil)
	broken := new(MockPinger)
	broken.On("Ping", mock.Anything).Return(errors.New("database is locked"))

	tests := []struct {
		name       string
		checks     map[string]Pinger
		wantReady  string
		wantHealth string
	}{
		{"no checks", nil, StatusReady, StatusOK},
		{"all healthy", map[string]Pinger{"ledger": healthy}, StatusReady, StatusOK},
		{"one failing", map[string]Pinger{"ledger": broken, "other": healthy}, StatusNotReady, StatusNotReady},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hs := NewHealthService("1.2.3", tt.checks, nil)

			ready := hs.ReadinessCheck(t.Context())
			assert.Equal(t, tt.wantReady, ready.Status)
			assert.Equal(t, "1.2.3", ready.Version)
			assert.Len(t, ready.Checks, len(tt.checks))

			assert.Equal(t, tt.wantHealth, hs.HealthCheck(t.Context()).Status)
		})
	}

	hs := NewHealthService("1.2.3", map[string]Pinger{"ledger": broken}, nil)
	assert.Equal(t, "database is locked", hs.ReadinessCheck(t.Context()).Checks["ledger"])
}

func TestHealthServiceLivenessAndVersion(t *testing.T) {
	hs := NewHealthService(config.AppVersion, nil, nil)

	live := hs.LivenessCheck(t.Context())
	assert.Equal(t, StatusAlive, live.Status)
	assert.NotEmpty(t, live.Uptime)

	v := hs.Version()
	assert.Equal(t, config.AppName, v.Name)
	assert.Equal(t, config.AppVersion, v.Version)
	assert.Equal(t, api.APIVersion, v.APIVersion)
	assert.NotEmpty(t, v.GoVersion)
}
