package main

import (
	"os"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestSetLogLevel(t *testing.T) {
	orig := log.GetLevel()
	t.Cleanup(func() { log.SetLevel(orig) })

	tests := map[string]log.Level{
		"trace":   log.TraceLevel,
		"debug":   log.DebugLevel,
		"info":    log.InfoLevel,
		"warn":    log.WarnLevel,
		"error":   log.ErrorLevel,
		"unknown": log.InfoLevel,
	}
	for level, want := range tests {
		setLogLevel(level)
		assert.Equal(t, want, log.GetLevel(), level)
	}
}

func TestInstanceName(t *testing.T) {
	assert.Equal(t, "rack-7", instanceName("rack-7"))

	host, err := os.Hostname()
	if err != nil {
		t.Skip("hostname unavailable")
	}
	assert.Equal(t, "linkmond on "+host, instanceName(""))
}
