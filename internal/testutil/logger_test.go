package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewCaptureLogger(t *testing.T) {
	logger, buf := NewCaptureLogger()
	logger.Debug("seeded", "rows", 15)

	assert.Contains(t, buf.String(), "msg=seeded")
	assert.Contains(t, buf.String(), "rows=15")
}

func TestNewTestLogger(t *testing.T) {
	logger := NewTestLogger(t)
	logger.Info("visible with -v")
}
