package main

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestFailFlushesBufferedLogs(t *testing.T) {
	var buf bytes.Buffer
	ws := &zapcore.BufferedWriteSyncer{WS: zapcore.AddSync(&buf), Size: 1 << 20, FlushInterval: time.Hour}
	t.Cleanup(func() { _ = ws.Stop() })

	zl := zap.New(zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), ws, zap.DebugLevel))

	zl.Info("started")
	assert.Zero(t, buf.Len(), "entries stay buffered until a sync")

	code := fail(zl, errors.New("listen tcp :8080: address already in use"))
	assert.Equal(t, 1, code)
	assert.Contains(t, buf.String(), "server stopped")
	assert.Contains(t, buf.String(), "address already in use")
}
