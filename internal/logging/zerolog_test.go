package logging

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestZerologLogger_FieldsAndLevels(t *testing.T) {
	var buf bytes.Buffer
	log := NewZerologLogger(zerolog.New(&buf).Level(zerolog.InfoLevel))
	ctx := context.Background()

	log.Debug(ctx, "hidden")
	log.Info(ctx, "session resolved", "state", "AUTHENTICATED")
	log.With("job_id", 7).Warn(ctx, "poll failed")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"message":"session resolved"`)
	assert.Contains(t, out, `"state":"AUTHENTICATED"`)
	assert.Contains(t, out, `"level":"warn"`)
	assert.Contains(t, out, `"job_id":7`)
}

func TestZerologLogger_RequestIDFromContext(t *testing.T) {
	var buf bytes.Buffer
	log := NewZerologLogger(zerolog.New(&buf))

	log.Info(WithRequestID(context.Background(), "req-9"), "request done")

	assert.Contains(t, buf.String(), `"request_id":"req-9"`)
}
