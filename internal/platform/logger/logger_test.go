package logger_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mhutchins/tasknest/internal/platform/logger"
)

func TestSetup(t *testing.T) {
	tests := []struct {
		level   string
		wantErr bool
	}{
		{level: "debug"},
		{level: "info"},
		{level: "WARN"},
		{level: "Error"},
		{level: "verbose", wantErr: true},
		{level: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			log, err := logger.Setup(tt.level)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, log)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, log)
		})
	}
}

func TestFromContext(t *testing.T) {
	base := slog.New(slog.NewTextHandler(os.Stderr, nil)).With("component", "test")

	ctx := logger.WithLogger(context.Background(), base)
	assert.Same(t, base, logger.FromContext(ctx))

	// A bare context falls back to the default logger.
	assert.Same(t, slog.Default(), logger.FromContext(context.Background()))
}

func TestFromContextOrDefault(t *testing.T) {
	base := slog.New(slog.NewTextHandler(os.Stderr, nil))
	fallback := slog.New(slog.NewTextHandler(os.Stderr, nil))

	ctx := logger.WithLogger(context.Background(), base)
	assert.Same(t, base, logger.FromContextOrDefault(ctx, fallback))
	assert.Same(t, fallback, logger.FromContextOrDefault(context.Background(), fallback))
	assert.Same(t, slog.Default(), logger.FromContextOrDefault(context.Background(), nil))
}
