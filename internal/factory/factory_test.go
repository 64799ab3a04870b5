package factory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poolhall/tablequeue/internal/services/queue"
)

func TestNewDefaultsQueueConfigWhenNil(t *testing.T) {
	app, err := New(context.Background(), Config{})
	require.NoError(t, err)

	assert.Equal(t, queue.DefaultConfig().CutoffHour, app.QueueController.Cutoff().Hour())
}

func TestNewHonorsMidnightCutoff(t *testing.T) {
	// Hour 0 is a legal cutoff, not an unset config
	app, err := New(context.Background(), Config{
		QueueConfig: &queue.Config{CutoffHour: 0},
	})
	require.NoError(t, err)

	assert.Equal(t, 0, app.QueueController.Cutoff().Hour())
}
