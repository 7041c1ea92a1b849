package integrity

import (
	"testing"

	"shared-save/core/storage/mocks"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestLoader(t *testing.T) {
	// nil db: routes register without touching the database
	feature := NewFeature(new(mocks.Client), "worlds", "saves", "", zap.NewNop(), nil)

	assert.Equal(t, "integrity", feature.Name())
	assert.True(t, feature.IsEnabled())

	app := fiber.New()
	assert.NoError(t, feature.Load(app))
}
