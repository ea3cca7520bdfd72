package di

import (
	"testing"

	"profile-server/api/elevation"
	"profile-server/config"
	"profile-server/db"
	"profile-server/events"
	"profile-server/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewContainer_Dev(t *testing.T) {
	cfg := config.Default(config.ENV_DEV)

	c, err := NewContainer(cfg)
	require.NoError(t, err)
	defer c.Close()

	assert.IsType(t, &elevation.ElevationApiClientMock{}, c.ElevationAPI)
	assert.IsType(t, &db.MockRedisClient{}, c.RedisClient)
	assert.IsType(t, events.NoopPublisher{}, c.Publisher)
	assert.Equal(t, models.Bounds{
		North: config.REGION_NORTH,
		South: config.REGION_SOUTH,
		East:  config.REGION_EAST,
		West:  config.REGION_WEST,
	}, c.Rectangle.GetBounds())
}

func TestNewContainer_BoundsChangeReachesRedis(t *testing.T) {
	c, err := NewContainer(config.Default(config.ENV_DEV))
	require.NoError(t, err)
	defer c.Close()

	moved := models.Bounds{North: 44.7, South: 44.6, East: -78.4, West: -78.5}
	require.NoError(t, c.Rectangle.SetBounds(moved))
	c.ProfileService.Wait()

	latest, err := c.RedisProfileDao.GetLatestProfile()
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, moved, latest.Bounds)

	nearby, err := c.RedisProfileDao.GetNearbyProfiles(44.65, -78.45, 5)
	require.NoError(t, err)
	assert.Len(t, nearby, 1)
}

func TestNewContainer_ProdCachesElevationAPI(t *testing.T) {
	cfg := config.Default(config.ENV_PROD)
	cfg.Elevation.APIKey = "test-key"
	cfg.Redis.Enabled = false

	c, err := NewContainer(cfg)
	require.NoError(t, err)
	defer c.Close()

	assert.IsType(t, &elevation.CachedElevationAPI{}, c.ElevationAPI)
}
