package di

import (
	"context"
	"fmt"
	"log"
	"time"

	"profile-server/api"
	"profile-server/api/elevation"
	"profile-server/chart"
	"profile-server/config"
	"profile-server/dao/redis"
	"profile-server/db"
	"profile-server/editor"
	"profile-server/events"
	"profile-server/models"
	"profile-server/server"
	"profile-server/server/handlers"
	services "profile-server/service"
	"profile-server/store"

	goredis "github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
)

const MAP_CONTAINER = "map"
const CHART_TITLE = "Elevation profile"

// Container holds all application dependencies.
type Container struct {
	Config                  *config.Config
	RedisClient             db.RedisClient
	RedisProfileDao         *redis.RedisProfileDAO
	ElevationAPI            elevation.ElevationAPI
	Publisher               events.Publisher
	Rectangle               *editor.Rectangle
	ProfileStore            *store.ProfileStore
	ProfileChart            *chart.ProfileChart
	ProfileService          *services.ProfileService
	ProfileRefresherService *services.ProfileRefresherService
	ProfileHandler          *handlers.ProfileHandler
	MuxRouter               *mux.Router
	Router                  *server.Router
	ProfileHttpServer       *server.ProfileHttpServer

	closers []func()
}

// NewContainer initializes and wires up all dependencies.
func NewContainer(cfg *config.Config) (*Container, error) {
	log.Printf("[Container] initializing container - env: %s", cfg.Env)
	c := &Container{Config: cfg}

	redisClient, err := c.newRedisClient()
	if err != nil {
		c.Close()
		return nil, err
	}
	c.RedisClient = redisClient
	c.RedisProfileDao = redis.NewRedisProfileDAO(redisClient)

	elevationApi, err := newElevationAPI(cfg)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.ElevationAPI = elevationApi

	publisher, err := newPublisher(cfg)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.Publisher = publisher
	c.closers = append(c.closers, publisher.Close)

	initial := models.Bounds{
		North: cfg.Region.North,
		South: cfg.Region.South,
		East:  cfg.Region.East,
		West:  cfg.Region.West,
	}
	c.Rectangle = editor.NewRectangle(MAP_CONTAINER, initial, cfg.Region.Editable, cfg.Region.Draggable)
	c.ProfileStore = store.NewProfileStore()
	c.ProfileChart = chart.NewProfileChart(CHART_TITLE)

	c.ProfileService = services.NewProfileService(
		c.Rectangle,
		c.ElevationAPI,
		c.ProfileStore,
		c.ProfileChart,
		c.RedisProfileDao,
		c.Publisher,
		cfg.Elevation.Samples,
		cfg.Elevation.Timeout,
	)
	c.Rectangle.OnBoundsChanged(c.ProfileService.OnBoundsChanged)
	c.ProfileRefresherService = services.NewProfileRefresherService(c.ProfileService, c.Rectangle)

	// Initialize profile handler
	c.ProfileHandler = handlers.NewProfileHandler(c.ProfileService, c.Rectangle, c.RedisProfileDao)

	// Initialize mux router
	c.MuxRouter = mux.NewRouter()
	c.Router = server.NewRouter(c.ProfileHandler, c.MuxRouter)
	c.ProfileHttpServer = server.NewProfileHttpServer(
		c.Router,
		c.MuxRouter,
		cfg.Server.Addr,
		config.SERVER_SHUTDOWN_TIMEOUT_SECONDS*time.Second,
	)

	return c, nil
}

// Close stops background work and releases connections, newest first.
func (c *Container) Close() {
	if c.ProfileService != nil {
		c.ProfileService.Stop()
	}
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}

func (c *Container) newRedisClient() (db.RedisClient, error) {
	ctx := context.Background()
	if !c.Config.Redis.Enabled {
		log.Printf("[Container] Using in-memory redis client")
		return db.NewMockRedisClient(ctx), nil
	}

	redisInternalClient := goredis.NewClient(&goredis.Options{
		Addr:     c.Config.Redis.Addr,
		Password: c.Config.Redis.Password,
		DB:       c.Config.Redis.DB,
	})
	redisClient := db.NewGeoRedisClient(ctx, redisInternalClient)
	if err := redisClient.Ping(); err != nil {
		redisClient.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", c.Config.Redis.Addr, err)
	}
	c.closers = append(c.closers, func() {
		if err := redisClient.Close(); err != nil {
			log.Printf("[Container] Error closing redis client: %v", err)
		}
	})
	return redisClient, nil
}

func newElevationAPI(cfg *config.Config) (elevation.ElevationAPI, error) {
	if cfg.Env != config.ENV_PROD {
		log.Printf("[Container] Using mock elevation api")
		return elevation.NewElevationApiClientMock(), nil
	}

	log.Printf("[Container] Using elevation api at %s", cfg.Elevation.BaseURL)
	httpClient := api.NewHTTPClient(cfg.Elevation.BaseURL).
		WithRateLimit(cfg.Elevation.RatePerSecond, cfg.Elevation.Burst)
	httpClient.HTTPClient.Timeout = cfg.Elevation.Timeout

	client := elevation.NewElevationApiClient(httpClient)
	client.SetCredentials(cfg.Elevation.APIKey)
	client.SetPolylineEncoding(cfg.Elevation.PathEncoding == config.ELEVATION_PATH_ENCODING_POLYLINE)

	if cfg.Elevation.CacheSize <= 0 {
		return client, nil
	}
	cached, err := elevation.NewCachedElevationAPI(client, cfg.Elevation.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("create elevation cache: %w", err)
	}
	return cached, nil
}

func newPublisher(cfg *config.Config) (events.Publisher, error) {
	if !cfg.NATS.Enabled {
		return events.NoopPublisher{}, nil
	}
	publisher, err := events.NewNatsPublisher(cfg.NATS.URL, cfg.NATS.Subject)
	if err != nil {
		return nil, err
	}
	return publisher, nil
}
