package main

import (
	"context"
	"errors"
	"fmt"

	"tablebook/internal/repository"
	"tablebook/internal/repository/memory"
	"tablebook/internal/repository/postgres"
	"tablebook/internal/reservations/events"
	reservationhandler "tablebook/internal/reservations/handler"
	"tablebook/internal/reservations/lock"
	reservationservice "tablebook/internal/reservations/service"
	reservationvalidator "tablebook/internal/reservations/validator"
	restauranthandler "tablebook/internal/restaurants/handler"
	restaurantservice "tablebook/internal/restaurants/service"
	restaurantvalidator "tablebook/internal/restaurants/validator"
	tablehandler "tablebook/internal/tables/handler"
	tableservice "tablebook/internal/tables/service"
	tablevalidator "tablebook/internal/tables/validator"
	"tablebook/pkg/app"
	"tablebook/pkg/auth"
	"tablebook/pkg/config"
	"tablebook/pkg/kafka"
	kafkaconfig "tablebook/pkg/kafka/config"
	kafkamiddleware "tablebook/pkg/kafka/middleware"
	"tablebook/pkg/sanitizer"
	"tablebook/pkg/validation"

	"github.com/redis/go-redis/v9"
)

type stores struct {
	restaurants  repository.RestaurantRepository
	tables       repository.TableRepository
	reservations repository.ReservationRepository
	pinger       repository.Pinger
}

type redisPinger struct {
	client *redis.Client
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

// build wires repositories, the lock backend, the event publisher and every
// HTTP handler. Connections must already be open for the selected backends.
func build(cfg *config.Config) (*app.Application, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT secret must be set")
	}
	if err := sanitizer.SetRegions(cfg.PhoneRegions); err != nil {
		return nil, err
	}

	st, err := newStores(cfg)
	if err != nil {
		return nil, err
	}
	locker, err := newLocker(cfg)
	if err != nil {
		return nil, err
	}

	serverApp := app.NewApplication()

	publisher, err := newPublisher(cfg, serverApp)
	if err != nil {
		return nil, err
	}

	v := validation.New(cfg.Log)
	reservationValidator := reservationvalidator.NewReservationValidator(v, cfg.Log)
	restaurantValidator := restaurantvalidator.NewRestaurantValidator(v, cfg.Log)
	tableValidator := tablevalidator.NewTableValidator(v, cfg.Log)

	availabilityService := reservationservice.NewAvailabilityService(st.restaurants, st.tables, st.reservations, reservationValidator, cfg.Log)
	bookingService := reservationservice.NewBookingService(st.restaurants, st.tables, st.reservations, locker, publisher, reservationValidator, cfg.Log)
	statusService := reservationservice.NewStatusService(st.reservations, publisher, reservationValidator, cfg.Log)
	restaurantService := restaurantservice.NewRestaurantService(st.restaurants, restaurantValidator, cfg)
	tableService := tableservice.NewTableService(st.restaurants, st.tables, tableValidator, cfg.Log)

	authenticator := auth.NewAuthenticator(cfg.JWTSecret, cfg.JWTIssuer)
	requireAuth := auth.Require(authenticator, cfg.Log)

	serverApp.SetApp(cfg, readinessChecks(cfg, st),
		reservationhandler.NewReservationHandler(availabilityService, bookingService, statusService, requireAuth, cfg.Log),
		restauranthandler.NewRestaurantHandler(restaurantService, requireAuth, cfg.Log),
		tablehandler.NewTableHandler(tableService, requireAuth, cfg.Log),
	)

	cfg.Log.Info("Reservation services initialized")
	return serverApp, nil
}

func newStores(cfg *config.Config) (*stores, error) {
	switch cfg.StoreBackend {
	case config.StoreMongo:
		if cfg.Client.Mongo == nil {
			return nil, errors.New("mongo store selected but no mongo client is connected")
		}
		return &stores{
			restaurants:  repository.NewMongoRestaurantRepository(cfg),
			tables:       repository.NewMongoTableRepository(cfg),
			reservations: repository.NewMongoReservationRepository(cfg),
			pinger:       repository.MongoPinger{Client: cfg.Client.Mongo},
		}, nil
	case config.StorePostgres:
		if cfg.Client.Postgres == nil {
			return nil, errors.New("postgres store selected but no postgres pool is connected")
		}
		return &stores{
			restaurants:  postgres.NewRestaurantRepository(cfg),
			tables:       postgres.NewTableRepository(cfg),
			reservations: postgres.NewReservationRepository(cfg),
			pinger:       postgres.Pinger{Pool: cfg.Client.Postgres},
		}, nil
	case config.StoreMemory:
		store := memory.NewStore()
		return &stores{
			restaurants:  store.Restaurants(),
			tables:       store.Tables(),
			reservations: store.Reservations(),
			pinger:       store,
		}, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

func newLocker(cfg *config.Config) (lock.Locker, error) {
	switch cfg.LockBackend {
	case config.LockMemory:
		return lock.NewMemoryLocker(), nil
	case config.LockMongo:
		if cfg.Client.Mongo == nil {
			return nil, errors.New("mongo lock selected but no mongo client is connected")
		}
		collection := cfg.Client.Mongo.Database(cfg.MongoDatabaseName).Collection(repository.ReservationLocksCollection)
		return lock.NewMongoLocker(collection, cfg.LockTTL, cfg.LockRetryInterval), nil
	case config.LockRedis:
		if cfg.Client.Redis == nil {
			return nil, errors.New("redis lock selected but no redis client is connected")
		}
		return lock.NewRedisLocker(cfg.Client.Redis, cfg.LockTTL, cfg.LockRetryInterval), nil
	case config.LockPostgres:
		if cfg.Client.Postgres == nil {
			return nil, errors.New("postgres lock selected but no postgres pool is connected")
		}
		return lock.NewPostgresLocker(cfg.Client.Postgres), nil
	default:
		return nil, fmt.Errorf("unknown lock backend %q", cfg.LockBackend)
	}
}

func newPublisher(cfg *config.Config, serverApp *app.Application) (events.Publisher, error) {
	if !cfg.KafkaEnabled {
		return events.NoopPublisher{}, nil
	}

	kafkaCfg, err := kafkaconfig.Load()
	if err != nil {
		return nil, fmt.Errorf("invalid kafka configuration: %w", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log.Info)

	producer, err := kafka.NewProducer(kafkaCfg, cfg.KafkaReservationsTopic, cfg.KafkaDLQTopic, cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	if kafkaCfg.LogMessages {
		producer.Use(kafkamiddleware.LoggingProducerMiddleware(cfg.Log))
	}
	serverApp.OnShutdown("kafka-producer", func(context.Context) error {
		return producer.Close()
	})

	return events.NewKafkaPublisher(producer, ServiceName), nil
}

func readinessChecks(cfg *config.Config, st *stores) []app.ReadinessCheck {
	checks := []app.ReadinessCheck{{Name: cfg.StoreBackend, Pinger: st.pinger}}
	if cfg.LockBackend == config.LockRedis && cfg.Client.Redis != nil {
		checks = append(checks, app.ReadinessCheck{Name: "redis", Pinger: redisPinger{client: cfg.Client.Redis}})
	}
	return checks
}
