package components

import (
	"context"
	"time"

	"medibook/internal/infra/cache"
	"medibook/internal/infra/db"
	"medibook/internal/infra/notify"
	"medibook/internal/infra/paygate"
	"medibook/internal/infra/readstore"
	"medibook/internal/infra/uow"
	"medibook/internal/pkg/config"
	"medibook/internal/usecase/commands"
	"medibook/internal/usecase/queries"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

var PersistenceModule = fx.Module("persistence",
	fx.Provide(
		NewDBTX,
		NewBookingZone,
		uow.NewPostgresUoW,
		fx.Annotate(
			readstore.NewBookingReadStore,
			fx.As(new(queries.BookingViewRepo)),
		),
		fx.Annotate(
			readstore.NewHospitalReadStore,
			fx.As(new(queries.HospitalViewRepo)),
		),
		NewRedisClient,
		NewSlotHoldStore,
		NewNotifier,
		fx.Annotate(
			paygate.NewClient,
			fx.As(new(commands.PaymentGateway)),
		),
	),
)

func NewDBTX(pool *pgxpool.Pool) db.DBTX {
	return pool
}

func NewBookingZone(cfg config.Config) *time.Location {
	return cfg.Booking.Zone()
}

func NewRedisClient(lc fx.Lifecycle, cfg config.Config) *redis.Client {
	client := cache.NewClient(cfg.Redis)
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return client.Close()
		},
	})
	return client
}

func NewSlotHoldStore(client *redis.Client, cfg config.Config) commands.SlotHold {
	return cache.NewSlotHoldStore(client, cfg.Booking.SlotHoldTTL)
}

func NewNotifier(lc fx.Lifecycle, cfg config.Config) commands.Notifier {
	notifier := notify.NewKafkaNotifier(cfg.Kafka)
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return notifier.Close()
		},
	})
	return notifier
}
