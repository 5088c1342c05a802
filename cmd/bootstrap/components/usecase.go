package components

import (
	"medibook/internal/domain/booking"
	"medibook/internal/pkg/clock"
	"medibook/internal/pkg/config"
	"medibook/internal/usecase"
	"medibook/internal/usecase/commands"
	"medibook/internal/usecase/queries"
	"medibook/internal/usecase/shared"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseQueriesModule,
	usecaseValidatorsModule,
	usecaseCommandsModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
	booking.NewFactory,
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewBookingQueries,
		queries.NewHospitalQueries,
	),
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		NewBookingCommands,
		commands.NewMaintenanceUseCase,
	),
)

var usecaseValidatorsModule = fx.Module("usecase/validators",
	fx.Provide(
		usecase.NewTokenValidator,
	),
)

func NewBookingCommands(
	uow shared.UnitOfWork,
	factory *booking.Factory,
	gateway commands.PaymentGateway,
	notifier commands.Notifier,
	holds commands.SlotHold,
	bookingQueries queries.BookingQueries,
	clk clock.Clock,
	cfg config.Config,
) commands.BookingCommands {
	return commands.NewBookingUseCase(uow, factory, gateway, notifier, holds, bookingQueries, clk, cfg.Booking.PaymentExpiry)
}
