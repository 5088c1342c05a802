package commands

import (
	"context"

	"medibook/internal/infra"
	"medibook/internal/pkg/errs"
	"medibook/internal/usecase/shared"

	"github.com/google/uuid"
)

type MaintenanceCommands interface {
	// BackfillLegacyTokens rewrites purely numeric legacy tokens of one
	// hospital into the current prefixed format, in creation order,
	// behind the same per-day lock as live allocation. Idempotent: rows
	// already in the current format are untouched.
	BackfillLegacyTokens(ctx context.Context, hospitalID uuid.UUID) (int64, error)
}

type maintenanceUseCaseImpl struct {
	uow shared.UnitOfWork
}

func NewMaintenanceUseCase(uow shared.UnitOfWork) MaintenanceCommands {
	return &maintenanceUseCaseImpl{uow: uow}
}

func (uc *maintenanceUseCaseImpl) BackfillLegacyTokens(ctx context.Context, hospitalID uuid.UUID) (int64, error) {
	var rewritten int64
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		h, loadErr := tx.Reads().HospitalByID(ctx, hospitalID)
		if loadErr != nil {
			if infra.IsKind(loadErr, infra.KindNotFound) {
				return errs.Mark(loadErr, errs.ErrHospitalNotFound)
			}
			return errs.Mark(loadErr, errs.ErrDatabaseOperationFailed)
		}

		days, daysErr := tx.Bookings().LegacyTokenDays(ctx, tx.DB(), hospitalID)
		if daysErr != nil {
			return errs.Mark(daysErr, errs.ErrDatabaseOperationFailed)
		}
		if len(days) == 0 {
			return nil
		}
		for _, day := range days {
			if lockErr := tx.Bookings().AcquireDayLock(ctx, tx.DB(), hospitalID, day); lockErr != nil {
				return errs.Mark(lockErr, errs.ErrDatabaseOperationFailed)
			}
		}

		n, rwErr := tx.Bookings().RewriteLegacyTokens(ctx, tx.DB(), hospitalID, h.TokenPrefix())
		if rwErr != nil {
			return errs.Mark(rwErr, errs.ErrDatabaseOperationFailed)
		}
		rewritten = n
		return nil
	})
	if err != nil {
		return 0, err
	}
	return rewritten, nil
}
