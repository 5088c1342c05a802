//go:build unit

package commands_test

import (
	"context"
	"testing"
	"time"

	"medibook/internal/pkg/errs"
	"medibook/internal/usecase/commands"
	"medibook/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type MaintenanceCommandsTestSuite struct {
	suite.Suite
}

func TestMaintenanceCommandsSuite(t *testing.T) {
	suite.Run(t, new(MaintenanceCommandsTestSuite))
}

func (s *MaintenanceCommandsTestSuite) TestBackfillLegacyTokens() {
	ctx := context.Background()

	s.Run("rewrites legacy tokens with the hospital prefix", func() {
		st := newFakeState()
		h, err := builder.NewHospitalBuilder().WithName("City General Hospital").BuildEntity()
		s.Require().NoError(err)
		st.hospitals[h.ID()] = h
		st.legacyDays = []time.Time{
			time.Date(2026, 12, 26, 0, 0, 0, 0, time.UTC),
		}
		st.rewritten = 7

		uc := commands.NewMaintenanceUseCase(&fakeUoW{st: st})

		n, err := uc.BackfillLegacyTokens(ctx, h.ID())
		s.NoError(err)
		s.Equal(int64(7), n)
	})

	s.Run("locks every affected day before rewriting", func() {
		st := newFakeState()
		h, err := builder.NewHospitalBuilder().BuildEntity()
		s.Require().NoError(err)
		st.hospitals[h.ID()] = h
		st.legacyDays = []time.Time{
			time.Date(2026, 12, 26, 0, 0, 0, 0, time.UTC),
			time.Date(2026, 12, 27, 0, 0, 0, 0, time.UTC),
		}
		st.rewritten = 2

		uc := commands.NewMaintenanceUseCase(&fakeUoW{st: st})

		_, err = uc.BackfillLegacyTokens(ctx, h.ID())
		s.NoError(err)
		s.Equal(st.legacyDays, st.lockedDays)
	})

	s.Run("skips hospitals with no legacy tokens", func() {
		st := newFakeState()
		h, err := builder.NewHospitalBuilder().BuildEntity()
		s.Require().NoError(err)
		st.hospitals[h.ID()] = h
		st.rewritten = 7

		uc := commands.NewMaintenanceUseCase(&fakeUoW{st: st})

		n, err := uc.BackfillLegacyTokens(ctx, h.ID())
		s.NoError(err)
		s.Zero(n)
		s.Empty(st.lockedDays)
	})

	s.Run("reports an unknown hospital", func() {
		uc := commands.NewMaintenanceUseCase(&fakeUoW{st: newFakeState()})

		_, err := uc.BackfillLegacyTokens(ctx, uuid.New())
		s.ErrorIs(err, errs.ErrHospitalNotFound)
	})
}
