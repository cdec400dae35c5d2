package service

import (
	"context"
	"fmt"

	"carepool/internal/ledger/models"
	dErrors "carepool/pkg/domain-errors"
)

func (s *ServiceSuite) TestRegisterProvider() {
	ctx := context.Background()

	s.Run("registration escrows the stake", func() {
		before := s.bank.Balance(clinic)

		provider, err := s.svc.RegisterProvider(ctx, clinic, "City Clinic", "LIC-1",
			"general", "downtown", []string{"checkup"}, models.MinProviderStake)
		s.Require().NoError(err)

		s.False(provider.Verified)
		s.True(provider.Active)
		s.Equal(models.MinProviderStake, provider.Stake)
		s.Equal(startTick, provider.RegisteredAt)
		s.Zero(provider.ClaimsProcessed)

		s.Equal(before-models.MinProviderStake, s.bank.Balance(clinic))
		s.Equal(models.MinProviderStake, s.bank.Balance(treasuryAcct))
	})

	s.Run("stake below minimum is rejected", func() {
		_, err := s.svc.RegisterProvider(ctx, clinic, "C", "L", "", "", nil,
			models.MinProviderStake-1)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidAmount))
	})

	s.Run("too many distinct services are rejected", func() {
		services := make([]string, models.MaxProviderServices+1)
		for i := range services {
			services[i] = fmt.Sprintf("svc-%d", i)
		}
		_, err := s.svc.RegisterProvider(ctx, clinic, "C", "L", "", "", services,
			models.MinProviderStake)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidAmount))
	})

	s.Run("duplicate services collapse before the limit applies", func() {
		provider, err := s.svc.RegisterProvider(ctx, bob, "Bob's Lab", "LIC-2", "", "",
			[]string{"Checkup", " checkup ", "x-ray", "CHECKUP"}, models.MinProviderStake)
		s.Require().NoError(err)
		s.Equal([]string{"checkup", "x-ray"}, provider.Services)
	})

	s.Run("double registration is rejected", func() {
		_, err := s.svc.RegisterProvider(ctx, clinic, "C", "L", "", "", nil, models.MinProviderStake)
		s.Require().NoError(err)
		_, err = s.svc.RegisterProvider(ctx, clinic, "C", "L", "", "", nil, models.MinProviderStake)
		s.True(dErrors.HasCode(err, dErrors.CodeAlreadyMember))
	})

	s.Run("failed stake transfer leaves no record", func() {
		_, err := s.svc.RegisterProvider(ctx, "brokeclinic", "C", "L", "", "", nil,
			models.MinProviderStake)
		s.True(dErrors.HasCode(err, dErrors.CodeInsufficientFunds))

		provider, err := s.svc.GetProvider(ctx, "brokeclinic")
		s.Require().NoError(err)
		s.Nil(provider)
	})
}

func (s *ServiceSuite) TestVerifyProvider() {
	ctx := context.Background()

	s.Run("owner verifies a provider once and forever", func() {
		_, err := s.svc.RegisterProvider(ctx, clinic, "C", "L", "", "", nil, models.MinProviderStake)
		s.Require().NoError(err)

		s.Require().NoError(s.svc.VerifyProvider(ctx, ownerAcct, clinic))

		provider, err := s.svc.GetProvider(ctx, clinic)
		s.Require().NoError(err)
		s.True(provider.Verified)

		// Re-verifying is a no-op, not an error.
		s.NoError(s.svc.VerifyProvider(ctx, ownerAcct, clinic))
	})

	s.Run("non-owner is rejected", func() {
		err := s.svc.VerifyProvider(ctx, alice, clinic)
		s.True(dErrors.HasCode(err, dErrors.CodeNotAuthorized))
	})

	s.Run("unknown provider is rejected", func() {
		err := s.svc.VerifyProvider(ctx, ownerAcct, "ghost")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidProvider))
	})
}

func (s *ServiceSuite) TestGetProvider() {
	got, err := s.svc.GetProvider(context.Background(), "nobody")
	s.NoError(err)
	s.Nil(got)
}
