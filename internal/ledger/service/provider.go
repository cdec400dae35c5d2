package service

import (
	"context"
	"errors"

	"carepool/internal/ledger/models"
	"carepool/internal/ledger/ports"
	id "carepool/pkg/domain"
	dErrors "carepool/pkg/domain-errors"
	"carepool/pkg/platform/sentinel"
	strutil "carepool/pkg/platform/strings"
)

// RegisterProvider registers the caller as a medical provider. The stake is
// transferred to the platform treasury before the record exists; if the
// transfer fails no record is created. Providers start unverified.
func (s *Service) RegisterProvider(ctx context.Context, caller id.AccountID,
	name, license, specialization, location string, services []string,
	stake uint64) (*models.Provider, error) {

	if stake < models.MinProviderStake {
		return nil, dErrors.New(dErrors.CodeInvalidAmount, "stake below minimum")
	}
	// The service limit applies to distinct services.
	services = strutil.DedupeAndTrimLower(services)
	if len(services) > models.MaxProviderServices {
		return nil, dErrors.New(dErrors.CodeInvalidAmount, "too many services")
	}

	var provider *models.Provider
	err := s.tx.RunInTx(ctx, func(st ports.Store) error {
		if existing, err := st.GetProvider(ctx, caller); err == nil && existing != nil {
			return dErrors.New(dErrors.CodeAlreadyMember, "account already registered as provider")
		} else if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check provider registration")
		}

		if err := s.treasury.Transfer(ctx, caller, s.treasuryAccount, stake); err != nil {
			if errors.Is(err, sentinel.ErrInsufficientFunds) {
				return dErrors.New(dErrors.CodeInsufficientFunds, "cannot cover stake")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "stake transfer failed")
		}

		provider = &models.Provider{
			Account:        caller,
			Name:           name,
			License:        license,
			Specialization: specialization,
			Location:       location,
			Services:       services,
			RegisteredAt:   s.clock.Now(),
			Active:         true,
			Stake:          stake,
		}
		if err := st.PutProvider(ctx, provider); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to write provider")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logAudit(ctx, "provider_registered", "stake", stake)
	return provider, nil
}

// VerifyProvider flips a provider's verification flag. Owner only; the flip
// is irreversible, there is no un-verify.
func (s *Service) VerifyProvider(ctx context.Context, caller, providerAccount id.AccountID) error {
	if caller != s.owner {
		return dErrors.New(dErrors.CodeNotAuthorized, "only the platform owner can verify providers")
	}

	err := s.tx.RunInTx(ctx, func(st ports.Store) error {
		provider, err := st.GetProvider(ctx, providerAccount)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeInvalidProvider, "no such provider")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load provider")
		}
		provider.Verified = true
		if err := st.PutProvider(ctx, provider); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update provider")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logAudit(ctx, "provider_verified", "provider", providerAccount.String())
	return nil
}

// GetProvider returns the provider record, or nil if never registered.
func (s *Service) GetProvider(ctx context.Context, account id.AccountID) (*models.Provider, error) {
	provider, err := s.store.GetProvider(ctx, account)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load provider")
	}
	return provider, nil
}
