package service

import (
	"context"
	"fmt"

	"swap_gateway/internal/app/port"
	"swap_gateway/internal/domain/entity"
	"swap_gateway/internal/infrastructure/configloader"
	"swap_gateway/internal/pkg/utils"
)

// signedXDRFields are the payload field names wallet bridge builds use for
// the signed envelope, checked in order after the bare-scalar case.
var signedXDRFields = []string{"signedTxXdr", "signedXDR", "signedEnvelopeXdr", "xdr", "signed_envelope_xdr"}

// SigningServiceImpl implements port.SigningService.
type SigningServiceImpl struct {
	wallet     port.WalletChannel
	logger     port.Logger
	passphrase string
}

// NewSigningService creates a new instance of SigningServiceImpl.
func NewSigningService(wallet port.WalletChannel, l port.Logger, cfg *configloader.Config) port.SigningService {
	return &SigningServiceImpl{
		wallet:     wallet,
		logger:     l,
		passphrase: cfg.Network.Passphrase,
	}
}

// Sign hands the envelope to the wallet's approval UI and normalizes the
// response. An explicit human refusal is entity.ErrUserRejected; everything
// else that prevents a usable signature is entity.ErrSigningFailed.
func (s *SigningServiceImpl) Sign(ctx context.Context, envelope entity.UnsignedEnvelope) (entity.SignedEnvelope, error) {
	payload, err := s.wallet.SignTransaction(ctx, envelope.XDR, s.passphrase)
	if err != nil {
		if entity.IsRejectionMessage(err.Error()) {
			return entity.SignedEnvelope{}, fmt.Errorf("%v: %w", err, entity.ErrUserRejected)
		}
		return entity.SignedEnvelope{}, fmt.Errorf("wallet signing call failed: %v: %w", err, entity.ErrSigningFailed)
	}

	if msg, found := utils.ExtractErrorMessage(payload); found {
		if entity.IsRejectionMessage(msg) {
			s.logger.Info("User declined to sign", "kind", envelope.Kind.String())
			return entity.SignedEnvelope{}, fmt.Errorf("%s: %w", msg, entity.ErrUserRejected)
		}
		return entity.SignedEnvelope{}, fmt.Errorf("wallet reported %q: %w", msg, entity.ErrSigningFailed)
	}

	signedXDR, ok := utils.ExtractString(payload, signedXDRFields...)
	if !ok {
		return entity.SignedEnvelope{}, fmt.Errorf("wallet response carries no signed envelope: %w", entity.ErrSigningFailed)
	}

	s.logger.Debug("Envelope signed", "kind", envelope.Kind.String(), "source", envelope.SourceAccount)
	return entity.SignedEnvelope{XDR: signedXDR, Kind: envelope.Kind}, nil
}
