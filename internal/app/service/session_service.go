package service

import (
	"context"
	"fmt"
	"sync"

	"swap_gateway/internal/app/port"
	"swap_gateway/internal/domain/entity"
	"swap_gateway/internal/infrastructure/configloader"
	"swap_gateway/internal/pkg/utils"
)

// addressFields are the payload field names wallet bridge builds use for the
// active address, checked in order after the bare-scalar case.
var addressFields = []string{"address", "publicKey", "pubKey", "account"}

// networkFields carry the wallet's active network passphrase.
var networkFields = []string{"networkPassphrase", "network", "passphrase"}

// SessionServiceImpl implements port.SessionService.
type SessionServiceImpl struct {
	wallet     port.WalletChannel
	logger     port.Logger
	passphrase string
	label      string

	mu    sync.RWMutex
	state entity.ConnectionState
	caps  entity.WalletCapabilities
}

// NewSessionService creates a new instance of SessionServiceImpl.
func NewSessionService(wallet port.WalletChannel, l port.Logger, cfg *configloader.Config) port.SessionService {
	return &SessionServiceImpl{
		wallet:     wallet,
		logger:     l,
		passphrase: cfg.Network.Passphrase,
		label:      cfg.WalletBridge.Label,
	}
}

// DetectInstalled pings the wallet bridge. Any transport failure is treated
// as "not installed" rather than an error.
func (s *SessionServiceImpl) DetectInstalled(ctx context.Context) entity.WalletCapabilities {
	supportsV2, err := s.wallet.Ping(ctx)
	if err != nil {
		s.logger.Debug("Wallet bridge not reachable", "error", err)
		caps := entity.WalletCapabilities{}
		s.setCaps(caps)
		return caps
	}
	caps := entity.WalletCapabilities{IsInstalled: true, SupportsV2Access: supportsV2}
	s.setCaps(caps)
	return caps
}

// Connect negotiates wallet access, newest capability first with legacy
// fallback, then records the session state.
func (s *SessionServiceImpl) Connect(ctx context.Context) (entity.ConnectionState, error) {
	caps := s.DetectInstalled(ctx)
	if !caps.IsInstalled {
		return entity.ConnectionState{}, fmt.Errorf("wallet bridge is unreachable: %w", entity.ErrWalletNotFound)
	}

	address, err := s.negotiateAddress(ctx, caps)
	if err != nil {
		return entity.ConnectionState{}, err
	}

	state := entity.ConnectionState{
		Address:     address,
		IsConnected: true,
		NetworkOK:   s.networkMatches(ctx),
		WalletLabel: s.label,
	}
	s.setState(state)
	s.logger.Info("Wallet session established",
		"address", address, "v2", caps.SupportsV2Access, "network_ok", state.NetworkOK)
	return state, nil
}

// negotiateAddress runs the capability-ordered access flow. A v2 failure
// that is not an explicit refusal falls back to the legacy v1 flow.
func (s *SessionServiceImpl) negotiateAddress(ctx context.Context, caps entity.WalletCapabilities) (string, error) {
	if caps.SupportsV2Access {
		payload, err := s.wallet.RequestAccess(ctx)
		if err == nil {
			if msg, found := utils.ExtractErrorMessage(payload); found {
				if entity.IsRejectionMessage(msg) {
					return "", fmt.Errorf("%s: %w", msg, entity.ErrConnectionRejected)
				}
				s.logger.Warn("v2 access request reported an error, falling back to legacy flow", "message", msg)
			} else if address, ok := utils.ExtractString(payload, addressFields...); ok {
				return address, nil
			}
		} else {
			s.logger.Warn("v2 access request failed, falling back to legacy flow", "error", err)
		}
	}

	// only an explicit refusal classifies as a rejection; transport and
	// parse failures stay plain wallet/network errors
	allowed, err := s.wallet.SetAllowed(ctx)
	if err != nil {
		return "", fmt.Errorf("legacy allow flow failed: %w", err)
	}
	if !allowed {
		return "", fmt.Errorf("user declined the connection: %w", entity.ErrConnectionRejected)
	}

	payload, err := s.wallet.GetPublicKey(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to read public key after grant: %w", err)
	}
	address, ok := utils.ExtractString(payload, addressFields...)
	if !ok {
		return "", fmt.Errorf("wallet granted access but produced no address")
	}
	return address, nil
}

// ActiveAddress returns the wallet's current address, trying the v2
// capability first. It returns "" instead of an error.
func (s *SessionServiceImpl) ActiveAddress(ctx context.Context) string {
	s.mu.RLock()
	caps := s.caps
	s.mu.RUnlock()

	if caps.SupportsV2Access {
		if payload, err := s.wallet.GetAddress(ctx); err == nil {
			if address, ok := utils.ExtractString(payload, addressFields...); ok {
				return address
			}
		}
	}
	payload, err := s.wallet.GetPublicKey(ctx)
	if err != nil {
		return ""
	}
	address, _ := utils.ExtractString(payload, addressFields...)
	return address
}

// CheckConnection re-validates the session against the wallet. A wallet that
// no longer produces an address resets the session; a changed address is
// adopted as the new session address.
func (s *SessionServiceImpl) CheckConnection(ctx context.Context) entity.ConnectionState {
	s.mu.RLock()
	connected := s.state.IsConnected
	s.mu.RUnlock()
	if !connected {
		return s.State()
	}

	address := s.ActiveAddress(ctx)
	if address == "" {
		s.logger.Warn("Wallet no longer produces an address, dropping session")
		s.Disconnect()
		return s.State()
	}

	state := entity.ConnectionState{
		Address:     address,
		IsConnected: true,
		NetworkOK:   s.networkMatches(ctx),
		WalletLabel: s.label,
	}
	s.setState(state)
	return state
}

// Disconnect resets the session to the empty state.
func (s *SessionServiceImpl) Disconnect() {
	s.setState(entity.ConnectionState{})
	s.logger.Info("Wallet session cleared")
}

// State returns a copy of the current session state.
func (s *SessionServiceImpl) State() entity.ConnectionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// networkMatches compares the wallet's active network passphrase with the
// configured one. The check fails open: a wallet that cannot answer or
// answers in an unknown shape never blocks usage, only an extracted
// passphrase that genuinely differs does.
func (s *SessionServiceImpl) networkMatches(ctx context.Context) bool {
	payload, err := s.wallet.GetNetworkPassphrase(ctx)
	if err != nil {
		s.logger.Debug("Failed to query wallet network, assuming it matches", "error", err)
		return true
	}
	passphrase, ok := utils.ExtractString(payload, networkFields...)
	if !ok {
		return true
	}
	return passphrase == s.passphrase
}

func (s *SessionServiceImpl) setState(state entity.ConnectionState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

func (s *SessionServiceImpl) setCaps(caps entity.WalletCapabilities) {
	s.mu.Lock()
	s.caps = caps
	s.mu.Unlock()
}
