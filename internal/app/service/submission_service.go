package service

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/stellar/go/txnbuild"

	"swap_gateway/internal/app/port"
	"swap_gateway/internal/domain/entity"
	"swap_gateway/internal/infrastructure/configloader"
	"swap_gateway/pkg/metrics"
)

// SubmissionServiceImpl implements port.SubmissionService. Lifecycles are
// kept in a TTL cache keyed by the transaction hash, which doubles as the
// action id; one hash is one action instance.
type SubmissionServiceImpl struct {
	ledger       port.LedgerGateway
	contract     port.ContractGateway
	logger       port.Logger
	store        *cache.Cache
	passphrase   string
	pollInterval time.Duration
	maxAttempts  int
}

// NewSubmissionService creates a new instance of SubmissionServiceImpl.
func NewSubmissionService(
	ledger port.LedgerGateway,
	contract port.ContractGateway,
	l port.Logger,
	cfg *configloader.Config,
) port.SubmissionService {
	ttl := time.Duration(cfg.Submission.LifecycleTTLMinutes) * time.Minute
	return &SubmissionServiceImpl{
		ledger:       ledger,
		contract:     contract,
		logger:       l,
		store:        cache.New(ttl, 2*ttl),
		passphrase:   cfg.Network.Passphrase,
		pollInterval: time.Duration(cfg.Submission.PollIntervalSeconds) * time.Second,
		maxAttempts:  cfg.Submission.MaxPollAttempts,
	}
}

// Submit sends a signed envelope and blocks until its lifecycle reaches a
// terminal phase. Failures are terminal: the caller re-runs the whole
// build-sign-submit pipeline, nothing is retried here.
func (s *SubmissionServiceImpl) Submit(ctx context.Context, envelope entity.SignedEnvelope) (entity.TransactionLifecycle, error) {
	actionID, err := envelopeHash(envelope.XDR, s.passphrase)
	if err != nil {
		return entity.TransactionLifecycle{}, fmt.Errorf("failed to derive action id: %w", err)
	}

	lifecycle := entity.NewLifecycle(actionID, envelope.Kind)
	if err := lifecycle.Advance(entity.PhasePending); err != nil {
		return lifecycle, err
	}
	s.save(lifecycle)
	s.logger.Info("Submitting transaction", "action_id", actionID, "kind", envelope.Kind.String())

	var submitErr error
	if envelope.Kind == entity.EnvelopeContractInvocation {
		submitErr = s.submitContract(ctx, &lifecycle, envelope.XDR)
	} else {
		submitErr = s.submitClassic(ctx, &lifecycle, envelope.XDR)
	}
	s.save(lifecycle)

	outcome := string(lifecycle.Phase)
	metrics.SubmissionsTotal.WithLabelValues(envelope.Kind.String(), outcome).Inc()
	if submitErr != nil {
		s.logger.Error("Submission failed",
			"action_id", actionID, "kind", envelope.Kind.String(), "error", submitErr)
		return lifecycle, submitErr
	}
	s.logger.Info("Submission confirmed", "action_id", actionID, "hash", lifecycle.Hash)
	return lifecycle, nil
}

// Status returns the lifecycle for a previously submitted action.
func (s *SubmissionServiceImpl) Status(actionID string) (entity.TransactionLifecycle, bool) {
	raw, found := s.store.Get(actionID)
	if !found {
		return entity.TransactionLifecycle{}, false
	}
	lifecycle, ok := raw.(entity.TransactionLifecycle)
	return lifecycle, ok
}

// submitClassic pushes the envelope through the ledger REST API, which
// itself blocks until the transaction is included or rejected.
func (s *SubmissionServiceImpl) submitClassic(ctx context.Context, lifecycle *entity.TransactionLifecycle, signedXDR string) error {
	hash, err := s.ledger.SubmitXDR(ctx, signedXDR)
	if err != nil {
		_ = lifecycle.Fail(err.Error())
		return err
	}
	return lifecycle.Succeed(hash)
}

// submitContract pushes the envelope through the contract RPC and polls for
// finality, since sendTransaction acknowledges acceptance, not inclusion.
func (s *SubmissionServiceImpl) submitContract(ctx context.Context, lifecycle *entity.TransactionLifecycle, signedXDR string) error {
	hash, err := s.contract.Send(ctx, signedXDR)
	if err != nil {
		_ = lifecycle.Fail(err.Error())
		return fmt.Errorf("%v: %w", err, entity.ErrContractTransactionFailed)
	}

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			_ = lifecycle.Fail("finality poll interrupted: " + ctx.Err().Error())
			return fmt.Errorf("finality poll interrupted: %w", ctx.Err())
		case <-ticker.C:
		}

		status, err := s.contract.TransactionStatus(ctx, hash)
		if err != nil {
			s.logger.Warn("Status poll failed, will retry",
				"hash", hash, "attempt", attempt, "error", err)
			continue
		}
		switch status {
		case entity.ContractTxSuccess:
			metrics.ContractPollAttempts.Observe(float64(attempt))
			return lifecycle.Succeed(hash)
		case entity.ContractTxFailed:
			metrics.ContractPollAttempts.Observe(float64(attempt))
			_ = lifecycle.Fail("transaction reached a failed terminal status")
			return fmt.Errorf("transaction %s failed on chain: %w", hash, entity.ErrContractTransactionFailed)
		case entity.ContractTxNotFound:
			// not yet included, keep polling
		}
	}

	metrics.ContractPollAttempts.Observe(float64(s.maxAttempts))
	_ = lifecycle.Fail(fmt.Sprintf("no terminal status after %d polls", s.maxAttempts))
	return fmt.Errorf("transaction %s did not finalize within %d polls: %w", hash, s.maxAttempts, entity.ErrContractTransactionFailed)
}

func (s *SubmissionServiceImpl) save(lifecycle entity.TransactionLifecycle) {
	s.store.SetDefault(lifecycle.ActionID, lifecycle)
}

// envelopeHash derives the network transaction hash from a serialized
// envelope. The hash is stable across signing, so it identifies the action
// before submission.
func envelopeHash(envelopeXDR, passphrase string) (string, error) {
	generic, err := txnbuild.TransactionFromXDR(envelopeXDR)
	if err != nil {
		return "", fmt.Errorf("failed to parse envelope: %w", err)
	}
	tx, ok := generic.Transaction()
	if !ok {
		return "", fmt.Errorf("envelope is not a simple transaction")
	}
	return tx.HashHex(passphrase)
}
