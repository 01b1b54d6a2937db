package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/stellar/go/amount"
	"github.com/stellar/go/xdr"

	"swap_gateway/internal/app/port"
	"swap_gateway/internal/domain/entity"
	"swap_gateway/internal/infrastructure/configloader"
	"swap_gateway/internal/infrastructure/sorobanrpc"
	"swap_gateway/pkg/metrics"
)

// recordTimeout bounds one fire-and-forget record_swap pipeline, including
// the wallet approval wait and the finality poll.
const recordTimeout = 3 * time.Minute

// ActivityServiceImpl implements port.ActivityService. The feed merges two
// sources: optimistic local records and the authoritative on-chain event
// stream, deduplicated by transaction hash.
type ActivityServiceImpl struct {
	contract   port.ContractGateway
	builder    port.EnvelopeBuilder
	signer     port.SigningService
	submitter  port.SubmissionService
	logger     port.Logger
	contractID string

	maxRecords   int
	pageLimit    int
	pollInterval time.Duration

	mu      sync.Mutex
	records []entity.SwapActivityRecord
	cursor  string
}

// NewActivityService creates a new instance of ActivityServiceImpl.
func NewActivityService(
	contract port.ContractGateway,
	builder port.EnvelopeBuilder,
	signer port.SigningService,
	submitter port.SubmissionService,
	l port.Logger,
	cfg *configloader.Config,
) port.ActivityService {
	return &ActivityServiceImpl{
		contract:     contract,
		builder:      builder,
		signer:       signer,
		submitter:    submitter,
		logger:       l,
		contractID:   cfg.SwapTracker.ContractID,
		maxRecords:   cfg.Activity.MaxRecords,
		pageLimit:    cfg.Activity.EventPageLimit,
		pollInterval: time.Duration(cfg.Activity.PollIntervalSeconds) * time.Second,
	}
}

// LoadRecent fetches the newest records once and merges them into the feed.
// Failures leave the feed as it was; the poll loop will catch up later.
func (s *ActivityServiceImpl) LoadRecent(ctx context.Context, count int) {
	if !s.contract.Deployed() {
		return
	}
	records, err := s.contract.RecentSwaps(ctx, count)
	if err != nil {
		s.logger.Warn("Failed to load recent swaps", "error", err)
		return
	}
	s.merge(records)
}

// PollNew fetches records newer than the internal cursor. On error the
// cursor is preserved so nothing is skipped on the next round.
func (s *ActivityServiceImpl) PollNew(ctx context.Context) {
	if !s.contract.Deployed() {
		return
	}

	s.mu.Lock()
	cursor := s.cursor
	s.mu.Unlock()

	page, err := s.contract.SwapEvents(ctx, cursor, s.pageLimit)
	if err != nil {
		metrics.ActivityPollErrors.Inc()
		s.logger.Warn("Activity poll round failed", "cursor", cursor, "error", err)
		return
	}

	s.mu.Lock()
	s.cursor = page.Cursor
	s.mu.Unlock()
	if len(page.Records) > 0 {
		s.merge(page.Records)
		s.logger.Debug("Merged new swap events", "count", len(page.Records), "cursor", page.Cursor)
	}
}

// InsertLocal places an optimistic locally-originated record into the feed.
func (s *ActivityServiceImpl) InsertLocal(record entity.SwapActivityRecord) {
	record.Local = true
	if record.TimestampSeconds == 0 {
		record.TimestampSeconds = time.Now().Unix()
	}
	s.merge([]entity.SwapActivityRecord{record})
}

// Recent returns a copy of the merged feed, newest first.
func (s *ActivityServiceImpl) Recent() []entity.SwapActivityRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.SwapActivityRecord, len(s.records))
	copy(out, s.records)
	return out
}

// SwapCount returns the contract's total recorded swap count; zero when the
// contract is undeployed or unreadable.
func (s *ActivityServiceImpl) SwapCount(ctx context.Context) uint64 {
	count, err := s.contract.SwapCount(ctx)
	if err != nil {
		s.logger.Warn("Failed to read swap count", "error", err)
		return 0
	}
	return count
}

// RecordSwap asynchronously records a completed swap on-chain. The primary
// swap already succeeded, so failures here are logged and swallowed.
func (s *ActivityServiceImpl) RecordSwap(user, fromAsset, toAsset, amountStr string) {
	if !s.contract.Deployed() {
		s.logger.Debug("Swap tracker undeployed, skipping on-chain record")
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		defer cancel()

		scaled, err := amount.ParseInt64(amountStr)
		if err != nil {
			s.logger.Warn("Swap record amount does not parse, skipping", "amount", amountStr, "error", err)
			return
		}
		userVal, err := sorobanrpc.AccountAddressVal(user)
		if err != nil {
			s.logger.Warn("Swap record user does not parse, skipping", "user", user, "error", err)
			return
		}

		args := []xdr.ScVal{
			userVal,
			sorobanrpc.StringVal(fromAsset),
			sorobanrpc.StringVal(toAsset),
			sorobanrpc.I128Val(scaled),
			sorobanrpc.U64Val(uint64(time.Now().Unix())),
		}

		envelope, err := s.builder.BuildContractInvocation(ctx, user, s.contractID, "record_swap", args)
		if err != nil {
			s.logger.Warn("Failed to build swap record invocation", "error", err)
			return
		}
		signed, err := s.signer.Sign(ctx, envelope)
		if err != nil {
			s.logger.Warn("Swap record signing did not complete", "error", err)
			return
		}
		lifecycle, err := s.submitter.Submit(ctx, signed)
		if err != nil {
			s.logger.Warn("Swap record submission failed", "error", err)
			return
		}
		s.logger.Info("Swap recorded on chain", "hash", lifecycle.Hash, "user", user)
	}()
}

// Run drives the periodic poll loop until ctx is cancelled.
func (s *ActivityServiceImpl) Run(ctx context.Context) {
	s.LoadRecent(ctx, s.maxRecords)

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Activity poll loop stopped")
			return
		case <-ticker.C:
			s.PollNew(ctx)
		}
	}
}

// merge folds new records into the feed, deduplicating against existing
// entries, then re-sorts newest first and trims to the cap. A confirmed
// record replaces the optimistic one that shares its transaction hash.
func (s *ActivityServiceImpl) merge(incoming []entity.SwapActivityRecord) {
	if len(incoming) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	byKey := make(map[string]int, len(s.records))
	for i, r := range s.records {
		byKey[r.DedupKey()] = i
	}
	for _, r := range incoming {
		if i, exists := byKey[r.DedupKey()]; exists {
			if s.records[i].Local && !r.Local {
				s.records[i] = r
			}
			continue
		}
		s.records = append(s.records, r)
		byKey[r.DedupKey()] = len(s.records) - 1
	}

	sort.SliceStable(s.records, func(i, j int) bool {
		return s.records[i].TimestampSeconds > s.records[j].TimestampSeconds
	})
	if len(s.records) > s.maxRecords {
		s.records = s.records[:s.maxRecords]
	}
}
