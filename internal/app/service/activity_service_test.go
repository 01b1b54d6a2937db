package service

import (
	"context"
	"errors"
	"testing"

	"swap_gateway/internal/domain/entity"
)

func activityFixture(contract *fakeContract) *ActivityServiceImpl {
	svc := NewActivityService(contract, nil, nil, nil, testLogger{}, testConfig())
	return svc.(*ActivityServiceImpl)
}

func TestRecentIsCappedAndNewestFirst(t *testing.T) {
	svc := activityFixture(&fakeContract{deployed: true})

	// cap in testConfig is 3
	for i := int64(1); i <= 5; i++ {
		svc.InsertLocal(entity.SwapActivityRecord{
			User:             "GUSER",
			FromAsset:        "XLM",
			ToAsset:          "USDC",
			Amount:           "1",
			TimestampSeconds: i,
			TxHash:           string(rune('a' + i)),
		})
	}

	recent := svc.Recent()
	if len(recent) != 3 {
		t.Fatalf("expected capped feed of 3, got %d", len(recent))
	}
	if recent[0].TimestampSeconds != 5 || recent[2].TimestampSeconds != 3 {
		t.Fatalf("feed not newest-first: %+v", recent)
	}
}

func TestMergeDeduplicatesByTxHash(t *testing.T) {
	svc := activityFixture(&fakeContract{deployed: true})

	svc.InsertLocal(entity.SwapActivityRecord{
		User: "GUSER", FromAsset: "XLM", ToAsset: "USDC",
		Amount: "5", TimestampSeconds: 10, TxHash: "samehash",
	})
	// confirmed copy of the same swap arrives from the event stream
	svc.merge([]entity.SwapActivityRecord{{
		User: "GUSER", FromAsset: "XLM", ToAsset: "USDC",
		Amount: "5", TimestampSeconds: 11, TxHash: "samehash",
	}})

	recent := svc.Recent()
	if len(recent) != 1 {
		t.Fatalf("expected deduplicated feed, got %d records", len(recent))
	}
	if recent[0].Local {
		t.Fatal("confirmed record should replace the optimistic one")
	}
	if recent[0].TimestampSeconds != 11 {
		t.Fatalf("confirmed fields should win: %+v", recent[0])
	}
}

func TestPollNewAdvancesCursor(t *testing.T) {
	contract := &fakeContract{
		deployed: true,
		swapEvents: func(ctx context.Context, cursor string, limit int) (entity.EventPage, error) {
			if cursor != "" {
				t.Fatalf("expected empty cursor on first poll, got %q", cursor)
			}
			return entity.EventPage{
				Records: []entity.SwapActivityRecord{{
					User: "GUSER", FromAsset: "XLM", ToAsset: "USDC",
					Amount: "2", TimestampSeconds: 100, TxHash: "evhash",
				}},
				Cursor: "cursor-1",
			}, nil
		},
	}
	svc := activityFixture(contract)

	svc.PollNew(context.Background())
	if svc.cursor != "cursor-1" {
		t.Fatalf("cursor not advanced, got %q", svc.cursor)
	}
	if len(svc.Recent()) != 1 {
		t.Fatalf("expected 1 record after poll, got %d", len(svc.Recent()))
	}
}

func TestPollNewKeepsCursorOnError(t *testing.T) {
	fail := false
	contract := &fakeContract{
		deployed: true,
		swapEvents: func(ctx context.Context, cursor string, limit int) (entity.EventPage, error) {
			if fail {
				return entity.EventPage{}, errors.New("rpc down")
			}
			return entity.EventPage{Cursor: "cursor-1"}, nil
		},
	}
	svc := activityFixture(contract)

	svc.PollNew(context.Background())
	fail = true
	svc.PollNew(context.Background())
	if svc.cursor != "cursor-1" {
		t.Fatalf("cursor must survive a failed round, got %q", svc.cursor)
	}
}

func TestUndeployedContractYieldsEmptyFeed(t *testing.T) {
	called := false
	contract := &fakeContract{
		deployed: false,
		recentSwaps: func(ctx context.Context, count int) ([]entity.SwapActivityRecord, error) {
			called = true
			return nil, nil
		},
	}
	svc := activityFixture(contract)

	svc.LoadRecent(context.Background(), 10)
	svc.PollNew(context.Background())
	if called {
		t.Fatal("undeployed contract must not be queried")
	}
	if len(svc.Recent()) != 0 {
		t.Fatal("expected empty feed")
	}
}

func TestSwapCountSwallowsErrors(t *testing.T) {
	contract := &fakeContract{
		deployed: true,
		swapCount: func(ctx context.Context) (uint64, error) {
			return 0, errors.New("rpc down")
		},
	}
	svc := activityFixture(contract)

	if got := svc.SwapCount(context.Background()); got != 0 {
		t.Fatalf("expected 0 on error, got %d", got)
	}
}
