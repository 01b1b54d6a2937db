package service

import (
	"context"
	"errors"
	"testing"

	"swap_gateway/internal/domain/entity"
)

func signingEnvelope() entity.UnsignedEnvelope {
	return entity.UnsignedEnvelope{XDR: "AAAA...", Kind: entity.EnvelopeSwapOffer, SourceAccount: "GADDR"}
}

func TestSignExtractsVendorFieldNames(t *testing.T) {
	payloads := []any{
		"AAAAsigned",
		map[string]any{"signedTxXdr": "AAAAsigned"},
		map[string]any{"signedXDR": "AAAAsigned"},
		map[string]any{"signed_envelope_xdr": "AAAAsigned"},
	}
	for _, payload := range payloads {
		payload := payload
		wallet := &fakeWallet{
			sign: func(ctx context.Context, envelopeXDR, passphrase string) (any, error) {
				return payload, nil
			},
		}
		svc := NewSigningService(wallet, testLogger{}, testConfig())

		signed, err := svc.Sign(context.Background(), signingEnvelope())
		if err != nil {
			t.Fatalf("payload %v: Sign returned error: %v", payload, err)
		}
		if signed.XDR != "AAAAsigned" {
			t.Fatalf("payload %v: unexpected XDR %q", payload, signed.XDR)
		}
		if signed.Kind != entity.EnvelopeSwapOffer {
			t.Fatalf("payload %v: kind not carried over", payload)
		}
	}
}

func TestSignUserRejection(t *testing.T) {
	wallet := &fakeWallet{
		sign: func(ctx context.Context, envelopeXDR, passphrase string) (any, error) {
			return map[string]any{"error": map[string]any{"message": "User declined access"}}, nil
		},
	}
	svc := NewSigningService(wallet, testLogger{}, testConfig())

	_, err := svc.Sign(context.Background(), signingEnvelope())
	if !errors.Is(err, entity.ErrUserRejected) {
		t.Fatalf("expected ErrUserRejected, got %v", err)
	}
}

func TestSignTransportRejectionMessage(t *testing.T) {
	wallet := &fakeWallet{
		sign: func(ctx context.Context, envelopeXDR, passphrase string) (any, error) {
			return nil, errors.New("request was rejected")
		},
	}
	svc := NewSigningService(wallet, testLogger{}, testConfig())

	_, err := svc.Sign(context.Background(), signingEnvelope())
	if !errors.Is(err, entity.ErrUserRejected) {
		t.Fatalf("expected ErrUserRejected for rejection wording, got %v", err)
	}
}

func TestSignNoUsablePayload(t *testing.T) {
	wallet := &fakeWallet{
		sign: func(ctx context.Context, envelopeXDR, passphrase string) (any, error) {
			return map[string]any{"unexpected": true}, nil
		},
	}
	svc := NewSigningService(wallet, testLogger{}, testConfig())

	_, err := svc.Sign(context.Background(), signingEnvelope())
	if !errors.Is(err, entity.ErrSigningFailed) {
		t.Fatalf("expected ErrSigningFailed, got %v", err)
	}
}

func TestSignWalletErrorIsNotRejection(t *testing.T) {
	wallet := &fakeWallet{
		sign: func(ctx context.Context, envelopeXDR, passphrase string) (any, error) {
			return map[string]any{"error": "internal wallet failure"}, nil
		},
	}
	svc := NewSigningService(wallet, testLogger{}, testConfig())

	_, err := svc.Sign(context.Background(), signingEnvelope())
	if !errors.Is(err, entity.ErrSigningFailed) {
		t.Fatalf("expected ErrSigningFailed, got %v", err)
	}
	if errors.Is(err, entity.ErrUserRejected) {
		t.Fatal("generic wallet errors must not classify as user rejection")
	}
}
