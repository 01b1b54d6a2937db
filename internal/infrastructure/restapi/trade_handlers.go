package restapi

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"swap_gateway/internal/app/port"
	"swap_gateway/internal/domain/entity"
	"swap_gateway/internal/infrastructure/configloader"
)

// TradeHandler handles the build-sign-submit endpoints: payments, swaps and
// lifecycle status lookups.
type TradeHandler struct {
	sessionService  port.SessionService
	builder         port.EnvelopeBuilder
	signer          port.SigningService
	submitter       port.SubmissionService
	pricingService  port.PricingService
	activityService port.ActivityService
	cfg             *configloader.Config
	logger          port.Logger
}

// NewTradeHandler creates a new instance of TradeHandler.
func NewTradeHandler(
	ss port.SessionService,
	builder port.EnvelopeBuilder,
	signer port.SigningService,
	submitter port.SubmissionService,
	ps port.PricingService,
	as port.ActivityService,
	cfg *configloader.Config,
	l port.Logger,
) *TradeHandler {
	return &TradeHandler{
		sessionService:  ss,
		builder:         builder,
		signer:          signer,
		submitter:       submitter,
		pricingService:  ps,
		activityService: as,
		cfg:             cfg,
		logger:          l,
	}
}

// PaymentRequest is the payment endpoint request body.
type PaymentRequest struct {
	Destination string `json:"destination" binding:"required"`
	Amount      string `json:"amount" binding:"required"`
	Memo        string `json:"memo"`
}

// SwapRequest is the swap endpoint request body. Assets are referenced by
// their configured code.
type SwapRequest struct {
	SellAsset  string `json:"sellAsset" binding:"required"`
	BuyAsset   string `json:"buyAsset" binding:"required"`
	SellAmount string `json:"sellAmount" binding:"required"`
	MinPrice   string `json:"minPrice" binding:"required"`
}

// EstimateRequest is the estimate/preview request body.
type EstimateRequest struct {
	SellAsset  string `json:"sellAsset" binding:"required"`
	BuyAsset   string `json:"buyAsset" binding:"required"`
	SellAmount string `json:"sellAmount" binding:"required"`
}

// PaymentHandler runs the full payment pipeline for the connected wallet.
func (h *TradeHandler) PaymentHandler(c *gin.Context) {
	var req PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": APIError{Tag: "validation", Message: err.Error()}})
		return
	}
	source, ok := h.connectedAddress(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	envelope, err := h.builder.BuildPayment(ctx, source, req.Destination, req.Amount, req.Memo)
	if err != nil {
		writeError(c, err)
		return
	}
	lifecycle, err := h.signAndSubmit(c, envelope)
	if err != nil {
		return
	}
	c.JSON(http.StatusOK, gin.H{"lifecycle": lifecycle})
}

// SwapHandler runs the full swap pipeline. On success the swap is inserted
// into the activity feed optimistically and recorded on-chain in the
// background; neither affects the response.
func (h *TradeHandler) SwapHandler(c *gin.Context) {
	var req SwapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": APIError{Tag: "validation", Message: err.Error()}})
		return
	}
	source, ok := h.connectedAddress(c)
	if !ok {
		return
	}
	sell, buy, err := h.resolvePair(req.SellAsset, req.BuyAsset)
	if err != nil {
		writeError(c, err)
		return
	}

	ctx := c.Request.Context()
	envelope, err := h.builder.BuildSwapOffer(ctx, source, sell, buy, req.SellAmount, req.MinPrice)
	if err != nil {
		writeError(c, err)
		return
	}
	lifecycle, err := h.signAndSubmit(c, envelope)
	if err != nil {
		return
	}

	h.activityService.InsertLocal(entity.SwapActivityRecord{
		User:      source,
		FromAsset: sell.Code,
		ToAsset:   buy.Code,
		Amount:    req.SellAmount,
		TxHash:    lifecycle.Hash,
	})
	h.activityService.RecordSwap(source, sell.Code, buy.Code, req.SellAmount)
	h.logger.Info("Swap confirmed",
		"user", source, "pair", sell.Code+"/"+buy.Code, "amount", req.SellAmount, "hash", lifecycle.Hash)

	c.JSON(http.StatusOK, gin.H{"lifecycle": lifecycle})
}

// EstimateHandler returns a one-shot receive estimate plus the snapshot it
// was computed from.
func (h *TradeHandler) EstimateHandler(c *gin.Context) {
	var req EstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": APIError{Tag: "validation", Message: err.Error()}})
		return
	}
	sell, buy, err := h.resolvePair(req.SellAsset, req.BuyAsset)
	if err != nil {
		writeError(c, err)
		return
	}

	ctx := c.Request.Context()
	receive, err := h.pricingService.EstimateReceive(ctx, sell, buy, req.SellAmount)
	if err != nil {
		writeError(c, err)
		return
	}
	snapshot, err := h.pricingService.Snapshot(ctx, sell, buy)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"receive": receive, "orderbook": snapshot})
}

// PreviewRequestHandler schedules a debounced preview refresh and returns
// immediately.
func (h *TradeHandler) PreviewRequestHandler(c *gin.Context) {
	var req EstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": APIError{Tag: "validation", Message: err.Error()}})
		return
	}
	sell, buy, err := h.resolvePair(req.SellAsset, req.BuyAsset)
	if err != nil {
		writeError(c, err)
		return
	}
	h.pricingService.RequestPreview(sell, buy, req.SellAmount)
	c.JSON(http.StatusAccepted, gin.H{"scheduled": true})
}

// PreviewHandler returns the most recently applied preview.
func (h *TradeHandler) PreviewHandler(c *gin.Context) {
	preview, ok := h.pricingService.LatestPreview()
	if !ok {
		c.JSON(http.StatusNoContent, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"preview": preview})
}

// TransactionStatusHandler looks up the lifecycle of a submitted action.
func (h *TradeHandler) TransactionStatusHandler(c *gin.Context) {
	actionID := c.Param("id")
	lifecycle, found := h.submitter.Status(actionID)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": APIError{Tag: "validation", Message: "unknown action id"}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"lifecycle": lifecycle})
}

// signAndSubmit drives the shared tail of every pipeline. On failure the
// error response has already been written.
func (h *TradeHandler) signAndSubmit(c *gin.Context, envelope entity.UnsignedEnvelope) (entity.TransactionLifecycle, error) {
	ctx := c.Request.Context()
	signed, err := h.signer.Sign(ctx, envelope)
	if err != nil {
		writeError(c, err)
		return entity.TransactionLifecycle{}, err
	}
	lifecycle, err := h.submitter.Submit(ctx, signed)
	if err != nil {
		// the lifecycle payload still matters to the client, expose it
		// alongside the taxonomy tag
		tag := entity.ErrorTag(err)
		status, ok := tagStatus[tag]
		if !ok {
			status = http.StatusBadGateway
		}
		c.JSON(status, gin.H{
			"error":     APIError{Tag: tag, Message: err.Error()},
			"lifecycle": lifecycle,
		})
		return lifecycle, err
	}
	return lifecycle, nil
}

// connectedAddress resolves the session address, writing a 401 when no
// wallet session is active.
func (h *TradeHandler) connectedAddress(c *gin.Context) (string, bool) {
	state := h.sessionService.State()
	if !state.IsConnected || state.Address == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": APIError{Tag: "validation", Message: "no wallet session, connect first"}})
		return "", false
	}
	return state.Address, true
}

// resolvePair maps asset codes onto configured descriptors.
func (h *TradeHandler) resolvePair(sellCode, buyCode string) (entity.AssetDescriptor, entity.AssetDescriptor, error) {
	sell, ok := h.cfg.FindAsset(sellCode)
	if !ok {
		return entity.AssetDescriptor{}, entity.AssetDescriptor{},
			fmt.Errorf("sell asset %q: %w", sellCode, entity.ErrUnsupportedAsset)
	}
	buy, ok := h.cfg.FindAsset(buyCode)
	if !ok {
		return entity.AssetDescriptor{}, entity.AssetDescriptor{},
			fmt.Errorf("buy asset %q: %w", buyCode, entity.ErrUnsupportedAsset)
	}
	if sell.CanonicalID() == buy.CanonicalID() {
		return entity.AssetDescriptor{}, entity.AssetDescriptor{},
			fmt.Errorf("sell and buy assets are identical: %w", entity.ErrUnsupportedAsset)
	}
	return sell, buy, nil
}
