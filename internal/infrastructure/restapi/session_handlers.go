package restapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"swap_gateway/internal/app/port"
)

// SessionHandler handles wallet session endpoints.
type SessionHandler struct {
	sessionService port.SessionService
	balanceService port.BalanceService
}

// NewSessionHandler creates a new instance of SessionHandler.
func NewSessionHandler(ss port.SessionService, bs port.BalanceService) *SessionHandler {
	return &SessionHandler{sessionService: ss, balanceService: bs}
}

// ConnectHandler negotiates wallet access and returns the session state.
func (h *SessionHandler) ConnectHandler(c *gin.Context) {
	state, err := h.sessionService.Connect(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": state})
}

// DisconnectHandler resets the session.
func (h *SessionHandler) DisconnectHandler(c *gin.Context) {
	h.sessionService.Disconnect()
	c.JSON(http.StatusOK, gin.H{"session": h.sessionService.State()})
}

// StatusHandler re-validates the session against the wallet and returns the
// refreshed state plus the detected wallet capabilities.
func (h *SessionHandler) StatusHandler(c *gin.Context) {
	caps := h.sessionService.DetectInstalled(c.Request.Context())
	state := h.sessionService.CheckConnection(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"session": state, "wallet": caps})
}

// AccountHandler returns the valued balance overview for an address.
func (h *SessionHandler) AccountHandler(c *gin.Context) {
	address := c.Param("address")
	overview, err := h.balanceService.AccountOverview(c.Request.Context(), address)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"account": overview})
}
