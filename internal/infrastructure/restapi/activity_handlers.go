package restapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"swap_gateway/internal/app/port"
)

// ActivityHandler handles the recent-swaps feed endpoints.
type ActivityHandler struct {
	activityService port.ActivityService
}

// NewActivityHandler creates a new instance of ActivityHandler.
func NewActivityHandler(as port.ActivityService) *ActivityHandler {
	return &ActivityHandler{activityService: as}
}

// RecentHandler returns the merged feed, newest first, plus the contract's
// total swap count.
func (h *ActivityHandler) RecentHandler(c *gin.Context) {
	records := h.activityService.Recent()

	if limitStr := c.Query("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 && limit < len(records) {
			records = records[:limit]
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"swaps":      records,
		"totalCount": h.activityService.SwapCount(c.Request.Context()),
	})
}

// RefreshHandler forces one synchronous poll round before returning the feed.
func (h *ActivityHandler) RefreshHandler(c *gin.Context) {
	h.activityService.PollNew(c.Request.Context())
	h.RecentHandler(c)
}
