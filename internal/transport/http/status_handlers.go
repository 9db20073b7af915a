package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vovakirdan/soc-receiver/internal/listener"
)

// StatusResponse is the body of GET /stats.
type StatusResponse struct {
	Endpoint string         `json:"endpoint"`
	State    string         `json:"state"`
	Stats    listener.Stats `json:"stats"`
}

// StatusHandlers serves health and counters of the alert listener.
type StatusHandlers struct {
	status Status
}

func NewStatusHandlers(status Status) *StatusHandlers {
	return &StatusHandlers{status: status}
}

// Health handles GET /health.
func (h *StatusHandlers) Health(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// Stats handles GET /stats.
func (h *StatusHandlers) Stats(c *gin.Context) {
	resp := StatusResponse{
		State: h.status.State().String(),
		Stats: h.status.Stats(),
	}
	if addr := h.status.Addr(); addr != nil {
		resp.Endpoint = addr.String()
	}
	c.JSON(http.StatusOK, resp)
}
