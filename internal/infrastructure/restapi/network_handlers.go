package restapi

import (
	"errors"
	"net/http"

	"contract_deployer/internal/app/port"
	"contract_deployer/internal/domain/entity"

	"github.com/gin-gonic/gin"
)

// NetworkHandler exposes the redacted network profiles.
type NetworkHandler struct {
	registry port.NetworkRegistry
}

// NewNetworkHandler creates a new NetworkHandler.
func NewNetworkHandler(registry port.NetworkRegistry) *NetworkHandler {
	return &NetworkHandler{registry: registry}
}

// ListNetworksHandler returns every known network.
func (h *NetworkHandler) ListNetworksHandler(c *gin.Context) {
	profiles := h.registry.Profiles()
	summaries := make([]entity.NetworkSummary, 0, len(profiles))
	for _, p := range profiles {
		summaries = append(summaries, p.Summary())
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"networks": summaries}})
}

// GetNetworkHandler returns a single network by name.
func (h *NetworkHandler) GetNetworkHandler(c *gin.Context) {
	profile, err := h.registry.Resolve(c.Param("name"))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, entity.ErrUnknownNetwork) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"status_message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": profile.Summary()})
}
