package http

import (
	"net/http"
	"time"

	"github.com/mvoronkov/go-ledger-sync/internal/utils"
	"github.com/mvoronkov/go-ledger-sync/models"
)

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	response := models.HealthResponse{
		Status:    "ok",
		Region:    h.services.AppInfoService.GetRegion(ctx),
		Timestamp: time.Now(),
	}

	utils.WriteJSON(w, response, http.StatusOK)
}
