package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/mvoronkov/go-ledger-sync/internal/logger"
	"github.com/mvoronkov/go-ledger-sync/internal/utils"
	"github.com/mvoronkov/go-ledger-sync/models"
)

func (h *Handler) push(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var pushRequest models.PushRequest
	if err := json.NewDecoder(r.Body).Decode(&pushRequest); err != nil {
		log.Err(err).Str("func", "*Handler.push").Msg("invalid JSON was passed")
		http.Error(w, "invalid JSON was passed", http.StatusBadRequest)
		return
	}

	if !h.requestMatchesToken(w, r, pushRequest.DeviceID, pushRequest.CompanyID) {
		return
	}

	response, err := h.services.SyncService.AcceptPush(ctx, pushRequest)
	if err != nil {
		log.Err(err).Str("func", "*Handler.push").Msg("push rejected")
		http.Error(w, err.Error(), statusFromError(err))
		return
	}

	utils.WriteJSON(w, response, http.StatusOK)
}

func (h *Handler) pull(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	pullRequest, err := pullRequestFromQuery(r)
	if err != nil {
		log.Err(err).Str("func", "*Handler.pull").Msg("invalid pull query")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if !h.requestMatchesToken(w, r, pullRequest.DeviceID, pullRequest.CompanyID) {
		return
	}

	response, err := h.services.SyncService.ReadSince(ctx, pullRequest)
	if err != nil {
		log.Err(err).Str("func", "*Handler.pull").Msg("pull rejected")
		http.Error(w, err.Error(), statusFromError(err))
		return
	}

	utils.WriteJSON(w, response, http.StatusOK)
}

func (h *Handler) ack(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var ackRequest models.AckRequest
	if err := json.NewDecoder(r.Body).Decode(&ackRequest); err != nil {
		log.Err(err).Str("func", "*Handler.ack").Msg("invalid JSON was passed")
		http.Error(w, "invalid JSON was passed", http.StatusBadRequest)
		return
	}

	if !h.requestMatchesToken(w, r, ackRequest.DeviceID, ackRequest.CompanyID) {
		return
	}

	if err := h.services.SyncService.Acknowledge(ctx, ackRequest); err != nil {
		log.Err(err).Str("func", "*Handler.ack").Msg("ack rejected")
		http.Error(w, err.Error(), statusFromError(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// requestMatchesToken rejects requests whose body claims a device or
// company other than the authenticated token's. It writes the error
// response itself and reports whether the handler may proceed.
func (h *Handler) requestMatchesToken(w http.ResponseWriter, r *http.Request, deviceID, companyID string) bool {
	log := logger.FromRequest(r)
	ctx := r.Context()

	tokenDeviceID, found := utils.GetDeviceIDFromContext(ctx)
	if !found || tokenDeviceID != deviceID {
		log.Error().
			Str("token_device_id", tokenDeviceID).
			Str("request_device_id", deviceID).
			Msg("device mismatch between token and request")
		http.Error(w, "device mismatch", http.StatusForbidden)
		return false
	}

	tokenCompanyID, found := utils.GetCompanyIDFromContext(ctx)
	if !found || tokenCompanyID != companyID {
		log.Error().
			Str("token_company_id", tokenCompanyID).
			Str("request_company_id", companyID).
			Msg("company mismatch between token and request")
		http.Error(w, "company mismatch", http.StatusForbidden)
		return false
	}

	return true
}

func pullRequestFromQuery(r *http.Request) (models.PullRequest, error) {
	query := r.URL.Query()

	protocolVersion, err := strconv.Atoi(query.Get("protocol_version"))
	if err != nil {
		return models.PullRequest{}, err
	}

	sinceOffset := int64(0)
	if raw := query.Get("since_offset"); raw != "" {
		if sinceOffset, err = strconv.ParseInt(raw, 10, 64); err != nil {
			return models.PullRequest{}, err
		}
	}

	limit := 0
	if raw := query.Get("limit"); raw != "" {
		if limit, err = strconv.Atoi(raw); err != nil {
			return models.PullRequest{}, err
		}
	}

	return models.PullRequest{
		ProtocolVersion: protocolVersion,
		DeviceID:        query.Get("device_id"),
		CompanyID:       query.Get("company_id"),
		SinceOffset:     sinceOffset,
		Limit:           limit,
	}, nil
}
