package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/mvoronkov/go-ledger-sync/models"
)

func TestHealth(t *testing.T) {
	h, _, appInfoSvc := newTestHandler(t)

	appInfoSvc.EXPECT().GetRegion(gomock.Any()).Return("eu-west")

	req := injectNopLogger(httptest.NewRequest(http.MethodGet, "/health", nil))
	rr := httptest.NewRecorder()
	h.health(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp models.HealthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "eu-west", resp.Region)
	assert.WithinDuration(t, time.Now(), resp.Timestamp, time.Minute)
}
