package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/mvoronkov/go-ledger-sync/internal/service"
	"github.com/mvoronkov/go-ledger-sync/internal/utils"
	"github.com/mvoronkov/go-ledger-sync/models"
)

// withIdentity stands in for the auth middleware when handlers are called
// directly.
func withIdentity(r *http.Request, deviceID, companyID string) *http.Request {
	ctx := r.Context()
	ctx = context.WithValue(ctx, utils.DeviceIDCtxKey, deviceID)
	ctx = context.WithValue(ctx, utils.CompanyIDCtxKey, companyID)
	return r.WithContext(ctx)
}

func newPushRequest(t *testing.T, body any) *http.Request {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/sync/push", bytes.NewReader(raw))
	return injectNopLogger(req)
}

func TestPush_Success(t *testing.T) {
	h, syncSvc, _ := newTestHandler(t)

	pushRequest := models.PushRequest{
		ProtocolVersion: models.ProtocolVersion,
		DeviceID:        "device-a",
		CompanyID:       "acme",
		Changes: []models.Change{
			{ChangeID: "ch-1", EntityID: "ent-1", DeviceID: "device-a"},
		},
	}
	expected := models.PushResponse{
		ProtocolVersion: models.ProtocolVersion,
		Success:         true,
		Accepted:        []string{"ch-1"},
		Timestamp:       time.Unix(1700000000, 0).UTC(),
	}

	syncSvc.EXPECT().
		AcceptPush(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, got models.PushRequest) (models.PushResponse, error) {
			assert.Equal(t, pushRequest.DeviceID, got.DeviceID)
			assert.Equal(t, pushRequest.CompanyID, got.CompanyID)
			assert.Len(t, got.Changes, 1)
			return expected, nil
		})

	req := withIdentity(newPushRequest(t, pushRequest), "device-a", "acme")
	rr := httptest.NewRecorder()
	h.push(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp models.PushResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, []string{"ch-1"}, resp.Accepted)
}

func TestPush_InvalidJSON(t *testing.T) {
	h, _, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/sync/push", strings.NewReader("{not json"))
	req = withIdentity(injectNopLogger(req), "device-a", "acme")

	rr := httptest.NewRecorder()
	h.push(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestPush_DeviceMismatch(t *testing.T) {
	h, _, _ := newTestHandler(t)

	pushRequest := models.PushRequest{
		ProtocolVersion: models.ProtocolVersion,
		DeviceID:        "device-b",
		CompanyID:       "acme",
	}

	req := withIdentity(newPushRequest(t, pushRequest), "device-a", "acme")
	rr := httptest.NewRecorder()
	h.push(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Contains(t, rr.Body.String(), "device mismatch")
}

func TestPush_CompanyMismatch(t *testing.T) {
	h, _, _ := newTestHandler(t)

	pushRequest := models.PushRequest{
		ProtocolVersion: models.ProtocolVersion,
		DeviceID:        "device-a",
		CompanyID:       "globex",
	}

	req := withIdentity(newPushRequest(t, pushRequest), "device-a", "acme")
	rr := httptest.NewRecorder()
	h.push(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Contains(t, rr.Body.String(), "company mismatch")
}

func TestPush_ServiceErrorMapped(t *testing.T) {
	h, syncSvc, _ := newTestHandler(t)

	pushRequest := models.PushRequest{
		ProtocolVersion: 99,
		DeviceID:        "device-a",
		CompanyID:       "acme",
	}

	syncSvc.EXPECT().
		AcceptPush(gomock.Any(), gomock.Any()).
		Return(models.PushResponse{}, service.ErrUnsupportedProtocol)

	req := withIdentity(newPushRequest(t, pushRequest), "device-a", "acme")
	rr := httptest.NewRecorder()
	h.push(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestPull_Success(t *testing.T) {
	h, syncSvc, _ := newTestHandler(t)

	expected := models.PullResponse{
		ProtocolVersion: models.ProtocolVersion,
		Changes: []models.RelayChange{
			{Change: models.Change{ChangeID: "ch-7", EntityID: "ent-1", DeviceID: "device-b"}, Offset: 42},
		},
		HasMore:    true,
		NextOffset: 42,
	}

	syncSvc.EXPECT().
		ReadSince(gomock.Any(), models.PullRequest{
			ProtocolVersion: models.ProtocolVersion,
			DeviceID:        "device-a",
			CompanyID:       "acme",
			SinceOffset:     17,
			Limit:           50,
		}).
		Return(expected, nil)

	target := "/api/sync/pull?protocol_version=1&device_id=device-a&company_id=acme&since_offset=17&limit=50"
	req := withIdentity(injectNopLogger(httptest.NewRequest(http.MethodGet, target, nil)), "device-a", "acme")

	rr := httptest.NewRecorder()
	h.pull(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp models.PullResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.HasMore)
	assert.Equal(t, int64(42), resp.NextOffset)
	require.Len(t, resp.Changes, 1)
	assert.Equal(t, "ch-7", resp.Changes[0].ChangeID)
}

func TestPull_TemporarilyUnavailable(t *testing.T) {
	h, syncSvc, _ := newTestHandler(t)

	syncSvc.EXPECT().
		ReadSince(gomock.Any(), gomock.Any()).
		Return(models.PullResponse{}, service.ErrTemporarilyUnavailable)

	target := "/api/sync/pull?protocol_version=1&device_id=device-a&company_id=acme"
	req := withIdentity(injectNopLogger(httptest.NewRequest(http.MethodGet, target, nil)), "device-a", "acme")

	rr := httptest.NewRecorder()
	h.pull(rr, req)

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestPull_QueryParsing(t *testing.T) {
	tests := []struct {
		name    string
		target  string
		want    models.PullRequest
		wantErr bool
	}{
		{
			name:   "all parameters",
			target: "/api/sync/pull?protocol_version=1&device_id=d&company_id=c&since_offset=9&limit=25",
			want: models.PullRequest{
				ProtocolVersion: 1,
				DeviceID:        "d",
				CompanyID:       "c",
				SinceOffset:     9,
				Limit:           25,
			},
		},
		{
			name:   "offset and limit default to zero",
			target: "/api/sync/pull?protocol_version=1&device_id=d&company_id=c",
			want: models.PullRequest{
				ProtocolVersion: 1,
				DeviceID:        "d",
				CompanyID:       "c",
			},
		},
		{
			name:    "missing protocol version",
			target:  "/api/sync/pull?device_id=d&company_id=c",
			wantErr: true,
		},
		{
			name:    "non-numeric offset",
			target:  "/api/sync/pull?protocol_version=1&device_id=d&company_id=c&since_offset=abc",
			wantErr: true,
		},
		{
			name:    "non-numeric limit",
			target:  "/api/sync/pull?protocol_version=1&device_id=d&company_id=c&limit=many",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)

			got, err := pullRequestFromQuery(req)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAck_Success(t *testing.T) {
	h, syncSvc, _ := newTestHandler(t)

	ackRequest := models.AckRequest{
		ProtocolVersion: models.ProtocolVersion,
		DeviceID:        "device-a",
		CompanyID:       "acme",
		AckedOffset:     42,
	}

	syncSvc.EXPECT().Acknowledge(gomock.Any(), ackRequest).Return(nil)

	raw, err := json.Marshal(ackRequest)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/sync/ack", bytes.NewReader(raw))
	req = withIdentity(injectNopLogger(req), "device-a", "acme")

	rr := httptest.NewRecorder()
	h.ack(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Zero(t, rr.Body.Len())
}

func TestAck_InvalidOffset(t *testing.T) {
	h, syncSvc, _ := newTestHandler(t)

	ackRequest := models.AckRequest{
		ProtocolVersion: models.ProtocolVersion,
		DeviceID:        "device-a",
		CompanyID:       "acme",
		AckedOffset:     -1,
	}

	syncSvc.EXPECT().Acknowledge(gomock.Any(), ackRequest).Return(service.ErrInvalidRequest)

	raw, err := json.Marshal(ackRequest)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/sync/ack", bytes.NewReader(raw))
	req = withIdentity(injectNopLogger(req), "device-a", "acme")

	rr := httptest.NewRecorder()
	h.ack(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
