package http

import (
	"errors"
	"net/http"

	"github.com/mvoronkov/go-ledger-sync/internal/service"
	"github.com/mvoronkov/go-ledger-sync/internal/store"
)

var errorStatusMap = map[error]int{
	service.ErrUnsupportedProtocol:    http.StatusBadRequest,
	service.ErrInvalidRequest:         http.StatusBadRequest,
	service.ErrTemporarilyUnavailable: http.StatusServiceUnavailable,

	store.ErrChangeNotSaved: http.StatusInternalServerError,

	store.ErrBuildingSQLQuery:     http.StatusInternalServerError,
	store.ErrExecutingQuery:       http.StatusInternalServerError,
	store.ErrExecutingStatement:   http.StatusInternalServerError,
	store.ErrBeginningTransaction: http.StatusInternalServerError,
	store.ErrCommitingTransaction: http.StatusInternalServerError,
	store.ErrScanningRow:          http.StatusInternalServerError,
	store.ErrScanningRows:         http.StatusInternalServerError,
}

func statusFromError(err error) int {
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}
