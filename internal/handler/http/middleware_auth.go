package http

import (
	"context"
	"net/http"

	"github.com/mvoronkov/go-ledger-sync/internal/logger"
	"github.com/mvoronkov/go-ledger-sync/internal/utils"
)

// auth enforces device JWT authentication.
//
// It extracts the bearer token from the "Authorization" header, validates
// the signature, issuer, and expiry, and stores the token's device and
// company claims in the request context under [utils.DeviceIDCtxKey] and
// [utils.CompanyIDCtxKey]. Handlers cross-check request bodies against
// these claims, so a device can never push or pull on behalf of another.
func (h *Handler) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromRequest(r)

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			log.Err(ErrEmptyAuthorizationHeader).Send()
			http.Error(w, ErrEmptyAuthorizationHeader.Error(), http.StatusUnauthorized)
			return
		}

		tokenString, err := utils.ParseBearerToken(authHeader)
		if err != nil {
			log.Err(err).Send()
			http.Error(w, ErrInvalidAuthorizationHeader.Error(), http.StatusUnauthorized)
			return
		}

		token, err := utils.ValidateAndParseDeviceToken(tokenString, h.tokenSignKey, h.tokenIssuer)
		if err != nil {
			log.Err(err).Msg("device token rejected")
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}

		ctx := r.Context()
		ctx = context.WithValue(ctx, utils.DeviceIDCtxKey, token.DeviceID)
		ctx = context.WithValue(ctx, utils.CompanyIDCtxKey, token.CompanyID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
