package service

import (
	"context"
	"fmt"
	"time"

	"github.com/mvoronkov/go-ledger-sync/internal/config"
	"github.com/mvoronkov/go-ledger-sync/internal/utils"
)

// jwtTokenSource signs device tokens locally with the shared sign key. The
// token only authenticates the transport session; payload encryption is
// the real confidentiality boundary.
type jwtTokenSource struct {
	issuer    string
	deviceID  string
	companyID string
	duration  time.Duration
	signKey   string
}

func NewJWTTokenSource(app config.ClientApp, sync config.ClientSync) TokenSource {
	return &jwtTokenSource{
		issuer:    app.TokenIssuer,
		deviceID:  sync.DeviceID,
		companyID: sync.CompanyID,
		duration:  app.TokenDuration,
		signKey:   app.TokenSignKey,
	}
}

func (s *jwtTokenSource) DeviceToken(ctx context.Context) (string, error) {
	token, err := utils.GenerateDeviceToken(s.issuer, s.deviceID, s.companyID, s.duration, s.signKey)
	if err != nil {
		return "", fmt.Errorf("sign device token: %w", err)
	}
	return token.SignedString, nil
}
