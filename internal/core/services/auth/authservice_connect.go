package auth

import (
	"context"

	"gitlab.com/signcall-2025.net/internal/config"
	"gitlab.com/signcall-2025.net/internal/core/ports/primary"
	"gitlab.com/signcall-2025.net/internal/domain"
	"gitlab.com/signcall-2025.net/internal/static/errs"
)

var _ IAuthService = (*ConnectAuthService)(nil)

// ConnectAuthService checks role and connect token at upgrade time. Token
// issuance belongs to the account service; with no JWT secret configured
// the token check is skipped (dev mode).
type ConnectAuthService struct {
	jwtProvider primary.JWTService
	secret      string
	logger      primary.Logger
}

func NewConnectAuthService(jwtProvider primary.JWTService, jwtCfg *config.JwtConfig, logger primary.Logger) *ConnectAuthService {
	return &ConnectAuthService{
		jwtProvider: jwtProvider,
		secret:      jwtCfg.Secret,
		logger:      logger,
	}
}

func (s *ConnectAuthService) Authenticate(ctx context.Context, token string, role domain.Role) (domain.AuthPayload, error) {
	if !role.Valid() {
		return domain.AuthPayload{}, errs.InvalidRole
	}

	if s.secret == "" {
		s.logger.Debug("JWT secret not configured, skipping token verification")
		return domain.AuthPayload{}, nil
	}

	ok, err := s.jwtProvider.VerifyTokenHMAC(ctx, token, "HS256")
	if err != nil || !ok {
		s.logger.Warn("connect token rejected", "role", role, "error", err)
		return domain.AuthPayload{}, errs.InvalidToken
	}

	payload, err := s.jwtProvider.DecodeTokenPayload(ctx, token)
	if err != nil {
		return domain.AuthPayload{}, errs.InvalidToken
	}
	return payload, nil
}
