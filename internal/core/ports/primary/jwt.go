package primary

import (
	"context"

	"gitlab.com/signcall-2025.net/internal/domain"
)

// JWTService verifies and decodes connect tokens. Token issuance lives in
// the account service; the hub only consumes tokens.
type JWTService interface {
	GenerateTokenHMAC(ctx context.Context, method string, claims map[string]interface{}) (string, error)
	VerifyTokenHMAC(ctx context.Context, token string, method string) (bool, error)
	DecodeTokenPayload(ctx context.Context, token string) (domain.AuthPayload, error)
}
