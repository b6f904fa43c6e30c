package auth

import (
	"context"

	"gitlab.com/signcall-2025.net/internal/domain"
)

// IAuthService validates a connect attempt before the hub accepts it.
type IAuthService interface {
	Authenticate(ctx context.Context, token string, role domain.Role) (domain.AuthPayload, error)
}
