package ports

import (
	"context"

	"github.com/lumina-ai/studio/internal/core/domain"
)

type AuthService interface {
	Signup(ctx context.Context, name, email, password string) (string, *domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	Logout(ctx context.Context)
	CurrentUser(ctx context.Context) *domain.User
}
