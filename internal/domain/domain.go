// Package domain re-exports the persisted models under one import.
package domain

import (
	"github.com/yungbote/wellspring-backend/internal/domain/auth"
	"github.com/yungbote/wellspring-backend/internal/domain/user"
)

type User = user.User

type UserToken = auth.UserToken

// Models lists every table owned by the user-service, in migration order.
func Models() []any {
	return []any{&User{}, &UserToken{}}
}
