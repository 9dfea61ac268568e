package auth

import (
	"context"
	"os"

	"github.com/golang-jwt/jwt/v4"
	"github.com/pkg/errors"
)

const (
	XUserNameHeader = "X-User-Name"
	XUserRoleHeader = "X-User-Role"

	RoleAdmin = "admin"
	RoleUser  = "user"
)

// JWTKey signs and verifies access tokens. Set via JWT_KEY.
var JWTKey = []byte(os.Getenv("JWT_KEY"))

type Profile struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

type Claims struct {
	jwt.RegisteredClaims
	Profile Profile `json:"profile"`
}

type ctxKey int

const userCtxKey ctxKey = iota

type User struct {
	Username string
	Role     string
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func SetAuthContext(ctx context.Context, username, role string) context.Context {
	return context.WithValue(ctx, userCtxKey, User{Username: username, Role: role})
}

func FromContext(ctx context.Context) (User, error) {
	u, ok := ctx.Value(userCtxKey).(User)
	if !ok || u.Username == "" {
		return User{}, errors.New("no authenticated user in context")
	}
	return u, nil
}
