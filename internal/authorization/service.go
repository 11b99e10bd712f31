// Package authorization gates every API operation behind role policies.
package authorization

import (
	"context"
	"errors"

	authdomain "github.com/smallbiznis/claimdesk/internal/auth/domain"
)

var (
	ErrForbidden     = errors.New("forbidden")
	ErrInvalidActor  = errors.New("invalid actor")
	ErrInvalidObject = errors.New("invalid object")
	ErrInvalidAction = errors.New("invalid action")
)

type Service interface {
	Authorize(ctx context.Context, role authdomain.Role, object string, action string) error
}
