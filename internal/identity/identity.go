// Package identity supplies the acting principal id. Authentication itself is
// done elsewhere; the vault only needs to know who is acting.
package identity

import (
	"context"

	"github.com/dmitrijs2005/credvault/internal/auth"
	"github.com/dmitrijs2005/credvault/internal/common"
)

type Provider interface {
	PrincipalID(ctx context.Context) (string, error)
}

// Static always returns the same principal.
type Static string

func (s Static) PrincipalID(ctx context.Context) (string, error) {
	if s == "" {
		return "", common.ErrorUnauthorized
	}
	return string(s), nil
}

// Token reads the principal from a bearer token issued by the auth subsystem.
type Token struct {
	AccessToken string
}

func (t Token) PrincipalID(ctx context.Context) (string, error) {
	if t.AccessToken == "" {
		return "", common.ErrorUnauthorized
	}
	return auth.PeekUserID(t.AccessToken)
}
