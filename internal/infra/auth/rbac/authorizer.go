package rbac

import (
	"net/http"
	"slices"

	"roboterms/internal/domain"
)

const (
	PermPostCompany   = "post:company"
	PermDeleteCompany = "delete:company"
	PermEditPolicy    = "edit:policy"
)

type Authorizer struct{}

func NewAuthorizer() *Authorizer {
	return &Authorizer{}
}

// Require checks that the verified claims grant permission. A token without
// a permissions claim is malformed for this API rather than merely lacking
// rights, so it is rejected with 400 instead of 403.
func (a *Authorizer) Require(claims domain.Claims, permission string) error {
	if claims.Permissions == nil {
		return domain.NewAuthError(domain.CodeInvalidToken, "Unable to find permissions.", http.StatusBadRequest)
	}
	if !slices.Contains(claims.Permissions, permission) {
		return domain.NewAuthError(domain.CodeForbidden, "User does not have required permissions.", http.StatusForbidden)
	}
	return nil
}
