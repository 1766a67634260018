// Package identity exchanges a caller's credential for an identity by calling
// the host's user endpoint, trying multiple candidate base URLs in order.
package identity

import "strings"

// Identity is the result of validating a credential against the host.
// It lives for a single request and is never persisted.
type Identity struct {
	// UserID is the host's opaque identifier for the caller.
	UserID string

	// Name is the caller's display name, when the host provides one.
	Name string

	// Admin reports whether the host considers the caller an administrator.
	Admin bool
}

// userDocument is the host's "current user" response. Only the fields the
// service needs are decoded; everything else is ignored at the boundary.
type userDocument struct {
	ID     string      `json:"Id"`
	Name   string      `json:"Name"`
	Policy *userPolicy `json:"Policy"`
	Roles  []string    `json:"Roles"`
}

// userPolicy is the nested policy object carrying the administrator flag.
type userPolicy struct {
	IsAdministrator bool `json:"IsAdministrator"`
}

// identity converts a decoded user document into an Identity.
// Admin determination reads the nested policy flag when the policy object is
// present, and falls back to Administrator role membership otherwise.
func (d *userDocument) identity() *Identity {
	admin := false
	if d.Policy != nil {
		admin = d.Policy.IsAdministrator
	} else {
		for _, role := range d.Roles {
			if strings.EqualFold(role, "Administrator") {
				admin = true
				break
			}
		}
	}
	return &Identity{
		UserID: d.ID,
		Name:   d.Name,
		Admin:  admin,
	}
}
