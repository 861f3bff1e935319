package user

import (
	identityDatamodel "github.com/frahmantamala/library-management/internal/core/datamodel/identity"
	"github.com/frahmantamala/library-management/internal/core/identity"
)

// FromDataModel converts a user row to the domain identity. The role is
// included only when it was preloaded.
func FromDataModel(u *identityDatamodel.User) *identity.Identity {
	id := &identity.Identity{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FullName:  u.FullName,
		Status:    identity.Status(u.Status),
		RoleID:    u.RoleID,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
	if u.Role != nil {
		id.Role = &identity.Role{ID: u.Role.ID, Name: u.Role.Name, CreatedAt: u.Role.CreatedAt}
	}
	return id
}

func FromDataModels(rows []*identityDatamodel.User) []*identity.Identity {
	out := make([]*identity.Identity, 0, len(rows))
	for _, u := range rows {
		out = append(out, FromDataModel(u))
	}
	return out
}
