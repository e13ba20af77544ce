package models

import "time"

const RolePaidUser = "paiduser"

// User mirrors the identity provider's user document. Only the fields the
// entitlement gate needs are mapped here.
type User struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	Email     string    `bson:"email,omitempty" json:"email,omitempty"`
	Role      string    `bson:"role,omitempty" json:"role,omitempty"`
	CreatedAt time.Time `bson:"created_at,omitempty" json:"created_at,omitempty"`
}

func (u *User) IsPaid() bool {
	return u != nil && u.Role == RolePaidUser
}
