package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// UserProfile represents a guardian account in the usuarios collection. UID is
// the owner id stamped on registrants and may differ from the session id.
type UserProfile struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Email    string             `bson:"correo" json:"correo"`
	UID      string             `bson:"uid,omitempty" json:"uid,omitempty"`
	FullName string             `bson:"nombre_completo,omitempty" json:"nombre_completo,omitempty"`
}

// OwnerID returns the profile's uid field, or its document id when unset.
func (u UserProfile) OwnerID() string {
	if u.UID != "" {
		return u.UID
	}
	return u.ID.Hex()
}

// SessionUser is the authenticated caller as reported by the session provider.
type SessionUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}
