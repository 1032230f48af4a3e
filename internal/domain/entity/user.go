package entity

import "time"

const (
	RoleBuyer    = "buyer"
	RoleSupplier = "supplier"
	RoleAgent    = "agent"
	RoleAdmin    = "admin"
)

// User mirrors the Firebase Auth identity with marketplace profile data.
// Role also lives as a custom claim on the auth token; the profile copy is
// what listings and conversations read.
type User struct {
	ID       string `json:"id" firestore:"id"`
	Email    string `json:"email" firestore:"email"`
	Name     string `json:"name" firestore:"name"`
	Phone    string `json:"phone,omitempty" firestore:"phone,omitempty"`
	Role     string `json:"role" firestore:"role"`
	Status   string `json:"status" firestore:"status"`
	Language string `json:"language" firestore:"language"` // en, si or ta

	Address  string `json:"address,omitempty" firestore:"address,omitempty"`
	District string `json:"district,omitempty" firestore:"district,omitempty"`

	AvatarURL    string    `json:"avatar_url,omitempty" firestore:"avatarURL,omitempty"`
	LastSeen     time.Time `json:"last_seen" firestore:"lastSeen"`
	OnlineStatus string    `json:"online_status" firestore:"onlineStatus"`

	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`
}

// ValidRole reports whether role is one the marketplace understands.
func ValidRole(role string) bool {
	switch role {
	case RoleBuyer, RoleSupplier, RoleAgent, RoleAdmin:
		return true
	}
	return false
}
