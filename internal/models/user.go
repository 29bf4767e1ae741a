package models

import "time"

// Role is the portal role carried on a profile.
type Role string

const (
	RoleStudent Role = "student"
	RoleSRC     Role = "src"
	RoleAdmin   Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleSRC, RoleAdmin:
		return true
	}
	return false
}

// Identity is the subject issued by the auth provider at sign-up.
type Identity struct {
	ID           string    `bson:"_id" json:"id"`
	Email        string    `bson:"email" json:"email,omitempty"`
	PasswordHash string    `bson:"passwordHash" json:"-"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
}

// Profile maps an Identity to its role and SRC department. Keyed by the identity id.
type Profile struct {
	ID            string    `bson:"_id" json:"id"`
	Role          Role      `bson:"role" json:"role"`
	SRCDepartment string    `bson:"srcDepartment,omitempty" json:"src_department,omitempty"`
	IsActive      bool      `bson:"isActive" json:"is_active"`
	FullName      string    `bson:"fullName,omitempty" json:"full_name,omitempty"`
	AvatarPath    string    `bson:"avatarPath,omitempty" json:"avatar_path,omitempty"`
	CreatedAt     time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time `bson:"updatedAt" json:"updatedAt"`
}
