package model

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User mirrors the users table.
type User struct {
	UserID     int64     `gorm:"column:user_id;primaryKey" json:"user_id"`
	Username   string    `gorm:"column:username" json:"username"`
	Role       Role      `gorm:"column:role" json:"role"`
	Email      string    `gorm:"column:email" json:"email"`
	Phone      *string   `gorm:"column:phone" json:"phone,omitempty"`
	DateJoined time.Time `gorm:"column:date_joined" json:"date_joined"`
	Password   string    `gorm:"column:password" json:"-"` // bcrypt hash, never serialized
}

func (User) TableName() string {
	return "users"
}

// HashPassword returns the bcrypt hash for password at the given cost.
func HashPassword(password string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// CheckPassword verifies password against a stored bcrypt hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// UserResponse is what callers see; the hash is dropped.
type UserResponse struct {
	UserID     int64     `json:"user_id"`
	Username   string    `json:"username"`
	Role       Role      `json:"role"`
	Email      string    `json:"email"`
	Phone      *string   `json:"phone,omitempty"`
	DateJoined time.Time `json:"date_joined"`
}

// ToResponse converts User to UserResponse
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		UserID:     u.UserID,
		Username:   u.Username,
		Role:       u.Role,
		Email:      u.Email,
		Phone:      u.Phone,
		DateJoined: u.DateJoined,
	}
}

// Principal returns the session identity for u.
func (u *User) Principal() Principal {
	return Principal{UserID: u.UserID, Username: u.Username, Role: u.Role}
}
