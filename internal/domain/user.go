package domain

import "time"

const (
	AuthProviderLocal  = "local"
	AuthProviderGoogle = "google"
)

type User struct {
	UserID        string     `json:"id" dynamodbav:"user_id"`
	Name          string     `json:"name" dynamodbav:"name"`
	Email         string     `json:"email" dynamodbav:"email"`
	PasswordHash  string     `json:"-" dynamodbav:"password_hash"`
	EmailVerified *time.Time `json:"email_verified" dynamodbav:"email_verified"`
	Image         *string    `json:"image" dynamodbav:"image"`
	AuthProvider  string     `json:"auth_provider,omitempty" dynamodbav:"auth_provider"` // "local" | "google"
	GoogleSub     string     `json:"-" dynamodbav:"google_sub"`
	CreatedAt     time.Time  `json:"created" dynamodbav:"created_at"`
	UpdatedAt     time.Time  `json:"updated" dynamodbav:"updated_at"`
}

// AsAuthor projects the user into the shape embedded in ads.
func (u *User) AsAuthor() *Author {
	if u == nil {
		return nil
	}
	return &Author{ID: u.UserID, Name: u.Name, Email: u.Email, Image: u.Image}
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
