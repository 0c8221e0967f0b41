package model

import "time"

type User struct {
	ID                      string     `json:"id,omitempty" bson:"_id,omitempty"`
	Name                    string     `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Email                   string     `json:"email" bson:"email" validate:"required,email,max=254"`
	PasswordHash            string     `json:"-" bson:"password_hash"`
	Phone                   string     `json:"phone,omitempty" bson:"phone,omitempty" validate:"omitempty,e164"`
	Role                    string     `json:"role" bson:"role" validate:"required,oneof=user admin"`
	Status                  string     `json:"status" bson:"status" validate:"required,oneof=pending active rejected"`
	IsDeleted               bool       `json:"is_deleted" bson:"is_deleted"`
	CreatedAt               time.Time  `json:"created_at" bson:"created_at"`
	ResetPasswordOTP        string     `json:"-" bson:"reset_password_otp,omitempty"`
	ResetPasswordOTPExpires *time.Time `json:"-" bson:"reset_password_otp_expires,omitempty"`
}

// UserFilter narrows the admin user listing.
type UserFilter struct {
	Search string
	Status string
}

// UserPage is one page of the admin user listing.
type UserPage struct {
	Users       []*User `json:"users"`
	TotalCount  int64   `json:"total_count"`
	TotalPages  int64   `json:"total_pages"`
	CurrentPage int     `json:"current_page"`
}
