package users

import (
	"strconv"
	"time"
)

// User is an account allowed to upload files. Password holds a bcrypt hash.
type User struct {
	ID         uint      `gorm:"column:id;primaryKey"`
	Username   string    `gorm:"column:username;type:varchar(150);uniqueIndex;not null"`
	Email      string    `gorm:"column:email;type:varchar(254)"`
	Password   string    `gorm:"column:password;type:varchar(128);not null"`
	DateJoined time.Time `gorm:"column:date_joined;type:datetime;autoCreateTime"`
}

func (User) TableName() string {
	return "users"
}

// Resource is the JSON representation of a user. The password is never returned.
type Resource struct {
	URL      string `json:"url"`
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// CreateInput is the payload of a user creation.
type CreateInput struct {
	Username string `json:"username" form:"username" validate:"required,max=150,username"`
	Email    string `json:"email" form:"email" validate:"omitempty,email,max=254"`
	Password string `json:"password" form:"password" validate:"required,max=72"`
}

// UpdateInput is the payload of a user update. The username cannot change.
type UpdateInput struct {
	Email    string `json:"email" form:"email" validate:"omitempty,email,max=254"`
	Password string `json:"password" form:"password" validate:"required,max=72"`
}

// URL returns the canonical URL of the user with the given id.
func URL(baseURL string, id uint) string {
	return baseURL + "/api/v1/users/" + strconv.FormatUint(uint64(id), 10) + "/"
}

// ToResource renders u for clients under baseURL.
func (u *User) ToResource(baseURL string) Resource {
	return Resource{
		URL:      URL(baseURL, u.ID),
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
	}
}
