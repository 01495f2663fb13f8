package domain

import "time"

type User struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	Password        string    `json:"-"`
	FirstName       string    `json:"firstName"`
	LastName        string    `json:"lastName"`
	Username        string    `json:"username"`
	ProfileImageURL string    `json:"profileImageUrl"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Author is the display identity attached to a broadcast chat message.
type Author struct {
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

func (u User) Author() *Author {
	return &Author{FirstName: u.FirstName, LastName: u.LastName}
}

type ProfileUpdate struct {
	FirstName string
	LastName  string
	Username  string
}
