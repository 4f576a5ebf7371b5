package models

import (
	"github.com/google/uuid"
)

// Profile extends a User with personal and address details. Email and Phone
// are copied from the User when the profile is first created.
type Profile struct {
	BaseModel
	UserID            uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	Email             string    `json:"email"`
	Phone             string    `json:"phone"`
	FirstName         string    `gorm:"not null" json:"first_name"`
	MiddleName        *string   `json:"middle_name"`
	LastName          string    `gorm:"not null" json:"last_name"`
	Gender            string    `gorm:"type:varchar(16);not null" json:"gender"`
	HouseNo           int       `json:"house_no"`
	CityTownVillage   string    `json:"city_town_village"`
	District          string    `json:"district"`
	State             string    `json:"state"`
	Country           string    `json:"country"`
	ProfilePictureURL *string   `json:"profile_picture_url"`
}
