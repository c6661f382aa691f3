package models

import "time"

// Address represents a postal address owned by a single user.
// User is populated on reads and left nil right after creation.
type Address struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Street    string    `json:"street" gorm:"type:varchar(255);not null"`
	City      string    `json:"city" gorm:"type:varchar(120);not null"`
	ZipCode   string    `json:"zipCode" gorm:"column:zip_code;type:varchar(20);not null"`
	Country   string    `json:"country" gorm:"type:varchar(120);not null"`
	UserID    uint      `json:"userId" gorm:"not null;index"`
	User      *User     `json:"user,omitempty" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
