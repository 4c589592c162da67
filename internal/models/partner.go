package models

import "time"

// Partner is a person or company that bids on or buys a property
type Partner struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// User is an agency employee acting as salesman
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Login     string    `gorm:"uniqueIndex;not null" json:"login"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
