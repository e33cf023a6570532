package models

import "time"

// Client is a serviced pool owner. Name is a human-readable secondary key
// and is not unique.
type Client struct {
	ID         string    `json:"id" gorm:"primaryKey;size:36"`
	Name       string    `json:"name" gorm:"index;not null"`
	Address    string    `json:"address"`
	EmployeeID *string   `json:"employee_id" gorm:"index"`
	CreatedAt  time.Time `json:"created_at"`
}
