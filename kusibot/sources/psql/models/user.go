package models

import "time"

type User struct {
	ID             uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Username       string    `json:"username" gorm:"type:varchar(80);uniqueIndex;not null"`
	Email          string    `json:"email" gorm:"type:varchar(120);uniqueIndex;not null"`
	PasswordHash   string    `json:"-" gorm:"type:varchar(255);not null"`
	IsProfessional bool      `json:"is_professional" gorm:"not null;default:false"`
	CreatedAt      time.Time `json:"created_at" gorm:"not null"`
}
