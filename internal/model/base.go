package model

import (
	"strings"
	"time"
)

// Base contains common fields for all models
type Base struct {
	ID         int64     `json:"id" db:"id" gorm:"primaryKey"`
	IsArchived bool      `json:"is_archived" db:"is_archived" gorm:"not null;default:false;index"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// FileUpload is an uploaded file held in memory.
type FileUpload struct {
	Filename string
	Content  []byte
}

// trimOptional trims s and turns blank values into nil, so that an empty
// form field means "not provided".
func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
