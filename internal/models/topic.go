package models

import (
	"time"

	"gorm.io/datatypes"
)

type Topic struct {
	ID          uint                        `json:"id" gorm:"primaryKey"`
	Name        string                      `json:"name" gorm:"not null;size:100;uniqueIndex" validate:"required,min=1,max=100"`
	Description string                      `json:"description" gorm:"not null;type:text" validate:"required,max=500"`
	Tags        datatypes.JSONSlice[string] `json:"tags"`
	CreatedAt   time.Time                   `json:"created_at"`

	// Computed fields (not stored)
	QuizCount int64 `json:"quiz_count" gorm:"-"`
}

func (Topic) TableName() string {
	return "topics"
}
