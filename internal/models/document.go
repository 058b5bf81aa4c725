package models

import "time"

// Document is a keyed JSON blob. The whole events catalog is stored as one row.
type Document struct {
	Key       string    `gorm:"column:doc_key;primaryKey;size:128" json:"key"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	UpdatedAt time.Time `json:"updated_at"`
}
