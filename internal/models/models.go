package models

import (
	"time"
)

const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
	RoleViewer = "viewer"
)

func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleEditor, RoleViewer:
		return true
	}
	return false
}

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string `gorm:"unique;not null"          json:"username"`
	PasswordHash string `gorm:"not null"                 json:"-"`
	Role         string `gorm:"not null;default:viewer"  json:"role"`
}

// RevokedToken rows are append-only: never updated, never deleted. The token
// column is indexed because every authenticated request does a lookup on it.
type RevokedToken struct {
	ID    uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Token string `gorm:"index;not null"           json:"token"`
}

type Document struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string    `gorm:"not null"                 json:"title"`
	Description string    `json:"description"`
	S3Location  string    `gorm:"not null"                 json:"s3_location"`
	Ingested    bool      `gorm:"default:false"            json:"ingested"`
	CreatedBy   uint      `gorm:"index;not null"           json:"created_by"`
	CreatedOn   time.Time `gorm:"not null"                 json:"created_on"`
}

const (
	IngestionInProgress = "INPROGRESS"
	IngestionCompleted  = "COMPLETED"
	IngestionFailed     = "FAILED"
)

type IngestionJob struct {
	ID      uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	JobID   string `gorm:"uniqueIndex;not null"     json:"job_id"`
	Payload string `gorm:"not null"                 json:"payload"`
	Status  string `gorm:"not null"                 json:"status"`
}
