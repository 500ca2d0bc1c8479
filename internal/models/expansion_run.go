package models

import (
	"time"

	"gorm.io/datatypes"
)

// ExpansionRun records one keyword expansion into an ad group and its overflow siblings.
type ExpansionRun struct {
	ID              uint64 `gorm:"primaryKey;autoIncrement"`
	SourceAdGroupID string `gorm:"type:varchar(100);not null;index"`
	SourceName      string `gorm:"type:varchar(255)"`

	Requested     int `gorm:"not null"`
	Created       int `gorm:"not null"`
	Failed        int `gorm:"not null"`
	Dropped       int `gorm:"not null"`
	GroupsCreated int `gorm:"not null"`

	// Assignments lists {ad_group_id, name, keywords, created} per target group.
	Assignments datatypes.JSON `gorm:"type:jsonb"`
	Error       string         `gorm:"type:text"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime;index"`
}

func (ExpansionRun) TableName() string {
	return "expansion_runs"
}
