package models

import (
	"time"

	"gorm.io/datatypes"
)

// BidRun records one scheduler cycle.
type BidRun struct {
	ID     string `gorm:"type:varchar(64);primaryKey"`
	Mode   string `gorm:"type:varchar(20);not null;index"`
	Cycle  int    `gorm:"not null"`
	Status string `gorm:"type:varchar(20);not null;index"`

	Strategy datatypes.JSON `gorm:"type:jsonb;not null"`
	Targets  datatypes.JSON `gorm:"type:jsonb"`

	UnitsTotal     int `gorm:"not null;default:0"`
	UnitsDone      int `gorm:"not null;default:0"`
	UnitsSkipped   int `gorm:"not null;default:0"`
	UnitsFailed    int `gorm:"not null;default:0"`
	KeywordsSeen   int `gorm:"not null;default:0"`
	BidsChanged    int `gorm:"not null;default:0"`
	BidsSubmitted  int `gorm:"not null;default:0"`
	SubmitFailures int `gorm:"not null;default:0"`

	LastError string `gorm:"type:text"`

	StartedAt  time.Time  `gorm:"type:timestamptz;not null;index"`
	FinishedAt *time.Time `gorm:"type:timestamptz"`
}

func (BidRun) TableName() string {
	return "bid_runs"
}
