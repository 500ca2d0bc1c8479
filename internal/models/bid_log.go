package models

import (
	"time"

	"gorm.io/datatypes"
)

// BidLog is one audit entry: a bid change or a protected/frozen outcome.
type BidLog struct {
	ID    uint64 `gorm:"primaryKey;autoIncrement"`
	RunID string `gorm:"type:varchar(64);index"`
	Mode  string `gorm:"type:varchar(20);not null;index"`

	KeywordID string `gorm:"type:varchar(100);index"`
	Keyword   string `gorm:"type:varchar(255);not null"`
	AdGroupID string `gorm:"type:varchar(100);index"`

	OldBid int `gorm:"not null"`
	NewBid int `gorm:"not null"`
	Delta  int `gorm:"not null"`

	ReasonKind string         `gorm:"type:varchar(30);not null;index"`
	Reason     string         `gorm:"type:text;not null"`
	Details    datatypes.JSON `gorm:"type:jsonb"`

	LoggedAt time.Time `gorm:"type:timestamptz;not null;index"`
}

func (BidLog) TableName() string {
	return "bid_logs"
}
