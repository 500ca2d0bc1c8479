package models

import "time"

// WatchKeyword is a keyword pinned for sniper-mode cycles.
type WatchKeyword struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	KeywordID string `gorm:"type:varchar(100);not null;uniqueIndex"`
	AdGroupID string `gorm:"type:varchar(100);not null;index"`
	Keyword   string `gorm:"type:varchar(255);not null"`

	AdGroupName  string `gorm:"type:varchar(255)"`
	CampaignName string `gorm:"type:varchar(255)"`

	LastBid    int        `gorm:"not null;default:0"`
	LastRank   int        `gorm:"not null;default:0"`
	LastSeenAt *time.Time `gorm:"type:timestamptz"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (WatchKeyword) TableName() string {
	return "watch_keywords"
}
