package model

import "time"

// Streak 连续打卡表，对应 streaks，每个用户一行
type Streak struct {
	ID          uint64     `gorm:"primaryKey;autoIncrement"               json:"id"`
	UserID      string     `gorm:"type:varchar(128);not null;uniqueIndex" json:"user_id"`
	Count       int        `gorm:"not null;default:0"                     json:"count"`
	LastUpdated *time.Time `gorm:"type:timestamptz"                       json:"last_updated,omitempty"`
	CreatedAt   time.Time  `gorm:"type:timestamptz;not null"              json:"created_at"`
}

// TableName 指定表名
func (Streak) TableName() string { return "streaks" }
