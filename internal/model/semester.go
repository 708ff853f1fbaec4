package model

import "time"

// Semester 学期表，对应 semesters
// 全局至多一行 is_active = true（部分唯一索引 uq_semesters_single_active）
type Semester struct {
	ID         uint64     `gorm:"primaryKey;autoIncrement"                   json:"id"`
	Name       string     `gorm:"type:varchar(100);not null"                 json:"name"`
	AccessCode string     `gorm:"type:varchar(16);not null;uniqueIndex"      json:"access_code"`
	StartDate  time.Time  `gorm:"type:timestamptz;not null"                  json:"start_date"`
	EndDate    time.Time  `gorm:"type:timestamptz;not null"                  json:"end_date"`
	IsActive   bool       `gorm:"not null;index"                             json:"is_active"`
	AutoClear  bool       `gorm:"not null"                                   json:"auto_clear"`
	CreatedAt  time.Time  `gorm:"type:timestamptz;not null"                  json:"created_at"`
	UpdatedAt  *time.Time `gorm:"type:timestamptz;autoUpdateTime:false"      json:"updated_at,omitempty"`
	EndedAt    *time.Time `gorm:"type:timestamptz"                           json:"ended_at,omitempty"`
}

// TableName 指定表名
func (Semester) TableName() string { return "semesters" }
