package model

import "time"

// Message 留言表，对应 messages
type Message struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement"         json:"id"`
	Author     string    `gorm:"type:varchar(100);not null;index" json:"author"`
	Department string    `gorm:"type:varchar(100);not null"       json:"department"`
	Avatar     string    `gorm:"type:varchar(255);not null"       json:"avatar"`
	Content    string    `gorm:"type:text;not null"               json:"content"`
	Color      string    `gorm:"type:varchar(32);not null"        json:"color"`
	Timestamp  time.Time `gorm:"type:timestamptz;not null"        json:"timestamp"`

	Replies []Reply `gorm:"foreignKey:MessageID;constraint:OnDelete:CASCADE" json:"replies,omitempty"`
	Likes   []Like  `gorm:"foreignKey:MessageID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName 指定表名
func (Message) TableName() string { return "messages" }

// LikedBy 判断指定用户是否已点赞（依赖已预加载的 Likes）
func (m *Message) LikedBy(userID string) bool {
	if userID == "" {
		return false
	}
	for i := range m.Likes {
		if m.Likes[i].UserID == userID {
			return true
		}
	}
	return false
}

// Reply 回复表，对应 replies
type Reply struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement"         json:"id"`
	MessageID  uint64    `gorm:"not null;index"                   json:"message_id"`
	Author     string    `gorm:"type:varchar(100);not null"       json:"author"`
	Department string    `gorm:"type:varchar(100);not null"       json:"department"`
	Avatar     string    `gorm:"type:varchar(255);not null"       json:"avatar"`
	Content    string    `gorm:"type:text;not null"               json:"content"`
	Color      string    `gorm:"type:varchar(32);not null"        json:"color"`
	Timestamp  time.Time `gorm:"type:timestamptz;not null"        json:"timestamp"`
}

// TableName 指定表名
func (Reply) TableName() string { return "replies" }

// Like 点赞表，对应 likes，(message_id, user_id) 唯一
type Like struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"                                   json:"id"`
	MessageID uint64    `gorm:"not null;uniqueIndex:uq_likes_message_user"                 json:"message_id"`
	UserID    string    `gorm:"type:varchar(128);not null;uniqueIndex:uq_likes_message_user" json:"user_id"`
	Timestamp time.Time `gorm:"type:timestamptz;not null"                                  json:"timestamp"`
}

// TableName 指定表名
func (Like) TableName() string { return "likes" }
