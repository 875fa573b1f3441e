package models

import "time"

// UserModel is a dashboard operator. Role is a name reference into the
// roles table; the link is informal and not enforced referentially.
type UserModel struct {
	Base
	Name          string     `json:"name"`
	Email         string     `json:"email"           gorm:"uniqueIndex;not null"`
	Password      string     `json:"-"               gorm:"not null"`
	Role          string     `json:"role"            gorm:"index"`
	Avatar        string     `json:"avatar"`
	LastLoginTime *time.Time `json:"last_login_time"`
	LastLoginIP   string     `json:"last_login_ip"`
}

func (UserModel) TableName() string { return "users" }

// UserSession is a revocable login session backing a JWT.
type UserSession struct {
	Base
	UserID    string     `json:"-"          gorm:"index;not null"`
	IP        string     `json:"ip"`
	UA        string     `json:"ua"         gorm:"type:text"`
	ExpiresAt time.Time  `json:"expires_at" gorm:"index"`
	RevokedAt *time.Time `json:"revoked_at"`
}

func (UserSession) TableName() string { return "user_sessions" }
