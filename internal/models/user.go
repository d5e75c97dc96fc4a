package models

import "time"

// UserAuth holds the login credential of one User.
type UserAuth struct {
	ID           uint   `gorm:"primaryKey"`
	Username     string `gorm:"size:255;uniqueIndex;not null"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`
	Salt         string `gorm:"size:64;not null" json:"-"`
	LastLogin    *time.Time
	CreatedAt    time.Time
}

func (UserAuth) TableName() string {
	return "user_auth"
}

// User is the identity record; the email doubles as the login handle.
type User struct {
	ID        uint      `gorm:"primaryKey"`
	AuthID    uint      `gorm:"uniqueIndex;not null"`
	Auth      *UserAuth `gorm:"foreignKey:AuthID"`
	FirstName string    `gorm:"size:100;not null"`
	LastName  string    `gorm:"size:100;not null"`
	Phone     string    `gorm:"size:32;uniqueIndex;not null"`
	Email     string    `gorm:"size:255;uniqueIndex;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FullName joins first and last name.
func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}
