package models

import "time"

// Tenant marks a user allowed to hold leases.
type Tenant struct {
	UserID    uint `gorm:"primaryKey;autoIncrement:false"`
	CreatedAt time.Time
}

// Landlord marks a user owning properties.
type Landlord struct {
	UserID    uint  `gorm:"primaryKey;autoIncrement:false"`
	User      *User `gorm:"foreignKey:UserID"`
	CreatedAt time.Time
}

type USCitizen struct {
	UserID uint   `gorm:"primaryKey;autoIncrement:false"`
	SSN    string `gorm:"column:ssn;size:11;uniqueIndex;not null"`
}

func (USCitizen) TableName() string {
	return "us_citizens"
}

type InternationalStudent struct {
	UserID     uint   `gorm:"primaryKey;autoIncrement:false"`
	PassportID string `gorm:"column:passport_id;size:64;uniqueIndex;not null"`
}

func (InternationalStudent) TableName() string {
	return "international_students"
}

// Student carries an opaque transcript reference, not the document itself.
type Student struct {
	UserID     uint   `gorm:"primaryKey;autoIncrement:false"`
	Transcript string `gorm:"size:255;not null"`
}
