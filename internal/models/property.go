package models

import "time"

// Property is a rentable unit owned by a landlord.
type Property struct {
	ID            uint           `gorm:"primaryKey"`
	LandlordID    uint           `gorm:"index;not null"`
	Landlord      *Landlord      `gorm:"foreignKey:LandlordID;references:UserID"`
	StreetNumber  string         `gorm:"size:16"`
	StreetName    string         `gorm:"size:255"`
	City          string         `gorm:"size:100;index"`
	State         string         `gorm:"size:100;index"`
	RoomNumber    string         `gorm:"size:16"`
	SquareFoot    float64
	Price         float64        `gorm:"type:decimal(10,2);not null"`
	RoomAmount    int            `gorm:"not null"`
	ForRent       bool           `gorm:"not null;index"`
	Neighborhoods []Neighborhood `gorm:"many2many:property_neighborhoods;"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Address renders the street address with the room.
func (p Property) Address() string {
	addr := p.StreetNumber + " " + p.StreetName + ", " + p.City + ", " + p.State
	if p.RoomNumber != "" {
		addr += ", Room " + p.RoomNumber
	}
	return addr
}

type Neighborhood struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"size:100;uniqueIndex;not null"`
}
