package models

import "time"

// Lease is a rent record. Price is the property's monthly price at booking
// time; later price changes do not affect it.
type Lease struct {
	ID             uint      `gorm:"primaryKey"`
	TenantID       uint      `gorm:"index:idx_leases_tenant_property;not null"`
	PropertyID     uint      `gorm:"index:idx_leases_tenant_property;not null"`
	Property       *Property `gorm:"foreignKey:PropertyID"`
	ContractLength int       `gorm:"not null"`
	Price          float64   `gorm:"type:decimal(10,2);not null"`
	BrokerID       *uint
	Broker         *Broker   `gorm:"foreignKey:BrokerID"`
	BrokerFee      *float64  `gorm:"type:decimal(10,2)"`
	StartDate      time.Time `gorm:"type:date;not null"`
	EndDate        time.Time `gorm:"type:date;not null;index"`
	CreatedAt      time.Time
}

type Broker struct {
	ID        uint   `gorm:"primaryKey"`
	FirstName string `gorm:"size:100;not null"`
	LastName  string `gorm:"size:100;not null"`
	Phone     string `gorm:"size:32"`
	Email     string `gorm:"size:255"`
}

func (b Broker) FullName() string {
	return b.FirstName + " " + b.LastName
}

// BrokerTenant records that a broker has represented a tenant; one row per pair.
type BrokerTenant struct {
	BrokerID  uint `gorm:"primaryKey;autoIncrement:false"`
	TenantID  uint `gorm:"primaryKey;autoIncrement:false"`
	CreatedAt time.Time
}
