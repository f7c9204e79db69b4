package models

import (
	"gorm.io/gorm"

	"tradefy/internal/money"
)

// Seller is a vendor account able to receive payouts.
type Seller struct {
	gorm.Model
	Name          string `gorm:"not null"`
	Email         string `gorm:"uniqueIndex;not null"`
	PayoutAccount string // processor recipient id (Moneroo recipient or Stripe connected account)
	Status        string `gorm:"default:'active'"`
}

// Product is a listing sold by a seller.
type Product struct {
	gorm.Model
	SellerID uint         `gorm:"not null;index"`
	Seller   *Seller      `gorm:"foreignKey:SellerID"`
	Name     string       `gorm:"not null"`
	Price    money.Amount `gorm:"not null"`
	Status   string       `gorm:"default:'active'"`
}

func (p *Product) IsActive() bool {
	return p.Status == "" || p.Status == "active"
}
