package models

import "time"

// ProduceType names a harvest kind as it appears in the /produce/:type path.
type ProduceType string

const (
	ProduceCoffee ProduceType = "coffee"
	ProduceMilk   ProduceType = "milk"
)

// ProduceTypes lists every recordable kind.
var ProduceTypes = []ProduceType{ProduceCoffee, ProduceMilk}

// Label is the capitalised name used in page titles and notices.
func (p ProduceType) Label() string {
	switch p {
	case ProduceCoffee:
		return "Coffee"
	case ProduceMilk:
		return "Milk"
	}
	return string(p)
}

// CoffeeHarvest records a quantity of coffee picked on a date.
type CoffeeHarvest struct {
	ID          uint `gorm:"primaryKey"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	FarmerID    uint           `gorm:"index;not null"`
	Farmer      *FarmerProfile `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	HarvestDate time.Time      `gorm:"index;not null"`
	Quantity    float64        `gorm:"not null"`
}

// MilkHarvest records a quantity of milk collected on a date.
type MilkHarvest struct {
	ID          uint `gorm:"primaryKey"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	FarmerID    uint           `gorm:"index;not null"`
	Farmer      *FarmerProfile `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	HarvestDate time.Time      `gorm:"index;not null"`
	Quantity    float64        `gorm:"not null"`
}

// HarvestEntry is the read shape shared by both harvest tables.
type HarvestEntry struct {
	ID          uint
	HarvestDate time.Time
	Quantity    float64
}

// NewHarvest builds the row for the given kind; nil for an unknown kind.
func NewHarvest(kind ProduceType, farmerID uint, date time.Time, quantity float64) any {
	switch kind {
	case ProduceCoffee:
		return &CoffeeHarvest{FarmerID: farmerID, HarvestDate: date, Quantity: quantity}
	case ProduceMilk:
		return &MilkHarvest{FarmerID: farmerID, HarvestDate: date, Quantity: quantity}
	}
	return nil
}

// HarvestModel returns a zero model usable with gorm's Model() for the kind.
func HarvestModel(kind ProduceType) any {
	switch kind {
	case ProduceCoffee:
		return &CoffeeHarvest{}
	case ProduceMilk:
		return &MilkHarvest{}
	}
	return nil
}
