package main

import (
	"fmt"
	"time"

	"farmrecords/models"

	"github.com/samber/lo"
	"gorm.io/gorm"
)

func validProduce(kind models.ProduceType) bool {
	return lo.Contains(models.ProduceTypes, kind)
}

func recordHarvest(db *gorm.DB, kind models.ProduceType, farmerID uint, date time.Time, quantity float64) error {
	row := models.NewHarvest(kind, farmerID, date, quantity)
	if row == nil {
		return fmt.Errorf("unknown produce type %q", kind)
	}
	if err := db.Create(row).Error; err != nil {
		return fmt.Errorf("record %s harvest: %w", kind, err)
	}
	return nil
}

// listHarvests returns the farmer's harvests of one kind, newest first.
func listHarvests(db *gorm.DB, kind models.ProduceType, farmerID uint) ([]models.HarvestEntry, error) {
	m := models.HarvestModel(kind)
	if m == nil {
		return nil, fmt.Errorf("unknown produce type %q", kind)
	}
	var entries []models.HarvestEntry
	err := db.Model(m).
		Where("farmer_id = ?", farmerID).
		Order("harvest_date desc, id desc").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("list %s harvests: %w", kind, err)
	}
	return entries, nil
}

func totalQuantity(entries []models.HarvestEntry) float64 {
	return lo.SumBy(entries, func(e models.HarvestEntry) float64 { return e.Quantity })
}
