package models

import "gorm.io/gorm"

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Association{},
		&Client{},
		&Seller{},
		&Category{},
		&Market{},
		&Product{},
		&Order{},
		&OrderItem{},
		&Attendance{},
		&Favorite{},
	)
}
