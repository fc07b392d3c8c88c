package models

import (
	"log"

	"github.com/warungku/pos_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&User{},
		&Warung{},
		&ProductCategory{}, &Product{},
		&Customer{},
		&Sale{}, &SaleItem{},
		&WarungActivity{}, &ActivityOutboxRecord{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
