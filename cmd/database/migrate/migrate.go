package migration

import (
	"fmt"
	"foodia-handoff/entities"
	"log"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	db.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\";")

	if err := db.AutoMigrate(&entities.User{}); err != nil {
		log.Printf("Error migrating user database: %v", err)
		return err
	}
	if err := db.AutoMigrate(&entities.FoodItem{}); err != nil {
		log.Printf("Error migrating food item database: %v", err)
		return err
	}
	if err := db.AutoMigrate(&entities.Transaction{}); err != nil {
		log.Printf("Error migrating transaction database: %v", err)
		return err
	}
	if err := db.AutoMigrate(&entities.RoutePoint{}); err != nil {
		log.Printf("Error migrating route point database: %v", err)
		return err
	}

	fmt.Println("Database migration complete")
	return nil
}
