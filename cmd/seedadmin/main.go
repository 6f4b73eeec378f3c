// Command seedadmin creates an admin account, or promotes an existing
// user, directly against the database. Meant for first-time setup.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"NutriGuide/models"
	"NutriGuide/pkg/config"
)

func main() {
	username := flag.String("username", "", "admin username (required)")
	password := flag.String("password", "", "password, required unless the user already exists")
	dbPath := flag.String("db", config.DBPath, "sqlite database path")
	flag.Parse()

	if *username == "" {
		flag.Usage()
		os.Exit(2)
	}

	db, err := gorm.Open(sqlite.Open(*dbPath), &gorm.Config{})
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Conversation{}, &models.Message{}); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	var user models.User
	err = db.Where("username = ?", *username).First(&user).Error
	switch {
	case err == nil:
		if user.IsAdmin {
			fmt.Printf("%s is already an admin\n", user.Username)
			return
		}
		if err := db.Model(&user).Update("is_admin", true).Error; err != nil {
			log.Fatalf("promote user: %v", err)
		}
		fmt.Printf("promoted %s to admin\n", user.Username)

	case err == gorm.ErrRecordNotFound:
		if *password == "" {
			log.Fatal("user does not exist, -password is required to create it")
		}
		user = models.User{Username: *username, IsAdmin: true}
		if err := user.SetPassword(*password); err != nil {
			log.Fatalf("set password: %v", err)
		}
		if err := db.Create(&user).Error; err != nil {
			log.Fatalf("create user: %v", err)
		}
		fmt.Printf("created admin %s\n", user.Username)

	default:
		log.Fatalf("lookup user: %v", err)
	}
}
