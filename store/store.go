// Package store is the persistence layer: plain CRUD over gorm with
// ownership checks and typed errors. It never renders or formats
// anything; controllers translate its results to JSON.
package store

import (
	"NutriGuide/pkg/histcache"

	"gorm.io/gorm"
)

type Store struct {
	db *gorm.DB
	// hist may be nil; every histcache method tolerates that.
	hist *histcache.Cache
}

func New(db *gorm.DB, hist *histcache.Cache) *Store {
	return &Store{db: db, hist: hist}
}
