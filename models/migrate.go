package models

import (
	"fmt"

	"gorm.io/gorm"
)

// enumDDL creates the postgres enum types the models depend on. AutoMigrate
// cannot create enum types itself, so they are declared here.
var enumDDL = []string{
	`DO $$ BEGIN
		CREATE TYPE monitor_kind AS ENUM ('keyword', 'company', 'profile');
	EXCEPTION WHEN duplicate_object THEN NULL; END $$`,
	`DO $$ BEGIN
		CREATE TYPE signal_type AS ENUM ('comment', 'reaction', 'post_authorship');
	EXCEPTION WHEN duplicate_object THEN NULL; END $$`,
	`DO $$ BEGIN
		CREATE TYPE scan_run_status AS ENUM ('running', 'completed', 'failed');
	EXCEPTION WHEN duplicate_object THEN NULL; END $$`,
}

// AutoMigrate creates the enum types and migrates every model table.
func AutoMigrate(db *gorm.DB) error {
	for _, ddl := range enumDDL {
		if err := db.Exec(ddl).Error; err != nil {
			return fmt.Errorf("failed to create enum type: %w", err)
		}
	}

	return db.AutoMigrate(
		&SignalMonitor{},
		&SignalLead{},
		&SignalEvent{},
		&ICPFilterSet{},
		&ScanRun{},
	)
}
