// Package database handles database connections and schema inspection.
//
// It provides a wrapper around GORM to configure MySQL (production) or SQLite
// (local runs and tests) connections from the application's configuration.
//
// # Connect
//
// Connect opens the configured driver and pings it. Migrate runs GORM's AutoMigrate
// for the models passed by the caller; feature packages own their models.
//
// # Schema Inspection
//
// GetTableColumns lists the live columns of a table. The integrity feature compares
// them with the columns declared on the GORM models.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	columns, err := database.GetTableColumns(db, "uploaded_files")
package database
