package database

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// ColumnInfo matches the output of SHOW COLUMNS
type ColumnInfo struct {
	Field   string
	Type    string
	Null    string
	Key     string
	Default *string // Pointer because NULL default is possible
	Extra   string
}

// sqliteColumn is a row of PRAGMA table_info.
type sqliteColumn struct {
	Name       string
	Type       string
	NotNull    int     `gorm:"column:notnull"`
	DefaultVal *string `gorm:"column:dflt_value"`
	Pk         int
}

// GetTableColumns retrieves the column definitions for a given table, with field names
// and types lowercased. An unknown table yields no columns on SQLite and an error on
// MySQL.
func GetTableColumns(db *gorm.DB, tableName string) ([]ColumnInfo, error) {
	var (
		columns []ColumnInfo
		err     error
	)
	switch db.Dialector.Name() {
	case DriverSQLite:
		columns, err = sqliteColumns(db, tableName)
	default:
		// SHOW COLUMNS keeps the exact MySQL type strings (e.g. varchar(512)).
		err = db.Raw("SHOW COLUMNS FROM " + db.Statement.Quote(tableName)).Scan(&columns).Error
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get columns for table %s: %w", tableName, err)
	}

	for i := range columns {
		columns[i].Field = strings.ToLower(columns[i].Field)
		columns[i].Type = strings.ToLower(columns[i].Type)
	}
	return columns, nil
}

func sqliteColumns(db *gorm.DB, tableName string) ([]ColumnInfo, error) {
	var rows []sqliteColumn
	if err := db.Raw("SELECT * FROM pragma_table_info(?)", tableName).Scan(&rows).Error; err != nil {
		return nil, err
	}

	columns := make([]ColumnInfo, 0, len(rows))
	for _, row := range rows {
		null := "YES"
		if row.NotNull != 0 || row.Pk > 0 {
			null = "NO"
		}
		columns = append(columns, ColumnInfo{
			Field:   row.Name,
			Type:    row.Type,
			Null:    null,
			Key:     sqliteKey(row.Pk),
			Default: row.DefaultVal,
		})
	}
	return columns, nil
}

func sqliteKey(pk int) string {
	if pk > 0 {
		return "PRI"
	}
	return ""
}
