// Package database opens the ledger database and inspects its schema.
//
// Connect wraps GORM and picks a dialector from the configured driver: MySQL for shared
// deployments, SQLite for a single machine or tests (Name is then a file path or
// ":memory:").
//
// GetTableColumns lists the columns of a table in a dialect neutral form. The integrity
// check compares them with the ledger models.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    return err
//	}
//	columns, err := database.GetTableColumns(db, "world_heads")
package database
