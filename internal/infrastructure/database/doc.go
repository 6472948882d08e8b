// Package database provides SQLite connectivity for the gadget registry.
//
// This package manages:
//   - Database connection with WAL mode for concurrent reads
//   - Forward-only schema migrations loaded from an embedded filesystem
//   - Transaction helper for multi-statement writes
//
// Security Considerations:
//   - All queries use parameterised statements
//   - Database file permissions are set to 0600 (owner read/write only)
//
// Usage:
//
//	db, err := database.Open(ctx, database.Config{Path: cfg.Database.Path, WALMode: true})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
package database
