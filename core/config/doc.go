// Package config loads application settings with Viper.
//
// Values come from struct tag defaults, then an optional config.yaml, then the
// environment (a .env file is loaded into the environment first). Environment keys are
// the upper-cased mapstructure path joined by underscores, e.g. SYNC_WORLD_ID or
// STORAGE_BUCKET.
//
// # Configuration Structure
//
//   - Server: HTTP read API (port, API key, timeouts)
//   - Database: ledger connection (mysql or sqlite)
//   - Storage: S3/MinIO credentials, snapshot bucket and key prefix
//   - Log: level and format
//   - Sync: world id, world directory, author label, retry policy
//   - Notify: optional Redis pub/sub for change announcements
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(cfg.Sync.WorldID)
package config
