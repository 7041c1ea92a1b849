package worldsync

// Config holds configuration for syncing a local world with the shared store.
type Config struct {
	// WorldID names the shared world.
	WorldID string `mapstructure:"world_id" default:"default"`
	// WorldDir is the absolute path of the local world directory. Commands ask for it when empty.
	WorldDir string `mapstructure:"world_dir" default:""`
	// Author is the label attached to uploaded changes. Commands ask for it when empty.
	Author string `mapstructure:"author" default:""`
	// StateDir holds the retained base snapshot and version of every world.
	StateDir string `mapstructure:"state_dir" default:".shared-save"`
	// MaxPublishAttempts bounds merge-and-publish rounds when the remote keeps advancing.
	MaxPublishAttempts int `mapstructure:"max_publish_attempts" default:"3"`
	// RetryDelayMs is the pause between publish attempts.
	RetryDelayMs int `mapstructure:"retry_delay_ms" default:"500"`
	// PurgeQuicksaves deletes in-game quicksaves after a successful upload.
	PurgeQuicksaves bool `mapstructure:"purge_quicksaves" default:"true"`
	// RefreshAfterUpload writes the merged world back into the world directory after an upload.
	RefreshAfterUpload bool `mapstructure:"refresh_after_upload" default:"true"`
}
