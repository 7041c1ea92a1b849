package ledger

import (
	"strings"
	"time"
)

// WorldHead is the latest published version of a world.
type WorldHead struct {
	WorldID   string    `gorm:"column:world_id;primaryKey;size:128" json:"world_id"`
	Version   int64     `gorm:"column:version;not null" json:"version"`
	ObjectKey string    `gorm:"column:object_key;size:512;not null" json:"object_key"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// TableName overrides the table name for WorldHead.
func (WorldHead) TableName() string {
	return "world_heads"
}

// WorldVersion is one entry of a world's publish history.
type WorldVersion struct {
	ID              uint      `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	WorldID         string    `gorm:"column:world_id;size:128;not null;uniqueIndex:idx_world_version" json:"world_id"`
	Version         int64     `gorm:"column:version;not null;uniqueIndex:idx_world_version" json:"version"`
	ObjectKey       string    `gorm:"column:object_key;size:512;not null" json:"object_key"`
	Author          string    `gorm:"column:author;size:128" json:"author"`
	Summary         string    `gorm:"column:summary;type:text" json:"-"`
	PlayTimeSeconds int64     `gorm:"column:play_time_seconds" json:"play_time_seconds"`
	CraftCount      int       `gorm:"column:craft_count" json:"craft_count"`
	SizeBytes       int64     `gorm:"column:size_bytes" json:"size_bytes"`
	Pruned          bool      `gorm:"column:pruned;not null;default:false" json:"pruned"`
	CreatedAt       time.Time `gorm:"column:created_at" json:"created_at"`
}

// TableName overrides the table name for WorldVersion.
func (WorldVersion) TableName() string {
	return "world_versions"
}

// Lines returns the change summary as recorded at publish time.
func (v WorldVersion) Lines() []string {
	if v.Summary == "" {
		return []string{}
	}
	return strings.Split(v.Summary, "\n")
}

// Columns lists the columns each ledger table must have, keyed by table name.
func Columns() map[string][]string {
	return map[string][]string{
		WorldHead{}.TableName():    {"world_id", "version", "object_key", "updated_at"},
		WorldVersion{}.TableName(): {"id", "world_id", "version", "object_key", "author", "summary", "play_time_seconds", "craft_count", "size_bytes", "pruned", "created_at"},
	}
}
