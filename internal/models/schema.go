// internal/models/schema.go
package models

// SchemaVersion is stamped into metadata for future migrations.
const SchemaVersion = "1.0.0"

// Metadata is the persisted bookkeeping record.
type Metadata struct {
	LastGenerationDate string `json:"lastGenerationDate"` // ISO date of last daily generation
	Version            string `json:"version"`
}

// StorageSchema is the full persisted state, also the export/import
// document shape.
type StorageSchema struct {
	Recipients map[string]Recipient      `json:"recipients"`
	Events     map[string]ScheduledEvent `json:"events"`
	Metadata   Metadata                  `json:"metadata"`
}
