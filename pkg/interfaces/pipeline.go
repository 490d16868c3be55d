package interfaces

import (
	"context"

	"github.com/google/uuid"
)

// DeltaEntry is one field change in the delta document handed to the
// persistence pipeline. Entry identity is (ItemID, Language, Version, FieldID).
type DeltaEntry struct {
	ItemID       uuid.UUID `json:"itemid"        xml:"itemid,attr"`
	Language     string    `json:"language"      xml:"language,attr"`
	Version      int       `json:"version"       xml:"version,attr"`
	FieldID      uuid.UUID `json:"fieldid"       xml:"fieldid,attr"`
	ItemRevision string    `json:"itemrevision,omitempty" xml:"itemrevision,attr,omitempty"`
	Value        string    `json:"value"         xml:"value"`
}

// Reference returns the identity of the entry.
func (e DeltaEntry) Reference() Reference {
	return Reference{
		ItemID:   e.ItemID,
		Language: e.Language,
		Version:  e.Version,
		FieldID:  e.FieldID,
	}
}

// SaveOptions carries the pipeline arguments set by the save command.
type SaveOptions struct {
	PipelineID         string
	PipelineName       string
	SaveAnimation      bool
	PostAction         string
	PolicyBasedLocking bool
	CustomData         map[string]any
}

// SaveResult reports the user-facing outcome of a pipeline run. Error is empty
// on success and otherwise holds the text shown to the editor.
type SaveResult struct {
	Error string
}

// SavePipeline persists a delta document and performs any revalidation.
type SavePipeline interface {
	Start(ctx context.Context, entries []DeltaEntry, opts SaveOptions) (SaveResult, error)
}
