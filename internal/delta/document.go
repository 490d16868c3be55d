package delta

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/goliatone/go-webedit/pkg/interfaces"
)

// ErrEntryInvalid is returned when an entry lacks an item or field identifier.
var ErrEntryInvalid = errors.New("delta: entry requires item and field identifiers")

// Key is the identity of a delta entry.
type Key struct {
	ItemID   uuid.UUID
	Language string
	Version  int
	FieldID  uuid.UUID
}

// KeyOf returns the key of a field reference.
func KeyOf(ref interfaces.Reference) Key {
	return Key{
		ItemID:   ref.ItemID,
		Language: ref.Language,
		Version:  ref.Version,
		FieldID:  ref.FieldID,
	}
}

// Document is the sparse set of field changes built during one save request.
// It holds at most one entry per Key and preserves insertion order. A Document
// is owned by a single request and is not safe for concurrent use.
type Document struct {
	entries []interfaces.DeltaEntry
	index   map[Key]int
}

// New returns an empty document.
func New() *Document {
	return &Document{index: make(map[Key]int)}
}

// Len reports the number of entries.
func (d *Document) Len() int {
	if d == nil {
		return 0
	}
	return len(d.entries)
}

// Lookup returns the entry stored for ref.
func (d *Document) Lookup(ref interfaces.Reference) (interfaces.DeltaEntry, bool) {
	if d == nil {
		return interfaces.DeltaEntry{}, false
	}
	idx, ok := d.index[KeyOf(ref)]
	if !ok {
		return interfaces.DeltaEntry{}, false
	}
	return d.entries[idx], true
}

// Put inserts entry or replaces the entry with the same key in place. It
// reports whether a new entry was added.
func (d *Document) Put(entry interfaces.DeltaEntry) (bool, error) {
	if entry.ItemID == uuid.Nil || entry.FieldID == uuid.Nil {
		return false, ErrEntryInvalid
	}
	if d.index == nil {
		d.index = make(map[Key]int)
	}
	key := KeyOf(entry.Reference())
	if idx, ok := d.index[key]; ok {
		d.entries[idx] = entry
		return false, nil
	}
	d.index[key] = len(d.entries)
	d.entries = append(d.entries, entry)
	return true, nil
}

// SetValue overwrites the value of an existing entry, keeping its revision.
// It reports whether an entry was found.
func (d *Document) SetValue(ref interfaces.Reference, value string) bool {
	if d == nil {
		return false
	}
	idx, ok := d.index[KeyOf(ref)]
	if !ok {
		return false
	}
	d.entries[idx].Value = value
	return true
}

// Entries returns a copy of the entries in insertion order.
func (d *Document) Entries() []interfaces.DeltaEntry {
	if d == nil || len(d.entries) == 0 {
		return nil
	}
	out := make([]interfaces.DeltaEntry, len(d.entries))
	copy(out, d.entries)
	return out
}

type xmlDocument struct {
	XMLName xml.Name                `xml:"fields"`
	Fields  []interfaces.DeltaEntry `xml:"field"`
}

// EncodeXML renders the wire form:
//
//	<fields><field itemid=".." language=".." version=".." fieldid=".." itemrevision=".."><value>..</value></field></fields>
func (d *Document) EncodeXML() ([]byte, error) {
	payload := xmlDocument{Fields: d.Entries()}
	var buf bytes.Buffer
	encoder := xml.NewEncoder(&buf)
	if err := encoder.Encode(payload); err != nil {
		return nil, fmt.Errorf("delta: encode document: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeXML rebuilds a document from its wire form. Duplicate keys collapse to
// the last occurrence.
func DecodeXML(data []byte) (*Document, error) {
	var payload xmlDocument
	if err := xml.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("delta: decode document: %w", err)
	}
	doc := New()
	for _, entry := range payload.Fields {
		if _, err := doc.Put(entry); err != nil {
			return nil, err
		}
	}
	return doc, nil
}
