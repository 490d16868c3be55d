package items

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/goliatone/go-webedit/pkg/interfaces"
)

// Store is the item repository used by the save path and the default
// persistence pipeline.
type Store interface {
	interfaces.ItemRepository
	interfaces.ItemResolver
	WriteFields(ctx context.Context, write Write) error
}

// Write replaces field values on one item language/version and stamps the
// item with a new revision.
type Write struct {
	ItemID   uuid.UUID
	Language string
	Version  int
	Values   map[uuid.UUID]string
	Revision string
}

// NotFoundError reports a missing item or field.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

// Is lets callers match any not found error against the shared sentinel.
func (e *NotFoundError) Is(target error) bool {
	return target == interfaces.ErrContentItemNotFound
}

// IsNotFound reports whether err is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, interfaces.ErrContentItemNotFound)
}

func itemKey(id uuid.UUID, language string, version int) string {
	return fmt.Sprintf("%s:%s:%d", id, language, version)
}

func cloneItem(item *interfaces.ContentItem) *interfaces.ContentItem {
	if item == nil {
		return nil
	}
	cloned := *item
	cloned.Fields = make(map[uuid.UUID]*interfaces.ContentField, len(item.Fields))
	for id, field := range item.Fields {
		if field == nil {
			continue
		}
		copied := *field
		cloned.Fields[id] = &copied
	}
	return &cloned
}
