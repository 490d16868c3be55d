package validators

import (
	"context"

	"github.com/google/uuid"

	"github.com/goliatone/go-webedit/internal/logging"
	"github.com/goliatone/go-webedit/pkg/interfaces"
)

// Field is a processed submission eligible for validator binding.
type Field struct {
	Ref       interfaces.Reference
	ControlID string
}

// Resolver asks the registry for validators and binds them to editor controls.
type Resolver struct {
	registry interfaces.ValidatorRegistry
	logger   interfaces.Logger
}

// NewResolver builds a resolver. A nil registry resolves to empty sets.
func NewResolver(registry interfaces.ValidatorRegistry, logger interfaces.Logger) *Resolver {
	return &Resolver{
		registry: registry,
		logger:   logging.Ensure(logger),
	}
}

// Resolve returns the validator set for fields. Registry failures are logged
// and produce an empty set; they never fail the save.
func (r *Resolver) Resolve(ctx context.Context, item *interfaces.ContentItem, fields []Field) interfaces.ValidatorSet {
	if r == nil || r.registry == nil || item == nil {
		return interfaces.ValidatorSet{}
	}

	refs := make([]interfaces.Reference, 0, len(fields))
	for _, field := range fields {
		refs = append(refs, field.Ref)
	}

	set, err := r.registry.ResolveValidators(ctx, item, refs)
	if err != nil {
		logging.WithItemContext(r.logger, item.ID.String(), item.Language, item.Version).
			WithContext(ctx).
			Error("save.validators.failed", "item_name", item.Name, "error", err)
		return interfaces.ValidatorSet{Mode: set.Mode}
	}

	set.Validators = Bind(set.Validators, fields)
	return set
}

// Bind sets ControlToValidate on every validator whose field matches a
// submitted field with a control id. The first matching field wins.
func Bind(validators []interfaces.Validator, fields []Field) []interfaces.Validator {
	if len(validators) == 0 {
		return validators
	}
	out := make([]interfaces.Validator, len(validators))
	copy(out, validators)
	for i := range out {
		validator := &out[i]
		field, ok := firstMatch(*validator, fields)
		if !ok || field.ControlID == "" {
			continue
		}
		validator.ControlToValidate = field.ControlID
	}
	return out
}

func firstMatch(validator interfaces.Validator, fields []Field) (Field, bool) {
	if validator.ItemID == uuid.Nil || validator.FieldID == uuid.Nil {
		return Field{}, false
	}
	for _, field := range fields {
		ref := field.Ref
		if ref.ItemID != validator.ItemID || ref.FieldID != validator.FieldID {
			continue
		}
		if validator.Language != "" && validator.Language != ref.Language {
			continue
		}
		if validator.Version != 0 && validator.Version != ref.Version {
			continue
		}
		return field, true
	}
	return Field{}, false
}
