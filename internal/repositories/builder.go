package repositories

import "regiond/internal/errs"

// ResourceBuilder accumulates column values and validation failures.
// Entity builders embed it and expose typed With* setters.
type ResourceBuilder struct {
	values  Resource
	details []errs.Detail
}

func (b *ResourceBuilder) set(col string, v any) {
	if b.values == nil {
		b.values = Resource{}
	}
	b.values[col] = v
}

func (b *ResourceBuilder) invalid(format string, args ...any) {
	b.details = append(b.details, errs.Validation(format, args...).Details...)
}

// Build returns the resource, or a Validation error listing every invalid
// value that was set.
func (b *ResourceBuilder) Build() (Resource, error) {
	if len(b.details) > 0 {
		return nil, &errs.Error{Kind: errs.KindValidation, Details: b.details}
	}
	out := make(Resource, len(b.values))
	for k, v := range b.values {
		out[k] = v
	}
	return out, nil
}

// Has reports whether col was set.
func (b *ResourceBuilder) Has(col string) bool {
	_, ok := b.values[col]
	return ok
}
