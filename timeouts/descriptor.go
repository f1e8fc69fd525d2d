// Package timeouts turns the client's configured duration hierarchy into
// concrete per-attempt deadlines. A Descriptor holds one budget per operation
// category; a Manager resolves overrides against it and, attempt by attempt,
// answers "how long may this round trip take" along with a lazily built error
// describing which budget ran out.
package timeouts

import (
	"math"
	"time"
)

// Unbounded is the sentinel duration a disabled (zero) budget normalizes to.
// Halving MaxInt64 keeps deadline arithmetic from overflowing.
const Unbounded = time.Duration(math.MaxInt64 / 2)

// Category identifies one named budget in a Descriptor.
type Category string

const (
	// CategoryRequest bounds a single HTTP round trip.
	CategoryRequest Category = "request"

	// CategoryGeneralMethod bounds an entire data-plane method, including all
	// pages of a paginated read and all retries.
	CategoryGeneralMethod Category = "generalMethod"

	// CategoryCollectionAdmin bounds collection lifecycle methods.
	CategoryCollectionAdmin Category = "collectionAdmin"

	// CategoryTableAdmin bounds table lifecycle methods.
	CategoryTableAdmin Category = "tableAdmin"

	// CategoryDatabaseAdmin bounds database lifecycle methods.
	CategoryDatabaseAdmin Category = "databaseAdmin"

	// CategoryKeyspaceAdmin bounds keyspace lifecycle methods.
	CategoryKeyspaceAdmin Category = "keyspaceAdmin"
)

// Descriptor is the full set of named duration budgets. Each field is
// independently overridable at every level of the client hierarchy
// (client, database handle, collection handle, per call).
//
// A zero field means "disabled" and normalizes to Unbounded when resolved,
// never to an error.
type Descriptor struct {
	Request         time.Duration `yaml:"request"`
	GeneralMethod   time.Duration `yaml:"generalMethod"`
	CollectionAdmin time.Duration `yaml:"collectionAdmin"`
	TableAdmin      time.Duration `yaml:"tableAdmin"`
	DatabaseAdmin   time.Duration `yaml:"databaseAdmin"`
	KeyspaceAdmin   time.Duration `yaml:"keyspaceAdmin"`
}

// Defaults returns the stock budgets used when nothing is configured.
func Defaults() Descriptor {
	return Descriptor{
		Request:         10 * time.Second,
		GeneralMethod:   30 * time.Second,
		CollectionAdmin: 60 * time.Second,
		TableAdmin:      30 * time.Second,
		DatabaseAdmin:   10 * time.Minute,
		KeyspaceAdmin:   30 * time.Second,
	}
}

// Get returns the budget for the given category. Unknown categories resolve
// to the general method budget.
func (d Descriptor) Get(category Category) time.Duration {
	switch category {
	case CategoryRequest:
		return d.Request
	case CategoryGeneralMethod:
		return d.GeneralMethod
	case CategoryCollectionAdmin:
		return d.CollectionAdmin
	case CategoryTableAdmin:
		return d.TableAdmin
	case CategoryDatabaseAdmin:
		return d.DatabaseAdmin
	case CategoryKeyspaceAdmin:
		return d.KeyspaceAdmin
	default:
		return d.GeneralMethod
	}
}

// set returns a copy of the descriptor with the given category replaced.
func (d Descriptor) set(category Category, value time.Duration) Descriptor {
	switch category {
	case CategoryRequest:
		d.Request = value
	case CategoryGeneralMethod:
		d.GeneralMethod = value
	case CategoryCollectionAdmin:
		d.CollectionAdmin = value
	case CategoryTableAdmin:
		d.TableAdmin = value
	case CategoryDatabaseAdmin:
		d.DatabaseAdmin = value
	case CategoryKeyspaceAdmin:
		d.KeyspaceAdmin = value
	}

	return d
}

// Merge applies the structured fields of the given overrides to the
// descriptor, field-wise, in order. Later overrides win per field, so callers
// pass them from least to most specific (client, database, collection, call).
// Nil overrides are skipped. Flat Provided values are not merged here; they
// only take effect when a Manager is built for a specific operation.
func (d Descriptor) Merge(overrides ...*Override) Descriptor {
	out := d

	for _, o := range overrides {
		if o == nil {
			continue
		}

		for _, category := range AllCategories() {
			if v := o.get(category); v != nil {
				out = out.set(category, *v)
			}
		}
	}

	return out
}

// Collapse folds a chain of overrides into a single one, from least to most
// specific. Structured fields merge field-wise with later values winning. The
// flat Provided form and structured fields displace each other across levels:
// a level that sets only Provided supersedes inherited structured fields, and
// a level that sets only structured fields supersedes an inherited Provided.
// Nil inputs are skipped; an all-nil chain collapses to nil.
func Collapse(overrides ...*Override) *Override {
	var out *Override

	for _, o := range overrides {
		if o == nil {
			continue
		}

		if out == nil {
			out = &Override{}
		}

		structured := false

		for _, category := range AllCategories() {
			if v := o.get(category); v != nil {
				out.setPtr(category, v)

				structured = true
			}
		}

		switch {
		case o.Provided != nil && !structured:
			*out = Override{Provided: o.Provided}
		case o.Provided != nil:
			out.Provided = o.Provided
		case structured:
			out.Provided = nil
		}
	}

	return out
}

// AllCategories lists every named budget, in Descriptor field order.
func AllCategories() []Category {
	return []Category{
		CategoryRequest,
		CategoryGeneralMethod,
		CategoryCollectionAdmin,
		CategoryTableAdmin,
		CategoryDatabaseAdmin,
		CategoryKeyspaceAdmin,
	}
}

// Override is a partial Descriptor. Nil fields inherit from the level below;
// a zero value explicitly disables the budget. Provided is the flat form: a
// single duration that, for the operation it is passed to, acts as both the
// request budget and the operation's own category budget.
type Override struct {
	Provided        *time.Duration `yaml:"provided"`
	Request         *time.Duration `yaml:"request"`
	GeneralMethod   *time.Duration `yaml:"generalMethod"`
	CollectionAdmin *time.Duration `yaml:"collectionAdmin"`
	TableAdmin      *time.Duration `yaml:"tableAdmin"`
	DatabaseAdmin   *time.Duration `yaml:"databaseAdmin"`
	KeyspaceAdmin   *time.Duration `yaml:"keyspaceAdmin"`
}

// ProvidedOverride is shorthand for the flat form.
func ProvidedOverride(d time.Duration) *Override {
	return &Override{Provided: &d}
}

func (o *Override) get(category Category) *time.Duration {
	if o == nil {
		return nil
	}

	switch category {
	case CategoryRequest:
		return o.Request
	case CategoryGeneralMethod:
		return o.GeneralMethod
	case CategoryCollectionAdmin:
		return o.CollectionAdmin
	case CategoryTableAdmin:
		return o.TableAdmin
	case CategoryDatabaseAdmin:
		return o.DatabaseAdmin
	case CategoryKeyspaceAdmin:
		return o.KeyspaceAdmin
	default:
		return nil
	}
}

func (o *Override) setPtr(category Category, v *time.Duration) {
	switch category {
	case CategoryRequest:
		o.Request = v
	case CategoryGeneralMethod:
		o.GeneralMethod = v
	case CategoryCollectionAdmin:
		o.CollectionAdmin = v
	case CategoryTableAdmin:
		o.TableAdmin = v
	case CategoryDatabaseAdmin:
		o.DatabaseAdmin = v
	case CategoryKeyspaceAdmin:
		o.KeyspaceAdmin = v
	}
}

// normalize maps the "disabled" zero to the Unbounded sentinel.
func normalize(d time.Duration) time.Duration {
	if d == 0 {
		return Unbounded
	}

	return d
}

// resolve picks the override value when present, else the base, normalized.
func resolve(override *time.Duration, base time.Duration) time.Duration {
	if override != nil {
		return normalize(*override)
	}

	return normalize(base)
}
