package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/aevon-lab/metastore/internal/core/namespace"
	"github.com/aevon-lab/metastore/internal/core/savedobject"
	"github.com/aevon-lab/metastore/internal/core/serializer"
	"github.com/shopspring/decimal"
)

// MergeAttributes shallow-merges update into existing without mutating either.
func MergeAttributes(existing, update savedobject.Attributes) savedobject.Attributes {
	out := make(savedobject.Attributes, len(existing)+len(update))
	maps.Copy(out, existing)
	maps.Copy(out, update)
	return out
}

// IncrementField returns a copy of attrs with field incremented by one. A
// missing or null field counts as zero.
func IncrementField(attrs savedobject.Attributes, field string) (savedobject.Attributes, error) {
	current := decimal.Zero
	if v, ok := attrs[field]; ok && v != nil {
		d, err := toDecimal(v)
		if err != nil {
			return nil, savedobject.NewBadRequest("counter field %q is not numeric: %v", field, err)
		}
		current = d
	}

	next := current.Add(decimal.NewFromInt(1))
	out := maps.Clone(attrs)
	if out == nil {
		out = savedobject.Attributes{}
	}
	if next.IsInteger() {
		out[field] = next.IntPart()
	} else {
		out[field] = next.InexactFloat64()
	}
	return out, nil
}

func toDecimal(v any) (decimal.Decimal, error) {
	switch n := v.(type) {
	case float64:
		return decimal.NewFromFloat(n), nil
	case float32:
		return decimal.NewFromFloat32(n), nil
	case int:
		return decimal.NewFromInt(int64(n)), nil
	case int32:
		return decimal.NewFromInt32(n), nil
	case int64:
		return decimal.NewFromInt(n), nil
	case json.Number:
		return decimal.NewFromString(n.String())
	case string:
		return decimal.NewFromString(n)
	default:
		return decimal.Zero, fmt.Errorf("unsupported value type %T", v)
	}
}

// ApplyUpdate returns the raw document produced by merging attributes into
// existing, optionally replacing references, and stamping updated_at.
func ApplyUpdate(existing serializer.RawDoc, attributes savedobject.Attributes, references []savedobject.Reference) serializer.RawDoc {
	next := existing
	next.Source.Attributes = MergeAttributes(existing.Source.Attributes, attributes)
	if references != nil {
		next.Source.References = slices.Clone(references)
	}
	next.Source.UpdatedAt = savedobject.Now()
	return next
}

// CheckVersion fails with Conflict when version is set and does not match the
// stored seq_no/primary_term of existing.
func CheckVersion(typ, id string, existing serializer.RawDoc, version string) error {
	if version == "" {
		return nil
	}
	seqNo, term, err := serializer.DecodeVersion(version)
	if err != nil {
		return err
	}
	if seqNo != existing.SeqNo || term != existing.PrimaryTerm {
		return savedobject.NewConflict(typ, id)
	}
	return nil
}

// AddNamespaces returns the unique union of current and added.
func AddNamespaces(current, added []string) []string {
	return namespace.Unique(append(slices.Clone(current), added...))
}

// FanOut runs fn for every index in [0, n) on the bulk worker pool and waits
// for all of them. fn must record its own per-item result. Items that cannot
// be scheduled run on the calling goroutine.
func (b *Base) FanOut(ctx context.Context, n int, fn func(ctx context.Context, i int)) {
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		if err := b.pool.Submit(func() {
			defer wg.Done()
			fn(ctx, i)
		}); err != nil {
			fn(ctx, i)
			wg.Done()
		}
	}
	wg.Wait()
}
