package importer

import (
	"context"
	"fmt"
	"time"

	"catalog-service/internal/models"
)

type identitySet map[string]struct{}

func (s identitySet) has(v string) bool {
	_, ok := s[v]
	return ok
}

func (s identitySet) add(v string) {
	if v != "" {
		s[v] = struct{}{}
	}
}

// runningSets record every identifier committed so far in one import run,
// catching collisions between rows the store cannot see yet.
type runningSets struct {
	skus        identitySet
	variantSkus identitySet
	barcodes    identitySet
}

func newRunningSets() *runningSets {
	return &runningSets{
		skus:        identitySet{},
		variantSkus: identitySet{},
		barcodes:    identitySet{},
	}
}

type outcome int

const (
	outcomeAccept outcome = iota
	outcomeSkip
	outcomeHalt
)

type resolution struct {
	value   string
	outcome outcome
	reason  string
}

// identityCheck describes one identifier to test against the running sets and the store.
type identityCheck struct {
	kind   string
	value  string
	sets   []identitySet
	exists func(ctx context.Context, value string) (bool, error)
	action models.DuplicateAction
}

func (c identityCheck) inSets(v string) bool {
	for _, s := range c.sets {
		if s.has(v) {
			return true
		}
	}
	return false
}

// timestampSuffix returns the low six digits of the current time in microseconds.
func timestampSuffix() string {
	return fmt.Sprintf("%06d", time.Now().UnixMicro()%1000000)
}

// checkAndResolve applies the duplicate policy to one identifier: the running
// sets are consulted first, then the store. A replaced identifier is compared
// against the running sets once more and never against the store.
func checkAndResolve(ctx context.Context, c identityCheck, suffix func() string) (resolution, error) {
	var reason string
	if c.inSets(c.value) {
		reason = fmt.Sprintf("duplicate %s '%s' in file", c.kind, c.value)
	} else {
		exists, err := c.exists(ctx, c.value)
		if err != nil {
			return resolution{}, fmt.Errorf("failed to check %s '%s': %w", c.kind, c.value, err)
		}
		if !exists {
			return resolution{value: c.value, outcome: outcomeAccept}, nil
		}
		reason = fmt.Sprintf("%s '%s' already exists", c.kind, c.value)
	}

	switch c.action {
	case models.DuplicateActionStop:
		return resolution{value: c.value, outcome: outcomeHalt, reason: reason}, nil
	case models.DuplicateActionReplace:
		replaced := fmt.Sprintf("%s-%s", c.value, suffix())
		if c.inSets(replaced) {
			return resolution{
				value:   c.value,
				outcome: outcomeSkip,
				reason:  fmt.Sprintf("%s; replacement '%s' is also taken", reason, replaced),
			}, nil
		}
		return resolution{value: replaced, outcome: outcomeAccept}, nil
	default:
		return resolution{value: c.value, outcome: outcomeSkip, reason: reason}, nil
	}
}

type idOccurrence struct {
	value string
	row   int
}

// firstInFileDuplicate scans identifiers in processing order and reports the
// first value seen twice, with the row where it first appeared.
func firstInFileDuplicate(ids []idOccurrence) (dup idOccurrence, firstRow int, found bool) {
	seen := make(map[string]int, len(ids))
	for _, id := range ids {
		if id.value == "" {
			continue
		}
		if row, ok := seen[id.value]; ok {
			return id, row, true
		}
		seen[id.value] = id.row
	}
	return idOccurrence{}, 0, false
}
