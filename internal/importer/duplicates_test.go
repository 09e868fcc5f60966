package importer

import (
	"context"
	"errors"
	"testing"

	"catalog-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func existsIn(values ...string) func(context.Context, string) (bool, error) {
	return func(_ context.Context, v string) (bool, error) {
		for _, x := range values {
			if x == v {
				return true, nil
			}
		}
		return false, nil
	}
}

func TestCheckAndResolve(t *testing.T) {
	running := identitySet{"IN-FILE": {}}
	fixed := func() string { return "123456" }

	tests := []struct {
		name    string
		value   string
		action  models.DuplicateAction
		outcome outcome
		want    string
		reason  string
	}{
		{name: "fresh", value: "NEW", action: models.DuplicateActionStop, outcome: outcomeAccept, want: "NEW"},
		{name: "stored skip", value: "OLD", action: models.DuplicateActionSkip, outcome: outcomeSkip, want: "OLD", reason: "SKU 'OLD' already exists"},
		{name: "stored stop", value: "OLD", action: models.DuplicateActionStop, outcome: outcomeHalt, want: "OLD", reason: "SKU 'OLD' already exists"},
		{name: "stored replace", value: "OLD", action: models.DuplicateActionReplace, outcome: outcomeAccept, want: "OLD-123456"},
		{name: "in file skip", value: "IN-FILE", action: models.DuplicateActionSkip, outcome: outcomeSkip, want: "IN-FILE", reason: "duplicate SKU 'IN-FILE' in file"},
		{name: "in file replace", value: "IN-FILE", action: models.DuplicateActionReplace, outcome: outcomeAccept, want: "IN-FILE-123456"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := checkAndResolve(context.Background(), identityCheck{
				kind:   "SKU",
				value:  tt.value,
				sets:   []identitySet{running},
				exists: existsIn("OLD"),
				action: tt.action,
			}, fixed)

			require.NoError(t, err)
			assert.Equal(t, tt.outcome, res.outcome)
			assert.Equal(t, tt.want, res.value)
			assert.Equal(t, tt.reason, res.reason)
		})
	}
}

func TestCheckAndResolve_ReplacementTaken(t *testing.T) {
	running := identitySet{"A": {}, "A-000001": {}}

	res, err := checkAndResolve(context.Background(), identityCheck{
		kind:   "barcode",
		value:  "A",
		sets:   []identitySet{running},
		exists: existsIn(),
		action: models.DuplicateActionReplace,
	}, func() string { return "000001" })

	require.NoError(t, err)
	assert.Equal(t, outcomeSkip, res.outcome)
	assert.Equal(t, "duplicate barcode 'A' in file; replacement 'A-000001' is also taken", res.reason)
}

func TestCheckAndResolve_StoreError(t *testing.T) {
	_, err := checkAndResolve(context.Background(), identityCheck{
		kind:  "SKU",
		value: "X",
		sets:  []identitySet{{}},
		exists: func(context.Context, string) (bool, error) {
			return false, errors.New("db down")
		},
		action: models.DuplicateActionSkip,
	}, timestampSuffix)

	assert.EqualError(t, err, "failed to check SKU 'X': db down")
}

func TestTimestampSuffix(t *testing.T) {
	assert.Regexp(t, `^\d{6}$`, timestampSuffix())
}

func TestFirstInFileDuplicate(t *testing.T) {
	dup, first, found := firstInFileDuplicate([]idOccurrence{
		{value: "A", row: 2},
		{value: "", row: 3},
		{value: "B", row: 4},
		{value: "", row: 5},
		{value: "A", row: 6},
		{value: "B", row: 7},
	})
	require.True(t, found)
	assert.Equal(t, "A", dup.value)
	assert.Equal(t, 6, dup.row)
	assert.Equal(t, 2, first)

	_, _, found = firstInFileDuplicate([]idOccurrence{{value: "A", row: 2}, {value: "B", row: 3}})
	assert.False(t, found)
}
