package location

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockroom/internal/core/apperror"
	"stockroom/internal/core/id"
	"stockroom/internal/core/types"
)

func validBin() *Location {
	loc := NewLocation("A-01-01-01", "Bin 1", TypeBin, id.New())
	parent := id.New().String()
	loc.ParentID = &parent
	return loc
}

func TestValidate(t *testing.T) {
	ctx := context.Background()

	require.NoError(t, validBin().Validate(ctx))

	tests := []struct {
		name   string
		mutate func(*Location)
	}{
		{"empty code", func(l *Location) { l.Code = "" }},
		{"bad type", func(l *Location) { l.Type = LocationType("DRAWER") }},
		{"nil warehouse", func(l *Location) { l.WarehouseID = id.Nil() }},
		{"capacity on non-bin", func(l *Location) {
			l.Type = TypeShelf
			capacity := types.NewQuantityFromInt(10)
			l.Capacity = &capacity
		}},
		{"non-positive capacity", func(l *Location) {
			capacity := types.Quantity(0)
			l.Capacity = &capacity
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc := validBin()
			tt.mutate(loc)

			err := loc.Validate(ctx)
			require.Error(t, err)
			appErr, ok := apperror.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, apperror.CodeValidation, appErr.Code)
		})
	}
}

func TestZoneCannotHaveParent(t *testing.T) {
	zone := NewLocation("A", "Zone A", TypeZone, id.New())
	require.NoError(t, zone.Validate(context.Background()))

	parent := id.New().String()
	zone.ParentID = &parent
	require.Error(t, zone.Validate(context.Background()))
}

func TestBinCapacity(t *testing.T) {
	bin := validBin()
	capacity := types.NewQuantityFromInt(100)
	bin.Capacity = &capacity
	require.NoError(t, bin.Validate(context.Background()))
}

func TestRequiredParentType(t *testing.T) {
	tests := []struct {
		locType LocationType
		parent  LocationType
		ok      bool
	}{
		{TypeZone, "", false},
		{TypeRack, TypeZone, true},
		{TypeShelf, TypeRack, true},
		{TypeBin, TypeShelf, true},
	}
	for _, tt := range tests {
		loc := NewLocation("X", "X", tt.locType, id.New())
		parent, ok := loc.RequiredParentType()
		assert.Equal(t, tt.ok, ok, string(tt.locType))
		if ok {
			assert.Equal(t, tt.parent, parent)
		}
	}
}
