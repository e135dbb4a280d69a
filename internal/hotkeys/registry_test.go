package hotkeys

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snapdesk/snapdesk/internal/fault"
)

func TestRegistryAddRemove(t *testing.T) {
	r := NewRegistry()
	reg := Registration{ID: 1, Mods: ModControl | ModAlt, Key: 'L'}

	require.NoError(t, r.Add(reg))
	assert.True(t, r.Contains(1))
	assert.Equal(t, 1, r.Count())

	got, ok := r.Get(1)
	require.True(t, ok)
	assert.Equal(t, reg, got)

	removed, err := r.Remove(1)
	require.NoError(t, err)
	assert.Equal(t, reg, removed)
	assert.False(t, r.Contains(1))
	assert.Equal(t, 0, r.Count())
}

func TestRegistryDuplicateIDConflicts(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Add(Registration{ID: 7, Mods: ModWin, Key: '1'}))

	err := r.Add(Registration{ID: 7, Mods: ModControl, Key: '2'})
	require.Error(t, err)
	assert.True(t, fault.IsKind(err, fault.Conflict))

	// The original registration survives a rejected duplicate.
	got, ok := r.Get(7)
	require.True(t, ok)
	assert.Equal(t, Modifiers(ModWin), got.Mods)
}

func TestRegistryRemoveUnknownID(t *testing.T) {
	r := NewRegistry()
	_, err := r.Remove(42)
	require.Error(t, err)
	assert.True(t, fault.IsKind(err, fault.NotFound))
}

func TestRegistryReRegisterAfterRemove(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Add(Registration{ID: 3, Mods: ModAlt, Key: 'A'}))
	_, err := r.Remove(3)
	require.NoError(t, err)
	require.NoError(t, r.Add(Registration{ID: 3, Mods: ModShift, Key: 'B'}))
}

func TestRegistryIDsSorted(t *testing.T) {
	r := NewRegistry()
	for _, id := range []int{9, 2, 5} {
		require.NoError(t, r.Add(Registration{ID: id, Key: 'X'}))
	}
	assert.Equal(t, []int{2, 5, 9}, r.IDs())
}

func TestValidateID(t *testing.T) {
	tests := []struct {
		name string
		id   int
		ok   bool
	}{
		{"minimum", IDMin, true},
		{"maximum", IDMax, true},
		{"below range", IDMin - 1, false},
		{"above range", IDMax + 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateID(tt.id)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.True(t, fault.IsKind(err, fault.InvalidParameter))
		})
	}
}

func TestValidateKey(t *testing.T) {
	assert.NoError(t, ValidateKey(VKMin))
	assert.NoError(t, ValidateKey(VKMax))
	assert.True(t, fault.IsKind(ValidateKey(0), fault.InvalidParameter))
	assert.True(t, fault.IsKind(ValidateKey(VKMax+1), fault.InvalidParameter))
}

func TestModifiersHas(t *testing.T) {
	mods := ModControl | ModAlt
	assert.True(t, mods.Has(ModControl))
	assert.True(t, mods.Has(ModControl|ModAlt))
	assert.False(t, mods.Has(ModWin))
	assert.False(t, mods.Has(ModControl|ModWin))
}
