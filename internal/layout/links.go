package layout

import (
	"context"

	"github.com/snapdesk/snapdesk/internal/fault"
)

// RenameProfile renames a profile and rewrites the action of its bound
// hotkey record so the binding keeps resolving after the rename.
func RenameProfile(ctx context.Context, layouts *Repository, bindings *HotkeyRepository, oldName, newName string) (*Profile, error) {
	p, err := layouts.GetByName(ctx, oldName)
	if err != nil {
		return nil, err
	}
	p.Name = newName
	if err := layouts.Update(ctx, p); err != nil {
		return nil, err
	}
	if p.HotkeyID == "" {
		return p, nil
	}

	rec, err := bindings.GetByID(ctx, p.HotkeyID)
	if fault.IsKind(err, fault.NotFound) {
		// Stale link; nothing to rewrite.
		return p, nil
	}
	if err != nil {
		return nil, err
	}
	rec.Action = p.Name
	if err := bindings.Update(ctx, rec); err != nil {
		return nil, err
	}
	return p, nil
}

// RemoveProfile deletes a profile together with its bound hotkey
// record, so no binding is left pointing at a layout that no longer
// exists.
func RemoveProfile(ctx context.Context, layouts *Repository, bindings *HotkeyRepository, name string) (*Profile, error) {
	p, err := layouts.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if p.HotkeyID != "" {
		if err := bindings.Delete(ctx, p.HotkeyID); err != nil && !fault.IsKind(err, fault.NotFound) {
			return nil, err
		}
	}
	if err := layouts.Delete(ctx, p.ID); err != nil {
		return nil, err
	}
	return p, nil
}
