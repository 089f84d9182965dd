package executor

import (
	"fmt"

	"github.com/arthur-debert/tidy/pkg/trash"
)

// TrashEntries lists the soft-deleted entries held in the trash vault
// colocated with dir.
func (e *Engine) TrashEntries(dir string) ([]trash.Entry, error) {
	root, err := e.resolver.ResolveDir(dir)
	if err != nil {
		return nil, err
	}
	return e.vault.List(root)
}

// RestoreFromTrash moves a trash entry back to its original location.
// Restores are always applied; there is nothing speculative to
// simulate about undoing a soft delete, but the action is still
// recorded.
func (e *Engine) RestoreFromTrash(dir, id string) (Result, error) {
	root, err := e.resolver.ResolveDir(dir)
	if err != nil {
		return Result{}, err
	}

	restored, err := e.vault.Restore(root, id)
	if err != nil {
		return Result{}, err
	}

	result := Result{
		Paths:   []string{restored},
		Summary: fmt.Sprintf("restored %s from trash", restored),
	}
	e.record("restore_from_trash", map[string]interface{}{"dir": dir, "id": id}, &result)
	return result, nil
}
