package executor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/arthur-debert/tidy/pkg/errors"
	"github.com/arthur-debert/tidy/pkg/paths"
)

// Move relocates a file or directory. A destination that is an
// existing directory receives the source inside it; an occupied
// destination path gets a disambiguated name, never overwritten.
func (e *Engine) Move(source, dest string, opts Options) (Result, error) {
	src, err := e.resolver.ResolveExisting(source)
	if err != nil {
		return Result{}, err
	}
	target, err := e.planTarget(src, dest)
	if err != nil {
		return Result{}, err
	}

	params := map[string]interface{}{"source": source, "destination": dest}
	result := Result{DryRun: e.effectiveDryRun(opts)}
	result.Planned = []PlannedAction{{Kind: "move", Source: src, Dest: target}}
	result.Paths = []string{src, target}
	result.Summary = fmt.Sprintf("move %s -> %s", src, target)

	if !result.DryRun {
		if err := e.movePath(src, target); err != nil {
			e.recordFailure("move", params, err, result.Paths)
			return Result{}, err
		}
	}

	e.record("move", params, &result)
	return result, nil
}

// Copy duplicates a file or directory tree. Collision policy matches
// Move.
func (e *Engine) Copy(source, dest string, opts Options) (Result, error) {
	src, err := e.resolver.ResolveExisting(source)
	if err != nil {
		return Result{}, err
	}
	target, err := e.planTarget(src, dest)
	if err != nil {
		return Result{}, err
	}

	params := map[string]interface{}{"source": source, "destination": dest}
	result := Result{DryRun: e.effectiveDryRun(opts)}
	result.Planned = []PlannedAction{{Kind: "copy", Source: src, Dest: target}}
	result.Paths = []string{src, target}
	result.Summary = fmt.Sprintf("copy %s -> %s", src, target)

	if !result.DryRun {
		if err := e.copyPath(src, target); err != nil {
			e.recordFailure("copy", params, err, result.Paths)
			return Result{}, err
		}
	}

	e.record("copy", params, &result)
	return result, nil
}

// Delete removes a file or directory. By default the victim moves into
// the trash vault; opts.Permanent bypasses the vault and removes it
// outright.
func (e *Engine) Delete(path string, opts Options) (Result, error) {
	target, err := e.resolver.ResolveExisting(path)
	if err != nil {
		return Result{}, err
	}

	kind := "trash"
	if opts.Permanent {
		kind = "delete"
	}

	params := map[string]interface{}{"path": path, "permanent": opts.Permanent}
	result := Result{DryRun: e.effectiveDryRun(opts)}
	result.Planned = []PlannedAction{{Kind: kind, Source: target}}
	result.Paths = []string{target}

	if result.DryRun {
		result.Summary = fmt.Sprintf("would %s %s", kind, target)
	} else if opts.Permanent {
		if err := e.fs.RemoveAll(target); err != nil {
			err = errors.Wrapf(err, errors.ErrFileAccess, "cannot delete %s", target)
			e.recordFailure("delete", params, err, result.Paths)
			return Result{}, err
		}
		result.Summary = fmt.Sprintf("permanently deleted %s", target)
	} else {
		entry, err := e.vault.SoftDelete(target)
		if err != nil {
			e.recordFailure("delete", params, err, result.Paths)
			return Result{}, err
		}
		result.Paths = append(result.Paths, entry.To)
		result.Summary = fmt.Sprintf("trashed %s -> %s", target, entry.To)
	}

	e.record("delete", params, &result)
	return result, nil
}

// MakeDir creates a directory (and parents).
func (e *Engine) MakeDir(path string, opts Options) (Result, error) {
	target, err := e.resolver.Resolve(path)
	if err != nil {
		return Result{}, err
	}

	params := map[string]interface{}{"path": path}
	result := Result{DryRun: e.effectiveDryRun(opts)}
	result.Planned = []PlannedAction{{Kind: "mkdir", Source: target}}
	result.Paths = []string{target}
	result.Summary = fmt.Sprintf("mkdir %s", target)

	if !result.DryRun {
		if err := e.fs.MkdirAll(target, 0755); err != nil {
			err = errors.Wrapf(err, errors.ErrDirCreate, "cannot create %s", target)
			e.recordFailure("mkdir", params, err, result.Paths)
			return Result{}, err
		}
	}

	e.record("mkdir", params, &result)
	return result, nil
}

// planTarget resolves dest for a move/copy of src: an existing
// directory receives the source inside it, and the final path is
// disambiguated against collisions.
func (e *Engine) planTarget(src, dest string) (string, error) {
	target, err := e.resolver.Resolve(dest)
	if err != nil {
		return "", err
	}
	if info, err := e.fs.Stat(target); err == nil && info.IsDir() {
		target = filepath.Join(target, filepath.Base(src))
	}
	if target == src {
		return "", errors.Newf(errors.ErrInvalidPath, "source and destination are the same: %s", src)
	}
	// A directory must never receive itself; the copy fallback would
	// descend into the tree it is writing
	if strings.HasPrefix(target, src+string(filepath.Separator)) {
		return "", errors.Newf(errors.ErrInvalidPath, "destination %s is inside source %s", target, src)
	}
	unique, err := paths.Unique(e.fs, target)
	if err != nil {
		return "", err
	}
	if unique != target {
		e.logger.Debug().Str("wanted", target).Str("using", unique).Msg("Destination collision resolved")
	}
	return unique, nil
}

// movePath renames src to dst, creating parent directories and falling
// back to copy+delete for cross-device moves.
func (e *Engine) movePath(src, dst string) error {
	if err := e.fs.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "cannot create %s", filepath.Dir(dst))
	}
	if err := e.fs.Rename(src, dst); err == nil {
		return nil
	}
	if err := e.copyPath(src, dst); err != nil {
		return err
	}
	if err := e.fs.RemoveAll(src); err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "copied %s but cannot remove original", src)
	}
	return nil
}

// copyPath copies a file or a whole tree.
func (e *Engine) copyPath(src, dst string) error {
	info, err := e.fs.Stat(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot stat %s", src)
	}
	if err := e.fs.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "cannot create %s", filepath.Dir(dst))
	}
	if info.IsDir() {
		return e.copyTree(src, dst)
	}
	return e.copyFile(src, dst, info.Mode())
}

func (e *Engine) copyFile(src, dst string, mode os.FileMode) error {
	data, err := e.fs.ReadFile(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileRead, "cannot read %s", src)
	}
	if err := e.fs.WriteFile(dst, data, mode.Perm()); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot write %s", dst)
	}
	e.logger.Trace().Str("src", src).Str("dst", dst).
		Str("size", humanize.Bytes(uint64(len(data)))).Msg("Copied file")
	return nil
}

func (e *Engine) copyTree(src, dst string) error {
	if err := e.fs.MkdirAll(dst, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "cannot create %s", dst)
	}
	entries, err := e.fs.ReadDir(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileRead, "cannot read directory %s", src)
	}
	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())
		if entry.IsDir() {
			if err := e.copyTree(srcPath, dstPath); err != nil {
				return err
			}
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "cannot stat %s", srcPath)
		}
		if err := e.copyFile(srcPath, dstPath, info.Mode()); err != nil {
			return err
		}
	}
	return nil
}
