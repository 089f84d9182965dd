package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/tidy/pkg/errors"
	"github.com/arthur-debert/tidy/pkg/logging"
	"github.com/arthur-debert/tidy/pkg/types"
)

// Resolver validates and canonicalizes user-supplied paths.
type Resolver struct {
	fs types.FS

	// Root, when non-empty, confines every resolved path to this
	// directory tree. Paths escaping it are rejected.
	Root string

	// SkipSymlinkEval disables filepath.EvalSymlinks. In-memory test
	// filesystems have no symlinks to evaluate, and EvalSymlinks always
	// consults the OS.
	SkipSymlinkEval bool
}

// NewResolver creates a resolver without root confinement.
func NewResolver(fs types.FS) *Resolver {
	return &Resolver{fs: fs}
}

// NewRootedResolver creates a resolver that confines all paths to root.
// The root itself is resolved eagerly so later escape checks compare
// canonical forms.
func NewRootedResolver(fs types.FS, root string) (*Resolver, error) {
	r := &Resolver{fs: fs}
	resolved, err := r.Resolve(root)
	if err != nil {
		return nil, err
	}
	r.Root = resolved
	return r, nil
}

// Resolve validates raw and returns its canonical absolute form. The
// path does not have to exist; nonexistent trailing elements are
// resolved against their closest existing ancestor.
func (r *Resolver) Resolve(raw string) (string, error) {
	if err := validate(raw); err != nil {
		return "", err
	}

	path := ExpandHome(raw)

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrInvalidPath, "cannot make %q absolute", raw)
	}
	abs = filepath.Clean(abs)

	if !r.SkipSymlinkEval {
		abs, err = evalSymlinks(abs)
		if err != nil {
			// A symlink loop or unreadable component
			return "", errors.Wrapf(err, errors.ErrInvalidPath, "cannot resolve %q", raw)
		}
	}

	if r.Root != "" {
		if err := r.checkRoot(abs); err != nil {
			return "", err
		}
	}

	return abs, nil
}

// ResolveExisting is Resolve plus an existence check, used for source
// paths that the engine is about to read or move.
func (r *Resolver) ResolveExisting(raw string) (string, error) {
	resolved, err := r.Resolve(raw)
	if err != nil {
		return "", err
	}
	if _, err := r.fs.Stat(resolved); err != nil {
		if os.IsNotExist(err) {
			return "", errors.Newf(errors.ErrNotFound, "path does not exist: %s", raw)
		}
		return "", errors.Wrapf(err, errors.ErrFileAccess, "cannot stat %s", raw)
	}
	return resolved, nil
}

// ResolveDir is ResolveExisting restricted to directories.
func (r *Resolver) ResolveDir(raw string) (string, error) {
	resolved, err := r.ResolveExisting(raw)
	if err != nil {
		return "", err
	}
	info, err := r.fs.Stat(resolved)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrFileAccess, "cannot stat %s", raw)
	}
	if !info.IsDir() {
		return "", errors.Newf(errors.ErrInvalidPath, "not a directory: %s", raw)
	}
	return resolved, nil
}

// checkRoot rejects paths outside the configured root.
func (r *Resolver) checkRoot(abs string) error {
	rel, err := filepath.Rel(r.Root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		logger := logging.GetLogger("paths")
		logger.Warn().
			Str("path", abs).
			Str("root", r.Root).
			Msg("Path escapes allowed root")
		return errors.Newf(errors.ErrOutsideRoot, "path %s escapes allowed root %s", abs, r.Root)
	}
	return nil
}

// validate performs structural validation on a raw path. It checks for:
// - empty paths
// - embedded null bytes
// - excessive path length
func validate(path string) error {
	if path == "" {
		return errors.New(errors.ErrInvalidPath, "path cannot be empty")
	}
	if strings.Contains(path, "\x00") {
		return errors.New(errors.ErrInvalidPath, "path contains null bytes")
	}
	// Common filesystem limit
	if len(path) > 4096 {
		return errors.New(errors.ErrInvalidPath, "path exceeds maximum length")
	}
	return nil
}

// evalSymlinks resolves symlinks for as much of the path as exists. A
// destination that does not exist yet resolves against its closest
// existing ancestor so the escape check still sees the real location.
func evalSymlinks(abs string) (string, error) {
	resolved, err := filepath.EvalSymlinks(abs)
	if err == nil {
		return resolved, nil
	}
	if !os.IsNotExist(err) {
		return "", err
	}

	dir, base := filepath.Split(filepath.Clean(abs))
	dir = filepath.Clean(dir)
	if dir == abs {
		// Reached the filesystem root
		return abs, nil
	}
	resolvedDir, err := evalSymlinks(dir)
	if err != nil {
		return "", err
	}
	return filepath.Join(resolvedDir, base), nil
}

// ExpandHome expands a leading ~ or ~/ to the user's home directory.
// Paths like ~other are returned unchanged.
func ExpandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}
