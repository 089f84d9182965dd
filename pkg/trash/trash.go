// Package trash implements the soft-delete vault.
//
// Deleting through the vault moves the victim into a hidden holding
// directory next to its parent instead of removing it, and records the
// move in a per-vault manifest so it can be listed and restored later.
// Entries never expire on their own. Permanent deletion bypasses this
// package entirely and is gated behind an explicit flag in the
// executor.
package trash

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/arthur-debert/tidy/pkg/errors"
	"github.com/arthur-debert/tidy/pkg/logging"
	"github.com/arthur-debert/tidy/pkg/paths"
	"github.com/arthur-debert/tidy/pkg/types"
)

const manifestName = "manifest.jsonl"

// Entry records one soft-deleted file or directory.
type Entry struct {
	ID    string    `json:"id"`
	From  string    `json:"from"`
	To    string    `json:"to"`
	Time  time.Time `json:"time"`
	IsDir bool      `json:"is_dir"`
}

// Vault moves files into per-parent-directory trash folders.
type Vault struct {
	fs      types.FS
	dirName string
}

// NewVault creates a vault using dirName as the hidden holding
// directory name ( ".tidy-trash" by default).
func NewVault(fs types.FS, dirName string) *Vault {
	if dirName == "" {
		dirName = ".tidy-trash"
	}
	return &Vault{fs: fs, dirName: dirName}
}

// DirName returns the holding directory name, so scanners can skip it.
func (v *Vault) DirName() string {
	return v.dirName
}

// dirFor returns the trash directory colocated with path's parent.
func (v *Vault) dirFor(path string) string {
	return filepath.Join(filepath.Dir(path), v.dirName)
}

// SoftDelete moves path (a file or a whole directory tree) into the
// trash directory next to its parent, creating it if absent. The entry
// keeps its base name with a short unique suffix so repeated deletes of
// same-named files never collide.
func (v *Vault) SoftDelete(path string) (Entry, error) {
	logger := logging.GetLogger("trash")

	info, err := v.fs.Lstat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Entry{}, errors.Newf(errors.ErrNotFound, "path does not exist: %s", path)
		}
		return Entry{}, errors.Wrapf(err, errors.ErrFileAccess, "cannot stat %s", path)
	}

	trashDir := v.dirFor(path)
	if err := v.fs.MkdirAll(trashDir, 0755); err != nil {
		return Entry{}, errors.Wrapf(err, errors.ErrTrash, "cannot create trash directory %s", trashDir)
	}

	id := uuid.NewString()
	trashed := filepath.Join(trashDir, fmt.Sprintf("%s.%s", filepath.Base(path), id[:8]))

	if err := v.move(path, trashed); err != nil {
		return Entry{}, err
	}

	entry := Entry{
		ID:    id,
		From:  path,
		To:    trashed,
		Time:  time.Now().UTC(),
		IsDir: info.IsDir(),
	}
	if err := v.appendManifest(trashDir, entry); err != nil {
		// The file is already in the trash; a manifest failure loses
		// restore-by-id but not the content
		logger.Warn().Err(err).Str("path", path).Msg("Cannot update trash manifest")
	}

	logger.Info().Str("from", path).Str("to", trashed).Msg("Soft-deleted")
	return entry, nil
}

// List returns the manifest entries for the trash directory colocated
// with dir, newest last. A missing trash directory yields no entries.
func (v *Vault) List(dir string) ([]Entry, error) {
	manifest := filepath.Join(dir, v.dirName, manifestName)
	f, err := v.fs.Open(manifest)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, errors.ErrTrash, "cannot read trash manifest %s", manifest)
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrTrash, "cannot read trash manifest %s", manifest)
	}

	var entries []Entry
	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		var entry Entry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			logger := logging.GetLogger("trash")
			logger.Warn().Err(err).Msg("Skipping corrupt manifest line")
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Restore moves the entry with the given id back to its original path.
// If something now occupies that path, the restored file gets a
// disambiguated name instead of overwriting. dir is the directory whose
// trash is searched (the original parent).
func (v *Vault) Restore(dir, id string) (string, error) {
	entries, err := v.List(dir)
	if err != nil {
		return "", err
	}

	var found *Entry
	for i := range entries {
		if entries[i].ID == id {
			found = &entries[i]
			break
		}
	}
	if found == nil {
		return "", errors.Newf(errors.ErrNotFound, "no trash entry with id %s", id)
	}

	target, err := paths.Unique(v.fs, found.From)
	if err != nil {
		return "", err
	}
	if err := v.move(found.To, target); err != nil {
		return "", err
	}

	remaining := make([]Entry, 0, len(entries)-1)
	for _, entry := range entries {
		if entry.ID != id {
			remaining = append(remaining, entry)
		}
	}
	logger := logging.GetLogger("trash")
	if err := v.rewriteManifest(filepath.Join(dir, v.dirName), remaining); err != nil {
		logger.Warn().Err(err).Msg("Cannot rewrite trash manifest")
	}

	logger.Info().Str("from", found.To).Str("to", target).Msg("Restored")
	return target, nil
}

// move renames src to dst, falling back to copy+delete when rename
// fails (cross-device moves).
func (v *Vault) move(src, dst string) error {
	if err := v.fs.Rename(src, dst); err == nil {
		return nil
	}

	info, err := v.fs.Lstat(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrTrash, "cannot stat %s", src)
	}
	if info.IsDir() {
		err = v.copyTree(src, dst)
	} else {
		err = v.copyFile(src, dst, info.Mode())
	}
	if err != nil {
		return err
	}
	if err := v.fs.RemoveAll(src); err != nil {
		return errors.Wrapf(err, errors.ErrTrash, "moved %s but cannot remove original", src)
	}
	return nil
}

func (v *Vault) copyFile(src, dst string, mode os.FileMode) error {
	data, err := v.fs.ReadFile(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileRead, "cannot read %s", src)
	}
	if err := v.fs.WriteFile(dst, data, mode.Perm()); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot write %s", dst)
	}
	return nil
}

func (v *Vault) copyTree(src, dst string) error {
	if err := v.fs.MkdirAll(dst, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "cannot create %s", dst)
	}
	entries, err := v.fs.ReadDir(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileRead, "cannot read directory %s", src)
	}
	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())
		if entry.IsDir() {
			if err := v.copyTree(srcPath, dstPath); err != nil {
				return err
			}
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "cannot stat %s", srcPath)
		}
		if err := v.copyFile(srcPath, dstPath, info.Mode()); err != nil {
			return err
		}
	}
	return nil
}

func (v *Vault) appendManifest(trashDir string, entry Entry) error {
	line, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	manifest := filepath.Join(trashDir, manifestName)

	existing, err := v.fs.ReadFile(manifest)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return v.fs.WriteFile(manifest, append(existing, append(line, '\n')...), 0644)
}

func (v *Vault) rewriteManifest(trashDir string, entries []Entry) error {
	var buf strings.Builder
	for _, entry := range entries {
		line, err := json.Marshal(entry)
		if err != nil {
			return err
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}
	return v.fs.WriteFile(filepath.Join(trashDir, manifestName), []byte(buf.String()), 0644)
}
