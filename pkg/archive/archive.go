// Package archive defines the compression collaborator used by the
// archive operations. The engine treats the codec as an external
// collaborator behind the Codec interface; the zip implementation here
// is the default wiring.
package archive

import (
	"archive/zip"
	"bytes"
	"io"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/tidy/pkg/errors"
	"github.com/arthur-debert/tidy/pkg/logging"
	"github.com/arthur-debert/tidy/pkg/types"
)

// Codec compresses files into an archive and extracts them back.
type Codec interface {
	// Compress writes an archive at archivePath containing the given
	// files. Directories are added recursively.
	Compress(paths []string, archivePath string) error

	// Decompress extracts archivePath into destDir, which is created
	// if absent. Returns the extracted paths.
	Decompress(archivePath, destDir string) ([]string, error)
}

// zipCodec implements Codec with archive/zip.
type zipCodec struct {
	fs types.FS
}

// NewZipCodec returns the default zip codec over fs.
func NewZipCodec(tfs types.FS) Codec {
	return &zipCodec{fs: tfs}
}

func (z *zipCodec) Compress(paths []string, archivePath string) error {
	logger := logging.GetLogger("archive")

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	for _, path := range paths {
		info, err := z.fs.Stat(path)
		if err != nil {
			return errors.Wrapf(err, errors.ErrArchive, "cannot stat %s", path)
		}
		if info.IsDir() {
			if err := z.addTree(w, path, filepath.Base(path)); err != nil {
				return err
			}
			continue
		}
		if err := z.addFile(w, path, filepath.Base(path)); err != nil {
			return err
		}
	}

	if err := w.Close(); err != nil {
		return errors.Wrap(err, errors.ErrArchive, "cannot finalize archive")
	}
	if err := z.fs.WriteFile(archivePath, buf.Bytes(), 0644); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot write archive %s", archivePath)
	}

	logger.Info().Str("archive", archivePath).Int("files", len(paths)).Msg("Archive created")
	return nil
}

func (z *zipCodec) addTree(w *zip.Writer, root, prefix string) error {
	entries, err := z.fs.ReadDir(root)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileRead, "cannot read directory %s", root)
	}
	for _, entry := range entries {
		path := filepath.Join(root, entry.Name())
		name := prefix + "/" + entry.Name()
		if entry.IsDir() {
			if err := z.addTree(w, path, name); err != nil {
				return err
			}
			continue
		}
		if err := z.addFile(w, path, name); err != nil {
			return err
		}
	}
	return nil
}

func (z *zipCodec) addFile(w *zip.Writer, path, name string) error {
	f, err := z.fs.Open(path)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileRead, "cannot open %s", path)
	}
	defer func() { _ = f.Close() }()

	entry, err := w.Create(name)
	if err != nil {
		return errors.Wrapf(err, errors.ErrArchive, "cannot add %s to archive", name)
	}
	if _, err := io.Copy(entry, f); err != nil {
		return errors.Wrapf(err, errors.ErrArchive, "cannot compress %s", path)
	}
	return nil
}

func (z *zipCodec) Decompress(archivePath, destDir string) ([]string, error) {
	data, err := z.fs.ReadFile(archivePath)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileRead, "cannot read archive %s", archivePath)
	}

	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrArchive, "cannot open archive %s", archivePath)
	}

	if err := z.fs.MkdirAll(destDir, 0755); err != nil {
		return nil, errors.Wrapf(err, errors.ErrDirCreate, "cannot create %s", destDir)
	}

	var extracted []string
	for _, file := range r.File {
		target, err := safeJoin(destDir, file.Name)
		if err != nil {
			return extracted, err
		}
		if file.FileInfo().IsDir() {
			if err := z.fs.MkdirAll(target, 0755); err != nil {
				return extracted, errors.Wrapf(err, errors.ErrDirCreate, "cannot create %s", target)
			}
			continue
		}
		if err := z.fs.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return extracted, errors.Wrapf(err, errors.ErrDirCreate, "cannot create %s", filepath.Dir(target))
		}
		if err := z.extractFile(file, target); err != nil {
			return extracted, err
		}
		extracted = append(extracted, target)
	}

	logger := logging.GetLogger("archive")
	logger.Info().
		Str("archive", archivePath).
		Str("dest", destDir).
		Int("files", len(extracted)).
		Msg("Archive extracted")
	return extracted, nil
}

func (z *zipCodec) extractFile(file *zip.File, target string) error {
	rc, err := file.Open()
	if err != nil {
		return errors.Wrapf(err, errors.ErrArchive, "cannot open %s in archive", file.Name)
	}
	defer func() { _ = rc.Close() }()

	data, err := io.ReadAll(rc)
	if err != nil {
		return errors.Wrapf(err, errors.ErrArchive, "cannot decompress %s", file.Name)
	}

	mode := file.FileInfo().Mode().Perm()
	if mode == 0 {
		mode = fs.FileMode(0644)
	}
	if err := z.fs.WriteFile(target, data, mode); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot write %s", target)
	}
	return nil
}

// safeJoin rejects archive member names that would escape destDir.
func safeJoin(destDir, name string) (string, error) {
	target := filepath.Join(destDir, filepath.FromSlash(name))
	rel, err := filepath.Rel(destDir, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errors.Newf(errors.ErrArchive, "archive member %q escapes destination", name)
	}
	return target, nil
}
