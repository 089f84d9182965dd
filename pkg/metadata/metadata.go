// Package metadata defines the metadata-extraction collaborator used by
// the by-metadata sort mode. Extraction libraries are external to the
// engine; this package holds the interface, a content-sniffing default
// implementation, and the nil object used when no extractor is wired.
//
// Availability is a capability checked once when the engine is built,
// not an error recovered per call: a missing extractor degrades files
// to the unsorted bucket instead of failing the batch.
package metadata

import (
	"io"

	"github.com/h2non/filetype"

	"github.com/arthur-debert/tidy/pkg/errors"
	"github.com/arthur-debert/tidy/pkg/logging"
	"github.com/arthur-debert/tidy/pkg/types"
)

// Extractor reads embedded metadata from a file.
type Extractor interface {
	// Available reports whether the extractor can be used at all.
	Available() bool

	// Extract returns a flat key/value mapping for the file.
	Extract(path string) (map[string]string, error)
}

// sniffHeaderSize is how much of a file the sniffer reads. Magic-number
// detection needs only the first few hundred bytes.
const sniffHeaderSize = 8192

// Sniffer is the default extractor. It detects the file's real type
// from magic bytes and exposes kind, MIME type and canonical extension.
type Sniffer struct {
	fs types.FS
}

// NewSniffer creates a content-sniffing extractor over fs.
func NewSniffer(fs types.FS) *Sniffer {
	return &Sniffer{fs: fs}
}

func (s *Sniffer) Available() bool { return true }

func (s *Sniffer) Extract(path string) (map[string]string, error) {
	f, err := s.fs.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileRead, "cannot open %s", path)
	}
	defer func() { _ = f.Close() }()

	buf := make([]byte, sniffHeaderSize)
	n, err := f.Read(buf)
	if err != nil && err != io.EOF {
		return nil, errors.Wrapf(err, errors.ErrFileRead, "cannot read %s", path)
	}

	kind, err := filetype.Match(buf[:n])
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileRead, "cannot sniff %s", path)
	}
	if kind == filetype.Unknown {
		logger := logging.GetLogger("metadata")
		logger.Debug().Str("path", path).Msg("Unknown file type")
		return map[string]string{"kind": "unknown"}, nil
	}

	return map[string]string{
		"kind":      kind.MIME.Type,
		"mime":      kind.MIME.Value,
		"extension": kind.Extension,
	}, nil
}

// unavailable is the nil-object extractor.
type unavailable struct{}

func (unavailable) Available() bool { return false }

func (unavailable) Extract(string) (map[string]string, error) {
	return nil, errors.New(errors.ErrCollaboratorUnavailable, "no metadata extractor configured")
}

// Unavailable returns an extractor that reports itself missing. The
// classifier routes files to the unsorted bucket when it sees it.
func Unavailable() Extractor {
	return unavailable{}
}
