package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/tidy/pkg/errors"
	"github.com/arthur-debert/tidy/pkg/types"
)

// Unique returns path if nothing exists there, otherwise the first free
// variant with a numeric counter inserted before the extension:
// "report.pdf" -> "report (1).pdf", "report (2).pdf", ...
//
// The counter scheme is deterministic: the lowest free counter wins, so
// re-running the same plan yields the same destinations. Existing files
// are never overwritten.
func Unique(fs types.FS, path string) (string, error) {
	_, err := fs.Stat(path)
	if os.IsNotExist(err) {
		return path, nil
	}
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrFileAccess, "cannot stat %s", path)
	}

	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s (%d)%s", stem, n, ext)
		_, err := fs.Stat(candidate)
		if os.IsNotExist(err) {
			return candidate, nil
		}
		if err != nil {
			return "", errors.Wrapf(err, errors.ErrFileAccess, "cannot stat %s", candidate)
		}
	}
}
