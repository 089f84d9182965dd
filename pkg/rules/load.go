package rules

import (
	"github.com/arthur-debert/tidy/pkg/config"
	"github.com/arthur-debert/tidy/pkg/errors"
	"github.com/arthur-debert/tidy/pkg/metadata"
	"github.com/arthur-debert/tidy/pkg/types"
)

// ModeFor builds the named sorting mode from configuration. Adding a
// mode means adding a case here and one Mode implementation; nothing
// else changes.
func ModeFor(name string, cfg config.Config, fs types.FS, extractor metadata.Extractor) (Mode, error) {
	switch name {
	case "type":
		return NewByType(cfg.Categories, cfg.FallbackCategory), nil
	case "date":
		return NewByDate(cfg.DateSource), nil
	case "size":
		return NewBySize(cfg.SizeTiers), nil
	case "pattern":
		if len(cfg.Patterns) == 0 {
			return nil, errors.New(errors.ErrRuleInvalid, "pattern mode needs at least one pattern rule")
		}
		return NewByPattern(cfg.Patterns)
	case "keyword":
		if len(cfg.Keywords) == 0 {
			return nil, errors.New(errors.ErrRuleInvalid, "keyword mode needs at least one keyword")
		}
		return NewByKeyword(fs, cfg.Keywords, cfg.KeywordScanLimit), nil
	case "metadata":
		return NewByMetadata(extractor, "kind"), nil
	default:
		return nil, errors.Newf(errors.ErrRuleInvalid, "unknown sort mode %q", name)
	}
}
