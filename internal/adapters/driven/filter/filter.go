package filter

import (
	"fmt"
	"regexp"

	"github.com/custodia-labs/harvester/internal/core/domain"
	"github.com/custodia-labs/harvester/internal/core/ports/driven"
)

var (
	_ driven.URLFilter     = (*URLFilter)(nil)
	_ driven.FilterBuilder = Builder{}
)

// URLFilter holds compiled include and exclude patterns.
type URLFilter struct {
	include []*regexp.Regexp
	exclude []*regexp.Regexp
}

// New compiles include and exclude patterns. An invalid pattern is a
// *domain.ConfigError naming the parameter it came from.
func New(include, exclude []string) (*URLFilter, error) {
	inc, err := compile("include_pattern", include)
	if err != nil {
		return nil, err
	}
	exc, err := compile("exclude_pattern", exclude)
	if err != nil {
		return nil, err
	}
	return &URLFilter{include: inc, exclude: exc}, nil
}

func compile(param string, patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		if p == "" {
			continue
		}
		re, err := regexp.Compile(`^(?:` + p + `)$`)
		if err != nil {
			return nil, &domain.ConfigError{
				Param:  param,
				Reason: fmt.Sprintf("invalid pattern %q", p),
				Err:    err,
			}
		}
		out = append(out, re)
	}
	return out, nil
}

// Matches reports whether url should be harvested.
func (f *URLFilter) Matches(url string) bool {
	for _, re := range f.exclude {
		if re.MatchString(url) {
			return false
		}
	}
	if len(f.include) == 0 {
		return true
	}
	for _, re := range f.include {
		if re.MatchString(url) {
			return true
		}
	}
	return false
}

// Builder implements driven.FilterBuilder.
type Builder struct{}

// Build compiles a URLFilter for one run.
func (Builder) Build(include, exclude []string) (driven.URLFilter, error) {
	f, err := New(include, exclude)
	if err != nil {
		return nil, err
	}
	return f, nil
}
