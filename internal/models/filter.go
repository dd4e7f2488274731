package models

import (
	"fmt"
	"strings"
)

// MatchMode selects how keyword hits are combined.
type MatchMode string

const (
	ModeAny MatchMode = "any" // one keyword hit is enough
	ModeAll MatchMode = "all" // every keyword must hit
)

// Filter is an ordered keyword list plus the mode used to combine hits.
type Filter struct {
	Keywords []string
	Mode     MatchMode
}

// NewFilter builds a [Filter], choosing [ModeAll] when requireAll is set.
func NewFilter(keywords []string, requireAll bool) Filter {
	mode := ModeAny
	if requireAll {
		mode = ModeAll
	}
	return Filter{Keywords: keywords, Mode: mode}
}

// Validate rejects filters that would match everything or nothing by accident.
func (f Filter) Validate() error {
	if len(f.Keywords) == 0 {
		return fmt.Errorf("at least one keyword is required")
	}
	for i, kw := range f.Keywords {
		if strings.TrimSpace(kw) == "" {
			return fmt.Errorf("keyword %d is blank", i+1)
		}
	}
	if f.Mode != ModeAny && f.Mode != ModeAll {
		return fmt.Errorf("unknown match mode %q", f.Mode)
	}
	return nil
}

func (f Filter) String() string {
	sep := " OR "
	if f.Mode == ModeAll {
		sep = " AND "
	}
	quoted := make([]string, len(f.Keywords))
	for i, kw := range f.Keywords {
		quoted[i] = fmt.Sprintf("%q", kw)
	}
	return strings.Join(quoted, sep)
}
