package plugins

import (
	"context"
	"regexp"
	"slices"

	"github.com/arthur-debert/memscope/pkg/errors"
	"github.com/arthur-debert/memscope/pkg/image"
)

// Filter selects processes by pid or image name. The zero Filter selects
// every process.
type Filter struct {
	PIDs []uint64
	Name *regexp.Regexp
}

// NewFilter builds a filter. An empty pattern matches every name.
func NewFilter(pids []uint64, pattern string) (Filter, error) {
	f := Filter{PIDs: pids}
	if pattern != "" {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return Filter{}, errors.Wrapf(err, errors.ErrInvalidInput, "invalid process name pattern %q", pattern)
		}
		f.Name = re
	}
	return f, nil
}

// Match reports whether p passes the filter.
func (f Filter) Match(p image.Process) bool {
	if len(f.PIDs) > 0 && !slices.Contains(f.PIDs, p.ProcessID()) {
		return false
	}
	if f.Name != nil && !f.Name.MatchString(p.ImageName()) {
		return false
	}
	return true
}

// Processes returns the processes of img passing the filter, in list order.
// It stops early when ctx is done.
func (f Filter) Processes(ctx context.Context, img *image.Image) ([]image.Process, error) {
	all, err := img.Processes()
	if err != nil {
		return nil, err
	}
	var out []image.Process
	for _, s := range all {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if p := image.AsProcess(s); f.Match(p) {
			out = append(out, p)
		}
	}
	return out, nil
}
