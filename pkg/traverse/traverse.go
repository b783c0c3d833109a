// Package traverse walks linked structures read from a memory image.
//
// A memory image can hold corrupt or self-referential lists, so every walk
// tracks the nodes it has visited and stops on the first revisit.
package traverse

import (
	"iter"

	"github.com/arthur-debert/memscope/pkg/errors"
	"github.com/arthur-debert/memscope/pkg/objects"
	"github.com/arthur-debert/memscope/pkg/types"
)

// DefaultMaxNodes bounds a walk when Options.MaxNodes is unset.
const DefaultMaxNodes = 100000

// Linked is a node that can follow a named link field to the next node.
type Linked interface {
	types.Object
	Follow(field string) (types.Object, error)
}

// Identifier gives a node a stable identity, normally the offset it was
// read from.
type Identifier interface {
	Identity() uint64
}

// Options tunes a walk.
type Options struct {
	// MaxNodes is the largest number of nodes yielded before the walk fails
	// with ErrTraversalLimit. Zero means DefaultMaxNodes.
	MaxNodes int
	// IncludeHead yields head itself as the first node.
	IncludeHead bool
}

// Walk yields the nodes reached from head by repeatedly following
// nextField. The walk stops at a null or unavailable link, at a link back to
// any visited node (head included), or when the link leads to a node that
// is not Linked. Exceeding MaxNodes yields a final ErrTraversalLimit error.
// A failure to follow a link is yielded as an error and ends the walk.
func Walk(head Linked, nextField string, opts Options) iter.Seq2[types.Object, error] {
	limit := opts.MaxNodes
	if limit <= 0 {
		limit = DefaultMaxNodes
	}

	return func(yield func(types.Object, error) bool) {
		if head == nil {
			return
		}
		visited := map[uint64]bool{}
		if id, ok := identity(head); ok {
			visited[id] = true
		}

		count := 0
		if opts.IncludeHead {
			count++
			if !yield(head, nil) {
				return
			}
		}

		cur := head
		for {
			next, err := cur.Follow(nextField)
			if err != nil {
				yield(nil, errors.Wrapf(err, errors.GetErrorCode(err), "following %s", nextField))
				return
			}
			if _, unavailable := objects.Unavailable(next); unavailable {
				return
			}

			if id, ok := identity(next); ok {
				if visited[id] {
					return
				}
				visited[id] = true
			}

			if count >= limit {
				yield(nil, errors.Newf(errors.ErrTraversalLimit, "list is longer than %d nodes", limit).
					WithDetail("field", nextField))
				return
			}
			count++
			if !yield(next, nil) {
				return
			}

			linked, ok := next.(Linked)
			if !ok {
				return
			}
			cur = linked
		}
	}
}

// Collect drains a walk into a slice, stopping at the first error.
func Collect(seq iter.Seq2[types.Object, error]) ([]types.Object, error) {
	var out []types.Object
	for obj, err := range seq {
		if err != nil {
			return out, err
		}
		out = append(out, obj)
	}
	return out, nil
}

func identity(obj types.Object) (uint64, bool) {
	if id, ok := obj.(Identifier); ok {
		return id.Identity(), true
	}
	return 0, false
}
