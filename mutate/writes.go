package mutate

import (
	"fmt"
	"strings"

	"github.com/anujdecoder/postgraph/store"
	"github.com/pkg/errors"
)

// Op names a single-document write.
type Op string

const (
	OpInsert   Op = "insert"
	OpUpdate   Op = "update"
	OpDelete   Op = "delete"
	OpPush     Op = "push"
	OpAddToSet Op = "add_to_set"
	OpPull     Op = "pull"
)

// Step is one single-document write of a mutation. Matched is false when the
// target document did not exist, which is not an error: an update that
// matches nothing leaves the store unchanged.
type Step struct {
	Collection string
	Op         Op
	ID         string
	Field      string
	Ref        string
	Matched    bool
	Err        error
}

func (s Step) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s/%s", s.Op, s.Collection, s.ID)
	if s.Field != "" {
		fmt.Fprintf(&b, ".%s(%s)", s.Field, s.Ref)
	}
	switch {
	case s.Err != nil:
		fmt.Fprintf(&b, ": %v", s.Err)
	case !s.Matched:
		b.WriteString(": no match")
	}
	return b.String()
}

// Writes is the ordered record of the writes a mutation issued. The writes
// are not atomic as a group; each one committed or failed on its own.
type Writes []Step

// Applied counts the steps that changed or matched a document.
func (w Writes) Applied() int {
	n := 0
	for _, s := range w {
		if s.Err == nil && s.Matched {
			n++
		}
	}
	return n
}

// Failed returns the first failed step.
func (w Writes) Failed() (Step, bool) {
	for _, s := range w {
		if s.Err != nil {
			return s, true
		}
	}
	return Step{}, false
}

// PartialWriteError is returned when a write fails after an earlier write of
// the same mutation already committed. Nothing is rolled back.
type PartialWriteError struct {
	Mutation string
	Writes   Writes
	Err      error
}

func (e *PartialWriteError) Error() string {
	steps := make([]string, len(e.Writes))
	for i, s := range e.Writes {
		steps[i] = s.String()
	}
	return fmt.Sprintf("%s partially applied [%s]: %v", e.Mutation, strings.Join(steps, "; "), e.Err)
}

func (e *PartialWriteError) Unwrap() error {
	return e.Err
}

// Extensions lists the writes in the GraphQL error so clients can see what
// was left behind.
func (e *PartialWriteError) Extensions() map[string]interface{} {
	steps := make([]string, len(e.Writes))
	for i, s := range e.Writes {
		steps[i] = s.String()
	}
	return map[string]interface{}{
		"code":   "PARTIAL_WRITE",
		"writes": steps,
	}
}

// IsPartialWrite reports whether err left some writes committed.
func IsPartialWrite(err error) bool {
	var pw *PartialWriteError
	return errors.As(err, &pw)
}

// plan records the writes of one mutation as they happen.
type plan struct {
	mutation string
	writes   Writes
}

// do runs fn as the next step. fn reports whether a document matched.
func (p *plan) do(step Step, fn func() (bool, error)) error {
	matched, err := fn()
	step.Matched = matched && err == nil
	step.Err = err
	applied := p.writes.Applied()
	p.writes = append(p.writes, step)
	if err == nil {
		return nil
	}
	if applied > 0 {
		return &PartialWriteError{Mutation: p.mutation, Writes: p.writes, Err: err}
	}
	return err
}

// matched maps the result of an array write to the (matched, err) pair
// expected by plan.do. A missing document matches nothing.
func matched(err error) (bool, error) {
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}
