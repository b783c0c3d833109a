// Package processctx tracks the process whose address space symbol and
// address resolution currently targets.
//
// Scopes form a strict stack. Entering a scope makes its process active;
// releasing it restores whatever was active before, on every exit path:
//
//	err := stack.Do(proc, func(scope *processctx.Scope) error {
//		sym, err := resolver.Lookup(addr, maxDistance)
//		...
//	})
//
// Outside any scope no process is active and resolution uses the kernel.
package processctx

import (
	"sync"

	"github.com/arthur-debert/memscope/pkg/errors"
	"github.com/arthur-debert/memscope/pkg/logging"
	"github.com/rs/zerolog"
)

// Process is the part of a process resolution needs.
type Process interface {
	ProcessID() uint64
	ImageName() string
}

// Stack is the process context stack of one session.
type Stack struct {
	mu     sync.Mutex
	scopes []*Scope
	logger zerolog.Logger
}

// NewStack creates an empty stack.
func NewStack() *Stack {
	return &Stack{logger: logging.GetLogger("processctx")}
}

// Scope is a handle on one entered process context.
type Scope struct {
	stack    *Stack
	process  Process
	released bool
}

// Current returns the active process, if any.
func (s *Stack) Current() (Process, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.scopes) == 0 {
		return nil, false
	}
	p := s.scopes[len(s.scopes)-1].process
	return p, p != nil
}

// Depth returns the number of live scopes.
func (s *Stack) Depth() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.scopes)
}

// Enter makes p the active process until the returned scope is released.
// A nil p enters the kernel context.
func (s *Stack) Enter(p Process) *Scope {
	s.mu.Lock()
	defer s.mu.Unlock()

	scope := &Scope{stack: s, process: p}
	s.scopes = append(s.scopes, scope)
	s.logEvent(s.logger.Trace(), "Entered process context", p)
	return scope
}

// Do runs fn inside a scope for p. The scope is released when fn returns
// or panics.
func (s *Stack) Do(p Process, fn func(*Scope) error) error {
	scope := s.Enter(p)
	defer scope.Release()
	return fn(scope)
}

// Process returns the scope's active process.
func (sc *Scope) Process() Process {
	sc.stack.mu.Lock()
	defer sc.stack.mu.Unlock()
	return sc.process
}

// Switch replaces the scope's process. Releasing the scope still restores
// the process active before it was entered.
func (sc *Scope) Switch(p Process) error {
	s := sc.stack
	s.mu.Lock()
	defer s.mu.Unlock()

	if sc.released {
		return errors.New(errors.ErrOutputState, "cannot switch a released process context")
	}
	sc.process = p
	s.logEvent(s.logger.Trace(), "Switched process context", p)
	return nil
}

// Release restores the process active before the scope was entered. It is
// safe to call more than once. Releasing a scope that is not the innermost
// also releases every scope entered after it.
func (sc *Scope) Release() {
	s := sc.stack
	s.mu.Lock()
	defer s.mu.Unlock()

	if sc.released {
		return
	}

	idx := -1
	for i := len(s.scopes) - 1; i >= 0; i-- {
		if s.scopes[i] == sc {
			idx = i
			break
		}
	}
	if idx < 0 {
		sc.released = true
		return
	}

	if above := len(s.scopes) - 1 - idx; above > 0 {
		s.logger.Warn().
			Int("unwound", above).
			Msg("Process context released out of order, unwinding inner scopes")
	}
	for _, inner := range s.scopes[idx:] {
		inner.released = true
	}
	s.scopes = s.scopes[:idx]

	var restored Process
	if idx > 0 {
		restored = s.scopes[idx-1].process
	}
	s.logEvent(s.logger.Trace(), "Restored process context", restored)
}

// Released reports whether the scope has been released.
func (sc *Scope) Released() bool {
	sc.stack.mu.Lock()
	defer sc.stack.mu.Unlock()
	return sc.released
}

func (s *Stack) logEvent(ev *zerolog.Event, msg string, p Process) {
	if p == nil {
		ev.Str("process", "kernel").Msg(msg)
		return
	}
	ev.Uint64("pid", p.ProcessID()).Str("process", p.ImageName()).Msg(msg)
}
