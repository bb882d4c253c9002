package container

import (
	"fmt"
	"strings"
)

// ── Resolution context ────────────────────────────────────────────────────────

// resolutionContext is the set of keys currently being resolved on one call
// stack. It exists solely to detect cycles and is discarded when the root
// resolution returns. Each resolution request gets its own context, so
// concurrent resolutions never see each other's chains.
type resolutionContext struct {
	stack []string
}

// push adds key to the chain, failing with a CycleError if it is already there.
func (rc *resolutionContext) push(key string) error {
	for _, k := range rc.stack {
		if k == key {
			chain := append(append([]string(nil), rc.stack...), key)
			return &CycleError{Chain: chain}
		}
	}
	rc.stack = append(rc.stack, key)
	return nil
}

func (rc *resolutionContext) pop() {
	rc.stack = rc.stack[:len(rc.stack)-1]
}

// top returns the key currently being built, if any.
func (rc *resolutionContext) top() (string, bool) {
	if len(rc.stack) == 0 {
		return "", false
	}
	return rc.stack[len(rc.stack)-1], true
}

// chain returns a copy of the current key chain.
func (rc *resolutionContext) chain() []string {
	return append([]string(nil), rc.stack...)
}

// ── Errors ────────────────────────────────────────────────────────────────────

// CycleError reports a dependency cycle. Chain holds the full resolution path
// ending with the repeated key, e.g. ["A", "B", "A"].
type CycleError struct {
	Chain []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("container: dependency cycle detected: %s", strings.Join(e.Chain, " -> "))
}

// UnresolvableError reports a required dependency with no registration path:
// no binding, no instance and no declared descriptor. Chain holds the
// resolution path that led to the missing key.
type UnresolvableError struct {
	Key   string
	Chain []string
	Cause error
}

func (e *UnresolvableError) Error() string {
	msg := fmt.Sprintf("container: unable to resolve [%s]", e.Key)
	if len(e.Chain) > 0 {
		msg += fmt.Sprintf(" (required by %s)", strings.Join(e.Chain, " -> "))
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *UnresolvableError) Unwrap() error { return e.Cause }

// DescriptorError reports an invalid Descriptor passed to Describe. These are
// configuration errors: they fail fast at declaration time, never at resolve
// time.
type DescriptorError struct {
	Key    string
	Reason string
}

func (e *DescriptorError) Error() string {
	return fmt.Sprintf("container: invalid descriptor for [%s]: %s", e.Key, e.Reason)
}
