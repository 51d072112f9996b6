// Package diag defines the three error strata described in spec §7:
// collected bundle-resolution names (not an error type at all — callers
// get a []string back), unsupported-language-feature errors, and
// internal invariant-violation errors. Each stratum gets its own Go
// shape so the CLI entrypoint can distinguish them with errors.As,
// mirroring the one-struct-per-condition style of Tableland's
// pkg/parsing Err* types.
package diag

import (
	"fmt"
	"strings"
)

// ErrUnsupportedFeature is a hard error: the source uses a construct
// the translator explicitly rejects (spec §7 stratum 2). Construct names
// the rejected AST shape (e.g. "super", "inline assembly", "throw",
// "emit", "multi-return function"); Detail adds context where useful.
type ErrUnsupportedFeature struct {
	Construct string
	Detail    string
}

func (e ErrUnsupportedFeature) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("unsupported language feature: %s", e.Construct)
	}
	return fmt.Sprintf("unsupported language feature: %s (%s)", e.Construct, e.Detail)
}

// ErrInternal is an invariant-violation error (spec §7 stratum 3): the
// frontend or an earlier pass produced something this pass's invariants
// say should never happen. Pass names the analysis component; Reason
// describes the violated invariant.
type ErrInternal struct {
	Pass   string
	Reason string
}

func (e ErrInternal) Error() string {
	return fmt.Sprintf("internal error in %s: %s", e.Pass, e.Reason)
}

// ErrAmbiguousSpecialisation is raised by the allocation graph (spec
// §4.2) when a state variable's declared interface type is assigned two
// distinct concrete contract types across the linearization's
// constructors. Implementers are directed to detect and reject this
// rather than silently pick a branch (spec §9 Open Question).
type ErrAmbiguousSpecialisation struct {
	Field       string
	DeclaredIn  string
	Candidate1  string
	Candidate2  string
}

func (e ErrAmbiguousSpecialisation) Error() string {
	return fmt.Sprintf(
		"ambiguous specialisation for field %q declared in %s: both %q and %q are assigned",
		e.Field, e.DeclaredIn, e.Candidate1, e.Candidate2,
	)
}

// ErrLookupExhausted is raised by the string lookup pass (spec §4.8) when
// assigning the next code would overflow the positive-integer code space.
type ErrLookupExhausted struct {
	Literal string
}

func (e ErrLookupExhausted) Error() string {
	return fmt.Sprintf("string lookup exhausted assigning a code to %q", e.Literal)
}

// ErrNonStringLookup is raised when a caller asks the string lookup pass
// for the code of a literal that was never a string in the first place.
type ErrNonStringLookup struct {
	Kind string
}

func (e ErrNonStringLookup) Error() string {
	return fmt.Sprintf("requested string code for a non-string literal (kind %s)", e.Kind)
}

// ErrBundleMissing is raised by the CLI entrypoint, not the pipeline
// itself, when --strict-bundle is set and the collected bundle-resolution
// stratum (spec §8's Missing names) is non-empty. Unlike the other error
// types here it never crosses a pass boundary: analysisstack.Build always
// succeeds with whatever subset of the bundle resolved, and it's only the
// CLI's --strict-bundle opt-in that promotes a non-empty Missing into a
// hard failure.
type ErrBundleMissing struct {
	Names []string
}

func (e ErrBundleMissing) Error() string {
	return fmt.Sprintf("bundle names not found: %s", strings.Join(e.Names, ", "))
}
