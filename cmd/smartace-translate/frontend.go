package main

import (
	"fmt"

	"github.com/contract-ace/smartace-sub002/pkg/ast"
)

// loadSourceUnits is the seam between this binary and the source-language
// parser and semantic frontend, which spec §1 names as an external
// collaborator out of this repository's scope: the frontend owns
// resolving types, linearizing base-contract lists, and wiring every
// superFunction pointer before the pipeline ever sees a tree. A
// deployment links a concrete frontend in here; this build reports the
// missing link rather than guessing at an AST interchange format the
// spec never defines.
func loadSourceUnits(paths []string) ([]*ast.SourceUnit, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no --source files given and no frontend is linked into this binary")
	}
	return nil, fmt.Errorf("no frontend linked into this binary: cannot parse %d source file(s)", len(paths))
}
