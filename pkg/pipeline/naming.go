package pipeline

import (
	"path"
	"strings"

	"github.com/askiada/cicd-assembler/pkg/pipeline/model"
)

const nameDelimiter = "-"

var nameReplacer = strings.NewReplacer("/", nameDelimiter, "_", nameDelimiter)

// DeriveName returns the canonical pipeline name: prefix, pipeline name (or repository) and
// branch joined by "-", with every "/" and "_" turned into "-".
//
// Two descriptors with the same repository and branch under the same prefix get the same
// name. DeriveName does not detect that; Compiler.CompileAll reports it.
func DeriveName(prefix string, desc model.RepoDescriptor) string {
	base := desc.PipelineName
	if base == "" {
		base = desc.Repository
	}

	return resourceName(prefix, base, desc.Branch)
}

// resourceName joins the non-empty parts with the delimiter and sanitises the result.
func resourceName(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		kept = append(kept, part)
	}

	return nameReplacer.Replace(strings.Join(kept, nameDelimiter))
}

// parameterPath returns an absolute registry path under root.
func parameterPath(root string, segments ...string) string {
	return path.Join(append([]string{"/", root}, segments...)...)
}
