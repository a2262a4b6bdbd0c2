// Package ops implements the workbench operations. Each operation loads the
// project aggregate from the snapshot store, mutates it, and persists it
// before returning; the snapshot is the source of truth between invocations.
package ops

import (
	"database/sql"
	"strings"

	"github.com/tesseralabs/tessera/internal/errors"
	"github.com/tesseralabs/tessera/internal/project"
	"github.com/tesseralabs/tessera/internal/store"
)

// loadProject reads the current aggregate.
func loadProject(db *sql.DB) (*project.Project, error) {
	return store.LoadProject(db)
}

// saveProject persists the aggregate after a mutation.
func saveProject(db *sql.DB, p *project.Project) error {
	return store.SaveProject(db, p)
}

// ResolveCode finds a code by id or by case-insensitive name. Exactly one of
// id and name must be provided.
func ResolveCode(p *project.Project, id, name string) (*project.Code, error) {
	id = strings.TrimSpace(id)
	name = strings.TrimSpace(name)

	if id != "" && name != "" {
		return nil, errors.NewValidation("cannot specify both code id and name; use one")
	}
	if id == "" && name == "" {
		return nil, errors.NewValidation("must specify a code id or name")
	}

	if id != "" {
		if code := p.FindCode(id); code != nil {
			return code, nil
		}
		return nil, errors.NewNotFound("code", id)
	}

	lower := strings.ToLower(name)
	for i := range p.Codes {
		if strings.ToLower(p.Codes[i].Name) == lower {
			return &p.Codes[i], nil
		}
	}
	return nil, errors.NewNotFound("code", name)
}

// newAllocator builds a color allocator synchronized to the project's codes.
// Ops are short-lived, so constructing one per operation is the project-swap
// resync the allocator contract requires.
func newAllocator(p *project.Project) *project.Allocator {
	alloc := project.NewAllocator()
	alloc.Initialize(p.Codes)
	return alloc
}
