// Package planner proposes changesets from evaluation history. The
// decision process is an opaque collaborator; the rest of the system only
// validates and applies what it proposes.
package planner

import (
	"context"
	"path/filepath"
	"strings"

	"agentops/internal/changeset"
)

// Planner proposes the content of a changeset for the next subject version.
type Planner interface {
	ProposeChangeset(ctx context.Context, versionID string) (*changeset.Changeset, error)
}

// DeriveNewConfigPath derives the upgraded config path from the base one.
// "…_v1.json" becomes "…_v2.json"; otherwise a "_<version>_improved"
// suffix is appended to the stem.
func DeriveNewConfigPath(basePath, versionID string) string {
	dir := filepath.Dir(basePath)
	ext := filepath.Ext(basePath)
	stem := strings.TrimSuffix(filepath.Base(basePath), ext)

	if strings.HasSuffix(stem, "_v1") {
		return filepath.Join(dir, strings.TrimSuffix(stem, "_v1")+"_v2"+ext)
	}
	return filepath.Join(dir, stem+"_"+versionID+"_improved"+ext)
}
