package models

import (
	"time"

	"github.com/dailytarot/tarotpipe/internal/domain"
)

// Prompt version lifecycle statuses. Versions are created draft or candidate
// by the optimizer output step; promotion and rollback belong to an external
// workflow that only flips the status field.
const (
	VersionStatusDraft      = "draft"
	VersionStatusCandidate  = "candidate"
	VersionStatusPromoted   = "promoted"
	VersionStatusRolledBack = "rolled_back"
)

// ValidVersionStatus reports whether s is a known lifecycle status.
func ValidVersionStatus(s string) bool {
	switch s {
	case VersionStatusDraft, VersionStatusCandidate, VersionStatusPromoted, VersionStatusRolledBack:
		return true
	}
	return false
}

// PromptVersion is a named, versioned prompt artifact produced by the
// optimizer, tracked through a status lifecycle. The ledger guarantees
// upsert-by-id semantics: re-inserting an existing id updates status and
// optimizer but never duplicates the row or touches created_at.
type PromptVersion struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	Optimizer string    `json:"optimizer"`
	CreatedAt time.Time `json:"created_at"`
}

// NewPromptVersion creates a prompt version record.
func NewPromptVersion(id, optimizer, status string) *PromptVersion {
	return &PromptVersion{
		ID:        id,
		Status:    status,
		Optimizer: optimizer,
		CreatedAt: time.Now().UTC(),
	}
}

// Validate checks the prompt version payload.
func (v *PromptVersion) Validate() error {
	if v.ID == "" {
		return domain.NewDomainError(domain.ErrInvalidID, "prompt version id is empty")
	}
	if !ValidVersionStatus(v.Status) {
		return domain.NewDomainError(domain.ErrInvalidVersionStatus, "status "+v.Status)
	}
	return nil
}

// PromptCandidate is the artifact produced by one optimizer run.
type PromptCandidate struct {
	ArtifactPath string   `json:"artifact_path"`
	Optimizer    string   `json:"optimizer"`
	Loss         *float64 `json:"loss,omitempty"`
}
