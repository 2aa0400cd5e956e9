package domain

import (
	"context"

	"github.com/MaverickDev-J/hrm/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type CreateCandidateRequest struct {
	ClientID string         `json:"-"`
	Data     map[string]any `json:"candidate_data" binding:"required"`
}

type UpdateCandidateRequest struct {
	ID   string         `json:"-"`
	Data map[string]any `json:"candidate_data" binding:"required"`
}

type ListCandidateRequest struct {
	ClientID  string `form:"-"`
	PageToken string `form:"page_token"`
	PageSize  int    `form:"page_size"`
}

type ListCandidateResponse struct {
	Candidates []Candidate         `json:"candidates"`
	PageInfo   pagination.PageInfo `json:"page_info"`
}

type Repository interface {
	Insert(ctx context.Context, tx *gorm.DB, candidate *Candidate) error
	Update(ctx context.Context, tx *gorm.DB, candidate *Candidate) error
	Delete(ctx context.Context, tx *gorm.DB, id snowflake.ID) error
	FindByID(ctx context.Context, tx *gorm.DB, id snowflake.ID) (*Candidate, error)

	// FindByIDs returns the candidates in the given id set, scoped to one
	// company and client, ordered by created_at then id ascending.
	FindByIDs(ctx context.Context, tx *gorm.DB, companyID, clientID snowflake.ID, ids []snowflake.ID) ([]Candidate, error)

	ListByClient(ctx context.Context, tx *gorm.DB, companyID, clientID snowflake.ID, p pagination.Pagination) ([]*Candidate, error)
}

type Service interface {
	Create(ctx context.Context, req CreateCandidateRequest) (Candidate, error)
	GetByID(ctx context.Context, id string) (Candidate, error)
	ListByClient(ctx context.Context, req ListCandidateRequest) (ListCandidateResponse, error)
	Update(ctx context.Context, req UpdateCandidateRequest) (Candidate, error)
	Delete(ctx context.Context, id string) error
}
