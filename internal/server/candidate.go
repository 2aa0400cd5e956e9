package server

import (
	"net/http"

	candidatedomain "github.com/MaverickDev-J/hrm/internal/candidate/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) CreateCandidate(c *gin.Context) {
	var req candidatedomain.CreateCandidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ClientID = c.Param("id")

	candidate, err := s.candidateSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, candidate)
}

func (s *Server) ListCandidates(c *gin.Context) {
	var req candidatedomain.ListCandidateRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ClientID = c.Param("id")

	resp, err := s.candidateSvc.ListByClient(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetCandidate(c *gin.Context) {
	candidate, err := s.candidateSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, candidate)
}

func (s *Server) UpdateCandidate(c *gin.Context) {
	var req candidatedomain.UpdateCandidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = c.Param("id")

	candidate, err := s.candidateSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, candidate)
}

func (s *Server) DeleteCandidate(c *gin.Context) {
	if err := s.candidateSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
