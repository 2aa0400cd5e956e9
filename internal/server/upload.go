package server

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	companydomain "github.com/MaverickDev-J/hrm/internal/company/domain"
	"github.com/gin-gonic/gin"
)

const maxUploadBytes = 5 << 20

var allowedImageExts = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
}

// UploadBrandingImage stores a company image (logo, banner, signature
// or stamp) and records its locator on the company.
func (s *Server) UploadBrandingImage(c *gin.Context) {
	kind := companydomain.BrandingKind(strings.ToLower(c.Param("kind")))
	switch kind {
	case companydomain.BrandingLogo, companydomain.BrandingBanner,
		companydomain.BrandingSignature, companydomain.BrandingStamp:
	default:
		AbortWithError(c, companydomain.ErrInvalidBrandingKind)
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		AbortWithError(c, newValidationError("file", "missing_file", "file is required"))
		return
	}
	if header.Size > maxUploadBytes {
		AbortWithError(c, newValidationError("file", "file_too_large", "file exceeds 5MB"))
		return
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if _, ok := allowedImageExts[ext]; !ok {
		AbortWithError(c, newValidationError("file", "unsupported_file_type", "only png and jpeg images are accepted"))
		return
	}

	companyID := c.Param("id")

	file, err := header.Open()
	if err != nil {
		AbortWithError(c, err)
		return
	}
	defer file.Close()

	locator := fmt.Sprintf("branding/%s/%s%s", companyID, kind, ext)
	if err := s.store.Write(locator, file); err != nil {
		AbortWithError(c, err)
		return
	}

	company, err := s.companySvc.SetBrandingImage(c.Request.Context(), companyID, kind, locator)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, company)
}
