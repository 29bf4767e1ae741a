package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dwusrc/dwu-src-web-application-sub002/internal/access"
	"github.com/dwusrc/dwu-src-web-application-sub002/internal/apperr"
	"github.com/dwusrc/dwu-src-web-application-sub002/internal/avatar"
	"github.com/dwusrc/dwu-src-web-application-sub002/internal/departments"
	"github.com/dwusrc/dwu-src-web-application-sub002/internal/gate"
	"github.com/dwusrc/dwu-src-web-application-sub002/internal/identity"
	"github.com/dwusrc/dwu-src-web-application-sub002/internal/models"
	"github.com/dwusrc/dwu-src-web-application-sub002/internal/news"
	"github.com/dwusrc/dwu-src-web-application-sub002/internal/reports"
)

// PortalHandler serves the gated portal routes and the public news feed.
type PortalHandler struct {
	gate        *gate.Factory
	identities  *identity.Provider
	departments *departments.Service
	news        *news.Service
	reports     *reports.Service
	avatars     *avatar.Service
}

func NewPortalHandler(g *gate.Factory, idp *identity.Provider, d *departments.Service, n *news.Service, r *reports.Service, a *avatar.Service) *PortalHandler {
	return &PortalHandler{gate: g, identities: idp, departments: d, news: n, reports: r, avatars: a}
}

func (h *PortalHandler) Register(rg *gin.RouterGroup) {
	rg.GET("/news", h.gate.Throttle(), h.ListNews)
	rg.GET("/me", h.gate.Require(access.ViewDashboard), h.Me)
	rg.GET("/departments", h.gate.Require(access.ListDepartments), h.ListDepartments)
	rg.GET("/reports", h.gate.Require(access.ListReports), h.ListReports)
	rg.POST("/reports", h.gate.Require(access.SubmitReport), h.SubmitReport)
	rg.DELETE("/reports/:id", h.gate.Require(access.DeleteReport), h.DeleteReport)
	rg.POST("/avatar/upload-url", h.gate.Require(access.UploadAvatar), h.AvatarUploadURL)
}

// Me returns the caller and the dashboard matching their role. The stored identity
// is preferred over the token claims; subjects from an external issuer have none.
func (h *PortalHandler) Me(c *gin.Context) {
	req := gate.FromContext(c)
	ctx, cancel := h.gate.Bound(c)
	defer cancel()
	user, err := h.identities.Get(ctx, req.Identity.ID)
	if err != nil {
		gate.Respond(c, apperr.StoreErr(err))
		return
	}
	if user == nil {
		user = req.Identity
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "profile": req.Profile, "dashboard": dashboardFor(req.Profile.Role)})
}

func (h *PortalHandler) ListNews(c *gin.Context) {
	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			gate.Respond(c, apperr.Invalid("limit must be a non-negative integer"))
			return
		}
		limit = n
	}
	ctx, cancel := h.gate.Bound(c)
	defer cancel()
	items, err := h.news.Latest(ctx, limit)
	if err != nil {
		gate.Respond(c, apperr.StoreErr(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"news": nonNil(items)})
}

func (h *PortalHandler) ListDepartments(c *gin.Context) {
	ctx, cancel := h.gate.Bound(c)
	defer cancel()
	items, err := h.departments.ListActive(ctx)
	if err != nil {
		gate.Respond(c, apperr.StoreErr(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"departments": nonNil(items)})
}

func (h *PortalHandler) ListReports(c *gin.Context) {
	status := c.Query("status")
	if status != "" && status != models.ReportOpen && status != models.ReportResolved {
		gate.Respond(c, apperr.Invalid("status must be open or resolved"))
		return
	}
	ctx, cancel := h.gate.Bound(c)
	defer cancel()
	items, err := h.reports.List(ctx, status)
	if err != nil {
		gate.Respond(c, apperr.StoreErr(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"reports": nonNil(items)})
}

// SubmitReportRequest is the body of POST /reports.
type SubmitReportRequest struct {
	Title    string `json:"title" binding:"required,max=200"`
	Content  string `json:"content" binding:"required"`
	Category string `json:"category"`
}

func (h *PortalHandler) SubmitReport(c *gin.Context) {
	var req SubmitReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		gate.Respond(c, bindError(err, reportMessages))
		return
	}
	ctx, cancel := h.gate.Bound(c)
	defer cancel()
	r, err := h.reports.Submit(ctx, gate.FromContext(c).Identity.ID, req.Title, req.Content, req.Category)
	if err != nil {
		gate.Respond(c, apperr.StoreErr(err))
		return
	}
	c.JSON(http.StatusCreated, gin.H{"report": r})
}

func (h *PortalHandler) DeleteReport(c *gin.Context) {
	ctx, cancel := h.gate.Bound(c)
	defer cancel()
	if err := h.reports.Delete(ctx, c.Param("id")); err != nil {
		if errors.Is(err, reports.ErrNotFound) {
			gate.Respond(c, apperr.NotFoundf("Report"))
			return
		}
		gate.Respond(c, apperr.StoreErr(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Report deleted successfully"})
}

// AvatarUploadRequest is the body of POST /avatar/upload-url.
type AvatarUploadRequest struct {
	FileType string `json:"fileType" binding:"required"`
}

func (h *PortalHandler) AvatarUploadURL(c *gin.Context) {
	var req AvatarUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		gate.Respond(c, bindError(err, avatarMessages))
		return
	}
	if h.avatars == nil {
		gate.Respond(c, apperr.New(apperr.Unexpected, "object store not configured"))
		return
	}
	ctx, cancel := h.gate.Bound(c)
	defer cancel()
	up, err := h.avatars.CreateUploadURL(ctx, gate.FromContext(c).Identity.ID, req.FileType)
	if err != nil {
		gate.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, up)
}

// nonNil keeps empty listings encoded as [] rather than null.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
