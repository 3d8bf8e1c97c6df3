package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/claimsys/claim_management_app/internal/apperrors"
	"github.com/claimsys/claim_management_app/internal/core/domain"
	portssvc "github.com/claimsys/claim_management_app/internal/core/ports/services"
	"github.com/claimsys/claim_management_app/internal/dto"
	"github.com/claimsys/claim_management_app/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const (
	duplicateGlobalMsg = "A claim for this lecturer and month already exists and is under review or already submitted."
	duplicateMonthMsg  = "Duplicate for this month."
	submitFailedMsg    = "Sorry, something went wrong while submitting your claim."
)

// claimHandler handles HTTP requests related to claims.
type claimHandler struct {
	claimService portssvc.ClaimSvcFacade
}

// newClaimHandler creates a new claimHandler.
func newClaimHandler(cs portssvc.ClaimSvcFacade) *claimHandler {
	return &claimHandler{claimService: cs}
}

// registerClaimRoutes registers routes related to claims. submitLimit guards
// the submission POST against bursts.
func registerClaimRoutes(r *gin.Engine, claimService portssvc.ClaimSvcFacade, submitLimit gin.HandlerFunc) {
	h := newClaimHandler(claimService)

	claims := r.Group("/claims")
	{
		claims.GET("/submit", h.showSubmitForm)
		claims.POST("/submit", submitLimit, h.submitClaim)
		claims.GET("/status/:id", h.showStatus)
		claims.GET("/status-json/:id", h.statusJSON)
		claims.GET("/status-list", h.showStatusList)
		claims.GET("/coordinator-review", h.showCoordinatorReview)
		claims.GET("/review", h.showCoordinatorReview)
		claims.POST("/coordinator-approve/:id", h.coordinatorApprove)
		claims.POST("/coordinator-reject/:id", h.coordinatorReject)
		claims.GET("/manager-review", h.showManagerReview)
		claims.POST("/manager-approve/:id", h.managerApprove)
		claims.POST("/manager-reject/:id", h.managerReject)
	}
}

// submitPageData feeds the submission form template.
type submitPageData struct {
	Form        dto.SubmitClaimForm
	Errors      map[string]string
	GlobalError string
	CSRFToken   string
	FlashOk     string
	FlashErr    string
}

func (h *claimHandler) showSubmitForm(c *gin.Context) {
	flashOk, flashErr := middleware.GetFlash(c)
	c.HTML(http.StatusOK, "submit.html", submitPageData{
		Form:      dto.SubmitClaimForm{Month: time.Now().UTC().Format("January 2006")},
		Errors:    map[string]string{},
		CSRFToken: middleware.CSRFToken(c),
		FlashOk:   flashOk,
		FlashErr:  flashErr,
	})
}

func (h *claimHandler) submitClaim(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var form dto.SubmitClaimForm
	if err := c.ShouldBindWith(&form, binding.FormMultipart); err != nil {
		logger.Warn("Failed to bind claim submission form", slog.String("error", err.Error()))
		h.renderSubmitForm(c, http.StatusOK, form, bindingErrorFields(err), "")
		return
	}

	req := dto.SubmitClaimRequest{
		LecturerName: form.LecturerName,
		Month:        form.Month,
		HoursWorked:  form.HoursWorked,
		HourlyRate:   form.HourlyRate,
		Notes:        form.Notes,
	}

	if fh, err := c.FormFile("file"); err == nil && fh != nil && fh.Size > 0 {
		f, err := fh.Open()
		if err != nil {
			logger.Error("Failed to open uploaded file", slog.String("error", err.Error()))
			h.renderSubmitForm(c, http.StatusInternalServerError, form, nil, submitFailedMsg)
			return
		}
		defer f.Close()
		req.Attachment = &dto.AttachmentUpload{
			FileName: fh.Filename,
			Size:     fh.Size,
			Content:  f,
		}
	}

	result, err := h.claimService.SubmitClaim(c.Request.Context(), req)
	if err != nil {
		var verr *apperrors.ValidationError
		switch {
		case errors.As(err, &verr):
			h.renderSubmitForm(c, http.StatusOK, form, verr.Fields, "")
		case errors.Is(err, apperrors.ErrDuplicate):
			h.renderSubmitForm(c, http.StatusOK, form, map[string]string{"month": duplicateMonthMsg}, duplicateGlobalMsg)
		default:
			logger.Error("Claim submission failed", slog.String("error", err.Error()))
			h.renderSubmitForm(c, http.StatusInternalServerError, form, nil, submitFailedMsg)
		}
		return
	}

	middleware.SetFlashOk(c, "Claim submitted successfully.")
	if result.Warning != "" {
		middleware.SetFlashErr(c, result.Warning)
	}
	c.Redirect(http.StatusSeeOther, "/claims/status/"+strconv.FormatInt(result.ClaimID, 10))
}

func (h *claimHandler) renderSubmitForm(c *gin.Context, status int, form dto.SubmitClaimForm, fieldErrs map[string]string, globalErr string) {
	if fieldErrs == nil {
		fieldErrs = map[string]string{}
	}
	c.HTML(status, "submit.html", submitPageData{
		Form:        form,
		Errors:      fieldErrs,
		GlobalError: globalErr,
		CSRFToken:   middleware.CSRFToken(c),
	})
}

// bindingErrorFields turns gin binding failures into the per-field error map
// the form template renders.
func bindingErrorFields(err error) map[string]string {
	fields := map[string]string{}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		fields["lecturerName"] = "Invalid form submission."
		return fields
	}
	for _, fe := range verrs {
		name := lcFirst(fe.Field())
		switch fe.Tag() {
		case "required":
			fields[name] = "This field is required."
		case "max":
			fields[name] = "Must be at most " + fe.Param() + " characters."
		default:
			fields[name] = "Invalid value."
		}
	}
	return fields
}

func lcFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

// statusPageData feeds the status template.
type statusPageData struct {
	Claim    dto.ClaimResponse
	Found    bool
	FlashOk  string
	FlashErr string
}

// showStatus renders the claim status page. An unknown id gets a placeholder
// claim rather than an error page.
func (h *claimHandler) showStatus(c *gin.Context) {
	flashOk, flashErr := middleware.GetFlash(c)

	data := statusPageData{FlashOk: flashOk, FlashErr: flashErr}
	if claimID, err := strconv.ParseInt(c.Param("id"), 10, 64); err == nil && claimID > 0 {
		if claim, err := h.claimService.GetClaimStatus(c.Request.Context(), claimID); err == nil {
			data.Claim = dto.ToClaimResponse(claim)
			data.Found = true
		}
	}
	if !data.Found {
		placeholder := domain.Claim{LecturerName: "—", Month: "—", Status: domain.Submitted}
		data.Claim = dto.ToClaimResponse(&placeholder)
	}

	c.HTML(http.StatusOK, "status.html", data)
}

func (h *claimHandler) statusJSON(c *gin.Context) {
	claimID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "claim not found"})
		return
	}

	claim, err := h.claimService.GetClaimStatus(c.Request.Context(), claimID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "claim not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve claim"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToClaimStatusJSONResponse(claim))
}

// listPageData feeds the status-list and review templates.
type listPageData struct {
	Title       string
	Claims      []dto.ClaimResponse
	ApproveBase string
	RejectBase  string
	CSRFToken   string
	FlashOk     string
	FlashErr    string
}

func (h *claimHandler) showStatusList(c *gin.Context) {
	claims, err := h.claimService.ListRecent(c.Request.Context())
	if err != nil {
		c.String(http.StatusInternalServerError, "Failed to load claims.")
		return
	}
	flashOk, flashErr := middleware.GetFlash(c)
	c.HTML(http.StatusOK, "status_list.html", listPageData{
		Title:    "Recent claims",
		Claims:   dto.ToListClaimResponse(claims),
		FlashOk:  flashOk,
		FlashErr: flashErr,
	})
}

func (h *claimHandler) showCoordinatorReview(c *gin.Context) {
	h.showReviewList(c, "Coordinator review", h.claimService.ListForCoordinator,
		"/claims/coordinator-approve/", "/claims/coordinator-reject/")
}

func (h *claimHandler) showManagerReview(c *gin.Context) {
	h.showReviewList(c, "Manager review", h.claimService.ListForManager,
		"/claims/manager-approve/", "/claims/manager-reject/")
}

func (h *claimHandler) showReviewList(c *gin.Context, title string, list func(ctx context.Context) ([]domain.Claim, error), approveBase, rejectBase string) {
	claims, err := list(c.Request.Context())
	if err != nil {
		c.String(http.StatusInternalServerError, "Failed to load claims.")
		return
	}
	flashOk, flashErr := middleware.GetFlash(c)
	c.HTML(http.StatusOK, "review.html", listPageData{
		Title:       title,
		Claims:      dto.ToListClaimResponse(claims),
		ApproveBase: approveBase,
		RejectBase:  rejectBase,
		CSRFToken:   middleware.CSRFToken(c),
		FlashOk:     flashOk,
		FlashErr:    flashErr,
	})
}

func (h *claimHandler) coordinatorApprove(c *gin.Context) {
	h.reviewAction(c, h.claimService.CoordinatorApprove,
		"Forwarded to manager for review.",
		"Could not forward the claim due to an internal error.",
		"/claims/coordinator-review")
}

func (h *claimHandler) coordinatorReject(c *gin.Context) {
	h.reviewAction(c, h.claimService.CoordinatorReject,
		"Claim rejected by coordinator.",
		"Could not reject the claim due to an internal error.",
		"/claims/coordinator-review")
}

func (h *claimHandler) managerApprove(c *gin.Context) {
	h.reviewAction(c, h.claimService.ManagerApprove,
		"✅ Claim approved.",
		"Could not approve the claim due to an internal error.",
		"/claims/manager-review")
}

func (h *claimHandler) managerReject(c *gin.Context) {
	h.reviewAction(c, h.claimService.ManagerReject,
		"⚠️ Claim rejected.",
		"Could not reject the claim due to an internal error.",
		"/claims/manager-review")
}

// reviewAction runs one guarded transition and reports the outcome as a flash
// on the originating list. A missing claim is a plain 404; a lost
// compare-and-set shows the edge's own explanation.
func (h *claimHandler) reviewAction(c *gin.Context, action func(ctx context.Context, claimID int64) error, okMsg, internalErrMsg, backPath string) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	claimID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.String(http.StatusNotFound, "Claim not found.")
		return
	}

	// The optional reason field is accepted but only logged.
	if reason := strings.TrimSpace(c.PostForm("reason")); reason != "" {
		logger.Info("Review reason provided", slog.Int64("claim_id", claimID), slog.String("reason", reason))
	}

	err = action(c.Request.Context(), claimID)
	if err != nil {
		var iterr *apperrors.IllegalTransitionError
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.String(http.StatusNotFound, "Claim not found.")
			return
		case errors.As(err, &iterr):
			middleware.SetFlashErr(c, iterr.Message)
		default:
			logger.Error("Review action failed", slog.Int64("claim_id", claimID), slog.String("error", err.Error()))
			middleware.SetFlashErr(c, internalErrMsg)
		}
		c.Redirect(http.StatusSeeOther, backPath)
		return
	}

	middleware.SetFlashOk(c, okMsg)
	c.Redirect(http.StatusSeeOther, backPath)
}
