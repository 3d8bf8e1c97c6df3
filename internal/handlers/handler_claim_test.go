package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/claimsys/claim_management_app/internal/apperrors"
	"github.com/claimsys/claim_management_app/internal/core/domain"
	portssvc "github.com/claimsys/claim_management_app/internal/core/ports/services"
	"github.com/claimsys/claim_management_app/internal/dto"
	"github.com/claimsys/claim_management_app/internal/handlers"
	"github.com/claimsys/claim_management_app/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock ClaimService ---

type MockClaimService struct {
	mock.Mock
}

func (m *MockClaimService) SubmitClaim(ctx context.Context, req dto.SubmitClaimRequest) (*dto.SubmitClaimResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.SubmitClaimResult), args.Error(1)
}

func (m *MockClaimService) CoordinatorApprove(ctx context.Context, claimID int64) error {
	return m.Called(ctx, claimID).Error(0)
}

func (m *MockClaimService) CoordinatorReject(ctx context.Context, claimID int64) error {
	return m.Called(ctx, claimID).Error(0)
}

func (m *MockClaimService) ManagerApprove(ctx context.Context, claimID int64) error {
	return m.Called(ctx, claimID).Error(0)
}

func (m *MockClaimService) ManagerReject(ctx context.Context, claimID int64) error {
	return m.Called(ctx, claimID).Error(0)
}

func (m *MockClaimService) GetClaimStatus(ctx context.Context, claimID int64) (*domain.Claim, error) {
	args := m.Called(ctx, claimID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Claim), args.Error(1)
}

func (m *MockClaimService) ListForCoordinator(ctx context.Context) ([]domain.Claim, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Claim), args.Error(1)
}

func (m *MockClaimService) ListForManager(ctx context.Context) ([]domain.Claim, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Claim), args.Error(1)
}

func (m *MockClaimService) ListRecent(ctx context.Context) ([]domain.Claim, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Claim), args.Error(1)
}

// Ensure mock implements the interface
var _ portssvc.ClaimSvcFacade = (*MockClaimService)(nil)

// --- Test Suite Setup ---

type ClaimHandlerTestSuite struct {
	suite.Suite
	mockService *MockClaimService
	router      *gin.Engine
}

func (suite *ClaimHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.mockService = new(MockClaimService)

	suite.router = gin.New()
	suite.router.Use(middleware.Flash())
	suite.router.LoadHTMLGlob("../../web/templates/*.html")

	passthrough := func(c *gin.Context) { c.Next() }
	handlers.RegisterRoutes(suite.router, suite.mockService, passthrough)
}

func (suite *ClaimHandlerTestSuite) serve(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

// multipartForm builds a multipart body from the given fields.
func multipartForm(fields map[string]string) (*bytes.Buffer, string) {
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for k, v := range fields {
		_ = mw.WriteField(k, v)
	}
	_ = mw.Close()
	return body, mw.FormDataContentType()
}

func validFormFields() map[string]string {
	return map[string]string{
		"lecturerName": "Alice",
		"month":        "March 2025",
		"hoursWorked":  "20",
		"hourlyRate":   "670",
	}
}

func sampleClaim(id int64, status domain.ClaimStatus) *domain.Claim {
	return &domain.Claim{
		ClaimID:      id,
		LecturerName: "Alice",
		Month:        "March 2025",
		HoursWorked:  decimal.RequireFromString("20"),
		HourlyRate:   decimal.RequireFromString("670"),
		Status:       status,
	}
}

// --- Submission ---

func (suite *ClaimHandlerTestSuite) TestShowSubmitForm() {
	req := httptest.NewRequest(http.MethodGet, "/claims/submit", nil)
	w := suite.serve(req)

	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), "Lecturer Name")
	suite.Contains(w.Body.String(), "Upload Supporting Document")
}

func (suite *ClaimHandlerTestSuite) TestSubmitClaim_RedirectsToStatus() {
	suite.mockService.On("SubmitClaim", mock.Anything, mock.AnythingOfType("dto.SubmitClaimRequest")).
		Return(&dto.SubmitClaimResult{ClaimID: 42}, nil).Once()

	body, contentType := multipartForm(validFormFields())
	req := httptest.NewRequest(http.MethodPost, "/claims/submit", body)
	req.Header.Set("Content-Type", contentType)
	w := suite.serve(req)

	suite.Equal(http.StatusSeeOther, w.Code)
	suite.Equal("/claims/status/42", w.Header().Get("Location"))
	suite.mockService.AssertExpectations(suite.T())
}

func (suite *ClaimHandlerTestSuite) TestSubmitClaim_DuplicateRendersFormWithErrors() {
	suite.mockService.On("SubmitClaim", mock.Anything, mock.Anything).
		Return(nil, apperrors.ErrDuplicate).Once()

	body, contentType := multipartForm(validFormFields())
	req := httptest.NewRequest(http.MethodPost, "/claims/submit", body)
	req.Header.Set("Content-Type", contentType)
	w := suite.serve(req)

	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), "already exists and is under review")
	suite.Contains(w.Body.String(), "Duplicate for this month.")
	// Original input is preserved on the re-rendered form.
	suite.Contains(w.Body.String(), "Alice")
}

func (suite *ClaimHandlerTestSuite) TestSubmitClaim_ValidationErrorRendersFieldMessages() {
	suite.mockService.On("SubmitClaim", mock.Anything, mock.Anything).
		Return(nil, apperrors.NewValidationError(map[string]string{
			"hoursWorked": "Hours must be between 0.5 and 9999.5.",
		})).Once()

	body, contentType := multipartForm(validFormFields())
	req := httptest.NewRequest(http.MethodPost, "/claims/submit", body)
	req.Header.Set("Content-Type", contentType)
	w := suite.serve(req)

	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), "Hours must be between 0.5 and 9999.5.")
}

func (suite *ClaimHandlerTestSuite) TestSubmitClaim_MissingFieldsFailBinding() {
	body, contentType := multipartForm(map[string]string{"lecturerName": "Alice"})
	req := httptest.NewRequest(http.MethodPost, "/claims/submit", body)
	req.Header.Set("Content-Type", contentType)
	w := suite.serve(req)

	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), "This field is required.")
	suite.mockService.AssertNotCalled(suite.T(), "SubmitClaim", mock.Anything, mock.Anything)
}

func (suite *ClaimHandlerTestSuite) TestSubmitClaim_UnexpectedErrorRendersApology() {
	suite.mockService.On("SubmitClaim", mock.Anything, mock.Anything).
		Return(nil, apperrors.NewAppError(500, "db down", nil)).Once()

	body, contentType := multipartForm(validFormFields())
	req := httptest.NewRequest(http.MethodPost, "/claims/submit", body)
	req.Header.Set("Content-Type", contentType)
	w := suite.serve(req)

	suite.Equal(http.StatusInternalServerError, w.Code)
	suite.Contains(w.Body.String(), "Sorry, something went wrong while submitting your claim.")
}

// --- Status pages ---

func (suite *ClaimHandlerTestSuite) TestShowStatus_KnownClaim() {
	suite.mockService.On("GetClaimStatus", mock.Anything, int64(42)).
		Return(sampleClaim(42, domain.PendingReview), nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/claims/status/42", nil)
	w := suite.serve(req)

	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), "PendingReview")
	suite.Contains(w.Body.String(), "13400.00")
}

func (suite *ClaimHandlerTestSuite) TestShowStatus_UnknownClaimGetsPlaceholder() {
	suite.mockService.On("GetClaimStatus", mock.Anything, int64(999)).
		Return(nil, apperrors.ErrNotFound).Once()

	req := httptest.NewRequest(http.MethodGet, "/claims/status/999", nil)
	w := suite.serve(req)

	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), "—")
	suite.Contains(w.Body.String(), "Submitted")
}

func (suite *ClaimHandlerTestSuite) TestStatusJSON() {
	suite.mockService.On("GetClaimStatus", mock.Anything, int64(42)).
		Return(sampleClaim(42, domain.Approved), nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/claims/status-json/42", nil)
	w := suite.serve(req)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.ClaimStatusJSONResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(int64(42), resp.ID)
	suite.Equal("Alice", resp.Lecturer)
	suite.Equal("March 2025", resp.Month)
	suite.Equal("Approved", resp.Status)
}

func (suite *ClaimHandlerTestSuite) TestStatusJSON_NotFound() {
	suite.mockService.On("GetClaimStatus", mock.Anything, int64(999)).
		Return(nil, apperrors.ErrNotFound).Once()

	req := httptest.NewRequest(http.MethodGet, "/claims/status-json/999", nil)
	w := suite.serve(req)

	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *ClaimHandlerTestSuite) TestShowStatusList() {
	suite.mockService.On("ListRecent", mock.Anything).
		Return([]domain.Claim{*sampleClaim(2, domain.Approved), *sampleClaim(1, domain.Rejected)}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/claims/status-list", nil)
	w := suite.serve(req)

	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), "Approved")
	suite.Contains(w.Body.String(), "Rejected")
}

// --- Review lists and transitions ---

func (suite *ClaimHandlerTestSuite) TestShowCoordinatorReview() {
	suite.mockService.On("ListForCoordinator", mock.Anything).
		Return([]domain.Claim{*sampleClaim(1, domain.Submitted)}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/claims/coordinator-review", nil)
	w := suite.serve(req)

	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), "/claims/coordinator-approve/1")
	suite.Contains(w.Body.String(), "/claims/coordinator-reject/1")
}

func (suite *ClaimHandlerTestSuite) TestReviewAliasShowsCoordinatorList() {
	suite.mockService.On("ListForCoordinator", mock.Anything).
		Return([]domain.Claim{}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/claims/review", nil)
	w := suite.serve(req)

	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), "Coordinator review")
}

func (suite *ClaimHandlerTestSuite) TestShowManagerReview() {
	suite.mockService.On("ListForManager", mock.Anything).
		Return([]domain.Claim{*sampleClaim(4, domain.PendingReview)}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/claims/manager-review", nil)
	w := suite.serve(req)

	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), "/claims/manager-approve/4")
}

func postForm(path string, fields url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(fields.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func flashCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name && c.Value != "" {
			return c
		}
	}
	return nil
}

func (suite *ClaimHandlerTestSuite) TestCoordinatorApprove_RedirectsWithOkFlash() {
	suite.mockService.On("CoordinatorApprove", mock.Anything, int64(5)).Return(nil).Once()

	w := suite.serve(postForm("/claims/coordinator-approve/5", url.Values{}))

	suite.Equal(http.StatusSeeOther, w.Code)
	suite.Equal("/claims/coordinator-review", w.Header().Get("Location"))
	suite.NotNil(flashCookie(w, "flash_ok"))
}

func (suite *ClaimHandlerTestSuite) TestCoordinatorApprove_IllegalTransitionFlashesError() {
	suite.mockService.On("CoordinatorApprove", mock.Anything, int64(5)).
		Return(apperrors.NewIllegalTransitionError("Approved", "coordinatorApprove",
			"Only newly submitted claims can be forwarded for manager review.")).Once()

	w := suite.serve(postForm("/claims/coordinator-approve/5", url.Values{}))

	suite.Equal(http.StatusSeeOther, w.Code)
	suite.Equal("/claims/coordinator-review", w.Header().Get("Location"))
	suite.NotNil(flashCookie(w, "flash_err"))
}

func (suite *ClaimHandlerTestSuite) TestManagerApprove_NotFound() {
	suite.mockService.On("ManagerApprove", mock.Anything, int64(404)).
		Return(apperrors.ErrNotFound).Once()

	w := suite.serve(postForm("/claims/manager-approve/404", url.Values{}))

	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *ClaimHandlerTestSuite) TestManagerReject_RedirectsBackToManagerList() {
	suite.mockService.On("ManagerReject", mock.Anything, int64(6)).Return(nil).Once()

	w := suite.serve(postForm("/claims/manager-reject/6", url.Values{"reason": {"missing timesheet"}}))

	suite.Equal(http.StatusSeeOther, w.Code)
	suite.Equal("/claims/manager-review", w.Header().Get("Location"))
}

func (suite *ClaimHandlerTestSuite) TestNonNumericIDIs404() {
	w := suite.serve(postForm("/claims/coordinator-approve/abc", url.Values{}))
	suite.Equal(http.StatusNotFound, w.Code)
}

func TestClaimHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(ClaimHandlerTestSuite))
}
