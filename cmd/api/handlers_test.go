package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/casesurf/casesurf/internal/database"
	"github.com/casesurf/casesurf/internal/library"
	"github.com/casesurf/casesurf/internal/middleware"
	"github.com/casesurf/casesurf/internal/payment"
	"github.com/casesurf/casesurf/internal/scripts"
	"github.com/casesurf/casesurf/pkg/models"
)

// MockLibraryService is a mock implementation of libraryService
type MockLibraryService struct {
	mock.Mock
}

func (m *MockLibraryService) ListVideos(ctx context.Context, query library.Query) (*models.VideoPage, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.VideoPage), args.Error(1)
}

func (m *MockLibraryService) Keywords(ctx context.Context) ([]models.KeywordCount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.KeywordCount), args.Error(1)
}

func (m *MockLibraryService) RecordClick(ctx context.Context, url string) error {
	args := m.Called(ctx, url)
	return args.Error(0)
}

func (m *MockLibraryService) ToggleLike(ctx context.Context, sessionID, url string) (bool, error) {
	args := m.Called(ctx, sessionID, url)
	return args.Bool(0), args.Error(1)
}

func (m *MockLibraryService) LikedVideos(ctx context.Context, sessionID string) ([]string, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockResearchService is a mock implementation of researchService
type MockResearchService struct {
	mock.Mock
}

func (m *MockResearchService) GenerateReport(ctx context.Context, product, userID string) (*models.Report, error) {
	args := m.Called(ctx, product, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Report), args.Error(1)
}

// MockCreditService is a mock implementation of creditService
type MockCreditService struct {
	mock.Mock
}

func (m *MockCreditService) ImproveScript(ctx context.Context, userID, baseText string, improvements []string, iterative bool) (string, error) {
	args := m.Called(ctx, userID, baseText, improvements, iterative)
	return args.String(0), args.Error(1)
}

func (m *MockCreditService) Balance(ctx context.Context, userID string) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// MockPaymentService is a mock implementation of paymentService
type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) CaptureAndApply(ctx context.Context, userID, orderID, planID string) (*models.Payment, error) {
	args := m.Called(ctx, userID, orderID, planID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *MockPaymentService) History(ctx context.Context, userID string) ([]*models.Payment, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Payment), args.Error(1)
}

// MockAuthService is a mock implementation of authService
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Login(ctx context.Context, id, email, name string) (*models.User, string, error) {
	args := m.Called(ctx, id, email, name)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).(*models.User), args.String(1), args.Error(2)
}

func (m *MockAuthService) Profile(ctx context.Context, userID string) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// MockScriptStore is a mock implementation of scriptStore
type MockScriptStore struct {
	mock.Mock
}

func (m *MockScriptStore) SaveScript(ctx context.Context, script *models.SavedScript) error {
	args := m.Called(ctx, script)
	return args.Error(0)
}

func (m *MockScriptStore) GetScript(ctx context.Context, userID, docKey string) (*models.SavedScript, error) {
	args := m.Called(ctx, userID, docKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SavedScript), args.Error(1)
}

func (m *MockScriptStore) ListScripts(ctx context.Context, userID string) ([]*models.SavedScript, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.SavedScript), args.Error(1)
}

func (m *MockScriptStore) DeleteScript(ctx context.Context, userID, docKey string) error {
	args := m.Called(ctx, userID, docKey)
	return args.Error(0)
}

// MockHealthChecker is a mock implementation of healthChecker
type MockHealthChecker struct {
	mock.Mock
}

func (m *MockHealthChecker) Health(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

// asUser injects a signed-in identity the way the JWT middleware would
func asUser(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.AuthContextKey, userID)
		c.Next()
	}
}

func TestListVideosHandler_Success(t *testing.T) {
	router := setupTestRouter()
	mockLibrary := new(MockLibraryService)

	api := &API{library: mockLibrary}

	click := int64(5)
	page := &models.VideoPage{
		Videos: []*models.Video{
			{ID: 1, URL: "https://www.tiktok.com/@a/video/1", Click: &click},
		},
		Total:  1,
		Limit:  12,
		Offset: 0,
	}

	mockLibrary.On("ListVideos", mock.Anything, library.Query{Filter: "gadget", Sort: "click_desc"}).Return(page, nil)

	router.GET("/api/v1/videos", api.listVideos)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/videos?search=gadget&sort=click_desc", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response models.VideoPage
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, 1, response.Total)
	assert.Len(t, response.Videos, 1)

	mockLibrary.AssertExpectations(t)
}

func TestListVideosHandler_Pagination(t *testing.T) {
	router := setupTestRouter()
	mockLibrary := new(MockLibraryService)

	api := &API{library: mockLibrary}

	mockLibrary.On("ListVideos", mock.Anything, library.Query{Limit: 12, Offset: 24}).
		Return(&models.VideoPage{Videos: []*models.Video{}, Limit: 12, Offset: 24}, nil)

	router.GET("/api/v1/videos", api.listVideos)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/videos?limit=12&offset=24", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockLibrary.AssertExpectations(t)
}

func TestListVideosHandler_InvalidLimit(t *testing.T) {
	router := setupTestRouter()
	api := &API{library: new(MockLibraryService)}

	router.GET("/api/v1/videos", api.listVideos)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/videos?limit=abc", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecordClickHandler(t *testing.T) {
	router := setupTestRouter()
	mockLibrary := new(MockLibraryService)

	api := &API{library: mockLibrary}

	videoURL := "https://www.tiktok.com/@a/video/1"
	mockLibrary.On("RecordClick", mock.Anything, videoURL).Return(nil)

	router.POST("/api/v1/videos/click", api.recordClick)

	body, _ := json.Marshal(map[string]string{"url_tiktok": videoURL})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/videos/click", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockLibrary.AssertExpectations(t)
}

func TestRecordClickHandler_MissingURL(t *testing.T) {
	router := setupTestRouter()
	api := &API{library: new(MockLibraryService)}

	router.POST("/api/v1/videos/click", api.recordClick)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/videos/click", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestToggleLikeHandler(t *testing.T) {
	router := setupTestRouter()
	mockLibrary := new(MockLibraryService)

	api := &API{library: mockLibrary}

	videoURL := "https://www.tiktok.com/@a/video/1"
	mockLibrary.On("ToggleLike", mock.Anything, "session-abc", videoURL).Return(true, nil)

	router.POST("/api/v1/videos/like", middleware.Session(), api.toggleLike)

	body, _ := json.Marshal(map[string]string{"url_tiktok": videoURL})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/videos/like", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.SessionHeader, "session-abc")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, true, response["liked"])

	mockLibrary.AssertExpectations(t)
}

func TestLikedVideosHandler(t *testing.T) {
	router := setupTestRouter()
	mockLibrary := new(MockLibraryService)

	api := &API{library: mockLibrary}

	mockLibrary.On("LikedVideos", mock.Anything, "session-abc").
		Return([]string{"https://www.tiktok.com/@a/video/1"}, nil)

	router.GET("/api/v1/videos/liked", middleware.Session(), api.likedVideos)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/videos/liked", nil)
	req.Header.Set(middleware.SessionHeader, "session-abc")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockLibrary.AssertExpectations(t)
}

func TestGenerateReportHandler_Anonymous(t *testing.T) {
	router := setupTestRouter()
	mockResearch := new(MockResearchService)

	api := &API{research: mockResearch}

	videoURL := "https://www.tiktok.com/@a/video/1"
	mockResearch.On("GenerateReport", mock.Anything, videoURL, "").
		Return(&models.Report{Text: "analysis", FromCache: false}, nil)

	router.POST("/api/v1/report", api.generateReport)

	body, _ := json.Marshal(map[string]string{"product": videoURL})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/report", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response models.Report
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "analysis", response.Text)
	assert.False(t, response.FromCache)

	mockResearch.AssertExpectations(t)
}

func TestGenerateReportHandler_SignedIn(t *testing.T) {
	router := setupTestRouter()
	mockResearch := new(MockResearchService)

	api := &API{research: mockResearch}

	videoURL := "https://www.tiktok.com/@a/video/1"
	mockResearch.On("GenerateReport", mock.Anything, videoURL, "user-123").
		Return(&models.Report{Text: "saved analysis", FromCache: true}, nil)

	router.POST("/api/v1/report", asUser("user-123"), api.generateReport)

	body, _ := json.Marshal(map[string]string{"product": videoURL})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/report", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockResearch.AssertExpectations(t)
}

func TestImproveScriptHandler_Success(t *testing.T) {
	router := setupTestRouter()
	mockCredits := new(MockCreditService)

	api := &API{credits: mockCredits}

	mockCredits.On("ImproveScript", mock.Anything, "user-123", "original text", []string{"stronger hook"}, false).
		Return("improved text", nil)

	router.POST("/api/v1/improvement-script", asUser("user-123"), api.improveScript)

	body, _ := json.Marshal(map[string]interface{}{
		"base_text":    "original text",
		"improvements": []string{"stronger hook"},
	})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/improvement-script", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "improved text", response["text"])

	mockCredits.AssertExpectations(t)
}

func TestImproveScriptHandler_InsufficientCredit(t *testing.T) {
	router := setupTestRouter()
	mockCredits := new(MockCreditService)

	api := &API{credits: mockCredits}

	mockCredits.On("ImproveScript", mock.Anything, "user-123", "original text", []string(nil), false).
		Return("", database.ErrInsufficientCredit)

	router.POST("/api/v1/improvement-script", asUser("user-123"), api.improveScript)

	body, _ := json.Marshal(map[string]string{"base_text": "original text"})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/improvement-script", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusPaymentRequired, w.Code)
	mockCredits.AssertExpectations(t)
}

func TestGenerateReportHandler_UpstreamFailure(t *testing.T) {
	router := setupTestRouter()
	mockResearch := new(MockResearchService)

	api := &API{research: mockResearch}

	videoURL := "https://www.tiktok.com/@a/video/1"
	mockResearch.On("GenerateReport", mock.Anything, videoURL, "").
		Return(nil, errors.New("report backend returned status 503: model overloaded"))

	router.POST("/api/v1/report", api.generateReport)

	body, _ := json.Marshal(map[string]string{"product": videoURL})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/report", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)

	// The upstream failure reason must be visible to the caller
	var response map[string]string
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "Failed to generate report", response["error"])
	assert.Contains(t, response["detail"], "model overloaded")

	mockResearch.AssertExpectations(t)
}

func TestImproveScriptHandler_UpstreamFailure(t *testing.T) {
	router := setupTestRouter()
	mockCredits := new(MockCreditService)

	api := &API{credits: mockCredits}

	mockCredits.On("ImproveScript", mock.Anything, "user-123", "original text", []string(nil), false).
		Return("", errors.New("script backend returned status 503: model overloaded"))

	router.POST("/api/v1/improvement-script", asUser("user-123"), api.improveScript)

	body, _ := json.Marshal(map[string]string{"base_text": "original text"})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/improvement-script", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)

	var response map[string]string
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Contains(t, response["detail"], "model overloaded")

	mockCredits.AssertExpectations(t)
}

func TestLoginHandler_Success(t *testing.T) {
	router := setupTestRouter()
	mockAuth := new(MockAuthService)

	api := &API{auth: mockAuth}

	user := &models.User{ID: "user-123", Username: "maria", Email: "maria@example.com", Credit: 5}
	mockAuth.On("Login", mock.Anything, "user-123", "maria@example.com", "Maria").
		Return(user, "signed-token", nil)

	router.POST("/api/v1/auth/login", api.login)

	body, _ := json.Marshal(map[string]string{
		"id":    "user-123",
		"email": "maria@example.com",
		"name":  "Maria",
	})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "signed-token", response["token"])
	assert.NotNil(t, response["user"])

	mockAuth.AssertExpectations(t)
}

func TestLoginHandler_MissingEmail(t *testing.T) {
	router := setupTestRouter()
	api := &API{auth: new(MockAuthService)}

	router.POST("/api/v1/auth/login", api.login)

	body, _ := json.Marshal(map[string]string{"id": "user-123"})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetProfileHandler(t *testing.T) {
	router := setupTestRouter()
	mockAuth := new(MockAuthService)

	api := &API{auth: mockAuth}

	user := &models.User{ID: "user-123", Credit: 3}
	mockAuth.On("Profile", mock.Anything, "user-123").Return(user, nil)

	router.GET("/api/v1/users/me", asUser("user-123"), api.getProfile)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/users/me", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response models.User
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, 3, response.Credit)

	mockAuth.AssertExpectations(t)
}

func TestListPlansHandler(t *testing.T) {
	router := setupTestRouter()
	api := &API{}

	router.GET("/api/v1/plans", api.listPlans)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/plans", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Plans []models.Plan `json:"plans"`
	}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Len(t, response.Plans, 2)
}

func TestCaptureOrderHandler_Success(t *testing.T) {
	router := setupTestRouter()
	mockPayments := new(MockPaymentService)
	mockAuth := new(MockAuthService)

	api := &API{payments: mockPayments, auth: mockAuth}

	record := &models.Payment{
		OrderID:     "ORDER-1",
		PlanID:      payment.PlanLifetimePro,
		AmountCents: 3000,
		Currency:    "USD",
	}
	mockPayments.On("CaptureAndApply", mock.Anything, "user-123", "ORDER-1", payment.PlanLifetimePro).
		Return(record, nil)
	mockAuth.On("Profile", mock.Anything, "user-123").
		Return(&models.User{ID: "user-123", IsPro: true}, nil)

	router.POST("/api/v1/orders/:order_id/capture", asUser("user-123"), api.captureOrder)

	body, _ := json.Marshal(map[string]string{"plan_id": payment.PlanLifetimePro})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/orders/ORDER-1/capture", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response struct {
		Payment models.Payment `json:"payment"`
		User    models.User    `json:"user"`
	}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "ORDER-1", response.Payment.OrderID)
	assert.True(t, response.User.IsPro)

	mockPayments.AssertExpectations(t)
	mockAuth.AssertExpectations(t)
}

func TestCaptureOrderHandler_DuplicateOrder(t *testing.T) {
	router := setupTestRouter()
	mockPayments := new(MockPaymentService)

	api := &API{payments: mockPayments}

	mockPayments.On("CaptureAndApply", mock.Anything, "user-123", "ORDER-1", payment.PlanLifetimePro).
		Return(nil, database.ErrDuplicateOrder)

	router.POST("/api/v1/orders/:order_id/capture", asUser("user-123"), api.captureOrder)

	body, _ := json.Marshal(map[string]string{"plan_id": payment.PlanLifetimePro})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/orders/ORDER-1/capture", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	mockPayments.AssertExpectations(t)
}

func TestCaptureOrderHandler_FreePlan(t *testing.T) {
	router := setupTestRouter()
	mockPayments := new(MockPaymentService)

	api := &API{payments: mockPayments}

	mockPayments.On("CaptureAndApply", mock.Anything, "user-123", "ORDER-1", payment.PlanStarter).
		Return(nil, payment.ErrFreePlan)

	router.POST("/api/v1/orders/:order_id/capture", asUser("user-123"), api.captureOrder)

	body, _ := json.Marshal(map[string]string{"plan_id": payment.PlanStarter})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/orders/ORDER-1/capture", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockPayments.AssertExpectations(t)
}

func TestCaptureOrderHandler_NotCompleted(t *testing.T) {
	router := setupTestRouter()
	mockPayments := new(MockPaymentService)

	api := &API{payments: mockPayments}

	mockPayments.On("CaptureAndApply", mock.Anything, "user-123", "ORDER-1", payment.PlanLifetimePro).
		Return(nil, payment.ErrPaymentNotCompleted)

	router.POST("/api/v1/orders/:order_id/capture", asUser("user-123"), api.captureOrder)

	body, _ := json.Marshal(map[string]string{"plan_id": payment.PlanLifetimePro})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/orders/ORDER-1/capture", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	mockPayments.AssertExpectations(t)
}

func TestSaveScriptHandler(t *testing.T) {
	router := setupTestRouter()
	mockScripts := new(MockScriptStore)

	api := &API{scripts: mockScripts}

	videoURL := "https://www.tiktok.com/@a/video/1"
	docKey := scripts.EncodeDocKey(videoURL)

	mockScripts.On("SaveScript", mock.Anything, mock.MatchedBy(func(s *models.SavedScript) bool {
		return s.UserID == "user-123" && s.DocKey == docKey && s.VideoURL == videoURL
	})).Return(nil)

	router.POST("/api/v1/scripts", asUser("user-123"), api.saveScript)

	body, _ := json.Marshal(map[string]string{
		"url_tiktok":      videoURL,
		"original_report": "report text",
		"improved_script": "script text",
	})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/scripts", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	mockScripts.AssertExpectations(t)
}

func TestGetScriptHandler_NotFound(t *testing.T) {
	router := setupTestRouter()
	mockScripts := new(MockScriptStore)

	api := &API{scripts: mockScripts}

	mockScripts.On("GetScript", mock.Anything, "user-123", "missing-key").
		Return(nil, database.ErrScriptNotFound)

	router.GET("/api/v1/scripts/:doc_key", asUser("user-123"), api.getScript)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/scripts/missing-key", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	mockScripts.AssertExpectations(t)
}

func TestDeleteScriptHandler(t *testing.T) {
	router := setupTestRouter()
	mockScripts := new(MockScriptStore)

	api := &API{scripts: mockScripts}

	mockScripts.On("DeleteScript", mock.Anything, "user-123", "doc-key").Return(nil)

	router.DELETE("/api/v1/scripts/:doc_key", asUser("user-123"), api.deleteScript)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("DELETE", "/api/v1/scripts/doc-key", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockScripts.AssertExpectations(t)
}

func TestHealthCheckHandler(t *testing.T) {
	router := setupTestRouter()
	mockHealth := new(MockHealthChecker)

	api := &API{db: mockHealth}

	mockHealth.On("Health", mock.Anything).Return(nil)

	router.GET("/health", api.healthCheck)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "healthy", response["status"])

	mockHealth.AssertExpectations(t)
}

func TestHealthCheckHandler_Unhealthy(t *testing.T) {
	router := setupTestRouter()
	mockHealth := new(MockHealthChecker)

	api := &API{db: mockHealth}

	mockHealth.On("Health", mock.Anything).Return(assert.AnError)

	router.GET("/health", api.healthCheck)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	mockHealth.AssertExpectations(t)
}
