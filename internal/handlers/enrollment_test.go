package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"race-service/internal/mocks"
	"race-service/internal/models"
	"race-service/internal/repositories"
	"race-service/internal/ws"
)

func testHub() *ws.Hub {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return ws.NewHub(logger)
}

func setupEnrollmentRouter(handler *EnrollmentHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", 1)
		c.Set("userName", "marta")
		c.Set("userRole", "official")
		c.Next()
	})
	r.GET("/events/:event_id/enrollments", handler.ListEnrollments)
	r.POST("/events/:event_id/enrollments", handler.Enroll)
	r.POST("/events/:event_id/enrollments/:dorsal/status", handler.UpdateStatus)
	return r
}

func TestListEnrollmentsSuccess(t *testing.T) {
	eventRepo := new(mocks.EventRepositoryMock)
	enrollmentRepo := new(mocks.EnrollmentRepositoryMock)
	handler := NewEnrollmentHandler(eventRepo, enrollmentRepo, testHub(), nil)
	router := setupEnrollmentRouter(handler)

	eventRepo.On("GetEvent", mock.Anything, 5).Return(models.Event{ID: 5, Name: "Ultra"}, nil).Once()
	enrollmentRepo.On("ListByEvent", mock.Anything, 5).Return([]models.Enrollment{
		{EventID: 5, Dorsal: 3, AthleteName: "Bea", Status: models.StatusNotStarted},
		{EventID: 5, Dorsal: 7, AthleteName: "Ana", Status: models.StatusStarted},
	}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/events/5/enrollments", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Enrollments []models.Enrollment `json:"enrollments"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Enrollments, 2)
	assert.Equal(t, 3, resp.Enrollments[0].Dorsal)

	eventRepo.AssertExpectations(t)
	enrollmentRepo.AssertExpectations(t)
}

func TestListEnrollmentsEmptyIsNotNull(t *testing.T) {
	eventRepo := new(mocks.EventRepositoryMock)
	enrollmentRepo := new(mocks.EnrollmentRepositoryMock)
	handler := NewEnrollmentHandler(eventRepo, enrollmentRepo, testHub(), nil)
	router := setupEnrollmentRouter(handler)

	eventRepo.On("GetEvent", mock.Anything, 5).Return(models.Event{ID: 5}, nil).Once()
	enrollmentRepo.On("ListByEvent", mock.Anything, 5).Return(([]models.Enrollment)(nil), nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/events/5/enrollments", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"enrollments":[]}`, rec.Body.String())
}

func TestListEnrollmentsEventNotFound(t *testing.T) {
	eventRepo := new(mocks.EventRepositoryMock)
	handler := NewEnrollmentHandler(eventRepo, new(mocks.EnrollmentRepositoryMock), testHub(), nil)
	router := setupEnrollmentRouter(handler)

	eventRepo.On("GetEvent", mock.Anything, 99).Return(nil, repositories.ErrEventNotFound).Once()

	req := httptest.NewRequest(http.MethodGet, "/events/99/enrollments", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	eventRepo.AssertExpectations(t)
}

func TestListEnrollmentsRepoError(t *testing.T) {
	eventRepo := new(mocks.EventRepositoryMock)
	enrollmentRepo := new(mocks.EnrollmentRepositoryMock)
	handler := NewEnrollmentHandler(eventRepo, enrollmentRepo, testHub(), nil)
	router := setupEnrollmentRouter(handler)

	eventRepo.On("GetEvent", mock.Anything, 5).Return(models.Event{ID: 5}, nil).Once()
	enrollmentRepo.On("ListByEvent", mock.Anything, 5).Return(([]models.Enrollment)(nil), assert.AnError).Once()

	req := httptest.NewRequest(http.MethodGet, "/events/5/enrollments", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestEnrollSuccess(t *testing.T) {
	eventRepo := new(mocks.EventRepositoryMock)
	enrollmentRepo := new(mocks.EnrollmentRepositoryMock)
	handler := NewEnrollmentHandler(eventRepo, enrollmentRepo, testHub(), nil)
	router := setupEnrollmentRouter(handler)

	eventRepo.On("GetEvent", mock.Anything, 5).Return(models.Event{ID: 5}, nil).Once()
	enrollmentRepo.On("Enroll", mock.Anything, 5, 101, "Ana").
		Return(models.Enrollment{EventID: 5, Dorsal: 101, AthleteName: "Ana", Status: models.StatusNotStarted}, nil).Once()

	body := bytes.NewBufferString(`{"dorsal":101,"athlete_name":"Ana"}`)
	req := httptest.NewRequest(http.MethodPost, "/events/5/enrollments", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	enrollmentRepo.AssertExpectations(t)
}

func TestEnrollInvalidBody(t *testing.T) {
	handler := NewEnrollmentHandler(new(mocks.EventRepositoryMock), new(mocks.EnrollmentRepositoryMock), testHub(), nil)
	router := setupEnrollmentRouter(handler)

	req := httptest.NewRequest(http.MethodPost, "/events/5/enrollments", bytes.NewBufferString(`{"dorsal":101}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateStatusSuccess(t *testing.T) {
	eventRepo := new(mocks.EventRepositoryMock)
	enrollmentRepo := new(mocks.EnrollmentRepositoryMock)
	handler := NewEnrollmentHandler(eventRepo, enrollmentRepo, testHub(), nil)
	router := setupEnrollmentRouter(handler)

	enrollmentRepo.On("UpdateStatus", mock.Anything, 5, 101, models.StatusFinished).
		Return(models.Enrollment{EventID: 5, Dorsal: 101, AthleteName: "Ana", Status: models.StatusFinished}, nil).Once()

	body := bytes.NewBufferString(`{"status":"FINISHED"}`)
	req := httptest.NewRequest(http.MethodPost, "/events/5/enrollments/101/status", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got models.Enrollment
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, models.StatusFinished, got.Status)
	assert.Equal(t, "Ana", got.AthleteName)
	enrollmentRepo.AssertExpectations(t)
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	handler := NewEnrollmentHandler(new(mocks.EventRepositoryMock), new(mocks.EnrollmentRepositoryMock), testHub(), nil)
	router := setupEnrollmentRouter(handler)

	req := httptest.NewRequest(http.MethodPost, "/events/5/enrollments/101/status",
		bytes.NewBufferString(`{"status":"TELEPORTED"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateStatusUnknownDorsal(t *testing.T) {
	enrollmentRepo := new(mocks.EnrollmentRepositoryMock)
	handler := NewEnrollmentHandler(new(mocks.EventRepositoryMock), enrollmentRepo, testHub(), nil)
	router := setupEnrollmentRouter(handler)

	enrollmentRepo.On("UpdateStatus", mock.Anything, 5, 999, models.StatusDNF).
		Return(nil, repositories.ErrEnrollmentNotFound).Once()

	req := httptest.NewRequest(http.MethodPost, "/events/5/enrollments/999/status",
		bytes.NewBufferString(`{"status":"DNF"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	enrollmentRepo.AssertExpectations(t)
}
