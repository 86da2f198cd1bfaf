package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"race-service/internal/mocks"
	"race-service/internal/models"
	"race-service/internal/repositories"
)

func setupMessageRouter(handler *MessageHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", 1)
		c.Set("userName", "marta")
		c.Set("userRole", "athlete")
		c.Next()
	})
	r.GET("/events/:event_id/messages", handler.GetEventMessages)
	r.POST("/events/:event_id/messages", handler.PostEventMessage)
	return r
}

func TestGetEventMessagesSuccess(t *testing.T) {
	eventRepo := new(mocks.EventRepositoryMock)
	messageRepo := new(mocks.MessageRepositoryMock)
	handler := NewMessageHandler(eventRepo, messageRepo, testHub())
	router := setupMessageRouter(handler)

	eventRepo.On("GetEvent", mock.Anything, 5).Return(models.Event{ID: 5}, nil).Once()
	messageRepo.On("GetEventMessages", mock.Anything, 5).Return([]models.Message{
		{ID: 1, EventID: 5, SenderName: "marta", Content: "hola"},
		{ID: 2, EventID: 5, SenderName: "jon", Content: "animo"},
	}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/events/5/messages", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Messages []models.Message `json:"messages"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Messages, 2)
	assert.Equal(t, "hola", resp.Messages[0].Content)

	eventRepo.AssertExpectations(t)
	messageRepo.AssertExpectations(t)
}

func TestGetEventMessagesEmptyIsNotNull(t *testing.T) {
	eventRepo := new(mocks.EventRepositoryMock)
	messageRepo := new(mocks.MessageRepositoryMock)
	handler := NewMessageHandler(eventRepo, messageRepo, testHub())
	router := setupMessageRouter(handler)

	eventRepo.On("GetEvent", mock.Anything, 5).Return(models.Event{ID: 5}, nil).Once()
	messageRepo.On("GetEventMessages", mock.Anything, 5).Return(([]models.Message)(nil), nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/events/5/messages", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"messages":[]}`, rec.Body.String())
}

func TestGetEventMessagesEventNotFound(t *testing.T) {
	eventRepo := new(mocks.EventRepositoryMock)
	handler := NewMessageHandler(eventRepo, new(mocks.MessageRepositoryMock), testHub())
	router := setupMessageRouter(handler)

	eventRepo.On("GetEvent", mock.Anything, 99).Return(nil, repositories.ErrEventNotFound).Once()

	req := httptest.NewRequest(http.MethodGet, "/events/99/messages", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPostEventMessageSuccess(t *testing.T) {
	eventRepo := new(mocks.EventRepositoryMock)
	messageRepo := new(mocks.MessageRepositoryMock)
	handler := NewMessageHandler(eventRepo, messageRepo, testHub())
	router := setupMessageRouter(handler)

	eventRepo.On("GetEvent", mock.Anything, 5).Return(models.Event{ID: 5}, nil).Once()
	messageRepo.On("CreateMessage", mock.Anything, 5, 1, "marta", "athlete", "hola a todos").
		Return(models.Message{ID: 10, EventID: 5, SenderID: 1, SenderName: "marta", Content: "hola a todos"}, nil).Once()

	body := bytes.NewBufferString(`{"content":"hola a todos"}`)
	req := httptest.NewRequest(http.MethodPost, "/events/5/messages", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var got models.Message
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, 10, got.ID)
	messageRepo.AssertExpectations(t)
}

func TestPostEventMessageRejectsWhitespaceOnly(t *testing.T) {
	eventRepo := new(mocks.EventRepositoryMock)
	handler := NewMessageHandler(eventRepo, new(mocks.MessageRepositoryMock), testHub())
	router := setupMessageRouter(handler)

	eventRepo.On("GetEvent", mock.Anything, 5).Return(models.Event{ID: 5}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/events/5/messages", bytes.NewBufferString(`{"content":"   "}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPostEventMessageRepoError(t *testing.T) {
	eventRepo := new(mocks.EventRepositoryMock)
	messageRepo := new(mocks.MessageRepositoryMock)
	handler := NewMessageHandler(eventRepo, messageRepo, testHub())
	router := setupMessageRouter(handler)

	eventRepo.On("GetEvent", mock.Anything, 5).Return(models.Event{ID: 5}, nil).Once()
	messageRepo.On("CreateMessage", mock.Anything, 5, 1, "marta", "athlete", "hola").
		Return(nil, assert.AnError).Once()

	req := httptest.NewRequest(http.MethodPost, "/events/5/messages", bytes.NewBufferString(`{"content":"hola"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	messageRepo.AssertExpectations(t)
}
