package mocks

import (
	"context"
	"database/sql"

	"github.com/stretchr/testify/mock"

	"race-service/internal/models"
)

type EventRepositoryMock struct {
	mock.Mock
}

func (m *EventRepositoryMock) GetEvent(ctx context.Context, eventID int) (models.Event, error) {
	args := m.Called(ctx, eventID)
	var event models.Event
	if val := args.Get(0); val != nil {
		event = val.(models.Event)
	}
	return event, args.Error(1)
}

func (m *EventRepositoryMock) CreateEvent(ctx context.Context, name string, startsAt sql.NullTime) (models.Event, error) {
	args := m.Called(ctx, name, startsAt)
	var event models.Event
	if val := args.Get(0); val != nil {
		event = val.(models.Event)
	}
	return event, args.Error(1)
}

type EnrollmentRepositoryMock struct {
	mock.Mock
}

func (m *EnrollmentRepositoryMock) ListByEvent(ctx context.Context, eventID int) ([]models.Enrollment, error) {
	args := m.Called(ctx, eventID)
	var list []models.Enrollment
	if val := args.Get(0); val != nil {
		list = val.([]models.Enrollment)
	}
	return list, args.Error(1)
}

func (m *EnrollmentRepositoryMock) Enroll(ctx context.Context, eventID int, dorsal int, athleteName string) (models.Enrollment, error) {
	args := m.Called(ctx, eventID, dorsal, athleteName)
	var enrollment models.Enrollment
	if val := args.Get(0); val != nil {
		enrollment = val.(models.Enrollment)
	}
	return enrollment, args.Error(1)
}

func (m *EnrollmentRepositoryMock) UpdateStatus(ctx context.Context, eventID int, dorsal int, status string) (models.Enrollment, error) {
	args := m.Called(ctx, eventID, dorsal, status)
	var enrollment models.Enrollment
	if val := args.Get(0); val != nil {
		enrollment = val.(models.Enrollment)
	}
	return enrollment, args.Error(1)
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) CreateMessage(ctx context.Context, eventID int, senderID int, senderName, senderRole, content string) (models.Message, error) {
	args := m.Called(ctx, eventID, senderID, senderName, senderRole, content)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) GetEventMessages(ctx context.Context, eventID int) ([]models.Message, error) {
	args := m.Called(ctx, eventID)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Error(1)
}
