package sender

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/speechtospeechai/accounts-service/internal/lib/smtp"
	"github.com/speechtospeechai/accounts-service/internal/models"
)

type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Connect() (smtp.Client, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(smtp.Client), args.Error(1)
}

func (m *MockTransport) GetSMTPUser() string {
	args := m.Called()
	return args.String(0)
}

type MockSMTPClient struct {
	mock.Mock
}

func (m *MockSMTPClient) Mail(from string) error {
	args := m.Called(from)
	return args.Error(0)
}

func (m *MockSMTPClient) Rcpt(to string) error {
	args := m.Called(to)
	return args.Error(0)
}

func (m *MockSMTPClient) Data() (io.WriteCloser, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.WriteCloser), args.Error(1)
}

func (m *MockSMTPClient) Close() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockSMTPClient) Quit() error {
	args := m.Called()
	return args.Error(0)
}

type MockSMTPWriter struct {
	mock.Mock

	written []byte
}

func (m *MockSMTPWriter) Write(p []byte) (n int, err error) {
	args := m.Called(p)
	m.written = append(m.written, p...)
	return args.Int(0), args.Error(1)
}

func (m *MockSMTPWriter) Close() error {
	args := m.Called()
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func setupHappyPath(transport *MockTransport) *MockSMTPWriter {
	mockClient := new(MockSMTPClient)
	mockWriter := new(MockSMTPWriter)

	transport.On("GetSMTPUser").Return("sender@example.com")
	transport.On("Connect").Return(mockClient, nil).Once()
	mockClient.On("Mail", "sender@example.com").Return(nil).Once()
	mockClient.On("Rcpt", "user@example.com").Return(nil).Once()
	mockClient.On("Data").Return(mockWriter, nil).Once()
	mockWriter.On("Write", mock.AnythingOfType("[]uint8")).Return(100, nil).Once()
	mockWriter.On("Close").Return(nil).Once()
	mockClient.On("Quit").Return(nil).Once()
	mockClient.On("Close").Return(nil).Once()
	return mockWriter
}

func TestHandleJob_Verification(t *testing.T) {
	transport := new(MockTransport)
	writer := setupHappyPath(transport)
	service := New(transport, "https://example.com", newNoopLogger())

	body, err := json.Marshal(models.EmailJob{
		Kind:   models.EmailKindVerification,
		To:     "user@example.com",
		Locale: "en",
		Code:   "123456",
	})
	require.NoError(t, err)

	err = service.HandleJob(body)
	assert.NoError(t, err)

	msg := string(writer.written)
	assert.Contains(t, msg, "Subject: Your verification code")
	assert.Contains(t, msg, "123456")
	assert.Contains(t, msg, "To: user@example.com")

	transport.AssertExpectations(t)
}

func TestHandleJob_LostPassword(t *testing.T) {
	transport := new(MockTransport)
	writer := setupHappyPath(transport)
	service := New(transport, "https://example.com", newNoopLogger())

	body, err := json.Marshal(models.EmailJob{
		Kind:   models.EmailKindLostPassword,
		To:     "user@example.com",
		Locale: "en",
		Token:  "restore-token-xyz",
	})
	require.NoError(t, err)

	err = service.HandleJob(body)
	assert.NoError(t, err)

	msg := string(writer.written)
	assert.Contains(t, msg, "Subject: Restore your password")
	assert.Contains(t, msg, "https://example.com/restore-password?token=restore-token-xyz")

	transport.AssertExpectations(t)
}

func TestHandleJob_InvalidJSON(t *testing.T) {
	transport := new(MockTransport)
	service := New(transport, "https://example.com", newNoopLogger())

	err := service.HandleJob([]byte(`invalid json`))

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "error unmarshalling email job")
	transport.AssertExpectations(t)
}

func TestHandleJob_UnknownKind(t *testing.T) {
	transport := new(MockTransport)
	service := New(transport, "https://example.com", newNoopLogger())

	body, err := json.Marshal(models.EmailJob{Kind: "newsletter", To: "user@example.com"})
	require.NoError(t, err)

	err = service.HandleJob(body)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown email job kind")
	transport.AssertExpectations(t)
}

func TestHandleJob_SMTPErrors(t *testing.T) {
	body, _ := json.Marshal(models.EmailJob{
		Kind: models.EmailKindVerification,
		To:   "user@example.com",
		Code: "123456",
	})

	tests := []struct {
		name         string
		setupMocks   func(*MockTransport)
		errorMessage string
	}{
		{
			name: "connection error",
			setupMocks: func(transport *MockTransport) {
				transport.On("GetSMTPUser").Return("sender@example.com")
				transport.On("Connect").Return(nil, errors.New("connection error")).Once()
			},
			errorMessage: "connection error",
		},
		{
			name: "mail error",
			setupMocks: func(transport *MockTransport) {
				mockClient := new(MockSMTPClient)

				transport.On("GetSMTPUser").Return("sender@example.com")
				transport.On("Connect").Return(mockClient, nil).Once()
				mockClient.On("Mail", "sender@example.com").Return(errors.New("mail error")).Once()
				mockClient.On("Close").Return(nil).Once()
			},
			errorMessage: "mail error",
		},
		{
			name: "rcpt error",
			setupMocks: func(transport *MockTransport) {
				mockClient := new(MockSMTPClient)

				transport.On("GetSMTPUser").Return("sender@example.com")
				transport.On("Connect").Return(mockClient, nil).Once()
				mockClient.On("Mail", "sender@example.com").Return(nil).Once()
				mockClient.On("Rcpt", "user@example.com").Return(errors.New("rcpt error")).Once()
				mockClient.On("Close").Return(nil).Once()
			},
			errorMessage: "rcpt error",
		},
		{
			name: "data error",
			setupMocks: func(transport *MockTransport) {
				mockClient := new(MockSMTPClient)

				transport.On("GetSMTPUser").Return("sender@example.com")
				transport.On("Connect").Return(mockClient, nil).Once()
				mockClient.On("Mail", "sender@example.com").Return(nil).Once()
				mockClient.On("Rcpt", "user@example.com").Return(nil).Once()
				mockClient.On("Data").Return(nil, errors.New("data error")).Once()
				mockClient.On("Close").Return(nil).Once()
			},
			errorMessage: "data error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := new(MockTransport)
			tt.setupMocks(transport)
			service := New(transport, "https://example.com", newNoopLogger())

			err := service.HandleJob(body)

			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorMessage)
			transport.AssertExpectations(t)
		})
	}
}
