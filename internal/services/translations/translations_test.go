package translations

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/speechtospeechai/accounts-service/internal/models"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) ListLanguages(ctx context.Context) ([]*models.Language, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Language), args.Error(1)
}

func (m *MockRepository) GetTextByLang(ctx context.Context, iso string) (map[string]string, error) {
	args := m.Called(ctx, iso)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]string), args.Error(1)
}

type fakeCache struct {
	data map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string][]byte)}
}

func (f *fakeCache) Get(key string, result any) (bool, error) {
	raw, ok := f.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, result)
}

func (f *fakeCache) Set(key string, value any, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.data[key] = raw
	return nil
}

func (f *fakeCache) Invalidate(key string) error {
	delete(f.data, key)
	return nil
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

var siteLanguages = []*models.Language{
	{ISO: "de", Name: "Deutsch"},
	{ISO: "en", Name: "English"},
}

func TestLanguages_CachesRepositoryResult(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	repo.On("ListLanguages", mock.Anything).Return(siteLanguages, nil).Once()

	service := New(repo, newFakeCache(), "en", newNoopLogger())

	// Первый вызов идет в репозиторий, второй обслуживается кешем.
	for range 2 {
		langs, err := service.Languages(ctx)
		require.NoError(t, err)
		require.Len(t, langs, 2)
		assert.Equal(t, "de", langs[0].ISO)
	}

	repo.AssertExpectations(t)
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		iso  string
		want string
	}{
		{name: "known language", iso: "de", want: "de"},
		{name: "unknown falls back to default", iso: "fr", want: "en"},
		{name: "empty falls back to default", iso: "", want: "en"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			repo.On("ListLanguages", mock.Anything).Return(siteLanguages, nil).Once()
			service := New(repo, newFakeCache(), "en", newNoopLogger())

			lang, err := service.Resolve(context.Background(), tt.iso)
			require.NoError(t, err)
			assert.Equal(t, tt.want, lang.ISO)
		})
	}
}

func TestCatalog(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	repo.On("GetTextByLang", mock.Anything, "de").
		Return(map[string]string{"welcome": "Willkommen"}, nil).Once()

	service := New(repo, newFakeCache(), "en", newNoopLogger())

	for range 2 {
		catalog, err := service.Catalog(ctx, "de")
		require.NoError(t, err)
		assert.Equal(t, "Willkommen", catalog["welcome"])
	}

	repo.AssertExpectations(t)
}

func TestCatalog_RepositoryError(t *testing.T) {
	repo := new(MockRepository)
	repo.On("GetTextByLang", mock.Anything, "de").Return(nil, errors.New("db down")).Once()

	service := New(repo, newFakeCache(), "en", newNoopLogger())

	_, err := service.Catalog(context.Background(), "de")
	assert.Error(t, err)
}

func TestRequestLanguage(t *testing.T) {
	service := New(new(MockRepository), newFakeCache(), "en", newNoopLogger())

	tests := []struct {
		name           string
		cookie         string
		acceptLanguage string
		want           string
	}{
		{name: "cookie wins", cookie: "de", acceptLanguage: "fr-FR,fr;q=0.9", want: "de"},
		{name: "accept-language header", acceptLanguage: "fr-FR,fr;q=0.9,en;q=0.8", want: "fr"},
		{name: "region stripped", acceptLanguage: "pt-BR", want: "pt"},
		{name: "default when nothing given", want: "en"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "lang", Value: tt.cookie})
			}
			if tt.acceptLanguage != "" {
				req.Header.Set("Accept-Language", tt.acceptLanguage)
			}
			assert.Equal(t, tt.want, service.RequestLanguage(req))
		})
	}
}
