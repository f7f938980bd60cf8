package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"

	"github.com/theerakarnm/ekoe-checkout/internal/auth"
)

type fakeKeyRepo struct {
	keys map[string]*auth.APIKeyInfo
}

func (f *fakeKeyRepo) FindByHash(_ context.Context, hash string) (*auth.APIKeyInfo, error) {
	if info, ok := f.keys[hash]; ok {
		return info, nil
	}
	return nil, errors.New("not found")
}

func TestRequireAPIKey(t *testing.T) {
	pepper := []byte("test-pepper")
	hash := auth.HashKey(pepper, "sk_live_valid")
	authenticator := auth.NewAuthenticator(&fakeKeyRepo{keys: map[string]*auth.APIKeyInfo{
		hash: {ID: "default", KeyHash: hash},
	}}, pepper)

	var reached bool
	protected := RequireAPIKey(authenticator)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		reached = true
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name       string
		key        string
		wantStatus int
		wantPass   bool
	}{
		{name: "valid key", key: "sk_live_valid", wantStatus: http.StatusNoContent, wantPass: true},
		{name: "wrong key", key: "sk_live_wrong", wantStatus: http.StatusUnauthorized},
		{name: "missing key", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reached = false

			req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", nil)
			if tt.key != "" {
				req.Header.Set(apiKeyHeader, tt.key)
			}
			rec := httptest.NewRecorder()
			protected.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantPass, reached)
		})
	}
}
