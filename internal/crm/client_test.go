package crm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salesops/crm-import/internal/core"
)

func testPayload() core.CompanyPayload {
	return core.CompanyPayload{
		Name:          "Tech Solutions Inc.",
		Industry:      "Technology",
		EmployeeCount: 150,
		Status:        "active",
	}
}

func TestCreateCompanySuccess(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody core.CompanyPayload

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(core.CreatedCompany{
			ID:              "cmp_123",
			Name:            "Tech Solutions Inc.",
			CorporateNumber: "1234567890123",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", nil)
	created, err := client.CreateCompany(context.Background(), testPayload())

	require.NoError(t, err)
	assert.Equal(t, "/companies", gotPath)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "Tech Solutions Inc.", gotBody.Name)
	assert.Equal(t, 150, gotBody.EmployeeCount)
	assert.False(t, gotBody.IsGlobalNG)
	assert.Equal(t, "cmp_123", created.ID)
	assert.Equal(t, "1234567890123", created.CorporateNumber)
}

func TestCreateCompanyErrorMapping(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		body         string
		wantCategory core.OutcomeCategory
		wantMessage  string
	}{
		{
			name:         "409 conflict is duplicate",
			status:       http.StatusConflict,
			body:         `{"message":"法人番号が既に登録されています"}`,
			wantCategory: core.OutcomeDuplicate,
			wantMessage:  "法人番号が既に登録されています",
		},
		{
			name:         "422 is validation",
			status:       http.StatusUnprocessableEntity,
			body:         `{"error":"invalid email"}`,
			wantCategory: core.OutcomeValidation,
			wantMessage:  "invalid email",
		},
		{
			name:         "400 is validation",
			status:       http.StatusBadRequest,
			body:         `{}`,
			wantCategory: core.OutcomeValidation,
			wantMessage:  "",
		},
		{
			name:         "500 is other",
			status:       http.StatusInternalServerError,
			body:         `{"message":"internal error"}`,
			wantCategory: core.OutcomeOther,
			wantMessage:  "internal error",
		},
		{
			name:         "non-json error body tolerated",
			status:       http.StatusBadGateway,
			body:         `upstream unavailable`,
			wantCategory: core.OutcomeOther,
			wantMessage:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewClient(server.URL, "", nil)
			_, err := client.CreateCompany(context.Background(), testPayload())

			require.Error(t, err)
			var apiErr *core.APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.wantCategory, apiErr.Category)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.wantMessage, apiErr.Message)
		})
	}
}

func TestCreateCompanyConnectionRefused(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", "", nil)
	_, err := client.CreateCompany(context.Background(), testPayload())

	require.Error(t, err)
	var apiErr *core.APIError
	assert.False(t, errors.As(err, &apiErr), "transport errors must not be APIErrors")

	category, message := core.ClassifyError(err)
	assert.Equal(t, core.OutcomeOther, category)
	assert.Equal(t, "サーバーに接続できませんでした", message)
}

func TestCreateCompanyContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient(server.URL, "", nil)
	_, err := client.CreateCompany(ctx, testPayload())
	require.Error(t, err)
}

func TestNewClientTrimsTrailingSlash(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/companies", r.URL.Path)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"cmp_1"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL+"/", "", nil)
	_, err := client.CreateCompany(context.Background(), testPayload())
	require.NoError(t, err)
}
