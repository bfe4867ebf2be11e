package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/ls-leads/internal/auth"
	"github.com/xavierca1/ls-leads/internal/entity"
	"github.com/xavierca1/ls-leads/internal/infra/database"
	"github.com/xavierca1/ls-leads/internal/infra/http/middleware"
	"github.com/xavierca1/ls-leads/internal/infra/logger"
	"github.com/xavierca1/ls-leads/internal/usecase"
)

type testServer struct {
	handler http.Handler
	mock    sqlmock.Sqlmock
	issuer  *auth.TokenIssuer
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	log := logger.NewTestLogger(t)
	store := database.NewStore(db)
	issuer := auth.NewTokenIssuer("segredo-de-teste", time.Hour)

	h := NewRouter(RouterConfig{
		AllowedOrigins: []string{"http://localhost:5173"},
		Authenticate:   middleware.Authenticate(issuer, nil, log),
		Health:         NewHealthHandler(nil, nil, nil, "test"),
		Leads: NewLeadHandler(
			usecase.NewCreateLeadUseCase(store, nil, usecase.NopMetrics, log),
			usecase.NewUpdateLeadUseCase(store, log),
			usecase.NewGetLeadUseCase(store),
			usecase.NewListLeadsUseCase(store),
			usecase.NewCheckCNPJUseCase(store),
			log,
		),
		Flow: NewWorkflowHandler(
			usecase.NewChangeStatusUseCase(store, usecase.NopMetrics, log),
			usecase.NewAssignLeadUseCase(store, nil, usecase.NopMetrics, log),
			usecase.NewRecordInteractionUseCase(store, log),
			usecase.NewAmendInteractionUseCase(store, log),
			log,
		),
		Reports: NewReportHandler(
			usecase.NewDashboardStatsUseCase(store, nil, log),
			usecase.NewManagerPerformanceUseCase(store),
			usecase.NewExportLeadsUseCase(store),
			log,
		),
		Users: NewUserHandler(
			usecase.NewListUsersUseCase(store),
			usecase.NewCreateUserUseCase(store, log),
			usecase.NewUpdateUserUseCase(store),
			usecase.NewDeactivateUserUseCase(store, log),
			usecase.NewLoginUseCase(store, issuer),
			log,
		),
	})
	return &testServer{handler: h, mock: mock, issuer: issuer}
}

func (s *testServer) do(t *testing.T, method, path, body string, role entity.Role) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		u := entity.NewUser(strings.ToLower(string(role))+"@ls.com.br", string(role), role, "", time.Now())
		token, _, err := s.issuer.Generate(u)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error.Code
}

func TestAPI_RequiresAuthentication(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/leads", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHENTICATED", errorCode(t, rec))
}

func TestAPI_Forbidden(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPatch, "/api/leads/lead-1/status", `{"status":"EM_CONTATO"}`, entity.RoleAliado)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, usecase.CodeForbidden, errorCode(t, rec))

	rec = s.do(t, http.MethodGet, "/api/dashboard/performance", "", entity.RoleGerente)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAPI_InvalidJSON(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/leads", `{"cnpj":`, entity.RoleAliado)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, usecase.CodeValidation, errorCode(t, rec))
}

func TestAPI_CreateLeadValidation(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/leads", `{"razaoSocial":"Acme","cnpj":"123","contactName":"Ana","contactPhone":"11987654321"}`, entity.RoleAliado)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body.Error.Fields)
	assert.Equal(t, "cnpj", body.Error.Fields[0].Field)
}

func TestAPI_CheckCNPJ(t *testing.T) {
	t.Run("malformed is 400 with valid=false", func(t *testing.T) {
		s := newTestServer(t)
		rec := s.do(t, http.MethodGet, "/api/leads/check-cnpj?cnpj=123", "", entity.RoleAliado)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		var out usecase.CheckCNPJOutput
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
		assert.False(t, out.Valid)
	})

	t.Run("unknown company", func(t *testing.T) {
		s := newTestServer(t)
		s.mock.ExpectQuery(regexp.QuoteMeta("FROM companies WHERE cnpj = $1")).
			WithArgs("11222333000181").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		rec := s.do(t, http.MethodGet, "/api/leads/check-cnpj?cnpj=11.222.333/0001-81", "", entity.RoleAliado)
		assert.Equal(t, http.StatusOK, rec.Code)

		var out usecase.CheckCNPJOutput
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
		assert.True(t, out.Valid)
		assert.False(t, out.Exists)
		assert.Contains(t, rec.Body.String(), `"activeLead":null`)
		assert.NoError(t, s.mock.ExpectationsWereMet())
	})
}

// Corpos em camelCase precisam chegar ao caso de uso; um campo ignorado
// aparece como 400 antes de qualquer leitura no banco.
func TestAPI_WorkflowBodiesUseCamelCase(t *testing.T) {
	missingLead := func(s *testServer) {
		s.mock.ExpectBegin()
		s.mock.ExpectQuery(regexp.QuoteMeta("FROM leads l WHERE l.id = $1")).
			WithArgs("lead-x").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))
		s.mock.ExpectRollback()
	}

	cases := []struct {
		name   string
		method string
		path   string
		body   string
		role   entity.Role
	}{
		{"close reason alone", http.MethodPatch, "/api/leads/lead-x/status", `{"closeReason":"VENDA_REALIZADA","closeReasonDetail":"contrato assinado"}`, entity.RoleGerente},
		{"assign", http.MethodPost, "/api/leads/lead-x/assign", `{"responsavelId":"g-1","notes":"carteira SP"}`, entity.RoleAdmin},
		{"amend interaction", http.MethodPut, "/api/leads/lead-x/interactions", `{"interactionId":"i-1","notes":"retornar amanhã"}`, entity.RoleGerente},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestServer(t)
			missingLead(s)

			rec := s.do(t, tc.method, tc.path, tc.body, tc.role)
			assert.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())
			assert.Equal(t, usecase.CodeNotFound, errorCode(t, rec))
			assert.NoError(t, s.mock.ExpectationsWereMet())
		})
	}
}

func TestAPI_ListLeads(t *testing.T) {
	s := newTestServer(t)
	s.mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM leads l")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	rec := s.do(t, http.MethodGet, "/api/leads?page=2&limit=10&status=PENDENTE", "", entity.RoleAliado)
	require.Equal(t, http.StatusOK, rec.Code)

	var out usecase.ListLeadsOutput
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, 0, out.Total)
	assert.Equal(t, 2, out.Page)
	assert.Equal(t, 10, out.Limit)
	assert.Empty(t, out.Data)

	rec = s.do(t, http.MethodGet, "/api/leads?page=abc", "", entity.RoleAliado)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPI_Export(t *testing.T) {
	t.Run("csv with header only", func(t *testing.T) {
		s := newTestServer(t)
		s.mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM leads l")).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		rec := s.do(t, http.MethodGet, "/api/reports/export", "", entity.RoleAdmin)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Header().Get("Content-Disposition"), ".csv")
		assert.True(t, strings.HasPrefix(rec.Body.String(), "lead_id,empresa,cnpj"))
	})

	t.Run("unknown format", func(t *testing.T) {
		s := newTestServer(t)
		rec := s.do(t, http.MethodGet, "/api/reports/export?format=pdf", "", entity.RoleAdmin)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("aliado cannot export", func(t *testing.T) {
		s := newTestServer(t)
		rec := s.do(t, http.MethodGet, "/api/reports/export", "", entity.RoleAliado)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestAPI_LoginValidation(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/auth/login", `{"email":"nao-e-email","password":""}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPI_StorageFailureIs500(t *testing.T) {
	s := newTestServer(t)
	s.mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM leads l")).
		WillReturnError(errors.New("connection reset by peer"))

	rec := s.do(t, http.MethodGet, "/api/leads", "", entity.RoleAdmin)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "INTERNAL_ERROR", errorCode(t, rec))
	assert.NotContains(t, rec.Body.String(), "connection reset")
}

func TestRespondError_StatusMapping(t *testing.T) {
	cases := map[error]int{
		usecase.ErrUnauthenticated: http.StatusUnauthorized,
		usecase.ErrForbidden:       http.StatusForbidden,
		usecase.ErrValidation:      http.StatusBadRequest,
		usecase.ErrTransition:      http.StatusConflict,
		usecase.ErrCloseReason:     http.StatusBadRequest,
		usecase.ErrNotFound:        http.StatusNotFound,
		usecase.ErrConflict:        http.StatusConflict,
	}
	for err, want := range cases {
		rec := httptest.NewRecorder()
		respondError(rec, logger.NewTestLogger(t), err)
		assert.Equal(t, want, rec.Code, err.Error())
	}
}

type failingPinger struct{}

func (failingPinger) PingContext(context.Context) error { return errors.New("refused") }

type closedBroker struct{}

func (closedBroker) IsClosed() bool { return true }

func TestHealth(t *testing.T) {
	t.Run("nothing configured is healthy", func(t *testing.T) {
		rec := httptest.NewRecorder()
		NewHealthHandler(nil, nil, nil, "1.0.0").Handle(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, rec.Code)

		var body HealthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "healthy", body.Status)
		assert.Equal(t, "not configured", body.Dependencies["redis"])
	})

	t.Run("failing dependency degrades", func(t *testing.T) {
		rec := httptest.NewRecorder()
		NewHealthHandler(failingPinger{}, closedBroker{}, nil, "1.0.0").Handle(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

		var body HealthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "degraded", body.Status)
		assert.Equal(t, "unhealthy: refused", body.Dependencies["database"])
		assert.Equal(t, "unhealthy: connection closed", body.Dependencies["rabbitmq"])
	})
}
