package httpadapter

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/slidespace/backend/internal/adapters/http/session"
	"github.com/slidespace/backend/internal/config"
	"github.com/slidespace/backend/internal/core/domain"
	"github.com/slidespace/backend/internal/core/ports"
)

type fakeDocumentService struct {
	uploadErr error
}

func (f *fakeDocumentService) Upload(_ context.Context, userID, filename string, body io.Reader) (*domain.Document, error) {
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	_, _ = io.ReadAll(body)
	return &domain.Document{ID: "doc-1", UserID: userID, Title: filename, MimeType: domain.MimePDF}, nil
}

func (f *fakeDocumentService) Get(_ context.Context, userID, documentID string) (*domain.Document, *domain.WorkflowState, error) {
	return &domain.Document{ID: documentID, UserID: userID},
		&domain.WorkflowState{DocumentID: documentID, Stage: domain.StageUploaded}, nil
}

type fakeTitleService struct {
	extractErr error
}

func (f *fakeTitleService) Extract(context.Context, string, string) (*domain.TitleExtraction, error) {
	if f.extractErr != nil {
		return nil, f.extractErr
	}
	return &domain.TitleExtraction{
		SessionID: "handle-1",
		Titles:    []domain.TitleEntry{{Index: 0, Title: "Intro"}},
	}, nil
}

func (f *fakeTitleService) Save(_ context.Context, _, documentID string, entries []domain.TitleInput) (*domain.TitleSet, error) {
	set := &domain.TitleSet{DocumentID: documentID}
	for i, e := range entries {
		set.Entries = append(set.Entries, domain.TitleEntry{Index: i, Title: e.Title})
	}
	return set, nil
}

func (f *fakeTitleService) Get(_ context.Context, _, documentID string) (*domain.TitleSet, error) {
	return &domain.TitleSet{DocumentID: documentID}, nil
}

type fakeDeckService struct {
	generateErr error
}

func (f *fakeDeckService) Generate(_ context.Context, _, documentID string) (*domain.SlideDeck, error) {
	if f.generateErr != nil {
		return nil, f.generateErr
	}
	return &domain.SlideDeck{DocumentID: documentID, Slides: []domain.Slide{{Title: "Intro"}}}, nil
}

func (f *fakeDeckService) Get(_ context.Context, _, documentID string) (*domain.SlideDeck, error) {
	return &domain.SlideDeck{DocumentID: documentID}, nil
}

func (f *fakeDeckService) Save(_ context.Context, _, documentID string, slides []domain.Slide) (*domain.SlideDeck, error) {
	return &domain.SlideDeck{DocumentID: documentID, Slides: slides}, nil
}

type fakeExportService struct{}

func (f *fakeExportService) Generate(_ context.Context, _, documentID string, variant domain.PPTXVariant, _ []domain.Slide) (*ports.ExportResult, error) {
	return &ports.ExportResult{
		Artifact: domain.PPTXArtifact{ID: "art-1", DocumentID: documentID, Variant: variant, Filename: "default_pptx_doc-1_1.pptx"},
		Data:     []byte("PK\x03\x04"),
	}, nil
}

func (f *fakeExportService) List(context.Context, string, string, domain.PPTXVariant) ([]domain.PPTXArtifact, error) {
	return nil, nil
}

func (f *fakeExportService) Download(_ context.Context, _, artifactID string, _ domain.PPTXVariant) (*ports.ExportResult, error) {
	return &ports.ExportResult{
		Artifact: domain.PPTXArtifact{ID: artifactID, Filename: "default_pptx_doc-1_1.pptx"},
		Data:     []byte("PK\x03\x04"),
	}, nil
}

type fakeWorkspaceService struct{}

func (f *fakeWorkspaceService) Clear(context.Context, string, string) error { return nil }

type fakeAuthService struct{}

func (f *fakeAuthService) Register(_ context.Context, name, email, _ string) (*domain.User, error) {
	return &domain.User{ID: "u-1", Name: name, Email: email, Role: domain.RoleUser}, nil
}

func (f *fakeAuthService) Login(_ context.Context, email, password string) (*domain.User, error) {
	if password != "correct horse" {
		return nil, domain.WrapError(domain.ErrUnauthorized, "login", fmt.Errorf("invalid credentials"))
	}
	role := domain.RoleUser
	if email == "admin@example.com" {
		role = domain.RoleAdmin
	}
	return &domain.User{ID: "u-1", Name: "Ada", Email: email, Role: role}, nil
}

func (f *fakeAuthService) GetUser(_ context.Context, id string) (*domain.User, error) {
	return &domain.User{ID: id, Name: "Ada", Role: domain.RoleUser}, nil
}

type fakeReportService struct{}

func (f *fakeReportService) UsageReport(context.Context) ([]domain.UsageRow, error) {
	return []domain.UsageRow{{UserName: "Ada", UserEmail: "ada@example.com", DocumentCount: 1}}, nil
}

type testEnv struct {
	handler http.Handler
	titles  *fakeTitleService
	decks   *fakeDeckService
}

func newTestEnv(t *testing.T, cfg config.Config) *testEnv {
	t.Helper()
	if cfg.MaxUploadMB == 0 {
		cfg.MaxUploadMB = 10
	}

	sessions, err := session.NewManager("router-test-secret", time.Hour, false)
	if err != nil {
		t.Fatalf("session manager: %v", err)
	}

	titles := &fakeTitleService{}
	decks := &fakeDeckService{}
	router := NewRouter(
		cfg,
		sessions,
		nil,
		&fakeDocumentService{},
		titles,
		decks,
		&fakeExportService{},
		&fakeWorkspaceService{},
		&fakeAuthService{},
		&fakeReportService{},
	)
	return &testEnv{handler: router.Handler(), titles: titles, decks: decks}
}

type clientSession struct {
	cookie *http.Cookie
	csrf   string
}

func (env *testEnv) login(t *testing.T, email string) *clientSession {
	t.Helper()
	payload, _ := json.Marshal(map[string]string{"email": email, "password": "correct horse"})
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", bytes.NewReader(payload))
	res := httptest.NewRecorder()
	env.handler.ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("login expected 200, got %d: %s", res.Code, res.Body.String())
	}

	var body sessionResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	cookies := res.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected session cookie, got %v", cookies)
	}
	return &clientSession{cookie: cookies[0], csrf: body.CSRF}
}

func (env *testEnv) do(t *testing.T, s *clientSession, method, target string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if s != nil {
		req.AddCookie(s.cookie)
		if method != http.MethodGet {
			req.Header.Set(session.CSRFHeader, s.csrf)
		}
	}
	res := httptest.NewRecorder()
	env.handler.ServeHTTP(res, req)
	return res
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t, config.Config{})
	res := env.do(t, nil, http.MethodGet, "/healthz", nil, "")
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
}

func TestProtectedEndpointsRequireSession(t *testing.T) {
	env := newTestEnv(t, config.Config{})

	res := env.do(t, nil, http.MethodGet, "/v1/documents/doc-1", nil, "")
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.Code)
	}
}

func TestMutatingRequestsRequireCSRF(t *testing.T) {
	env := newTestEnv(t, config.Config{})
	s := env.login(t, "ada@example.com")

	req := httptest.NewRequest(http.MethodPost, "/v1/documents/doc-1/titles/extract", nil)
	req.AddCookie(s.cookie)
	res := httptest.NewRecorder()
	env.handler.ServeHTTP(res, req)
	if res.Code != http.StatusForbidden {
		t.Fatalf("expected 403 without csrf header, got %d", res.Code)
	}

	withToken := env.do(t, s, http.MethodPost, "/v1/documents/doc-1/titles/extract", nil, "")
	if withToken.Code != http.StatusOK {
		t.Fatalf("expected 200 with csrf header, got %d: %s", withToken.Code, withToken.Body.String())
	}
}

func TestUploadMultipart(t *testing.T) {
	env := newTestEnv(t, config.Config{})
	s := env.login(t, "ada@example.com")

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "paper.pdf")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	_, _ = part.Write([]byte("%PDF-stub"))
	_ = writer.Close()

	res := env.do(t, s, http.MethodPost, "/v1/documents", &buf, writer.FormDataContentType())
	if res.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", res.Code, res.Body.String())
	}

	var doc domain.Document
	if err := json.NewDecoder(res.Body).Decode(&doc); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if doc.ID != "doc-1" || doc.UserID != "u-1" {
		t.Fatalf("unexpected document: %+v", doc)
	}
}

func TestUploadWithoutFileFieldIs400(t *testing.T) {
	env := newTestEnv(t, config.Config{})
	s := env.login(t, "ada@example.com")

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	_ = writer.WriteField("note", "no file here")
	_ = writer.Close()

	res := env.do(t, s, http.MethodPost, "/v1/documents", &buf, writer.FormDataContentType())
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestWorkflowOrderMapsTo409(t *testing.T) {
	env := newTestEnv(t, config.Config{})
	env.decks.generateErr = domain.WrapError(domain.ErrWorkflowOrder, "generate slides", fmt.Errorf("titles not saved"))
	s := env.login(t, "ada@example.com")

	res := env.do(t, s, http.MethodPost, "/v1/documents/doc-1/slides/generate", nil, "")
	if res.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", res.Code)
	}
}

func TestUpstreamFailureMapsTo502(t *testing.T) {
	env := newTestEnv(t, config.Config{})
	env.titles.extractErr = domain.WrapError(domain.ErrUpstream, "ml.extract_titles", fmt.Errorf("remote broke"))
	s := env.login(t, "ada@example.com")

	res := env.do(t, s, http.MethodPost, "/v1/documents/doc-1/titles/extract", nil, "")
	if res.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", res.Code)
	}
}

func TestExportReturnsArtifactAndContent(t *testing.T) {
	env := newTestEnv(t, config.Config{})
	s := env.login(t, "ada@example.com")

	payload := bytes.NewReader([]byte(`{"variant":"default"}`))
	res := env.do(t, s, http.MethodPost, "/v1/documents/doc-1/exports", payload, "application/json")
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}

	var body exportResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("decode export response: %v", err)
	}
	if body.Artifact.ID != "art-1" || body.Artifact.Filename == "" {
		t.Fatalf("unexpected artifact: %+v", body.Artifact)
	}
	data, err := base64.StdEncoding.DecodeString(body.ContentBase64)
	if err != nil {
		t.Fatalf("decode content: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("PK")) {
		t.Fatalf("expected pptx bytes, got %q", data)
	}
}

func TestDownloadAcceptsEmptyBody(t *testing.T) {
	env := newTestEnv(t, config.Config{})
	s := env.login(t, "ada@example.com")

	res := env.do(t, s, http.MethodPost, "/v1/exports/art-1/download", nil, "")
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
}

func TestCSRFEndpointMintsAnonymousSession(t *testing.T) {
	env := newTestEnv(t, config.Config{})

	res := env.do(t, nil, http.MethodGet, "/v1/auth/csrf", nil, "")
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["csrf_token"] == "" {
		t.Fatalf("expected csrf token in response")
	}
	cookies := res.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != session.CookieName {
		t.Fatalf("expected anonymous session cookie, got %v", cookies)
	}

	// The anonymous session must not open protected routes.
	req := httptest.NewRequest(http.MethodGet, "/v1/documents/doc-1", nil)
	req.AddCookie(cookies[0])
	protected := httptest.NewRecorder()
	env.handler.ServeHTTP(protected, req)
	if protected.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for anonymous session, got %d", protected.Code)
	}
}

func TestAdminReportRejectsRegularUser(t *testing.T) {
	env := newTestEnv(t, config.Config{})

	user := env.login(t, "ada@example.com")
	res := env.do(t, user, http.MethodGet, "/v1/admin/reports/usage.xlsx", nil, "")
	if res.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for user role, got %d", res.Code)
	}

	admin := env.login(t, "admin@example.com")
	res = env.do(t, admin, http.MethodGet, "/v1/admin/reports/usage.xlsx", nil, "")
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin, got %d", res.Code)
	}
	if got := res.Header().Get("Content-Type"); got != xlsxContentType {
		t.Fatalf("content type = %s", got)
	}
}

func TestListExportsReturnsEmptyArray(t *testing.T) {
	env := newTestEnv(t, config.Config{})
	s := env.login(t, "ada@example.com")

	res := env.do(t, s, http.MethodGet, "/v1/documents/doc-1/exports?variant=ga", nil, "")
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}

	var body struct {
		Exports []domain.PPTXArtifact `json:"exports"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Exports == nil {
		t.Fatalf("exports must encode as [] not null")
	}
}
