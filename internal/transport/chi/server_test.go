package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	chipkg "github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kindred-cloud/kindred/internal/domain"
	dompost "github.com/kindred-cloud/kindred/internal/domain/post"
	"github.com/kindred-cloud/kindred/internal/domain/semantic"
	healthuc "github.com/kindred-cloud/kindred/internal/usecase/health"
	ingestuc "github.com/kindred-cloud/kindred/internal/usecase/ingest"
	relateduc "github.com/kindred-cloud/kindred/internal/usecase/related"
)

// memRepo is an in-memory post store backing the ingest service in tests.
type memRepo struct {
	posts map[string]dompost.Post
}

func newMemRepo() *memRepo {
	return &memRepo{posts: make(map[string]dompost.Post)}
}

func (r *memRepo) Upsert(_ context.Context, p *dompost.Post, _ []float32) (bool, error) {
	_, existed := r.posts[p.Slug()]
	r.posts[p.Slug()] = *p
	return !existed, nil
}

func (r *memRepo) Get(_ context.Context, slug string) (dompost.Post, error) {
	p, ok := r.posts[slug]
	if !ok {
		return dompost.Post{}, domain.ErrPostNotFound
	}
	return p, nil
}

func (r *memRepo) ListAll(_ context.Context) ([]dompost.Post, error) {
	out := make([]dompost.Post, 0, len(r.posts))
	for _, p := range r.posts {
		out = append(out, p)
	}
	return out, nil
}

func (r *memRepo) Delete(_ context.Context, slug string) error {
	if _, ok := r.posts[slug]; !ok {
		return domain.ErrPostNotFound
	}
	delete(r.posts, slug)
	return nil
}

func (r *memRepo) EnsureIndex(_ context.Context) error   { return nil }
func (r *memRepo) RecreateIndex(_ context.Context) error { return nil }

type stubEmbedder struct{ err error }

func (e *stubEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	if e.err != nil {
		return domain.EmbeddingResult{}, e.err
	}
	return domain.EmbeddingResult{Embedding: []float32{0.1, 0.2}}, nil
}

type stubSearcher struct {
	matches []semantic.Match
	err     error
}

func (s *stubSearcher) Search(_ context.Context, _ string, _ int) ([]semantic.Match, error) {
	return s.matches, s.err
}

type stubPinger struct{ err error }

func (p *stubPinger) Ping(_ context.Context) error { return p.err }

type testEnv struct {
	repo     *memRepo
	searcher *stubSearcher
	pinger   *stubPinger
	router   chipkg.Router
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		repo:     newMemRepo(),
		searcher: &stubSearcher{},
		pinger:   &stubPinger{},
	}

	logger := zap.NewNop()
	posts := ingestuc.New(env.repo, &stubEmbedder{}, logger)
	related := relateduc.New(env.repo, env.searcher, logger)
	health := healthuc.New(env.pinger, nil)

	env.router = chipkg.NewRouter()
	NewServer(posts, related, health, logger).Routes(env.router)
	return env
}

func (e *testEnv) seed(t *testing.T, slug, title, series string, tags []string) {
	t.Helper()
	p, err := dompost.New(slug, title, "about "+slug, "2025-01-01",
		"/blog/"+slug, "", tags, series, 0)
	if err != nil {
		t.Fatalf("seed post %s: %v", slug, err)
	}
	e.repo.posts[slug] = p
}

func (e *testEnv) do(method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var resp errorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	return resp
}

func TestGetRelated_MissingTitle(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do("GET", "/api/v1/related?url=/blog/a", "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
	if resp := decodeError(t, rr); resp.Code != codeTitleRequired {
		t.Errorf("code: got %s, want %s", resp.Code, codeTitleRequired)
	}
}

func TestGetRelated_BadLimit(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do("GET", "/api/v1/related?title=A&limit=many", "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
	if resp := decodeError(t, rr); resp.Code != codeValidationFailed {
		t.Errorf("code: got %s, want %s", resp.Code, codeValidationFailed)
	}
}

func TestGetRelated_RanksSeriesFirst(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, "current", "Current", "go-internals", []string{"go"})
	env.seed(t, "sibling", "Sibling", "go-internals", nil)
	env.seed(t, "tagged", "Tagged", "", []string{"go"})

	rr := env.do("GET", "/api/v1/related?title=Current&url=/blog/current", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	var resp relatedResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Count != 2 || len(resp.Related) != 2 {
		t.Fatalf("expected 2 items, got count=%d len=%d", resp.Count, len(resp.Related))
	}
	if resp.Related[0].URL != "/blog/sibling" {
		t.Errorf("first item: got %s, want /blog/sibling", resp.Related[0].URL)
	}
	if resp.Related[0].Similarity != 1.0 {
		t.Errorf("series similarity: got %v, want 1.0", resp.Related[0].Similarity)
	}
	if resp.Related[1].URL != "/blog/tagged" {
		t.Errorf("second item: got %s, want /blog/tagged", resp.Related[1].URL)
	}
}

func TestGetRelated_DegradedSearchStill200(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, "current", "Current", "", []string{"go"})
	env.seed(t, "tagged", "Tagged", "", []string{"go"})
	env.searcher.err = errors.New("backend down")

	rr := env.do("GET", "/api/v1/related?title=Current&url=/blog/current", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}

	var resp relatedResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Count != 1 || resp.Related[0].URL != "/blog/tagged" {
		t.Errorf("expected degraded single-item result, got %+v", resp)
	}
}

func TestUpsertPost_CreateThenUpdate(t *testing.T) {
	env := newTestEnv(t)
	body := `{"title":"A Post","tags":["go"],"url":"/blog/a-post"}`

	rr := env.do("PUT", "/api/v1/posts/a-post", body)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status: got %d, want %d: %s", rr.Code, http.StatusCreated, rr.Body.String())
	}
	if loc := rr.Header().Get("Location"); loc != "/api/v1/posts/a-post" {
		t.Errorf("location: got %q", loc)
	}

	rr = env.do("PUT", "/api/v1/posts/a-post", body)
	if rr.Code != http.StatusOK {
		t.Fatalf("update status: got %d, want %d", rr.Code, http.StatusOK)
	}
}

func TestUpsertPost_MissingTitle(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do("PUT", "/api/v1/posts/a-post", `{"description":"no title"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
	if resp := decodeError(t, rr); resp.Code != codeValidationFailed {
		t.Errorf("code: got %s, want %s", resp.Code, codeValidationFailed)
	}
}

func TestUpsertPost_InvalidBody(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do("PUT", "/api/v1/posts/a-post", `{not json`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
	if resp := decodeError(t, rr); resp.Code != codeBadRequest {
		t.Errorf("code: got %s, want %s", resp.Code, codeBadRequest)
	}
}

func TestUpsertPost_EmbedderFailure(t *testing.T) {
	env := newTestEnv(t)

	logger := zap.NewNop()
	posts := ingestuc.New(env.repo, &stubEmbedder{err: domain.ErrEmbeddingProviderError}, logger)
	related := relateduc.New(env.repo, env.searcher, logger)
	router := chipkg.NewRouter()
	NewServer(posts, related, healthuc.New(env.pinger, nil), logger).Routes(router)

	req := httptest.NewRequest("PUT", "/api/v1/posts/a-post", strings.NewReader(`{"title":"A"}`))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadGateway {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusBadGateway)
	}
	if resp := decodeError(t, rr); resp.Code != codeProviderError {
		t.Errorf("code: got %s, want %s", resp.Code, codeProviderError)
	}
}

func TestGetPost_NotFound(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do("GET", "/api/v1/posts/missing", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
	if resp := decodeError(t, rr); resp.Code != codePostNotFound {
		t.Errorf("code: got %s, want %s", resp.Code, codePostNotFound)
	}
}

func TestGetPost_Roundtrip(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, "a", "A", "series-x", []string{"go", "redis"})

	rr := env.do("GET", "/api/v1/posts/a", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}

	var resp postResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Slug != "a" || resp.Title != "A" || resp.Series != "series-x" {
		t.Errorf("unexpected post: %+v", resp)
	}
	if len(resp.Tags) != 2 {
		t.Errorf("tags: got %v", resp.Tags)
	}
}

func TestDeletePost(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, "a", "A", "", nil)

	rr := env.do("DELETE", "/api/v1/posts/a", "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusNoContent)
	}

	rr = env.do("DELETE", "/api/v1/posts/a", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("second delete: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestListPosts(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, "a", "A", "", nil)
	env.seed(t, "b", "B", "", nil)

	rr := env.do("GET", "/api/v1/posts", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}

	var resp struct {
		Items []postResponse `json:"items"`
		Count int            `json:"count"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Count != 2 || len(resp.Items) != 2 {
		t.Errorf("expected 2 posts, got count=%d len=%d", resp.Count, len(resp.Items))
	}
}

func TestReindex(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, "a", "A", "", nil)
	env.seed(t, "b", "B", "", nil)

	rr := env.do("POST", "/api/v1/reindex", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}

	var resp map[string]int
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["reindexed"] != 2 {
		t.Errorf("reindexed: got %d, want 2", resp["reindexed"])
	}
}

func TestHealth_Degraded503(t *testing.T) {
	env := newTestEnv(t)
	env.pinger.err = errors.New("connection refused")

	rr := env.do("GET", "/health", "")
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusServiceUnavailable)
	}
}

func TestHealth_OK(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do("GET", "/health", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
}
