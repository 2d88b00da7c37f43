package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/reel/internal/auth"
	"github.com/MrSnakeDoc/reel/internal/catalog"
	"github.com/MrSnakeDoc/reel/internal/config"
	"github.com/MrSnakeDoc/reel/internal/domain"
	"github.com/MrSnakeDoc/reel/internal/httpserver/deps"
	"github.com/MrSnakeDoc/reel/internal/logger"
	"github.com/MrSnakeDoc/reel/internal/session"
	"github.com/MrSnakeDoc/reel/internal/store"
	"github.com/MrSnakeDoc/reel/internal/store/memory"
	"github.com/MrSnakeDoc/reel/internal/version"
)

const secret = "s3cret"

type env struct {
	t       *testing.T
	handler http.Handler
	session *session.Session
}

type option func(d *deps.Deps)

func newEnv(t *testing.T, opts ...option) *env {
	t.Helper()
	return newEnvOn(t, memory.New(), opts...)
}

// newEnvOn starts the session on an existing backend.
func newEnvOn(t *testing.T, backend store.Backend, opts ...option) *env {
	t.Helper()
	src := &catalog.Source{
		Version: 5,
		Entries: []domain.Entry{
			{ID: "c1", ExternalRef: "dQw4w9WgXcQ", Title: "A", Category: "Dance", Status: domain.StatusReady},
			{ID: "c2", ExternalRef: "https://example.com/b.mp4", Title: "B", Category: "Other", Status: domain.StatusReady},
		},
		Categories: []domain.Category{
			{Name: "Dance", Color: "#8b5cf6"},
			{Name: "Other", Color: "#64748b"},
		},
		DefaultFavorites: map[string][]string{"guest": {"c2"}},
	}
	sess := session.New(session.Options{
		Adapter:         store.NewAdapter(backend),
		LoadCatalog:     func() (*catalog.Source, error) { return src, nil },
		DefaultIdentity: "guest",
	}, logger.Nop())
	require.NoError(t, sess.Init(context.Background()))

	d := deps.Deps{
		Logger:    logger.Nop(),
		StartTime: time.Now(),
		Version:   "test",
		Session:   sess,
		Gate:      auth.NewGate(secret, "guest"),
		Storage:   "memory",
	}
	for _, o := range opts {
		o(&d)
	}

	cfg := &config.Config{RateLimitDisabled: true}
	return &env{t: t, handler: NewRouter(cfg, logger.Nop(), d), session: sess}
}

// do sends a request; admin adds the secret header.
func (e *env) do(method, path string, body any, admin bool) *httptest.ResponseRecorder {
	e.t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(e.t, err)
		rd = bytes.NewReader(b)
	}
	r := httptest.NewRequest(method, path, rd)
	if admin {
		r.Header.Set(auth.HeaderSecret, secret)
	}
	return e.send(r)
}

func (e *env) send(r *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, r)
	return rec
}

// withToken sends a request authorized by a login token.
func (e *env) withToken(method, path, token string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(method, path, nil)
	r.Header.Set("Authorization", "Bearer "+token)
	return e.send(r)
}

func decodeInto[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type entryJSON struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Category      string `json:"category"`
	Status        string `json:"status"`
	Progress      string `json:"progress"`
	ExternalRef   string `json:"externalRef"`
	Thumbnail     string `json:"thumbnail"`
	EmbedURL      string `json:"embedUrl"`
	CategoryColor string `json:"categoryColor"`
	IsFavorite    bool   `json:"isFavorite"`
	ViewCount     int64  `json:"viewCount"`
	LikeCount     int64  `json:"likeCount"`
	DislikeCount  int64  `json:"dislikeCount"`
	IsLiked       bool   `json:"isLiked"`
	IsDisliked    bool   `json:"isDisliked"`
}

type listJSON struct {
	Filter  string      `json:"filter"`
	Entries []entryJSON `json:"entries"`
}

func ids(entries []entryJSON) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.ID)
	}
	return out
}

func TestProbes(t *testing.T) {
	e := newEnv(t)

	rec := e.do(http.MethodGet, "/healthz", nil, false)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(http.MethodGet, "/readyz", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	ready := decodeInto[map[string]any](t, rec)
	assert.Equal(t, true, ready["ready"])
	assert.EqualValues(t, 5, ready["catalog_version"])
}

func TestReadyzReportsStorageFailure(t *testing.T) {
	e := newEnv(t, func(d *deps.Deps) {
		d.StoragePing = func(context.Context) error { return errors.New("connection refused") }
	})

	rec := e.do(http.MethodGet, "/readyz", nil, false)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "connection refused")
}

func TestIndexCarriesVersionTag(t *testing.T) {
	e := newEnv(t)

	rec := e.do(http.MethodGet, "/", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	got, err := version.ParseMeta(rec.Body.Bytes())
	require.NoError(t, err)
	assert.Equal(t, 5, got)
}

func TestLibrarySummary(t *testing.T) {
	e := newEnv(t)

	rec := e.do(http.MethodGet, "/api/library", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	lib := decodeInto[map[string]any](t, rec)
	assert.EqualValues(t, 5, lib["catalogVersion"])
	assert.EqualValues(t, 2, lib["entries"])
	assert.EqualValues(t, 1, lib["vaultCount"])
	assert.Equal(t, "guest", lib["activeIdentity"])
	assert.Equal(t, true, lib["adminEnabled"])
}

func TestEntryViews(t *testing.T) {
	e := newEnv(t)

	rec := e.do(http.MethodGet, "/api/entries/c1", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	c1 := decodeInto[entryJSON](t, rec)
	assert.Equal(t, "https://img.youtube.com/vi/dQw4w9WgXcQ/mqdefault.jpg", c1.Thumbnail)
	assert.Equal(t, "https://www.youtube.com/embed/dQw4w9WgXcQ", c1.EmbedURL)
	assert.Equal(t, "#8b5cf6", c1.CategoryColor)

	c2 := decodeInto[entryJSON](t, e.do(http.MethodGet, "/api/entries/c2", nil, false))
	assert.Equal(t, domain.PlaceholderThumbnail, c2.Thumbnail)
	assert.True(t, c2.IsFavorite)

	assert.Equal(t, http.StatusNotFound, e.do(http.MethodGet, "/api/entries/nope", nil, false).Code)
}

func TestListEntriesFilter(t *testing.T) {
	e := newEnv(t)

	all := decodeInto[listJSON](t, e.do(http.MethodGet, "/api/entries", nil, false))
	assert.Equal(t, []string{"c1", "c2"}, ids(all.Entries))

	dance := decodeInto[listJSON](t, e.do(http.MethodGet, "/api/entries?filter=Dance", nil, false))
	assert.Equal(t, []string{"c1"}, ids(dance.Entries))

	vault := decodeInto[listJSON](t, e.do(http.MethodGet, "/api/entries?filter=Vault", nil, false))
	assert.Equal(t, []string{"c2"}, ids(vault.Entries))

	assert.Equal(t, "All", e.session.View().Filter, "preview does not switch the filter")

	set := decodeInto[listJSON](t, e.do(http.MethodPost, "/api/filter", map[string]string{"filter": "Bogus"}, false))
	assert.Equal(t, "All", set.Filter)
	set = decodeInto[listJSON](t, e.do(http.MethodPost, "/api/filter", map[string]string{"filter": "Other"}, false))
	assert.Equal(t, []string{"c2"}, ids(set.Entries))
	assert.Equal(t, "Other", e.session.View().Filter)
}

func TestLikeDislikeAreExclusive(t *testing.T) {
	e := newEnv(t)

	liked := decodeInto[entryJSON](t, e.do(http.MethodPost, "/api/entries/c1/like", nil, false))
	assert.True(t, liked.IsLiked)
	assert.EqualValues(t, 1, liked.LikeCount)

	disliked := decodeInto[entryJSON](t, e.do(http.MethodPost, "/api/entries/c1/dislike", nil, false))
	assert.False(t, disliked.IsLiked)
	assert.True(t, disliked.IsDisliked)
	assert.Zero(t, disliked.LikeCount)
	assert.EqualValues(t, 1, disliked.DislikeCount)

	viewed := decodeInto[entryJSON](t, e.do(http.MethodPost, "/api/entries/c1/view", nil, false))
	assert.EqualValues(t, 1, viewed.ViewCount)

	assert.Equal(t, http.StatusNotFound, e.do(http.MethodPost, "/api/entries/nope/like", nil, false).Code)
}

func TestFavoriteAndVault(t *testing.T) {
	e := newEnv(t)

	fav := decodeInto[entryJSON](t, e.do(http.MethodPost, "/api/entries/c1/favorite", map[string]string{"identity": "ana"}, false))
	assert.True(t, fav.IsFavorite)

	vault := decodeInto[listJSON](t, e.do(http.MethodGet, "/api/vault?identity=ana", nil, false))
	assert.Equal(t, []string{"c1"}, ids(vault.Entries))

	guest := decodeInto[listJSON](t, e.do(http.MethodGet, "/api/vault", nil, false))
	assert.Equal(t, []string{"c2"}, ids(guest.Entries))
}

func TestAdminRoutesNeedSecret(t *testing.T) {
	e := newEnv(t)
	body := map[string]string{"ref": "https://youtu.be/abcdefghijk", "title": "New", "category": "Dance"}

	assert.Equal(t, http.StatusUnauthorized, e.do(http.MethodPost, "/api/entries", body, false).Code)

	rec := e.do(http.MethodPost, "/api/entries", body, true)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeInto[entryJSON](t, rec)
	assert.Equal(t, "New", created.Title)

	all := decodeInto[listJSON](t, e.do(http.MethodGet, "/api/entries", nil, false))
	assert.Equal(t, []string{created.ID, "c1", "c2"}, ids(all.Entries))
	assert.Equal(t, created.ID, e.session.View().SelectedID)

	assert.Equal(t, http.StatusUnprocessableEntity, e.do(http.MethodPost, "/api/entries", map[string]string{"ref": " "}, true).Code)
}

func TestDisabledGateForbidsAdmin(t *testing.T) {
	e := newEnv(t, func(d *deps.Deps) { d.Gate = auth.NewGate("", "guest") })

	assert.Equal(t, http.StatusForbidden, e.do(http.MethodDelete, "/api/entries", nil, true).Code)
	assert.Equal(t, http.StatusForbidden, e.do(http.MethodPost, "/api/auth/login", map[string]string{"secret": ""}, false).Code)
	assert.Len(t, e.session.View().Entries, 2)
}

func TestLoginUnlocksAdmin(t *testing.T) {
	e := newEnv(t)

	assert.Equal(t, http.StatusUnauthorized, e.do(http.MethodPost, "/api/auth/login", map[string]string{"secret": "nope"}, false).Code)

	rec := e.do(http.MethodPost, "/api/auth/login", map[string]string{"secret": secret}, false)
	require.Equal(t, http.StatusOK, rec.Code)
	login := decodeInto[struct {
		Token string `json:"token"`
	}](t, rec)
	require.NotEmpty(t, login.Token)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, auth.CookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.True(t, e.session.View().IsAuthorized)

	// another client without credentials is still refused
	assert.Equal(t, http.StatusUnauthorized, e.do(http.MethodDelete, "/api/entries/c1", nil, false).Code)
	assert.Equal(t, http.StatusUnauthorized, e.do(http.MethodPost, "/api/auth/logout", nil, false).Code)

	assert.Equal(t, http.StatusNoContent, e.withToken(http.MethodDelete, "/api/entries/c1", login.Token).Code)

	byCookie := httptest.NewRequest(http.MethodDelete, "/api/entries/c2", nil)
	byCookie.AddCookie(cookies[0])
	assert.Equal(t, http.StatusNoContent, e.send(byCookie).Code)

	summary := httptest.NewRequest(http.MethodGet, "/api/library", nil)
	summary.Header.Set("Authorization", "Bearer "+login.Token)
	assert.Equal(t, true, decodeInto[map[string]any](t, e.send(summary))["isAuthorized"])
	assert.Equal(t, false, decodeInto[map[string]any](t, e.do(http.MethodGet, "/api/library", nil, false))["isAuthorized"])

	assert.Equal(t, http.StatusNoContent, e.withToken(http.MethodPost, "/api/auth/logout", login.Token).Code)
	assert.Equal(t, http.StatusUnauthorized, e.withToken(http.MethodDelete, "/api/entries", login.Token).Code)
	assert.False(t, e.session.View().IsAuthorized)
}

func TestPersistedAuthFlagIsNotACredential(t *testing.T) {
	backend := memory.New()
	require.NoError(t, backend.SetMany(context.Background(), map[string][]byte{
		store.LegacyKeyVault: []byte(`[]`),
		store.LegacyKeyAuth:  []byte(`true`),
	}))
	e := newEnvOn(t, backend)
	require.True(t, e.session.View().IsAuthorized, "the legacy flag is migrated as data")

	assert.Equal(t, http.StatusUnauthorized, e.do(http.MethodDelete, "/api/entries/c1", nil, false).Code)
	assert.Equal(t, http.StatusUnauthorized, e.do(http.MethodPost, "/api/auth/logout", nil, false).Code)
	assert.Equal(t, false, decodeInto[map[string]any](t, e.do(http.MethodGet, "/api/library", nil, false))["isAuthorized"])
	_, ok := e.session.View().Entry("c1")
	assert.True(t, ok)
}

func TestRemoveEntryCleansFavorites(t *testing.T) {
	e := newEnv(t)

	require.Equal(t, http.StatusNoContent, e.do(http.MethodDelete, "/api/entries/c2", nil, true).Code)
	assert.Empty(t, e.session.View().Favorites.IDs("guest"))

	require.Equal(t, http.StatusNoContent, e.do(http.MethodDelete, "/api/entries", nil, true).Code)
	assert.Empty(t, e.session.View().Entries)
}

func TestIdentify(t *testing.T) {
	e := newEnv(t)

	got := decodeInto[map[string]any](t, e.do(http.MethodPost, "/api/auth/identify", map[string]string{"name": " ana "}, false))
	assert.Equal(t, "ana", got["activeIdentity"])

	got = decodeInto[map[string]any](t, e.do(http.MethodPost, "/api/auth/identify", map[string]string{"name": ""}, false))
	assert.Equal(t, "guest", got["activeIdentity"])
}

func TestReviewModeration(t *testing.T) {
	e := newEnv(t)

	rec := e.do(http.MethodPost, "/api/entries/c1/reviews", map[string]any{"rating": 9, "text": "x"}, false)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, false, decodeInto[map[string]any](t, rec)["accepted"])

	rec = e.do(http.MethodPost, "/api/entries/c1/reviews", map[string]any{"rating": 4, "text": "great"}, false)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeInto[struct {
		Review domain.Review `json:"review"`
	}](t, rec)
	rid := created.Review.ID
	assert.Equal(t, "guest", created.Review.Author)

	pending := decodeInto[[]map[string]any](t, e.do(http.MethodGet, "/api/reviews/pending", nil, true))
	assert.Len(t, pending, 1)

	path := "/api/entries/c1/reviews/" + rid + "/approve"
	require.Equal(t, http.StatusOK, e.do(http.MethodPost, path, nil, true).Code)
	require.Equal(t, http.StatusOK, e.do(http.MethodPost, path, nil, true).Code, "approval is idempotent")

	pending = decodeInto[[]map[string]any](t, e.do(http.MethodGet, "/api/reviews/pending", nil, true))
	assert.Empty(t, pending)

	reviews := decodeInto[[]domain.Review](t, e.do(http.MethodGet, "/api/entries/c1/reviews", nil, false))
	require.Len(t, reviews, 1)
	assert.True(t, reviews[0].Approved)

	assert.Equal(t, http.StatusNoContent, e.do(http.MethodPost, "/api/entries/c1/reviews/"+rid+"/reject", nil, true).Code)
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodPost, "/api/entries/c1/reviews/"+rid+"/reject", nil, true).Code)
}

func TestResetStats(t *testing.T) {
	e := newEnv(t)
	e.do(http.MethodPost, "/api/entries/c1/view", nil, false)
	e.do(http.MethodPost, "/api/entries/c2/view", nil, false)

	require.Equal(t, http.StatusNoContent, e.do(http.MethodPost, "/api/stats/reset?id=c1", nil, true).Code)
	c1, _ := e.session.View().Entry("c1")
	c2, _ := e.session.View().Entry("c2")
	assert.Zero(t, c1.ViewCount)
	assert.EqualValues(t, 1, c2.ViewCount)

	require.Equal(t, http.StatusNoContent, e.do(http.MethodPost, "/api/stats/reset", nil, true).Code)
	c2, _ = e.session.View().Entry("c2")
	assert.Zero(t, c2.ViewCount)

	assert.Equal(t, http.StatusNotFound, e.do(http.MethodPost, "/api/stats/reset", map[string]string{"id": "nope"}, true).Code)
}

func TestCategories(t *testing.T) {
	e := newEnv(t)

	rec := e.do(http.MethodPost, "/api/categories", map[string]string{"name": "Tribal"}, true)
	require.Equal(t, http.StatusCreated, rec.Code)
	cats := decodeInto[[]domain.Category](t, rec)
	assert.Equal(t, domain.Category{Name: "Tribal", Color: "#64748b"}, cats[len(cats)-1])

	assert.Equal(t, http.StatusConflict, e.do(http.MethodPost, "/api/categories", map[string]string{"name": "Tribal"}, true).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, e.do(http.MethodPost, "/api/categories", map[string]string{"name": "Vault"}, true).Code)

	rec = e.do(http.MethodPut, "/api/categories/Tribal/color", map[string]string{"color": "#ff0000"}, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "#ff0000", e.session.View().CategoryColor("Tribal"))

	require.Equal(t, http.StatusNoContent, e.do(http.MethodDelete, "/api/categories/Dance", nil, true).Code)
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodDelete, "/api/categories/Dance", nil, true).Code)

	c1 := decodeInto[entryJSON](t, e.do(http.MethodGet, "/api/entries/c1", nil, false))
	assert.Equal(t, "Dance", c1.Category, "entries keep a dangling category")
	assert.Equal(t, domain.FallbackColor, c1.CategoryColor)

	names := decodeInto[[]domain.Category](t, e.do(http.MethodGet, "/api/categories", nil, false))
	assert.Len(t, names, 2)
}

func TestGenerationHooks(t *testing.T) {
	e := newEnv(t)

	rec := e.do(http.MethodPost, "/api/generations", map[string]string{"prompt": "a calm sea"}, true)
	require.Equal(t, http.StatusAccepted, rec.Code)
	gen := decodeInto[entryJSON](t, rec)
	assert.True(t, strings.HasPrefix(gen.ID, "gen-"))
	assert.Equal(t, "pending", gen.Status)
	assert.Empty(t, gen.EmbedURL)

	base := "/api/generations/" + gen.ID
	prog := decodeInto[entryJSON](t, e.do(http.MethodPost, base+"/progress", map[string]string{"progress": "50%"}, true))
	assert.Equal(t, "50%", prog.Progress)

	done := decodeInto[entryJSON](t, e.do(http.MethodPost, base+"/complete", map[string]string{"ref": "https://cdn.example.com/v.mp4"}, true))
	assert.Equal(t, "ready", done.Status)
	assert.Equal(t, "https://cdn.example.com/v.mp4", done.EmbedURL)

	assert.Equal(t, http.StatusConflict, e.do(http.MethodPost, base+"/fail", nil, true).Code)
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodPost, "/api/generations/gen-nope/fail", nil, true).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, e.do(http.MethodPost, "/api/generations", map[string]string{"prompt": ""}, true).Code)
}

func TestExport(t *testing.T) {
	e := newEnv(t)

	rec := e.do(http.MethodGet, "/api/export", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")

	archive := decodeInto[store.Archive](t, rec)
	assert.Equal(t, store.ArchiveFormat, archive.Format)
	assert.Len(t, archive.Entries, 2)
}

func TestVersionCheckTrigger(t *testing.T) {
	disabled := newEnv(t)
	assert.Equal(t, http.StatusServiceUnavailable, disabled.do(http.MethodPost, "/api/version/check", nil, false).Code)

	trigger := make(chan struct{}, 1)
	e := newEnv(t, func(d *deps.Deps) { d.VersionTrigger = trigger })
	assert.Equal(t, http.StatusAccepted, e.do(http.MethodPost, "/api/version/check", nil, false).Code)
	assert.Equal(t, http.StatusTooManyRequests, e.do(http.MethodPost, "/api/version/check", nil, false).Code)
	<-trigger
}

func TestUnknownRoute(t *testing.T) {
	e := newEnv(t)
	rec := e.do(http.MethodGet, "/api/nope", nil, false)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "no such route")
}
