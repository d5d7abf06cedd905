package webserver_test

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"github.com/pastaboard/pastaboard/internal/application/draft"
	apprecipe "github.com/pastaboard/pastaboard/internal/application/recipe"
	"github.com/pastaboard/pastaboard/internal/domain/recipe"
	"github.com/pastaboard/pastaboard/internal/infrastructure/config"
	"github.com/pastaboard/pastaboard/internal/infrastructure/http/webserver"
	"github.com/pastaboard/pastaboard/internal/infrastructure/monitoring"
	"github.com/pastaboard/pastaboard/pkg/healthcheck"
	"github.com/pastaboard/pastaboard/test/testutils"
)

type WebServerTestSuite struct {
	suite.Suite
	ctx     context.Context
	cfg     *config.Config
	stores  *testutils.TestStores
	web     *webserver.WebServer
	server  *httptest.Server
	client  *http.Client
	asserts *testutils.HTTPAssertions
}

func testConfig(uploadDir string) *config.Config {
	return &config.Config{
		App:     config.AppConfig{Name: "Pastaboard", Version: "test", Environment: "test"},
		Server:  config.ServerConfig{Host: "127.0.0.1", Port: 0, MaxUploadBytes: 1 << 20},
		Storage: config.StorageConfig{Provider: "local", UploadDir: uploadDir},
		Session: config.SessionConfig{CookieName: "pastaboard_session", TTL: time.Hour},
	}
}

func (s *WebServerTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.stores = testutils.SetupTestStores(s.T())
	s.cfg = testConfig(s.stores.Images.Dir())

	log := zap.NewNop()
	drafts := draft.NewManager(s.stores.Cache, time.Hour, log)
	service := apprecipe.NewRecipeService(s.stores.Entries, s.stores.Images, drafts, recipe.DefaultCatalog(), log)

	health := healthcheck.New("test", log)
	health.Register("record_store", healthcheck.NewCustomChecker("record_store",
		func(context.Context) (healthcheck.Status, string, interface{}) {
			return healthcheck.StatusHealthy, "ok", nil
		}))

	web, err := webserver.NewWebServer(s.cfg, log, service, drafts, health, monitoring.NewMetricsCollector(log))
	s.Require().NoError(err)
	s.web = web

	s.server = httptest.NewServer(web.Handler())
	s.T().Cleanup(s.server.Close)

	jar, err := cookiejar.New(nil)
	s.Require().NoError(err)
	s.client = &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	s.asserts = testutils.NewHTTPAssertions(s.T())
}

func (s *WebServerTestSuite) get(path string) *http.Response {
	resp, err := s.client.Get(s.server.URL + path)
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (s *WebServerTestSuite) postForm(path string, form url.Values) *http.Response {
	resp, err := s.client.PostForm(s.server.URL+path, form)
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

// upload posts a multipart form; an empty fileName omits the file part
func (s *WebServerTestSuite) upload(fields map[string]string, fileName string, data []byte) *http.Response {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		s.Require().NoError(w.WriteField(k, v))
	}
	if fileName != "" {
		part, err := w.CreateFormFile("file", fileName)
		s.Require().NoError(err)
		_, err = part.Write(data)
		s.Require().NoError(err)
	}
	s.Require().NoError(w.Close())

	req, err := http.NewRequest(http.MethodPost, s.server.URL+"/upload", &body)
	s.Require().NoError(err)
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := s.client.Do(req)
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (s *WebServerTestSuite) entryCount() int {
	n, err := s.stores.Entries.Count(s.ctx)
	s.Require().NoError(err)
	return n
}

func (s *WebServerTestSuite) TestPostRecipeEndToEnd() {
	resp := s.get("/ingredients")
	s.asserts.StatusCode(resp, http.StatusOK)
	s.asserts.BodyContains(resp, "garlic", "olive_oil", `name="counts"`)

	resp = s.postForm("/ingredients", url.Values{"counts": {`{"garlic": 3, "salt": 0}`}})
	s.asserts.Redirect(resp, "/post")

	resp = s.get("/post")
	s.asserts.StatusCode(resp, http.StatusOK)
	s.asserts.BodyContains(resp, "garlic", `action="/upload"`)

	resp = s.upload(map[string]string{
		"title":   "Aglio e olio",
		"author":  "Min",
		"content": "step1\nstep2",
	}, "my pasta.jpg", testutils.FakeImage())
	s.asserts.Redirect(resp, "/")
	s.Equal(1, s.entryCount())

	resp = s.get("/")
	s.asserts.StatusCode(resp, http.StatusOK)
	s.asserts.BodyContains(resp, `href="/recipe/my_pasta.jpg"`, `src="/static/upload/my_pasta.jpg"`)

	resp = s.get("/recipe/my_pasta.jpg")
	s.asserts.StatusCode(resp, http.StatusOK)
	body := s.asserts.BodyContains(resp, "Aglio e olio", "Min", "garlic: 3 piece", "step1<br>step2", time.Now().Format("2006-01-02"))
	s.NotContains(body, "salt:")

	resp = s.get("/static/upload/my_pasta.jpg")
	s.asserts.StatusCode(resp, http.StatusOK)
	s.Equal(string(testutils.FakeImage()), s.asserts.Body(resp))
}

func (s *WebServerTestSuite) TestUploadDefaultsAndEscaping() {
	resp := s.upload(map[string]string{"content": "<script>alert(1)</script>"}, "plain.png", testutils.FakeImage())
	s.asserts.Redirect(resp, "/")

	resp = s.get("/recipe/plain.png")
	body := s.asserts.BodyContains(resp, recipe.DefaultTitle, recipe.DefaultAuthor, "&lt;script&gt;")
	s.NotContains(body, "<script>alert(1)</script>")
}

func (s *WebServerTestSuite) TestIncompleteUploadsAreIgnored() {
	tests := []struct {
		name     string
		fields   map[string]string
		fileName string
	}{
		{"missing file", map[string]string{"content": "x"}, ""},
		{"missing content", map[string]string{"title": "t"}, "a.jpg"},
		{"empty content", map[string]string{"content": ""}, "a.jpg"},
		{"unusable filename", map[string]string{"content": "x"}, "../"},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			resp := s.upload(tt.fields, tt.fileName, testutils.FakeImage())
			s.asserts.Redirect(resp, "/")
			s.Zero(s.entryCount())
		})
	}

	names, err := s.stores.Images.List(s.ctx)
	s.Require().NoError(err)
	s.Empty(names)
}

func (s *WebServerTestSuite) TestUploadWithoutMultipartIsIgnored() {
	resp := s.postForm("/upload", url.Values{"content": {"x"}})
	s.asserts.Redirect(resp, "/")
	s.Zero(s.entryCount())
}

func (s *WebServerTestSuite) TestInvalidDraftCountsFailUpload() {
	resp := s.postForm("/ingredients", url.Values{"counts": {"not json"}})
	s.asserts.Redirect(resp, "/post")

	resp = s.get("/post")
	s.asserts.BodyContains(resp, "not json")

	resp = s.upload(map[string]string{"content": "x"}, "a.jpg", testutils.FakeImage())
	s.asserts.StatusCode(resp, http.StatusInternalServerError)
	s.Zero(s.entryCount())

	names, err := s.stores.Images.List(s.ctx)
	s.Require().NoError(err)
	s.Empty(names)
}

func (s *WebServerTestSuite) TestDraftsAreIsolatedPerSession() {
	resp := s.postForm("/ingredients", url.Values{"counts": {`{"basil": 4}`}})
	s.asserts.Redirect(resp, "/post")

	other, err := http.Get(s.server.URL + "/post")
	s.Require().NoError(err)
	defer other.Body.Close()

	body := s.asserts.Body(other)
	s.Contains(body, "{}")
	s.NotContains(body, "basil")
}

func (s *WebServerTestSuite) TestSessionCookie() {
	resp := s.get("/")
	cookies := resp.Cookies()
	s.Require().Len(cookies, 1)
	s.Equal("pastaboard_session", cookies[0].Name)
	s.True(cookies[0].HttpOnly)

	resp = s.get("/")
	s.Empty(resp.Cookies(), "an existing session is reused")

	resp = s.get("/health")
	s.Empty(resp.Cookies())
}

func (s *WebServerTestSuite) TestRecipeNotFound() {
	resp := s.get("/recipe/nope.jpg")

	s.asserts.StatusCode(resp, http.StatusNotFound)
	s.Equal("Recipe not found", s.asserts.Body(resp))
	s.True(strings.HasPrefix(resp.Header.Get("Content-Type"), "text/plain"))
}

func (s *WebServerTestSuite) TestRecipePathIsDecodedOnce() {
	resp := s.upload(map[string]string{"title": "Escaped", "content": "x"}, "aA.jpg", testutils.FakeImage())
	s.asserts.Redirect(resp, "/")

	resp = s.get("/recipe/aA%2Ejpg")
	s.asserts.StatusCode(resp, http.StatusOK)
	s.asserts.BodyContains(resp, "Escaped")

	resp = s.get("/recipe/a%2541.jpg")
	s.asserts.StatusCode(resp, http.StatusNotFound)
	s.Equal("Recipe not found", s.asserts.Body(resp))
}

func (s *WebServerTestSuite) TestGalleryEmptyAndOrdered() {
	resp := s.get("/")
	s.asserts.BodyContains(resp, "No recipes yet")

	for _, name := range []string{"b.jpg", "a.png", "c.JPEG"} {
		s.Require().NoError(s.stores.Images.Save(s.ctx, name, bytes.NewReader(testutils.FakeImage())))
	}

	resp = s.get("/")
	body := s.asserts.Body(resp)
	a, b, c := strings.Index(body, "/recipe/a.png"), strings.Index(body, "/recipe/b.jpg"), strings.Index(body, "/recipe/c.JPEG")
	s.True(a >= 0 && b > a && c > b, "tiles are listed in name order")
}

func (s *WebServerTestSuite) TestOperationalEndpoints() {
	s.upload(map[string]string{"content": "x"}, "m.jpg", testutils.FakeImage())
	s.get("/recipe/m.jpg")

	resp := s.get("/health")
	s.asserts.StatusCode(resp, http.StatusOK)
	s.asserts.BodyContains(resp, `"status":"healthy"`, "record_store")

	s.asserts.StatusCode(s.get("/live"), http.StatusOK)
	s.asserts.StatusCode(s.get("/ready"), http.StatusOK)

	resp = s.get("/metrics")
	s.asserts.BodyContains(resp,
		`pastaboard_uploads_total{outcome="saved"} 1`,
		`pastaboard_recipe_lookups_total{result="found"} 1`,
		`route="/recipe/{filename}"`,
	)
}

func (s *WebServerTestSuite) TestSecurityHeaders() {
	resp := s.get("/")

	s.asserts.Header(resp, "X-Content-Type-Options", "nosniff")
	s.asserts.Header(resp, "X-Frame-Options", "DENY")
	s.NotEmpty(resp.Header.Get("X-Request-ID"))
}

func (s *WebServerTestSuite) TestUploadDirectoryIsNotListed() {
	s.Require().NoError(s.stores.Images.Save(s.ctx, "a.jpg", bytes.NewReader(testutils.FakeImage())))

	s.asserts.StatusCode(s.get("/static/upload/"), http.StatusNotFound)
}

func TestWebServerTestSuite(t *testing.T) {
	suite.Run(t, new(WebServerTestSuite))
}

func TestWebServer_StartAndShutdown(t *testing.T) {
	stores := testutils.SetupTestStores(t)
	log := zap.NewNop()
	drafts := draft.NewManager(stores.Cache, time.Hour, log)
	service := apprecipe.NewRecipeService(stores.Entries, stores.Images, drafts, recipe.DefaultCatalog(), log)

	web, err := webserver.NewWebServer(testConfig(stores.Images.Dir()), log, service, drafts,
		healthcheck.New("test", log), monitoring.NewMetricsCollector(log))
	require.NoError(t, err)

	require.NoError(t, web.Start())
	require.NotEmpty(t, web.Addr())

	resp, err := http.Get("http://" + web.Addr() + "/live")
	require.NoError(t, err)
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, web.Shutdown(ctx))
}
