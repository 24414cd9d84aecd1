package routes

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"yatube/app/blobstore"
	"yatube/app/cache"
	"yatube/app/controllers"
	"yatube/app/identity"
	"yatube/app/metrics"
	"yatube/app/models"
	"yatube/app/repositories"
	"yatube/app/services"
	"yatube/app/views"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const testPassword = "s3cret-pass"

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// testApp is a fully wired router over an in-memory database.
type testApp struct {
	t       *testing.T
	base    string
	router  *mux.Router
	repo    *repositories.Repository
	deps    *controllers.Deps
	groups  *services.GroupService
	clock   *fakeClock
	metrics *metrics.Metrics
}

func newTestApp(t *testing.T, basePath string) *testApp {
	t.Helper()
	repo, err := repositories.Open(repositories.Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	renderer, err := views.New(basePath)
	require.NoError(t, err)

	log := zap.NewNop()
	m := metrics.New()
	clock := &fakeClock{now: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)}
	blobs := blobstore.NewBadgerStore(repo.DB())

	deps := &controllers.Deps{
		Posts:    services.NewPostService(repo.Posts(), repo.Groups(), repo.Users(), blobs),
		Comments: services.NewCommentService(repo.Comments(), repo.Posts(), repo.Users()),
		Follows:  services.NewFollowService(repo.Follows()),
		Users:    services.NewUserService(repo.Users()).WithCost(bcrypt.MinCost).WithBlobs(repo.Posts(), blobs),
		Blobs:    blobs,
		Cache:    cache.New(cache.NewMemoryStore(clock.Now), log, m),
		CacheTTL: 20 * time.Second,
		PageSize: 10,
		Views:    renderer,
		Identity: identity.New(identity.Options{
			Key:      "0123456789abcdef0123456789abcdef",
			LoginURL: renderer.URL("/auth/login/"),
		}, repo.Users(), log),
		Logger: log,
	}

	return &testApp{
		t:       t,
		base:    basePath,
		router:  SetupRoutes(deps, m, Options{BasePath: basePath}),
		repo:    repo,
		deps:    deps,
		groups:  services.NewGroupService(repo.Groups()),
		clock:   clock,
		metrics: m,
	}
}

// session is a signed-in browser.
type session struct {
	user    *models.User
	cookies []*http.Cookie
}

func (a *testApp) register(username string) *models.User {
	a.t.Helper()
	u, err := a.deps.Users.Register(username, username+"@example.com", testPassword)
	require.NoError(a.t, err)
	return u
}

// login registers username and signs in through the login form.
func (a *testApp) login(username string) *session {
	a.t.Helper()
	u := a.register(username)
	w := a.do(nil, http.MethodPost, a.base+"/auth/login/", url.Values{
		"username": {username},
		"password": {testPassword},
	})
	require.Equal(a.t, http.StatusSeeOther, w.Code)
	cookies := w.Result().Cookies()
	require.NotEmpty(a.t, cookies)
	return &session{user: u, cookies: cookies}
}

func (a *testApp) group(title, slug string) *models.Group {
	a.t.Helper()
	g, err := a.groups.CreateGroup(title, slug, "")
	require.NoError(a.t, err)
	return g
}

func (a *testApp) post(author *models.User, text string, group *models.Group) *models.Post {
	a.t.Helper()
	in := services.PostInput{Text: text}
	if group != nil {
		in.GroupID = &group.ID
	}
	p, err := a.deps.Posts.CreatePost(context.Background(), author, in)
	require.NoError(a.t, err)
	return p
}

func (a *testApp) serve(s *session, req *http.Request) *httptest.ResponseRecorder {
	if s != nil {
		for _, c := range s.cookies {
			req.AddCookie(c)
		}
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

// do sends a request; a non-nil form is sent urlencoded.
func (a *testApp) do(s *session, method, path string, form url.Values) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	return a.serve(s, req)
}

// upload sends a multipart form with an optional image file.
func (a *testApp) upload(s *session, path string, fields map[string]string, image []byte) *httptest.ResponseRecorder {
	a.t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(a.t, mw.WriteField(k, v))
	}
	if image != nil {
		fw, err := mw.CreateFormFile("image", "pic.png")
		require.NoError(a.t, err)
		_, err = fw.Write(image)
		require.NoError(a.t, err)
	}
	require.NoError(a.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return a.serve(s, req)
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))))
	return buf.Bytes()
}
