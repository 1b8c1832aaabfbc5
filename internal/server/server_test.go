package server

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/lena210296/ProjectBlog/internal/config"
	"github.com/lena210296/ProjectBlog/internal/models"
	"github.com/lena210296/ProjectBlog/internal/service"
	"github.com/lena210296/ProjectBlog/internal/storage"
	"github.com/lena210296/ProjectBlog/internal/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type testEnv struct {
	server *Server
	db     *gorm.DB
	queue  *testutil.RecordingQueue
	redis  *miniredis.Miniredis
	fs     afero.Fs
}

func testConfig() *config.Config {
	return &config.Config{
		Env:                     "test",
		Port:                    "0",
		JWTSecret:               "test-secret",
		MediaBackend:            config.MediaLocal,
		MediaURL:                "/media/",
		MaxUploadSizeMB:         2,
		PostsPerPage:            2,
		CommentsPerPage:         2,
		AllPostsCacheTTLSeconds: 60,
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	db := testutil.NewTestDB(t)
	cfg := testConfig()
	fs := afero.NewMemMapFs()
	media := storage.NewMedia(storage.NewLocalStore(fs, cfg.MediaURL), cfg.MaxUploadBytes())
	queue := &testutil.RecordingQueue{}

	s, err := NewServerWithDeps(cfg, db, rdb, queue, media)
	require.NoError(t, err)
	s.userService = service.NewUserService(s.userRepo).WithBcryptCost(bcrypt.MinCost)

	return &testEnv{server: s, db: db, queue: queue, redis: mr, fs: fs}
}

func (e *testEnv) do(t *testing.T, req *http.Request) *http.Response {
	t.Helper()
	resp, err := e.server.App().Test(req, -1)
	require.NoError(t, err)
	return resp
}

func (e *testEnv) sessionCookie(t *testing.T, user *models.User) *http.Cookie {
	t.Helper()
	token, err := e.server.generateToken(user)
	require.NoError(t, err)
	return &http.Cookie{Name: sessionCookie, Value: token}
}

func get(path string, cookie *http.Cookie) *http.Request {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	return req
}

func postForm(path string, values url.Values, cookie *http.Cookie) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	return req
}

func postMultipart(t *testing.T, path string, fields map[string]string, fileField string, file []byte, cookie *http.Cookie) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if file != nil {
		fw, err := w.CreateFormFile(fileField, "upload.png")
		require.NoError(t, err)
		_, err = fw.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if cookie != nil {
		req.AddCookie(cookie)
	}
	return req
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func pngImage(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 40, 30))
	for x := 0; x < 40; x++ {
		for y := 0; y < 30; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 5), G: uint8(y * 5), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestHealthLive(t *testing.T) {
	env := newTestEnv(t)
	resp := env.do(t, get("/health/live", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), `"status":"up"`)
}

func TestReadinessCheck(t *testing.T) {
	env := newTestEnv(t)
	resp := env.do(t, get("/health/ready", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), `"status":"healthy"`)
}

func TestUnknownRouteRendersNotFound(t *testing.T) {
	env := newTestEnv(t)
	resp := env.do(t, get("/no/such/page/", nil))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "Page not found")
}

func TestProtectedPagesRedirectToLogin(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/create_post/", "/user_posts/", "/all_posts/", "/post/1/", "/accounts/profile/", "/profile/edit/", "/contact/"} {
		t.Run(path, func(t *testing.T) {
			resp := env.do(t, get(path, nil))
			assert.Equal(t, http.StatusFound, resp.StatusCode)
			assert.Equal(t, "/login/?next="+url.QueryEscape(path), resp.Header.Get("Location"))
		})
	}
}

func TestRegisterThenLogin(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, postForm("/register/", url.Values{
		"username":  {"reader42"},
		"email":     {"reader42@example.com"},
		"password1": {testutil.DefaultPassword},
		"password2": {testutil.DefaultPassword},
	}, nil))
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login/", resp.Header.Get("Location"))

	resp = env.do(t, postForm("/login/", url.Values{
		"username": {"reader42"},
		"password": {testutil.DefaultPassword},
		"next":     {"/all_posts/"},
	}, nil))
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/all_posts/", resp.Header.Get("Location"))

	var session *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == sessionCookie {
			session = c
		}
	}
	require.NotNil(t, session)
	assert.True(t, session.HttpOnly)

	resp = env.do(t, get("/accounts/profile/", &http.Cookie{Name: sessionCookie, Value: session.Value}))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "reader42")
}

func TestRegisterRejectsMismatchAndDuplicate(t *testing.T) {
	env := newTestEnv(t)
	testutil.CreateUser(t, env.db, "taken", false)

	resp := env.do(t, postForm("/register/", url.Values{
		"username":  {"taken"},
		"email":     {"taken@example.com"},
		"password1": {testutil.DefaultPassword},
		"password2": {testutil.DefaultPassword},
	}, nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "A user with that username already exists.")

	resp = env.do(t, postForm("/register/", url.Values{
		"username":  {"fresh"},
		"email":     {"fresh@example.com"},
		"password1": {testutil.DefaultPassword},
		"password2": {"something-else-7"},
	}, nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "The two password fields didn&#39;t match.")

	var count int64
	require.NoError(t, env.db.Model(&models.User{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestRegisterRejectsPasswordOverBcryptLimit(t *testing.T) {
	env := newTestEnv(t)
	long := strings.Repeat("Zq7!", 25)

	resp := env.do(t, postForm("/register/", url.Values{
		"username":  {"verbose"},
		"email":     {"verbose@example.com"},
		"password1": {long},
		"password2": {long},
	}, nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "It must be at most 72 bytes.")

	var count int64
	require.NoError(t, env.db.Model(&models.User{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestLoginFailureShowsError(t *testing.T) {
	env := newTestEnv(t)
	testutil.CreateUser(t, env.db, "writer", false)

	resp := env.do(t, postForm("/login/", url.Values{
		"username": {"writer"},
		"password": {"wrong-password"},
	}, nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "Please enter a correct username and password.")
	for _, c := range resp.Cookies() {
		assert.NotEqual(t, sessionCookie, c.Name)
	}
}

func TestLoginIgnoresExternalNext(t *testing.T) {
	env := newTestEnv(t)
	testutil.CreateUser(t, env.db, "writer", false)

	resp := env.do(t, postForm("/login/", url.Values{
		"username": {"writer"},
		"password": {testutil.DefaultPassword},
		"next":     {"//evil.example.com/"},
	}, nil))
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/accounts/profile/", resp.Header.Get("Location"))
}

func TestLogoutRevokesSession(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.CreateUser(t, env.db, "writer", false)
	cookie := env.sessionCookie(t, user)

	resp := env.do(t, get("/user_posts/", cookie))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(t, get("/logout/", cookie))
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login/", resp.Header.Get("Location"))

	resp = env.do(t, get("/user_posts/", cookie))
	assert.Equal(t, http.StatusFound, resp.StatusCode)
}

func TestInactiveUserIsLoggedOut(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.CreateUser(t, env.db, "writer", false)
	cookie := env.sessionCookie(t, user)
	require.NoError(t, env.db.Model(user).Update("is_active", false).Error)

	resp := env.do(t, get("/user_posts/", cookie))
	assert.Equal(t, http.StatusFound, resp.StatusCode)
}

func TestCreatePost(t *testing.T) {
	tests := []struct {
		name       string
		button     string
		wantStatus models.PostStatus
	}{
		{name: "submit publishes", button: "submit", wantStatus: models.PostStatusPublished},
		{name: "save draft", button: "save_draft", wantStatus: models.PostStatusDraft},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			user := testutil.CreateUser(t, env.db, "writer", false)

			resp := env.do(t, postMultipart(t, "/create_post/", map[string]string{
				"title":             "First light",
				"short_description": "A short note",
				"full_description":  "Longer text",
				tt.button:           "",
			}, "image", pngImage(t), env.sessionCookie(t, user)))
			require.Equal(t, http.StatusFound, resp.StatusCode)
			assert.Equal(t, "/user_posts/", resp.Header.Get("Location"))

			var post models.Post
			require.NoError(t, env.db.First(&post).Error)
			assert.Equal(t, "First light", post.Title)
			assert.Equal(t, tt.wantStatus, post.Status)
			assert.Equal(t, user.ID, post.AuthorID)
			assert.True(t, strings.HasPrefix(post.Image, storage.PostImagesPrefix))

			exists, err := afero.Exists(env.fs, "/"+post.Image)
			require.NoError(t, err)
			assert.True(t, exists)

			calls := env.queue.Calls()
			require.Len(t, calls, 1)
			assert.Equal(t, []string{fmt.Sprintf("New post with id %d is created.", post.ID)}, calls[0].Args)
		})
	}
}

func TestCreatePostRequiresImage(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.CreateUser(t, env.db, "writer", false)

	resp := env.do(t, postMultipart(t, "/create_post/", map[string]string{
		"title":             "No picture",
		"short_description": "A short note",
		"full_description":  "Longer text",
		"submit":            "",
	}, "", nil, env.sessionCookie(t, user)))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "This field is required.")

	var count int64
	require.NoError(t, env.db.Model(&models.Post{}).Count(&count).Error)
	assert.Zero(t, count)
	assert.Empty(t, env.queue.Calls())
}

func TestCreatePostRejectsNonImage(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.CreateUser(t, env.db, "writer", false)

	resp := env.do(t, postMultipart(t, "/create_post/", map[string]string{
		"title":             "Bad file",
		"short_description": "A short note",
		"full_description":  "Longer text",
	}, "image", []byte("definitely not an image"), env.sessionCookie(t, user)))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "Upload a valid image.")
}

func TestEditPostByAuthor(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.CreateUser(t, env.db, "writer", false)
	post := testutil.CreatePost(t, env.db, user, models.PostStatusDraft)
	cookie := env.sessionCookie(t, user)

	resp := env.do(t, get(fmt.Sprintf("/edit_post/%d/", post.ID), cookie))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(t, postForm(fmt.Sprintf("/edit_post/%d/", post.ID), url.Values{
		"title":             {"Edited title"},
		"short_description": {"Edited short"},
		"full_description":  {"Edited full"},
		"submit":            {""},
	}, cookie))
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/user_posts/", resp.Header.Get("Location"))

	var got models.Post
	require.NoError(t, env.db.First(&got, post.ID).Error)
	assert.Equal(t, "Edited title", got.Title)
	assert.Equal(t, models.PostStatusPublished, got.Status)
	assert.Equal(t, post.Image, got.Image)
}

func TestEditPublishedPostStaysPublished(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.CreateUser(t, env.db, "writer", false)
	post := testutil.CreatePost(t, env.db, user, models.PostStatusPublished)

	resp := env.do(t, postForm(fmt.Sprintf("/edit_post/%d/", post.ID), url.Values{
		"title":             {"Still out"},
		"short_description": {"Edited short"},
		"full_description":  {"Edited full"},
		"status":            {"draft"},
		"save":              {""},
	}, env.sessionCookie(t, user)))
	require.Equal(t, http.StatusFound, resp.StatusCode)

	var got models.Post
	require.NoError(t, env.db.First(&got, post.ID).Error)
	assert.Equal(t, models.PostStatusPublished, got.Status)
}

func TestEditPostByOtherUserIsRedirected(t *testing.T) {
	env := newTestEnv(t)
	author := testutil.CreateUser(t, env.db, "author", false)
	other := testutil.CreateUser(t, env.db, "other", false)
	post := testutil.CreatePost(t, env.db, author, models.PostStatusDraft)
	cookie := env.sessionCookie(t, other)

	resp := env.do(t, get(fmt.Sprintf("/edit_post/%d/", post.ID), cookie))
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/user_posts/", resp.Header.Get("Location"))

	resp = env.do(t, postForm(fmt.Sprintf("/edit_post/%d/", post.ID), url.Values{
		"title":             {"Hijacked"},
		"short_description": {"x"},
		"full_description":  {"x"},
		"submit":            {""},
	}, cookie))
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/user_posts/", resp.Header.Get("Location"))

	var got models.Post
	require.NoError(t, env.db.First(&got, post.ID).Error)
	assert.Equal(t, post.Title, got.Title)
	assert.Equal(t, models.PostStatusDraft, got.Status)
}

func TestEditMissingPostIsNotFound(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.CreateUser(t, env.db, "writer", false)

	resp := env.do(t, get("/edit_post/999/", env.sessionCookie(t, user)))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUserPostsListsOnlyOwnPosts(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.CreateUser(t, env.db, "writer", false)
	other := testutil.CreateUser(t, env.db, "other", false)
	mine := testutil.CreatePost(t, env.db, user, models.PostStatusDraft)
	theirs := testutil.CreatePost(t, env.db, other, models.PostStatusPublished)

	resp := env.do(t, get("/user_posts/", env.sessionCookie(t, user)))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := readBody(t, resp)
	assert.Contains(t, body, fmt.Sprintf("/edit_post/%d/", mine.ID))
	assert.NotContains(t, body, fmt.Sprintf("/post/%d/", theirs.ID))
}

func TestAllPostsPagination(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.CreateUser(t, env.db, "writer", false)
	for i := 0; i < 3; i++ {
		testutil.CreatePost(t, env.db, user, models.PostStatusPublished)
	}
	cookie := env.sessionCookie(t, user)

	tests := []struct {
		query string
		want  string
	}{
		{query: "", want: "Page 1 of 2."},
		{query: "?page=2", want: "Page 2 of 2."},
		{query: "?page=99", want: "Page 2 of 2."},
		{query: "?page=abc", want: "Page 1 of 2."},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			resp := env.do(t, get("/all_posts/"+tt.query, cookie))
			require.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Contains(t, readBody(t, resp), tt.want)
		})
	}
}

func TestCommentHiddenUntilApproved(t *testing.T) {
	env := newTestEnv(t)
	author := testutil.CreateUser(t, env.db, "author", false)
	reader := testutil.CreateUser(t, env.db, "reader", false)
	staff := testutil.CreateUser(t, env.db, "moderator", true)
	post := testutil.CreatePost(t, env.db, author, models.PostStatusPublished)
	detail := fmt.Sprintf("/post/%d/", post.ID)
	readerCookie := env.sessionCookie(t, reader)

	resp := env.do(t, postForm(detail, url.Values{"content": {"Lovely write-up"}}, readerCookie))
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, detail, resp.Header.Get("Location"))

	resp = env.do(t, get(detail, readerCookie))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotContains(t, readBody(t, resp), "Lovely write-up")

	var comment models.Comment
	require.NoError(t, env.db.First(&comment).Error)
	assert.False(t, comment.IsApproved)

	calls := env.queue.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, []string{fmt.Sprintf("New comment with id %d submitted.", comment.ID)}, calls[0].Args)
	assert.Equal(t, []string{"author", "Your post received a new comment Lovely write-up."}, calls[1].Args)

	resp = env.do(t, postForm("/admin/", url.Values{
		"action":           {"approve_comments"},
		"_selected_action": {fmt.Sprint(comment.ID)},
	}, env.sessionCookie(t, staff)))
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/admin/", resp.Header.Get("Location"))

	resp = env.do(t, get(detail, readerCookie))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "Lovely write-up")
}

func TestEmptyCommentIsRejected(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.CreateUser(t, env.db, "writer", false)
	post := testutil.CreatePost(t, env.db, user, models.PostStatusPublished)

	resp := env.do(t, postForm(fmt.Sprintf("/post/%d/", post.ID), url.Values{"content": {"   "}}, env.sessionCookie(t, user)))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "This field is required.")

	var count int64
	require.NoError(t, env.db.Model(&models.Comment{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestAnonymousCommentHidesAuthor(t *testing.T) {
	env := newTestEnv(t)
	author := testutil.CreateUser(t, env.db, "author", false)
	reader := testutil.CreateUser(t, env.db, "shyreader", false)
	post := testutil.CreatePost(t, env.db, author, models.PostStatusPublished)
	cookie := env.sessionCookie(t, reader)

	resp := env.do(t, postForm(fmt.Sprintf("/post/%d/", post.ID), url.Values{
		"content":      {"Quiet praise"},
		"is_anonymous": {"on"},
	}, cookie))
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.NoError(t, env.db.Model(&models.Comment{}).Where("1 = 1").Update("is_approved", true).Error)

	resp = env.do(t, get(fmt.Sprintf("/post/%d/", post.ID), cookie))
	body := readBody(t, resp)
	assert.Contains(t, body, "Quiet praise")
	assert.Contains(t, body, models.AnonymousName)
}

func TestPostDetailNotFound(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.CreateUser(t, env.db, "writer", false)

	for _, path := range []string{"/post/999/", "/post/abc/"} {
		resp := env.do(t, get(path, env.sessionCookie(t, user)))
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, path)
	}
}

func TestAdminRequiresStaff(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.CreateUser(t, env.db, "writer", false)

	resp := env.do(t, get("/admin/", env.sessionCookie(t, user)))
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login/?next=%2Fadmin%2F", resp.Header.Get("Location"))
}

func TestAdminRejectDeletesComments(t *testing.T) {
	env := newTestEnv(t)
	author := testutil.CreateUser(t, env.db, "author", false)
	staff := testutil.CreateUser(t, env.db, "moderator", true)
	post := testutil.CreatePost(t, env.db, author, models.PostStatusPublished)
	first := testutil.CreateComment(t, env.db, post, author, false)
	second := testutil.CreateComment(t, env.db, post, nil, false)
	kept := testutil.CreateComment(t, env.db, post, nil, false)
	cookie := env.sessionCookie(t, staff)

	resp := env.do(t, get("/admin/?is_approved=0", cookie))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), fmt.Sprintf(`name="_selected_action" value="%d"`, first.ID))

	resp = env.do(t, postForm("/admin/", url.Values{
		"action":           {"reject_comments"},
		"_selected_action": {fmt.Sprint(first.ID), fmt.Sprint(second.ID)},
	}, cookie))
	require.Equal(t, http.StatusFound, resp.StatusCode)

	var remaining []models.Comment
	require.NoError(t, env.db.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, kept.ID, remaining[0].ID)
}

func TestAdminActionWithoutSelection(t *testing.T) {
	env := newTestEnv(t)
	staff := testutil.CreateUser(t, env.db, "moderator", true)

	resp := env.do(t, postForm("/admin/", url.Values{"action": {"approve_comments"}}, env.sessionCookie(t, staff)))
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/admin/?notice=no_selection", resp.Header.Get("Location"))
}

func TestAccountProfileWithoutProfile(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.CreateUser(t, env.db, "writer", false)

	resp := env.do(t, get("/accounts/profile/", env.sessionCookie(t, user)))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "You have not filled in your profile yet.")
}

func TestEditProfile(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.CreateUser(t, env.db, "writer", false)
	cookie := env.sessionCookie(t, user)

	resp := env.do(t, get("/profile/edit/", cookie))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(t, postMultipart(t, "/profile/edit/", map[string]string{"bio": "Writes about birds."},
		"profile_picture", pngImage(t), cookie))
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/accounts/profile/", resp.Header.Get("Location"))

	var profile models.UserProfile
	require.NoError(t, env.db.Where("user_id = ?", user.ID).First(&profile).Error)
	assert.Equal(t, "Writes about birds.", profile.Bio)
	assert.True(t, strings.HasPrefix(profile.ProfilePicture, storage.ProfilePicturePrefix))
	oldPicture := profile.ProfilePicture

	resp = env.do(t, postMultipart(t, "/profile/edit/", map[string]string{
		"bio":                   "Writes about birds.",
		"profile_picture-clear": "on",
	}, "", nil, cookie))
	require.Equal(t, http.StatusFound, resp.StatusCode)

	require.NoError(t, env.db.Where("user_id = ?", user.ID).First(&profile).Error)
	assert.Empty(t, profile.ProfilePicture)
	exists, err := afero.Exists(env.fs, "/"+oldPicture)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestViewProfile(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.CreateUser(t, env.db, "writer", false)
	other := testutil.CreateUser(t, env.db, "neighbour", false)
	uid, oid := user.ID, other.ID
	require.NoError(t, env.db.Create(&models.UserProfile{UserID: &uid, Bio: "mine"}).Error)
	require.NoError(t, env.db.Create(&models.UserProfile{UserID: &oid, Bio: "Keeps bees."}).Error)
	cookie := env.sessionCookie(t, user)

	resp := env.do(t, get(fmt.Sprintf("/profile/%d/", user.ID), cookie))
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/accounts/profile/", resp.Header.Get("Location"))

	resp = env.do(t, get(fmt.Sprintf("/profile/%d/", other.ID), cookie))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := readBody(t, resp)
	assert.Contains(t, body, "neighbour")
	assert.Contains(t, body, "Keeps bees.")
}

func TestViewProfileMissing(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.CreateUser(t, env.db, "writer", false)
	other := testutil.CreateUser(t, env.db, "noprofile", false)
	cookie := env.sessionCookie(t, user)

	resp := env.do(t, get(fmt.Sprintf("/profile/%d/", other.ID), cookie))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = env.do(t, get("/profile/4242/", cookie))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestContactPagePrefillsName(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.CreateUser(t, env.db, "writer", false)

	resp := env.do(t, get("/contact/", env.sessionCookie(t, user)))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), `value="writer"`)
}

func TestContactAdmin(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.CreateUser(t, env.db, "writer", false)
	cookie := env.sessionCookie(t, user)

	t.Run("missing email", func(t *testing.T) {
		env.queue.Reset()
		resp := env.do(t, postForm("/contact/", url.Values{
			"name":    {"Writer"},
			"subject": {"Hello"},
			"message": {"Is anyone there?"},
		}, cookie))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, readBody(t, resp), `"email":["This field is required."]`)
		assert.Empty(t, env.queue.Calls())
	})

	t.Run("valid message", func(t *testing.T) {
		env.queue.Reset()
		resp := env.do(t, postForm("/contact/success", url.Values{
			"name":    {"Writer"},
			"email":   {"writer@example.com"},
			"subject": {"Hello"},
			"message": {"Is anyone there?"},
		}, cookie))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.JSONEq(t, `{"success":true}`, readBody(t, resp))

		calls := env.queue.Calls()
		require.Len(t, calls, 1)
		assert.Equal(t, []string{"Writer", "writer@example.com", "Is anyone there?"}, calls[0].Args)
	})
}

func TestMediaServedFromLocalStore(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, afero.WriteFile(env.fs, "/post_images/sample.jpg", []byte("jpeg-bytes"), 0o644))

	resp := env.do(t, get("/media/post_images/sample.jpg", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "jpeg-bytes", readBody(t, resp))
}

func TestSafeNext(t *testing.T) {
	tests := map[string]string{
		"":                    "/accounts/profile/",
		"/all_posts/":         "/all_posts/",
		"//evil.example.com":  "/accounts/profile/",
		"https://example.com": "/accounts/profile/",
		`/\evil`:              "/accounts/profile/",
	}
	for in, want := range tests {
		assert.Equal(t, want, safeNext(in), in)
	}
}
