package router_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/test/assert"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/cloudwego/hertz/pkg/protocol"
	"golang.org/x/crypto/bcrypt"

	"staybook/pkg/common/config"
	"staybook/pkg/core/auth"
	"staybook/pkg/core/store"
	"staybook/pkg/web/router"
)

type testServer struct {
	t   *testing.T
	h   *server.Hertz
	cfg *config.Config
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	cfg := config.Default()
	cfg.Database.Driver = config.DriverMemory
	cfg.Middleware.JWT.Secret = "router-test-secret"
	cfg.Upload.Dir = filepath.Join(t.TempDir(), "uploads")
	cfg.Middleware.Security.BcryptCost = bcrypt.MinCost
	cfg.Middleware.RateLimit.Rate = 1000

	h := server.New()
	assert.Nil(t, router.RegisterAPIs(h, &cfg, store.NewMemory()))
	return &testServer{t: t, h: h, cfg: &cfg}
}

// do 发送 JSON 请求，token 非空时带上 cookie
func (s *testServer) do(method, path string, body interface{}, token string) *protocol.Response {
	s.t.Helper()
	headers := []ut.Header{{Key: "Content-Type", Value: "application/json"}}
	if token != "" {
		headers = append(headers, ut.Header{Key: "Cookie", Value: "token=" + token})
	}

	var reqBody *ut.Body
	if body != nil {
		data, err := json.Marshal(body)
		assert.Nil(s.t, err)
		reqBody = &ut.Body{Body: bytes.NewReader(data), Len: len(data)}
	}
	return ut.PerformRequest(s.h.Engine, method, path, reqBody, headers...).Result()
}

func (s *testServer) register(name, email, password string) map[string]interface{} {
	s.t.Helper()
	resp := s.do("POST", "/api/register", map[string]string{"name": name, "email": email, "password": password}, "")
	assert.DeepEqual(s.t, 200, resp.StatusCode())
	return decode[map[string]interface{}](s.t, resp)
}

func (s *testServer) login(email, password string) string {
	s.t.Helper()
	resp := s.do("POST", "/api/login", map[string]string{"email": email, "password": password}, "")
	assert.DeepEqual(s.t, 200, resp.StatusCode())
	return tokenCookie(s.t, resp)
}

func (s *testServer) createPlace(token, title string) map[string]interface{} {
	s.t.Helper()
	resp := s.do("POST", "/api/createPlaces", map[string]interface{}{
		"title":       title,
		"address":     "1 Main St",
		"addedPhotos": []string{"a.jpg"},
		"perks":       []string{"wifi"},
		"maxGuests":   2,
		"price":       100,
	}, token)
	assert.DeepEqual(s.t, 200, resp.StatusCode())
	return decode[map[string]interface{}](s.t, resp)
}

func decode[T any](t *testing.T, resp *protocol.Response) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(resp.Body(), &v); err != nil {
		t.Fatalf("decode %q: %v", resp.Body(), err)
	}
	return v
}

func tokenCookie(t *testing.T, resp *protocol.Response) string {
	t.Helper()
	cookie := protocol.AcquireCookie()
	defer protocol.ReleaseCookie(cookie)
	cookie.SetKey("token")
	if !resp.Header.Cookie(cookie) {
		t.Fatalf("response has no token cookie")
	}
	return string(cookie.Value())
}

func assertError(t *testing.T, resp *protocol.Response, status int, msg string) {
	t.Helper()
	assert.DeepEqual(t, status, resp.StatusCode())
	body := decode[map[string]interface{}](t, resp)
	assert.DeepEqual(t, false, body["success"])
	assert.DeepEqual(t, float64(status), body["code"])
	if msg != "" {
		assert.Assert(t, strings.Contains(body["error"].(string), msg), body["error"])
	}
}

func TestHealthCheckRoute(t *testing.T) {
	s := newTestServer(t)

	resp := s.do("GET", "/health", nil, "")
	assert.DeepEqual(t, 200, resp.StatusCode())
	body := decode[map[string]interface{}](t, resp)
	assert.DeepEqual(t, "healthy", body["status"])

	resp = s.do("GET", "/test", nil, "")
	assert.DeepEqual(t, 200, resp.StatusCode())
	assert.DeepEqual(t, "test ok", decode[string](t, resp))
}

func TestRegisterTwiceConflicts(t *testing.T) {
	s := newTestServer(t)

	user := s.register("Alice", "a@x.com", "pw1")
	assert.DeepEqual(t, "Alice", user["name"])
	assert.DeepEqual(t, "a@x.com", user["email"])
	assert.Assert(t, user["_id"] != "")
	_, leaked := user["password"]
	assert.Assert(t, !leaked)

	resp := s.do("POST", "/api/register", map[string]string{"name": "Alice 2", "email": "A@X.com", "password": "pw2"}, "")
	assertError(t, resp, 422, "email already registered")
}

func TestRegisterValidation(t *testing.T) {
	s := newTestServer(t)

	resp := s.do("POST", "/api/register", map[string]string{"name": "Bob", "email": "not-an-email", "password": "pw"}, "")
	assertError(t, resp, 400, "invalid input")
}

func TestLoginScenario(t *testing.T) {
	s := newTestServer(t)
	user := s.register("Alice", "a@x.com", "pw1")

	resp := s.do("POST", "/api/login", map[string]string{"email": "a@x.com", "password": "pw1"}, "")
	assert.DeepEqual(t, 200, resp.StatusCode())
	profile := decode[map[string]interface{}](t, resp)
	assert.DeepEqual(t, user["_id"], profile["_id"])
	assert.DeepEqual(t, "Alice", profile["name"])

	claims, err := auth.NewTokenManager(s.cfg.Middleware.JWT).Verify(tokenCookie(t, resp))
	assert.Nil(t, err)
	assert.DeepEqual(t, user["_id"], claims.ID)
	assert.DeepEqual(t, "a@x.com", claims.Email)

	resp = s.do("POST", "/api/login", map[string]string{"email": "a@x.com", "password": "wrong"}, "")
	assertError(t, resp, 422, "invalid password")

	resp = s.do("POST", "/api/login", map[string]string{"email": "nobody@x.com", "password": "pw1"}, "")
	assertError(t, resp, 404, "not found")
}

func TestProfile(t *testing.T) {
	s := newTestServer(t)
	s.register("Alice", "a@x.com", "pw1")
	token := s.login("a@x.com", "pw1")

	assertError(t, s.do("GET", "/api/profile", nil, ""), 401, "no token")
	assertError(t, s.do("GET", "/api/profile", nil, "garbage"), 401, "")
	assertError(t, s.do("GET", "/api/profile", nil, token[:len(token)-3]), 401, "")

	resp := s.do("GET", "/api/profile", nil, token)
	assert.DeepEqual(t, 200, resp.StatusCode())
	profile := decode[map[string]interface{}](t, resp)
	assert.DeepEqual(t, "Alice", profile["name"])
	assert.DeepEqual(t, "a@x.com", profile["email"])
}

func TestLogoutClearsCookie(t *testing.T) {
	s := newTestServer(t)

	resp := s.do("POST", "/api/logout", nil, "")
	assert.DeepEqual(t, 200, resp.StatusCode())
	assert.DeepEqual(t, true, decode[bool](t, resp))
	assert.DeepEqual(t, "", tokenCookie(t, resp))
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)

	assertError(t, s.do("POST", "/api/createPlaces", map[string]string{"title": "Loft"}, ""), 401, "no token")
	assertError(t, s.do("GET", "/account/user-places", nil, "bad.token.value"), 401, "")
	assertError(t, s.do("GET", "/account/user-bookings", nil, ""), 401, "no token")
}

func TestUpdatePlaceOwnership(t *testing.T) {
	s := newTestServer(t)
	s.register("Alice", "a@x.com", "pw1")
	s.register("Bob", "b@x.com", "pw2")
	alice := s.login("a@x.com", "pw1")
	bob := s.login("b@x.com", "pw2")

	place := s.createPlace(alice, "Loft")
	id := place["_id"].(string)
	assert.DeepEqual(t, []interface{}{"a.jpg"}, place["photos"])

	update := map[string]interface{}{"id": id, "title": "Hijacked", "maxGuests": 9, "price": 1}
	assertError(t, s.do("PUT", "/api/updatePlaces", update, bob), 403, "forbidden")

	resp := s.do("GET", "/places/"+id, nil, "")
	assert.DeepEqual(t, 200, resp.StatusCode())
	assert.DeepEqual(t, "Loft", decode[map[string]interface{}](t, resp)["title"])

	update["title"] = "Loft renovated"
	resp = s.do("PUT", "/api/updatePlaces", update, alice)
	assert.DeepEqual(t, 200, resp.StatusCode())
	updated := decode[map[string]map[string]interface{}](t, resp)["placeDoc"]
	assert.DeepEqual(t, "Loft renovated", updated["title"])
	assert.DeepEqual(t, float64(9), updated["maxGuests"])

	assertError(t, s.do("PUT", "/api/updatePlaces", map[string]interface{}{"id": "missing", "title": "x"}, alice), 404, "place not found")
}

func TestGetPlaceNotFound(t *testing.T) {
	s := newTestServer(t)
	assertError(t, s.do("GET", "/places/does-not-exist", nil, ""), 404, "place not found")
}

func TestListByOwnerInterleaved(t *testing.T) {
	s := newTestServer(t)
	s.register("Alice", "a@x.com", "pw1")
	s.register("Bob", "b@x.com", "pw2")
	alice := s.login("a@x.com", "pw1")
	bob := s.login("b@x.com", "pw2")

	for i := 0; i < 3; i++ {
		s.createPlace(alice, fmt.Sprintf("alice-%d", i))
		s.createPlace(bob, fmt.Sprintf("bob-%d", i))
	}

	for token, prefix := range map[string]string{alice: "alice-", bob: "bob-"} {
		resp := s.do("GET", "/account/user-places", nil, token)
		assert.DeepEqual(t, 200, resp.StatusCode())
		places := decode[[]map[string]interface{}](t, resp)
		assert.DeepEqual(t, 3, len(places))
		for i, p := range places {
			assert.DeepEqual(t, fmt.Sprintf("%s%d", prefix, i), p["title"])
		}
	}

	all := decode[[]map[string]interface{}](t, s.do("GET", "/api/Allplaces", nil, ""))
	assert.DeepEqual(t, 6, len(all))
}

func TestBookings(t *testing.T) {
	s := newTestServer(t)
	user := s.register("Alice", "a@x.com", "pw1")
	token := s.login("a@x.com", "pw1")
	place := s.createPlace(token, "Loft")

	resp := s.do("POST", "/api/createBooking", map[string]interface{}{
		"place":    place,
		"user":     user["_id"],
		"checkIn":  "2024-05-01",
		"checkOut": "2024-05-03T10:00:00Z",
		"name":     "Alice",
		"phone":    "555-0100",
		"price":    200,
	}, "")
	assert.DeepEqual(t, 200, resp.StatusCode())
	booking := decode[map[string]interface{}](t, resp)
	assert.DeepEqual(t, place["_id"], booking["place"])
	assert.DeepEqual(t, "2024-05-01T00:00:00Z", booking["checkIn"])

	resp = s.do("POST", "/api/createBooking", map[string]interface{}{
		"place": place["_id"], "user": user["_id"], "checkIn": "soon", "checkOut": "2024-05-03",
		"name": "Alice", "phone": "555-0100",
	}, "")
	assertError(t, resp, 400, "checkIn")

	resp = s.do("GET", "/account/user-bookings", nil, token)
	assert.DeepEqual(t, 200, resp.StatusCode())
	bookings := decode[[]map[string]interface{}](t, resp)
	assert.DeepEqual(t, 1, len(bookings))
	assert.DeepEqual(t, user["_id"], bookings[0]["user"])
}

func multipartBody(t *testing.T, names ...string) (*ut.Body, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, name := range names {
		fw, err := w.CreateFormFile("photos", name)
		assert.Nil(t, err)
		_, err = fw.Write([]byte("data-" + name))
		assert.Nil(t, err)
	}
	assert.Nil(t, w.Close())
	return &ut.Body{Body: bytes.NewReader(buf.Bytes()), Len: buf.Len()}, w.FormDataContentType()
}

func TestUploadFiles(t *testing.T) {
	s := newTestServer(t)

	body, contentType := multipartBody(t, "one.jpg", "two.png", "three.webp")
	resp := ut.PerformRequest(s.h.Engine, "POST", "/uploads", body, ut.Header{Key: "Content-Type", Value: contentType}).Result()
	assert.DeepEqual(t, 200, resp.StatusCode())

	names := decode[[]string](t, resp)
	assert.DeepEqual(t, 3, len(names))
	for i, ext := range []string{".jpg", ".png", ".webp"} {
		assert.DeepEqual(t, ext, filepath.Ext(names[i]))
	}

	served := ut.PerformRequest(s.h.Engine, "GET", "/uploads/"+names[0], nil).Result()
	assert.DeepEqual(t, 200, served.StatusCode())
	assert.DeepEqual(t, "data-one.jpg", string(served.Body()))
}

func TestUploadFilesLimit(t *testing.T) {
	s := newTestServer(t)

	names := make([]string, 101)
	for i := range names {
		names[i] = fmt.Sprintf("p%d.jpg", i)
	}
	body, contentType := multipartBody(t, names...)
	resp := ut.PerformRequest(s.h.Engine, "POST", "/uploads", body, ut.Header{Key: "Content-Type", Value: contentType}).Result()
	assertError(t, resp, 400, "at most 100 files")
}

func TestUploadByLink(t *testing.T) {
	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("remote-image"))
	}))
	defer remote.Close()

	s := newTestServer(t)

	resp := s.do("POST", "/uploads-by-link", map[string]string{"link": remote.URL + "/cat.jpg"}, "")
	assert.DeepEqual(t, 200, resp.StatusCode())
	name := decode[string](t, resp)
	assert.Assert(t, strings.HasPrefix(name, "photo") && strings.HasSuffix(name, ".jpg"), name)

	served := ut.PerformRequest(s.h.Engine, "GET", "/uploads/"+name, nil).Result()
	assert.DeepEqual(t, 200, served.StatusCode())
	assert.DeepEqual(t, "remote-image", string(served.Body()))

	assertError(t, s.do("POST", "/uploads-by-link", map[string]string{"link": "file:///etc/passwd"}, ""), 400, "")
}

func TestRegisterAPIsRequiresSecret(t *testing.T) {
	cfg := config.Default()
	cfg.Upload.Dir = filepath.Join(t.TempDir(), "uploads")
	assert.NotNil(t, router.RegisterAPIs(server.New(), &cfg, store.NewMemory()))
}

func TestForgedTokenRejected(t *testing.T) {
	s := newTestServer(t)

	forgedCfg := s.cfg.Middleware.JWT
	forgedCfg.Secret = "dev-secret-change-me-in-production"
	forged, err := auth.NewTokenManager(forgedCfg).Issue("someone-else", "x@x.com")
	assert.Nil(t, err)

	assertError(t, s.do("GET", "/account/user-places", nil, forged), 401, "invalid or expired token")
	assertError(t, s.do("GET", "/api/profile", nil, forged), 401, "invalid or expired token")
}

func TestSecurityCheckRejectsMethod(t *testing.T) {
	s := newTestServer(t)
	resp := s.do("DELETE", "/api/Allplaces", nil, "")
	assertError(t, resp, 405, "method not allowed")
}
