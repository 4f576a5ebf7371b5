package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Noor-Islam16/Coupon-Backend/internal/handlers"
	"github.com/Noor-Islam16/Coupon-Backend/internal/repository"
	"github.com/Noor-Islam16/Coupon-Backend/internal/services"
	"github.com/Noor-Islam16/Coupon-Backend/internal/testutil"
)

type inboxMailer struct {
	mu     sync.Mutex
	bodies []string
}

func (m *inboxMailer) Send(_ context.Context, _, _, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bodies = append(m.bodies, body)
	return nil
}

var codePattern = regexp.MustCompile(`>(\d{6})<`)

func (m *inboxMailer) lastCode(t *testing.T) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.bodies)
	match := codePattern.FindStringSubmatch(m.bodies[len(m.bodies)-1])
	require.NotNil(t, match)
	return match[1]
}

type memoryAssets struct {
	mu      sync.Mutex
	n       int
	deleted []string
}

func (a *memoryAssets) Upload(context.Context, services.ImageUpload) (*services.Asset, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.n++
	id := fmt.Sprintf("coupons/%d", a.n)
	return &services.Asset{URL: "https://cdn.test/" + id, ID: id}, nil
}

func (a *memoryAssets) Delete(_ context.Context, id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.deleted = append(a.deleted, id)
	return nil
}

type testServer struct {
	app    *fiber.App
	mailer *inboxMailer
	assets *memoryAssets
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db := testutil.NewDB(t)
	log := testutil.Logger()
	ts := &testServer{mailer: &inboxMailer{}, assets: &memoryAssets{}}

	users := repository.NewUserRepository(db)
	auth := services.NewAuthService(users, repository.NewOTPRepository(db), ts.mailer, services.AuthConfig{
		JWTSecret:     "test-secret",
		TokenTTL:      24 * time.Hour,
		RememberMeTTL: 30 * 24 * time.Hour,
		OTPExpiry:     10 * time.Minute,
		OTPSubject:    "Your verification code",
	}, log)

	ts.app = fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler(log)})
	Register(ts.app, Services{
		Auth:     auth,
		Guard:    services.NewSessionGuard(auth),
		Profiles: services.NewProfileService(users, repository.NewProfileRepository(db), log),
		Coupons:  services.NewCouponManager(repository.NewCouponRepository(db), ts.assets, services.CouponManagerConfig{Retention: 7 * 24 * time.Hour}, log),
	})
	return ts
}

type response struct {
	Status int
	Body   map[string]interface{}
}

func (ts *testServer) do(t *testing.T, method, path, token string, body interface{}) response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return ts.send(t, req, token)
}

func (ts *testServer) send(t *testing.T, req *http.Request, token string) response {
	t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := ts.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := response{Status: resp.StatusCode, Body: map[string]interface{}{}}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out.Body), string(raw))
	}
	return out
}

// verifiedUser signs up and verifies an account, returning its token.
func (ts *testServer) verifiedUser(t *testing.T, email, phone string) string {
	t.Helper()
	res := ts.do(t, http.MethodPost, "/api/auth/signup", "", fiber.Map{
		"email": email, "phone": phone, "password": "secret1", "confirmPassword": "secret1",
	})
	require.Equal(t, fiber.StatusCreated, res.Status, res.Body)
	token := res.Body["token"].(string)

	res = ts.do(t, http.MethodPost, "/api/auth/select-verification", token, fiber.Map{"emailcheck": true})
	require.Equal(t, fiber.StatusOK, res.Status, res.Body)

	res = ts.do(t, http.MethodPost, "/api/auth/verify-otp", token, fiber.Map{"code": ts.mailer.lastCode(t)})
	require.Equal(t, fiber.StatusOK, res.Status, res.Body)
	return res.Body["token"].(string)
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	res := ts.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, fiber.StatusOK, res.Status)
}

func TestAuthFlowOverHTTP(t *testing.T) {
	ts := newTestServer(t)

	res := ts.do(t, http.MethodPost, "/api/auth/signup", "", fiber.Map{
		"email": "alice@example.com", "phone": "+15550001", "password": "secret1", "confirmPassword": "secret1",
	})
	require.Equal(t, fiber.StatusCreated, res.Status)
	user := res.Body["user"].(map[string]interface{})
	assert.NotContains(t, user, "password_hash")
	assert.NotContains(t, user, "PasswordHash")
	token := res.Body["token"].(string)

	res = ts.do(t, http.MethodPost, "/api/auth/signup", "", fiber.Map{
		"email": "alice@example.com", "phone": "+15550002", "password": "secret1", "confirmPassword": "secret1",
	})
	assert.Equal(t, fiber.StatusConflict, res.Status)
	assert.Equal(t, "conflict", res.Body["code"])

	res = ts.do(t, http.MethodPost, "/api/auth/login", "", fiber.Map{"email": "alice@example.com", "password": "secret1"})
	assert.Equal(t, handlers.StatusNeedsAttention, res.Status)
	assert.Equal(t, "not_verified", res.Body["code"])

	res = ts.do(t, http.MethodPost, "/api/auth/select-verification", "", fiber.Map{"token": token, "emailcheck": true})
	require.Equal(t, fiber.StatusOK, res.Status)

	res = ts.do(t, http.MethodPost, "/api/auth/verify-otp", token, fiber.Map{"code": "12345"})
	assert.Equal(t, fiber.StatusBadRequest, res.Status)

	code := ts.mailer.lastCode(t)
	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}
	res = ts.do(t, http.MethodPost, "/api/auth/verify-otp", token, fiber.Map{"code": wrong})
	assert.Equal(t, handlers.StatusNeedsAttention, res.Status)
	assert.Equal(t, "incorrect_code", res.Body["code"])

	res = ts.do(t, http.MethodPost, "/api/auth/verify-otp", token, fiber.Map{"code": code})
	require.Equal(t, fiber.StatusOK, res.Status)

	res = ts.do(t, http.MethodPost, "/api/auth/login", "", fiber.Map{"email": "alice@example.com", "password": "secret1"})
	require.Equal(t, fiber.StatusOK, res.Status)
	session := res.Body["token"].(string)

	res = ts.do(t, http.MethodGet, "/api/auth/me", session, nil)
	require.Equal(t, fiber.StatusOK, res.Status)
	assert.Equal(t, true, res.Body["user"].(map[string]interface{})["is_verified"])

	res = ts.do(t, http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, res.Status)
	assert.Equal(t, false, res.Body["success"])
}

func TestProfileRoutes(t *testing.T) {
	ts := newTestServer(t)
	token := ts.verifiedUser(t, "alice@example.com", "+15550001")

	res := ts.do(t, http.MethodGet, "/api/profile", token, nil)
	assert.Equal(t, fiber.StatusNotFound, res.Status)

	body := fiber.Map{
		"firstName": "Alice", "lastName": "Smith", "gender": "Female", "houseNo": 7,
		"cityTownVillage": "Springfield", "district": "D", "state": "S", "country": "C",
	}
	res = ts.do(t, http.MethodPost, "/api/profile", token, body)
	require.Equal(t, fiber.StatusOK, res.Status, res.Body)

	body["cityTownVillage"] = "Shelbyville"
	res = ts.do(t, http.MethodPut, "/api/profile", token, body)
	require.Equal(t, fiber.StatusOK, res.Status, res.Body)

	res = ts.do(t, http.MethodGet, "/api/profile", token, nil)
	require.Equal(t, fiber.StatusOK, res.Status)
	profile := res.Body["data"].(map[string]interface{})["profile"].(map[string]interface{})
	assert.Equal(t, "Shelbyville", profile["city_town_village"])

	res = ts.do(t, http.MethodPut, "/api/profile/picture", token, fiber.Map{"imageUrl": ""})
	assert.Equal(t, fiber.StatusBadRequest, res.Status)

	res = ts.do(t, http.MethodDelete, "/api/profile", token, nil)
	assert.Equal(t, fiber.StatusOK, res.Status)
}

func TestCouponRoutes(t *testing.T) {
	ts := newTestServer(t)

	signup := ts.do(t, http.MethodPost, "/api/auth/signup", "", fiber.Map{
		"email": "bob@example.com", "phone": "+15550009", "password": "secret1", "confirmPassword": "secret1",
	})
	unverified := signup.Body["token"].(string)
	res := ts.do(t, http.MethodPost, "/api/coupons", unverified, fiber.Map{
		"brandName": "Acme", "couponId": "NOPE", "audience": "all", "duration": "1hrs",
	})
	assert.Equal(t, handlers.StatusNeedsAttention, res.Status)

	token := ts.verifiedUser(t, "alice@example.com", "+15550001")

	res = ts.do(t, http.MethodPost, "/api/coupons", token, fiber.Map{
		"brandName": "Acme", "couponId": "SAVE20", "discount": "20%", "audience": "all", "duration": "2hrs 30min",
	})
	require.Equal(t, fiber.StatusCreated, res.Status, res.Body)
	assert.Equal(t, "SAVE20", res.Body["data"].(map[string]interface{})["coupon_id"])

	res = ts.do(t, http.MethodPost, "/api/coupons", token, fiber.Map{"brandName": "Acme"})
	assert.Equal(t, fiber.StatusBadRequest, res.Status)

	var form bytes.Buffer
	mw := multipart.NewWriter(&form)
	require.NoError(t, mw.WriteField("brandName", "Globex"))
	require.NoError(t, mw.WriteField("couponId", "IMG1"))
	require.NoError(t, mw.WriteField("audience", "students"))
	require.NoError(t, mw.WriteField("duration", "45min"))
	part, err := mw.CreateFormFile("image", "coupon.png")
	require.NoError(t, err)
	_, err = part.Write(append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 32)...))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/coupons", &form)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	res = ts.send(t, req, token)
	require.Equal(t, fiber.StatusCreated, res.Status, res.Body)
	assert.Equal(t, "https://cdn.test/coupons/1", res.Body["data"].(map[string]interface{})["image_url"])

	res = ts.do(t, http.MethodGet, "/api/coupons", "", nil)
	require.Equal(t, fiber.StatusOK, res.Status)
	assert.Len(t, res.Body["data"], 2)

	res = ts.do(t, http.MethodPut, "/api/coupons/SAVE20", token, fiber.Map{"audience": "members"})
	require.Equal(t, fiber.StatusOK, res.Status, res.Body)
	assert.Equal(t, "members", res.Body["data"].(map[string]interface{})["audience"])

	res = ts.do(t, http.MethodGet, "/api/coupons/stats", "", nil)
	require.Equal(t, fiber.StatusOK, res.Status)
	assert.EqualValues(t, 2, res.Body["data"].(map[string]interface{})["total"])

	res = ts.do(t, http.MethodDelete, "/api/coupons/IMG1", token, nil)
	require.Equal(t, fiber.StatusOK, res.Status)
	assert.Equal(t, []string{"coupons/1"}, ts.assets.deleted)

	res = ts.do(t, http.MethodGet, "/api/coupons/IMG1", "", nil)
	assert.Equal(t, fiber.StatusNotFound, res.Status)
	assert.Equal(t, "not_found", res.Body["code"])
}
