package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/3Eeeecho/go-secureprint/internal/config"
	"github.com/3Eeeecho/go-secureprint/internal/pkg/notify"
	"github.com/3Eeeecho/go-secureprint/internal/repositories"
	"github.com/3Eeeecho/go-secureprint/internal/services/admin"
	"github.com/3Eeeecho/go-secureprint/internal/services/explorer"
	"github.com/3Eeeecho/go-secureprint/internal/services/share"
	"github.com/3Eeeecho/go-secureprint/internal/testutil"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMailer struct {
	mu   sync.Mutex
	sent []notify.Mail
	err  error
}

func (m *fakeMailer) Send(ctx context.Context, mail notify.Mail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, mail)
	return nil
}

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type testServer struct {
	engine     *gin.Engine
	store      *testutil.MemoryStorage
	mailer     *fakeMailer
	dispatcher *notify.AsyncDispatcher
	clock      *testClock
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Server: config.ServerConfig{Mode: gin.TestMode},
		JWT:    config.JWTConfig{SecretKey: "router-secret", Issuer: "test", ExpiresIn: 7 * 24 * time.Hour},
		Link:   config.LinkConfig{TTLSeconds: 300, FrontendURL: "http://localhost:5173"},
	}

	db := testutil.NewTestDB(t)
	store := testutil.NewMemoryStorage()
	mailer := &fakeMailer{}
	dispatcher := notify.NewAsyncDispatcher(mailer, time.Second)
	clock := &testClock{t: time.Now().UTC().Truncate(time.Second)}

	authService := admin.NewAuthService(repositories.NewUserRepository(db), cfg.JWT)
	fileService := explorer.NewFileService(repositories.NewFileRepository(db, 16, time.Minute), store, "bucket")
	linkService := share.NewLinkService(repositories.NewLinkRepository(db), fileService, mailer, dispatcher, cfg.Link, share.WithClock(clock.Now))

	engine := InitRouter(NewRouterConfig(authService, fileService, linkService, cfg))
	return &testServer{engine: engine, store: store, mailer: mailer, dispatcher: dispatcher, clock: clock}
}

func (s *testServer) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func (s *testServer) upload(t *testing.T, token, filename, contentType string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (s *testServer) signupAndLogin(t *testing.T, email string) string {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/auth/signup", gin.H{"email": email, "password": "pw123456", "name": "N"}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "User registered", body["message"])
	assert.NotZero(t, body["id"])

	w = s.do(t, http.MethodPost, "/api/auth/login", gin.H{"email": email, "password": "pw123456"}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	token, _ := decode(t, w)["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestPrintFlowEndToEnd(t *testing.T) {
	s := newTestServer(t)
	token := s.signupAndLogin(t, "alice@example.com")

	w := s.upload(t, token, "doc.pdf", "application/pdf", []byte("ABCDEFGHIJ"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	up := decode(t, w)
	assert.Equal(t, "uploaded", up["message"])
	meta := up["meta"].(map[string]any)
	assert.Equal(t, "doc.pdf", meta["filename"])
	assert.Equal(t, "application/pdf", meta["contentType"])
	assert.EqualValues(t, 10, meta["length"])
	assert.NotEmpty(t, meta["uploadedAt"])
	fileID := meta["fileId"].(string)

	w = s.do(t, http.MethodPost, "/api/link/generate", gin.H{"fileId": fileID}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	gen := decode(t, w)
	linkID := gen["linkId"].(string)
	otp := gen["otp"].(string)
	assert.Equal(t, "http://localhost:5173/shop/"+linkID, gen["url"])
	assert.NotEmpty(t, gen["expiresAt"])

	// 签发通知异步发送给本人
	s.dispatcher.Wait()
	require.Len(t, s.mailer.sent, 1)
	assert.Equal(t, "alice@example.com", s.mailer.sent[0].To)

	// 未验证时不能下载
	w = s.do(t, http.MethodGet, "/api/link/"+linkID+"/blob", nil, "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "OTP not validated", decode(t, w)["error"])

	w = s.do(t, http.MethodPost, "/api/link/"+linkID+"/validate", gin.H{"otp": otp}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"success":true,"message":"OTP validated"}`, w.Body.String())

	w = s.do(t, http.MethodGet, "/api/link/"+linkID+"/blob", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ABCDEFGHIJ", w.Body.String())
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	assert.Equal(t, "10", w.Header().Get("Content-Length"))

	s.clock.Advance(301 * time.Second)
	w = s.do(t, http.MethodGet, "/api/link/"+linkID+"/blob", nil, "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "link expired", decode(t, w)["error"])

	w = s.do(t, http.MethodPost, "/api/link/"+linkID+"/validate", gin.H{"otp": otp}, "")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestGenerate_NumericFileIDAndOwnership(t *testing.T) {
	s := newTestServer(t)
	alice := s.signupAndLogin(t, "alice@example.com")
	bob := s.signupAndLogin(t, "bob@example.com")

	w := s.upload(t, alice, "doc.pdf", "application/pdf", []byte("data"))
	require.Equal(t, http.StatusOK, w.Code)
	recordID := decode(t, w)["meta"].(map[string]any)["id"].(float64)

	raw := []byte(`{"fileId":` + strconv.FormatUint(uint64(recordID), 10) + `}`)
	req := httptest.NewRequest(http.MethodPost, "/api/link/generate", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+alice)
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	req = httptest.NewRequest(http.MethodPost, "/api/link/generate", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+bob)
	rec = httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "forbidden", decode(t, rec)["error"])

	w = s.do(t, http.MethodPost, "/api/link/generate", gin.H{"fileId": "nope"}, alice)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodPost, "/api/link/generate", gin.H{}, alice)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	s.dispatcher.Wait()
}

func TestValidate_WrongCode(t *testing.T) {
	s := newTestServer(t)
	token := s.signupAndLogin(t, "alice@example.com")
	w := s.upload(t, token, "doc.pdf", "application/pdf", []byte("data"))
	fileID := decode(t, w)["meta"].(map[string]any)["fileId"].(string)
	w = s.do(t, http.MethodPost, "/api/link/generate", gin.H{"fileId": fileID}, token)
	gen := decode(t, w)
	linkID := gen["linkId"].(string)
	wrong := "000000"
	if gen["otp"] == wrong {
		wrong = "111111"
	}

	w = s.do(t, http.MethodPost, "/api/link/"+linkID+"/validate", gin.H{"otp": wrong}, "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "invalid otp", decode(t, w)["error"])

	w = s.do(t, http.MethodPost, "/api/link/"+linkID+"/validate", gin.H{}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "otp required", decode(t, w)["error"])

	w = s.do(t, http.MethodPost, "/api/link/missing/validate", gin.H{"otp": "123456"}, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "link not found", decode(t, w)["error"])
	s.dispatcher.Wait()
}

func TestSend(t *testing.T) {
	s := newTestServer(t)
	token := s.signupAndLogin(t, "alice@example.com")
	w := s.upload(t, token, "doc.pdf", "application/pdf", []byte("data"))
	fileID := decode(t, w)["meta"].(map[string]any)["fileId"].(string)
	w = s.do(t, http.MethodPost, "/api/link/generate", gin.H{"fileId": fileID}, token)
	linkID := decode(t, w)["linkId"].(string)
	s.dispatcher.Wait()

	w = s.do(t, http.MethodPost, "/api/link/send", gin.H{"linkId": linkID, "email": "shop@example.com"}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"success":true,"message":"Link sent to shop@example.com"}`, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/link/send", gin.H{"linkId": linkID}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/link/send", gin.H{"linkId": "missing", "email": "shop@example.com"}, token)
	assert.Equal(t, http.StatusNotFound, w.Code)

	s.mailer.mu.Lock()
	s.mailer.err = errors.New("smtp down")
	s.mailer.mu.Unlock()
	w = s.do(t, http.MethodPost, "/api/link/send", gin.H{"linkId": linkID, "email": "shop@example.com"}, token)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Failed to send email", decode(t, w)["error"])
}

// validatedLink 上传文件, 签发链接并完成验证码校验, 返回链接 id
func (s *testServer) validatedLink(t *testing.T, filename, contentType string, content []byte) string {
	t.Helper()
	token := s.signupAndLogin(t, "alice@example.com")
	w := s.upload(t, token, filename, contentType, content)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	fileID := decode(t, w)["meta"].(map[string]any)["fileId"].(string)

	w = s.do(t, http.MethodPost, "/api/link/generate", gin.H{"fileId": fileID}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	gen := decode(t, w)
	linkID := gen["linkId"].(string)

	w = s.do(t, http.MethodPost, "/api/link/"+linkID+"/validate", gin.H{"otp": gen["otp"]}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	s.dispatcher.Wait()
	return linkID
}

func TestBlob_NonPDFUploadServedAsPDF(t *testing.T) {
	s := newTestServer(t)
	linkID := s.validatedLink(t, "scan.png", "image/png", []byte("PNGDATA"))

	w := s.do(t, http.MethodGet, "/api/link/"+linkID+"/blob", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, "7", w.Header().Get("Content-Length"))
	assert.Equal(t, `inline; filename=scan.png`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "PNGDATA", w.Body.String())
}

func TestBlob_StreamErrorBeforeFirstByte(t *testing.T) {
	s := newTestServer(t)
	linkID := s.validatedLink(t, "empty.pdf", "application/pdf", []byte{})

	s.store.FailStream(errors.New("connection reset"), 0)
	w := s.do(t, http.MethodGet, "/api/link/"+linkID+"/blob", nil, "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Empty(t, w.Header().Get("Content-Length"))
	assert.Empty(t, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "Error streaming file", decode(t, w)["error"])
}

func TestBlob_StreamErrorAfterFirstByte(t *testing.T) {
	s := newTestServer(t)
	linkID := s.validatedLink(t, "doc.pdf", "application/pdf", []byte("ABCDEFGHIJKLMNOPQRST"))

	srv := httptest.NewServer(s.engine)
	defer srv.Close()

	s.store.FailStream(errors.New("connection reset"), 10)
	resp, err := http.Get(srv.URL + "/api/link/" + linkID + "/blob")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 20, resp.ContentLength)
	body, err := io.ReadAll(resp.Body)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Equal(t, "ABCDEFGHIJ", string(body))
}

func TestAuthAndUploadErrors(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/link/generate", gin.H{"fileId": "x"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Unauthorized", decode(t, w)["error"])

	w = s.do(t, http.MethodPost, "/api/link/generate", gin.H{"fileId": "x"}, "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid token", decode(t, w)["error"])

	token := s.signupAndLogin(t, "alice@example.com")

	req := httptest.NewRequest(http.MethodPost, "/api/upload", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "No file uploaded", decode(t, rec)["error"])

	s.store.PutErr = errors.New("minio down")
	w = s.upload(t, token, "doc.pdf", "application/pdf", []byte("data"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestSignupAndLoginErrors(t *testing.T) {
	s := newTestServer(t)
	s.signupAndLogin(t, "alice@example.com")

	w := s.do(t, http.MethodPost, "/api/auth/signup", gin.H{"email": "alice@example.com", "password": "x"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "User exists", decode(t, w)["error"])

	w = s.do(t, http.MethodPost, "/api/auth/signup", gin.H{"email": "x@example.com"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/auth/signup", gin.H{"email": "long@example.com", "password": strings.Repeat("p", 100)}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/auth/login", gin.H{"email": "alice@example.com", "password": "wrong"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid credentials", decode(t, w)["error"])
}

func TestHealthAndNoRoute(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/ping", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"pong"}`, w.Body.String())

	w = s.do(t, http.MethodGet, "/metrics", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "secureprint_http_requests_total")

	w = s.do(t, http.MethodGet, "/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
