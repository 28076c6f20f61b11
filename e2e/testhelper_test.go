package e2e

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/makeasinger/fretboard/internal/auth"
	"github.com/makeasinger/fretboard/internal/client"
	"github.com/makeasinger/fretboard/internal/config"
	"github.com/makeasinger/fretboard/internal/server"
	"github.com/makeasinger/fretboard/internal/service"
	ws "github.com/makeasinger/fretboard/internal/websocket"
)

const (
	testJWTSecret = "test-secret-for-e2e"
	testUserID    = "test-user-123"
	redisAddr     = "localhost:6379"
	redisTestDB   = 15 // avoid collisions with a developer's data
	testFilesURL  = "https://cdn.test/files"
)

// testApp holds all components needed for testing
type testApp struct {
	app       *fiber.App
	storage   *client.MemoryStorage
	songbooks *service.SongbookService
	redisUp   bool
}

// setupApp creates the same app as cmd/server with memory storage and legacy
// HMAC auth. Redis-backed routes only work when Redis is running locally.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	redisClient := redis.NewClient(&redis.Options{
		Addr:        redisAddr,
		DB:          redisTestDB,
		MaxRetries:  -1,
		DialTimeout: 200 * time.Millisecond,
	})
	t.Cleanup(func() { redisClient.Close() })

	pingCtx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	redisUp := redisClient.Ping(pingCtx).Err() == nil

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{Addr: redisAddr, DB: redisTestDB})
	t.Cleanup(func() { asynqClient.Close() })

	ctx, stop := context.WithCancel(context.Background())
	t.Cleanup(stop)
	hub := ws.NewHub()
	go hub.Run(ctx)

	storage := client.NewMemoryStorage(testFilesURL, service.ExportTTL)
	diagrams := service.NewDiagramService()
	songbooks := service.NewSongbookService(redisClient, asynqClient)

	cfg := &config.Config{
		RateLimit: config.RateLimitConfig{
			// very high so tests don't get blocked
			DiagramPerMin:   100000,
			ExportPerHour:   100000,
			SongbookPerHour: 100000,
		},
	}

	app := server.New(server.Deps{
		Config:        cfg,
		Redis:         redisClient,
		Authenticator: auth.NewAuthenticator(nil, testJWTSecret),
		Diagrams:      diagrams,
		Exports:       service.NewExportService(diagrams, storage),
		Songbooks:     songbooks,
		Hub:           hub,
		Files:         storage,
		Services:      map[string]bool{"r2": false, "oidc": false, "auth": true},
	})

	return &testApp{app: app, storage: storage, songbooks: songbooks, redisUp: redisUp}
}

// requireRedis skips tests that need job storage
func (ta *testApp) requireRedis(t *testing.T) {
	t.Helper()
	if !ta.redisUp {
		t.Skip("redis not available on " + redisAddr)
	}
}

// generateToken creates a legacy HMAC JWT token for test requests.
func generateToken(t *testing.T) string {
	t.Helper()
	return generateTokenFor(t, testUserID)
}

func generateTokenFor(t *testing.T, userID string) string {
	t.Helper()
	signed, err := auth.IssueLegacyToken(testJWTSecret, userID, "test@example.com", time.Hour)
	if err != nil {
		t.Fatalf("failed to generate test token: %v", err)
	}
	return signed
}

// doRequest is a helper to perform HTTP requests against the test app.
func doRequest(app *fiber.App, method, path string, body string, headers map[string]string) (*http.Response, error) {
	var bodyReader io.Reader
	if body != "" {
		bodyReader = strings.NewReader(body)
	}

	req, err := http.NewRequest(method, path, bodyReader)
	if err != nil {
		return nil, err
	}

	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return app.Test(req, -1)
}

// doAuthRequest performs an authenticated request.
func doAuthRequest(t *testing.T, app *fiber.App, method, path, body string) (*http.Response, error) {
	t.Helper()
	return doRequest(app, method, path, body, map[string]string{
		"Authorization": "Bearer " + generateToken(t),
	})
}

// readBody reads and returns the response body as a string.
func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	return string(b)
}

// parseJSON parses response body into a map.
func parseJSON(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	body := readBody(t, resp)
	var result map[string]any
	if err := json.Unmarshal([]byte(body), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, body)
	}
	return result
}

// wsHeaders are the headers of a websocket upgrade request.
func wsHeaders() map[string]string {
	return map[string]string{
		"Connection":            "Upgrade",
		"Upgrade":               "websocket",
		"Sec-WebSocket-Version": "13",
		"Sec-WebSocket-Key":     "dGhlIHNhbXBsZSBub25jZQ==",
	}
}

// assertStatus checks the HTTP status code.
func assertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("expected status %d, got %d", expected, resp.StatusCode)
	}
}

// assertErrorCode checks the code inside the error envelope.
func assertErrorCode(t *testing.T, resp *http.Response, code string) map[string]any {
	t.Helper()
	result := parseJSON(t, resp)
	errObj, ok := result["error"].(map[string]any)
	if !ok {
		t.Fatalf("expected error envelope, got %v", result)
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %s, got %v", code, errObj["code"])
	}
	return errObj
}
