package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	httpHandler "moneytracker/internal/adapter/http/handler"
	redisStorage "moneytracker/internal/adapter/storage/redis"
	"moneytracker/internal/service"
	"moneytracker/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testApp builds a full application stack backed by in-memory repos and
// miniredis. This exercises the real HTTP layer, middleware, handlers,
// services, and Redis stores end-to-end.

type testApp struct {
	server *httptest.Server
	redis  *miniredis.Miniredis
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)

	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)

	// Core services with real implementations
	hashSvc := service.NewArgon2HashService()
	tokenSvc := service.NewJWTTokenService("test-jwt-secret-key-32bytes!!", 24*time.Hour, "test-issuer")

	// In-memory repos
	userRepo := newInMemoryUserRepo()
	walletRepo := newInMemoryWalletRepo()
	personRepo := newInMemoryPersonRepo()
	entryRepo := newInMemoryEntryRepo(walletRepo)
	auditRepo := newInMemoryAuditRepo()
	transactor := newLockingTransactor()

	// Business services
	log := logger.New("debug", false)
	authSvc := service.NewAuthService(userRepo, hashSvc, tokenSvc)
	ledgerSvc := service.NewLedgerService(entryRepo, walletRepo, personRepo, transactor, log)
	walletSvc := service.NewWalletService(walletRepo, log)
	personSvc := service.NewPersonService(personRepo, entryRepo, log)
	reportingSvc := service.NewReportingService(entryRepo, walletRepo, log)
	auditSvc := service.NewAuditService(auditRepo, log)

	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		AuthSvc:        authSvc,
		LedgerSvc:      ledgerSvc,
		WalletSvc:      walletSvc,
		PersonSvc:      personSvc,
		ReportingSvc:   reportingSvc,
		TokenSvc:       tokenSvc,
		RateLimitStore: rateLimitStore,
		AuditSvc:       auditSvc,
		Logger:         log,
	})

	server := httptest.NewServer(router)

	return &testApp{
		server: server,
		redis:  mr,
	}
}

func (a *testApp) close() {
	a.server.Close()
	a.redis.Close()
}

// --- HTTP helpers ---

func (a *testApp) do(t *testing.T, method, path, token string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, a.server.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var parsed map[string]interface{}
	_ = json.NewDecoder(resp.Body).Decode(&parsed)
	return resp, parsed
}

// registerAndLogin registers a fresh user and returns a valid JWT.
func (a *testApp) registerAndLogin(t *testing.T, email string) string {
	t.Helper()

	resp, body := a.do(t, "POST", "/api/v1/auth/register", "", map[string]string{
		"email":    email,
		"password": "StrongPass123!",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "register failed: %v", body)

	data := body["data"].(map[string]interface{})
	token, _ := data["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func data(t *testing.T, body map[string]interface{}) map[string]interface{} {
	t.Helper()
	d, ok := body["data"].(map[string]interface{})
	require.True(t, ok, "no data object in response: %v", body)
	return d
}

// --- Integration Tests ---

func TestIntegration_HealthCheck(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	resp, err := http.Get(app.server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
}

func TestIntegration_RegisterAndLogin(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	resp, body := app.do(t, "POST", "/api/v1/auth/register", "", map[string]string{
		"email":    "alice@example.com",
		"password": "StrongPass123!",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	d := data(t, body)
	assert.NotEmpty(t, d["user_id"])
	assert.NotEmpty(t, d["token"])

	// Duplicate email conflicts
	resp, body = app.do(t, "POST", "/api/v1/auth/register", "", map[string]string{
		"email":    "alice@example.com",
		"password": "AnotherPass456!",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "AUTH_002", body["error_code"])

	// Login succeeds
	resp, body = app.do(t, "POST", "/api/v1/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "StrongPass123!",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, data(t, body)["token"])

	// Wrong password rejected
	resp, body = app.do(t, "POST", "/api/v1/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "WrongPass999!",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "AUTH_001", body["error_code"])
}

func TestIntegration_RequiresAuth(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	resp, _ := app.do(t, "GET", "/api/v1/wallets", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = app.do(t, "POST", "/api/v1/transactions", "", map[string]string{"kind": "EXPENSE", "amount": "10"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestIntegration_WalletLifecycle(t *testing.T) {
	app := newTestApp(t)
	defer app.close()
	token := app.registerAndLogin(t, "wallets@example.com")

	// Create CASH wallet
	resp, body := app.do(t, "POST", "/api/v1/wallets", token, map[string]string{"kind": "CASH"})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	d := data(t, body)
	assert.Equal(t, "CASH", d["kind"])
	assert.Equal(t, "0", d["balance"])

	// Duplicate kind conflicts
	resp, body = app.do(t, "POST", "/api/v1/wallets", token, map[string]string{"kind": "CASH"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "RES_003", body["error_code"])

	// Second kind is fine
	resp, _ = app.do(t, "POST", "/api/v1/wallets", token, map[string]string{"kind": "ONLINE"})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	// List both
	resp, body = app.do(t, "GET", "/api/v1/wallets", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	items := body["data"].([]interface{})
	assert.Len(t, items, 2)
}

func TestIntegration_LedgerFlow(t *testing.T) {
	app := newTestApp(t)
	defer app.close()
	token := app.registerAndLogin(t, "ledger@example.com")

	// Setup: CASH wallet and a person
	_, body := app.do(t, "POST", "/api/v1/wallets", token, map[string]string{"kind": "CASH"})
	cashID := data(t, body)["id"].(string)

	_, body = app.do(t, "POST", "/api/v1/people", token, map[string]string{"name": "Uncle Joe"})
	personID := data(t, body)["id"].(string)

	// RECEIVED 100 from Uncle Joe into cash
	resp, body := app.do(t, "POST", "/api/v1/transactions", token, map[string]interface{}{
		"kind":         "RECEIVED",
		"amount":       "100",
		"person_id":    personID,
		"to_wallet_id": cashID,
		"description":  "lunch money back",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	d := data(t, body)
	assert.Equal(t, "RECEIVED", d["kind"])
	assert.Equal(t, false, d["is_reversal"])

	// Balance reflects the entry
	resp, body = app.do(t, "GET", "/api/v1/wallets/balance", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "100", data(t, body)["cash"])

	// Person summary shows the debt direction
	resp, body = app.do(t, "GET", "/api/v1/people/"+personID, token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	d = data(t, body)
	assert.Equal(t, "THEY_OWE_ME", d["status"])
	assert.Equal(t, "100", d["net_balance"])

	// Deleting a referenced person conflicts
	resp, body = app.do(t, "DELETE", "/api/v1/people/"+personID, token, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "RES_003", body["error_code"])

	// Log lists the entry
	resp, body = app.do(t, "GET", "/api/v1/transactions", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	items := body["data"].([]interface{})
	assert.Len(t, items, 1)
}

func TestIntegration_ShapeViolationLeavesBalancesUntouched(t *testing.T) {
	app := newTestApp(t)
	defer app.close()
	token := app.registerAndLogin(t, "shapes@example.com")

	_, body := app.do(t, "POST", "/api/v1/wallets", token, map[string]string{"kind": "CASH"})
	cashID := data(t, body)["id"].(string)
	_, body = app.do(t, "POST", "/api/v1/people", token, map[string]string{"name": "Bob"})
	personID := data(t, body)["id"].(string)

	// GIVEN must not carry a toWallet
	resp, body := app.do(t, "POST", "/api/v1/transactions", token, map[string]interface{}{
		"kind":           "GIVEN",
		"amount":         "50",
		"person_id":      personID,
		"from_wallet_id": cashID,
		"to_wallet_id":   cashID,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "LED_003", body["error_code"])

	// Nothing moved
	resp, body = app.do(t, "GET", "/api/v1/wallets/balance", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "0", data(t, body)["total"])

	// And no entry was appended
	resp, body = app.do(t, "GET", "/api/v1/transactions", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	items, _ := body["data"].([]interface{})
	assert.Len(t, items, 0)
}

func TestIntegration_TransferAndReversal(t *testing.T) {
	app := newTestApp(t)
	defer app.close()
	token := app.registerAndLogin(t, "transfer@example.com")

	_, body := app.do(t, "POST", "/api/v1/wallets", token, map[string]string{"kind": "CASH"})
	cashID := data(t, body)["id"].(string)
	_, body = app.do(t, "POST", "/api/v1/wallets", token, map[string]string{"kind": "ONLINE"})
	onlineID := data(t, body)["id"].(string)

	// Seed cash with income
	resp, _ := app.do(t, "POST", "/api/v1/transactions", token, map[string]interface{}{
		"kind":         "INCOME",
		"amount":       "100",
		"to_wallet_id": cashID,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// TRANSFER 40 cash -> online
	resp, body = app.do(t, "POST", "/api/v1/transactions", token, map[string]interface{}{
		"kind":           "TRANSFER",
		"amount":         "40",
		"from_wallet_id": cashID,
		"to_wallet_id":   onlineID,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	transferID := data(t, body)["id"].(string)

	resp, body = app.do(t, "GET", "/api/v1/wallets/balance", token, nil)
	d := data(t, body)
	assert.Equal(t, "60", d["cash"])
	assert.Equal(t, "40", d["online"])

	// Reverse the transfer
	resp, body = app.do(t, "POST", "/api/v1/transactions/"+transferID+"/reverse", token, nil)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	rev := data(t, body)
	assert.Equal(t, "TRANSFER", rev["kind"])
	assert.Equal(t, true, rev["is_reversal"])
	assert.Contains(t, rev["description"], "REVERSAL of #"+transferID)

	// Balances restored
	resp, body = app.do(t, "GET", "/api/v1/wallets/balance", token, nil)
	d = data(t, body)
	assert.Equal(t, "100", d["cash"])
	assert.Equal(t, "0", d["online"])

	// Second reversal conflicts
	resp, body = app.do(t, "POST", "/api/v1/transactions/"+transferID+"/reverse", token, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "LED_005", body["error_code"])

	// Reversing the reversal is rejected
	reversalID := rev["id"].(string)
	resp, body = app.do(t, "POST", "/api/v1/transactions/"+reversalID+"/reverse", token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "LED_004", body["error_code"])
}

func TestIntegration_ReversalSettlesPersonDebt(t *testing.T) {
	app := newTestApp(t)
	defer app.close()
	token := app.registerAndLogin(t, "debts@example.com")

	_, body := app.do(t, "POST", "/api/v1/wallets", token, map[string]string{"kind": "CASH"})
	cashID := data(t, body)["id"].(string)
	_, body = app.do(t, "POST", "/api/v1/people", token, map[string]string{"name": "Carol"})
	personID := data(t, body)["id"].(string)

	resp, body := app.do(t, "POST", "/api/v1/transactions", token, map[string]interface{}{
		"kind":         "RECEIVED",
		"amount":       "75",
		"person_id":    personID,
		"to_wallet_id": cashID,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	entryID := data(t, body)["id"].(string)

	resp, body = app.do(t, "GET", "/api/v1/people/"+personID, token, nil)
	assert.Equal(t, "THEY_OWE_ME", data(t, body)["status"])

	// The reversal is a GIVEN of the same amount, netting the debt to zero
	resp, _ = app.do(t, "POST", "/api/v1/transactions/"+entryID+"/reverse", token, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body = app.do(t, "GET", "/api/v1/people/"+personID, token, nil)
	d := data(t, body)
	assert.Equal(t, "SETTLED", d["status"])
	assert.Equal(t, "0", d["net_balance"])
}

func TestIntegration_EntryFilters(t *testing.T) {
	app := newTestApp(t)
	defer app.close()
	token := app.registerAndLogin(t, "filters@example.com")

	_, body := app.do(t, "POST", "/api/v1/wallets", token, map[string]string{"kind": "CASH"})
	cashID := data(t, body)["id"].(string)

	for i, kind := range []string{"INCOME", "INCOME", "EXPENSE"} {
		var req map[string]interface{}
		if kind == "INCOME" {
			req = map[string]interface{}{"kind": kind, "amount": "10", "to_wallet_id": cashID}
		} else {
			req = map[string]interface{}{"kind": kind, "amount": "5", "from_wallet_id": cashID}
		}
		resp, _ := app.do(t, "POST", "/api/v1/transactions", token, req)
		require.Equal(t, http.StatusCreated, resp.StatusCode, "entry %d", i)
	}

	resp, body := app.do(t, "GET", "/api/v1/transactions?kind=INCOME", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	items := body["data"].([]interface{})
	assert.Len(t, items, 2)

	resp, body = app.do(t, "GET", "/api/v1/transactions?kind=EXPENSE&wallet_kind=CASH", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	items = body["data"].([]interface{})
	assert.Len(t, items, 1)

	// Future-dated window excludes everything
	resp, body = app.do(t, "GET", "/api/v1/transactions?from=2099-01-01", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	items, _ = body["data"].([]interface{})
	assert.Len(t, items, 0)
}

func TestIntegration_CrossUserIsolation(t *testing.T) {
	app := newTestApp(t)
	defer app.close()
	tokenA := app.registerAndLogin(t, "usera@example.com")
	tokenB := app.registerAndLogin(t, "userb@example.com")

	_, body := app.do(t, "POST", "/api/v1/wallets", tokenA, map[string]string{"kind": "CASH"})
	walletA := data(t, body)["id"].(string)

	// User B cannot pay into user A's wallet
	resp, body := app.do(t, "POST", "/api/v1/transactions", tokenB, map[string]interface{}{
		"kind":         "INCOME",
		"amount":       "10",
		"to_wallet_id": walletA,
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "RES_002", body["error_code"])

	// User B cannot reverse user A's entries
	resp, _ = app.do(t, "POST", "/api/v1/transactions", tokenA, map[string]interface{}{
		"kind":         "INCOME",
		"amount":       "10",
		"to_wallet_id": walletA,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp, body = app.do(t, "GET", "/api/v1/transactions", tokenA, nil)
	entryID := body["data"].([]interface{})[0].(map[string]interface{})["id"].(string)

	resp, body = app.do(t, "POST", "/api/v1/transactions/"+entryID+"/reverse", tokenB, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
