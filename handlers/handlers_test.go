package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mining-system/catalog"
	"mining-system/config"
	"mining-system/handlers"
	"mining-system/services"
	"mining-system/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// Любая строка длиннее 10 символов проходит mock-проверку платежа
const validTxHash = "abcdef1234567890"

func testServer(t *testing.T) *gin.Engine {
	t.Helper()

	cfg := &config.Config{
		Env:            "test",
		AllowedOrigins: []string{"*"},

		JWTSecret:        "test-access-secret",
		JWTRefreshSecret: "test-refresh-secret",
		JWTAccessExpiry:  time.Hour,
		JWTRefreshExpiry: 24 * time.Hour,

		TRXAddress:          "TFNHcYdhEq5sgjaWPdR1Gnxgzu3RUKncwu",
		SignupBonus:         decimal.NewFromInt(25),
		ReferralReward:      decimal.NewFromInt(50),
		MinWithdrawMine:     decimal.NewFromInt(25),
		MinWithdrawReferral: decimal.NewFromInt(50),

		AuthRateLimit:  1000,
		AuthRateWindow: time.Minute,
	}

	st := store.NewMemory()
	cat := catalog.Default()

	locks := services.NewLocks()
	ledger := services.NewLedger(st)
	referrals := services.NewReferrals(st, ledger, locks, cfg.ReferralReward)
	nodes := services.NewNodes(st, cat, ledger, referrals, services.MockTronVerifier{}, locks)
	withdrawals := services.NewWithdrawals(st, ledger, locks, cfg.MinWithdrawMine, cfg.MinWithdrawReferral)
	accounts := services.NewAccounts(st, ledger, referrals, cfg.SignupBonus)

	h := handlers.New(cfg, cat, accounts, ledger, nodes, referrals, withdrawals)
	return handlers.SetupRouter(cfg, zap.NewNop(), h)
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body gin.H) (int, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w.Code, resp
}

func signupUser(t *testing.T, r *gin.Engine, username, referCode string) (token string, user map[string]interface{}) {
	t.Helper()
	body := gin.H{"username": username, "password": "password123"}
	if referCode != "" {
		body["refer_code"] = referCode
	}
	code, resp := doJSON(t, r, http.MethodPost, "/api/auth/signup", "", body)
	require.Equal(t, http.StatusOK, code)
	return resp["token"].(string), resp["user"].(map[string]interface{})
}

func profile(t *testing.T, r *gin.Engine, token string) map[string]interface{} {
	t.Helper()
	code, resp := doJSON(t, r, http.MethodGet, "/api/user/profile", token, nil)
	require.Equal(t, http.StatusOK, code)
	return resp["user"].(map[string]interface{})
}

func TestSignupLoginFlow(t *testing.T) {
	r := testServer(t)

	token, user := signupUser(t, r, "alice", "")
	require.NotEmpty(t, token)
	require.Equal(t, "alice", user["username"])
	require.Equal(t, 25.0, user["mine_balance"])
	require.Equal(t, 0.0, user["referral_balance"])
	require.Len(t, user["refer_code"].(string), 8)

	code, resp := doJSON(t, r, http.MethodPost, "/api/auth/login", "", gin.H{
		"username": "alice", "password": "password123",
	})
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, true, resp["success"])

	code, _ = doJSON(t, r, http.MethodPost, "/api/auth/login", "", gin.H{
		"username": "alice", "password": "wrongpass",
	})
	require.Equal(t, http.StatusUnauthorized, code)

	// Повторная регистрация того же имени
	code, _ = doJSON(t, r, http.MethodPost, "/api/auth/signup", "", gin.H{
		"username": "alice", "password": "password123",
	})
	require.Equal(t, http.StatusBadRequest, code)
}

func TestSignupInvalidReferralCode(t *testing.T) {
	r := testServer(t)

	code, _ := doJSON(t, r, http.MethodPost, "/api/auth/signup", "", gin.H{
		"username": "bob", "password": "password123", "refer_code": "BADCODE1",
	})
	require.Equal(t, http.StatusBadRequest, code)

	// Регистрация полностью отменена — вход невозможен
	code, _ = doJSON(t, r, http.MethodPost, "/api/auth/login", "", gin.H{
		"username": "bob", "password": "password123",
	})
	require.Equal(t, http.StatusUnauthorized, code)
}

func TestRefreshTokenFlow(t *testing.T) {
	r := testServer(t)

	code, resp := doJSON(t, r, http.MethodPost, "/api/auth/signup", "", gin.H{
		"username": "alice", "password": "password123",
	})
	require.Equal(t, http.StatusOK, code)
	refresh := resp["refresh_token"].(string)

	code, resp = doJSON(t, r, http.MethodPost, "/api/auth/refresh", "", gin.H{
		"refresh_token": refresh,
	})
	require.Equal(t, http.StatusOK, code)

	// Новый access-токен открывает защищённые эндпоинты
	newToken := resp["token"].(string)
	user := profile(t, r, newToken)
	require.Equal(t, "alice", user["username"])

	code, _ = doJSON(t, r, http.MethodPost, "/api/auth/refresh", "", gin.H{
		"refresh_token": "garbage",
	})
	require.Equal(t, http.StatusUnauthorized, code)
}

func TestProtectedEndpointsRequireToken(t *testing.T) {
	r := testServer(t)

	for _, path := range []string{"/api/user/profile", "/api/nodes", "/api/referrals"} {
		code, _ := doJSON(t, r, http.MethodGet, path, "", nil)
		require.Equal(t, http.StatusUnauthorized, code, path)
	}
	code, _ := doJSON(t, r, http.MethodGet, "/api/user/profile", "not-a-token", nil)
	require.Equal(t, http.StatusUnauthorized, code)
}

func TestPurchaseAndReferralReward(t *testing.T) {
	r := testServer(t)

	aliceToken, alice := signupUser(t, r, "alice", "")
	bobToken, _ := signupUser(t, r, "bob", alice["refer_code"].(string))

	code, resp := doJSON(t, r, http.MethodPost, "/api/nodes/purchase", bobToken, gin.H{
		"node_id": "node1", "transaction_hash": validTxHash,
	})
	require.Equal(t, http.StatusOK, code)
	node := resp["node"].(map[string]interface{})
	require.Equal(t, "64 GB Node", node["name"])
	require.Equal(t, 500.0, node["mining_amount"])

	// Первая покупка приглашённого начисляет награду рефереру
	aliceProfile := profile(t, r, aliceToken)
	require.Equal(t, 50.0, aliceProfile["referral_balance"])

	bobProfile := profile(t, r, bobToken)
	require.Equal(t, true, bobProfile["has_purchased_node"])
	require.Equal(t, false, bobProfile["has_purchased_node4"])

	// Вторая активная нода запрещена
	code, _ = doJSON(t, r, http.MethodPost, "/api/nodes/purchase", bobToken, gin.H{
		"node_id": "node2", "transaction_hash": validTxHash,
	})
	require.Equal(t, http.StatusBadRequest, code)

	code, resp = doJSON(t, r, http.MethodGet, "/api/referrals", aliceToken, nil)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, 50.0, resp["total_earned"])
	require.Len(t, resp["valid_referrals"], 1)
}

func TestPurchaseRejectsBadInput(t *testing.T) {
	r := testServer(t)
	token, _ := signupUser(t, r, "alice", "")

	code, _ := doJSON(t, r, http.MethodPost, "/api/nodes/purchase", token, gin.H{
		"node_id": "node99", "transaction_hash": validTxHash,
	})
	require.Equal(t, http.StatusBadRequest, code)

	code, _ = doJSON(t, r, http.MethodPost, "/api/nodes/purchase", token, gin.H{
		"node_id": "node1", "transaction_hash": "short",
	})
	require.Equal(t, http.StatusBadRequest, code)

	// Непройденная проверка платежа не оставляет следов
	statusCode, resp := doJSON(t, r, http.MethodGet, "/api/nodes", token, nil)
	require.Equal(t, http.StatusOK, statusCode)
	nodes := resp["nodes"].(map[string]interface{})
	n1 := nodes["node1"].(map[string]interface{})
	require.Equal(t, false, n1["owned"])
}

func TestNodesStatus(t *testing.T) {
	r := testServer(t)
	token, _ := signupUser(t, r, "alice", "")

	code, _ := doJSON(t, r, http.MethodPost, "/api/nodes/purchase", token, gin.H{
		"node_id": "node3", "transaction_hash": validTxHash,
	})
	require.Equal(t, http.StatusOK, code)

	code, resp := doJSON(t, r, http.MethodGet, "/api/nodes", token, nil)
	require.Equal(t, http.StatusOK, code)
	nodes := resp["nodes"].(map[string]interface{})
	require.Len(t, nodes, 4)

	n3 := nodes["node3"].(map[string]interface{})
	require.Equal(t, true, n3["owned"])
	require.Equal(t, true, n3["active"])
	require.Equal(t, false, n3["can_rebuy"])
	require.NotNil(t, n3["purchase_time"])

	n1 := nodes["node1"].(map[string]interface{})
	require.Equal(t, false, n1["owned"])
	require.Nil(t, n1["purchase_time"])
}

func TestWithdrawGating(t *testing.T) {
	r := testServer(t)

	aliceToken, alice := signupUser(t, r, "alice", "")
	bobToken, _ := signupUser(t, r, "bob", alice["refer_code"].(string))

	// Без купленной ноды вывод с mine-баланса закрыт даже при достатке средств
	code, _ := doJSON(t, r, http.MethodPost, "/api/withdraw", bobToken, gin.H{
		"balance_type": "mine", "amount": 25,
	})
	require.Equal(t, http.StatusBadRequest, code)

	code, _ = doJSON(t, r, http.MethodPost, "/api/nodes/purchase", bobToken, gin.H{
		"node_id": "node1", "transaction_hash": validTxHash,
	})
	require.Equal(t, http.StatusOK, code)

	code, resp := doJSON(t, r, http.MethodPost, "/api/withdraw", bobToken, gin.H{
		"balance_type": "mine", "amount": 25,
	})
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, true, resp["success"])
	require.Equal(t, 0.0, profile(t, r, bobToken)["mine_balance"])

	// referral-вывод требует топовую ноду
	code, _ = doJSON(t, r, http.MethodPost, "/api/withdraw", aliceToken, gin.H{
		"balance_type": "referral", "amount": 50,
	})
	require.Equal(t, http.StatusBadRequest, code)

	code, _ = doJSON(t, r, http.MethodPost, "/api/nodes/purchase", aliceToken, gin.H{
		"node_id": "node4", "transaction_hash": validTxHash,
	})
	require.Equal(t, http.StatusOK, code)

	code, _ = doJSON(t, r, http.MethodPost, "/api/withdraw", aliceToken, gin.H{
		"balance_type": "referral", "amount": 50,
	})
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, 0.0, profile(t, r, aliceToken)["referral_balance"])

	// Ниже минимума и неизвестный тип баланса
	code, _ = doJSON(t, r, http.MethodPost, "/api/withdraw", bobToken, gin.H{
		"balance_type": "mine", "amount": 10,
	})
	require.Equal(t, http.StatusBadRequest, code)

	code, _ = doJSON(t, r, http.MethodPost, "/api/withdraw", bobToken, gin.H{
		"balance_type": "bonus", "amount": 25,
	})
	require.Equal(t, http.StatusBadRequest, code)
}

func TestPublicEndpoints(t *testing.T) {
	r := testServer(t)

	code, resp := doJSON(t, r, http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "ok", resp["status"])

	code, resp = doJSON(t, r, http.MethodGet, "/api/config", "", nil)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "TFNHcYdhEq5sgjaWPdR1Gnxgzu3RUKncwu", resp["trx_address"])
	nodes := resp["nodes"].(map[string]interface{})
	require.Len(t, nodes, 4)
	n4 := nodes["node4"].(map[string]interface{})
	require.Equal(t, 250.0, n4["price"])
	require.Equal(t, 1000.0, n4["mining_amount"])

	code, resp = doJSON(t, r, http.MethodGet, "/api/mock-withdrawals", "", nil)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, resp["withdrawals"], 10)
}

func TestAuthRateLimit(t *testing.T) {
	// Отдельный роутер с лимитом 2 — в testServer лимит заведомо большой
	cfg := &config.Config{
		Env:              "test",
		AllowedOrigins:   []string{"*"},
		JWTSecret:        "s1",
		JWTRefreshSecret: "s2",
		JWTAccessExpiry:  time.Hour,
		JWTRefreshExpiry: time.Hour,
		SignupBonus:      decimal.NewFromInt(25),
		AuthRateLimit:    2,
		AuthRateWindow:   time.Minute,
	}
	st := store.NewMemory()
	cat := catalog.Default()
	locks := services.NewLocks()
	ledger := services.NewLedger(st)
	referrals := services.NewReferrals(st, ledger, locks, decimal.NewFromInt(50))
	nodes := services.NewNodes(st, cat, ledger, referrals, services.MockTronVerifier{}, locks)
	withdrawals := services.NewWithdrawals(st, ledger, locks, decimal.NewFromInt(25), decimal.NewFromInt(50))
	accounts := services.NewAccounts(st, ledger, referrals, cfg.SignupBonus)
	h := handlers.New(cfg, cat, accounts, ledger, nodes, referrals, withdrawals)
	limited := handlers.SetupRouter(cfg, zap.NewNop(), h)

	body := gin.H{"username": "alice", "password": "wrongpass"}
	code, _ := doJSON(t, limited, http.MethodPost, "/api/auth/login", "", body)
	require.Equal(t, http.StatusUnauthorized, code)
	code, _ = doJSON(t, limited, http.MethodPost, "/api/auth/login", "", body)
	require.Equal(t, http.StatusUnauthorized, code)
	code, _ = doJSON(t, limited, http.MethodPost, "/api/auth/login", "", body)
	require.Equal(t, http.StatusTooManyRequests, code)
}
