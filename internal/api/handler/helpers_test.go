package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/lifedebt_server/config"
	"github.com/qs3c/lifedebt_server/internal/api/middleware"
	"github.com/qs3c/lifedebt_server/internal/pkg/billing"
	"github.com/qs3c/lifedebt_server/internal/pkg/response"
	"github.com/qs3c/lifedebt_server/internal/repository"
	"github.com/qs3c/lifedebt_server/internal/service"
	"github.com/qs3c/lifedebt_server/internal/testutil"
)

const testWebhookSecret = "whsec_handler_test"

func init() {
	gin.SetMode(gin.TestMode)
}

// testContext 本地测试上下文
type testContext struct {
	DB  *gorm.DB
	Cfg *config.Config

	Auth        *service.AuthService
	Users       *service.UserService
	Commitments *service.CommitmentService
	CheckIns    *service.CheckInService
	Billing     *service.BillingService
}

func setupServices(t *testing.T) *testContext {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })

	cfg := &config.Config{
		JWT: config.JWTConfig{
			Secret:      "test-secret-key",
			ExpireHours: 24,
		},
		Stripe: config.StripeConfig{
			WebhookSecret: testWebhookSecret,
			Prices:        map[string]string{"builder": "price_builder"},
		},
		Billing: config.BillingConfig{AllowManualPlanChange: true},
	}

	userRepo := repository.NewUserRepository(db)
	commitmentRepo := repository.NewCommitmentRepository(db)
	checkInRepo := repository.NewCheckInRepository(db)
	subRepo := repository.NewSubscriptionRepository(db)

	commitments := service.NewCommitmentService(commitmentRepo, userRepo, nil, nil)
	commitments.SetClock(func() time.Time {
		return time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	})

	return &testContext{
		DB:          db,
		Cfg:         cfg,
		Auth:        service.NewAuthService(userRepo, cfg),
		Users:       service.NewUserService(userRepo, commitments, subRepo, nil, cfg),
		Commitments: commitments,
		CheckIns:    service.NewCheckInService(checkInRepo, commitmentRepo, commitments, nil),
		// 未配置 secret key：只能校验 webhook，不能创建 checkout
		Billing: service.NewBillingService(userRepo, subRepo,
			billing.NewStripeGateway("", testWebhookSecret, nil), nil, nil, nil, cfg),
	}
}

// mockAuth 模拟认证中间件
func mockAuth(userID int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID)
		c.Next()
	}
}

func performRequest(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBytes)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	return resp
}

// dataMap 取出 data 字段
func dataMap(t *testing.T, resp response.Response) map[string]interface{} {
	t.Helper()
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok, "data is %T", resp.Data)
	return data
}

// setupBillingWithoutSecret 构造未配置 webhook secret 的 BillingService
func setupBillingWithoutSecret(t *testing.T, ctx *testContext) *service.BillingService {
	t.Helper()
	return service.NewBillingService(
		repository.NewUserRepository(ctx.DB),
		repository.NewSubscriptionRepository(ctx.DB),
		billing.NewStripeGateway("", "", nil),
		nil, nil, nil, ctx.Cfg,
	)
}
