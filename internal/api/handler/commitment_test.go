package handler

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/lifedebt_server/internal/model"
	"github.com/qs3c/lifedebt_server/internal/model/dto"
	"github.com/qs3c/lifedebt_server/internal/pkg/response"
	"github.com/qs3c/lifedebt_server/internal/testutil"
)

func setupCommitmentRouter(t *testing.T, userID int64, ctx *testContext) *gin.Engine {
	t.Helper()

	handler := NewCommitmentHandler(ctx.Commitments, ctx.CheckIns)

	router := gin.New()
	router.Use(mockAuth(userID))
	router.POST("/commitments", handler.Create)
	router.GET("/commitments", handler.List)
	router.GET("/commitments/:id", handler.Get)
	router.DELETE("/commitments/:id", handler.Delete)
	router.POST("/commitments/:id/checkins", handler.CheckIn)
	router.GET("/commitments/:id/checkins", handler.ListCheckIns)
	return router
}

func createRequest(taskType string, stake int64) dto.CreateCommitmentRequest {
	return dto.CreateCommitmentRequest{
		TaskType:     taskType,
		TargetValue:  5,
		DurationDays: 14,
		StakeCents:   stake,
	}
}

func TestCommitmentHandler_Create_Success(t *testing.T) {
	ctx := setupServices(t)
	user := testutil.TestUser(t, ctx.DB)
	router := setupCommitmentRouter(t, user.ID, ctx)

	w := performRequest(router, "POST", "/commitments", createRequest("km_daily", 1000))
	resp := parseResponse(t, w)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, response.CodeSuccess, resp.Code)

	data := dataMap(t, resp)
	assert.Equal(t, "km_daily", data["task_type"])
	assert.Equal(t, "created", data["status"])
	assert.Equal(t, "2026-03-10", data["start_date"])
	assert.Equal(t, "2026-03-24", data["end_date"])
}

func TestCommitmentHandler_Create_PlanLimits(t *testing.T) {
	ctx := setupServices(t)
	user := testutil.TestUser(t, ctx.DB)
	router := setupCommitmentRouter(t, user.ID, ctx)

	// 学生套餐：押金上限与 daily_hard 锁定
	resp := parseResponse(t, performRequest(router, "POST", "/commitments", createRequest("steps_daily", 1500)))
	assert.Equal(t, response.CodePlanLimit, resp.Code)
	assert.Contains(t, resp.Message, "押金")

	resp = parseResponse(t, performRequest(router, "POST", "/commitments", createRequest("daily_hard", 0)))
	assert.Equal(t, response.CodePlanLimit, resp.Code)
	assert.Contains(t, resp.Message, "任务类型")

	resp = parseResponse(t, performRequest(router, "POST", "/commitments", createRequest("steps_daily", 0)))
	require.Equal(t, response.CodeSuccess, resp.Code)

	resp = parseResponse(t, performRequest(router, "POST", "/commitments", createRequest("steps_daily", 0)))
	assert.Equal(t, response.CodePlanLimit, resp.Code)
	assert.Contains(t, resp.Message, "上限")
}

func TestCommitmentHandler_Create_InvalidRequest(t *testing.T) {
	ctx := setupServices(t)
	user := testutil.TestUser(t, ctx.DB)
	router := setupCommitmentRouter(t, user.ID, ctx)

	tests := []struct {
		name string
		body interface{}
	}{
		{"unknown task type", createRequest("yoga_daily", 0)},
		{"zero target", dto.CreateCommitmentRequest{TaskType: "steps_daily", DurationDays: 7}},
		{"negative stake", createRequest("steps_daily", -100)},
		{"too long", dto.CreateCommitmentRequest{TaskType: "steps_daily", TargetValue: 1, DurationDays: 400}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := parseResponse(t, performRequest(router, "POST", "/commitments", tt.body))
			assert.Equal(t, response.CodeParamError, resp.Code)
		})
	}
}

func TestCommitmentHandler_ListAndGet(t *testing.T) {
	ctx := setupServices(t)
	user := testutil.TestUser(t, ctx.DB)
	c := testutil.TestCommitment(t, ctx.DB, user.ID,
		testutil.WithPeriod(testutil.Day(2026, 3, 9), 7),
	)
	router := setupCommitmentRouter(t, user.ID, ctx)

	resp := parseResponse(t, performRequest(router, "GET", "/commitments", nil))
	require.Equal(t, response.CodeSuccess, resp.Code)
	data := dataMap(t, resp)
	assert.Equal(t, float64(1), data["total"])

	items, _ := data["commitments"].([]interface{})
	require.Len(t, items, 1)
	first := items[0].(map[string]interface{})
	// 9 日未打卡，steps_daily 容忍一次
	assert.Equal(t, "active", first["status"])
	progress := first["progress"].(map[string]interface{})
	assert.Equal(t, float64(1), progress["misses"])
	assert.Equal(t, float64(0), progress["misses_left"])

	resp = parseResponse(t, performRequest(router, "GET", fmt.Sprintf("/commitments/%d", c.ID), nil))
	require.Equal(t, response.CodeSuccess, resp.Code)
	assert.Equal(t, float64(c.ID), dataMap(t, resp)["id"])
}

func TestCommitmentHandler_Get_Errors(t *testing.T) {
	ctx := setupServices(t)
	owner := testutil.TestUser(t, ctx.DB)
	stranger := testutil.TestUser(t, ctx.DB)
	c := testutil.TestCommitment(t, ctx.DB, owner.ID)
	router := setupCommitmentRouter(t, stranger.ID, ctx)

	resp := parseResponse(t, performRequest(router, "GET", fmt.Sprintf("/commitments/%d", c.ID), nil))
	assert.Equal(t, response.CodePermissionDenied, resp.Code)

	resp = parseResponse(t, performRequest(router, "GET", "/commitments/99999", nil))
	assert.Equal(t, response.CodeResourceNotFound, resp.Code)

	resp = parseResponse(t, performRequest(router, "GET", "/commitments/abc", nil))
	assert.Equal(t, response.CodeParamError, resp.Code)
}

func TestCommitmentHandler_Delete(t *testing.T) {
	ctx := setupServices(t)
	user := testutil.TestUser(t, ctx.DB)
	c := testutil.TestCommitment(t, ctx.DB, user.ID)
	router := setupCommitmentRouter(t, user.ID, ctx)

	resp := parseResponse(t, performRequest(router, "DELETE", fmt.Sprintf("/commitments/%d", c.ID), nil))
	assert.Equal(t, response.CodeSuccess, resp.Code)

	var count int64
	ctx.DB.Model(&model.Commitment{}).Count(&count)
	assert.Zero(t, count)
}

func TestCommitmentHandler_CheckIn(t *testing.T) {
	ctx := setupServices(t)
	user := testutil.TestUser(t, ctx.DB)
	c := testutil.TestCommitment(t, ctx.DB, user.ID,
		testutil.WithPeriod(testutil.Day(2026, 3, 10), 7),
	)
	router := setupCommitmentRouter(t, user.ID, ctx)
	path := fmt.Sprintf("/commitments/%d/checkins", c.ID)

	// 空 body
	req := httptest.NewRequest("POST", path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	resp := parseResponse(t, w)
	require.Equal(t, response.CodeSuccess, resp.Code)

	data := dataMap(t, resp)
	checkIn := data["check_in"].(map[string]interface{})
	assert.Equal(t, "2026-03-10", checkIn["date"])
	assert.Equal(t, true, checkIn["success"])
	commitment := data["commitment"].(map[string]interface{})
	assert.Equal(t, "active", commitment["status"])

	// 同一天改为失败
	resp = parseResponse(t, performRequest(router, "POST", path, map[string]bool{"success": false}))
	require.Equal(t, response.CodeSuccess, resp.Code)

	resp = parseResponse(t, performRequest(router, "GET", path, nil))
	require.Equal(t, response.CodeSuccess, resp.Code)
	list, _ := resp.Data.([]interface{})
	require.Len(t, list, 1)
	assert.Equal(t, false, list[0].(map[string]interface{})["success"])
}

func TestCommitmentHandler_CheckIn_InvalidBody(t *testing.T) {
	ctx := setupServices(t)
	user := testutil.TestUser(t, ctx.DB)
	c := testutil.TestCommitment(t, ctx.DB, user.ID)
	router := setupCommitmentRouter(t, user.ID, ctx)

	req := httptest.NewRequest("POST", fmt.Sprintf("/commitments/%d/checkins", c.ID), strings.NewReader("{bad"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, response.CodeParamError, parseResponse(t, w).Code)
}
