package mcp

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/icynarco112-ux/calories-tracker/config"
	"github.com/icynarco112-ux/calories-tracker/models"
	"github.com/icynarco112-ux/calories-tracker/services"
	"github.com/icynarco112-ux/calories-tracker/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestStack(t *testing.T) (*gin.Engine, *gorm.DB, *models.User) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s-%d?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "-"), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := config.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	user := models.User{TelegramID: "100001", Code: "TESTCODE", Username: "tester"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}

	clock := utils.Clock{WinterOffsetHours: 2, SummerOffsetHours: 3}
	users := services.NewUserService(db)
	profiles := services.NewProfileService(db, clock)
	summaries := services.NewSummaryService(db, clock)
	predictions := services.NewPredictionService(db, clock, 7)
	insights := services.NewInsightService(db, clock, nil, summaries, predictions)
	meals := services.NewMealService(db, clock, insights, 7, 3*time.Minute, 0.10)
	activities := services.NewActivityService(db, clock, insights, 7)
	weights := services.NewWeightService(db, clock, profiles, insights, 7)
	oplog := services.NewOpLogService(db)

	handler := NewHandler(users, profiles, meals, activities, weights, summaries, predictions, insights, oplog)
	router := gin.New()
	router.POST("/mcp", handler.Handle)
	return router, db, &user
}

func post(t *testing.T, router *gin.Engine, url, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, url, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeSingle(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid response JSON: %v\n%s", err, w.Body.String())
	}
	return out
}

func toolResultText(t *testing.T, resp map[string]interface{}) (string, bool) {
	t.Helper()
	result, ok := resp["result"].(map[string]interface{})
	if !ok {
		t.Fatalf("no result in response: %v", resp)
	}
	content := result["content"].([]interface{})
	text := content[0].(map[string]interface{})["text"].(string)
	isError, _ := result["isError"].(bool)
	return text, isError
}

func TestInitialize(t *testing.T) {
	router, _, _ := newTestStack(t)

	w := post(t, router, "/mcp", `{"jsonrpc":"2.0","id":1,"method":"initialize"}`)
	resp := decodeSingle(t, w)

	result := resp["result"].(map[string]interface{})
	if result["protocolVersion"] != protocolVersion {
		t.Fatalf("protocolVersion = %v", result["protocolVersion"])
	}
	info := result["serverInfo"].(map[string]interface{})
	if info["name"] != serverName {
		t.Fatalf("serverInfo = %v", info)
	}
}

func TestToolsList(t *testing.T) {
	router, _, _ := newTestStack(t)

	w := post(t, router, "/mcp", `{"jsonrpc":"2.0","id":2,"method":"tools/list"}`)
	resp := decodeSingle(t, w)

	tools := resp["result"].(map[string]interface{})["tools"].([]interface{})
	if len(tools) != len(toolList) {
		t.Fatalf("listed %d tools, want %d", len(tools), len(toolList))
	}
	names := map[string]bool{}
	for _, raw := range tools {
		names[raw.(map[string]interface{})["name"].(string)] = true
	}
	for _, want := range []string{"add_meal", "set_profile", "get_insight", "log_weight"} {
		if !names[want] {
			t.Fatalf("tool %s missing from list", want)
		}
	}
}

func TestUnknownMethod(t *testing.T) {
	router, _, _ := newTestStack(t)

	w := post(t, router, "/mcp", `{"jsonrpc":"2.0","id":3,"method":"resources/list"}`)
	resp := decodeSingle(t, w)

	rpcErr, ok := resp["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error, got %v", resp)
	}
	if int(rpcErr["code"].(float64)) != codeMethodNotFound {
		t.Fatalf("code = %v, want %d", rpcErr["code"], codeMethodNotFound)
	}
}

func TestToolCallWithoutCode(t *testing.T) {
	router, db, _ := newTestStack(t)

	w := post(t, router, "/mcp", `{"jsonrpc":"2.0","id":4,"method":"tools/call","params":{"name":"add_meal","arguments":{"meal_name":"Soup","calories":200}}}`)
	resp := decodeSingle(t, w)

	text, isError := toolResultText(t, resp)
	if !isError || !strings.Contains(text, "not authenticated") {
		t.Fatalf("auth miss result: isError=%v text=%q", isError, text)
	}

	// The failure leaves a trace in the operation log.
	var count int64
	db.Model(&models.OpLog{}).Count(&count)
	if count != 1 {
		t.Fatalf("oplog rows = %d, want 1", count)
	}
	var entry models.OpLog
	db.First(&entry)
	if entry.Tool != "add_meal" || entry.TraceID == "" {
		t.Fatalf("oplog entry: %+v", entry)
	}
}

func TestToolCallWrongCodeUniform(t *testing.T) {
	router, _, _ := newTestStack(t)

	w := post(t, router, "/mcp?code=WRONG123", `{"jsonrpc":"2.0","id":5,"method":"tools/call","params":{"name":"get_profile"}}`)
	text, isError := toolResultText(t, decodeSingle(t, w))
	if !isError || text != `{"error":"not authenticated"}` {
		t.Fatalf("wrong-code result: isError=%v text=%q", isError, text)
	}
}

func TestToolCallAddMeal(t *testing.T) {
	router, db, user := newTestStack(t)

	w := post(t, router, "/mcp?code=TESTCODE", `{"jsonrpc":"2.0","id":6,"method":"tools/call","params":{"name":"add_meal","arguments":{"name":"Oatmeal","calories_kcal":320,"protein":12,"meal_type":"breakfast"}}}`)
	text, isError := toolResultText(t, decodeSingle(t, w))
	if isError {
		t.Fatalf("add_meal failed: %s", text)
	}
	if !strings.Contains(text, "Meal logged") {
		t.Fatalf("unexpected result text: %s", text)
	}

	var meal models.Meal
	if err := db.Where("user_id = ?", user.ID).First(&meal).Error; err != nil {
		t.Fatalf("meal not stored: %v", err)
	}
	// Alias fields round through the canonical form.
	if meal.Name != "Oatmeal" || meal.Calories != 320 || meal.Proteins != 12 {
		t.Fatalf("stored meal: %+v", meal)
	}
	if meal.Score != 5 {
		t.Fatalf("default score = %d, want 5", meal.Score)
	}
}

func TestToolCallSetAndGetProfile(t *testing.T) {
	router, _, _ := newTestStack(t)

	set := `{"jsonrpc":"2.0","id":7,"method":"tools/call","params":{"name":"set_profile","arguments":{"height_cm":180,"current_weight":80,"target_weight":75,"birth_date":"2001-03-15","gender":"male","activity_level":"moderate"}}}`
	text, isError := toolResultText(t, decodeSingle(t, post(t, router, "/mcp?code=TESTCODE", set)))
	if isError {
		t.Fatalf("set_profile failed: %s", text)
	}

	get := `{"jsonrpc":"2.0","id":8,"method":"tools/call","params":{"name":"get_profile"}}`
	text, isError = toolResultText(t, decodeSingle(t, post(t, router, "/mcp?code=TESTCODE", get)))
	if isError {
		t.Fatalf("get_profile failed: %s", text)
	}
	if !strings.Contains(text, `"daily_calorie_goal"`) || !strings.Contains(text, `"bmi"`) {
		t.Fatalf("profile payload lacks derived fields: %s", text)
	}
}

func TestBatchRequests(t *testing.T) {
	router, _, _ := newTestStack(t)

	w := post(t, router, "/mcp", `[{"jsonrpc":"2.0","id":1,"method":"ping"},{"jsonrpc":"2.0","id":2,"method":"tools/list"}]`)
	var out []map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid batch response: %v\n%s", err, w.Body.String())
	}
	if len(out) != 2 {
		t.Fatalf("batch responses = %d, want 2", len(out))
	}
}

func TestNotificationGetsNoResponse(t *testing.T) {
	router, _, _ := newTestStack(t)

	w := post(t, router, "/mcp", `{"jsonrpc":"2.0","method":"notifications/initialized"}`)
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", w.Code)
	}
	if w.Body.Len() != 0 {
		t.Fatalf("notification got a body: %s", w.Body.String())
	}
}

func TestParseError(t *testing.T) {
	router, _, _ := newTestStack(t)

	w := post(t, router, "/mcp", `{not json`)
	resp := decodeSingle(t, w)
	rpcErr := resp["error"].(map[string]interface{})
	if int(rpcErr["code"].(float64)) != codeParseError {
		t.Fatalf("code = %v, want %d", rpcErr["code"], codeParseError)
	}
}
