package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/icynarco112-ux/calories-tracker/models"
	"github.com/icynarco112-ux/calories-tracker/services"

	"github.com/gin-gonic/gin"
)

// Handler serves the tool-calling endpoint: JSON-RPC 2.0 over a single
// POST route, with the caller identified by an access code on the URL.
type Handler struct {
	users       *services.UserService
	profiles    *services.ProfileService
	meals       *services.MealService
	activities  *services.ActivityService
	weights     *services.WeightService
	summaries   *services.SummaryService
	predictions *services.PredictionService
	insights    *services.InsightService
	oplog       *services.OpLogService

	now func() time.Time
}

func NewHandler(
	users *services.UserService,
	profiles *services.ProfileService,
	meals *services.MealService,
	activities *services.ActivityService,
	weights *services.WeightService,
	summaries *services.SummaryService,
	predictions *services.PredictionService,
	insights *services.InsightService,
	oplog *services.OpLogService,
) *Handler {
	return &Handler{
		users:       users,
		profiles:    profiles,
		meals:       meals,
		activities:  activities,
		weights:     weights,
		summaries:   summaries,
		predictions: predictions,
		insights:    insights,
		oplog:       oplog,
		now:         time.Now,
	}
}

// Handle is the gin endpoint for POST /mcp. A body opening with '[' is
// treated as a JSON-RPC batch; notifications produce no response entry.
func (h *Handler) Handle(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusOK, errResponse(nil, codeParseError, "could not read request body"))
		return
	}
	code := c.Query("code")
	ctx := c.Request.Context()

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var reqs []Request
		if err := json.Unmarshal(trimmed, &reqs); err != nil {
			c.JSON(http.StatusOK, errResponse(nil, codeParseError, "invalid JSON"))
			return
		}
		if len(reqs) == 0 {
			c.JSON(http.StatusOK, errResponse(nil, codeInvalidRequest, "empty batch"))
			return
		}
		responses := make([]*Response, 0, len(reqs))
		for i := range reqs {
			if resp := h.dispatch(ctx, code, &reqs[i]); resp != nil {
				responses = append(responses, resp)
			}
		}
		if len(responses) == 0 {
			c.Status(http.StatusNoContent)
			return
		}
		c.JSON(http.StatusOK, responses)
		return
	}

	var req Request
	if err := json.Unmarshal(trimmed, &req); err != nil {
		c.JSON(http.StatusOK, errResponse(nil, codeParseError, "invalid JSON"))
		return
	}
	resp := h.dispatch(ctx, code, &req)
	if resp == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) dispatch(ctx context.Context, code string, req *Request) *Response {
	var resp *Response
	switch req.Method {
	case "initialize":
		resp = okResponse(req.ID, map[string]interface{}{
			"protocolVersion": protocolVersion,
			"capabilities":    map[string]interface{}{"tools": map[string]interface{}{}},
			"serverInfo":      map[string]interface{}{"name": serverName, "version": serverVersion},
		})
	case "notifications/initialized":
		return nil
	case "ping":
		resp = okResponse(req.ID, map[string]interface{}{})
	case "tools/list":
		resp = okResponse(req.ID, map[string]interface{}{"tools": toolList})
	case "tools/call":
		resp = h.callTool(ctx, code, req)
	case "":
		resp = errResponse(req.ID, codeInvalidRequest, "method is required")
	default:
		resp = errResponse(req.ID, codeMethodNotFound, "method not found: "+req.Method)
	}
	if req.isNotification() {
		return nil
	}
	return resp
}

func (h *Handler) callTool(ctx context.Context, code string, req *Request) *Response {
	var params callParams
	if err := json.Unmarshal(req.Params, &params); err != nil || params.Name == "" {
		return errResponse(req.ID, codeInvalidParams, "tools/call needs a tool name and arguments")
	}
	args := params.Arguments
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	user, err := h.users.ResolveByCode(ctx, code)
	if err != nil {
		if errors.Is(err, services.ErrNotAuthenticated) {
			return h.toolFailure(ctx, req.ID, params.Name, code, args, "not authenticated")
		}
		return errResponse(req.ID, codeInternalError, "internal error")
	}

	result, err := h.runTool(ctx, user, params.Name, args)
	if err != nil {
		return h.toolFailure(ctx, req.ID, params.Name, code, args, err.Error())
	}
	return okResponse(req.ID, textContent(result, false))
}

// toolFailure reports a failed call as a successful RPC carrying an error
// result, and leaves a trace in the operation log.
func (h *Handler) toolFailure(ctx context.Context, id json.RawMessage, tool, code string, args json.RawMessage, message string) *Response {
	h.oplog.Record(ctx, tool, message, code, string(args))
	return okResponse(id, textContent(map[string]interface{}{"error": message}, true))
}

func (h *Handler) runTool(ctx context.Context, user *models.User, name string, args json.RawMessage) (interface{}, error) {
	now := h.now()
	switch name {
	case "add_meal":
		var payload services.MealPayload
		if err := json.Unmarshal(args, &payload); err != nil {
			return nil, errors.New("invalid arguments")
		}
		meal, duplicate, err := h.meals.Log(ctx, user.ID, payload.Canonical(), now)
		if err != nil {
			return nil, err
		}
		out := map[string]interface{}{"message": "Meal logged", "meal": meal.ToDict(), "duplicate": duplicate}
		if duplicate {
			out["message"] = "This meal was already logged moments ago, returning the existing entry"
		}
		return out, nil

	case "add_water":
		var in struct {
			AmountML   float64 `json:"amount_ml"`
			RecordDate string  `json:"record_date"`
		}
		if err := json.Unmarshal(args, &in); err != nil {
			return nil, errors.New("invalid arguments")
		}
		entry, err := h.meals.LogWater(ctx, user.ID, int(in.AmountML), in.RecordDate, now)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"message": "Water logged", "entry": entry.ToDict()}, nil

	case "edit_meal":
		var in struct {
			MealID uint `json:"meal_id"`
			services.MealPatch
		}
		if err := json.Unmarshal(args, &in); err != nil {
			return nil, errors.New("invalid arguments")
		}
		if in.MealID == 0 {
			return nil, errors.New("meal_id is required")
		}
		meal, err := h.meals.Update(ctx, user.ID, in.MealID, in.MealPatch, now)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"message": "Meal updated", "meal": meal.ToDict()}, nil

	case "delete_meal":
		var in struct {
			MealID uint `json:"meal_id"`
		}
		if err := json.Unmarshal(args, &in); err != nil {
			return nil, errors.New("invalid arguments")
		}
		if in.MealID == 0 {
			return nil, errors.New("meal_id is required")
		}
		if err := h.meals.Delete(ctx, user.ID, in.MealID, now); err != nil {
			return nil, err
		}
		return map[string]interface{}{"message": "Meal deleted"}, nil

	case "get_meal_history":
		var in struct {
			Limit int `json:"limit"`
		}
		if err := json.Unmarshal(args, &in); err != nil {
			return nil, errors.New("invalid arguments")
		}
		meals, err := h.meals.History(ctx, user.ID, in.Limit)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"meals": meals, "count": len(meals)}, nil

	case "add_activity":
		var in services.ActivityInput
		if err := json.Unmarshal(args, &in); err != nil {
			return nil, errors.New("invalid arguments")
		}
		activity, err := h.activities.Log(ctx, user.ID, in, now)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"message": "Activity logged", "activity": activity.ToDict()}, nil

	case "edit_activity":
		var in struct {
			ActivityID uint `json:"activity_id"`
			services.ActivityPatch
		}
		if err := json.Unmarshal(args, &in); err != nil {
			return nil, errors.New("invalid arguments")
		}
		if in.ActivityID == 0 {
			return nil, errors.New("activity_id is required")
		}
		activity, err := h.activities.Update(ctx, user.ID, in.ActivityID, in.ActivityPatch, now)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"message": "Activity updated", "activity": activity.ToDict()}, nil

	case "delete_activity":
		var in struct {
			ActivityID uint `json:"activity_id"`
		}
		if err := json.Unmarshal(args, &in); err != nil {
			return nil, errors.New("invalid arguments")
		}
		if in.ActivityID == 0 {
			return nil, errors.New("activity_id is required")
		}
		if err := h.activities.Delete(ctx, user.ID, in.ActivityID, now); err != nil {
			return nil, err
		}
		return map[string]interface{}{"message": "Activity deleted"}, nil

	case "log_weight":
		var in struct {
			Weight     float64 `json:"weight"`
			Notes      string  `json:"notes"`
			RecordDate string  `json:"record_date"`
		}
		if err := json.Unmarshal(args, &in); err != nil {
			return nil, errors.New("invalid arguments")
		}
		res, err := h.weights.Log(ctx, user.ID, in.Weight, in.Notes, in.RecordDate, now)
		if err != nil {
			return nil, err
		}
		out := map[string]interface{}{
			"message": "Weight logged",
			"weight":  res.Entry.Weight,
		}
		if res.ChangeKg != nil {
			out["change_kg"] = *res.ChangeKg
		}
		return out, nil

	case "get_weight_history":
		var in struct {
			Limit int `json:"limit"`
		}
		if err := json.Unmarshal(args, &in); err != nil {
			return nil, errors.New("invalid arguments")
		}
		entries, err := h.weights.History(ctx, user.ID, in.Limit)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"entries": entries, "count": len(entries)}, nil

	case "set_profile":
		var in services.ProfileInput
		if err := json.Unmarshal(args, &in); err != nil {
			return nil, errors.New("invalid arguments")
		}
		profile, err := h.profiles.Upsert(ctx, user.ID, in, now)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"message": "Profile saved", "profile": h.profiles.View(profile)}, nil

	case "get_profile":
		profile, err := h.profiles.Get(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"profile": h.profiles.View(profile)}, nil

	case "get_today_summary":
		return h.summaries.Today(ctx, user.ID, now)

	case "get_weekly_summary":
		return h.summaries.Week(ctx, user.ID, now)

	case "get_monthly_summary":
		return h.summaries.Month(ctx, user.ID, now)

	case "get_insight":
		var in struct {
			Kind string `json:"kind"`
		}
		if err := json.Unmarshal(args, &in); err != nil {
			return nil, errors.New("invalid arguments")
		}
		kind := in.Kind
		switch kind {
		case services.InsightWeek, services.InsightMonth, services.InsightTips, services.InsightPrediction:
		default:
			kind = services.InsightDaily
		}
		return h.insights.Insight(ctx, user, kind, now)

	default:
		return nil, errors.New("unknown tool: " + name)
	}
}
