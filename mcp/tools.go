package mcp

// Tool describes one callable tool in the shape tools/list returns.
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func objSchema(required []string, props map[string]interface{}) map[string]interface{} {
	s := map[string]interface{}{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

func numProp(desc string) map[string]interface{} {
	return map[string]interface{}{"type": "number", "description": desc}
}

func intProp(desc string) map[string]interface{} {
	return map[string]interface{}{"type": "integer", "description": desc}
}

func strProp(desc string) map[string]interface{} {
	return map[string]interface{}{"type": "string", "description": desc}
}

func enumProp(desc string, values ...string) map[string]interface{} {
	return map[string]interface{}{"type": "string", "description": desc, "enum": values}
}

var recordDateProp = strProp("Date the entry belongs to: empty for now, 'yesterday', or YYYY-MM-DD up to 7 days back. Invalid values fall back to now.")

var toolList = []Tool{
	{
		Name:        "add_meal",
		Description: "Log a meal with its nutrition facts. Repeating the same meal within a few minutes returns the already-saved entry instead of a second copy.",
		InputSchema: objSchema([]string{"meal_name"}, map[string]interface{}{
			"meal_name":         strProp("Name of the meal"),
			"calories":          numProp("Calories in kcal"),
			"proteins":          numProp("Protein in grams"),
			"fats":              numProp("Fat in grams"),
			"carbs":             numProp("Carbohydrates in grams"),
			"fiber":             numProp("Fiber in grams"),
			"water_ml":          numProp("Water contained in the meal, in ml"),
			"meal_type":         enumProp("Kind of meal", "breakfast", "lunch", "dinner", "snack", "other"),
			"healthiness_score": intProp("Healthiness from 1 to 10"),
			"notes":             strProp("Free-form notes"),
			"record_date":       recordDateProp,
		}),
	},
	{
		Name:        "add_water",
		Description: "Log plain water intake in milliliters.",
		InputSchema: objSchema([]string{"amount_ml"}, map[string]interface{}{
			"amount_ml":   numProp("Amount of water in ml"),
			"record_date": recordDateProp,
		}),
	},
	{
		Name:        "edit_meal",
		Description: "Edit fields of an existing meal by id. Only the fields provided are changed.",
		InputSchema: objSchema([]string{"meal_id"}, map[string]interface{}{
			"meal_id":           intProp("Id of the meal to edit"),
			"meal_name":         strProp("New name"),
			"calories":          intProp("New calories in kcal"),
			"proteins":          numProp("New protein in grams"),
			"fats":              numProp("New fat in grams"),
			"carbs":             numProp("New carbohydrates in grams"),
			"fiber":             numProp("New fiber in grams"),
			"water_ml":          intProp("New water amount in ml"),
			"meal_type":         enumProp("New kind of meal", "breakfast", "lunch", "dinner", "snack", "other"),
			"healthiness_score": intProp("New healthiness from 1 to 10"),
			"notes":             strProp("New notes"),
		}),
	},
	{
		Name:        "delete_meal",
		Description: "Delete a meal by id.",
		InputSchema: objSchema([]string{"meal_id"}, map[string]interface{}{
			"meal_id": intProp("Id of the meal to delete"),
		}),
	},
	{
		Name:        "get_meal_history",
		Description: "List the most recent meals, newest first.",
		InputSchema: objSchema(nil, map[string]interface{}{
			"limit": intProp("How many meals to return, default 10"),
		}),
	},
	{
		Name:        "add_activity",
		Description: "Log a physical activity. Calories burned are estimated from type, intensity, duration and body weight unless given.",
		InputSchema: objSchema([]string{"activity_type", "duration_min"}, map[string]interface{}{
			"activity_type":   enumProp("Kind of activity", "walking", "running", "cycling", "gym", "swimming", "yoga", "other"),
			"duration_min":    intProp("Duration in minutes, 1 to 600"),
			"intensity":       enumProp("Effort level", "low", "moderate", "high"),
			"calories_burned": intProp("Calories burned, if already known"),
			"description":     strProp("Short description"),
			"notes":           strProp("Free-form notes"),
			"record_date":     recordDateProp,
		}),
	},
	{
		Name:        "edit_activity",
		Description: "Edit fields of an existing activity by id. Only the fields provided are changed.",
		InputSchema: objSchema([]string{"activity_id"}, map[string]interface{}{
			"activity_id":     intProp("Id of the activity to edit"),
			"activity_type":   enumProp("New kind of activity", "walking", "running", "cycling", "gym", "swimming", "yoga", "other"),
			"duration_min":    intProp("New duration in minutes, 1 to 600"),
			"intensity":       enumProp("New effort level", "low", "moderate", "high"),
			"calories_burned": intProp("New calories burned"),
			"description":     strProp("New description"),
			"notes":           strProp("New notes"),
		}),
	},
	{
		Name:        "delete_activity",
		Description: "Delete an activity by id.",
		InputSchema: objSchema([]string{"activity_id"}, map[string]interface{}{
			"activity_id": intProp("Id of the activity to delete"),
		}),
	},
	{
		Name:        "log_weight",
		Description: "Record a weigh-in in kilograms and refresh the calorie goals derived from body weight.",
		InputSchema: objSchema([]string{"weight"}, map[string]interface{}{
			"weight":      numProp("Body weight in kg"),
			"notes":       strProp("Free-form notes"),
			"record_date": recordDateProp,
		}),
	},
	{
		Name:        "get_weight_history",
		Description: "List the most recent weigh-ins, newest first.",
		InputSchema: objSchema(nil, map[string]interface{}{
			"limit": intProp("How many entries to return, default 10"),
		}),
	},
	{
		Name:        "set_profile",
		Description: "Create or replace the user's profile and recompute BMR, TDEE, calorie goal and protein goal.",
		InputSchema: objSchema(
			[]string{"height_cm", "current_weight", "target_weight", "birth_date", "gender", "activity_level"},
			map[string]interface{}{
				"height_cm":        numProp("Height in cm"),
				"current_weight":   numProp("Current weight in kg"),
				"target_weight":    numProp("Target weight in kg"),
				"birth_date":       strProp("Birth date as YYYY-MM-DD"),
				"gender":           enumProp("Biological sex for the BMR formula", "male", "female"),
				"activity_level":   enumProp("Habitual activity", "sedentary", "light", "moderate", "active", "very_active"),
				"goal_type":        enumProp("Goal, default lose_weight", "lose_weight", "gain_weight", "maintain"),
				"weight_loss_rate": enumProp("Rate of change, default moderate", "slow", "moderate", "fast"),
			}),
	},
	{
		Name:        "get_profile",
		Description: "Return the user's profile with the derived goals and BMI.",
		InputSchema: objSchema(nil, map[string]interface{}{}),
	},
	{
		Name:        "get_today_summary",
		Description: "Totals, meals, activity burn and goal status for the current day.",
		InputSchema: objSchema(nil, map[string]interface{}{}),
	},
	{
		Name:        "get_weekly_summary",
		Description: "Per-day breakdown and totals for the trailing 7 days.",
		InputSchema: objSchema(nil, map[string]interface{}{}),
	},
	{
		Name:        "get_monthly_summary",
		Description: "Totals, days tracked and consistency for the current calendar month.",
		InputSchema: objSchema(nil, map[string]interface{}{}),
	},
	{
		Name:        "get_insight",
		Description: "A coach-style narrative: daily analysis, week or month review, tips or a weight-trajectory prediction. Cached per day.",
		InputSchema: objSchema(nil, map[string]interface{}{
			"kind": enumProp("Which narrative to produce, default daily", "daily", "week", "month", "tips", "prediction"),
		}),
	},
}
