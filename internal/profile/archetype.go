package profile

// Archetype is a data-only visitor personality: a task-weight table plus the
// name of the behavior it uses. New archetypes are configuration, not code.
type Archetype struct {
	Name        string         `json:"name"`
	Behavior    string         `json:"behavior"`
	TaskWeights map[string]int `json:"task_weights"`
	UserAgent   string         `json:"user_agent,omitempty"`
}

const mobileUserAgent = "Mozilla/5.0 (iPhone; CPU iPhone OS 14_7_1 like Mac OS X) " +
	"AppleWebKit/605.1.15 (KHTML, like Gecko) Version/14.1.2 Mobile/15E148 Safari/604.1"

// BuiltinArchetypes returns the stock visitor personalities. Weights are
// relative selection probabilities over the tasks eligible in the agent's
// current page state.
func BuiltinArchetypes() map[string]Archetype {
	return map[string]Archetype{
		"normal": {
			Name:     "normal",
			Behavior: "normal_user",
			TaskWeights: map[string]int{
				"homepage":      2,
				"category":      2,
				"search":        2,
				"static_page":   1,
				"subcategory":   1,
				"course_detail": 1,
			},
		},
		"active": {
			Name:     "active",
			Behavior: "active_user",
			TaskWeights: map[string]int{
				"homepage":      1,
				"category":      4,
				"search":        11,
				"static_page":   1,
				"subcategory":   3,
				"course_detail": 3,
			},
		},
		"power": {
			Name:     "power",
			Behavior: "power_user",
			TaskWeights: map[string]int{
				"homepage":      1,
				"category":      3,
				"search":        5,
				"static_page":   1,
				"subcategory":   3,
				"course_detail": 2,
			},
		},
		"browser": {
			Name:     "browser",
			Behavior: "normal_user",
			TaskWeights: map[string]int{
				"homepage":      4,
				"category":      2,
				"search":        2,
				"static_page":   2,
				"subcategory":   1,
				"course_detail": 1,
			},
		},
		"mobile": {
			Name:      "mobile",
			Behavior:  "active_user",
			UserAgent: mobileUserAgent,
			TaskWeights: map[string]int{
				"homepage":      3,
				"category":      2,
				"search":        3,
				"static_page":   1,
				"subcategory":   1,
				"course_detail": 1,
			},
		},
	}
}
