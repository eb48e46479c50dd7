package parser

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// ParseError reports a model reply that could not be turned into a valid
// AnalysisResult.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid analysis payload: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid analysis payload: %s", e.Reason)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Exercise is a single entry in a workout day.
type Exercise struct {
	Name string `json:"name"`
	Sets int    `json:"sets"`
	Reps string `json:"reps"`
	Rest string `json:"rest"`
}

// WorkoutDay is one day of the generated workout plan.
type WorkoutDay struct {
	Name      string     `json:"name"`
	Exercises []Exercise `json:"exercises"`
}

// BodyComposition holds the visual assessment fields, present only when an
// image was part of the request.
type BodyComposition struct {
	MuscleDefinition  string `json:"muscle_definition"`
	BodyFatPercentage string `json:"body_fat_percentage"`
	PostureAnalysis   string `json:"posture_analysis"`
	Symmetry          string `json:"symmetry"`
}

// AnalysisResult represents the parsed fitness assessment from the model.
type AnalysisResult struct {
	FitnessScore             float64               `json:"fitness_score"`
	HasBodyComposition       bool                  `json:"has_body_composition"`
	BodyComposition          *BodyComposition      `json:"body_composition,omitempty"`
	AreasForImprovement      []string              `json:"areas_for_improvement"`
	WorkoutPlan              map[string]WorkoutDay `json:"workout_plan"`
	NutritionRecommendations []string              `json:"nutrition_recommendations"`
	RecoveryRecommendations  []string              `json:"recovery_recommendations"`
	ProgressTracking         []string              `json:"progress_tracking"`
}

var (
	bareWordComma = regexp.MustCompile(`:\s*([a-zA-Z_]+[a-zA-Z0-9_]*)\s*,`)
	bareWordBrace = regexp.MustCompile(`:\s*([a-zA-Z_]+[a-zA-Z0-9_]*)\s*}`)
)

// ExtractJSONFromMarkdown strips markdown code fences and returns the JSON
// object embedded in the response text.
func ExtractJSONFromMarkdown(response string) string {
	marker := "```"

	startIdx := strings.Index(response, marker)
	if startIdx == -1 {
		// No code block, locate the JSON object directly.
		startIdx = strings.Index(response, "{")
		if startIdx == -1 {
			return response
		}
		endIdx := strings.LastIndex(response, "}")
		if endIdx == -1 {
			return response
		}
		return strings.TrimSpace(response[startIdx : endIdx+1])
	}

	endIdx := strings.Index(response[startIdx+len(marker):], marker)
	if endIdx == -1 {
		return response
	}
	endIdx += startIdx + len(marker)

	content := response[startIdx+len(marker) : endIdx]

	// Drop the language identifier line if present (e.g. "json").
	lines := strings.Split(strings.TrimSpace(content), "\n")
	if len(lines) > 0 && (strings.TrimSpace(lines[0]) == "json" || strings.TrimSpace(lines[0]) == "") {
		content = strings.Join(lines[1:], "\n")
	}

	return strings.TrimSpace(content)
}

// fixBareWords quotes unquoted word values the model occasionally emits
// (e.g. `"reps": sixty_something,`), which are not valid JSON.
func fixBareWords(s string) string {
	s = bareWordComma.ReplaceAllStringFunc(s, func(m string) string {
		sub := bareWordComma.FindStringSubmatch(m)
		switch sub[1] {
		case "true", "false", "null":
			return m
		}
		return `: "` + sub[1] + `",`
	})
	s = bareWordBrace.ReplaceAllStringFunc(s, func(m string) string {
		sub := bareWordBrace.FindStringSubmatch(m)
		switch sub[1] {
		case "true", "false", "null":
			return m
		}
		return `: "` + sub[1] + `"}`
	})
	return s
}

// ParseAnalysis extracts, parses and validates the model reply.
func ParseAnalysis(response string) (*AnalysisResult, error) {
	cleaned := strings.TrimSpace(response)

	jsonContent := ExtractJSONFromMarkdown(cleaned)
	if !strings.HasPrefix(jsonContent, "{") {
		return nil, &ParseError{Reason: "no JSON object found in response"}
	}
	jsonContent = fixBareWords(jsonContent)

	var result AnalysisResult
	if err := json.Unmarshal([]byte(jsonContent), &result); err != nil {
		return nil, &ParseError{Reason: "failed to parse JSON response", Err: err}
	}

	if result.FitnessScore < 0 || result.FitnessScore > 100 {
		return nil, &ParseError{Reason: "fitness_score must be between 0 and 100"}
	}
	if result.HasBodyComposition && result.BodyComposition == nil {
		return nil, &ParseError{Reason: "body_composition is required when has_body_composition is true"}
	}
	if len(result.WorkoutPlan) == 0 {
		return nil, &ParseError{Reason: "workout_plan is required"}
	}

	return &result, nil
}
