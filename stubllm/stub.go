package stubllm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Client is a deterministic, no-network LLM stub intended for CI and local
// end-to-end tests. It returns schema-valid JSON so downstream parsing
// exercises the full analyze pipeline.
type Client struct{}

func NewClient() *Client { return &Client{} }

func (c *Client) SourceName() string { return "Stub" }

func (c *Client) AnalyzeImage(ctx context.Context, imageData []byte, prompt string) (string, error) {
	// Deterministic per-input so tests are stable.
	sum := sha256.Sum256(append([]byte(prompt), imageData...))
	short := hex.EncodeToString(sum[:8])

	out := map[string]any{
		"fitness_score":        72,
		"has_body_composition": len(imageData) > 0,
		"areas_for_improvement": []string{
			fmt.Sprintf("Stubbed improvement area (%s)", short),
		},
		"workout_plan": map[string]any{
			"day_1": map[string]any{
				"name": "Full Body Strength",
				"exercises": []map[string]any{
					{"name": "Squat", "sets": 3, "reps": "8-10", "rest": "90s"},
				},
			},
		},
		"nutrition_recommendations": []string{"Maintain a slight caloric surplus"},
		"recovery_recommendations":  []string{"Sleep 7-9 hours"},
		"progress_tracking":         []string{"Weekly progress photos"},
	}

	if len(imageData) > 0 {
		out["body_composition"] = map[string]any{
			"muscle_definition":   "Moderate definition in upper body",
			"body_fat_percentage": "18-20%",
			"posture_analysis":    "Neutral alignment",
			"symmetry":            "Balanced left to right",
		}
	}

	b, err := json.Marshal(out)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (c *Client) Chat(ctx context.Context, message string) (string, error) {
	return fmt.Sprintf("Stub reply to: %s", message), nil
}
