package prompt

import (
	"fmt"
	"strings"

	"github.com/Yanisdje/athleticabcknd/models"
)

const notSpecified = "Not specified"

// withImageSchema is the JSON template the model must fill in when a body
// image is part of the request.
const withImageSchema = `
{
  "fitness_score": [number 1-100],
  "has_body_composition": true,
  "body_composition": {
    "muscle_definition": "[detailed analysis of visible muscle definition]",
    "body_fat_percentage": "[estimated percentage or range]",
    "posture_analysis": "[assessment of posture and alignment]",
    "symmetry": "[evaluation of muscle balance and symmetry]"
  },
  "areas_for_improvement": [
    "[specific improvement areas based on image and profile]"
  ],
  "workout_plan": {
    "day_1": {
      "name": "[workout name]",
      "exercises": [
        {"name": "[exercise name]", "sets": [number], "reps": "[rep range]", "rest": "[rest time]"}
      ]
    }
  },
  "nutrition_recommendations": [
    "[personalized nutrition advice]"
  ],
  "recovery_recommendations": [
    "[recovery and rest advice]"
  ],
  "progress_tracking": [
    "[methods to track progress]"
  ]
}`

// profileOnlySchema is used when no image was provided; it omits every
// visual assessment field.
const profileOnlySchema = `
{
  "fitness_score": [number 1-100],
  "has_body_composition": false,
  "areas_for_improvement": [
    "[improvement areas based on profile data only]"
  ],
  "workout_plan": {
    "day_1": {
      "name": "[workout name]",
      "exercises": [
        {"name": "[exercise name]", "sets": [number], "reps": "[rep range]", "rest": "[rest time]"}
      ]
    }
  },
  "nutrition_recommendations": [
    "[general nutrition advice based on goals and profile]"
  ],
  "recovery_recommendations": [
    "[recovery advice]"
  ],
  "progress_tracking": [
    "[non-visual progress tracking methods]"
  ]
}`

const noImageNote = "NOTE: No body image was provided, so DO NOT include any body composition analysis, " +
	"body fat percentage, muscle definition, posture analysis, or visual body assessments. " +
	"Focus only on creating a workout plan and recommendations based on the provided profile information.\n\n"

// BuildAnalysisPrompt renders the user-facing part of the analysis request:
// the instruction header, the questionnaire profile (if any) and the JSON
// schema the model has to fill in.
func BuildAnalysisPrompt(profile *models.Profile, hasImage bool) string {
	var b strings.Builder

	b.WriteString("Analyze the provided fitness data")
	if hasImage {
		b.WriteString(" and image")
	}
	b.WriteString(" and provide a comprehensive assessment in the following JSON format.\n\n")

	if profile != nil {
		writeProfile(&b, profile)
	}

	if !hasImage {
		b.WriteString(noImageNote)
	}

	b.WriteString("Please provide assessment in the following JSON format:")
	if hasImage {
		b.WriteString(withImageSchema)
	} else {
		b.WriteString(profileOnlySchema)
	}

	b.WriteString("\n\nProvide realistic assessments based on what you can observe. " +
		"Replace all bracketed placeholders with actual content.")

	return b.String()
}

func writeProfile(b *strings.Builder, p *models.Profile) {
	b.WriteString("User Profile Information:\n")
	fmt.Fprintf(b, "- Gender: %s\n", orDefault(p.Gender))
	fmt.Fprintf(b, "- Age: %s\n", intOrDefault(p.Age))
	fmt.Fprintf(b, "- Height: %s cm\n", floatOrDefault(p.Height))
	fmt.Fprintf(b, "- Weight: %s kg\n", floatOrDefault(p.Weight))
	if p.BMI > 0 {
		fmt.Fprintf(b, "- BMI: %.1f\n", p.BMI)
	} else {
		b.WriteString("- BMI: Not calculated\n")
	}
	fmt.Fprintf(b, "- Fitness Goals: %s\n", itemsOrDefault(p.Goals))
	fmt.Fprintf(b, "- Main Focus Areas: %s\n", itemsOrDefault(p.MainFocus))
	fmt.Fprintf(b, "- Training Level: %s\n", itemOrDefault(p.TrainingLevel))
	fmt.Fprintf(b, "- Workout Location: %s\n\n", itemOrDefault(p.WorkoutLocation))
}

func orDefault(s string) string {
	if s == "" {
		return notSpecified
	}
	return s
}

func intOrDefault(v int) string {
	if v <= 0 {
		return notSpecified
	}
	return fmt.Sprintf("%d", v)
}

func floatOrDefault(v float64) string {
	if v <= 0 {
		return notSpecified
	}
	return fmt.Sprintf("%g", v)
}

func itemOrDefault(it *models.Item) string {
	if it == nil || it.Title == "" {
		return notSpecified
	}
	return it.Title
}

func itemsOrDefault(items []models.Item) string {
	if len(items) == 0 {
		return notSpecified
	}
	titles := make([]string, 0, len(items))
	for _, it := range items {
		titles = append(titles, it.Title)
	}
	return strings.Join(titles, ", ")
}
