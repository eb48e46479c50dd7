package models

// Item is a titled option picked by the user in the mobile app
// (goals, focus areas, training level, workout location).
type Item struct {
	Title string `json:"title"`
}

// Profile carries the fitness questionnaire data attached to an
// analysis request. All fields are optional; zero values render as
// "Not specified" in the prompt.
type Profile struct {
	Gender          string  `json:"gender"`
	Age             int     `json:"age"`
	Height          float64 `json:"height"`
	Weight          float64 `json:"weight"`
	BMI             float64 `json:"bmi"`
	Goals           []Item  `json:"goals"`
	MainFocus       []Item  `json:"mainFocus"`
	TrainingLevel   *Item   `json:"trainingLevel"`
	WorkoutLocation *Item   `json:"workoutLocation"`
}

// AnalyzeRequest is the body of POST /api/v1/analyze. Clients supply an
// image by URL or inline as base64 (optionally with a data URL prefix),
// and/or a questionnaire profile.
type AnalyzeRequest struct {
	ImageURL string   `json:"imageUrl" binding:"omitempty,url"`
	Image    string   `json:"image"`
	FormData *Profile `json:"formData"`
}

// ChatRequest is the body of POST /api/v1/chat.
type ChatRequest struct {
	Message string `json:"message" binding:"required"`
}
