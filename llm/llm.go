package llm

import "context"

// Client abstracts the LLM provider used by the analysis and chat endpoints.
// Implementations must be concurrency-safe; one client is constructed per
// process and shared across requests.
type Client interface {
	// AnalyzeImage sends the prompt together with the image bytes to the
	// provider's vision endpoint and returns the raw text of the first
	// completion choice. imageData may be nil for profile-only assessments,
	// in which case no image part is attached to the request.
	AnalyzeImage(ctx context.Context, imageData []byte, prompt string) (string, error)

	// Chat sends a single user-role message and returns the text content of
	// the first completion choice.
	Chat(ctx context.Context, message string) (string, error)

	// SourceName returns a short provider label for logging (e.g. "ChatGPT").
	SourceName() string
}
