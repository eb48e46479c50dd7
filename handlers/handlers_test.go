package handlers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yanisdje/athleticabcknd/config"
	"github.com/Yanisdje/athleticabcknd/fetcher"
	"github.com/Yanisdje/athleticabcknd/llm"
	"github.com/Yanisdje/athleticabcknd/stubllm"
)

// recordingLLM captures calls so tests can assert on pipeline behavior.
type recordingLLM struct {
	analyzeCalls int
	lastImage    []byte
	lastPrompt   string
	analyzeResp  string
	analyzeErr   error

	chatCalls   int
	lastMessage string
	chatResp    string
	chatErr     error
}

func (r *recordingLLM) AnalyzeImage(ctx context.Context, imageData []byte, prompt string) (string, error) {
	r.analyzeCalls++
	r.lastImage = imageData
	r.lastPrompt = prompt
	return r.analyzeResp, r.analyzeErr
}

func (r *recordingLLM) Chat(ctx context.Context, message string) (string, error) {
	r.chatCalls++
	r.lastMessage = message
	return r.chatResp, r.chatErr
}

func (r *recordingLLM) SourceName() string { return "Recording" }

func newTestRouter(h *Handlers) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/", h.Home)
	router.GET("/health", h.HealthCheck)
	router.POST("/api/v1/analyze", h.Analyze)
	router.POST("/api/v1/chat", h.Chat)
	return router
}

func newHandlers(client llm.Client) *Handlers {
	cfg := config.Load()
	return New(cfg, client, fetcher.New(2*time.Second, 1<<20))
}

func postJSON(router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	jsonBody, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAnalyze_ImageURLHappyPath(t *testing.T) {
	imageBytes := []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a}
	imgSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(imageBytes)
	}))
	defer imgSrv.Close()

	router := newTestRouter(newHandlers(stubllm.NewClient()))
	w := postJSON(router, "/api/v1/analyze", gin.H{"imageUrl": imgSrv.URL + "/a.png"})

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success  bool `json:"success"`
		Analysis struct {
			FitnessScore       float64 `json:"fitness_score"`
			HasBodyComposition bool    `json:"has_body_composition"`
		} `json:"analysis"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, float64(72), resp.Analysis.FitnessScore)
	assert.True(t, resp.Analysis.HasBodyComposition)
}

func TestAnalyze_FetchFailureShortCircuits(t *testing.T) {
	imgSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	deadURL := imgSrv.URL
	imgSrv.Close()

	llmStub := &recordingLLM{}
	router := newTestRouter(newHandlers(llmStub))
	w := postJSON(router, "/api/v1/analyze", gin.H{"imageUrl": deadURL + "/a.png"})

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, 0, llmStub.analyzeCalls, "analysis endpoint must not be called when the fetch fails")
}

func TestAnalyze_ImageBytesReachModelUnchanged(t *testing.T) {
	// Not a decodable image, so the downscale step passes the bytes through.
	imageBytes := []byte{0x01, 0x02, 0x03, 0x04, 0x05}
	imgSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(imageBytes)
	}))
	defer imgSrv.Close()

	llmStub := &recordingLLM{analyzeErr: errors.New("upstream down")}
	router := newTestRouter(newHandlers(llmStub))
	w := postJSON(router, "/api/v1/analyze", gin.H{"imageUrl": imgSrv.URL})

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, 1, llmStub.analyzeCalls)
	assert.Equal(t, imageBytes, llmStub.lastImage)
}

func TestAnalyze_InlineBase64Image(t *testing.T) {
	imageBytes := []byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10}
	encoded := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(imageBytes)

	llmStub := &recordingLLM{analyzeResp: stubAnalysisJSON(t)}
	router := newTestRouter(newHandlers(llmStub))
	w := postJSON(router, "/api/v1/analyze", gin.H{"image": encoded})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, imageBytes, llmStub.lastImage)
}

func TestAnalyze_InvalidBase64Image(t *testing.T) {
	llmStub := &recordingLLM{}
	router := newTestRouter(newHandlers(llmStub))
	w := postJSON(router, "/api/v1/analyze", gin.H{"image": "!!!not-base64!!!"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, llmStub.analyzeCalls)
}

func TestAnalyze_NoInputs(t *testing.T) {
	router := newTestRouter(newHandlers(stubllm.NewClient()))
	w := postJSON(router, "/api/v1/analyze", gin.H{})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Either image or form data must be provided")
}

func TestAnalyze_ProfileOnlyPrompt(t *testing.T) {
	llmStub := &recordingLLM{analyzeResp: stubAnalysisJSON(t)}
	router := newTestRouter(newHandlers(llmStub))
	w := postJSON(router, "/api/v1/analyze", gin.H{
		"formData": gin.H{"gender": "male", "age": 30},
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, llmStub.lastImage)
	assert.Contains(t, llmStub.lastPrompt, "No body image was provided")
	assert.Contains(t, llmStub.lastPrompt, "- Gender: male")
}

func TestAnalyze_MalformedModelReply(t *testing.T) {
	llmStub := &recordingLLM{analyzeResp: "I am sorry, I cannot help with that."}
	router := newTestRouter(newHandlers(llmStub))
	w := postJSON(router, "/api/v1/analyze", gin.H{
		"formData": gin.H{"gender": "male"},
	})

	assert.Equal(t, http.StatusBadGateway, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["success"])
	assert.Equal(t, "I am sorry, I cannot help with that.", resp["raw_response"])
}

func TestAnalyze_UpstreamTimeout(t *testing.T) {
	llmStub := &recordingLLM{analyzeErr: context.DeadlineExceeded}
	router := newTestRouter(newHandlers(llmStub))
	w := postJSON(router, "/api/v1/analyze", gin.H{
		"formData": gin.H{"gender": "male"},
	})

	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
}

func TestChat_ReturnsReply(t *testing.T) {
	llmStub := &recordingLLM{chatResp: "Hello back!"}
	router := newTestRouter(newHandlers(llmStub))
	w := postJSON(router, "/api/v1/chat", gin.H{"message": "hello"})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, llmStub.chatCalls)
	assert.Equal(t, "hello", llmStub.lastMessage)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, "Hello back!", resp["reply"])
}

func TestChat_MissingMessage(t *testing.T) {
	router := newTestRouter(newHandlers(stubllm.NewClient()))
	w := postJSON(router, "/api/v1/chat", gin.H{})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChat_UpstreamError(t *testing.T) {
	llmStub := &recordingLLM{chatErr: errors.New("boom")}
	router := newTestRouter(newHandlers(llmStub))
	w := postJSON(router, "/api/v1/chat", gin.H{"message": "hello"})

	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestHealthEndpoints(t *testing.T) {
	router := newTestRouter(newHandlers(stubllm.NewClient()))

	for _, path := range []string{"/", "/health"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

// stubAnalysisJSON returns a schema-valid analysis payload.
func stubAnalysisJSON(t *testing.T) string {
	t.Helper()
	out, err := stubllm.NewClient().AnalyzeImage(context.Background(), []byte{0x01}, "")
	require.NoError(t, err)
	return out
}
