package handlers

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"

	"github.com/Yanisdje/athleticabcknd/config"
	"github.com/Yanisdje/athleticabcknd/fetcher"
	"github.com/Yanisdje/athleticabcknd/imageproc"
	"github.com/Yanisdje/athleticabcknd/llm"
	"github.com/Yanisdje/athleticabcknd/metrics"
	"github.com/Yanisdje/athleticabcknd/models"
	"github.com/Yanisdje/athleticabcknd/parser"
	"github.com/Yanisdje/athleticabcknd/prompt"
)

// Handlers holds the HTTP handlers and their collaborators. The LLM client
// and fetcher are constructed once per process and injected here.
type Handlers struct {
	cfg     *config.Config
	llm     llm.Client
	fetcher *fetcher.Fetcher
}

// New creates the API handlers.
func New(cfg *config.Config, client llm.Client, f *fetcher.Fetcher) *Handlers {
	return &Handlers{
		cfg:     cfg,
		llm:     client,
		fetcher: f,
	}
}

// Home handles liveness requests on the root path.
func (h *Handlers) Home(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Server is running",
	})
}

// HealthCheck handles health check requests.
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "Fitness analysis API is running",
	})
}

// Analyze accepts an image (by URL or inline base64) and/or a questionnaire
// profile, forwards them to the vision model and returns the parsed
// assessment.
func (h *Handlers) Analyze(c *gin.Context) {
	start := time.Now()
	metrics.InFlight.Inc()
	defer func() {
		metrics.InFlight.Dec()
		metrics.RequestDuration.WithLabelValues("analyze").Observe(time.Since(start).Seconds())
	}()

	var req models.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.RequestsTotal.WithLabelValues("analyze", "bad_request").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	if req.ImageURL == "" && req.Image == "" && req.FormData == nil {
		metrics.RequestsTotal.WithLabelValues("analyze", "bad_request").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "Either image or form data must be provided"})
		return
	}

	imageData, ok := h.resolveImage(c, &req)
	if !ok {
		return
	}

	log.WithFields(log.Fields{
		"has_image":   len(imageData) > 0,
		"has_profile": req.FormData != nil,
		"image_bytes": len(imageData),
	}).Info("analyze.request")

	promptText := prompt.BuildAnalysisPrompt(req.FormData, len(imageData) > 0)

	upstreamStart := time.Now()
	response, err := h.llm.AnalyzeImage(c.Request.Context(), imageData, promptText)
	metrics.UpstreamDuration.WithLabelValues("analyze").Observe(time.Since(upstreamStart).Seconds())
	if err != nil {
		h.upstreamError(c, "analyze", err)
		return
	}

	analysis, err := parser.ParseAnalysis(response)
	if err != nil {
		log.Errorf("Failed to parse analysis: %v", err)
		metrics.RequestsTotal.WithLabelValues("analyze", "parse_error").Inc()
		c.JSON(http.StatusBadGateway, gin.H{
			"success":      false,
			"error":        err.Error(),
			"raw_response": response,
		})
		return
	}

	metrics.RequestsTotal.WithLabelValues("analyze", "ok").Inc()
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"analysis": analysis,
	})
}

// Chat forwards the message to the completion model and returns its reply.
func (h *Handlers) Chat(c *gin.Context) {
	start := time.Now()
	metrics.InFlight.Inc()
	defer func() {
		metrics.InFlight.Dec()
		metrics.RequestDuration.WithLabelValues("chat").Observe(time.Since(start).Seconds())
	}()

	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.RequestsTotal.WithLabelValues("chat", "bad_request").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	upstreamStart := time.Now()
	reply, err := h.llm.Chat(c.Request.Context(), req.Message)
	metrics.UpstreamDuration.WithLabelValues("chat").Observe(time.Since(upstreamStart).Seconds())
	if err != nil {
		h.upstreamError(c, "chat", err)
		return
	}

	metrics.RequestsTotal.WithLabelValues("chat", "ok").Inc()
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"reply":   reply,
	})
}

// resolveImage produces the image bytes for an analyze request, writing the
// error response itself when the image cannot be obtained.
func (h *Handlers) resolveImage(c *gin.Context, req *models.AnalyzeRequest) ([]byte, bool) {
	var imageData []byte

	switch {
	case req.ImageURL != "":
		data, err := h.fetcher.Fetch(c.Request.Context(), req.ImageURL)
		if err != nil {
			log.Errorf("Failed to fetch image: %v", err)
			metrics.RequestsTotal.WithLabelValues("analyze", "fetch_error").Inc()
			c.JSON(http.StatusBadGateway, gin.H{
				"success": false,
				"error":   "Failed to fetch image",
			})
			return nil, false
		}
		imageData = data
	case req.Image != "":
		data, err := decodeBase64Image(req.Image)
		if err != nil {
			log.Errorf("Invalid base64 image: %v", err)
			metrics.RequestsTotal.WithLabelValues("analyze", "bad_request").Inc()
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid image format"})
			return nil, false
		}
		imageData = data
	default:
		return nil, true
	}

	// Best-effort downscale; unsupported formats are forwarded as-is.
	compressed, err := imageproc.CompressImage(imageData)
	if err != nil {
		log.Warnf("Image downscale skipped: %v", err)
		return imageData, true
	}
	return compressed, true
}

// decodeBase64Image decodes a client-supplied base64 image, tolerating a
// data URL prefix and missing padding.
func decodeBase64Image(s string) ([]byte, error) {
	if idx := strings.Index(s, "base64,"); idx != -1 {
		s = s[idx+len("base64,"):]
	}
	if pad := len(s) % 4; pad != 0 {
		s += strings.Repeat("=", 4-pad)
	}
	return base64.StdEncoding.DecodeString(s)
}

// upstreamError maps OpenAI call failures to HTTP statuses: timeouts to 504,
// everything else to 502.
func (h *Handlers) upstreamError(c *gin.Context, endpoint string, err error) {
	log.Errorf("OpenAI request failed (%s): %v", endpoint, err)

	if errors.Is(err, context.DeadlineExceeded) {
		metrics.RequestsTotal.WithLabelValues(endpoint, "timeout").Inc()
		c.JSON(http.StatusGatewayTimeout, gin.H{
			"success": false,
			"error":   "Analysis timeout. Please try again.",
		})
		return
	}

	metrics.RequestsTotal.WithLabelValues(endpoint, "upstream_error").Inc()
	c.JSON(http.StatusBadGateway, gin.H{
		"success": false,
		"error":   "Service communication error",
	})
}
