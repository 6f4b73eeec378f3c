package controllers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"NutriGuide/pkg/services"
)

// GeminiProxy relays a raw generateContent request upstream and mirrors
// the upstream status code back. An optional "model" field in the body
// selects the model; the rest of the payload passes through untouched.
// On success only the extracted text is returned; the full upstream
// error body comes back on failure.
func GeminiProxy(svc *services.GeminiService) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := io.ReadAll(c.Request.Body)
		if err != nil || len(raw) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body"})
			return
		}

		var payload map[string]json.RawMessage
		if err := json.Unmarshal(raw, &payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body"})
			return
		}
		var model string
		if rawModel, ok := payload["model"]; ok {
			_ = json.Unmarshal(rawModel, &model)
			delete(payload, "model")
			raw, _ = json.Marshal(payload)
		}

		status, respBody, err := svc.Forward(c.Request.Context(), model, raw)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": "upstream unreachable"})
			return
		}

		if status < 200 || status >= 300 {
			c.Data(status, "application/json", respBody)
			return
		}

		text, ok := services.ExtractCandidateText(respBody)
		if !ok {
			c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": "no candidate text in upstream response"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "text": text})
	}
}
