package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"NutriGuide/pkg/services"
)

// SearchKnowledge exposes the knowledge base directly for the frontend
// source browser.
func SearchKnowledge(svc *services.KnowledgeService) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := strings.TrimSpace(c.Query("query"))
		if query == "" {
			c.JSON(http.StatusOK, gin.H{"success": false, "error": "Query is required"})
			return
		}
		if !svc.Enabled() {
			c.JSON(http.StatusOK, gin.H{"success": true, "results": []services.Snippet{}})
			return
		}

		snippets, err := svc.Search(c.Request.Context(), query)
		if err != nil {
			c.JSON(http.StatusOK, gin.H{"success": false, "error": "Knowledge base search failed"})
			return
		}
		if snippets == nil {
			snippets = []services.Snippet{}
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "results": snippets})
	}
}
