package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/huangang/sprintdesk/backend/internal/services"
	"github.com/huangang/sprintdesk/backend/pkg/response"
)

// GenerateHandler exposes the raw text-generation call.
type GenerateHandler struct {
	gen services.Generator
}

func NewGenerateHandler(gen services.Generator) *GenerateHandler {
	return &GenerateHandler{gen: gen}
}

type generateRequest struct {
	Prompt string `json:"prompt" binding:"required"`
}

// Generate returns generated text for a free-text prompt.
// POST /api/generate
func (h *GenerateHandler) Generate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	text, err := h.gen.Generate(c.Request.Context(), req.Prompt)
	if err != nil {
		response.Error(c, response.NewGeneration(err.Error()))
		return
	}
	response.Success(c, gin.H{"result": text})
}
