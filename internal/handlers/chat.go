package handlers

import (
	"net/http"

	"mediscan/internal/models"
	"mediscan/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	contentTypeMP3  = "audio/mpeg"
	contentTypeText = "text/plain; charset=utf-8"

	transcriptFilename = "chat_transcript.txt"
)

// ChatRequest is one question to the assistant.
type ChatRequest struct {
	Message string `json:"message" example:"I have had a headache for two days"`
	// Optional. Empty means English unless the message names a language.
	Language string `json:"language,omitempty" example:"Telugu" enums:"English,Telugu,Hindi,Tamil,Malayalam"`
}

// TranslateRequest picks the target language for the last reply.
type TranslateRequest struct {
	Language string `json:"language" example:"Hindi" enums:"English,Telugu,Hindi,Tamil,Malayalam"`
}

func parseLanguage(field, s string, allowEmpty bool) (models.Language, error) {
	if s == "" {
		if allowEmpty {
			return "", nil
		}
		return "", &service.ValidationError{Field: field, Message: "is required"}
	}
	lang, err := models.ParseLanguage(s)
	if err != nil {
		return "", &service.ValidationError{Field: field, Message: err.Error()}
	}
	return lang, nil
}

func attachment(c *gin.Context, filename string) {
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
}

// @Summary      Ask the assistant
// @Tags         chat
// @Accept       json
// @Produce      json
// @Param        body  body      ChatRequest  true  "Question"
// @Success      200   {object}  SessionResponse
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Failure      504   {object}  map[string]string
// @Router       /api/v1/chat [post]
// @Security     BearerAuth
func (h *Handler) chat(c *gin.Context) {
	var req ChatRequest
	if !h.bindJSONOrBadRequest(c, &req) {
		return
	}
	lang, err := parseLanguage("language", req.Language, true)
	if err != nil {
		h.writeError(c, "chat_failed", err)
		return
	}

	sess, err := h.services.Chat(c.Request.Context(), sessionID(c), req.Message, lang)
	if err != nil {
		h.writeError(c, "chat_failed", err, "language", lang)
		return
	}
	c.JSON(http.StatusOK, sessionResponse(sess))
}

// @Summary      Clear the conversation
// @Tags         chat
// @Produce      json
// @Success      200  {object}  SessionResponse
// @Failure      403  {object}  map[string]string
// @Router       /api/v1/chat [delete]
// @Security     BearerAuth
func (h *Handler) clearChat(c *gin.Context) {
	sess, err := h.services.ClearChat(c.Request.Context(), sessionID(c))
	if err != nil {
		h.writeError(c, "chat_clear_failed", err)
		return
	}
	c.JSON(http.StatusOK, sessionResponse(sess))
}

// @Summary      Translate the last reply
// @Tags         chat
// @Accept       json
// @Produce      json
// @Param        body  body      TranslateRequest  true  "Target language"
// @Success      200   {object}  SessionResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /api/v1/chat/translate [post]
// @Security     BearerAuth
func (h *Handler) translateChat(c *gin.Context) {
	var req TranslateRequest
	if !h.bindJSONOrBadRequest(c, &req) {
		return
	}
	lang, err := parseLanguage("language", req.Language, false)
	if err != nil {
		h.writeError(c, "chat_translate_failed", err)
		return
	}

	sess, err := h.services.TranslateChat(c.Request.Context(), sessionID(c), lang)
	if err != nil {
		h.writeError(c, "chat_translate_failed", err, "language", lang)
		return
	}
	c.JSON(http.StatusOK, sessionResponse(sess))
}

// @Summary      Speak the last reply
// @Tags         chat
// @Produce      audio/mpeg
// @Success      200  {file}    binary
// @Failure      409  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/v1/chat/speech [get]
// @Security     BearerAuth
func (h *Handler) speakChat(c *gin.Context) {
	audio, err := h.services.SpeakChat(c.Request.Context(), sessionID(c))
	if err != nil {
		h.writeError(c, "chat_speak_failed", err)
		return
	}
	c.Data(http.StatusOK, contentTypeMP3, audio)
}

// @Summary      Download the conversation
// @Tags         chat
// @Produce      plain
// @Success      200  {string}  string
// @Failure      403  {object}  map[string]string
// @Router       /api/v1/chat/transcript [get]
// @Security     BearerAuth
func (h *Handler) chatTranscript(c *gin.Context) {
	text, err := h.services.Transcript(c.Request.Context(), sessionID(c))
	if err != nil {
		h.writeError(c, "chat_transcript_failed", err)
		return
	}
	attachment(c, transcriptFilename)
	c.Data(http.StatusOK, contentTypeText, []byte(text))
}
