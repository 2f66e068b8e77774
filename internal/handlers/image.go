package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"mediscan/internal/service"

	"github.com/gin-gonic/gin"
)

const analysisFilename = "medical_analysis.txt"

var errNoAnalysis = errors.New("no analysis available")

// readUpload reads the "file" form field, refusing anything over limit.
func readUpload(c *gin.Context, limit int64) ([]byte, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return nil, &service.ValidationError{Field: "file", Message: "is required"}
	}
	if fh.Size > limit {
		return nil, &service.ValidationError{Field: "file", Message: fmt.Sprintf("must be at most %d bytes", limit)}
	}
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, &service.ValidationError{Field: "file", Message: fmt.Sprintf("must be at most %d bytes", limit)}
	}
	return data, nil
}

// @Summary      Analyze a medical image
// @Description  Accepts a PNG or JPEG upload in the "file" field.
// @Tags         image
// @Accept       multipart/form-data
// @Produce      json
// @Param        file      formData  file    true   "PNG or JPEG image"
// @Param        language  formData  string  false  "Output language"  Enums(English,Telugu,Hindi,Tamil,Malayalam)
// @Success      200  {object}  SessionResponse
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      415  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Failure      504  {object}  map[string]string
// @Router       /api/v1/image [post]
// @Security     BearerAuth
func (h *Handler) analyzeImage(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+1<<20)

	lang, err := parseLanguage("language", c.PostForm("language"), true)
	if err != nil {
		h.writeError(c, "image_analyze_failed", err)
		return
	}
	data, err := readUpload(c, h.maxUploadBytes)
	if err != nil {
		h.writeError(c, "image_analyze_failed", err)
		return
	}

	sess, err := h.services.AnalyzeImage(c.Request.Context(), sessionID(c), data, lang)
	if err != nil {
		h.writeError(c, "image_analyze_failed", err, "bytes", len(data), "language", lang)
		return
	}
	c.JSON(http.StatusOK, sessionResponse(sess))
}

// @Summary      Clear the analysis
// @Tags         image
// @Produce      json
// @Success      200  {object}  SessionResponse
// @Failure      403  {object}  map[string]string
// @Router       /api/v1/image [delete]
// @Security     BearerAuth
func (h *Handler) clearImage(c *gin.Context) {
	sess, err := h.services.ClearImage(c.Request.Context(), sessionID(c))
	if err != nil {
		h.writeError(c, "image_clear_failed", err)
		return
	}
	c.JSON(http.StatusOK, sessionResponse(sess))
}

// @Summary      Translate the analysis
// @Tags         image
// @Accept       json
// @Produce      json
// @Param        body  body      TranslateRequest  true  "Target language"
// @Success      200   {object}  SessionResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /api/v1/image/translate [post]
// @Security     BearerAuth
func (h *Handler) translateImage(c *gin.Context) {
	var req TranslateRequest
	if !h.bindJSONOrBadRequest(c, &req) {
		return
	}
	lang, err := parseLanguage("language", req.Language, false)
	if err != nil {
		h.writeError(c, "image_translate_failed", err)
		return
	}

	sess, err := h.services.TranslateImage(c.Request.Context(), sessionID(c), lang)
	if err != nil {
		h.writeError(c, "image_translate_failed", err, "language", lang)
		return
	}
	c.JSON(http.StatusOK, sessionResponse(sess))
}

// @Summary      Speak the analysis
// @Tags         image
// @Produce      audio/mpeg
// @Success      200  {file}    binary
// @Failure      409  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/v1/image/speech [get]
// @Security     BearerAuth
func (h *Handler) speakImage(c *gin.Context) {
	audio, err := h.services.SpeakImage(c.Request.Context(), sessionID(c))
	if err != nil {
		h.writeError(c, "image_speak_failed", err)
		return
	}
	c.Data(http.StatusOK, contentTypeMP3, audio)
}

// @Summary      Download the analysis
// @Tags         image
// @Produce      plain
// @Success      200  {string}  string
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/image/result [get]
// @Security     BearerAuth
func (h *Handler) imageResult(c *gin.Context) {
	text, err := h.services.ImageResult(c.Request.Context(), sessionID(c))
	if err != nil {
		h.writeError(c, "image_result_failed", err)
		return
	}
	if text == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": errNoAnalysis.Error()})
		return
	}
	attachment(c, analysisFilename)
	c.Data(http.StatusOK, contentTypeText, []byte(text))
}
