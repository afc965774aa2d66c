package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"floorplan-studio/internal/controller"
	"floorplan-studio/internal/logger"
	"floorplan-studio/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ResultStore keeps a copy of downloaded results on the server side.
type ResultStore interface {
	Save(ctx context.Context, filename, content string) (string, error)
}

// UIHandler exposes one Controller to the browser.
type UIHandler struct {
	controller  *controller.Controller
	writer      ResultStore
	ctx         context.Context
	maxFileSize int64
}

// NewUIHandler builds the handler. ctx outlives individual HTTP requests and
// bounds the backend calls they start.
func NewUIHandler(ctx context.Context, ctrl *controller.Controller, writer ResultStore, maxFileSize int64) *UIHandler {
	return &UIHandler{
		controller:  ctrl,
		writer:      writer,
		ctx:         ctx,
		maxFileSize: maxFileSize,
	}
}

func (h *UIHandler) Register(api *gin.RouterGroup) {
	api.GET("/state", h.State)
	api.POST("/file", h.SelectFile)
	api.POST("/drop", h.DropFile)
	api.DELETE("/file", h.RemoveFile)
	api.POST("/drag", h.Drag)
	api.POST("/analyze", h.Analyze)
	api.POST("/generate", h.Generate)
	api.POST("/reset", h.Reset)
	api.GET("/results/download", h.DownloadResults)
	api.POST("/results/save", h.SaveResults)
	api.POST("/history/refresh", h.RefreshHistory)
	api.GET("/history/:filename", h.OpenHistoryEntry)
	api.POST("/notice/dismiss", h.DismissNotice)
}

func (h *UIHandler) State(c *gin.Context) {
	c.JSON(http.StatusOK, h.controller.View())
}

func (h *UIHandler) SelectFile(c *gin.Context) {
	h.acceptFile(c, h.controller.SelectFile)
}

func (h *UIHandler) DropFile(c *gin.Context) {
	h.acceptFile(c, h.controller.DropFile)
}

func (h *UIHandler) acceptFile(c *gin.Context, accept func(models.RawFile) error) {
	raw, err := h.readUpload(c)
	if err != nil {
		logger.WithFields(logrus.Fields{
			"error": err.Error(),
		}).Warn("Invalid upload request")
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid upload",
			"details": err.Error(),
		})
		return
	}

	if err := accept(raw); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": err.Error(),
			"view":  h.controller.View(),
		})
		return
	}

	c.JSON(http.StatusOK, h.controller.View())
}

// readUpload streams the "image" part, reading at most one byte past the
// intake ceiling so oversized files still reach intake's size check.
func (h *UIHandler) readUpload(c *gin.Context) (models.RawFile, error) {
	reader, err := c.Request.MultipartReader()
	if err != nil {
		return models.RawFile{}, err
	}

	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			return models.RawFile{}, errors.New(`missing "image" field`)
		}
		if err != nil {
			return models.RawFile{}, err
		}
		if part.FormName() != "image" {
			part.Close()
			continue
		}

		data, err := io.ReadAll(io.LimitReader(part, h.maxFileSize+1))
		part.Close()
		if err != nil {
			return models.RawFile{}, fmt.Errorf("failed to read upload: %w", err)
		}

		return models.RawFile{
			Name:      part.FileName(),
			MediaType: part.Header.Get("Content-Type"),
			Data:      data,
		}, nil
	}
}

func (h *UIHandler) RemoveFile(c *gin.Context) {
	h.controller.RemoveFile()
	c.JSON(http.StatusOK, h.controller.View())
}

type dragRequest struct {
	Active *bool `json:"active" binding:"required"`
}

func (h *UIHandler) Drag(c *gin.Context) {
	var req dragRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	h.controller.SetDragActive(*req.Active)
	c.JSON(http.StatusOK, h.controller.View())
}

func (h *UIHandler) Analyze(c *gin.Context) {
	if !h.controller.View().Intake.SubmitEnabled {
		c.JSON(http.StatusConflict, gin.H{"error": "No file selected"})
		return
	}

	h.controller.StartAnalysis(h.ctx)
	c.JSON(http.StatusAccepted, h.controller.View())
}

type generateRequest struct {
	Requirements string `json:"requirements"`
}

func (h *UIHandler) Generate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	done := h.controller.StartGeneration(h.ctx, req.Requirements)
	if strings.TrimSpace(req.Requirements) == "" {
		result := <-done
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": result.Message,
			"view":  h.controller.View(),
		})
		return
	}

	c.JSON(http.StatusAccepted, h.controller.View())
}

func (h *UIHandler) Reset(c *gin.Context) {
	h.controller.Reset()
	c.JSON(http.StatusOK, h.controller.View())
}

func (h *UIHandler) DownloadResults(c *gin.Context) {
	filename, content, err := h.controller.Download()
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No results to download"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(content))
}

func (h *UIHandler) SaveResults(c *gin.Context) {
	filename, content, err := h.controller.Download()
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No results to download"})
		return
	}

	path, err := h.writer.Save(c.Request.Context(), filename, content)
	if err != nil {
		logger.WithFields(logrus.Fields{
			"error": err.Error(),
		}).Error("Failed to save results")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal server error",
			"message": "Failed to save results",
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"filename": filename,
		"path":     path,
	})
}

func (h *UIHandler) RefreshHistory(c *gin.Context) {
	h.controller.RefreshHistory(c.Request.Context())
	c.JSON(http.StatusOK, h.controller.View().History)
}

// OpenHistoryEntry sends the browser to the backend copy of a listed entry.
func (h *UIHandler) OpenHistoryEntry(c *gin.Context) {
	filename := c.Param("filename")
	for _, entry := range h.controller.View().History.Entries {
		if entry.Filename == filename {
			c.Redirect(http.StatusFound, entry.DownloadURL)
			return
		}
	}

	c.JSON(http.StatusNotFound, gin.H{
		"error": fmt.Sprintf("History entry %s not found", filename),
	})
}

func (h *UIHandler) DismissNotice(c *gin.Context) {
	h.controller.DismissNotice()
	c.JSON(http.StatusOK, h.controller.View())
}

// Health reports liveness along with the backend the controller talks to.
func Health(backendURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().Format(time.RFC3339),
			"backend":   backendURL,
		})
	}
}
