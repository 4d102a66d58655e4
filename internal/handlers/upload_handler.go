package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/01moynul/carlisting-golang/internal/csvimport"
	"github.com/01moynul/carlisting-golang/internal/metrics"
	"github.com/01moynul/carlisting-golang/internal/models"
)

// UploadCSV handles POST /items/uploadcsv. The upload is stored under a
// random name in the upload directory, imported as the caller's listings
// and removed again whatever the outcome.
func (h *Handlers) UploadCSV(c *gin.Context) {
	actor, ok := h.mustActor(c)
	if !ok {
		return
	}

	// 1. Get the file from the request.
	// The body is capped first so a huge upload fails fast with 413.
	if h.MaxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes)
	}
	file, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}

	// 2. Create the upload directory if it doesn't exist
	if err := os.MkdirAll(h.UploadDir, 0o755); err != nil {
		h.respondError(c, fmt.Errorf("failed to create upload dir: %w", err))
		return
	}

	// 3. Generate a safe unique filename (uuid, the client's name is never used on disk).
	// The file is removed on every path out of this handler, success included.
	savePath := filepath.Join(h.UploadDir, uuid.New().String())
	defer func() {
		if err := os.Remove(savePath); err != nil && !errors.Is(err, os.ErrNotExist) {
			h.Logger.Warn("Failed to remove upload", zap.String("path", savePath), zap.Error(err))
		}
	}()

	// 4. Save the file
	if err := c.SaveUploadedFile(file, savePath); err != nil {
		h.respondError(c, fmt.Errorf("failed to save upload: %w", err))
		return
	}

	// 5. Import the rows as listings owned by the caller.
	// Bad CSV is a 406 and nothing is inserted; a store failure is a 500.
	n, err := h.Importer.Import(c.Request.Context(), savePath, actor.ID)
	if err != nil {
		if errors.Is(err, csvimport.ErrMalformedInput) {
			metrics.RecordCSVImport("malformed", 0)
			h.Logger.Info("Rejected CSV upload", zap.String("filename", file.Filename), zap.Error(err))
		} else {
			metrics.RecordCSVImport("error", 0)
		}
		h.respondError(c, err)
		return
	}

	// 6. Report where the file was stored (it is already gone by the time the client reads this)
	metrics.RecordCSVImport("success", n)
	c.JSON(http.StatusOK, models.Message{
		Message: fmt.Sprintf("file '%s' saved at '%s'", file.Filename, savePath),
	})
}
