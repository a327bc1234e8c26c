package api

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/dutchcoders/go-clamd"
	"github.com/gin-gonic/gin"
	"github.com/h2non/filetype"

	"reportpress/internal/api/middleware"
	"reportpress/internal/storage"
)

// UploadHandler accepts image assets for later reference by name from
// report documents. Uploads are scanned when a clamd daemon is
// configured.
type UploadHandler struct {
	Storage   *storage.Client
	ClamdAddr string
}

func NewUploadHandler(storageClient *storage.Client, clamdAddr string) *UploadHandler {
	return &UploadHandler{Storage: storageClient, ClamdAddr: clamdAddr}
}

var unsafeNameChars = regexp.MustCompile(`[^\w.\-]+`)

// safeObjectName keeps the base name recognizable while stripping
// anything that should not reach an object key.
func safeObjectName(filename string) string {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	base = unsafeNameChars.ReplaceAllString(base, "_")
	base = strings.Trim(base, "._")
	if base == "" {
		base = "asset"
	}
	return base
}

// Upload stores a multipart image in the bucket under uploads/ and
// returns the object key the document can reference.
func (h *UploadHandler) Upload(c *gin.Context) {
	log := middleware.LoggerFromContext(c)

	file, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "missing file")
		return
	}

	if h.ClamdAddr != "" {
		if ok := h.scan(c, file); !ok {
			return
		}
	}

	reader, err := file.Open()
	if err != nil {
		Internal(c, "failed to open file")
		return
	}
	defer reader.Close()

	head := make([]byte, 261)
	n, err := io.ReadFull(reader, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		Internal(c, "failed to read file")
		return
	}
	head = head[:n]

	contentType := file.Header.Get("Content-Type")
	if kind, err := filetype.Match(head); err == nil && kind != filetype.Unknown {
		contentType = kind.MIME.Value
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if !strings.HasPrefix(contentType, "image/") {
		BadRequest(c, "only image uploads are accepted")
		return
	}

	body := io.MultiReader(bytes.NewReader(head), reader)
	objectKey := fmt.Sprintf("uploads/%s_%d", safeObjectName(file.Filename), time.Now().UnixMilli())

	if _, err := h.Storage.UploadFile(c.Request.Context(), objectKey, body, file.Size, contentType); err != nil {
		log.Error("upload asset failed", slog.Any("error", err))
		Internal(c, "failed to upload file")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"objectKey": objectKey,
		"url":       h.Storage.PublicURL(objectKey),
	})
}

// scan streams the upload through clamd. It answers the request itself
// on any failure and reports whether the caller may proceed.
func (h *UploadHandler) scan(c *gin.Context, file *multipart.FileHeader) bool {
	log := middleware.LoggerFromContext(c)

	reader, err := file.Open()
	if err != nil {
		Internal(c, "failed to open file")
		return false
	}

	clamdClient := clamd.NewClamd(h.ClamdAddr)
	abortChan := make(chan bool)
	scanChan, err := clamdClient.ScanStream(reader, abortChan)
	reader.Close()
	if err != nil {
		log.Error("scan file failed", slog.Any("error", err))
		Internal(c, "failed to scan file")
		return false
	}
	defer close(abortChan)

	for result := range scanChan {
		if result.Status != clamd.RES_OK {
			BadRequest(c, "malicious file detected")
			return false
		}
	}
	return true
}
