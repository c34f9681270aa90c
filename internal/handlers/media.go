package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"quillpress/internal/middleware"
	"quillpress/internal/models"
	"quillpress/internal/storage"
	"quillpress/internal/store"
)

// defaultMaxUploadSize is the upload cap when none is configured (20 MB).
const defaultMaxUploadSize = 20 << 20

// allowedMediaTypes defines the sniffed MIME types accepted for upload.
var allowedMediaTypes = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/gif":       ".gif",
	"image/webp":      ".webp",
	"application/pdf": ".pdf",
}

// requireStorage answers 503 when object storage is not configured.
func (a *API) requireStorage(w http.ResponseWriter) bool {
	if a.storage == nil {
		writeError(w, http.StatusServiceUnavailable, "storage_unavailable", "object storage is not configured", nil)
		return false
	}
	return true
}

func (a *API) withURL(m *models.Media) *models.Media {
	m.URL = a.storage.FileURL(m.FilePath)
	return m
}

// MediaList pages through uploaded media, newest first.
func (a *API) MediaList(w http.ResponseWriter, r *http.Request) {
	if !a.requireStorage(w) {
		return
	}
	page, err := queryInt(r, "page", store.DefaultPage)
	if err != nil || page < 1 {
		writeBadRequest(w, "page must be a positive integer")
		return
	}
	limit, err := queryLimit(r, store.DefaultLimit, store.MaxLimit)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	items, pg, err := a.media.List(r.Context(), page, limit)
	if err != nil {
		writeStoreError(w, r, "list media", err)
		return
	}
	for i := range items {
		a.withURL(&items[i])
	}
	writePage(w, items, pg)
}

// MediaGet returns one media item.
func (a *API) MediaGet(w http.ResponseWriter, r *http.Request) {
	if !a.requireStorage(w) {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	m, err := a.media.FindByID(r.Context(), id)
	if err != nil {
		writeStoreError(w, r, "get media", err)
		return
	}
	writeData(w, http.StatusOK, a.withURL(m))
}

// MediaUpload stores a multipart "file" in the bucket and records its
// metadata. The type is sniffed from the content, not trusted from the
// client.
func (a *API) MediaUpload(w http.ResponseWriter, r *http.Request) {
	if !a.requireStorage(w) {
		return
	}
	sess := middleware.SessionFromCtx(r.Context())

	// Room for the form fields on top of the file itself.
	r.Body = http.MaxBytesReader(w, r.Body, a.maxUploadSize+64<<10)
	if err := r.ParseMultipartForm(a.maxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "too_large",
				fmt.Sprintf("file exceeds %d MB", a.maxUploadSize>>20), nil)
			return
		}
		writeBadRequest(w, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeBadRequest(w, "no file provided")
		return
	}
	defer file.Close()

	if header.Size > a.maxUploadSize {
		writeError(w, http.StatusRequestEntityTooLarge, "too_large",
			fmt.Sprintf("file exceeds %d MB", a.maxUploadSize>>20), nil)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeBadRequest(w, "failed to read file")
		return
	}
	if len(data) == 0 {
		writeValidation(w, fieldErrors{"file": "is empty"})
		return
	}

	contentType := http.DetectContentType(data)
	ext, ok := allowedMediaTypes[contentType]
	if !ok {
		writeValidation(w, fieldErrors{"file": fmt.Sprintf("type %q is not allowed", contentType)})
		return
	}

	key := storage.NewKey("upload"+ext, time.Now())
	ctx := r.Context()
	if err := a.storage.Upload(ctx, key, contentType, bytes.NewReader(data), int64(len(data))); err != nil {
		slog.Error("s3 upload failed", "error", err, "key", key)
		writeError(w, http.StatusBadGateway, "storage_error", "failed to upload file", nil)
		return
	}

	m := &models.Media{
		Filename:         filepath.Base(key),
		OriginalFilename: filepath.Base(header.Filename),
		FilePath:         key,
		FileSize:         int64(len(data)),
		MimeType:         contentType,
		UploadedBy:       sess.UserID,
	}
	if alt := strings.TrimSpace(r.FormValue("alt_text")); alt != "" {
		m.AltText = &alt
	}
	if caption := strings.TrimSpace(r.FormValue("caption")); caption != "" {
		m.Caption = &caption
	}

	created, err := a.media.Create(ctx, m)
	if err != nil {
		// Don't leave an orphaned object behind.
		if delErr := a.storage.Delete(ctx, key); delErr != nil {
			slog.Warn("s3 cleanup failed", "error", delErr, "key", key)
		}
		writeStoreError(w, r, "create media", err)
		return
	}
	writeData(w, http.StatusCreated, a.withURL(created))
}

// MediaUpdate changes alt text and caption, the only mutable fields.
func (a *API) MediaUpdate(w http.ResponseWriter, r *http.Request) {
	if !a.requireStorage(w) {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var p models.MediaPatch
	if err := decodeJSON(w, r, &p); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	errs := fieldErrors{}
	errs.optional("alt_text", p.AltText.Ptr(), maxDescriptionLen)
	errs.optional("caption", p.Caption.Ptr(), maxDescriptionLen)
	if len(errs) > 0 {
		writeValidation(w, errs)
		return
	}

	m, err := a.media.Update(r.Context(), id, p)
	if err != nil {
		writeStoreError(w, r, "update media", err)
		return
	}
	writeData(w, http.StatusOK, a.withURL(m))
}

// MediaDelete removes the row, then the object (best-effort).
func (a *API) MediaDelete(w http.ResponseWriter, r *http.Request) {
	if !a.requireStorage(w) {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	deleted, err := a.media.Delete(r.Context(), id)
	if err != nil {
		writeStoreError(w, r, "delete media", err)
		return
	}
	if err := a.storage.Delete(r.Context(), deleted.FilePath); err != nil {
		slog.Warn("s3 delete failed", "error", err, "key", deleted.FilePath)
	}
	w.WriteHeader(http.StatusNoContent)
}
