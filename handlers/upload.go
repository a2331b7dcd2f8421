package handlers

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ray-remotestate/menuboard/apperr"
	"github.com/ray-remotestate/menuboard/imagehost"
	"github.com/ray-remotestate/menuboard/response"
)

const maxUploadSize = 10 << 20

// UploadImage forwards a multipart "file" to the image host and returns the
// hosted url. Nothing is stored locally.
func UploadImage(uploader imagehost.Uploader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize+(1<<20))
		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				response.Error(w, r, apperr.Validation("file must be at most 10 MiB").WithDetail("field", "file"))
				return
			}
			response.Error(w, r, apperr.Validation("invalid multipart form"))
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			response.Error(w, r, apperr.Validation("file is required").WithDetail("field", "file"))
			return
		}
		defer file.Close()

		if header.Size > maxUploadSize {
			response.Error(w, r, apperr.Validation("file must be at most 10 MiB").WithDetail("field", "file"))
			return
		}

		data, err := io.ReadAll(file)
		if err != nil {
			response.Error(w, r, apperr.Internal("failed to read upload", err))
			return
		}
		if !strings.HasPrefix(http.DetectContentType(data), "image/") {
			response.Error(w, r, apperr.Validation("file must be an image").WithDetail("field", "file"))
			return
		}

		folder := strings.TrimSpace(r.FormValue("folder"))
		result, err := uploader.Upload(r.Context(), data, filepath.Base(header.Filename), folder)
		if err != nil {
			response.Error(w, r, apperr.Internal("image upload failed", err))
			return
		}

		logrus.WithFields(logrus.Fields{"file_id": result.FileID, "size": len(data)}).Info("image uploaded")
		response.Created(w, result)
	}
}
