package service

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gabriel-vasile/mimetype"
	"github.com/labstack/echo/v4"

	"github.com/loganlanou/colink-venture/internal/backend"
	"github.com/loganlanou/colink-venture/internal/notify"
)

var allowedImageTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

var errUploadTooLarge = errors.New("upload too large")

// handleUpload checks the "image" field's size and sniffed content type
// before proxying it to the backend's upload endpoint.
func (s *Service) handleUpload(c echo.Context) error {
	limit := s.config.Upload.MaxSize
	c.Request().Body = http.MaxBytesReader(c.Response(), c.Request().Body, limit+(1<<20))

	return s.authed("Upload failed", func(c echo.Context, r *request, _ *backend.UserRecord) (any, error) {
		fh, err := c.FormFile("image")
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				return nil, fmt.Errorf("%w: files must be %s or smaller", errBadRequest, formatSize(limit))
			}
			return nil, fmt.Errorf("%w: an image file is required", errBadRequest)
		}
		if fh.Size > limit {
			return nil, fmt.Errorf("%w: files must be %s or smaller", errBadRequest, formatSize(limit))
		}

		file, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("open upload: %w", err)
		}
		defer file.Close()

		mtype, err := mimetype.DetectReader(file)
		if err != nil {
			return nil, fmt.Errorf("detect content type: %w", err)
		}
		if !mimetype.EqualsAny(mtype.String(), allowedImageTypes...) {
			return nil, fmt.Errorf("%w: %s is not a supported image type", errBadRequest, mtype.String())
		}
		if _, err := file.Seek(0, io.SeekStart); err != nil {
			return nil, fmt.Errorf("rewind upload: %w", err)
		}

		url, err := r.backend.Uploads.Upload(r.ctx, fh.Filename, file)
		if err != nil {
			return nil, err
		}
		r.flash.Notify(notify.Info("Image uploaded", ""))
		return map[string]string{"imageUrl": url, "contentType": mtype.String()}, nil
	})(c)
}

func formatSize(n int64) string {
	const mb = 1 << 20
	if n >= mb && n%mb == 0 {
		return fmt.Sprintf("%dMB", n/mb)
	}
	return fmt.Sprintf("%d bytes", n)
}
