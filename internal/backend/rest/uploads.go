package rest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"github.com/loganlanou/colink-venture/internal/gateway"
)

// Upload posts r as the multipart field "image" and returns the hosted URL.
func (c *Client) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("image", filepath.Base(filename))
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", fmt.Errorf("copy file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("close writer: %w", err)
	}

	resp, err := c.gw.AuthenticatedCall(ctx, "/uploads", gateway.Options{
		Method: http.MethodPost,
		Body:   &body,
		Header: http.Header{"Content-Type": {writer.FormDataContentType()}},
	})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var result struct {
		ImageURL string `json:"imageUrl"`
	}
	if err := decode(resp, &result); err != nil {
		return "", err
	}
	if result.ImageURL == "" {
		return "", errors.New("upload response carried no imageUrl")
	}
	return result.ImageURL, nil
}
