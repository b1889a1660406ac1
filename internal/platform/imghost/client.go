// Package imghost wraps the external image-hosting API used for category and
// product pictures. The host stores the file and hands back a public URL plus
// an identifier for later deletion.
package imghost

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Image is the stored result of an upload.
type Image struct {
	URL      string `json:"url"`
	DeleteID string `json:"delete_id"`
}

// Client talks to the image-hosting API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient constructs a new client.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Upload sends the file to the hosting service and returns its public URL and
// delete identifier.
func (c *Client) Upload(ctx context.Context, filename string, file io.Reader) (Image, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("image", filename)
	if err != nil {
		return Image{}, err
	}
	if _, err := io.Copy(part, file); err != nil {
		return Image{}, err
	}
	if err := writer.WriteField("name", uuid.NewString()); err != nil {
		return Image{}, err
	}
	if err := writer.Close(); err != nil {
		return Image{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/upload?key=%s", c.baseURL, c.apiKey), body)
	if err != nil {
		return Image{}, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Image{}, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		return Image{}, fmt.Errorf("imghost: upload failed with status %d", resp.StatusCode)
	}

	var parsed struct {
		Data struct {
			URL      string `json:"url"`
			DeleteID string `json:"delete_id"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return Image{}, fmt.Errorf("imghost: decode response: %w", err)
	}
	return Image{URL: parsed.Data.URL, DeleteID: parsed.Data.DeleteID}, nil
}

// Delete removes a previously uploaded image. Callers treat failures as
// best effort and log them.
func (c *Client) Delete(ctx context.Context, deleteID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, fmt.Sprintf("%s/images/%s?key=%s", c.baseURL, deleteID, c.apiKey), nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("imghost: delete failed with status %d", resp.StatusCode)
	}
	return nil
}
