package slideml

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
)

// One shared transport; deadlines come from the per-operation contexts.
var httpClient = &http.Client{}

func (c *Client) postFile(ctx context.Context, path, filename string, file io.Reader, out any) error {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return fmt.Errorf("create multipart part: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("buffer upload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("finish multipart body: %w", err)
	}

	return c.do(ctx, path, &body, writer.FormDataContentType(), func(resp *http.Response) error {
		return decodeJSONBody(resp, out)
	})
}

func (c *Client) postJSON(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	return c.do(ctx, path, bytes.NewReader(body), "application/json", func(resp *http.Response) error {
		return decodeJSONBody(resp, out)
	})
}

func (c *Client) postForBinary(ctx context.Context, path string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	var data []byte
	err = c.do(ctx, path, bytes.NewReader(body), "application/json", func(resp *http.Response) error {
		data, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read pptx body: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (c *Client) do(ctx context.Context, path string, body io.Reader, contentType string, consume func(*http.Response) error) error {
	baseURL, err := c.locator.BaseURL(ctx)
	if err != nil {
		return fmt.Errorf("resolve ml base url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json, application/octet-stream")

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ml request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return newHTTPStatusError(resp)
	}
	return consume(resp)
}

func decodeJSONBody(resp *http.Response, out any) error {
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// HTTPStatusError keeps the status and a body snippet so the raw diagnostic
// detail reaches the caller.
type HTTPStatusError struct {
	StatusCode int
	Status     string
	Body       string
}

func newHTTPStatusError(resp *http.Response) *HTTPStatusError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	return &HTTPStatusError{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       strings.TrimSpace(string(body)),
	}
}

func (e *HTTPStatusError) Error() string {
	if e == nil {
		return "ml status error"
	}
	if e.Body == "" {
		return fmt.Sprintf("ml status: %s", e.Status)
	}
	return fmt.Sprintf("ml status: %s: %s", e.Status, e.Body)
}
