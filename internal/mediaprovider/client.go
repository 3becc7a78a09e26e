// Package mediaprovider реализует клиент внешнего сервиса загрузки медиа-файлов.
// Ядро хранит только возвращённый сервисом URL; повторные попытки при сбое
// не выполняются.
package mediaprovider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

type Client struct {
	apiURL     string
	httpClient *http.Client
}

// NewClient создаёт новый клиент сервиса загрузки медиа
func NewClient(apiURL string, timeout time.Duration) *Client {
	return &Client{
		apiURL:     apiURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Upload отправляет локальный файл в сервис загрузки и возвращает публичный URL.
// Пустой URL в ответе считается сбоем загрузки.
func (c *Client) Upload(ctx context.Context, localPath string) (string, error) {
	const op = "mediaprovider.Upload"

	file, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = file.Close()
	}()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filepath.Base(localPath))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if _, err = io.Copy(part, file); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if err = writer.Close(); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/upload", &buf)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("%s: unexpected status: %s", op, resp.Status)
	}

	var result UploadResult
	if err = json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if result.URL == "" {
		return "", fmt.Errorf("%s: %w", op, errors.New("empty url in upload response"))
	}
	return result.URL, nil
}
