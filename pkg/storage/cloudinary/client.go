// Package cloudinary is a minimal HTTP client for the Cloudinary upload API.
// It covers only the calls the backend needs: uploading an image and
// destroying one by public ID.
package cloudinary

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/qrobotics/qrobotics-backend/pkg/config"
	"github.com/qrobotics/qrobotics-backend/pkg/logger"
)

const baseEndpoint = "https://api.cloudinary.com/v1_1"

// Client talks to the Cloudinary REST API with signed requests.
type Client struct {
	httpClient *http.Client
	cloudName  string
	apiKey     string
	apiSecret  string
	folder     string
	now        func() time.Time
	endpoint   string
}

// UploadResult is the subset of the upload response the backend keeps.
type UploadResult struct {
	PublicID  string `json:"public_id"`
	SecureURL string `json:"secure_url"`
	Format    string `json:"format"`
	Bytes     int64  `json:"bytes"`
}

func NewClient(cfg config.CloudinaryConfig, logg *logger.Logger) (*Client, error) {
	if cfg.CloudName == "" {
		return nil, errors.New("cloudinary cloud name is required")
	}
	if cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, errors.New("cloudinary api credentials are required")
	}

	timeout := cfg.CallTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := &Client{
		httpClient: &http.Client{Timeout: timeout},
		cloudName:  cfg.CloudName,
		apiKey:     cfg.APIKey,
		apiSecret:  cfg.APISecret,
		folder:     cfg.Folder,
		now:        time.Now,
		endpoint:   baseEndpoint,
	}

	if logg != nil {
		logg.Info(context.Background(), "cloudinary client initialized")
	}

	return client, nil
}

// Upload sends the image bytes to Cloudinary and returns the stored asset's
// public ID and URL.
func (c *Client) Upload(ctx context.Context, file io.Reader, fileName string) (*UploadResult, error) {
	if c == nil {
		return nil, errors.New("cloudinary client not initialized")
	}
	if file == nil {
		return nil, errors.New("file is required")
	}

	params := map[string]string{
		"timestamp": strconv.FormatInt(c.now().Unix(), 10),
	}
	if c.folder != "" {
		params["folder"] = c.folder
	}
	signature := c.sign(params)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for key, value := range params {
		if err := writer.WriteField(key, value); err != nil {
			return nil, fmt.Errorf("write field %q: %w", key, err)
		}
	}
	if err := writer.WriteField("api_key", c.apiKey); err != nil {
		return nil, fmt.Errorf("write api key: %w", err)
	}
	if err := writer.WriteField("signature", signature); err != nil {
		return nil, fmt.Errorf("write signature: %w", err)
	}
	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("copy file body: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	u := fmt.Sprintf("%s/%s/image/upload", c.endpoint, c.cloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError("upload", resp)
	}

	var result UploadResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode upload response: %w", err)
	}
	if result.PublicID == "" || result.SecureURL == "" {
		return nil, errors.New("upload response missing public_id or secure_url")
	}
	return &result, nil
}

// Destroy removes the asset identified by publicID. A "not found" result from
// Cloudinary is treated as success so retries stay idempotent.
func (c *Client) Destroy(ctx context.Context, publicID string) error {
	if c == nil {
		return errors.New("cloudinary client not initialized")
	}
	if publicID == "" {
		return errors.New("public id is required")
	}

	params := map[string]string{
		"public_id": publicID,
		"timestamp": strconv.FormatInt(c.now().Unix(), 10),
	}
	signature := c.sign(params)

	form := url.Values{}
	for key, value := range params {
		form.Set(key, value)
	}
	form.Set("api_key", c.apiKey)
	form.Set("signature", signature)

	u := fmt.Sprintf("%s/%s/image/destroy", c.endpoint, c.cloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return apiError("destroy", resp)
	}

	var result struct {
		Result string `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode destroy response: %w", err)
	}
	if result.Result != "ok" && result.Result != "not found" {
		return fmt.Errorf("destroy %s: %s", publicID, result.Result)
	}
	return nil
}

// sign implements the Cloudinary request signature: sorted params joined as a
// query string, followed by the API secret, hashed with SHA-1.
func (c *Client) sign(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, key+"="+params[key])
	}

	sum := sha1.Sum([]byte(strings.Join(pairs, "&") + c.apiSecret))
	return hex.EncodeToString(sum[:])
}

func apiError(op string, resp *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	if len(b) > 0 {
		return fmt.Errorf("cloudinary %s failed: %s: %s", op, resp.Status, strings.TrimSpace(string(b)))
	}
	return fmt.Errorf("cloudinary %s failed: %s", op, resp.Status)
}
