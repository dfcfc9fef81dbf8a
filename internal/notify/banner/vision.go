// internal/notify/banner/vision.go
package banner

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	httpclient "github.com/myster33/edlead-impact-sub001/internal/common/http"
	"github.com/myster33/edlead-impact-sub001/internal/common/logger"
)

// ImageInput is one image attached to a composition request.
type ImageInput struct {
	MediaType string
	Data      []byte
}

// VisionResult is the parsed model response. ImageData is nil when the model
// answered with text only.
type VisionResult struct {
	ImageData []byte
	MediaType string
	Text      string
}

// Composer produces a personalised banner image from a template image and an
// applicant photo.
type Composer interface {
	Compose(ctx context.Context, prompt string, images []ImageInput) (*VisionResult, error)
}

// VisionClient calls the hosted vision completion endpoint. Requests are
// HMAC-signed with the shared gateway secret.
//
// The currently configured text-completion models never return image content
// blocks, so Compose usually yields a text-only result and the pipeline
// degrades to no banner. The plumbing is kept in place for when an
// image-capable model is provisioned on the gateway.
type VisionClient struct {
	baseURL   string
	model     string
	maxTokens int
	secret    string
	http      *httpclient.Client
	logger    logger.Logger
}

func NewVisionClient(baseURL, model string, maxTokens int, secret string, client *httpclient.Client, log logger.Logger) *VisionClient {
	return &VisionClient{
		baseURL:   baseURL,
		model:     model,
		maxTokens: maxTokens,
		secret:    secret,
		http:      client,
		logger:    log.WithFields(map[string]interface{}{"component": "vision-client"}),
	}
}

type visionContentBlock struct {
	Type   string             `json:"type"`
	Text   string             `json:"text,omitempty"`
	Source *visionImageSource `json:"source,omitempty"`
}

type visionImageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type visionMessage struct {
	Role    string               `json:"role"`
	Content []visionContentBlock `json:"content"`
}

type visionRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	Messages  []visionMessage `json:"messages"`
}

type visionResponse struct {
	Content []visionContentBlock `json:"content"`
	Error   *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *VisionClient) Compose(ctx context.Context, prompt string, images []ImageInput) (*VisionResult, error) {
	blocks := []visionContentBlock{{Type: "text", Text: prompt}}
	for _, img := range images {
		blocks = append(blocks, visionContentBlock{
			Type: "image",
			Source: &visionImageSource{
				Type:      "base64",
				MediaType: img.MediaType,
				Data:      base64.StdEncoding.EncodeToString(img.Data),
			},
		})
	}

	payload, err := json.Marshal(visionRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages:  []visionMessage{{Role: "user", Content: blocks}},
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling vision request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	c.sign(req, payload)

	resp, err := c.http.DoWithContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("vision request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return nil, fmt.Errorf("reading vision response: %w", err)
	}

	var parsed visionResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decoding vision response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := "vision endpoint returned status " + strconv.Itoa(resp.StatusCode)
		if parsed.Error != nil && parsed.Error.Message != "" {
			msg = parsed.Error.Message
		}
		return nil, fmt.Errorf("%s", msg)
	}

	result := &VisionResult{}
	for _, block := range parsed.Content {
		switch block.Type {
		case "text":
			result.Text += block.Text
		case "image":
			if block.Source == nil {
				continue
			}
			data, err := base64.StdEncoding.DecodeString(block.Source.Data)
			if err != nil {
				return nil, fmt.Errorf("decoding image block: %w", err)
			}
			result.ImageData = data
			result.MediaType = block.Source.MediaType
		}
	}
	return result, nil
}

// sign attaches the gateway HMAC headers: the signature covers the request
// timestamp and the SHA-256 digest of the body.
func (c *VisionClient) sign(req *http.Request, body []byte) {
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	digest := sha256.Sum256(body)

	mac := hmac.New(sha256.New, []byte(c.secret))
	mac.Write([]byte(ts))
	mac.Write([]byte("\n"))
	mac.Write([]byte(hex.EncodeToString(digest[:])))

	req.Header.Set("X-Timestamp", ts)
	req.Header.Set("X-Signature", hex.EncodeToString(mac.Sum(nil)))
}
