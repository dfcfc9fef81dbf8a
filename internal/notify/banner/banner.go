// internal/notify/banner/banner.go

// Package banner implements the approval banner sub-pipeline: fetch the
// programme banner template and the applicant photo, ask the vision model to
// compose a personalised banner, persist the result and hand back a public
// URL. Every failure mode degrades to "no banner" - the pipeline never
// blocks a notification.
package banner

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	httpclient "github.com/myster33/edlead-impact-sub001/internal/common/http"
	"github.com/myster33/edlead-impact-sub001/internal/common/logger"
	"github.com/myster33/edlead-impact-sub001/internal/common/observability"
)

// Pipeline generates one banner per approval event.
type Pipeline struct {
	templateImageURL string
	timeout          time.Duration
	fetcher          *httpclient.Client
	composer         Composer
	uploader         Uploader
	obs              *observability.Observability
	logger           logger.Logger
}

func NewPipeline(templateImageURL string, timeout time.Duration, fetcher *httpclient.Client, composer Composer, uploader Uploader, obs *observability.Observability, log logger.Logger) *Pipeline {
	return &Pipeline{
		templateImageURL: templateImageURL,
		timeout:          timeout,
		fetcher:          fetcher,
		composer:         composer,
		uploader:         uploader,
		obs:              obs,
		logger:           log.WithFields(map[string]interface{}{"component": "banner-pipeline"}),
	}
}

// Generate returns the public URL of the personalised banner, or "" when no
// banner could be produced. It never returns an error.
func (p *Pipeline) Generate(ctx context.Context, name, photoURL string) string {
	if p == nil || p.composer == nil {
		return ""
	}

	start := time.Now()
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	outcome, url := p.generate(ctx, name, photoURL)
	if p.obs != nil {
		p.obs.RecordBanner(ctx, outcome, time.Since(start))
	}
	return url
}

func (p *Pipeline) generate(ctx context.Context, name, photoURL string) (outcome, url string) {
	templateImg, err := p.fetchImage(ctx, p.templateImageURL)
	if err != nil {
		p.logger.Warn("banner template image unavailable, skipping banner", map[string]interface{}{
			"url":   p.templateImageURL,
			"error": err.Error(),
		})
		return "fetch_failed", ""
	}

	images := []ImageInput{*templateImg}
	if photoURL != "" {
		photo, err := p.fetchImage(ctx, photoURL)
		if err != nil {
			// Banner still works from the template alone.
			p.logger.Warn("applicant photo unavailable, composing without it", map[string]interface{}{
				"url":   photoURL,
				"error": err.Error(),
			})
		} else {
			images = append(images, *photo)
		}
	}

	prompt := fmt.Sprintf(
		"Compose a congratulatory EdLead Impact Programme banner for %s using the attached banner template%s. Return the finished banner as an image.",
		name, photoSuffix(len(images)),
	)

	result, err := p.composer.Compose(ctx, prompt, images)
	if err != nil {
		p.logger.Warn("banner composition failed, skipping banner", map[string]interface{}{
			"error": err.Error(),
		})
		return "vision_failed", ""
	}

	if len(result.ImageData) == 0 {
		// Known gap: the provisioned model answers in text only. Degrade to
		// no banner rather than attach prose to an email.
		p.logger.Info("vision model returned no image content", map[string]interface{}{
			"textLength": len(result.Text),
		})
		return "text_only", ""
	}

	mediaType := result.MediaType
	if mediaType == "" {
		mediaType = "image/png"
	}
	key := fmt.Sprintf("banners/%s-%d%s", slugify(name), time.Now().Unix(), extensionFor(mediaType))

	uploaded, err := p.uploader.Upload(ctx, key, mediaType, result.ImageData)
	if err != nil {
		p.logger.Warn("banner upload failed, falling back to inline data URL", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		dataURL := "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(result.ImageData)
		return "data_url", dataURL
	}

	p.logger.Info("banner generated", map[string]interface{}{
		"key": key,
		"url": uploaded,
	})
	return "uploaded", uploaded
}

func (p *Pipeline) fetchImage(ctx context.Context, url string) (*ImageInput, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.fetcher.DoWithContext(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: status %d", url, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("fetching %s: empty body", url)
	}

	mediaType := resp.Header.Get("Content-Type")
	if idx := strings.Index(mediaType, ";"); idx >= 0 {
		mediaType = mediaType[:idx]
	}
	if mediaType == "" || !strings.HasPrefix(mediaType, "image/") {
		mediaType = "image/png"
	}
	return &ImageInput{MediaType: mediaType, Data: data}, nil
}

func photoSuffix(imageCount int) string {
	if imageCount > 1 {
		return " and the applicant's photo"
	}
	return ""
}

func slugify(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

func extensionFor(mediaType string) string {
	switch mediaType {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ".png"
	}
}
