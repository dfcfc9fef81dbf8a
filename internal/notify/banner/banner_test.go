// internal/notify/banner/banner_test.go
package banner

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpclient "github.com/myster33/edlead-impact-sub001/internal/common/http"
	"github.com/myster33/edlead-impact-sub001/internal/common/logger"
)

type stubComposer struct {
	result *VisionResult
	err    error
	calls  int
	prompt string
	images []ImageInput
}

func (s *stubComposer) Compose(_ context.Context, prompt string, images []ImageInput) (*VisionResult, error) {
	s.calls++
	s.prompt = prompt
	s.images = images
	return s.result, s.err
}

type stubUploader struct {
	url   string
	err   error
	key   string
	calls int
}

func (s *stubUploader) Upload(_ context.Context, key, _ string, _ []byte) (string, error) {
	s.calls++
	s.key = key
	if s.err != nil {
		return "", s.err
	}
	return s.url, nil
}

func imageServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("fake-png-bytes"))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newPipeline(t *testing.T, templateURL string, composer Composer, uploader Uploader) *Pipeline {
	return NewPipeline(templateURL, 5*time.Second, httpclient.NewClient(5*time.Second), composer, uploader, nil, logger.NewTestLogger(t))
}

func TestGenerate_UploadsComposedBanner(t *testing.T) {
	srv := imageServer(t)
	composer := &stubComposer{result: &VisionResult{ImageData: []byte("banner-bytes"), MediaType: "image/png"}}
	uploader := &stubUploader{url: "https://cdn.edleadimpact.org/banners/thandi-nkosi-1.png"}

	p := newPipeline(t, srv.URL+"/template.png", composer, uploader)
	url := p.Generate(context.Background(), "Thandi Nkosi", srv.URL+"/photo.jpg")

	assert.Equal(t, "https://cdn.edleadimpact.org/banners/thandi-nkosi-1.png", url)
	assert.Equal(t, 1, composer.calls)
	assert.Len(t, composer.images, 2, "template image and photo")
	assert.Contains(t, composer.prompt, "Thandi Nkosi")
	assert.True(t, strings.HasPrefix(uploader.key, "banners/thandi-nkosi-"))
}

func TestGenerate_TemplateImage404ReturnsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	composer := &stubComposer{result: &VisionResult{ImageData: []byte("x")}}
	p := newPipeline(t, srv.URL+"/missing.png", composer, &stubUploader{})

	url := p.Generate(context.Background(), "Thandi Nkosi", "")

	assert.Empty(t, url)
	assert.Zero(t, composer.calls, "composition must not run without a template image")
}

func TestGenerate_TextOnlyResponseReturnsEmpty(t *testing.T) {
	srv := imageServer(t)
	composer := &stubComposer{result: &VisionResult{Text: "I can describe the banner but cannot draw it."}}
	uploader := &stubUploader{url: "https://cdn.example.com/x.png"}

	p := newPipeline(t, srv.URL+"/template.png", composer, uploader)
	url := p.Generate(context.Background(), "Thandi Nkosi", "")

	assert.Empty(t, url)
	assert.Zero(t, uploader.calls)
}

func TestGenerate_ComposeErrorReturnsEmpty(t *testing.T) {
	srv := imageServer(t)
	composer := &stubComposer{err: errors.New("model overloaded")}

	p := newPipeline(t, srv.URL+"/template.png", composer, &stubUploader{})
	url := p.Generate(context.Background(), "Thandi Nkosi", "")

	assert.Empty(t, url)
}

func TestGenerate_UploadFailureFallsBackToDataURL(t *testing.T) {
	srv := imageServer(t)
	composer := &stubComposer{result: &VisionResult{ImageData: []byte("banner-bytes"), MediaType: "image/png"}}
	uploader := &stubUploader{err: errors.New("access denied")}

	p := newPipeline(t, srv.URL+"/template.png", composer, uploader)
	url := p.Generate(context.Background(), "Thandi Nkosi", "")

	assert.True(t, strings.HasPrefix(url, "data:image/png;base64,"), "got %q", url)
}

func TestGenerate_MissingPhotoStillComposes(t *testing.T) {
	templateSrv := imageServer(t)
	photoSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer photoSrv.Close()

	composer := &stubComposer{result: &VisionResult{ImageData: []byte("banner-bytes")}}
	uploader := &stubUploader{url: "https://cdn.example.com/banner.png"}

	p := newPipeline(t, templateSrv.URL+"/template.png", composer, uploader)
	url := p.Generate(context.Background(), "Thandi Nkosi", photoSrv.URL+"/gone.jpg")

	assert.NotEmpty(t, url)
	require.Equal(t, 1, composer.calls)
	assert.Len(t, composer.images, 1, "composes from the template alone")
}

func TestGenerate_NilPipelineReturnsEmpty(t *testing.T) {
	var p *Pipeline
	assert.Empty(t, p.Generate(context.Background(), "Thandi Nkosi", ""))
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "thandi-nkosi", slugify("Thandi Nkosi"))
	assert.Equal(t, "sipho-s-story", slugify("Sipho's Story!"))
	assert.Equal(t, "", slugify("---"))
}
