package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"syscall"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/timmy/viralpost/internal/domain"
)

// ImageRequest is one image generation call.
type ImageRequest struct {
	Model   string
	Prompt  string
	Size    string
	Quality string
	// ResponseFormat is sent only when set; gpt-image models always reply in base64.
	ResponseFormat string
}

// ImageEditRequest edits a reference image.
type ImageEditRequest struct {
	Model     string
	Prompt    string
	Size      string
	Image     []byte
	ImageName string
}

// ImageClient generates and edits images, returning raw image bytes.
type ImageClient interface {
	Generate(ctx context.Context, req *ImageRequest) ([]byte, error)
	Edit(ctx context.Context, req *ImageEditRequest) ([]byte, error)
}

// MaxDownloadBytes caps the body of a downloaded image.
const MaxDownloadBytes = 20 << 20

// ErrBlockedAddress is returned when a download would connect to a
// loopback, private or link-local address.
var ErrBlockedAddress = errors.New("address is not publicly routable")

// ImageClientConfig configures OpenAIImageClient.
type ImageClientConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// OpenAIImageClient talks to OpenAI-compatible /images endpoints.
type OpenAIImageClient struct {
	client   *resty.Client
	download *resty.Client
	baseURL  string
}

// NewOpenAIImageClient creates an image client.
func NewOpenAIImageClient(cfg *ImageClientConfig) *OpenAIImageClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 180 * time.Second
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}

	client := resty.New()
	client.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	client.SetTimeout(timeout)

	return &OpenAIImageClient{
		client:   client,
		download: newDownloadClient(timeout, publicOnlyTransport(), MaxDownloadBytes),
		baseURL:  strings.TrimSuffix(baseURL, "/"),
	}
}

type imageAPIRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n"`
	Size           string `json:"size,omitempty"`
	Quality        string `json:"quality,omitempty"`
	ResponseFormat string `json:"response_format,omitempty"`
}

type imageAPIResponse struct {
	Data []struct {
		B64JSON string `json:"b64_json,omitempty"`
		URL     string `json:"url,omitempty"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Generate posts to /images/generations.
func (c *OpenAIImageClient) Generate(ctx context.Context, req *ImageRequest) ([]byte, error) {
	var resp imageAPIResponse
	httpResp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(imageAPIRequest{
			Model:          req.Model,
			Prompt:         req.Prompt,
			N:              1,
			Size:           req.Size,
			Quality:        req.Quality,
			ResponseFormat: req.ResponseFormat,
		}).
		SetResult(&resp).
		SetError(&resp).
		Post(c.baseURL + "/images/generations")
	if err != nil {
		return nil, &domain.ProviderError{Op: "image generation", Err: err}
	}
	return c.imageBytes(ctx, "image generation", httpResp, &resp)
}

// Edit posts a multipart request to /images/edits.
func (c *OpenAIImageClient) Edit(ctx context.Context, req *ImageEditRequest) ([]byte, error) {
	if len(req.Image) == 0 {
		return nil, &domain.ValidationError{Field: "image", Message: "reference image is empty"}
	}
	name := req.ImageName
	if name == "" {
		name = "image.png"
	}

	var resp imageAPIResponse
	httpResp, err := c.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"model":  req.Model,
			"prompt": req.Prompt,
			"n":      "1",
			"size":   req.Size,
		}).
		SetMultipartField("image", name, "image/png", bytes.NewReader(req.Image)).
		SetResult(&resp).
		SetError(&resp).
		Post(c.baseURL + "/images/edits")
	if err != nil {
		return nil, &domain.ProviderError{Op: "image edit", Err: err}
	}
	return c.imageBytes(ctx, "image edit", httpResp, &resp)
}

func (c *OpenAIImageClient) imageBytes(
	ctx context.Context,
	op string,
	httpResp *resty.Response,
	resp *imageAPIResponse,
) ([]byte, error) {
	if httpResp.IsError() {
		msg := string(httpResp.Body())
		if resp.Error != nil {
			msg = resp.Error.Message
		}
		return nil, &domain.ProviderError{Op: op, Err: fmt.Errorf("HTTP %d: %s", httpResp.StatusCode(), msg)}
	}
	if resp.Error != nil {
		return nil, &domain.ProviderError{Op: op, Err: errors.New(resp.Error.Message)}
	}
	if len(resp.Data) == 0 {
		return nil, &domain.ProviderError{Op: op, Err: errors.New("no image in response")}
	}

	first := resp.Data[0]
	if first.B64JSON != "" {
		data, err := base64.StdEncoding.DecodeString(first.B64JSON)
		if err != nil {
			return nil, &domain.ProviderError{Op: op, Err: fmt.Errorf("failed to decode image: %w", err)}
		}
		return data, nil
	}
	if first.URL != "" {
		return c.Fetch(ctx, first.URL)
	}
	return nil, &domain.ProviderError{Op: op, Err: errors.New("response carries neither b64_json nor url")}
}

// Fetch downloads an http(s) url without the API credentials. Only public
// addresses are dialed, redirects included, and the body is capped at
// MaxDownloadBytes.
func (c *OpenAIImageClient) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, &domain.ProviderError{Op: "image download", Err: fmt.Errorf("unsupported url %q", rawURL)}
	}

	resp, err := c.download.R().SetContext(ctx).Get(u.String())
	if err != nil {
		return nil, &domain.ProviderError{Op: "image download", Err: err}
	}
	if resp.IsError() {
		return nil, &domain.ProviderError{
			Op:  "image download",
			Err: fmt.Errorf("HTTP %d from %s", resp.StatusCode(), u.Host),
		}
	}
	if len(resp.Body()) == 0 {
		return nil, &domain.ProviderError{Op: "image download", Err: errors.New("empty body")}
	}
	return resp.Body(), nil
}

func newDownloadClient(timeout time.Duration, transport http.RoundTripper, limit int) *resty.Client {
	return resty.New().
		SetTimeout(timeout).
		SetTransport(transport).
		SetResponseBodyLimit(limit)
}

// publicOnlyTransport checks the resolved address of every connection, so
// DNS names pointing at internal hosts are refused too.
func publicOnlyTransport() *http.Transport {
	dialer := &net.Dialer{
		Timeout: 30 * time.Second,
		Control: func(network, address string, _ syscall.RawConn) error {
			host, _, err := net.SplitHostPort(address)
			if err != nil {
				return err
			}
			if ip := net.ParseIP(host); ip == nil || !isPublicIP(ip) {
				return fmt.Errorf("%w: %s", ErrBlockedAddress, host)
			}
			return nil
		},
	}
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.Proxy = nil
	t.DialContext = dialer.DialContext
	return t
}

var sharedAddressSpace = &net.IPNet{IP: net.IPv4(100, 64, 0, 0), Mask: net.CIDRMask(10, 32)}

func isPublicIP(ip net.IP) bool {
	switch {
	case ip.IsLoopback(), ip.IsPrivate(), ip.IsUnspecified(),
		ip.IsLinkLocalUnicast(), ip.IsLinkLocalMulticast(),
		ip.IsInterfaceLocalMulticast(), ip.IsMulticast():
		return false
	}
	return !sharedAddressSpace.Contains(ip)
}
