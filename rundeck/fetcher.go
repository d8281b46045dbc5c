package rundeck

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"github.com/huajiao-tv/rundeckbot/util"
)

const (
	// DefaultTimeout 单次 API 请求超时
	DefaultTimeout = 30 * time.Second
)

var (
	// ErrNotMarkup 返回的不是 XML，一般是登录页或代理错误
	ErrNotMarkup = errors.New("rundeck: API response not XML")

	markupPattern = regexp.MustCompile(`(?s)<.*?>`)
	doubleSlash   = regexp.MustCompile(`([^:])//+`)
)

// Config Rundeck 连接配置
type Config struct {
	// URL 服务地址，例如 https://rundeck.example.org
	URL string `json:"url" toml:"url" yaml:"url"`
	// Token API token，以 authtoken 参数传递
	Token string `json:"token" toml:"token" yaml:"token"`
	// APIDebug 打印每次请求与响应
	APIDebug bool `json:"api_debug" toml:"api_debug" yaml:"api_debug"`
	// Timeout 单次请求超时，0 时使用 DefaultTimeout
	Timeout time.Duration `json:"timeout" toml:"timeout" yaml:"timeout"`
}

// Fetcher 发送 GET 请求并解析返回的 XML
type Fetcher interface {
	Fetch(ctx context.Context, path string, query url.Values) (Document, error)
}

// HTTPFetcher 通过 HTTP 访问 Rundeck
type HTTPFetcher struct {
	conf   Config
	client *http.Client
}

// NewHTTPFetcher 新建一个 HTTP Fetcher
func NewHTTPFetcher(conf Config) *HTTPFetcher {
	timeout := conf.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &HTTPFetcher{
		conf:   conf,
		client: &http.Client{Timeout: timeout},
	}
}

// Fetch 请求 path，query 中加入 authtoken
func (f *HTTPFetcher) Fetch(ctx context.Context, path string, query url.Values) (Document, error) {
	uri := doubleSlash.ReplaceAllString(f.conf.URL+path, "$1/")

	params := url.Values{}
	for k, v := range query {
		params[k] = v
	}
	params.Set("authtoken", f.conf.Token)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		util.Log.Error("rundeck", "Request failed", uri, err)
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		util.Log.Error("rundeck", "Read response failed", uri, err)
		return nil, err
	}

	var doc Document
	if markupPattern.Match(body) {
		doc, err = ParseDocument(bytes.NewReader(body))
		if err != nil {
			util.Log.Error("rundeck", "Decode response failed", uri, err)
		}
	} else {
		util.Log.Error("rundeck", "Request failed: API response not XML", uri)
		err = ErrNotMarkup
	}

	if f.conf.APIDebug || err != nil {
		// token 不写日志
		params.Del("authtoken")
		util.Log.Debug("rundeck", "API request: GET", uri+"?"+params.Encode())
		util.Log.Debug("rundeck", fmt.Sprintf("API response: (HTTP %d)", resp.StatusCode), string(body))
		util.Log.Debug("rundeck", fmt.Sprintf("Document: %v", doc))
	}

	if err != nil {
		return nil, err
	}
	return doc, nil
}
