package rundeck

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"
)

func TestHTTPFetcher(t *testing.T) {
	var gotPath string
	var gotQuery url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		data, _ := os.ReadFile(filepath.Join("testdata", "projects.xml"))
		w.Write(data)
	}))
	defer server.Close()

	// 结尾的 / 与 path 开头的 / 合并
	f := NewHTTPFetcher(Config{URL: server.URL + "/", Token: "secret", APIDebug: true})
	query := url.Values{}
	query.Set("max", "3")
	doc, err := f.Fetch(context.Background(), "/api/1/projects", query)
	if err != nil {
		t.Fatal("fetch failed", err)
	}
	if gotPath != "/api/1/projects" {
		t.Fatal("double slash not collapsed", gotPath)
	}
	if gotQuery.Get("authtoken") != "secret" || gotQuery.Get("max") != "3" {
		t.Fatal("query not sent", gotQuery)
	}
	if query.Get("authtoken") != "" {
		t.Fatal("caller query must not be modified")
	}
	if doc.Payload("projects") == nil {
		t.Fatal("document not decoded", doc)
	}
}

func TestHTTPFetcherNotMarkup(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream unavailable"))
	}))
	defer server.Close()

	f := NewHTTPFetcher(Config{URL: server.URL, Token: "secret"})
	if _, err := f.Fetch(context.Background(), "/api/1/projects", nil); err != ErrNotMarkup {
		t.Fatal("expected ErrNotMarkup", err)
	}

	// client 看到的是空结果
	c := NewClientWithFetcher(f)
	if projects := c.Projects(context.Background()); len(projects) != 0 {
		t.Fatal("failed request should yield no projects", projects)
	}
}

func TestHTTPFetcherUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := server.URL
	server.Close()

	c := NewClient(Config{URL: addr, Token: "secret"})
	if info := c.ServerInfo(context.Background()); info != "" {
		t.Fatal("unreachable server should yield no info", info)
	}
}
