package api

import (
	"bufio"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/huajiao-tv/rundeckbot/alias"
	"github.com/huajiao-tv/rundeckbot/command"
	"github.com/huajiao-tv/rundeckbot/config"
	"github.com/huajiao-tv/rundeckbot/logic"
	"github.com/huajiao-tv/rundeckbot/rundeck"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServers(t *testing.T) (front, admin *httptest.Server) {
	conf := config.DefaultSetting()
	conf.Rundeck.URL = "http://127.0.0.1:1"
	conf.Rundeck.Token = "secret"
	config.UpdateConf(conf)

	registry := alias.NewRegistry(alias.NewMemoryStore())
	handler := command.NewHandler(registry, command.Groups{}, func() *rundeck.Client {
		return rundeck.NewClient(config.RemoteConf().Rundeck)
	}, conf.Prefix, conf.RobotName)

	r := gin.New()
	ApiServer{Handler: handler, Registry: registry}.ApiRoutes(r)
	front = httptest.NewServer(r)
	t.Cleanup(front.Close)

	a := gin.New()
	a.Any("/*action", AdminServer{Registry: registry}.HandleRequest)
	admin = httptest.NewServer(a)
	t.Cleanup(admin.Close)
	return front, admin
}

func post(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal("post", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func readLines(t *testing.T, resp *http.Response) []string {
	t.Helper()
	var lines []string
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		var r Response
		if err := json.Unmarshal(scanner.Bytes(), &r); err != nil {
			t.Fatal("invalid line", scanner.Text(), err)
		}
		lines = append(lines, r.Message)
	}
	return lines
}

func TestCommandHandler(t *testing.T) {
	front, _ := newTestServers(t)

	resp := post(t, front.URL+"/v1/command", `{"text":"rundeck alias register deploy -p Ops -j Deploy","user":{"id":"U1","name":"alice"}}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatal("status", resp.StatusCode)
	}
	if lines := readLines(t, resp); len(lines) != 1 || lines[0] != logic.MsgAliasRegistered {
		t.Fatal("register reply", lines)
	}

	resp = post(t, front.URL+"/v1/command", `{"text":"rundeck run deploy","user":{"id":"U1","name":"alice"}}`)
	if lines := readLines(t, resp); len(lines) != 1 || lines[0] != logic.MsgRunUnauthorized {
		t.Fatal("run reply", lines)
	}
}

func TestCommandHandlerBadRequest(t *testing.T) {
	front, _ := newTestServers(t)
	if resp := post(t, front.URL+"/v1/command", `{"text":"  "}`); resp.StatusCode != http.StatusBadRequest {
		t.Fatal("empty text", resp.StatusCode)
	}
	if resp := post(t, front.URL+"/v1/command", `not json`); resp.StatusCode != http.StatusBadRequest {
		t.Fatal("bad json", resp.StatusCode)
	}
}

func TestAliasHandlers(t *testing.T) {
	front, _ := newTestServers(t)

	if resp := post(t, front.URL+"/v1/aliases", `{"id":"deploy","project":"Ops"}`); resp.StatusCode != http.StatusBadRequest {
		t.Fatal("incomplete alias", resp.StatusCode)
	}
	if resp := post(t, front.URL+"/v1/aliases", `{"id":"deploy","project":"Ops","job":"Deploy"}`); resp.StatusCode != http.StatusOK {
		t.Fatal("create", resp.StatusCode)
	}
	if resp := post(t, front.URL+"/v1/aliases", `{"id":"deploy","project":"Ops","job":"Other"}`); resp.StatusCode != http.StatusConflict {
		t.Fatal("create twice", resp.StatusCode)
	}

	resp, err := http.Get(front.URL + "/v1/aliases/deploy")
	if err != nil {
		t.Fatal("get", err)
	}
	defer resp.Body.Close()
	var got struct {
		Data logic.Alias `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatal("decode", err)
	}
	if got.Data.Project != "Ops" || got.Data.Job != "Deploy" {
		t.Fatal("alias", got.Data)
	}

	req, _ := http.NewRequest(http.MethodDelete, front.URL+"/v1/aliases/deploy", nil)
	del, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal("delete", err)
	}
	del.Body.Close()
	if del.StatusCode != http.StatusOK {
		t.Fatal("delete status", del.StatusCode)
	}

	missing, err := http.Get(front.URL + "/v1/aliases/deploy")
	if err != nil {
		t.Fatal("get", err)
	}
	missing.Body.Close()
	if missing.StatusCode != http.StatusNotFound {
		t.Fatal("deleted alias", missing.StatusCode)
	}
}

func TestAdminServer(t *testing.T) {
	front, admin := newTestServers(t)
	post(t, front.URL+"/v1/aliases", `{"id":"deploy","project":"Ops","job":"Deploy"}`)

	for path, want := range map[string]int{
		"/health":  http.StatusOK,
		"/aliases": http.StatusOK,
		"/config":  http.StatusOK,
		"/leader":  http.StatusNotFound,
	} {
		resp, err := http.Get(admin.URL + path)
		if err != nil {
			t.Fatal(path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != want {
			t.Fatal(path, resp.StatusCode)
		}
	}

	resp, err := http.Get(admin.URL + "/config")
	if err != nil {
		t.Fatal("config", err)
	}
	defer resp.Body.Close()
	var got struct {
		Data config.Setting `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatal("decode", err)
	}
	if got.Data.Rundeck.Token != "******" || got.Data.Rundeck.URL != "http://127.0.0.1:1" {
		t.Fatal("config should hide the token", got.Data.Rundeck)
	}
	if config.RemoteConf().Rundeck.Token != "secret" {
		t.Fatal("active config must not change")
	}
}
