package api

import (
	"net"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/huajiao-tv/rundeckbot/alias"
	"github.com/huajiao-tv/rundeckbot/config"
	"github.com/huajiao-tv/rundeckbot/util"
)

// AdminServer 运维接口，path 映射到同名 Handler 方法，例如 /aliases -> AliasesHandler
type AdminServer struct {
	Registry *alias.Registry
}

func (s AdminServer) Serve(l net.Listener) error {
	router := gin.New()
	router.Any("/*action", s.HandleRequest)
	server := &http.Server{
		ReadTimeout:  HttpReadTimeout,
		WriteTimeout: HttpWriteTimeout,
		Handler:      router,
	}
	if err := server.Serve(l); err != nil {
		return err
	}
	return nil
}

func (s AdminServer) HandleRequest(c *gin.Context) {
	// parse path
	path := strings.Trim(c.Request.URL.Path, "/")
	urlParts := strings.Split(path, "/")
	parts := make([]string, 0, len(urlParts))
	for _, v := range urlParts {
		parts = append(parts, strings.Title(v))
	}
	// get method
	controller := reflect.ValueOf(&s)
	handler := strings.Join(parts, "") + "Handler"
	method := controller.MethodByName(handler)
	if !method.IsValid() {
		goto NotFound
	}
	// call
	method.Call([]reflect.Value{reflect.ValueOf(c)})
	return

NotFound:
	c.AbortWithStatus(http.StatusNotFound)
}

func (s AdminServer) HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, &Response{Message: "ok"})
}

func (s AdminServer) AliasesHandler(c *gin.Context) {
	all, err := s.Registry.All(c.Request.Context())
	if err != nil {
		util.Log.Error("[Admin] list aliases failed", err)
		c.JSON(http.StatusInternalServerError, &Response{Code: http.StatusInternalServerError, Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, &Response{Data: all})
}

// ConfigHandler 当前生效的配置，隐藏 token 和存储密码
func (s AdminServer) ConfigHandler(c *gin.Context) {
	conf := *config.RemoteConf()
	if conf.Rundeck.Token != "" {
		conf.Rundeck.Token = "******"
	}
	if conf.AliasStorage != nil {
		storage := *conf.AliasStorage
		if storage.Auth != "" {
			storage.Auth = "******"
		}
		conf.AliasStorage = &storage
	}
	c.JSON(http.StatusOK, &Response{Data: conf})
}
