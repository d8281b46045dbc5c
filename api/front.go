package api

import (
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/huajiao-tv/rundeckbot/alias"
	"github.com/huajiao-tv/rundeckbot/command"
	"github.com/huajiao-tv/rundeckbot/logic"
	"github.com/huajiao-tv/rundeckbot/util"
)

type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// ApiServer 聊天网关调用的入口
type ApiServer struct {
	Handler  *command.Handler
	Registry *alias.Registry
}

func (s ApiServer) Serve(l net.Listener) error {
	router := gin.New()
	s.ApiRoutes(router)
	// run --report 会一直输出到执行结束，不设置写超时
	server := &http.Server{
		ReadTimeout: HttpReadTimeout,
		Handler:     router,
	}
	if err := server.Serve(l); err != nil {
		return err
	}
	return nil
}

func (s ApiServer) ApiRoutes(r *gin.Engine) {
	v1 := r.Group("/v1")
	v1.POST("/command", s.CommandHandler)

	v1.GET("/aliases", s.ListAliasesHandler)
	v1.POST("/aliases", s.CreateAliasHandler)
	aliases := v1.Group("/aliases")
	aliases.GET("/:alias", s.GetAliasHandler)
	aliases.DELETE("/:alias", s.DeleteAliasHandler)
}

// CommandHandler 执行一条聊天命令，每条回复输出一行 json
func (s ApiServer) CommandHandler(c *gin.Context) {
	var req command.Request
	if err := c.BindJSON(&req); err != nil {
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	ctx := c.Request.Context()
	replies := make(chan string, 16)
	go func() {
		defer close(replies)
		s.Handler.Handle(ctx, &req, command.ResponderFunc(func(msg string) {
			select {
			case replies <- msg:
			case <-ctx.Done():
			}
		}))
	}()

	c.Header("Content-Type", "application/x-ndjson")
	c.Status(http.StatusOK)
	c.Stream(func(w io.Writer) bool {
		msg, ok := <-replies
		if !ok {
			return false
		}
		line, _ := json.Marshal(&Response{Message: msg})
		w.Write(append(line, '\n'))
		return true
	})
}

func (s ApiServer) ListAliasesHandler(c *gin.Context) {
	all, err := s.Registry.All(c.Request.Context())
	if err != nil {
		util.Log.Error("[API] list aliases failed", err)
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, &Response{Data: all})
}

func (s ApiServer) GetAliasHandler(c *gin.Context) {
	a, err := s.Registry.Forward(c.Request.Context(), c.Param("alias"))
	if errors.Is(err, alias.ErrAliasNotFound) {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}
	if err != nil {
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, &Response{Data: a})
}

func (s ApiServer) CreateAliasHandler(c *gin.Context) {
	var a logic.Alias
	if err := c.BindJSON(&a); err != nil {
		return
	}
	if a.ID == "" || !a.Valid() {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	util.Log.Trace("[API] create alias request", a)

	err := s.Registry.Register(c.Request.Context(), a.ID, a.Project, a.Job)
	if errors.Is(err, alias.ErrAliasExists) {
		c.JSON(http.StatusConflict, &Response{Code: http.StatusConflict, Message: logic.MsgAliasExists})
		return
	}
	if err != nil {
		util.Log.Error("[API] create alias failed", a.ID, err)
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, &Response{})
}

func (s ApiServer) DeleteAliasHandler(c *gin.Context) {
	id := c.Param("alias")
	util.Log.Trace("[API] delete alias request", id)

	err := s.Registry.Forget(c.Request.Context(), id)
	if errors.Is(err, alias.ErrAliasNotFound) {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}
	if err != nil {
		util.Log.Error("[API] delete alias failed", id, err)
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, &Response{})
}
