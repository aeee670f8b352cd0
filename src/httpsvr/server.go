package httpsvr

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"

	"companion-ai-server/src/configs"
	"companion-ai-server/src/core/chat"
	"companion-ai-server/src/core/media"
	"companion-ai-server/src/core/providers/tts"
	"companion-ai-server/src/core/storage"
	wstransport "companion-ai-server/src/core/transport/websocket"
	"companion-ai-server/src/core/utils"
	"companion-ai-server/src/httpsvr/assets"
	"companion-ai-server/src/httpsvr/chatbot"
	chatapi "companion-ai-server/src/httpsvr/chatpage"
	"companion-ai-server/src/httpsvr/speech"

	"github.com/gin-gonic/gin"
)

// Server HTTP服务
type Server struct {
	config *configs.Config
	logger *utils.Logger
	server *http.Server

	configStore *storage.ConfigStore
	roleStore   *storage.RoleStore
	driver      *tts.Driver
	temp        *media.TempStore
	transcript  *chat.Transcript
	hub         *wstransport.Hub
}

// NewServer 创建HTTP服务
func NewServer(
	config *configs.Config,
	logger *utils.Logger,
	configStore *storage.ConfigStore,
	roleStore *storage.RoleStore,
	driver *tts.Driver,
	temp *media.TempStore,
	transcript *chat.Transcript,
	hub *wstransport.Hub,
) *Server {
	return &Server{
		config:      config,
		logger:      logger,
		configStore: configStore,
		roleStore:   roleStore,
		driver:      driver,
		temp:        temp,
		transcript:  transcript,
		hub:         hub,
	}
}

// Start 启动HTTP服务，阻塞直到服务退出
func (s *Server) Start(ctx context.Context) error {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.MaxMultipartMemory = 64 << 20

	// 路由按方法绑定，方法不匹配时回405而不是404
	engine.HandleMethodNotAllowed = true
	engine.NoMethod(func(c *gin.Context) {
		utils.LegacyError(c, http.StatusMethodNotAllowed, "method not allowed")
	})

	// 静态资源与临时音频
	publicDir := s.config.Storage.PublicDir
	engine.Static("/assets", filepath.Join(publicDir, "assets"))
	engine.Static("/tmp", filepath.Join(publicDir, "tmp"))

	// 展示端WebSocket入口
	engine.GET("/ws", s.hub.HandleConnection)

	apiGroup := engine.Group("/api/v1")

	chatbot.NewConfigHandler(s.configStore, s.logger).RegisterRoutes(apiGroup)
	chatbot.NewRoleHandler(s.roleStore, s.logger).RegisterRoutes(apiGroup)
	assets.NewHandler(publicDir, s.logger).RegisterRoutes(apiGroup)
	chatapi.NewHandler(s.transcript, s.logger).RegisterRoutes(apiGroup)

	speechHandler := speech.NewHandler(s.configStore, s.driver, s.temp, s.logger)
	speechHandler.RegisterRoutes(apiGroup)
	if err := speechHandler.StartCleanup(); err != nil {
		return fmt.Errorf("启动临时音频清理任务失败: %v", err)
	}
	defer speechHandler.StopCleanup()

	addr := fmt.Sprintf("%s:%d", s.config.Web.IP, s.config.Web.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: engine,
	}

	s.logger.Info("启动HTTP服务 http://%s", addr)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("HTTP服务启动失败: %v", err)
	}
	return nil
}

// Stop 停止HTTP服务
func (s *Server) Stop() error {
	if s.server != nil {
		s.logger.Info("停止HTTP服务...")
		return s.server.Close()
	}
	return nil
}
