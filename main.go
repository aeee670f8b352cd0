package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"companion-ai-server/src/configs"
	"companion-ai-server/src/core/channel"
	"companion-ai-server/src/core/chat"
	"companion-ai-server/src/core/media"
	"companion-ai-server/src/core/providers/tts"
	_ "companion-ai-server/src/core/providers/tts/edge"
	_ "companion-ai-server/src/core/providers/tts/minimax"
	"companion-ai-server/src/core/storage"
	wstransport "companion-ai-server/src/core/transport/websocket"
	"companion-ai-server/src/core/utils"
	"companion-ai-server/src/httpsvr"
	"companion-ai-server/src/models"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "服务启动失败: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// .env不存在时忽略，环境变量可以从外部注入
	godotenv.Load()

	config, _, err := configs.LoadConfig()
	if err != nil {
		return fmt.Errorf("加载配置失败: %v", err)
	}

	logger, err := utils.NewLogger(config.Log.LogDir, config.Log.LogFile, config.Log.LogLevel)
	if err != nil {
		return fmt.Errorf("初始化日志失败: %v", err)
	}
	defer logger.Close()

	ttl := time.Duration(config.Storage.CacheTTL) * time.Second
	configStore := storage.NewConfigStore(config.Storage.DataDir, ttl, logger)
	roleStore := storage.NewRoleStore(config.Storage.DataDir, ttl, logger)

	temp, err := media.NewTempStore(filepath.Join(config.Storage.PublicDir, "tmp"), "/tmp", logger)
	if err != nil {
		return err
	}

	driver, err := tts.NewDriver(configStore.Get(), logger)
	if err != nil {
		return fmt.Errorf("初始化语音合成驱动失败: %v", err)
	}

	hub := wstransport.NewHub(logger)
	transcript := chat.NewTranscript()
	transcript.OnAppend = hub.PushChatLog

	speaker := chat.NewCharacterSpeaker(driver, temp, hub, logger)
	orchestrator := chat.NewOrchestrator(hub, hub, speaker, transcript, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	handlers := channel.Handlers{
		OnUserMessage: func(cfg *models.GlobalConfig, userName, content, emote string) {
			orchestrator.HandleUserMessage(ctx, mergedConfig(configStore, cfg), userName, content, emote)
		},
		OnBehaviorAction: func(content, emote string) {
			orchestrator.HandleBehaviorAction(content, emote)
		},
		OnGuestMessage: func(cfg *models.GlobalConfig, userName, content, emote, action string) {
			orchestrator.HandleDanmakuMessage(ctx, mergedConfig(configStore, cfg), userName, content, emote, action)
		},
	}
	hub.SetHandlers(handlers)

	server := httpsvr.NewServer(config, logger, configStore, roleStore, driver, temp, transcript, hub)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return server.Start(gctx)
	})

	if config.Bridge.Enabled {
		session := channel.NewSession(config.BridgeURL(), handlers, logger)
		session.Open(gctx)
		g.Go(func() error {
			<-gctx.Done()
			session.Close()
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		hub.Close()
		return nil
	})

	logger.Info("服务已启动")
	return g.Wait()
}

// mergedConfig 入站帧自带配置时优先使用，否则回落到本地全局配置
func mergedConfig(store *storage.ConfigStore, frameCfg *models.GlobalConfig) *models.GlobalConfig {
	if frameCfg != nil {
		return frameCfg
	}
	return store.Get()
}
