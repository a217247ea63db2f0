package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	grpc "google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	authpb "messaging-service/pb/auth"
	userpb "messaging-service/pb/user"

	"messaging-service/internal/attachments"
	"messaging-service/internal/config"
	"messaging-service/internal/db"
	grpcclient "messaging-service/internal/grpc"
	"messaging-service/internal/handlers"
	"messaging-service/internal/middleware"
	"messaging-service/internal/notify"
	"messaging-service/internal/observability"
	"messaging-service/internal/rabbitmq"
	"messaging-service/internal/repositories"
	"messaging-service/internal/telemetry"
)

const serviceName = "messaging-service"

func main() {
	ctx := context.Background()
	cfg := config.Load()

	shutdownTracer, err := telemetry.InitTracer(ctx, serviceName, cfg.Environment, cfg.OTLPEndpoint)
	if err != nil {
		log.Fatalf("failed to init tracing: %v", err)
	}
	defer shutdownTracer(ctx)

	database, err := db.Connect(cfg.DBDSN)
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}

	authConn, err := grpc.NewClient(cfg.AuthGRPCAddr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithStatsHandler(otelgrpc.NewClientHandler()),
	)
	if err != nil {
		log.Fatalf("failed to connect to auth grpc: %v", err)
	}
	defer authConn.Close()

	userConn, err := grpc.NewClient(cfg.UserGRPCAddr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithStatsHandler(otelgrpc.NewClientHandler()),
	)
	if err != nil {
		log.Fatalf("failed to connect to user grpc: %v", err)
	}
	defer userConn.Close()

	authClient := grpcclient.NewAuthClient(authpb.NewAuthServiceClient(authConn))
	userClient := grpcclient.NewUserClient(userpb.NewUserInternalClient(userConn))

	publisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	defer publisher.Close()
	if reason := rabbitmq.PublisherNoopReason(publisher); reason != "" {
		log.Printf("notification publisher mode=noop reason=%q", reason)
	} else {
		log.Printf("notification publisher mode=%s", rabbitmq.PublisherMode(publisher))
	}
	emitter := notify.NewEmitter(publisher, cfg.NotifyRoutingKey, serviceName, cfg.Environment)

	var store attachments.Store
	if cfg.S3Bucket != "" {
		store, err = attachments.NewS3Store(ctx, cfg.S3Region, cfg.S3Bucket)
		if err != nil {
			log.Fatalf("failed to init attachment storage: %v", err)
		}
	} else {
		log.Printf("no attachment bucket configured, storing under %s", cfg.AttachmentDir)
		store = attachments.NewDirStore(cfg.AttachmentDir)
	}

	chatRepo := repositories.NewChatRepo(database)
	messageRepo := repositories.NewMessageRepo(database)
	deletionRepo := repositories.NewDeletionRepo(database)
	settingsRepo := repositories.NewSettingsRepo(database)

	chatHandler := handlers.NewChatHandler(chatRepo, settingsRepo, userClient)
	messageHandler := handlers.NewMessageHandler(chatRepo, messageRepo, deletionRepo, userClient, emitter, store)

	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(observability.HTTPMetricsMiddleware())

	router.GET("/healthz", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authMiddleware := middleware.AuthMiddleware(authClient)

	router.GET("/chats", authMiddleware, chatHandler.ListChats)
	router.POST("/chats/start", authMiddleware, chatHandler.StartChat)
	router.GET("/chats/:chat_id/configuration", authMiddleware, chatHandler.GetConfiguration)
	router.PUT("/chats/:chat_id/configuration", authMiddleware, chatHandler.UpdateConfiguration)
	router.DELETE("/chats/:chat_id", authMiddleware, chatHandler.DeleteChat)

	router.GET("/chats/:chat_id/messages", authMiddleware, messageHandler.GetChatMessages)
	router.POST("/chats/:chat_id/messages", authMiddleware, messageHandler.PostChatMessage)
	router.POST("/chats/:chat_id/messages/attachment", authMiddleware, messageHandler.PostChatAttachment)
	router.DELETE("/chats/:chat_id/messages/:message_id/me", authMiddleware, messageHandler.DeleteMessageForMe)
	router.DELETE("/chats/:chat_id/messages/:message_id/all", authMiddleware, messageHandler.DeleteMessageForAll)

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
