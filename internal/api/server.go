package api

import (
	"fmt"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/vietanh2810/school-portal/docs"
	v1 "github.com/vietanh2810/school-portal/internal/api/handler/v1"
	"github.com/vietanh2810/school-portal/internal/api/middleware"
	"github.com/vietanh2810/school-portal/internal/chat"
	"github.com/vietanh2810/school-portal/internal/config"
	"github.com/vietanh2810/school-portal/internal/repository"
	"github.com/vietanh2810/school-portal/internal/repository/dao"
	"github.com/vietanh2810/school-portal/internal/service"
	"github.com/vietanh2810/school-portal/internal/storage"
)

const basePath = "/api/v1"

type Server struct {
	Config  *config.AppConfig
	Router  *gin.Engine
	ChatHub *chat.Hub
	Metrics *prometheus.Registry
}

// NewServer wires every handler. chatDAO selects the chat message backend; nil
// stores chat messages in postgres next to everything else.
func NewServer(conf *config.AppConfig, db *gorm.DB, chatDAO repository.ChatMessageDAO) (*Server, error) {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config:  conf,
		Router:  engine,
		Metrics: prometheus.NewRegistry(),
	}
	s.Metrics.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	s.MountMiddlewares()

	userRepo := repository.NewUserRepository(dao.NewUserDAO(db))
	if chatDAO == nil {
		chatDAO = dao.NewChatMessageDAO(db)
	}

	files, err := storage.NewDiskStore(conf.Upload.Dir, conf.Upload.MaxSize)
	if err != nil {
		return nil, fmt.Errorf("storage.NewDiskStore -> %w", err)
	}

	authHandler := s.initAuthHandler(userRepo)
	userHandler := s.initUserHandler(userRepo)
	chatHandler := s.initChatHandler(userRepo, chatDAO)
	assignmentHandler := s.initAssignmentHandler(db, files)
	fileHandler := v1.NewFileHandler(files)
	s.MountHandlers(authHandler, userHandler, chatHandler, assignmentHandler, fileHandler)

	return s, nil
}

func (s *Server) initAuthHandler(repo *repository.UserRepository) *v1.AuthHandler {
	svc := service.NewAuthService(repo)
	handler := v1.NewAuthHandler(s.Config.API, svc)

	return handler
}

func (s *Server) initUserHandler(repo *repository.UserRepository) *v1.UserHandler {
	svc := service.NewUserService(repo)
	handler := v1.NewUserHandler(svc)

	return handler
}

func (s *Server) initChatHandler(userRepo *repository.UserRepository, chatDAO repository.ChatMessageDAO) *v1.ChatHandler {
	repo := repository.NewChatRepository(chatDAO, userRepo)
	svc := service.NewChatService(repo, userRepo, s.Config.Chat.HistoryLimit)

	metrics := chat.NewMetrics(s.Metrics)
	registry := chat.NewRegistry(metrics)
	s.ChatHub = chat.NewHub(svc, registry, metrics, chat.Options{
		SendBufferSize:  s.Config.Chat.SendBufferSize,
		MaxMessageBytes: s.Config.Chat.MaxMessageBytes,
	})
	handler := v1.NewChatHandler(svc, s.ChatHub, registry)

	return handler
}

func (s *Server) initAssignmentHandler(db *gorm.DB, files *storage.DiskStore) *v1.AssignmentHandler {
	repo := repository.NewAssignmentRepository(dao.NewAssignmentDAO(db))
	svc := service.NewAssignmentService(repo, files, basePath+"/files/")
	handler := v1.NewAssignmentHandler(svc, s.Config.Upload.MaxSize)

	return handler
}

func (s *Server) MountMiddlewares() {
	// Logger and Recovery are needed unless we use gin.Default().
	s.Router.Use(gin.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

func (s *Server) MountHandlers(
	authHandler *v1.AuthHandler,
	userHandler *v1.UserHandler,
	chatHandler *v1.ChatHandler,
	assignmentHandler *v1.AssignmentHandler,
	fileHandler *v1.FileHandler,
) {
	authenticator := middleware.NewAuthenticator(s.Config.API.JWTSigningKey)
	wsAuth := authenticator.IdentifyJWT()
	if s.Config.Chat.RequireAuth {
		wsAuth = authenticator.VerifyJWT()
	}

	s.Router.GET("/ws", wsAuth, chatHandler.HandleWebSocket)

	public := s.Router.Group(basePath)
	{
		public.POST("/auth/signup", authHandler.HandleSignup)
		public.POST("/auth/login", authHandler.HandleLogin)
		public.GET("/chat/ws", wsAuth, chatHandler.HandleWebSocket)
	}

	users := s.Router.Group(basePath, authenticator.VerifyJWT())
	{
		users.GET("/auth/user", userHandler.HandleGetCurrentUser)
		users.PUT("/user/profile", userHandler.HandleUpdateProfile)
	}

	assignments := s.Router.Group(basePath, authenticator.VerifyJWT())
	{
		assignments.POST("/assignments", assignmentHandler.HandleSubmit)
		assignments.GET("/assignments", assignmentHandler.HandleList)
		assignments.GET("/assignments/stats", assignmentHandler.HandleStats)
	}

	files := s.Router.Group(basePath, authenticator.VerifyJWT())
	{
		files.GET("/files/:filename", fileHandler.HandleDownload)
	}

	chats := s.Router.Group(basePath, authenticator.VerifyJWT())
	{
		chats.GET("/chat/messages", chatHandler.HandleGetMessages)
		chats.GET("/chat/count", chatHandler.HandleGetCount)
		chats.GET("/chat/online", chatHandler.HandleGetOnline)
	}

	s.Router.GET("/", v1.HandleHealthcheck)
	s.Router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.Metrics, promhttp.HandlerOpts{})))

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "School portal API"
	docs.SwaggerInfo.Description = "Assignments, profiles and the live class chat."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
