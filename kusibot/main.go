package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/didierrc/KusiBot/kusibot/chatbot"
	"github.com/didierrc/KusiBot/kusibot/chatbot/assessment"
	"github.com/didierrc/KusiBot/kusibot/chatbot/conversation"
	"github.com/didierrc/KusiBot/kusibot/chatbot/intent"
	"github.com/didierrc/KusiBot/kusibot/config"
	"github.com/didierrc/KusiBot/kusibot/controllers"
	"github.com/didierrc/KusiBot/kusibot/routes"
	"github.com/didierrc/KusiBot/kusibot/services"
	"github.com/didierrc/KusiBot/kusibot/services/llm"
	"github.com/didierrc/KusiBot/kusibot/sources/psql"
	"github.com/didierrc/KusiBot/kusibot/sources/psql/dao"
	"github.com/didierrc/KusiBot/kusibot/sources/storage"
	"github.com/didierrc/KusiBot/kusibot/utils/logging"
)

func main() {
	logging.InitLogger()
	cfg := config.LoadConfig()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	db, err := psql.NewDatabase(ctx, cfg)
	if err != nil {
		logging.ErrorLogger.Error("database connection error", zap.Error(err))
		os.Exit(1)
	}
	defer db.Close()

	userDAO := dao.NewUserDAO(db.DB)
	conversationDAO := dao.NewConversationDAO(db.DB)
	assessmentDAO := dao.NewAssessmentDAO(db.DB)

	questionnaires, err := assessment.LoadQuestionnaires(cfg.QuestionnairesPath)
	if err != nil {
		logging.ErrorLogger.Error("questionnaire load error", zap.Error(err))
		os.Exit(1)
	}

	llmClient := llm.NewClient(cfg.OllamaBaseURL, cfg.OllamaModel)
	classifier := intent.NewRecognizer(cfg.ClassifierURL)

	engine := assessment.NewEngine(questionnaires, llmClient, assessmentDAO, conversationDAO)
	agent := conversation.NewAgent(llmClient, conversationDAO)
	manager := chatbot.NewManager(classifier, agent, engine, assessmentDAO, cfg.ConfidenceThreshold)

	chatbotSvc := services.NewChatbotService(conversationDAO, manager)
	authSvc := services.NewAuthService(userDAO)

	var exportStorage services.ExportStorage
	if cfg.MinioEndpoint != "" {
		minioClient, err := storage.NewMinIOClient(cfg)
		if err != nil {
			logging.ErrorLogger.Error("minio connection error", zap.Error(err))
			os.Exit(1)
		}
		exportStorage = minioClient
	}
	dashboardSvc := services.NewDashboardService(userDAO, conversationDAO, assessmentDAO, exportStorage)

	authCtrl := controllers.NewAuthController(authSvc, cfg)
	chatbotCtrl := controllers.NewChatbotController(chatbotSvc)
	dashboardCtrl := controllers.NewDashboardController(dashboardSvc)
	healthCtrl := controllers.NewHealthController()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Mount("/health", routes.HealthRoutes(healthCtrl))
	r.Mount("/auth", routes.AuthRoutes(authCtrl))
	r.Mount("/chatbot", routes.ChatbotRoutes(chatbotCtrl, cfg))
	r.Mount("/dashboard", routes.DashboardRoutes(dashboardCtrl, cfg))

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}
	go func() {
		logging.AppLogger.Info("server listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.ErrorLogger.Error("server listen error", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.ErrorLogger.Error("server shutdown error", zap.Error(err))
	}
	logging.AppLogger.Info("server shutdown complete")
}
