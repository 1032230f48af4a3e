package main

import (
	"context"
	"log"
	"os"
	"time"

	"cloud.google.com/go/firestore"
	fbapp "firebase.google.com/go/v4"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"google.golang.org/api/option"

	"recyclex/internal/adapter/api"
	"recyclex/internal/adapter/api/handler"
	apimiddleware "recyclex/internal/adapter/api/middleware"
	"recyclex/internal/adapter/api/router"
	"recyclex/internal/adapter/repository"
	"recyclex/internal/domain/service"
	"recyclex/internal/infrastructure/firebase"
	"recyclex/internal/infrastructure/storage"
	"recyclex/internal/infrastructure/websocket"
	"recyclex/internal/usecase"
	"recyclex/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	var opt option.ClientOption
	if serviceAccountJSON := os.Getenv("FIREBASE_SERVICE_ACCOUNT_JSON"); serviceAccountJSON != "" {
		opt = option.WithCredentialsJSON([]byte(serviceAccountJSON))
	} else {
		serviceAccountPath := os.Getenv("FIREBASE_SERVICE_ACCOUNT_PATH")
		if serviceAccountPath == "" {
			serviceAccountPath = "./service-account.json"
		}
		if _, err := os.Stat(serviceAccountPath); os.IsNotExist(err) {
			log.Fatalf("Service account file does not exist: %s", serviceAccountPath)
		}
		opt = option.WithCredentialsFile(serviceAccountPath)
	}

	firebaseApp, err := fbapp.NewApp(ctx, &fbapp.Config{ProjectID: cfg.FirebaseProject}, opt)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}

	authClient, err := firebaseApp.Auth(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase Auth: %v", err)
	}

	firestoreClient, err := firestore.NewClient(ctx, cfg.FirebaseProject, opt)
	if err != nil {
		log.Fatalf("Failed to create Firestore client: %v", err)
	}
	defer firestoreClient.Close()

	storageClient, err := storage.NewCloudStorageClient(ctx, cfg.StorageBucket, cfg.FirebaseProject, os.Getenv("FIREBASE_SERVICE_ACCOUNT_PATH"))
	if err != nil {
		log.Fatalf("Failed to initialize Cloud Storage: %v", err)
	}
	defer storageClient.Close()

	userRepo := repository.NewFirestoreUserRepository(firestoreClient)
	chatRepo := repository.NewFirestoreChatRepository(firestoreClient)
	walletRepo := repository.NewFirestoreWalletRepository(firestoreClient)
	txnRepo := repository.NewFirestoreTransactionRepository(firestoreClient)
	paymentMethodRepo := repository.NewFirestorePaymentMethodRepository(firestoreClient)
	escrowRepo := repository.NewFirestoreEscrowRepository(firestoreClient)

	paymentGateway := service.NewHTTPPaymentGateway(cfg.PaymentAPIBase, cfg.PaymentSecretKey)

	var translateService service.TranslateService
	if cfg.OpenAIKey != "" {
		translateService = service.NewOpenAITranslateService(cfg.OpenAIKey)
	}

	userUseCase := usecase.NewUserUseCase(userRepo, firebase.NewAuthClient(authClient))
	chatUseCase := usecase.NewChatUseCase(chatRepo, translateService)
	walletUseCase := usecase.NewWalletUseCase(walletRepo, txnRepo, paymentMethodRepo, paymentGateway, cfg.Limits)
	escrowUseCase := usecase.NewEscrowUseCase(escrowRepo, walletRepo)

	hub := websocket.NewHub()
	hub.Start(ctx)
	frameHandler := websocket.NewFrameHandler(hub, chatUseCase, storageClient)

	escrowUseCase.StartExpirySweep(ctx, time.Hour)

	e := echo.New()
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())
	e.Validator = api.NewValidator()

	authMiddleware := apimiddleware.NewAuthMiddleware(authClient)
	adminMiddleware := apimiddleware.NewAdminMiddleware()
	// Deposits and withdrawals hit the payment provider, keep them slow.
	paymentLimiter := apimiddleware.NewRateLimitMiddleware(10, time.Minute)

	router.Setup(
		e,
		authMiddleware,
		adminMiddleware,
		paymentLimiter,
		handler.NewUserHandler(userUseCase),
		handler.NewAdminHandler(userUseCase),
		handler.NewWalletHandler(walletUseCase),
		handler.NewEscrowHandler(escrowUseCase),
		handler.NewChatHandler(chatUseCase),
		handler.NewWebSocketHandler(hub, frameHandler),
		handler.NewHealthHandler(),
	)

	log.Printf("Starting gateway on port %s...", cfg.ServerPort)
	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}
