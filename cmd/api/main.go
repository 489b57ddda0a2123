package main

import (
	"context"
	"log"
	"os"

	"cloud.google.com/go/firestore"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"google.golang.org/api/option"

	fbapp "firebase.google.com/go/v4"

	"expertchat/internal/adapter/api"
	"expertchat/internal/adapter/api/handler"
	apimiddleware "expertchat/internal/adapter/api/middleware"
	"expertchat/internal/adapter/api/router"
	"expertchat/internal/adapter/repository"
	"expertchat/internal/infrastructure/firebase"
	"expertchat/internal/infrastructure/websocket"
	"expertchat/internal/usecase"
	"expertchat/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	var opts []option.ClientOption

	// Service account from environment variable (production) or file path
	// (local development); otherwise application default credentials.
	if serviceAccountJSON := os.Getenv("FIREBASE_SERVICE_ACCOUNT_JSON"); serviceAccountJSON != "" {
		log.Printf("Using Firebase service account from environment variable")
		opts = append(opts, option.WithCredentialsJSON([]byte(serviceAccountJSON)))
	} else if serviceAccountPath := os.Getenv("FIREBASE_SERVICE_ACCOUNT_PATH"); serviceAccountPath != "" {
		if _, err := os.Stat(serviceAccountPath); os.IsNotExist(err) {
			log.Fatalf("Service account file does not exist: %s", serviceAccountPath)
		}
		log.Printf("Using Firebase service account from file: %s", serviceAccountPath)
		opts = append(opts, option.WithCredentialsFile(serviceAccountPath))
	}

	firebaseApp, err := fbapp.NewApp(ctx, &fbapp.Config{ProjectID: cfg.FirebaseProject}, opts...)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}

	authClient, err := firebaseApp.Auth(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase Auth: %v", err)
	}

	firestoreClient, err := firestore.NewClient(ctx, cfg.FirebaseProject, opts...)
	if err != nil {
		log.Fatalf("Failed to create Firestore client: %v", err)
	}
	defer firestoreClient.Close()

	userRepo := repository.NewFirestoreUserRepository(firestoreClient)
	messageStore := repository.NewFirestoreMessageStore(firestoreClient)

	firebaseAuthClient := firebase.NewFirebaseAuthClient(authClient)

	wsManager := websocket.NewManager()
	wsManager.Start(ctx)

	authUseCase := usecase.NewAuthUseCase(userRepo, firebaseAuthClient, cfg.GuestTokenSecret, cfg.GuestTokenExpiry)
	chatUseCase := usecase.NewChatUseCase(messageStore, userRepo, wsManager, cfg.GuestMessageLimit)

	e := echo.New()

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.Validator = api.NewValidator()

	authMiddleware := apimiddleware.NewAuthMiddleware(authClient, authUseCase)

	authHandler := handler.NewAuthHandler(authUseCase)
	roomHandler := handler.NewRoomHandler(chatUseCase)
	chatHandler := handler.NewChatHandler(chatUseCase, authUseCase)
	wsHandler := handler.NewWebSocketHandler(wsManager, chatUseCase, authUseCase, authMiddleware)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	router.Setup(e, authHandler, roomHandler, authMiddleware)
	router.SetupChatRouter(e, chatHandler, roomHandler, authMiddleware)
	router.SetupWebSocketRouter(e, wsHandler)

	log.Printf("Starting server on port %s...", cfg.ServerPort)
	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}
