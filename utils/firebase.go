package utils

import (
	"context"
	"fmt"
	"os"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/sharath018/church-notification-backend/config"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// InitFirebase initializes the Firebase Admin SDK and returns an FCM client.
// Credentials come from GOOGLE_APPLICATION_CREDENTIALS, then FCM_CREDENTIALS_PATH,
// then ./serviceAccountKey.json.
func InitFirebase(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*messaging.Client, error) {
	credentialsPath := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")
	if credentialsPath == "" {
		credentialsPath = cfg.FCMCredentialsPath
	}
	if credentialsPath == "" {
		credentialsPath = "./serviceAccountKey.json"
	}

	projectID := os.Getenv("FIREBASE_PROJECT_ID")
	if projectID == "" {
		projectID = cfg.FCMProjectID
	}

	logger.Info("📂 Looking for Firebase credentials",
		zap.String("path", credentialsPath),
		zap.String("project_id", projectID),
	)

	if _, err := os.Stat(credentialsPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("firebase credentials file not found: %s", credentialsPath)
	}
	if projectID == "" {
		return nil, fmt.Errorf("FIREBASE_PROJECT_ID is required for FCM")
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, fmt.Errorf("firebase app initialization failed: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("FCM client initialization failed: %w", err)
	}

	logger.Info("✅ FCM client initialized", zap.String("project_id", projectID))
	return client, nil
}
