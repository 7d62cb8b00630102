package docstore

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"
)

// Connect validates cfg, opens a Firestore client with the configured credentials and
// returns a Store over it. The Store owns the client; call Close when done.
func Connect(ctx context.Context, cfg *Config, logger zerolog.Logger) (*Store, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	opts, err := cfg.ClientOptions(ctx)
	if err != nil {
		return nil, err
	}
	client, err := newFirestoreClient(ctx, cfg, opts)
	if err != nil {
		return nil, err
	}

	logger.Info().Str("project_id", cfg.ResolvedProjectID()).Str("database", cfg.Database.ResolvedID()).
		Bool("emulator", cfg.EmulatorHost != "").Msg("Connected to Firestore.")
	return NewStore(client, logger)
}

// ConnectDatabaseManager opens a Firestore Admin API client with the configured credentials.
func ConnectDatabaseManager(ctx context.Context, cfg *Config, logger zerolog.Logger) (*DatabaseManager, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.ResolvedProjectID() == "" {
		return nil, fmt.Errorf("%w: project_id is required for database management", ErrInvalidArgument)
	}
	opts, err := cfg.ClientOptions(ctx)
	if err != nil {
		return nil, err
	}
	admin, err := CreateGoogleFirestoreAdminClient(ctx, cfg.ResolvedProjectID(), opts...)
	if err != nil {
		return nil, err
	}
	return NewDatabaseManager(admin, logger)
}

// newFirestoreClient goes through a Firebase app for the default database, mirroring the
// service account flow of the Firebase Admin SDK; named databases and the emulator use
// the Firestore client directly. Without a known project both paths take it from the
// credentials.
func newFirestoreClient(ctx context.Context, cfg *Config, opts []option.ClientOption) (DocumentStoreClient, error) {
	projectID := cfg.ResolvedProjectID()
	dbID := cfg.Database.ResolvedID()
	if dbID != DefaultDatabaseID || cfg.EmulatorHost != "" {
		if projectID == "" {
			projectID = firestore.DetectProjectID
		}
		return CreateGoogleFirestoreClient(ctx, projectID, dbID, opts...)
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}
	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}
	return NewGoogleFirestoreAdapter(client), nil
}
