package docstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// DatabaseType is the mode a Firestore database runs in.
type DatabaseType string

const (
	DatabaseTypeNative    DatabaseType = "FIRESTORE_NATIVE"
	DatabaseTypeDatastore DatabaseType = "DATASTORE_MODE"
)

// DatabaseSpec describes the database the document operations run against.
type DatabaseSpec struct {
	DatabaseID string       `yaml:"database_id" env:"FIRESTORE_DATABASE_ID"`
	LocationID string       `yaml:"location_id" env:"FIRESTORE_LOCATION"`
	Type       DatabaseType `yaml:"type" env:"FIRESTORE_DATABASE_TYPE"`
}

// DatabaseManager verifies and creates Firestore databases.
type DatabaseManager struct {
	client DatabaseAdminClient
	logger zerolog.Logger
}

// NewDatabaseManager creates a manager over the given admin client.
func NewDatabaseManager(client DatabaseAdminClient, logger zerolog.Logger) (*DatabaseManager, error) {
	if client == nil {
		return nil, errors.New("database admin client (DatabaseAdminClient interface) cannot be nil")
	}
	return &DatabaseManager{
		client: client,
		logger: logger.With().Str("component", "DatabaseManager").Logger(),
	}, nil
}

// Close releases the admin client.
func (dm *DatabaseManager) Close() error {
	return dm.client.Close()
}

// ResolvedID returns the database ID, or DefaultDatabaseID when none is set.
func (spec DatabaseSpec) ResolvedID() string {
	if spec.DatabaseID == "" {
		return DefaultDatabaseID
	}
	return spec.DatabaseID
}

// EnsureDatabase creates the database if it does not exist yet. It reports whether a
// database was created.
func (dm *DatabaseManager) EnsureDatabase(ctx context.Context, spec DatabaseSpec) (bool, error) {
	dbID := spec.ResolvedID()
	log := dm.logger.With().Str("database", dbID).Logger()
	handle := dm.client.Database(dbID)

	exists, err := handle.Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check existence for database '%s': %w", dbID, err)
	}
	if exists {
		log.Info().Msg("Firestore database already exists, skipping creation.")
		return false, nil
	}

	if spec.LocationID == "" {
		return false, fmt.Errorf("%w: location is required to create database '%s'", ErrInvalidArgument, dbID)
	}
	dbType := spec.Type
	if dbType == "" {
		dbType = DatabaseTypeNative
	}

	log.Info().Str("location", spec.LocationID).Str("type", string(dbType)).Msg("Creating Firestore database...")
	if err := handle.Create(ctx, spec.LocationID, string(dbType)); err != nil {
		return false, fmt.Errorf("failed to create firestore database '%s': %w", dbID, err)
	}
	log.Info().Msg("Firestore database created successfully.")
	return true, nil
}

// Verify checks that every given database exists.
func (dm *DatabaseManager) Verify(ctx context.Context, specs ...DatabaseSpec) error {
	var allErrors []error
	for _, spec := range specs {
		dbID := spec.ResolvedID()
		exists, err := dm.client.Database(dbID).Exists(ctx)
		if err != nil {
			allErrors = append(allErrors, fmt.Errorf("failed to verify firestore database '%s': %w", dbID, err))
			continue
		}
		if !exists {
			allErrors = append(allErrors, fmt.Errorf("firestore database '%s' not found", dbID))
		}
	}

	if len(allErrors) > 0 {
		return fmt.Errorf("firestore verification failed: %w", errors.Join(allErrors...))
	}
	dm.logger.Debug().Int("databases", len(specs)).Msg("Firestore verification completed successfully.")
	return nil
}
