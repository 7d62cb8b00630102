package docstore

import (
	"context"
	"fmt"

	firestoreadmin "cloud.google.com/go/firestore/apiv1/admin"
	firestoreadminpb "cloud.google.com/go/firestore/apiv1/admin/adminpb"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// gcpDatabaseHandleAdapter implements the DatabaseHandle for a Google Cloud Firestore database.
type gcpDatabaseHandleAdapter struct {
	adminClient *firestoreadmin.FirestoreAdminClient
	projectID   string
	databaseID  string
}

func (a *gcpDatabaseHandleAdapter) name() string {
	return fmt.Sprintf("projects/%s/databases/%s", a.projectID, a.databaseID)
}

// Exists checks if the Firestore database exists.
func (a *gcpDatabaseHandleAdapter) Exists(ctx context.Context) (bool, error) {
	_, err := a.adminClient.GetDatabase(ctx, &firestoreadminpb.GetDatabaseRequest{Name: a.name()})
	if err == nil {
		return true, nil
	}
	if status.Code(err) == codes.NotFound {
		return false, nil
	}
	return false, fmt.Errorf("failed to check existence of firestore database '%s': %w", a.databaseID, err)
}

// Create creates the Firestore database and waits for the long-running operation.
func (a *gcpDatabaseHandleAdapter) Create(ctx context.Context, locationID string, dbType string) error {
	typeValue, ok := firestoreadminpb.Database_DatabaseType_value[dbType]
	if !ok {
		return fmt.Errorf("unknown firestore database type '%s'", dbType)
	}
	req := &firestoreadminpb.CreateDatabaseRequest{
		Parent:     fmt.Sprintf("projects/%s", a.projectID),
		DatabaseId: a.databaseID,
		Database: &firestoreadminpb.Database{
			LocationId: locationID,
			Type:       firestoreadminpb.Database_DatabaseType(typeValue),
		},
	}
	op, err := a.adminClient.CreateDatabase(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to initiate firestore database creation: %w", err)
	}
	if _, err = op.Wait(ctx); err != nil {
		return fmt.Errorf("failed while waiting for firestore database creation: %w", err)
	}
	return nil
}

// gcpFirestoreAdminAdapter implements the DatabaseAdminClient for Google Cloud Firestore.
type gcpFirestoreAdminAdapter struct {
	adminClient *firestoreadmin.FirestoreAdminClient
	projectID   string
}

func (a *gcpFirestoreAdminAdapter) Database(dbID string) DatabaseHandle {
	return &gcpDatabaseHandleAdapter{
		adminClient: a.adminClient,
		projectID:   a.projectID,
		databaseID:  dbID,
	}
}

func (a *gcpFirestoreAdminAdapter) Close() error {
	if a.adminClient != nil {
		return a.adminClient.Close()
	}
	return nil
}

// CreateGoogleFirestoreAdminClient creates a client for the Firestore Admin API.
func CreateGoogleFirestoreAdminClient(ctx context.Context, projectID string, opts ...option.ClientOption) (DatabaseAdminClient, error) {
	adminClient, err := firestoreadmin.NewFirestoreAdminClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore admin client: %w", err)
	}
	return &gcpFirestoreAdminAdapter{
		adminClient: adminClient,
		projectID:   projectID,
	}, nil
}
