package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const defaultTokenURI = "https://oauth2.googleapis.com/token"

// ServiceAccount is a Google service account key, as found in the JSON key file.
type ServiceAccount struct {
	Type                    string `json:"type" yaml:"type"`
	ProjectID               string `json:"project_id" yaml:"project_id"`
	PrivateKeyID            string `json:"private_key_id" yaml:"private_key_id"`
	PrivateKey              string `json:"private_key" yaml:"private_key"`
	ClientEmail             string `json:"client_email" yaml:"client_email"`
	ClientID                string `json:"client_id" yaml:"client_id"`
	AuthURI                 string `json:"auth_uri,omitempty" yaml:"auth_uri"`
	TokenURI                string `json:"token_uri" yaml:"token_uri"`
	AuthProviderX509CertURL string `json:"auth_provider_x509_cert_url,omitempty" yaml:"auth_provider_x509_cert_url"`
	ClientX509CertURL       string `json:"client_x509_cert_url,omitempty" yaml:"client_x509_cert_url"`
}

// ReadServiceAccountFile parses a service account JSON key file.
func ReadServiceAccountFile(path string) (*ServiceAccount, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file '%s': %w", path, err)
	}
	sa := &ServiceAccount{}
	if err := json.Unmarshal(data, sa); err != nil {
		return nil, fmt.Errorf("failed to parse credentials file '%s': %w", path, err)
	}
	return sa, nil
}

func (sa *ServiceAccount) validate() error {
	if sa.ClientEmail == "" || sa.PrivateKey == "" {
		return fmt.Errorf("%w: service account credentials need client_email and private_key", ErrInvalidArgument)
	}
	return nil
}

// JSON renders the key in the format Google client libraries accept.
func (sa *ServiceAccount) JSON() ([]byte, error) {
	key := *sa
	if key.Type == "" {
		key.Type = "service_account"
	}
	if key.TokenURI == "" {
		key.TokenURI = defaultTokenURI
	}
	data, err := json.Marshal(key)
	if err != nil {
		return nil, fmt.Errorf("failed to encode service account credentials: %w", err)
	}
	return data, nil
}

// SecretAccessor reads secret versions. *secretmanager.Client satisfies it.
type SecretAccessor interface {
	AccessSecretVersion(ctx context.Context, req *secretmanagerpb.AccessSecretVersionRequest, opts ...gax.CallOption) (*secretmanagerpb.AccessSecretVersionResponse, error)
}

// SecretVersionName expands a short secret reference into a full version name.
// "creds" becomes "projects/<project>/secrets/creds/versions/latest".
func SecretVersionName(projectID, secret string) string {
	name := secret
	if !strings.HasPrefix(name, "projects/") {
		name = fmt.Sprintf("projects/%s/secrets/%s", projectID, name)
	}
	if !strings.Contains(name, "/versions/") {
		name += "/versions/latest"
	}
	return name
}

// ReadSecretCredentials fetches a service account key stored as a secret.
func ReadSecretCredentials(ctx context.Context, accessor SecretAccessor, projectID, secret string) ([]byte, error) {
	name := SecretVersionName(projectID, secret)
	resp, err := accessor.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{Name: name})
	if err != nil {
		return nil, fmt.Errorf("failed to access credentials secret '%s': %w", name, err)
	}
	if resp.GetPayload() == nil || len(resp.GetPayload().GetData()) == 0 {
		return nil, fmt.Errorf("credentials secret '%s' is empty", name)
	}
	return resp.GetPayload().GetData(), nil
}

// ClientOptions turns the configured credential source into Google client options.
// A configured emulator host wins over every credential source.
func (c *Config) ClientOptions(ctx context.Context) ([]option.ClientOption, error) {
	return c.clientOptions(ctx, func(ctx context.Context) (SecretAccessor, func() error, error) {
		client, err := secretmanager.NewClient(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create secretmanager client: %w", err)
		}
		return client, client.Close, nil
	})
}

type secretAccessorFactory func(ctx context.Context) (SecretAccessor, func() error, error)

func (c *Config) clientOptions(ctx context.Context, newAccessor secretAccessorFactory) ([]option.ClientOption, error) {
	switch {
	case c.EmulatorHost != "":
		return []option.ClientOption{
			option.WithEndpoint(c.EmulatorHost),
			option.WithoutAuthentication(),
			option.WithGRPCDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
		}, nil
	case c.CredentialsFile != "":
		return []option.ClientOption{option.WithCredentialsFile(c.CredentialsFile)}, nil
	case c.Credentials != nil:
		data, err := c.Credentials.JSON()
		if err != nil {
			return nil, err
		}
		return []option.ClientOption{option.WithCredentialsJSON(data)}, nil
	case c.CredentialsSecret != "":
		accessor, closeFn, err := newAccessor(ctx)
		if err != nil {
			return nil, err
		}
		defer func() { _ = closeFn() }()
		data, err := ReadSecretCredentials(ctx, accessor, c.ResolvedProjectID(), c.CredentialsSecret)
		if err != nil {
			return nil, err
		}
		return []option.ClientOption{option.WithCredentialsJSON(data)}, nil
	default:
		return nil, nil
	}
}
