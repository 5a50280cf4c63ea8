package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/sirupsen/logrus"
)

// AzureArtifactStore archives rendered report documents in Azure Blob
// Storage so completed reports survive outside the request database.
type AzureArtifactStore struct {
	client        *azblob.Client
	accountName   string
	containerName string
}

// Ensure AzureArtifactStore implements ArtifactStore
var _ ArtifactStore = (*AzureArtifactStore)(nil)

// NewAzureArtifactStore creates a new Azure Blob artifact store using managed identity
func NewAzureArtifactStore(accountName, containerName string) (*AzureArtifactStore, error) {
	if accountName == "" {
		return nil, fmt.Errorf("storage account name is required")
	}

	credential, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure credential: %w", err)
	}

	serviceURL := fmt.Sprintf("https://%s.blob.core.windows.net/", accountName)
	client, err := azblob.NewClient(serviceURL, credential, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure blob client: %w", err)
	}

	store := &AzureArtifactStore{
		client:        client,
		accountName:   accountName,
		containerName: containerName,
	}

	if err := store.ensureContainer(); err != nil {
		return nil, fmt.Errorf("failed to ensure container exists: %w", err)
	}

	return store, nil
}

func (s *AzureArtifactStore) ensureContainer() error {
	ctx := context.Background()

	_, err := s.client.CreateContainer(ctx, s.containerName, nil)
	if err != nil {
		if !strings.Contains(err.Error(), "ContainerAlreadyExists") {
			return fmt.Errorf("failed to create container: %w", err)
		}
		logrus.Debugf("Container %s already exists", s.containerName)
	} else {
		logrus.Infof("Created container %s", s.containerName)
	}

	return nil
}

// Store uploads a report artifact and returns its blob URL.
func (s *AzureArtifactStore) Store(name string, data []byte) (string, error) {
	ctx := context.Background()

	_, err := s.client.UploadBuffer(ctx, s.containerName, name, data, &azblob.UploadBufferOptions{
		BlockSize:   int64(1024 * 1024),
		Concurrency: 3,
	})

	if err != nil {
		return "", fmt.Errorf("failed to upload artifact %s: %w", name, err)
	}

	url := fmt.Sprintf("https://%s.blob.core.windows.net/%s/%s", s.accountName, s.containerName, name)
	logrus.Infof("Archived report artifact %s", name)
	return url, nil
}

// Retrieve downloads a report artifact.
func (s *AzureArtifactStore) Retrieve(name string) ([]byte, error) {
	ctx := context.Background()

	response, err := s.client.DownloadStream(ctx, s.containerName, name, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to download artifact %s: %w", name, err)
	}
	defer response.Body.Close()

	data, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact content: %w", err)
	}

	return data, nil
}

// List returns artifact names under the given prefix.
func (s *AzureArtifactStore) List(prefix string) ([]string, error) {
	ctx := context.Background()

	var names []string
	pager := s.client.NewListBlobsFlatPager(s.containerName, &azblob.ListBlobsFlatOptions{
		Prefix: &prefix,
	})

	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list artifacts: %w", err)
		}

		for _, blob := range page.Segment.BlobItems {
			if blob.Name != nil {
				names = append(names, *blob.Name)
			}
		}
	}

	return names, nil
}

// Delete removes a report artifact.
func (s *AzureArtifactStore) Delete(name string) error {
	ctx := context.Background()

	_, err := s.client.DeleteBlob(ctx, s.containerName, name, nil)
	if err != nil {
		return fmt.Errorf("failed to delete artifact %s: %w", name, err)
	}

	logrus.Infof("Deleted report artifact %s", name)
	return nil
}
