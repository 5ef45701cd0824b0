package storage

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

// AzureFrameArchiver uploads captured frames to Azure Blob Storage as PNG
// blobs. Archiving is best-effort; the scan loop logs and continues when an
// upload fails.
type AzureFrameArchiver struct {
	client    *azblob.Client
	container string
}

// NewAzureFrameArchiver builds an archiver using shared-key credentials.
func NewAzureFrameArchiver(accountName, accountKey, container string) (*AzureFrameArchiver, error) {
	if container == "" {
		return nil, fmt.Errorf("container name not provided")
	}

	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, err
	}

	client, err := azblob.NewClientWithSharedKeyCredential(
		fmt.Sprintf("https://%s.blob.core.windows.net", accountName),
		credential,
		nil,
	)
	if err != nil {
		return nil, err
	}

	return &AzureFrameArchiver{client: client, container: container}, nil
}

// ArchiveFrame encodes img as PNG and uploads it under the given blob name.
func (a *AzureFrameArchiver) ArchiveFrame(ctx context.Context, name string, img image.Image) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("encoding frame: %w", err)
	}

	_, err := a.client.UploadStream(ctx, a.container, name, &buf, nil)
	if err != nil {
		return fmt.Errorf("uploading frame %s: %w", name, err)
	}
	return nil
}
