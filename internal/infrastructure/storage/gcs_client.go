package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/option"

	"recyclex/pkg/logger"
)

type CloudStorageClient struct {
	client     *storage.Client
	bucketName string
	projectID  string
}

func NewCloudStorageClient(ctx context.Context, bucketName, projectID, credentialsPath string) (*CloudStorageClient, error) {
	var opts []option.ClientOption
	if credentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsPath))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %v", err)
	}

	return &CloudStorageClient{
		client:     client,
		bucketName: bucketName,
		projectID:  projectID,
	}, nil
}

var extensionByType = map[string]string{
	"image/jpeg":      ".jpg",
	"image/jpg":       ".jpg",
	"image/png":       ".png",
	"image/gif":       ".gif",
	"image/webp":      ".webp",
	"application/pdf": ".pdf",
	"audio/webm":      ".webm",
	"audio/mpeg":      ".mp3",
	"audio/ogg":       ".ogg",
}

// UploadChatFile stores a chat attachment under the conversation's folder and
// returns the public URL.
func (c *CloudStorageClient) UploadChatFile(ctx context.Context, file *bytes.Reader, fileName, fileType, conversationID string) (string, error) {
	ext := extensionByType[fileType]
	if ext == "" {
		if e := path.Ext(fileName); e != "" {
			ext = e
		} else {
			ext = ".bin"
		}
	}

	objectName := fmt.Sprintf("chat/%s/%s-%s%s",
		conversationID, uuid.New().String(), time.Now().Format("20060102150405"), ext)

	return c.upload(ctx, file, objectName, fileType, true)
}

// UploadVerificationDocument stores a supplier verification document
// privately.
func (c *CloudStorageClient) UploadVerificationDocument(ctx context.Context, file io.Reader, fileType, userID string) (string, error) {
	ext := extensionByType[fileType]
	if ext == "" {
		ext = ".bin"
	}

	objectName := fmt.Sprintf("private/verification/%s/%s%s", userID, uuid.New().String(), ext)
	return c.upload(ctx, file, objectName, fileType, false)
}

func (c *CloudStorageClient) upload(ctx context.Context, file io.Reader, objectName, fileType string, isPublic bool) (string, error) {
	obj := c.client.Bucket(c.bucketName).Object(objectName)
	wc := obj.NewWriter(ctx)
	wc.ContentType = fileType
	wc.CacheControl = "public, max-age=86400"

	if _, err := io.Copy(wc, file); err != nil {
		return "", fmt.Errorf("failed to copy file to GCS: %v", err)
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("failed to close writer: %v", err)
	}

	if isPublic {
		if err := obj.ACL().Set(ctx, storage.AllUsers, storage.RoleReader); err != nil {
			return "", fmt.Errorf("failed to set ACL: %v", err)
		}
	}

	logger.Debug("Uploaded %s (%s)", objectName, fileType)
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", c.bucketName, objectName), nil
}

func (c *CloudStorageClient) DeleteFile(ctx context.Context, fileURL string) error {
	const prefix = "https://storage.googleapis.com/"
	if !strings.HasPrefix(fileURL, prefix) {
		return fmt.Errorf("invalid GCS URL format")
	}

	parts := strings.SplitN(fileURL[len(prefix):], "/", 2)
	if len(parts) != 2 || parts[0] != c.bucketName {
		return fmt.Errorf("invalid GCS URL format or bucket mismatch")
	}

	obj := c.client.Bucket(c.bucketName).Object(parts[1])
	if err := obj.Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete file: %v", err)
	}

	return nil
}

func (c *CloudStorageClient) Close() error {
	return c.client.Close()
}
