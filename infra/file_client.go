package infra

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/tnqbao/gau-register-service/config"
	"github.com/tnqbao/gau-register-service/entity"
)

// ObjectTagKey is the reserved tag carried by every file attached to an
// object. The object<->file association is reconstructed from it, there
// is no join table.
const ObjectTagKey = "object"

// FileClient is the file-store collaborator: per-object folders, file
// attachments and share links, backed by an S3-compatible store.
type FileClient struct {
	Client *minio.Client
	Bucket string
}

// FileHandle describes one attached file.
type FileHandle struct {
	Name         string    `json:"name"`
	Path         string    `json:"path"`
	Size         int64     `json:"size"`
	ContentType  string    `json:"contentType,omitempty"`
	LastModified time.Time `json:"lastModified"`
}

func InitFileClient(cfg *config.EnvConfig) *FileClient {
	if cfg.Minio.Endpoint == "" {
		log.Println("No MinIO endpoint configured, file attachments disabled")
		return nil
	}

	client, err := minio.New(cfg.Minio.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Minio.AccessKey, cfg.Minio.SecretKey, ""),
		Secure: cfg.Minio.UseSSL,
	})
	if err != nil {
		log.Fatalf("MinIO connection failed: %v", err)
	}

	ctx := context.Background()
	exists, err := client.BucketExists(ctx, cfg.Minio.Bucket)
	if err != nil {
		log.Fatalf("MinIO bucket check failed: %v", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Minio.Bucket, minio.MakeBucketOptions{}); err != nil {
			log.Fatalf("MinIO bucket creation failed: %v", err)
		}
	}

	log.Println("Connected to MinIO:", cfg.Minio.Endpoint)

	return &FileClient{Client: client, Bucket: cfg.Minio.Bucket}
}

// ObjectFolder is the storage prefix holding an object's attachments.
func (f *FileClient) ObjectFolder(object *entity.ObjectEntity) string {
	return fmt.Sprintf("registers/%d/%d/%s/", object.RegisterID, object.SchemaID, object.UUID)
}

// AddFile stores content under the object's folder, tagged with the
// reserved object tag.
func (f *FileClient) AddFile(ctx context.Context, object *entity.ObjectEntity, name, contentType string, content io.Reader, size int64) (*FileHandle, error) {
	path := f.ObjectFolder(object) + name
	_, err := f.Client.PutObject(ctx, f.Bucket, path, content, size, minio.PutObjectOptions{
		ContentType: contentType,
		UserTags:    map[string]string{ObjectTagKey: object.UUID},
	})
	if err != nil {
		return nil, err
	}
	return &FileHandle{
		Name:         name,
		Path:         path,
		Size:         size,
		ContentType:  contentType,
		LastModified: time.Now(),
	}, nil
}

// ListFiles returns the handles of every file attached to the object.
func (f *FileClient) ListFiles(ctx context.Context, object *entity.ObjectEntity) ([]FileHandle, error) {
	prefix := f.ObjectFolder(object)
	files := []FileHandle{}
	for info := range f.Client.ListObjects(ctx, f.Bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if info.Err != nil {
			return nil, info.Err
		}
		files = append(files, FileHandle{
			Name:         info.Key[len(prefix):],
			Path:         info.Key,
			Size:         info.Size,
			ContentType:  info.ContentType,
			LastModified: info.LastModified,
		})
	}
	return files, nil
}

// DeleteFile removes one attachment from the object's folder.
func (f *FileClient) DeleteFile(ctx context.Context, object *entity.ObjectEntity, name string) error {
	path := f.ObjectFolder(object) + name
	return f.Client.RemoveObject(ctx, f.Bucket, path, minio.RemoveObjectOptions{})
}

// CreateShareLink issues a time-limited download URL for a stored path.
func (f *FileClient) CreateShareLink(ctx context.Context, path string, expiry time.Duration) (string, error) {
	link, err := f.Client.PresignedGetObject(ctx, f.Bucket, path, expiry, url.Values{})
	if err != nil {
		return "", err
	}
	return link.String(), nil
}
