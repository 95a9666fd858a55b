package drive

import (
	"context"
	"fmt"
	"io"
	"os"

	"unyield-service-faceblur/domain/anonymize"
	"unyield-service-faceblur/domain/storage"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// DriveService defines the interface for Google Drive API operations
// This allows mocking the Google Drive API in tests
type DriveService interface {
	ListFiles(ctx context.Context, query string, fields string, orderBy string) ([]*drive.File, error)
	UploadFile(ctx context.Context, meta *drive.File, content io.Reader) (*drive.File, error)
	CreatePermission(ctx context.Context, fileID string, perm *drive.Permission) error
	DeleteFile(ctx context.Context, fileID string) error
	GetQuota(ctx context.Context) (*drive.About, error)
}

// GoogleDriveService is the production implementation using the Google Drive API
type GoogleDriveService struct {
	service *drive.Service
}

// ListFiles lists files matching the query
func (s *GoogleDriveService) ListFiles(ctx context.Context, query string, fields string, orderBy string) ([]*drive.File, error) {
	r, err := s.service.Files.List().
		Q(query).
		Fields(googleapi.Field("files(" + fields + ")")).
		OrderBy(orderBy).
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	return r.Files, nil
}

// UploadFile creates a file with the given metadata and content
func (s *GoogleDriveService) UploadFile(ctx context.Context, meta *drive.File, content io.Reader) (*drive.File, error) {
	return s.service.Files.Create(meta).
		Media(content).
		Fields("id, name, size").
		Context(ctx).
		Do()
}

// CreatePermission adds a permission to a file
func (s *GoogleDriveService) CreatePermission(ctx context.Context, fileID string, perm *drive.Permission) error {
	_, err := s.service.Permissions.Create(fileID, perm).Context(ctx).Do()
	return err
}

// DeleteFile deletes a file permanently (bypasses trash)
func (s *GoogleDriveService) DeleteFile(ctx context.Context, fileID string) error {
	return s.service.Files.Delete(fileID).Context(ctx).Do()
}

// GetQuota returns storage quota information
func (s *GoogleDriveService) GetQuota(ctx context.Context) (*drive.About, error) {
	return s.service.About.Get().Fields("storageQuota").Context(ctx).Do()
}

// Client implements storage.Publisher using the Google Drive API
type Client struct {
	driveService DriveService
	folderID     string
}

// ClientOption is a functional option for configuring Client
type ClientOption func(*Client)

// WithDriveService sets a custom drive service (for testing)
func WithDriveService(svc DriveService) ClientOption {
	return func(c *Client) {
		c.driveService = svc
	}
}

// WithFolderID sets the folder published files are uploaded into
func WithFolderID(folderID string) ClientOption {
	return func(c *Client) {
		c.folderID = folderID
	}
}

// NewClient creates a new Google Drive client using service-account credentials
// If a custom drive service is provided via options, credentials are not read
func NewClient(ctx context.Context, credentialsPath string, opts ...ClientOption) (*Client, error) {
	c := &Client{}

	for _, opt := range opts {
		opt(c)
	}

	if c.driveService == nil {
		svc, err := newGoogleDriveService(ctx, credentialsPath)
		if err != nil {
			return nil, err
		}
		c.driveService = svc
	}

	return c, nil
}

// newGoogleDriveService creates a production Google Drive service
func newGoogleDriveService(ctx context.Context, credentialsPath string) (*GoogleDriveService, error) {
	b, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %w", err)
	}

	config, err := google.JWTConfigFromJSON(b, drive.DriveScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %w", err)
	}

	client := config.Client(ctx)
	srv, err := drive.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to create drive service: %w", err)
	}

	return &GoogleDriveService{service: srv}, nil
}

// FindFileByName finds a file by exact name in the configured folder.
// A missing file is not an error.
func (c *Client) FindFileByName(ctx context.Context, fileName string) (*drive.File, error) {
	query := fmt.Sprintf("'%s' in parents and name = '%s' and trashed = false", c.folderID, fileName)
	files, err := c.driveService.ListFiles(ctx, query, "id, name, size", "name")
	if err != nil {
		return nil, fmt.Errorf("failed to search for file %s: %w", fileName, err)
	}
	if len(files) == 0 {
		return nil, nil
	}
	return files[0], nil
}

// DeletePermanently deletes a file permanently (bypasses trash)
func (c *Client) DeletePermanently(ctx context.Context, fileID string) error {
	if err := c.driveService.DeleteFile(ctx, fileID); err != nil {
		return fmt.Errorf("failed to delete file %s: %w", fileID, err)
	}
	return nil
}

// GetStorageQuota returns the current storage quota information
func (c *Client) GetStorageQuota(ctx context.Context) (*storage.QuotaInfo, error) {
	about, err := c.driveService.GetQuota(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get storage quota: %w", err)
	}

	q := about.StorageQuota
	return &storage.QuotaInfo{
		TotalBytes:     q.Limit,
		UsedBytes:      q.Usage,
		AvailableBytes: q.Limit - q.Usage,
	}, nil
}

// Publish implements storage.Publisher. A same-named prior artifact is
// replaced so re-processing a submission never accumulates duplicates.
func (c *Client) Publish(ctx context.Context, req storage.PublishRequest) (*storage.PublishResult, error) {
	f, err := os.Open(req.LocalPath)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot open %s: %v", anonymize.ErrPublish, req.LocalPath, err)
	}
	defer f.Close()

	existing, err := c.FindFileByName(ctx, req.FileName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", anonymize.ErrPublish, err)
	}
	if existing != nil {
		if err := c.DeletePermanently(ctx, existing.Id); err != nil {
			return nil, fmt.Errorf("%w: %v", anonymize.ErrPublish, err)
		}
	}

	meta := &drive.File{
		Name:     req.FileName,
		MimeType: req.MimeType,
		Parents:  []string{c.folderID},
	}

	uploaded, err := c.driveService.UploadFile(ctx, meta, f)
	if err != nil {
		return nil, fmt.Errorf("%w: upload of %s failed: %v", anonymize.ErrPublish, req.FileName, err)
	}

	perm := &drive.Permission{
		Type: "anyone",
		Role: "reader",
	}
	if err := c.driveService.CreatePermission(ctx, uploaded.Id, perm); err != nil {
		return nil, fmt.Errorf("%w: failed to share %s: %v", anonymize.ErrPublish, req.FileName, err)
	}

	return &storage.PublishResult{
		FileID:    uploaded.Id,
		FileName:  uploaded.Name,
		PublicURL: shareableURL(uploaded.Id),
		Size:      uploaded.Size,
	}, nil
}

// shareableURL builds the public link for a shared file
func shareableURL(fileID string) string {
	return fmt.Sprintf("https://drive.google.com/file/d/%s/view", fileID)
}

// Ensure Client implements storage.Publisher
var _ storage.Publisher = (*Client)(nil)
