// Package drive implements the remote storage client against the Google
// Drive v3 API: folder resolution, search-before-upload, and media uploads
// for invoice documents.
package drive

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	driveapi "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/rs/zerolog"

	"invoicesync/internal/logger"
)

const (
	folderMIMEType = "application/vnd.google-apps.folder"
	pdfMIMEType    = "application/pdf"
)

// Folder identifies a remote storage folder.
type Folder struct {
	ID   string
	Name string
}

// File identifies an uploaded remote file.
type File struct {
	ID          string
	Name        string
	WebViewLink string
}

// Client is the remote storage contract the sync pipeline consumes.
type Client interface {
	ListFolders(ctx context.Context) ([]Folder, error)
	CreateFolder(ctx context.Context, name string) (Folder, error)
	GetFolderInfo(ctx context.Context, id string) (Folder, error)

	// SearchFile looks for a file by name inside a folder. It returns nil
	// (and no error) when nothing matches.
	SearchFile(ctx context.Context, name, folderID string) (*File, error)

	// UploadFile uploads data as a new PDF file in the folder and returns the
	// created file's identity.
	UploadFile(ctx context.Context, name string, data []byte, folderID string) (File, error)
}

// Service implements Client on the Drive v3 API.
type Service struct {
	svc *driveapi.Service
	log zerolog.Logger
}

// NewService builds a Drive client on top of an authenticated HTTP client
// obtained from the credential provider.
func NewService(ctx context.Context, client *http.Client) (*Service, error) {
	const op = "NewService"

	svc, err := driveapi.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("%s: creating drive service: %w", op, err)
	}

	return &Service{
		svc: svc,
		log: logger.WithComponent("drive"),
	}, nil
}

// ListFolders returns all non-trashed folders visible to the account,
// ordered by name.
func (s *Service) ListFolders(ctx context.Context) ([]Folder, error) {
	const op = "ListFolders"

	query := fmt.Sprintf("mimeType='%s' and trashed=false", folderMIMEType)
	resp, err := s.svc.Files.List().
		Q(query).
		Fields("files(id, name)").
		OrderBy("name").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("%s: listing folders: %w", op, err)
	}

	folders := make([]Folder, 0, len(resp.Files))
	for _, f := range resp.Files {
		folders = append(folders, Folder{ID: f.Id, Name: f.Name})
	}
	return folders, nil
}

// CreateFolder creates a new folder at the Drive root.
func (s *Service) CreateFolder(ctx context.Context, name string) (Folder, error) {
	const op = "CreateFolder"

	created, err := s.svc.Files.Create(&driveapi.File{
		Name:     name,
		MimeType: folderMIMEType,
	}).Fields("id", "name").Context(ctx).Do()
	if err != nil {
		return Folder{}, fmt.Errorf("%s: creating folder %q: %w", op, name, err)
	}

	s.log.Info().
		Str("folder_id", created.Id).
		Str("name", created.Name).
		Msg("Created remote folder")

	return Folder{ID: created.Id, Name: created.Name}, nil
}

// GetFolderInfo fetches a folder's identity by id.
func (s *Service) GetFolderInfo(ctx context.Context, id string) (Folder, error) {
	const op = "GetFolderInfo"

	f, err := s.svc.Files.Get(id).Fields("id", "name").Context(ctx).Do()
	if err != nil {
		return Folder{}, fmt.Errorf("%s: fetching folder %s: %w", op, id, err)
	}
	return Folder{ID: f.Id, Name: f.Name}, nil
}

// SearchFile implements the search-before-upload probe.
func (s *Service) SearchFile(ctx context.Context, name, folderID string) (*File, error) {
	const op = "SearchFile"

	query := fmt.Sprintf("name='%s' and '%s' in parents and trashed=false", name, folderID)
	resp, err := s.svc.Files.List().
		Q(query).
		Spaces("drive").
		Fields("files(id, name, webViewLink)").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("%s: searching for %q: %w", op, name, err)
	}

	if len(resp.Files) == 0 {
		return nil, nil
	}
	f := resp.Files[0]
	return &File{ID: f.Id, Name: f.Name, WebViewLink: f.WebViewLink}, nil
}

// UploadFile uploads data as a PDF into the folder.
func (s *Service) UploadFile(ctx context.Context, name string, data []byte, folderID string) (File, error) {
	const op = "UploadFile"

	created, err := s.svc.Files.Create(&driveapi.File{
		Name:     name,
		Parents:  []string{folderID},
		MimeType: pdfMIMEType,
	}).
		Media(bytes.NewReader(data)).
		Fields("id", "name", "webViewLink").
		Context(ctx).
		Do()
	if err != nil {
		return File{}, fmt.Errorf("%s: uploading %q: %w", op, name, err)
	}

	s.log.Info().
		Str("file_id", created.Id).
		Str("name", name).
		Int("bytes", len(data)).
		Msg("Uploaded invoice document")

	return File{ID: created.Id, Name: created.Name, WebViewLink: created.WebViewLink}, nil
}
