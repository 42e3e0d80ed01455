// Package docs manages uploaded PDF documents: local validation, upload,
// listing and deletion. Quiz generation from a document lives in the quiz
// package.
package docs

import (
	"context"
	"errors"
	"io"
	"strings"

	pkgerrors "github.com/pkg/errors"

	"github.com/biolaureat/learn-client/api"
)

// MaxUploadSize caps uploads at 10 MB, matching the server's limit so the
// rejection happens before any bytes travel.
const MaxUploadSize = 10 * 1024 * 1024

var (
	ErrNotPDF       = errors.New("only PDF files are accepted")
	ErrFileTooLarge = errors.New("file exceeds the 10 MB upload limit")
	ErrEmptyFile    = errors.New("file is empty")
)

// Backend is the slice of the API client the document service needs.
type Backend interface {
	UploadPDF(ctx context.Context, token, filename string, content io.Reader) (*api.Document, error)
	ListPDFs(ctx context.Context, token string) ([]api.Document, error)
	DeletePDF(ctx context.Context, token string, documentID int) error
}

// Authorizer is the session manager's authenticated-request chokepoint.
type Authorizer interface {
	Authorized(ctx context.Context, call func(ctx context.Context, accessToken string) error) error
}

// Service wraps the PDF endpoints behind session authorization.
type Service struct {
	backend  Backend
	sessions Authorizer
}

// NewService creates a document Service.
func NewService(backend Backend, sessions Authorizer) (*Service, error) {
	if backend == nil {
		return nil, pkgerrors.New("[docs.NewService] backend is required")
	}
	if sessions == nil {
		return nil, pkgerrors.New("[docs.NewService] session authorizer is required")
	}
	return &Service{backend: backend, sessions: sessions}, nil
}

// Upload validates filename and size locally, then sends the PDF. size is
// the content length in bytes; callers know it from the file stat.
func (s *Service) Upload(ctx context.Context, filename string, size int64, content io.Reader) (*api.Document, error) {
	if err := ValidateUpload(filename, size); err != nil {
		return nil, err
	}

	var doc *api.Document
	err := s.sessions.Authorized(ctx, func(ctx context.Context, token string) error {
		uploaded, err := s.backend.UploadPDF(ctx, token, filename, io.LimitReader(content, MaxUploadSize))
		doc = uploaded
		return err
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// List returns the caller's uploaded documents.
func (s *Service) List(ctx context.Context) ([]api.Document, error) {
	var docs []api.Document
	err := s.sessions.Authorized(ctx, func(ctx context.Context, token string) error {
		listed, err := s.backend.ListPDFs(ctx, token)
		docs = listed
		return err
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}

// Delete removes an uploaded document.
func (s *Service) Delete(ctx context.Context, documentID int) error {
	return s.sessions.Authorized(ctx, func(ctx context.Context, token string) error {
		return s.backend.DeletePDF(ctx, token, documentID)
	})
}

// ValidateUpload applies the client-side rules: PDF extension and the size
// limit. It never touches the network.
func ValidateUpload(filename string, size int64) error {
	if !strings.HasSuffix(strings.ToLower(filename), ".pdf") {
		return ErrNotPDF
	}
	if size <= 0 {
		return ErrEmptyFile
	}
	if size > MaxUploadSize {
		return ErrFileTooLarge
	}
	return nil
}
