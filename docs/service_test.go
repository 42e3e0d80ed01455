package docs_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/biolaureat/learn-client/api"
	"github.com/biolaureat/learn-client/docs"
)

type passAuthorizer struct{}

func (passAuthorizer) Authorized(ctx context.Context, call func(ctx context.Context, accessToken string) error) error {
	return call(ctx, "test-token")
}

type fakeDocsBackend struct {
	uploadCalls int
	uploaded    string
	docs        []api.Document
	deletedID   int
}

func (f *fakeDocsBackend) UploadPDF(ctx context.Context, token, filename string, content io.Reader) (*api.Document, error) {
	f.uploadCalls++
	data, err := io.ReadAll(content)
	if err != nil {
		return nil, err
	}
	f.uploaded = string(data)
	return &api.Document{ID: 1, Filename: filename}, nil
}

func (f *fakeDocsBackend) ListPDFs(ctx context.Context, token string) ([]api.Document, error) {
	return f.docs, nil
}

func (f *fakeDocsBackend) DeletePDF(ctx context.Context, token string, documentID int) error {
	f.deletedID = documentID
	return nil
}

func newTestService(t *testing.T, backend *fakeDocsBackend) *docs.Service {
	t.Helper()
	service, err := docs.NewService(backend, passAuthorizer{})
	require.NoError(t, err)
	return service
}

func TestValidateUpload(t *testing.T) {
	cases := []struct {
		name     string
		filename string
		size     int64
		want     error
	}{
		{"valid pdf", "notes.pdf", 1024, nil},
		{"uppercase extension", "NOTES.PDF", 1024, nil},
		{"at the size limit", "big.pdf", docs.MaxUploadSize, nil},
		{"wrong extension", "notes.docx", 1024, docs.ErrNotPDF},
		{"no extension", "notes", 1024, docs.ErrNotPDF},
		{"empty file", "notes.pdf", 0, docs.ErrEmptyFile},
		{"over the size limit", "huge.pdf", docs.MaxUploadSize + 1, docs.ErrFileTooLarge},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := docs.ValidateUpload(tc.filename, tc.size)
			if tc.want == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestUploadSendsContent(t *testing.T) {
	backend := &fakeDocsBackend{}
	service := newTestService(t, backend)

	doc, err := service.Upload(context.Background(), "notes.pdf", 13, strings.NewReader("%PDF-1.4 fake"))
	require.NoError(t, err)
	require.Equal(t, 1, doc.ID)
	require.Equal(t, "%PDF-1.4 fake", backend.uploaded)
}

func TestInvalidUploadNeverReachesNetwork(t *testing.T) {
	backend := &fakeDocsBackend{}
	service := newTestService(t, backend)

	_, err := service.Upload(context.Background(), "notes.txt", 13, strings.NewReader("plain text"))
	require.ErrorIs(t, err, docs.ErrNotPDF)
	require.Equal(t, 0, backend.uploadCalls)
}

func TestListAndDelete(t *testing.T) {
	backend := &fakeDocsBackend{docs: []api.Document{{ID: 4, Filename: "a.pdf"}}}
	service := newTestService(t, backend)

	listed, err := service.List(context.Background())
	require.NoError(t, err)
	require.Len(t, listed, 1)

	require.NoError(t, service.Delete(context.Background(), 4))
	require.Equal(t, 4, backend.deletedID)
}
