package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/pkg/errors"
)

// Document describes one uploaded PDF.
type Document struct {
	ID         int    `json:"id"`
	Filename   string `json:"filename"`
	UploadedAt string `json:"uploaded_at,omitempty"`
	HasText    bool   `json:"has_text,omitempty"`
}

type uploadResponse struct {
	Msg      string    `json:"msg,omitempty"`
	Document *Document `json:"document"`
}

// UploadPDF sends a PDF as a multipart form. Size and extension checks belong
// to the docs package; this only moves bytes.
func (c *Client) UploadPDF(ctx context.Context, token, filename string, content io.Reader) (*Document, error) {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile("file", filename)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.UploadPDF] create form file")
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, errors.Wrap(err, "[Client.UploadPDF] copy file content")
	}
	if err := form.Close(); err != nil {
		return nil, errors.Wrap(err, "[Client.UploadPDF] finalize form")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/pdf/upload", &buf)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.UploadPDF] build request")
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	c.decorate(req, token)

	var res uploadResponse
	if err := c.send(req, &res); err != nil {
		return nil, err
	}
	return res.Document, nil
}

// ListPDFs returns the caller's uploaded documents.
func (c *Client) ListPDFs(ctx context.Context, token string) ([]Document, error) {
	var docs []Document
	if err := c.do(ctx, http.MethodGet, "/api/pdf/list", nil, token, nil, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// DeletePDF removes an uploaded document.
func (c *Client) DeletePDF(ctx context.Context, token string, documentID int) error {
	path := fmt.Sprintf("/api/pdf/%d", documentID)
	return c.do(ctx, http.MethodDelete, path, nil, token, nil, nil)
}
