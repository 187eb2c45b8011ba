// Upload client for the multipart photo ingest endpoint
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"

	"github.com/kgolebiewski95/Vibello/internal/models"
)

// UploadService implements [Uploader] against POST /api/upload. All staged
// files travel in one request so the backend assigns them a single job.
type UploadService struct {
	api *APIService
}

// NewUploadService creates an upload client on top of the raw API service.
func NewUploadService(api *APIService) *UploadService {
	if api == nil {
		api = NewAPIService("", nil)
	}

	return &UploadService{api: api}
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

// imageContentType resolves the part Content-Type for a photo. The backend
// skips any part whose type is not image/*, so the extension mapping covers
// everything it accepts and sniffing handles the rest.
func imageContentType(name string, data []byte) string {
	ext := strings.ToLower(filepath.Ext(name))

	switch ext {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".bmp":
		return "image/bmp"
	}

	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}

	return http.DetectContentType(data)
}

// progressReader reports whole-percent transmission progress as the request
// body drains. Percent values only grow and repeats are suppressed, so the
// callback sees a non-decreasing sequence ending at 100.
type progressReader struct {
	r          io.Reader
	total      int64
	sent       int64
	lastPct    int
	onProgress func(percent int)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.sent += int64(n)

		pct := int(math.Round(float64(p.sent) / float64(p.total) * 100))
		if pct > 100 {
			pct = 100
		}
		if pct != p.lastPct {
			p.lastPct = pct
			if p.onProgress != nil {
				p.onProgress(pct)
			}
		}
	}

	return n, err
}

// Upload sends the staged files as one multipart request, field name "files"
// repeated per photo. The body is assembled in memory first so the total
// size, and therefore the progress percent, is exact.
func (u *UploadService) Upload(ctx context.Context, files []models.StagedFile, onProgress func(percent int)) (*models.UploadJob, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("no files to upload")
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	for _, f := range files {
		data, err := os.ReadFile(f.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", f.Name, err)
		}

		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename="%s"`, escapeQuotes(f.Name)))
		header.Set("Content-Type", imageContentType(f.Name, data))

		part, err := writer.CreatePart(header)
		if err != nil {
			return nil, fmt.Errorf("failed to create form part: %w", err)
		}
		if _, err := part.Write(data); err != nil {
			return nil, fmt.Errorf("failed to write form part: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize form: %w", err)
	}

	pr := &progressReader{
		r:          bytes.NewReader(body.Bytes()),
		total:      int64(body.Len()),
		onProgress: onProgress,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.api.baseURL+"/api/upload", pr)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.ContentLength = pr.total
	if u.api.headers != nil {
		u.api.headers.Apply(req.Header)
	}

	resp, err := u.api.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, decodeAPIError("upload failed", resp.StatusCode, respBody)
	}

	var job models.UploadJob
	if err := json.Unmarshal(respBody, &job); err != nil {
		return nil, fmt.Errorf("failed to decode upload response: %w", err)
	}

	return &job, nil
}

// Job re-fetches an upload job by ID via GET /api/job/{id}.
func (u *UploadService) Job(ctx context.Context, jobID string) (*models.UploadJob, error) {
	if jobID == "" {
		return nil, fmt.Errorf("missing job ID")
	}

	resp, err := u.api.Get(ctx, "/api/job/"+jobID)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, decodeAPIError("job lookup failed", resp.StatusCode, resp.Body)
	}

	var job models.UploadJob
	if err := json.Unmarshal(resp.Body, &job); err != nil {
		return nil, fmt.Errorf("failed to decode job response: %w", err)
	}

	return &job, nil
}
