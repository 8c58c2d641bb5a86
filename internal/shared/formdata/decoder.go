// Package formdata decodes multipart/form-data request bodies into text
// fields and files staged on disk.
package formdata

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"bookstore-proxy/internal/config"

	"github.com/rs/zerolog/log"
)

const multipartFormData = "multipart/form-data"

var extensionPattern = regexp.MustCompile(`^\.[a-z0-9]{1,10}$`)

// FileHandle is one uploaded file staged in a temporary location. Whoever
// consumes it moves or copies TempPath; Form.Cleanup removes what is left.
type FileHandle struct {
	FieldName    string
	OriginalName string
	Extension    string // lower-cased, with leading dot, "" when unknown
	ContentType  string
	TempPath     string
	Size         int64
}

type Form struct {
	Fields map[string][]string
	Files  map[string][]*FileHandle
}

// Value returns the first value submitted for name, or "".
func (f *Form) Value(name string) string {
	if values := f.Fields[name]; len(values) > 0 {
		return values[0]
	}
	return ""
}

// File returns the first file submitted for name, or nil.
func (f *Form) File(name string) *FileHandle {
	if files := f.Files[name]; len(files) > 0 {
		return files[0]
	}
	return nil
}

// Cleanup removes every staged temp file that still exists.
func (f *Form) Cleanup() {
	for _, files := range f.Files {
		for _, fh := range files {
			if err := os.Remove(fh.TempPath); err != nil && !errors.Is(err, os.ErrNotExist) {
				log.Warn().Err(err).Str("temp_path", fh.TempPath).Msg("Failed to remove staged upload")
			}
		}
	}
}

type Decoder struct {
	stagingDir string
	maxBytes   int64
	maxFiles   int
}

func NewDecoder(cfg config.UploadConfig) *Decoder {
	return &Decoder{
		stagingDir: cfg.StagingDir,
		maxBytes:   cfg.MaxBytes,
		maxFiles:   cfg.MaxFiles,
	}
}

// Decode reads the whole body before returning. Files are written to the
// staging directory; on error nothing staged is left behind.
func (d *Decoder) Decode(ctx context.Context, r *http.Request) (*Form, error) {
	mediaType, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != multipartFormData {
		return nil, newDecodeError(ErrNotMultipart, err)
	}
	boundary := params["boundary"]
	if boundary == "" {
		return nil, newDecodeError(ErrMalformedBody, errors.New("missing boundary"))
	}
	if r.Body == nil {
		return nil, newDecodeError(ErrMalformedBody, errors.New("empty body"))
	}
	if r.ContentLength > d.maxBytes {
		return nil, newDecodeError(ErrBodyTooLarge, nil)
	}

	form := &Form{
		Fields: make(map[string][]string),
		Files:  make(map[string][]*FileHandle),
	}
	mr := multipart.NewReader(&limitedReader{r: r.Body, max: d.maxBytes}, boundary)

	fileCount := 0
	for {
		if err := ctx.Err(); err != nil {
			form.Cleanup()
			return nil, newDecodeError(ErrMalformedBody, err)
		}

		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			form.Cleanup()
			return nil, classify(err)
		}

		name := part.FormName()
		if name == "" {
			part.Close()
			continue
		}

		if part.FileName() == "" {
			value, err := io.ReadAll(part)
			part.Close()
			if err != nil {
				form.Cleanup()
				return nil, classify(err)
			}
			form.Fields[name] = append(form.Fields[name], string(value))
			continue
		}

		fileCount++
		if fileCount > d.maxFiles {
			part.Close()
			form.Cleanup()
			return nil, newDecodeError(ErrTooManyFiles, fmt.Errorf("at most %d allowed", d.maxFiles))
		}

		fh, err := d.stage(name, part)
		part.Close()
		if err != nil {
			form.Cleanup()
			return nil, err
		}
		form.Files[name] = append(form.Files[name], fh)
	}

	return form, nil
}

func (d *Decoder) stage(field string, part *multipart.Part) (*FileHandle, error) {
	ext := strings.ToLower(filepath.Ext(part.FileName()))
	if !extensionPattern.MatchString(ext) {
		ext = ""
	}

	tmp, err := os.CreateTemp(d.stagingDir, "upload-*"+ext)
	if err != nil {
		return nil, fmt.Errorf("create staging file: %w", err)
	}

	size, copyErr := io.Copy(tmp, part)
	closeErr := tmp.Close()
	if copyErr != nil || closeErr != nil {
		os.Remove(tmp.Name())
		if copyErr != nil {
			return nil, classify(copyErr)
		}
		return nil, fmt.Errorf("write staging file: %w", closeErr)
	}

	return &FileHandle{
		FieldName:    field,
		OriginalName: part.FileName(),
		Extension:    ext,
		ContentType:  part.Header.Get("Content-Type"),
		TempPath:     tmp.Name(),
		Size:         size,
	}, nil
}

func classify(err error) error {
	if errors.Is(err, errLimitExceeded) {
		return newDecodeError(ErrBodyTooLarge, nil)
	}
	return newDecodeError(ErrMalformedBody, err)
}

var errLimitExceeded = errors.New("limit exceeded")

// limitedReader fails once more than max bytes have been read, unlike
// io.LimitReader which reports a silent EOF.
type limitedReader struct {
	r    io.Reader
	max  int64
	read int64
}

func (l *limitedReader) Read(p []byte) (int, error) {
	if l.read > l.max {
		return 0, errLimitExceeded
	}
	if room := l.max - l.read + 1; int64(len(p)) > room {
		p = p[:room]
	}
	n, err := l.r.Read(p)
	l.read += int64(n)
	if l.read > l.max {
		return 0, errLimitExceeded
	}
	return n, err
}
