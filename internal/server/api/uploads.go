package api

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/channelhub/internal/filex"
)

// multipartMemory is how much of a form is kept in memory before spilling.
const multipartMemory = 1 << 20

// parseMultipart limits and parses a multipart body. It writes the error
// response itself and returns false on failure.
func (s *Server) parseMultipart(w http.ResponseWriter, r *http.Request) bool {
	if s.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		if isBodyTooLarge(err) {
			payloadTooLarge(w, "File exceeds maximum upload size")
		} else {
			badRequest(w, "Invalid multipart upload")
		}
		return false
	}
	return true
}

func isBodyTooLarge(err error) bool {
	var tooLarge *http.MaxBytesError
	return errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large")
}

// saveFormFile copies the form file in field to a temp file under the upload
// directory. A missing field yields "" and no error.
func (s *Server) saveFormFile(r *http.Request, field string) (string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", nil
		}
		return "", err
	}
	defer file.Close()

	return filex.CopyToTemp(s.uploadDir, filepath.Ext(header.Filename), file)
}

// removeTemp deletes temp files the media store did not consume.
func removeTemp(paths ...string) {
	for _, p := range paths {
		if p != "" {
			os.Remove(p)
		}
	}
}

func cleanupMultipart(r *http.Request) {
	if r.MultipartForm != nil {
		r.MultipartForm.RemoveAll()
	}
}
