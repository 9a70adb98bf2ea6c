package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/ArthurGuilherms/Projeto-Banese-Labs/internal/api/response"
	"github.com/ArthurGuilherms/Projeto-Banese-Labs/internal/ingest"
)

// Ingester runs the ingestion pipeline over an uploaded file.
type Ingester interface {
	IngestSource(ctx context.Context, name string, src ingest.Source, size int64) (*ingest.Report, error)
}

// NewIngestHandler returns an http.HandlerFunc for POST /api/v1/ingest. The
// file arrives as the multipart field "file"; its extension selects the decoder.
func NewIngestHandler(ing Ingester, maxBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

		file, header, err := r.FormFile("file")
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				response.Error(w, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE",
					"Uploaded file exceeds the size limit", map[string]int64{"max_bytes": maxBytes})
				return
			}
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
				"multipart field \"file\" is required", nil)
			return
		}
		defer file.Close()

		if _, err := ingest.FormatFromPath(header.Filename); err != nil {
			writeError(w, r, err, map[string]string{"file": header.Filename})
			return
		}

		report, err := ing.IngestSource(r.Context(), header.Filename, file, header.Size)
		if err != nil {
			if errors.Is(err, ingest.ErrUnsupportedFormat) {
				writeError(w, r, err, nil)
				return
			}
			if errors.Is(err, ingest.ErrIngestBusy) {
				w.Header().Set("Retry-After", "5")
				response.Error(w, http.StatusServiceUnavailable, "INGEST_BUSY",
					"Another ingestion is in progress", nil)
				return
			}
			var de *ingest.DecodeError
			if errors.As(err, &de) {
				response.Error(w, http.StatusUnprocessableEntity, "INVALID_FILE",
					"The file could not be read", map[string]string{"file": header.Filename})
				return
			}
			writeError(w, r, err, nil)
			return
		}

		if report.Failed == nil {
			report.Failed = []ingest.RowError{}
		}
		response.JSON(w, report)
	}
}
