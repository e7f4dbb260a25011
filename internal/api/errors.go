package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/ignite/bee-importer/internal/beefree"
	"github.com/ignite/bee-importer/internal/pkg/httputil"
	"github.com/ignite/bee-importer/internal/service/conversion"
)

// statusForKind maps a conversion failure kind to the HTTP status returned
// to the caller.
func statusForKind(k conversion.Kind) int {
	switch k {
	case conversion.KindValidation:
		return http.StatusBadRequest
	case conversion.Kind(beefree.TypeContent):
		return http.StatusUnprocessableEntity
	case conversion.Kind(beefree.TypeRateLimit):
		return http.StatusTooManyRequests
	case conversion.Kind(beefree.TypeAuthentication), conversion.Kind(beefree.TypeServer):
		return http.StatusBadGateway
	case conversion.Kind(beefree.TypeTimeout):
		return http.StatusGatewayTimeout
	case conversion.KindImportInProgress:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeConversionError renders err as an error envelope. Remote failures
// carry their details; rate limits also set Retry-After.
func (s *Server) writeConversionError(w http.ResponseWriter, err error) {
	var ce *conversion.ConversionError
	if !errors.As(err, &ce) {
		httputil.InternalError(w, err)
		return
	}

	if errors.Is(err, conversion.ErrDuplicateName) {
		httputil.Coded(w, http.StatusConflict, "duplicate_name", conversion.ErrDuplicateName.Error(), nil)
		return
	}

	status := statusForKind(ce.Kind)
	if status == http.StatusInternalServerError {
		s.log.Error("import failed", "kind", ce.Kind, "stage", ce.Stage, "error", ce.Err)
		httputil.Coded(w, status, string(ce.Kind), "internal server error", nil)
		return
	}
	if ce.Kind == conversion.Kind(beefree.TypeAuthentication) {
		// Upstream credentials are ours, not the caller's.
		httputil.Coded(w, status, string(ce.Kind), "template conversion service rejected our credentials", nil)
		return
	}

	var details any
	var remote *conversion.RemoteError
	if errors.As(err, &remote) {
		if len(remote.Failure.Details) > 0 {
			details = remote.Failure.Details
		}
		if remote.Failure.RetryAfterSeconds != nil {
			w.Header().Set("Retry-After", strconv.Itoa(*remote.Failure.RetryAfterSeconds))
		}
	}
	httputil.Coded(w, status, string(ce.Kind), ce.Error(), details)
}
