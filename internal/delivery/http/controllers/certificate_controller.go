package controllers

import (
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"campusevents/internal/delivery/http/helpers"
	"campusevents/internal/delivery/http/middleware"
	"campusevents/internal/domain"
)

type CertificateController struct {
	Logger  *slog.Logger
	Service domain.CertificateService
}

func NewCertificateController(logger *slog.Logger, svc domain.CertificateService) *CertificateController {
	return &CertificateController{
		Logger:  logger,
		Service: svc,
	}
}

// Download godoc
// @Summary Download a participation certificate
// @Description Students only. Available once the event has taken place, to registered students.
// @Tags certificates
// @Produce application/pdf
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {file} file "certificate PDF"
// @Failure 400 {object} helpers.APIResponse "error.code: event_not_yet_occurred"
// @Failure 403 {object} helpers.APIResponse "error.code: not_registered"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /certificates/events/{eventID} [get]
func (c *CertificateController) Download(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	studentID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}
	cert, err := c.Service.IssueCertificate(r.Context(), studentID, eventID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err, "")
		return
	}
	w.Header().Set("Content-Type", cert.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": cert.FileName}))
	w.Header().Set("Content-Length", strconv.Itoa(len(cert.Content)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(cert.Content); err != nil {
		c.Logger.WarnContext(r.Context(), "certificate write failed", "event_id", eventID, "err", err)
	}
}
