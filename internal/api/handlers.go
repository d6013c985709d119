// SPDX-License-Identifier: MIT

package api

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/ManuGH/siteguard/internal/api/respond"
	"github.com/ManuGH/siteguard/internal/log"
	"github.com/ManuGH/siteguard/internal/validate"
)

const (
	maxJSONBody    = 64 << 10
	maxUploadBytes = 5 << 20
	// multipart framing and form fields on top of the file itself
	uploadOverhead = 64 << 10

	uploadField = "file"
)

// leadLanguages are the site languages a lead can ask to be answered in.
var leadLanguages = []string{"en", "fr"}

var referralCodePattern = regexp.MustCompile(`^[A-Z0-9]{6,12}$`)

var allowedImageTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/webp": true,
	"image/gif":  true,
}

// CSRFTokenResponse is returned by GET /api/csrf-token.
type CSRFTokenResponse struct {
	CSRFToken string `json:"csrfToken"`
}

// AcceptedResponse acknowledges a submitted lead.
type AcceptedResponse struct {
	Status    string `json:"status"`
	RequestID string `json:"requestId,omitempty"`
}

// ContactRequest is the body of POST /api/contact.
type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// B2BLeadRequest is the body of POST /api/leads/b2b.
type B2BLeadRequest struct {
	Company  string `json:"company"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Volume   string `json:"volume"`
	Message  string `json:"message"`
	Language string `json:"language"`
}

// ReferralRequest is the body of POST /api/referrals/validate.
type ReferralRequest struct {
	Code string `json:"code"`
}

// ReferralResponse reports whether a referral code can be used.
type ReferralResponse struct {
	Code  string `json:"code"`
	Valid bool   `json:"valid"`
}

// UploadResponse describes an accepted upload.
type UploadResponse struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Size        int    `json:"size"`
	SHA256      string `json:"sha256"`
}

func (s *Server) handleCSRFToken(w http.ResponseWriter, r *http.Request) {
	token := s.guard.IssueToken(w)
	respond.JSON(w, http.StatusOK, CSRFTokenResponse{CSRFToken: token})
}

func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	var req ContactRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	v := validate.New()
	v.Length("name", req.Name, 1, 100)
	v.Email("email", req.Email)
	v.Length("subject", req.Subject, 0, 200)
	v.Length("message", req.Message, 10, 5000)
	if !v.IsValid() {
		respond.Error(w, http.StatusBadRequest, v.First())
		return
	}

	s.submit(w, r, Lead{
		Kind:    LeadContact,
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.TrimSpace(req.Email),
		Message: strings.TrimSpace(req.Message),
		Extra:   extra("subject", req.Subject),
	})
}

func (s *Server) handleB2BLead(w http.ResponseWriter, r *http.Request) {
	var req B2BLeadRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	v := validate.New()
	v.Length("company", req.Company, 1, 200)
	v.Length("name", req.Name, 1, 100)
	v.Email("email", req.Email)
	v.Length("phone", req.Phone, 0, 40)
	v.Length("volume", req.Volume, 0, 100)
	v.Length("message", req.Message, 0, 5000)
	if req.Language != "" {
		v.OneOf("language", req.Language, leadLanguages)
	}
	if !v.IsValid() {
		respond.Error(w, http.StatusBadRequest, v.First())
		return
	}

	s.submit(w, r, Lead{
		Kind:    LeadB2B,
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.TrimSpace(req.Email),
		Company: strings.TrimSpace(req.Company),
		Phone:   strings.TrimSpace(req.Phone),
		Message: strings.TrimSpace(req.Message),
		Extra:   extra("volume", req.Volume, "language", req.Language),
	})
}

func (s *Server) submit(w http.ResponseWriter, r *http.Request, lead Lead) {
	lead.ReceivedAt = time.Now().UTC()
	lead.RequestID = log.RequestIDFromContext(r.Context())

	if err := s.leads.Submit(r.Context(), lead); err != nil {
		logger := log.WithContext(r.Context(), s.logger)
		logger.Error().
			Err(err).
			Str(log.FieldEvent, "lead.submit_failed").
			Str("kind", lead.Kind).
			Msg("failed to submit lead")
		respond.Error(w, http.StatusBadGateway, "Failed to submit request")
		return
	}

	respond.JSON(w, http.StatusAccepted, AcceptedResponse{
		Status:    "received",
		RequestID: lead.RequestID,
	})
}

func (s *Server) handleValidateReferral(w http.ResponseWriter, r *http.Request) {
	var req ReferralRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	code := strings.ToUpper(strings.TrimSpace(req.Code))
	v := validate.New()
	v.Pattern("code", code, referralCodePattern, "must be 6 to 12 letters or digits")
	if !v.IsValid() {
		respond.Error(w, http.StatusBadRequest, v.First())
		return
	}

	valid := true
	if s.referrals != nil {
		ok, err := s.referrals.Exists(r.Context(), code)
		if err != nil {
			logger := log.WithContext(r.Context(), s.logger)
			logger.Error().Err(err).Str(log.FieldEvent, "referral.lookup_failed").Msg("referral lookup failed")
			respond.Error(w, http.StatusServiceUnavailable, "Referral lookup unavailable")
			return
		}
		valid = ok
	}

	respond.JSON(w, http.StatusOK, ReferralResponse{Code: code, Valid: valid})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes+uploadOverhead)

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Error(w, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		respond.Error(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "Failed to read upload")
		return
	}
	if len(data) > maxUploadBytes {
		respond.Error(w, http.StatusRequestEntityTooLarge, "File too large")
		return
	}
	if len(data) == 0 {
		respond.Error(w, http.StatusBadRequest, "file is empty")
		return
	}

	contentType := http.DetectContentType(data)
	if !allowedImageTypes[contentType] {
		respond.Error(w, http.StatusUnsupportedMediaType, "Unsupported file type")
		return
	}

	sum := sha256.Sum256(data)
	logger := log.WithContext(r.Context(), s.logger)
	logger.Info().
		Str(log.FieldEvent, "upload.accepted").
		Str("content_type", contentType).
		Int(log.FieldBytes, len(data)).
		Msg("upload accepted")

	respond.JSON(w, http.StatusCreated, UploadResponse{
		Filename:    header.Filename,
		ContentType: contentType,
		Size:        len(data),
		SHA256:      hex.EncodeToString(sum[:]),
	})
}

// decodeJSON reads a bounded JSON body into dst, writing a 400/413 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Error(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return false
		}
		respond.Error(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// extra builds a map from key/value pairs, skipping empty values.
func extra(kv ...string) map[string]string {
	var m map[string]string
	for i := 0; i+1 < len(kv); i += 2 {
		v := strings.TrimSpace(kv[i+1])
		if v == "" {
			continue
		}
		if m == nil {
			m = make(map[string]string)
		}
		m[kv[i]] = v
	}
	return m
}
