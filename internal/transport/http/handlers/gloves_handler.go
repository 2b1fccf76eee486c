package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/postalcodeworx/backend/internal/domain/model"
	listingssvc "github.com/postalcodeworx/backend/internal/services/listings"
	"github.com/postalcodeworx/backend/internal/services/vision"
	"github.com/postalcodeworx/backend/internal/transport/http/dto"
	httperrors "github.com/postalcodeworx/backend/internal/transport/http/errors"
)

type GlovesHandler struct {
	service       *listingssvc.Service
	maxUploadSize int64
}

func NewGlovesHandler(service *listingssvc.Service, maxUploadSize int64) *GlovesHandler {
	if maxUploadSize <= 0 {
		maxUploadSize = 5 << 20
	}
	return &GlovesHandler{service: service, maxUploadSize: maxUploadSize}
}

// Analyze runs the image classifier without creating a listing.
func (h *GlovesHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "LISTING_SERVICE_UNAVAILABLE", "listing service is unavailable")
		return
	}

	data, contentType, _, ok := h.readImageFile(w, r)
	if !ok {
		return
	}

	analysis, err := h.service.Analyze(r.Context(), data, contentType)
	if err != nil {
		handleGloveError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, mapAnalysis(analysis))
}

// Upload publishes a found-glove listing from a multipart form.
func (h *GlovesHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "LISTING_SERVICE_UNAVAILABLE", "listing service is unavailable")
		return
	}

	data, contentType, filename, ok := h.readImageFile(w, r)
	if !ok {
		return
	}

	feeAmount := 0.0
	if raw := strings.TrimSpace(r.FormValue("fee_amount")); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeBadRequest(w, "VALIDATION_ERROR", "fee_amount must be a number")
			return
		}
		feeAmount = parsed
	}

	listing, err := h.service.Upload(r.Context(), listingssvc.UploadInput{
		Data:             data,
		ContentType:      contentType,
		OriginalFilename: filename,

		Brand:       formPtr(r, "brand"),
		Color:       r.FormValue("color"),
		Size:        r.FormValue("size"),
		Side:        r.FormValue("side"),
		Material:    formPtr(r, "material"),
		Description: formPtr(r, "description"),

		PostalCode:               r.FormValue("postal_code"),
		FoundDate:                r.FormValue("found_date"),
		FoundLocationDescription: formPtr(r, "found_location_description"),

		FinderEmail:       r.FormValue("finder_email"),
		FinderDisplayName: formPtr(r, "finder_display_name"),

		FeeAmount:   feeAmount,
		FeeCurrency: r.FormValue("fee_currency"),

		AIAnalysis: formPtr(r, "ai_analysis"),
	})
	if err != nil {
		handleGloveError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, mapListing(listing))
}

func (h *GlovesHandler) Search(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "LISTING_SERVICE_UNAVAILABLE", "listing service is unavailable")
		return
	}

	query := r.URL.Query()
	page, _ := strconv.Atoi(query.Get("page"))
	perPage, _ := strconv.Atoi(query.Get("per_page"))

	result, err := h.service.Search(r.Context(), listingssvc.SearchInput{
		PostalCodes: query.Get("postal_codes"),
		Brand:       query.Get("brand"),
		Color:       query.Get("color"),
		Size:        query.Get("size"),
		Side:        query.Get("side"),
		DateFrom:    query.Get("date_from"),
		DateTo:      query.Get("date_to"),
		Page:        page,
		PerPage:     perPage,
	})
	if err != nil {
		handleGloveError(w, err)
		return
	}

	items := make([]dto.GloveListingResponse, 0, len(result.Items))
	for _, listing := range result.Items {
		items = append(items, mapListing(listing))
	}

	httperrors.Write(w, http.StatusOK, dto.GloveSearchResponse{
		Items:      items,
		Total:      result.Total,
		Page:       result.Page,
		PerPage:    result.PerPage,
		TotalPages: result.TotalPages,
	})
}

func (h *GlovesHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "LISTING_SERVICE_UNAVAILABLE", "listing service is unavailable")
		return
	}

	id, ok := listingIDFromRequest(w, r)
	if !ok {
		return
	}

	detail, err := h.service.Get(r.Context(), id, r.URL.Query().Get("requester_email"))
	if err != nil {
		handleGloveError(w, err)
		return
	}

	resp := dto.GloveListingDetail{
		GloveListingResponse: mapListing(detail.Listing),
		ContactUnlocked:      detail.ContactUnlocked,
	}
	if detail.ContactUnlocked {
		email := detail.Listing.FinderEmail
		resp.FinderEmail = &email
	}

	httperrors.Write(w, http.StatusOK, resp)
}

func (h *GlovesHandler) PaymentInfo(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "LISTING_SERVICE_UNAVAILABLE", "listing service is unavailable")
		return
	}

	id, ok := listingIDFromRequest(w, r)
	if !ok {
		return
	}

	info, err := h.service.PaymentInfo(r.Context(), id)
	if err != nil {
		handleGloveError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.PaymentInfoResponse{
		ListingID:   info.ListingID,
		FeeAmount:   info.FeeAmount,
		FeeCurrency: info.FeeCurrency,
		PlatformFee: info.PlatformFee,
		TotalAmount: info.TotalAmount,
	})
}

func (h *GlovesHandler) Contact(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "LISTING_SERVICE_UNAVAILABLE", "listing service is unavailable")
		return
	}

	id, ok := listingIDFromRequest(w, r)
	if !ok {
		return
	}

	var req dto.ContactRequestCreate
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	contact, err := h.service.Contact(r.Context(), listingssvc.ContactInput{
		ListingID:      id,
		RequesterEmail: req.RequesterEmail,
		RequesterName:  req.RequesterName,
		Message:        req.Message,
	})
	if err != nil {
		handleGloveError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.ContactRequestResponse{
		ID:          contact.ID,
		ListingID:   contact.ListingID,
		FeePaid:     contact.FeePaid,
		FeeCurrency: string(contact.FeeCurrency),
		PlatformFee: contact.PlatformFee,
		IsPaid:      contact.IsPaid,
		MessageSent: contact.MessageSent,
		CreatedAt:   contact.CreatedAt,
	})
}

func (h *GlovesHandler) Report(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "LISTING_SERVICE_UNAVAILABLE", "listing service is unavailable")
		return
	}

	id, ok := listingIDFromRequest(w, r)
	if !ok {
		return
	}

	var req dto.GloveReportCreate
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	var reporterIP *string
	if ip := clientIPFromRequest(r); ip != "" {
		reporterIP = &ip
	}

	report, err := h.service.Report(r.Context(), listingssvc.ReportInput{
		ListingID:     id,
		Reason:        req.Reason,
		Description:   req.Description,
		ReporterEmail: req.ReporterEmail,
		ReporterIP:    reporterIP,
	})
	if err != nil {
		handleGloveError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.GloveReportResponse{
		ID:        report.ID,
		ListingID: report.ListingID,
		Reason:    string(report.Reason),
		CreatedAt: report.CreatedAt,
	})
}

func (h *GlovesHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "LISTING_SERVICE_UNAVAILABLE", "listing service is unavailable")
		return
	}

	stats, err := h.service.PostalCodeStats(r.Context())
	if err != nil {
		handleGloveError(w, err)
		return
	}

	items := make([]dto.PostalCodeStatsResponse, 0, len(stats))
	for _, row := range stats {
		items = append(items, dto.PostalCodeStatsResponse{
			PostalCode:    row.PostalCode,
			GlovesFound:   row.GlovesFound,
			GlovesClaimed: row.GlovesClaimed,
			TotalListings: row.TotalListings,
		})
	}

	httperrors.Write(w, http.StatusOK, items)
}

// readImageFile pulls the "file" part out of a multipart request and
// enforces the transport-level size cap.
func (h *GlovesHandler) readImageFile(w http.ResponseWriter, r *http.Request) (data []byte, contentType, filename string, ok bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize+(1<<20))
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid multipart form")
		return nil, "", "", false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "file is required")
		return nil, "", "", false
	}
	defer file.Close()

	data, err = io.ReadAll(file)
	if err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "could not read file")
		return nil, "", "", false
	}

	contentType = header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return data, contentType, header.Filename, true
}

func listingIDFromRequest(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeBadRequest(w, "VALIDATION_ERROR", "listing id must be a positive integer")
		return 0, false
	}
	return id, true
}

func handleGloveError(w http.ResponseWriter, err error) {
	var merr *listingssvc.ModerationError
	switch {
	case errors.As(err, &merr):
		writeBadRequest(w, "MODERATION_FAILED", merr.Error())
	case errors.Is(err, listingssvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", validationMessage(err))
	case errors.Is(err, listingssvc.ErrNotFound):
		writeNotFound(w, "LISTING_NOT_FOUND", "listing not found")
	case errors.Is(err, listingssvc.ErrListingInactive):
		writeBadRequest(w, "LISTING_INACTIVE", "this listing is no longer active")
	default:
		writeInternal(w, "INTERNAL_ERROR", "listing operation failed")
	}
}

func validationMessage(err error) string {
	return strings.TrimPrefix(err.Error(), "validation error: ")
}

func mapAnalysis(analysis vision.Analysis) dto.GloveAnalysisResponse {
	return dto.GloveAnalysisResponse{
		Brand:             analysis.Brand,
		Color:             analysis.Color,
		Size:              string(analysis.Size),
		Side:              string(analysis.Side),
		Material:          analysis.Material,
		SuggestedPriceEUR: analysis.SuggestedPriceEUR,
		Description:       analysis.Description,
		IsValidGlove:      analysis.IsValidGlove,
		ModerationPassed:  analysis.ModerationPassed,
		ModerationNotes:   analysis.ModerationNotes,
	}
}

func mapListing(listing model.Listing) dto.GloveListingResponse {
	return dto.GloveListingResponse{
		ID:                       listing.ID,
		PhotoURL:                 listing.PhotoURL,
		Brand:                    listing.Brand,
		Color:                    listing.Color,
		Size:                     string(listing.Size),
		Side:                     string(listing.Side),
		Material:                 listing.Material,
		Description:              listing.Description,
		PostalCode:               listing.PostalCode,
		FoundDate:                listing.FoundDate,
		FoundLocationDescription: listing.FoundLocationDescription,
		FinderDisplayName:        listing.FinderDisplayName,
		FeeAmount:                listing.FeeAmount,
		FeeCurrency:              string(listing.FeeCurrency),
		Status:                   string(listing.Status),
		ConfidenceScore:          listing.ConfidenceScore,
		CreatedAt:                listing.CreatedAt,
	}
}
