package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stockpix/stockpix-backend/api/responses"
	"github.com/stockpix/stockpix-backend/api/validators"
	imagesvc "github.com/stockpix/stockpix-backend/internal/images"
	"github.com/stockpix/stockpix-backend/pkg/enums"
	pkgerrors "github.com/stockpix/stockpix-backend/pkg/errors"
	"github.com/stockpix/stockpix-backend/pkg/listing"
	"github.com/stockpix/stockpix-backend/pkg/logger"
)

// multipartSlack leaves room for the non-file form fields on top of the
// configured upload cap.
const multipartSlack = 1 << 20

// ListImages handles the public image listing with filters, search, sort and
// pagination.
func ListImages(svc imagesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "image service unavailable"))
			return
		}

		page, err := validators.ParseQueryInt(r, "page", listing.DefaultPage, 1, 1_000_000)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		perPage, err := validators.ParseQueryInt(r, "per_page", listing.DefaultPerPage, 1, listing.MaxPerPage)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rawOrder, err := validators.ParseQueryOneOf(r, "sort_order", "", string(listing.SortAsc), string(listing.SortDesc))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sortOrder, _ := listing.ParseSortOrder(rawOrder)

		input := imagesvc.ListImagesInput{
			Search:    validators.SanitizeString(r.URL.Query().Get("search"), listing.MaxSearchLen),
			SortBy:    strings.TrimSpace(r.URL.Query().Get("sort_by")),
			SortOrder: sortOrder,
			Page:      page,
			PerPage:   perPage,
		}

		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseImageStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
				return
			}
			input.Status = &status
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("user_id")); raw != "" {
			if id, err := uuid.Parse(raw); err == nil {
				input.UserID = &id
			}
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("category_id")); raw != "" {
			if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
				input.CategoryID = &id
			}
		}

		result, err := svc.ListImages(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "Image list fetched successfully.", result)
	}
}

// CreateImage handles the multipart upload endpoint. maxUpload caps the
// accepted file size in bytes.
func CreateImage(svc imagesvc.Service, maxUpload int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "image service unavailable"))
			return
		}

		maxBytes := maxUpload
		if maxBytes <= 0 {
			maxBytes = 32 << 20
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes+multipartSlack)
		if err := r.ParseMultipartForm(maxBytes + multipartSlack); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart body"))
			return
		}

		file, header, err := r.FormFile("image")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "image file is required"))
			return
		}
		defer file.Close()

		input := imagesvc.CreateImageInput{
			File:        file,
			Header:      header,
			Title:       strings.TrimSpace(r.FormValue("title")),
			Tags:        strings.TrimSpace(r.FormValue("tags")),
			Description: strings.TrimSpace(r.FormValue("description")),
			Alt:         strings.TrimSpace(r.FormValue("alt")),
		}

		price, err := decimal.NewFromString(strings.TrimSpace(r.FormValue("price")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "price must be numeric"))
			return
		}
		input.Price = price

		userID, err := uuid.Parse(strings.TrimSpace(r.FormValue("user_id")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "user_id must be a valid id"))
			return
		}
		input.UserID = userID

		if raw := strings.TrimSpace(r.FormValue("category_id")); raw != "" {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "category_id must be an integer"))
				return
			}
			input.CategoryID = &id
		}
		if raw := strings.TrimSpace(r.FormValue("status")); raw != "" {
			status, err := enums.ParseImageStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
				return
			}
			input.Status = &status
		}

		result, err := svc.CreateImage(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, "Image uploaded successfully.", result)
	}
}

// UpdateImage handles the partial update endpoint. Only form fields that are
// present in the request change the stored row.
func UpdateImage(svc imagesvc.Service, maxUpload int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "image service unavailable"))
			return
		}

		maxBytes := maxUpload
		if maxBytes <= 0 {
			maxBytes = 32 << 20
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes+multipartSlack)
		if err := r.ParseMultipartForm(maxBytes + multipartSlack); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart body"))
			return
		}

		id, err := uuid.Parse(strings.TrimSpace(r.FormValue("id")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "id must be a valid id"))
			return
		}
		input := imagesvc.UpdateImageInput{ID: id}

		if file, header, err := r.FormFile("image"); err == nil {
			defer file.Close()
			input.File = file
			input.Header = header
		}

		if v, ok := formValue(r, "title"); ok {
			input.Title = &v
		}
		if v, ok := formValue(r, "tags"); ok {
			input.Tags = &v
		}
		if v, ok := formValue(r, "description"); ok {
			input.Description = &v
		}
		if v, ok := formValue(r, "alt"); ok {
			input.Alt = &v
		}
		if v, ok := formValue(r, "price"); ok {
			price, err := decimal.NewFromString(v)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "price must be numeric"))
				return
			}
			input.Price = &price
		}
		if v, ok := formValue(r, "category_id"); ok {
			categoryID, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "category_id must be an integer"))
				return
			}
			input.CategoryID = &categoryID
		}
		if v, ok := formValue(r, "status"); ok {
			status, err := enums.ParseImageStatus(v)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
				return
			}
			input.Status = &status
		}

		result, err := svc.UpdateImage(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "Image updated successfully.", result)
	}
}

// DeleteImage handles the soft-delete endpoint.
func DeleteImage(svc imagesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "image service unavailable"))
			return
		}

		var body struct {
			ID string `json:"id" validate:"required"`
		}
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := uuid.Parse(strings.TrimSpace(body.ID))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "id must be a valid id"))
			return
		}

		if err := svc.DeleteImage(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "Image deleted successfully.", nil)
	}
}

// formValue distinguishes absent multipart fields from blank ones so a
// partial update only touches what the client actually sent.
func formValue(r *http.Request, key string) (string, bool) {
	if r.MultipartForm == nil {
		return "", false
	}
	values, ok := r.MultipartForm.Value[key]
	if !ok || len(values) == 0 {
		return "", false
	}
	return strings.TrimSpace(values[0]), true
}
