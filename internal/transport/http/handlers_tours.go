package httptransport

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	inventorymodels "toursales/internal/inventory/models"
	"toursales/internal/media"
	"toursales/internal/platform/middleware"
	dErrors "toursales/pkg/domain-errors"
	"toursales/pkg/platform/httputil"
)

// maxFormMemory bounds in-memory multipart parsing; larger uploads spill to
// temp files.
const maxFormMemory = 32 << 20

// InventoryService defines the catalog operations the tour handler delegates
// to.
type InventoryService interface {
	List(ctx context.Context) ([]*inventorymodels.Tour, error)
	GetByID(ctx context.Context, id int64) (*inventorymodels.Tour, error)
	Create(ctx context.Context, dto inventorymodels.CreateTour) (*inventorymodels.Tour, error)
	Update(ctx context.Context, id int64, dto inventorymodels.UpdateTour) (*inventorymodels.Tour, error)
	Delete(ctx context.Context, id int64) error
}

// TourHandler handles the admin catalog endpoints. Creates and edits arrive
// as multipart forms because they can carry an image upload.
type TourHandler struct {
	inventory InventoryService
	images    media.ImageStore
	logger    *slog.Logger
}

func NewTourHandler(inventory InventoryService, images media.ImageStore, logger *slog.Logger) *TourHandler {
	return &TourHandler{inventory: inventory, images: images, logger: logger}
}

// Register mounts the tour routes on the router.
func (h *TourHandler) Register(r chi.Router) {
	r.Get("/tours", h.handleList)
	r.Post("/tours", h.handleCreate)
	r.Get("/tours/{id}", h.handleGet)
	r.Put("/tours/{id}", h.handleUpdate)
	r.Delete("/tours/{id}", h.handleDelete)
}

func (h *TourHandler) handleList(w http.ResponseWriter, r *http.Request) {
	tours, err := h.inventory.List(r.Context())
	if err != nil {
		h.logError(r, "failed to list tours", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, tours)
}

func (h *TourHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := tourID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	tour, err := h.inventory.GetByID(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, tour)
}

func (h *TourHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid multipart form"))
		return
	}

	imageURL, err := h.saveUploadedImage(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	price, err := parsePrice(r.FormValue("price"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	capacity, err := parseIntField(r.FormValue("capacity"), "capacity")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	spots, err := parseIntField(r.FormValue("availableSpots"), "availableSpots")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	tour, err := h.inventory.Create(r.Context(), inventorymodels.CreateTour{
		Title:          r.FormValue("title"),
		Description:    r.FormValue("description"),
		Price:          price,
		Capacity:       capacity,
		AvailableSpots: spots,
		ImageURL:       imageURL,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, tour)
}

func (h *TourHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := tourID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid multipart form"))
		return
	}

	var dto inventorymodels.UpdateTour
	if v, ok := formValue(r, "title"); ok {
		dto.Title = &v
	}
	if v, ok := formValue(r, "description"); ok {
		dto.Description = &v
	}
	if v, ok := formValue(r, "price"); ok {
		price, err := parsePrice(v)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		dto.Price = &price
	}
	if v, ok := formValue(r, "capacity"); ok {
		capacity, err := parseIntField(v, "capacity")
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		dto.Capacity = &capacity
	}
	if v, ok := formValue(r, "availableSpots"); ok {
		spots, err := parseIntField(v, "availableSpots")
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		dto.AvailableSpots = &spots
	}
	if imageURL, err := h.saveUploadedImage(r); err != nil {
		httputil.WriteError(w, err)
		return
	} else if imageURL != "" {
		dto.ImageURL = &imageURL
	}

	tour, err := h.inventory.Update(r.Context(), id, dto)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, tour)
}

func (h *TourHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := tourID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.inventory.Delete(r.Context(), id); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": "tour deleted"})
}

// saveUploadedImage stores the "image" form file if one was sent. An absent
// or empty file is not an error; it just means no image change.
func (h *TourHandler) saveUploadedImage(r *http.Request) (string, error) {
	file, _, err := r.FormFile("image")
	if err != nil {
		if err == http.ErrMissingFile {
			return "", nil
		}
		return "", dErrors.New(dErrors.CodeBadRequest, "invalid image upload")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to read image upload")
	}
	if len(data) == 0 {
		return "", nil
	}
	return h.images.Save(r.Context(), data)
}

func (h *TourHandler) logError(r *http.Request, msg string, err error) {
	h.logger.ErrorContext(r.Context(), msg,
		"request_id", middleware.GetRequestID(r.Context()),
		"error", err.Error(),
	)
}

func tourID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, dErrors.New(dErrors.CodeBadRequest, "tour id must be a positive number")
	}
	return id, nil
}

func formValue(r *http.Request, key string) (string, bool) {
	if r.MultipartForm == nil {
		return "", false
	}
	values, ok := r.MultipartForm.Value[key]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}

func parsePrice(raw string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, dErrors.New(dErrors.CodeBadRequest, "price must be a number")
	}
	return price, nil
}

func parseIntField(raw, name string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeBadRequest, name+" must be an integer")
	}
	return n, nil
}
