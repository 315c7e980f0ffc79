package web

import (
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"shoplist/internal/domain"
	apperror "shoplist/internal/errors"
)

const maxUploadBytes = 10 << 20

// ListProducts renders the paginated, filterable product listing along with
// the shop collection backing the filter control.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.ProductFilter{Query: q.Get("q")}
	if shopID, err := strconv.ParseInt(q.Get("shop"), 10, 64); err == nil {
		filter.ShopID = shopID
	}
	if page, err := strconv.Atoi(q.Get("page")); err == nil {
		filter.Page = page
	}

	page, err := h.Catalog.ListProducts(r.Context(), filter)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	shops, err := h.Catalog.ListShops(r.Context())
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	h.render(w, r, "product_list.html", http.StatusOK, viewData{
		Page:    page,
		Shops:   shops,
		Flashes: h.Sessions.Flashes(w, r),
	})
}

// ProductDetail renders one product.
func (h *Handler) ProductDetail(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	product, err := h.Catalog.GetProduct(r.Context(), id)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	h.render(w, r, "product_detail.html", http.StatusOK, viewData{
		Product: product,
		Flashes: h.Sessions.Flashes(w, r),
	})
}

// CreateProductForm renders the empty product form.
func (h *Handler) CreateProductForm(w http.ResponseWriter, r *http.Request) {
	shops, err := h.Catalog.ListShops(r.Context())
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	h.render(w, r, "product_form.html", http.StatusOK, viewData{Shops: shops})
}

// CreateProduct validates and persists a submitted product, then redirects
// to the listing with a success notification.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(r)
	if !ok {
		http.Error(w, "403 Forbidden", http.StatusForbidden)
		return
	}

	product, fields, err := h.parseProductForm(r)
	if err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if len(fields) == 0 {
		_, err = h.Catalog.CreateProduct(r.Context(), actor, product)
		if err == nil {
			h.Sessions.AddFlash(w, r, "Product added successfully.")
			http.Redirect(w, r, "/products/", http.StatusFound)
			return
		}
		fields = apperror.FieldsOf(err)
		if fields == nil {
			h.renderError(w, r, err)
			return
		}
	}

	h.rerenderProductForm(w, r, product, fields)
}

// EditProductForm renders the product form pre-filled with stored values.
func (h *Handler) EditProductForm(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	product, err := h.Catalog.GetProduct(r.Context(), id)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	shops, err := h.Catalog.ListShops(r.Context())
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	h.render(w, r, "product_form.html", http.StatusOK, viewData{
		Product: product,
		Shops:   shops,
		Values: map[string]string{
			"name":        product.Name,
			"description": product.Description,
			"price":       product.Price.StringFixed(2),
			"shop":        strconv.FormatInt(product.ShopID, 10),
		},
	})
}

// EditProduct validates and persists changes to an existing product, then
// redirects to its detail page with a success notification.
func (h *Handler) EditProduct(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(r)
	if !ok {
		http.Error(w, "403 Forbidden", http.StatusForbidden)
		return
	}
	id, err := pathID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	product, fields, err := h.parseProductForm(r)
	if err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	product.ID = id

	if len(fields) == 0 {
		_, err = h.Catalog.UpdateProduct(r.Context(), actor, product)
		if err == nil {
			h.Sessions.AddFlash(w, r, "Product updated successfully.")
			http.Redirect(w, r, "/products/"+strconv.FormatInt(id, 10)+"/", http.StatusFound)
			return
		}
		fields = apperror.FieldsOf(err)
		if fields == nil {
			h.renderError(w, r, err)
			return
		}
	}

	h.rerenderProductForm(w, r, product, fields)
}

// DeleteProductConfirm renders the deletion confirmation page.
func (h *Handler) DeleteProductConfirm(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	product, err := h.Catalog.GetProduct(r.Context(), id)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	h.render(w, r, "product_confirm_delete.html", http.StatusOK, viewData{Product: product})
}

// DeleteProduct removes a product and redirects to the listing.
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(r)
	if !ok {
		http.Error(w, "403 Forbidden", http.StatusForbidden)
		return
	}
	id, err := pathID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	if err := h.Catalog.DeleteProduct(r.Context(), actor, id); err != nil {
		h.renderError(w, r, err)
		return
	}

	h.Sessions.AddFlash(w, r, "Product deleted.")
	http.Redirect(w, r, "/products/", http.StatusFound)
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

// parseProductForm reads the multipart product form. Parse-level problems
// (missing price, malformed number, bad shop value) come back as field
// errors so the form re-renders inline; the returned error only reports an
// unreadable request body.
func (h *Handler) parseProductForm(r *http.Request) (domain.Product, apperror.FieldErrors, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		// Plain form posts (no file input) are still acceptable.
		if err := r.ParseForm(); err != nil {
			return domain.Product{}, nil, err
		}
	}

	fields := apperror.FieldErrors{}
	product := domain.Product{
		Name:        strings.TrimSpace(r.PostFormValue("name")),
		Description: strings.TrimSpace(r.PostFormValue("description")),
	}

	priceStr := strings.TrimSpace(r.PostFormValue("price"))
	if priceStr == "" {
		fields["price"] = "price is required"
	} else if price, err := decimal.NewFromString(priceStr); err != nil {
		fields["price"] = "enter a valid price"
	} else {
		product.Price = price
	}

	if shopStr := r.PostFormValue("shop"); shopStr != "" {
		shopID, err := strconv.ParseInt(shopStr, 10, 64)
		if err != nil {
			fields["shop"] = "select a valid shop"
		} else {
			product.ShopID = shopID
		}
	}

	if r.MultipartForm != nil {
		file, header, err := r.FormFile("image")
		if err == nil {
			defer file.Close()
			path, saveErr := h.saveImage(file, header.Filename)
			if saveErr != nil {
				h.Logger.Error("failed to store uploaded image", saveErr)
				fields["image"] = "could not store the uploaded image"
			} else {
				product.Image = path
			}
		} else if err != http.ErrMissingFile {
			fields["image"] = "could not read the uploaded image"
		}
	}

	return product, fields, nil
}

// saveImage stores an uploaded file under the media root and returns its
// media-relative path.
func (h *Handler) saveImage(file multipart.File, filename string) (string, error) {
	relPath := filepath.Join("products", uuid.NewString()+filepath.Ext(filename))
	fullPath := filepath.Join(h.MediaDir, relPath)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", err
	}
	dst, err := os.Create(fullPath)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		os.Remove(fullPath)
		return "", err
	}
	return filepath.ToSlash(relPath), nil
}

func (h *Handler) rerenderProductForm(w http.ResponseWriter, r *http.Request, product domain.Product, fields apperror.FieldErrors) {
	shops, err := h.Catalog.ListShops(r.Context())
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	values := map[string]string{
		"name":        product.Name,
		"description": product.Description,
	}
	if !product.Price.IsZero() {
		values["price"] = product.Price.String()
	}
	if product.ShopID != 0 {
		values["shop"] = strconv.FormatInt(product.ShopID, 10)
	}
	h.render(w, r, "product_form.html", http.StatusOK, viewData{
		Product: product,
		Shops:   shops,
		Errors:  fields,
		Values:  values,
	})
}
