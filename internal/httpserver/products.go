package httpserver

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"minishop/internal/domain"
	productsvc "minishop/internal/service/product"
	"minishop/internal/upload"
)

const maxImageBytes = 10 << 20

// listProducts returns the catalog newest first. productId narrows the result
// to at most one product; category filters by exact match.
func (h *handlers) listProducts(c *gin.Context) {
	ctx := c.Request.Context()

	if raw := c.Query("productId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid productId"})
			return
		}
		p, err := h.products.Get(ctx, id)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			c.JSON(http.StatusOK, []domain.Product{})
		case err != nil:
			h.logger.Printf("get product %d: %v", id, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products", "details": err.Error()})
		default:
			c.JSON(http.StatusOK, []domain.Product{*p})
		}
		return
	}

	products, err := h.products.List(ctx, c.Query("category"))
	if err != nil {
		h.logger.Printf("list products: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products", "details": err.Error()})
		return
	}
	if products == nil {
		products = []domain.Product{}
	}
	c.JSON(http.StatusOK, products)
}

func (h *handlers) addProduct(c *gin.Context) {
	in := productsvc.CreateInput{
		Name:        strings.TrimSpace(c.PostForm("name")),
		Price:       strings.TrimSpace(c.PostForm("price")),
		Description: strings.TrimSpace(c.PostForm("description")),
		Category:    strings.TrimSpace(c.PostForm("category")),
	}
	if in.Name == "" || in.Price == "" || in.Description == "" || in.Category == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}

	file, err := c.FormFile("image")
	switch {
	case errors.Is(err, http.ErrMissingFile):
	case err != nil:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid image upload"})
		return
	case h.uploads == nil:
		c.JSON(http.StatusBadRequest, gin.H{"error": "image uploads are disabled"})
		return
	default:
		if file.Size > maxImageBytes {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "image too large"})
			return
		}
		src, err := file.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid image upload"})
			return
		}
		data, err := io.ReadAll(io.LimitReader(src, maxImageBytes))
		src.Close()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid image upload"})
			return
		}
		url, err := h.uploads.SaveImage(file.Filename, data)
		switch {
		case errors.Is(err, upload.ErrNotImage), errors.Is(err, upload.ErrEmptyFile):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		case err != nil:
			h.logger.Printf("save image %q: %v", file.Filename, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product", "details": err.Error()})
			return
		}
		in.Image = &url
	}

	p, err := h.products.Create(c.Request.Context(), in)
	switch {
	case errors.Is(err, productsvc.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case err != nil:
		h.logger.Printf("create product: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product", "details": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *handlers) listCategories(c *gin.Context) {
	categories, err := h.products.Categories(c.Request.Context())
	if err != nil {
		h.logger.Printf("list categories: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch categories"})
		return
	}
	if categories == nil {
		categories = []string{}
	}
	c.JSON(http.StatusOK, categories)
}

// catalogCheck reports whether the catalog backend answers and how many
// products it holds.
func (h *handlers) catalogCheck(c *gin.Context) {
	products, err := h.products.List(c.Request.Context(), "")
	if err != nil {
		h.logger.Printf("catalog check: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database connection failed", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"message":      "Database connected successfully",
		"productCount": len(products),
	})
}
