package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/catalog"
	"storefront/internal/models"
)

type productRequest struct {
	Name         *string       `json:"name"`
	Price        *models.Money `json:"price"`
	Image        *string       `json:"image"`
	Brand        *string       `json:"brand"`
	Category     *string       `json:"category"`
	Description  *string       `json:"description"`
	CountInStock *int          `json:"countInStock"`
}

type reviewRequest struct {
	Rating  int    `json:"rating" binding:"required"`
	Comment string `json:"comment" binding:"required"`
}

func ListProducts(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, err := svc.List(c.Request.Context(), c.Query("keyword"), pageNumber(c.Query("pageNumber")))
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, page)
	}
}

func ListAllProducts(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, err := svc.ListAll(c.Request.Context(), actor(c), c.Query("keyword"), pageNumber(c.Query("pageNumber")))
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, page)
	}
}

func TopProducts(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		products, err := svc.Top(c.Request.Context())
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, products)
	}
}

func ProductCategories(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		categories, err := svc.Categories(c.Request.Context())
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, categories)
	}
}

func GetProduct(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		product, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, product)
	}
}

func CreateProduct(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		product, err := svc.Create(c.Request.Context(), actor(c))
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, product)
	}
}

func UpdateProduct(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req productRequest
		if !bindJSON(c, &req) {
			return
		}
		product, err := svc.Update(c.Request.Context(), actor(c), c.Param("id"), catalog.ProductUpdate{
			Name:         req.Name,
			Price:        req.Price,
			Image:        req.Image,
			Brand:        req.Brand,
			Category:     req.Category,
			Description:  req.Description,
			CountInStock: req.CountInStock,
		})
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, product)
	}
}

func ArchiveProduct(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Archive(c.Request.Context(), actor(c), c.Param("id")); err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Product archived"})
	}
}

func CreateReview(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req reviewRequest
		if !bindJSON(c, &req) {
			return
		}
		product, err := svc.AddReview(c.Request.Context(), actor(c), c.Param("id"), catalog.ReviewInput{
			Rating:  req.Rating,
			Comment: req.Comment,
		})
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"message":    "Review added",
			"rating":     product.Rating,
			"numReviews": product.NumReviews,
		})
	}
}
