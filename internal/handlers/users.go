package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/accounts"
	"storefront/internal/models"
)

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type profileRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type adminUserRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	IsAdmin *bool  `json:"isAdmin"`
}

func RegisterUser(svc *accounts.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req registerRequest
		if !bindJSON(c, &req) {
			return
		}
		session, err := svc.Register(c.Request.Context(), accounts.RegisterInput{
			Name:     req.Name,
			Email:    req.Email,
			Password: req.Password,
		})
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, session)
	}
}

func Login(svc *accounts.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if !bindJSON(c, &req) {
			return
		}
		session, err := svc.Authenticate(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, session)
	}
}

func GetProfile(svc *accounts.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		account, err := svc.Profile(c.Request.Context(), actor(c))
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, account)
	}
}

func UpdateProfile(svc *accounts.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req profileRequest
		if !bindJSON(c, &req) {
			return
		}
		session, err := svc.UpdateProfile(c.Request.Context(), actor(c), accounts.ProfileUpdate{
			Name:     req.Name,
			Email:    req.Email,
			Password: req.Password,
		})
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, session)
	}
}

func UpdateShippingAddress(svc *accounts.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ShippingAddress
		if !bindJSON(c, &req) {
			return
		}
		account, err := svc.UpdateShippingAddress(c.Request.Context(), actor(c), req)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, account)
	}
}

func ListUsers(svc *accounts.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := svc.List(c.Request.Context(), actor(c))
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, users)
	}
}

func GetUser(svc *accounts.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		account, err := svc.Get(c.Request.Context(), actor(c), c.Param("id"))
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, account)
	}
}

func UpdateUser(svc *accounts.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req adminUserRequest
		if !bindJSON(c, &req) {
			return
		}
		account, err := svc.Update(c.Request.Context(), actor(c), c.Param("id"), accounts.AdminUpdate{
			Name:    req.Name,
			Email:   req.Email,
			IsAdmin: req.IsAdmin,
		})
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, account.Summary())
	}
}

func DeleteUser(svc *accounts.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Delete(c.Request.Context(), actor(c), c.Param("id")); err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
	}
}
