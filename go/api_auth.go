package trackerserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	usermapper "github.com/Apurer/supplychain-tracker/internal/domains/users/adapters/http/mapper"
	usertypes "github.com/Apurer/supplychain-tracker/internal/domains/users/application/types"
	userports "github.com/Apurer/supplychain-tracker/internal/domains/users/ports"
)

// AuthAPI wires HTTP transport with the users bounded context.
type AuthAPI struct {
	service userports.Service
}

func NewAuthAPI(service userports.Service) AuthAPI {
	return AuthAPI{service: service}
}

// Post /api/auth/register
func (api *AuthAPI) Register(c *gin.Context) {
	var payload usermapper.Register
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	user, err := api.service.Register(c.Request.Context(), usermapper.ToRegisterInput(payload))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, usermapper.FromDomainUser(user))
}

// Post /api/auth/create-first-admin
func (api *AuthAPI) CreateFirstAdmin(c *gin.Context) {
	var payload usermapper.AdminRegister
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	user, err := api.service.CreateFirstAdmin(c.Request.Context(), usermapper.ToAdminRegisterInput(payload))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, usermapper.FromDomainUser(user))
}

// Post /api/auth/create-admin
func (api *AuthAPI) CreateAdmin(c *gin.Context) {
	var payload usermapper.AdminRegister
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	user, err := api.service.CreateAdmin(c.Request.Context(), actorFrom(c), usermapper.ToAdminRegisterInput(payload))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, usermapper.FromDomainUser(user))
}

// Get /api/auth/users
func (api *AuthAPI) ListUsers(c *gin.Context) {
	users, err := api.service.ListUsers(c.Request.Context(), usertypes.ListUsersInput{
		Actor:        actorFrom(c),
		Role:         c.Query("role"),
		Verification: c.Query("verificationStatus"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, usermapper.FromDomainUsers(users))
}

// Patch /api/auth/verify/:id
func (api *AuthAPI) ReviewUser(c *gin.Context) {
	var payload usermapper.Review
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	user, err := api.service.ReviewUser(c.Request.Context(), usermapper.ToReviewInput(actorFrom(c), c.Param("id"), payload))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, usermapper.FromDomainUser(user))
}

// Post /api/auth/login
func (api *AuthAPI) Login(c *gin.Context) {
	var payload usermapper.Credentials
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	result, err := api.service.Login(c.Request.Context(), usermapper.ToLoginInput(payload, c.ClientIP()))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, usermapper.FromLoginResult(result))
}

// Post /api/auth/logout
func (api *AuthAPI) Logout(c *gin.Context) {
	if err := api.service.Logout(c.Request.Context(), c.GetString(sessionIDKey)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Get /api/users/me
func (api *AuthAPI) Me(c *gin.Context) {
	user, err := api.service.GetByID(c.Request.Context(), actorFrom(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, usermapper.FromDomainUser(user))
}
