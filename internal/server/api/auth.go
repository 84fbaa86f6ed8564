package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/filevault/internal/common"
	"github.com/dmitrijs2005/filevault/internal/server/models"
	"github.com/gin-gonic/gin"
)

type registerRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// loginRequest accepts JSON or an OAuth2 password form, where the
// username field may carry the email.
type loginRequest struct {
	Email    string `json:"email" form:"email"`
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password" binding:"required"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{ID: u.ID, Username: u.UserName, Email: u.Email, CreatedAt: u.CreatedAt}
}

func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespError(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	user, err := h.users.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		h.fail(c, err, "")
		return
	}
	RespData(c, http.StatusCreated, toUserResponse(user))
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		RespError(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	ctx := c.Request.Context()
	email := req.Email
	if email == "" {
		switch {
		case req.Username == "":
			RespError(c, http.StatusBadRequest, "email or username is required")
			return
		case strings.Contains(req.Username, "@"):
			email = req.Username
		default:
			var err error
			if email, err = h.users.EmailByUserName(ctx, req.Username); err != nil {
				h.loginFailed(c, err)
				return
			}
		}
	}

	token, err := h.users.Authenticate(ctx, email, req.Password)
	if err != nil {
		h.loginFailed(c, err)
		return
	}
	RespSuccess(c, tokenResponse{AccessToken: token, TokenType: "bearer"})
}

func (h *Handler) loginFailed(c *gin.Context, err error) {
	if errors.Is(err, common.ErrorUnauthorized) {
		c.Header("WWW-Authenticate", common.BearerScheme)
		RespError(c, http.StatusUnauthorized, "incorrect email or password")
		return
	}
	h.fail(c, err, "")
}

func (h *Handler) Me(c *gin.Context) {
	RespSuccess(c, toUserResponse(currentUser(c)))
}
