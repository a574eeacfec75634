package rest

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/userservice/internal/common"
	"github.com/dmitrijs2005/userservice/internal/logging"
	pb "github.com/dmitrijs2005/userservice/internal/proto"
	"github.com/dmitrijs2005/userservice/internal/server/auth"
	"github.com/dmitrijs2005/userservice/internal/server/services"
	"github.com/dmitrijs2005/userservice/internal/server/validation"
	"github.com/gin-gonic/gin"
)

type handlers struct {
	users  *services.UserService
	logger logging.Logger
}

func (h *handlers) register(c *gin.Context) {
	var req pb.RegisterRequest
	if !h.bind(c, &req) {
		return
	}

	h.logger.Info(c.Request.Context(), "Received registration request", "username", req.Username)

	user, err := h.users.Register(c.Request.Context(), services.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, pb.RegisterResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		FullName:  user.FullName,
		CreatedAt: user.CreatedAt.UTC().Format(time.RFC3339),
		Message:   pb.RegisteredMessage,
	})
}

func (h *handlers) login(c *gin.Context) {
	var req pb.LoginRequest
	if !h.bind(c, &req) {
		return
	}

	h.logger.Info(c.Request.Context(), "Received login request", "identifier", req.EmailOrUsername)

	res, err := h.users.Login(c.Request.Context(), req.EmailOrUsername, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, pb.LoginResponse{
		Token:     res.Token,
		TokenType: common.TokenType,
		ExpiresIn: res.ExpiresIn,
		UserID:    res.UserID,
		Username:  res.Username,
		Email:     res.Email,
		FullName:  res.FullName,
		LoginTime: res.IssuedAt.UTC().Format(time.RFC3339),
	})
}

func (h *handlers) profile(c *gin.Context) {
	p, ok := auth.PrincipalFromContext(c.Request.Context())
	if !ok {
		respondError(c, common.ErrAuthenticationRequired)
		return
	}

	user, err := h.users.Profile(c.Request.Context(), p.Username)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, pb.ProfileResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		FullName:  user.FullName,
		CreatedAt: user.CreatedAt.UTC().Format(time.RFC3339),
		Message:   pb.ProfileMessage,
	})
}

// bind decodes the JSON body into req and validates it, writing the error
// reply itself when either step fails.
func (h *handlers) bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		writeProblem(c, http.StatusBadRequest, "Bad Request", "Malformed JSON request", nil)
		return false
	}
	if err := validation.Struct(req); err != nil {
		h.logger.Warn(c.Request.Context(), "Validation error", "error", err.Error())
		respondError(c, err)
		return false
	}
	return true
}
