package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/api/request"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/api/response"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/apperrors"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/service"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/validation"
)

// UserHandler handles HTTP requests for user endpoints.
type UserHandler struct {
	userService *service.UserService
}

// NewUserHandler creates a new UserHandler with the provided service dependency.
func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// Users handles GET requests to list all users.
//
// Endpoint: GET /api/user
// Response: 200 OK with array of model.User
// Error: 500 Internal Server Error if retrieval fails
func (h *UserHandler) Users(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.GetUsers(r.Context())
	if err != nil {
		respondServiceError(w, apperrors.ErrFailedToRetrieveUsers, err)
		return
	}
	response.RespondJSON(w, http.StatusOK, users)
}

// GetUser handles GET requests to retrieve a single user.
//
// Endpoint: GET /api/user/{uuid}
// Response: 200 OK with model.User
// Error: 404 Not Found if the user does not exist
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.userService.GetUser(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		respondServiceError(w, apperrors.ErrFailedToRetrieveUsers, err)
		return
	}
	response.RespondJSON(w, http.StatusOK, user)
}

// CreateUser handles POST requests to create a user.
//
// Endpoint: POST /api/user
// Request body: {"name": "..."}
// Response: 201 Created with model.User
// Error: 400 Bad Request if the body is invalid
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.CreateUserRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidRequestBody.Error(), err.Error())
		return
	}
	if err := validation.ValidateCreateUser(req); err != nil {
		respondServiceError(w, apperrors.ErrFailedToCreateUser, err)
		return
	}

	user, err := h.userService.CreateUser(r.Context(), req)
	if err != nil {
		respondServiceError(w, apperrors.ErrFailedToCreateUser, err)
		return
	}
	response.RespondJSON(w, http.StatusCreated, user)
}
