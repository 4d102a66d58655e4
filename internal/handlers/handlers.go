package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/01moynul/carlisting-golang/internal/csvimport"
	"github.com/01moynul/carlisting-golang/internal/middleware"
	"github.com/01moynul/carlisting-golang/internal/models"
	"github.com/01moynul/carlisting-golang/internal/service"
)

type ItemManager interface {
	List(ctx context.Context, actor service.Actor, skip, limit int) (*models.ItemsPublic, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Item, error)
	Create(ctx context.Context, actor service.Actor, in models.ItemCreate) (*models.Item, error)
	Update(ctx context.Context, actor service.Actor, id uuid.UUID, in models.ItemUpdate) (*models.Item, error)
	Delete(ctx context.Context, actor service.Actor, id uuid.UUID) error
	MarkSold(ctx context.Context, actor service.Actor, id uuid.UUID, sale models.ItemSale) (*models.Item, error)
}

type EventRecorder interface {
	Record(ctx context.Context, in models.EventCreate) (*models.Event, error)
	Popularity(ctx context.Context, userID *uuid.UUID) ([]models.ItemPopularity, error)
}

type UserManager interface {
	Register(ctx context.Context, in models.UserRegister) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	Delete(ctx context.Context, actor service.Actor, id uuid.UUID) error
}

type Recommender interface {
	FindSimilarQuery(ctx context.Context, query models.ItemQuery, limit, offset int, userID *uuid.UUID) ([]models.Item, error)
	FindSimilarItems(ctx context.Context, itemID uuid.UUID, limit, offset int, userID *uuid.UUID) ([]models.Item, error)
	FindMostPopularItems(ctx context.Context, limit, offset int, userID *uuid.UUID) ([]models.Item, error)
}

type CSVImporter interface {
	Import(ctx context.Context, path string, sellerID uuid.UUID) (int, error)
}

type TokenIssuer interface {
	GenerateToken(userID uuid.UUID) (string, error)
}

type Pinger interface {
	PingContext(ctx context.Context) error
}

// Handlers holds every dependency of the HTTP handlers.
type Handlers struct {
	Items       ItemManager
	Events      EventRecorder
	Users       UserManager
	Recommender Recommender
	Importer    CSVImporter
	Tokens      TokenIssuer
	DB          Pinger
	Logger      *zap.Logger

	UploadDir      string
	MaxUploadBytes int64
}

// RegisterValidators adds the custom binding tags used by the models.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected validator engine")
	}
	return v.RegisterValidation("notblank", validators.NotBlank)
}

// currentActor reads the identity stored by AuthMiddleware.
func currentActor(c *gin.Context) (service.Actor, bool) {
	raw, exists := c.Get(middleware.UserIDKey)
	if !exists {
		return service.Actor{}, false
	}
	userID, ok := raw.(uuid.UUID)
	if !ok {
		return service.Actor{}, false
	}
	return service.Actor{ID: userID, IsSuperuser: c.GetBool(middleware.IsSuperuserKey)}, true
}

func (h *Handlers) mustActor(c *gin.Context) (service.Actor, bool) {
	actor, ok := currentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found"})
	}
	return actor, ok
}

func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}

// optionalUUIDQuery parses an optional uuid query parameter; an empty value is absent.
func optionalUUIDQuery(c *gin.Context, name string) (*uuid.UUID, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return nil, false
	}
	return &id, true
}

// respondError maps domain errors onto status codes. Anything unknown is a
// store failure and is logged with the route.
func (h *Handlers) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrItemNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Not enough permissions"})
	case errors.Is(err, service.ErrItemAlreadySold):
		c.JSON(http.StatusConflict, gin.H{"error": "Item already sold"})
	case errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	case errors.Is(err, service.ErrEmailTaken):
		c.JSON(http.StatusBadRequest, gin.H{"error": "The user with this email already exists in the system"})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Incorrect email or password"})
	case errors.Is(err, service.ErrInactiveUser):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Inactive user"})
	case errors.Is(err, csvimport.ErrMalformedInput):
		c.JSON(http.StatusNotAcceptable, gin.H{"error": "CSV file is in bad format"})
	default:
		h.Logger.Error("Request failed",
			zap.String("route", c.FullPath()),
			zap.Error(err),
		)
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
