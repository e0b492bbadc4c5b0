// Package httpapi exposes the services over JSON HTTP using gin. Every
// response uses the envelope {success, data} or {success, error, kind, details}.
package httpapi

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/instantbranding/brandkit/internal/common"
	"github.com/instantbranding/brandkit/internal/logging"
	"github.com/instantbranding/brandkit/internal/server/bgremove"
	"github.com/instantbranding/brandkit/internal/server/models"
	"github.com/instantbranding/brandkit/internal/server/services"
	"github.com/instantbranding/brandkit/internal/server/storage"
)

type BrandService interface {
	List(ctx context.Context, userID string) ([]*models.Brand, error)
	Get(ctx context.Context, userID, id string) (*models.Brand, error)
	Upsert(ctx context.Context, userID string, payload map[string]any) (*models.Brand, models.UpsertAction, error)
	Update(ctx context.Context, userID, id string, payload map[string]any) (*models.Brand, error)
	Delete(ctx context.Context, userID, id string) error
}

type DesignService interface {
	List(ctx context.Context, userID, brandID string) ([]*models.Design, error)
	Upsert(ctx context.Context, userID string, payload map[string]any) (*models.Design, models.UpsertAction, error)
	Delete(ctx context.Context, userID, id string) error
}

type PostService interface {
	List(ctx context.Context, userID, brandID string) ([]*models.Post, error)
	Get(ctx context.Context, userID, id string) (*models.Post, error)
	Generate(ctx context.Context, userID, brandID, hook string) (*models.Post, error)
}

type UserService interface {
	Ensure(ctx context.Context, id, email string) (*models.User, error)
	Me(ctx context.Context, id string) (*models.User, error)
	CompleteOnboarding(ctx context.Context, id string) (*models.User, error)
}

type UploadService interface {
	IssueCredential(ctx context.Context, r services.UploadRequest) (*services.UploadCredential, error)
}

type BackgroundRemover interface {
	Remove(ctx context.Context, image []byte, filename string) (*bgremove.Result, error)
}

type BillingService interface {
	ProcessWebhook(ctx context.Context, body []byte, signature string) (*services.WebhookResult, error)
}

type AssetProxy interface {
	SVG(ctx context.Context, filename string) ([]byte, error)
}

type DraftImporter interface {
	Import(ctx context.Context, userID string, draft *models.DraftImport) (*models.DraftImportResult, error)
}

// Services bundles everything the router dispatches to.
type Services struct {
	Brands     BrandService
	Designs    DesignService
	Posts      PostService
	Users      UserService
	Uploads    UploadService
	Background BackgroundRemover
	Billing    BillingService
	Assets     AssetProxy
	Drafts     DraftImporter
}

type Config struct {
	JWTSecret   []byte
	CORSOrigins []string
}

type handler struct {
	cfg Config
	svc Services
	log logging.Logger
}

// NewRouter wires routes and middleware.
func NewRouter(cfg Config, svc Services, log logging.Logger) *gin.Engine {
	h := &handler{cfg: cfg, svc: svc, log: log.With("module", "http")}

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Recovery())
	r.Use(RequestLogger(h.log))
	r.Use(CORS(cfg.CORSOrigins))

	r.NoMethod(func(c *gin.Context) {
		c.AbortWithStatusJSON(http.StatusMethodNotAllowed, errorBody{Error: "method not allowed", Kind: kindMethod})
	})
	r.NoRoute(func(c *gin.Context) {
		h.fail(c, common.ErrNotFound)
	})

	r.GET("/healthz", func(c *gin.Context) { ok(c, http.StatusOK, gin.H{"status": "ok"}) })

	upload := r.Group("/upload", h.optionalAuth)
	{
		upload.POST("/signed-url", h.signedURL(storage.ProviderS3))
		upload.POST("/r2-signed-url", h.signedURL(storage.ProviderR2))
	}

	r.POST("/webhooks/billing", h.billingWebhook)
	r.GET("/assets/svg/:filename", h.svgAsset)

	authed := r.Group("/", h.requireAuth)
	{
		authed.GET("/me", h.me)
		authed.POST("/users/onboarding/complete", h.completeOnboarding)
		authed.POST("/drafts/import", h.importDraft)

		authed.GET("/brands", h.listBrands)
		authed.GET("/brands/:id", h.getBrand)
		authed.PUT("/brands/:id", h.updateBrand)
		authed.POST("/brands/upsert", h.upsertBrand)
		authed.POST("/brands/delete", h.deleteBrand)

		authed.GET("/designs", h.listDesigns)
		authed.POST("/designs/upsert", h.upsertDesign)
		authed.POST("/designs/delete", h.deleteDesign)

		authed.GET("/posts", h.listPosts)
		authed.GET("/posts/:id", h.getPost)
		authed.POST("/posts/generate", h.generatePost)

		authed.POST("/remove-background", h.removeBackground)
	}

	return r
}
