package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/aretelabs/storesync/docs"
	"github.com/aretelabs/storesync/internal/domain"
	"github.com/aretelabs/storesync/internal/ingest"
	"github.com/aretelabs/storesync/internal/dto"
	"github.com/aretelabs/storesync/internal/service"
	"github.com/aretelabs/storesync/internal/store"
	"github.com/aretelabs/storesync/internal/webhook"
)

const timeLayout = "2006-01-02T15:04:05Z07:00"

type Handler struct {
	tenantService service.TenantServicer
	syncService   service.SyncServicer
	tenants       store.TenantStore
	verifier      *webhook.Verifier
	webhookRouter *webhook.Router
	router        *gin.Engine
	log           *zap.Logger
}

func NewHandler(
	tenantService service.TenantServicer,
	syncService service.SyncServicer,
	tenants store.TenantStore,
	verifier *webhook.Verifier,
	webhookRouter *webhook.Router,
	log *zap.Logger,
) *Handler {
	h := &Handler{
		tenantService: tenantService,
		syncService:   syncService,
		tenants:       tenants,
		verifier:      verifier,
		webhookRouter: webhookRouter,
		router:        gin.Default(),
		log:           log,
	}

	h.registerRoutes()

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	h.router.GET("/health", h.healthCheck)
	h.router.POST("/tenants", h.onboardTenant)
	h.router.POST("/tenants/:id/sync", h.triggerSync)
	h.router.GET("/tenants/:id/sync/latest", h.latestSync)
	h.router.GET("/tenants/:id/sync/:attemptID", h.syncAttempt)
	h.router.POST("/webhooks/shopify", h.receiveWebhook)
	h.router.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

// healthCheck handles health check requests
// @Summary Health check
// @Description Check if the service is running
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// onboardTenant handles POST /tenants
// @Summary Connect a shop
// @Description Validate credentials against the shop, create the tenant, register webhooks and start the initial sync
// @Tags tenants
// @Accept json
// @Produce json
// @Param tenant body dto.OnboardTenantRequest true "Shop credentials"
// @Success 201 {object} dto.TenantResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /tenants [post]
func (h *Handler) onboardTenant(c *gin.Context) {
	var req dto.OnboardTenantRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid onboarding request", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	tenant, err := h.tenantService.Onboard(c.Request.Context(), service.OnboardParams{
		ShopDomain:  req.ShopDomain,
		AccessToken: req.AccessToken,
		ShopName:    req.ShopName,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Error:   "invalid_credentials",
				Message: err.Error(),
			})
		case errors.Is(err, service.ErrTenantExists):
			c.JSON(http.StatusConflict, dto.ErrorResponse{
				Error:   "tenant_exists",
				Message: err.Error(),
			})
		default:
			h.log.Error("Failed to onboard tenant",
				zap.Error(err),
				zap.String("shop_domain", req.ShopDomain))
			c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
				Error:   "internal_error",
				Message: err.Error(),
			})
		}
		return
	}

	h.log.Info("Tenant onboarded",
		zap.Int64("tenant_id", tenant.ID),
		zap.String("shop_domain", tenant.ShopDomain))

	c.JSON(http.StatusCreated, tenantResponse(tenant))
}

// triggerSync handles POST /tenants/:id/sync
// @Summary Trigger a sync
// @Description Start a background sync for the tenant; returns immediately with the attempt id
// @Tags sync
// @Produce json
// @Param id path int true "Tenant ID"
// @Success 202 {object} dto.SyncTriggeredResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /tenants/{id}/sync [post]
func (h *Handler) triggerSync(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}

	attempt, err := h.syncService.Trigger(c.Request.Context(), tenantID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, dto.ErrorResponse{
				Error:   "tenant_not_found",
				Message: "no tenant with that id",
			})
			return
		}
		h.log.Error("Failed to trigger sync",
			zap.Error(err),
			zap.Int64("tenant_id", tenantID))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusAccepted, dto.SyncTriggeredResponse{
		AttemptID: attempt.ID.String(),
		TenantID:  attempt.TenantID,
		State:     string(attempt.State),
	})
}

// syncAttempt handles GET /tenants/:id/sync/:attemptID
// @Summary Get a sync attempt
// @Description Report the state and per-resource counts of one sync attempt
// @Tags sync
// @Produce json
// @Param id path int true "Tenant ID"
// @Param attemptID path string true "Attempt ID"
// @Success 200 {object} dto.SyncAttemptResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /tenants/{id}/sync/{attemptID} [get]
func (h *Handler) syncAttempt(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}

	attemptID, err := uuid.Parse(c.Param("attemptID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation_error",
			Message: "attempt id must be a UUID",
		})
		return
	}

	attempt, found := h.syncService.Attempt(tenantID, attemptID)
	if !found {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{
			Error:   "attempt_not_found",
			Message: "no such sync attempt for that tenant",
		})
		return
	}

	c.JSON(http.StatusOK, attemptResponse(attempt))
}

// latestSync handles GET /tenants/:id/sync/latest
// @Summary Get the latest sync attempt
// @Description Report the most recently triggered sync for the tenant
// @Tags sync
// @Produce json
// @Param id path int true "Tenant ID"
// @Success 200 {object} dto.SyncAttemptResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /tenants/{id}/sync/latest [get]
func (h *Handler) latestSync(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}

	attempt, found := h.syncService.Latest(tenantID)
	if !found {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{
			Error:   "attempt_not_found",
			Message: "no sync has been triggered for that tenant",
		})
		return
	}

	c.JSON(http.StatusOK, attemptResponse(attempt))
}

// receiveWebhook handles POST /webhooks/shopify
// @Summary Receive a store webhook
// @Description Verify the HMAC signature, resolve the tenant by shop domain and dispatch by topic
// @Tags webhooks
// @Accept json
// @Produce json
// @Success 200 {object} dto.WebhookAckResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /webhooks/shopify [post]
func (h *Handler) receiveWebhook(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "invalid_body",
			Message: "could not read request body",
		})
		return
	}

	topic := c.GetHeader("X-Shopify-Topic")
	shopDomain := c.GetHeader("X-Shopify-Shop-Domain")
	if topic == "" || shopDomain == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "missing_headers",
			Message: "topic and shop domain headers are required",
		})
		return
	}

	// Verify over the raw bytes before any parsing.
	if err := h.verifier.Verify(body, c.GetHeader("X-Shopify-Hmac-Sha256")); err != nil {
		h.log.Warn("Webhook signature rejected",
			zap.String("shop_domain", shopDomain),
			zap.String("topic", topic))
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error:   "invalid_signature",
			Message: err.Error(),
		})
		return
	}

	tenant, err := h.tenants.GetByDomain(c.Request.Context(), shopDomain)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, dto.ErrorResponse{
				Error:   "unknown_shop",
				Message: "no tenant registered for that shop domain",
			})
			return
		}
		h.log.Error("Failed to resolve webhook tenant",
			zap.Error(err),
			zap.String("shop_domain", shopDomain))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "invalid_body",
			Message: "body is not valid JSON",
		})
		return
	}

	disposition, err := h.webhookRouter.Dispatch(c.Request.Context(), tenant, topic, payload)
	if err != nil {
		// Acknowledge anyway; upstream retries duplicate-deliver and
		// every handler is idempotent.
		h.log.Error("Webhook handler failed",
			zap.Error(err),
			zap.Int64("tenant_id", tenant.ID),
			zap.String("topic", topic))
	} else {
		h.log.Info("Webhook processed",
			zap.Int64("tenant_id", tenant.ID),
			zap.String("topic", topic),
			zap.String("disposition", string(disposition)))
	}

	c.JSON(http.StatusOK, dto.WebhookAckResponse{Received: true})
}

func (h *Handler) tenantID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation_error",
			Message: "tenant id must be a positive integer",
		})
		return 0, false
	}
	return id, true
}

func tenantResponse(t *domain.Tenant) dto.TenantResponse {
	resp := dto.TenantResponse{
		ID:         t.ID,
		ShopDomain: t.ShopDomain,
		ShopName:   t.ShopName,
		IsActive:   t.IsActive,
		CreatedAt:  t.CreatedAt.Format(timeLayout),
	}
	if t.LastSyncAt != nil {
		resp.LastSyncAt = t.LastSyncAt.Format(timeLayout)
	}
	return resp
}

func attemptResponse(a service.Attempt) dto.SyncAttemptResponse {
	resp := dto.SyncAttemptResponse{
		AttemptID: a.ID.String(),
		TenantID:  a.TenantID,
		State:     string(a.State),
		StartedAt: a.StartedAt.Format(timeLayout),
		Error:     a.Error,
	}
	if a.FinishedAt != nil {
		resp.FinishedAt = a.FinishedAt.Format(timeLayout)
	}
	if a.Result != nil {
		resp.Customers = outcomeResponse(a.Result.Customers)
		resp.Products = outcomeResponse(a.Result.Products)
		resp.Orders = outcomeResponse(a.Result.Orders)
	}
	return resp
}

func outcomeResponse(o ingest.ResourceOutcome) *dto.ResourceOutcomeResponse {
	resp := &dto.ResourceOutcomeResponse{
		Synced: o.Synced,
		Failed: o.Failed,
	}
	if o.Err != nil {
		resp.Error = o.Err.Error()
	}
	return resp
}
