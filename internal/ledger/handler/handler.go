// Package handler exposes the ledger service over HTTP. Handlers are thin:
// decode, resolve the caller from the request context, call the service, map
// the result. Caller identity comes exclusively from the auth middleware;
// request bodies never carry one.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"carepool/internal/ledger/models"
	"carepool/internal/ledger/service"
	"carepool/pkg/clock"
	id "carepool/pkg/domain"
	dErrors "carepool/pkg/domain-errors"
	"carepool/pkg/platform/httputil"
	"carepool/pkg/requestcontext"
)

// Service defines the interface for ledger operations.
type Service interface {
	CreatePool(ctx context.Context, caller id.AccountID, name, demographic string,
		limits []models.CoverageLimit, basePremium uint64, reserveRatio uint,
		manager id.AccountID) (*models.Pool, error)
	GetPool(ctx context.Context, poolID id.PoolID) (*models.Pool, error)

	JoinPool(ctx context.Context, caller id.AccountID, poolID id.PoolID,
		name string, age uint, tier models.CoverageTier, conditions []string,
		emergencyContact, location string) (*models.Member, error)
	GetMember(ctx context.Context, account id.AccountID) (*models.Member, error)
	PayPremium(ctx context.Context, caller id.AccountID, poolID id.PoolID) (*models.Payment, error)

	SubmitClaim(ctx context.Context, caller id.AccountID, poolID id.PoolID,
		provider id.AccountID, amount uint64, category models.ClaimCategory,
		treatedAt clock.Tick, evidence string) (*models.Claim, error)
	ReviewClaim(ctx context.Context, caller id.AccountID, claimID id.ClaimID,
		approve bool, approvalAmount uint64, denialReason string) (*models.Claim, error)
	GetClaim(ctx context.Context, claimID id.ClaimID) (*models.Claim, error)

	RegisterProvider(ctx context.Context, caller id.AccountID,
		name, license, specialization, location string, services []string,
		stake uint64) (*models.Provider, error)
	VerifyProvider(ctx context.Context, caller, providerAccount id.AccountID) error
	GetProvider(ctx context.Context, account id.AccountID) (*models.Provider, error)

	CheckCoverageStatus(ctx context.Context, account id.AccountID) (service.CoverageStatus, error)
	ClaimEligibility(ctx context.Context, account id.AccountID, amount uint64,
		category models.ClaimCategory) (service.Eligibility, error)
	PlatformStats(ctx context.Context) (models.Stats, error)
}

// Handler wires ledger endpoints to the ledger service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a ledger handler with its dependencies.
func New(svc Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: svc,
		logger:  logger,
	}
}

// Register mounts ledger endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/pools", h.HandleCreatePool)
	r.Get("/pools/{poolID}", h.HandleGetPool)
	r.Post("/pools/{poolID}/join", h.HandleJoinPool)
	r.Post("/pools/{poolID}/premium", h.HandlePayPremium)

	r.Post("/claims", h.HandleSubmitClaim)
	r.Get("/claims/{claimID}", h.HandleGetClaim)
	r.Post("/claims/{claimID}/review", h.HandleReviewClaim)

	r.Post("/providers", h.HandleRegisterProvider)
	r.Get("/providers/{accountID}", h.HandleGetProvider)
	r.Post("/providers/{accountID}/verify", h.HandleVerifyProvider)

	r.Get("/members/{accountID}", h.HandleGetMember)
	r.Get("/members/{accountID}/coverage", h.HandleCoverageStatus)
	r.Get("/members/{accountID}/eligibility", h.HandleClaimEligibility)

	r.Get("/stats", h.HandleStats)
}

func (h *Handler) caller(w http.ResponseWriter, r *http.Request) (id.AccountID, bool) {
	caller := requestcontext.Caller(r.Context())
	if caller.IsZero() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return "", false
	}
	return caller, true
}

func poolIDParam(w http.ResponseWriter, r *http.Request) (id.PoolID, bool) {
	poolID, err := id.ParsePoolID(chi.URLParam(r, "poolID"))
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid pool id"))
		return 0, false
	}
	return poolID, true
}

func claimIDParam(w http.ResponseWriter, r *http.Request) (id.ClaimID, bool) {
	claimID, err := id.ParseClaimID(chi.URLParam(r, "claimID"))
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid claim id"))
		return 0, false
	}
	return claimID, true
}

func accountIDParam(w http.ResponseWriter, r *http.Request) (id.AccountID, bool) {
	account, err := id.ParseAccountID(chi.URLParam(r, "accountID"))
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid account id"))
		return "", false
	}
	return account, true
}

// HandleCreatePool handles POST /pools requests. Owner only.
func (h *Handler) HandleCreatePool(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[createPoolRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	var manager id.AccountID
	if req.Manager != "" {
		parsed, err := id.ParseAccountID(req.Manager)
		if err != nil {
			httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid manager account"))
			return
		}
		manager = parsed
	}

	pool, err := h.service.CreatePool(ctx, caller, req.Name, req.TargetDemographic,
		req.limits(), req.BasePremium, req.ReserveRatio, manager)
	if err != nil {
		h.logger.ErrorContext(ctx, "pool creation failed",
			"request_id", requestID,
			"caller", caller,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "pool created",
		"request_id", requestID,
		"caller", caller,
		"pool", pool.ID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusCreated, fromPool(pool))
}

// HandleGetPool handles GET /pools/{poolID} requests.
func (h *Handler) HandleGetPool(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := h.caller(w, r); !ok {
		return
	}
	poolID, ok := poolIDParam(w, r)
	if !ok {
		return
	}

	pool, err := h.service.GetPool(ctx, poolID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if pool == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "pool not found"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromPool(pool))
}

// HandleJoinPool handles POST /pools/{poolID}/join requests.
func (h *Handler) HandleJoinPool(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	poolID, ok := poolIDParam(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[joinPoolRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	member, err := h.service.JoinPool(ctx, caller, poolID, req.Name, req.Age,
		models.CoverageTier(req.Tier), req.Conditions, req.EmergencyContact, req.Location)
	if err != nil {
		h.logger.ErrorContext(ctx, "enrollment failed",
			"request_id", requestID,
			"caller", caller,
			"pool", poolID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "member enrolled",
		"request_id", requestID,
		"caller", caller,
		"pool", poolID,
		"premium", member.MonthlyPremium,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusCreated, fromMember(member))
}

// HandlePayPremium handles POST /pools/{poolID}/premium requests.
func (h *Handler) HandlePayPremium(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	poolID, ok := poolIDParam(w, r)
	if !ok {
		return
	}

	payment, err := h.service.PayPremium(ctx, caller, poolID)
	if err != nil {
		h.logger.ErrorContext(ctx, "premium payment failed",
			"request_id", requestID,
			"caller", caller,
			"pool", poolID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "premium paid",
		"request_id", requestID,
		"caller", caller,
		"pool", poolID,
		"payment", payment.ID,
		"amount", payment.Amount,
	)
	httputil.WriteJSON(w, http.StatusCreated, fromPayment(payment))
}

// HandleSubmitClaim handles POST /claims requests.
func (h *Handler) HandleSubmitClaim(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[submitClaimRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	provider, err := id.ParseAccountID(req.Provider)
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid provider account"))
		return
	}
	if req.Pool == 0 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "pool is required"))
		return
	}

	claim, err := h.service.SubmitClaim(ctx, caller, id.PoolID(req.Pool), provider,
		req.Amount, models.ClaimCategory(req.Category), req.TreatedAt, req.Evidence)
	if err != nil {
		h.logger.ErrorContext(ctx, "claim submission failed",
			"request_id", requestID,
			"caller", caller,
			"pool", req.Pool,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "claim submitted",
		"request_id", requestID,
		"caller", caller,
		"claim", claim.ID,
		"amount", claim.Amount,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusCreated, fromClaim(claim))
}

// HandleGetClaim handles GET /claims/{claimID} requests.
func (h *Handler) HandleGetClaim(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := h.caller(w, r); !ok {
		return
	}
	claimID, ok := claimIDParam(w, r)
	if !ok {
		return
	}

	claim, err := h.service.GetClaim(ctx, claimID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if claim == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeClaimNotFound, "claim not found"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromClaim(claim))
}

// HandleReviewClaim handles POST /claims/{claimID}/review requests.
func (h *Handler) HandleReviewClaim(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	claimID, ok := claimIDParam(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[reviewClaimRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	claim, err := h.service.ReviewClaim(ctx, caller, claimID, req.Approve,
		req.ApprovalAmount, req.DenialReason)
	if err != nil {
		h.logger.ErrorContext(ctx, "claim review failed",
			"request_id", requestID,
			"caller", caller,
			"claim", claimID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "claim reviewed",
		"request_id", requestID,
		"caller", caller,
		"claim", claimID,
		"status", claim.Status,
	)
	httputil.WriteJSON(w, http.StatusOK, fromClaim(claim))
}

// HandleRegisterProvider handles POST /providers requests.
func (h *Handler) HandleRegisterProvider(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[registerProviderRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	provider, err := h.service.RegisterProvider(ctx, caller, req.Name, req.License,
		req.Specialization, req.Location, req.Services, req.Stake)
	if err != nil {
		h.logger.ErrorContext(ctx, "provider registration failed",
			"request_id", requestID,
			"caller", caller,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "provider registered",
		"request_id", requestID,
		"caller", caller,
		"stake", provider.Stake,
	)
	httputil.WriteJSON(w, http.StatusCreated, fromProvider(provider))
}

// HandleGetProvider handles GET /providers/{accountID} requests.
func (h *Handler) HandleGetProvider(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := h.caller(w, r); !ok {
		return
	}
	account, ok := accountIDParam(w, r)
	if !ok {
		return
	}

	provider, err := h.service.GetProvider(ctx, account)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if provider == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidProvider, "provider not found"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromProvider(provider))
}

// HandleVerifyProvider handles POST /providers/{accountID}/verify requests.
// Owner only.
func (h *Handler) HandleVerifyProvider(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	account, ok := accountIDParam(w, r)
	if !ok {
		return
	}

	if err := h.service.VerifyProvider(ctx, caller, account); err != nil {
		h.logger.ErrorContext(ctx, "provider verification failed",
			"request_id", requestID,
			"caller", caller,
			"provider", account,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "provider verified",
		"request_id", requestID,
		"caller", caller,
		"provider", account,
	)
	w.WriteHeader(http.StatusNoContent)
}

// HandleGetMember handles GET /members/{accountID} requests.
func (h *Handler) HandleGetMember(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := h.caller(w, r); !ok {
		return
	}
	account, ok := accountIDParam(w, r)
	if !ok {
		return
	}

	member, err := h.service.GetMember(ctx, account)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if member == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeMemberNotFound, "member not found"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromMember(member))
}

// HandleCoverageStatus handles GET /members/{accountID}/coverage requests.
// Unknown accounts yield the zero status rather than an error.
func (h *Handler) HandleCoverageStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := h.caller(w, r); !ok {
		return
	}
	account, ok := accountIDParam(w, r)
	if !ok {
		return
	}

	status, err := h.service.CheckCoverageStatus(ctx, account)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromCoverageStatus(status))
}

// HandleClaimEligibility handles GET /members/{accountID}/eligibility requests.
// Query parameters: amount (minor units), category.
func (h *Handler) HandleClaimEligibility(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := h.caller(w, r); !ok {
		return
	}
	account, ok := accountIDParam(w, r)
	if !ok {
		return
	}

	amount, err := strconv.ParseUint(r.URL.Query().Get("amount"), 10, 64)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid amount"))
		return
	}
	category := models.ClaimCategory(r.URL.Query().Get("category"))
	if !category.IsValid() {
		httputil.WriteError(w, dErrors.Newf(dErrors.CodeInvalidCoverage, "unknown category %q", category))
		return
	}

	elig, err := h.service.ClaimEligibility(ctx, account, amount, category)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromEligibility(elig))
}

// HandleStats handles GET /stats requests.
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := h.caller(w, r); !ok {
		return
	}

	stats, err := h.service.PlatformStats(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromStats(stats))
}
