package inbound

import (
	"strconv"

	"github.com/shandysiswandi/otpguard/internal/pkg/router"
	"github.com/shandysiswandi/otpguard/internal/verification/usecase"
)

const headerIdempotencyKey = "Idempotency-Key"

// HTTPEndpoint exposes HTTP handlers for code issuance, verification and the audit trail.
type HTTPEndpoint struct {
	uc uc
}

// SendCode issues a verification code and hands it to the delivery channel.
// @Summary Send verification code
// @Description Issues a one-time code for the identifier. An Idempotency-Key header makes retries return the first result.
// @Tags Verification
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Client generated idempotency key"
// @Param request body SendCodeRequest true "Send code payload"
// @Success 200 {object} router.successResponse{data=SendCodeResponse} "Code issued"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 409 {object} router.errorResponse "Idempotency key conflict"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 423 {object} router.errorResponse "Identifier is blocked"
// @Failure 429 {object} router.errorResponse "Too many code requests"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/otp/send [post]
func (h *HTTPEndpoint) SendCode(r *router.Request) (any, error) {
	var req SendCodeRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.SendCode(r.Context(), usecase.SendCodeInput{
		Identifier:     req.Identifier,
		Purpose:        req.Purpose,
		Channel:        req.Channel,
		IdempotencyKey: r.GetHeader(headerIdempotencyKey),
	})
	if err != nil {
		return nil, err
	}

	return SendCodeResponse{
		TokenID:   resp.TokenID,
		ExpiresAt: resp.ExpiresAt,
		Code:      resp.Code,
	}, nil
}

// Verify checks a code against its session.
// @Summary Verify code
// @Description Verifies the code. A wrong code returns verified=false with the attempts left; the last wrong attempt blocks the identifier.
// @Tags Verification
// @Accept json
// @Produce json
// @Param request body VerifyRequest true "Verify payload"
// @Success 200 {object} router.successResponse{data=VerifyResponse} "Verification result"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 404 {object} router.errorResponse "Session not found or already used"
// @Failure 410 {object} router.errorResponse "Code expired"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 423 {object} router.errorResponse "Max attempts reached"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/otp/verify [post]
func (h *HTTPEndpoint) Verify(r *router.Request) (any, error) {
	var req VerifyRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Verify(r.Context(), usecase.VerifyInput{
		TokenID: req.TokenID,
		Code:    req.Code,
	})
	if err != nil {
		return nil, err
	}

	return VerifyResponse{
		Verified:          resp.Verified,
		AttemptsRemaining: resp.AttemptsRemaining,
	}, nil
}

// Logs lists audit entries, newest first.
// @Summary List audit log
// @Tags Verification, Audit
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Newest entries to return (0 = all, max 500)"
// @Success 200 {object} router.successResponse{data=LogsResponse} "Audit entries"
// @Failure 401 {object} router.errorResponse "Authentication required"
// @Failure 403 {object} router.errorResponse "Account not allowed"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Router /api/v1/otp/logs [get]
func (h *HTTPEndpoint) Logs(r *router.Request) (any, error) {
	limit, err := r.GetQueryInt32("limit")
	if err != nil {
		return nil, err
	}

	entries, err := h.uc.Logs(r.Context(), usecase.LogsInput{Limit: int(limit)})
	if err != nil {
		return nil, err
	}

	out := make(LogsResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, LogEntryResponse{
			ID:         strconv.FormatInt(e.ID, 10),
			Timestamp:  e.Timestamp,
			Identifier: e.Identifier,
			Purpose:    e.Purpose.String(),
			Channel:    e.Channel.String(),
			Status:     e.Status.String(),
			Metadata:   e.Metadata,
		})
	}

	return out, nil
}

// Stats returns aggregate counts over the retained audit log.
// @Summary Audit statistics
// @Tags Verification, Audit
// @Produce json
// @Security BearerAuth
// @Success 200 {object} router.successResponse{data=StatsResponse} "Statistics"
// @Failure 401 {object} router.errorResponse "Authentication required"
// @Failure 403 {object} router.errorResponse "Account not allowed"
// @Router /api/v1/otp/stats [get]
func (h *HTTPEndpoint) Stats(r *router.Request) (any, error) {
	st, err := h.uc.Stats(r.Context())
	if err != nil {
		return nil, err
	}

	return StatsResponse{
		TotalSent:          st.TotalSent,
		TotalVerified:      st.TotalVerified,
		TotalFailed:        st.TotalFailed,
		TotalBlocked:       st.TotalBlocked,
		TotalExpired:       st.TotalExpired,
		SuccessRatePercent: st.SuccessRatePercent,
	}, nil
}
