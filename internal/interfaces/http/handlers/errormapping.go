package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"fiscus/internal/application/provisioning"
	"fiscus/internal/domain/authz"
	"fiscus/internal/domain/billing"
	apperrors "fiscus/internal/shared/errors"
	"fiscus/internal/shared/utils"
)

// respondWithError maps domain and workflow errors onto the API error
// vocabulary before rendering. Unmapped errors render as opaque internal
// failures.
func respondWithError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, authz.ErrRoleNotFound),
		errors.Is(err, authz.ErrMemberNotFound),
		errors.Is(err, provisioning.ErrWorkflowNotFound):
		utils.ErrorResponseWithError(c, apperrors.NewNotFoundError(err.Error()))
	case errors.Is(err, authz.ErrSystemRoleImmutable),
		errors.Is(err, provisioning.ErrEmailImmutable):
		utils.ErrorResponseWithError(c, apperrors.NewForbiddenError(err.Error()))
	case errors.Is(err, billing.ErrQuotaExceeded):
		utils.ErrorResponseWithError(c, apperrors.NewQuotaExceededError(err.Error()))
	case errors.Is(err, authz.ErrInvalidPermission),
		errors.Is(err, authz.ErrAccountNotOverridden),
		errors.Is(err, provisioning.ErrDraftInvalid):
		utils.ErrorResponseWithError(c, apperrors.NewValidationError(err.Error()))
	case errors.Is(err, provisioning.ErrInvalidTransition),
		errors.Is(err, provisioning.ErrConcurrentSubmit),
		errors.Is(err, provisioning.ErrMemberEmailTaken):
		utils.ErrorResponseWithError(c, apperrors.NewConflictError(err.Error()))
	case errors.Is(err, provisioning.ErrTransientCommit):
		utils.ErrorResponseWithError(c, apperrors.NewInternalError("commit failed, please retry", err.Error()))
	default:
		utils.ErrorResponseWithError(c, err)
	}
}
