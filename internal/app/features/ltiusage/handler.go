// internal/app/features/ltiusage/handler.go
package ltiusage

import (
	"context"

	uierrors "github.com/dalemusser/ltiusage/internal/app/features/errors"
	"github.com/dalemusser/ltiusage/internal/app/store/queries/usagepages"
	"github.com/dalemusser/ltiusage/internal/app/system/paging"
	"go.uber.org/zap"
)

// ActivityDeleter removes an LTI activity by course-module id.
type ActivityDeleter interface {
	Delete(ctx context.Context, cmid int64) error
}

type Handler struct {
	Pages      *usagepages.Service
	Activities ActivityDeleter
	Log        *zap.Logger
	ErrLog     *uierrors.ErrorLogger

	// MaxPerPage caps perpage on the JSON service. It never exceeds
	// paging.MaxPageSize.
	MaxPerPage int
}

// NewHandler constructs the LTI usage report handler.
func NewHandler(pages *usagepages.Service, activities ActivityDeleter, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Pages:      pages,
		Activities: activities,
		Log:        logger,
		ErrLog:     errLog,
		MaxPerPage: paging.MaxPageSize,
	}
}
