package infra

import (
	"go.uber.org/zap"

	"github.com/focusgate/focusgate/internal/domain"
)

// GeometryOracle implements domain.FullscreenOracle with the platform
// window-geometry heuristic. Known false negative: a window maximized
// without entering native fullscreen does not trigger the bypass. Query
// failures read as "distractable" so enforcement stays on.
type GeometryOracle struct {
	query  func() (bool, error)
	logger *zap.Logger
}

// NewGeometryOracle creates the platform fullscreen oracle.
func NewGeometryOracle(logger *zap.Logger) *GeometryOracle {
	return &GeometryOracle{query: foregroundFullscreen, logger: logger}
}

// ForegroundUndistractable reports whether the frontmost window is
// fullscreen.
func (o *GeometryOracle) ForegroundUndistractable() bool {
	full, err := o.query()
	if err != nil {
		o.logger.Debug("fullscreen query failed", zap.Error(err))
		return false
	}
	return full
}

// Ensure GeometryOracle implements domain.FullscreenOracle.
var _ domain.FullscreenOracle = (*GeometryOracle)(nil)
