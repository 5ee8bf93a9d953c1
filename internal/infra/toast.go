package infra

import (
	"go.uber.org/zap"

	"github.com/focusgate/focusgate/internal/domain"
)

// NotifyToast implements domain.ToastSink with platform desktop
// notifications. Fire-and-forget: delivery runs off the enforcement path
// and failures are only logged.
type NotifyToast struct {
	logger *zap.Logger
}

// NewNotifyToast creates the platform toast sink.
func NewNotifyToast(logger *zap.Logger) *NotifyToast {
	return &NotifyToast{logger: logger}
}

// Denied shows a blocked-app notification.
func (t *NotifyToast) Denied(displayName string) {
	go func() {
		if err := notify("Focus session", displayName+" is blocked"); err != nil {
			t.logger.Debug("toast delivery failed",
				zap.String("app", displayName),
				zap.Error(err))
		}
	}()
}

// Ensure NotifyToast implements domain.ToastSink.
var _ domain.ToastSink = (*NotifyToast)(nil)
