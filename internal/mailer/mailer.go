// Package mailer renders and delivers candidate emails.
package mailer

import (
	"context"

	"github.com/yoockh/recruitportal/internal/pipeline"
)

// Notifier sends one templated email. Implementations return an error on any
// delivery failure; callers decide whether to retry.
type Notifier interface {
	Send(ctx context.Context, kind pipeline.EmailKind, recipientEmail, recipientName string, data map[string]string) error
}
