package publisher

import (
	"context"

	"fleet-dispatch/module/core/domain"
)

type AlertPublisher interface {
	PublishAlert(ctx context.Context, alert *domain.RegionAlert) error
}
