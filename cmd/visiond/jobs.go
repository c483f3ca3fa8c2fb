package main

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/platinummonkey/visionrecords/pkg/observability"
	"github.com/platinummonkey/visionrecords/pkg/records"
)

const gaugeRefreshTimeout = 10 * time.Second

// newGaugeRefresher schedules the record count gauge refresh. It returns nil
// when spec is empty or metrics are disabled.
func newGaugeRefresher(spec string, svc *records.Service, metrics *observability.Metrics, logger *observability.Logger) (*cron.Cron, error) {
	if spec == "" || metrics == nil {
		return nil, nil
	}

	c := cron.New()
	if _, err := c.AddFunc(spec, func() { refreshGauges(svc, metrics, logger) }); err != nil {
		return nil, fmt.Errorf("failed to schedule gauge refresh: %w", err)
	}
	return c, nil
}

func refreshGauges(svc *records.Service, metrics *observability.Metrics, logger *observability.Logger) {
	defer observability.RecoverPanic(logger, "record gauge refresh")

	ctx, cancel := context.WithTimeout(context.Background(), gaugeRefreshTimeout)
	defer cancel()

	n, err := svc.GetRecordCount(ctx)
	if err != nil {
		logger.WithError(err).Warn("Failed to refresh record gauge")
		return
	}
	metrics.SetRecordsTotal(n)
}
