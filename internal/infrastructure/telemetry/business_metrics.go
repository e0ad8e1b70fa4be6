package telemetry

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when no meter is given
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// Attribute keys shared by business metrics
var (
	AttrPartnerID     = attribute.Key("partner_id")
	AttrPaymentMethod = attribute.Key("payment_method")
	AttrStatus        = attribute.Key("status")
	AttrOutcome       = attribute.Key("outcome")
)

// BusinessMetrics records sales, revenue sync and broadcast counters
type BusinessMetrics struct {
	salesCompleted   metric.Int64Counter
	salesAmount      metric.Float64Counter
	revenuePushes    metric.Int64Counter
	revenueIngests   metric.Int64Counter
	broadcastSent    metric.Int64Counter
	broadcastDropped metric.Int64Counter
	openSockets      metric.Int64Gauge
}

// NewBusinessMetrics creates the instruments on meter
func NewBusinessMetrics(meter metric.Meter) (*BusinessMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	var (
		bm  BusinessMetrics
		err error
	)
	if bm.salesCompleted, err = meter.Int64Counter("autocare_sales_completed_total",
		metric.WithDescription("Completed sales"), metric.WithUnit("{sales}")); err != nil {
		return nil, instrumentErr("autocare_sales_completed_total", err)
	}
	if bm.salesAmount, err = meter.Float64Counter("autocare_sales_amount_total",
		metric.WithDescription("Completed sales amount"), metric.WithUnit("{currency}")); err != nil {
		return nil, instrumentErr("autocare_sales_amount_total", err)
	}
	if bm.revenuePushes, err = meter.Int64Counter("autocare_revenue_pushes_total",
		metric.WithDescription("Revenue rollups pushed by the agent"), metric.WithUnit("{rows}")); err != nil {
		return nil, instrumentErr("autocare_revenue_pushes_total", err)
	}
	if bm.revenueIngests, err = meter.Int64Counter("autocare_revenue_ingests_total",
		metric.WithDescription("Revenue rollups received by the platform"), metric.WithUnit("{rows}")); err != nil {
		return nil, instrumentErr("autocare_revenue_ingests_total", err)
	}
	if bm.broadcastSent, err = meter.Int64Counter("autocare_broadcast_delivered_total",
		metric.WithDescription("Broadcast messages queued on sockets"), metric.WithUnit("{messages}")); err != nil {
		return nil, instrumentErr("autocare_broadcast_delivered_total", err)
	}
	if bm.broadcastDropped, err = meter.Int64Counter("autocare_broadcast_dropped_total",
		metric.WithDescription("Broadcast messages dropped on full queues"), metric.WithUnit("{messages}")); err != nil {
		return nil, instrumentErr("autocare_broadcast_dropped_total", err)
	}
	if bm.openSockets, err = meter.Int64Gauge("autocare_broadcast_open_sockets",
		metric.WithDescription("Open WebSocket connections"), metric.WithUnit("{connections}")); err != nil {
		return nil, instrumentErr("autocare_broadcast_open_sockets", err)
	}
	return &bm, nil
}

func instrumentErr(name string, err error) error {
	return fmt.Errorf("failed to create instrument %s: %w", name, err)
}

// RecordSaleCompleted counts a completed sale and its total
func (bm *BusinessMetrics) RecordSaleCompleted(ctx context.Context, partnerID, paymentMethod string, total decimal.Decimal) {
	attrs := metric.WithAttributes(AttrPartnerID.String(partnerID), AttrPaymentMethod.String(paymentMethod))
	bm.salesCompleted.Add(ctx, 1, attrs)
	bm.salesAmount.Add(ctx, total.InexactFloat64(), attrs)
}

// RecordRevenuePush counts agent push results by status (synced or failed)
func (bm *BusinessMetrics) RecordRevenuePush(ctx context.Context, status string, n int) {
	if n <= 0 {
		return
	}
	bm.revenuePushes.Add(ctx, int64(n), metric.WithAttributes(AttrStatus.String(status)))
}

// RecordRevenueIngest counts server-side ingests by outcome (stored or stale)
func (bm *BusinessMetrics) RecordRevenueIngest(ctx context.Context, outcome string) {
	bm.revenueIngests.Add(ctx, 1, metric.WithAttributes(AttrOutcome.String(outcome)))
}

// RecordBroadcastDelivered implements realtime.Metrics
func (bm *BusinessMetrics) RecordBroadcastDelivered(ctx context.Context, delivered, dropped int) {
	if delivered > 0 {
		bm.broadcastSent.Add(ctx, int64(delivered))
	}
	if dropped > 0 {
		bm.broadcastDropped.Add(ctx, int64(dropped))
	}
}

// SetOpenSockets implements realtime.Metrics
func (bm *BusinessMetrics) SetOpenSockets(n int) {
	bm.openSockets.Record(context.Background(), int64(n))
}
