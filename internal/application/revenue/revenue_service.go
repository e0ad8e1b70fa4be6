package revenue

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/autocare/platform/internal/domain/revenue"
	"github.com/autocare/platform/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// EntityRevenue is the sync log entity name of daily rollups
const EntityRevenue = "revenue"

// IngestMetrics records server-side ingests
type IngestMetrics interface {
	RecordRevenueIngest(ctx context.Context, outcome string)
}

// Archive stores exported reports
type Archive interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// RenderFunc renders rollups into a report document
type RenderFunc func(rows []revenue.RevenueData) ([]byte, error)

// Scope limits a query to one partner. A nil PartnerID means every partner.
type Scope struct {
	PartnerID *uuid.UUID
}

// ScopeFor returns the query scope of a caller. Admins may pick any partner
// (or none); everybody else is pinned to their own.
func ScopeFor(callerPartnerID uuid.UUID, isAdmin bool, requested *uuid.UUID) Scope {
	if isAdmin {
		return Scope{PartnerID: requested}
	}
	id := callerPartnerID
	return Scope{PartnerID: &id}
}

// RevenueService receives agent rollups and reports on them
type RevenueService struct {
	repo        revenue.Repository
	logRepo     revenue.SyncLogRepository
	metrics     IngestMetrics
	archive     Archive
	render      RenderFunc
	contentType string
	now         func() time.Time
	logger      *zap.Logger
}

// NewRevenueService creates a new RevenueService
func NewRevenueService(repo revenue.Repository, logRepo revenue.SyncLogRepository, logger *zap.Logger) *RevenueService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RevenueService{
		repo:    repo,
		logRepo: logRepo,
		now:     time.Now,
		logger:  logger,
	}
}

// SetMetrics sets the business metrics recorder
func (s *RevenueService) SetMetrics(m IngestMetrics) {
	s.metrics = m
}

// SetExporter configures report rendering. A nil archive skips archiving.
func (s *RevenueService) SetExporter(render RenderFunc, contentType string, archive Archive) {
	s.render = render
	s.contentType = contentType
	s.archive = archive
}

// Ingest upserts a rollup pushed by a device of partnerID. A push computed
// before the stored row is acknowledged with the stored row untouched.
func (s *RevenueService) Ingest(ctx context.Context, partnerID uuid.UUID, req IngestRevenueRequest) (*IngestResult, error) {
	log := revenue.StartSyncLog(partnerID, req.DeviceID, revenue.SyncDirectionReceive, EntityRevenue)
	result, err := s.ingest(ctx, partnerID, req)
	if err != nil {
		log.Failed(err)
	} else {
		log.Succeeded()
	}
	log.Finish()
	if lerr := s.logRepo.Create(ctx, log); lerr != nil {
		s.logger.Warn("Failed to write sync log", zap.Error(lerr))
	}
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.RecordRevenueIngest(ctx, result.Outcome)
	}
	s.logger.Debug("Revenue ingested",
		zap.String("partner_id", partnerID.String()),
		zap.String("device_id", req.DeviceID),
		zap.String("date", req.Date),
		zap.String("outcome", result.Outcome))
	return result, nil
}

func (s *RevenueService) ingest(ctx context.Context, partnerID uuid.UUID, req IngestRevenueRequest) (*IngestResult, error) {
	incoming, err := revenue.NewRevenueData(partnerID, req.DeviceID, req.Date, normalizeFigures(req.Figures), req.ComputedAt)
	if err != nil {
		return nil, err
	}

	// one retry covers a concurrent first push of the same key
	for attempt := 0; attempt < 2; attempt++ {
		stored, err := s.repo.FindByKey(ctx, partnerID, req.DeviceID, req.Date)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}

		outcome := OutcomeCreated
		target := incoming
		switch {
		case stored == nil:
			incoming.MarkSynced(s.now())
		case incoming.IsStaleAgainst(stored):
			return &IngestResult{Outcome: OutcomeStale, Data: ToRevenueResponse(stored)}, nil
		default:
			target = stored
			outcome = OutcomeUnchanged
			if stored.ApplyFigures(incoming.Figures, incoming.ComputedAt) {
				outcome = OutcomeUpdated
			}
			stored.ComputedAt = incoming.ComputedAt
			stored.MarkSynced(s.now())
		}

		err = s.repo.Save(ctx, target)
		if errors.Is(err, shared.ErrAlreadyExists) && stored == nil {
			continue
		}
		if err != nil {
			return nil, err
		}
		return &IngestResult{Outcome: outcome, Data: ToRevenueResponse(target)}, nil
	}
	return nil, shared.NewDomainError("CONFLICT", "Concurrent update of the same revenue day")
}

// List returns a page of rollups inside the scope
func (s *RevenueService) List(ctx context.Context, scope Scope, filter RevenueListFilter) (*shared.Paginated[RevenueResponse], error) {
	f, err := toDomainFilter(scope, filter)
	if err != nil {
		return nil, err
	}
	f.Page = filter.Page
	f.PageSize = filter.PageSize
	f.OrderBy = "date"
	f.OrderDir = "desc"
	f.Normalize()

	rows, total, err := s.repo.FindAll(ctx, f)
	if err != nil {
		return nil, err
	}
	items := make([]RevenueResponse, len(rows))
	for i := range rows {
		items[i] = ToRevenueResponse(&rows[i])
	}
	page := shared.NewPaginated(items, total, f.Page, f.PageSize)
	return &page, nil
}

// Summary sums every rollup in the range, with one point per day
func (s *RevenueService) Summary(ctx context.Context, scope Scope, filter RevenueListFilter) (*RevenueSummary, error) {
	rows, err := s.collect(ctx, scope, filter)
	if err != nil {
		return nil, err
	}

	sum := &RevenueSummary{
		From:              filter.From,
		To:                filter.To,
		TotalRevenue:      decimal.Zero,
		TotalTax:          decimal.Zero,
		TotalDiscount:     decimal.Zero,
		RefundAmount:      decimal.Zero,
		AverageOrderValue: decimal.Zero,
		PaymentBreakdown:  make(map[string]decimal.Decimal),
		CategoryBreakdown: make(map[string]decimal.Decimal),
		Days:              []DayPoint{},
	}
	devices := make(map[string]struct{})
	days := make(map[string]*DayPoint)
	for i := range rows {
		r := &rows[i]
		devices[r.PartnerID.String()+"/"+r.DeviceID] = struct{}{}
		sum.TotalRevenue = sum.TotalRevenue.Add(r.TotalRevenue)
		sum.TotalTax = sum.TotalTax.Add(r.TotalTax)
		sum.TotalDiscount = sum.TotalDiscount.Add(r.TotalDiscount)
		sum.OrderCount += r.OrderCount
		sum.ItemsSold += r.ItemsSold
		sum.RefundCount += r.RefundCount
		sum.RefundAmount = sum.RefundAmount.Add(r.RefundAmount)
		for k, v := range r.PaymentBreakdown {
			sum.PaymentBreakdown[k] = sum.PaymentBreakdown[k].Add(v)
		}
		for k, v := range r.CategoryBreakdown {
			sum.CategoryBreakdown[k] = sum.CategoryBreakdown[k].Add(v)
		}

		d, ok := days[r.Date]
		if !ok {
			d = &DayPoint{Date: r.Date, Revenue: decimal.Zero}
			days[r.Date] = d
		}
		d.Revenue = d.Revenue.Add(r.TotalRevenue)
		d.Orders += r.OrderCount
		d.RefundCount += r.RefundCount
	}
	sum.Devices = len(devices)
	if sum.OrderCount > 0 {
		sum.AverageOrderValue = sum.TotalRevenue.Div(decimal.NewFromInt(int64(sum.OrderCount))).Round(2)
	}
	for _, d := range days {
		sum.Days = append(sum.Days, *d)
	}
	sort.Slice(sum.Days, func(i, j int) bool { return sum.Days[i].Date < sum.Days[j].Date })
	return sum, nil
}

// Export renders the rollups of the range and archives the document
func (s *RevenueService) Export(ctx context.Context, scope Scope, filter RevenueListFilter) (*ExportResult, error) {
	if s.render == nil {
		return nil, shared.ErrUnavailable
	}
	rows, err := s.collect(ctx, scope, filter)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Date != rows[j].Date {
			return rows[i].Date < rows[j].Date
		}
		return rows[i].DeviceID < rows[j].DeviceID
	})
	data, err := s.render(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to render revenue report: %w", err)
	}

	owner := "all"
	if scope.PartnerID != nil {
		owner = scope.PartnerID.String()
	}
	from, to := filter.From, filter.To
	if from == "" {
		from = "start"
	}
	if to == "" {
		to = "today"
	}
	filename := fmt.Sprintf("revenue_%s_%s.xlsx", from, to)
	result := &ExportResult{Filename: filename, ContentType: s.contentType, Data: data}

	if s.archive != nil {
		key := fmt.Sprintf("revenue/%s/%s_%s_%d.xlsx", owner, from, to, s.now().Unix())
		location, err := s.archive.Put(ctx, key, data, s.contentType)
		if err != nil {
			// the caller still gets the document
			s.logger.Warn("Failed to archive revenue report", zap.String("key", key), zap.Error(err))
		} else {
			result.ArchivedAt = location
		}
	}
	return result, nil
}

// ListSyncLogs returns a page of sync logs inside the scope
func (s *RevenueService) ListSyncLogs(ctx context.Context, scope Scope, filter SyncLogListFilter) (*shared.Paginated[revenue.SyncLog], error) {
	f := revenue.SyncLogFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  "started_at",
			OrderDir: "desc",
		},
		PartnerID: scope.PartnerID,
		DeviceID:  filter.DeviceID,
		Status:    revenue.SyncOutcome(filter.Status),
	}
	f.Normalize()
	logs, total, err := s.logRepo.FindAll(ctx, f)
	if err != nil {
		return nil, err
	}
	page := shared.NewPaginated(logs, total, f.Page, f.PageSize)
	return &page, nil
}

const collectPageSize = 100

// collect walks every page of the filtered rollups
func (s *RevenueService) collect(ctx context.Context, scope Scope, filter RevenueListFilter) ([]revenue.RevenueData, error) {
	f, err := toDomainFilter(scope, filter)
	if err != nil {
		return nil, err
	}
	f.OrderBy = "date"
	f.OrderDir = "asc"
	f.PageSize = collectPageSize
	var all []revenue.RevenueData
	for page := 1; ; page++ {
		f.Page = page
		rows, total, err := s.repo.FindAll(ctx, f)
		if err != nil {
			return nil, err
		}
		all = append(all, rows...)
		if len(rows) < collectPageSize || int64(len(all)) >= total {
			return all, nil
		}
	}
}

func toDomainFilter(scope Scope, filter RevenueListFilter) (revenue.Filter, error) {
	if filter.From != "" {
		if _, err := revenue.ParseDate(filter.From); err != nil {
			return revenue.Filter{}, err
		}
	}
	if filter.To != "" {
		if _, err := revenue.ParseDate(filter.To); err != nil {
			return revenue.Filter{}, err
		}
	}
	if filter.From != "" && filter.To != "" && filter.From > filter.To {
		return revenue.Filter{}, shared.NewDomainError("INVALID_DATE_RANGE", "From must not be after to")
	}
	return revenue.Filter{
		Filter:    shared.Filter{Filters: map[string]any{}},
		PartnerID: scope.PartnerID,
		DeviceID:  filter.DeviceID,
		From:      filter.From,
		To:        filter.To,
		Status:    revenue.SyncStatus(filter.Status),
	}, nil
}

// normalizeFigures fills nil breakdowns so stored rows always carry JSON objects
func normalizeFigures(f revenue.Figures) revenue.Figures {
	if f.PaymentBreakdown == nil {
		f.PaymentBreakdown = map[string]decimal.Decimal{}
	}
	if f.CategoryBreakdown == nil {
		f.CategoryBreakdown = map[string]decimal.Decimal{}
	}
	if f.HourlyBreakdown == nil {
		f.HourlyBreakdown = []decimal.Decimal{}
	}
	return f
}
