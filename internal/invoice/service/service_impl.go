package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	clientdomain "github.com/MaverickDev-J/hrm/internal/client/domain"
	"github.com/MaverickDev-J/hrm/internal/config"
	"github.com/MaverickDev-J/hrm/internal/invoice/domain"
	"github.com/MaverickDev-J/hrm/internal/observability/metrics"
	"github.com/MaverickDev-J/hrm/internal/storage"
	"github.com/MaverickDev-J/hrm/internal/tenantctx"
	"github.com/MaverickDev-J/hrm/pkg/db"
	"github.com/MaverickDev-J/hrm/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const invoiceDateLayout = "2006-01-02"

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Config     config.Config
	Repo       domain.Repository
	Aggregator domain.Aggregator
	Renderer   domain.Renderer
	Store      storage.Store
	Metrics    *metrics.Metrics `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	cfg        config.Config
	repo       domain.Repository
	aggregator domain.Aggregator
	renderer   domain.Renderer
	store      storage.Store
	metrics    *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("invoice.service"),
		genID:      p.GenID,
		cfg:        p.Config,
		repo:       p.Repo,
		aggregator: p.Aggregator,
		renderer:   p.Renderer,
		store:      p.Store,
		metrics:    p.Metrics,
	}
}

// Generate aggregates, renders and persists a new invoice. The database
// unique index on (company_id, invoice_number) is the authoritative
// conflict guard; the pre-check only gives earlier feedback.
func (s *Service) Generate(ctx context.Context, req domain.GenerateRequest) (domain.Invoice, error) {
	companyID, ok := tenantctx.CompanyScope(ctx)
	if !ok {
		return domain.Invoice{}, domain.ErrInvalidCompany
	}

	number := strings.TrimSpace(req.InvoiceNumber)
	if number == "" {
		return domain.Invoice{}, domain.ErrInvalidNumber
	}
	date, err := time.Parse(invoiceDateLayout, strings.TrimSpace(req.InvoiceDate))
	if err != nil {
		return domain.Invoice{}, domain.ErrInvalidDate
	}
	status := strings.ToUpper(strings.TrimSpace(req.Status))
	if status == "" {
		status = domain.StatusDraft
	}
	if status != domain.StatusDraft && status != domain.StatusGenerated {
		return domain.Invoice{}, domain.ErrInvalidStatus
	}
	if err := validateTotals(req.Totals); err != nil {
		return domain.Invoice{}, err
	}
	candidateIDs, err := parseCandidateIDs(req.CandidateIDs)
	if err != nil {
		return domain.Invoice{}, err
	}
	clientID, err := snowflake.ParseString(strings.TrimSpace(req.ClientID))
	if err != nil || clientID == 0 {
		return domain.Invoice{}, domain.ErrInvalidCandidate
	}

	taken, err := s.repo.NumberExists(ctx, s.db, companyID, number, 0)
	if err != nil {
		return domain.Invoice{}, err
	}
	if taken {
		return domain.Invoice{}, domain.ErrNumberTaken
	}

	snapshot, err := s.aggregator.Prepare(ctx, s.db, companyID, clientID, candidateIDs, req.Totals, number, date)
	if err != nil {
		return domain.Invoice{}, err
	}

	encodedSnapshot, err := domain.EncodeSnapshot(snapshot)
	if err != nil {
		return domain.Invoice{}, err
	}
	encodedIDs, err := domain.EncodeCandidateIDs(candidateIDs)
	if err != nil {
		return domain.Invoice{}, err
	}

	// Render under a scratch locator owned by this call alone. Two
	// callers racing on the same number must never touch each other's
	// artifact; the loser cleans up only its own scratch file.
	locator := s.artifactLocator(companyID, number, false)
	scratch := s.scratchLocator(companyID)
	if err := s.renderer.Render(ctx, snapshot, scratch); err != nil {
		return domain.Invoice{}, err
	}

	now := time.Now().UTC()
	invoice := domain.Invoice{
		ID:            s.genID.Generate(),
		CompanyID:     companyID,
		ClientID:      clientID,
		InvoiceNumber: number,
		InvoiceDate:   date,
		Status:        status,
		CandidateIDs:  encodedIDs,
		Subtotal:      req.Totals.Subtotal,
		CGSTAmount:    req.Totals.CGSTAmount,
		SGSTAmount:    req.Totals.SGSTAmount,
		IGSTAmount:    req.Totals.IGSTAmount,
		GrandTotal:    req.Totals.GrandTotal,
		Snapshot:      datatypes.JSON(encodedSnapshot),
		FileURL:       s.fileURL(locator),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Insert(ctx, s.db, &invoice); err != nil {
		s.removeArtifact(ctx, scratch)
		if db.IsDuplicateKeyErr(err) {
			return domain.Invoice{}, domain.ErrNumberTaken
		}
		return domain.Invoice{}, err
	}

	if err := s.store.Rename(scratch, locator); err != nil {
		// A persisted invoice must reference a complete artifact.
		if delErr := s.repo.Delete(ctx, s.db, invoice.ID); delErr != nil {
			s.log.Error("invoice rollback failed after artifact promote error",
				zap.String("invoice_id", invoice.ID.String()),
				zap.Error(delErr),
			)
		}
		s.removeArtifact(ctx, scratch)
		return domain.Invoice{}, err
	}

	s.metrics.RecordInvoiceGenerated(ctx, status)
	s.log.Info("invoice generated",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("invoice_number", number),
		zap.String("status", status),
	)
	return invoice, nil
}

// PreviewDraft renders a disposable artifact without creating an
// invoice row. Preview locators are not collision-safe across callers
// reusing the same number; they are garbage-collected out of band.
func (s *Service) PreviewDraft(ctx context.Context, req domain.PreviewRequest) (domain.PreviewResponse, error) {
	companyID, ok := tenantctx.CompanyScope(ctx)
	if !ok {
		return domain.PreviewResponse{}, domain.ErrInvalidCompany
	}

	number := strings.TrimSpace(req.InvoiceNumber)
	if number == "" {
		return domain.PreviewResponse{}, domain.ErrInvalidNumber
	}
	date, err := time.Parse(invoiceDateLayout, strings.TrimSpace(req.InvoiceDate))
	if err != nil {
		return domain.PreviewResponse{}, domain.ErrInvalidDate
	}
	if err := validateTotals(req.Totals); err != nil {
		return domain.PreviewResponse{}, err
	}
	candidateIDs, err := parseCandidateIDs(req.CandidateIDs)
	if err != nil {
		return domain.PreviewResponse{}, err
	}
	clientID, err := snowflake.ParseString(strings.TrimSpace(req.ClientID))
	if err != nil || clientID == 0 {
		return domain.PreviewResponse{}, domain.ErrInvalidCandidate
	}

	snapshot, err := s.aggregator.Prepare(ctx, s.db, companyID, clientID, candidateIDs, req.Totals, number, date)
	if err != nil {
		return domain.PreviewResponse{}, err
	}

	locator := s.artifactLocator(companyID, number, true)
	if err := s.renderer.Render(ctx, snapshot, locator); err != nil {
		return domain.PreviewResponse{}, err
	}

	return domain.PreviewResponse{
		Snapshot: snapshot,
		FileURL:  s.fileURL(locator),
	}, nil
}

// Update re-aggregates and re-renders a DRAFT invoice with merged
// fields, replacing the previous artifact. Changing the number re-runs
// the uniqueness check excluding the invoice's own row.
func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (domain.Invoice, error) {
	invoiceID, err := parseInvoiceID(req.ID)
	if err != nil {
		return domain.Invoice{}, err
	}

	var (
		updated    domain.Invoice
		oldLocator string
		newLocator string
		scratch    string
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoice, err := s.loadOwned(ctx, tx, invoiceID, true)
		if err != nil {
			return err
		}
		if invoice.Status != domain.StatusDraft {
			return domain.ErrInvalidState
		}

		number := invoice.InvoiceNumber
		if req.InvoiceNumber != nil {
			number = strings.TrimSpace(*req.InvoiceNumber)
			if number == "" {
				return domain.ErrInvalidNumber
			}
		}
		date := invoice.InvoiceDate
		if req.InvoiceDate != nil {
			date, err = time.Parse(invoiceDateLayout, strings.TrimSpace(*req.InvoiceDate))
			if err != nil {
				return domain.ErrInvalidDate
			}
		}
		totals := invoice.TotalsBlock()
		if req.Totals != nil {
			if err := validateTotals(*req.Totals); err != nil {
				return err
			}
			totals = *req.Totals
		}
		candidateIDs, err := invoice.DecodeCandidateIDs()
		if err != nil {
			return err
		}
		if req.CandidateIDs != nil {
			candidateIDs, err = parseCandidateIDs(*req.CandidateIDs)
			if err != nil {
				return err
			}
		}

		if number != invoice.InvoiceNumber {
			taken, err := s.repo.NumberExists(ctx, tx, invoice.CompanyID, number, invoice.ID)
			if err != nil {
				return err
			}
			if taken {
				return domain.ErrNumberTaken
			}
		}

		snapshot, err := s.aggregator.Prepare(ctx, tx, invoice.CompanyID, invoice.ClientID, candidateIDs, totals, number, date)
		if err != nil {
			return err
		}
		encodedSnapshot, err := domain.EncodeSnapshot(snapshot)
		if err != nil {
			return err
		}
		encodedIDs, err := domain.EncodeCandidateIDs(candidateIDs)
		if err != nil {
			return err
		}

		// The new artifact is staged under a scratch locator so a
		// rolled-back update leaves the current artifact untouched.
		oldLocator = s.artifactLocator(invoice.CompanyID, invoice.InvoiceNumber, false)
		newLocator = s.artifactLocator(invoice.CompanyID, number, false)
		scratch = s.scratchLocator(invoice.CompanyID)
		if err := s.renderer.Render(ctx, snapshot, scratch); err != nil {
			return err
		}

		invoice.InvoiceNumber = number
		invoice.InvoiceDate = date
		invoice.CandidateIDs = encodedIDs
		invoice.Subtotal = totals.Subtotal
		invoice.CGSTAmount = totals.CGSTAmount
		invoice.SGSTAmount = totals.SGSTAmount
		invoice.IGSTAmount = totals.IGSTAmount
		invoice.GrandTotal = totals.GrandTotal
		invoice.Snapshot = datatypes.JSON(encodedSnapshot)
		invoice.FileURL = s.fileURL(newLocator)
		invoice.UpdatedAt = time.Now().UTC()

		if err := s.repo.Update(ctx, tx, invoice); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return domain.ErrNumberTaken
			}
			return err
		}
		updated = *invoice
		return nil
	})
	if err != nil {
		if scratch != "" {
			s.removeArtifact(ctx, scratch)
		}
		return domain.Invoice{}, err
	}

	if err := s.store.Rename(scratch, newLocator); err != nil {
		s.log.Error("artifact promote failed",
			zap.String("invoice_id", updated.ID.String()),
			zap.String("locator", newLocator),
			zap.Error(err),
		)
		s.removeArtifact(ctx, scratch)
		return domain.Invoice{}, err
	}
	if oldLocator != newLocator {
		s.removeArtifact(ctx, oldLocator)
	}
	return updated, nil
}

// Finalize moves a DRAFT invoice to GENERATED. Snapshot and artifact
// are immutable from this point.
func (s *Service) Finalize(ctx context.Context, id string) (domain.Invoice, error) {
	invoiceID, err := parseInvoiceID(id)
	if err != nil {
		return domain.Invoice{}, err
	}

	var finalized domain.Invoice
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoice, err := s.loadOwned(ctx, tx, invoiceID, true)
		if err != nil {
			return err
		}
		if invoice.Status != domain.StatusDraft {
			return domain.ErrInvalidState
		}

		invoice.Status = domain.StatusGenerated
		invoice.UpdatedAt = time.Now().UTC()
		if err := s.repo.Update(ctx, tx, invoice); err != nil {
			return err
		}
		finalized = *invoice
		return nil
	})
	if err != nil {
		return domain.Invoice{}, err
	}

	s.metrics.RecordInvoiceGenerated(ctx, domain.StatusGenerated)
	return finalized, nil
}

// Send moves a GENERATED invoice to SENT. Sending an already SENT
// invoice returns it unchanged.
func (s *Service) Send(ctx context.Context, id string) (domain.Invoice, error) {
	invoiceID, err := parseInvoiceID(id)
	if err != nil {
		return domain.Invoice{}, err
	}

	var sent domain.Invoice
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoice, err := s.loadOwned(ctx, tx, invoiceID, true)
		if err != nil {
			return err
		}
		if invoice.Status == domain.StatusSent {
			sent = *invoice
			return nil
		}
		if invoice.Status != domain.StatusGenerated {
			return domain.ErrInvalidState
		}

		now := time.Now().UTC()
		invoice.Status = domain.StatusSent
		invoice.SentAt = &now
		invoice.UpdatedAt = now
		if err := s.repo.Update(ctx, tx, invoice); err != nil {
			return err
		}
		sent = *invoice
		return nil
	})
	if err != nil {
		return domain.Invoice{}, err
	}
	return sent, nil
}

// Delete removes a DRAFT invoice and its artifact. Artifact removal is
// best effort; the row deletion decides the outcome.
func (s *Service) Delete(ctx context.Context, id string) error {
	invoiceID, err := parseInvoiceID(id)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoice, err := s.loadOwned(ctx, tx, invoiceID, true)
		if err != nil {
			return err
		}
		if invoice.Status != domain.StatusDraft {
			return domain.ErrInvalidState
		}

		if err := s.repo.Delete(ctx, tx, invoice.ID); err != nil {
			return err
		}
		s.removeArtifact(ctx, s.artifactLocator(invoice.CompanyID, invoice.InvoiceNumber, false))
		return nil
	})
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Invoice, error) {
	invoiceID, err := parseInvoiceID(id)
	if err != nil {
		return domain.Invoice{}, err
	}

	invoice, err := s.loadOwned(ctx, s.db, invoiceID, false)
	if err != nil {
		return domain.Invoice{}, err
	}
	return *invoice, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) (domain.ListResponse, error) {
	companyID, ok := tenantctx.CompanyScope(ctx)
	if !ok {
		return domain.ListResponse{}, domain.ErrInvalidCompany
	}

	filter := domain.ListFilter{Status: strings.ToUpper(strings.TrimSpace(req.Status))}
	if req.ClientID != "" {
		clientID, err := snowflake.ParseString(req.ClientID)
		if err != nil {
			return domain.ListResponse{}, domain.ErrInvalidCandidate
		}
		filter.ClientID = clientID
	}
	if req.DateFrom != "" {
		from, err := time.Parse(invoiceDateLayout, req.DateFrom)
		if err != nil {
			return domain.ListResponse{}, domain.ErrInvalidDate
		}
		filter.DateFrom = &from
	}
	if req.DateTo != "" {
		to, err := time.Parse(invoiceDateLayout, req.DateTo)
		if err != nil {
			return domain.ListResponse{}, domain.ErrInvalidDate
		}
		filter.DateTo = &to
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.List(ctx, s.db, companyID, filter, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  pageSize,
	})
	if err != nil {
		return domain.ListResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(invoice *domain.Invoice) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        invoice.ID.String(),
			CreatedAt: invoice.CreatedAt.Format(time.RFC3339Nano),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > pageSize {
		items = items[:pageSize]
	}

	invoices := make([]domain.Invoice, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		invoices = append(invoices, *item)
	}

	resp := domain.ListResponse{Invoices: invoices}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

// LatestData returns the stored snapshot when present; otherwise it
// reconstructs the render data from live rows and labels the result so
// callers can tell it may no longer match the rendered artifact.
func (s *Service) LatestData(ctx context.Context, id string) (domain.Snapshot, error) {
	invoiceID, err := parseInvoiceID(id)
	if err != nil {
		return domain.Snapshot{}, err
	}

	invoice, err := s.loadOwned(ctx, s.db, invoiceID, false)
	if err != nil {
		return domain.Snapshot{}, err
	}
	return s.snapshotFor(ctx, invoice)
}

// LatestDataForClient resolves the client's most recent invoice by
// invoice date and returns its render data.
func (s *Service) LatestDataForClient(ctx context.Context, clientID string) (domain.Snapshot, error) {
	companyID, ok := tenantctx.CompanyScope(ctx)
	if !ok {
		return domain.Snapshot{}, domain.ErrInvalidCompany
	}
	id, err := snowflake.ParseString(strings.TrimSpace(clientID))
	if err != nil || id == 0 {
		return domain.Snapshot{}, clientdomain.ErrInvalidID
	}

	invoice, err := s.repo.FindLatestByClient(ctx, s.db, companyID, id)
	if err != nil {
		return domain.Snapshot{}, err
	}
	if invoice == nil {
		return domain.Snapshot{}, domain.ErrNotFound
	}
	return s.snapshotFor(ctx, invoice)
}

// snapshotFor prefers the stored snapshot and falls back to a
// reconstruction from live rows, labeling the result so callers can
// tell it may no longer match the rendered artifact.
func (s *Service) snapshotFor(ctx context.Context, invoice *domain.Invoice) (domain.Snapshot, error) {
	if len(invoice.Snapshot) > 0 {
		snapshot, err := domain.DecodeSnapshot(invoice.Snapshot)
		if err != nil {
			return domain.Snapshot{}, err
		}
		snapshot.Source = domain.SnapshotSourceStored
		return snapshot, nil
	}

	candidateIDs, err := invoice.DecodeCandidateIDs()
	if err != nil {
		return domain.Snapshot{}, err
	}
	snapshot, err := s.aggregator.Prepare(ctx, s.db, invoice.CompanyID, invoice.ClientID, candidateIDs, invoice.TotalsBlock(), invoice.InvoiceNumber, invoice.InvoiceDate)
	if err != nil {
		return domain.Snapshot{}, err
	}
	snapshot.Source = domain.SnapshotSourceReconstructed
	return snapshot, nil
}

// loadOwned fetches an invoice and applies the tenant check. A row
// owned by another company reads as missing.
func (s *Service) loadOwned(ctx context.Context, tx *gorm.DB, id snowflake.ID, forUpdate bool) (*domain.Invoice, error) {
	invoice, err := s.repo.FindByID(ctx, tx, id, forUpdate)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, domain.ErrNotFound
	}
	if !tenantctx.IsSuperuser(ctx) {
		companyID, ok := tenantctx.CompanyScope(ctx)
		if !ok || invoice.CompanyID != companyID {
			return nil, domain.ErrNotFound
		}
	}
	return invoice, nil
}

// removeArtifact deletes a stored artifact, logging and swallowing
// failures. Cleanup must never fail the user-visible operation.
func (s *Service) removeArtifact(ctx context.Context, locator string) {
	if err := s.store.Delete(locator); err != nil && !errors.Is(err, storage.ErrNotExist) {
		s.log.Warn("artifact cleanup failed",
			zap.String("locator", locator),
			zap.Error(err),
		)
	}
}

func (s *Service) artifactLocator(companyID snowflake.ID, number string, preview bool) string {
	name := sanitizeNumber(number)
	if preview {
		name += "_preview"
	}
	return fmt.Sprintf("invoices/%s/%s.pdf", companyID.String(), name)
}

// scratchLocator names a staging artifact in the company's invoice
// directory. Keeping it next to the final locator makes the promote
// rename atomic.
func (s *Service) scratchLocator(companyID snowflake.ID) string {
	return fmt.Sprintf("invoices/%s/.pending-%s.pdf", companyID.String(), s.genID.Generate().String())
}

func (s *Service) fileURL(locator string) string {
	return strings.TrimSuffix(s.cfg.StaticMount, "/") + "/" + locator
}

// sanitizeNumber keeps invoice numbers filesystem-safe.
func sanitizeNumber(number string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, number)
}

func parseInvoiceID(id string) (snowflake.ID, error) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || parsed == 0 {
		return 0, domain.ErrInvalidID
	}
	return parsed, nil
}

func parseCandidateIDs(raw []string) ([]snowflake.ID, error) {
	if len(raw) == 0 {
		return nil, domain.ErrNoCandidates
	}
	ids := make([]snowflake.ID, 0, len(raw))
	for _, s := range raw {
		id, err := snowflake.ParseString(strings.TrimSpace(s))
		if err != nil || id == 0 {
			return nil, domain.ErrInvalidCandidate
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func validateTotals(t domain.Totals) error {
	for _, v := range []float64{t.Subtotal, t.CGSTAmount, t.SGSTAmount, t.IGSTAmount, t.GrandTotal} {
		if v < 0 {
			return domain.ErrInvalidTotals
		}
	}
	return nil
}
