package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prohmpiriya/event-marketplace/internal/domain"
	"github.com/prohmpiriya/event-marketplace/internal/dto"
	"github.com/prohmpiriya/event-marketplace/internal/metrics"
	"github.com/prohmpiriya/event-marketplace/internal/repository"
	"github.com/prohmpiriya/event-marketplace/pkg/logger"
	"github.com/prohmpiriya/event-marketplace/pkg/retry"
	"github.com/prohmpiriya/event-marketplace/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// TicketServiceDeps groups the collaborators of the ticket service
type TicketServiceDeps struct {
	TxManager  repository.TxManager
	EventRepo  repository.EventRepository
	TicketRepo repository.TicketRepository
	OutboxRepo repository.OutboxRepository
	// NumberRetry bounds how often a purchase is rerun after a ticket number
	// collision. Nil uses DefaultNumberRetry.
	NumberRetry *retry.Config
}

// DefaultNumberRetry reruns a colliding purchase up to three times
func DefaultNumberRetry() *retry.Config {
	return &retry.Config{
		MaxAttempts:     3,
		InitialInterval: 10 * time.Millisecond,
		MaxInterval:     100 * time.Millisecond,
		Multiplier:      2.0,
		JitterFactor:    0.1,
	}
}

// ticketService implements TicketService
type ticketService struct {
	tx          repository.TxManager
	eventRepo   repository.EventRepository
	ticketRepo  repository.TicketRepository
	outboxRepo  repository.OutboxRepository
	numberRetry *retry.Config
	now         func() time.Time
	log         *logger.Logger
}

// NewTicketService creates a new TicketService
func NewTicketService(deps *TicketServiceDeps) TicketService {
	cfg := deps.NumberRetry
	if cfg == nil {
		cfg = DefaultNumberRetry()
	}
	// only collisions are worth another attempt
	retryCfg := *cfg
	retryCfg.ShouldRetry = func(err error) bool {
		return errors.Is(err, domain.ErrTicketNumberConflict)
	}

	return &ticketService{
		tx:          deps.TxManager,
		eventRepo:   deps.EventRepo,
		ticketRepo:  deps.TicketRepo,
		outboxRepo:  deps.OutboxRepo,
		numberRetry: &retryCfg,
		now:         time.Now,
		log:         logger.Get().With(zap.String("component", "ticket_service")),
	}
}

// Purchase issues quantity paid tickets in one transaction holding the event
// row lock, so concurrent buyers cannot push sold past max attendees
func (s *ticketService) Purchase(ctx context.Context, p *domain.Principal, req *dto.PurchaseTicketRequest) (first *domain.Ticket, err error) {
	startTime := time.Now()
	ctx, span := telemetry.StartSpan(ctx, "service.ticket.purchase")
	defer func() { telemetry.EndSpan(span, err) }()

	if p == nil {
		return nil, domain.ErrNoPrincipal
	}
	if req.Quantity < 1 {
		return nil, domain.ErrInvalidQuantity
	}
	if valid, msg := req.Validate(); !valid {
		return nil, domain.Validation(msg)
	}
	span.SetAttributes(
		attribute.String("event_id", req.EventID),
		attribute.String("user_id", p.UserID),
		attribute.Int("quantity", req.Quantity),
	)

	attempt := 0
	err = retry.New(s.numberRetry).DoWithCallback(ctx, func(ctx context.Context) error {
		attempt++
		var txErr error
		first, txErr = s.issue(ctx, p, req)
		return txErr
	}, func(attempt int, err error, next time.Duration) {
		s.log.Warn("Ticket number collision, retrying purchase",
			zap.String("event_id", req.EventID),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", next),
		)
	})

	elapsed := float64(time.Since(startTime).Milliseconds())
	if err != nil {
		if errors.Is(err, retry.ErrAttemptsExhausted) {
			s.log.Error("Could not allocate unique ticket numbers",
				zap.String("event_id", req.EventID),
				zap.Int("attempts", attempt),
				zap.Error(err),
			)
			err = domain.ErrTicketNumberExhausted
		}
		metrics.RecordPurchaseRejection(ctx, rejectionReason(err), elapsed)
		return nil, err
	}

	metrics.RecordPurchase(ctx, req.EventID, req.Quantity, elapsed)
	span.AddEvent("tickets_issued", trace.WithAttributes(
		attribute.String("ticket_id", first.ID),
		attribute.Int("attempts", attempt),
	))
	s.log.Info("Tickets purchased",
		zap.String("event_id", req.EventID),
		zap.String("user_id", p.UserID),
		zap.Int("quantity", req.Quantity),
		zap.String("first_ticket", first.TicketNumber),
	)
	return first, nil
}

// issue runs the purchase checks in order and writes the tickets
func (s *ticketService) issue(ctx context.Context, p *domain.Principal, req *dto.PurchaseTicketRequest) (first *domain.Ticket, err error) {
	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		event, err := s.eventRepo.GetByIDForUpdate(ctx, req.EventID)
		if err != nil {
			return err
		}
		if event == nil {
			return domain.ErrEventNotFound
		}
		now := s.now()
		if err := event.CheckPurchasable(now); err != nil {
			return err
		}

		sold, err := s.ticketRepo.CountByEvent(ctx, event.ID)
		if err != nil {
			return err
		}
		if !domain.NewInventory(event.MaxAttendees, sold).CanIssue(req.Quantity) {
			return domain.ErrSoldOut
		}

		tickets := make([]*domain.Ticket, req.Quantity)
		for i := range tickets {
			tickets[i] = domain.NewPaidTicket(event, p.UserID, now)
		}
		if err := s.ticketRepo.CreateBatch(ctx, tickets); err != nil {
			return err
		}
		for _, t := range tickets {
			if err := s.emit(ctx, domain.OutboxTicketPurchased, t, p); err != nil {
				return err
			}
		}
		first = tickets[0]
		return nil
	})
	return first, err
}

// GetTicket returns a ticket to its owner or to staff
func (s *ticketService) GetTicket(ctx context.Context, p *domain.Principal, id string) (ticket *domain.Ticket, err error) {
	ctx, span := telemetry.StartSpan(ctx, "service.ticket.get")
	defer func() { telemetry.EndSpan(span, err) }()
	span.SetAttributes(attribute.String("ticket_id", id))

	if p == nil {
		return nil, domain.ErrNoPrincipal
	}
	ticket, err = s.loadTicket(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := domain.RequireOwnerOrStaff(p, ticket.UserID); err != nil {
		return nil, err
	}
	return ticket, nil
}

// CancelTicket voids a ticket before its event starts. Capacity is not released.
func (s *ticketService) CancelTicket(ctx context.Context, p *domain.Principal, id string) (ticket *domain.Ticket, err error) {
	ctx, span := telemetry.StartSpan(ctx, "service.ticket.cancel")
	defer func() { telemetry.EndSpan(span, err) }()
	span.SetAttributes(attribute.String("ticket_id", id))

	if p == nil {
		return nil, domain.ErrNoPrincipal
	}

	ticket, err = s.mutate(ctx, id, func(t *domain.Ticket, event *domain.Event, now time.Time) error {
		if err := domain.RequireOwnerOrStaff(p, t.UserID); err != nil {
			return err
		}
		return t.Cancel(event, now)
	}, domain.OutboxTicketCancelled, p)
	if err != nil {
		return nil, err
	}

	metrics.RecordTicketCancelled(ctx, ticket.EventID)
	s.log.Info("Ticket cancelled",
		zap.String("ticket_id", ticket.ID),
		zap.String("event_id", ticket.EventID),
		zap.String("actor_id", p.UserID),
	)
	return ticket, nil
}

// MarkUsed admits the holder of a paid ticket
func (s *ticketService) MarkUsed(ctx context.Context, p *domain.Principal, id string) (ticket *domain.Ticket, err error) {
	ctx, span := telemetry.StartSpan(ctx, "service.ticket.mark_used")
	defer func() { telemetry.EndSpan(span, err) }()
	span.SetAttributes(attribute.String("ticket_id", id))

	if err := domain.RequireStaff(p); err != nil {
		return nil, err
	}

	ticket, err = s.mutate(ctx, id, func(t *domain.Ticket, _ *domain.Event, now time.Time) error {
		return t.MarkUsed(now)
	}, domain.OutboxTicketUsed, p)
	if err != nil {
		return nil, err
	}

	metrics.RecordTicketUsed(ctx, ticket.EventID)
	s.log.Info("Ticket used",
		zap.String("ticket_id", ticket.ID),
		zap.String("event_id", ticket.EventID),
		zap.String("actor_id", p.UserID),
	)
	return ticket, nil
}

// mutate applies a status change under the event row lock. The ticket is
// read again once the lock is held so racing writers see each other.
func (s *ticketService) mutate(
	ctx context.Context,
	id string,
	apply func(*domain.Ticket, *domain.Event, time.Time) error,
	eventType domain.OutboxEventType,
	p *domain.Principal,
) (ticket *domain.Ticket, err error) {
	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		ticket, err = s.loadTicket(ctx, id)
		if err != nil {
			return err
		}
		event, err := s.eventRepo.GetByIDForUpdate(ctx, ticket.EventID)
		if err != nil {
			return err
		}
		if event == nil {
			return domain.ErrEventNotFound
		}
		if ticket, err = s.loadTicket(ctx, id); err != nil {
			return err
		}

		if err := apply(ticket, event, s.now()); err != nil {
			return err
		}
		if err := s.ticketRepo.UpdateStatus(ctx, ticket.ID, ticket.Status, ticket.UpdatedAt); err != nil {
			return err
		}
		return s.emit(ctx, eventType, ticket, p)
	})
	return ticket, err
}

// ValidateTicket reports whether the ticket admits its holder right now
func (s *ticketService) ValidateTicket(ctx context.Context, p *domain.Principal, ticketNumber string) (valid bool, err error) {
	ctx, span := telemetry.StartSpan(ctx, "service.ticket.validate")
	defer func() { telemetry.EndSpan(span, err) }()
	span.SetAttributes(attribute.String("ticket_number", ticketNumber))

	if err := domain.RequireStaff(p); err != nil {
		return false, err
	}

	ticket, err := s.ticketRepo.GetByNumber(ctx, ticketNumber)
	if err != nil {
		return false, err
	}
	if ticket == nil {
		return false, nil
	}
	event, err := s.eventRepo.GetByID(ctx, ticket.EventID)
	if err != nil {
		return false, err
	}

	valid = ticket.IsValidAt(event, s.now())
	span.SetAttributes(attribute.Bool("valid", valid))
	return valid, nil
}

// ListMyTickets lists the caller's tickets, newest first
func (s *ticketService) ListMyTickets(ctx context.Context, p *domain.Principal, filter *dto.TicketListFilter) (tickets []*domain.Ticket, total int, err error) {
	ctx, span := telemetry.StartSpan(ctx, "service.ticket.list_mine")
	defer func() { telemetry.EndSpan(span, err) }()

	if p == nil {
		return nil, 0, domain.ErrNoPrincipal
	}
	filter.SetDefaults()
	return s.ticketRepo.ListByUser(ctx, p.UserID, filter.Limit, filter.Offset)
}

// ListEventTickets lists every ticket of an event for staff
func (s *ticketService) ListEventTickets(ctx context.Context, p *domain.Principal, eventID string, filter *dto.TicketListFilter) (tickets []*domain.Ticket, total int, err error) {
	ctx, span := telemetry.StartSpan(ctx, "service.ticket.list_event")
	defer func() { telemetry.EndSpan(span, err) }()
	span.SetAttributes(attribute.String("event_id", eventID))

	if err := domain.RequireStaff(p); err != nil {
		return nil, 0, err
	}
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, 0, err
	}
	if event == nil {
		return nil, 0, domain.ErrEventNotFound
	}

	filter.SetDefaults()
	return s.ticketRepo.ListByEvent(ctx, eventID, filter.Limit, filter.Offset)
}

func (s *ticketService) loadTicket(ctx context.Context, id string) (*domain.Ticket, error) {
	ticket, err := s.ticketRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ticket == nil {
		return nil, domain.ErrTicketNotFound
	}
	return ticket, nil
}

func (s *ticketService) emit(ctx context.Context, eventType domain.OutboxEventType, t *domain.Ticket, p *domain.Principal) error {
	msg, err := domain.TicketOutboxMessage(eventType, t, p.UserID)
	if err != nil {
		return fmt.Errorf("failed to build outbox message: %w", err)
	}
	return s.outboxRepo.Create(ctx, msg)
}

// rejectionReason labels a failed purchase for metrics
func rejectionReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrEventNotFound):
		return "event_not_found"
	case errors.Is(err, domain.ErrEventNotPublished):
		return "not_published"
	case errors.Is(err, domain.ErrEventAlreadyStarted):
		return "already_started"
	case errors.Is(err, domain.ErrCapacityExceeded):
		return "sold_out"
	case errors.Is(err, domain.ErrTicketNumberExhausted):
		return "ticket_number_exhausted"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "error"
	}
}
