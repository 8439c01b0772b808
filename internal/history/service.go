package history

import (
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

const (
	DefaultRetentionDays = 90
	DefaultQueryLimit    = 100
	MaxQueryLimit        = 1000
)

// Service provides playback history recording, querying and retention.
type Service struct {
	logger        *log.Logger
	repo          *Repository
	retentionDays int
	cron          *cron.Cron
}

// NewService creates a new history service. pruneSchedule is a 5-field cron
// expression for the retention job.
func NewService(dbPair DBPair, logger *log.Logger, retentionDays int, pruneSchedule string) (*Service, error) {
	if logger == nil {
		logger = log.Default()
	}
	if retentionDays <= 0 {
		retentionDays = DefaultRetentionDays
	}

	s := &Service{
		logger:        logger,
		repo:          NewRepository(dbPair),
		retentionDays: retentionDays,
		cron:          cron.New(),
	}

	if _, err := s.cron.AddFunc(pruneSchedule, s.runPrune); err != nil {
		return nil, fmt.Errorf("invalid prune schedule %q: %w", pruneSchedule, err)
	}
	return s, nil
}

// RecordEvent writes a new play event.
func (s *Service) RecordEvent(input WriteEventInput) (*PlayEvent, error) {
	event, err := s.repo.InsertEvent(input)
	if err != nil {
		return nil, fmt.Errorf("record play event: %w", err)
	}
	return event, nil
}

// QueryEvents retrieves events with filters and pagination. The limit is
// clamped to MaxQueryLimit. Returns events, total count and a hasMore flag.
func (s *Service) QueryEvents(filters EventQueryFilters) ([]PlayEvent, int, bool, error) {
	if filters.Limit == 0 {
		filters.Limit = DefaultQueryLimit
	}
	if filters.Limit > MaxQueryLimit {
		filters.Limit = MaxQueryLimit
	}

	events, total, err := s.repo.QueryEvents(filters)
	if err != nil {
		return nil, 0, false, fmt.Errorf("query play events: %w", err)
	}

	hasMore := filters.Offset+len(events) < total
	return events, total, hasMore, nil
}

// GetEvent retrieves a single event by ID.
func (s *Service) GetEvent(eventID string) (*PlayEvent, error) {
	event, err := s.repo.GetEvent(eventID)
	if err != nil {
		return nil, fmt.Errorf("get play event: %w", err)
	}
	if event == nil {
		return nil, &EventNotFoundError{EventID: eventID}
	}
	return event, nil
}

// Prune deletes events older than the retention window, returns count deleted.
func (s *Service) Prune() (int64, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -s.retentionDays)
	count, err := s.repo.Prune(cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune play events: %w", err)
	}
	return count, nil
}

// StartPruneJob starts the scheduled retention job. It also prunes once
// immediately so a long-stopped instance catches up on startup.
func (s *Service) StartPruneJob() {
	s.logger.Printf("Starting history prune job (retention: %d days)", s.retentionDays)
	s.runPrune()
	s.cron.Start()
}

// StopPruneJob stops the scheduled retention job and waits for a running
// prune to finish.
func (s *Service) StopPruneJob() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Printf("History prune job stopped")
}

func (s *Service) runPrune() {
	if count, err := s.Prune(); err != nil {
		s.logger.Printf("Error pruning play history: %v", err)
	} else if count > 0 {
		s.logger.Printf("Pruned %d play history events", count)
	}
}

// EventNotFoundError is returned when a play event is not found.
type EventNotFoundError struct {
	EventID string
}

func (e *EventNotFoundError) Error() string {
	return fmt.Sprintf("play event not found: %s", e.EventID)
}
