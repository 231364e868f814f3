package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mlavelle/wardroster/internal/config"
	"github.com/mlavelle/wardroster/pkg/core/cpmodel"
	"github.com/mlavelle/wardroster/pkg/core/model"
	"github.com/mlavelle/wardroster/pkg/core/offers"
	"github.com/mlavelle/wardroster/pkg/db"
	"github.com/mlavelle/wardroster/pkg/utils/retry"
)

// GenerateStore defines the database operations schedule generation needs
type GenerateStore interface {
	GetEmployees(ctx context.Context) ([]db.Employee, error)
	GetShifts(ctx context.Context) ([]db.Shift, error)
	GetAbsenceRequests(ctx context.Context) ([]db.AbsenceRequest, error)
	GetSchedule(ctx context.Context, sheet string) ([]db.ScheduleCell, error)
	WriteSchedule(ctx context.Context, sheet string, cells []db.ScheduleCell) error
	AppendOffers(ctx context.Context, offers []db.Offer) error
}

// Notifier sends outbound mail. A nil Notifier skips every send and the run
// continues; pending offers that nobody could read simply lapse.
type Notifier interface {
	SendEmail(to, subject, body string) error
}

// GenerateResult summarizes one schedule generation run
type GenerateResult struct {
	Proposed   *model.Grid
	Offers     []offers.Offer
	Notes      map[string][]string
	FreeMoves  []model.Slot
	Requester  string
	Reward     int
	OffersSent int
	DryRun     bool
}

// GenerateSchedule runs one generation pass: it reads the roster, shift
// catalog, absence requests, and official grid, solves for a proposed grid
// for the month containing now, diffs it against the official grid, emails
// consent offers and change notices, and stages the proposal on the sandbox
// sheet. With dryRun set, nothing is sent or written.
func GenerateSchedule(ctx context.Context, database GenerateStore, notifier Notifier, cfg *config.Config, logger *zap.Logger, group string, dryRun bool, now time.Time) (*GenerateResult, error) {
	days, today := monthWindow(now)
	logger.Info("Starting schedule generation",
		zap.String("month", now.Format("2006-01")),
		zap.Int("days", days),
		zap.Int("today_index", today),
		zap.String("group", group),
		zap.Bool("dry_run", dryRun))

	var empRecords []db.Employee
	if err := retry.Do(ctx, func() error {
		var err error
		empRecords, err = database.GetEmployees(ctx)
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to fetch employees: %w", err)
	}

	var shiftRecords []db.Shift
	if err := retry.Do(ctx, func() error {
		var err error
		shiftRecords, err = database.GetShifts(ctx)
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to fetch shifts: %w", err)
	}

	var requestRecords []db.AbsenceRequest
	if err := retry.Do(ctx, func() error {
		var err error
		requestRecords, err = database.GetAbsenceRequests(ctx)
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to fetch absence requests: %w", err)
	}

	var officialCells []db.ScheduleCell
	if err := retry.Do(ctx, func() error {
		var err error
		officialCells, err = database.GetSchedule(ctx, db.ScheduleOfficial)
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to fetch official schedule: %w", err)
	}

	roster, emails, _, err := buildRoster(empRecords, group)
	if err != nil {
		return nil, err
	}
	logger.Debug("Roster loaded", zap.Int("total", len(empRecords)), zap.Int("in_group", len(roster)))

	shifts, err := buildShifts(shiftRecords)
	if err != nil {
		return nil, err
	}

	shiftIDs := make([]string, len(shifts))
	for i, shift := range shifts {
		shiftIDs[i] = shift.ID
	}
	official := gridFromCells(shiftIDs, days, officialCells)

	// Malformed request rows are user intake; skip them rather than failing
	// the whole run.
	var requests []model.AbsenceRequest
	for _, rec := range requestRecords {
		if err := rec.Validate(); err != nil {
			logger.Warn("Skipping malformed absence request",
				zap.String("id", rec.ID),
				zap.Error(err))
			continue
		}
		req, err := convertRequest(rec, now)
		if err != nil {
			logger.Warn("Skipping unusable absence request",
				zap.String("id", rec.ID),
				zap.Error(err))
			continue
		}
		requests = append(requests, req)
	}
	subRequests := model.ExpandRequests(requests, days)
	logger.Debug("Absence requests expanded",
		zap.Int("requests", len(requests)),
		zap.Int("sub_requests", len(subRequests)))

	prob, err := cpmodel.Build(cpmodel.BuildInput{
		Employees:      roster,
		Shifts:         shifts,
		Official:       official,
		SubRequests:    subRequests,
		Today:          today,
		Days:           days,
		ExemptEmployee: cfg.ExemptEmployee,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build schedule model: %w", err)
	}

	solver := cpmodel.NewSolver(cfg.Solver.Workers, time.Duration(cfg.Solver.TimeLimitSeconds)*time.Second)
	logger.Info("Solving", zap.Int("decision_cells", prob.CellCount()), zap.Int("workers", cfg.Solver.Workers))
	proposed, err := solver.Solve(ctx, prob)
	if err != nil {
		return nil, fmt.Errorf("failed to solve schedule: %w", err)
	}

	diff := offers.Generate(official, proposed, requests, now)
	logger.Info("Proposal diffed",
		zap.Int("offers", len(diff.Offers)),
		zap.Int("notified", len(diff.Notes)),
		zap.Int("free_moves", len(diff.FreeMoves)),
		zap.String("requester", diff.Requester),
		zap.Int("reward", diff.Reward))

	result := &GenerateResult{
		Proposed:  proposed,
		Notes:     diff.Notes,
		FreeMoves: diff.FreeMoves,
		Requester: diff.Requester,
		Reward:    diff.Reward,
		DryRun:    dryRun,
	}

	// Offers without a reachable recipient are dropped entirely: an offer
	// nobody can answer would only force a revert at finalize time.
	for _, offer := range diff.Offers {
		email := emails[offer.Employee]
		if email == "" {
			logger.Warn("No email for employee, dropping offer",
				zap.String("employee", offer.Employee),
				zap.String("offer_id", offer.ID))
			continue
		}
		result.Offers = append(result.Offers, offer)

		if dryRun {
			logger.Info("DRY RUN: would send offer",
				zap.String("employee", offer.Employee),
				zap.String("offer_id", offer.ID))
			continue
		}
		if notifier == nil {
			logger.Warn("No mail channel, offer not sent",
				zap.String("offer_id", offer.ID))
			continue
		}
		body := offerEmailBody(offer, diff.Requester, diff.Reward, cfg.HREmail)
		if err := notifier.SendEmail(email, "Schedule Change Proposal", body); err != nil {
			logger.Warn("Failed to send offer email",
				zap.String("employee", offer.Employee),
				zap.String("offer_id", offer.ID),
				zap.Error(err))
			continue
		}
		result.OffersSent++
	}

	for employee, changes := range diff.Notes {
		email := emails[employee]
		if email == "" {
			logger.Warn("No email for employee, change notice not sent", zap.String("employee", employee))
			continue
		}
		if dryRun {
			logger.Info("DRY RUN: would send change notice", zap.String("employee", employee))
			continue
		}
		if notifier == nil {
			continue
		}
		if err := notifier.SendEmail(email, "Schedule Change Notice", noticeEmailBody(employee, changes)); err != nil {
			logger.Warn("Failed to send change notice",
				zap.String("employee", employee),
				zap.Error(err))
		}
	}

	if dryRun {
		logger.Info("DRY RUN: sandbox schedule and offer log not written")
		return result, nil
	}

	if err := retry.Do(ctx, func() error {
		return database.WriteSchedule(ctx, db.ScheduleSandbox, cellsFromGrid(proposed))
	}); err != nil {
		return nil, fmt.Errorf("failed to write sandbox schedule: %w", err)
	}

	if len(result.Offers) > 0 {
		if err := retry.Do(ctx, func() error {
			return database.AppendOffers(ctx, dbOffersFrom(result.Offers))
		}); err != nil {
			return nil, fmt.Errorf("failed to log offers: %w", err)
		}
	}

	logger.Info("Generation run complete",
		zap.Int("offers_logged", len(result.Offers)),
		zap.Int("offers_sent", result.OffersSent))

	return result, nil
}

func offerEmailBody(offer offers.Offer, requester string, reward int, hrEmail string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", offer.Employee)
	fmt.Fprintf(&b, "To accommodate a request from %s, you are being offered a reward of %d tokens to accept the following schedule change. This reward will be given to the first employee who accepts.\n\n", requester, reward)
	for _, change := range offer.Changes {
		fmt.Fprintf(&b, "- %s\n", change)
	}
	fmt.Fprintf(&b, "\nPlease click to accept or decline:\n")
	fmt.Fprintf(&b, "Accept: mailto:%s?subject=ACCEPT-%s\n", hrEmail, offer.ID)
	fmt.Fprintf(&b, "Decline: mailto:%s?subject=DECLINE-%s\n\n", hrEmail, offer.ID)
	fmt.Fprintf(&b, "This offer is valid for 1 hour. Offer ID: %s", offer.ID)
	return b.String()
}

func noticeEmailBody(employee string, changes []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", employee)
	fmt.Fprintf(&b, "The following changes to your schedule are pending:\n\n")
	for _, change := range changes {
		fmt.Fprintf(&b, "- %s\n", change)
	}
	fmt.Fprintf(&b, "\nNo action is needed from you.")
	return b.String()
}
