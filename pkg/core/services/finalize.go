package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mlavelle/wardroster/internal/config"
	"github.com/mlavelle/wardroster/pkg/clients/gmailclient"
	"github.com/mlavelle/wardroster/pkg/core/model"
	"github.com/mlavelle/wardroster/pkg/core/offers"
	"github.com/mlavelle/wardroster/pkg/core/reconcile"
	"github.com/mlavelle/wardroster/pkg/db"
	"github.com/mlavelle/wardroster/pkg/utils/retry"
)

// FinalizeStore defines the database operations reply processing needs
type FinalizeStore interface {
	GetEmployees(ctx context.Context) ([]db.Employee, error)
	UpdateTokenBalances(ctx context.Context, balances map[string]int) error
	GetShifts(ctx context.Context) ([]db.Shift, error)
	GetAbsenceRequests(ctx context.Context) ([]db.AbsenceRequest, error)
	GetSchedule(ctx context.Context, sheet string) ([]db.ScheduleCell, error)
	WriteSchedule(ctx context.Context, sheet string, cells []db.ScheduleCell) error
	GetOffers(ctx context.Context) ([]db.Offer, error)
	UpdateOfferStatus(ctx context.Context, id, status string) error
}

// ReplySource is the inbound channel for offer replies
type ReplySource interface {
	FetchReplies(ctx context.Context) ([]gmailclient.Reply, error)
	MarkProcessed(ctx context.Context, messageID string) error
}

// FinalizeResult summarizes one reply-processing run
type FinalizeResult struct {
	Final            *model.Grid
	Accepted         int
	Declined         int
	Expired          int
	Reverted         bool
	FailedRequesters []string
	Transfers        []reconcile.Transfer
	DryRun           bool
}

// ProcessReplies runs one finalization pass: it drains the reply channel
// against the offer log, reconciles the sandbox grid with the outcome,
// settles token transfers, and notifies requesters and HR. A failed offer,
// declined or lapsed without an answer, reverts the run's changes. With
// dryRun set, nothing is written or sent.
func ProcessReplies(ctx context.Context, database FinalizeStore, notifier Notifier, replies ReplySource, cfg *config.Config, logger *zap.Logger, dryRun bool, now time.Time) (*FinalizeResult, error) {
	days, _ := monthWindow(now)
	logger.Info("Starting reply processing",
		zap.String("month", now.Format("2006-01")),
		zap.Bool("dry_run", dryRun))

	var offerRecords []db.Offer
	if err := retry.Do(ctx, func() error {
		var err error
		offerRecords, err = database.GetOffers(ctx)
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to fetch offers: %w", err)
	}
	ledger := offers.NewLedger(offersFromDB(offerRecords))

	var empRecords []db.Employee
	if err := retry.Do(ctx, func() error {
		var err error
		empRecords, err = database.GetEmployees(ctx)
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to fetch employees: %w", err)
	}
	_, emails, balances, err := buildRoster(empRecords, "")
	if err != nil {
		return nil, err
	}

	result := &FinalizeResult{DryRun: dryRun}

	if replies == nil {
		logger.Warn("No reply channel, offers left untouched")
	} else {
		inbound, err := replies.FetchReplies(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch replies: %w", err)
		}
		logger.Info("Replies fetched", zap.Int("count", len(inbound)))

		for _, reply := range inbound {
			processReply(ctx, database, notifier, replies, logger, ledger, emails, reply, result, dryRun, now)
		}
	}

	// Pending offers past their window lapse now; they stay failed in the
	// ledger and only the stored status is updated.
	for _, offer := range ledger.Offers() {
		if offer.Status != offers.StatusPending || now.Before(offer.Expiry) {
			continue
		}
		result.Expired++
		logger.Info("Offer lapsed without an answer", zap.String("offer_id", offer.ID))
		if dryRun {
			continue
		}
		if err := database.UpdateOfferStatus(ctx, offer.ID, offers.StatusExpired); err != nil {
			logger.Warn("Failed to mark offer expired",
				zap.String("offer_id", offer.ID),
				zap.Error(err))
		}
	}

	var shiftRecords []db.Shift
	if err := retry.Do(ctx, func() error {
		var err error
		shiftRecords, err = database.GetShifts(ctx)
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to fetch shifts: %w", err)
	}
	shifts, err := buildShifts(shiftRecords)
	if err != nil {
		return nil, err
	}
	shiftIDs := make([]string, len(shifts))
	for i, shift := range shifts {
		shiftIDs[i] = shift.ID
	}

	var officialCells, sandboxCells []db.ScheduleCell
	if err := retry.Do(ctx, func() error {
		var err error
		officialCells, err = database.GetSchedule(ctx, db.ScheduleOfficial)
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to fetch official schedule: %w", err)
	}
	if err := retry.Do(ctx, func() error {
		var err error
		sandboxCells, err = database.GetSchedule(ctx, db.ScheduleSandbox)
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to fetch sandbox schedule: %w", err)
	}
	official := gridFromCells(shiftIDs, days, officialCells)
	sandbox := gridFromCells(shiftIDs, days, sandboxCells)

	var requestRecords []db.AbsenceRequest
	if err := retry.Do(ctx, func() error {
		var err error
		requestRecords, err = database.GetAbsenceRequests(ctx)
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to fetch absence requests: %w", err)
	}
	var requests []model.AbsenceRequest
	for _, rec := range requestRecords {
		if err := rec.Validate(); err != nil {
			continue
		}
		req, err := convertRequest(rec, now)
		if err != nil {
			continue
		}
		requests = append(requests, req)
	}

	failed := ledger.Failed()
	outcome := reconcile.Finalize(official, sandbox, failed)
	result.Final = outcome.Final
	result.Reverted = outcome.Reverted
	result.FailedRequesters = outcome.FailedRequesters
	if outcome.Reverted {
		logger.Info("Run reverted",
			zap.Int("failed_offers", len(failed)),
			zap.Strings("failed_requesters", outcome.FailedRequesters))
	}

	transfers, updated := reconcile.Settle(outcome.Final, requests, ledger.Offers(), balances)
	result.Transfers = transfers
	for _, transfer := range transfers {
		logger.Info("Token transfer",
			zap.String("from", transfer.From),
			zap.String("to", transfer.To),
			zap.Int("amount", transfer.Amount))
	}

	if dryRun {
		logger.Info("DRY RUN: sandbox schedule and balances not written")
	} else {
		if err := retry.Do(ctx, func() error {
			return database.WriteSchedule(ctx, db.ScheduleSandbox, cellsFromGrid(outcome.Final))
		}); err != nil {
			return nil, fmt.Errorf("failed to write finalized schedule: %w", err)
		}
		if len(transfers) > 0 {
			if err := retry.Do(ctx, func() error {
				return database.UpdateTokenBalances(ctx, updated)
			}); err != nil {
				return nil, fmt.Errorf("failed to update token balances: %w", err)
			}
		}
	}

	notifyOutcome(notifier, cfg, logger, result, emails, dryRun)

	logger.Info("Reply processing complete",
		zap.Int("accepted", result.Accepted),
		zap.Int("declined", result.Declined),
		zap.Int("expired", result.Expired),
		zap.Bool("reverted", result.Reverted))

	return result, nil
}

// processReply applies one inbound reply to the ledger and stored offer
// log. Every reply is marked processed whatever the outcome; a reply that
// could not be applied now will never apply later.
func processReply(ctx context.Context, database FinalizeStore, notifier Notifier, replies ReplySource, logger *zap.Logger, ledger *offers.Ledger, emails map[string]string, reply gmailclient.Reply, result *FinalizeResult, dryRun bool, now time.Time) {
	markProcessed := func() {
		if dryRun {
			return
		}
		if err := replies.MarkProcessed(ctx, reply.MessageID); err != nil {
			logger.Warn("Failed to mark reply processed",
				zap.String("message_id", reply.MessageID),
				zap.Error(err))
		}
	}

	action, offerID, err := offers.ParseReplyTag(reply.Subject)
	if err != nil {
		logger.Warn("Skipping unparseable reply",
			zap.String("subject", reply.Subject),
			zap.Error(err))
		markProcessed()
		return
	}

	applied, err := ledger.Apply(action, offerID, now)
	switch {
	case err == nil:
		// fallthrough to the applied path below
	case errors.Is(err, offers.ErrUnknownOffer):
		logger.Warn("Reply references unknown offer", zap.String("offer_id", offerID))
		markProcessed()
		return
	case errors.Is(err, offers.ErrOfferResolved):
		logger.Info("Reply to an already resolved offer ignored",
			zap.String("offer_id", offerID),
			zap.String("status", applied.Status))
		markProcessed()
		return
	case errors.Is(err, offers.ErrOfferExpired):
		// Late replies never mutate the ledger; the lapse sweep will mark
		// the stored record expired.
		logger.Info("Reply arrived after offer expiry",
			zap.String("offer_id", offerID),
			zap.String("action", string(action)))
		markProcessed()
		return
	default:
		logger.Warn("Failed to apply reply", zap.String("offer_id", offerID), zap.Error(err))
		markProcessed()
		return
	}

	switch applied.Status {
	case offers.StatusAccepted:
		result.Accepted++
	case offers.StatusDeclined:
		result.Declined++
	}
	logger.Info("Reply recorded",
		zap.String("offer_id", offerID),
		zap.String("employee", applied.Employee),
		zap.String("status", applied.Status))

	if !dryRun {
		if err := database.UpdateOfferStatus(ctx, offerID, applied.Status); err != nil {
			logger.Warn("Failed to store offer status",
				zap.String("offer_id", offerID),
				zap.Error(err))
		}
	}
	markProcessed()

	if notifier == nil || dryRun {
		return
	}
	email := emails[applied.Employee]
	if email == "" {
		return
	}
	body := fmt.Sprintf("Thank you, your response (%q) for Offer ID %s has been successfully recorded.", string(action), offerID)
	if err := notifier.SendEmail(email, "Your Response Has Been Recorded", body); err != nil {
		logger.Warn("Failed to send reply confirmation",
			zap.String("employee", applied.Employee),
			zap.Error(err))
	}
}

// notifyOutcome sends the failed-requester notices and the HR run summary
func notifyOutcome(notifier Notifier, cfg *config.Config, logger *zap.Logger, result *FinalizeResult, emails map[string]string, dryRun bool) {
	if notifier == nil || dryRun {
		return
	}

	for _, requester := range result.FailedRequesters {
		email := emails[requester]
		if email == "" {
			logger.Warn("No email for requester, outcome notice not sent", zap.String("requester", requester))
			continue
		}
		body := fmt.Sprintf("Hello %s,\n\nYour schedule change request could not be accommodated this run because a required offer was declined or expired. The schedule has been restored and your token bid has not been spent.", requester)
		if err := notifier.SendEmail(email, "Schedule Change Request Update", body); err != nil {
			logger.Warn("Failed to send requester notice",
				zap.String("requester", requester),
				zap.Error(err))
		}
	}

	body := fmt.Sprintf(
		"The hourly reply processing is complete.\n\n- %d offers were accepted.\n- %d offers were declined.\n\nThe Sandbox schedule is now finalized and ready for your one-click approval.",
		result.Accepted, result.Declined)
	if err := notifier.SendEmail(cfg.HREmail, "Hourly Schedule Run Summary", body); err != nil {
		logger.Warn("Failed to send HR summary", zap.Error(err))
	}
}
