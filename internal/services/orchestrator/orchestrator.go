// Package orchestrator implements the Message Flow Orchestrator (§4.11),
// the central coordinator that turns one NormalizedInbound into at most
// one outbound message plus side effects. It wires together every other
// service package and serializes per-lead work through internal/lock,
// grounded on original_source's message_flow orchestration (the single
// handle_inbound entrypoint the rest of maqro_backend calls into).
package orchestrator

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/MaqroSolutions/Dealerships-sub000/internal/adapters/provider"
	"github.com/MaqroSolutions/Dealerships-sub000/internal/apperr"
	"github.com/MaqroSolutions/Dealerships-sub000/internal/cache/memory"
	"github.com/MaqroSolutions/Dealerships-sub000/internal/domain"
	"github.com/MaqroSolutions/Dealerships-sub000/internal/lock"
	"github.com/MaqroSolutions/Dealerships-sub000/internal/rapport"
	"github.com/MaqroSolutions/Dealerships-sub000/internal/repository"
	"github.com/MaqroSolutions/Dealerships-sub000/internal/services/approval"
	"github.com/MaqroSolutions/Dealerships-sub000/internal/services/calendar"
	"github.com/MaqroSolutions/Dealerships-sub000/internal/services/commands"
	"github.com/MaqroSolutions/Dealerships-sub000/internal/services/entity"
	"github.com/MaqroSolutions/Dealerships-sub000/internal/services/handoff"
	"github.com/MaqroSolutions/Dealerships-sub000/internal/services/phoneresolver"
	"github.com/MaqroSolutions/Dealerships-sub000/internal/services/prompt"
	"github.com/MaqroSolutions/Dealerships-sub000/internal/services/retriever"
	"github.com/MaqroSolutions/Dealerships-sub000/internal/services/scheduler"
	"github.com/MaqroSolutions/Dealerships-sub000/internal/services/settings"
	"github.com/MaqroSolutions/Dealerships-sub000/internal/services/statemachine"
	"github.com/MaqroSolutions/Dealerships-sub000/internal/task"
	"github.com/MaqroSolutions/Dealerships-sub000/pkg/logger"
	"go.uber.org/zap"
)

// stateSlotKey is the reserved Slots entry the state machine's current
// state is kept under; ConversationMemory has no dedicated field for it
// since the state machine is a pure function of signals, not memory.
const stateSlotKey = "_conversation_state"

// Inbound is the channel-neutral, dealership-resolved message the
// orchestrator consumes, assembled by the webhook handler from a
// provider.InboundMessage plus the Dealership Phone Resolver's output.
type Inbound struct {
	DealershipID string
	Provider     string // "sms" | "chat", keys into Providers
	FromPhone    string
	ToPhone      string
	Text         string
	SenderName   string
}

// Outcome summarizes what the orchestrator did with one inbound message,
// for logging and HTTP response purposes.
type Outcome struct {
	LeadID     string
	Handoff    bool
	Scheduled  bool
	Delay      time.Duration
	Note       string
}

// Orchestrator wires every service the algorithm in §4.11 calls into.
type Orchestrator struct {
	repo        repository.RepositoryManager
	memStore    *memory.Store
	locker      *lock.LeadLocker
	retriever   *retriever.Retriever
	prompts     *prompt.Builder
	approvals   *approval.Store
	settings    *settings.Resolver
	rapport     *rapport.Library
	providers   map[string]provider.Sender
	agentName   string
	tasks       *task.Manager

	pendingSendsMu sync.Mutex
	pendingSends   map[string]*scheduler.Handle // leadID -> outstanding delayed send, cancelled by a newer message
}

// New builds an Orchestrator. providers maps a provider name ("sms",
// "chat") to the Sender that can reach it.
func New(
	repo repository.RepositoryManager,
	memStore *memory.Store,
	locker *lock.LeadLocker,
	ret *retriever.Retriever,
	prompts *prompt.Builder,
	approvals *approval.Store,
	settingsResolver *settings.Resolver,
	rapportLib *rapport.Library,
	providers map[string]provider.Sender,
	agentName string,
	tasks *task.Manager,
) *Orchestrator {
	if agentName == "" {
		agentName = "Maqro"
	}
	return &Orchestrator{
		repo:         repo,
		memStore:     memStore,
		locker:       locker,
		retriever:    ret,
		prompts:      prompts,
		approvals:    approvals,
		settings:     settingsResolver,
		rapport:      rapportLib,
		providers:    providers,
		agentName:    agentName,
		tasks:        tasks,
		pendingSends: make(map[string]*scheduler.Handle),
	}
}

// Handle runs the full §4.11 algorithm for one inbound message. The lead
// a message belongs to is not known until the customer path resolves it,
// so the per-lead lock for the customer path is acquired after find-or-
// create but before any mutation; the salesperson path locks on the
// pending approval's lead id once one is found.
func (o *Orchestrator) Handle(ctx context.Context, in Inbound) (Outcome, error) {
	sender, ok := o.providers[in.Provider]
	if !ok {
		return Outcome{}, apperr.Input("no provider registered for: " + in.Provider)
	}

	profile, err := o.findSalesperson(ctx, in.DealershipID, in.FromPhone)
	if err != nil {
		return Outcome{}, err
	}
	if profile != nil {
		return o.handleSalesperson(ctx, in, sender, profile)
	}
	return o.handleCustomer(ctx, in, sender)
}

// findSalesperson reports whether from_phone belongs to a UserProfile in
// the resolved dealership (§4.11 step 1).
func (o *Orchestrator) findSalesperson(ctx context.Context, dealershipID, fromPhone string) (*domain.UserProfile, error) {
	profiles, err := o.repo.UserProfiles().ListByDealership(ctx, dealershipID)
	if err != nil {
		return nil, apperr.Provider("failed to list user profiles", err)
	}
	for _, p := range profiles {
		if p.Phone != nil && phoneresolver.PhonesMatch(*p.Phone, fromPhone) {
			return p, nil
		}
	}
	return nil, nil
}

// ---------------------------------------------------------------------
// Salesperson path (§4.11 step 2)
// ---------------------------------------------------------------------

var (
	yesSynonyms = []string{"yes", "y", "send", "approve", "ok", "okay", "👍", "✅", "send it", "looks good", "good", "go ahead", "approve it"}
	noSynonyms  = []string{"no", "n", "reject", "cancel", "skip", "👎", "❌", "don't send", "reject it"}
)

func (o *Orchestrator) handleSalesperson(ctx context.Context, in Inbound, sender provider.Sender, profile *domain.UserProfile) (Outcome, error) {
	now := time.Now()
	pending, err := o.approvals.GetPending(ctx, profile.UserID, in.DealershipID, now)
	if err == nil && pending != nil {
		o.locker.Lock(pending.LeadID)
		defer o.locker.Unlock(pending.LeadID)
		return o.handleApprovalReply(ctx, in, sender, profile, pending, now)
	}
	return o.handleBusinessCommand(ctx, in, sender, profile)
}

func (o *Orchestrator) handleApprovalReply(ctx context.Context, in Inbound, sender provider.Sender, profile *domain.UserProfile, pending *domain.PendingApproval, now time.Time) (Outcome, error) {
	trimmed := strings.TrimSpace(in.Text)
	lower := strings.ToLower(trimmed)

	switch {
	case matchesSynonym(lower, yesSynonyms):
		if err := o.approvals.UpdateStatus(ctx, pending.ID, domain.ApprovalStatusApproved); err != nil {
			return Outcome{}, err
		}
		if _, err := sender.Send(ctx, in.ToPhone, pending.CustomerPhone, pending.GeneratedResponse); err != nil {
			logger.Base().Error("approved send failed", zap.Error(err))
		}
		o.appendTurn(ctx, pending.LeadID, domain.SenderAgent, pending.GeneratedResponse)
		return Outcome{LeadID: pending.LeadID, Note: "approval approved and sent"}, nil

	case matchesSynonym(lower, noSynonyms):
		if err := o.approvals.UpdateStatus(ctx, pending.ID, domain.ApprovalStatusRejected); err != nil {
			return Outcome{}, err
		}
		return Outcome{LeadID: pending.LeadID, Note: "approval rejected"}, nil

	case strings.HasPrefix(lower, "edit ") && len(strings.TrimSpace(trimmed[5:])) > 0:
		instructions := strings.TrimSpace(trimmed[5:])
		regenerated := o.regenerateWithInstructions(ctx, pending, instructions)
		if !overlapsKeywords(instructions, regenerated) {
			regenerated = o.regenerateWithInstructions(ctx, pending, instructions+" "+instructions)
		}
		newApproval, err := o.approvals.Create(ctx, pending.LeadID, profile.UserID, in.DealershipID, pending.CustomerMessage, regenerated, pending.CustomerPhone, now)
		if err != nil {
			return Outcome{}, err
		}
		if _, err := sender.Send(ctx, in.ToPhone, in.FromPhone, "Updated draft for approval: "+newApproval.GeneratedResponse+"\n\nReply YES, NO, EDIT <instructions>, or FORCE <text>."); err != nil {
			logger.Base().Error("edit redraft send failed", zap.Error(err))
		}
		return Outcome{LeadID: pending.LeadID, Note: "approval regenerated"}, nil

	case strings.HasPrefix(lower, "force ") && len(strings.TrimSpace(trimmed[6:])) > 0:
		text := strings.TrimSpace(trimmed[6:])
		if err := o.approvals.UpdateStatus(ctx, pending.ID, domain.ApprovalStatusForceSent); err != nil {
			return Outcome{}, err
		}
		if _, err := sender.Send(ctx, in.ToPhone, pending.CustomerPhone, text); err != nil {
			logger.Base().Error("force send failed", zap.Error(err))
		}
		o.appendTurn(ctx, pending.LeadID, domain.SenderAgent, text)
		return Outcome{LeadID: pending.LeadID, Note: "force sent"}, nil

	default:
		help := "Reply YES to send, NO to reject, EDIT <instructions> to revise, or FORCE <text> to send custom text."
		if _, err := sender.Send(ctx, in.ToPhone, in.FromPhone, help); err != nil {
			logger.Base().Error("help reply send failed", zap.Error(err))
		}
		return Outcome{LeadID: pending.LeadID, Note: "unrecognized approval command"}, nil
	}
}

func matchesSynonym(lower string, synonyms []string) bool {
	for _, s := range synonyms {
		if lower == s {
			return true
		}
	}
	return false
}

// regenerateWithInstructions re-runs the Prompt Builder with the
// salesperson's instructions folded into the user message, prioritized
// ahead of the original customer message (§4.11 EDIT command).
func (o *Orchestrator) regenerateWithInstructions(ctx context.Context, pending *domain.PendingApproval, instructions string) string {
	in := prompt.Input{
		DealershipName: "",
		AgentName:      o.agentName,
		UserMessage:    fmt.Sprintf("Salesperson instructions (must follow): %s\n\nCustomer said: %s", instructions, pending.CustomerMessage),
	}
	reply, err := o.prompts.Generate(ctx, in)
	if err != nil {
		logger.Base().Error("edit regeneration failed", zap.Error(err))
		return pending.GeneratedResponse
	}
	return reply.Message
}

// overlapsKeywords is the keyword-overlap heuristic §4.11/§9 calls for:
// at least one non-trivial word of the instructions must appear in the
// regenerated text.
func overlapsKeywords(instructions, regenerated string) bool {
	lowerRegen := strings.ToLower(regenerated)
	for _, word := range strings.Fields(strings.ToLower(instructions)) {
		if len(word) < 4 {
			continue
		}
		if strings.Contains(lowerRegen, word) {
			return true
		}
	}
	return false
}

func (o *Orchestrator) handleBusinessCommand(ctx context.Context, in Inbound, sender provider.Sender, profile *domain.UserProfile) (Outcome, error) {
	cmd := commands.Parse(in.Text)
	reply := ""

	switch cmd.Kind {
	case commands.KindLeadCreation:
		f := cmd.LeadCreation
		lead := &domain.Lead{
			ID:             domain.NewID(),
			DealershipID:   in.DealershipID,
			Name:           f.Name,
			CarInterest:    f.CarInterest,
			Source:         "salesperson",
			Status:         domain.LeadStatusNew,
			LastContactAt:  time.Now(),
			AssignedUserID: &profile.UserID,
		}
		if f.Phone != "unknown" {
			phone := phoneresolver.Normalize(f.Phone)
			lead.Phone = &phone
		}
		if f.Email != "unknown" {
			lead.Email = &f.Email
		}
		if err := o.repo.Leads().Create(ctx, lead); err != nil {
			return Outcome{}, apperr.Provider("failed to create lead", err)
		}
		reply = fmt.Sprintf("Created lead %s (%s, %s)", lead.Name, lead.CarInterest, valueOr(lead.Phone, "no phone"))
		if f.Incomplete {
			reply += " — some fields were not provided and default to \"unknown\"."
		}

	case commands.KindInventoryUpdate:
		f := cmd.InventoryUpdate
		vehicle := &domain.Vehicle{
			ID:           domain.NewID(),
			DealershipID: in.DealershipID,
			Make:         f.Make,
			Model:        f.Model,
			Year:         f.Year,
			Price:        f.Price,
			Condition:    f.Condition,
			Description:  f.Description,
			StockNumber:  f.StockNumber,
			Status:       domain.VehicleStatusActive,
		}
		if err := o.repo.Inventory().Create(ctx, vehicle); err != nil {
			return Outcome{}, apperr.Provider("failed to create vehicle", err)
		}
		if o.tasks != nil {
			o.tasks.Enqueue(ctx, task.KindEmbeddingBuild, task.EmbeddingBuildPayload{DealershipID: in.DealershipID, VehicleID: vehicle.ID})
		}
		reply = fmt.Sprintf("Added %d %s %s to inventory; building search index now.", vehicle.Year, vehicle.Make, vehicle.Model)

	case commands.KindStatusUpdate:
		f := cmd.StatusUpdate
		if f.LeadIdentifier == "" || f.NewStatus == "" {
			reply = "Couldn't parse a lead and status from that. Try: \"mark as hot <phone>\"."
			break
		}
		normalized := phoneresolver.Normalize(f.LeadIdentifier)
		lead, err := o.repo.Leads().GetByPhone(ctx, in.DealershipID, normalized)
		if err != nil {
			reply = "No lead found matching " + f.LeadIdentifier
			break
		}
		lead.Status = f.NewStatus
		if err := o.repo.Leads().Update(ctx, lead); err != nil {
			return Outcome{}, apperr.Provider("failed to update lead status", err)
		}
		reply = fmt.Sprintf("Updated %s to status %s", lead.Name, lead.Status)

	case commands.KindLeadInquiry, commands.KindInventoryInquiry, commands.KindGeneralQuestion, commands.KindTestDriveScheduling:
		reply = "Got it, noted."

	default:
		reply = "Sorry, I didn't recognize that command. Try creating a lead, adding inventory, or asking a question."
	}

	if _, err := sender.Send(ctx, in.ToPhone, in.FromPhone, reply); err != nil {
		logger.Base().Error("business command reply send failed", zap.Error(err))
	}
	return Outcome{Note: "business command: " + string(cmd.Kind)}, nil
}

func valueOr(s *string, fallback string) string {
	if s == nil || *s == "" {
		return fallback
	}
	return *s
}

// ---------------------------------------------------------------------
// Customer path (§4.11 step 3)
// ---------------------------------------------------------------------

var nameHeuristicPattern = regexp.MustCompile(`(?i)my name is\s+([A-Za-z][A-Za-z '\-]*)`)

func (o *Orchestrator) handleCustomer(ctx context.Context, in Inbound, sender provider.Sender) (Outcome, error) {
	normalizedPhone := phoneresolver.Normalize(in.FromPhone)

	lead, err := o.repo.Leads().GetByPhone(ctx, in.DealershipID, normalizedPhone)
	if err != nil {
		lead, err = o.createLead(ctx, in, normalizedPhone)
		if err != nil {
			return Outcome{}, err
		}
	}

	var outcome Outcome
	o.locker.WithLock(lead.ID, func() {
		outcome, err = o.processCustomerMessage(ctx, in, sender, lead)
	})
	return outcome, err
}

func (o *Orchestrator) createLead(ctx context.Context, in Inbound, normalizedPhone string) (*domain.Lead, error) {
	name := "there"
	if m := nameHeuristicPattern.FindStringSubmatch(in.Text); m != nil {
		name = strings.TrimSpace(m[1])
	}
	q := entity.Parse(in.Text)
	carInterest := ""
	if q.Make != "" {
		carInterest = strings.TrimSpace(q.Make + " " + q.Model)
	}
	lead := &domain.Lead{
		ID:            domain.NewID(),
		DealershipID:  in.DealershipID,
		Name:          name,
		CarInterest:   carInterest,
		Source:        in.Provider,
		Status:        domain.LeadStatusNew,
		Phone:         &normalizedPhone,
		LastContactAt: time.Now(),
	}
	if err := o.repo.Leads().Create(ctx, lead); err != nil {
		return nil, apperr.Provider("failed to create lead", err)
	}
	return lead, nil
}

func (o *Orchestrator) processCustomerMessage(ctx context.Context, in Inbound, sender provider.Sender, lead *domain.Lead) (Outcome, error) {
	now := time.Now()

	o.appendTurn(ctx, lead.ID, domain.SenderCustomer, in.Text)

	mem, err := o.memStore.Load(ctx, lead.ID)
	if err != nil {
		return Outcome{}, apperr.Provider("failed to load conversation memory", err)
	}
	mem.AddTurn(domain.SenderCustomer, in.Text, now)

	q := entity.Parse(in.Text)
	recentText := recentTurnsText(mem)
	currentState := statemachine.State(mem.Slots[stateSlotKey])
	if currentState == "" {
		currentState = statemachine.StateGreeting
	}
	signals := statemachine.DeriveSignals(
		q.Budget != nil || q.PriceRangeLow != nil || q.PriceRangeHigh != nil,
		q.Model != "",
		q.BodyType != "",
		in.Text+" "+recentText,
	)
	newState := statemachine.Advance(currentState, signals)
	if mem.Slots == nil {
		mem.Slots = map[string]string{}
	}
	mem.Slots[stateSlotKey] = string(newState)
	mergeEntitySlots(mem, q)

	var candidates []retriever.Candidate
	if statemachine.RetrievalAllowed(newState) && (q.HasStrongSignals || mem.Slots["budget"] != "" || mem.Slots["vehicle_type"] != "") {
		candidates, err = o.retriever.SearchWithContext(ctx, in.DealershipID, in.Text, retrieverContext(mem, q), 3)
		if err != nil {
			logger.Base().Warn("vehicle retrieval failed, continuing without candidates", zap.Error(err))
			candidates = nil
		}
		if len(candidates) > 0 {
			mem.RecentVehicles = toVehicleRefs(candidates)
			mem.SetLastInventoryMention(mem.RecentVehicles[0])
		}
	}

	dealershipName := ""
	if d, derr := o.repo.Dealerships().GetByID(ctx, in.DealershipID); derr == nil {
		dealershipName = d.Name
	}

	reply, err := o.prompts.Generate(ctx, prompt.Input{
		DealershipName: dealershipName,
		AgentName:      o.agentName,
		RecentTurns:    toContextTurns(mem),
		Slots:          mem.Slots,
		Vehicles:       candidates,
		UserMessage:    in.Text,
	})
	if err != nil {
		// reply stays the zero value here: AutoSend is false, so the empty
		// draft lands in deliverOrQueueApproval's pending queue instead of
		// auto-sending anything to the customer.
		logger.Base().Error("prompt generation failed", zap.Error(err))
	}

	decision := handoff.Route(in.Text, reply.Message, mem.HasAppointment())
	outcome := Outcome{LeadID: lead.ID}

	switch {
	case decision.ShouldHandoff && decision.Reason == handoff.ReasonTestDriveTimeConfirmed:
		outcome = o.confirmAppointment(ctx, in, sender, lead, mem, q, now)
	case decision.ShouldHandoff && decision.Reason == handoff.ReasonTestDriveScheduling:
		ask := o.rapport.Sample(rapport.SchedulePrompt)
		if ask == "" {
			ask = "What day and time works best for a test drive?"
		}
		o.sendNow(ctx, sender, in, lead, ask)
		outcome.Note = "asked for a test drive time"
	case decision.ShouldHandoff:
		canned := handoff.CannedMessage(decision.Reason)
		o.sendNow(ctx, sender, in, lead, canned)
		o.notifyAssignedSalesperson(ctx, in, sender, lead, string(decision.Reason))
		outcome.Handoff = true
		outcome.Note = "handed off: " + string(decision.Reason)
	default:
		outcome = o.deliverOrQueueApproval(ctx, in, sender, lead, reply, now)
	}

	if err := o.memStore.Save(ctx, mem); err != nil {
		logger.Base().Error("failed to persist conversation memory", zap.Error(err))
	}
	return outcome, nil
}

func (o *Orchestrator) appendTurn(ctx context.Context, leadID, sender, message string) {
	turn := &domain.ConversationTurn{
		ID:      domain.NewID(),
		LeadID:  leadID,
		Sender:  sender,
		Message: message,
	}
	if err := o.repo.Conversations().Append(ctx, turn); err != nil {
		logger.Base().Error("failed to append conversation turn", zap.Error(err))
	}
}

func (o *Orchestrator) sendNow(ctx context.Context, sender provider.Sender, in Inbound, lead *domain.Lead, message string) {
	if _, err := sender.Send(ctx, in.ToPhone, in.FromPhone, message); err != nil {
		logger.Base().Error("send failed, queuing retry", zap.Error(err), zap.String("lead_id", lead.ID))
		if o.tasks != nil {
			o.tasks.Enqueue(ctx, task.KindDelayedSend, task.DelayedSendPayload{
				Provider: in.Provider,
				From:     in.ToPhone,
				To:       in.FromPhone,
				Text:     message,
			})
		}
	}
	o.appendTurn(ctx, lead.ID, domain.SenderAgent, message)
}

func (o *Orchestrator) confirmAppointment(ctx context.Context, in Inbound, sender provider.Sender, lead *domain.Lead, mem *memory.ConversationMemory, q entity.VehicleQuery, now time.Time) Outcome {
	vehicleText := "the vehicle"
	if mem.LastInventoryMention != nil {
		vehicleText = fmt.Sprintf("%d %s %s", mem.LastInventoryMention.Year, mem.LastInventoryMention.Make, mem.LastInventoryMention.Model)
	} else if q.Make != "" {
		vehicleText = strings.TrimSpace(q.Make + " " + q.Model)
	}

	appt := calendar.Book(lead.Name, in.FromPhone, vehicleText, in.Text, in.Text, now)
	mem.SetAppointment(appt.When.Format("2006-01-02"), appt.When.Format("15:04"), vehicleText, now)

	lead.Status = domain.LeadStatusAppointmentBooked
	lead.AppointmentDatetime = &appt.When
	if err := o.repo.Leads().Update(ctx, lead); err != nil {
		logger.Base().Error("failed to record appointment on lead", zap.Error(err))
	}

	confirmation := o.rapport.AppointmentConfirmationFor(appt.When.Format("Jan 2 at 3:04 PM"))
	o.sendNow(ctx, sender, in, lead, confirmation)
	return Outcome{LeadID: lead.ID, Note: "appointment booked: " + appt.EventURL}
}

func (o *Orchestrator) notifyAssignedSalesperson(ctx context.Context, in Inbound, sender provider.Sender, lead *domain.Lead, reason string) {
	if lead.AssignedUserID == nil {
		return
	}
	profile := o.findProfileByUserID(ctx, lead.DealershipID, *lead.AssignedUserID)
	if profile == nil || profile.Phone == nil {
		return
	}
	notice := fmt.Sprintf("Handoff needed for %s (%s): %s", lead.Name, reason, handoff.CannedMessage(handoff.Reason(reason)))
	if _, err := sender.Send(ctx, in.ToPhone, *profile.Phone, notice); err != nil {
		logger.Base().Error("salesperson handoff notification failed", zap.Error(err))
	}
}

// deliverOrQueueApproval implements the confidence-router supplement: a
// low-confidence or incomplete structured reply routes to the Approval
// Store instead of auto-sending (SPEC_FULL.md SUPPLEMENTED FEATURES).
func (o *Orchestrator) deliverOrQueueApproval(ctx context.Context, in Inbound, sender provider.Sender, lead *domain.Lead, reply prompt.Reply, now time.Time) Outcome {
	if !reply.AutoSend || strings.TrimSpace(reply.Message) == "" {
		salespersonID, salespersonPhone := o.pickApprover(ctx, in.DealershipID, lead)
		if salespersonID == "" {
			if strings.TrimSpace(reply.Message) == "" {
				return Outcome{LeadID: lead.ID, Note: "no reply generated and no approver available"}
			}
			// no salesperson to approve against; degrade to auto-send rather
			// than stall the conversation indefinitely.
			o.scheduleOrSendNow(ctx, in, sender, lead, reply.Message, now)
			return Outcome{LeadID: lead.ID, Note: "auto-sent (no approver available)"}
		}
		appr, err := o.approvals.Create(ctx, lead.ID, salespersonID, in.DealershipID, in.Text, reply.Message, in.FromPhone, now)
		if err != nil {
			logger.Base().Error("failed to create pending approval", zap.Error(err))
			return Outcome{LeadID: lead.ID, Note: "approval creation failed"}
		}
		if salespersonPhone != "" {
			draft := fmt.Sprintf("Draft reply for %s: %q\n\nReply YES, NO, EDIT <instructions>, or FORCE <text>.", lead.Name, appr.GeneratedResponse)
			if _, err := sender.Send(ctx, in.ToPhone, salespersonPhone, draft); err != nil {
				logger.Base().Error("approval draft send failed", zap.Error(err))
			}
		}
		return Outcome{LeadID: lead.ID, Note: "queued for approval"}
	}

	return o.scheduleOrSendNow(ctx, in, sender, lead, reply.Message, now)
}

func (o *Orchestrator) pickApprover(ctx context.Context, dealershipID string, lead *domain.Lead) (userID, phone string) {
	if lead.AssignedUserID != nil {
		if p := o.findProfileByUserID(ctx, dealershipID, *lead.AssignedUserID); p != nil {
			if p.Phone != nil {
				return p.UserID, *p.Phone
			}
			return p.UserID, ""
		}
	}
	profiles, err := o.repo.UserProfiles().ListByDealership(ctx, dealershipID)
	if err != nil || len(profiles) == 0 {
		return "", ""
	}
	p := profiles[0]
	if p.Phone != nil {
		return p.UserID, *p.Phone
	}
	return p.UserID, ""
}

// findProfileByUserID scans a dealership's staff for the profile matching
// the external user id recorded on Lead.AssignedUserID. UserProfileRepository
// only keys lookups by its own relational id or email, so this mirrors
// findSalesperson's phone scan rather than adding a narrow repository method.
func (o *Orchestrator) findProfileByUserID(ctx context.Context, dealershipID, userID string) *domain.UserProfile {
	profiles, err := o.repo.UserProfiles().ListByDealership(ctx, dealershipID)
	if err != nil {
		return nil
	}
	for _, p := range profiles {
		if p.UserID == userID {
			return p
		}
	}
	return nil
}

func (o *Orchestrator) scheduleOrSendNow(ctx context.Context, in Inbound, sender provider.Sender, lead *domain.Lead, message string, now time.Time) Outcome {
	sched := o.schedulerSettings(ctx, in.DealershipID)
	decision := scheduler.Decide(message, sched, now)
	if decision.Instant {
		o.cancelPendingSend(lead.ID)
		o.sendNow(ctx, sender, in, lead, message)
		return Outcome{LeadID: lead.ID, Note: "sent instantly"}
	}

	// a newer message for this lead supersedes any reply still waiting to
	// fire; cancelling keeps the conversation from talking over itself.
	o.cancelPendingSend(lead.ID)
	handle := scheduler.Schedule(ctx, decision.Delay, func(ctx context.Context) {
		o.locker.WithLock(lead.ID, func() {
			o.sendNow(ctx, sender, in, lead, message)
		})
		o.clearPendingSend(lead.ID)
	})
	o.pendingSendsMu.Lock()
	o.pendingSends[lead.ID] = handle
	o.pendingSendsMu.Unlock()

	return Outcome{LeadID: lead.ID, Scheduled: true, Delay: decision.Delay, Note: "scheduled delayed send"}
}

func (o *Orchestrator) cancelPendingSend(leadID string) {
	o.pendingSendsMu.Lock()
	handle, ok := o.pendingSends[leadID]
	delete(o.pendingSends, leadID)
	o.pendingSendsMu.Unlock()
	if ok {
		handle.Cancel()
	}
}

func (o *Orchestrator) clearPendingSend(leadID string) {
	o.pendingSendsMu.Lock()
	defer o.pendingSendsMu.Unlock()
	if _, ok := o.pendingSends[leadID]; ok {
		delete(o.pendingSends, leadID)
	}
}

func (o *Orchestrator) schedulerSettings(ctx context.Context, dealershipID string) scheduler.Settings {
	get := func(key string) string {
		v, err := o.settings.GetDealership(ctx, dealershipID, key)
		if err != nil {
			return ""
		}
		return v
	}
	s := scheduler.Settings{
		Mode:               scheduler.Mode(get(domain.SettingReplyTimingMode)),
		BusinessHoursStart: get(domain.SettingBusinessHoursStart),
		BusinessHoursEnd:   get(domain.SettingBusinessHoursEnd),
		Timezone:           get(domain.SettingTimezone),
	}
	if v, err := o.settings.GetDealership(ctx, dealershipID, domain.SettingReplyDelaySeconds); err == nil {
		fmt.Sscanf(v, "%d", &s.ReplyDelaySeconds)
	}
	if v, err := o.settings.GetDealership(ctx, dealershipID, domain.SettingBusinessHoursDelaySecond); err == nil {
		fmt.Sscanf(v, "%d", &s.BusinessHoursDelaySeconds)
	}
	return s
}

func recentTurnsText(mem *memory.ConversationMemory) string {
	var b strings.Builder
	for _, t := range mem.Turns {
		b.WriteString(t.Text)
		b.WriteString(" ")
	}
	return b.String()
}

func mergeEntitySlots(mem *memory.ConversationMemory, q entity.VehicleQuery) {
	slots := map[string]string{}
	if q.Make != "" {
		slots["make"] = q.Make
	}
	if q.Model != "" {
		slots["model"] = q.Model
	}
	if q.BodyType != "" {
		slots["vehicle_type"] = q.BodyType
	}
	if q.Budget != nil {
		slots["budget"] = fmt.Sprintf("%.2f", *q.Budget)
	}
	mem.UpdateSlots(slots)
}

func retrieverContext(mem *memory.ConversationMemory, q entity.VehicleQuery) retriever.Context {
	c := retriever.Context{
		VehicleType: mem.Slots["vehicle_type"],
		Preferences: map[string]string{},
	}
	if q.PriceRangeLow != nil {
		c.BudgetLow = q.PriceRangeLow
	}
	if q.PriceRangeHigh != nil {
		c.BudgetHigh = q.PriceRangeHigh
	} else if q.Budget != nil {
		c.BudgetHigh = q.Budget
	}
	for _, f := range q.Features {
		c.Preferences[f] = "true"
	}
	return c
}

func toVehicleRefs(candidates []retriever.Candidate) []memory.VehicleRef {
	refs := make([]memory.VehicleRef, 0, len(candidates))
	for _, c := range candidates {
		refs = append(refs, memory.VehicleRef{
			ID:    c.Vehicle.ID,
			Make:  c.Vehicle.Make,
			Model: c.Vehicle.Model,
			Year:  c.Vehicle.Year,
			Price: c.Vehicle.Price,
		})
	}
	return refs
}

func toContextTurns(mem *memory.ConversationMemory) []prompt.ContextTurn {
	turns := make([]prompt.ContextTurn, 0, len(mem.Turns))
	for _, t := range mem.Turns {
		turns = append(turns, prompt.ContextTurn{Role: t.Role, Content: t.Text})
	}
	return turns
}
