package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"regexp"

	"github.com/slack-go/slack"

	"kintai-bot/internal/date"
	"kintai-bot/internal/i18n"
	"kintai-bot/internal/model"
	"kintai-bot/internal/render"
)

// RecordStore is the attendance side of the record store. Every count that
// drives a render is re-queried through CountsByDate; the service never keeps
// tallies in memory.
type RecordStore interface {
	GetRecord(ctx context.Context, date, userID string) (*model.AttendanceRecord, error)
	CreateRecord(ctx context.Context, record *model.AttendanceRecord) error
	UpdateRecord(ctx context.Context, record *model.AttendanceRecord) error
	GetRecordsByDate(ctx context.Context, date string) ([]*model.AttendanceRecord, error)
	CountsByDate(ctx context.Context, date string) (model.DayCounts, error)
}

// MemberDirectory is the user directory side of the record store.
type MemberDirectory interface {
	GetByCode(ctx context.Context, code string) (*model.TeamMember, error)
	Create(ctx context.Context, member *model.TeamMember) error
}

// Gateway is the messaging surface the service writes to.
type Gateway interface {
	PostMessage(ctx context.Context, channelID, text string, blocks []slack.Block) (string, error)
	UpdateMessage(ctx context.Context, channelID, ts, text string, blocks []slack.Block) error
	OpenModal(ctx context.Context, triggerID string, view slack.ModalViewRequest) error
	PostThreadReply(ctx context.Context, channelID, parentTS, text string, blocks ...slack.Block) (string, error)
}

// ButtonEvent is a parsed and validated block-action press. Date is the
// civil day extracted from the message text; the router fills it only after
// the date gate has passed.
type ButtonEvent struct {
	UserID      string
	UserName    string
	ChannelID   string
	MessageTS   string
	MessageText string
	TriggerID   string
	Date        string
}

type AttendanceService struct {
	records RecordStore
	members MemberDirectory
	gw      Gateway
}

func NewAttendanceService(records RecordStore, members MemberDirectory, gw Gateway) *AttendanceService {
	return &AttendanceService{records: records, members: members, gw: gw}
}

// SelectWorkStyle handles an office/remote button press for today.
//
// Absent record: insert with the requested style. Departed user: reject with
// a notice, no write, no re-render. Same style: no write. Different style:
// update. An unregistered user additionally gets a threaded registration
// invite whatever the outcome was.
func (s *AttendanceService) SelectWorkStyle(ctx context.Context, ev ButtonEvent, style model.WorkStyle) error {
	record, err := s.records.GetRecord(ctx, ev.Date, ev.UserID)
	if err != nil {
		return fmt.Errorf("get record: %w", err)
	}

	rejected := false
	announceID := ""
	switch {
	case record == nil:
		record = &model.AttendanceRecord{
			UserID:    ev.UserID,
			UserName:  ev.UserName,
			ChannelID: ev.ChannelID,
			Date:      ev.Date,
			WorkStyle: style,
		}
		// A racing duplicate insert is rejected by the store's unique
		// (user_id, date) index and surfaces here.
		if err := s.records.CreateRecord(ctx, record); err != nil {
			return fmt.Errorf("create record: %w", err)
		}
		announceID = announceKey(style)
	case record.Departed():
		rejected = true
		if err := s.gw.OpenModal(ctx, ev.TriggerID, render.InfoModal(ctx, "modal.already_departed")); err != nil {
			log.Printf("ERROR open departed notice for %s: %v", ev.UserID, err)
		}
	case record.WorkStyle == style:
		// Re-selecting the active style is a no-op; fall through to re-render.
	default:
		record.WorkStyle = style
		if err := s.records.UpdateRecord(ctx, record); err != nil {
			return fmt.Errorf("update record: %w", err)
		}
		announceID = announceKey(style)
	}

	member := s.lookupMember(ctx, ev.UserID)
	if member == nil {
		s.postRegisterInvite(ctx, ev)
	}

	if rejected {
		return nil
	}

	if announceID != "" {
		name := ev.UserName
		if member != nil && member.DisplayName != "" {
			name = member.DisplayName
		}
		announce := i18n.T(ctx, announceID, map[string]any{"Name": name})
		if _, err := s.gw.PostThreadReply(ctx, ev.ChannelID, ev.MessageTS, announce); err != nil {
			log.Printf("ERROR post selection announcement for %s: %v", ev.UserID, err)
		}
	}

	return s.refreshMessage(ctx, ev)
}

// Depart toggles the departure state for today. Pressing the button again
// flips the user back to present; the counter's parity is the state.
func (s *AttendanceService) Depart(ctx context.Context, ev ButtonEvent) error {
	record, err := s.records.GetRecord(ctx, ev.Date, ev.UserID)
	if err != nil {
		return fmt.Errorf("get record: %w", err)
	}
	if record == nil {
		if err := s.gw.OpenModal(ctx, ev.TriggerID, render.InfoModal(ctx, "modal.not_checked_in")); err != nil {
			return fmt.Errorf("open not-checked-in notice: %w", err)
		}
		return nil
	}

	record.DepartureCount++
	if err := s.records.UpdateRecord(ctx, record); err != nil {
		return fmt.Errorf("update record: %w", err)
	}

	return s.refreshMessage(ctx, ev)
}

// ListDay opens the read-only attendance list for today, joining records with
// directory display names.
func (s *AttendanceService) ListDay(ctx context.Context, ev ButtonEvent) error {
	records, err := s.records.GetRecordsByDate(ctx, ev.Date)
	if err != nil {
		return fmt.Errorf("get records: %w", err)
	}

	var groups render.ListGroups
	for _, record := range records {
		entry := render.ListEntry{
			Name:     s.resolveName(ctx, record),
			Departed: record.Departed(),
		}
		switch record.WorkStyle {
		case model.WorkStyleOffice:
			groups.Office = append(groups.Office, entry)
		case model.WorkStyleRemote:
			groups.Remote = append(groups.Remote, entry)
		default:
			groups.None = append(groups.None, entry)
		}
	}

	if err := s.gw.OpenModal(ctx, ev.TriggerID, render.ListModal(ctx, groups)); err != nil {
		return fmt.Errorf("open list modal: %w", err)
	}
	return nil
}

// RejectStaleDate shows the error modal for a press on a message whose date
// is no longer today.
func (s *AttendanceService) RejectStaleDate(ctx context.Context, triggerID string) error {
	if err := s.gw.OpenModal(ctx, triggerID, render.ErrorModal(ctx, "modal.stale_date")); err != nil {
		return fmt.Errorf("open stale-date modal: %w", err)
	}
	return nil
}

// codePattern matches the |code| token the registration invite embeds.
var codePattern = regexp.MustCompile(`\|([^|\s]+)\|`)

// messageRef travels through the registration modal's private metadata so the
// submission handler knows which invite message to overwrite.
type messageRef struct {
	ChannelID string `json:"channel_id"`
	TS        string `json:"ts"`
}

// RegisterTrigger opens the registration form from an invite button press.
// The candidate code is pulled from the delimited token in the invite text.
func (s *AttendanceService) RegisterTrigger(ctx context.Context, ev ButtonEvent) error {
	m := codePattern.FindStringSubmatch(ev.MessageText)
	if m == nil {
		return fmt.Errorf("no candidate code in invite message")
	}

	meta, err := json.Marshal(messageRef{ChannelID: ev.ChannelID, TS: ev.MessageTS})
	if err != nil {
		return fmt.Errorf("encode private metadata: %w", err)
	}

	if err := s.gw.OpenModal(ctx, ev.TriggerID, render.RegisterModal(ctx, m[1], string(meta))); err != nil {
		return fmt.Errorf("open register modal: %w", err)
	}
	return nil
}

// RegisterMember completes registration from the modal submission. An already
// registered code keeps its existing entry; in either case the invite message
// is overwritten with a plain-text notice, buttons removed.
func (s *AttendanceService) RegisterMember(ctx context.Context, code, displayName, privateMetadata string) error {
	member, err := s.members.GetByCode(ctx, code)
	if err != nil {
		return fmt.Errorf("get member: %w", err)
	}

	noticeID := "register.done"
	if member != nil {
		noticeID = "register.exists"
		if member.DisplayName != "" {
			displayName = member.DisplayName
		}
	} else {
		if err := s.members.Create(ctx, &model.TeamMember{Code: code, DisplayName: displayName}); err != nil {
			return fmt.Errorf("create member: %w", err)
		}
	}

	var ref messageRef
	if err := json.Unmarshal([]byte(privateMetadata), &ref); err != nil {
		return fmt.Errorf("decode private metadata: %w", err)
	}

	notice := i18n.T(ctx, noticeID, map[string]any{"Name": displayName})
	if err := s.gw.UpdateMessage(ctx, ref.ChannelID, ref.TS, notice, nil); err != nil {
		return fmt.Errorf("update invite message: %w", err)
	}
	return nil
}

// PostDailyMessage posts the day's interactive message to the channel and
// returns its timestamp.
func (s *AttendanceService) PostDailyMessage(ctx context.Context, channelID string) (string, error) {
	text := i18n.T(ctx, "daily.header", map[string]any{"Date": date.Header()})

	counts, err := s.records.CountsByDate(ctx, date.Today())
	if err != nil {
		return "", fmt.Errorf("aggregate counts: %w", err)
	}

	ts, err := s.gw.PostMessage(ctx, channelID, text, render.ChannelMessage(ctx, text, counts))
	if err != nil {
		return "", fmt.Errorf("post daily message: %w", err)
	}
	return ts, nil
}

// refreshMessage re-queries the day's counts and rewrites the channel
// message's button row. The counts come from the store, not from the write
// that just happened; a concurrent writer may already be reflected.
func (s *AttendanceService) refreshMessage(ctx context.Context, ev ButtonEvent) error {
	counts, err := s.records.CountsByDate(ctx, ev.Date)
	if err != nil {
		return fmt.Errorf("aggregate counts: %w", err)
	}

	blocks := render.ChannelMessage(ctx, ev.MessageText, counts)
	if err := s.gw.UpdateMessage(ctx, ev.ChannelID, ev.MessageTS, ev.MessageText, blocks); err != nil {
		// The store write already committed; a stale display is accepted.
		return fmt.Errorf("update message: %w", err)
	}
	return nil
}

// lookupMember returns the directory entry for a user, or nil when there is
// none or the lookup failed (a failed lookup must not trigger an invite).
func (s *AttendanceService) lookupMember(ctx context.Context, code string) *model.TeamMember {
	member, err := s.members.GetByCode(ctx, code)
	if err != nil {
		log.Printf("ERROR get member %s: %v", code, err)
		return nil
	}
	return member
}

func (s *AttendanceService) postRegisterInvite(ctx context.Context, ev ButtonEvent) {
	text, blocks := render.RegisterInvite(ctx, ev.UserName, ev.UserID)
	if _, err := s.gw.PostThreadReply(ctx, ev.ChannelID, ev.MessageTS, text, blocks...); err != nil {
		log.Printf("ERROR post register invite for %s: %v", ev.UserID, err)
	}
}

func (s *AttendanceService) resolveName(ctx context.Context, record *model.AttendanceRecord) string {
	if member := s.lookupMember(ctx, record.UserID); member != nil && member.DisplayName != "" {
		return member.DisplayName
	}
	if record.UserName != "" {
		return record.UserName
	}
	return record.UserID
}

func announceKey(style model.WorkStyle) string {
	if style == model.WorkStyleRemote {
		return "announce.remote"
	}
	return "announce.office"
}
