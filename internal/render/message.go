// Package render builds the Block Kit structures the bot displays: the daily
// channel message's button row, the attendance list modal, notice modals, and
// the member registration form. Everything here is a pure function of its
// inputs so it can be tested without a Slack client.
package render

import (
	"context"
	"strings"

	"github.com/slack-go/slack"

	"kintai-bot/internal/i18n"
	"kintai-bot/internal/model"
)

// Action and callback identifiers. These are part of the interaction wire
// contract and must stay stable across re-renders.
const (
	ActionOffice   = "button_office"
	ActionRemote   = "button_remote"
	ActionList     = "button_list"
	ActionDepart   = "button_depart"
	ActionRegister = "button_register"

	CallbackRegisterMember = "register_member_modal"

	RegisterCodeBlockID = "member_code"
	RegisterNameBlockID = "member_name"
	RegisterCodeAction  = "code"
	RegisterNameAction  = "display_name"
)

// ChannelMessage builds the daily message body: the original text verbatim,
// then the four-button action row. Button order and action IDs never change;
// only the counts in the labels do.
func ChannelMessage(ctx context.Context, text string, counts model.DayCounts) []slack.Block {
	office := slack.NewButtonBlockElement(ActionOffice, ActionOffice,
		plainText(i18n.T(ctx, "button.office", map[string]any{"Count": counts.Office})))
	remote := slack.NewButtonBlockElement(ActionRemote, ActionRemote,
		plainText(i18n.T(ctx, "button.remote", map[string]any{"Count": counts.Remote})))
	list := slack.NewButtonBlockElement(ActionList, ActionList,
		plainText(i18n.T(ctx, "button.list"))).WithStyle(slack.StylePrimary)
	depart := slack.NewButtonBlockElement(ActionDepart, ActionDepart,
		plainText(i18n.T(ctx, "button.depart"))).WithStyle(slack.StyleDanger)

	return []slack.Block{
		slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, text, false, false), nil, nil),
		slack.NewActionBlock("attendance_actions", office, remote, list, depart),
	}
}

// ListEntry is one rendered name in the attendance list.
type ListEntry struct {
	Name     string
	Departed bool
}

// ListGroups partitions a day's entries by work style.
type ListGroups struct {
	Office []ListEntry
	Remote []ListEntry
	None   []ListEntry
}

// ListModal builds the read-only attendance list: one section per group,
// headed by the group's member count, with a departed suffix per name.
func ListModal(ctx context.Context, groups ListGroups) slack.ModalViewRequest {
	blocks := []slack.Block{
		listSection(ctx, "list.group.office", groups.Office),
		slack.NewDividerBlock(),
		listSection(ctx, "list.group.remote", groups.Remote),
		slack.NewDividerBlock(),
		listSection(ctx, "list.group.none", groups.None),
	}

	return slack.ModalViewRequest{
		Type:   slack.VTModal,
		Title:  plainText(i18n.T(ctx, "list.title")),
		Close:  plainText(i18n.T(ctx, "modal.close")),
		Blocks: slack.Blocks{BlockSet: blocks},
	}
}

func listSection(ctx context.Context, headerID string, entries []ListEntry) *slack.SectionBlock {
	suffix := i18n.T(ctx, "list.departed_suffix")

	var b strings.Builder
	b.WriteString("*" + i18n.T(ctx, headerID, map[string]any{"Count": len(entries)}) + "*")
	if len(entries) == 0 {
		b.WriteString("\n" + i18n.T(ctx, "list.empty"))
	}
	for _, e := range entries {
		b.WriteString("\n• " + e.Name)
		if e.Departed {
			b.WriteString(suffix)
		}
	}
	return slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, b.String(), false, false), nil, nil)
}

// RegisterInvite builds the threaded reply inviting an unrecognized user to
// register. The user's code rides in the text between | delimiters so the
// registration trigger can recover it from the pressed message.
func RegisterInvite(ctx context.Context, name, code string) (string, []slack.Block) {
	text := i18n.T(ctx, "register.invite", map[string]any{"Name": name, "Code": code})
	button := slack.NewButtonBlockElement(ActionRegister, ActionRegister,
		plainText(i18n.T(ctx, "button.register"))).WithStyle(slack.StylePrimary)

	return text, []slack.Block{
		slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, text, false, false), nil, nil),
		slack.NewActionBlock("register_invite", button),
	}
}

// InfoModal builds a plain notice modal from a localized message ID.
func InfoModal(ctx context.Context, bodyID string) slack.ModalViewRequest {
	return noticeModal(ctx, "modal.info.title", bodyID)
}

// ErrorModal builds a rejection modal from a localized message ID.
func ErrorModal(ctx context.Context, bodyID string) slack.ModalViewRequest {
	return noticeModal(ctx, "modal.error.title", bodyID)
}

func noticeModal(ctx context.Context, titleID, bodyID string) slack.ModalViewRequest {
	return slack.ModalViewRequest{
		Type:  slack.VTModal,
		Title: plainText(i18n.T(ctx, titleID)),
		Close: plainText(i18n.T(ctx, "modal.close")),
		Blocks: slack.Blocks{BlockSet: []slack.Block{
			slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, i18n.T(ctx, bodyID), false, false), nil, nil),
		}},
	}
}

// RegisterModal builds the member registration form. The candidate code is
// pre-filled and privateMetadata carries the invite message reference so the
// submission handler knows which message to overwrite.
func RegisterModal(ctx context.Context, candidateCode, privateMetadata string) slack.ModalViewRequest {
	codeInput := slack.NewPlainTextInputBlockElement(nil, RegisterCodeAction)
	codeInput.InitialValue = candidateCode
	nameInput := slack.NewPlainTextInputBlockElement(nil, RegisterNameAction)

	blocks := []slack.Block{
		slack.NewInputBlock(RegisterCodeBlockID, plainText(i18n.T(ctx, "register.field.code")), nil, codeInput),
		slack.NewInputBlock(RegisterNameBlockID, plainText(i18n.T(ctx, "register.field.name")), nil, nameInput),
	}

	return slack.ModalViewRequest{
		Type:            slack.VTModal,
		CallbackID:      CallbackRegisterMember,
		PrivateMetadata: privateMetadata,
		Title:           plainText(i18n.T(ctx, "register.modal.title")),
		Submit:          plainText(i18n.T(ctx, "register.modal.submit")),
		Close:           plainText(i18n.T(ctx, "modal.close")),
		Blocks:          slack.Blocks{BlockSet: blocks},
	}
}

func plainText(text string) *slack.TextBlockObject {
	return slack.NewTextBlockObject(slack.PlainTextType, text, true, false)
}
