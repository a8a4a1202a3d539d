package discord

import (
	"context"
	"strings"

	"chatbot-platform/internal/audit"
	"chatbot-platform/internal/eventlog"

	"github.com/bwmarrin/discordgo"
)

const (
	commandName     = "logs"
	settingsCommand = "settings"
	channelOption   = "channel"
	resetPrefix     = "logs:reset:"
)

// Acks for requests that never reach the command surface.
const (
	ackGuildOnly = "Logs can only be configured inside a server"
	ackNoAccess  = "You need the Manage Server permission to change logs settings"
)

// ApplicationCommands describes the /logs command group: one setter per
// event kind plus the settings view.
func ApplicationCommands() []*discordgo.ApplicationCommand {
	perm := int64(discordgo.PermissionManageServer)
	dm := false

	opts := make([]*discordgo.ApplicationCommandOption, 0, len(eventlog.Kinds)+1)
	for _, k := range eventlog.Kinds {
		opts = append(opts, &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        k.Key(),
			Description: k.Description(),
			Options: []*discordgo.ApplicationCommandOption{{
				Type:         discordgo.ApplicationCommandOptionChannel,
				Name:         channelOption,
				Description:  "Channel that receives the notifications",
				Required:     true,
				ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
			}},
		})
	}
	opts = append(opts, &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionSubCommand,
		Name:        settingsCommand,
		Description: "Show where each event is logged and reset destinations",
	})

	return []*discordgo.ApplicationCommand{{
		Name:                     commandName,
		Description:              "Configure event logs for this server",
		DefaultMemberPermissions: &perm,
		DMPermission:             &dm,
		Options:                  opts,
	}}
}

// respond builds the reply to an interaction, or nil when the interaction is
// not ours. The change is non-nil only when a routing mutation was applied.
func respond(ctx context.Context, cmds *eventlog.Commands, i *discordgo.Interaction) (*discordgo.InteractionResponse, *audit.Change) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		data := i.ApplicationCommandData()
		if data.Name != commandName {
			return nil, nil
		}
		if i.GuildID == "" {
			return ephemeral(eventlog.Ack{Content: ackGuildOnly}), nil
		}
		ack, change := runCommand(ctx, cmds, i.GuildID, data)
		if change != nil {
			change.ActorID = actorID(i)
		}
		return ephemeral(ack), change

	case discordgo.InteractionMessageComponent:
		kind, ok := parseResetID(i.MessageComponentData().CustomID)
		if !ok {
			return nil, nil
		}
		if i.GuildID == "" {
			return ephemeral(eventlog.Ack{Content: ackGuildOnly}), nil
		}
		if !canManage(i.Member) {
			return ephemeral(eventlog.Ack{Content: ackNoAccess}), nil
		}
		ack := cmds.Reset(ctx, i.GuildID, kind)
		if !ack.OK {
			return ephemeral(ack), nil
		}
		resp := &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseUpdateMessage,
			Data: messageData(ack),
		}
		if !ack.Changed {
			return resp, nil
		}
		return resp, commandChange(i.GuildID, kind, "", actorID(i))
	}
	return nil, nil
}

func runCommand(ctx context.Context, cmds *eventlog.Commands, guildID string, data discordgo.ApplicationCommandInteractionData) (eventlog.Ack, *audit.Change) {
	if len(data.Options) == 0 {
		return cmds.Settings(ctx, guildID), nil
	}
	sub := data.Options[0]
	if sub.Name == settingsCommand {
		return cmds.Settings(ctx, guildID), nil
	}
	kind, err := eventlog.ParseKind(sub.Name)
	if err != nil {
		return cmds.Set(ctx, guildID, eventlog.Kind(sub.Name), ""), nil
	}
	channelID := optionChannelID(sub.Options)
	if !ValidID(channelID) {
		channelID = ""
	}
	ack := cmds.Set(ctx, guildID, kind, channelID)
	if !ack.Changed {
		return ack, nil
	}
	return ack, commandChange(guildID, kind, channelID, "")
}

func commandChange(guildID string, kind eventlog.Kind, channelID, actor string) *audit.Change {
	return &audit.Change{
		WorkspaceID: guildID,
		Kind:        kind.Key(),
		ChannelID:   channelID,
		ActorID:     actor,
		Source:      audit.SourceCommand,
	}
}

func actorID(i *discordgo.Interaction) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

func optionChannelID(opts []*discordgo.ApplicationCommandInteractionDataOption) string {
	for _, o := range opts {
		if o.Name != channelOption || o.Type != discordgo.ApplicationCommandOptionChannel {
			continue
		}
		if s, ok := o.Value.(string); ok {
			return s
		}
	}
	return ""
}

func canManage(m *discordgo.Member) bool {
	if m == nil {
		return false
	}
	return m.Permissions&discordgo.PermissionManageServer != 0 ||
		m.Permissions&discordgo.PermissionAdministrator != 0
}

func resetID(k eventlog.Kind) string { return resetPrefix + k.Key() }

func parseResetID(id string) (eventlog.Kind, bool) {
	rest, ok := strings.CutPrefix(id, resetPrefix)
	if !ok {
		return "", false
	}
	k, err := eventlog.ParseKind(rest)
	return k, err == nil
}

func ephemeral(ack eventlog.Ack) *discordgo.InteractionResponse {
	data := messageData(ack)
	data.Flags = discordgo.MessageFlagsEphemeral
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	}
}

// messageData renders an ack; settings acks carry one reset button per kind,
// disabled while the kind has no destination.
func messageData(ack eventlog.Ack) *discordgo.InteractionResponseData {
	data := &discordgo.InteractionResponseData{
		Content:         ack.Content,
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	}
	if ack.View == nil {
		return data
	}
	buttons := make([]discordgo.MessageComponent, 0, len(ack.View.Controls))
	for _, c := range ack.View.Controls {
		buttons = append(buttons, discordgo.Button{
			Label:    c.Label,
			Style:    discordgo.DangerButton,
			CustomID: resetID(c.Kind),
			Disabled: !c.Enabled,
		})
	}
	data.Components = []discordgo.MessageComponent{discordgo.ActionsRow{Components: buttons}}
	return data
}
