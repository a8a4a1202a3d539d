package discord

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// discordEpoch is the first millisecond of 2015, the epoch of platform IDs.
const discordEpoch int64 = 1420070400000

func init() {
	snowflake.Epoch = discordEpoch
}

// ValidID reports whether s is a well-formed platform snowflake.
func ValidID(s string) bool {
	id, err := snowflake.ParseString(s)
	return err == nil && id.Int64() > 0
}

// CreatedAt is the creation time encoded in a snowflake, or the zero time
// when id is malformed.
func CreatedAt(id string) time.Time {
	sf, err := snowflake.ParseString(id)
	if err != nil || sf.Int64() <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(sf.Time()).UTC()
}

// MessageURL is the jump link for a guild message.
func MessageURL(guildID, channelID, messageID string) string {
	if guildID == "" || channelID == "" || messageID == "" {
		return ""
	}
	return "https://discord.com/channels/" + guildID + "/" + channelID + "/" + messageID
}
