package discord

import (
	"context"
	"errors"
	"fmt"
	"time"

	"chatbot-platform/internal/eventlog"
	"chatbot-platform/pkg/logger"
	"chatbot-platform/pkg/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/redis/go-redis/v9"
)

type embedSender interface {
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Limiter caps concurrent sends per destination channel.
type Limiter interface {
	Acquire(ctx context.Context, channelID string) (bool, error)
	Release(ctx context.Context, channelID string) error
}

// Deliverer posts notifications as embeds.
type Deliverer struct {
	sender  embedSender
	limiter Limiter
}

// NewDeliverer returns a Deliverer; limiter may be nil.
func NewDeliverer(s *discordgo.Session, limiter Limiter) *Deliverer {
	return &Deliverer{sender: s, limiter: limiter}
}

func (d *Deliverer) Deliver(ctx context.Context, dest eventlog.Destination, n eventlog.Notification) error {
	channelID := dest.Channel.ID
	if d.limiter != nil {
		ok, err := d.limiter.Acquire(ctx, channelID)
		switch {
		case err != nil:
			// Fail open: the cap protects rate limits, not correctness.
			logger.From(ctx).Warn("delivery limiter unavailable", "channel_id", channelID, "err", err)
		case !ok:
			return fmt.Errorf("%w: channel %s", eventlog.ErrDeliveryThrottled, channelID)
		default:
			defer func() {
				if err := d.limiter.Release(context.WithoutCancel(ctx), channelID); err != nil {
					logger.From(ctx).Warn("delivery limiter release failed", "channel_id", channelID, "err", err)
				}
			}()
		}
	}

	if _, err := d.sender.ChannelMessageSendEmbed(channelID, embedFrom(n), discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("%w: channel %s: %s", eventlog.ErrDelivery, channelID, describeRESTError(err))
	}
	return nil
}

func describeRESTError(err error) string {
	var rest *discordgo.RESTError
	if errors.As(err, &rest) && rest.Response != nil {
		if rest.Message != nil {
			return fmt.Sprintf("http %d: code %d: %s", rest.Response.StatusCode, rest.Message.Code, rest.Message.Message)
		}
		return fmt.Sprintf("http %d", rest.Response.StatusCode)
	}
	return err.Error()
}

// SlotLimiter is a Limiter shared across processes through redis.
type SlotLimiter struct {
	rdb   redis.Scripter
	limit int
	ttl   time.Duration
}

func NewSlotLimiter(rdb redis.Scripter, limit int, ttl time.Duration) *SlotLimiter {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &SlotLimiter{rdb: rdb, limit: limit, ttl: ttl}
}

func slotKey(channelID string) string { return "delivery:inflight:" + channelID }

func (l *SlotLimiter) Acquire(ctx context.Context, channelID string) (bool, error) {
	return utils.AcquireSlot(ctx, l.rdb, slotKey(channelID), l.limit, l.ttl)
}

func (l *SlotLimiter) Release(ctx context.Context, channelID string) error {
	return utils.ReleaseSlot(ctx, l.rdb, slotKey(channelID))
}
