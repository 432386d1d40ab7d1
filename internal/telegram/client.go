package telegram

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/celestix/gotgproto"
	"github.com/celestix/gotgproto/storage"
	"github.com/gotd/td/tg"

	"github.com/blockedby/forwarder-os/internal/forwarder"
	"github.com/blockedby/forwarder-os/internal/logger"
)

// client errors
var (
	ErrUnauthorized = errors.New("telegram client not authorized")
	ErrPeerNotFound = errors.New("peer not found in session storage")
)

// Client wraps the protocol client with high-level, rate-limited operations.
type Client struct {
	manager     *Manager
	rateLimiter *RateLimiter
	log         *logger.Logger
}

// NewClient creates a telegram client wrapper over the manager.
func NewClient(manager *Manager) *Client {
	return &Client{
		manager:     manager,
		rateLimiter: DefaultRateLimiter(),
		log:         logger.Get(),
	}
}

// Close stops the client via the manager.
func (c *Client) Close() {
	if c.manager != nil {
		c.manager.Stop()
	}
}

// GetStatus returns the current status of the telegram client.
func (c *Client) GetStatus() Status {
	return c.manager.GetStatus()
}

// getProto returns the current protocol client if available.
func (c *Client) getProto() (*gotgproto.Client, error) {
	proto := c.manager.GetClient()
	if proto == nil {
		return nil, ErrUnauthorized
	}
	return proto, nil
}

// inputPeer resolves a chat id to an input peer using the session's peer
// storage. Peers the account has never seen cannot be resolved.
func (c *Client) inputPeer(proto *gotgproto.Client, chatID int64) (tg.InputPeerClass, error) {
	peer := proto.PeerStorage.GetPeerById(chatID)
	if peer == nil || peer.ID == 0 {
		return nil, fmt.Errorf("%w: %d", ErrPeerNotFound, chatID)
	}

	switch storage.EntityType(peer.Type) {
	case storage.TypeUser:
		return &tg.InputPeerUser{UserID: peer.ID, AccessHash: peer.AccessHash}, nil
	case storage.TypeChannel:
		return &tg.InputPeerChannel{ChannelID: peer.ID, AccessHash: peer.AccessHash}, nil
	default:
		return &tg.InputPeerChat{ChatID: peer.ID}, nil
	}
}

// ForwardMessages copies the given messages from one chat to another,
// preserving media and grouping, and returns the number of messages the
// platform reports as forwarded.
//
// FLOOD_WAIT errors update the rate limiter's backoff window and are
// surfaced as *forwarder.RateLimitedError so the executor can apply its
// single retry.
func (c *Client) ForwardMessages(ctx context.Context, fromChatID, toChatID int64, ids []int) (int, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return 0, err
	}

	proto, err := c.getProto()
	if err != nil {
		return 0, err
	}

	fromPeer, err := c.inputPeer(proto, fromChatID)
	if err != nil {
		return 0, err
	}
	toPeer, err := c.inputPeer(proto, toChatID)
	if err != nil {
		return 0, err
	}

	randomIDs := make([]int64, len(ids))
	for i := range randomIDs {
		randomIDs[i] = rand.Int63()
	}

	c.log.Debug().
		Int64("from", fromChatID).
		Int64("to", toChatID).
		Ints("ids", ids).
		Msg("telegram: calling messages.forwardMessages")

	updates, err := proto.API().MessagesForwardMessages(ctx, &tg.MessagesForwardMessagesRequest{
		FromPeer: fromPeer,
		ToPeer:   toPeer,
		ID:       ids,
		RandomID: randomIDs,
	})
	if err != nil {
		if wait := FloodWaitSeconds(err); wait > 0 {
			c.rateLimiter.SetFloodWait(wait)
			return 0, &forwarder.RateLimitedError{
				Wait: time.Duration(wait) * time.Second,
				Err:  err,
			}
		}
		return 0, fmt.Errorf("forward messages: %w", err)
	}

	return countForwarded(updates, len(ids)), nil
}

// countForwarded derives the forwarded count from the update set, falling
// back to the requested count when the updates carry no message list.
func countForwarded(updates tg.UpdatesClass, requested int) int {
	u, ok := updates.(*tg.Updates)
	if !ok {
		return requested
	}

	count := 0
	for _, upd := range u.Updates {
		switch upd.(type) {
		case *tg.UpdateNewMessage, *tg.UpdateNewChannelMessage:
			count++
		}
	}
	if count == 0 {
		return requested
	}
	return count
}

// ListDialogs returns the account's chat list: the "list known chats"
// pass-through used by the control API and the tg-chats tool.
func (c *Client) ListDialogs(ctx context.Context) ([]Dialog, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	proto, err := c.getProto()
	if err != nil {
		return nil, err
	}

	result, err := proto.API().MessagesGetDialogs(ctx, &tg.MessagesGetDialogsRequest{
		OffsetPeer: &tg.InputPeerEmpty{},
		Limit:      100,
	})
	if err != nil {
		if wait := FloodWaitSeconds(err); wait > 0 {
			c.rateLimiter.SetFloodWait(wait)
		}
		return nil, fmt.Errorf("get dialogs: %w", err)
	}

	var chats []tg.ChatClass
	var users []tg.UserClass
	switch d := result.(type) {
	case *tg.MessagesDialogs:
		chats, users = d.Chats, d.Users
	case *tg.MessagesDialogsSlice:
		chats, users = d.Chats, d.Users
	}

	return collectDialogs(chats, users), nil
}

func collectDialogs(chats []tg.ChatClass, users []tg.UserClass) []Dialog {
	var out []Dialog

	for _, ch := range chats {
		switch chat := ch.(type) {
		case *tg.Channel:
			out = append(out, Dialog{ID: chat.ID, Title: chat.Title, Kind: "channel"})
		case *tg.Chat:
			out = append(out, Dialog{ID: chat.ID, Title: chat.Title, Kind: "chat"})
		}
	}

	for _, u := range users {
		user, ok := u.(*tg.User)
		if !ok {
			continue
		}
		title := user.FirstName
		if user.LastName != "" {
			title += " " + user.LastName
		}
		if title == "" {
			title = user.Username
		}
		out = append(out, Dialog{ID: user.ID, Title: title, Kind: "user"})
	}

	return out
}
