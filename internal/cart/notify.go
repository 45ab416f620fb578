package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Kind string

const (
	KindAdded           Kind = "added"
	KindQuantityUpdated Kind = "quantity-updated"
	KindRemoved         Kind = "removed"
)

// Notification décrit un changement du panier destiné à l'acheteur (toast).
type Notification struct {
	Kind     Kind   `json:"kind"`
	ItemID   string `json:"item_id"`
	ItemName string `json:"item_name,omitempty"`
}

// Message retourne le texte affiché à l'acheteur.
func (n Notification) Message() string {
	switch n.Kind {
	case KindAdded:
		return fmt.Sprintf("%s ajouté au panier", n.ItemName)
	case KindQuantityUpdated:
		return fmt.Sprintf("Quantité mise à jour pour %s", n.ItemName)
	case KindRemoved:
		return "Produit retiré du panier"
	default:
		return ""
	}
}

func (n Notification) MarshalJSON() ([]byte, error) {
	type alias Notification
	return json.Marshal(struct {
		alias
		Message string `json:"message"`
	}{alias(n), n.Message()})
}

type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

type NotifierFunc func(ctx context.Context, n Notification)

func (f NotifierFunc) Notify(ctx context.Context, n Notification) { f(ctx, n) }

// Discard ignore toutes les notifications.
var Discard Notifier = NotifierFunc(func(context.Context, Notification) {})

// MultiNotifier diffuse chaque notification à tous ses destinataires, dans l'ordre.
type MultiNotifier []Notifier

func (m MultiNotifier) Notify(ctx context.Context, n Notification) {
	for _, target := range m {
		target.Notify(ctx, n)
	}
}

// Recorder garde les notifications reçues, par exemple le temps d'une requête HTTP.
type Recorder struct {
	mu   sync.Mutex
	seen []Notification
}

func (r *Recorder) Notify(_ context.Context, n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, n)
}

func (r *Recorder) Notifications() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.seen...)
}

// Last retourne la dernière notification reçue.
func (r *Recorder) Last() (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.seen) == 0 {
		return Notification{}, false
	}
	return r.seen[len(r.seen)-1], true
}

// EventsChannel est le canal Redis des notifications d'une session.
func EventsChannel(sessionID string) string {
	return RedisKey(sessionID) + ":events"
}

// RedisNotifier publie les notifications sur cart:<sessionID>:events.
type RedisNotifier struct {
	client  *redis.Client
	channel string
	log     *zap.Logger
}

func NewRedisNotifier(client *redis.Client, sessionID string, log *zap.Logger) *RedisNotifier {
	return &RedisNotifier{client: client, channel: EventsChannel(sessionID), log: log}
}

func (p *RedisNotifier) Notify(ctx context.Context, n Notification) {
	payload, err := json.Marshal(n)
	if err != nil {
		return
	}
	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		p.log.Warn("⚠️ Publication notification panier impossible", zap.String("channel", p.channel), zap.Error(err))
	}
}
