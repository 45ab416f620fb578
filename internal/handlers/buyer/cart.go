package buyer

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"kissariya_back_end/internal/cart"
	"kissariya_back_end/internal/checkout"
	"kissariya_back_end/internal/middleware"
	"kissariya_back_end/internal/models"
)

// StoreFactory ouvre le stockage du panier d'une session.
type StoreFactory func(sessionID string) (cart.Store, error)

// RedisStores range les paniers dans Redis sous cart:<session>.
func RedisStores(client *redis.Client, ttl time.Duration, log *zap.Logger) StoreFactory {
	return func(sessionID string) (cart.Store, error) {
		return cart.NewRedisStore(client, sessionID, ttl, log), nil
	}
}

// FileStores range chaque panier dans <dir>/<session>.json.
func FileStores(dir string, log *zap.Logger) StoreFactory {
	return func(sessionID string) (cart.Store, error) {
		return cart.NewFileStore(dir, sessionID, log)
	}
}

// Handler sert le panier de l'acheteur. redis peut être nil (stockage fichier) :
// la synchronisation temps réel est alors désactivée.
type Handler struct {
	stores StoreFactory
	redis  *redis.Client
	log    *zap.Logger
}

func NewHandler(stores StoreFactory, client *redis.Client, log *zap.Logger) *Handler {
	return &Handler{stores: stores, redis: client, log: log}
}

// Modes de stockage du panier (CART_STORE).
const (
	StoreRedis = "redis"
	StoreFile  = "file"
)

// NewHandlerForStore choisit le stockage du panier selon le mode. Les fichiers ne
// publient rien sur Redis : la synchronisation temps réel est coupée dans ce mode.
func NewHandlerForStore(mode, dir string, client *redis.Client, ttl time.Duration, log *zap.Logger) *Handler {
	if mode == StoreFile {
		return NewHandler(FileStores(dir, log), nil, log)
	}
	return NewHandler(RedisStores(client, ttl, log), client, log)
}

// MutationResponse est renvoyée après chaque modification du panier.
type MutationResponse struct {
	Cart         cart.Snapshot      `json:"cart"`
	Notification *cart.Notification `json:"notification,omitempty"`
}

type quantityInput struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// open charge le moteur du panier de la requête.
func (h *Handler) open(c *gin.Context) (*cart.Engine, *cart.Recorder, bool) {
	sessionID := middleware.CartID(c)
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Session panier manquante"})
		return nil, nil, false
	}
	store, err := h.stores(sessionID)
	if err != nil {
		h.log.Error("❌ Ouverture du stockage panier", zap.String("session", sessionID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Panier indisponible"})
		return nil, nil, false
	}

	recorder := &cart.Recorder{}
	notifiers := cart.MultiNotifier{recorder}
	if h.redis != nil {
		notifiers = append(notifiers, cart.NewRedisNotifier(h.redis, sessionID, h.log))
	}
	return cart.Open(c.Request.Context(), store, notifiers, h.log), recorder, true
}

func (h *Handler) respond(c *gin.Context, engine *cart.Engine, recorder *cart.Recorder, err error) {
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur sauvegarde panier"})
		return
	}
	resp := MutationResponse{Cart: engine.Snapshot()}
	if n, ok := recorder.Last(); ok {
		resp.Notification = &n
	}
	c.JSON(http.StatusOK, resp)
}

// GET /api/cart
func (h *Handler) Get(c *gin.Context) {
	engine, _, ok := h.open(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, engine.Snapshot())
}

// POST /api/cart/items
func (h *Handler) Add(c *gin.Context) {
	var input models.ProductDescriptor
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Produit invalide"})
		return
	}
	engine, recorder, ok := h.open(c)
	if !ok {
		return
	}
	h.respond(c, engine, recorder, engine.Add(c.Request.Context(), input))
}

// PUT /api/cart/items/:id
func (h *Handler) UpdateQuantity(c *gin.Context) {
	var input quantityInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Quantité invalide"})
		return
	}
	engine, recorder, ok := h.open(c)
	if !ok {
		return
	}
	h.respond(c, engine, recorder, engine.UpdateQuantity(c.Request.Context(), c.Param("id"), *input.Quantity))
}

// DELETE /api/cart/items/:id
func (h *Handler) Remove(c *gin.Context) {
	engine, recorder, ok := h.open(c)
	if !ok {
		return
	}
	h.respond(c, engine, recorder, engine.Remove(c.Request.Context(), c.Param("id")))
}

// DELETE /api/cart
func (h *Handler) Clear(c *gin.Context) {
	engine, recorder, ok := h.open(c)
	if !ok {
		return
	}
	h.respond(c, engine, recorder, engine.Clear(c.Request.Context()))
}

// GET /api/cart/checkout
// Une commande WhatsApp par boutique, dans l'ordre du panier.
func (h *Handler) Checkout(c *gin.Context) {
	engine, _, ok := h.open(c)
	if !ok {
		return
	}
	if engine.Len() == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Votre panier est vide"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"orders": checkout.BuildAll(engine.Items()),
		"total":  engine.TotalPrice(),
	})
}

func (h *Handler) loadSnapshot(ctx context.Context, sessionID string) (cart.Snapshot, error) {
	store, err := h.stores(sessionID)
	if err != nil {
		return cart.Snapshot{}, err
	}
	return cart.NewSnapshot(store.Load(ctx)), nil
}
