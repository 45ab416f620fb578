package cart

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"kissariya_back_end/internal/models"
)

func TestFileStoreMissingFileIsEmpty(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), "", zap.NewNop())
	require.NoError(t, err)

	items := store.Load(context.Background())
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestFileStoreCorruptedFileIsEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cart.json"), []byte("{pas du json"), 0o644))

	store, err := NewFileStore(dir, DefaultKey, zap.NewNop())
	require.NoError(t, err)

	assert.Empty(t, store.Load(context.Background()))
}

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir(), DefaultKey, zap.NewNop())
	require.NoError(t, err)

	e := Open(ctx, store, nil, nil)
	require.NoError(t, e.Add(ctx, tshirt()))
	require.NoError(t, e.Add(ctx, babouche()))
	require.NoError(t, e.Add(ctx, tshirt()))

	loaded := store.Load(ctx)
	assert.Equal(t, e.Items(), loaded)

	// save(load()) ne change rien
	require.NoError(t, store.Save(ctx, loaded))
	assert.Equal(t, loaded, store.Load(ctx))
}

func TestFileStoreWireFormat(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewFileStore(dir, DefaultKey, zap.NewNop())
	require.NoError(t, err)

	img := "https://cdn/tshirt.jpg"
	require.NoError(t, store.Save(ctx, []models.CartItem{{
		ID: "p1", Name: "Tshirt", Price: 100, ImageURL: &img, Quantity: 2,
		ShopID: "s1", ShopName: "Boutique A", WhatsAppNumber: "0612345678",
	}}))

	data, err := os.ReadFile(filepath.Join(dir, "cart.json"))
	require.NoError(t, err)

	var raw []map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Len(t, raw, 1)
	assert.Equal(t, map[string]any{
		"id":              "p1",
		"name":            "Tshirt",
		"price":           float64(100),
		"image_url":       img,
		"quantity":        float64(2),
		"shop_id":         "s1",
		"shop_name":       "Boutique A",
		"whatsapp_number": "0612345678",
	}, raw[0])
}

func TestFileStoreEmptyCartIsArray(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewFileStore(dir, DefaultKey, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, store.Save(ctx, nil))
	data, err := os.ReadFile(filepath.Join(dir, "cart.json"))
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(data))
}

func TestDecodeMergesDuplicates(t *testing.T) {
	items, err := decodeItems([]byte(`[
		{"id":"p1","name":"Tshirt","price":100,"quantity":2,"shop_id":"s1"},
		{"id":"p2","name":"Babouche","price":50,"shop_id":"s2"},
		{"id":"p1","name":"Tshirt","price":100,"quantity":1,"shop_id":"s1"}
	]`))
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "p1", items[0].ID)
	assert.Equal(t, 3, items[0].Quantity)
	assert.Equal(t, 1, items[1].Quantity)
}

func TestDecodeSkipsNullAndBlankIDs(t *testing.T) {
	items, err := decodeItems([]byte(`[
		{"id":"p1","name":"Tshirt","price":100,"quantity":1,"shop_id":"s1"},
		null,
		{"name":"Sans id","price":10,"quantity":4,"shop_id":"s2"}
	]`))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "p1", items[0].ID)

	engine := Open(context.Background(), &memoryStore{items: items}, nil, zap.NewNop())
	assert.Equal(t, 1, engine.TotalItems())
	assert.Len(t, engine.ByShop(), 1)
}

func TestFileStoreDropsNullLines(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir, "", zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultKey+".json"),
		[]byte(`[null,{"id":"p1","name":"Tshirt","price":100,"quantity":2,"shop_id":"s1"}]`), 0o644))

	items := store.Load(context.Background())
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
}

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestRedisStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	mr, client := newRedis(t)
	store := NewRedisStore(client, "sess-1", time.Hour, zap.NewNop())

	assert.Empty(t, store.Load(ctx))

	e := Open(ctx, store, nil, nil)
	require.NoError(t, e.Add(ctx, tshirt()))
	require.NoError(t, e.Add(ctx, babouche()))

	assert.True(t, mr.Exists("cart:sess-1"))
	assert.Equal(t, time.Hour, mr.TTL("cart:sess-1"))

	reopened := Open(ctx, NewRedisStore(client, "sess-1", time.Hour, zap.NewNop()), nil, nil)
	assert.Equal(t, e.Items(), reopened.Items())

	// Un panier vide supprime la clé.
	require.NoError(t, e.Clear(ctx))
	assert.False(t, mr.Exists("cart:sess-1"))
}

func TestRedisStoreCorruptedValue(t *testing.T) {
	mr, client := newRedis(t)
	require.NoError(t, mr.Set("cart:sess-2", "pas du json"))

	store := NewRedisStore(client, "sess-2", 0, zap.NewNop())
	assert.Empty(t, store.Load(context.Background()))
}

func TestRedisStorePublishesSync(t *testing.T) {
	ctx := context.Background()
	_, client := newRedis(t)

	sub := client.Subscribe(ctx, RedisKey("sess-3"))
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	store := NewRedisStore(client, "sess-3", 0, zap.NewNop())
	require.NoError(t, store.Save(ctx, []models.CartItem{models.NewCartItem(tshirt())}))
	require.NoError(t, store.Save(ctx, nil))

	ch := sub.Channel()
	for _, want := range []string{SyncUpdated, SyncCleared} {
		select {
		case msg := <-ch:
			assert.Equal(t, want, msg.Payload)
		case <-time.After(2 * time.Second):
			t.Fatalf("message %q non reçu", want)
		}
	}
}

func TestRedisNotifierPublishesEvents(t *testing.T) {
	ctx := context.Background()
	_, client := newRedis(t)

	sub := client.Subscribe(ctx, EventsChannel("sess-4"))
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	e := Open(ctx, &memoryStore{}, NewRedisNotifier(client, "sess-4", zap.NewNop()), nil)
	require.NoError(t, e.Add(ctx, tshirt()))

	select {
	case msg := <-sub.Channel():
		var got map[string]string
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
		assert.Equal(t, "added", got["kind"])
		assert.Equal(t, "p1", got["item_id"])
		assert.Equal(t, "Tshirt ajouté au panier", got["message"])
	case <-time.After(2 * time.Second):
		t.Fatal("notification non reçue")
	}
}
