package stats

import (
	"context"
	"fmt"
	"time"
	_ "time/tzdata"

	"github.com/gocql/gocql"
	"go.uber.org/zap"
)

// StatsDays est la profondeur de l'historique affiché dans le tableau de bord.
const StatsDays = 7

// DefaultTimezone découpe les journées à l'heure marocaine.
const DefaultTimezone = "Africa/Casablanca"

const dayKey = "2006-01-02"

// DailyViews est le nombre de visites d'une boutique sur une journée.
type DailyViews struct {
	Date  string `json:"date"` // dd/MM
	Views int64  `json:"views"`
}

// ShopStats résume les visites d'une boutique.
type ShopStats struct {
	TotalViews int64        `json:"total_views"`
	TodayViews int64        `json:"today_views"`
	Daily      []DailyViews `json:"daily"`
}

// Tracker enregistre les visites dans des compteurs ScyllaDB. Les journées
// suivent le fuseau loc.
type Tracker struct {
	session *gocql.Session
	loc     *time.Location
	log     *zap.Logger
	now     func() time.Time
}

// NewTracker utilise DefaultTimezone si loc est nil.
func NewTracker(session *gocql.Session, loc *time.Location, log *zap.Logger) *Tracker {
	if loc == nil {
		loc = DefaultLocation()
	}
	return &Tracker{session: session, loc: loc, log: log, now: time.Now}
}

// DefaultLocation charge DefaultTimezone (UTC si la base tz est inutilisable).
func DefaultLocation() *time.Location {
	loc, err := time.LoadLocation(DefaultTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// RecordShopView compte une visite de la page publique d'une boutique.
func (t *Tracker) RecordShopView(ctx context.Context, shopID gocql.UUID) error {
	day := startOfDay(t.now(), t.loc)
	err := t.session.Query(
		`UPDATE shop_views_daily SET views = views + 1 WHERE shop_id = ? AND day = ?`,
		shopID, day,
	).WithContext(ctx).Exec()
	if err != nil {
		return fmt.Errorf("enregistrement visite boutique %s: %w", shopID, err)
	}
	return nil
}

// RecordProductView compte une consultation de produit.
func (t *Tracker) RecordProductView(ctx context.Context, shopID, productID gocql.UUID) error {
	err := t.session.Query(
		`UPDATE product_views SET views = views + 1 WHERE shop_id = ? AND product_id = ?`,
		shopID, productID,
	).WithContext(ctx).Exec()
	if err != nil {
		return fmt.Errorf("enregistrement vue produit %s: %w", productID, err)
	}
	return nil
}

// ShopStats retourne le total, les visites du jour et les 7 derniers jours.
func (t *Tracker) ShopStats(ctx context.Context, shopID gocql.UUID) (ShopStats, error) {
	iter := t.session.Query(
		`SELECT day, views FROM shop_views_daily WHERE shop_id = ?`, shopID,
	).WithContext(ctx).Iter()

	counts := make(map[string]int64)
	var (
		day   time.Time
		views int64
	)
	for iter.Scan(&day, &views) {
		counts[day.UTC().Format(dayKey)] += views
	}
	if err := iter.Close(); err != nil {
		return ShopStats{}, fmt.Errorf("lecture statistiques boutique %s: %w", shopID, err)
	}
	return Summarize(counts, t.now(), t.loc), nil
}

// ProductViewsByShop additionne les vues produits de chaque boutique.
func (t *Tracker) ProductViewsByShop(ctx context.Context) (map[gocql.UUID]int64, error) {
	iter := t.session.Query(`SELECT shop_id, views FROM product_views`).WithContext(ctx).Iter()

	totals := make(map[gocql.UUID]int64)
	var (
		shopID gocql.UUID
		views  int64
	)
	for iter.Scan(&shopID, &views) {
		totals[shopID] += views
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("lecture vues produits: %w", err)
	}
	t.log.Debug("📊 Vues produits agrégées", zap.Int("shops", len(totals)))
	return totals, nil
}

// Summarize calcule les statistiques à partir des compteurs journaliers
// (clé AAAA-MM-JJ). "Aujourd'hui" est la journée de now dans loc. Les jours
// sans visite valent 0.
func Summarize(counts map[string]int64, now time.Time, loc *time.Location) ShopStats {
	out := ShopStats{Daily: make([]DailyViews, 0, StatsDays)}
	for _, v := range counts {
		out.TotalViews += v
	}

	today := startOfDay(now, loc)
	out.TodayViews = counts[today.Format(dayKey)]
	for i := StatsDays - 1; i >= 0; i-- {
		d := today.AddDate(0, 0, -i)
		out.Daily = append(out.Daily, DailyViews{
			Date:  d.Format("02/01"),
			Views: counts[d.Format(dayKey)],
		})
	}
	return out
}

// startOfDay retourne la date calendaire de t dans loc, à minuit UTC : c'est la
// valeur stockée dans la colonne date.
func startOfDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
