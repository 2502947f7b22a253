package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/advisordesk/costbasis-backend/internal/apperrors"
	"github.com/advisordesk/costbasis-backend/internal/model"
	"github.com/advisordesk/costbasis-backend/internal/quote"
	"github.com/advisordesk/costbasis-backend/internal/repository"
)

// PriceService refreshes security prices from the quote provider and keeps
// position market values current. Price data only affects the unrealized
// side of cost-basis reports; realized gains are immune to stale quotes.
type PriceService struct {
	positionRepo *repository.PositionRepository
	settingRepo  *repository.SettingRepository
	quoteBaseURL string
}

// NewPriceService creates a new PriceService with the provided dependencies.
func NewPriceService(
	positionRepo *repository.PositionRepository,
	settingRepo *repository.SettingRepository,
	quoteBaseURL string,
) *PriceService {
	return &PriceService{
		positionRepo: positionRepo,
		settingRepo:  settingRepo,
		quoteBaseURL: quoteBaseURL,
	}
}

// RefreshPrices fetches the latest closing price for every security held in
// at least one position and updates the stored snapshot. A failing symbol is
// logged and skipped; the refresh continues with the remaining securities.
// Returns the number of securities updated.
func (s *PriceService) RefreshPrices(ctx context.Context) (int, error) {
	securities, err := s.positionRepo.GetSecurities()
	if err != nil {
		return 0, err
	}

	client := quote.NewClient(s.quoteBaseURL, s.quoteToken())

	updated := 0
	for _, security := range securities {
		raw, err := client.QueryFiveDaySymbol(security.Symbol)
		if err != nil {
			log.Printf("Price refresh: failed to fetch %s: %v", security.Symbol, err)
			continue
		}

		chart, err := client.ParseChart(raw)
		if err != nil {
			log.Printf("Price refresh: failed to parse %s: %v", security.Symbol, err)
			continue
		}

		latest, ok := chart.LatestClose()
		if !ok {
			log.Printf("Price refresh: no close price for %s", security.Symbol)
			continue
		}

		if err := s.positionRepo.UpdateSecurityPrice(ctx, security.ID, latest.PriceClose, latest.Date); err != nil {
			log.Printf("Price refresh: failed to store %s: %v", security.Symbol, err)
			continue
		}
		updated++
	}

	log.Printf("Price refresh: updated %d of %d securities", updated, len(securities))
	return updated, nil
}

// SetQuoteToken stores the quote provider API token, encrypted at rest.
func (s *PriceService) SetQuoteToken(ctx context.Context, token string) error {
	return s.settingRepo.SetSetting(ctx, model.SettingQuoteAPIToken, token, true)
}

// quoteToken loads the stored provider token. A missing setting means
// unauthenticated access; other errors are logged and treated the same way.
func (s *PriceService) quoteToken() string {
	setting, err := s.settingRepo.GetSetting(model.SettingQuoteAPIToken)
	if err != nil {
		if !errors.Is(err, apperrors.ErrSettingNotFound) {
			log.Printf("Price refresh: failed to load quote token: %v", err)
		}
		return ""
	}
	return setting.Value
}

// Schedule registers the recurring price refresh on the given cron runner.
// The schedule uses standard five-field cron syntax.
func (s *PriceService) Schedule(c *cron.Cron, spec string) (cron.EntryID, error) {
	return c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		if _, err := s.RefreshPrices(ctx); err != nil {
			log.Printf("Scheduled price refresh failed: %v", err)
		}
	})
}
