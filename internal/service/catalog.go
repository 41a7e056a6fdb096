package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"books-storefront/internal/client"
	"books-storefront/internal/config"
	"books-storefront/internal/dto"
	"books-storefront/internal/metrics"
	"books-storefront/internal/model"
	"books-storefront/internal/repository"

	"github.com/labstack/gommon/log"
)

// RenderFunc receives every completed listing. Calls are serialized.
type RenderFunc func(listing *model.Listing, err error)

type CatalogService interface {
	ListResources(ctx context.Context, filter model.Filter) (*model.Listing, error)
	Watch(ctx context.Context, filter model.Filter, render RenderFunc)
	CoverURL(cover *string) string
}

type catalogServiceImpl struct {
	marketplace client.MarketplaceClient
	cache       repository.ResourceCacheRepository
	cfg         config.Catalog
	price       model.Amount
	currency    string
	logger      *log.Logger
}

func NewCatalogService(
	marketplace client.MarketplaceClient,
	cache repository.ResourceCacheRepository,
	catalogCfg *config.Catalog,
	price model.Amount,
	currency string,
	logger *log.Logger,
) CatalogService {
	return &catalogServiceImpl{
		marketplace: marketplace,
		cache:       cache,
		cfg:         *catalogCfg,
		price:       price,
		currency:    currency,
		logger:      logger,
	}
}

// ListResources fetches and renders one full listing.
// The home listing (no filter) falls back to the cached or sample catalogue when the backend fails.
func (s *catalogServiceImpl) ListResources(ctx context.Context, filter model.Filter) (*model.Listing, error) {
	start := time.Now()
	res, err := s.marketplace.ListResources(ctx, filter)
	metrics.CatalogFetchTime.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.CatalogRefreshes.WithLabelValues("failed").Inc()
		s.logger.Warnf("fetch resources: %v", err)
		if filter.Empty() {
			return s.fallbackListing(ctx)
		}
		return &model.Listing{Filter: filter, Message: "Failed to load resources. Please try again."},
			newUserError(ErrBackend, "Failed to load resources. Please try again.", err)
	}
	metrics.CatalogRefreshes.WithLabelValues("ok").Inc()

	if filter.Empty() {
		return s.homeListing(ctx, res), nil
	}

	listing := s.buildListing(filter, res.Books, res.Papers, res.Setbooks, res.All)
	return listing, nil
}

func (s *catalogServiceImpl) homeListing(ctx context.Context, res *dto.ResourcesResponse) *model.Listing {
	books, papers, setbooks := res.Books, res.Papers, res.Setbooks
	sample := false
	// Sections missing from the reply are filled from the cache, as the home page always shows all three.
	if books == nil {
		books, sample = s.cached(ctx, model.ResourceTypeBook), true
	}
	if papers == nil {
		papers, sample = s.cached(ctx, model.ResourceTypePaper), true
	}
	if setbooks == nil {
		setbooks, sample = s.cached(ctx, model.ResourceTypeSetbook), true
	}

	if !sample {
		var all []model.Resource
		all = append(all, typed(books, model.ResourceTypeBook)...)
		all = append(all, typed(papers, model.ResourceTypePaper)...)
		all = append(all, typed(setbooks, model.ResourceTypeSetbook)...)
		if err := s.cache.Replace(ctx, all); err != nil {
			s.logger.Warnf("cache resources: %v", err)
		}
	}

	listing := s.buildListing(model.Filter{}, books, papers, setbooks, res.All)
	listing.Sample = sample
	return listing
}

func (s *catalogServiceImpl) fallbackListing(ctx context.Context) (*model.Listing, error) {
	listing := s.buildListing(model.Filter{},
		s.cached(ctx, model.ResourceTypeBook),
		s.cached(ctx, model.ResourceTypePaper),
		s.cached(ctx, model.ResourceTypeSetbook),
		nil,
	)
	listing.Sample = true
	listing.Message = "Failed to connect to backend API. Showing saved resources."
	return listing, nil
}

func (s *catalogServiceImpl) cached(ctx context.Context, t model.ResourceType) []model.Resource {
	resources, err := s.cache.GetByType(ctx, t)
	if err != nil {
		s.logger.Errorf("read cached %s resources: %v", t, err)
		return []model.Resource{}
	}
	return resources
}

func (s *catalogServiceImpl) buildListing(filter model.Filter, books, papers, setbooks, all []model.Resource) *model.Listing {
	if all == nil {
		all = make([]model.Resource, 0, len(books)+len(papers)+len(setbooks))
		all = append(all, books...)
		all = append(all, papers...)
		all = append(all, setbooks...)
	}

	listing := &model.Listing{
		Filter:   filter,
		All:      s.cards(all),
		Books:    s.cards(books),
		Papers:   s.cards(papers),
		Setbooks: s.cards(setbooks),
	}
	if listing.Empty() {
		listing.Message = model.NoResourcesMessage
	}
	return listing
}

func (s *catalogServiceImpl) cards(resources []model.Resource) []model.Card {
	cards := make([]model.Card, 0, len(resources))
	for _, r := range resources {
		cards = append(cards, model.Card{
			Resource: r,
			CoverURL: s.CoverURL(r.Cover),
			Price:    s.price,
			Currency: s.currency,
			PriceTag: s.price.Tag(s.currency),
		})
	}
	return cards
}

// CoverURL resolves a resource's cover reference to something displayable.
func (s *catalogServiceImpl) CoverURL(cover *string) string {
	if cover == nil || *cover == "" || *cover == "null" {
		return s.cfg.PlaceholderCover
	}
	c := *cover
	switch {
	case strings.HasPrefix(c, s.cfg.StaticCoverPrefix):
		return strings.TrimSuffix(s.marketplace.BaseURL(), "/api") + "/" + c
	case strings.HasPrefix(c, "http"):
		return c
	case strings.HasPrefix(c, s.cfg.LocalAssetPrefix):
		return c
	default:
		return s.cfg.LocalAssetPrefix + c
	}
}

// Watch renders the listing now and then on every refresh tick until ctx is done.
// Ticks never cancel an earlier fetch; whichever fetch completes last renders last.
func (s *catalogServiceImpl) Watch(ctx context.Context, filter model.Filter, render RenderFunc) {
	var (
		wg       sync.WaitGroup
		renderMu sync.Mutex
	)

	refresh := func() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			listing, err := s.ListResources(ctx, filter)
			if ctx.Err() != nil {
				return
			}
			renderMu.Lock()
			defer renderMu.Unlock()
			render(listing, err)
		}()
	}

	refresh()

	interval := s.cfg.RefreshInterval
	if interval <= 0 {
		wg.Wait()
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			wg.Wait()
			return
		case <-ticker.C:
			refresh()
		}
	}
}

func typed(resources []model.Resource, t model.ResourceType) []model.Resource {
	out := make([]model.Resource, len(resources))
	for i, r := range resources {
		if r.ResourceType == "" {
			r.ResourceType = t
		}
		out[i] = r
	}
	return out
}
