package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/wellspring-app/nutrition-service/config"
)

const (
	// comprehensiveSearch fans out to both sources and clips the merged list.
	comprehensiveUSDAPageSize = 3
	comprehensiveMaxResults   = 8

	searchCacheTTL = 15 * time.Minute
)

// CommunityPhotoLister supplies community photos for a USDA food during
// search enrichment.
type CommunityPhotoLister interface {
	GetCommunityPhotos(ctx context.Context, fdcID int64) []string
}

// NutritionService aggregates food data from USDA FoodData Central and
// Open Food Facts into a single unified result list. Every public operation
// follows a no-error contract: recoverable failures surface as empty slices
// or nil records, never as returned errors.
type NutritionService struct {
	usda   *USDAClient
	off    *OpenFoodFactsClient
	photos CommunityPhotoLister
	redis  *redis.Client
}

// NewNutritionService creates the aggregation service. photos and
// redisClient may be nil; enrichment and caching are then skipped.
func NewNutritionService(cfg *config.Config, photos CommunityPhotoLister, redisClient *redis.Client) *NutritionService {
	httpClient := &http.Client{Timeout: 10 * time.Second}
	return &NutritionService{
		usda:   NewUSDAClient(cfg.USDABaseURL, cfg.USDAAPIKey, httpClient),
		off:    NewOpenFoodFactsClient(cfg.OFFBaseURL, httpClient),
		photos: photos,
		redis:  redisClient,
	}
}

// SearchUSDAFoods searches FoodData Central. Returns an empty slice on any
// unrecoverable error; search failure is never fatal to the caller.
func (s *NutritionService) SearchUSDAFoods(ctx context.Context, query string, pageSize int) []NutritionInfo {
	results, err := s.usda.Search(ctx, query, pageSize)
	if err != nil {
		log.Printf("[NutritionService] USDA search failed for %q: %v", query, err)
		return []NutritionInfo{}
	}
	return results
}

// GetUSDAFoodByID fetches a single FoodData Central record, nil on error.
func (s *NutritionService) GetUSDAFoodByID(ctx context.Context, fdcID int64) *NutritionInfo {
	info, err := s.usda.GetFoodByID(ctx, fdcID)
	if err != nil {
		log.Printf("[NutritionService] USDA food lookup failed for %d: %v", fdcID, err)
		return nil
	}
	return info
}

// SearchOpenFoodFacts searches Open Food Facts. Returns an empty slice on
// any error, same non-erroring contract as SearchUSDAFoods.
func (s *NutritionService) SearchOpenFoodFacts(ctx context.Context, query string) []NutritionInfo {
	results, err := s.off.Search(ctx, query)
	if err != nil {
		log.Printf("[NutritionService] OFF search failed for %q: %v", query, err)
		return []NutritionInfo{}
	}
	return results
}

// LookupBarcode exposes the tagged barcode result for callers that need to
// tell a missing product apart from a failed request.
func (s *NutritionService) LookupBarcode(ctx context.Context, barcode string) BarcodeResult {
	res := s.off.LookupBarcode(ctx, barcode)
	if res.Err != nil {
		log.Printf("[NutritionService] barcode lookup failed for %q: %v", barcode, res.Err)
	}
	return res
}

// SearchByBarcode looks up a product by barcode, collapsing both not-found
// and transport failure to nil.
func (s *NutritionService) SearchByBarcode(ctx context.Context, barcode string) *NutritionInfo {
	res := s.LookupBarcode(ctx, barcode)
	if res.Status != BarcodeFound {
		return nil
	}
	return res.Product
}

// ComprehensiveSearch queries both sources concurrently, enriches USDA
// results with community photos, and merges the outcomes into one list:
// USDA results first, then Open Food Facts, clipped to 8 entries. The
// source order is a fixed precedence, not a relevance ranking. A failure in
// one branch never cancels or empties the other.
func (s *NutritionService) ComprehensiveSearch(ctx context.Context, query string) []NutritionInfo {
	if cached := s.cachedResults(ctx, query); cached != nil {
		return cached
	}

	var usdaResults, offResults []NutritionInfo

	var g errgroup.Group
	g.Go(func() error {
		usdaResults = s.SearchUSDAFoods(ctx, query, comprehensiveUSDAPageSize)
		return nil
	})
	g.Go(func() error {
		offResults = s.SearchOpenFoodFacts(ctx, query)
		return nil
	})
	// Branches swallow their own failures, so Wait never reports one.
	_ = g.Wait()

	s.enrichWithCommunityPhotos(ctx, usdaResults)

	combined := make([]NutritionInfo, 0, len(usdaResults)+len(offResults))
	combined = append(combined, usdaResults...)
	combined = append(combined, offResults...)
	if len(combined) > comprehensiveMaxResults {
		combined = combined[:comprehensiveMaxResults]
	}

	s.cacheResults(ctx, query, combined)
	return combined
}

// enrichWithCommunityPhotos fans out one photo lookup per USDA item. The
// lookups run in parallel across items and are joined before returning.
func (s *NutritionService) enrichWithCommunityPhotos(ctx context.Context, results []NutritionInfo) {
	if s.photos == nil {
		return
	}

	var g errgroup.Group
	for i := range results {
		if results[i].FdcID == 0 {
			continue
		}
		g.Go(func() error {
			images := s.photos.GetCommunityPhotos(ctx, results[i].FdcID)
			if len(images) > 0 {
				results[i].CommunityImages = images
				results[i].ImageURL = images[0]
			}
			return nil
		})
	}
	_ = g.Wait()
}

func searchCacheKey(query string) string {
	return fmt.Sprintf("nutrition:search:%s", strings.ToLower(strings.TrimSpace(query)))
}

// cachedResults returns a previously cached result list, or nil on miss.
// Cache failures are diagnostic only and fall through to a live search.
func (s *NutritionService) cachedResults(ctx context.Context, query string) []NutritionInfo {
	if s.redis == nil {
		return nil
	}

	data, err := s.redis.Get(ctx, searchCacheKey(query)).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("[NutritionService] cache read failed for %q: %v", query, err)
		}
		return nil
	}

	var results []NutritionInfo
	if err := json.Unmarshal(data, &results); err != nil {
		log.Printf("[NutritionService] cache entry corrupt for %q: %v", query, err)
		return nil
	}
	return results
}

func (s *NutritionService) cacheResults(ctx context.Context, query string, results []NutritionInfo) {
	if s.redis == nil || len(results) == 0 {
		return
	}

	data, err := json.Marshal(results)
	if err != nil {
		log.Printf("[NutritionService] failed to marshal cache entry for %q: %v", query, err)
		return
	}
	if err := s.redis.Set(ctx, searchCacheKey(query), data, searchCacheTTL).Err(); err != nil {
		log.Printf("[NutritionService] cache write failed for %q: %v", query, err)
	}
}
