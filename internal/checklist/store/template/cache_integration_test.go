//go:build integration

package template_test

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"duediligence/internal/checklist/metrics"
	"duediligence/internal/checklist/models"
	"duediligence/internal/checklist/store/template"
	"duediligence/pkg/platform/sentinel"
	"duediligence/pkg/testutil/containers"
)

type CacheSuite struct {
	suite.Suite
	redis   *containers.RedisContainer
	backend *template.InMemory
	metrics *metrics.Metrics
	cache   *template.Cache
}

func TestCacheSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(CacheSuite))
}

func (s *CacheSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
}

func (s *CacheSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
	s.backend = template.NewInMemory()
	s.metrics = metrics.NewWithRegisterer(prometheus.NewRegistry())
	s.cache = template.NewCache(s.backend, s.redis.Client, time.Minute, template.WithCacheMetrics(s.metrics))
}

func (s *CacheSuite) TestReadThrough() {
	ctx := context.Background()
	tmpl := &models.Template{
		ChecklistType: "KYC",
		VersionNumber: 1,
		Sections:      []models.Section{{Title: "Identity", Items: []models.TemplateItem{{Title: "Proof of ID"}}}},
		PublishedAt:   time.Now().UTC(),
	}
	tmpl.Normalize()
	s.Require().NoError(s.cache.Create(ctx, tmpl))

	first, err := s.cache.Find(ctx, "KYC", 1)
	s.Require().NoError(err)
	second, err := s.cache.Find(ctx, "KYC", 1)
	s.Require().NoError(err)

	s.Equal(first.Sections, second.Sections)
	s.Equal(float64(1), testutil.ToFloat64(s.metrics.TemplateCache.WithLabelValues("miss")))
	s.Equal(float64(1), testutil.ToFloat64(s.metrics.TemplateCache.WithLabelValues("hit")))
}

func (s *CacheSuite) TestAbsenceIsNotCached() {
	ctx := context.Background()

	_, err := s.cache.Find(ctx, "KYC", 5)
	s.ErrorIs(err, sentinel.ErrNotFound)

	keys, err := s.redis.Client.Keys(ctx, "checklist:template:*").Result()
	s.Require().NoError(err)
	s.Empty(keys)
}
