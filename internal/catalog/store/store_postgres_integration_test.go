//go:build integration

package store_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"beatstore/internal/catalog/models"
	"beatstore/internal/catalog/store"
	id "beatstore/pkg/domain"
	"beatstore/pkg/testutil/containers"
)

type PostgresCatalogSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *store.PostgresStore
}

func TestPostgresCatalogSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresCatalogSuite))
}

func (s *PostgresCatalogSuite) SetupSuite() {
	s.pg = containers.GetManager().GetPostgres(s.T())
	s.store = store.NewPostgres(s.pg.DB)
}

func (s *PostgresCatalogSuite) SetupTest() {
	s.Require().NoError(s.pg.Truncate(context.Background(), "products"))
}

func (s *PostgresCatalogSuite) TestByIDsPreservesRequestOrder() {
	ctx := context.Background()
	for _, p := range []models.Product{
		{ID: 1, Type: id.ProductTypeBeat, Title: "One", Price: decimal.RequireFromString("10.00")},
		{ID: 2, Type: id.ProductTypeBeat, Title: "Two", Price: decimal.RequireFromString("20.50"),
			Variants: []models.Variant{{Name: "mp3 lease", Stock: 3}}},
		{ID: 2, Type: id.ProductTypeSoundKit, Title: "Kit Two", Price: decimal.RequireFromString("5.00")},
	} {
		s.Require().NoError(s.store.Upsert(ctx, p))
	}

	products, err := s.store.ByIDs(ctx, id.ProductTypeBeat, []id.ProductID{2, 99, 1})
	s.Require().NoError(err)
	s.Require().Len(products, 2)
	s.Equal("Two", products[0].Title)
	s.True(decimal.RequireFromString("20.50").Equal(products[0].Price))
	s.Equal([]models.Variant{{Name: "mp3 lease", Stock: 3}}, products[0].Variants)
	s.Equal("One", products[1].Title)
}

func (s *PostgresCatalogSuite) TestUpsertReplaces() {
	ctx := context.Background()
	p := models.Product{ID: 4, Type: id.ProductTypeSoundKit, Title: "Drums", Price: decimal.RequireFromString("15.00")}
	s.Require().NoError(s.store.Upsert(ctx, p))
	p.Title = "Drums Vol. 2"
	s.Require().NoError(s.store.Upsert(ctx, p))

	products, err := s.store.ByIDs(ctx, id.ProductTypeSoundKit, []id.ProductID{4})
	s.Require().NoError(err)
	s.Require().Len(products, 1)
	s.Equal("Drums Vol. 2", products[0].Title)
}
