package localstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"beatstore/pkg/platform/sentinel"
)

type snapshot struct {
	Title string `json:"title"`
	Count int    `json:"count"`
}

type InMemoryStoreSuite struct {
	suite.Suite
	ctx   context.Context
	store *InMemoryStore
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = NewInMemory()
}

func (s *InMemoryStoreSuite) TestGetMissing() {
	_, err := s.store.Get(s.ctx, KeyCart)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestSetReplacesWholeValue() {
	s.Require().NoError(s.store.Set(s.ctx, KeyCart, []byte(`[1,2]`)))
	s.Require().NoError(s.store.Set(s.ctx, KeyCart, []byte(`[3]`)))

	raw, err := s.store.Get(s.ctx, KeyCart)
	s.Require().NoError(err)
	s.Equal(`[3]`, string(raw))
}

func (s *InMemoryStoreSuite) TestValuesAreCopied() {
	in := []byte(`"a"`)
	s.Require().NoError(s.store.Set(s.ctx, KeySavedBeats, in))
	in[1] = 'b'

	out, err := s.store.Get(s.ctx, KeySavedBeats)
	s.Require().NoError(err)
	out[1] = 'c'

	again, err := s.store.Get(s.ctx, KeySavedBeats)
	s.Require().NoError(err)
	s.Equal(`"a"`, string(again))
}

func (s *InMemoryStoreSuite) TestDeleteIsIdempotent() {
	s.Require().NoError(s.store.Set(s.ctx, KeyCart, []byte(`[]`)))
	s.Require().NoError(s.store.Delete(s.ctx, KeyCart))
	s.Require().NoError(s.store.Delete(s.ctx, KeyCart))

	_, err := s.store.Get(s.ctx, KeyCart)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestKeysAreIndependent() {
	s.Require().NoError(s.store.Set(s.ctx, KeySavedBeats, []byte(`1`)))
	s.Require().NoError(s.store.Set(s.ctx, KeySavedSoundKits, []byte(`2`)))
	s.Require().NoError(s.store.Delete(s.ctx, KeySavedBeats))

	raw, err := s.store.Get(s.ctx, KeySavedSoundKits)
	s.Require().NoError(err)
	s.Equal(`2`, string(raw))
}

func (s *InMemoryStoreSuite) TestJSONHelpers() {
	s.Run("round trip", func() {
		in := []snapshot{{Title: "Night Drive", Count: 2}}
		s.Require().NoError(SaveJSON(s.ctx, s.store, KeyCart, in))

		out, err := LoadJSON[[]snapshot](s.ctx, s.store, KeyCart)
		s.Require().NoError(err)
		s.Equal(in, out)
	})

	s.Run("missing key surfaces not found", func() {
		_, err := LoadJSON[[]snapshot](s.ctx, s.store, KeySavedSoundKits)
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("missing key as zero value", func() {
		out, err := LoadJSONOrZero[[]snapshot](s.ctx, s.store, KeySavedSoundKits)
		s.Require().NoError(err)
		s.Nil(out)
	})

	s.Run("corrupt document", func() {
		s.Require().NoError(s.store.Set(s.ctx, KeySavedBeats, []byte(`{not json`)))
		_, err := LoadJSONOrZero[[]snapshot](s.ctx, s.store, KeySavedBeats)
		s.Error(err)
		s.NotErrorIs(err, sentinel.ErrNotFound)
	})
}
