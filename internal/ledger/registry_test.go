// internal/ledger/registry_test.go
package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeployCollectionTwiceKeepsFirstRecord(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rec, ok := f.registry.GetArtistRecord(artistA)
	require.True(t, ok)
	assert.Equal(t, f.ref, rec.CollectionRef)
	assert.Equal(t, "Artist A", rec.ArtistName)

	_, err := f.registry.DeployCollection(ctx, operator, artistA, "Someone Else", CollectionConfig{Name: "x", Symbol: "X"})
	require.ErrorIs(t, err, ErrAlreadyRegistered)
	assert.True(t, IsIdempotencyViolation(err))

	rec, ok = f.registry.GetArtistRecord(artistA)
	require.True(t, ok)
	assert.Equal(t, f.ref, rec.CollectionRef)
	assert.Equal(t, "Artist A", rec.ArtistName)
}

func TestDeployCollectionValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.registry.DeployCollection(ctx, artistC, artistC, "C", CollectionConfig{})
	assert.ErrorIs(t, err, ErrUnauthorized)

	// minters cannot deploy
	_, err = f.registry.DeployCollection(ctx, minter, artistC, "C", CollectionConfig{})
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = f.registry.DeployCollection(ctx, operator, artistC, "C", CollectionConfig{ArtistRoyaltyBps: 10001})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = f.registry.DeployCollection(ctx, operator, ZeroIdentity, "C", CollectionConfig{})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, ok := f.registry.GetArtistRecord(artistC)
	assert.False(t, ok)
}

func TestDeployCollectionUsesRegistryDefaults(t *testing.T) {
	f := newFixture(t)

	ref, err := f.registry.DeployCollection(context.Background(), operator, artistC, "C", CollectionConfig{Name: "C", Symbol: "C"})
	require.NoError(t, err)
	assert.NotEqual(t, f.ref, ref)

	c, err := f.registry.Collection(ref)
	require.NoError(t, err)
	assert.Equal(t, treasury, c.Config().Treasury)
	assert.Equal(t, gallery, c.Config().GalleryWallet)
	assert.Equal(t, operator, c.Owner())

	ev := f.sink.last()
	assert.Equal(t, EventCollectionCreated, ev.Kind)
	assert.Equal(t, artistC, ev.Artist)
	assert.Equal(t, ref, ev.Collection)
	assert.Equal(t, "C", ev.ArtistName)

	records := f.registry.ArtistRecords()
	require.Len(t, records, 2)
	assert.Equal(t, artistA, records[0].ArtistAddress)
	assert.Equal(t, artistC, records[1].ArtistAddress)
}

func TestCollectionsHaveIsolatedState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ref, err := f.registry.DeployCollection(ctx, operator, artistC, "C", CollectionConfig{})
	require.NoError(t, err)
	other, err := f.registry.Collection(ref)
	require.NoError(t, err)

	_, err = f.coll.BatchMint(ctx, operator, []Identity{artistA}, []string{"a"}, []Identity{artistA}, []uint64{0}, "shared")
	require.NoError(t, err)
	ids, err := other.BatchMint(ctx, operator, []Identity{artistC}, []string{"c"}, []Identity{artistC}, []uint64{0}, "shared")
	require.NoError(t, err)
	assert.Equal(t, []uint64{1}, ids)
}

func TestDeployJournalFailureRecordsNothing(t *testing.T) {
	f := newFixture(t)
	f.journal.setFail(true)

	_, err := f.registry.DeployCollection(context.Background(), operator, artistC, "C", CollectionConfig{})
	require.ErrorIs(t, err, errJournalDown)
	_, ok := f.registry.GetArtistRecord(artistC)
	assert.False(t, ok)

	f.journal.setFail(false)
	_, err = f.registry.DeployCollection(context.Background(), operator, artistC, "C", CollectionConfig{})
	assert.NoError(t, err)
}

func TestCollectionReferenceIsDeterministic(t *testing.T) {
	a := cloneAddress(registry, artistA, 1)
	assert.Equal(t, a, cloneAddress(registry, artistA, 1))
	assert.NotEqual(t, a, cloneAddress(registry, artistA, 2))
	assert.NotEqual(t, a, cloneAddress(registry, artistC, 1))
	assert.NotEqual(t, ZeroIdentity, a)
}

func TestUnknownCollection(t *testing.T) {
	f := newFixture(t)
	_, err := f.registry.Collection(stranger)
	assert.ErrorIs(t, err, ErrUnknownCollection)
}

func TestNewRegistryRequiresCollaborators(t *testing.T) {
	_, err := NewRegistry(RegistryOptions{Template: Template{Payments: NewVault(nil, nil)}})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewRegistry(RegistryOptions{Template: Template{Auth: NewRoleBook()}})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewRegistry(RegistryOptions{Template: Template{
		Auth:     NewRoleBook(),
		Payments: NewVault(nil, nil),
		Fees:     FeeSchedule{PlatformFeeBps: 9000, GalleryFeeBps: 1001},
	}})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	r, err := NewRegistry(RegistryOptions{Template: Template{Auth: NewRoleBook(), Payments: NewVault(nil, nil)}})
	require.NoError(t, err)
	assert.Equal(t, "collection-v1", r.Implementation())
}
