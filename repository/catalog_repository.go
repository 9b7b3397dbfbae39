package repository

import (
	"context"

	"MusicFlow/model"
	"MusicFlow/storage"
)

// ArtistRepository exposes the read-only artists collection.
type ArtistRepository interface {
	GetAllArtists(ctx context.Context) []model.Artist
	GetArtistByID(ctx context.Context, id string) (*model.Artist, error)
}

// AlbumRepository exposes the read-only albums collection.
type AlbumRepository interface {
	GetAllAlbums(ctx context.Context) []model.Album
	GetAlbumByID(ctx context.Context, id string) (*model.Album, error)
}

type jsonArtistRepository struct {
	artists *storage.Collection[model.Artist]
}

func NewJSONArtistRepository(store *storage.Store) ArtistRepository {
	return &jsonArtistRepository{artists: storage.NewCollection[model.Artist](store, storage.Artists)}
}

func (r *jsonArtistRepository) GetAllArtists(ctx context.Context) []model.Artist {
	return r.artists.All(ctx)
}

func (r *jsonArtistRepository) GetArtistByID(ctx context.Context, id string) (*model.Artist, error) {
	artist, ok := r.artists.Find(ctx, id)
	if !ok {
		return nil, notFound("artist", id)
	}
	return &artist, nil
}

type jsonAlbumRepository struct {
	albums *storage.Collection[model.Album]
}

func NewJSONAlbumRepository(store *storage.Store) AlbumRepository {
	return &jsonAlbumRepository{albums: storage.NewCollection[model.Album](store, storage.Albums)}
}

func (r *jsonAlbumRepository) GetAllAlbums(ctx context.Context) []model.Album {
	return r.albums.All(ctx)
}

func (r *jsonAlbumRepository) GetAlbumByID(ctx context.Context, id string) (*model.Album, error) {
	album, ok := r.albums.Find(ctx, id)
	if !ok {
		return nil, notFound("album", id)
	}
	return &album, nil
}
