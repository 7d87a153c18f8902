package handlers

import (
	"video-library/internal/catalog"
	"video-library/internal/media"
	"video-library/internal/scanner"
	"video-library/internal/sidecar"
	"video-library/internal/startup"
)

type Handlers struct {
	store      *catalog.Store
	scn        *scanner.Scanner
	reconciler *sidecar.Reconciler
	thumbs     *media.Thumbnails
	mediaDir   string
}

func New(store *catalog.Store, scn *scanner.Scanner, rec *sidecar.Reconciler, thumbs *media.Thumbnails, config *startup.Config) *Handlers {
	return &Handlers{
		store:      store,
		scn:        scn,
		reconciler: rec,
		thumbs:     thumbs,
		mediaDir:   config.MediaDir,
	}
}
