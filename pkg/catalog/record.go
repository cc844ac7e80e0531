package catalog

import (
	"path/filepath"
	"strings"

	"github.com/chanilino/romscrape/internal/logger"
	pkgerrors "github.com/chanilino/romscrape/pkg/errors"
	"github.com/chanilino/romscrape/pkg/pathtmpl"
	"github.com/chanilino/romscrape/pkg/resolve"
)

// Options carry the per-run resolution settings into record construction.
// Immutable during pipeline execution.
type Options struct {
	// Langs is the ordered locale priority for text fields.
	Langs []string
	// Regions is the user-configured region priority, applied after the
	// regions the ROM record declares for itself.
	Regions []string
	// DownloadPath is the destination template for media assets.
	DownloadPath string
	// MediaDir maps a media category to its directory name.
	MediaDir func(category string) string
	// Emulators resolves the emulator per system name.
	Emulators *EmulatorTable
}

// Record is the fully resolved per-ROM aggregate. Immutable once built.
type Record struct {
	Name     string
	FileName string // base name of the source ROM file
	System   string
	Emulator string

	Synopsis    string
	ReleaseDate string
	Developer   string
	Players     string
	Rotation    string
	CloneOf     string
	Genres      []string
	Regions     []string

	// Media lists the resolvable assets in canonical category order.
	// Categories absent from the raw response are simply not listed.
	Media []MediaAsset
}

// BuildRecord resolves a raw lookup response into a Record. The name and
// system id are mandatory; a response missing either fails the whole record,
// which the caller reports as a lookup failure.
func BuildRecord(response resolve.Node, sourcePath string, systems Systems, opts Options) (*Record, error) {
	game := response.At("jeu")

	name, ok := game.At("nom").Str()
	if !ok || name == "" {
		return nil, pkgerrors.Wrap(pkgerrors.ErrMalformedRecord, "record has no name")
	}
	systemID, ok := game.At("systemeid").Int()
	if !ok {
		return nil, pkgerrors.Wrapf(pkgerrors.ErrMalformedRecord, "record %q has no system id", name)
	}
	systemName, ok := systems.NameByID(systemID)
	if !ok {
		return nil, pkgerrors.Wrapf(pkgerrors.ErrMalformedRecord,
			"record %q references unknown system %d", name, systemID)
	}

	romRegions := game.At("regionshortnames").Strings()
	regionPriority := append(append([]string{}, romRegions...), opts.Regions...)

	record := &Record{
		Name:        name,
		FileName:    filepath.Base(sourcePath),
		System:      systemName,
		Emulator:    opts.Emulators.Resolve(systemName),
		Synopsis:    localized(game.At("synopsis"), "synopsis_", opts.Langs),
		ReleaseDate: localized(game.At("dates"), "date_", regionPriority),
		Developer:   game.At("developpeur").StrOr(""),
		Players:     game.At("joueurs").StrOr(""),
		Rotation:    game.At("rotation").StrOr(""),
		CloneOf:     game.At("cloneof").StrOr(""),
		Genres:      localizedList(game.At("genres"), "genres_", opts.Langs),
		Regions:     romRegions,
	}

	medias := game.At("medias")
	for _, spec := range mediaSpecs {
		key, holder, found := spec.resolveKey(medias, regionPriority)
		if !found {
			continue // category absent from the response, not an error
		}
		basePath, err := record.mediaBasePath(spec.category, opts)
		if err != nil {
			return nil, err
		}
		asset, err := newAsset(spec.category, holder, key, basePath)
		if err != nil {
			logger.Warn("skipping unusable media asset",
				logger.Fields{"game": name, "category": spec.category, "error": err.Error()})
			continue
		}
		record.Media = append(record.Media, asset)
	}

	return record, nil
}

// mediaBasePath renders the destination path for one media category, without
// the extension.
func (r *Record) mediaBasePath(category string, opts Options) (string, error) {
	dir := category
	if opts.MediaDir != nil {
		dir = opts.MediaDir(category)
	}
	rendered, err := pathtmpl.Render(opts.DownloadPath, map[string]string{
		"name":     sanitizeName(r.Name),
		"filename": r.FileName,
		"system":   r.System,
		"emulator": r.Emulator,
		"media":    dir,
	})
	if err != nil {
		return "", err
	}
	return rendered, nil
}

// localized resolves one locale/region tagged scalar field, defaulting to
// empty.
func localized(field resolve.Node, prefix string, priority []string) string {
	m, ok := field.Map()
	if !ok {
		return ""
	}
	key, found := resolve.PrefixKey(m, prefix, priority)
	if !found {
		return ""
	}
	return field.At(key).StrOr("")
}

// localizedList resolves one locale tagged list field, defaulting to nil.
func localizedList(field resolve.Node, prefix string, priority []string) []string {
	m, ok := field.Map()
	if !ok {
		return nil
	}
	key, found := resolve.PrefixKey(m, prefix, priority)
	if !found {
		return nil
	}
	return field.At(key).Strings()
}

// sanitizeName strips path separators from a game name so a hostile record
// cannot escape the media directory.
func sanitizeName(name string) string {
	name = strings.ReplaceAll(name, "/", "-")
	return strings.ReplaceAll(name, string(filepath.Separator), "-")
}
