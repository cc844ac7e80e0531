package catalog

import (
	"net/url"
	"strings"

	pkgerrors "github.com/chanilino/romscrape/pkg/errors"
	"github.com/chanilino/romscrape/pkg/hashing"
	"github.com/chanilino/romscrape/pkg/resolve"
)

// MediaAsset is a single downloadable artifact tied to a record, with the
// digests the service advertises for it. The destination extension comes
// from the mediaformat query parameter on the remote URL.
type MediaAsset struct {
	Category        string
	URL             string
	Expected        hashing.Triple
	DestinationPath string
}

// mediaSpec describes where one media category lives inside the raw
// "medias" object and how its key is selected.
type mediaSpec struct {
	category string
	// path walks from the medias object to the map holding the media keys.
	// Empty means the medias object itself.
	path []string
	// key is set for fixed-key categories with no region variants.
	key string
	// prefix is set for region-resolved categories; the concrete key is
	// prefix+region, picked by priority.
	prefix string
}

// mediaSpecs lists every media category in emission order: the fixed-key
// categories, then the region-resolved wheel, box and support variants.
var mediaSpecs = []mediaSpec{
	{category: "screenshot", key: "media_screenshot"},
	{category: "video", key: "media_video"},
	{category: "fanart", key: "media_fanart"},
	{category: "wheel", path: []string{"media_wheels"}, prefix: "media_wheel_"},
	{category: "boxtexture", path: []string{"media_boxs", "media_boxstexture"}, prefix: "media_boxtexture_"},
	{category: "box2d", path: []string{"media_boxs", "media_boxs2d"}, prefix: "media_box2d_"},
	{category: "box2d-side", path: []string{"media_boxs", "media_boxs2d-side"}, prefix: "media_box2d-side_"},
	{category: "box2d-back", path: []string{"media_boxs", "media_boxs2d-back"}, prefix: "media_box2d-back_"},
	{category: "box3d", path: []string{"media_boxs", "media_boxs3d"}, prefix: "media_box3d_"},
	{category: "supporttexture", path: []string{"media_supports", "media_supportstexture"}, prefix: "media_supporttexture_"},
	{category: "support2d", path: []string{"media_supports", "media_supports2d"}, prefix: "media_support2d_"},
	{category: "support2d-side", path: []string{"media_supports", "media_supports2d-side"}, prefix: "media_support2d-side_"},
	{category: "support2d-back", path: []string{"media_supports", "media_supports2d-back"}, prefix: "media_support2d-back_"},
	{category: "support3d", path: []string{"media_supports", "media_supports3d"}, prefix: "media_support3d_"},
}

// resolveKey picks the concrete media key for a spec inside the medias
// object, or ("", nil, false) when the category is simply absent.
func (s mediaSpec) resolveKey(medias resolve.Node, regionPriority []string) (string, map[string]any, bool) {
	holder, ok := medias.At(s.path...).Map()
	if !ok {
		return "", nil, false
	}
	if s.key != "" {
		if _, present := holder[s.key]; !present {
			return "", nil, false
		}
		return s.key, holder, true
	}
	key, found := resolve.PrefixKey(holder, s.prefix, regionPriority)
	if !found {
		return "", nil, false
	}
	return key, holder, true
}

// newAsset builds a MediaAsset from the key inside its holder map. The URL
// must carry a mediaformat query parameter naming the file extension; a URL
// without it fails this asset only.
func newAsset(category string, holder map[string]any, key, basePath string) (MediaAsset, error) {
	node := resolve.Tree(map[string]any(holder))

	remoteURL, ok := node.At(key).Str()
	if !ok || remoteURL == "" {
		return MediaAsset{}, pkgerrors.Wrapf(pkgerrors.ErrMalformedRecord, "media key %s holds no URL", key)
	}

	parsed, err := url.Parse(remoteURL)
	if err != nil {
		return MediaAsset{}, pkgerrors.Wrapf(pkgerrors.ErrMalformedRecord, "media key %s: invalid URL: %v", key, err)
	}
	extension := parsed.Query().Get("mediaformat")
	if extension == "" {
		return MediaAsset{}, pkgerrors.Wrapf(pkgerrors.ErrMissingMediaType, "media key %s: %s", key, remoteURL)
	}

	// The service reports digests in upper case; local digests are lower.
	return MediaAsset{
		Category: category,
		URL:      remoteURL,
		Expected: hashing.Triple{
			CRC32: strings.ToLower(node.At(key + "_crc").StrOr("")),
			MD5:   strings.ToLower(node.At(key + "_md5").StrOr("")),
			SHA1:  strings.ToLower(node.At(key + "_sha1").StrOr("")),
		},
		DestinationPath: basePath + "." + extension,
	}, nil
}
