package pathenc

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"
)

const (
	// MaxStorePathLen is the longest encoded path kept in reversible form.
	MaxStorePathLen = 120

	// DirPrefixLen is how many bytes of each directory survive in a
	// hashed path.
	DirPrefixLen = 8

	maxShortenedDirsLen = 8*(DirPrefixLen+1) - 4

	dataPrefix   = "data/"
	hashedPrefix = "dh/"
)

// HybridEncode maps a logical store path to its physical name.
//
// Paths outside data/ are returned unchanged. Inside data/, the reversible
// form "data/" + AuxEncode(EncodeFilename(rest)) is used when it fits in
// MaxStorePathLen bytes. Longer paths are replaced by a hashed name under
// dh/: up to DirPrefixLen bytes of as many leading directories as fit in
// the directory budget, then as much of the basename as fits, then the
// SHA-1 of the full logical path, then the original extension. Hashed
// names cannot be decoded; the store index is the only way back.
func HybridEncode(path string) string {
	if !strings.HasPrefix(path, dataPrefix) {
		return path
	}
	ndpath := path[len(dataPrefix):]
	res := dataPrefix + AuxEncode(EncodeFilename(ndpath))
	if len(res) <= MaxStorePathLen {
		return res
	}
	return hashedEncode(path, ndpath)
}

func hashedEncode(path, ndpath string) string {
	sum := sha1.Sum([]byte(path))
	digest := hex.EncodeToString(sum[:])

	aep := AuxEncode(lowerEncode(ndpath))
	ext := splitExt(aep)
	parts := strings.Split(aep, "/")
	basename := parts[len(parts)-1]

	var sdirs []string
	for _, p := range parts[:len(parts)-1] {
		d := p
		if len(d) > DirPrefixLen {
			d = d[:DirPrefixLen]
		}
		if d != "" {
			// Windows can't access dirs ending in period or space.
			if last := d[len(d)-1]; last == '.' || last == ' ' {
				d = d[:len(d)-1] + "_"
			}
		}
		t := strings.Join(sdirs, "/") + "/" + d
		if len(t) > maxShortenedDirsLen {
			break
		}
		sdirs = append(sdirs, d)
	}
	dirs := strings.Join(sdirs, "/")
	if dirs != "" {
		dirs += "/"
	}

	res := hashedPrefix + dirs + digest + ext
	if spaceLeft := MaxStorePathLen - len(res); spaceLeft > 0 {
		filler := basename
		if len(filler) > spaceLeft {
			filler = filler[:spaceLeft]
		}
		res = hashedPrefix + dirs + filler + digest + ext
	}
	return res
}

// splitExt returns the extension of the final path segment, including the
// dot. Leading dots of the segment do not start an extension, so ".hgtags"
// has none.
func splitExt(p string) string {
	dot := strings.LastIndexByte(p, '.')
	sep := strings.LastIndexByte(p, '/')
	if dot <= sep {
		return ""
	}
	for i := sep + 1; i < dot; i++ {
		if p[i] != '.' {
			return p[dot:]
		}
	}
	return ""
}

// IsHashed reports whether an encoded name uses the non-reversible
// dh/ form.
func IsHashed(encoded string) bool {
	return strings.HasPrefix(encoded, hashedPrefix)
}
