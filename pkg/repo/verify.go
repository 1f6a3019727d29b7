package repo

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/odvcencio/revstore/pkg/pathenc"
)

// VerifyReport summarises the data files of a store.
type VerifyReport struct {
	Files       int
	Bytes       int64
	Hashed      int // files stored under the non-reversible dh/ form
	Undecodable int // physical names that do not map back to a logical path
}

// Verify enumerates every data file. On fncache stores this also drops
// index entries whose files have disappeared.
func (r *Repo) Verify() (*VerifyReport, error) {
	report := &VerifyReport{}
	for e, err := range r.Store.DataFiles() {
		if err != nil {
			return nil, fmt.Errorf("verify: %w", err)
		}
		report.Files++
		report.Bytes += e.Size
		if e.Undecodable {
			report.Undecodable++
		}
		if pathenc.IsHashed(e.Encoded) {
			report.Hashed++
		}
	}
	r.log.Debug("verified store",
		zap.Int("files", report.Files),
		zap.Int64("bytes", report.Bytes))
	return report, nil
}
