package pathenc

import "strings"

var windowsReserved = map[string]struct{}{
	"con": {}, "prn": {}, "aux": {}, "nul": {},
	"com1": {}, "com2": {}, "com3": {}, "com4": {}, "com5": {},
	"com6": {}, "com7": {}, "com8": {}, "com9": {},
	"lpt1": {}, "lpt2": {}, "lpt3": {}, "lpt4": {}, "lpt5": {},
	"lpt6": {}, "lpt7": {}, "lpt8": {}, "lpt9": {},
}

// AuxEncode masks path segments Windows cannot create. A segment whose
// part before the first '.' is a reserved device name gets its third byte
// escaped ("aux.txt" -> "au~78.txt"), and a trailing '.' or ' ' is escaped
// ("foo." -> "foo~2e"). Only the part before the first dot is checked, so
// "file.aux" is left alone.
//
// AuxEncode is not idempotent; apply it once.
func AuxEncode(path string) string {
	segs := strings.Split(path, "/")
	for i, n := range segs {
		if n == "" {
			continue
		}
		base, _, _ := strings.Cut(n, ".")
		if _, ok := windowsReserved[base]; ok {
			n = n[:2] + hexEscape(n[2]) + n[3:]
		}
		if last := n[len(n)-1]; last == '.' || last == ' ' {
			n = n[:len(n)-1] + hexEscape(last)
		}
		segs[i] = n
	}
	return strings.Join(segs, "/")
}
