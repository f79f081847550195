package nal

import (
	"strconv"
	"strings"
)

// #region stamp

// Stamp is the evidential base of a sentence: the serials of the input
// sentences it was derived from, oldest first, plus its creation time.
type Stamp struct {
	Base         []uint64 `json:"base"`
	CreationTime int64    `json:"creation_time"`
}

// NewStamp builds a stamp for a single fresh input serial.
func NewStamp(serial uint64, now int64) Stamp {
	return Stamp{Base: []uint64{serial}, CreationTime: now}
}

// MergeStamps interleaves the two bases oldest first, taking from a first,
// until cap serials have been collected; the newest serials are the ones
// dropped. It returns false when the bases overlap:
// combining them would count the same evidence twice.
func MergeStamps(a, b Stamp, now int64, cap int) (Stamp, bool) {
	if a.Overlaps(b) {
		return Stamp{}, false
	}
	limit := len(a.Base) + len(b.Base)
	if cap > 0 && limit > cap {
		limit = cap
	}
	base := make([]uint64, 0, limit)
	i, j := 0, 0
	for len(base) < limit && (i < len(a.Base) || j < len(b.Base)) {
		if i < len(a.Base) {
			base = append(base, a.Base[i])
			i++
		}
		if len(base) < limit && j < len(b.Base) {
			base = append(base, b.Base[j])
			j++
		}
	}
	return Stamp{Base: base, CreationTime: now}, true
}

// Overlaps reports whether the two bases share a serial.
func (s Stamp) Overlaps(o Stamp) bool {
	if len(s.Base) == 0 || len(o.Base) == 0 {
		return false
	}
	seen := make(map[uint64]struct{}, len(s.Base))
	for _, v := range s.Base {
		seen[v] = struct{}{}
	}
	for _, v := range o.Base {
		if _, ok := seen[v]; ok {
			return true
		}
	}
	return false
}

// EvidentialEqual compares the bases as sets.
func (s Stamp) EvidentialEqual(o Stamp) bool {
	a := make(map[uint64]struct{}, len(s.Base))
	for _, v := range s.Base {
		a[v] = struct{}{}
	}
	b := make(map[uint64]struct{}, len(o.Base))
	for _, v := range o.Base {
		b[v] = struct{}{}
	}
	if len(a) != len(b) {
		return false
	}
	for v := range a {
		if _, ok := b[v]; !ok {
			return false
		}
	}
	return true
}

// Len is the length of the evidential base.
func (s Stamp) Len() int {
	return len(s.Base)
}

// Clone copies the base so the result shares no memory with s.
func (s Stamp) Clone() Stamp {
	base := make([]uint64, len(s.Base))
	copy(base, s.Base)
	return Stamp{Base: base, CreationTime: s.CreationTime}
}

// String renders {time : s1;s2;...}.
func (s Stamp) String() string {
	var sb strings.Builder
	sb.WriteString("{")
	sb.WriteString(strconv.FormatInt(s.CreationTime, 10))
	sb.WriteString(" : ")
	for i, v := range s.Base {
		if i > 0 {
			sb.WriteString(";")
		}
		sb.WriteString(strconv.FormatUint(v, 10))
	}
	sb.WriteString("}")
	return sb.String()
}

// #endregion stamp
