// Package analytics aggregates request history into per-endpoint statistics.
package analytics

import (
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/studiowebux/restforge/internal/types"
)

// IDPlaceholder replaces id-like path segments in normalized paths
const IDPlaceholder = "{id}"

var (
	numericSegment = regexp.MustCompile(`^\d+$`)
	uuidSegment    = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)
	hexSegment     = regexp.MustCompile(`^[0-9a-fA-F]{24,}$`)
)

// Stats summarizes the calls made to one method and normalized path
type Stats struct {
	NormalizedPath string
	Method         string
	TotalCalls     int
	SuccessCount   int
	ErrorCount     int
	NetworkErrors  int // DNS, connection refused, timeouts (status 0)
	AvgDurationMs  float64
	MinDurationMs  float64
	MaxDurationMs  float64
	TotalRespSize  int64
	StatusCodes    map[int]int
	LastCalled     time.Time
}

// SuccessRate is the share of 2xx responses, between 0 and 1
func (s Stats) SuccessRate() float64 {
	if s.TotalCalls == 0 {
		return 0
	}
	return float64(s.SuccessCount) / float64(s.TotalCalls)
}

// NormalizePath reduces a request URL to host and path with id-like segments
// replaced, so /users/42 and /users/43 are grouped together. Query strings
// are dropped. Unresolved {{variables}} are kept as they are.
func NormalizePath(rawURL string) string {
	target := rawURL
	if i := strings.IndexAny(target, "?#"); i >= 0 {
		target = target[:i]
	}

	prefix := ""
	if u, err := url.Parse(target); err == nil && u.Host != "" {
		prefix, target = u.Host, u.Path
	}

	segments := strings.Split(target, "/")
	for i, seg := range segments {
		if numericSegment.MatchString(seg) || uuidSegment.MatchString(seg) || hexSegment.MatchString(seg) {
			segments[i] = IDPlaceholder
		}
	}

	path := strings.Join(segments, "/")
	if prefix != "" && path != "" && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return prefix + path
}

type groupKey struct {
	method string
	path   string
}

// Compute groups history items by method and normalized path. Items without
// a response are ignored. The result is ordered by most recent call first.
func Compute(items []types.RequestHistoryItem) []Stats {
	groups := make(map[groupKey]*Stats)
	var order []groupKey

	for _, item := range items {
		if item.Response == nil {
			continue
		}
		key := groupKey{method: item.Request.EffectiveMethod(), path: NormalizePath(item.Request.URL)}

		s, ok := groups[key]
		if !ok {
			s = &Stats{
				NormalizedPath: key.path,
				Method:         key.method,
				MinDurationMs:  item.Response.Time,
				StatusCodes:    make(map[int]int),
			}
			groups[key] = s
			order = append(order, key)
		}
		add(s, item)
	}

	out := make([]Stats, 0, len(order))
	for _, key := range order {
		s := groups[key]
		if s.TotalCalls > 0 {
			s.AvgDurationMs /= float64(s.TotalCalls)
		}
		out = append(out, *s)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].LastCalled.After(out[j].LastCalled)
	})
	return out
}

// add folds one call into s. AvgDurationMs holds the running sum until Compute divides it.
func add(s *Stats, item types.RequestHistoryItem) {
	resp := item.Response
	s.TotalCalls++
	s.StatusCodes[resp.Status]++
	s.TotalRespSize += resp.Size
	s.AvgDurationMs += resp.Time

	switch {
	case resp.Status == 0:
		s.NetworkErrors++
	case resp.Status >= 200 && resp.Status < 300:
		s.SuccessCount++
	case resp.Status >= 400:
		s.ErrorCount++
	}

	s.MinDurationMs = min(s.MinDurationMs, resp.Time)
	s.MaxDurationMs = max(s.MaxDurationMs, resp.Time)

	if called := time.UnixMilli(item.Timestamp); called.After(s.LastCalled) {
		s.LastCalled = called
	}
}
