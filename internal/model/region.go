package model

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// Region is a Korean metropolitan or provincial code as written on
// announcements (e.g. "서울", "경기").
type Region string

// NationwideLabel is how a nationwide scope is written on announcements and
// in user input.
const NationwideLabel = "전국"

// Regions lists every recognised region, in the order forms present them.
var Regions = []Region{
	"서울", "경기", "인천", "부산", "대구", "대전", "광주", "울산", "세종",
	"강원", "충북", "충남", "전북", "전남", "경북", "경남", "제주",
}

var knownRegions = func() map[Region]struct{} {
	m := make(map[Region]struct{}, len(Regions))
	for _, r := range Regions {
		m[r] = struct{}{}
	}
	return m
}()

// NormalizeText trims s and converts it to NFC. Text scraped from web pages
// frequently arrives decomposed (NFD), which would never compare equal to
// the region constants.
func NormalizeText(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// ParseResidence converts user or scraped text into a scope. "전국" maps to
// Nationwide; anything else must be a recognised region.
func ParseResidence(s string) (ResidenceScope, error) {
	v := NormalizeText(s)
	if v == NationwideLabel {
		return Nationwide(), nil
	}
	r := Region(v)
	if _, ok := knownRegions[r]; !ok {
		return ResidenceScope{}, fmt.Errorf("unknown region %q", s)
	}
	return InRegion(r), nil
}

// IsKnownRegion reports whether r is one of Regions.
func IsKnownRegion(r Region) bool {
	_, ok := knownRegions[r]
	return ok
}

// ParseDate parses a YYYY-MM-DD calendar date into midnight UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// DateOf returns the calendar date of t as observed in loc, as midnight UTC.
// All catalog dates use this representation so that day arithmetic never
// crosses a DST boundary.
func DateOf(t time.Time, loc *time.Location) time.Time {
	if loc != nil {
		t = t.In(loc)
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
