package crawler

import (
	"cmp"
	"context"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/SunWoo1213/ScholarShipRadar/internal/catalog"
	"github.com/SunWoo1213/ScholarShipRadar/internal/model"
)

// Details are the eligibility fields read from an announcement. A zero
// DueDate means the announcement did not state one.
type Details struct {
	MinGPA    float64
	MaxIncome model.IncomeCap
	Residence model.ResidenceScope
	DueDate   time.Time
}

// Extractor reads eligibility details from announcement text.
type Extractor interface {
	Extract(ctx context.Context, title, body string) (Details, error)
}

// RuleExtractor recognises the phrasing Korean scholarship notices
// commonly use ("평점 3.0 이상", "소득 8분위 이하", "서울 거주자",
// "신청기간: 2025.01.02 ~ 2025.01.31"). Fields it cannot find keep their
// unrestricted defaults.
type RuleExtractor struct {
	// Year is used for dates written without one ("1월 31일"). Zero means
	// the current year.
	Year int
}

var (
	gpaPattern      = regexp.MustCompile(`(?i)(?:평점|학점|성적|평균|gpa)[^0-9\n]{0,20}(\d\.\d{1,2})`)
	incomePattern   = regexp.MustCompile(`(\d{1,2})\s*분위`)
	deadlineWords   = regexp.MustCompile(`마감|기한|기간|까지|접수|신청일`)
	residenceWords  = regexp.MustCompile(`거주|주소|출신|소재|주민등록`)
	fullDatePattern = regexp.MustCompile(`(20\d{2})\s*[.\-/년]\s*(\d{1,2})\s*[.\-/월]\s*(\d{1,2})`)
	monthDayPattern = regexp.MustCompile(`(\d{1,2})\s*월\s*(\d{1,2})\s*일`)
)

// regionAliases maps administrative names to region codes. Short codes
// match themselves.
var regionAliases = map[string]model.Region{
	"서울특별시":   "서울",
	"경기도":     "경기",
	"인천광역시":   "인천",
	"부산광역시":   "부산",
	"대구광역시":   "대구",
	"대전광역시":   "대전",
	"광주광역시":   "광주",
	"울산광역시":   "울산",
	"세종특별자치시": "세종",
	"강원도":     "강원",
	"강원특별자치도": "강원",
	"충청북도":    "충북",
	"충청남도":    "충남",
	"전라북도":    "전북",
	"전북특별자치도": "전북",
	"전라남도":    "전남",
	"경상북도":    "경북",
	"경상남도":    "경남",
	"제주특별자치도": "제주",
	"제주도":     "제주",
}

// Extract implements Extractor.
func (e RuleExtractor) Extract(_ context.Context, title, body string) (Details, error) {
	text := model.NormalizeText(title + "\n" + body)
	lines := strings.Split(text, "\n")

	return Details{
		MinGPA:    extractGPA(text),
		MaxIncome: extractIncome(text),
		Residence: extractResidence(lines),
		DueDate:   e.extractDueDate(lines),
	}, nil
}

func extractGPA(text string) float64 {
	for _, m := range gpaPattern.FindAllStringSubmatch(text, -1) {
		v, err := strconv.ParseFloat(m[1], 64)
		if err == nil && v > 0 && v <= catalog.MaxGPA {
			return v
		}
	}
	return 0
}

// extractIncome takes the highest bracket mentioned, so "1~8분위" yields 8.
func extractIncome(text string) model.IncomeCap {
	best := 0
	for _, m := range incomePattern.FindAllStringSubmatch(text, -1) {
		v, err := strconv.Atoi(m[1])
		if err == nil && v >= catalog.MinIncome && v <= catalog.MaxIncome && v > best {
			best = v
		}
	}
	if best == 0 {
		return model.UnrestrictedIncome()
	}
	return model.IncomeAtMost(best)
}

// aliasesByLength lists regionAliases keys longest first, so a longer
// administrative name is consumed before any name it contains.
var aliasesByLength = func() []string {
	out := make([]string, 0, len(regionAliases))
	for alias := range regionAliases {
		out = append(out, alias)
	}
	slices.SortFunc(out, func(a, b string) int {
		if n := cmp.Compare(len(b), len(a)); n != 0 {
			return n
		}
		return strings.Compare(a, b)
	})
	return out
}()

// extractResidence looks for region names on lines about residence. A
// single region restricts the scope; none or several leave it nationwide.
func extractResidence(lines []string) model.ResidenceScope {
	found := make(map[model.Region]bool)
	for _, line := range lines {
		if !residenceWords.MatchString(line) {
			continue
		}
		if strings.Contains(line, model.NationwideLabel) {
			return model.Nationwide()
		}
		for _, r := range lineRegions(line) {
			found[r] = true
		}
	}
	if len(found) != 1 {
		return model.Nationwide()
	}
	for r := range found {
		return model.InRegion(r)
	}
	return model.Nationwide()
}

// lineRegions returns the regions named on one line. Administrative names
// are matched and cut out first. Once a province is named, a short code
// followed by 시 or 군 is a city inside it (경기도 광주시), not a region.
func lineRegions(line string) []model.Region {
	var out []model.Region
	aliasHit := false
	for _, alias := range aliasesByLength {
		if strings.Contains(line, alias) {
			out = append(out, regionAliases[alias])
			line = strings.ReplaceAll(line, alias, " ")
			aliasHit = true
		}
	}
	for _, r := range model.Regions {
		code := string(r)
		for rest := line; ; {
			i := strings.Index(rest, code)
			if i < 0 {
				break
			}
			rest = rest[i+len(code):]
			if aliasHit && (strings.HasPrefix(rest, "시") || strings.HasPrefix(rest, "군")) {
				continue
			}
			out = append(out, r)
			break
		}
	}
	return out
}

// extractDueDate returns the latest date written on a line about the
// application period, so the end of a "시작 ~ 끝" range wins.
func (e RuleExtractor) extractDueDate(lines []string) time.Time {
	year := e.Year
	if year == 0 {
		year = time.Now().Year()
	}

	var latest time.Time
	consider := func(y, m, d int) {
		t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
		// time.Date normalises 2월 30일 into March; reject it.
		if t.Month() != time.Month(m) || t.Day() != d {
			return
		}
		if t.After(latest) {
			latest = t
		}
	}

	for _, line := range lines {
		if !deadlineWords.MatchString(line) {
			continue
		}
		rest := line
		for _, m := range fullDatePattern.FindAllStringSubmatch(line, -1) {
			y, _ := strconv.Atoi(m[1])
			mo, _ := strconv.Atoi(m[2])
			d, _ := strconv.Atoi(m[3])
			consider(y, mo, d)
			rest = strings.Replace(rest, m[0], " ", 1)
		}
		for _, m := range monthDayPattern.FindAllStringSubmatch(rest, -1) {
			mo, _ := strconv.Atoi(m[1])
			d, _ := strconv.Atoi(m[2])
			consider(year, mo, d)
		}
	}
	return latest
}
