package scoring

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"etf-advisor/pkg/logger"
	"etf-advisor/pkg/utils"
)

// Result is one significance evaluation. Sub-scores and the composite stay in
// [0,1]; Notify is the decision against the dynamic threshold.
type Result struct {
	Urgency        float64 `json:"urgency"`
	Recommendation float64 `json:"recommendation"`
	Risk           float64 `json:"risk"`
	Market         float64 `json:"market"`
	Amount         float64 `json:"amount"`
	Composite      float64 `json:"composite"`
	Threshold      float64 `json:"threshold"`
	Notify         bool    `json:"notify"`
	FailedOpen     bool    `json:"failed_open"`
}

const (
	weightUrgency        = 0.35
	weightRecommendation = 0.30
	weightRisk           = 0.15
	weightMarket         = 0.15
	weightAmount         = 0.05

	baseThreshold     = 0.7
	minThreshold      = 0.3
	maxThreshold      = 0.9
	urgencyRelief     = 0.3
	instabilityRelief = 0.1
	marketHoursRelief = 0.05
	weekendIncrease   = 0.1
)

type termMatcher struct {
	re     *regexp.Regexp
	weight int
}

// Scorer is a deterministic lexical heuristic over analyzer answers. All
// state is immutable after construction; safe for concurrent use.
type Scorer struct {
	log *logger.Logger

	escalation        []termMatcher
	deescalation      []termMatcher
	strongAction      []termMatcher
	actionEscalation  []termMatcher
	softSuggestion    []termMatcher
	hold              []termMatcher
	risk              []termMatcher
	market            []termMatcher
	instability       []*regexp.Regexp
	currencyAmount    *regexp.Regexp
	suffixedAmount    *regexp.Regexp
	denominatedAmount *regexp.Regexp
}

func NewScorer(log *logger.Logger) *Scorer {
	return &Scorer{
		log:              log,
		escalation:       compileTerms(escalationTerms),
		deescalation:     compileTerms(deescalationTerms),
		strongAction:     compileTerms(strongActionTerms),
		actionEscalation: compileTerms(actionEscalationTerms),
		softSuggestion:   compileTerms(softSuggestionTerms),
		hold:             compileTerms(holdTerms),
		risk:             compileTerms(riskTerms),
		market:           compileTerms(marketTerms),
		instability:      compilePlain(instabilityTerms),

		currencyAmount:    regexp.MustCompile(`\$\s*([0-9][0-9,]*(?:\.[0-9]+)?)\s*(k|m|million|billion|b)?\b`),
		suffixedAmount:    regexp.MustCompile(`\b([0-9][0-9,]*(?:\.[0-9]+)?)\s*(k|million|billion)\b`),
		denominatedAmount: regexp.MustCompile(`\b([0-9][0-9,]*(?:\.[0-9]+)?)\s*(k|m|million|billion|b)?\s*(dollars|usd|won)\b`),
	}
}

func compileTerms(terms []weightedTerm) []termMatcher {
	matchers := make([]termMatcher, 0, len(terms))
	for _, t := range terms {
		matchers = append(matchers, termMatcher{
			re:     regexp.MustCompile(`\b` + regexp.QuoteMeta(t.term) + `\b`),
			weight: t.weight,
		})
	}
	return matchers
}

func compilePlain(terms []string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, 0, len(terms))
	for _, t := range terms {
		res = append(res, regexp.MustCompile(`\b`+regexp.QuoteMeta(t)+`\b`))
	}
	return res
}

// Evaluate scores one analysis text at the given evaluation time. Identical
// (text, at) pairs always produce identical results. Any panic inside the
// heuristic fails open: notify, marked FailedOpen.
func (s *Scorer) Evaluate(text string, at time.Time) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("Scorer panicked, failing open",
				logger.Field("panic", r),
			)
			result = Result{
				Notify:     true,
				FailedOpen: true,
			}
		}
	}()

	lower := strings.ToLower(text)

	result.Urgency = s.urgencyScore(lower)
	result.Recommendation = bucketWeightedSum(sumWeights(lower, s.strongAction) +
		sumWeights(lower, s.actionEscalation) +
		sumWeights(lower, s.softSuggestion) +
		sumWeights(lower, s.hold))
	result.Risk = bucketWeightedSum(sumWeights(lower, s.risk))
	result.Market = bucketWeightedSum(sumWeights(lower, s.market))
	result.Amount = s.amountScore(lower)

	composite := weightUrgency*result.Urgency +
		weightRecommendation*result.Recommendation +
		weightRisk*result.Risk +
		weightMarket*result.Market +
		weightAmount*result.Amount
	if composite > 1.0 {
		composite = 1.0
	}
	result.Composite = composite

	result.Threshold = s.dynamicThreshold(lower, result.Urgency, at)
	result.Notify = result.Composite > result.Threshold
	return result
}

// urgencyScore compares weighted escalation hits against de-escalation hits.
func (s *Scorer) urgencyScore(lower string) float64 {
	escalation := sumWeights(lower, s.escalation)
	deescalation := sumWeights(lower, s.deescalation)

	switch {
	case escalation > deescalation:
		return 1.0
	case escalation > 0 && escalation == deescalation:
		return 0.6
	case escalation == 0 && deescalation == 0:
		return 0.5
	default:
		return 0.2
	}
}

func sumWeights(lower string, matchers []termMatcher) int {
	total := 0
	for _, m := range matchers {
		if m.re.MatchString(lower) {
			total += m.weight
		}
	}
	return total
}

func bucketWeightedSum(sum int) float64 {
	switch {
	case sum >= 5:
		return 1.0
	case sum >= 3:
		return 0.8
	case sum >= 1:
		return 0.5
	default:
		return 0.2
	}
}

// amountScore averages every currency amount found in the text and maps the
// average to a fixed band.
func (s *Scorer) amountScore(lower string) float64 {
	var amounts []float64

	for _, m := range s.currencyAmount.FindAllStringSubmatch(lower, -1) {
		amounts = append(amounts, parseAmount(m[1], m[2]))
	}
	for _, m := range s.suffixedAmount.FindAllStringSubmatch(lower, -1) {
		amounts = append(amounts, parseAmount(m[1], m[2]))
	}
	for _, m := range s.denominatedAmount.FindAllStringSubmatch(lower, -1) {
		amounts = append(amounts, parseAmount(m[1], m[2]))
	}

	if len(amounts) == 0 {
		return 0.2
	}

	var total float64
	for _, a := range amounts {
		total += a
	}
	avg := total / float64(len(amounts))

	switch {
	case avg >= 1_000_000:
		return 1.0
	case avg >= 100_000:
		return 0.8
	case avg >= 10_000:
		return 0.6
	case avg >= 1_000:
		return 0.4
	case avg > 0:
		return 0.3
	default:
		return 0.2
	}
}

func parseAmount(digits, suffix string) float64 {
	cleaned := strings.ReplaceAll(digits, ",", "")
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}

	switch suffix {
	case "k":
		value *= 1_000
	case "m", "million":
		value *= 1_000_000
	case "b", "billion":
		value *= 1_000_000_000
	}
	return value
}

// dynamicThreshold lowers the bar as urgency rises, when instability
// vocabulary is present, and during trading hours; weekends raise it.
func (s *Scorer) dynamicThreshold(lower string, urgency float64, at time.Time) float64 {
	threshold := baseThreshold
	threshold -= urgencyRelief * urgency

	for _, re := range s.instability {
		if re.MatchString(lower) {
			threshold -= instabilityRelief
			break
		}
	}

	if utils.IsMarketOpen(at) {
		threshold -= marketHoursRelief
	}
	if utils.IsWeekend(at) {
		threshold += weekendIncrease
	}

	if threshold < minThreshold {
		threshold = minThreshold
	}
	if threshold > maxThreshold {
		threshold = maxThreshold
	}
	return threshold
}
