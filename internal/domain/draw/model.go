package draw

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TwoToneLotteries publish red and blue balls separately; their open code is
// reds followed by blues.
var TwoToneLotteries = map[string]struct{}{
	"双色球": {},
	"大乐透": {},
}

// Result is one official draw with its derived metrics.
// (LotteryName, IssueName) is unique.
type Result struct {
	LotteryName   string     `json:"lottery_name"`
	IssueName     string     `json:"issue_name"`
	OpenCode      string     `json:"open_code"`
	Sum           int        `json:"sum"`
	Span          int        `json:"span"`
	OddEvenRatio  string     `json:"odd_even_ratio"`
	BigSmallRatio string     `json:"big_small_ratio"`
	OpenTime      *time.Time `json:"open_time,omitempty"`
}

func (r Result) Validate() error {
	if strings.TrimSpace(r.LotteryName) == "" {
		return fmt.Errorf("draw lottery name is required")
	}
	if strings.TrimSpace(r.IssueName) == "" {
		return fmt.Errorf("draw issue name is required")
	}
	if strings.TrimSpace(r.OpenCode) == "" {
		return fmt.Errorf("draw open code is required")
	}
	return nil
}

// Metrics are the statistics stored alongside every draw.
type Metrics struct {
	Sum           int
	Span          int
	OddEvenRatio  string
	BigSmallRatio string
}

// ComputeMetrics derives sum, span and the odd:even and big:small ratios.
// A number counts as big when it is 5 or more.
func ComputeMetrics(numbers []int) (Metrics, error) {
	if len(numbers) == 0 {
		return Metrics{}, fmt.Errorf("numbers must not be empty")
	}

	sum, minVal, maxVal := 0, numbers[0], numbers[0]
	odd, big := 0, 0
	for _, n := range numbers {
		sum += n
		minVal = min(minVal, n)
		maxVal = max(maxVal, n)
		if n%2 != 0 {
			odd++
		}
		if n >= 5 {
			big++
		}
	}
	return Metrics{
		Sum:           sum,
		Span:          maxVal - minVal,
		OddEvenRatio:  fmt.Sprintf("%d:%d", odd, len(numbers)-odd),
		BigSmallRatio: fmt.Sprintf("%d:%d", big, len(numbers)-big),
	}, nil
}

// NormalizeIssue expands a short "25xxx" issue to the four-digit-year form.
func NormalizeIssue(issue string) string {
	issue = strings.TrimSpace(issue)
	if len(issue) == 5 && strings.HasPrefix(issue, "25") {
		return "20" + issue
	}
	return issue
}

var openTimeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	time.RFC3339,
}

// ParseOpenTime returns nil when raw matches none of the known layouts.
func ParseOpenTime(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	for _, layout := range openTimeLayouts {
		t, err := time.Parse(layout, raw)
		if err == nil {
			return &t
		}
	}
	return nil
}

// CleanNumbers drops empty and non-numeric tokens and strips leading zeros.
func CleanNumbers(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, token := range tokens {
		token = strings.TrimSpace(token)
		if token == "" || !isDigits(token) {
			continue
		}
		n, err := strconv.Atoi(token)
		if err != nil {
			continue
		}
		out = append(out, strconv.Itoa(n))
	}
	return out
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// NewResult builds a draw from raw feed fields. It reports false when the
// issue or the cleaned numbers are empty.
func NewResult(lotteryName, issue, openTime string, numbers []string) (Result, bool) {
	issue = NormalizeIssue(issue)
	if issue == "" {
		return Result{}, false
	}
	cleaned := CleanNumbers(numbers)
	if len(cleaned) == 0 {
		return Result{}, false
	}

	digits := make([]int, 0, len(cleaned))
	for _, v := range cleaned {
		n, _ := strconv.Atoi(v)
		digits = append(digits, n)
	}
	metrics, err := ComputeMetrics(digits)
	if err != nil {
		return Result{}, false
	}

	return Result{
		LotteryName:   lotteryName,
		IssueName:     issue,
		OpenCode:      strings.Join(cleaned, ","),
		Sum:           metrics.Sum,
		Span:          metrics.Span,
		OddEvenRatio:  metrics.OddEvenRatio,
		BigSmallRatio: metrics.BigSmallRatio,
		OpenTime:      ParseOpenTime(openTime),
	}, true
}
