package hitrule

import (
	"testing"

	"github.com/suwei8/lotto-ai4/internal/domain/playtype"
)

func TestIsHit(t *testing.T) {
	cases := []struct {
		name     string
		playtype string
		numbers  string
		open     string
		want     bool
	}{
		{"kill avoided", "杀一", "5", "123", true},
		{"kill drawn", "杀一", "1", "123", false},
		{"kill two avoided", "杀二", "5,6", "1,2,3", true},
		{"kill two one drawn", "杀二", "5,3", "1,2,3", false},

		{"hundreds pick hit", "百位定1", "1", "123", true},
		{"hundreds pick miss", "百位定1", "2", "123", false},
		{"tens pick of three", "十位定3", "0,2,9", "1,2,3", true},
		{"units pick miss", "个位定3", "4 5 6", "123", false},
		{"composite child", "定位3*3*3-个位", "3,4,5", "123", true},
		{"position kill hit", "百位杀1", "9", "123", true},
		{"position kill miss", "百位杀1", "1", "123", false},

		{"single dan hit", "独胆", "2", "123", true},
		{"single dan miss", "独胆", "7", "123", false},
		{"double dan hit", "双胆", "1,3", "123", true},
		{"double dan one overlap", "双胆", "1,7", "123", false},

		{"group triple digit drawn", "三胆", "5,6,7", "555", true},
		{"group triple digit absent", "三胆", "1,2,3", "555", false},
		{"group pair covered", "五码组选", "1,2", "112", true},
		{"group pair single overlap", "五码组选", "1", "112", false},
		{"group three covered", "六码组选", "1,2,3,4,5,6", "123", true},
		{"group three partly covered", "六码组选", "1,2,4,5,6,7", "123", false},
		{"group seven codes", "七码组选", "0|1|2|3|4|5|6", "6,0,3", true},
		{"group five digit draw three covered", "五码组选", "1,2,3", "12345", true},
		{"group five digit draw four covered", "五码组选", "1,2,3,4", "12345", false},
		{"group five digit draw two covered", "五码组选", "1,2", "12345", false},

		{"unknown playtype", "和值", "1,2,3", "123", false},
		{"empty open code", "独胆", "1", "", false},
		{"non digit open code", "独胆", "1", "待开奖", false},
		{"prediction without digits", "独胆", "abc", "123", false},
		{"empty prediction", "杀一", "", "123", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsHit(tc.playtype, tc.numbers, tc.open); got != tc.want {
				t.Fatalf("IsHit(%q, %q, %q)=%t want %t", tc.playtype, tc.numbers, tc.open, got, tc.want)
			}
		})
	}
}

func TestEvaluate_PositionBeyondOpenCode(t *testing.T) {
	rule := playtype.Rule{Category: playtype.CategoryPositionPick, Position: playtype.PositionUnits}
	if Evaluate(rule, "1", "12") {
		t.Fatalf("expected miss when the open code is too short")
	}
}

func TestEvaluate_UsesResolvedRule(t *testing.T) {
	catalog := playtype.DefaultCatalog()
	rule := catalog.Rule(30032, "")
	if !Evaluate(rule, "2", "1,2,3") {
		t.Fatalf("expected tens child to hit")
	}
}

func TestPredictedDigits(t *testing.T) {
	got := PredictedDigits(" 12 ; 3|4,, 05 ")
	for _, d := range []byte("012345") {
		if _, ok := got[d]; !ok {
			t.Fatalf("expected digit %c in %v", d, got)
		}
	}
	if len(got) != 6 {
		t.Fatalf("unexpected digit count: %d", len(got))
	}
}

func TestNormalizeCode(t *testing.T) {
	if got := NormalizeCode("1, 2 ,3"); got != "123" {
		t.Fatalf("unexpected normalized code: %q", got)
	}
}
