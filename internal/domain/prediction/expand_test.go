package prediction

import (
	"reflect"
	"testing"
)

func TestCanonical(t *testing.T) {
	cases := []struct {
		name    string
		numbers Numbers
		want    string
	}{
		{"nested groups", NestedGroups{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}}, "1,2,3|4,5,6|7,8,9"},
		{"nested single group", NestedGroups{{0, 5}}, "0,5"},
		{"nested empty group", NestedGroups{{1}, {}, {3}}, "1||3"},
		{"flat digits", FlatDigits{0, 3, 9}, "0,3,9"},
		{"flat empty", FlatDigits{}, ""},
		{"opaque", OpaqueString("01 02|03"), "01 02|03"},
		{"nil", nil, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Canonical(tc.numbers); got != tc.want {
				t.Fatalf("Canonical()=%q want %q", got, tc.want)
			}
		})
	}
}

func TestExpand(t *testing.T) {
	cases := []struct {
		name    string
		id      int64
		ptName  string
		numbers Numbers
		want    []Scheme
	}{
		{
			name:    "composite with three groups splits",
			id:      3003,
			ptName:  "定位3*3*3",
			numbers: NestedGroups{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}},
			want: []Scheme{
				{PlaytypeID: 30031, PlaytypeName: "定位3*3*3-百位", Numbers: "1,2,3"},
				{PlaytypeID: 30032, PlaytypeName: "定位3*3*3-十位", Numbers: "4,5,6"},
				{PlaytypeID: 30033, PlaytypeName: "定位3*3*3-个位", Numbers: "7,8,9"},
			},
		},
		{
			name:    "composite string payload splits",
			id:      3005,
			ptName:  "定位5*5*5",
			numbers: OpaqueString("0,1,2,3,4|5,6,7,8,9|1,3,5,7,9"),
			want: []Scheme{
				{PlaytypeID: 30051, PlaytypeName: "定位5*5*5-百位", Numbers: "0,1,2,3,4"},
				{PlaytypeID: 30052, PlaytypeName: "定位5*5*5-十位", Numbers: "5,6,7,8,9"},
				{PlaytypeID: 30053, PlaytypeName: "定位5*5*5-个位", Numbers: "1,3,5,7,9"},
			},
		},
		{
			name:    "composite with two groups stays whole",
			id:      3004,
			ptName:  "定位4*4*4",
			numbers: NestedGroups{{1, 2, 3, 4}, {5, 6, 7, 8}},
			want:    []Scheme{{PlaytypeID: 3004, PlaytypeName: "定位4*4*4", Numbers: "1,2,3,4|5,6,7,8"}},
		},
		{
			name:    "composite with four groups stays whole",
			id:      3003,
			ptName:  "定位3*3*3",
			numbers: OpaqueString("1|2|3|4"),
			want:    []Scheme{{PlaytypeID: 3003, PlaytypeName: "定位3*3*3", Numbers: "1|2|3|4"}},
		},
		{
			name:    "composite without separators stays whole",
			id:      3003,
			ptName:  "定位3*3*3",
			numbers: FlatDigits{1, 2, 3},
			want:    []Scheme{{PlaytypeID: 3003, PlaytypeName: "定位3*3*3", Numbers: "1,2,3"}},
		},
		{
			name:    "non composite with groups stays whole",
			id:      1003,
			ptName:  "三胆",
			numbers: NestedGroups{{1}, {2}, {3}},
			want:    []Scheme{{PlaytypeID: 1003, PlaytypeName: "三胆", Numbers: "1|2|3"}},
		},
		{
			name:    "flat digits",
			id:      1005,
			ptName:  "五码组选",
			numbers: FlatDigits{0, 2, 4, 6, 8},
			want:    []Scheme{{PlaytypeID: 1005, PlaytypeName: "五码组选", Numbers: "0,2,4,6,8"}},
		},
		{
			name:    "missing numbers",
			id:      2001,
			ptName:  "杀一",
			numbers: nil,
			want:    []Scheme{{PlaytypeID: 2001, PlaytypeName: "杀一", Numbers: ""}},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Expand(tc.id, tc.ptName, tc.numbers)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("Expand()=%+v\nwant %+v", got, tc.want)
			}
		})
	}
}

func TestPredictionValidate(t *testing.T) {
	valid := Prediction{UserID: 1, IssueName: "2025001", LotteryID: 6, PlaytypeID: 1001, Numbers: "1"}
	if err := valid.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	broken := []Prediction{
		{IssueName: "2025001", PlaytypeID: 1001},
		{UserID: 1, PlaytypeID: 1001},
		{UserID: 1, IssueName: "2025001"},
	}
	for i, p := range broken {
		if err := p.Validate(); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
	}
}
