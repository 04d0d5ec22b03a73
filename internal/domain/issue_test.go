package domain

import "testing"

func TestIssueKey(t *testing.T) {
	cases := []struct {
		prefix string
		number int32
		want   string
	}{
		{"ENG", 1, "ENG-001"},
		{"ENG", 2, "ENG-002"},
		{"ENG", 42, "ENG-042"},
		{"OPS1", 999, "OPS1-999"},
		{"OPS1", 1000, "OPS1-1000"},
		{"", 7, ""},
		{"ENG", 0, ""},
	}
	for _, tc := range cases {
		if got := IssueKey(tc.prefix, tc.number); got != tc.want {
			t.Errorf("IssueKey(%q, %d) = %q, want %q", tc.prefix, tc.number, got, tc.want)
		}
	}
}

func TestResolveStatus(t *testing.T) {
	for _, name := range []string{"OPEN", "open", "Open"} {
		s, ok := ResolveStatus(name)
		if !ok || s != StatusOpen {
			t.Errorf("ResolveStatus(%q) = %v, %v", name, s, ok)
		}
	}
	if _, ok := ResolveStatus("DONE"); ok {
		t.Error("DONE should not resolve")
	}
	if _, ok := ResolveStatus(""); ok {
		t.Error("empty status should not resolve")
	}
}

func TestResolvePriority(t *testing.T) {
	p, ok := ResolvePriority("medium")
	if !ok || p != PriorityMedium {
		t.Errorf("ResolvePriority(medium) = %v, %v", p, ok)
	}
	if _, ok := ResolvePriority("URGENT"); ok {
		t.Error("URGENT should not resolve")
	}
}

func TestValidPrefix(t *testing.T) {
	valid := []string{"EN", "ENG", "OPS1", "A2B3C4D5E6"}
	for _, p := range valid {
		if !ValidPrefix(p) {
			t.Errorf("ValidPrefix(%q) = false", p)
		}
	}
	invalid := []string{"", "E", "eng", "1NG", "ENG-", "TOOLONGPREFIX"}
	for _, p := range invalid {
		if ValidPrefix(p) {
			t.Errorf("ValidPrefix(%q) = true", p)
		}
	}
}

func TestClampPageRequest(t *testing.T) {
	cases := []struct {
		page, size         int
		wantPage, wantSize int
	}{
		{0, 0, 0, 20},
		{-5, 10, 0, 10},
		{2, 50, 2, 50},
		{0, 100, 0, 100},
		{0, 101, 0, 100},
		{0, 10000, 0, 100},
		{3, -1, 3, 20},
	}
	for _, tc := range cases {
		page, size := ClampPageRequest(tc.page, tc.size, 20)
		if page != tc.wantPage || size != tc.wantSize {
			t.Errorf("ClampPageRequest(%d, %d) = (%d, %d), want (%d, %d)",
				tc.page, tc.size, page, size, tc.wantPage, tc.wantSize)
		}
	}
}

func TestNewPageTotals(t *testing.T) {
	p := NewPage([]int{1, 2, 3}, 0, 20, 41)
	if p.TotalPages != 3 {
		t.Errorf("TotalPages = %d, want 3", p.TotalPages)
	}
	empty := NewPage[int](nil, 0, 20, 0)
	if empty.Items == nil {
		t.Error("Items should never be nil")
	}
	if empty.TotalPages != 0 {
		t.Errorf("TotalPages = %d, want 0", empty.TotalPages)
	}
}

func TestIssueViewNilTags(t *testing.T) {
	iss := &Issue{ID: 1, ProjectID: 1, IssueNumber: 3, Status: StatusOpen, Priority: PriorityLow}
	v := iss.ToView("ENG", nil)
	if v.Tags == nil {
		t.Error("view tags should be empty, not nil")
	}
	if v.IssueKey != "ENG-003" {
		t.Errorf("IssueKey = %q", v.IssueKey)
	}
}
